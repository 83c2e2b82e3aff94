package status

import (
	"math"
	"time"
)

// ExpiringSoonDays is the horizon within which a running contract is
// reported as expiring soon.
const ExpiringSoonDays = 30

type ContractStatus string

const (
	NotStarted   ContractStatus = "not_started"
	Active       ContractStatus = "active"
	ExpiringSoon ContractStatus = "expiring_soon"
	Expired      ContractStatus = "expired"
	Undated      ContractStatus = "undated"
)

// Classify derives the status of a contract at today. Nothing is stored;
// the status is recomputed from the dates on every call.
func Classify(today, start, end time.Time) ContractStatus {
	if start.IsZero() || end.IsZero() {
		return Undated
	}
	switch {
	case today.Before(start):
		return NotStarted
	case today.After(end):
		return Expired
	case DaysRemaining(today, end) <= ExpiringSoonDays:
		return ExpiringSoon
	default:
		return Active
	}
}

// DaysRemaining is ceil((end - today) / 1 day). It is negative once end has
// passed.
func DaysRemaining(today, end time.Time) int {
	return int(math.Ceil(end.Sub(today).Hours() / 24))
}

func ParseContractStatus(raw string) (ContractStatus, bool) {
	switch ContractStatus(raw) {
	case NotStarted, Active, ExpiringSoon, Expired, Undated:
		return ContractStatus(raw), true
	}
	// labels used by the contracts list filter
	switch raw {
	case "upcoming":
		return NotStarted, true
	case "expiring":
		return ExpiringSoon, true
	}
	return "", false
}

type Availability string

const (
	Available   Availability = "available"
	NearExpiry  Availability = "near_expiry"
	Rented      Availability = "rented"
	Maintenance Availability = "maintenance"
)

// BillboardAvailability applies the contract thresholds to a board. A board
// without a contract or with an expired one is available, one whose contract
// expires soon is near expiry, any other linked contract keeps it rented.
func BillboardAvailability(today time.Time, hasContract bool, start, end time.Time, maintenance bool) Availability {
	if maintenance {
		return Maintenance
	}
	if !hasContract {
		return Available
	}
	switch Classify(today, start, end) {
	case Expired:
		return Available
	case ExpiringSoon:
		return NearExpiry
	default:
		return Rented
	}
}

// Selectable reports whether a board can be booked for a new contract.
func (a Availability) Selectable() bool {
	return a == Available || a == NearExpiry
}

// Rank orders boards for booking views: available, near expiry, the rest.
func (a Availability) Rank() int {
	switch a {
	case Available:
		return 0
	case NearExpiry:
		return 1
	case Rented:
		return 2
	default:
		return 3
	}
}
