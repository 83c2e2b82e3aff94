package installment

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/nurpe/billboards-service/internal/model"
)

const (
	MinCount = 1
	MaxCount = 6
)

var (
	ErrInvalidRange       = errors.New("invalid date range")
	ErrNegativeTotal      = errors.New("total must not be negative")
	ErrIndexOutOfRange    = errors.New("installment index out of range")
	ErrInvalidPaymentType = errors.New("invalid payment type")
	ErrPlanMismatch       = errors.New("installments do not add up to the contract total")
)

var paymentTypeLabels = map[string]model.PaymentType{
	"monthly":    model.PaymentMonthly,
	"شهري":       model.PaymentMonthly,
	"bimonthly":  model.PaymentBimonthly,
	"شهرين":      model.PaymentBimonthly,
	"quarterly":  model.PaymentQuarterly,
	"ثلاثة أشهر": model.PaymentQuarterly,
}

func ParsePaymentType(raw string) (model.PaymentType, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return model.PaymentMonthly, nil
	}
	if pt, ok := paymentTypeLabels[raw]; ok {
		return pt, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPaymentType, raw)
}

// Distribute is DistributeEvenly for callers that must not plan a negative
// total: it fails with ErrNegativeTotal instead of planning zero rows.
func Distribute(total float64, count int) ([]model.Installment, error) {
	if total < 0 {
		return nil, ErrNegativeTotal
	}
	return DistributeEvenly(total, count), nil
}

// DistributeEvenly splits total into count monthly installments. The count is
// clamped to [MinCount, MaxCount] and a negative total is planned as zero.
// Every row but the last gets the even share rounded down to cents; the last
// row takes the remainder so the plan adds up to total exactly.
func DistributeEvenly(total float64, count int) []model.Installment {
	count = clampCount(count)
	totalCents := toCents(math.Max(0, total))
	even := totalCents / int64(count)

	plan := make([]model.Installment, count)
	for i := range plan {
		amount := even
		if i == count-1 {
			amount = totalCents - even*int64(count-1)
		}
		plan[i] = model.Installment{
			Amount:      fromCents(amount),
			Months:      i + 1,
			PaymentType: model.PaymentMonthly,
		}
	}
	return plan
}

// DefaultPlan is the two-row plan offered for a new contract: half now, the
// rest a month later.
func DefaultPlan(total float64) []model.Installment {
	if total <= 0 {
		return nil
	}
	half := math.Round(total/2*100) / 100
	return []model.Installment{
		{Amount: half, Months: 1, PaymentType: model.PaymentMonthly},
		{Amount: fromCents(toCents(total) - toCents(half)), Months: 2, PaymentType: model.PaymentMonthly},
	}
}

// DueDateFor returns the due date of plan[index]. Monthly rows are due after
// the sum of Months of all rows up to and including index. Bimonthly and
// quarterly rows are due (index+1)*2 and (index+1)*3 months after start and
// do not accumulate earlier rows, so mixed plans may have non-monotonic dates.
func DueDateFor(start time.Time, plan []model.Installment, index int) (time.Time, error) {
	if index < 0 || index >= len(plan) {
		return time.Time{}, ErrIndexOutOfRange
	}
	if start.IsZero() {
		return time.Time{}, ErrInvalidRange
	}

	var offset int
	switch plan[index].PaymentType {
	case model.PaymentMonthly, "":
		for _, row := range plan[:index+1] {
			offset += row.Months
		}
	case model.PaymentBimonthly:
		offset = (index + 1) * 2
	case model.PaymentQuarterly:
		offset = (index + 1) * 3
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidPaymentType, plan[index].PaymentType)
	}
	return start.AddDate(0, offset, 0), nil
}

func Schedule(start time.Time, plan []model.Installment) ([]model.ScheduledPayment, error) {
	result := make([]model.ScheduledPayment, 0, len(plan))
	for i, row := range plan {
		due, err := DueDateFor(start, plan, i)
		if err != nil {
			return nil, err
		}
		pt := row.PaymentType
		if pt == "" {
			pt = model.PaymentMonthly
		}
		result = append(result, model.ScheduledPayment{
			Index:       i + 1,
			Amount:      row.Amount,
			PaymentType: pt,
			DueDate:     due,
		})
	}
	return result, nil
}

// SettlementAmount pro-rates finalTotal by the share of the contract period
// elapsed at today (capped at end).
func SettlementAmount(start, end time.Time, finalTotal float64, today time.Time) (float64, error) {
	if start.IsZero() || end.IsZero() || start.After(end) {
		return 0, ErrInvalidRange
	}
	if finalTotal < 0 || math.IsNaN(finalTotal) || math.IsInf(finalTotal, 0) {
		return 0, ErrNegativeTotal
	}

	eval := today
	if end.Before(today) {
		eval = end
	}
	totalDays := max(1, ceilDays(end.Sub(start)))
	consumed := min(max(0, ceilDays(eval.Sub(start))), totalDays)
	return math.Round(finalTotal * float64(consumed) / float64(totalDays)), nil
}

func Sum(plan []model.Installment) float64 {
	var cents int64
	for _, row := range plan {
		cents += toCents(row.Amount)
	}
	return fromCents(cents)
}

// Validate checks the rows of a plan and reports ErrPlanMismatch when the
// amounts do not add up to finalTotal. Callers decide whether a mismatch is
// acceptable.
func Validate(plan []model.Installment, finalTotal float64) error {
	for i, row := range plan {
		if row.Amount < 0 {
			return fmt.Errorf("installment %d: amount must not be negative", i+1)
		}
		if row.Months < 1 {
			return fmt.Errorf("installment %d: months must be at least 1", i+1)
		}
		switch row.PaymentType {
		case model.PaymentMonthly, model.PaymentBimonthly, model.PaymentQuarterly, "":
		default:
			return fmt.Errorf("installment %d: %w", i+1, ErrInvalidPaymentType)
		}
	}
	if len(plan) > 0 && toCents(Sum(plan)) != toCents(finalTotal) {
		return ErrPlanMismatch
	}
	return nil
}

func clampCount(count int) int {
	return min(MaxCount, max(MinCount, count))
}

func ceilDays(d time.Duration) int {
	return int(math.Ceil(d.Hours() / 24))
}

func toCents(v float64) int64 {
	return int64(math.Round(v * 100))
}

func fromCents(c int64) float64 {
	return float64(c) / 100
}
