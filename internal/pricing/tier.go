package pricing

import (
	"fmt"
	"strings"
)

// Tier is the customer category a rate applies to.
type Tier string

const (
	TierOrdinary  Tier = "ordinary"
	TierCorporate Tier = "corporate"
	TierMarketer  Tier = "marketer"
	TierMunicipal Tier = "municipal"
)

var tierLabels = map[string]Tier{
	"ordinary":  TierOrdinary,
	"عادي":      TierOrdinary,
	"corporate": TierCorporate,
	"company":   TierCorporate,
	"شركات":     TierCorporate,
	"marketer":  TierMarketer,
	"مسوق":      TierMarketer,
	"municipal": TierMunicipal,
	"city":      TierMunicipal,
	"المدينة":   TierMunicipal,
}

func ParseTier(raw string) (Tier, error) {
	if tier, ok := tierLabels[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return tier, nil
	}
	return "", fmt.Errorf("unknown customer tier %q", raw)
}

func (t Tier) Valid() bool {
	switch t {
	case TierOrdinary, TierCorporate, TierMarketer, TierMunicipal:
		return true
	}
	return false
}
