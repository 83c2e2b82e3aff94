package pricing

import "math"

type baseRate struct {
	size   string
	level  string
	prices map[int]float64 // months -> ordinary total
}

// Ordinary-tier totals in LYD per board for the standard rental brackets.
var baseRates = []baseRate{
	{size: "13x5", level: "A", prices: map[int]float64{1: 4500, 2: 8500, 3: 12000, 6: 22500, 12: 42000}},
	{size: "13x5", level: "B", prices: map[int]float64{1: 3800, 2: 7200, 3: 10200, 6: 19000, 12: 36000}},
	{size: "12x4", level: "A", prices: map[int]float64{1: 3500, 2: 6600, 3: 9300, 6: 17500, 12: 33000}},
	{size: "12x4", level: "B", prices: map[int]float64{1: 3000, 2: 5600, 3: 8000, 6: 15000, 12: 28000}},
	{size: "10x4", level: "A", prices: map[int]float64{1: 2800, 2: 5300, 3: 7500, 6: 14000, 12: 26500}},
	{size: "10x4", level: "B", prices: map[int]float64{1: 2400, 2: 4500, 3: 6400, 6: 12000, 12: 22500}},
	{size: "8x3", level: "A", prices: map[int]float64{1: 2000, 2: 3800, 3: 5400, 6: 10000, 12: 19000}},
	{size: "8x3", level: "B", prices: map[int]float64{1: 1700, 2: 3200, 3: 4600, 6: 8500, 12: 16000}},
	{size: "6x3", level: "A", prices: map[int]float64{1: 1500, 2: 2800, 3: 4000, 6: 7500, 12: 14000}},
	{size: "6x3", level: "B", prices: map[int]float64{1: 1250, 2: 2350, 3: 3350, 6: 6300, 12: 11800}},
	{size: "4x3", level: "", prices: map[int]float64{1: 1000, 2: 1900, 3: 2700, 6: 5000, 12: 9500}},
	{size: "3x4", level: "", prices: map[int]float64{1: 1000, 2: 1900, 3: 2700, 6: 5000, 12: 9500}},
}

var tierFactors = map[Tier]float64{
	TierOrdinary:  1,
	TierCorporate: 0.9,
	TierMarketer:  0.85,
	TierMunicipal: 0.8,
}

// DefaultEntries expands the built-in base rates into one entry per tier.
func DefaultEntries() []RateEntry {
	tiers := []Tier{TierOrdinary, TierCorporate, TierMarketer, TierMunicipal}
	brackets := []int{1, 2, 3, 6, 12}
	entries := make([]RateEntry, 0, len(baseRates)*len(tiers)*len(brackets))
	for _, base := range baseRates {
		for _, tier := range tiers {
			for _, months := range brackets {
				price, ok := base.prices[months]
				if !ok {
					continue
				}
				entries = append(entries, RateEntry{
					Size:      base.size,
					Level:     base.level,
					Tier:      tier,
					MinMonths: months,
					Price:     math.Round(price * tierFactors[tier]),
				})
			}
		}
	}
	return entries
}

func DefaultTable() *Table {
	t, err := NewTable(DefaultEntries())
	if err != nil {
		panic(err)
	}
	return t
}
