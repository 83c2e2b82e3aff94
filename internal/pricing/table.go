package pricing

import (
	"errors"
	"fmt"
	"sort"
)

var ErrNoRateMatch = errors.New("no rate matches")

// RateEntry is the total price of renting one board of Size/Level for a
// customer Tier for at least MinMonths months. An empty Level applies to
// every level of the size.
type RateEntry struct {
	Size      string  `mapstructure:"size" json:"size"`
	Level     string  `mapstructure:"level" json:"level,omitempty"`
	Tier      Tier    `mapstructure:"tier" json:"tier"`
	MinMonths int     `mapstructure:"min_months" json:"min_months"`
	Price     float64 `mapstructure:"price" json:"price"`
}

type groupKey struct {
	size string
	tier Tier
}

// Table is an immutable rate table. Entries of every (size, tier) group are
// kept ordered by MinMonths ascending.
type Table struct {
	groups map[groupKey][]RateEntry
	size   int
}

func NewTable(entries []RateEntry) (*Table, error) {
	t := &Table{groups: make(map[groupKey][]RateEntry)}
	seen := make(map[RateEntry]struct{}, len(entries))
	for i, e := range entries {
		if e.Size == "" {
			return nil, fmt.Errorf("rate %d: size is required", i)
		}
		if !e.Tier.Valid() {
			return nil, fmt.Errorf("rate %d: invalid tier %q", i, e.Tier)
		}
		if e.MinMonths < 1 {
			return nil, fmt.Errorf("rate %d: min_months must be positive", i)
		}
		if e.Price < 0 {
			return nil, fmt.Errorf("rate %d: price must not be negative", i)
		}
		dup := RateEntry{Size: e.Size, Level: e.Level, Tier: e.Tier, MinMonths: e.MinMonths}
		if _, ok := seen[dup]; ok {
			return nil, fmt.Errorf("rate %d: duplicate bracket %s/%s/%s/%d", i, e.Size, e.Level, e.Tier, e.MinMonths)
		}
		seen[dup] = struct{}{}

		key := groupKey{size: e.Size, tier: e.Tier}
		t.groups[key] = append(t.groups[key], e)
		t.size++
	}
	for key := range t.groups {
		group := t.groups[key]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].MinMonths < group[j].MinMonths
		})
	}
	return t, nil
}

func (t *Table) Len() int {
	return t.size
}

// Resolve returns the total price for renting a board for months months.
// It picks the bracket with the greatest MinMonths not above months. When a
// level is given, entries of that level are used and level-less entries are
// the fallback; without a level the level column is ignored.
func (t *Table) Resolve(size, level string, tier Tier, months int) (float64, error) {
	if months <= 0 {
		return 0, ErrNoRateMatch
	}
	entries := t.groups[groupKey{size: size, tier: tier}]
	if len(entries) == 0 {
		return 0, ErrNoRateMatch
	}

	match := func(e RateEntry) bool { return true }
	if level != "" {
		exact := false
		for _, e := range entries {
			if e.Level == level {
				exact = true
				break
			}
		}
		want := level
		if !exact {
			want = ""
		}
		match = func(e RateEntry) bool { return e.Level == want }
	}

	best := -1
	for i, e := range entries {
		if e.MinMonths > months {
			break
		}
		if !match(e) {
			continue
		}
		if best < 0 || e.MinMonths > entries[best].MinMonths {
			best = i
		}
	}
	if best < 0 {
		return 0, ErrNoRateMatch
	}
	return entries[best].Price, nil
}

// Entries returns a copy of all entries, grouped and ordered.
func (t *Table) Entries() []RateEntry {
	keys := make([]groupKey, 0, len(t.groups))
	for key := range t.groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].size != keys[j].size {
			return keys[i].size < keys[j].size
		}
		return keys[i].tier < keys[j].tier
	})
	result := make([]RateEntry, 0, t.size)
	for _, key := range keys {
		result = append(result, t.groups[key]...)
	}
	return result
}
