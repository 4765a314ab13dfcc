package catalog

import (
	"sort"
	"strings"

	"github.com/Lukeeddleman/loadoutlab-site/internal/models"
)

// Filter narrows a part list for the selector UI. It is independent of
// platform compatibility; callers filter for compatibility first.
type Filter struct {
	Search   string        // case-insensitive substring of name or brand
	Brands   []string      // empty means any brand
	MinPrice *models.Money // inclusive
	MaxPrice *models.Money // inclusive
}

// Match reports whether p passes every condition in f
func (f Filter) Match(p models.Part) bool {
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.Brand), term) {
			return false
		}
	}

	if len(f.Brands) > 0 {
		found := false
		for _, b := range f.Brands {
			if b == p.Brand {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	return true
}

// Apply returns the parts that match f, preserving order
func (f Filter) Apply(parts []models.Part) []models.Part {
	out := make([]models.Part, 0, len(parts))
	for _, p := range parts {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// Brands returns the distinct brands of parts, sorted. The sentinel is skipped.
func Brands(parts []models.Part) []string {
	seen := make(map[string]bool)
	var brands []string
	for _, p := range parts {
		if p.IsSentinel() || seen[p.Brand] {
			continue
		}
		seen[p.Brand] = true
		brands = append(brands, p.Brand)
	}
	sort.Strings(brands)
	return brands
}

// MaxPrice returns the highest price among parts, or zero for an empty list
func MaxPrice(parts []models.Part) models.Money {
	var max models.Money
	for _, p := range parts {
		if p.Price > max {
			max = p.Price
		}
	}
	return max
}
