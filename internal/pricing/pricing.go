// Package pricing derives totals and the build summary from a selection.
package pricing

import (
	"github.com/Lukeeddleman/loadoutlab-site/internal/catalog"
	"github.com/Lukeeddleman/loadoutlab-site/internal/models"
)

// LineItem is one category row of the build summary
type LineItem struct {
	Category models.CategoryKey `json:"category"`
	Name     string             `json:"name"`
	Required bool               `json:"required"`
	Part     models.Part        `json:"part"`
	Selected bool               `json:"selected"` // false when the slot holds the sentinel or nothing
}

// Summary is the per-category breakdown shown next to the build
type Summary struct {
	Items     []LineItem   `json:"items"`
	Total     models.Money `json:"total"`
	PartCount int          `json:"part_count"`
	Missing   []string     `json:"missing_required,omitempty"`
}

// Total sums the price of every entry in sel. Missing entries contribute nothing.
func Total(sel models.Selection) models.Money {
	var total models.Money
	for _, p := range sel {
		total += p.Price
	}
	return total
}

// Summarize builds the line items for categories in order. Categories absent
// from sel show the sentinel part.
func Summarize(sel models.Selection, categories []catalog.Category) Summary {
	s := Summary{Items: make([]LineItem, 0, len(categories))}

	for _, cat := range categories {
		p, ok := sel[cat.Key]
		if !ok {
			p = models.SentinelPart()
		}
		chosen := !p.IsSentinel()

		s.Items = append(s.Items, LineItem{
			Category: cat.Key,
			Name:     cat.Name,
			Required: cat.Required,
			Part:     p.Clone(),
			Selected: chosen,
		})
		if chosen {
			s.PartCount++
		} else if cat.Required {
			s.Missing = append(s.Missing, cat.Name)
		}
	}

	s.Total = Total(sel)
	return s
}
