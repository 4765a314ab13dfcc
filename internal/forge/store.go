// Package forge holds the in-progress build for one session.
package forge

import (
	"github.com/Lukeeddleman/loadoutlab-site/internal/catalog"
	"github.com/Lukeeddleman/loadoutlab-site/internal/compat"
	apperrors "github.com/Lukeeddleman/loadoutlab-site/internal/errors"
	"github.com/Lukeeddleman/loadoutlab-site/internal/models"
	"github.com/Lukeeddleman/loadoutlab-site/internal/pricing"
)

// Option configures a Store
type Option func(*Store)

// WithStrictPlatform rejects part selections until a platform is configured
func WithStrictPlatform() Option {
	return func(s *Store) { s.strict = true }
}

// WithDependencyGating locks categories until their prerequisite holds a part.
// Clearing a prerequisite resets everything that depends on it.
func WithDependencyGating() Option {
	return func(s *Store) { s.gating = true }
}

// Store is the single source of truth for a build's platform and selection.
// It is not safe for concurrent use.
type Store struct {
	catalog   *catalog.Catalog
	platform  *models.PlatformConfiguration
	selection models.Selection
	strict    bool
	gating    bool
}

// Snapshot is a read-only copy of the store's derived state
type Snapshot struct {
	Platform  *models.PlatformConfiguration `json:"platform"`
	Selection models.Selection              `json:"selection"`
	Total     models.Money                  `json:"total"`
	Locked    []models.CategoryKey          `json:"locked,omitempty"`
}

// NewStore creates a store with no platform and every category at its sentinel
func NewStore(cat *catalog.Catalog, opts ...Option) *Store {
	s := &Store{catalog: cat}
	for _, opt := range opts {
		opt(s)
	}
	s.selection = s.emptySelection()
	return s
}

func (s *Store) emptySelection() models.Selection {
	sel := make(models.Selection, len(s.catalog.Keys()))
	for _, key := range s.catalog.Keys() {
		sel[key] = models.SentinelPart()
	}
	return sel
}

// Catalog returns the catalog the store selects from
func (s *Store) Catalog() *catalog.Catalog {
	return s.catalog
}

// Configuration returns a copy of the active platform, or nil
func (s *Store) Configuration() *models.PlatformConfiguration {
	return copyPlatform(s.platform)
}

// Selection returns a copy of the current selection
func (s *Store) Selection() models.Selection {
	return s.selection.Clone()
}

// Selected returns the part chosen for category
func (s *Store) Selected(category models.CategoryKey) (models.Part, bool) {
	p, ok := s.selection[category]
	if !ok {
		return models.Part{}, false
	}
	return p.Clone(), true
}

// Total is the price of the current selection
func (s *Store) Total() models.Money {
	return pricing.Total(s.selection)
}

// Summary is the per-category build summary
func (s *Store) Summary() pricing.Summary {
	return pricing.Summarize(s.selection, s.catalog.Categories())
}

// Locked reports whether category is waiting on its prerequisite.
// Always false unless dependency gating is on.
func (s *Store) Locked(category models.CategoryKey) bool {
	if !s.gating {
		return false
	}
	req, ok := s.catalog.Requires(category)
	if !ok {
		return false
	}
	return s.selection[req].IsSentinel()
}

// Snapshot returns the platform, selection, total and locked categories
func (s *Store) Snapshot() Snapshot {
	snap := Snapshot{
		Platform:  s.Configuration(),
		Selection: s.Selection(),
		Total:     s.Total(),
	}
	for _, key := range s.catalog.Keys() {
		if s.Locked(key) {
			snap.Locked = append(snap.Locked, key)
		}
	}
	return snap
}

// Parts returns the parts of category admissible under the active platform
func (s *Store) Parts(category models.CategoryKey) ([]models.Part, error) {
	if !s.catalog.Has(category) {
		return nil, &UnknownCategoryError{Category: category}
	}
	return compat.Filter(s.catalog.Parts(category), s.platform), nil
}

// SetConfiguration replaces the platform and resets every selection that no
// longer fits it. The reset categories are returned in catalog order.
func (s *Store) SetConfiguration(cfg models.PlatformConfiguration) ([]models.CategoryKey, error) {
	if err := cfg.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	s.platform = &cfg

	reset := make(map[models.CategoryKey]bool)
	for key, p := range s.selection {
		if p.IsSentinel() || compat.IsCompatible(p.Compatibility, s.platform) {
			continue
		}
		s.selection[key] = models.SentinelPart()
		reset[key] = true
	}
	if s.gating {
		var cascaded []models.CategoryKey
		for key := range reset {
			cascaded = append(cascaded, s.clearDependents(key)...)
		}
		for _, dep := range cascaded {
			reset[dep] = true
		}
	}

	var pruned []models.CategoryKey
	for _, key := range s.catalog.Keys() {
		if reset[key] {
			pruned = append(pruned, key)
		}
	}
	return pruned, nil
}

// SetSelectedPart chooses part for category. On error the selection is unchanged.
func (s *Store) SetSelectedPart(category models.CategoryKey, part models.Part) error {
	if !s.catalog.Has(category) {
		return &UnknownCategoryError{Category: category}
	}
	if part.IsSentinel() {
		s.clear(category)
		return nil
	}
	if s.strict && s.platform == nil {
		return &UnconfiguredPlatformError{Category: category}
	}
	if err := compat.Check(part.Compatibility, s.platform); err != nil {
		e := &IncompatiblePartError{Category: category, PartID: part.ID, Reason: err}
		if s.platform != nil {
			e.Platform = *s.platform
		}
		return e
	}
	if s.Locked(category) {
		req, _ := s.catalog.Requires(category)
		return &LockedCategoryError{Category: category, Requires: req}
	}

	s.selection[category] = part.Clone()
	return nil
}

// ClearSelectedPart puts category back to its sentinel
func (s *Store) ClearSelectedPart(category models.CategoryKey) error {
	if !s.catalog.Has(category) {
		return &UnknownCategoryError{Category: category}
	}
	s.clear(category)
	return nil
}

func (s *Store) clear(category models.CategoryKey) {
	s.selection[category] = models.SentinelPart()
	if s.gating {
		s.clearDependents(category)
	}
}

// clearDependents resets every category depending on key and returns the
// ones that held a part
func (s *Store) clearDependents(key models.CategoryKey) []models.CategoryKey {
	var cleared []models.CategoryKey
	for _, dep := range s.catalog.Dependents(key) {
		if !s.selection[dep].IsSentinel() {
			cleared = append(cleared, dep)
		}
		s.selection[dep] = models.SentinelPart()
	}
	return cleared
}

// ResetConfiguration clears the platform and every selection
func (s *Store) ResetConfiguration() {
	s.platform = nil
	s.selection = s.emptySelection()
}

// Payload is the configuration persisted with a saved build
func (s *Store) Payload() models.ConfigurationPayload {
	return models.ConfigurationPayload{
		Platform:  s.Configuration(),
		Selection: s.Selection(),
		Total:     s.Total(),
	}
}

// Restore replaces the store's state with a saved payload. Every part is
// re-checked against the payload's platform; on error nothing changes.
func (s *Store) Restore(payload models.ConfigurationPayload) error {
	if payload.Platform != nil {
		if err := payload.Platform.Validate(); err != nil {
			return apperrors.Validation("saved platform: " + err.Error())
		}
	}
	if s.strict && payload.Platform == nil {
		for key, p := range payload.Selection {
			if !p.IsSentinel() {
				return &UnconfiguredPlatformError{Category: key}
			}
		}
	}

	sel := s.emptySelection()
	for key, p := range payload.Selection {
		if !s.catalog.Has(key) {
			return &UnknownCategoryError{Category: key}
		}
		if p.IsSentinel() {
			continue
		}
		if p.Price < 0 {
			return apperrors.Validationf("part %q in %s has a negative price", p.ID, key)
		}
		if len(p.Compatibility.FirearmTypes) == 0 {
			return apperrors.Validationf("part %q in %s lists no firearm types", p.ID, key)
		}
		if err := compat.Check(p.Compatibility, payload.Platform); err != nil {
			e := &IncompatiblePartError{Category: key, PartID: p.ID, Reason: err}
			if payload.Platform != nil {
				e.Platform = *payload.Platform
			}
			return e
		}
		sel[key] = p.Clone()
	}

	if s.gating {
		for _, key := range s.catalog.Keys() {
			req, ok := s.catalog.Requires(key)
			if ok && !sel[key].IsSentinel() && sel[req].IsSentinel() {
				return &LockedCategoryError{Category: key, Requires: req}
			}
		}
	}

	s.platform = copyPlatform(payload.Platform)
	s.selection = sel
	return nil
}

func copyPlatform(p *models.PlatformConfiguration) *models.PlatformConfiguration {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}
