// Package compat decides which parts fit a platform.
//
// A nil *models.PlatformConfiguration means no platform has been chosen and
// admits everything. Otherwise a part must list the firearm type, must list
// the sub-type when it carries an allow-list, and must not list the sub-type
// in its deny-list. The deny-list is checked last and always wins.
package compat

import (
	"fmt"

	"github.com/Lukeeddleman/loadoutlab-site/internal/catalog"
	"github.com/Lukeeddleman/loadoutlab-site/internal/models"
)

// Rule names the compatibility check a part failed
type Rule string

const (
	RuleFirearmType Rule = "firearm_type"
	RuleSubType     Rule = "sub_type"
	RuleExcluded    Rule = "excluded_sub_type"
)

// Mismatch explains why a descriptor is not admissible
type Mismatch struct {
	Rule     Rule
	Platform models.PlatformConfiguration
}

func (m *Mismatch) Error() string {
	switch m.Rule {
	case RuleFirearmType:
		return fmt.Sprintf("not made for %s platforms", m.Platform.FirearmType)
	case RuleSubType:
		return fmt.Sprintf("not listed for %s", m.Platform)
	case RuleExcluded:
		return fmt.Sprintf("excluded for %s", m.Platform)
	}
	return "incompatible with " + m.Platform.String()
}

// Check returns nil when c is admissible under cfg, otherwise a *Mismatch
func Check(c models.Compatibility, cfg *models.PlatformConfiguration) error {
	if cfg == nil {
		return nil
	}
	if !containsFirearm(c.FirearmTypes, cfg.FirearmType) {
		return &Mismatch{Rule: RuleFirearmType, Platform: *cfg}
	}
	if c.SubTypes != nil && !containsSub(c.SubTypes, cfg.SubType) {
		return &Mismatch{Rule: RuleSubType, Platform: *cfg}
	}
	if c.ExcludeSubTypes != nil && containsSub(c.ExcludeSubTypes, cfg.SubType) {
		return &Mismatch{Rule: RuleExcluded, Platform: *cfg}
	}
	return nil
}

// IsCompatible reports whether c is admissible under cfg
func IsCompatible(c models.Compatibility, cfg *models.PlatformConfiguration) bool {
	return Check(c, cfg) == nil
}

// Filter returns the admissible parts in their original order. The result
// never shares a backing array with parts.
func Filter(parts []models.Part, cfg *models.PlatformConfiguration) []models.Part {
	out := make([]models.Part, 0, len(parts))
	for _, p := range parts {
		if IsCompatible(p.Compatibility, cfg) {
			out = append(out, p.Clone())
		}
	}
	return out
}

// FilterCatalog applies Filter to every category of cat
func FilterCatalog(cat *catalog.Catalog, cfg *models.PlatformConfiguration) map[models.CategoryKey][]models.Part {
	out := make(map[models.CategoryKey][]models.Part)
	for _, key := range cat.Keys() {
		out[key] = Filter(cat.Parts(key), cfg)
	}
	return out
}

func containsFirearm(list []models.FirearmType, ft models.FirearmType) bool {
	for _, v := range list {
		if v == ft {
			return true
		}
	}
	return false
}

func containsSub(list []models.SubType, st models.SubType) bool {
	for _, v := range list {
		if v == st {
			return true
		}
	}
	return false
}
