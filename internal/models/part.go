package models

// CategoryKey identifies a build slot
type CategoryKey string

const (
	CategoryLower     CategoryKey = "lower"
	CategoryUpper     CategoryKey = "upper"
	CategoryGrip      CategoryKey = "grip"
	CategoryForegrip  CategoryKey = "foregrip"
	CategoryBarrel    CategoryKey = "barrel"
	CategoryHandguard CategoryKey = "handguard"
	CategoryStock     CategoryKey = "stock"
	CategoryMuzzle    CategoryKey = "muzzle"
	CategoryOptic     CategoryKey = "optic"
	CategoryTrigger   CategoryKey = "trigger"
	CategoryBCG       CategoryKey = "bcg"
)

// SentinelID is the catalog ID of the "(None)" part present in every category
const SentinelID = "none"

// Compatibility describes which platforms a part fits.
// A nil SubTypes or ExcludeSubTypes list is absent; a non-nil empty list is present.
type Compatibility struct {
	FirearmTypes    []FirearmType `json:"firearm_types" yaml:"firearm_types"`
	SubTypes        []SubType     `json:"sub_types,omitempty" yaml:"sub_types,omitempty"`
	ExcludeSubTypes []SubType     `json:"exclude_sub_types,omitempty" yaml:"exclude_sub_types,omitempty"`
}

// Universal returns a descriptor admissible for every firearm type
func Universal() Compatibility {
	types := make([]FirearmType, len(FirearmTypes))
	copy(types, FirearmTypes)
	return Compatibility{FirearmTypes: types}
}

// Clone returns a deep copy that preserves nil-vs-empty on the optional lists
func (c Compatibility) Clone() Compatibility {
	out := Compatibility{}
	if c.FirearmTypes != nil {
		out.FirearmTypes = append([]FirearmType{}, c.FirearmTypes...)
	}
	if c.SubTypes != nil {
		out.SubTypes = append([]SubType{}, c.SubTypes...)
	}
	if c.ExcludeSubTypes != nil {
		out.ExcludeSubTypes = append([]SubType{}, c.ExcludeSubTypes...)
	}
	return out
}

// Part is a single catalog entry
type Part struct {
	ID            string        `json:"id" yaml:"id"`
	Name          string        `json:"name" yaml:"name"`
	Brand         string        `json:"brand" yaml:"brand"`
	Price         Money         `json:"price" yaml:"price"`
	Color         string        `json:"color" yaml:"color"`
	Description   string        `json:"description,omitempty" yaml:"description,omitempty"`
	Compatibility Compatibility `json:"compatibility" yaml:"compatibility"`
}

// SentinelPart returns the "(None)" part, priced at zero and universally compatible
func SentinelPart() Part {
	return Part{
		ID:            SentinelID,
		Name:          "(None)",
		Brand:         "—",
		Price:         0,
		Color:         "#111",
		Compatibility: Universal(),
	}
}

// IsSentinel reports whether p represents "no component selected"
func (p Part) IsSentinel() bool {
	return p.ID == SentinelID
}

// Clone returns a copy of p that shares no slices with it
func (p Part) Clone() Part {
	p.Compatibility = p.Compatibility.Clone()
	return p
}

// Selection maps each category to its chosen part
type Selection map[CategoryKey]Part

// Clone returns a deep copy of s
func (s Selection) Clone() Selection {
	if s == nil {
		return nil
	}
	out := make(Selection, len(s))
	for k, p := range s {
		out[k] = p.Clone()
	}
	return out
}
