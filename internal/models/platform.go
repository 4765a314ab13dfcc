package models

import "fmt"

// FirearmType is the top-level platform family
type FirearmType string

const (
	Rifle   FirearmType = "rifle"
	Pistol  FirearmType = "pistol"
	Shotgun FirearmType = "shotgun"
)

// SubType narrows a FirearmType to a concrete platform
type SubType string

const (
	AR15       SubType = "ar15"
	AR10       SubType = "ar10"
	BoltAction SubType = "bolt-action"

	Striker      SubType = "striker"
	Hammer       SubType = "hammer"
	SingleAction SubType = "single-action"

	Pump        SubType = "pump"
	SemiAuto    SubType = "semi-auto"
	BreakAction SubType = "break-action"
)

// FirearmTypes lists every firearm type in display order
var FirearmTypes = []FirearmType{Rifle, Pistol, Shotgun}

var subTypesByFirearm = map[FirearmType][]SubType{
	Rifle:   {AR15, AR10, BoltAction},
	Pistol:  {Striker, Hammer, SingleAction},
	Shotgun: {Pump, SemiAuto, BreakAction},
}

// Valid reports whether f is a known firearm type
func (f FirearmType) Valid() bool {
	_, ok := subTypesByFirearm[f]
	return ok
}

// SubTypes returns the sub-types that belong to f, in display order.
// Unknown firearm types have none.
func (f FirearmType) SubTypes() []SubType {
	src := subTypesByFirearm[f]
	out := make([]SubType, len(src))
	copy(out, src)
	return out
}

// Allows reports whether s belongs to the value set of f
func (f FirearmType) Allows(s SubType) bool {
	for _, candidate := range subTypesByFirearm[f] {
		if candidate == s {
			return true
		}
	}
	return false
}

// PlatformConfiguration is the firearm type and sub-type a build targets.
// A nil *PlatformConfiguration means no platform has been chosen yet.
type PlatformConfiguration struct {
	FirearmType FirearmType `json:"firearm_type" yaml:"firearm_type"`
	SubType     SubType     `json:"sub_type" yaml:"sub_type"`
}

// Validate checks that SubType belongs to FirearmType
func (p PlatformConfiguration) Validate() error {
	if !p.FirearmType.Valid() {
		return fmt.Errorf("unknown firearm type %q", p.FirearmType)
	}
	if !p.FirearmType.Allows(p.SubType) {
		return fmt.Errorf("sub-type %q is not a %s platform", p.SubType, p.FirearmType)
	}
	return nil
}

func (p PlatformConfiguration) String() string {
	return string(p.FirearmType) + "/" + string(p.SubType)
}
