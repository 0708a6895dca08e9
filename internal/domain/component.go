package domain

import "fmt"

// Component is a single geomagnetic field element as encoded in a WDC record.
type Component byte

const (
	ComponentX Component = 'X' // geographic north intensity
	ComponentY Component = 'Y' // geographic east intensity
	ComponentZ Component = 'Z' // vertical intensity
	ComponentH Component = 'H' // horizontal intensity
	ComponentD Component = 'D' // declination
	ComponentI Component = 'I' // inclination
)

// Family groups components that share a unit and a scaling rule.
type Family int

const (
	FamilyIntensity Family = iota + 1
	FamilyAngle
)

func (f Family) String() string {
	switch f {
	case FamilyIntensity:
		return "intensity"
	case FamilyAngle:
		return "angle"
	default:
		return "unknown"
	}
}

// MissingSentinel is the raw hourly value WDC files use for "no reading".
const MissingSentinel = 9999

// scaling reconstructs a physical value from the tabular base and a raw offset.
type scaling func(base, raw int) float64

var scalings = map[Family]scaling{
	FamilyIntensity: func(base, raw int) float64 { return float64(base*100 + raw) },
	FamilyAngle:     func(base, raw int) float64 { return float64(base) + float64(raw)/600 },
}

var families = map[Component]Family{
	ComponentX: FamilyIntensity,
	ComponentY: FamilyIntensity,
	ComponentZ: FamilyIntensity,
	ComponentH: FamilyIntensity,
	ComponentD: FamilyAngle,
	ComponentI: FamilyAngle,
}

// ParseComponent validates a component letter from a WDC record.
func ParseComponent(s string) (Component, error) {
	if len(s) != 1 {
		return 0, fmt.Errorf("component %q: want a single letter", s)
	}
	c := Component(s[0])
	if _, ok := families[c]; !ok {
		return 0, fmt.Errorf("component %q: want one of X, Y, Z, H, D, I", s)
	}
	return c, nil
}

// Valid reports whether c is a recognised component letter.
func (c Component) Valid() bool {
	_, ok := families[c]
	return ok
}

// Family returns the unit family of the component, or 0 if c is not valid.
func (c Component) Family() Family {
	return families[c]
}

// Unit returns the physical unit of converted hourly means.
func (c Component) Unit() string {
	switch c.Family() {
	case FamilyIntensity:
		return "nT"
	case FamilyAngle:
		return "deg"
	default:
		return ""
	}
}

// Convert turns a raw hourly value into a physical hourly mean.
// The sentinel yields a missing value whatever the base.
func (c Component) Convert(base, raw int) Value {
	if raw == MissingSentinel {
		return Missing
	}
	scale, ok := scalings[c.Family()]
	if !ok {
		return Missing
	}
	return Some(scale(base, raw))
}

func (c Component) String() string {
	return string(c)
}

// MarshalText implements encoding.TextMarshaler so components can key JSON maps.
func (c Component) MarshalText() ([]byte, error) {
	return []byte{byte(c)}, nil
}
