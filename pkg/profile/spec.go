package profile

import "fmt"

// Kind selects a profile factory.
type Kind int

const (
	KindPolygon Kind = iota // regular polygon
	KindArch                // circular arc
)

func (k Kind) String() string {
	switch k {
	case KindPolygon:
		return "polygon"
	case KindArch:
		return "arch"
	default:
		return "unknown"
	}
}

// Spec is a declarative description of a factory-built profile.
type Spec struct {
	Kind     Kind    `json:"kind"`
	Sides    int     `json:"sides,omitempty"`    // polygon only
	Segments int     `json:"segments,omitempty"` // arch only
	Angle    float64 `json:"angle,omitempty"`    // arch only, degrees
	Closed   bool    `json:"closed,omitempty"`   // arch only
}

// DefaultArch is the arch used when a design asks for one without
// parameters.
var DefaultArch = Spec{Kind: KindArch, Segments: 5, Angle: 260, Closed: true}

// Build runs the factory the spec describes.
func (s Spec) Build() (*Profile, error) {
	switch s.Kind {
	case KindPolygon:
		return NewPolygon(s.Sides), nil
	case KindArch:
		return NewArch(s.Segments, s.Angle, s.Closed), nil
	}
	return nil, fmt.Errorf("profile: unknown kind %d", int(s.Kind))
}

func (s Spec) String() string {
	if s.Kind == KindArch {
		return fmt.Sprintf("arch(%d, %g°, closed=%t)", s.Segments, s.Angle, s.Closed)
	}
	return fmt.Sprintf("%s(%d)", s.Kind, s.Sides)
}
