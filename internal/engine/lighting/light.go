// Package lighting describes scene lights and uploads them to the lit programs.
package lighting

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// Kind is the type of a light.
type Kind int

// Light kinds.
const (
	Directional Kind = iota
	Point
	Spot
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Directional:
		return "Directional"
	case Point:
		return "Point"
	case Spot:
		return "Spot"
	default:
		return "Unknown"
	}
}

// Spatial is the placement and color shared by every light.
type Spatial struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
}

// Attenuation is the distance falloff 1 / (c + l*d + q*d²).
type Attenuation struct {
	Constant  float32
	Linear    float32
	Quadratic float32
}

// DefaultAttenuation covers roughly 50 units.
var DefaultAttenuation = Attenuation{Constant: 1.0, Linear: 0.09, Quadratic: 0.032}

// Spot cone defaults, as cosines of the half angles.
var (
	DefaultCutOff      = cosDeg(12.5)
	DefaultOuterCutOff = cosDeg(15.0)
)

// Light is one light source. Direction applies to directional and spot
// lights, Attenuation to point and spot lights, and the cutoffs to spot
// lights only.
type Light struct {
	Kind Kind
	Spatial

	AmbientStrength  float32
	SpecularStrength float32

	Direction   mgl32.Vec3
	Attenuation Attenuation
	CutOff      float32 // cosine
	OuterCutOff float32 // cosine
}

// NewDirectional creates a directional light shining along dir.
func NewDirectional(dir, color mgl32.Vec3) Light {
	return Light{
		Kind:             Directional,
		Spatial:          Spatial{Color: color},
		AmbientStrength:  0.1,
		SpecularStrength: 0.5,
		Direction:        dir.Normalize(),
	}
}

// NewPoint creates a point light with the default attenuation.
func NewPoint(pos, color mgl32.Vec3) Light {
	return Light{
		Kind:             Point,
		Spatial:          Spatial{Position: pos, Color: color},
		AmbientStrength:  0.05,
		SpecularStrength: 1.0,
		Attenuation:      DefaultAttenuation,
	}
}

// NewSpot creates a spot light with the default cone and attenuation.
// Its position and direction follow the camera when broadcast.
func NewSpot(color mgl32.Vec3) Light {
	return Light{
		Kind:             Spot,
		Spatial:          Spatial{Color: color},
		AmbientStrength:  0,
		SpecularStrength: 1.0,
		Direction:        mgl32.Vec3{0, 0, -1},
		Attenuation:      DefaultAttenuation,
		CutOff:           DefaultCutOff,
		OuterCutOff:      DefaultOuterCutOff,
	}
}

// Ambient returns the ambient term color.
func (l Light) Ambient() mgl32.Vec3 { return l.Color.Mul(l.AmbientStrength) }

// Diffuse returns the diffuse term color.
func (l Light) Diffuse() mgl32.Vec3 { return l.Color }

// Specular returns the specular term color.
func (l Light) Specular() mgl32.Vec3 { return l.Color.Mul(l.SpecularStrength) }

func cosDeg(deg float64) float32 {
	return float32(gomath.Cos(deg * gomath.Pi / 180))
}
