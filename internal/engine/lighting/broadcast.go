package lighting

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/glsandbox/internal/engine/shader"
)

// MaxPointLights is the number of point light slots in the lit programs.
const MaxPointLights = 4

// PointLightSet holds point lights for upload, bounded to MaxPointLights.
type PointLightSet struct {
	Lights  []Light
	Dropped int // lights rejected since the last Clear
}

// NewPointLightSet creates an empty point light set.
func NewPointLightSet() *PointLightSet {
	return &PointLightSet{
		Lights: make([]Light, 0, MaxPointLights),
	}
}

// Clear removes all lights from the set.
func (s *PointLightSet) Clear() {
	s.Lights = s.Lights[:0]
	s.Dropped = 0
}

// Add adds a point light to the set.
// Returns false, and counts the light as dropped, if the set is full.
func (s *PointLightSet) Add(l Light) bool {
	if len(s.Lights) >= MaxPointLights {
		s.Dropped++
		return false
	}
	s.Lights = append(s.Lights, l)
	return true
}

// Len returns the number of lights in the set.
func (s *PointLightSet) Len() int {
	return len(s.Lights)
}

// Set is the light state uploaded to a lit program: at most one
// directional light, up to MaxPointLights point lights, and at most one spot.
type Set struct {
	Directional *Light
	Points      *PointLightSet
	Spot        *Light
}

// Collect sorts lights by kind in scene order. The first directional and
// spot lights are used; point lights beyond capacity are dropped.
func Collect(lights []Light) Set {
	s := Set{Points: NewPointLightSet()}
	for i := range lights {
		l := lights[i]
		switch l.Kind {
		case Directional:
			if s.Directional == nil {
				s.Directional = &l
			}
		case Point:
			s.Points.Add(l)
		case Spot:
			if s.Spot == nil {
				s.Spot = &l
			}
		}
	}
	return s
}

// Broadcast uploads the set to prog. The spot light is placed at the
// camera, pointing along its front vector. Absent lights upload black so
// stale values from an earlier frame do not linger.
func (s Set) Broadcast(prog *shader.Program, camPos, camFront mgl32.Vec3) {
	prog.Use()

	var dir Light
	if s.Directional != nil {
		dir = *s.Directional
	}
	prog.SetVec3("u_dir_light.direction", dir.Direction)
	setColors(prog, "u_dir_light", dir)

	n := 0
	if s.Points != nil {
		n = s.Points.Len()
		for i, l := range s.Points.Lights {
			name := fmt.Sprintf("u_point_lights[%d]", i)
			prog.SetVec3(name+".position", l.Position)
			setAttenuation(prog, name, l.Attenuation)
			setColors(prog, name, l)
		}
	}
	prog.SetInt("u_point_light_count", int32(n))

	// An absent spot still gets a non-empty cone so the falloff stays finite.
	spot := Light{CutOff: 1, OuterCutOff: 0}
	if s.Spot != nil {
		spot = *s.Spot
	}
	prog.SetBool("u_spot_light.enabled", s.Spot != nil)
	prog.SetVec3("u_spot_light.position", camPos)
	prog.SetVec3("u_spot_light.direction", camFront)
	prog.SetFloat("u_spot_light.cut_off", spot.CutOff)
	prog.SetFloat("u_spot_light.outer_cut_off", spot.OuterCutOff)
	setAttenuation(prog, "u_spot_light", spot.Attenuation)
	setColors(prog, "u_spot_light", spot)
}

func setColors(prog *shader.Program, name string, l Light) {
	prog.SetVec3(name+".ambient", l.Ambient())
	prog.SetVec3(name+".diffuse", l.Diffuse())
	prog.SetVec3(name+".specular", l.Specular())
}

func setAttenuation(prog *shader.Program, name string, a Attenuation) {
	// A zero constant term would divide by zero in the shader
	if a.Constant == 0 && a.Linear == 0 && a.Quadratic == 0 {
		a.Constant = 1
	}
	prog.SetFloat(name+".constant", a.Constant)
	prog.SetFloat(name+".linear", a.Linear)
	prog.SetFloat(name+".quadratic", a.Quadratic)
}
