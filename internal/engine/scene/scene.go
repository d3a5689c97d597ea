// Package scene holds the objects the renderer draws: entities, lights, the
// skybox and the instanced asteroid batch.
package scene

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/Faultbox/glsandbox/internal/engine/gpu"
	"github.com/Faultbox/glsandbox/internal/engine/lighting"
	"github.com/Faultbox/glsandbox/internal/engine/mesh"
	"github.com/Faultbox/glsandbox/internal/engine/shader"
	"github.com/Faultbox/glsandbox/internal/engine/texture"
)

// Light is a named scene light.
type Light struct {
	ID   uuid.UUID
	Name string
	lighting.Light
}

// NewLight wraps l with a fresh ID.
func NewLight(name string, l lighting.Light) Light {
	return Light{ID: uuid.New(), Name: name, Light: l}
}

// Skybox is a cubemap drawn on a unit cube around the camera.
type Skybox struct {
	Cubemap *texture.Texture
	Cube    *mesh.Mesh
}

// NewSkybox builds the skybox cube for cubemap.
func NewSkybox(dev gpu.Device, cubemap *texture.Texture) *Skybox {
	vertices, indices := mesh.Cube()
	return &Skybox{
		Cubemap: cubemap,
		Cube:    mesh.New(dev, vertices, indices, nil),
	}
}

// Draw binds the cubemap to unit 0 and draws the cube.
func (s *Skybox) Draw(dev gpu.Device, prog *shader.Program) {
	s.Cubemap.Bind(dev, 0)
	prog.SetInt("u_skybox", 0)
	s.Cube.Draw(dev)
}

// Destroy deletes the cube. The cubemap belongs to the texture cache.
func (s *Skybox) Destroy(dev gpu.Device) {
	s.Cube.Destroy(dev)
}

// Scene is the ordered set of things to draw.
type Scene struct {
	Entities  []Entity
	Lights    []Light
	Skybox    *Skybox
	Instances *InstanceBatch
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{}
}

// AddEntity appends e and returns its ID.
func (s *Scene) AddEntity(e Entity) uuid.UUID {
	s.Entities = append(s.Entities, e)
	return e.ID
}

// AddLight appends l and returns its ID.
func (s *Scene) AddLight(l Light) uuid.UUID {
	s.Lights = append(s.Lights, l)
	return l.ID
}

// Entity returns the entity with id.
func (s *Scene) Entity(id uuid.UUID) (*Entity, bool) {
	for i := range s.Entities {
		if s.Entities[i].ID == id {
			return &s.Entities[i], true
		}
	}
	return nil, false
}

// LightSources returns the lights in scene order.
func (s *Scene) LightSources() []lighting.Light {
	out := make([]lighting.Light, len(s.Lights))
	for i, l := range s.Lights {
		out[i] = l.Light
	}
	return out
}

// DrawOrder returns entity indices to draw: opaque entities in scene order,
// then transparent entities from farthest to nearest to eye. Entities at
// equal distance keep scene order.
func (s *Scene) DrawOrder(eye mgl32.Vec3) []int {
	order := make([]int, 0, len(s.Entities))
	var transparent []int
	for i := range s.Entities {
		if s.Entities[i].Transparent {
			transparent = append(transparent, i)
			continue
		}
		order = append(order, i)
	}

	dist := func(i int) float32 {
		return s.Entities[i].Position.Sub(eye).LenSqr()
	}
	slices.SortStableFunc(transparent, func(a, b int) int {
		da, db := dist(a), dist(b)
		switch {
		case da > db:
			return -1
		case da < db:
			return 1
		}
		return 0
	})

	return append(order, transparent...)
}

// Destroy releases GPU resources owned by the scene. Drawables shared by
// several entities are destroyed once.
func (s *Scene) Destroy(dev gpu.Device) {
	seen := make(map[Drawable]bool)
	release := func(d Drawable) {
		if d == nil || seen[d] {
			return
		}
		seen[d] = true
		d.Destroy(dev)
	}

	for _, e := range s.Entities {
		release(e.Drawable)
	}
	if s.Instances != nil {
		release(ModelDrawable{Model: s.Instances.Model})
		s.Instances.Destroy(dev)
	}
	if s.Skybox != nil {
		s.Skybox.Destroy(dev)
	}
}
