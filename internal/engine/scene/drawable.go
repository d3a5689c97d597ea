package scene

import (
	"github.com/Faultbox/glsandbox/internal/engine/gpu"
	"github.com/Faultbox/glsandbox/internal/engine/mesh"
	"github.com/Faultbox/glsandbox/internal/engine/shader"
)

// Drawable issues the draw calls for one entity. The program is in use and
// the per-entity uniforms are already set.
type Drawable interface {
	Draw(dev gpu.Device, prog *shader.Program)
	Destroy(dev gpu.Device)
	HasAlpha() bool
}

// Primitive is untextured built-in geometry colored by u_entity_color.
type Primitive struct {
	Mesh *mesh.Mesh
}

func (p Primitive) Draw(dev gpu.Device, prog *shader.Program) {
	mesh.Material{}.Bind(dev, prog)
	p.Mesh.Draw(dev)
}

func (p Primitive) Destroy(dev gpu.Device) { p.Mesh.Destroy(dev) }
func (p Primitive) HasAlpha() bool          { return false }

// MeshDrawable is a single mesh drawn with its material.
type MeshDrawable struct {
	Mesh *mesh.Mesh
}

func (m MeshDrawable) Draw(dev gpu.Device, prog *shader.Program) {
	m.Mesh.Material.Bind(dev, prog)
	m.Mesh.Draw(dev)
}

func (m MeshDrawable) Destroy(dev gpu.Device) { m.Mesh.Destroy(dev) }
func (m MeshDrawable) HasAlpha() bool          { return m.Mesh.Material.HasAlpha() }

// ModelDrawable is a loaded model, each mesh drawn with its own material.
type ModelDrawable struct {
	Model *mesh.Model
}

func (m ModelDrawable) Draw(dev gpu.Device, prog *shader.Program) {
	m.Model.Draw(dev, prog)
}

func (m ModelDrawable) Destroy(dev gpu.Device) { m.Model.Destroy(dev) }

func (m ModelDrawable) HasAlpha() bool {
	for _, msh := range m.Model.Meshes {
		if msh.Material.HasAlpha() {
			return true
		}
	}
	return false
}

var (
	_ Drawable = Primitive{}
	_ Drawable = MeshDrawable{}
	_ Drawable = ModelDrawable{}
)
