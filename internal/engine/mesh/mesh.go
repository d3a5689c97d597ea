package mesh

import (
	"github.com/Faultbox/glsandbox/internal/engine/gpu"
	"github.com/Faultbox/glsandbox/internal/engine/shader"
	"github.com/Faultbox/glsandbox/internal/engine/texture"
)

// Role is what a texture map is used for.
type Role int

// Texture roles.
const (
	Diffuse Role = iota
	Specular
	Normal
	Height
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case Diffuse:
		return "diffuse"
	case Specular:
		return "specular"
	case Normal:
		return "normal"
	case Height:
		return "height"
	default:
		return "unknown"
	}
}

// TextureRef binds a texture to a role.
type TextureRef struct {
	Role    Role
	Texture *texture.Texture
}

// DefaultShininess is the specular exponent used when a material sets none.
const DefaultShininess = 32

// Material is the set of maps sampled by the lit program.
// Nil maps leave the matching has_* flag false.
type Material struct {
	Diffuse   *texture.Texture
	Specular  *texture.Texture
	Normal    *texture.Texture
	Shininess float32
}

// MaterialFrom picks the first texture of each role.
func MaterialFrom(refs []TextureRef) Material {
	m := Material{Shininess: DefaultShininess}
	for _, r := range refs {
		switch {
		case r.Role == Diffuse && m.Diffuse == nil:
			m.Diffuse = r.Texture
		case r.Role == Specular && m.Specular == nil:
			m.Specular = r.Texture
		case r.Role == Normal && m.Normal == nil:
			m.Normal = r.Texture
		}
	}
	return m
}

// HasDiffuseMap reports whether a diffuse map is bound.
func (m Material) HasDiffuseMap() bool { return m.Diffuse != nil }

// HasSpecularMap reports whether a specular map is bound.
func (m Material) HasSpecularMap() bool { return m.Specular != nil }

// HasNormalMap reports whether a normal map is bound.
func (m Material) HasNormalMap() bool { return m.Normal != nil }

// HasAlpha reports whether the diffuse map carries alpha.
func (m Material) HasAlpha() bool { return m.Diffuse != nil && m.Diffuse.HasAlpha() }

// Texture units used by material maps.
const (
	UnitDiffuse  = 0
	UnitSpecular = 1
	UnitNormal   = 2
)

// Bind binds the maps to their units and uploads the u_material uniforms.
// The program must be in use.
func (m Material) Bind(dev gpu.Device, prog *shader.Program) {
	bind := func(t *texture.Texture, unit uint32) {
		if t != nil {
			t.Bind(dev, unit)
		}
	}
	bind(m.Diffuse, UnitDiffuse)
	bind(m.Specular, UnitSpecular)
	bind(m.Normal, UnitNormal)

	shininess := m.Shininess
	if shininess <= 0 {
		shininess = DefaultShininess
	}

	prog.SetInt("u_material.diffuse", UnitDiffuse)
	prog.SetInt("u_material.specular", UnitSpecular)
	prog.SetInt("u_material.normal", UnitNormal)
	prog.SetFloat("u_material.shininess", shininess)
	prog.SetBool("u_material.has_diffuse", m.HasDiffuseMap())
	prog.SetBool("u_material.has_specular", m.HasSpecularMap())
	prog.SetBool("u_material.has_normal", m.HasNormalMap())
}

// Mesh is an indexed vertex array on the GPU.
type Mesh struct {
	VAO         uint32
	VBO         uint32
	EBO         uint32
	IndexCount  int32
	VertexCount int
	Textures    []TextureRef
	Material    Material
}

// New uploads vertices and indices once and records the texture set.
func New(dev gpu.Device, vertices []Vertex, indices []uint32, textures []TextureRef) *Mesh {
	m := &Mesh{
		IndexCount:  int32(len(indices)),
		VertexCount: len(vertices),
		Textures:    textures,
		Material:    MaterialFrom(textures),
	}

	m.VAO = dev.CreateVertexArray()
	dev.BindVertexArray(m.VAO)

	m.VBO = dev.CreateBuffer()
	dev.BufferFloats(gpu.ArrayBuffer, m.VBO, Flatten(vertices), gpu.StaticDraw)
	dev.VertexAttrib(AttribPosition, 3, VertexStride, 0)
	dev.VertexAttrib(AttribNormal, 3, VertexStride, 3*4)
	dev.VertexAttrib(AttribUV, 2, VertexStride, 6*4)
	dev.VertexAttrib(AttribTangent, 3, VertexStride, 8*4)
	dev.VertexAttrib(AttribBitangent, 3, VertexStride, 11*4)

	m.EBO = dev.CreateBuffer()
	dev.BufferIndices(m.EBO, indices, gpu.StaticDraw)

	dev.BindVertexArray(0)
	return m
}

// EnableInstancing binds a buffer of mat4 per-instance model matrices to
// attributes 3-6, advancing once per instance.
func (m *Mesh) EnableInstancing(dev gpu.Device, buffer uint32) {
	const mat4Size = 16 * 4

	dev.BindVertexArray(m.VAO)
	dev.BindBuffer(gpu.ArrayBuffer, buffer)
	for col := 0; col < 4; col++ {
		loc := uint32(AttribInstance + col)
		dev.VertexAttrib(loc, 4, mat4Size, col*4*4)
		dev.VertexAttribDivisor(loc, 1)
	}
	dev.BindVertexArray(0)
}

// Draw issues one indexed draw.
func (m *Mesh) Draw(dev gpu.Device) {
	dev.BindVertexArray(m.VAO)
	dev.DrawElements(m.IndexCount)
	dev.BindVertexArray(0)
}

// DrawInstanced issues one instanced draw of count instances.
func (m *Mesh) DrawInstanced(dev gpu.Device, count int32) {
	dev.BindVertexArray(m.VAO)
	dev.DrawElementsInstanced(m.IndexCount, count)
	dev.BindVertexArray(0)
}

// Destroy deletes the vertex array and buffers. Textures belong to the
// texture cache and are left alone.
func (m *Mesh) Destroy(dev gpu.Device) {
	if m.VAO == 0 {
		return
	}
	dev.DeleteVertexArray(m.VAO)
	dev.DeleteBuffer(m.VBO)
	dev.DeleteBuffer(m.EBO)
	m.VAO, m.VBO, m.EBO = 0, 0, 0
}

// Model is a set of meshes loaded from one file.
type Model struct {
	Path   string
	Meshes []*Mesh
	Bounds Bounds
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Draw draws every mesh with its own material.
func (m *Model) Draw(dev gpu.Device, prog *shader.Program) {
	for _, mesh := range m.Meshes {
		mesh.Material.Bind(dev, prog)
		mesh.Draw(dev)
	}
}

// DrawInstanced draws every mesh count times.
func (m *Model) DrawInstanced(dev gpu.Device, prog *shader.Program, count int32) {
	for _, mesh := range m.Meshes {
		mesh.Material.Bind(dev, prog)
		mesh.DrawInstanced(dev, count)
	}
}

// EnableInstancing attaches the instance buffer to every mesh.
func (m *Model) EnableInstancing(dev gpu.Device, buffer uint32) {
	for _, mesh := range m.Meshes {
		mesh.EnableInstancing(dev, buffer)
	}
}

// Destroy destroys every mesh.
func (m *Model) Destroy(dev gpu.Device) {
	for _, mesh := range m.Meshes {
		mesh.Destroy(dev)
	}
}
