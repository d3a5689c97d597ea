package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Kind tags what an entity draws.
type Kind int

// Entity kinds.
const (
	Triangle Kind = iota
	Quad
	Cube
	MeshCube
	MeshQuad
	Model
)

// String returns the kind name used in outline style configuration.
func (k Kind) String() string {
	switch k {
	case Triangle:
		return "triangle"
	case Quad:
		return "quad"
	case Cube:
		return "cube"
	case MeshCube:
		return "mesh-cube"
	case MeshQuad:
		return "mesh-quad"
	case Model:
		return "model"
	default:
		return "unknown"
	}
}

// IsPrimitive reports whether the kind is untextured built-in geometry.
func (k Kind) IsPrimitive() bool {
	return k == Triangle || k == Quad || k == Cube
}

// Entity is a drawable object placed in the scene.
type Entity struct {
	ID   uuid.UUID
	Name string
	Kind Kind

	Position mgl32.Vec3
	Scale    mgl32.Vec3
	Rotation [4]float32 // angle in degrees, then axis
	Color    mgl32.Vec4

	Selected    bool
	Transparent bool

	Drawable Drawable
}

// NewEntity creates an entity at the origin with unit scale, no rotation and
// an opaque white color.
func NewEntity(name string, kind Kind, d Drawable) Entity {
	e := Entity{
		ID:       uuid.New(),
		Name:     name,
		Kind:     kind,
		Scale:    mgl32.Vec3{1, 1, 1},
		Rotation: [4]float32{0, 0, 1, 0},
		Color:    mgl32.Vec4{1, 1, 1, 1},
		Drawable: d,
	}
	if d != nil {
		e.Transparent = d.HasAlpha()
	}
	return e
}

// ModelMatrix returns the entity's model matrix.
func (e *Entity) ModelMatrix() mgl32.Mat4 {
	return ModelMatrix(e.Position, e.Scale, e.Rotation)
}

// ModelMatrix composes translate(pos) * scale(scale) * rotate(angle, axis).
// A zero axis yields no rotation.
func ModelMatrix(pos, scale mgl32.Vec3, rotation [4]float32) mgl32.Mat4 {
	m := mgl32.Translate3D(pos[0], pos[1], pos[2])
	m = m.Mul4(mgl32.Scale3D(scale[0], scale[1], scale[2]))

	axis := mgl32.Vec3{rotation[1], rotation[2], rotation[3]}
	if axis.Len() == 0 || rotation[0] == 0 {
		return m
	}
	return m.Mul4(mgl32.HomogRotate3D(mgl32.DegToRad(rotation[0]), axis.Normalize()))
}
