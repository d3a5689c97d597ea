package mesh

import "github.com/go-gl/mathgl/mgl32"

// Triangle returns a unit triangle in the XY plane facing +Z.
func Triangle() ([]Vertex, []uint32) {
	n := mgl32.Vec3{0, 0, 1}
	t := mgl32.Vec3{1, 0, 0}
	b := mgl32.Vec3{0, 1, 0}
	return []Vertex{
		{Position: mgl32.Vec3{-0.5, -0.5, 0}, Normal: n, UV: mgl32.Vec2{0, 0}, Tangent: t, Bitangent: b},
		{Position: mgl32.Vec3{0.5, -0.5, 0}, Normal: n, UV: mgl32.Vec2{1, 0}, Tangent: t, Bitangent: b},
		{Position: mgl32.Vec3{0, 0.5, 0}, Normal: n, UV: mgl32.Vec2{0.5, 1}, Tangent: t, Bitangent: b},
	}, []uint32{0, 1, 2}
}

// Quad returns a unit quad in the XY plane facing +Z.
func Quad() ([]Vertex, []uint32) {
	return face(mgl32.Vec3{}, mgl32.Vec3{0.5, 0, 0}, mgl32.Vec3{0, 0.5, 0}), []uint32{0, 1, 2, 2, 3, 0}
}

// ScreenQuad returns a quad covering clip space.
func ScreenQuad() ([]Vertex, []uint32) {
	return face(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}), []uint32{0, 1, 2, 2, 3, 0}
}

// cubeFaces lists the tangent and bitangent of each cube face; the normal is
// their cross product. Order is +X, -X, +Y, -Y, +Z, -Z.
var cubeFaces = [6][2]mgl32.Vec3{
	{{0, 0, -1}, {0, 1, 0}},
	{{0, 0, 1}, {0, 1, 0}},
	{{1, 0, 0}, {0, 0, -1}},
	{{1, 0, 0}, {0, 0, 1}},
	{{1, 0, 0}, {0, 1, 0}},
	{{-1, 0, 0}, {0, 1, 0}},
}

// Cube returns a unit cube centered at the origin with per-face normals,
// UVs and tangents. Faces wind counter-clockwise seen from outside.
func Cube() ([]Vertex, []uint32) {
	vertices := make([]Vertex, 0, 24)
	indices := make([]uint32, 0, 36)

	for _, f := range cubeFaces {
		u, v := f[0], f[1]
		n := u.Cross(v)
		base := uint32(len(vertices))
		vertices = append(vertices, face(n.Mul(0.5), u.Mul(0.5), v.Mul(0.5))...)
		indices = append(indices, base, base+1, base+2, base+2, base+3, base)
	}
	return vertices, indices
}

// face builds the four corners of a rectangle centered at c spanning ±u, ±v.
func face(c, u, v mgl32.Vec3) []Vertex {
	n := u.Cross(v).Normalize()
	t := u.Normalize()
	b := v.Normalize()
	corner := func(su, sv float32, uv mgl32.Vec2) Vertex {
		return Vertex{
			Position:  c.Add(u.Mul(su)).Add(v.Mul(sv)),
			Normal:    n,
			UV:        uv,
			Tangent:   t,
			Bitangent: b,
		}
	}
	return []Vertex{
		corner(-1, -1, mgl32.Vec2{0, 0}),
		corner(1, -1, mgl32.Vec2{1, 0}),
		corner(1, 1, mgl32.Vec2{1, 1}),
		corner(-1, 1, mgl32.Vec2{0, 1}),
	}
}
