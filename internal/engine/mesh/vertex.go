// Package mesh holds GPU-resident geometry and its material bindings.
package mesh

import "github.com/go-gl/mathgl/mgl32"

// Vertex attribute locations shared by every program.
// Locations 3-6 hold the per-instance model matrix.
const (
	AttribPosition  = 0
	AttribNormal    = 1
	AttribUV        = 2
	AttribInstance  = 3
	AttribTangent   = 7
	AttribBitangent = 8
)

// VertexFloats is the number of floats per interleaved vertex.
const VertexFloats = 14

// VertexStride is the interleaved vertex size in bytes.
const VertexStride = VertexFloats * 4

// Vertex is one interleaved mesh vertex.
type Vertex struct {
	Position  mgl32.Vec3
	Normal    mgl32.Vec3
	UV        mgl32.Vec2
	Tangent   mgl32.Vec3
	Bitangent mgl32.Vec3
}

// Flatten interleaves vertices into the layout described by the Attrib constants.
func Flatten(vertices []Vertex) []float32 {
	out := make([]float32, 0, len(vertices)*VertexFloats)
	for _, v := range vertices {
		out = append(out, v.Position[:]...)
		out = append(out, v.Normal[:]...)
		out = append(out, v.UV[:]...)
		out = append(out, v.Tangent[:]...)
		out = append(out, v.Bitangent[:]...)
	}
	return out
}

// ComputeTangents fills tangents and bitangents from positions and UVs.
// Contributions of triangles sharing a vertex are summed, then
// orthogonalized against the vertex normal.
func ComputeTangents(vertices []Vertex, indices []uint32) {
	tan := make([]mgl32.Vec3, len(vertices))
	bitan := make([]mgl32.Vec3, len(vertices))

	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		if int(i0) >= len(vertices) || int(i1) >= len(vertices) || int(i2) >= len(vertices) {
			continue
		}
		v0, v1, v2 := vertices[i0], vertices[i1], vertices[i2]

		e1 := v1.Position.Sub(v0.Position)
		e2 := v2.Position.Sub(v0.Position)
		du1, dv1 := v1.UV[0]-v0.UV[0], v1.UV[1]-v0.UV[1]
		du2, dv2 := v2.UV[0]-v0.UV[0], v2.UV[1]-v0.UV[1]

		det := du1*dv2 - du2*dv1
		if det > -1e-8 && det < 1e-8 {
			continue
		}
		f := 1 / det
		t := e1.Mul(dv2).Sub(e2.Mul(dv1)).Mul(f)
		b := e2.Mul(du1).Sub(e1.Mul(du2)).Mul(f)

		for _, idx := range [3]uint32{i0, i1, i2} {
			tan[idx] = tan[idx].Add(t)
			bitan[idx] = bitan[idx].Add(b)
		}
	}

	for i := range vertices {
		n := vertices[i].Normal
		t := tan[i]
		// Gram-Schmidt against the normal
		t = t.Sub(n.Mul(n.Dot(t)))
		if t.Len() < 1e-8 {
			continue
		}
		t = t.Normalize()
		b := n.Cross(t)
		if b.Dot(bitan[i]) < 0 {
			b = b.Mul(-1)
		}
		vertices[i].Tangent = t
		vertices[i].Bitangent = b
	}
}
