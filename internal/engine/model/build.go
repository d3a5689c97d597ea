// Package model builds GPU meshes from Wavefront OBJ files.
package model

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/glsandbox/internal/engine/mesh"
	"github.com/Faultbox/glsandbox/pkg/formats"
)

// Part is the geometry of one material group, ready for upload.
type Part struct {
	Material string
	Vertices []mesh.Vertex
	Indices  []uint32
}

// Build converts parsed OBJ groups into indexed parts. Vertices are shared
// when they reference the same position, UV and normal. Missing normals
// are generated from faces and smoothed, and tangents are always computed.
func Build(obj *formats.OBJ) ([]Part, mesh.Bounds) {
	bounds := mesh.Bounds{
		Min: [3]float32{1e10, 1e10, 1e10},
		Max: [3]float32{-1e10, -1e10, -1e10},
	}

	var parts []Part
	for _, g := range obj.Groups {
		part := Part{Material: g.Material}
		seen := make(map[formats.OBJIndex]uint32)
		generated := false

		for _, face := range g.Faces {
			// Face normal for corners without one
			p0 := mgl32.Vec3(obj.Positions[face[0].V])
			p1 := mgl32.Vec3(obj.Positions[face[1].V])
			p2 := mgl32.Vec3(obj.Positions[face[2].V])
			faceNormal := p1.Sub(p0).Cross(p2.Sub(p0))
			if faceNormal.Len() < 1e-10 {
				continue
			}
			faceNormal = faceNormal.Normalize()

			for _, ix := range face {
				if ix.VN < 0 {
					// Generated normals differ per face, so never share
					generated = true
					part.Indices = append(part.Indices, uint32(len(part.Vertices)))
					part.Vertices = append(part.Vertices, vertexOf(obj, ix, faceNormal))
					continue
				}
				if idx, ok := seen[ix]; ok {
					part.Indices = append(part.Indices, idx)
					continue
				}
				idx := uint32(len(part.Vertices))
				seen[ix] = idx
				part.Indices = append(part.Indices, idx)
				part.Vertices = append(part.Vertices, vertexOf(obj, ix, faceNormal))
			}
		}

		if len(part.Indices) == 0 {
			continue
		}
		if generated {
			SmoothNormals(part.Vertices)
		}
		mesh.ComputeTangents(part.Vertices, part.Indices)
		for _, v := range part.Vertices {
			updateBounds(&bounds, v.Position)
		}
		parts = append(parts, part)
	}

	if len(parts) == 0 {
		bounds = mesh.Bounds{}
	}
	return parts, bounds
}

func vertexOf(obj *formats.OBJ, ix formats.OBJIndex, faceNormal mgl32.Vec3) mesh.Vertex {
	v := mesh.Vertex{
		Position: mgl32.Vec3(obj.Positions[ix.V]),
		Normal:   faceNormal,
	}
	if ix.VT >= 0 {
		v.UV = mgl32.Vec2(obj.TexCoords[ix.VT])
	}
	if ix.VN >= 0 {
		if n := mgl32.Vec3(obj.Normals[ix.VN]); n.Len() > 0 {
			v.Normal = n.Normalize()
		}
	}
	return v
}

// SmoothNormals averages normals at shared vertex positions.
// This reduces faceted appearance on models without normals.
func SmoothNormals(vertices []mesh.Vertex) {
	const epsilon float32 = 0.001

	// Group vertices by quantized position for O(n) lookup
	posMap := make(map[[3]int32][]int)
	for i := range vertices {
		key := [3]int32{
			int32(vertices[i].Position[0] / epsilon),
			int32(vertices[i].Position[1] / epsilon),
			int32(vertices[i].Position[2] / epsilon),
		}
		posMap[key] = append(posMap[key], i)
	}

	for _, idxs := range posMap {
		if len(idxs) < 2 {
			continue
		}

		var sum mgl32.Vec3
		for _, idx := range idxs {
			sum = sum.Add(vertices[idx].Normal)
		}
		if sum.Len() < 1e-6 {
			continue
		}
		avg := sum.Normalize()

		for _, idx := range idxs {
			vertices[idx].Normal = avg
		}
	}
}

func updateBounds(b *mesh.Bounds, p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}
