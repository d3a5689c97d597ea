package mesh

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/glsandbox/internal/engine/gpu"
	"github.com/Faultbox/glsandbox/internal/engine/gpu/gputest"
	"github.com/Faultbox/glsandbox/internal/engine/shader"
	"github.com/Faultbox/glsandbox/internal/engine/texture"
)

const eps = 1e-5

func TestFlattenLayout(t *testing.T) {
	v := Vertex{
		Position:  mgl32.Vec3{1, 2, 3},
		Normal:    mgl32.Vec3{4, 5, 6},
		UV:        mgl32.Vec2{7, 8},
		Tangent:   mgl32.Vec3{9, 10, 11},
		Bitangent: mgl32.Vec3{12, 13, 14},
	}
	got := Flatten([]Vertex{v, v})
	if len(got) != 2*VertexFloats {
		t.Fatalf("len = %d, want %d", len(got), 2*VertexFloats)
	}
	for i := 0; i < VertexFloats; i++ {
		if got[i] != float32(i+1) || got[VertexFloats+i] != float32(i+1) {
			t.Fatalf("Flatten()[%d] = %v, want %d", i, got[i], i+1)
		}
	}
}

func TestCubeGeometry(t *testing.T) {
	vertices, indices := Cube()
	if len(vertices) != 24 || len(indices) != 36 {
		t.Fatalf("Cube() = %d vertices, %d indices; want 24, 36", len(vertices), len(indices))
	}

	for i, v := range vertices {
		for axis := 0; axis < 3; axis++ {
			if c := v.Position[axis]; c != 0.5 && c != -0.5 {
				t.Errorf("vertex %d position %v not on unit cube", i, v.Position)
			}
		}
		// The normal points out through the face the vertex lies on
		if d := v.Position.Dot(v.Normal); d < 0.5-eps || d > 0.5+eps {
			t.Errorf("vertex %d: position·normal = %f, want 0.5", i, d)
		}
		if n := v.Tangent.Cross(v.Bitangent); !vecNear(n, v.Normal, eps) {
			t.Errorf("vertex %d: tangent × bitangent = %v, want normal %v", i, n, v.Normal)
		}
	}

	// Counter-clockwise from outside: the winding normal agrees with the face normal
	for i := 0; i < len(indices); i += 3 {
		a, b, c := vertices[indices[i]], vertices[indices[i+1]], vertices[indices[i+2]]
		winding := b.Position.Sub(a.Position).Cross(c.Position.Sub(a.Position))
		if winding.Dot(a.Normal) <= 0 {
			t.Errorf("triangle %d winds clockwise", i/3)
		}
	}
}

func TestQuadAndTriangleFaceZ(t *testing.T) {
	tests := []struct {
		name string
		gen  func() ([]Vertex, []uint32)
		half float32
	}{
		{"triangle", Triangle, 0.5},
		{"quad", Quad, 0.5},
		{"screen", ScreenQuad, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vertices, indices := tt.gen()
			for _, v := range vertices {
				if !vecNear(v.Normal, mgl32.Vec3{0, 0, 1}, eps) {
					t.Errorf("normal = %v, want +Z", v.Normal)
				}
				if v.Position[2] != 0 {
					t.Errorf("z = %f, want 0", v.Position[2])
				}
				if v.Position[0] < -tt.half || v.Position[0] > tt.half {
					t.Errorf("x = %f outside ±%f", v.Position[0], tt.half)
				}
			}
			if len(indices)%3 != 0 {
				t.Errorf("len(indices) = %d, not a multiple of 3", len(indices))
			}
		})
	}
}

func TestComputeTangents(t *testing.T) {
	vertices, indices := Quad()
	for i := range vertices {
		vertices[i].Tangent = mgl32.Vec3{}
		vertices[i].Bitangent = mgl32.Vec3{}
	}

	ComputeTangents(vertices, indices)

	for i, v := range vertices {
		if !vecNear(v.Tangent, mgl32.Vec3{1, 0, 0}, eps) {
			t.Errorf("vertex %d tangent = %v, want +X", i, v.Tangent)
		}
		if !vecNear(v.Bitangent, mgl32.Vec3{0, 1, 0}, eps) {
			t.Errorf("vertex %d bitangent = %v, want +Y", i, v.Bitangent)
		}
	}
}

func TestComputeTangentsDegenerateUV(t *testing.T) {
	vertices, indices := Triangle()
	for i := range vertices {
		vertices[i].UV = mgl32.Vec2{}
		vertices[i].Tangent = mgl32.Vec3{}
	}
	ComputeTangents(vertices, append(indices, 7, 8, 9))

	for i, v := range vertices {
		if v.Tangent != (mgl32.Vec3{}) {
			t.Errorf("vertex %d tangent = %v, want zero for degenerate UVs", i, v.Tangent)
		}
	}
}

func TestNewUploadsOnce(t *testing.T) {
	dev := gputest.New()
	vertices, indices := Cube()

	m := New(dev, vertices, indices, nil)

	if m.IndexCount != 36 {
		t.Errorf("IndexCount = %d, want 36", m.IndexCount)
	}
	vbo := dev.Buffers[m.VBO]
	if vbo.Uploads != 1 || len(vbo.Floats) != 24*VertexFloats {
		t.Errorf("vbo uploads = %d floats = %d", vbo.Uploads, len(vbo.Floats))
	}
	if ebo := dev.Buffers[m.EBO]; ebo.Uploads != 1 || len(ebo.Indices) != 36 {
		t.Errorf("ebo uploads = %d indices = %d", ebo.Uploads, len(ebo.Indices))
	}

	want := map[uint32]struct {
		size   int32
		offset int
	}{
		AttribPosition:  {3, 0},
		AttribNormal:    {3, 12},
		AttribUV:        {2, 24},
		AttribTangent:   {3, 32},
		AttribBitangent: {3, 44},
	}
	attrs := dev.VAOs[m.VAO]
	if len(attrs) != len(want) {
		t.Fatalf("attributes = %d, want %d", len(attrs), len(want))
	}
	for _, a := range attrs {
		w, ok := want[a.Index]
		if !ok {
			t.Errorf("unexpected attribute %d", a.Index)
			continue
		}
		if a.Size != w.size || a.Offset != w.offset || a.Stride != VertexStride || a.Buffer != m.VBO {
			t.Errorf("attribute %d = %+v", a.Index, a)
		}
	}

	for i := 0; i < 3; i++ {
		m.Draw(dev)
	}
	if dev.Buffers[m.VBO].Uploads != 1 {
		t.Error("drawing must not re-upload vertices")
	}
	if len(dev.Draws) != 3 || dev.Draws[0].VAO != m.VAO || dev.Draws[0].Count != 36 {
		t.Errorf("draws = %+v", dev.Draws)
	}
}

func TestEnableInstancing(t *testing.T) {
	dev := gputest.New()
	vertices, indices := Cube()
	m := New(dev, vertices, indices, nil)

	buf := dev.CreateBuffer()
	dev.BufferFloats(gpu.ArrayBuffer, buf, make([]float32, 16*10), gpu.StaticDraw)
	m.EnableInstancing(dev, buf)

	found := 0
	for _, a := range dev.VAOs[m.VAO] {
		if a.Index < AttribInstance || a.Index > AttribInstance+3 {
			continue
		}
		found++
		col := int(a.Index - AttribInstance)
		if a.Size != 4 || a.Stride != 64 || a.Offset != col*16 || a.Divisor != 1 || a.Buffer != buf {
			t.Errorf("instance attribute %d = %+v", a.Index, a)
		}
	}
	if found != 4 {
		t.Errorf("instance attributes = %d, want 4", found)
	}

	m.DrawInstanced(dev, 10)
	d := dev.Draws[len(dev.Draws)-1]
	if d.Kind != gputest.DrawInstanced || d.Instances != 10 {
		t.Errorf("draw = %+v, want 10 instances", d)
	}
}

func TestMaterialBind(t *testing.T) {
	diffuse := &texture.Texture{ID: 11, Target: gpu.Texture2D, Channels: 4}
	normal := &texture.Texture{ID: 13, Target: gpu.Texture2D, Channels: 3}
	refs := []TextureRef{
		{Role: Diffuse, Texture: diffuse},
		{Role: Diffuse, Texture: &texture.Texture{ID: 99}},
		{Role: Normal, Texture: normal},
		{Role: Height, Texture: &texture.Texture{ID: 14}},
	}
	mat := MaterialFrom(refs)

	if mat.Diffuse != diffuse {
		t.Error("first diffuse texture should win")
	}
	if !mat.HasDiffuseMap() || mat.HasSpecularMap() || !mat.HasNormalMap() {
		t.Errorf("flags = %v %v %v", mat.HasDiffuseMap(), mat.HasSpecularMap(), mat.HasNormalMap())
	}
	if !mat.HasAlpha() {
		t.Error("RGBA diffuse should report alpha")
	}

	dev := gputest.New()
	prog, _ := shader.Compile(dev, "main", "vs", "fs")
	prog.Use()
	mat.Bind(dev, prog)

	tests := []struct {
		name string
		want any
	}{
		{"u_material.diffuse", int32(UnitDiffuse)},
		{"u_material.specular", int32(UnitSpecular)},
		{"u_material.normal", int32(UnitNormal)},
		{"u_material.shininess", float32(DefaultShininess)},
		{"u_material.has_diffuse", int32(1)},
		{"u_material.has_specular", int32(0)},
		{"u_material.has_normal", int32(1)},
	}
	for _, tt := range tests {
		if got, _ := dev.Uniform(prog.ID, tt.name); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}

	dev.DrawElements(3)
	tex := dev.Draws[0].Textures
	if tex[UnitDiffuse] != 11 || tex[UnitNormal] != 13 {
		t.Errorf("bound textures = %v", tex)
	}
}

func TestDestroy(t *testing.T) {
	dev := gputest.New()
	vertices, indices := Quad()
	tex := &texture.Texture{ID: dev.CreateTexture()}
	m := New(dev, vertices, indices, []TextureRef{{Role: Diffuse, Texture: tex}})
	vao, vbo, ebo := m.VAO, m.VBO, m.EBO

	model := &Model{Meshes: []*Mesh{m}}
	model.Destroy(dev)
	model.Destroy(dev)

	if _, ok := dev.VAOs[vao]; ok {
		t.Error("VAO not deleted")
	}
	if !dev.Buffers[vbo].Deleted || !dev.Buffers[ebo].Deleted {
		t.Error("buffers not deleted")
	}
	if dev.Textures[tex.ID].Deleted {
		t.Error("mesh must not delete cache-owned textures")
	}
}

func TestRoleString(t *testing.T) {
	for role, want := range map[Role]string{Diffuse: "diffuse", Specular: "specular", Normal: "normal", Height: "height", Role(9): "unknown"} {
		if got := role.String(); got != want {
			t.Errorf("Role(%d).String() = %q, want %q", role, got, want)
		}
	}
}

// vecNear compares with an absolute tolerance per component.
func vecNear(a, b mgl32.Vec3, tol float32) bool {
	return a.Sub(b).Len() < tol
}
