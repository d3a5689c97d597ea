// Package gpu abstracts the OpenGL calls used by the engine.
//
// Render passes talk to a Device instead of calling gl.* directly, so the same
// pass code runs against the real context (GL) or a recording fake in tests.
// All Device methods must be called from the thread that owns the GL context.
package gpu

import "github.com/go-gl/mathgl/mgl32"

// Capability is a server-side toggle (glEnable/glDisable).
type Capability uint32

// Capabilities used by the renderer.
const (
	DepthTest Capability = iota + 1
	StencilTest
	CullFace
	Blend
)

// CompareFunc is a depth or stencil comparison function.
type CompareFunc uint32

// Comparison functions.
const (
	Never CompareFunc = iota + 1
	Less
	Equal
	LessEqual
	Greater
	NotEqual
	GreaterEqual
	Always
)

// String returns the GL-style name of the function.
func (f CompareFunc) String() string {
	switch f {
	case Never:
		return "NEVER"
	case Less:
		return "LESS"
	case Equal:
		return "EQUAL"
	case LessEqual:
		return "LEQUAL"
	case Greater:
		return "GREATER"
	case NotEqual:
		return "NOTEQUAL"
	case GreaterEqual:
		return "GEQUAL"
	case Always:
		return "ALWAYS"
	default:
		return "UNKNOWN"
	}
}

// StencilAction is what happens to a stencil value after a test.
type StencilAction uint32

// Stencil actions.
const (
	Keep StencilAction = iota + 1
	Zero
	Replace
)

// BlendFactor is a source or destination blend factor.
type BlendFactor uint32

// Blend factors.
const (
	One BlendFactor = iota + 1
	SrcAlpha
	OneMinusSrcAlpha
)

// ClearMask selects buffers for Clear.
type ClearMask uint32

// Clear bits.
const (
	ColorBuffer ClearMask = 1 << iota
	DepthBuffer
	StencilBuffer
)

// BufferTarget is a buffer binding point.
type BufferTarget uint32

// Buffer targets.
const (
	ArrayBuffer BufferTarget = iota + 1
	ElementArrayBuffer
)

// Usage is a buffer usage hint.
type Usage uint32

// Usage hints.
const (
	StaticDraw Usage = iota + 1
	DynamicDraw
)

// TextureTarget is a texture binding point.
type TextureTarget uint32

// Texture targets.
const (
	Texture2D TextureTarget = iota + 1
	TextureCubeMap
)

// PixelFormat is the channel layout of texture data.
type PixelFormat uint32

// Pixel formats.
const (
	Red PixelFormat = iota + 1
	RGB
	RGBA
)

// Channels returns the number of components per pixel.
func (f PixelFormat) Channels() int {
	switch f {
	case Red:
		return 1
	case RGB:
		return 3
	default:
		return 4
	}
}

// Filter is a texture sampling filter.
type Filter uint32

// Filters.
const (
	Nearest Filter = iota + 1
	Linear
	LinearMipmapLinear
)

// Wrap is a texture coordinate wrap mode.
type Wrap uint32

// Wrap modes.
const (
	Repeat Wrap = iota + 1
	ClampToEdge
)

// TextureParams are the sampling parameters applied to the bound texture.
// Wrap applies to every texture axis, including R for cube maps.
type TextureParams struct {
	MinFilter Filter
	MagFilter Filter
	Wrap      Wrap
}

// Device is the set of GPU operations the engine uses.
type Device interface {
	// Fixed-function state
	Enable(c Capability)
	Disable(c Capability)
	DepthFunc(f CompareFunc)
	StencilFunc(f CompareFunc, ref int32, mask uint32)
	StencilMask(mask uint32)
	StencilOp(sfail, dpfail, dppass StencilAction)
	BlendFunc(src, dst BlendFactor)
	Viewport(x, y, width, height int32)
	ClearColor(r, g, b, a float32)
	Clear(mask ClearMask)

	// Programs and uniforms. Uniform setters apply to the program in use.
	CompileProgram(vertexSrc, fragmentSrc string) (uint32, error)
	UseProgram(program uint32)
	DeleteProgram(program uint32)
	UniformLocation(program uint32, name string) int32
	UniformMatrix4(location int32, m mgl32.Mat4)
	UniformVec3(location int32, v mgl32.Vec3)
	UniformVec4(location int32, v mgl32.Vec4)
	UniformFloat(location int32, v float32)
	UniformInt(location int32, v int32)

	// Vertex arrays and buffers. BufferFloats and BufferIndices leave the
	// buffer bound; VertexAttrib reads from the bound array buffer.
	CreateVertexArray() uint32
	BindVertexArray(vao uint32)
	DeleteVertexArray(vao uint32)
	CreateBuffer() uint32
	BindBuffer(target BufferTarget, buffer uint32)
	BufferFloats(target BufferTarget, buffer uint32, data []float32, usage Usage)
	BufferIndices(buffer uint32, data []uint32, usage Usage)
	DeleteBuffer(buffer uint32)
	VertexAttrib(index uint32, size, stride int32, offset int)
	VertexAttribDivisor(index, divisor uint32)

	// Textures. For cube maps, face selects +X, -X, +Y, -Y, +Z, -Z (0..5).
	// A nil pixel slice allocates storage without uploading.
	CreateTexture() uint32
	ActiveTexture(unit uint32)
	BindTexture(target TextureTarget, texture uint32)
	TexImage2D(target TextureTarget, face int, width, height int32, format PixelFormat, pixels []byte)
	TexParameters(target TextureTarget, p TextureParams)
	GenerateMipmap(target TextureTarget)
	DeleteTexture(texture uint32)

	// Framebuffers. Attach calls apply to the bound framebuffer; 0 binds the
	// default framebuffer. Renderbuffers are depth24/stencil8.
	CreateFramebuffer() uint32
	BindFramebuffer(fbo uint32)
	AttachColorTexture(texture uint32)
	AttachDepthStencil(rbo uint32)
	FramebufferStatus() error
	DeleteFramebuffer(fbo uint32)
	CreateRenderbuffer() uint32
	RenderbufferStorage(rbo uint32, width, height int32)
	DeleteRenderbuffer(rbo uint32)

	// Draws (triangles).
	DrawArrays(first, count int32)
	DrawElements(count int32)
	DrawElementsInstanced(count, instances int32)
}
