package gpu

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// GL is the Device backed by the current OpenGL 4.1 core context.
type GL struct {
	Version  string
	Renderer string
}

// NewGL loads the GL function pointers for the current context.
// IMPORTANT: Must be called AFTER the OpenGL context is created!
func NewGL() (*GL, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("initializing OpenGL: %w", err)
	}
	return &GL{
		Version:  gl.GoStr(gl.GetString(gl.VERSION)),
		Renderer: gl.GoStr(gl.GetString(gl.RENDERER)),
	}, nil
}

var capabilities = map[Capability]uint32{
	DepthTest:   gl.DEPTH_TEST,
	StencilTest: gl.STENCIL_TEST,
	CullFace:    gl.CULL_FACE,
	Blend:       gl.BLEND,
}

var compareFuncs = map[CompareFunc]uint32{
	Never:        gl.NEVER,
	Less:         gl.LESS,
	Equal:        gl.EQUAL,
	LessEqual:    gl.LEQUAL,
	Greater:      gl.GREATER,
	NotEqual:     gl.NOTEQUAL,
	GreaterEqual: gl.GEQUAL,
	Always:       gl.ALWAYS,
}

var stencilActions = map[StencilAction]uint32{
	Keep:    gl.KEEP,
	Zero:    gl.ZERO,
	Replace: gl.REPLACE,
}

var blendFactors = map[BlendFactor]uint32{
	One:              gl.ONE,
	SrcAlpha:         gl.SRC_ALPHA,
	OneMinusSrcAlpha: gl.ONE_MINUS_SRC_ALPHA,
}

func (GL) Enable(c Capability)  { gl.Enable(capabilities[c]) }
func (GL) Disable(c Capability) { gl.Disable(capabilities[c]) }
func (GL) DepthFunc(f CompareFunc) {
	gl.DepthFunc(compareFuncs[f])
}

func (GL) StencilFunc(f CompareFunc, ref int32, mask uint32) {
	gl.StencilFunc(compareFuncs[f], ref, mask)
}

func (GL) StencilMask(mask uint32) { gl.StencilMask(mask) }

func (GL) StencilOp(sfail, dpfail, dppass StencilAction) {
	gl.StencilOp(stencilActions[sfail], stencilActions[dpfail], stencilActions[dppass])
}

func (GL) BlendFunc(src, dst BlendFactor) {
	gl.BlendFunc(blendFactors[src], blendFactors[dst])
}

func (GL) Viewport(x, y, width, height int32) { gl.Viewport(x, y, width, height) }
func (GL) ClearColor(r, g, b, a float32)      { gl.ClearColor(r, g, b, a) }

func (GL) Clear(mask ClearMask) {
	var bits uint32
	if mask&ColorBuffer != 0 {
		bits |= gl.COLOR_BUFFER_BIT
	}
	if mask&DepthBuffer != 0 {
		bits |= gl.DEPTH_BUFFER_BIT
	}
	if mask&StencilBuffer != 0 {
		bits |= gl.STENCIL_BUFFER_BIT
	}
	gl.Clear(bits)
}

// CompileProgram compiles vertex and fragment shaders and links them into a program.
// Returns the program ID or an error carrying the driver's diagnostic.
func (GL) CompileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertShader)

	fragShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertShader)
	gl.AttachShader(program, fragShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(program, logLen, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link: %s", strings.TrimRight(log, "\x00"))
	}

	return program, nil
}

// compileShader compiles a single shader of the given type.
func compileShader(source string, shaderType uint32, name string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s shader: %s", name, strings.TrimRight(log, "\x00"))
	}

	return shader, nil
}

func (GL) UseProgram(program uint32)    { gl.UseProgram(program) }
func (GL) DeleteProgram(program uint32) { gl.DeleteProgram(program) }

func (GL) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (GL) UniformMatrix4(location int32, m mgl32.Mat4) {
	gl.UniformMatrix4fv(location, 1, false, &m[0])
}

func (GL) UniformVec3(location int32, v mgl32.Vec3) { gl.Uniform3fv(location, 1, &v[0]) }
func (GL) UniformVec4(location int32, v mgl32.Vec4) { gl.Uniform4fv(location, 1, &v[0]) }
func (GL) UniformFloat(location int32, v float32)   { gl.Uniform1f(location, v) }
func (GL) UniformInt(location int32, v int32)       { gl.Uniform1i(location, v) }

func (GL) CreateVertexArray() uint32 {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	return vao
}

func (GL) BindVertexArray(vao uint32)   { gl.BindVertexArray(vao) }
func (GL) DeleteVertexArray(vao uint32) { gl.DeleteVertexArrays(1, &vao) }

func (GL) CreateBuffer() uint32 {
	var buf uint32
	gl.GenBuffers(1, &buf)
	return buf
}

func bufferTarget(t BufferTarget) uint32 {
	if t == ElementArrayBuffer {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func usageHint(u Usage) uint32 {
	if u == DynamicDraw {
		return gl.DYNAMIC_DRAW
	}
	return gl.STATIC_DRAW
}

func (GL) BindBuffer(target BufferTarget, buffer uint32) {
	gl.BindBuffer(bufferTarget(target), buffer)
}

func (GL) BufferFloats(target BufferTarget, buffer uint32, data []float32, usage Usage) {
	gl.BindBuffer(bufferTarget(target), buffer)
	if len(data) == 0 {
		gl.BufferData(bufferTarget(target), 0, nil, usageHint(usage))
		return
	}
	gl.BufferData(bufferTarget(target), len(data)*4, gl.Ptr(data), usageHint(usage))
}

func (GL) BufferIndices(buffer uint32, data []uint32, usage Usage) {
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, buffer)
	if len(data) == 0 {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, 0, nil, usageHint(usage))
		return
	}
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(data)*4, gl.Ptr(data), usageHint(usage))
}

func (GL) DeleteBuffer(buffer uint32) { gl.DeleteBuffers(1, &buffer) }

func (GL) VertexAttrib(index uint32, size, stride int32, offset int) {
	gl.VertexAttribPointerWithOffset(index, size, gl.FLOAT, false, stride, uintptr(offset))
	gl.EnableVertexAttribArray(index)
}

func (GL) VertexAttribDivisor(index, divisor uint32) { gl.VertexAttribDivisor(index, divisor) }

func (GL) CreateTexture() uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	return tex
}

func (GL) ActiveTexture(unit uint32) { gl.ActiveTexture(gl.TEXTURE0 + unit) }

func textureTarget(t TextureTarget) uint32 {
	if t == TextureCubeMap {
		return gl.TEXTURE_CUBE_MAP
	}
	return gl.TEXTURE_2D
}

func (GL) BindTexture(target TextureTarget, texture uint32) {
	gl.BindTexture(textureTarget(target), texture)
}

func pixelFormat(f PixelFormat) (internal int32, format uint32) {
	switch f {
	case Red:
		return gl.RED, gl.RED
	case RGB:
		return gl.RGB, gl.RGB
	default:
		return gl.RGBA, gl.RGBA
	}
}

func (GL) TexImage2D(target TextureTarget, face int, width, height int32, format PixelFormat, pixels []byte) {
	glTarget := uint32(gl.TEXTURE_2D)
	if target == TextureCubeMap {
		glTarget = gl.TEXTURE_CUBE_MAP_POSITIVE_X + uint32(face)
	}

	internal, fmtEnum := pixelFormat(format)
	if format != RGBA {
		// Rows of 1- and 3-channel images are not 4-byte aligned.
		gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
		defer gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)
	}

	var ptr unsafe.Pointer
	if len(pixels) > 0 {
		ptr = gl.Ptr(pixels)
	}
	gl.TexImage2D(glTarget, 0, internal, width, height, 0, fmtEnum, gl.UNSIGNED_BYTE, ptr)
}

var filters = map[Filter]int32{
	Nearest:            gl.NEAREST,
	Linear:             gl.LINEAR,
	LinearMipmapLinear: gl.LINEAR_MIPMAP_LINEAR,
}

func (GL) TexParameters(target TextureTarget, p TextureParams) {
	t := textureTarget(target)
	wrap := int32(gl.REPEAT)
	if p.Wrap == ClampToEdge {
		wrap = gl.CLAMP_TO_EDGE
	}
	gl.TexParameteri(t, gl.TEXTURE_WRAP_S, wrap)
	gl.TexParameteri(t, gl.TEXTURE_WRAP_T, wrap)
	if target == TextureCubeMap {
		gl.TexParameteri(t, gl.TEXTURE_WRAP_R, wrap)
	}
	gl.TexParameteri(t, gl.TEXTURE_MIN_FILTER, filters[p.MinFilter])
	gl.TexParameteri(t, gl.TEXTURE_MAG_FILTER, filters[p.MagFilter])
}

func (GL) GenerateMipmap(target TextureTarget) { gl.GenerateMipmap(textureTarget(target)) }
func (GL) DeleteTexture(texture uint32)        { gl.DeleteTextures(1, &texture) }

func (GL) CreateFramebuffer() uint32 {
	var fbo uint32
	gl.GenFramebuffers(1, &fbo)
	return fbo
}

func (GL) BindFramebuffer(fbo uint32) { gl.BindFramebuffer(gl.FRAMEBUFFER, fbo) }

func (GL) AttachColorTexture(texture uint32) {
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, texture, 0)
}

func (GL) AttachDepthStencil(rbo uint32) {
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_STENCIL_ATTACHMENT, gl.RENDERBUFFER, rbo)
}

func (GL) FramebufferStatus() error {
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	if status != gl.FRAMEBUFFER_COMPLETE {
		return fmt.Errorf("%w: 0x%x", ErrFramebufferIncomplete, status)
	}
	return nil
}

func (GL) DeleteFramebuffer(fbo uint32) { gl.DeleteFramebuffers(1, &fbo) }

func (GL) CreateRenderbuffer() uint32 {
	var rbo uint32
	gl.GenRenderbuffers(1, &rbo)
	return rbo
}

func (GL) RenderbufferStorage(rbo uint32, width, height int32) {
	gl.BindRenderbuffer(gl.RENDERBUFFER, rbo)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH24_STENCIL8, width, height)
}

func (GL) DeleteRenderbuffer(rbo uint32) { gl.DeleteRenderbuffers(1, &rbo) }

func (GL) DrawArrays(first, count int32) { gl.DrawArrays(gl.TRIANGLES, first, count) }

func (GL) DrawElements(count int32) {
	gl.DrawElementsWithOffset(gl.TRIANGLES, count, gl.UNSIGNED_INT, 0)
}

func (GL) DrawElementsInstanced(count, instances int32) {
	gl.DrawElementsInstanced(gl.TRIANGLES, count, gl.UNSIGNED_INT, nil, instances)
}
