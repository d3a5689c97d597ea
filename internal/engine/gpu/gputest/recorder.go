// Package gputest provides a recording gpu.Device for tests.
package gputest

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/glsandbox/internal/engine/gpu"
)

// StencilState is the stencil configuration at a point in time.
type StencilState struct {
	Func      gpu.CompareFunc
	Ref       int32
	ReadMask  uint32
	WriteMask uint32
}

// State is a snapshot of the fixed-function state the renderer touches.
type State struct {
	DepthTest   bool
	StencilTest bool
	CullFace    bool
	Blend       bool
	DepthFunc   gpu.CompareFunc
	Stencil     StencilState
	Framebuffer uint32
	Viewport    [4]int32
	Program     uint32
}

// DrawKind distinguishes draw entry points.
type DrawKind int

// Draw kinds.
const (
	DrawArrays DrawKind = iota
	DrawElements
	DrawInstanced
)

// Draw is one recorded draw call with the state it ran under.
type Draw struct {
	Kind      DrawKind
	Count     int32
	Instances int32
	VAO       uint32
	State     State
	Textures  map[uint32]uint32 // unit -> texture
}

// Lookup is one recorded uniform location query.
type Lookup struct {
	Program uint32
	Name    string
}

// Texture is the recorded storage of a texture object.
type Texture struct {
	Target      gpu.TextureTarget
	Width       int32
	Height      int32
	Format      gpu.PixelFormat
	Faces       map[int]bool
	Allocations int
	Params      gpu.TextureParams
	Mipmapped   bool
	Deleted     bool
}

// Renderbuffer is the recorded storage of a renderbuffer object.
type Renderbuffer struct {
	Width       int32
	Height      int32
	Allocations int
	Deleted     bool
}

// Buffer is the recorded contents of a buffer object.
type Buffer struct {
	Target  gpu.BufferTarget
	Floats  []float32
	Indices []uint32
	Uploads int
	Deleted bool
}

// Attrib is one recorded vertex attribute binding.
type Attrib struct {
	Index   uint32
	Size    int32
	Stride  int32
	Offset  int
	Buffer  uint32
	Divisor uint32
}

// Recorder implements gpu.Device in memory.
type Recorder struct {
	// CompileErr, when set, is returned by CompileProgram for sources it matches.
	CompileErr func(vertexSrc, fragmentSrc string) error
	// Incomplete makes FramebufferStatus fail.
	Incomplete bool

	state State

	nextID      uint32
	Calls       []string
	Draws       []Draw
	Lookups     []Lookup
	Programs    map[uint32]bool
	Uniforms    map[uint32]map[string]any
	locations   map[uint32]map[string]int32
	names       map[uint32]map[int32]string
	Textures    map[uint32]*Texture
	Buffers     map[uint32]*Buffer
	Renderbuffs map[uint32]*Renderbuffer
	VAOs        map[uint32][]Attrib
	Framebufs   map[uint32]bool

	activeUnit   uint32
	bound        map[uint32]uint32 // unit -> texture
	boundVAO     uint32
	arrayBuffer  uint32
	boundTexture uint32
	clearColor   [4]float32
}

// New returns an empty Recorder with GL's default state.
func New() *Recorder {
	return &Recorder{
		state: State{
			DepthFunc: gpu.Less,
			Stencil:   StencilState{Func: gpu.Always, Ref: 0, ReadMask: 0xFF, WriteMask: 0xFF},
		},
		Programs:    make(map[uint32]bool),
		Uniforms:    make(map[uint32]map[string]any),
		locations:   make(map[uint32]map[string]int32),
		names:       make(map[uint32]map[int32]string),
		Textures:    make(map[uint32]*Texture),
		Buffers:     make(map[uint32]*Buffer),
		Renderbuffs: make(map[uint32]*Renderbuffer),
		VAOs:        make(map[uint32][]Attrib),
		Framebufs:   make(map[uint32]bool),
		bound:       make(map[uint32]uint32),
	}
}

// State returns the current state snapshot.
func (r *Recorder) State() State { return r.state }

// Reset clears recorded calls, draws and lookups but keeps objects and state.
func (r *Recorder) Reset() {
	r.Calls = nil
	r.Draws = nil
	r.Lookups = nil
}

// Uniform returns the last value written to a uniform of a program.
func (r *Recorder) Uniform(program uint32, name string) (any, bool) {
	v, ok := r.Uniforms[program][name]
	return v, ok
}

// LookedUp reports whether any program queried the named uniform.
func (r *Recorder) LookedUp(name string) bool {
	for _, l := range r.Lookups {
		if l.Name == name {
			return true
		}
	}
	return false
}

// DrawsWith returns the draws issued while program was in use.
func (r *Recorder) DrawsWith(program uint32) []Draw {
	var out []Draw
	for _, d := range r.Draws {
		if d.State.Program == program {
			out = append(out, d)
		}
	}
	return out
}

func (r *Recorder) id() uint32 {
	r.nextID++
	return r.nextID
}

func (r *Recorder) call(format string, args ...any) {
	r.Calls = append(r.Calls, fmt.Sprintf(format, args...))
}

func (r *Recorder) setCap(c gpu.Capability, on bool) {
	switch c {
	case gpu.DepthTest:
		r.state.DepthTest = on
	case gpu.StencilTest:
		r.state.StencilTest = on
	case gpu.CullFace:
		r.state.CullFace = on
	case gpu.Blend:
		r.state.Blend = on
	}
}

func (r *Recorder) Enable(c gpu.Capability) {
	r.setCap(c, true)
	r.call("Enable(%d)", c)
}

func (r *Recorder) Disable(c gpu.Capability) {
	r.setCap(c, false)
	r.call("Disable(%d)", c)
}

func (r *Recorder) DepthFunc(f gpu.CompareFunc) {
	r.state.DepthFunc = f
	r.call("DepthFunc(%s)", f)
}

func (r *Recorder) StencilFunc(f gpu.CompareFunc, ref int32, mask uint32) {
	r.state.Stencil.Func = f
	r.state.Stencil.Ref = ref
	r.state.Stencil.ReadMask = mask
	r.call("StencilFunc(%s, %d, 0x%X)", f, ref, mask)
}

func (r *Recorder) StencilMask(mask uint32) {
	r.state.Stencil.WriteMask = mask
	r.call("StencilMask(0x%X)", mask)
}

func (r *Recorder) StencilOp(sfail, dpfail, dppass gpu.StencilAction) {
	r.call("StencilOp(%d, %d, %d)", sfail, dpfail, dppass)
}

func (r *Recorder) BlendFunc(src, dst gpu.BlendFactor) {
	r.call("BlendFunc(%d, %d)", src, dst)
}

func (r *Recorder) Viewport(x, y, width, height int32) {
	r.state.Viewport = [4]int32{x, y, width, height}
	r.call("Viewport(%d, %d, %d, %d)", x, y, width, height)
}

func (r *Recorder) ClearColor(cr, cg, cb, ca float32) {
	r.clearColor = [4]float32{cr, cg, cb, ca}
}

func (r *Recorder) Clear(mask gpu.ClearMask) {
	r.call("Clear(%d)", mask)
}

func (r *Recorder) CompileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	if r.CompileErr != nil {
		if err := r.CompileErr(vertexSrc, fragmentSrc); err != nil {
			return 0, err
		}
	}
	id := r.id()
	r.Programs[id] = true
	r.call("CompileProgram() = %d", id)
	return id, nil
}

func (r *Recorder) UseProgram(program uint32) {
	r.state.Program = program
	r.call("UseProgram(%d)", program)
}

func (r *Recorder) DeleteProgram(program uint32) {
	delete(r.Programs, program)
	r.call("DeleteProgram(%d)", program)
}

// UniformLocation hands out a stable location per (program, name).
func (r *Recorder) UniformLocation(program uint32, name string) int32 {
	r.Lookups = append(r.Lookups, Lookup{Program: program, Name: name})
	if r.locations[program] == nil {
		r.locations[program] = make(map[string]int32)
		r.names[program] = make(map[int32]string)
	}
	if loc, ok := r.locations[program][name]; ok {
		return loc
	}
	loc := int32(len(r.locations[program]))
	r.locations[program][name] = loc
	r.names[program][loc] = name
	return loc
}

func (r *Recorder) setUniform(location int32, v any) {
	if location < 0 {
		return
	}
	prog := r.state.Program
	name, ok := r.names[prog][location]
	if !ok {
		name = fmt.Sprintf("#%d", location)
	}
	if r.Uniforms[prog] == nil {
		r.Uniforms[prog] = make(map[string]any)
	}
	r.Uniforms[prog][name] = v
}

func (r *Recorder) UniformMatrix4(location int32, m mgl32.Mat4) { r.setUniform(location, m) }
func (r *Recorder) UniformVec3(location int32, v mgl32.Vec3)    { r.setUniform(location, v) }
func (r *Recorder) UniformVec4(location int32, v mgl32.Vec4)    { r.setUniform(location, v) }
func (r *Recorder) UniformFloat(location int32, v float32)      { r.setUniform(location, v) }
func (r *Recorder) UniformInt(location int32, v int32)          { r.setUniform(location, v) }

func (r *Recorder) CreateVertexArray() uint32 {
	id := r.id()
	r.VAOs[id] = nil
	return id
}

func (r *Recorder) BindVertexArray(vao uint32) { r.boundVAO = vao }

func (r *Recorder) DeleteVertexArray(vao uint32) {
	delete(r.VAOs, vao)
	r.call("DeleteVertexArray(%d)", vao)
}

func (r *Recorder) CreateBuffer() uint32 {
	id := r.id()
	r.Buffers[id] = &Buffer{}
	return id
}

func (r *Recorder) BindBuffer(target gpu.BufferTarget, buffer uint32) {
	if target == gpu.ArrayBuffer {
		r.arrayBuffer = buffer
	}
}

func (r *Recorder) BufferFloats(target gpu.BufferTarget, buffer uint32, data []float32, usage gpu.Usage) {
	r.BindBuffer(target, buffer)
	b := r.Buffers[buffer]
	if b == nil {
		b = &Buffer{}
		r.Buffers[buffer] = b
	}
	b.Target = target
	b.Floats = append([]float32(nil), data...)
	b.Uploads++
	r.call("BufferFloats(%d, %d floats)", buffer, len(data))
}

func (r *Recorder) BufferIndices(buffer uint32, data []uint32, usage gpu.Usage) {
	b := r.Buffers[buffer]
	if b == nil {
		b = &Buffer{}
		r.Buffers[buffer] = b
	}
	b.Target = gpu.ElementArrayBuffer
	b.Indices = append([]uint32(nil), data...)
	b.Uploads++
	r.call("BufferIndices(%d, %d indices)", buffer, len(data))
}

func (r *Recorder) DeleteBuffer(buffer uint32) {
	if b := r.Buffers[buffer]; b != nil {
		b.Deleted = true
	}
	r.call("DeleteBuffer(%d)", buffer)
}

func (r *Recorder) VertexAttrib(index uint32, size, stride int32, offset int) {
	r.VAOs[r.boundVAO] = append(r.VAOs[r.boundVAO], Attrib{
		Index: index, Size: size, Stride: stride, Offset: offset, Buffer: r.arrayBuffer,
	})
}

func (r *Recorder) VertexAttribDivisor(index, divisor uint32) {
	attrs := r.VAOs[r.boundVAO]
	for i := range attrs {
		if attrs[i].Index == index {
			attrs[i].Divisor = divisor
		}
	}
}

func (r *Recorder) CreateTexture() uint32 {
	id := r.id()
	r.Textures[id] = &Texture{Faces: make(map[int]bool)}
	return id
}

func (r *Recorder) ActiveTexture(unit uint32) { r.activeUnit = unit }

func (r *Recorder) BindTexture(target gpu.TextureTarget, texture uint32) {
	r.bound[r.activeUnit] = texture
	r.boundTexture = texture
	if t := r.Textures[texture]; t != nil && t.Target == 0 {
		t.Target = target
	}
}

func (r *Recorder) TexImage2D(target gpu.TextureTarget, face int, width, height int32, format gpu.PixelFormat, pixels []byte) {
	t := r.Textures[r.boundTexture]
	if t == nil {
		return
	}
	t.Target = target
	t.Width, t.Height, t.Format = width, height, format
	t.Faces[face] = true
	t.Allocations++
	r.call("TexImage2D(%d, face %d, %dx%d)", r.boundTexture, face, width, height)
}

func (r *Recorder) TexParameters(target gpu.TextureTarget, p gpu.TextureParams) {
	if t := r.Textures[r.boundTexture]; t != nil {
		t.Params = p
	}
}

func (r *Recorder) GenerateMipmap(target gpu.TextureTarget) {
	if t := r.Textures[r.boundTexture]; t != nil {
		t.Mipmapped = true
	}
}

func (r *Recorder) DeleteTexture(texture uint32) {
	if t := r.Textures[texture]; t != nil {
		t.Deleted = true
	}
	r.call("DeleteTexture(%d)", texture)
}

func (r *Recorder) CreateFramebuffer() uint32 {
	id := r.id()
	r.Framebufs[id] = true
	return id
}

func (r *Recorder) BindFramebuffer(fbo uint32) {
	r.state.Framebuffer = fbo
	r.call("BindFramebuffer(%d)", fbo)
}

func (r *Recorder) AttachColorTexture(texture uint32) {}
func (r *Recorder) AttachDepthStencil(rbo uint32)     {}

func (r *Recorder) FramebufferStatus() error {
	if r.Incomplete {
		return gpu.ErrFramebufferIncomplete
	}
	return nil
}

func (r *Recorder) DeleteFramebuffer(fbo uint32) {
	delete(r.Framebufs, fbo)
	r.call("DeleteFramebuffer(%d)", fbo)
}

func (r *Recorder) CreateRenderbuffer() uint32 {
	id := r.id()
	r.Renderbuffs[id] = &Renderbuffer{}
	return id
}

func (r *Recorder) RenderbufferStorage(rbo uint32, width, height int32) {
	rb := r.Renderbuffs[rbo]
	if rb == nil {
		return
	}
	rb.Width, rb.Height = width, height
	rb.Allocations++
	r.call("RenderbufferStorage(%d, %dx%d)", rbo, width, height)
}

func (r *Recorder) DeleteRenderbuffer(rbo uint32) {
	if rb := r.Renderbuffs[rbo]; rb != nil {
		rb.Deleted = true
	}
	r.call("DeleteRenderbuffer(%d)", rbo)
}

func (r *Recorder) draw(kind DrawKind, count, instances int32) {
	textures := make(map[uint32]uint32, len(r.bound))
	for unit, tex := range r.bound {
		textures[unit] = tex
	}
	r.Draws = append(r.Draws, Draw{
		Kind:      kind,
		Count:     count,
		Instances: instances,
		VAO:       r.boundVAO,
		State:     r.state,
		Textures:  textures,
	})
	r.call("Draw(%d, %d, %d)", kind, count, instances)
}

func (r *Recorder) DrawArrays(first, count int32) { r.draw(DrawArrays, count, 1) }
func (r *Recorder) DrawElements(count int32)      { r.draw(DrawElements, count, 1) }

func (r *Recorder) DrawElementsInstanced(count, instances int32) {
	r.draw(DrawInstanced, count, instances)
}

var _ gpu.Device = (*Recorder)(nil)
