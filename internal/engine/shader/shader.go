// Package shader compiles GLSL programs and tracks their uniform locations.
package shader

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/glsandbox/internal/engine/gpu"
)

// Program is a linked shader program with a uniform location cache.
type Program struct {
	Name string
	ID   uint32

	dev       gpu.Device
	locations map[string]int32
}

// Compile compiles vertex and fragment sources and links them into a program.
func Compile(dev gpu.Device, name, vertexSrc, fragmentSrc string) (*Program, error) {
	id, err := dev.CompileProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return nil, fmt.Errorf("program %s: %w", name, err)
	}
	return &Program{
		Name:      name,
		ID:        id,
		dev:       dev,
		locations: make(map[string]int32),
	}, nil
}

// Use makes the program current.
func (p *Program) Use() {
	p.dev.UseProgram(p.ID)
}

// Location returns the uniform location for name, or -1 if the uniform is
// not active. Locations are queried once per program.
func (p *Program) Location(name string) int32 {
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	loc := p.dev.UniformLocation(p.ID, name)
	p.locations[name] = loc
	return loc
}

// SetMat4 sets a mat4 uniform. The program must be in use.
func (p *Program) SetMat4(name string, m mgl32.Mat4) {
	p.dev.UniformMatrix4(p.Location(name), m)
}

// SetVec3 sets a vec3 uniform.
func (p *Program) SetVec3(name string, v mgl32.Vec3) {
	p.dev.UniformVec3(p.Location(name), v)
}

// SetVec4 sets a vec4 uniform.
func (p *Program) SetVec4(name string, v mgl32.Vec4) {
	p.dev.UniformVec4(p.Location(name), v)
}

// SetFloat sets a float uniform.
func (p *Program) SetFloat(name string, v float32) {
	p.dev.UniformFloat(p.Location(name), v)
}

// SetInt sets an int or sampler uniform.
func (p *Program) SetInt(name string, v int32) {
	p.dev.UniformInt(p.Location(name), v)
}

// SetBool sets a bool uniform.
func (p *Program) SetBool(name string, v bool) {
	var i int32
	if v {
		i = 1
	}
	p.dev.UniformInt(p.Location(name), i)
}

// swap replaces the linked program, dropping cached locations.
func (p *Program) swap(id uint32) {
	p.dev.DeleteProgram(p.ID)
	p.ID = id
	p.locations = make(map[string]int32)
}

// Destroy deletes the GL program.
func (p *Program) Destroy() {
	if p.ID != 0 {
		p.dev.DeleteProgram(p.ID)
		p.ID = 0
	}
}
