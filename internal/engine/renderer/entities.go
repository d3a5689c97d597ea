package renderer

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/glsandbox/internal/engine/gpu"
	"github.com/Faultbox/glsandbox/internal/engine/lighting"
	"github.com/Faultbox/glsandbox/internal/engine/scene"
	"github.com/Faultbox/glsandbox/internal/engine/shader"
)

// drawEntities draws opaque entities in scene order, then transparent ones
// back to front, then the light markers.
func (r *Renderer) drawEntities(f FrameState) {
	s := f.Scene
	for _, i := range s.DrawOrder(f.Camera.Position) {
		r.drawEntity(&s.Entities[i])
	}
	if r.Settings.LightMarkers {
		r.drawLightMarkers(s)
	}
}

// twoSided reports whether a kind is flat and must be visible from behind.
func twoSided(kind scene.Kind) bool {
	return kind == scene.Triangle || kind == scene.Quad || kind == scene.MeshQuad
}

func (r *Renderer) drawEntity(e *scene.Entity) {
	if e.Drawable == nil {
		return
	}
	dev := r.dev

	r.writeStencil()
	if twoSided(e.Kind) {
		dev.Disable(gpu.CullFace)
		defer dev.Enable(gpu.CullFace)
	}

	prog := r.programs.Get(shader.Main)
	prog.Use()
	prog.SetMat4("u_model", e.ModelMatrix())
	prog.SetVec4("u_entity_color", e.Color)
	e.Drawable.Draw(dev, prog)

	if e.Selected {
		r.drawOutline(e)
	}
}

// drawOutline redraws e enlarged in a flat color where the first pass did
// not write the stencil buffer, leaving a border around the entity.
func (r *Renderer) drawOutline(e *scene.Entity) {
	dev := r.dev

	dev.StencilFunc(gpu.NotEqual, 1, 0xFF)
	dev.StencilMask(0x00)
	dev.Disable(gpu.DepthTest)

	scale := r.Settings.Outline(e.Kind).Apply(e.Scale)
	prog := r.programs.Get(shader.Outline)
	prog.Use()
	prog.SetMat4("u_model", scene.ModelMatrix(e.Position, scale, e.Rotation))
	prog.SetVec4("u_outline_color", r.Settings.OutlineColor)
	e.Drawable.Draw(dev, prog)

	dev.StencilMask(0xFF)
	r.writeStencil()
	dev.Enable(gpu.DepthTest)
}

// drawLightMarkers draws each point light as a small cube in its color.
func (r *Renderer) drawLightMarkers(s *scene.Scene) {
	prog := r.programs.Get(shader.Unlit)
	prog.Use()
	size := r.Settings.MarkerSize
	for _, l := range s.Lights {
		if l.Kind != lighting.Point {
			continue
		}
		prog.SetMat4("u_model", scene.ModelMatrix(l.Position, mgl32.Vec3{size, size, size}, [4]float32{}))
		prog.SetVec4("u_entity_color", l.Color.Vec4(1))
		r.marker.Draw(r.dev)
	}
}
