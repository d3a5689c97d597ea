// Package renderer draws a scene into an off-screen framebuffer and resolves
// it to the window.
//
// A frame runs in fixed stages: bind the off-screen target, broadcast camera
// uniforms, draw entities (with stencil outlines for selected ones), broadcast
// lights, draw the instanced batch, draw the skybox, and finally resolve the
// image to the default framebuffer through the post-processing program.
// Every stage leaves depth, stencil and cull state as it found it.
package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/glsandbox/internal/engine/camera"
	"github.com/Faultbox/glsandbox/internal/engine/framebuffer"
	"github.com/Faultbox/glsandbox/internal/engine/gpu"
	"github.com/Faultbox/glsandbox/internal/engine/lighting"
	"github.com/Faultbox/glsandbox/internal/engine/mesh"
	"github.com/Faultbox/glsandbox/internal/engine/scene"
	"github.com/Faultbox/glsandbox/internal/engine/shader"
	"github.com/Faultbox/glsandbox/internal/logger"
)

// FrameState is what one frame renders.
type FrameState struct {
	Camera *camera.Camera
	Scene  *scene.Scene
	Width  int32 // framebuffer size in pixels
	Height int32
}

// Minimized reports whether the framebuffer has no area.
func (f FrameState) Minimized() bool {
	return f.Width <= 0 || f.Height <= 0
}

// Aspect returns the framebuffer aspect ratio.
func (f FrameState) Aspect() float32 {
	if f.Minimized() {
		return 1
	}
	return float32(f.Width) / float32(f.Height)
}

// Renderer orchestrates the render passes.
type Renderer struct {
	Settings Settings

	dev      gpu.Device
	programs *shader.Library
	fb       *framebuffer.Framebuffer
	screen   *mesh.Mesh
	marker   *mesh.Mesh
	log      *zap.Logger

	fbReported   bool
	droppedLight int
}

// New creates the off-screen target and sets the global GL state. An
// incomplete framebuffer is not fatal: frames skip their off-screen work
// until a resize produces a complete one.
func New(dev gpu.Device, programs *shader.Library, settings Settings, width, height int32) *Renderer {
	r := &Renderer{
		Settings: settings,
		dev:      dev,
		programs: programs,
		fb:       framebuffer.New(dev, width, height),
		log:      logger.Named("renderer"),
	}

	v, i := mesh.ScreenQuad()
	r.screen = mesh.New(dev, v, i, nil)
	v, i = mesh.Cube()
	r.marker = mesh.New(dev, v, i, nil)

	dev.Enable(gpu.DepthTest)
	dev.DepthFunc(gpu.Less)
	dev.Enable(gpu.StencilTest)
	dev.Enable(gpu.CullFace)
	dev.Enable(gpu.Blend)
	dev.BlendFunc(gpu.SrcAlpha, gpu.OneMinusSrcAlpha)
	r.writeStencil()

	if err := r.fb.Complete(); err != nil {
		r.reportFramebuffer(err)
	}

	r.log.Debug("Renderer created",
		zap.Int32("width", width),
		zap.Int32("height", height),
		zap.Stringer("effect", settings.Effect),
	)
	return r
}

// Framebuffer returns the off-screen target.
func (r *Renderer) Framebuffer() *framebuffer.Framebuffer {
	return r.fb
}

// Resize reallocates the off-screen target. Zero sizes are ignored.
func (r *Renderer) Resize(width, height int32) {
	if !r.fb.Resize(width, height) {
		return
	}
	r.log.Debug("Framebuffer resized", zap.Int32("width", width), zap.Int32("height", height))
	if err := r.fb.Complete(); err != nil {
		r.reportFramebuffer(err)
		return
	}
	r.fbReported = false
}

// Render runs the off-screen stages for one frame.
func (r *Renderer) Render(f FrameState) {
	if f.Minimized() {
		return
	}
	r.Resize(f.Width, f.Height)
	if err := r.fb.Complete(); err != nil {
		r.reportFramebuffer(err)
		return
	}

	r.bindTarget()
	r.broadcastCamera(f)
	r.drawEntities(f)
	r.BroadcastLights(f)
	r.drawInstances(f)
	r.drawSkybox(f)
}

// Resolve draws the off-screen image to the default framebuffer with the
// selected post effect.
func (r *Renderer) Resolve(f FrameState) {
	if f.Minimized() || r.fb.Complete() != nil {
		return
	}
	dev := r.dev

	dev.BindFramebuffer(0)
	dev.Viewport(0, 0, f.Width, f.Height)
	dev.Disable(gpu.DepthTest)
	dev.ClearColor(1, 1, 1, 1)
	dev.Clear(gpu.ColorBuffer)

	prog := r.programs.Get(shader.Screen)
	prog.Use()
	prog.SetInt("u_screen_texture", 0)
	prog.SetInt("u_effect", int32(r.Settings.Effect))
	dev.ActiveTexture(0)
	dev.BindTexture(gpu.Texture2D, r.fb.ColorTexture())
	r.screen.Draw(dev)

	dev.Enable(gpu.DepthTest)
}

// BroadcastLights uploads the scene lights to the lit programs. Render calls
// it after the entity stage, so entities use the previous frame's lights;
// call it once after populating a scene to light the first frame.
func (r *Renderer) BroadcastLights(f FrameState) {
	set := lighting.Collect(f.Scene.LightSources())
	if set.Points.Dropped != r.droppedLight {
		r.droppedLight = set.Points.Dropped
		if set.Points.Dropped > 0 {
			r.log.Warn("Too many point lights, extra lights ignored",
				zap.Int("max", lighting.MaxPointLights),
				zap.Int("dropped", set.Points.Dropped),
			)
		}
	}

	cam := f.Camera
	set.Broadcast(r.programs.Get(shader.Main), cam.Position, cam.Front)
	set.Broadcast(r.programs.Get(shader.Instance), cam.Position, cam.Front)
}

// Destroy releases the off-screen target and internal meshes.
func (r *Renderer) Destroy() {
	r.fb.Destroy()
	r.screen.Destroy(r.dev)
	r.marker.Destroy(r.dev)
}

func (r *Renderer) reportFramebuffer(err error) {
	if r.fbReported {
		return
	}
	r.fbReported = true
	r.log.Error("Off-screen framebuffer incomplete, skipping scene rendering", zap.Error(err))
}

// bindTarget binds and clears the off-screen framebuffer.
func (r *Renderer) bindTarget() {
	c := r.Settings.ClearColor
	r.fb.Bind()
	r.fb.Clear(c[0], c[1], c[2], c[3])
}

// broadcastCamera uploads view, projection and eye position. The skybox
// gets the view without translation so it stays centered on the camera.
func (r *Renderer) broadcastCamera(f FrameState) {
	cam := f.Camera
	view := cam.ViewMatrix()
	proj := cam.Projection(f.Aspect())

	for _, name := range []string{shader.Main, shader.Outline, shader.Unlit, shader.Instance} {
		prog := r.programs.Get(name)
		prog.Use()
		prog.SetMat4("u_view", view)
		prog.SetMat4("u_projection", proj)
		prog.SetVec3("u_view_pos", cam.Position)
	}

	sky := r.programs.Get(shader.Skybox)
	sky.Use()
	sky.SetMat4("u_view", view.Mat3().Mat4())
	sky.SetMat4("u_projection", proj)
}

// drawInstances draws the asteroid batch.
func (r *Renderer) drawInstances(f FrameState) {
	batch := f.Scene.Instances
	if batch == nil || batch.Count() == 0 {
		return
	}
	prog := r.programs.Get(shader.Instance)
	prog.Use()
	prog.SetVec4("u_entity_color", mgl32.Vec4{1, 1, 1, 1})
	batch.Draw(r.dev, prog)
}

// drawSkybox draws the cubemap at maximum depth where no entity wrote the
// stencil buffer.
func (r *Renderer) drawSkybox(f FrameState) {
	sky := f.Scene.Skybox
	if sky == nil {
		return
	}
	dev := r.dev

	dev.DepthFunc(gpu.LessEqual)
	dev.Disable(gpu.CullFace)
	dev.StencilFunc(gpu.Equal, 0, 0xFF)
	dev.StencilMask(0x00)

	prog := r.programs.Get(shader.Skybox)
	prog.Use()
	sky.Draw(dev, prog)

	dev.Enable(gpu.CullFace)
	dev.DepthFunc(gpu.Less)
	r.writeStencil()
}

// writeStencil sets every drawn fragment's stencil value to 1.
func (r *Renderer) writeStencil() {
	r.dev.StencilFunc(gpu.Always, 1, 0xFF)
	r.dev.StencilMask(0xFF)
	r.dev.StencilOp(gpu.Keep, gpu.Keep, gpu.Replace)
}
