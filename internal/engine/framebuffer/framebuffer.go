// Package framebuffer provides the off-screen render target the scene is
// drawn into before it is resolved to the window.
package framebuffer

import (
	"fmt"

	"github.com/Faultbox/glsandbox/internal/engine/gpu"
)

// ErrIncomplete reports a framebuffer whose attachments are unusable.
var ErrIncomplete = gpu.ErrFramebufferIncomplete

// Framebuffer manages an offscreen render target with a color texture and a
// combined depth/stencil renderbuffer.
type Framebuffer struct {
	dev          gpu.Device
	fbo          uint32
	colorTexture uint32
	depthRBO     uint32
	width        int32
	height       int32
	status       error
}

// New creates a framebuffer with the specified dimensions. Sizes below one
// pixel are raised to one. An incomplete framebuffer is not an error here;
// it is reported by Complete.
func New(dev gpu.Device, width, height int32) *Framebuffer {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	fb := &Framebuffer{
		dev:    dev,
		width:  width,
		height: height,
	}
	fb.create()
	return fb
}

func (fb *Framebuffer) create() {
	dev := fb.dev

	fb.fbo = dev.CreateFramebuffer()
	dev.BindFramebuffer(fb.fbo)

	fb.colorTexture = dev.CreateTexture()
	dev.BindTexture(gpu.Texture2D, fb.colorTexture)
	dev.TexImage2D(gpu.Texture2D, 0, fb.width, fb.height, gpu.RGBA, nil)
	dev.TexParameters(gpu.Texture2D, gpu.TextureParams{
		MinFilter: gpu.Linear,
		MagFilter: gpu.Linear,
		Wrap:      gpu.ClampToEdge,
	})
	dev.AttachColorTexture(fb.colorTexture)

	fb.depthRBO = dev.CreateRenderbuffer()
	dev.RenderbufferStorage(fb.depthRBO, fb.width, fb.height)
	dev.AttachDepthStencil(fb.depthRBO)

	fb.checkStatus()
	dev.BindFramebuffer(0)
}

// checkStatus records completeness of the bound framebuffer.
func (fb *Framebuffer) checkStatus() {
	if err := fb.dev.FramebufferStatus(); err != nil {
		fb.status = fmt.Errorf("framebuffer %dx%d: %w", fb.width, fb.height, err)
		return
	}
	fb.status = nil
}

// Complete returns nil if the attachments were complete after the last
// allocation, or an error wrapping ErrIncomplete.
func (fb *Framebuffer) Complete() error {
	return fb.status
}

// Bind makes this framebuffer the current render target.
func (fb *Framebuffer) Bind() {
	fb.dev.BindFramebuffer(fb.fbo)
	fb.dev.Viewport(0, 0, fb.width, fb.height)
}

// Unbind restores the default framebuffer.
func (fb *Framebuffer) Unbind() {
	fb.dev.BindFramebuffer(0)
}

// Clear clears color, depth and stencil with the specified color.
func (fb *Framebuffer) Clear(r, g, b, a float32) {
	fb.dev.ClearColor(r, g, b, a)
	fb.dev.Clear(gpu.ColorBuffer | gpu.DepthBuffer | gpu.StencilBuffer)
}

// ColorTexture returns the color attachment texture ID.
func (fb *Framebuffer) ColorTexture() uint32 {
	return fb.colorTexture
}

// FBO returns the underlying framebuffer object ID.
func (fb *Framebuffer) FBO() uint32 {
	return fb.fbo
}

// Size returns the framebuffer dimensions.
func (fb *Framebuffer) Size() (width, height int32) {
	return fb.width, fb.height
}

// Resize reallocates attachment storage when the dimensions change. The
// framebuffer, texture and renderbuffer handles are kept. Zero or negative
// sizes (a minimized window) are ignored. It reports whether storage was
// reallocated.
func (fb *Framebuffer) Resize(width, height int32) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	if width == fb.width && height == fb.height {
		return false
	}

	fb.width = width
	fb.height = height

	dev := fb.dev
	dev.BindTexture(gpu.Texture2D, fb.colorTexture)
	dev.TexImage2D(gpu.Texture2D, 0, fb.width, fb.height, gpu.RGBA, nil)
	dev.BindTexture(gpu.Texture2D, 0)
	dev.RenderbufferStorage(fb.depthRBO, fb.width, fb.height)

	dev.BindFramebuffer(fb.fbo)
	fb.checkStatus()
	dev.BindFramebuffer(0)
	return true
}

// Destroy releases all GPU resources.
func (fb *Framebuffer) Destroy() {
	if fb.fbo != 0 {
		fb.dev.DeleteFramebuffer(fb.fbo)
		fb.fbo = 0
	}
	if fb.colorTexture != 0 {
		fb.dev.DeleteTexture(fb.colorTexture)
		fb.colorTexture = 0
	}
	if fb.depthRBO != 0 {
		fb.dev.DeleteRenderbuffer(fb.depthRBO)
		fb.depthRBO = 0
	}
}
