package framebuffer

import (
	"errors"
	"testing"

	"github.com/Faultbox/glsandbox/internal/engine/gpu"
	"github.com/Faultbox/glsandbox/internal/engine/gpu/gputest"
)

func TestNew(t *testing.T) {
	dev := gputest.New()
	fb := New(dev, 800, 600)

	if err := fb.Complete(); err != nil {
		t.Fatalf("Complete() = %v", err)
	}
	if w, h := fb.Size(); w != 800 || h != 600 {
		t.Errorf("Size() = %dx%d, want 800x600", w, h)
	}
	tex := dev.Textures[fb.ColorTexture()]
	if tex.Width != 800 || tex.Height != 600 || tex.Format != gpu.RGBA {
		t.Errorf("color texture = %+v", tex)
	}
	rb := dev.Renderbuffs[fb.depthRBO]
	if rb.Width != 800 || rb.Height != 600 {
		t.Errorf("depth/stencil = %dx%d", rb.Width, rb.Height)
	}
	if dev.State().Framebuffer != 0 {
		t.Error("New should leave the default framebuffer bound")
	}
}

func TestNewClampsSize(t *testing.T) {
	fb := New(gputest.New(), 0, -5)
	if w, h := fb.Size(); w != 1 || h != 1 {
		t.Errorf("Size() = %dx%d, want 1x1", w, h)
	}
}

func TestIncomplete(t *testing.T) {
	dev := gputest.New()
	dev.Incomplete = true
	fb := New(dev, 10, 10)

	if err := fb.Complete(); !errors.Is(err, ErrIncomplete) {
		t.Errorf("Complete() = %v, want ErrIncomplete", err)
	}

	dev.Incomplete = false
	fb.Resize(20, 20)
	if err := fb.Complete(); err != nil {
		t.Errorf("Complete() after good resize = %v", err)
	}
}

func TestResize(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int32
		resized bool
		wantW   int32
		wantH   int32
	}{
		{"zero width", 0, 600, false, 800, 600},
		{"zero height", 800, 0, false, 800, 600},
		{"minimized", 0, 0, false, 800, 600},
		{"negative", -1, -1, false, 800, 600},
		{"same size", 800, 600, false, 800, 600},
		{"grow", 1024, 768, true, 1024, 768},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := gputest.New()
			fb := New(dev, 800, 600)
			fbo, color, rbo := fb.FBO(), fb.ColorTexture(), fb.depthRBO
			texAllocs := dev.Textures[color].Allocations
			rbAllocs := dev.Renderbuffs[rbo].Allocations

			if got := fb.Resize(tt.w, tt.h); got != tt.resized {
				t.Errorf("Resize(%d, %d) = %v, want %v", tt.w, tt.h, got, tt.resized)
			}
			if w, h := fb.Size(); w != tt.wantW || h != tt.wantH {
				t.Errorf("Size() = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
			if fb.FBO() != fbo || fb.ColorTexture() != color || fb.depthRBO != rbo {
				t.Error("handles must survive a resize")
			}

			wantAllocs := 0
			if tt.resized {
				wantAllocs = 1
			}
			if got := dev.Textures[color].Allocations - texAllocs; got != wantAllocs {
				t.Errorf("color reallocations = %d, want %d", got, wantAllocs)
			}
			if got := dev.Renderbuffs[rbo].Allocations - rbAllocs; got != wantAllocs {
				t.Errorf("depth/stencil reallocations = %d, want %d", got, wantAllocs)
			}
			if tex := dev.Textures[color]; tex.Width != tt.wantW || tex.Height != tt.wantH {
				t.Errorf("color storage = %dx%d", tex.Width, tex.Height)
			}
			if err := fb.Complete(); err != nil {
				t.Errorf("Complete() = %v", err)
			}
		})
	}
}

func TestBindAndClear(t *testing.T) {
	dev := gputest.New()
	fb := New(dev, 320, 200)
	dev.Reset()

	fb.Bind()
	fb.Clear(0.1, 0.1, 0.1, 1)

	st := dev.State()
	if st.Framebuffer != fb.FBO() {
		t.Errorf("bound framebuffer = %d, want %d", st.Framebuffer, fb.FBO())
	}
	if st.Viewport != [4]int32{0, 0, 320, 200} {
		t.Errorf("viewport = %v", st.Viewport)
	}
	want := "Clear(7)"
	if last := dev.Calls[len(dev.Calls)-1]; last != want {
		t.Errorf("last call = %q, want %q", last, want)
	}

	fb.Unbind()
	if dev.State().Framebuffer != 0 {
		t.Error("Unbind should bind the default framebuffer")
	}
}

func TestDestroy(t *testing.T) {
	dev := gputest.New()
	fb := New(dev, 4, 4)
	color, rbo := fb.ColorTexture(), fb.depthRBO

	fb.Destroy()
	fb.Destroy()

	if len(dev.Framebufs) != 0 {
		t.Error("framebuffer not deleted")
	}
	if !dev.Textures[color].Deleted || !dev.Renderbuffs[rbo].Deleted {
		t.Error("attachments not deleted")
	}
}
