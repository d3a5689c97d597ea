// Package ui provides the window, input polling and ImGui inspector panels.
package ui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/backend"
	"github.com/AllenDang/cimgui-go/backend/sdlbackend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/glsandbox/internal/config"
	"github.com/Faultbox/glsandbox/internal/engine/input"
	"github.com/Faultbox/glsandbox/internal/logger"
)

// keyMap maps sandbox keys to ImGui keys.
var keyMap = map[input.Key]imgui.Key{
	input.KeyW:        imgui.KeyW,
	input.KeyS:        imgui.KeyS,
	input.KeyA:        imgui.KeyA,
	input.KeyD:        imgui.KeyD,
	input.KeySpace:    imgui.KeySpace,
	input.KeyLeftCtrl: imgui.KeyLeftCtrl,
	input.KeyEscape:   imgui.KeyEscape,
}

// Backend wraps the ImGui SDL backend. It owns the window, the GL context
// and the event loop.
type Backend struct {
	backend backend.Backend[sdlbackend.SDLWindowFlags]
	hidden  bool
	ran     bool
	log     *zap.Logger
}

// NewBackend creates the window and GL context.
func NewBackend(cfg config.WindowConfig, clear [4]float32) (*Backend, error) {
	b := &Backend{
		log: logger.Named("ui"),
	}

	var err error
	b.backend, err = backend.CreateBackend(sdlbackend.NewSDLBackend())
	if err != nil {
		return nil, fmt.Errorf("create backend: %w", err)
	}

	b.backend.SetBgColor(imgui.NewVec4(clear[0], clear[1], clear[2], clear[3]))
	b.backend.CreateWindow(cfg.Title, cfg.Width, cfg.Height)
	if err := b.backend.SetSwapInterval(swapInterval(cfg.VSync)); err != nil {
		b.log.Warn("Swap interval not applied", zap.Bool("vsync", cfg.VSync), zap.Error(err))
	}
	if cfg.TargetFPS > 0 {
		b.backend.SetTargetFPS(uint(cfg.TargetFPS))
	}

	b.log.Info("Window created",
		zap.String("title", cfg.Title),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Bool("vsync", cfg.VSync),
	)
	return b, nil
}

// Run runs loop once per frame until the window closes. The window and GL
// context are destroyed when Run returns.
func (b *Backend) Run(loop func()) {
	b.ran = true
	b.backend.Run(loop)
}

// SetBeforeDestroyHook sets a function called after the last frame while
// the GL context is still current.
func (b *Backend) SetBeforeDestroyHook(hook func()) {
	b.backend.SetBeforeDestroyContextHook(hook)
}

// Destroy tears down a window whose loop never ran by running it for a
// single frame. After Run it does nothing.
func (b *Backend) Destroy() {
	if b.ran {
		return
	}
	b.backend.SetShouldClose(true)
	b.Run(func() {})
	b.log.Debug("Window destroyed before the frame loop started")
}

// SetBeforeRenderHook sets a function called after loop and before the GUI
// is drawn over the frame.
func (b *Backend) SetBeforeRenderHook(hook func()) {
	b.backend.SetBeforeRenderHook(hook)
}

// SetWindowTitle updates the window title.
func (b *Backend) SetWindowTitle(title string) {
	b.backend.SetWindowTitle(title)
}

// Poll reads this frame's input state.
func (b *Backend) Poll() input.FrameInput {
	io := imgui.CurrentIO()

	var keys input.KeySet
	for k, ik := range keyMap {
		if imgui.IsKeyDown(ik) {
			keys = keys.With(k)
		}
	}

	display := io.DisplaySize()
	scale := io.DisplayFramebufferScale()
	mouse := imgui.MousePos()

	if b.hidden {
		imgui.SetMouseCursor(imgui.MouseCursorNone)
	}

	return input.FrameInput{
		DeltaTime:       io.DeltaTime(),
		WindowSize:      mgl32.Vec2{display.X, display.Y},
		FramebufferSize: framebufferSize(display.X, display.Y, scale.X, scale.Y),
		Keys:            keys,
		MousePos:        mgl32.Vec2{mouse.X, mouse.Y},
		LeftDown:        imgui.IsMouseDown(imgui.MouseButtonLeft),
		Scroll:          io.MouseWheel(),
		GUIWantsMouse:   io.WantCaptureMouse(),
	}
}

// Hide hides the cursor while it is captured.
func (b *Backend) Hide() {
	b.hidden = true
	imgui.SetMouseCursor(imgui.MouseCursorNone)
}

// Show restores the cursor.
func (b *Backend) Show() {
	b.hidden = false
	imgui.SetMouseCursor(imgui.MouseCursorArrow)
}

// Warp moves the cursor to window coordinates.
func (b *Backend) Warp(x, y float32) {
	b.backend.SetCursorPos(float64(x), float64(y))
}

// RequestClose ends Run after the current frame.
func (b *Backend) RequestClose() {
	b.backend.SetShouldClose(true)
}

func swapInterval(vsync bool) sdlbackend.SDLWindowFlags {
	if vsync {
		return sdlbackend.SDLSwapIntervalVsync
	}
	return sdlbackend.SDLSwapIntervalImmediate
}

// framebufferSize converts a window size to drawable pixels.
func framebufferSize(w, h, scaleX, scaleY float32) [2]int32 {
	if scaleX <= 0 {
		scaleX = 1
	}
	if scaleY <= 0 {
		scaleY = 1
	}
	return [2]int32{int32(w * scaleX), int32(h * scaleY)}
}

var _ input.Cursor = (*Backend)(nil)
