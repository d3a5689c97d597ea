// Package input maps polled keyboard and mouse state to camera movement.
package input

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/glsandbox/internal/engine/camera"
)

// Key is a key the sandbox reacts to.
type Key uint8

// Keys.
const (
	KeyW Key = iota
	KeyS
	KeyA
	KeyD
	KeySpace
	KeyLeftCtrl
	KeyEscape
)

// String returns the key name.
func (k Key) String() string {
	switch k {
	case KeyW:
		return "W"
	case KeyS:
		return "S"
	case KeyA:
		return "A"
	case KeyD:
		return "D"
	case KeySpace:
		return "Space"
	case KeyLeftCtrl:
		return "LeftCtrl"
	case KeyEscape:
		return "Escape"
	default:
		return "Unknown"
	}
}

// KeySet is a set of held keys.
type KeySet uint32

// Keys returns a set holding keys.
func Keys(keys ...Key) KeySet {
	var s KeySet
	for _, k := range keys {
		s = s.With(k)
	}
	return s
}

// With returns the set with k added.
func (s KeySet) With(k Key) KeySet { return s | 1<<k }

// Has reports whether k is held.
func (s KeySet) Has(k Key) bool { return s&(1<<k) != 0 }

// FrameInput is the input state polled at the start of a frame.
type FrameInput struct {
	DeltaTime float32

	// Window size in cursor coordinates, and the drawable size in pixels.
	WindowSize      mgl32.Vec2
	FramebufferSize [2]int32

	Keys          KeySet
	MousePos      mgl32.Vec2
	LeftDown      bool
	Scroll        float32
	GUIWantsMouse bool
}

// Center returns the window center in cursor coordinates.
func (in FrameInput) Center() mgl32.Vec2 {
	return in.WindowSize.Mul(0.5)
}

// Cursor is the pointer the mapper captures while looking around.
type Cursor interface {
	Hide()
	Show()
	Warp(x, y float32)
}

// Result reports what Apply did beyond moving the camera.
type Result struct {
	Quit     bool // escape was held
	Captured bool // the cursor is captured for mouse look
}

var movement = []struct {
	key Key
	dir camera.Direction
}{
	{KeyW, camera.Forward},
	{KeyS, camera.Backward},
	{KeyA, camera.Left},
	{KeyD, camera.Right},
	{KeySpace, camera.Up},
	{KeyLeftCtrl, camera.Down},
}

// Mapper turns FrameInput into camera updates. It holds the mouse capture
// state between frames.
type Mapper struct {
	captured   bool
	firstClick bool
	wasDown    bool
}

// NewMapper creates a mapper with the cursor released.
func NewMapper() *Mapper {
	return &Mapper{firstClick: true}
}

// Captured reports whether the cursor is captured.
func (m *Mapper) Captured() bool {
	return m.captured
}

// Apply moves cam for one frame of input.
//
// Holding the left button (pressed outside the GUI) captures the cursor:
// it is hidden and kept at the window center, and each frame's offset from
// the center turns the camera. The press frame only centers the cursor, so
// wherever the cursor was before the click does not jolt the view.
func (m *Mapper) Apply(in FrameInput, cam *camera.Camera, cur Cursor) Result {
	var res Result
	if in.Keys.Has(KeyEscape) {
		res.Quit = true
	}

	for _, mv := range movement {
		if in.Keys.Has(mv.key) {
			cam.ProcessKeyboard(mv.dir, in.DeltaTime)
		}
	}

	pressed := in.LeftDown && !m.wasDown
	m.wasDown = in.LeftDown
	center := in.Center()

	if pressed && !in.GUIWantsMouse {
		cur.Hide()
		m.captured = true
		m.firstClick = true
	}

	switch {
	case in.LeftDown && m.captured:
		if m.firstClick {
			m.firstClick = false
		} else {
			dx := in.MousePos[0] - center[0]
			dy := center[1] - in.MousePos[1] // window Y grows downwards
			cam.ProcessMouseMovement(dx, dy, true)
		}
		cur.Warp(center[0], center[1])

	case !in.LeftDown && m.captured:
		cur.Show()
		m.captured = false
		m.firstClick = true
	}

	if in.Scroll != 0 && !in.GUIWantsMouse {
		cam.ProcessMouseScroll(in.Scroll)
	}

	res.Captured = m.captured
	return res
}
