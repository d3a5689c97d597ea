// Package camera provides the free-fly camera used to navigate the scene.
package camera

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// Default camera values.
const (
	DefaultYaw         = -90.0
	DefaultPitch       = 0.0
	DefaultSpeed       = 2.5
	DefaultSensitivity = 0.1
	DefaultZoom        = 45.0

	// MaxPitch keeps front away from world-up; at ±90 the right vector
	// degenerates to zero.
	MaxPitch = 89.0
	MinZoom  = 1.0
	MaxZoom  = 45.0

	NearPlane = 0.1
	FarPlane  = 100.0
)

// Direction is a keyboard movement direction.
type Direction int

// Movement directions.
const (
	Forward Direction = iota
	Backward
	Left
	Right
	Up
	Down
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case Forward:
		return "Forward"
	case Backward:
		return "Backward"
	case Left:
		return "Left"
	case Right:
		return "Right"
	case Up:
		return "Up"
	case Down:
		return "Down"
	default:
		return "Unknown"
	}
}

// Camera is a free-fly camera driven by Euler angles.
// Front, Right and Up are derived from Yaw, Pitch and WorldUp and must not be
// assigned directly.
type Camera struct {
	Position mgl32.Vec3
	Front    mgl32.Vec3
	Right    mgl32.Vec3
	Up       mgl32.Vec3
	WorldUp  mgl32.Vec3

	// Euler angles in degrees
	Yaw   float32
	Pitch float32

	MovementSpeed    float32
	MouseSensitivity float32
	Zoom             float32 // vertical field of view in degrees
}

// New creates a camera at position looking along (yaw, pitch).
func New(position, worldUp mgl32.Vec3, yaw, pitch float32) *Camera {
	c := &Camera{
		Position:         position,
		WorldUp:          worldUp.Normalize(),
		Yaw:              yaw,
		Pitch:            clamp(pitch, -MaxPitch, MaxPitch),
		MovementSpeed:    DefaultSpeed,
		MouseSensitivity: DefaultSensitivity,
		Zoom:             DefaultZoom,
	}
	c.updateVectors()
	return c
}

// NewDefault creates a camera at position with the default orientation.
func NewDefault(position mgl32.Vec3) *Camera {
	return New(position, mgl32.Vec3{0, 1, 0}, DefaultYaw, DefaultPitch)
}

// ViewMatrix returns the look-at matrix for the current position and basis.
func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Front), c.Up)
}

// Projection returns the perspective projection for the given aspect ratio.
func (c *Camera) Projection(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.Zoom), aspect, NearPlane, FarPlane)
}

// ProcessKeyboard moves the camera by speed*dt along the given direction.
// Up and Down follow world-up rather than the camera's tilted up vector.
func (c *Camera) ProcessKeyboard(dir Direction, dt float32) {
	velocity := c.MovementSpeed * dt
	switch dir {
	case Forward:
		c.Position = c.Position.Add(c.Front.Mul(velocity))
	case Backward:
		c.Position = c.Position.Sub(c.Front.Mul(velocity))
	case Left:
		c.Position = c.Position.Sub(c.Right.Mul(velocity))
	case Right:
		c.Position = c.Position.Add(c.Right.Mul(velocity))
	case Up:
		c.Position = c.Position.Add(c.WorldUp.Mul(velocity))
	case Down:
		c.Position = c.Position.Sub(c.WorldUp.Mul(velocity))
	}
}

// ProcessMouseMovement applies a cursor delta to yaw and pitch.
func (c *Camera) ProcessMouseMovement(dx, dy float32, constrainPitch bool) {
	c.Yaw += dx * c.MouseSensitivity
	c.Pitch += dy * c.MouseSensitivity

	if constrainPitch {
		c.Pitch = clamp(c.Pitch, -MaxPitch, MaxPitch)
	}

	c.updateVectors()
}

// ProcessMouseScroll narrows or widens the field of view.
func (c *Camera) ProcessMouseScroll(dy float32) {
	c.Zoom = clamp(c.Zoom-dy, MinZoom, MaxZoom)
}

// updateVectors recomputes Front, Right and Up from the Euler angles.
func (c *Camera) updateVectors() {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	pitch := float64(mgl32.DegToRad(c.Pitch))

	front := mgl32.Vec3{
		float32(gomath.Cos(yaw) * gomath.Cos(pitch)),
		float32(gomath.Sin(pitch)),
		float32(gomath.Sin(yaw) * gomath.Cos(pitch)),
	}
	c.Front = front.Normalize()
	c.Right = c.Front.Cross(c.WorldUp).Normalize()
	c.Up = c.Right.Cross(c.Front).Normalize()
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
