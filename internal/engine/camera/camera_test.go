package camera

import (
	gomath "math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const eps = 1e-5

func approx(a, b float32) bool {
	return gomath.Abs(float64(a-b)) < eps
}

func TestNewDefaults(t *testing.T) {
	c := NewDefault(mgl32.Vec3{0, 0, 3})

	if c.MovementSpeed != DefaultSpeed {
		t.Errorf("MovementSpeed = %f, want %f", c.MovementSpeed, DefaultSpeed)
	}
	if c.MouseSensitivity != DefaultSensitivity {
		t.Errorf("MouseSensitivity = %f, want %f", c.MouseSensitivity, DefaultSensitivity)
	}
	if c.Zoom != DefaultZoom {
		t.Errorf("Zoom = %f, want %f", c.Zoom, DefaultZoom)
	}
	if !vecNear(c.Front, mgl32.Vec3{0, 0, -1}, eps) {
		t.Errorf("Front = %v, want (0,0,-1)", c.Front)
	}
	if !vecNear(c.Right, mgl32.Vec3{1, 0, 0}, eps) {
		t.Errorf("Right = %v, want (1,0,0)", c.Right)
	}
	if !vecNear(c.Up, mgl32.Vec3{0, 1, 0}, eps) {
		t.Errorf("Up = %v, want (0,1,0)", c.Up)
	}
}

func TestBasisOrthonormal(t *testing.T) {
	yaws := []float32{-720, -270, -90, -45, 0, 12.5, 90, 179, 360, 1234.5}
	pitches := []float32{-89, -60, -30, -1, 0, 1, 30, 60, 89}

	for _, yaw := range yaws {
		for _, pitch := range pitches {
			c := New(mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}, yaw, pitch)

			for name, v := range map[string]mgl32.Vec3{"front": c.Front, "right": c.Right, "up": c.Up} {
				if !approx(v.Len(), 1) {
					t.Errorf("yaw=%f pitch=%f: |%s| = %f, want 1", yaw, pitch, name, v.Len())
				}
			}
			if d := c.Front.Dot(c.Right); !approx(d, 0) {
				t.Errorf("yaw=%f pitch=%f: front·right = %f, want 0", yaw, pitch, d)
			}
			if d := c.Front.Dot(c.Up); !approx(d, 0) {
				t.Errorf("yaw=%f pitch=%f: front·up = %f, want 0", yaw, pitch, d)
			}
			if d := c.Right.Dot(c.Up); !approx(d, 0) {
				t.Errorf("yaw=%f pitch=%f: right·up = %f, want 0", yaw, pitch, d)
			}
			// Right-handed: right × up = -front (camera looks down its -Z)
			if !vecNear(c.Right.Cross(c.Up), c.Front.Mul(-1), 1e-4) {
				t.Errorf("yaw=%f pitch=%f: basis is not right-handed", yaw, pitch)
			}
		}
	}
}

func TestPitchClamp(t *testing.T) {
	tests := []struct {
		name string
		dy   float32
		want float32
	}{
		{"large positive", 10000, MaxPitch},
		{"large negative", -10000, -MaxPitch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewDefault(mgl32.Vec3{})
			for i := 0; i < 50; i++ {
				c.ProcessMouseMovement(0, tt.dy, true)
				if c.Pitch > MaxPitch || c.Pitch < -MaxPitch {
					t.Fatalf("pitch = %f after %d moves, outside ±%v", c.Pitch, i+1, MaxPitch)
				}
			}
			if c.Pitch != tt.want {
				t.Errorf("pitch = %f, want %f", c.Pitch, tt.want)
			}
			if gomath.IsNaN(float64(c.Right.Len())) || !approx(c.Right.Len(), 1) {
				t.Errorf("right vector degenerated at clamped pitch: %v", c.Right)
			}
		})
	}
}

func TestPitchUnconstrained(t *testing.T) {
	c := NewDefault(mgl32.Vec3{})
	c.ProcessMouseMovement(0, 500, false)
	if c.Pitch != 50 {
		t.Errorf("pitch = %f, want 50", c.Pitch)
	}
}

func TestMouseMovementScalesBySensitivity(t *testing.T) {
	c := NewDefault(mgl32.Vec3{})
	c.ProcessMouseMovement(100, 50, true)

	if !approx(c.Yaw, DefaultYaw+10) {
		t.Errorf("yaw = %f, want %f", c.Yaw, DefaultYaw+10)
	}
	if !approx(c.Pitch, 5) {
		t.Errorf("pitch = %f, want 5", c.Pitch)
	}
}

func TestZoomClamp(t *testing.T) {
	tests := []struct {
		scroll float32
		want   float32
	}{
		{0, 45},
		{5, 40},
		{44, 1},
		{1000, 1},
		{-1000, 45},
		{-5, 45},
	}

	for _, tt := range tests {
		c := NewDefault(mgl32.Vec3{})
		c.ProcessMouseScroll(tt.scroll)
		if c.Zoom != tt.want {
			t.Errorf("ProcessMouseScroll(%f): zoom = %f, want %f", tt.scroll, c.Zoom, tt.want)
		}
	}
}

func TestZoomMonotonic(t *testing.T) {
	c := NewDefault(mgl32.Vec3{})
	prev := c.Zoom
	for i := 0; i < 100; i++ {
		c.ProcessMouseScroll(0.5)
		if c.Zoom > prev {
			t.Fatalf("zoom increased from %f to %f on positive scroll", prev, c.Zoom)
		}
		if c.Zoom < MinZoom || c.Zoom > MaxZoom {
			t.Fatalf("zoom %f outside [%v, %v]", c.Zoom, MinZoom, MaxZoom)
		}
		prev = c.Zoom
	}
	if c.Zoom != MinZoom {
		t.Errorf("zoom = %f after long scroll, want %v", c.Zoom, MinZoom)
	}
}

func TestViewMatrixCanonical(t *testing.T) {
	c := NewDefault(mgl32.Vec3{})
	if got := c.ViewMatrix(); !matNear(got, mgl32.Ident4(), eps) {
		t.Errorf("ViewMatrix() at origin looking down -Z = %v, want identity", got)
	}

	c = NewDefault(mgl32.Vec3{0, 0, 3})
	want := mgl32.Translate3D(0, 0, -3)
	if got := c.ViewMatrix(); !matNear(got, want, eps) {
		t.Errorf("ViewMatrix() at (0,0,3) = %v, want %v", got, want)
	}
}

func TestProcessKeyboard(t *testing.T) {
	tests := []struct {
		dir  Direction
		want mgl32.Vec3
	}{
		{Forward, mgl32.Vec3{0, 0, -2.5}},
		{Backward, mgl32.Vec3{0, 0, 2.5}},
		{Left, mgl32.Vec3{-2.5, 0, 0}},
		{Right, mgl32.Vec3{2.5, 0, 0}},
		{Up, mgl32.Vec3{0, 2.5, 0}},
		{Down, mgl32.Vec3{0, -2.5, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.dir.String(), func(t *testing.T) {
			c := NewDefault(mgl32.Vec3{})
			c.ProcessKeyboard(tt.dir, 1.0)
			if !vecNear(c.Position, tt.want, eps) {
				t.Errorf("position = %v, want %v", c.Position, tt.want)
			}
		})
	}
}

func TestVerticalMovementUsesWorldUp(t *testing.T) {
	// Looking steeply down, camera-up tilts forward; Up must still be vertical.
	c := New(mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}, DefaultYaw, -60)
	c.ProcessKeyboard(Up, 2)

	want := mgl32.Vec3{0, 2 * DefaultSpeed, 0}
	if !vecNear(c.Position, want, eps) {
		t.Errorf("position = %v, want %v", c.Position, want)
	}
}

func TestProjectionUsesZoom(t *testing.T) {
	c := NewDefault(mgl32.Vec3{})
	c.Zoom = 30

	want := mgl32.Perspective(mgl32.DegToRad(30), 1.5, NearPlane, FarPlane)
	if got := c.Projection(1.5); !matNear(got, want, eps) {
		t.Errorf("Projection(1.5) = %v, want %v", got, want)
	}
}

// vecNear compares with an absolute tolerance per component.
func vecNear(a, b mgl32.Vec3, tol float32) bool {
	return a.Sub(b).Len() < tol
}

func matNear(a, b mgl32.Mat4, tol float32) bool {
	for i := range a {
		if d := a[i] - b[i]; d > tol || d < -tol {
			return false
		}
	}
	return true
}
