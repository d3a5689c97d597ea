package scene

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/glsandbox/internal/engine/gpu"
	"github.com/Faultbox/glsandbox/internal/engine/mesh"
	"github.com/Faultbox/glsandbox/internal/engine/shader"
)

// Instance is the transform of one copy in an instance batch.
type Instance struct {
	Position mgl32.Vec3
	Scale    mgl32.Vec3
	Rotation [4]float32
}

// ModelMatrix returns the instance's model matrix.
func (in Instance) ModelMatrix() mgl32.Mat4 {
	return ModelMatrix(in.Position, in.Scale, in.Rotation)
}

// InstanceBatch draws one model many times from a static buffer of
// per-instance model matrices.
type InstanceBatch struct {
	Model     *mesh.Model
	Instances []Instance

	buffer   uint32
	matrices []float32
}

// NewInstanceBatch computes and uploads the instance matrices and attaches
// the buffer to every mesh of model.
func NewInstanceBatch(dev gpu.Device, model *mesh.Model, instances []Instance) *InstanceBatch {
	b := &InstanceBatch{
		Model:     model,
		Instances: instances,
		buffer:    dev.CreateBuffer(),
	}
	b.Upload(dev)
	model.EnableInstancing(dev, b.buffer)
	return b
}

// Upload recomputes every matrix and replaces the whole buffer. Call it
// after changing Instances; there is no partial update.
func (b *InstanceBatch) Upload(dev gpu.Device) {
	b.matrices = b.matrices[:0]
	for _, in := range b.Instances {
		m := in.ModelMatrix()
		b.matrices = append(b.matrices, m[:]...)
	}
	dev.BufferFloats(gpu.ArrayBuffer, b.buffer, b.matrices, gpu.StaticDraw)
}

// Count returns the number of instances.
func (b *InstanceBatch) Count() int32 {
	return int32(len(b.Instances))
}

// Buffer returns the instance buffer handle.
func (b *InstanceBatch) Buffer() uint32 {
	return b.buffer
}

// Draw issues one instanced draw per mesh.
func (b *InstanceBatch) Draw(dev gpu.Device, prog *shader.Program) {
	if len(b.Instances) == 0 {
		return
	}
	b.Model.DrawInstanced(dev, prog, b.Count())
}

// Destroy deletes the instance buffer. The model is released by its owner.
func (b *InstanceBatch) Destroy(dev gpu.Device) {
	if b.buffer != 0 {
		dev.DeleteBuffer(b.buffer)
		b.buffer = 0
	}
}

// FieldParams configures AsteroidField.
type FieldParams struct {
	Count  int
	Radius float32
	Offset float32
	Seed   uint64
}

// asteroidAxis is the rotation axis shared by all asteroids.
var asteroidAxis = mgl32.Vec3{0.4, 0.6, 0.8}

// AsteroidField scatters p.Count instances around a ring of radius p.Radius
// in the XZ plane. Each is displaced by up to ±Offset (vertical displacement
// flattened to 40%), scaled uniformly in [0.05, 0.25) and rotated by a random
// angle about a fixed axis. The same seed always yields the same field.
func AsteroidField(p FieldParams) []Instance {
	if p.Count <= 0 {
		return nil
	}
	rng := rand.New(rand.NewPCG(p.Seed, p.Seed^0x9e3779b97f4a7c15))
	displace := func() float32 {
		return (rng.Float32()*2 - 1) * p.Offset
	}

	out := make([]Instance, p.Count)
	for i := range out {
		angle := float64(i) / float64(p.Count) * 2 * math.Pi
		x := float32(math.Sin(angle))*p.Radius + displace()
		y := displace() * 0.4
		z := float32(math.Cos(angle))*p.Radius + displace()

		s := 0.05 + rng.Float32()*0.2
		out[i] = Instance{
			Position: mgl32.Vec3{x, y, z},
			Scale:    mgl32.Vec3{s, s, s},
			Rotation: [4]float32{rng.Float32() * 360, asteroidAxis[0], asteroidAxis[1], asteroidAxis[2]},
		}
	}
	return out
}
