package fusion_test

import (
	"math"
	"testing"

	"github.com/dualsense-cmd/dualsense/fusion"
	"github.com/dualsense-cmd/dualsense/orientation"
	"github.com/stretchr/testify/assert"
)

func TestComplementaryAtRest(t *testing.T) {
	f := fusion.New(0.98)
	for i := 0; i < 1000; i++ {
		f.Update(orientation.Vec3{}, orientation.Vec3{Z: 1}, 0.01)
	}
	assert.Equal(t, orientation.Identity, f.Orientation)
}

func TestComplementaryTiltCorrection(t *testing.T) {
	f := fusion.New(0.9)
	accel := orientation.Vec3{X: math.Sin(0.4), Z: math.Cos(0.4)}
	for i := 0; i < 500; i++ {
		f.Update(orientation.Vec3{}, accel, 0.01)
	}
	world := f.RotateVec3(accel)
	assert.InDelta(t, 0, world.X, 1e-6)
	assert.InDelta(t, 0, world.Y, 1e-6)
	assert.InDelta(t, 1, world.Z, 1e-6)
	assert.InDelta(t, 1, f.Orientation.Norm(), 1e-9)
}

func TestComplementaryGyroYaw(t *testing.T) {
	// Yaw is unobservable from gravity, so the gyro term drives it alone.
	f := fusion.New(0.98)
	for i := 0; i < 100; i++ {
		f.Update(orientation.Vec3{Z: 1}, orientation.Vec3{Z: 1}, 0.01)
	}
	_, _, yaw := f.Orientation.EulerAngles()
	assert.InDelta(t, 1.0, yaw, 1e-3)

	fwd := f.RotateVec3(orientation.Vec3{Y: 1})
	assert.InDelta(t, -math.Sin(1), fwd.X, 1e-3)
	assert.InDelta(t, math.Cos(1), fwd.Y, 1e-3)
}

func TestComplementaryReset(t *testing.T) {
	f := fusion.New(0.98)
	f.Update(orientation.Vec3{X: 2}, orientation.Vec3{}, 0.1)
	assert.NotEqual(t, orientation.Identity, f.Orientation)
	f.Reset()
	assert.Equal(t, orientation.Identity, f.Orientation)
}
