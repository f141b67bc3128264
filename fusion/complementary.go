// Package fusion implements a quaternion complementary filter blending
// integrated gyroscope rotation with accelerometer tilt.
package fusion

import (
	"math"

	"github.com/dualsense-cmd/dualsense/orientation"
)

// minAccelNorm is the accelerometer magnitude (G) below which no tilt
// correction is applied.
const minAccelNorm = 0.01

var up = orientation.Vec3{Z: 1}

// ComplementaryFilter tracks orientation by trusting the gyroscope for
// GyroWeight of each step and pulling the remainder toward the measured
// gravity direction.
type ComplementaryFilter struct {
	GyroWeight  float64
	Orientation orientation.Quaternion
}

func New(gyroWeight float64) *ComplementaryFilter {
	return &ComplementaryFilter{
		GyroWeight:  gyroWeight,
		Orientation: orientation.Identity,
	}
}

// Update integrates gyro (rad/s) over dt and corrects tilt with accel (G).
func (f *ComplementaryFilter) Update(gyro, accel orientation.Vec3, dt float64) {
	q := f.Orientation
	if dt > 0 {
		qDot := q.Mul(orientation.Quaternion{X: gyro.X, Y: gyro.Y, Z: gyro.Z}).Scale(0.5)
		q = orientation.Quaternion{
			W: q.W + qDot.W*dt,
			X: q.X + qDot.X*dt,
			Y: q.Y + qDot.Y*dt,
			Z: q.Z + qDot.Z*dt,
		}.Normalized()
	}

	if accel.Norm() >= minAccelNorm {
		measured := q.RotateVec3(accel.Normalized())
		axis := measured.Cross(up)
		angle := math.Acos(clamp(measured.Dot(up), -1, 1))
		if axis.Norm() > 1e-9 && angle > 0 {
			corr := orientation.FromAxisAngle(axis, angle*(1-f.GyroWeight))
			q = corr.Mul(q).Normalized()
		}
	}

	f.Orientation = q
}

// RotateVec3 rotates v from the sensor frame into the world frame.
func (f *ComplementaryFilter) RotateVec3(v orientation.Vec3) orientation.Vec3 {
	return f.Orientation.RotateVec3(v)
}

// Reset returns the orientation to identity.
func (f *ComplementaryFilter) Reset() {
	f.Orientation = orientation.Identity
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
