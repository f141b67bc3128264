// Package orientation provides the vector and quaternion math used for IMU
// processing, and a gradient-descent (Madgwick) attitude estimator.
package orientation

import "math"

// Vec3 is a 3-component vector.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) Norm() float64 { return math.Sqrt(v.Dot(v)) }

// Normalized returns v scaled to unit length, or the zero vector if v is zero.
func (v Vec3) Normalized() Vec3 {
	n := v.Norm()
	if n == 0 {
		return Vec3{}
	}
	return v.Scale(1 / n)
}

// Array returns the components as [x, y, z].
func (v Vec3) Array() [3]float64 { return [3]float64{v.X, v.Y, v.Z} }

// Quaternion represents a rotation as W + Xi + Yj + Zk.
type Quaternion struct {
	W, X, Y, Z float64
}

// Identity is the no-rotation quaternion.
var Identity = Quaternion{W: 1}

// FromAxisAngle builds a unit quaternion rotating angle radians about axis.
// A zero axis yields Identity.
func FromAxisAngle(axis Vec3, angle float64) Quaternion {
	a := axis.Normalized()
	if a == (Vec3{}) {
		return Identity
	}
	s, c := math.Sincos(angle / 2)
	return Quaternion{W: c, X: a.X * s, Y: a.Y * s, Z: a.Z * s}
}

// Mul returns the Hamilton product q ⊗ r.
func (q Quaternion) Mul(r Quaternion) Quaternion {
	return Quaternion{
		W: q.W*r.W - q.X*r.X - q.Y*r.Y - q.Z*r.Z,
		X: q.W*r.X + q.X*r.W + q.Y*r.Z - q.Z*r.Y,
		Y: q.W*r.Y - q.X*r.Z + q.Y*r.W + q.Z*r.X,
		Z: q.W*r.Z + q.X*r.Y - q.Y*r.X + q.Z*r.W,
	}
}

func (q Quaternion) Scale(s float64) Quaternion {
	return Quaternion{q.W * s, q.X * s, q.Y * s, q.Z * s}
}

func (q Quaternion) Conjugate() Quaternion { return Quaternion{q.W, -q.X, -q.Y, -q.Z} }

func (q Quaternion) Norm() float64 {
	return math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
}

// Normalized returns q scaled to unit length. A zero quaternion yields Identity.
func (q Quaternion) Normalized() Quaternion {
	n := q.Norm()
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return Identity
	}
	return q.Scale(1 / n)
}

// RotateVec3 rotates v by the unit quaternion q (q ⊗ v ⊗ q*).
func (q Quaternion) RotateVec3(v Vec3) Vec3 {
	p := Quaternion{X: v.X, Y: v.Y, Z: v.Z}
	r := q.Mul(p).Mul(q.Conjugate())
	return Vec3{r.X, r.Y, r.Z}
}

// EulerAngles returns roll (about X), pitch (about Y) and yaw (about Z) in radians.
func (q Quaternion) EulerAngles() (roll, pitch, yaw float64) {
	sinrCosp := 2 * (q.W*q.X + q.Y*q.Z)
	cosrCosp := 1 - 2*(q.X*q.X+q.Y*q.Y)
	roll = math.Atan2(sinrCosp, cosrCosp)

	sinp := 2 * (q.W*q.Y - q.Z*q.X)
	if math.Abs(sinp) >= 1 {
		pitch = math.Copysign(math.Pi/2, sinp)
	} else {
		pitch = math.Asin(sinp)
	}

	sinyCosp := 2 * (q.W*q.Z + q.X*q.Y)
	cosyCosp := 1 - 2*(q.Y*q.Y+q.Z*q.Z)
	yaw = math.Atan2(sinyCosp, cosyCosp)
	return roll, pitch, yaw
}
