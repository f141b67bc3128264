package orientation

// DefaultBeta is the gradient step gain used by the controller connection.
const DefaultBeta = 0.1

// accelMinNorm is the accelerometer magnitude (G) below which the gravity
// correction is skipped and only the gyro is integrated.
const accelMinNorm = 0.01

// Madgwick is a gradient-descent attitude and heading reference filter
// fusing gyroscope (rad/s) and accelerometer (any unit) samples.
//
// It keeps no history beyond the current quaternion.
type Madgwick struct {
	Beta float64
	q    Quaternion
}

func NewMadgwick(beta float64) *Madgwick {
	return &Madgwick{Beta: beta, q: Identity}
}

// Quaternion returns the current orientation estimate.
func (m *Madgwick) Quaternion() Quaternion { return m.q }

// Reset returns the estimate to Identity.
func (m *Madgwick) Reset() { m.q = Identity }

// Update advances the estimate by one step of dt seconds and returns it.
func (m *Madgwick) Update(gyro, accel Vec3, dt float64) Quaternion {
	q := m.q

	// q_dot = 0.5 * q ⊗ (0, gyro)
	qDot := q.Mul(Quaternion{X: gyro.X, Y: gyro.Y, Z: gyro.Z}).Scale(0.5)

	an := accel.Norm()
	if an < accelMinNorm {
		m.q = Quaternion{
			W: q.W + qDot.W*dt,
			X: q.X + qDot.X*dt,
			Y: q.Y + qDot.Y*dt,
			Z: q.Z + qDot.Z*dt,
		}.Normalized()
		return m.q
	}
	a := accel.Scale(1 / an)

	// Objective: predicted gravity direction minus measured.
	f1 := 2*(q.X*q.Z-q.W*q.Y) - a.X
	f2 := 2*(q.W*q.X+q.Y*q.Z) - a.Y
	f3 := 2*(0.5-q.X*q.X-q.Y*q.Y) - a.Z

	// Jacobian, rows per objective component, columns per (w, x, y, z).
	j11, j12, j13, j14 := -2*q.Y, 2*q.Z, -2*q.W, 2*q.X
	j21, j22, j23, j24 := 2*q.X, 2*q.W, 2*q.Z, 2*q.Y
	j31, j32, j33, j34 := 0.0, -4*q.X, -4*q.Y, 0.0

	grad := Quaternion{
		W: j11*f1 + j21*f2 + j31*f3,
		X: j12*f1 + j22*f2 + j32*f3,
		Y: j13*f1 + j23*f2 + j33*f3,
		Z: j14*f1 + j24*f2 + j34*f3,
	}
	if n := grad.Norm(); n > 0 {
		grad = grad.Scale(1 / n)
	} else {
		grad = Quaternion{}
	}

	m.q = Quaternion{
		W: q.W + (qDot.W-m.Beta*grad.W)*dt,
		X: q.X + (qDot.X-m.Beta*grad.X)*dt,
		Y: q.Y + (qDot.Y-m.Beta*grad.Y)*dt,
		Z: q.Z + (qDot.Z-m.Beta*grad.Z)*dt,
	}.Normalized()
	return m.q
}
