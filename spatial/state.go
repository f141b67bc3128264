package spatial

import (
	"math"

	"github.com/dualsense-cmd/dualsense/device/dualsense"
	"github.com/dualsense-cmd/dualsense/fusion"
	"github.com/dualsense-cmd/dualsense/orientation"
)

const (
	// GToMMPerS2 converts acceleration in G to mm/s².
	GToMMPerS2 = 9806.65

	gyroDeadzone = 0.005 // rad/s

	accelDeadzone = 0.08 * GToMMPerS2
	accelDecay    = 0.98
	accelSnap     = 5.0 // mm/s

	inputThreshold = 0.1 // target velocity below which damping kicks in, mm/s
	velocitySnap   = 0.1 // mm/s

	axiDrawFineWeight = 0.5
	axiDrawPenDown    = 0.5
	axiDrawPenUp      = 2.0

	displayKeep = 0.8
)

// AxiDraw force tags latched from the d-pad.
const (
	ForceNone  uint8 = 0
	ForceUp    uint8 = 1
	ForceDown  uint8 = 2
	ForceLeft  uint8 = 3
	ForceRight uint8 = 4
)

// Controller frame axes: X right, Y forward, Z up through the touchpad.
var (
	axisForward = orientation.Vec3{Y: 1}
	axisRight   = orientation.Vec3{X: 1}
)

// State is the integrated spatial state of one controller. It is not safe
// for concurrent use; hand copies to other goroutines with Snapshot.
type State struct {
	cfg  IntegrationConfig
	mode Mode

	position         orientation.Vec3
	velocity         orientation.Vec3
	linearAccel      orientation.Vec3
	angularVelocity  orientation.Vec3
	smoothedVelocity orientation.Vec3

	filter    *fusion.ComplementaryFilter
	forceType uint8
}

func New(cfg IntegrationConfig) *State {
	return &State{
		cfg:    cfg,
		mode:   ModeStandard,
		filter: fusion.New(cfg.GyroWeight),
	}
}

func (s *State) Config() IntegrationConfig { return s.cfg }

func (s *State) Mode() Mode { return s.mode }

// SetMode switches the motion model and stops any current motion.
func (s *State) SetMode(m Mode) {
	s.mode = m
	s.velocity = orientation.Vec3{}
}

// Position in mm.
func (s *State) Position() orientation.Vec3 { return s.position }

// Velocity in mm/s as used for integration.
func (s *State) Velocity() orientation.Vec3 { return s.velocity }

// LinearAccel is the last accelerometer sample in G.
func (s *State) LinearAccel() orientation.Vec3 { return s.linearAccel }

// AngularVelocity is the last gyro sample in rad/s after the drift deadzone.
func (s *State) AngularVelocity() orientation.Vec3 { return s.angularVelocity }

// SmoothedVelocity is a low-passed velocity meant for display only.
func (s *State) SmoothedVelocity() orientation.Vec3 { return s.smoothedVelocity }

func (s *State) Orientation() orientation.Quaternion { return s.filter.Orientation }

func (s *State) SetOrientation(q orientation.Quaternion) { s.filter.Orientation = q }

// ForceType is the AxiDraw tag last latched from the d-pad.
func (s *State) ForceType() uint8 { return s.forceType }

// Reset zeroes motion and returns orientation to identity. The mode and the
// AxiDraw force tag are kept.
func (s *State) Reset() {
	s.position = orientation.Vec3{}
	s.velocity = orientation.Vec3{}
	s.linearAccel = orientation.Vec3{}
	s.angularVelocity = orientation.Vec3{}
	s.smoothedVelocity = orientation.Vec3{}
	s.filter.Reset()
}

// ResetPosition moves back to the origin and stops, keeping orientation.
func (s *State) ResetPosition() {
	s.position = orientation.Vec3{}
	s.velocity = orientation.Vec3{}
	s.smoothedVelocity = orientation.Vec3{}
}

func (s *State) ResetOrientation() { s.filter.Reset() }

// Snapshot returns an independent copy, including its own filter.
func (s *State) Snapshot() *State {
	c := *s
	f := *s.filter
	c.filter = &f
	return &c
}

// Integrate advances the state by dt seconds using one decoded controller
// state. Holding Options resets the state before the mode is applied.
func (s *State) Integrate(cs *dualsense.ControllerState, dt float64) {
	gyro := cs.Gyroscope.RadPerSec()
	gyro = orientation.Vec3{
		X: gyroCut(gyro.X),
		Y: gyroCut(gyro.Y),
		Z: gyroCut(gyro.Z),
	}
	accel := cs.Accelerometer.G()

	s.angularVelocity = gyro
	s.linearAccel = accel
	s.filter.Update(gyro, accel, dt)

	if cs.Buttons.Options {
		s.Reset()
	}

	switch s.mode {
	case ModeStandard:
		lx, ly := s.stick(cs.LeftStick)
		l2, r2 := s.triggers(cs.Triggers)
		s.step(orientation.Vec3{X: lx, Y: ly, Z: r2 - l2}.Scale(s.cfg.MaxLinearSpeed), dt)

	case ModeHeading:
		l2, r2 := s.triggers(cs.Triggers)
		forward := s.filter.RotateVec3(axisForward)
		s.step(forward.Scale((r2-l2)*s.cfg.MaxLinearSpeed), dt)

	case ModeAccelerometer:
		s.integrateAccel(dt)

	case ModeAxiDraw:
		rx, ry := s.stick(cs.RightStick)
		lx, ly := s.stick(cs.LeftStick)
		l2, r2 := s.triggers(cs.Triggers)
		target := orientation.Vec3{
			X: rx + lx*axiDrawFineWeight,
			Y: ry + ly*axiDrawFineWeight,
			Z: r2*axiDrawPenDown - l2*axiDrawPenUp,
		}
		s.latchForce(cs.Buttons)
		s.step(target.Scale(s.cfg.MaxLinearSpeed), dt)

	case ModeThreeD:
		lx, ly := s.stick(cs.LeftStick)
		l2, r2 := s.triggers(cs.Triggers)
		forward := s.filter.RotateVec3(axisForward)
		right := s.filter.RotateVec3(axisRight)
		target := right.Scale(lx).Add(forward.Scale(ly))
		target.Z += r2 - l2
		s.step(target.Scale(s.cfg.MaxLinearSpeed), dt)
	}

	s.smoothedVelocity = s.smoothedVelocity.Scale(displayKeep).Add(s.velocity.Scale(1 - displayKeep))
}

// step low-passes velocity toward target, damps it when there is no input
// and integrates position.
func (s *State) step(target orientation.Vec3, dt float64) {
	a := s.cfg.SmoothingAlpha
	s.velocity = s.velocity.Scale(1 - a).Add(target.Scale(a))

	if math.Abs(target.X) <= inputThreshold &&
		math.Abs(target.Y) <= inputThreshold &&
		math.Abs(target.Z) <= inputThreshold {
		s.velocity = s.velocity.Scale(s.cfg.LinearDamping)
		s.velocity = orientation.Vec3{
			X: snap(s.velocity.X, velocitySnap),
			Y: snap(s.velocity.Y, velocitySnap),
			Z: snap(s.velocity.Z, velocitySnap),
		}
	}

	s.position = s.position.Add(s.velocity.Scale(dt))
}

// integrateAccel double-integrates world-frame acceleration with gravity
// removed, using its own heavy decay instead of step.
func (s *State) integrateAccel(dt float64) {
	world := s.filter.RotateVec3(s.linearAccel)
	world.Z -= 1
	a := world.Scale(GToMMPerS2).Array()
	v := s.velocity.Array()
	p := s.position.Array()

	for i := range a {
		if math.Abs(a[i]) < accelDeadzone {
			a[i] = 0
		} else {
			a[i] -= math.Copysign(accelDeadzone, a[i])
		}
		v[i] = snap((v[i]+a[i]*dt)*accelDecay, accelSnap)
		p[i] += v[i] * dt
	}

	s.velocity = orientation.Vec3{X: v[0], Y: v[1], Z: v[2]}
	s.position = orientation.Vec3{X: p[0], Y: p[1], Z: p[2]}
}

func (s *State) stick(st dualsense.Stick) (x, y float64) {
	x, y = st.Normalized()
	x = s.cfg.VelocityCurve.Apply(dualsense.ApplyDeadzone(x, s.cfg.Deadzone))
	y = s.cfg.VelocityCurve.Apply(dualsense.ApplyDeadzone(y, s.cfg.Deadzone))
	return x, y
}

func (s *State) triggers(t dualsense.Triggers) (l2, r2 float64) {
	l2, r2 = t.Normalized()
	return dualsense.ApplyDeadzone(l2, s.cfg.Deadzone), dualsense.ApplyDeadzone(r2, s.cfg.Deadzone)
}

func (s *State) latchForce(b dualsense.Buttons) {
	if b.DPadUp {
		s.forceType = ForceUp
	}
	if b.DPadDown {
		s.forceType = ForceDown
	}
	if b.DPadLeft {
		s.forceType = ForceLeft
	}
	if b.DPadRight {
		s.forceType = ForceRight
	}
}

func gyroCut(v float64) float64 {
	if math.Abs(v) < gyroDeadzone {
		return 0
	}
	return v
}

func snap(v, limit float64) float64 {
	if math.Abs(v) < limit {
		return 0
	}
	return v
}
