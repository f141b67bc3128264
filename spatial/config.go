// Package spatial integrates controller input into a position, velocity and
// orientation in controller space (mm, mm/s, rad/s).
package spatial

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// VelocityCurve shapes normalized stick input before it is scaled to speed.
type VelocityCurve int

const (
	CurveLinear VelocityCurve = iota
	CurveQuadratic
	CurveCubic
)

// Apply maps x in [-1, 1] through the curve, preserving sign.
func (c VelocityCurve) Apply(x float64) float64 {
	m := math.Abs(x)
	switch c {
	case CurveQuadratic:
		m = m * m
	case CurveCubic:
		m = m * m * m
	}
	return math.Copysign(m, x)
}

func (c VelocityCurve) String() string {
	switch c {
	case CurveQuadratic:
		return "quadratic"
	case CurveCubic:
		return "cubic"
	default:
		return "linear"
	}
}

func ParseVelocityCurve(s string) (VelocityCurve, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linear", "":
		return CurveLinear, nil
	case "quadratic":
		return CurveQuadratic, nil
	case "cubic":
		return CurveCubic, nil
	default:
		return CurveLinear, fmt.Errorf("unknown velocity curve %q", s)
	}
}

func (c VelocityCurve) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *VelocityCurve) UnmarshalText(b []byte) error {
	v, err := ParseVelocityCurve(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Mode selects how controller input drives motion.
type Mode int

const (
	// ModeStandard: left stick X/Y, triggers Z.
	ModeStandard Mode = iota
	// ModeHeading: triggers drive along the orientation's forward axis.
	ModeHeading
	// ModeAccelerometer: double-integrates gravity-compensated acceleration.
	ModeAccelerometer
	// ModeAxiDraw: right stick X/Y with left stick fine adjust, triggers move
	// the pen axis.
	ModeAxiDraw
	// ModeThreeD: left stick moves along the orientation's right/forward
	// axes, triggers Z.
	ModeThreeD
)

var modeNames = []string{"standard", "heading", "accelerometer", "axidraw", "threed"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return modeNames[m]
}

func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "3d" {
		return ModeThreeD, nil
	}
	for i, n := range modeNames {
		if n == name {
			return Mode(i), nil
		}
	}
	return ModeStandard, fmt.Errorf("unknown spatial mode %q", s)
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// IntegrationConfig holds the tuning of the integration engine.
type IntegrationConfig struct {
	VelocityCurve   VelocityCurve `help:"Stick response curve (linear, quadratic, cubic)" default:"linear" json:"velocityCurve" yaml:"velocityCurve" toml:"velocityCurve"`
	MaxLinearSpeed  float64       `help:"Maximum linear speed in mm/s" default:"200" json:"maxLinearSpeed" yaml:"maxLinearSpeed" toml:"maxLinearSpeed"`
	MaxAngularSpeed float64       `help:"Maximum angular speed in rad/s" default:"6" json:"maxAngularSpeed" yaml:"maxAngularSpeed" toml:"maxAngularSpeed"`
	LinearDamping   float64       `help:"Per-tick velocity damping without input (0-1)" default:"0.92" json:"linearDamping" yaml:"linearDamping" toml:"linearDamping"`
	AngularDamping  float64       `help:"Per-tick angular damping (0-1)" default:"0.96" json:"angularDamping" yaml:"angularDamping" toml:"angularDamping"`
	SmoothingAlpha  float64       `help:"Velocity low-pass factor (0-1)" default:"0.15" json:"smoothingAlpha" yaml:"smoothingAlpha" toml:"smoothingAlpha"`
	GyroWeight      float64       `help:"Gyro trust of the complementary filter (0-1)" default:"0.92" json:"gyroWeight" yaml:"gyroWeight" toml:"gyroWeight"`
	Deadzone        float64       `help:"Stick and trigger deadzone (0-1)" default:"0.12" json:"deadzone" yaml:"deadzone" toml:"deadzone"`
}

func DefaultIntegrationConfig() IntegrationConfig {
	return IntegrationConfig{
		VelocityCurve:   CurveLinear,
		MaxLinearSpeed:  200,
		MaxAngularSpeed: 6,
		LinearDamping:   0.92,
		AngularDamping:  0.96,
		SmoothingAlpha:  0.15,
		GyroWeight:      0.92,
		Deadzone:        0.12,
	}
}

// Validate checks that speeds are positive and factors lie in [0, 1]. The
// deadzone must stay below 1.
func (c IntegrationConfig) Validate() error {
	var errs []error
	if !(c.MaxLinearSpeed > 0) {
		errs = append(errs, fmt.Errorf("maxLinearSpeed must be positive, got %v", c.MaxLinearSpeed))
	}
	if !(c.MaxAngularSpeed > 0) {
		errs = append(errs, fmt.Errorf("maxAngularSpeed must be positive, got %v", c.MaxAngularSpeed))
	}
	unit := []struct {
		name string
		v    float64
	}{
		{"linearDamping", c.LinearDamping},
		{"angularDamping", c.AngularDamping},
		{"smoothingAlpha", c.SmoothingAlpha},
		{"gyroWeight", c.GyroWeight},
	}
	for _, u := range unit {
		if !(u.v >= 0 && u.v <= 1) {
			errs = append(errs, fmt.Errorf("%s must be within [0, 1], got %v", u.name, u.v))
		}
	}
	if !(c.Deadzone >= 0 && c.Deadzone < 1) {
		errs = append(errs, fmt.Errorf("deadzone must be within [0, 1), got %v", c.Deadzone))
	}
	return errors.Join(errs...)
}
