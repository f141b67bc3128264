package dualsense

import (
	"encoding/binary"
	"fmt"

	"github.com/dualsense-cmd/dualsense/orientation"
)

// Transport identifies the physical link a controller is attached over.
type Transport int

const (
	TransportUSB Transport = iota
	TransportBluetooth
)

// TransportFromInterface maps a HID interface number to a transport.
// hidapi reports -1 for Bluetooth devices.
func TransportFromInterface(n int) Transport {
	if n == InterfaceNumBT {
		return TransportBluetooth
	}
	return TransportUSB
}

func (t Transport) String() string {
	switch t {
	case TransportBluetooth:
		return "bluetooth"
	default:
		return "usb"
	}
}

type Buttons struct {
	Cross    bool `json:"cross"`
	Circle   bool `json:"circle"`
	Square   bool `json:"square"`
	Triangle bool `json:"triangle"`

	DPadUp    bool `json:"dpadUp"`
	DPadDown  bool `json:"dpadDown"`
	DPadLeft  bool `json:"dpadLeft"`
	DPadRight bool `json:"dpadRight"`

	L1 bool `json:"l1"`
	R1 bool `json:"r1"`
	L2 bool `json:"l2"`
	R2 bool `json:"r2"`
	L3 bool `json:"l3"`
	R3 bool `json:"r3"`

	Options  bool `json:"options"`
	Create   bool `json:"create"`
	PS       bool `json:"ps"`
	Touchpad bool `json:"touchpad"`
	Mute     bool `json:"mute"`
}

// Stick holds raw analog stick bytes, centered at 128.
type Stick struct {
	X uint8 `json:"x"`
	Y uint8 `json:"y"`
}

// Normalized returns both axes mapped to [-1, 1].
func (s Stick) Normalized() (x, y float64) {
	return clamp((float64(s.X)-128)/127, -1, 1), clamp((float64(s.Y)-128)/127, -1, 1)
}

// NormalizedWithDeadzone applies a radial deadzone: deflections inside dz
// read as zero and the remainder is rescaled so full deflection stays 1.
func (s Stick) NormalizedWithDeadzone(dz float64) (x, y float64) {
	x, y = s.Normalized()
	mag := hypot(x, y)
	if mag < dz || mag == 0 {
		return 0, 0
	}
	scale := min((mag-dz)/(1-dz), 1) / mag
	return x * scale, y * scale
}

type Triggers struct {
	L2 uint8 `json:"l2"`
	R2 uint8 `json:"r2"`
}

// Normalized returns both triggers mapped to [0, 1].
func (t Triggers) Normalized() (l2, r2 float64) {
	return float64(t.L2) / 255, float64(t.R2) / 255
}

type TouchFinger struct {
	Active bool   `json:"active"`
	ID     uint8  `json:"id"`
	X      uint16 `json:"x"`
	Y      uint16 `json:"y"`
}

type Touchpad struct {
	Finger1 TouchFinger `json:"finger1"`
	Finger2 TouchFinger `json:"finger2"`
}

type Gyroscope struct {
	X int16 `json:"x"`
	Y int16 `json:"y"`
	Z int16 `json:"z"`
}

// RadPerSec converts raw counts to rad/s using the approximate factory scale.
func (g Gyroscope) RadPerSec() orientation.Vec3 {
	return orientation.Vec3{
		X: float64(g.X) / GyroCountsPerRadS,
		Y: float64(g.Y) / GyroCountsPerRadS,
		Z: float64(g.Z) / GyroCountsPerRadS,
	}
}

type Accelerometer struct {
	X int16 `json:"x"`
	Y int16 `json:"y"`
	Z int16 `json:"z"`
}

// G converts raw counts to G using the approximate factory scale.
func (a Accelerometer) G() orientation.Vec3 {
	return orientation.Vec3{
		X: float64(a.X) / AccelCountsPerG,
		Y: float64(a.Y) / AccelCountsPerG,
		Z: float64(a.Z) / AccelCountsPerG,
	}
}

type Battery struct {
	Level        uint8 `json:"level"` // 0-10
	Charging     bool  `json:"charging"`
	FullyCharged bool  `json:"fullyCharged"`
}

func (b Battery) Percentage() uint8 {
	p := int(b.Level) * 10
	if p > 100 {
		p = 100
	}
	return uint8(p)
}

// ControllerState is the decoded content of one input report plus the
// orientation estimate derived from its IMU samples.
type ControllerState struct {
	Buttons       Buttons       `json:"buttons"`
	LeftStick     Stick         `json:"leftStick"`
	RightStick    Stick         `json:"rightStick"`
	Triggers      Triggers      `json:"triggers"`
	Touchpad      Touchpad      `json:"touchpad"`
	Gyroscope     Gyroscope     `json:"gyroscope"`
	Accelerometer Accelerometer `json:"accelerometer"`
	Battery       Battery       `json:"battery"`
	Timestamp     uint32        `json:"timestamp"`

	Orientation orientation.Quaternion `json:"orientation"`
}

// EulerAngles returns roll, pitch and yaw of the orientation in radians.
func (s *ControllerState) EulerAngles() (roll, pitch, yaw float64) {
	return s.Orientation.EulerAngles()
}

// Decode parses a raw input report including its leading report id.
//
// It returns false without error when the report id does not belong to t;
// such frames are skipped. A recognized id with a short buffer yields
// ErrInvalidReport. On success every input field is overwritten; Orientation
// is left untouched.
func (s *ControllerState) Decode(buf []byte, t Transport) (bool, error) {
	if len(buf) == 0 {
		return false, nil
	}
	var (
		id, offset int
		minPayload int
	)
	switch t {
	case TransportBluetooth:
		id, offset, minPayload = ReportIDInputBT, payloadOffsetBT, InputPayloadSizeBT
	default:
		id, offset, minPayload = ReportIDInputUSB, payloadOffsetUSB, InputPayloadSizeUSB
	}
	if int(buf[0]) != id {
		return false, nil
	}
	payload := buf[1:]
	if len(payload) < minPayload {
		return false, fmt.Errorf("%w: %s report too short: %d bytes", ErrInvalidReport, t, len(payload))
	}
	s.decodeCommon(payload[offset:])
	return true, nil
}

func (s *ControllerState) decodeCommon(d []byte) {
	s.LeftStick = Stick{X: d[InOffsetLeftStickX], Y: d[InOffsetLeftStickY]}
	s.RightStick = Stick{X: d[InOffsetRightStickX], Y: d[InOffsetRightStickY]}
	s.Triggers = Triggers{L2: d[InOffsetL2], R2: d[InOffsetR2]}
	s.Timestamp = uint32(d[InOffsetCounter])

	b0, b1, b2 := d[InOffsetButtons0], d[InOffsetButtons1], d[InOffsetButtons2]
	s.Buttons = decodeDPad(b0 & DPadMask)
	s.Buttons.Square = b0&ButtonSquare != 0
	s.Buttons.Cross = b0&ButtonCross != 0
	s.Buttons.Circle = b0&ButtonCircle != 0
	s.Buttons.Triangle = b0&ButtonTriangle != 0

	s.Buttons.L1 = b1&ButtonL1 != 0
	s.Buttons.R1 = b1&ButtonR1 != 0
	s.Buttons.L2 = b1&ButtonL2 != 0
	s.Buttons.R2 = b1&ButtonR2 != 0
	s.Buttons.Create = b1&ButtonCreate != 0
	s.Buttons.Options = b1&ButtonOptions != 0
	s.Buttons.L3 = b1&ButtonL3 != 0
	s.Buttons.R3 = b1&ButtonR3 != 0

	s.Buttons.PS = b2&ButtonPS != 0
	s.Buttons.Touchpad = b2&ButtonTouchpad != 0
	s.Buttons.Mute = b2&ButtonMute != 0

	g := d[InOffsetGyro : InOffsetGyro+6]
	s.Gyroscope = Gyroscope{
		X: int16(binary.LittleEndian.Uint16(g[0:2])),
		Y: int16(binary.LittleEndian.Uint16(g[2:4])),
		Z: int16(binary.LittleEndian.Uint16(g[4:6])),
	}
	a := d[InOffsetAccel : InOffsetAccel+6]
	s.Accelerometer = Accelerometer{
		X: int16(binary.LittleEndian.Uint16(a[0:2])),
		Y: int16(binary.LittleEndian.Uint16(a[2:4])),
		Z: int16(binary.LittleEndian.Uint16(a[4:6])),
	}

	s.Touchpad.Finger1 = decodeTouch(d[InOffsetTouch1 : InOffsetTouch1+touchPointSize])
	s.Touchpad.Finger2 = decodeTouch(d[InOffsetTouch2 : InOffsetTouch2+touchPointSize])

	bat := d[InOffsetBattery]
	s.Battery = Battery{
		Level:        bat & BatteryLevelMask,
		Charging:     bat&BatteryChargingFlag != 0,
		FullyCharged: bat&BatteryFullFlag != 0,
	}
}

func decodeDPad(n uint8) Buttons {
	return Buttons{
		DPadUp:    n == DPadUp || n == DPadUpRight || n == DPadUpLeft,
		DPadRight: n == DPadUpRight || n == DPadRight || n == DPadDownRight,
		DPadDown:  n == DPadDownRight || n == DPadDown || n == DPadDownLeft,
		DPadLeft:  n == DPadDownLeft || n == DPadLeft || n == DPadUpLeft,
	}
}

func decodeTouch(p []byte) TouchFinger {
	return TouchFinger{
		Active: p[0]&TouchInactiveMask == 0,
		ID:     p[0] & TouchIDMask,
		X:      uint16(p[2]&0x0F)<<8 | uint16(p[1]),
		Y:      uint16(p[3])<<4 | uint16(p[2]&0xF0)>>4,
	}
}
