package dualsense_test

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/dualsense-cmd/dualsense/device/dualsense"
	"github.com/dualsense-cmd/dualsense/orientation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inputFrame returns a neutral input report for t and the index where the
// shared payload block starts.
func inputFrame(t dualsense.Transport) ([]byte, int) {
	var b []byte
	var start int
	if t == dualsense.TransportBluetooth {
		b = make([]byte, dualsense.InputReportSizeBT)
		b[0] = dualsense.ReportIDInputBT
		start = 2
	} else {
		b = make([]byte, dualsense.InputReportSizeUSB)
		b[0] = dualsense.ReportIDInputUSB
		start = 1
	}
	p := b[start:]
	p[dualsense.InOffsetLeftStickX] = 128
	p[dualsense.InOffsetLeftStickY] = 128
	p[dualsense.InOffsetRightStickX] = 128
	p[dualsense.InOffsetRightStickY] = 128
	p[dualsense.InOffsetButtons0] = dualsense.DPadNeutral
	p[dualsense.InOffsetTouch1] = dualsense.TouchInactiveMask
	p[dualsense.InOffsetTouch2] = dualsense.TouchInactiveMask
	return b, start
}

func TestDecodeFields(t *testing.T) {
	for _, tr := range []dualsense.Transport{dualsense.TransportUSB, dualsense.TransportBluetooth} {
		t.Run(tr.String(), func(t *testing.T) {
			b, start := inputFrame(tr)
			p := b[start:]
			p[dualsense.InOffsetLeftStickX] = 0
			p[dualsense.InOffsetLeftStickY] = 255
			p[dualsense.InOffsetRightStickX] = 200
			p[dualsense.InOffsetRightStickY] = 10
			p[dualsense.InOffsetL2] = 17
			p[dualsense.InOffsetR2] = 250
			p[dualsense.InOffsetCounter] = 42
			p[dualsense.InOffsetButtons0] = dualsense.DPadNeutral | dualsense.ButtonCross | dualsense.ButtonTriangle
			p[dualsense.InOffsetButtons1] = dualsense.ButtonL1 | dualsense.ButtonR2 | dualsense.ButtonOptions | dualsense.ButtonR3
			p[dualsense.InOffsetButtons2] = dualsense.ButtonPS | dualsense.ButtonMute
			binary.LittleEndian.PutUint16(p[dualsense.InOffsetGyro:], uint16(0xFC00)) // -1024
			binary.LittleEndian.PutUint16(p[dualsense.InOffsetGyro+2:], 2048)
			binary.LittleEndian.PutUint16(p[dualsense.InOffsetGyro+4:], 1)
			binary.LittleEndian.PutUint16(p[dualsense.InOffsetAccel:], 0)
			binary.LittleEndian.PutUint16(p[dualsense.InOffsetAccel+2:], 8192)
			binary.LittleEndian.PutUint16(p[dualsense.InOffsetAccel+4:], uint16(0xE000)) // -8192
			copy(p[dualsense.InOffsetTouch1:], []byte{0x05, 0x34, 0x12, 0x45})
			p[dualsense.InOffsetBattery] = 0x07 | dualsense.BatteryChargingFlag

			var s dualsense.ControllerState
			ok, err := s.Decode(b, tr)
			require.NoError(t, err)
			require.True(t, ok)

			assert.Equal(t, dualsense.Stick{X: 0, Y: 255}, s.LeftStick)
			assert.Equal(t, dualsense.Stick{X: 200, Y: 10}, s.RightStick)
			assert.Equal(t, dualsense.Triggers{L2: 17, R2: 250}, s.Triggers)
			assert.Equal(t, uint32(42), s.Timestamp)

			assert.Equal(t, dualsense.Buttons{
				Cross:    true,
				Triangle: true,
				L1:       true,
				R2:       true,
				Options:  true,
				R3:       true,
				PS:       true,
				Mute:     true,
			}, s.Buttons)

			assert.Equal(t, dualsense.Gyroscope{X: -1024, Y: 2048, Z: 1}, s.Gyroscope)
			assert.Equal(t, dualsense.Accelerometer{X: 0, Y: 8192, Z: -8192}, s.Accelerometer)
			assert.InDelta(t, -1.0, s.Gyroscope.RadPerSec().X, 1e-12)
			assert.InDelta(t, 2.0, s.Gyroscope.RadPerSec().Y, 1e-12)
			assert.InDelta(t, 1.0, s.Accelerometer.G().Y, 1e-12)
			assert.InDelta(t, -1.0, s.Accelerometer.G().Z, 1e-12)

			assert.Equal(t, dualsense.TouchFinger{Active: true, ID: 5, X: 0x234, Y: 0x451}, s.Touchpad.Finger1)
			assert.False(t, s.Touchpad.Finger2.Active)

			assert.Equal(t, dualsense.Battery{Level: 7, Charging: true}, s.Battery)
			assert.Equal(t, uint8(70), s.Battery.Percentage())
		})
	}
}

func TestDecodeDPad(t *testing.T) {
	type testCase struct {
		nibble                uint8
		up, right, down, left bool
	}
	cases := []testCase{
		{nibble: dualsense.DPadUp, up: true},
		{nibble: dualsense.DPadUpRight, up: true, right: true},
		{nibble: dualsense.DPadRight, right: true},
		{nibble: dualsense.DPadDownRight, down: true, right: true},
		{nibble: dualsense.DPadDown, down: true},
		{nibble: dualsense.DPadDownLeft, down: true, left: true},
		{nibble: dualsense.DPadLeft, left: true},
		{nibble: dualsense.DPadUpLeft, up: true, left: true},
		{nibble: dualsense.DPadNeutral},
		{nibble: 0x0F},
	}
	for _, c := range cases {
		b, start := inputFrame(dualsense.TransportUSB)
		b[start+dualsense.InOffsetButtons0] = c.nibble | dualsense.ButtonSquare

		var s dualsense.ControllerState
		ok, err := s.Decode(b, dualsense.TransportUSB)
		require.NoError(t, err)
		require.True(t, ok)

		assert.Equal(t, c.up, s.Buttons.DPadUp, "nibble %d up", c.nibble)
		assert.Equal(t, c.right, s.Buttons.DPadRight, "nibble %d right", c.nibble)
		assert.Equal(t, c.down, s.Buttons.DPadDown, "nibble %d down", c.nibble)
		assert.Equal(t, c.left, s.Buttons.DPadLeft, "nibble %d left", c.nibble)
		assert.True(t, s.Buttons.Square)
	}
}

func TestDecodeRejects(t *testing.T) {
	type testCase struct {
		name      string
		buf       []byte
		transport dualsense.Transport
		ok        bool
		invalid   bool
	}
	usb, _ := inputFrame(dualsense.TransportUSB)
	bt, _ := inputFrame(dualsense.TransportBluetooth)

	cases := []testCase{
		{name: "empty", buf: nil, transport: dualsense.TransportUSB},
		{name: "usb frame on bluetooth", buf: usb, transport: dualsense.TransportBluetooth},
		{name: "bluetooth frame on usb", buf: bt, transport: dualsense.TransportUSB},
		{name: "simple bluetooth report", buf: []byte{0x01, 0x80, 0x80, 0x80, 0x80, 0x08}, transport: dualsense.TransportBluetooth},
		{name: "short usb", buf: usb[:63], transport: dualsense.TransportUSB, invalid: true},
		{name: "short bluetooth", buf: bt[:77], transport: dualsense.TransportBluetooth, invalid: true},
		{name: "usb", buf: usb, transport: dualsense.TransportUSB, ok: true},
		{name: "bluetooth", buf: bt, transport: dualsense.TransportBluetooth, ok: true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := dualsense.ControllerState{LeftStick: dualsense.Stick{X: 1, Y: 2}}
			ok, err := s.Decode(c.buf, c.transport)
			assert.Equal(t, c.ok, ok)
			if c.invalid {
				assert.True(t, errors.Is(err, dualsense.ErrInvalidReport))
			} else {
				assert.NoError(t, err)
			}
			if !c.ok {
				assert.Equal(t, dualsense.Stick{X: 1, Y: 2}, s.LeftStick, "skipped frame must not touch state")
			}
		})
	}
}

func TestDecodeKeepsOrientation(t *testing.T) {
	b, _ := inputFrame(dualsense.TransportUSB)
	q := orientation.FromAxisAngle(orientation.Vec3{Z: 1}, 0.5)
	s := dualsense.ControllerState{Orientation: q}
	_, err := s.Decode(b, dualsense.TransportUSB)
	require.NoError(t, err)
	assert.Equal(t, q, s.Orientation)
}

func TestTransportFromInterface(t *testing.T) {
	assert.Equal(t, dualsense.TransportBluetooth, dualsense.TransportFromInterface(-1))
	assert.Equal(t, dualsense.TransportUSB, dualsense.TransportFromInterface(0))
	assert.Equal(t, dualsense.TransportUSB, dualsense.TransportFromInterface(3))
	assert.Equal(t, "bluetooth", dualsense.TransportBluetooth.String())
	assert.Equal(t, "usb", dualsense.TransportUSB.String())
}

func TestBatteryPercentage(t *testing.T) {
	cases := map[uint8]uint8{0: 0, 1: 10, 5: 50, 10: 100, 11: 100, 15: 100}
	for level, want := range cases {
		assert.Equal(t, want, dualsense.Battery{Level: level}.Percentage(), "level %d", level)
	}
}

func TestStickNormalization(t *testing.T) {
	type testCase struct {
		raw  uint8
		want float64
	}
	cases := []testCase{
		{raw: 0, want: -1},
		{raw: 1, want: -1},
		{raw: 128, want: 0},
		{raw: 255, want: 1},
		{raw: 191, want: 63.0 / 127},
	}
	for _, c := range cases {
		x, y := dualsense.Stick{X: c.raw, Y: c.raw}.Normalized()
		assert.InDelta(t, c.want, x, 1e-12, "raw %d", c.raw)
		assert.InDelta(t, c.want, y, 1e-12, "raw %d", c.raw)
		assert.GreaterOrEqual(t, x, -1.0)
		assert.LessOrEqual(t, x, 1.0)
	}
}

func TestStickDeadzone(t *testing.T) {
	x, y := dualsense.Stick{X: 130, Y: 126}.NormalizedWithDeadzone(0.1)
	assert.Zero(t, x)
	assert.Zero(t, y)

	x, y = dualsense.Stick{X: 255, Y: 128}.NormalizedWithDeadzone(0.1)
	assert.InDelta(t, 1.0, x, 1e-12)
	assert.Zero(t, y)

	x, y = dualsense.Stick{X: 255, Y: 0}.NormalizedWithDeadzone(0.1)
	assert.InDelta(t, math.Sqrt2/2, x, 1e-12)
	assert.InDelta(t, -math.Sqrt2/2, y, 1e-12)

	for _, s := range []dualsense.Stick{{X: 0, Y: 0}, {X: 255, Y: 255}, {X: 0, Y: 255}, {X: 230, Y: 20}} {
		x, y := s.NormalizedWithDeadzone(0.1)
		assert.LessOrEqual(t, math.Hypot(x, y), 1.0+1e-12, "stick %+v", s)
	}
}

func TestTriggerNormalization(t *testing.T) {
	l2, r2 := dualsense.Triggers{L2: 0, R2: 255}.Normalized()
	assert.Zero(t, l2)
	assert.Equal(t, 1.0, r2)
}

func TestApplyDeadzone(t *testing.T) {
	type testCase struct {
		v, dz, want float64
	}
	cases := []testCase{
		{v: 0.05, dz: 0.1, want: 0},
		{v: -0.09, dz: 0.1, want: 0},
		{v: 0.1, dz: 0.1, want: 0},
		{v: 1, dz: 0.1, want: 1},
		{v: -1, dz: 0.1, want: -1},
		{v: 0.55, dz: 0.1, want: 0.5},
		{v: -0.55, dz: 0.1, want: -0.5},
		{v: 0.5, dz: 0, want: 0.5},
		{v: 0.5, dz: 1, want: 0},
	}
	for _, c := range cases {
		assert.InDelta(t, c.want, dualsense.ApplyDeadzone(c.v, c.dz), 1e-12, "v=%v dz=%v", c.v, c.dz)
	}
}

func TestPressedReleased(t *testing.T) {
	prev := dualsense.Buttons{Cross: true, L1: true}
	cur := dualsense.Buttons{Cross: true, Circle: true}

	assert.Equal(t, dualsense.Buttons{Circle: true}, dualsense.Pressed(prev, cur))
	assert.Equal(t, dualsense.Buttons{L1: true}, dualsense.Released(prev, cur))
	assert.Equal(t, dualsense.Buttons{}, dualsense.Pressed(cur, cur))
}
