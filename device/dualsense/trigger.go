package dualsense

import (
	"fmt"
	"io"
	"strings"
)

// TriggerEffectMode is the adaptive trigger effect tag, written as the first
// byte of the effect block.
type TriggerEffectMode uint8

const (
	TriggerOff               TriggerEffectMode = 0x00
	TriggerContinuous        TriggerEffectMode = 0x01
	TriggerSectionResistance TriggerEffectMode = 0x02
	TriggerVibration         TriggerEffectMode = 0x06
	TriggerCombinedRV        TriggerEffectMode = 0x26
	TriggerCalibration       TriggerEffectMode = 0xFC
)

func (m TriggerEffectMode) String() string {
	switch m {
	case TriggerOff:
		return "off"
	case TriggerContinuous:
		return "continuous"
	case TriggerSectionResistance:
		return "section"
	case TriggerVibration:
		return "vibration"
	case TriggerCombinedRV:
		return "combined"
	case TriggerCalibration:
		return "calibration"
	default:
		return fmt.Sprintf("unknown(0x%02x)", uint8(m))
	}
}

// Effect block byte positions.
const (
	effOffsetMode      = 0
	effOffsetStart     = 1
	effOffsetEnd       = 2
	effOffsetForce     = 2 // continuous
	effOffsetSecForce  = 3 // section, combined
	effOffsetVibStr    = 2
	effOffsetVibFreq   = 3
	effOffsetStrength1 = 4
	effOffsetStrength2 = 5
	effOffsetStrength3 = 6
	effOffsetCombFreq  = 9
)

// TriggerEffect describes one adaptive trigger program. All values are 0-255.
type TriggerEffect struct {
	Mode          TriggerEffectMode `json:"mode"`
	StartPosition uint8             `json:"start"`
	EndPosition   uint8             `json:"end"`
	Force         uint8             `json:"force"`
	Frequency     uint8             `json:"frequency"`
}

func TriggerEffectOff() TriggerEffect {
	return TriggerEffect{Mode: TriggerOff, EndPosition: 0xFF}
}

// Continuous resists over the whole travel with constant force.
func Continuous(force uint8) TriggerEffect {
	return TriggerEffect{Mode: TriggerContinuous, EndPosition: 0xFF, Force: force}
}

// Section resists between start and end.
func Section(start, end, force uint8) TriggerEffect {
	return TriggerEffect{Mode: TriggerSectionResistance, StartPosition: start, EndPosition: end, Force: force}
}

// Vibration vibrates from start onwards at the given frequency and strength.
func Vibration(start, frequency, force uint8) TriggerEffect {
	return TriggerEffect{Mode: TriggerVibration, StartPosition: start, EndPosition: 0xFF, Force: force, Frequency: frequency}
}

// Weapon is a section resistance that snaps past end, like a gun trigger.
func Weapon(start, end, force uint8) TriggerEffect {
	return Section(start, end, force)
}

// Bow is a combined resistance/vibration effect across the middle of the travel.
func Bow(force uint8) TriggerEffect {
	return TriggerEffect{Mode: TriggerCombinedRV, StartPosition: 0x20, EndPosition: 0xC0, Force: force}
}

func Calibration() TriggerEffect {
	return TriggerEffect{Mode: TriggerCalibration}
}

// ParseTriggerEffectType builds an effect from a profile-style effect name.
// Unknown names yield an off effect.
func ParseTriggerEffectType(name string, start, end, force, frequency uint8) TriggerEffect {
	switch strings.ToLower(name) {
	case "continuous":
		return Continuous(force)
	case "section":
		return Section(start, end, force)
	case "vibration":
		return Vibration(start, frequency, force)
	case "weapon":
		return Weapon(start, end, force)
	case "bow":
		return Bow(force)
	case "combined":
		return TriggerEffect{Mode: TriggerCombinedRV, StartPosition: start, EndPosition: end, Force: force, Frequency: frequency}
	case "calibration":
		return Calibration()
	default:
		return TriggerEffectOff()
	}
}

// Bytes encodes the effect into its 11-byte block.
func (e TriggerEffect) Bytes() [TriggerEffectSize]byte {
	var b [TriggerEffectSize]byte
	b[effOffsetMode] = byte(e.Mode)
	switch e.Mode {
	case TriggerContinuous:
		b[effOffsetStart] = e.StartPosition
		b[effOffsetForce] = e.Force
	case TriggerSectionResistance:
		b[effOffsetStart] = e.StartPosition
		b[effOffsetEnd] = e.EndPosition
		b[effOffsetSecForce] = e.Force
	case TriggerVibration:
		b[effOffsetStart] = e.StartPosition
		b[effOffsetVibStr] = e.Force
		b[effOffsetVibFreq] = e.Frequency
	case TriggerCombinedRV:
		b[effOffsetStart] = e.StartPosition
		b[effOffsetEnd] = e.EndPosition
		b[effOffsetSecForce] = e.Force
		s1, s2, s3 := combinedStrengths(e.Force)
		b[effOffsetStrength1] = s1
		b[effOffsetStrength2] = s2
		b[effOffsetStrength3] = s3
		b[effOffsetCombFreq] = e.Frequency
	}
	return b
}

func (e TriggerEffect) MarshalBinary() ([]byte, error) {
	b := e.Bytes()
	return b[:], nil
}

// UnmarshalBinary decodes an effect block produced by Bytes. Fields that the
// mode does not carry are left zero.
func (e *TriggerEffect) UnmarshalBinary(data []byte) error {
	if len(data) < TriggerEffectSize {
		return io.ErrUnexpectedEOF
	}
	*e = TriggerEffect{Mode: TriggerEffectMode(data[effOffsetMode])}
	switch e.Mode {
	case TriggerContinuous:
		e.StartPosition = data[effOffsetStart]
		e.Force = data[effOffsetForce]
	case TriggerSectionResistance:
		e.StartPosition = data[effOffsetStart]
		e.EndPosition = data[effOffsetEnd]
		e.Force = data[effOffsetSecForce]
	case TriggerVibration:
		e.StartPosition = data[effOffsetStart]
		e.Force = data[effOffsetVibStr]
		e.Frequency = data[effOffsetVibFreq]
	case TriggerCombinedRV:
		e.StartPosition = data[effOffsetStart]
		e.EndPosition = data[effOffsetEnd]
		e.Force = data[effOffsetSecForce]
		e.Frequency = data[effOffsetCombFreq]
	}
	return nil
}

// ParseTriggerEffect decodes an 11-byte effect block.
func ParseTriggerEffect(data []byte) (TriggerEffect, error) {
	var e TriggerEffect
	err := e.UnmarshalBinary(data)
	return e, err
}

// combinedStrengths derives the three resistance levels of a combined effect.
func combinedStrengths(force uint8) (uint8, uint8, uint8) {
	f := uint16(force)
	return force, uint8(f * 3 / 4), uint8(f / 2)
}
