package dualsense

import (
	"encoding/binary"
	"hash/crc32"
)

type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

type Rumble struct {
	Left  uint8 `json:"left"`
	Right uint8 `json:"right"`
}

// MuteLED is the state of the microphone mute LED.
type MuteLED uint8

const (
	MuteLEDOff MuteLED = iota
	MuteLEDOn
	MuteLEDBreathing
)

func (m MuteLED) String() string {
	switch m {
	case MuteLEDOn:
		return "on"
	case MuteLEDBreathing:
		return "breathing"
	default:
		return "off"
	}
}

// PlayerLEDs is the 5-bit player indicator pattern, LED 1 in bit 0.
type PlayerLEDs uint8

// PlayerLEDsForNumber returns the conventional pattern for players 1-5, or
// all off for anything else.
func PlayerLEDsForNumber(n int) PlayerLEDs {
	switch n {
	case 1:
		return 0x04
	case 2:
		return 0x0A
	case 3:
		return 0x15
	case 4:
		return 0x1B
	case 5:
		return 0x1F
	default:
		return 0
	}
}

// OutputState is the full set of controller feedback. It is always sent as
// a whole; there is no partial update.
type OutputState struct {
	LED             RGB           `json:"led"`
	LightbarEnabled bool          `json:"lightbarEnabled"`
	Rumble          Rumble        `json:"rumble"`
	L2Effect        TriggerEffect `json:"l2Effect"`
	R2Effect        TriggerEffect `json:"r2Effect"`
	PlayerLEDs      PlayerLEDs    `json:"playerLeds"`
	MuteLED         MuteLED       `json:"muteLed"`

	// BTSeq is the 4-bit Bluetooth output sequence number.
	BTSeq uint8 `json:"-"`
}

func DefaultOutputState() OutputState {
	return OutputState{
		LED:             RGB{R: DefaultLedRed, G: DefaultLedGreen, B: DefaultLedBlue},
		LightbarEnabled: true,
		L2Effect:        TriggerEffectOff(),
		R2Effect:        TriggerEffectOff(),
		PlayerLEDs:      PlayerLEDsForNumber(1),
		MuteLED:         MuteLEDOff,
	}
}

// NextBTSeq advances the Bluetooth sequence number, wrapping at 16.
func (o *OutputState) NextBTSeq() {
	o.BTSeq = (o.BTSeq + 1) % btSeqModulus
}

// Encode serializes o into a complete output report for t. Bluetooth
// frames carry the current BTSeq and a trailing CRC32; the caller advances
// BTSeq after a successful send.
func (o *OutputState) Encode(t Transport) []byte {
	var b []byte
	var start int
	switch t {
	case TransportBluetooth:
		b = make([]byte, OutputReportSizeBT)
		b[0] = ReportIDOutputBT
		b[outOffsetBTSeqTag] = (o.BTSeq%btSeqModulus)<<4 | btSeqTag
		start = outCommonStartBT
	default:
		b = make([]byte, OutputReportSizeUSB)
		b[0] = ReportIDOutputUSB
		start = outCommonStartUSB
	}

	o.encodeCommon(b[start:])

	if t == TransportBluetooth {
		binary.LittleEndian.PutUint32(b[outOffsetBTCRC:], BluetoothCRC(b))
	}
	return b
}

func (o *OutputState) encodeCommon(c []byte) {
	c[OutOffsetFlags0] = FlagRumble | FlagHapticsSelect | FlagR2Effect | FlagL2Effect
	c[OutOffsetFlags1] = FlagMuteLED | FlagLightbar | FlagPlayerLEDs
	c[OutOffsetFlags2] = FlagLightbarSetup

	c[OutOffsetMotorLeft] = o.Rumble.Left
	c[OutOffsetMotorRight] = o.Rumble.Right

	c[OutOffsetMuteLED] = uint8(o.MuteLED)

	r2 := o.R2Effect.Bytes()
	copy(c[OutOffsetR2Effect:OutOffsetR2Effect+TriggerEffectSize], r2[:])
	l2 := o.L2Effect.Bytes()
	copy(c[OutOffsetL2Effect:OutOffsetL2Effect+TriggerEffectSize], l2[:])

	c[OutOffsetLightSetup] = LightbarSetupEnable
	c[OutOffsetPlayerLEDs] = uint8(o.PlayerLEDs) & PlayerLEDMask

	if o.LightbarEnabled {
		c[OutOffsetLightbarRed] = o.LED.R
		c[OutOffsetLightbarGrn] = o.LED.G
		c[OutOffsetLightbarBlu] = o.LED.B
	}
}

// BluetoothCRC computes the HID-over-Bluetooth integrity suffix for an
// output frame: CRC32 (IEEE) over the 0xA2 transaction header followed by
// every byte of the frame before its final four.
func BluetoothCRC(frame []byte) uint32 {
	n := len(frame) - 4
	if n < 0 {
		n = 0
	}
	h := crc32.NewIEEE()
	_, _ = h.Write([]byte{btCRCSeed})
	_, _ = h.Write(frame[:n])
	return h.Sum32()
}
