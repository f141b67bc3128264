package dualsense

const (
	VendorID        = 0x054C
	ProductID       = 0x0CE6
	ProductIDEdge   = 0x0DF2
	InterfaceNumBT  = -1
	DefaultPollRate = 100
)

const (
	ReportIDInputUSB  = 0x01
	ReportIDInputBT   = 0x31
	ReportIDOutputUSB = 0x02
	ReportIDOutputBT  = 0x31
)

const (
	InputReportSizeUSB  = 64
	InputReportSizeBT   = 78
	OutputReportSizeUSB = 48
	OutputReportSizeBT  = 78

	// Bytes remaining after the report id has been stripped.
	InputPayloadSizeUSB = InputReportSizeUSB - 1
	InputPayloadSizeBT  = InputReportSizeBT - 1
)

// Input payload layout, relative to the shared payload start. Bluetooth
// payloads carry one extra byte before the shared block.
const (
	InOffsetLeftStickX  = 0
	InOffsetLeftStickY  = 1
	InOffsetRightStickX = 2
	InOffsetRightStickY = 3
	InOffsetL2          = 4
	InOffsetR2          = 5
	InOffsetCounter     = 6
	InOffsetButtons0    = 7 // dpad + face buttons
	InOffsetButtons1    = 8 // shoulders, stick clicks, create, options
	InOffsetButtons2    = 9 // ps, touchpad, mute
	InOffsetGyro        = 15
	InOffsetAccel       = 21
	InOffsetTouch1      = 32
	InOffsetTouch2      = 36
	InOffsetBattery     = 52

	touchPointSize = 4
)

const (
	payloadOffsetUSB = 0
	payloadOffsetBT  = 1
)

// Buttons0
const (
	DPadMask       uint8 = 0x0F
	ButtonSquare   uint8 = 0x10
	ButtonCross    uint8 = 0x20
	ButtonCircle   uint8 = 0x40
	ButtonTriangle uint8 = 0x80
)

// Buttons1
const (
	ButtonL1      uint8 = 0x01
	ButtonR1      uint8 = 0x02
	ButtonL2      uint8 = 0x04
	ButtonR2      uint8 = 0x08
	ButtonCreate  uint8 = 0x10
	ButtonOptions uint8 = 0x20
	ButtonL3      uint8 = 0x40
	ButtonR3      uint8 = 0x80
)

// Buttons2
const (
	ButtonPS       uint8 = 0x01
	ButtonTouchpad uint8 = 0x02
	ButtonMute     uint8 = 0x04
)

// D-pad nibble values, clockwise from up. 8 is neutral.
const (
	DPadUp        = 0x00
	DPadUpRight   = 0x01
	DPadRight     = 0x02
	DPadDownRight = 0x03
	DPadDown      = 0x04
	DPadDownLeft  = 0x05
	DPadLeft      = 0x06
	DPadUpLeft    = 0x07
	DPadNeutral   = 0x08
)

const (
	TouchInactiveMask uint8 = 0x80
	TouchIDMask       uint8 = 0x7F
)

const (
	BatteryLevelMask    uint8 = 0x0F
	BatteryChargingFlag uint8 = 0x10
	BatteryFullFlag     uint8 = 0x20
)

// Approximate factory scales.
const (
	GyroCountsPerRadS = 1024.0
	AccelCountsPerG   = 8192.0
)

// Output common block layout, relative to the common block start
// (1 for USB, 2 for Bluetooth).
const (
	OutOffsetFlags0      = 0
	OutOffsetFlags1      = 1
	OutOffsetMotorLeft   = 2
	OutOffsetMotorRight  = 3
	OutOffsetMuteLED     = 8
	OutOffsetR2Effect    = 10
	OutOffsetL2Effect    = 21
	OutOffsetFlags2      = 38
	OutOffsetLightSetup  = 41
	OutOffsetBrightness  = 42
	OutOffsetPlayerLEDs  = 43
	OutOffsetLightbarRed = 44
	OutOffsetLightbarGrn = 45
	OutOffsetLightbarBlu = 46

	outCommonStartUSB = 1
	outCommonStartBT  = 2
	outOffsetBTSeqTag = 1
	outOffsetBTCRC    = OutputReportSizeBT - 4
)

// Flags0
const (
	FlagRumble        uint8 = 0x01
	FlagHapticsSelect uint8 = 0x02
	FlagR2Effect      uint8 = 0x04
	FlagL2Effect      uint8 = 0x08
)

// Flags1
const (
	FlagMuteLED    uint8 = 0x01
	FlagLightbar   uint8 = 0x04
	FlagPlayerLEDs uint8 = 0x10
)

// Flags2
const (
	FlagLightbarSetup uint8 = 0x02

	LightbarSetupEnable uint8 = 0x02
)

const (
	btSeqTag     uint8 = 0x02
	btCRCSeed    uint8 = 0xA2
	btSeqModulus       = 16
)

const (
	TriggerEffectSize = 11

	PlayerLEDMask uint8 = 0x1F
)

const (
	DefaultLedRed   = 0xFF
	DefaultLedGreen = 0xFF
	DefaultLedBlue  = 0xFF
)
