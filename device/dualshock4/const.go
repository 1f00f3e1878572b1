package dualshock4

const (
	// ReportExSize is the size of the extended input report without report id.
	ReportExSize = 63
	// InputReportSize is the size of the USB input report including its id.
	InputReportSize = 64

	ReportIDInput = 0x01
)

const (
	ButtonSquare   uint16 = 0x0010
	ButtonCross    uint16 = 0x0020
	ButtonCircle   uint16 = 0x0040
	ButtonTriangle uint16 = 0x0080

	DPadMask uint8 = 0x0F
)

const (
	ButtonL1      uint16 = 0x0100
	ButtonR1      uint16 = 0x0200
	ButtonL2      uint16 = 0x0400
	ButtonR2      uint16 = 0x0800
	ButtonShare   uint16 = 0x1000
	ButtonOptions uint16 = 0x2000
	ButtonL3      uint16 = 0x4000
	ButtonR3      uint16 = 0x8000
)

const (
	SpecialPS       uint8 = 0x01
	SpecialTouchpad uint8 = 0x02

	CounterShift = 2
	CounterMask  = 0x3F
)

// Hat values of the d-pad nibble.
const (
	DPadNorth     = 0x00
	DPadNorthEast = 0x01
	DPadEast      = 0x02
	DPadSouthEast = 0x03
	DPadSouth     = 0x04
	DPadSouthWest = 0x05
	DPadWest      = 0x06
	DPadNorthWest = 0x07
	DPadNeutral   = 0x08
)

// Byte offsets within the extended report.
const (
	OffsetLX             = 0
	OffsetLY             = 1
	OffsetRX             = 2
	OffsetRY             = 3
	OffsetButtons        = 4
	OffsetSpecial        = 6
	OffsetL2             = 7
	OffsetR2             = 8
	OffsetTimestamp      = 9
	OffsetBattery        = 11
	OffsetGyro           = 12
	OffsetAccel          = 18
	OffsetBatterySpecial = 29
	OffsetTouchPackets   = 32
	OffsetTouch          = 33
)

// Gyro is reported in 1/16 deg/s (about +-2000 deg/s), accel in 1/8192 g
// (about +-4 g).
const (
	GyroCountsPerDps = 16.0
	AccelCountsPerG  = 8192.0
)

const (
	TouchpadWidth  = 1920
	TouchpadHeight = 943

	TouchpadMaxX uint16 = TouchpadWidth - 1
	TouchpadMaxY uint16 = TouchpadHeight - 1

	TouchInactiveMask uint8 = 0x80
	TouchIDMask       uint8 = 0x7F

	touch0ID = 1
	touch1ID = 2
)

const (
	// BatteryFullyCharged is the cable connected, fully charged level.
	BatteryFullyCharged = 0x0B
)
