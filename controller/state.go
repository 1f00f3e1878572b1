// Package controller holds the unified button, axis and motion state that a
// pipeline tick produces, and the snapshot publication shared by the report
// builders.
package controller

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Button is a bitset of pressed buttons.
type Button uint32

const (
	ButtonB1 Button = 1 << iota
	ButtonB2
	ButtonB3
	ButtonB4
	ButtonDPadUp
	ButtonDPadDown
	ButtonDPadLeft
	ButtonDPadRight
	ButtonStart
	ButtonBack
	ButtonL1
	ButtonR1
	ButtonL2
	ButtonR2
	ButtonLeftStickClick
	ButtonRightStickClick
	ButtonSpecial
	ButtonLeftPadTouch
	ButtonLeftPadClick
	ButtonRightPadTouch
	ButtonRightPadClick
)

// Axis indexes State.Axes.
type Axis int

const (
	AxisLeftStickX Axis = iota
	AxisLeftStickY
	AxisRightStickX
	AxisRightStickY
	AxisL2
	AxisR2
	AxisLeftPadX
	AxisLeftPadY
	AxisRightPadX
	AxisRightPadY

	AxisCount
)

// Battery is the host battery status in the encoding DSU clients expect.
type Battery uint8

const (
	BatteryNone     Battery = 0x00
	BatteryDying    Battery = 0x01
	BatteryLow      Battery = 0x02
	BatteryMedium   Battery = 0x03
	BatteryHigh     Battery = 0x04
	BatteryFull     Battery = 0x05
	BatteryCharging Battery = 0xEE
	BatteryCharged  Battery = 0xEF
)

func (b Battery) String() string {
	switch b {
	case BatteryNone:
		return "none"
	case BatteryDying:
		return "dying"
	case BatteryLow:
		return "low"
	case BatteryMedium:
		return "medium"
	case BatteryHigh:
		return "high"
	case BatteryFull:
		return "full"
	case BatteryCharging:
		return "charging"
	case BatteryCharged:
		return "charged"
	default:
		return "unknown"
	}
}

// TouchPoint is one tracked finger on the virtual touchpad, in pad pixels.
type TouchPoint struct {
	Active bool
	// TrackingID is the raw tracking byte; bit 7 set means the finger is up.
	TrackingID uint8
	X, Y       uint16
}

// State is the unified controller state of one tick.
//
// Stick axes use the full int16 range. Trigger axes (AxisL2, AxisR2) use
// 0..255. Accel is in g, Gyro in deg/s.
type State struct {
	Buttons Button
	Axes    [AxisCount]int16

	Accel r3.Vec
	Gyro  r3.Vec

	Touch       [2]TouchPoint
	TouchPacket uint8
	TouchClick  bool

	Battery Battery
}

// Pressed reports whether all of the given buttons are down.
func (s *State) Pressed(b Button) bool {
	return s.Buttons&b == b
}

// Axis returns the value of axis a, or 0 if a is out of range.
func (s *State) Axis(a Axis) int16 {
	if a < 0 || a >= AxisCount {
		return 0
	}
	return s.Axes[a]
}

// Trigger returns a trigger axis as a byte.
func (s *State) Trigger(a Axis) uint8 {
	v := s.Axis(a)
	switch {
	case v < 0:
		return 0
	case v > math.MaxUint8:
		return math.MaxUint8
	}
	return uint8(v)
}

// NormalizeStick maps a signed 16 bit stick value onto 0..255 with 0 at 128.
func NormalizeStick(v int16) uint8 {
	n := math.RoundToEven(float64(v)/math.MaxUint16*math.MaxUint8 + 127.5)
	switch {
	case n < 0:
		return 0
	case n > math.MaxUint8:
		return math.MaxUint8
	}
	return uint8(n)
}
