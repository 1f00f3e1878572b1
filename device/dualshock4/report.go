// Package dualshock4 builds DualShock 4 input reports from the unified
// controller state.
package dualshock4

import (
	"encoding/binary"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/padmotion/padmotion/controller"
)

// AxisMap remaps a motion vector for a physical mounting. Entry i names the
// source axis of output axis i as 1 (X), 2 (Y) or 3 (Z); a negative entry
// flips the sign. A zero entry keeps the axis unchanged.
type AxisMap [3]int8

// Apply returns v remapped through m.
func (m AxisMap) Apply(v r3.Vec) r3.Vec {
	in := [3]float64{v.X, v.Y, v.Z}
	var out [3]float64
	for i, src := range m {
		switch {
		case src == 0:
			out[i] = in[i]
		case src > 0 && src <= 3:
			out[i] = in[src-1]
		case src < 0 && src >= -3:
			out[i] = -in[-src-1]
		}
	}
	return r3.Vec{X: out[0], Y: out[1], Z: out[2]}
}

// Mounting holds the per target motion axis remapping.
type Mounting struct {
	Gyro  AxisMap
	Accel AxisMap
}

// BuildReport builds the 63 byte extended report for s with the identity
// mounting.
func BuildReport(s *controller.State, ts uint16) [ReportExSize]byte {
	return Mounting{}.BuildReport(s, ts)
}

// BuildReport builds the 63 byte extended report for s.
func (m Mounting) BuildReport(s *controller.State, ts uint16) [ReportExSize]byte {
	var b [ReportExSize]byte

	b[OffsetLX] = controller.NormalizeStick(s.Axis(controller.AxisLeftStickX))
	b[OffsetLY] = 0xFF - controller.NormalizeStick(s.Axis(controller.AxisLeftStickY))
	b[OffsetRX] = controller.NormalizeStick(s.Axis(controller.AxisRightStickX))
	b[OffsetRY] = 0xFF - controller.NormalizeStick(s.Axis(controller.AxisRightStickY))

	buttons := faceButtons(s) | uint16(hat(s.Buttons)&DPadMask)
	binary.LittleEndian.PutUint16(b[OffsetButtons:], buttons)
	b[OffsetSpecial] = special(s)

	b[OffsetL2] = s.Trigger(controller.AxisL2)
	b[OffsetR2] = s.Trigger(controller.AxisR2)

	binary.LittleEndian.PutUint16(b[OffsetTimestamp:], ts)
	b[OffsetBattery] = 0

	gyro := m.Gyro.Apply(s.Gyro)
	binary.LittleEndian.PutUint16(b[OffsetGyro:], uint16(GyroDpsToRaw(gyro.X)))
	binary.LittleEndian.PutUint16(b[OffsetGyro+2:], uint16(GyroDpsToRaw(gyro.Y)))
	binary.LittleEndian.PutUint16(b[OffsetGyro+4:], uint16(GyroDpsToRaw(gyro.Z)))

	accel := m.Accel.Apply(s.Accel)
	binary.LittleEndian.PutUint16(b[OffsetAccel:], uint16(AccelGToRaw(accel.X)))
	binary.LittleEndian.PutUint16(b[OffsetAccel+2:], uint16(AccelGToRaw(accel.Y)))
	binary.LittleEndian.PutUint16(b[OffsetAccel+4:], uint16(AccelGToRaw(accel.Z)))

	b[OffsetBatterySpecial] = BatteryFullyCharged

	b[OffsetTouchPackets] = 0x01
	t := b[OffsetTouch:]
	t[0] = s.TouchPacket
	t[1] = s.Touch[0].TrackingID
	encodeTouchCoords(t[2:5], s.Touch[0].X, s.Touch[0].Y)
	t[5] = s.Touch[1].TrackingID
	encodeTouchCoords(t[6:9], s.Touch[1].X, s.Touch[1].Y)

	return b
}

// BuildUSBReport builds the 64 byte USB input report: report id 0x01 followed
// by the extended report, with a 6 bit frame counter in the upper bits of the
// special byte.
func (m Mounting) BuildUSBReport(s *controller.State, ts uint16, counter uint8) [InputReportSize]byte {
	var b [InputReportSize]byte
	b[0] = ReportIDInput
	ex := m.BuildReport(s, ts)
	copy(b[1:], ex[:])
	b[1+OffsetSpecial] |= (counter & CounterMask) << CounterShift
	return b
}

func faceButtons(s *controller.State) uint16 {
	var out uint16
	set := func(b controller.Button, bit uint16) {
		if s.Pressed(b) {
			out |= bit
		}
	}
	set(controller.ButtonB1, ButtonCross)
	set(controller.ButtonB2, ButtonCircle)
	set(controller.ButtonB3, ButtonSquare)
	set(controller.ButtonB4, ButtonTriangle)
	set(controller.ButtonStart, ButtonOptions)
	set(controller.ButtonBack, ButtonShare)
	set(controller.ButtonLeftStickClick, ButtonL3)
	set(controller.ButtonRightStickClick, ButtonR3)
	set(controller.ButtonL1, ButtonL1)
	set(controller.ButtonR1, ButtonR1)

	if s.Trigger(controller.AxisL2) > 0 {
		out |= ButtonL2
	}
	if s.Trigger(controller.AxisR2) > 0 {
		out |= ButtonR2
	}
	return out
}

func special(s *controller.State) uint8 {
	var out uint8
	if s.Pressed(controller.ButtonSpecial) {
		out |= SpecialPS
	}
	if s.Pressed(controller.ButtonLeftPadClick) || s.Pressed(controller.ButtonRightPadClick) || s.TouchClick {
		out |= SpecialTouchpad
	}
	return out
}

func hat(b controller.Button) uint8 {
	up := b&controller.ButtonDPadUp != 0
	down := b&controller.ButtonDPadDown != 0
	left := b&controller.ButtonDPadLeft != 0
	right := b&controller.ButtonDPadRight != 0

	switch {
	case up && right:
		return DPadNorthEast
	case up && left:
		return DPadNorthWest
	case up:
		return DPadNorth
	case right && down:
		return DPadSouthEast
	case right:
		return DPadEast
	case down && left:
		return DPadSouthWest
	case down:
		return DPadSouth
	case left:
		return DPadWest
	default:
		return DPadNeutral
	}
}

func encodeTouchCoords(b []byte, x, y uint16) {
	if x > TouchpadMaxX {
		x = TouchpadMaxX
	}
	if y > TouchpadMaxY {
		y = TouchpadMaxY
	}

	b[0] = uint8(x & 0xFF)
	b[1] = uint8((x>>8)&0x0F) | uint8((y&0x0F)<<4)
	b[2] = uint8(y >> 4)
}
