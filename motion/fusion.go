// Package motion turns filtered IMU samples into a gravity estimate, device
// tilt and camera deltas, and maps stick input to flick stick turns.
package motion

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// PlayerSpaceGain scales player space yaw and pitch deltas.
	PlayerSpaceGain = 60.0

	gravityCorrectionStep = 0.02
	yawRelaxFactor        = 1.41
)

// Angle is a device tilt in degrees.
type Angle struct {
	X, Y float64
}

// Fusion keeps a running gravity estimate by integrating angular velocity and
// pulling the result towards the measured acceleration. A Fusion is owned by
// a single pipeline and is not safe for concurrent use.
type Fusion struct {
	// Gravity is the current estimate in device space, in g.
	Gravity r3.Vec
	// DeviceAngle is the device tilt derived from Gravity.
	DeviceAngle Angle

	// CameraYawDelta and CameraPitchDelta are the player space deltas
	// computed by the last Update.
	CameraYawDelta   float64
	CameraPitchDelta float64
	// CameraYaw and CameraPitch accumulate the deltas.
	CameraYaw   float64
	CameraPitch float64

	// GyroFactorX and GyroFactorY weight pitch and yaw. Both default to 1.
	GyroFactorX float64
	GyroFactorY float64
	// Gain multiplies both deltas. Defaults to PlayerSpaceGain.
	Gain float64

	lastUpdateMs float64
}

// NewFusion returns a Fusion with a zero gravity estimate.
func NewFusion() *Fusion {
	return &Fusion{
		GyroFactorX: 1,
		GyroFactorY: 1,
		Gain:        PlayerSpaceGain,
	}
}

// LastUpdate returns the timestamp (ms) of the last accepted sample.
func (f *Fusion) LastUpdate() float64 { return f.lastUpdateMs }

// Update advances the estimate by dt seconds using angular velocity in deg/s
// and acceleration in g. A zero acceleration sample is ignored entirely; a
// zero angular velocity only skips the rotation step.
func (f *Fusion) Update(nowMs, dt float64, gyroDeg, accelG r3.Vec) {
	if accelG == (r3.Vec{}) {
		return
	}
	f.lastUpdateMs = nowMs

	if gyroDeg != (r3.Vec{}) {
		f.rotateGravity(dt, gyroDeg)
	}
	f.correctGravity(accelG)
	f.updateDeviceAngle()
	f.updatePlayerSpace(dt, gyroDeg)
}

func (f *Fusion) rotateGravity(dt float64, gyroDeg r3.Vec) {
	axis := r3.Unit(r3.Scale(math.Pi/180, gyroDeg))
	angle := r3.Norm(axis) * dt
	// undo the rotation the device went through during dt
	rot := r3.NewRotation(angle, r3.Scale(-1, axis))
	f.Gravity = rot.Rotate(f.Gravity)
}

func (f *Fusion) correctGravity(accelG r3.Vec) {
	target := r3.Scale(-1, accelG)
	delta := r3.Sub(target, f.Gravity)
	if r3.Norm(delta) <= gravityCorrectionStep {
		f.Gravity = target
		return
	}
	f.Gravity = r3.Add(f.Gravity, r3.Scale(gravityCorrectionStep, r3.Unit(delta)))
}

func (f *Fusion) updateDeviceAngle() {
	g := f.Gravity
	f.DeviceAngle.X = -math.Atan(g.Y/math.Hypot(g.X, g.Z)) * 180 / math.Pi
	f.DeviceAngle.Y = -math.Atan(g.X/math.Hypot(g.Y, g.Z)) * 180 / math.Pi
}

func (f *Fusion) updatePlayerSpace(dt float64, gyroDeg r3.Vec) {
	gn := r3.Unit(f.Gravity)
	// yaw and roll part of the dot product only
	worldYaw := gyroDeg.Y*gn.Y + gyroDeg.Z*gn.Z
	if worldYaw != 0 {
		magnitude := math.Min(math.Abs(worldYaw)*yawRelaxFactor, math.Hypot(gyroDeg.Y, gyroDeg.Z))
		f.CameraYawDelta = sign(worldYaw) * magnitude * f.GyroFactorY * f.Gain * dt
		f.CameraYaw -= f.CameraYawDelta
	}

	f.CameraPitchDelta = gyroDeg.X * f.GyroFactorX * f.Gain * dt
	f.CameraPitch += f.CameraPitchDelta
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
