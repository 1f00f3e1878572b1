package motion_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/padmotion/padmotion/motion"
)

func TestGravityConvergesAtRest(t *testing.T) {
	f := motion.NewFusion()
	accel := r3.Vec{Y: 1}
	want := r3.Vec{Y: -1}

	for i := range 60 {
		f.Update(float64(i*10), 0.01, r3.Vec{}, accel)
	}
	assert.Equal(t, want, f.Gravity)

	for i := range 100 {
		f.Update(float64(600+i*10), 0.01, r3.Vec{}, accel)
		require.Equal(t, want, f.Gravity)
	}
}

func TestGravityStepIsBounded(t *testing.T) {
	f := motion.NewFusion()
	f.Update(0, 0.01, r3.Vec{}, r3.Vec{Z: 1})
	assert.InDelta(t, 0.02, r3.Norm(f.Gravity), 1e-12)
	assert.InDelta(t, -0.02, f.Gravity.Z, 1e-12)
}

func TestZeroAccelerationIsIgnored(t *testing.T) {
	f := motion.NewFusion()
	f.Gravity = r3.Vec{X: 0.3, Y: -0.9}
	f.Update(123, 0.01, r3.Vec{X: 100, Y: 50}, r3.Vec{})

	assert.Equal(t, r3.Vec{X: 0.3, Y: -0.9}, f.Gravity)
	assert.Equal(t, 0.0, f.LastUpdate())
	assert.Equal(t, 0.0, f.CameraPitch)
}

func TestGravityIsRotatedAgainstAngularVelocity(t *testing.T) {
	f := motion.NewFusion()
	f.Gravity = r3.Vec{X: 1}

	// the rotation angle is the normalized rate times dt, so dt = pi/2
	// turns the estimate a quarter around -Z
	f.Update(0, math.Pi/2, r3.Vec{Z: 90}, r3.Vec{Y: 1})

	assert.InDelta(t, 0, f.Gravity.X, 1e-9)
	assert.InDelta(t, -1, f.Gravity.Y, 1e-9)
	assert.InDelta(t, 0, f.Gravity.Z, 1e-9)
}

func TestDeviceAngle(t *testing.T) {
	cases := []struct {
		name  string
		accel r3.Vec
		want  motion.Angle
	}{
		{name: "upright", accel: r3.Vec{Y: 1}, want: motion.Angle{X: 90, Y: 0}},
		{name: "flat", accel: r3.Vec{Z: 1}, want: motion.Angle{X: 0, Y: 0}},
		{name: "on its side", accel: r3.Vec{X: -1}, want: motion.Angle{X: 0, Y: -90}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := motion.NewFusion()
			for i := range 60 {
				f.Update(float64(i), 0.01, r3.Vec{}, tc.accel)
			}
			assert.InDelta(t, tc.want.X, f.DeviceAngle.X, 1e-9)
			assert.InDelta(t, tc.want.Y, f.DeviceAngle.Y, 1e-9)
		})
	}
}

func TestPlayerSpaceDeltas(t *testing.T) {
	f := motion.NewFusion()
	for i := range 60 {
		f.Update(float64(i), 0.01, r3.Vec{}, r3.Vec{Y: 1})
	}

	f.Update(1000, 0.01, r3.Vec{X: 10, Y: 20}, r3.Vec{Y: 1})
	assert.InDelta(t, -12, f.CameraYawDelta, 1e-9)
	assert.InDelta(t, 12, f.CameraYaw, 1e-9)
	assert.InDelta(t, 6, f.CameraPitchDelta, 1e-9)
	assert.InDelta(t, 6, f.CameraPitch, 1e-9)
}

func TestPlayerSpaceYawCappedByRelaxFactor(t *testing.T) {
	f := motion.NewFusion()
	// gravity half way between -Y and -Z
	accel := r3.Unit(r3.Vec{Y: 1, Z: 1})
	for i := range 80 {
		f.Update(float64(i), 0.01, r3.Vec{}, accel)
	}

	f.Update(1000, 0.01, r3.Vec{Y: 10}, accel)
	worldYaw := 10 * f.Gravity.Y / r3.Norm(f.Gravity)
	want := -math.Abs(worldYaw) * 1.41 * motion.PlayerSpaceGain * 0.01
	assert.InDelta(t, want, f.CameraYawDelta, 1e-6)
}

func TestZeroWorldYawKeepsYaw(t *testing.T) {
	f := motion.NewFusion()
	for i := range 60 {
		f.Update(float64(i), 0.01, r3.Vec{}, r3.Vec{Y: 1})
	}
	f.Update(1000, 0.01, r3.Vec{X: 5, Z: 7}, r3.Vec{Y: 1})

	assert.Equal(t, 0.0, f.CameraYaw)
	assert.False(t, math.IsNaN(f.CameraYawDelta))
	assert.InDelta(t, 3, f.CameraPitchDelta, 1e-9)
}
