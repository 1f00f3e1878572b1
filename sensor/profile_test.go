package sensor

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestProfileSamples(t *testing.T) {
	reading := Reading{Accel: r3.Vec{X: 1, Y: 2, Z: 3}, Gyro: r3.Vec{X: 10, Y: 20, Z: 30}}
	fixed := Reading{Accel: r3.Vec{X: 1, Y: 2, Z: 3}}

	tests := []struct {
		name    string
		profile Profile
		variant Variant
		want    Reading
	}{
		{"raw ignores profile", Profile{GyroMultiplier: 2, SteeringAxis: SteeringRoll, InvertVertical: true}, Raw, reading},
		{"centered raw uses fixed", Profile{InvertHorizontal: true}, CenteredRaw, fixed},
		{"default identity", DefaultProfile(), Default, reading},
		{"steering roll", Profile{SteeringAxis: SteeringRoll}, Default,
			Reading{Accel: r3.Vec{X: 1, Y: -3, Z: 2}, Gyro: r3.Vec{X: 10, Y: 30, Z: 20}}},
		{"invert horizontal", Profile{InvertHorizontal: true}, Default,
			Reading{Accel: r3.Vec{X: 1, Y: -2, Z: -3}, Gyro: r3.Vec{X: 10, Y: -20, Z: -30}}},
		{"invert vertical", Profile{InvertVertical: true}, Default,
			Reading{Accel: r3.Vec{X: -1, Y: -2, Z: 3}, Gyro: r3.Vec{X: -10, Y: -20, Z: 30}}},
		{"accel multiplier", Profile{AccelMultiplier: 2}, Default,
			Reading{Accel: r3.Vec{X: 2, Y: 4, Z: 6}, Gyro: r3.Vec{X: 10, Y: 20, Z: 30}}},
		{"ratio scales gyro only", Profile{GyroMultiplier: 2}, WithRatio,
			Reading{Accel: r3.Vec{X: 1, Y: 2, Z: 3}, Gyro: r3.Vec{X: 20, Y: 40, Z: 60}}},
		{"centered ratio", Profile{GyroMultiplier: 2}, CenteredRatio, fixed},
		{"default without ratio", Profile{GyroMultiplier: 2}, Default, reading},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.profile.Samples(reading, fixed, 42)
			got := s.Get(tt.variant)
			if diff := cmp.Diff(tt.want, got.Reading); diff != "" {
				t.Errorf("reading mismatch (-want +got):\n%s", diff)
			}
			if got.Variant != tt.variant || got.TimestampMs != 42 {
				t.Errorf("got variant %v ts %v", got.Variant, got.TimestampMs)
			}
		})
	}
}
