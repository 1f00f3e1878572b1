package pipeline

import (
	"errors"

	"github.com/padmotion/padmotion/sensor"
)

// Profile holds the per game motion settings. A new profile takes effect
// on the next tick.
type Profile struct {
	sensor.Profile

	FlickStick       bool    `json:"flickStick"`
	FlickDuration    float64 `json:"flickDuration"`
	FlickSensitivity float64 `json:"flickSensitivity"`

	FilterAccel     bool    `json:"filterAccel"`
	FilterMinCutoff float64 `json:"filterMinCutoff"`
	FilterBeta      float64 `json:"filterBeta"`
}

func DefaultProfile() Profile {
	return Profile{
		Profile:          sensor.DefaultProfile(),
		FlickDuration:    0.1,
		FlickSensitivity: 5,
		FilterMinCutoff:  0.4,
		FilterBeta:       0.2,
	}
}

// Validate rejects settings the pipeline cannot run with.
func (p Profile) Validate() error {
	switch {
	case p.SteeringAxis != sensor.SteeringYaw && p.SteeringAxis != sensor.SteeringRoll:
		return errors.New("steeringAxis must be 0 (yaw) or 1 (roll)")
	case p.FlickStick && p.FlickDuration <= 0:
		return errors.New("flickDuration must be positive")
	case p.FilterAccel && (p.FilterMinCutoff <= 0 || p.FilterBeta < 0):
		return errors.New("filterMinCutoff must be positive and filterBeta not negative")
	}
	return nil
}
