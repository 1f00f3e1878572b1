package apitypes

import (
	"fmt"
	"time"
)

// ApiError represents an RFC 7807 (problem+json) error response.
type ApiError struct {
	// Status is the HTTP-style status code (e.g., 400, 404, 500)
	Status int `json:"status"`
	// Title is a short, human-readable summary of the problem type
	Title string `json:"title"`
	// Detail is a human-readable explanation specific to this occurrence
	Detail string `json:"detail"`
}

func (e ApiError) Error() string {
	if e.Status == 0 && e.Title == "" {
		return "unknown error"
	}
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Title, e.Detail)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Title, e.Detail)
}

// --

type PingResponse struct {
	Server  string `json:"server"`
	Version string `json:"version"`
}

type SchedulerStatus struct {
	IntervalMs float64 `json:"intervalMs"`
	Ticks      uint64  `json:"ticks"`
	Skipped    uint64  `json:"skipped"`
}

type PipelineStatus struct {
	Ticks        uint64  `json:"ticks"`
	Inputs       uint64  `json:"inputs"`
	LastTickMs   float64 `json:"lastTickMs"`
	DeviceAngleX float64 `json:"deviceAngleX"`
	DeviceAngleY float64 `json:"deviceAngleY"`
	Overlay      bool    `json:"overlay"`
}

type ReportStatus struct {
	Submitted uint64 `json:"submitted"`
	Failed    uint64 `json:"failed"`
}

type DSUStatus struct {
	State      string `json:"state"`
	Addr       string `json:"addr,omitempty"`
	Clients    int    `json:"clients"`
	Received   uint64 `json:"received"`
	Dropped    uint64 `json:"dropped"`
	Sent       uint64 `json:"sent"`
	SendErrors uint64 `json:"sendErrors"`
	PoolFull   uint64 `json:"poolFull"`
}

type StatusResponse struct {
	Scheduler SchedulerStatus `json:"scheduler"`
	Pipeline  PipelineStatus  `json:"pipeline"`
	Report    *ReportStatus   `json:"report,omitempty"`
	DSU       *DSUStatus      `json:"dsu,omitempty"`
}

type DSUClient struct {
	Addr     string    `json:"addr"`
	AllPads  bool      `json:"allPads"`
	PadIDs   []uint8   `json:"padIds"`
	MACs     int       `json:"macs"`
	LastSeen time.Time `json:"lastSeen"`
}

type DSUClientsResponse struct {
	Clients []DSUClient `json:"clients"`
}

// Profile is the motion profile. Fields left out of a profile/set request
// keep their current value.
type Profile struct {
	GyroMultiplier   float64 `json:"gyroMultiplier"`
	AccelMultiplier  float64 `json:"accelMultiplier"`
	SteeringAxis     int     `json:"steeringAxis"`
	InvertHorizontal bool    `json:"invertHorizontal"`
	InvertVertical   bool    `json:"invertVertical"`
	FlickStick       bool    `json:"flickStick"`
	FlickDuration    float64 `json:"flickDuration"`
	FlickSensitivity float64 `json:"flickSensitivity"`
	FilterAccel      bool    `json:"filterAccel"`
	FilterMinCutoff  float64 `json:"filterMinCutoff"`
	FilterBeta       float64 `json:"filterBeta"`
}

type OverlayResponse struct {
	Visible bool `json:"visible"`
}

// TouchRequest is a pointer event on the virtual touchpad. X and Y are
// normalized to 0..1. Button selects the pad: 0 left, 1 right.
type TouchRequest struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Button    int     `json:"button"`
	DoubleTap bool    `json:"doubleTap,omitempty"`
}

type TouchResponse struct {
	Action string `json:"action"`
	Button int    `json:"button"`
}

// StreamOpenResponse is the first line a stream writes.
type StreamOpenResponse struct {
	Session string `json:"session"`
	Stream  string `json:"stream"`
}

// SensorReadout is one line of the sensor stream.
type SensorReadout struct {
	TimestampMs  float64    `json:"timestampMs"`
	CenteredGyro [3]float64 `json:"centeredGyro"`
	Gravity      [3]float64 `json:"gravity"`
	DeviceAngleX float64    `json:"deviceAngleX"`
	DeviceAngleY float64    `json:"deviceAngleY"`
}
