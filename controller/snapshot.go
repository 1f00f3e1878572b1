package controller

import (
	"sync/atomic"

	"gonum.org/v1/gonum/spatial/r3"
)

// Snapshot is the published result of one pipeline tick. It is never
// modified after Publish.
type Snapshot struct {
	State

	// Seq increases by one per published snapshot.
	Seq uint64
	// TimestampMs is the pipeline clock of the tick.
	TimestampMs float64
	// ElapsedMicros is the time since the pipeline started.
	ElapsedMicros uint64

	// CenteredGyro is the centered gyro reading in deg/s.
	CenteredGyro r3.Vec
	// DeviceAngle is the device tilt in degrees.
	DeviceAngleX float64
	DeviceAngleY float64
}

// Publisher hands the latest Snapshot from the producer to any number of
// readers. Readers never observe a partially written snapshot.
type Publisher struct {
	cur atomic.Pointer[Snapshot]
	seq atomic.Uint64
}

// Publish stores s as the latest snapshot and assigns its sequence number.
// The caller must not modify s afterwards.
func (p *Publisher) Publish(s *Snapshot) {
	s.Seq = p.seq.Add(1)
	p.cur.Store(s)
}

// Load returns the latest snapshot, or an empty one if nothing was
// published yet.
func (p *Publisher) Load() *Snapshot {
	if s := p.cur.Load(); s != nil {
		return s
	}
	return &Snapshot{}
}
