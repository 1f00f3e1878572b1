// Package sensor provides motion readings to the pipeline.
//
// Accelerometer values are in g, gyroscope values in deg/s.
package sensor

import (
	"sync"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

// Reading is one accelerometer and gyroscope measurement.
type Reading struct {
	Accel r3.Vec
	Gyro  r3.Vec
}

// Source yields the most recent reading of a sensor.
type Source interface {
	// Read returns the latest reading and when it arrived. ok is false
	// until the source produced anything.
	Read() (r Reading, at time.Time, ok bool)
}

// latest holds the newest reading of a push based source.
type latest struct {
	mu sync.Mutex
	r  Reading
	at time.Time
	ok bool
	n  uint64
}

func (l *latest) store(r Reading, at time.Time) {
	l.mu.Lock()
	l.r, l.at, l.ok = r, at, true
	l.n++
	l.mu.Unlock()
}

func (l *latest) Read() (Reading, time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r, l.at, l.ok
}

// Count returns the number of readings received so far.
func (l *latest) Count() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.n
}

// Feed is a source whose readings are pushed by the caller, e.g. the IPC
// input stream.
type Feed struct {
	latest
	now func() time.Time
}

func NewFeed() *Feed { return &Feed{now: time.Now} }

// Push stores r as the latest reading.
func (f *Feed) Push(r Reading) { f.store(r, f.now()) }

// Centering reports a second, fixed reading that drops to zero when the
// source stalls for more than six update intervals.
type Centering struct {
	src    Source
	window time.Duration
}

func NewCentering(src Source, interval time.Duration) *Centering {
	return &Centering{src: src, window: 6 * interval}
}

// Read returns the live and the fixed reading at now.
func (c *Centering) Read(now time.Time) (reading, fixed Reading) {
	r, at, ok := c.src.Read()
	if !ok {
		return Reading{}, Reading{}
	}
	if now.Sub(at) <= c.window {
		return r, r
	}
	return r, Reading{}
}

var (
	_ Source = (*Feed)(nil)
	_ Source = (*Serial)(nil)
	_ Source = (*IIO)(nil)
)
