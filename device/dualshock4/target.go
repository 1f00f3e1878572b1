package dualshock4

import (
	"log/slog"
	"sync/atomic"

	"github.com/padmotion/padmotion/controller"
	"github.com/padmotion/padmotion/device"
	"github.com/padmotion/padmotion/internal/scheduler"
)

// Target submits a report for every new snapshot to an emulated HID bus.
type Target struct {
	bus       device.Bus
	snapshots *controller.Publisher
	logger    *slog.Logger

	// Mounting remaps motion axes for the physical device.
	Mounting Mounting
	// Extended selects the 63 byte report without id instead of the USB
	// report.
	Extended bool

	lastSeq   uint64
	counter   uint8
	submitted atomic.Uint64
	failed    atomic.Uint64
}

// NewTarget returns a Target reading from snapshots and writing to bus.
func NewTarget(bus device.Bus, snapshots *controller.Publisher, logger *slog.Logger) *Target {
	if logger == nil {
		logger = slog.Default()
	}
	return &Target{
		bus:       bus,
		snapshots: snapshots,
		logger:    logger.With("target", "dualshock4"),
	}
}

// OnTick builds and submits the report for the latest snapshot. Ticks
// without a new snapshot submit nothing.
func (t *Target) OnTick(scheduler.Tick) {
	s := t.snapshots.Load()
	if s.Seq == 0 || s.Seq == t.lastSeq {
		return
	}
	t.lastSeq = s.Seq

	ts := Timestamp(s.ElapsedMicros)
	var err error
	if t.Extended {
		r := t.Mounting.BuildReport(&s.State, ts)
		err = t.bus.Submit(r[:])
	} else {
		r := t.Mounting.BuildUSBReport(&s.State, ts, t.counter)
		t.counter = (t.counter + 1) & CounterMask
		err = t.bus.Submit(r[:])
	}
	if err != nil {
		if t.failed.Add(1) == 1 {
			t.logger.Warn("submit report failed", "error", err)
		} else {
			t.logger.Debug("submit report failed", "error", err)
		}
		return
	}
	t.submitted.Add(1)
}

// Submitted returns the number of reports the bus accepted.
func (t *Target) Submitted() uint64 { return t.submitted.Load() }

// Failed returns the number of rejected reports.
func (t *Target) Failed() uint64 { return t.failed.Load() }
