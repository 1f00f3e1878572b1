// Package device holds the interfaces between report builders and the
// emulated HID bus that delivers reports to the OS.
package device

import (
	"fmt"
	"sync/atomic"

	"github.com/padmotion/padmotion/internal/log"
)

// Bus is the handle of an emulated HID bus. Submit hands one complete input
// report to the OS.
type Bus interface {
	Submit(report []byte) error
}

// LogBus is a Bus that only records submitted reports through a raw logger.
// It is used when no driver backed bus is available.
type LogBus struct {
	name      string
	raw       log.RawLogger
	submitted atomic.Uint64
}

// NewLogBus returns a LogBus that labels its dumps with name.
func NewLogBus(name string, raw log.RawLogger) *LogBus {
	return &LogBus{name: name, raw: raw}
}

func (b *LogBus) Submit(report []byte) error {
	if len(report) == 0 {
		return fmt.Errorf("%s: empty report", b.name)
	}
	b.submitted.Add(1)
	if b.raw != nil {
		b.raw.Log(b.name, false, report)
	}
	return nil
}

// Submitted returns the number of accepted reports.
func (b *LogBus) Submitted() uint64 { return b.submitted.Load() }
