// Package scheduler drives the pipeline at a fixed interval. A tick that
// fires while the previous one is still running is dropped, not queued.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/padmotion/padmotion/concurrent"
)

// DefaultInterval is the pipeline cadence.
const DefaultInterval = 10 * time.Millisecond

// Tick describes one executed tick.
type Tick struct {
	// Seq counts executed ticks, starting at 1.
	Seq uint64
	// Now is the wall clock time the tick fired.
	Now time.Time
	// Elapsed is the time since the ticker started.
	Elapsed time.Duration
	// Delta is the time since the previous executed tick, or the interval
	// for the first one.
	Delta time.Duration
}

// Observer receives ticks. Observers run one after another in registration
// order on the goroutine that executes the tick.
type Observer interface {
	OnTick(t Tick)
}

type funcObserver struct {
	name string
	fn   func(Tick)
}

func (f *funcObserver) OnTick(t Tick) { f.fn(t) }
func (f *funcObserver) String() string { return f.name }

// Func wraps fn as an Observer.
func Func(name string, fn func(Tick)) Observer {
	return &funcObserver{name: name, fn: fn}
}

// Stats are the ticker counters.
type Stats struct {
	Ticks   uint64        `json:"ticks"`
	Skipped uint64        `json:"skipped"`
	Busy    time.Duration `json:"lastDuration"`
}

// Ticker fires observers at a fixed interval.
type Ticker struct {
	interval  time.Duration
	logger    *slog.Logger
	observers *concurrent.List[Observer]
	clock     Stopwatch

	busy     sync.Mutex
	lastTick time.Time
	seq      uint64

	ticks    atomic.Uint64
	skipped  atomic.Uint64
	lastBusy atomic.Int64

	runMu    sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	inflight sync.WaitGroup
}

// New returns a stopped ticker. A non-positive interval selects
// DefaultInterval.
func New(interval time.Duration, logger *slog.Logger) *Ticker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ticker{
		interval:  interval,
		logger:    logger,
		observers: concurrent.New[Observer](4),
	}
}

func (t *Ticker) Interval() time.Duration { return t.interval }

// Register appends o to the observer list.
func (t *Ticker) Register(o Observer) {
	t.observers.Add(o)
}

// Unregister removes o. It may be called from within OnTick.
func (t *Ticker) Unregister(o Observer) {
	t.observers.Remove(o)
}

// Start begins firing ticks until ctx is done or Stop is called. Each
// interval fires on its own goroutine so that a slow tick makes the next one
// skip rather than delay.
func (t *Ticker) Start(ctx context.Context) {
	t.runMu.Lock()
	defer t.runMu.Unlock()
	if t.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.done = make(chan struct{})
	t.clock.Restart()

	go func(done chan struct{}) {
		defer close(done)
		tk := time.NewTicker(t.interval)
		defer tk.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-tk.C:
				t.inflight.Add(1)
				go func() {
					defer t.inflight.Done()
					t.Fire(now)
				}()
			}
		}
	}(t.done)
	t.logger.Debug("ticker started", "interval", t.interval)
}

// Stop ends the tick loop and waits for a tick already executing to finish,
// so no observer runs after Stop returns. Stop is idempotent. It must not be
// called from an observer.
func (t *Ticker) Stop() {
	t.runMu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.runMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	t.inflight.Wait()
	t.logger.Debug("ticker stopped", "ticks", t.ticks.Load(), "skipped", t.skipped.Load())
}

// Fire executes one tick at now unless a tick is already running, in which
// case it counts a skip and returns false.
func (t *Ticker) Fire(now time.Time) bool {
	if !t.busy.TryLock() {
		t.skipped.Add(1)
		return false
	}
	defer t.busy.Unlock()

	start := time.Now()
	t.seq++
	tick := Tick{
		Seq:     t.seq,
		Now:     now,
		Elapsed: t.clock.Elapsed(),
		Delta:   t.interval,
	}
	if !t.lastTick.IsZero() {
		tick.Delta = now.Sub(t.lastTick)
	}
	t.lastTick = now

	for _, o := range t.observers.All() {
		o.OnTick(tick)
	}

	t.ticks.Add(1)
	t.lastBusy.Store(int64(time.Since(start)))
	return true
}

func (t *Ticker) Stats() Stats {
	return Stats{
		Ticks:   t.ticks.Load(),
		Skipped: t.skipped.Load(),
		Busy:    time.Duration(t.lastBusy.Load()),
	}
}
