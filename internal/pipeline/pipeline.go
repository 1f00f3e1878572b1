// Package pipeline turns sensor readings and host input into one published
// controller snapshot per scheduler tick.
package pipeline

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/padmotion/padmotion/concurrent"
	"github.com/padmotion/padmotion/controller"
	"github.com/padmotion/padmotion/device/dualshock4"
	"github.com/padmotion/padmotion/filter"
	"github.com/padmotion/padmotion/internal/scheduler"
	"github.com/padmotion/padmotion/motion"
	"github.com/padmotion/padmotion/sensor"
)

// Readout is the sensor view streamed to an overlay.
type Readout struct {
	TimestampMs  float64
	CenteredGyro r3.Vec
	Gravity      r3.Vec
	DeviceAngle  motion.Angle
}

// Stats describe the pipeline since it was created.
type Stats struct {
	Ticks       uint64       `json:"ticks"`
	Inputs      uint64       `json:"inputs"`
	LastTickMs  float64      `json:"lastTickMs"`
	DeviceAngle motion.Angle `json:"deviceAngle"`
	Overlay     bool         `json:"overlay"`
}

// Pipeline is a scheduler observer. OnTick must not run concurrently with
// itself, which the scheduler guarantees; every other method is safe for
// concurrent use.
type Pipeline struct {
	source    *sensor.Centering
	feed      *sensor.Feed
	publisher *controller.Publisher
	touch     *dualshock4.Touch
	logger    *slog.Logger

	profile atomic.Pointer[Profile]
	input   atomic.Pointer[controller.State]
	inputs  atomic.Uint64

	// owned by OnTick
	fusion      *motion.Fusion
	flick       *motion.FlickStick
	flickOn     bool
	accelFilter *filter.Vec3
	applied     *Profile

	overlay  atomic.Bool
	readouts *concurrent.List[chan Readout]

	mu    sync.Mutex
	stats Stats
}

// New creates a pipeline reading src at the given scheduler interval.
func New(src sensor.Source, interval time.Duration, publisher *controller.Publisher, touch *dualshock4.Touch, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if touch == nil {
		touch = dualshock4.NewTouch()
	}
	p := &Pipeline{
		source:      sensor.NewCentering(src, interval),
		publisher:   publisher,
		touch:       touch,
		logger:      logger,
		fusion:      motion.NewFusion(),
		flick:       motion.NewFlickStick(),
		accelFilter: filter.NewVec3(),
		readouts:    concurrent.New[chan Readout](0),
	}
	if f, ok := src.(*sensor.Feed); ok {
		p.feed = f
	}
	prof := DefaultProfile()
	p.profile.Store(&prof)
	return p
}

// SetProfile replaces the active profile.
func (p *Pipeline) SetProfile(prof Profile) error {
	if err := prof.Validate(); err != nil {
		return err
	}
	p.profile.Store(&prof)
	p.logger.Info("Profile updated", "flickStick", prof.FlickStick, "steeringAxis", prof.SteeringAxis)
	return nil
}

func (p *Pipeline) Profile() Profile { return *p.profile.Load() }

// SetInput stores the host controller state for the next tick. If the
// pipeline reads from a feed, the frame's motion is pushed to it as well.
func (p *Pipeline) SetInput(f *controller.Frame) {
	st := &controller.State{
		Buttons: f.Buttons,
		Axes:    f.Axes,
		Battery: f.Battery,
	}
	p.input.Store(st)
	p.inputs.Add(1)
	if p.feed != nil {
		p.feed.Push(sensor.Reading{Accel: f.AccelVec(), Gyro: f.GyroVec()})
	}
}

// Touch returns the touch tracker fed by pointer events.
func (p *Pipeline) Touch() *dualshock4.Touch { return p.touch }

// SetOverlay turns the sensor readout stream on or off.
func (p *Pipeline) SetOverlay(visible bool) {
	if p.overlay.Swap(visible) != visible {
		p.logger.Debug("Overlay changed", "visible", visible)
	}
}

// Subscribe returns a channel receiving one Readout per tick while the
// overlay is visible. Slow readers miss readouts. cancel must be called
// to release the subscription.
func (p *Pipeline) Subscribe() (<-chan Readout, func()) {
	ch := make(chan Readout, 16)
	p.readouts.Add(ch)
	var once sync.Once
	return ch, func() {
		once.Do(func() { p.readouts.Remove(ch) })
	}
}

func (p *Pipeline) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.stats
	s.Inputs = p.inputs.Load()
	s.Overlay = p.overlay.Load()
	return s
}

// OnTick runs one pipeline step and publishes the resulting snapshot.
func (p *Pipeline) OnTick(t scheduler.Tick) {
	nowMs := float64(t.Elapsed) / float64(time.Millisecond)
	dt := t.Delta.Seconds()

	prof := p.profile.Load()
	if prof != p.applied {
		p.accelFilter.SetParams(prof.FilterMinCutoff, prof.FilterBeta)
		p.applied = prof
	}

	live, fixed := p.source.Read(t.Now)
	samples := prof.Samples(live, fixed, nowMs)

	accel := samples.Get(sensor.Default).Accel
	if prof.FilterAccel && dt > 0 {
		accel = p.accelFilter.Filter(accel, 1/dt)
	}
	centered := samples.Get(sensor.Centered).Gyro
	p.fusion.Update(nowMs, dt, centered, accel)

	var st controller.State
	if in := p.input.Load(); in != nil {
		st = *in
	}
	if prof.FlickStick && !p.flickOn {
		p.flick.Reset()
	}
	p.flickOn = prof.FlickStick
	if prof.FlickStick {
		x := p.flick.Handle(st.Axis(controller.AxisRightStickX), st.Axis(controller.AxisRightStickY),
			prof.FlickDuration, prof.FlickSensitivity, nowMs)
		st.Axes[controller.AxisRightStickX] = x
		st.Axes[controller.AxisRightStickY] = 0
	}
	st.Accel = accel
	st.Gyro = samples.Get(sensor.CenteredRatio).Gyro
	p.touch.Update(&st)

	p.publisher.Publish(&controller.Snapshot{
		State:         st,
		TimestampMs:   nowMs,
		ElapsedMicros: uint64(t.Elapsed / time.Microsecond),
		CenteredGyro:  centered,
		DeviceAngleX:  p.fusion.DeviceAngle.X,
		DeviceAngleY:  p.fusion.DeviceAngle.Y,
	})

	p.mu.Lock()
	p.stats.Ticks++
	p.stats.LastTickMs = nowMs
	p.stats.DeviceAngle = p.fusion.DeviceAngle
	p.mu.Unlock()

	if p.overlay.Load() {
		p.broadcast(Readout{
			TimestampMs:  nowMs,
			CenteredGyro: centered,
			Gravity:      p.fusion.Gravity,
			DeviceAngle:  p.fusion.DeviceAngle,
		})
	}
}

func (p *Pipeline) broadcast(r Readout) {
	for _, ch := range p.readouts.All() {
		select {
		case ch <- r:
		default:
		}
	}
}

var _ scheduler.Observer = (*Pipeline)(nil)
