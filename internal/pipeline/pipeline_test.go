package pipeline

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/padmotion/padmotion/controller"
	"github.com/padmotion/padmotion/internal/scheduler"
	"github.com/padmotion/padmotion/sensor"
)

func tick(seq uint64, start time.Time, interval time.Duration) scheduler.Tick {
	elapsed := time.Duration(seq) * interval
	return scheduler.Tick{Seq: seq, Now: start.Add(elapsed), Elapsed: elapsed, Delta: interval}
}

func TestPipelinePublishesSnapshot(t *testing.T) {
	const interval = 10 * time.Millisecond
	feed := sensor.NewFeed()
	pub := &controller.Publisher{}
	p := New(feed, interval, pub, nil, nil)

	frame := &controller.Frame{
		Buttons: controller.ButtonB1,
		Accel:   [3]float32{0, 1, 0},
		Gyro:    [3]float32{1, 2, 3},
		Battery: controller.BatteryHigh,
	}

	for i := uint64(1); i <= 60; i++ {
		p.SetInput(frame)
		tk := tick(i, time.Now(), interval)
		tk.Now = time.Now()
		p.OnTick(tk)
	}

	snap := pub.Load()
	assert.Equal(t, uint64(60), snap.Seq)
	assert.True(t, snap.Pressed(controller.ButtonB1))
	assert.Equal(t, controller.BatteryHigh, snap.Battery)
	assert.Equal(t, r3.Vec{Y: 1}, snap.Accel)
	assert.Equal(t, r3.Vec{X: 1, Y: 2, Z: 3}, snap.Gyro)
	assert.Equal(t, uint64(600000), snap.ElapsedMicros)
	assert.InDelta(t, 600, snap.TimestampMs, 1e-9)

	stats := p.Stats()
	assert.Equal(t, uint64(60), stats.Ticks)
	assert.Equal(t, uint64(60), stats.Inputs)
}

func TestPipelineStalledSensorCentersGyro(t *testing.T) {
	const interval = 10 * time.Millisecond
	feed := sensor.NewFeed()
	pub := &controller.Publisher{}
	p := New(feed, interval, pub, nil, nil)
	feed.Push(sensor.Reading{Accel: r3.Vec{Y: 1}, Gyro: r3.Vec{X: 5}})

	// the feed was pushed at wall clock now; a tick a second later is stale
	p.OnTick(scheduler.Tick{Seq: 1, Now: time.Now().Add(time.Second), Elapsed: interval, Delta: interval})

	snap := pub.Load()
	assert.Equal(t, r3.Vec{}, snap.CenteredGyro)
	assert.Equal(t, r3.Vec{}, snap.Gyro)
	assert.Equal(t, r3.Vec{Y: 1}, snap.Accel)
}

func TestPipelineFlickStick(t *testing.T) {
	const interval = 10 * time.Millisecond
	pub := &controller.Publisher{}
	p := New(sensor.NewFeed(), interval, pub, nil, nil)

	prof := DefaultProfile()
	prof.FlickStick = true
	prof.FlickDuration = 1
	require.NoError(t, p.SetProfile(prof))

	var axes [controller.AxisCount]int16
	axes[controller.AxisRightStickX] = math.MaxInt16
	p.SetInput(&controller.Frame{Axes: axes})

	start := time.Now()
	var turned bool
	for i := uint64(1); i <= 20; i++ {
		p.OnTick(tick(i, start, interval))
		snap := pub.Load()
		assert.Equal(t, int16(0), snap.Axis(controller.AxisRightStickY))
		if snap.Axis(controller.AxisRightStickX) != 0 {
			turned = true
		}
	}
	assert.True(t, turned, "flick should produce output")
}

func TestPipelineOverlay(t *testing.T) {
	const interval = 10 * time.Millisecond
	p := New(sensor.NewFeed(), interval, &controller.Publisher{}, nil, nil)
	ch, cancel := p.Subscribe()
	defer cancel()

	start := time.Now()
	p.OnTick(tick(1, start, interval))
	select {
	case <-ch:
		t.Fatal("readout while overlay hidden")
	default:
	}

	p.SetOverlay(true)
	p.OnTick(tick(2, start, interval))
	select {
	case r := <-ch:
		assert.InDelta(t, 20, r.TimestampMs, 1e-9)
	default:
		t.Fatal("no readout while overlay visible")
	}
	assert.True(t, p.Stats().Overlay)

	cancel()
	p.OnTick(tick(3, start, interval))
	assert.Empty(t, ch)
}

func TestProfileValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Profile)
		ok     bool
	}{
		{"default", func(*Profile) {}, true},
		{"bad steering", func(p *Profile) { p.SteeringAxis = 3 }, false},
		{"flick without duration", func(p *Profile) { p.FlickStick = true; p.FlickDuration = 0 }, false},
		{"filter without cutoff", func(p *Profile) { p.FilterAccel = true; p.FilterMinCutoff = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prof := DefaultProfile()
			tt.mutate(&prof)
			p := New(sensor.NewFeed(), time.Millisecond, &controller.Publisher{}, nil, nil)
			err := p.SetProfile(prof)
			if tt.ok {
				assert.NoError(t, err)
				assert.Equal(t, prof, p.Profile())
			} else {
				assert.Error(t, err)
				assert.Equal(t, DefaultProfile(), p.Profile())
			}
		})
	}
}

func TestPipelineFlickStickEnabledMidSession(t *testing.T) {
	const interval = 10 * time.Millisecond
	pub := &controller.Publisher{}
	p := New(sensor.NewFeed(), interval, pub, nil, nil)

	var axes [controller.AxisCount]int16
	axes[controller.AxisRightStickX] = math.MaxInt16
	p.SetInput(&controller.Frame{Axes: axes})

	off := DefaultProfile()
	on := off
	on.FlickStick = true
	on.FlickDuration = 1

	start := time.Now()
	seq := uint64(0)
	run := func(n int) int16 {
		for i := 0; i < n; i++ {
			seq++
			p.OnTick(tick(seq, start, interval))
		}
		return pub.Load().Axis(controller.AxisRightStickX)
	}

	// several seconds in before the flick stick is switched on
	assert.Equal(t, int16(math.MaxInt16), run(500))
	require.NoError(t, p.SetProfile(on))
	assert.Equal(t, int16(-math.MaxInt16), run(1), "first flick after enabling is a full pulse")

	require.NoError(t, p.SetProfile(off))
	run(300)
	require.NoError(t, p.SetProfile(on))
	assert.Equal(t, int16(-math.MaxInt16), run(1), "re-enabling starts from a fresh history")
}
