package motion

import (
	"math"

	"github.com/padmotion/padmotion/filter"
)

const (
	// FlickThreshold is the stick magnitude that starts a flick.
	FlickThreshold = 0.9
	// TurnSmoothThreshold is the upper smoothing tier in radians per sample.
	TurnSmoothThreshold = 0.1

	turnBufferSize = 16
)

// TurnSmoother blends small stick rotations with a moving average while
// passing large rotations through directly.
type TurnSmoother struct {
	buf [turnBufferSize]float64
	idx int
}

// Apply returns the tiered smoothed value of in. Below lower the input is
// fully averaged, above upper it passes straight through, and in between the
// two are linearly blended.
func (s *TurnSmoother) Apply(in, lower, upper float64) float64 {
	w := (math.Abs(in) - lower) / (upper - lower)
	w = math.Max(0, math.Min(1, w))
	return in*w + s.average(in*(1-w))
}

// Zero clears the averaging buffer.
func (s *TurnSmoother) Zero() {
	s.buf = [turnBufferSize]float64{}
}

func (s *TurnSmoother) average(in float64) float64 {
	s.idx = (s.idx + 1) % len(s.buf)
	s.buf[s.idx] = in
	var sum float64
	for _, v := range s.buf {
		sum += v
	}
	return sum / float64(len(s.buf))
}

// FlickStick maps a stick to an instantaneous turn when it is flicked past
// FlickThreshold, followed by continuous turning while the stick rotates
// along the rim.
type FlickStick struct {
	progress        float64
	partialDuration float64
	size            float64
	prevMs          float64
	started         bool

	lastX, lastY                 float64
	lastFilteredX, lastFilteredY float64

	filter   *filter.Pair
	smoother TurnSmoother
}

// NewFlickStick returns a FlickStick using the default stick filter.
func NewFlickStick() *FlickStick {
	return &FlickStick{
		partialDuration: 0.01,
		filter:          filter.NewPair(),
	}
}

// Filter exposes the stick filter so callers can tune it.
func (f *FlickStick) Filter() *filter.Pair { return f.filter }

// FlickSize returns the angle (radians from stick up) of the last flick.
func (f *FlickStick) FlickSize() float64 { return f.size }

// InFlick reports whether a flick pulse is still being emitted.
func (f *FlickStick) InFlick() bool { return f.progress < f.partialDuration }

// Reset forgets the stick history and any pulse in progress so the next
// Handle call is treated as the first sample. Filter parameters are kept.
func (f *FlickStick) Reset() {
	f.filter.Reset()
	f.smoother.Zero()
	f.progress, f.size, f.partialDuration = 0, 0, 0.01
	f.prevMs, f.started = 0, false
	f.lastX, f.lastY = 0, 0
	f.lastFilteredX, f.lastFilteredY = 0, 0
}

// Handle consumes one stick sample taken at nowMs and returns the turn output
// in stick units. flickDuration is the time a 180 degree flick takes, in
// seconds.
func (f *FlickStick) Handle(x, y int16, flickDuration, sensitivity, nowMs float64) int16 {
	sx, sy := shortToUnit(x), shortToUnit(y)

	length := math.Hypot(sx, sy)
	lastLength := math.Hypot(f.lastX, f.lastY)

	// the first sample has no interval: rate 1 and no pulse progress
	dt, rate := 0.0, 1.0
	if f.started {
		dt = (nowMs - f.prevMs) / 1000
		rate = 1.0 / (nowMs - f.prevMs)
	}
	f.started = true
	f.prevMs = nowMs

	fx, fy := f.filter.Filter(sx, sy, rate)

	var result float64
	if length >= FlickThreshold {
		if lastLength < FlickThreshold {
			f.progress = 0
			f.size = math.Atan2(-sx, sy)
			f.partialDuration = flickDuration * math.Abs(f.size) / math.Pi
		} else {
			angle := math.Atan2(-fx, fy)
			lastAngle := math.Atan2(-f.lastFilteredX, f.lastFilteredY)
			change := wrap(angle-lastAngle, -math.Pi, math.Pi)
			result += f.smoother.Apply(change, TurnSmoothThreshold/2, TurnSmoothThreshold) * sensitivity * 2
		}
	} else if lastLength >= FlickThreshold {
		f.smoother.Zero()
	}

	if f.progress < f.partialDuration {
		remaining := f.partialDuration - f.progress
		if remaining > dt {
			result = 1
		} else {
			result = remaining / dt
		}
		result *= sign(f.size)
		f.progress += dt
	}

	f.lastX, f.lastY = sx, sy
	f.lastFilteredX, f.lastFilteredY = fx, fy

	return clampShort(result * math.MaxInt16)
}

func shortToUnit(v int16) float64 {
	return (float64(v)-math.MinInt16)*2/(math.MaxInt16-math.MinInt16) - 1
}

func clampShort(v float64) int16 {
	if math.IsNaN(v) {
		return 0
	}
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

func wrap(x, lo, hi float64) float64 {
	span := hi - lo
	return lo + math.Mod(span+math.Mod(x-lo, span), span)
}
