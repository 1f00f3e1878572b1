// Package filter provides the low-pass and adaptive OneEuro filters used to
// denoise stick and motion sensor samples.
package filter

import "math"

// derivativeCutoff is the fixed cutoff frequency (Hz) applied to the
// derivative estimate.
const derivativeCutoff = 1.0

// LowPass is an exponential smoothing filter. The zero value is ready to use.
type LowPass struct {
	prev    float64
	started bool
}

// Filter returns the smoothed value for x. The first call returns x unchanged.
func (l *LowPass) Filter(x, alpha float64) float64 {
	if !l.started {
		l.started = true
		l.prev = x
		return x
	}
	l.prev = alpha*x + (1-alpha)*l.prev
	return l.prev
}

// Last returns the most recent output of the filter.
func (l *LowPass) Last() float64 { return l.prev }

// Reset forgets all previous samples.
func (l *LowPass) Reset() { *l = LowPass{} }

// OneEuro is an adaptive low-pass filter whose cutoff frequency rises with
// the speed of the signal: slow movements are smoothed heavily while fast
// movements stay responsive.
type OneEuro struct {
	MinCutoff float64
	Beta      float64

	x       LowPass
	dx      LowPass
	started bool
}

// NewOneEuro returns a filter with the given minimum cutoff (Hz) and speed
// coefficient.
func NewOneEuro(minCutoff, beta float64) *OneEuro {
	return &OneEuro{MinCutoff: minCutoff, Beta: beta}
}

// Filter smooths x sampled at rate Hz. rate must be > 0.
func (f *OneEuro) Filter(x, rate float64) float64 {
	var dx float64
	if f.started {
		dx = (x - f.x.Last()) * rate
	}
	f.started = true

	edx := f.dx.Filter(dx, alpha(rate, derivativeCutoff))
	cutoff := f.MinCutoff + f.Beta*math.Abs(edx)
	return f.x.Filter(x, alpha(rate, cutoff))
}

// Reset returns the filter to its first-sample state, keeping parameters.
func (f *OneEuro) Reset() {
	f.x.Reset()
	f.dx.Reset()
	f.started = false
}

func alpha(rate, cutoff float64) float64 {
	tau := 1.0 / (2 * math.Pi * cutoff)
	te := 1.0 / rate
	return 1.0 / (1.0 + tau/te)
}
