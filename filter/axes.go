package filter

import "gonum.org/v1/gonum/spatial/r3"

// Defaults for stick-like two axis signals.
const (
	PairMinCutoff = 0.005
	PairBeta      = 0.004
)

// Defaults for three axis motion signals.
const (
	Vec3MinCutoff = 0.4
	Vec3Beta      = 0.2
)

// Pair filters a two axis signal with independent OneEuro filters.
type Pair struct {
	X, Y OneEuro
}

// NewPair returns a Pair using PairMinCutoff and PairBeta.
func NewPair() *Pair {
	p := &Pair{}
	p.SetParams(PairMinCutoff, PairBeta)
	return p
}

// SetParams updates cutoff and beta on both axes.
func (p *Pair) SetParams(minCutoff, beta float64) {
	p.X.MinCutoff, p.Y.MinCutoff = minCutoff, minCutoff
	p.X.Beta, p.Y.Beta = beta, beta
}

// Reset returns both axes to their first-sample state.
func (p *Pair) Reset() {
	p.X.Reset()
	p.Y.Reset()
}

// Filter smooths (x, y) sampled at rate Hz.
func (p *Pair) Filter(x, y, rate float64) (float64, float64) {
	return p.X.Filter(x, rate), p.Y.Filter(y, rate)
}

// Vec3 filters a three axis signal with independent OneEuro filters.
type Vec3 struct {
	X, Y, Z OneEuro
}

// NewVec3 returns a Vec3 using Vec3MinCutoff and Vec3Beta.
func NewVec3() *Vec3 {
	v := &Vec3{}
	v.SetParams(Vec3MinCutoff, Vec3Beta)
	return v
}

// SetParams updates cutoff and beta on all axes.
func (v *Vec3) SetParams(minCutoff, beta float64) {
	for _, f := range []*OneEuro{&v.X, &v.Y, &v.Z} {
		f.MinCutoff = minCutoff
		f.Beta = beta
	}
}

// Filter smooths the vector sampled at rate Hz.
func (v *Vec3) Filter(in r3.Vec, rate float64) r3.Vec {
	return r3.Vec{
		X: v.X.Filter(in.X, rate),
		Y: v.Y.Filter(in.Y, rate),
		Z: v.Z.Filter(in.Z, rate),
	}
}

// Reset returns all axes to their first-sample state.
func (v *Vec3) Reset() {
	v.X.Reset()
	v.Y.Reset()
	v.Z.Reset()
}
