package sensor

import "gonum.org/v1/gonum/spatial/r3"

// Variant selects how a reading is presented.
type Variant int

const (
	// Default applies the profile transform.
	Default Variant = iota
	// Raw is the device frame reading.
	Raw
	// Centered is Default over the fixed reading.
	Centered
	// WithRatio is Default with the gyro multiplier applied.
	WithRatio
	// CenteredRatio is Centered with the gyro multiplier applied.
	CenteredRatio
	// CenteredRaw is Raw over the fixed reading.
	CenteredRaw

	variantCount
)

func (v Variant) String() string {
	switch v {
	case Default:
		return "default"
	case Raw:
		return "raw"
	case Centered:
		return "centered"
	case WithRatio:
		return "with-ratio"
	case CenteredRatio:
		return "centered-ratio"
	case CenteredRaw:
		return "centered-raw"
	default:
		return "unknown"
	}
}

// SteeringAxis picks the gyro axis that drives horizontal motion.
type SteeringAxis int

const (
	SteeringYaw SteeringAxis = iota
	SteeringRoll
)

// Profile transforms device readings into the frame games expect.
type Profile struct {
	GyroMultiplier   float64      `json:"gyroMultiplier"`
	AccelMultiplier  float64      `json:"accelMultiplier"`
	SteeringAxis     SteeringAxis `json:"steeringAxis"`
	InvertHorizontal bool         `json:"invertHorizontal"`
	InvertVertical   bool         `json:"invertVertical"`
}

// DefaultProfile leaves readings untouched.
func DefaultProfile() Profile {
	return Profile{GyroMultiplier: 1, AccelMultiplier: 1}
}

// Sample is a reading presented as one Variant.
type Sample struct {
	Reading
	TimestampMs float64
	Variant     Variant
}

// Samples holds every variant of one tick, indexed by Variant.
type Samples [variantCount]Sample

// Get returns the sample for v.
func (s *Samples) Get(v Variant) Sample {
	if v < 0 || v >= variantCount {
		return Sample{}
	}
	return s[v]
}

// Samples computes all variants from the live and fixed readings.
func (p Profile) Samples(reading, fixed Reading, timestampMs float64) Samples {
	var out Samples
	for v := Variant(0); v < variantCount; v++ {
		src := reading
		if v == Centered || v == CenteredRatio || v == CenteredRaw {
			src = fixed
		}
		r := src
		if v != Raw && v != CenteredRaw {
			r = Reading{Accel: p.accel(src.Accel), Gyro: p.gyro(src.Gyro)}
			if v == WithRatio || v == CenteredRatio {
				r.Gyro = r3.Scale(p.GyroMultiplier, r.Gyro)
			}
		}
		out[v] = Sample{Reading: r, TimestampMs: timestampMs, Variant: v}
	}
	return out
}

func (p Profile) gyro(g r3.Vec) r3.Vec {
	out := g
	if p.SteeringAxis == SteeringRoll {
		out.Y, out.Z = g.Z, g.Y
	}
	return p.invert(out)
}

func (p Profile) accel(a r3.Vec) r3.Vec {
	out := a
	if p.AccelMultiplier != 0 {
		out = r3.Scale(p.AccelMultiplier, out)
	}
	if p.SteeringAxis == SteeringRoll {
		out.Y, out.Z = -out.Z, out.Y
	}
	return p.invert(out)
}

func (p Profile) invert(v r3.Vec) r3.Vec {
	if p.InvertHorizontal {
		v.Y, v.Z = -v.Y, -v.Z
	}
	if p.InvertVertical {
		v.Y, v.X = -v.Y, -v.X
	}
	return v
}
