package dualshock4

import "math"

// GyroDpsToRaw converts angular velocity in deg/s into report counts.
func GyroDpsToRaw(dps float64) int16 {
	return clampI16(math.Round(dps * GyroCountsPerDps))
}

// GyroRawToDps converts report counts into deg/s.
func GyroRawToDps(raw int16) float64 {
	return float64(raw) / GyroCountsPerDps
}

// AccelGToRaw converts acceleration in g into report counts.
func AccelGToRaw(g float64) int16 {
	return clampI16(math.Round(g * AccelCountsPerG))
}

// AccelRawToG converts report counts into g.
func AccelRawToG(raw int16) float64 {
	return float64(raw) / AccelCountsPerG
}

// Timestamp converts elapsed microseconds into the report's rolling
// timestamp, which ticks in units of 16/3 us.
func Timestamp(elapsedMicros uint64) uint16 {
	return uint16(elapsedMicros * 3 / 16)
}

func clampI16(v float64) int16 {
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
