// Package okr holds the pure progress arithmetic for objectives and key results.
package okr

import "math"

// KeyResultProgress returns how far current is towards target as a percentage
// clamped to [0, 100]. A zero target always yields 0.
func KeyResultProgress(current, target float64) float64 {
	if target == 0 {
		return 0
	}
	return clamp(current/target*100, 0, 100)
}

// ObjectiveProgress returns the mean of the key result progresses rounded
// half-up to an integer. No key results means 0.
func ObjectiveProgress(progresses []float64) int {
	if len(progresses) == 0 {
		return 0
	}

	var total float64
	for _, p := range progresses {
		total += p
	}
	return int(math.Floor(total/float64(len(progresses)) + 0.5))
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Min(math.Max(v, lo), hi)
}
