// Package overload holds the pure training-math helpers used at
// finish time: estimated one-rep max and next-load suggestions.
package overload

import "math"

// Estimate1RM returns the Epley estimated one-rep max for a set. A single
// rep is its own max; zero reps estimates zero.
func Estimate1RM(weightKg float64, reps int) float64 {
	if reps <= 0 || weightKg <= 0 {
		return 0
	}
	if reps == 1 {
		return weightKg
	}
	return weightKg * (1 + float64(reps)/30)
}

// SuggestNextLoad proposes the next working weight for an exercise given
// the best recent set: +2.5% once the target rep count is met, rounded to
// the nearest smallest plate increment, otherwise hold the load.
func SuggestNextLoad(lastWeightKg float64, lastReps, targetReps int) float64 {
	if lastWeightKg <= 0 {
		return 0
	}
	if lastReps < targetReps {
		return lastWeightKg
	}
	next := lastWeightKg * 1.025
	return RoundToIncrement(next, 2.5)
}

// RoundToIncrement rounds a weight to the nearest plate increment.
func RoundToIncrement(weightKg, increment float64) float64 {
	if increment <= 0 {
		return weightKg
	}
	return math.Round(weightKg/increment) * increment
}
