package overload

import "testing"

// TestEstimate1RM checks the Epley estimate over typical rep ranges.
func TestEstimate1RM(t *testing.T) {
	tests := []struct {
		name   string
		weight float64
		reps   int
		want   float64
	}{
		{"single", 100, 1, 100},
		{"five reps", 100, 5, 100 * (1 + 5.0/30)},
		{"ten reps", 80, 10, 80 * (1 + 10.0/30)},
		{"zero reps", 100, 0, 0},
		{"zero weight", 0, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Estimate1RM(tt.weight, tt.reps); got != tt.want {
				t.Errorf("Estimate1RM(%v, %d) = %v, want %v", tt.weight, tt.reps, got, tt.want)
			}
		})
	}
}

// TestSuggestNextLoad checks hold-vs-increase behavior around the target
// rep count.
func TestSuggestNextLoad(t *testing.T) {
	// Below target: hold.
	if got := SuggestNextLoad(100, 6, 8); got != 100 {
		t.Errorf("below target = %v, want 100", got)
	}
	// At target: +2.5% rounded to 2.5 kg -> 102.5.
	if got := SuggestNextLoad(100, 8, 8); got != 102.5 {
		t.Errorf("at target = %v, want 102.5", got)
	}
	// Light dumbbell work still rounds to a real increment.
	if got := SuggestNextLoad(20, 12, 12); got != 20 {
		t.Errorf("small load = %v, want 20 (increase below increment)", got)
	}
	if got := SuggestNextLoad(0, 10, 8); got != 0 {
		t.Errorf("zero load = %v, want 0", got)
	}
}

// TestRoundToIncrement checks plate rounding.
func TestRoundToIncrement(t *testing.T) {
	if got := RoundToIncrement(101.3, 2.5); got != 100 {
		t.Errorf("RoundToIncrement(101.3, 2.5) = %v, want 100", got)
	}
	if got := RoundToIncrement(101.3, 0); got != 101.3 {
		t.Errorf("zero increment = %v, want passthrough", got)
	}
}
