package random

import "testing"

func TestNew_Deterministic(t *testing.T) {
	a, b := New(42), New(42)
	for i := 0; i < 100; i++ {
		if x, y := a.Float64(), b.Float64(); x != y {
			t.Fatalf("step %d: expected identical values, got %v and %v", i, x, y)
		}
	}
}

func TestSequence_Cycles(t *testing.T) {
	s := NewSequence(0.1, 0.9)
	want := []float64{0.1, 0.9, 0.1, 0.9}
	for i, w := range want {
		if got := s.Float64(); got != w {
			t.Errorf("step %d: expected %v, got %v", i, w, got)
		}
	}
}

func TestSequence_IntNBounds(t *testing.T) {
	s := NewSequence(0, 0.999999, 0.5)
	tests := []struct {
		n    int
		want int
	}{
		{4, 0},
		{4, 3},
		{4, 2},
	}
	for _, tt := range tests {
		if got := s.IntN(tt.n); got != tt.want {
			t.Errorf("IntN(%d): expected %d, got %d", tt.n, tt.want, got)
		}
	}
}

func TestPickAndBetween(t *testing.T) {
	s := NewSequence(0.75)
	if got := Pick(s, []int{60, 120, 180, 300}); got != 300 {
		t.Errorf("expected 300, got %d", got)
	}
	if got := Between(s, 45, 225); got != 180 {
		t.Errorf("expected 180, got %v", got)
	}
}
