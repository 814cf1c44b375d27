package param

import (
	"math"
	"testing"
)

func TestSmootherLinearReachesTarget(t *testing.T) {
	s := NewSmoother(LinearSmoothing, 10)
	s.SetTarget(1.0)

	var last float64
	for i := 0; i < 20; i++ {
		last = s.Next()
	}
	if last != 1.0 {
		t.Errorf("linear smoother did not settle: got %v, want 1.0", last)
	}
	if s.IsSmoothing() {
		t.Error("IsSmoothing true after settling")
	}
}

func TestSmootherExponentialMonotonic(t *testing.T) {
	s := NewSmoother(ExponentialSmoothing, 0.99)
	s.SetTarget(1.0)

	prev := 0.0
	for i := 0; i < 500; i++ {
		v := s.Next()
		if v < prev {
			t.Fatalf("exponential smoother not monotonic at step %d: %v < %v", i, v, prev)
		}
		prev = v
	}
	if math.Abs(prev-1.0) > 0.01 {
		t.Errorf("exponential smoother did not converge: got %v, want ~1.0", prev)
	}
}

func TestSmootherMsSettlesWithinTimeConstant(t *testing.T) {
	const sampleRate = 48000.0
	const timeMs = 50.0
	s := NewSmootherMs(sampleRate, timeMs)
	s.SetTarget(1.0)

	settleSamples := int(sampleRate * timeMs / 1000.0 * 5)
	var v float64
	for i := 0; i < settleSamples; i++ {
		v = s.Next()
	}
	if math.Abs(v-1.0) > 0.01 {
		t.Errorf("did not settle within 5 time constants: got %v", v)
	}
}

func TestSmootherResetSnapsImmediately(t *testing.T) {
	s := NewSmoother(LinearSmoothing, 100)
	s.SetTarget(1.0)
	s.Next()
	s.Reset(0.5)

	if s.IsSmoothing() {
		t.Error("Reset should clear IsSmoothing")
	}
	if got := s.Next(); got != 0.5 {
		t.Errorf("Reset value: got %v, want 0.5", got)
	}
}

func TestSmootherIgnoresSubThresholdTarget(t *testing.T) {
	s := NewSmoother(LinearSmoothing, 100)
	s.Reset(0.5)
	s.SetTarget(0.5 + 0.00001)
	if s.IsSmoothing() {
		t.Error("sub-threshold target change should not start smoothing")
	}
}
