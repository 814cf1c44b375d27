package param

import "math"

// SmoothingType selects the interpolation law a Smoother uses to travel
// from its current value to its target.
type SmoothingType int

const (
	// LinearSmoothing steps by a fixed amount each sample.
	LinearSmoothing SmoothingType = iota
	// ExponentialSmoothing is a one-pole filter toward the target.
	ExponentialSmoothing
	// LogarithmicSmoothing interpolates in log space, for frequency
	// parameters where equal steps should sound equally spaced.
	LogarithmicSmoothing
)

// Smoother ramps a value toward a target to avoid zipper noise when a
// control-thread parameter write lands mid-block.
type Smoother struct {
	smoothingType SmoothingType
	current       float64
	target        float64
	rate          float64
	threshold     float64
	isSmoothing   bool

	step float64

	logCurrent float64
	logTarget  float64
	logStep    float64
}

// NewSmoother creates a smoother. rate is a sample count for
// LinearSmoothing/LogarithmicSmoothing, or a one-pole coefficient in (0,1)
// for ExponentialSmoothing.
func NewSmoother(smoothingType SmoothingType, rate float64) *Smoother {
	return &Smoother{
		smoothingType: smoothingType,
		rate:          rate,
		threshold:     0.0001,
	}
}

// NewSmootherMs creates an exponential smoother with a time constant
// expressed in milliseconds at the given sample rate, per the -60dB
// settling convention used for wet/dry and width ramps.
func NewSmootherMs(sampleRate, timeMs float64) *Smoother {
	rate := math.Exp(-6.908 / (sampleRate * timeMs / 1000.0))
	return NewSmoother(ExponentialSmoothing, rate)
}

// SetTarget sets the value the smoother ramps toward.
func (s *Smoother) SetTarget(target float64) {
	if math.Abs(target-s.target) < s.threshold {
		return
	}

	s.target = target
	s.isSmoothing = true

	switch s.smoothingType {
	case LinearSmoothing:
		if s.rate > 0 {
			s.step = (target - s.current) / s.rate
		}

	case LogarithmicSmoothing:
		const minVal = 0.001
		currentVal := math.Max(s.current, minVal)
		targetVal := math.Max(target, minVal)

		s.logCurrent = math.Log(currentVal)
		s.logTarget = math.Log(targetVal)

		if s.rate > 0 {
			s.logStep = (s.logTarget - s.logCurrent) / s.rate
		}
	}
}

// Next advances the smoother by one sample and returns the new value.
func (s *Smoother) Next() float64 {
	if !s.isSmoothing {
		return s.current
	}

	switch s.smoothingType {
	case ExponentialSmoothing:
		s.current += (s.target - s.current) * (1.0 - s.rate)
		if math.Abs(s.current-s.target) < s.threshold {
			s.current = s.target
			s.isSmoothing = false
		}

	case LinearSmoothing:
		s.current += s.step
		if (s.step > 0 && s.current >= s.target) || (s.step < 0 && s.current <= s.target) {
			s.current = s.target
			s.isSmoothing = false
		}

	case LogarithmicSmoothing:
		s.logCurrent += s.logStep
		if (s.logStep > 0 && s.logCurrent >= s.logTarget) || (s.logStep < 0 && s.logCurrent <= s.logTarget) {
			s.current = s.target
			s.isSmoothing = false
		} else {
			s.current = math.Exp(s.logCurrent)
		}
	}

	return s.current
}

// IsSmoothing reports whether the target has not yet been reached.
func (s *Smoother) IsSmoothing() bool {
	return s.isSmoothing
}

// Reset snaps the smoother to value with no transition in progress.
func (s *Smoother) Reset(value float64) {
	s.current = value
	s.target = value
	s.isSmoothing = false
}
