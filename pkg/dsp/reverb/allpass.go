// Package reverb implements a feedback delay network reverberator: early
// reflections, diffusion, an orthogonal-matrix FDN core with per-line
// damping, cross-feed, stereo spread and tone shaping.
package reverb

import "github.com/aplitt/fdnreverb/pkg/dsp/delay"

// AllPassFilter is a Schroeder all-pass diffuser: a flat-magnitude delay
// structure that scatters a transient into a denser signal without
// coloring its spectrum.
type AllPassFilter struct {
	line       *delay.Line
	delaySamp  float64
	gain       float32
	lastOutput float32
}

// NewAllPassFilter creates an all-pass filter with the given maximum delay
// capacity (seconds) at sampleRate, ready to be configured with SetDelay.
func NewAllPassFilter(maxDelaySeconds, sampleRate float64, gain float32) *AllPassFilter {
	return &AllPassFilter{
		line: delay.New(maxDelaySeconds, sampleRate),
		gain: gain,
	}
}

// SetDelay sets the filter's delay in samples.
func (a *AllPassFilter) SetDelay(delaySamples float64) {
	a.delaySamp = delaySamples
}

// SetGain sets the all-pass feedback coefficient, g ∈ (−1, 1).
func (a *AllPassFilter) SetGain(gain float32) {
	a.gain = gain
}

// Reset clears the filter's delay line and feedback history.
func (a *AllPassFilter) Reset() {
	a.line.Reset()
	a.lastOutput = 0
}

// Process runs one sample through the two-phase Schroeder contract:
// y[n] = -g*x[n] + x[n-d] + g*y[n-d], with the delay line's read and write
// advanced exactly once per call.
func (a *AllPassFilter) Process(x float32) float32 {
	dOld := a.line.Read(a.delaySamp)
	y := -a.gain*x + dOld
	feedback := x + a.gain*y
	a.line.Write(feedback + denormalOffset)
	a.lastOutput = y
	return y
}

// denormalOffset is added into feedback-path writes to keep recirculating
// signals from decaying into denormal range, where float arithmetic slows
// down by orders of magnitude on some FPUs.
const denormalOffset = float32(1e-25)
