package filter

import "math"

// sqrtHalf is Q for a Butterworth 2nd-order section (Q = 1/√2).
const sqrtHalf = math.Sqrt2 / 2

// DampingFilter cascades an HF lowpass and an LF highpass, each with its
// passband gain pulled down in proportion to a damping percentage, to
// model a delay line's per-reflection frequency loss.
type DampingFilter struct {
	lowpass  *Biquad
	highpass *Biquad
}

// NewDampingFilter creates a single-channel damping cascade.
func NewDampingFilter() *DampingFilter {
	return &DampingFilter{
		lowpass:  NewBiquad(1),
		highpass: NewBiquad(1),
	}
}

// SetHF configures the HF-damping lowpass: cutoffHz in Hz, hfDamping in
// [0,1]. At hfDamping=0 the stage is identity (b0=1, everything else 0).
func (d *DampingFilter) SetHF(sampleRate, cutoffHz, hfDamping float64) {
	if hfDamping <= 0 {
		d.lowpass.SetCoefficients(1, 0, 0, 1, 0, 0)
		return
	}
	d.lowpass.SetLowpass(sampleRate, cutoffHz, sqrtHalf)
	d.lowpass.ScaleNumerator(float32(1 - 0.8*hfDamping))
}

// SetLF configures the LF-damping highpass: cutoffHz in Hz, lfDamping in
// [0,1]. At lfDamping=0 the stage is identity.
func (d *DampingFilter) SetLF(sampleRate, cutoffHz, lfDamping float64) {
	if lfDamping <= 0 {
		d.highpass.SetCoefficients(1, 0, 0, 1, 0, 0)
		return
	}
	d.highpass.SetHighpass(sampleRate, cutoffHz, sqrtHalf)
	d.highpass.ScaleNumerator(float32(1 - 0.6*lfDamping))
}

// Process runs one sample through lowpass then highpass, on channel 0.
func (d *DampingFilter) Process(x float32) float32 {
	return d.highpass.ProcessSample(d.lowpass.ProcessSample(x, 0), 0)
}

// Reset clears both stages' filter history.
func (d *DampingFilter) Reset() {
	d.lowpass.Reset()
	d.highpass.Reset()
}

// HFCutoffHz maps an HF damping control value (0..1) to the lowpass cutoff.
func HFCutoffHz(hfDamping float64) float64 {
	return 12000 - 11000*hfDamping
}

// LFCutoffHz maps an LF damping control value (0..1) to the highpass cutoff.
func LFCutoffHz(lfDamping float64) float64 {
	return 50 + 450*lfDamping
}
