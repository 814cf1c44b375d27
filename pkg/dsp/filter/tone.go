package filter

// ToneFilter applies a global high-cut (lowpass) and low-cut (highpass) to
// a stereo wet signal. Each stage is independently bypassable; coefficients
// are recomputed by the setters (cutoff, enable flag, sample rate), never
// per sample.
type ToneFilter struct {
	sampleRate float64

	hiCutHz float64
	loCutHz float64
	hiOn    bool
	loOn    bool

	lowpass  *Biquad // channel 0 = left, 1 = right
	highpass *Biquad
}

// NewToneFilter creates a stereo tone filter at the given sample rate.
func NewToneFilter(sampleRate float64) *ToneFilter {
	t := &ToneFilter{
		sampleRate: sampleRate,
		hiCutHz:    20000,
		loCutHz:    20,
		hiOn:       true,
		loOn:       true,
		lowpass:    NewBiquad(2),
		highpass:   NewBiquad(2),
	}
	t.recompute()
	return t
}

// SetHiCut sets the high-cut (lowpass) frequency in Hz and enables/disables it.
func (t *ToneFilter) SetHiCut(hz float64, enabled bool) {
	t.hiCutHz = hz
	t.hiOn = enabled
	t.recompute()
}

// SetLoCut sets the low-cut (highpass) frequency in Hz and enables/disables it.
func (t *ToneFilter) SetLoCut(hz float64, enabled bool) {
	t.loCutHz = hz
	t.loOn = enabled
	t.recompute()
}

// SetSampleRate updates the sample rate and recomputes coefficients.
func (t *ToneFilter) SetSampleRate(sampleRate float64) {
	t.sampleRate = sampleRate
	t.recompute()
}

func (t *ToneFilter) recompute() {
	if t.hiOn {
		t.lowpass.SetLowpass(t.sampleRate, t.hiCutHz, sqrtHalf)
	} else {
		t.lowpass.SetCoefficients(1, 0, 0, 1, 0, 0)
	}
	if t.loOn {
		t.highpass.SetHighpass(t.sampleRate, t.loCutHz, sqrtHalf)
	} else {
		t.highpass.SetCoefficients(1, 0, 0, 1, 0, 0)
	}
}

// ProcessStereo filters left/right in place, satisfying chain.StereoProcessor.
func (t *ToneFilter) ProcessStereo(left, right []float32) {
	t.lowpass.Process(left, 0)
	t.lowpass.Process(right, 1)
	t.highpass.Process(left, 0)
	t.highpass.Process(right, 1)
}

// Reset clears both channels' filter history.
func (t *ToneFilter) Reset() {
	t.lowpass.Reset()
	t.highpass.Reset()
}
