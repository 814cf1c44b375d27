package reverb

import "math"

// maxRT60 bounds the usable decay time by room size: a small room cannot
// sustain an arbitrarily long tail without sounding unnatural, so the cap
// tightens as room_size grows.
func maxRT60(roomSize float64) float64 {
	switch {
	case roomSize <= 0.3:
		return 8.0
	case roomSize <= 0.7:
		// linear from 8.0 at 0.3 to 6.0 at 0.7
		t := (roomSize - 0.3) / (0.7 - 0.3)
		return 8.0 + t*(6.0-8.0)
	default:
		size := math.Min(roomSize, 1.0)
		t := (size - 0.7) / (1.0 - 0.7)
		return 6.0 + t*(3.0-6.0)
	}
}

// stabilityCap bounds the feedback matrix's gain so the FDN can never
// exceed unity-ish loop gain regardless of RT60/damping inputs.
func stabilityCap(roomSize float64) float64 {
	return math.Min(0.97, 0.98-0.03*roomSize)
}

// calibrateGain computes the matrix coupling gain that makes the FDN's
// energy decay match the requested RT60, given the current average delay
// line length and the HF/LF damping settings in effect.
func calibrateGain(decayTimeS, roomSize, avgDelaySamples, sampleRate, hfDamping, lfDamping float64) float32 {
	rt60Effective := math.Max(math.Min(decayTimeS, maxRT60(roomSize)), 0.05)
	deltaT := avgDelaySamples / sampleRate

	gTheory := math.Pow(10, -3*deltaT/rt60Effective)
	gFreq := gTheory * (1 - 0.25*hfDamping) * (1 - 0.15*lfDamping)
	cap := stabilityCap(roomSize)

	return float32(math.Min(gFreq, cap))
}
