// Package validate provides offline analysis of engine output: impulse
// capture, RT60 measurement, and buffer diagnostics. Nothing here runs on
// the processing thread; it is a control-thread/CLI collaborator only.
package validate

import (
	"math"

	"github.com/aplitt/fdnreverb/pkg/dsp"
)

// Diagnostics reports anomalies found in a rendered buffer.
type Diagnostics struct {
	Peak           float32
	RMS            float32
	DC             float32
	Clipping       bool
	ClippedSamples int
	Silent         bool
	HasNaN         bool
	NaNCount       int
}

const (
	clippingThreshold = 0.99
	silenceThreshold  = 0.0001
)

// Diagnose scans buffer for clipping, DC offset, silence and non-finite
// samples. A non-finite sample is counted but does not otherwise stop the
// scan, matching the engine's own sanitize-and-continue policy. Peak and
// RMS are computed by pkg/dsp over the finite samples only.
func Diagnose(buffer []float32) Diagnostics {
	var d Diagnostics
	if len(buffer) == 0 {
		return d
	}

	for _, sample := range buffer {
		if math.IsNaN(float64(sample)) || math.IsInf(float64(sample), 0) {
			d.HasNaN = true
			d.NaNCount++
		}
	}

	clean := buffer
	if d.HasNaN {
		clean = make([]float32, 0, len(buffer)-d.NaNCount)
		for _, sample := range buffer {
			if !math.IsNaN(float64(sample)) && !math.IsInf(float64(sample), 0) {
				clean = append(clean, sample)
			}
		}
	}
	if len(clean) == 0 {
		return d
	}

	d.Peak = dsp.Peak(clean)
	d.RMS = dsp.RMS(clean)

	var sum float64
	for _, sample := range clean {
		sum += float64(sample)
		abs := sample
		if abs < 0 {
			abs = -abs
		}
		if abs >= clippingThreshold {
			d.Clipping = true
			d.ClippedSamples++
		}
	}
	d.DC = float32(sum / float64(len(clean)))
	d.Silent = d.RMS < silenceThreshold
	return d
}
