package validate

import (
	"github.com/aplitt/fdnreverb/pkg/dsp/analysis"
	"github.com/aplitt/fdnreverb/pkg/dsp/reverb"
)

// meteredPeakHoldDB runs buf through an analysis.PeakMeter block by block,
// the way a live level meter would see it, and returns the held peak in dB.
func meteredPeakHoldDB(buf []float32, sampleRate float64) float64 {
	const chunkSize = 512
	pm := analysis.NewPeakMeter(sampleRate)
	chunk := make([]float64, 0, chunkSize)
	for start := 0; start < len(buf); start += chunkSize {
		end := start + chunkSize
		if end > len(buf) {
			end = len(buf)
		}
		chunk = chunk[:0]
		for _, s := range buf[start:end] {
			chunk = append(chunk, float64(s))
		}
		pm.Process(chunk)
	}
	return pm.GetHoldDB()
}

// rmsWindow is the sliding window size used by MeasureRT60's envelope
// follower, matching the engine's own internal block granularity.
const rmsWindow = 512

// GenerateImpulseResponse feeds a unit impulse followed by silence through
// engine's mono path and returns the resulting buffer. The engine itself
// allocates nothing; the output buffer is owned by the caller.
func GenerateImpulseResponse(engine *reverb.Engine, lengthSamples int) []float32 {
	in := make([]float32, lengthSamples)
	out := make([]float32, lengthSamples)
	if lengthSamples > 0 {
		in[0] = 1.0
	}

	const chunk = 512
	for start := 0; start < lengthSamples; start += chunk {
		end := start + chunk
		if end > lengthSamples {
			end = lengthSamples
		}
		_ = engine.ProcessMono(in[start:end], out[start:end])
	}
	return out
}

// MeasureRT60 estimates RT60 from an impulse response using a sliding-window
// RMS envelope, locating the peak and the -20dB/-60dB crossing times. When
// the tail never reaches -60dB within the buffer, it extrapolates from the
// -20dB crossing: 3*(t_-20dB - t_peak).
func MeasureRT60(ir []float32, sampleRate float64) float64 {
	if len(ir) < rmsWindow {
		return 0
	}

	meter := analysis.NewRMSMeter(rmsWindow)
	envelope := make([]float64, 0, len(ir)/rmsWindow+1)
	block := make([]float64, rmsWindow)

	for start := 0; start+rmsWindow <= len(ir); start += rmsWindow {
		for i := 0; i < rmsWindow; i++ {
			block[i] = float64(ir[start+i])
		}
		meter.Process(block)
		envelope = append(envelope, meter.GetRMSDB())
	}
	if len(envelope) == 0 {
		return 0
	}

	peakIdx := 0
	peakDB := envelope[0]
	for i, v := range envelope {
		if v > peakDB {
			peakDB = v
			peakIdx = i
		}
	}

	idx20, ok20 := findCrossing(envelope, peakIdx, peakDB-20)
	if !ok20 {
		return 0
	}
	samplesPerBlock := float64(rmsWindow)
	t20 := float64(idx20-peakIdx) * samplesPerBlock / sampleRate

	idx60, ok60 := findCrossing(envelope, peakIdx, peakDB-60)
	if ok60 {
		t60 := float64(idx60-peakIdx) * samplesPerBlock / sampleRate
		return t60
	}
	return 3 * t20
}

func findCrossing(envelope []float64, from int, thresholdDB float64) (int, bool) {
	for i := from; i < len(envelope); i++ {
		if envelope[i] <= thresholdDB {
			return i, true
		}
	}
	return 0, false
}

// SweepResult is one grid point of a StabilitySweep.
type SweepResult struct {
	RoomSize   float64
	DecayS     float64
	MaxAbs     float32
	PeakHoldDB float64
	HasNaN     bool
	Monotonic  bool
	Stable     bool
}

// StabilitySweep renders a short impulse response at each point of a
// roomSizeSteps x decaySteps grid and reports whether the output stayed
// within the ±2.0 bound and free of non-finite samples.
func StabilitySweep(cfg reverb.EngineConfig, roomSizeSteps, decaySteps int, lengthSamples int) ([]SweepResult, error) {
	results := make([]SweepResult, 0, roomSizeSteps*decaySteps)

	for ri := 0; ri < roomSizeSteps; ri++ {
		roomSize := float64(ri) / float64(roomSizeSteps-1)
		for di := 0; di < decaySteps; di++ {
			decayFrac := float64(di) / float64(decaySteps-1)
			decayS := 0.1 + decayFrac*(8.0-0.1)

			engine, err := reverb.New(cfg)
			if err != nil {
				return nil, err
			}
			engine.Parameters().RoomSize.SetValue(roomSize)
			engine.Parameters().DecayTimeS.SetValue(decayS)

			ir := GenerateImpulseResponse(engine, lengthSamples)
			diag := Diagnose(ir)
			monotonic := decaysAfterTransient(ir, cfg.SampleRateHz)

			results = append(results, SweepResult{
				RoomSize:   roomSize,
				DecayS:     decayS,
				MaxAbs:     diag.Peak,
				PeakHoldDB: meteredPeakHoldDB(ir, cfg.SampleRateHz),
				HasNaN:     diag.HasNaN,
				Monotonic:  monotonic,
				Stable:     !diag.HasNaN && diag.Peak <= 2.0 && monotonic,
			})
		}
	}
	return results, nil
}

// decaysAfterTransient builds a coarse RMS envelope of ir and reports
// whether energy decays monotonically (allowing brief rises no longer than
// two envelope blocks, to tolerate early-reflection buildup) once past the
// first transientBlocks blocks.
func decaysAfterTransient(ir []float32, sampleRate float64) bool {
	if len(ir) < rmsWindow*4 {
		return true
	}
	meter := analysis.NewRMSMeter(rmsWindow)
	envelope := make([]float64, 0, len(ir)/rmsWindow)
	block := make([]float64, rmsWindow)
	for start := 0; start+rmsWindow <= len(ir); start += rmsWindow {
		for i := 0; i < rmsWindow; i++ {
			block[i] = float64(ir[start+i])
		}
		meter.Process(block)
		envelope = append(envelope, meter.GetRMSDB())
	}

	const transientBlocks = 4
	peakIdx := transientBlocks
	peakDB := envelope[transientBlocks]
	for i := transientBlocks; i < len(envelope); i++ {
		if envelope[i] > peakDB {
			peakDB = envelope[i]
			peakIdx = i
		}
	}

	rising := 0
	for i := peakIdx + 1; i < len(envelope); i++ {
		if envelope[i] > envelope[i-1]+0.1 {
			rising++
			if rising > 2 {
				return false
			}
		} else {
			rising = 0
		}
	}
	return true
}
