package reverb

import "github.com/aplitt/fdnreverb/pkg/dsp/delay"

// frontEnd is one channel's pre-delay + early-reflection + diffusion
// chain: the part of the signal path that exists once per input channel,
// feeding into the FDN core that both channels share.
type frontEnd struct {
	preDelay *delay.Line
	early    []*AllPassFilter
	diffuse  []*AllPassFilter

	preDelaySamples float64
	earlyGains      []float32
	diffuseGains    []float32
}

func newFrontEnd(sampleRate float64) *frontEnd {
	fe := &frontEnd{
		preDelay: delay.New(0.2, sampleRate),
		early:    make([]*AllPassFilter, len(earlyReflectionDelays48k)),
		diffuse:  make([]*AllPassFilter, len(diffusionPrimes)),
	}
	for i := range fe.early {
		fe.early[i] = NewAllPassFilter(0.1, sampleRate, 0)
	}
	for i := range fe.diffuse {
		fe.diffuse[i] = NewAllPassFilter(0.02, sampleRate, 0)
	}
	return fe
}

// configure recomputes delay lengths and gains for the current sample rate,
// room size and density. Called from the processing thread at block start,
// never mid-block.
func (fe *frontEnd) configure(sampleRate, roomSize, density float64) {
	scale := sampleRate / 48000.0

	earlyScale := scale * (0.3 + 0.7*roomSize)
	for i, prime := range earlyReflectionDelays48k {
		d := clampF(prime*earlyScale, 10, 2400)
		fe.early[i].SetDelay(d)
		fe.early[i].SetGain(float32(0.75 - 0.05*float64(i)))
	}

	ceiling := float32(0.5 + 0.3*density)
	for i, prime := range diffusionPrimes {
		d := prime * scale
		fe.diffuse[i].SetDelay(d)
		gain := float32(0.7 - 0.03*float64(i))
		if gain > ceiling {
			gain = ceiling
		}
		fe.diffuse[i].SetGain(gain)
	}
}

func (fe *frontEnd) setPreDelay(preDelaySeconds, sampleRate float64) {
	fe.preDelaySamples = preDelaySeconds * sampleRate
}

// process runs x through pre-delay, the early-reflection stack, and the
// diffusion stack in order, returning the diffused signal "d" of §4.7.
func (fe *frontEnd) process(x float32) float32 {
	p := fe.preDelay.Process(x, fe.preDelaySamples)
	e := p
	for _, ap := range fe.early {
		e = ap.Process(e)
	}
	d := e
	for _, ap := range fe.diffuse {
		d = ap.Process(d)
	}
	return d
}

// reset clears all delay/filter state in the chain.
func (fe *frontEnd) reset() {
	fe.preDelay.Reset()
	for _, ap := range fe.early {
		ap.Reset()
	}
	for _, ap := range fe.diffuse {
		ap.Reset()
	}
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
