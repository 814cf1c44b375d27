package reverb

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/aplitt/fdnreverb/pkg/dsp"
	"github.com/aplitt/fdnreverb/pkg/dsp/chain"
	"github.com/aplitt/fdnreverb/pkg/dsp/delay"
	"github.com/aplitt/fdnreverb/pkg/dsp/filter"
	"github.com/aplitt/fdnreverb/pkg/param"
	"github.com/aplitt/fdnreverb/pkg/telemetry"
)

// cpuLoadAlpha weights how quickly CPULoad()'s EWMA tracks a new block's
// measured processing time; lower is smoother, higher tracks spikes faster.
const cpuLoadAlpha = 0.2

// safetyClipLimit bounds wet output magnitude as a last line of defense
// against a pathological parameter combination driving the feedback path
// past the calibrated stability cap.
const safetyClipLimit = 4.0

// Engine is the FDN reverb's block-processing entry point. Exactly one
// call to ProcessStereo/ProcessMono is ever in flight; any number of other
// goroutines may call the Parameters setters concurrently. ProcessStereo
// and ProcessMono allocate nothing after New succeeds.
type Engine struct {
	config EngineConfig
	params *Parameters
	log    *telemetry.Logger

	// shared FDN core
	lines          []*delay.Line
	lineDelays     []float64
	damping        []*filter.DampingFilter
	matrix         *FeedbackMatrix
	leftPanGain    []float32
	rightPanGain   []float32

	// per-channel front ends (pre-delay + early reflections + diffusion)
	frontL *frontEnd
	frontR *frontEnd

	crossFeed *CrossFeed
	post      *chain.StereoChain
	spread    *StereoSpread
	tone      *filter.ToneFilter

	roomGuard RoomSizeGuard

	// per-block coefficient cache, compared against the live Parameters
	// snapshot at the top of each block to decide whether recomputation
	// is needed
	lastDecayS    float64
	lastRoomSize  float64
	lastHFDamping float64
	lastLFDamping float64
	lastDensity   float64
	lastPreDelayS float64
	lastHiCutHz      float64
	lastLoCutHz      float64
	lastHiCutEnabled bool
	lastLoCutEnabled bool

	wetDrySmoother    *param.Smoother
	crossFeedSmoother *param.Smoother
	widthSmoother     *param.Smoother

	cpuLoadEWMA uint64 // float64 bit pattern, accessed via sync/atomic

	// scratch buffers, sized once at construction - never grown
	delayOut   []float32
	matOut     []float32
	damped     []float32
	wetLScratch []float32
	wetRScratch []float32
}

// New allocates and initializes an Engine in a single pass.
func New(cfg EngineConfig) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	n := cfg.NumDelayLines
	e := &Engine{
		config:       cfg,
		params:       NewParameters(),
		log:          telemetry.New("engine"),
		lines:        make([]*delay.Line, n),
		lineDelays:   make([]float64, n),
		damping:      make([]*filter.DampingFilter, n),
		matrix:       NewFeedbackMatrix(n),
		leftPanGain:  make([]float32, n),
		rightPanGain: make([]float32, n),
		frontL:       newFrontEnd(cfg.SampleRateHz),
		frontR:       newFrontEnd(cfg.SampleRateHz),
		crossFeed:    NewCrossFeed(cfg.SampleRateHz, 50),
		spread:       NewStereoSpread(),
		tone:         filter.NewToneFilter(cfg.SampleRateHz),
		delayOut:     make([]float32, n),
		matOut:       make([]float32, n),
		damped:       make([]float32, n),
		wetLScratch:  make([]float32, cfg.MaxBlockSize),
		wetRScratch:  make([]float32, cfg.MaxBlockSize),
	}

	maxLineSeconds := 16384.0 / cfg.SampleRateHz
	for i := 0; i < n; i++ {
		e.lines[i] = delay.New(maxLineSeconds, cfg.SampleRateHz)
		e.damping[i] = filter.NewDampingFilter()
		if i%2 == 0 {
			e.leftPanGain[i], e.rightPanGain[i] = 0.7, 0.3
		} else {
			e.leftPanGain[i], e.rightPanGain[i] = 0.3, 0.7
		}
	}

	chainBuilder := chain.NewBuilder("post-fdn")
	post, err := chainBuilder.WithProcessor(e.tone).Build()
	if err != nil {
		return nil, err
	}
	e.post = post

	e.wetDrySmoother = param.NewSmootherMs(cfg.SampleRateHz, 50)
	e.crossFeedSmoother = param.NewSmootherMs(cfg.SampleRateHz, 50)
	e.widthSmoother = param.NewSmootherMs(cfg.SampleRateHz, 100)

	e.params.ApplyPreset(PresetStudio)
	e.applyCoefficients(true)

	e.log.Infof("engine created: sample_rate=%v lines=%d max_block=%d", cfg.SampleRateHz, n, cfg.MaxBlockSize)
	return e, nil
}

// SetParameter looks up a parameter by name and sets its value. It is safe
// to call concurrently with ProcessStereo/ProcessMono.
func (e *Engine) SetParameter(name string, value float64) bool {
	for _, p := range e.allParameters() {
		if p.Name == name {
			p.SetValue(value)
			return true
		}
	}
	return false
}

func (e *Engine) allParameters() []*param.Parameter {
	p := e.params
	return []*param.Parameter{
		p.WetDryMixPct, p.DecayTimeS, p.PreDelayS, p.RoomSize, p.Density,
		p.HFDamping, p.LFDamping, p.CrossFeedAmount, p.CrossDelayMs,
		p.CrossFeedWidth, p.StereoSpread, p.HiCutHz, p.LoCutHz,
	}
}

// ApplyPreset bulk-applies a named preset.
func (e *Engine) ApplyPreset(preset Preset) {
	e.params.ApplyPreset(preset)
	e.log.Debugf("preset applied: %s", preset)
}

// Parameters exposes the live parameter store for direct reads (e.g. by a
// UI binding); setters remain the only mutation path.
func (e *Engine) Parameters() *Parameters {
	return e.params
}

// Reset clears all filter/delay/matrix state; parameters are preserved.
func (e *Engine) Reset() {
	for i, l := range e.lines {
		l.Reset()
		e.damping[i].Reset()
	}
	e.frontL.reset()
	e.frontR.reset()
	e.crossFeed.Reset()
	e.post.Reset()

	dsp.Clear(e.delayOut)
	dsp.Clear(e.matOut)
	dsp.Clear(e.damped)
	dsp.Clear(e.wetLScratch)
	dsp.Clear(e.wetRScratch)
}

// CPULoad returns an EWMA of processing_time/block_duration*100, updated
// inside ProcessStereo/ProcessMono. Safe to call from any goroutine.
func (e *Engine) CPULoad() float32 {
	return float32(math.Float64frombits(atomic.LoadUint64(&e.cpuLoadEWMA)))
}

// updateCPULoad folds one block's measured wall-clock processing time into
// the CPU load EWMA. blockSize is in samples.
func (e *Engine) updateCPULoad(start time.Time, blockSize int) {
	elapsed := time.Since(start)
	blockDuration := time.Duration(float64(blockSize) / e.config.SampleRateHz * float64(time.Second))
	if blockDuration <= 0 {
		return
	}
	instant := float64(elapsed) / float64(blockDuration) * 100.0
	prev := math.Float64frombits(atomic.LoadUint64(&e.cpuLoadEWMA))
	next := prev + cpuLoadAlpha*(instant-prev)
	atomic.StoreUint64(&e.cpuLoadEWMA, math.Float64bits(next))
}

// CurrentDelays returns the current FDN line lengths in samples, for
// introspection from the processing thread only.
func (e *Engine) CurrentDelays() []int {
	out := make([]int, len(e.lineDelays))
	for i, d := range e.lineDelays {
		out[i] = int(d)
	}
	return out
}

// ProcessStereo processes one block of stereo audio. out{L,R} receive the
// wet signal only; dry mixing is the host's responsibility.
func (e *Engine) ProcessStereo(inL, inR, outL, outR []float32) error {
	n := len(inL)
	if n == 0 {
		return nil
	}
	if n > e.config.MaxBlockSize {
		return ErrBlockTooLarge
	}
	if len(inR) != n || len(outL) != n || len(outR) != n {
		return ErrBufferMismatch
	}

	start := time.Now()
	defer e.updateCPULoad(start, n)

	e.blockStart()

	wetDryTarget := e.params.WetDryMixPct.GetValue() / 100.0
	e.wetDrySmoother.SetTarget(wetDryTarget)
	e.crossFeedSmoother.SetTarget(e.params.CrossFeedAmount.GetValue())
	e.widthSmoother.SetTarget(e.params.StereoSpread.GetValue())
	compensate := e.spread.compensateGain

	for i := 0; i < n; i++ {
		l := sanitize(inL[i])
		r := sanitize(inR[i])

		e.crossFeed.SetAmount(float32(e.crossFeedSmoother.Next()))

		mixedL, mixedR := e.crossFeed.Process(l, r)

		dL := e.frontL.process(mixedL)
		dR := e.frontR.process(mixedR)
		d := 0.5 * (dL + dR)

		e.fdnStep(d)

		var wL, wR float32
		for j := range e.damped {
			wL += e.damped[j] * e.leftPanGain[j]
			wR += e.damped[j] * e.rightPanGain[j]
		}
		wL *= 0.3
		wR *= 0.3

		width := float32(e.widthSmoother.Next())
		midGain := float32(1)
		if compensate && width > 1 {
			midGain = max32(0.7, 1-0.15*(width-1))
		}
		mid := (wL + wR) / 2 * midGain
		side := (wL - wR) * width / 2
		e.wetLScratch[i] = mid + side
		e.wetRScratch[i] = mid - side
	}

	e.post.ProcessStereo(e.wetLScratch[:n], e.wetRScratch[:n])

	for i := 0; i < n; i++ {
		wetGain := e.wetDrySmoother.Next()
		outL[i] = e.wetLScratch[i] * float32(wetGain)
		outR[i] = e.wetRScratch[i] * float32(wetGain)
	}
	dsp.Clip(outL[:n], safetyClipLimit)
	dsp.Clip(outR[:n], safetyClipLimit)

	if e.params.Bypassed() {
		for i := 0; i < n; i++ {
			outL[i] = 0
			outR[i] = 0
		}
	}

	return nil
}

// ProcessMono processes one block of mono audio; out receives the wet
// mono tail only.
func (e *Engine) ProcessMono(in, out []float32) error {
	n := len(in)
	if n == 0 {
		return nil
	}
	if n > e.config.MaxBlockSize {
		return ErrBlockTooLarge
	}
	if len(out) != n {
		return ErrBufferMismatch
	}

	start := time.Now()
	defer e.updateCPULoad(start, n)

	e.blockStart()

	wetDryTarget := e.params.WetDryMixPct.GetValue() / 100.0
	e.wetDrySmoother.SetTarget(wetDryTarget)

	for i := 0; i < n; i++ {
		x := sanitize(in[i])
		d := e.frontL.process(x)
		e.fdnStep(d)

		var mono float32
		for _, v := range e.damped {
			mono += v
		}
		wetGain := e.wetDrySmoother.Next()
		out[i] = 0.3 * mono * float32(wetGain)
	}
	dsp.Clip(out[:n], safetyClipLimit)

	if e.params.Bypassed() {
		for i := range out {
			out[i] = 0
		}
	}

	return nil
}

// fdnStep runs one sample through the shared FDN core: read all lines,
// apply the feedback matrix, damp, then write back (§4.7 steps 4-7). d is
// the diffused input for this sample, scaled by 0.3 before it rejoins the
// feedback path.
func (e *Engine) fdnStep(d float32) {
	for i, line := range e.lines {
		e.delayOut[i] = line.Read(e.lineDelays[i])
	}
	e.matrix.Multiply(e.delayOut, e.matOut)
	for i, line := range e.lines {
		damped := e.damping[i].Process(e.matOut[i])
		e.damped[i] = damped
		line.Write(d*0.3 + damped + denormalOffset)
	}
}

// blockStart applies the room-size flush rule and recomputes any
// coefficients whose controlling parameters changed since the last block.
func (e *Engine) blockStart() {
	roomSize := e.params.RoomSize.GetValue()
	if e.roomGuard.Check(roomSize) {
		e.Reset()
	}
	e.applyCoefficients(false)
}

// applyCoefficients recomputes matrix scale, line lengths, damping filters
// and tone filter whenever their controlling parameters have changed since
// the last call. force bypasses the comparison, used at construction.
func (e *Engine) applyCoefficients(force bool) {
	p := e.params
	decayS := p.DecayTimeS.GetValue()
	roomSize := p.RoomSize.GetValue()
	hfDamping := p.HFDamping.GetValue()
	lfDamping := p.LFDamping.GetValue()
	density := p.Density.GetValue()
	preDelayS := p.PreDelayS.GetValue()
	hiCutHz := p.HiCutHz.GetValue()
	loCutHz := p.LoCutHz.GetValue()
	hiCutEnabled := p.HiCutEnabled()
	loCutEnabled := p.LoCutEnabled()

	lineChanged := force || roomSize != e.lastRoomSize
	frontChanged := lineChanged || density != e.lastDensity
	decayChanged := force || lineChanged || decayS != e.lastDecayS ||
		hfDamping != e.lastHFDamping || lfDamping != e.lastLFDamping

	if lineChanged {
		e.recomputeLineLengths(roomSize)
	}
	if frontChanged {
		e.frontL.configure(e.config.SampleRateHz, roomSize, density)
		e.frontR.configure(e.config.SampleRateHz, roomSize, density)
	}
	if force || preDelayS != e.lastPreDelayS {
		e.frontL.setPreDelay(preDelayS, e.config.SampleRateHz)
		e.frontR.setPreDelay(preDelayS, e.config.SampleRateHz)
	}
	if decayChanged {
		e.recomputeDamping(hfDamping, lfDamping)
		avg := e.averageLineLength()
		gain := calibrateGain(decayS, roomSize, avg, e.config.SampleRateHz, hfDamping, lfDamping)
		e.matrix.ScaleTo(gain)
	}
	if force || hiCutHz != e.lastHiCutHz || hiCutEnabled != e.lastHiCutEnabled {
		e.tone.SetHiCut(hiCutHz, hiCutEnabled)
	}
	if force || loCutHz != e.lastLoCutHz || loCutEnabled != e.lastLoCutEnabled {
		e.tone.SetLoCut(loCutHz, loCutEnabled)
	}

	e.crossFeed.SetCrossDelayMs(p.CrossDelayMs.GetValue())
	e.crossFeed.SetWidth(float32(p.CrossFeedWidth.GetValue()))

	e.lastDecayS = decayS
	e.lastRoomSize = roomSize
	e.lastHFDamping = hfDamping
	e.lastLFDamping = lfDamping
	e.lastDensity = density
	e.lastPreDelayS = preDelayS
	e.lastHiCutHz = hiCutHz
	e.lastLoCutHz = loCutHz
	e.lastHiCutEnabled = hiCutEnabled
	e.lastLoCutEnabled = loCutEnabled
}

func (e *Engine) recomputeLineLengths(roomSize float64) {
	scale := e.config.SampleRateHz / 48000.0 * (0.5 + 1.5*roomSize)
	maxDelay := float64(e.lines[0].Len())
	for i := range e.lines {
		prime := primeDelaySamples48k[i%len(primeDelaySamples48k)]
		variation := 0.0
		if i > 0 {
			variation = float64(i%3) - 1
		}
		d := clampF(prime*scale+variation, 200, maxDelay-1)
		e.lineDelays[i] = d
	}
}

func (e *Engine) recomputeDamping(hfDamping, lfDamping float64) {
	hfCutoff := filter.HFCutoffHz(hfDamping)
	lfCutoff := filter.LFCutoffHz(lfDamping)
	for _, d := range e.damping {
		d.SetHF(e.config.SampleRateHz, hfCutoff, hfDamping)
		d.SetLF(e.config.SampleRateHz, lfCutoff, lfDamping)
	}
}

func (e *Engine) averageLineLength() float64 {
	var sum float64
	for _, d := range e.lineDelays {
		sum += d
	}
	return sum / float64(len(e.lineDelays))
}

// sanitize clamps non-finite input samples to ±1 before they ever reach
// the processing graph.
func sanitize(x float32) float32 {
	if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
		if x < 0 {
			return -1
		}
		return 1
	}
	return x
}
