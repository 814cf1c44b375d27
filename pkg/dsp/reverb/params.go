package reverb

import (
	"fmt"
	"sync/atomic"

	"github.com/aplitt/fdnreverb/pkg/param"
)

// EngineConfig is immutable after construction. Engine has no call that
// replaces its config; a different config needs a new Engine from New.
type EngineConfig struct {
	SampleRateHz   float64
	NumDelayLines  int
	MaxBlockSize   int
	MaxPreDelayS   float64
}

// DefaultEngineConfig returns a config with the spec's default line count
// and a generous pre-delay ceiling.
func DefaultEngineConfig(sampleRateHz float64, maxBlockSize int) EngineConfig {
	return EngineConfig{
		SampleRateHz:  sampleRateHz,
		NumDelayLines: 8,
		MaxBlockSize:  maxBlockSize,
		MaxPreDelayS:  0.2,
	}
}

func (c EngineConfig) validate() error {
	if c.SampleRateHz < 44100 || c.SampleRateHz > 96000 {
		return fmt.Errorf("%w: sample_rate_hz=%v not in [44100, 96000]", ErrConfigInvalid, c.SampleRateHz)
	}
	if c.NumDelayLines < 4 || c.NumDelayLines > 12 {
		return fmt.Errorf("%w: num_delay_lines=%d not in [4, 12]", ErrConfigInvalid, c.NumDelayLines)
	}
	if c.MaxBlockSize < 64 {
		return fmt.Errorf("%w: max_block_size=%d must be >= 64", ErrConfigInvalid, c.MaxBlockSize)
	}
	return nil
}

// Preset names a fixed parameter bundle, or Custom for freely configured parameters.
type Preset int

const (
	PresetClean Preset = iota
	PresetVocalBooth
	PresetStudio
	PresetCathedral
	PresetCustom
)

func (p Preset) String() string {
	switch p {
	case PresetClean:
		return "Clean"
	case PresetVocalBooth:
		return "VocalBooth"
	case PresetStudio:
		return "Studio"
	case PresetCathedral:
		return "Cathedral"
	default:
		return "Custom"
	}
}

// presetValues is the fixed constant bundle applied by ApplyPreset.
type presetValues struct {
	wetDryPct   float64
	decayS      float64
	preDelayS   float64
	crossFeed   float64
	roomSize    float64
	density     float64
	hfDamping   float64
	lfDamping   float64
}

var presetTable = map[Preset]presetValues{
	PresetClean:      {wetDryPct: 0},
	PresetVocalBooth: {wetDryPct: 18, decayS: 0.9, preDelayS: 0.008, crossFeed: 0.2, roomSize: 0.3, density: 0.7, hfDamping: 0.4, lfDamping: 0.1},
	PresetStudio:     {wetDryPct: 40, decayS: 1.7, preDelayS: 0.015, crossFeed: 0.4, roomSize: 0.5, density: 0.7, hfDamping: 0.4, lfDamping: 0.1},
	PresetCathedral:  {wetDryPct: 65, decayS: 2.8, preDelayS: 0.025, crossFeed: 0.6, roomSize: 0.85, density: 0.8, hfDamping: 0.2, lfDamping: 0.0},
}

// primeDelaySamples48k are the FDN's prime delay lengths at 48kHz, scaled
// per-engine by sample rate and room size.
var primeDelaySamples48k = []float64{
	1447, 1549, 1693, 1789, 1907, 2063, 2179, 2311, 2467, 2633,
	2801, 2969, 3137, 3307, 3491, 3677, 3863, 4051, 4241, 4801,
}

// earlyReflectionDelays48k and their all-pass gains (0.75 - 0.05*i).
var earlyReflectionDelays48k = []float64{241, 317, 431, 563, 701, 857, 997, 1151}

// diffusionPrimes and their base all-pass gains (0.7 - 0.03*i), further
// scaled by a density-derived ceiling.
var diffusionPrimes = []float64{89, 109, 127, 149, 167, 191, 211, 233}

// Parameters is the engine's lock-free, shared parameter store: any number
// of control threads may call the setters; the processing thread reads a
// snapshot at each block boundary.
type Parameters struct {
	WetDryMixPct   *param.Parameter
	DecayTimeS     *param.Parameter
	PreDelayS      *param.Parameter
	RoomSize       *param.Parameter
	Density        *param.Parameter
	HFDamping      *param.Parameter
	LFDamping      *param.Parameter
	CrossFeedAmount *param.Parameter
	CrossDelayMs   *param.Parameter
	CrossFeedWidth *param.Parameter
	StereoSpread   *param.Parameter
	HiCutHz        *param.Parameter
	LoCutHz        *param.Parameter

	preset atomic.Int32
	bypass atomic.Bool

	hiCutEnabled atomic.Bool
	loCutEnabled atomic.Bool
}

// NewParameters builds a parameter set at Studio defaults.
func NewParameters() *Parameters {
	p := &Parameters{
		WetDryMixPct:    param.NewParameter("wet_dry_mix_pct", 0, 100, 40),
		DecayTimeS:      param.NewParameter("decay_time_s", 0.1, 8.0, 1.7),
		PreDelayS:       param.NewParameter("pre_delay_s", 0, 0.2, 0.015),
		RoomSize:        param.NewParameter("room_size", 0, 1, 0.5),
		Density:         param.NewParameter("density", 0, 1, 0.7),
		HFDamping:       param.NewParameter("hf_damping", 0, 1, 0.4),
		LFDamping:       param.NewParameter("lf_damping", 0, 1, 0.1),
		CrossFeedAmount: param.NewParameter("cross_feed.amount", 0, 1, 0.4),
		CrossDelayMs:    param.NewParameter("cross_feed.cross_delay_ms", 0, 50, 15),
		CrossFeedWidth:  param.NewParameter("cross_feed.width", 0, 2, 1),
		StereoSpread:    param.NewParameter("stereo_spread.width", 0, 2, 1),
		HiCutHz:         param.NewParameter("hi_cut_hz", 1000, 20000, 10000),
		LoCutHz:         param.NewParameter("lo_cut_hz", 20, 1000, 100),
	}
	p.hiCutEnabled.Store(true)
	p.loCutEnabled.Store(true)
	return p
}

// SetHiCutEnabled bypasses (false) or re-enables (true) the tone filter's
// high-cut stage; hi_cut_hz is retained and reapplied on re-enable.
func (p *Parameters) SetHiCutEnabled(enabled bool) {
	p.hiCutEnabled.Store(enabled)
}

// HiCutEnabled reports whether the high-cut stage is active.
func (p *Parameters) HiCutEnabled() bool {
	return p.hiCutEnabled.Load()
}

// SetLoCutEnabled bypasses (false) or re-enables (true) the tone filter's
// low-cut stage; lo_cut_hz is retained and reapplied on re-enable.
func (p *Parameters) SetLoCutEnabled(enabled bool) {
	p.loCutEnabled.Store(enabled)
}

// LoCutEnabled reports whether the low-cut stage is active.
func (p *Parameters) LoCutEnabled() bool {
	return p.loCutEnabled.Load()
}

// ApplyPreset bulk-applies a named preset's fixed constants. Custom leaves
// every parameter at its current value.
func (p *Parameters) ApplyPreset(preset Preset) {
	p.preset.Store(int32(preset))
	if preset == PresetCustom {
		return
	}
	v := presetTable[preset]
	p.WetDryMixPct.SetValue(v.wetDryPct)
	if preset == PresetClean {
		return
	}
	p.DecayTimeS.SetValue(v.decayS)
	p.PreDelayS.SetValue(v.preDelayS)
	p.CrossFeedAmount.SetValue(v.crossFeed)
	p.RoomSize.SetValue(v.roomSize)
	p.Density.SetValue(v.density)
	p.HFDamping.SetValue(v.hfDamping)
	p.LFDamping.SetValue(v.lfDamping)
}

// CurrentPreset returns the last preset applied via ApplyPreset.
func (p *Parameters) CurrentPreset() Preset {
	return Preset(p.preset.Load())
}

// SetBypass enables/disables the engine; while bypassed, process_* still
// runs (so state keeps decaying naturally) but produces silence.
func (p *Parameters) SetBypass(bypass bool) {
	p.bypass.Store(bypass)
}

// Bypassed reports the current bypass state.
func (p *Parameters) Bypassed() bool {
	return p.bypass.Load()
}

// RoomSizeGuard detects a room-size jump large enough to require a full
// state flush, per §4.12: delay lengths changing substantially mid-stream
// otherwise produce audible noise bursts.
type RoomSizeGuard struct {
	lastRoomSize float64
	initialized  bool
}

// Check compares roomSize against the last seen value and reports whether
// a flush is needed, updating its own bookkeeping either way.
func (g *RoomSizeGuard) Check(roomSize float64) (needsFlush bool) {
	if !g.initialized {
		g.lastRoomSize = roomSize
		g.initialized = true
		return false
	}
	delta := roomSize - g.lastRoomSize
	if delta < 0 {
		delta = -delta
	}
	g.lastRoomSize = roomSize
	return delta > 0.1
}
