package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/aplitt/fdnreverb/pkg/dsp"
	"github.com/aplitt/fdnreverb/pkg/dsp/mix"
	"github.com/aplitt/fdnreverb/pkg/dsp/reverb"
	"github.com/aplitt/fdnreverb/pkg/validate"
)

// RenderCmd renders one impulse response to a WAV file.
type RenderCmd struct {
	Preset     string   `help:"Preset name: clean, vocalbooth, studio, cathedral." default:"studio"`
	Output     string   `help:"Output WAV path." default:"ir.wav" type:"path"`
	DurationS  float64  `help:"Impulse response length in seconds." default:"6.0"`
	SampleRate float64  `help:"Sample rate in Hz." default:"48000"`
	RoomSize   *float64 `help:"Override room_size (0-1)."`
	DecayS     *float64 `help:"Override decay_time_s."`
	WetDryPct  *float64 `help:"Override wet_dry_mix_pct."`
	DryPreview bool     `help:"Mix the rendered wet tail with the dry impulse before writing, the way a host would."`
}

// Run renders the configured impulse response, writes it to Output, and
// prints the measured RT60 and diagnostics.
func (c *RenderCmd) Run() error {
	preset, err := parsePreset(c.Preset)
	if err != nil {
		return err
	}

	cfg := reverb.DefaultEngineConfig(c.SampleRate, 512)
	engine, err := reverb.New(cfg)
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}
	engine.ApplyPreset(preset)

	if c.RoomSize != nil {
		engine.Parameters().RoomSize.SetValue(*c.RoomSize)
	}
	if c.DecayS != nil {
		engine.Parameters().DecayTimeS.SetValue(*c.DecayS)
	}
	if c.WetDryPct != nil {
		engine.Parameters().WetDryMixPct.SetValue(*c.WetDryPct)
	}

	lengthSamples := int(c.DurationS * c.SampleRate)
	ir := validate.GenerateImpulseResponse(engine, lengthSamples)

	rt60 := validate.MeasureRT60(ir, c.SampleRate)
	diag := validate.Diagnose(ir)

	out := ir
	if c.DryPreview {
		dry := make([]float32, lengthSamples)
		if lengthSamples > 0 {
			dry[0] = 1.0
		}
		amount := float32(engine.Parameters().WetDryMixPct.GetValue() / 100.0)
		mix.DryWetBuffer(dry, ir, amount)
		out = dry
	}

	if err := writeWAV(c.Output, out, int(c.SampleRate)); err != nil {
		return fmt.Errorf("writing %q: %w", c.Output, err)
	}

	log.Infof("rendered %s (preset=%s): measured_rt60=%.3fs peak=%.3f rms=%.4f clipping=%v has_nan=%v",
		c.Output, preset, rt60, diag.Peak, diag.RMS, diag.Clipping, diag.HasNaN)
	return nil
}

// SweepCmd runs a room-size x decay-time stability grid and prints a
// pass/fail table.
type SweepCmd struct {
	RoomSteps  int     `help:"Number of room_size grid steps." default:"20"`
	DecaySteps int     `help:"Number of decay_time_s grid steps." default:"20"`
	SampleRate float64 `help:"Sample rate in Hz." default:"48000"`
	DurationS  float64 `help:"Impulse response length per grid point, in seconds." default:"2.0"`
}

// Run executes the sweep and prints results to stdout.
func (c *SweepCmd) Run() error {
	cfg := reverb.DefaultEngineConfig(c.SampleRate, 512)
	lengthSamples := int(c.DurationS * c.SampleRate)

	results, err := validate.StabilitySweep(cfg, c.RoomSteps, c.DecaySteps, lengthSamples)
	if err != nil {
		return fmt.Errorf("running sweep: %w", err)
	}

	failures := 0
	fmt.Printf("%-10s %-10s %-8s %-12s %-8s %-6s\n", "room_size", "decay_s", "peak", "peak_hold_db", "nan", "pass")
	for _, r := range results {
		if !r.Stable {
			failures++
		}
		fmt.Printf("%-10.3f %-10.3f %-8.3f %-12.2f %-8v %-6v\n", r.RoomSize, r.DecayS, r.MaxAbs, r.PeakHoldDB, r.HasNaN, r.Stable)
	}

	log.Infof("sweep complete: %d/%d points stable", len(results)-failures, len(results))
	if failures > 0 {
		return fmt.Errorf("%d of %d grid points failed the stability bound", failures, len(results))
	}
	return nil
}

func parsePreset(name string) (reverb.Preset, error) {
	switch strings.ToLower(name) {
	case "clean":
		return reverb.PresetClean, nil
	case "vocalbooth":
		return reverb.PresetVocalBooth, nil
	case "studio":
		return reverb.PresetStudio, nil
	case "cathedral":
		return reverb.PresetCathedral, nil
	default:
		return 0, fmt.Errorf("unknown preset %q (expected clean, vocalbooth, studio, cathedral)", name)
	}
}

func writeWAV(path string, samples []float32, sampleRate int) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := wav.NewEncoder(file, sampleRate, 16, 1, 1)

	dsp.Clip(samples, 1.0)
	ints := make([]int, len(samples))
	for i, s := range samples {
		ints[i] = int(s * 32767)
	}

	buf := &audio.IntBuffer{
		Format:         &audio.Format{SampleRate: sampleRate, NumChannels: 1},
		Data:           ints,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}
