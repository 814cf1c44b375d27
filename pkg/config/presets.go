// Package config loads custom preset banks for the reverb engine from YAML
// files. Loading happens once at process start, on the control thread; the
// processing thread never touches this package.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aplitt/fdnreverb/pkg/telemetry"
)

var log = telemetry.New("config")

// PresetEntry mirrors the engine's Parameters field set for one named,
// user-supplied preset.
type PresetEntry struct {
	Name           string  `yaml:"name"`
	WetDryMixPct   float64 `yaml:"wet_dry_mix_pct"`
	DecayTimeS     float64 `yaml:"decay_time_s"`
	PreDelayS      float64 `yaml:"pre_delay_s"`
	RoomSize       float64 `yaml:"room_size"`
	Density        float64 `yaml:"density"`
	HFDamping      float64 `yaml:"hf_damping"`
	LFDamping      float64 `yaml:"lf_damping"`
	CrossFeedAmount float64 `yaml:"cross_feed_amount"`
	CrossDelayMs   float64 `yaml:"cross_delay_ms"`
	CrossFeedWidth float64 `yaml:"cross_feed_width"`
	StereoSpread   float64 `yaml:"stereo_spread"`
	HiCutHz        float64 `yaml:"hi_cut_hz"`
	LoCutHz        float64 `yaml:"lo_cut_hz"`
}

// PresetBank is a named collection of custom presets, as loaded from a
// single YAML document.
type PresetBank struct {
	Presets []PresetEntry `yaml:"presets"`
}

// bound is a parameter's valid range, used to clamp a loaded bank entry the
// same way param.Parameter.SetValue clamps a live setter call.
type bound struct {
	min, max float64
}

var fieldBounds = map[string]bound{
	"wet_dry_mix_pct":   {0, 100},
	"decay_time_s":      {0.1, 8.0},
	"pre_delay_s":       {0, 0.2},
	"room_size":         {0, 1},
	"density":           {0, 1},
	"hf_damping":        {0, 1},
	"lf_damping":        {0, 1},
	"cross_feed_amount": {0, 1},
	"cross_delay_ms":    {0, 50},
	"cross_feed_width":  {0, 2},
	"stereo_spread":     {0, 2},
	"hi_cut_hz":         {1000, 20000},
	"lo_cut_hz":         {20, 1000},
}

// LoadPresetBank reads and validates a YAML preset bank from path. Fields
// outside their documented range are clamped in place, with a warning
// logged per clamped field; the loader never panics or rejects the file for
// out-of-range values.
func LoadPresetBank(path string) (PresetBank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PresetBank{}, fmt.Errorf("config: reading preset bank %q: %w", path, err)
	}

	var bank PresetBank
	if err := yaml.Unmarshal(data, &bank); err != nil {
		return PresetBank{}, fmt.Errorf("config: parsing preset bank %q: %w", path, err)
	}

	for i := range bank.Presets {
		clampEntry(&bank.Presets[i])
	}
	return bank, nil
}

func clampEntry(e *PresetEntry) {
	clampField(e.Name, "wet_dry_mix_pct", &e.WetDryMixPct)
	clampField(e.Name, "decay_time_s", &e.DecayTimeS)
	clampField(e.Name, "pre_delay_s", &e.PreDelayS)
	clampField(e.Name, "room_size", &e.RoomSize)
	clampField(e.Name, "density", &e.Density)
	clampField(e.Name, "hf_damping", &e.HFDamping)
	clampField(e.Name, "lf_damping", &e.LFDamping)
	clampField(e.Name, "cross_feed_amount", &e.CrossFeedAmount)
	clampField(e.Name, "cross_delay_ms", &e.CrossDelayMs)
	clampField(e.Name, "cross_feed_width", &e.CrossFeedWidth)
	clampField(e.Name, "stereo_spread", &e.StereoSpread)
	clampField(e.Name, "hi_cut_hz", &e.HiCutHz)
	clampField(e.Name, "lo_cut_hz", &e.LoCutHz)
}

func clampField(presetName, field string, v *float64) {
	b := fieldBounds[field]
	if *v < b.min {
		log.Warnf("preset %q: %s=%v below minimum %v, clamping", presetName, field, *v, b.min)
		*v = b.min
	} else if *v > b.max {
		log.Warnf("preset %q: %s=%v above maximum %v, clamping", presetName, field, *v, b.max)
		*v = b.max
	}
}
