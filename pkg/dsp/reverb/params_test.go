package reverb

import "testing"

func TestDefaultEngineConfigValidates(t *testing.T) {
	cfg := DefaultEngineConfig(48000, 512)
	if err := cfg.validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestEngineConfigRejectsOutOfRangeSampleRate(t *testing.T) {
	cfg := DefaultEngineConfig(8000, 512)
	if err := cfg.validate(); err == nil {
		t.Error("expected error for sample_rate_hz below range")
	}
}

func TestEngineConfigRejectsTooFewDelayLines(t *testing.T) {
	cfg := DefaultEngineConfig(48000, 512)
	cfg.NumDelayLines = 2
	if err := cfg.validate(); err == nil {
		t.Error("expected error for num_delay_lines below range")
	}
}

func TestApplyPresetCleanZerosWetDry(t *testing.T) {
	p := NewParameters()
	p.WetDryMixPct.SetValue(80)
	p.ApplyPreset(PresetClean)

	if got := p.WetDryMixPct.GetValue(); got != 0 {
		t.Errorf("Clean preset should zero wet_dry_mix_pct: got %v", got)
	}
}

func TestApplyPresetCathedralMatchesTable(t *testing.T) {
	p := NewParameters()
	p.ApplyPreset(PresetCathedral)

	v := presetTable[PresetCathedral]
	if p.DecayTimeS.GetValue() != v.decayS {
		t.Errorf("decay_time_s: got %v, want %v", p.DecayTimeS.GetValue(), v.decayS)
	}
	if p.RoomSize.GetValue() != v.roomSize {
		t.Errorf("room_size: got %v, want %v", p.RoomSize.GetValue(), v.roomSize)
	}
}

func TestApplyPresetCustomLeavesValuesUntouched(t *testing.T) {
	p := NewParameters()
	p.RoomSize.SetValue(0.9)
	p.ApplyPreset(PresetCustom)

	if got := p.RoomSize.GetValue(); got != 0.9 {
		t.Errorf("Custom preset should not alter existing parameters: got %v", got)
	}
	if p.CurrentPreset() != PresetCustom {
		t.Error("CurrentPreset should report Custom after ApplyPreset(Custom)")
	}
}

func TestBypassRoundTrip(t *testing.T) {
	p := NewParameters()
	if p.Bypassed() {
		t.Error("parameters should start un-bypassed")
	}
	p.SetBypass(true)
	if !p.Bypassed() {
		t.Error("SetBypass(true) should make Bypassed() report true")
	}
}

func TestHiCutLoCutEnabledDefaultToTrue(t *testing.T) {
	p := NewParameters()
	if !p.HiCutEnabled() {
		t.Error("hi_cut should default to enabled")
	}
	if !p.LoCutEnabled() {
		t.Error("lo_cut should default to enabled")
	}
}

func TestHiCutEnabledRoundTrip(t *testing.T) {
	p := NewParameters()
	p.SetHiCutEnabled(false)
	if p.HiCutEnabled() {
		t.Error("SetHiCutEnabled(false) should make HiCutEnabled() report false")
	}
	p.SetHiCutEnabled(true)
	if !p.HiCutEnabled() {
		t.Error("SetHiCutEnabled(true) should make HiCutEnabled() report true")
	}
}

func TestLoCutEnabledRoundTrip(t *testing.T) {
	p := NewParameters()
	p.SetLoCutEnabled(false)
	if p.LoCutEnabled() {
		t.Error("SetLoCutEnabled(false) should make LoCutEnabled() report false")
	}
}

func TestRoomSizeGuardFirstCallNeverFlushes(t *testing.T) {
	var g RoomSizeGuard
	if g.Check(0.9) {
		t.Error("first Check call should never request a flush")
	}
}

func TestRoomSizeGuardFlushesOnLargeJump(t *testing.T) {
	var g RoomSizeGuard
	g.Check(0.5)
	if !g.Check(0.8) {
		t.Error("a 0.3 jump should trigger a flush")
	}
}

func TestRoomSizeGuardIgnoresSmallChange(t *testing.T) {
	var g RoomSizeGuard
	g.Check(0.5)
	if g.Check(0.55) {
		t.Error("a 0.05 jump should not trigger a flush")
	}
}
