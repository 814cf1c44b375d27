package reverb

import (
	"math"
	"testing"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	cfg := DefaultEngineConfig(48000, 512)
	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

// S1 — silence in, silence out.
func TestSilenceInSilenceOut(t *testing.T) {
	e := newTestEngine(t)
	e.ApplyPreset(PresetClean)

	in := make([]float32, 4800)
	out := make([]float32, 4800)
	const block = 480
	for start := 0; start < len(in); start += block {
		if err := e.ProcessMono(in[start:start+block], out[start:start+block]); err != nil {
			t.Fatalf("ProcessMono: %v", err)
		}
	}
	for i, v := range out {
		if v != 0 {
			t.Fatalf("sample %d: got %v, want 0", i, v)
		}
	}
}

// Property 5 / Clean preset: zero wet output regardless of other parameters.
func TestCleanPresetProducesZeroWetOutput(t *testing.T) {
	e := newTestEngine(t)
	e.ApplyPreset(PresetClean)
	e.Parameters().RoomSize.SetValue(0.9)
	e.Parameters().DecayTimeS.SetValue(5)

	inL := make([]float32, 512)
	inR := make([]float32, 512)
	inL[0] = 1
	outL := make([]float32, 512)
	outR := make([]float32, 512)

	for block := 0; block < 20; block++ {
		if err := e.ProcessStereo(inL, inR, outL, outR); err != nil {
			t.Fatalf("ProcessStereo: %v", err)
		}
		for i := range outL {
			if outL[i] != 0 || outR[i] != 0 {
				t.Fatalf("block %d sample %d: Clean preset produced nonzero wet output: (%v, %v)", block, i, outL[i], outR[i])
			}
		}
		inL[0], inR[0] = 0, 0 // impulse only on first block
	}
}

// Property 4 — wet-at-zero-dry.
func TestWetDryZeroProducesZeroOutput(t *testing.T) {
	e := newTestEngine(t)
	e.ApplyPreset(PresetStudio)
	e.Parameters().WetDryMixPct.SetValue(0)

	inL := make([]float32, 512)
	inR := make([]float32, 512)
	inL[0] = 1
	outL := make([]float32, 512)
	outR := make([]float32, 512)

	for block := 0; block < 10; block++ {
		if err := e.ProcessStereo(inL, inR, outL, outR); err != nil {
			t.Fatalf("ProcessStereo: %v", err)
		}
		for i := range outL {
			if outL[i] != 0 || outR[i] != 0 {
				t.Fatalf("wet_dry_mix_pct=0 should mute wet output: block %d sample %d = (%v, %v)", block, i, outL[i], outR[i])
			}
		}
		inL[0], inR[0] = 0, 0
	}
}

// S4 — width zero collapses to mono.
func TestStereoSpreadZeroCollapsesOutputToMono(t *testing.T) {
	e := newTestEngine(t)
	e.ApplyPreset(PresetStudio)
	e.Parameters().StereoSpread.SetValue(0)

	inL := make([]float32, 512)
	inR := make([]float32, 512)
	inL[0] = 1
	inR[0] = -0.6
	outL := make([]float32, 512)
	outR := make([]float32, 512)

	for block := 0; block < 10; block++ {
		if err := e.ProcessStereo(inL, inR, outL, outR); err != nil {
			t.Fatalf("ProcessStereo: %v", err)
		}
		for i := range outL {
			if math.Abs(float64(outL[i]-outR[i])) > 1e-5 {
				t.Fatalf("width=0 should collapse L/R: block %d sample %d: L=%v R=%v", block, i, outL[i], outR[i])
			}
		}
		inL[0], inR[0] = 0, 0
	}
}

// S5 — bypass high-cut: disabling the stage should leave wet output
// indistinguishable from an effectively-unfiltered cutoff (top of range).
func TestHiCutDisabledMatchesUnfilteredReference(t *testing.T) {
	disabled := newTestEngine(t)
	disabled.ApplyPreset(PresetStudio)
	disabled.Parameters().HiCutHz.SetValue(2000)
	disabled.Parameters().SetHiCutEnabled(false)

	reference := newTestEngine(t)
	reference.ApplyPreset(PresetStudio)
	reference.Parameters().HiCutHz.SetValue(20000)

	inL := make([]float32, 512)
	inR := make([]float32, 512)
	inL[0] = 1
	outL1, outR1 := make([]float32, 512), make([]float32, 512)
	outL2, outR2 := make([]float32, 512), make([]float32, 512)

	var e1, e2 float64
	for block := 0; block < 10; block++ {
		if err := disabled.ProcessStereo(inL, inR, outL1, outR1); err != nil {
			t.Fatalf("ProcessStereo (disabled): %v", err)
		}
		if err := reference.ProcessStereo(inL, inR, outL2, outR2); err != nil {
			t.Fatalf("ProcessStereo (reference): %v", err)
		}
		for i := range outL1 {
			e1 += float64(outL1[i]) * float64(outL1[i])
			e2 += float64(outL2[i]) * float64(outL2[i])
		}
		inL[0], inR[0] = 0, 0
	}

	if e1 == 0 || e2 == 0 {
		t.Fatal("expected nonzero wet energy from both engines")
	}
	ratio := e1 / e2
	if ratio < 0.8 || ratio > 1.25 {
		t.Errorf("hi_cut_enabled=false at 2kHz should match an effectively-unfiltered 20kHz cutoff: energy ratio=%v", ratio)
	}
}

// Property 3 — parameter clamping.
func TestSetParameterClampsOutOfRange(t *testing.T) {
	e := newTestEngine(t)
	if ok := e.SetParameter("room_size", 5.0); !ok {
		t.Fatal("SetParameter should find room_size")
	}
	if got := e.Parameters().RoomSize.GetValue(); got != 1 {
		t.Errorf("room_size clamped to max: got %v, want 1", got)
	}
	e.SetParameter("room_size", -5.0)
	if got := e.Parameters().RoomSize.GetValue(); got != 0 {
		t.Errorf("room_size clamped to min: got %v, want 0", got)
	}
}

func TestSetParameterUnknownNameReturnsFalse(t *testing.T) {
	e := newTestEngine(t)
	if ok := e.SetParameter("does_not_exist", 1); ok {
		t.Error("SetParameter should report false for an unknown name")
	}
}

// S6 — size jump flush.
func TestRoomSizeJumpFlushesState(t *testing.T) {
	e := newTestEngine(t)
	e.ApplyPreset(PresetStudio)

	inL := make([]float32, 512)
	inR := make([]float32, 512)
	outL := make([]float32, 512)
	outR := make([]float32, 512)

	// build up some tail energy
	inL[0] = 1
	for block := 0; block < 20; block++ {
		e.ProcessStereo(inL, inR, outL, outR)
		inL[0] = 0
	}

	var preChangeRMS float64
	for _, v := range outL {
		preChangeRMS += float64(v) * float64(v)
	}
	preChangeRMS = math.Sqrt(preChangeRMS / float64(len(outL)))

	e.Parameters().RoomSize.SetValue(0.9)
	for i := range inL {
		inL[i], inR[i] = 0, 0
	}
	if err := e.ProcessStereo(inL, inR, outL, outR); err != nil {
		t.Fatalf("ProcessStereo: %v", err)
	}

	var postRMS float64
	for _, v := range outL {
		postRMS += float64(v) * float64(v)
	}
	postRMS = math.Sqrt(postRMS / float64(len(outL)))

	if preChangeRMS > 1e-9 && postRMS > preChangeRMS*0.5 {
		t.Errorf("room_size jump should flush state to near-silence: pre=%v post=%v", preChangeRMS, postRMS)
	}
}

// Property 8 — determinism.
func TestTwoEnginesWithSameScheduleAreBitIdentical(t *testing.T) {
	e1 := newTestEngine(t)
	e2 := newTestEngine(t)
	e1.ApplyPreset(PresetCathedral)
	e2.ApplyPreset(PresetCathedral)

	inL := make([]float32, 256)
	inR := make([]float32, 256)
	inL[0] = 1
	out1L, out1R := make([]float32, 256), make([]float32, 256)
	out2L, out2R := make([]float32, 256), make([]float32, 256)

	for block := 0; block < 10; block++ {
		e1.ProcessStereo(inL, inR, out1L, out1R)
		e2.ProcessStereo(inL, inR, out2L, out2R)
		for i := range out1L {
			if out1L[i] != out2L[i] || out1R[i] != out2R[i] {
				t.Fatalf("block %d sample %d diverged: (%v,%v) vs (%v,%v)", block, i, out1L[i], out1R[i], out2L[i], out2R[i])
			}
		}
		inL[0], inR[0] = 0, 0
	}
}

// Property 10 — denormal safety.
func TestDenormalSafetyAfterImpulseAndSilence(t *testing.T) {
	e := newTestEngine(t)
	e.ApplyPreset(PresetCathedral)

	inL := make([]float32, 512)
	inR := make([]float32, 512)
	outL := make([]float32, 512)
	outR := make([]float32, 512)
	inL[0] = 1

	totalBlocks := (10 * 48000) / 512
	for block := 0; block < totalBlocks; block++ {
		if err := e.ProcessStereo(inL, inR, outL, outR); err != nil {
			t.Fatalf("ProcessStereo: %v", err)
		}
		for i, v := range outL {
			if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
				t.Fatalf("block %d sample %d: non-finite output %v", block, i, v)
			}
		}
		inL[0], inR[0] = 0, 0
	}
}

func TestProcessStereoRejectsOversizedBlock(t *testing.T) {
	e := newTestEngine(t)
	big := make([]float32, 1024)
	if err := e.ProcessStereo(big, big, big, big); err != ErrBlockTooLarge {
		t.Errorf("expected ErrBlockTooLarge, got %v", err)
	}
}

// Property 9 — no allocation on the processing path.
func TestProcessStereoAllocatesNothing(t *testing.T) {
	e := newTestEngine(t)
	e.ApplyPreset(PresetCathedral)

	inL := make([]float32, 512)
	inR := make([]float32, 512)
	outL := make([]float32, 512)
	outR := make([]float32, 512)
	inL[0] = 1

	// warm up past the initial impulse so the feedback path is populated
	// before measuring.
	for i := 0; i < 4; i++ {
		e.ProcessStereo(inL, inR, outL, outR)
		inL[0], inR[0] = 0, 0
	}

	allocs := testing.AllocsPerRun(20, func() {
		e.ProcessStereo(inL, inR, outL, outR)
	})
	if allocs != 0 {
		t.Errorf("ProcessStereo allocated %v times per call, want 0", allocs)
	}
}

func TestProcessMonoAllocatesNothing(t *testing.T) {
	e := newTestEngine(t)
	e.ApplyPreset(PresetCathedral)

	in := make([]float32, 512)
	out := make([]float32, 512)
	in[0] = 1

	for i := 0; i < 4; i++ {
		e.ProcessMono(in, out)
		in[0] = 0
	}

	allocs := testing.AllocsPerRun(20, func() {
		e.ProcessMono(in, out)
	})
	if allocs != 0 {
		t.Errorf("ProcessMono allocated %v times per call, want 0", allocs)
	}
}

func TestProcessStereoRejectsMismatchedBuffers(t *testing.T) {
	e := newTestEngine(t)
	a := make([]float32, 128)
	b := make([]float32, 64)
	if err := e.ProcessStereo(a, a, a, b); err != ErrBufferMismatch {
		t.Errorf("expected ErrBufferMismatch, got %v", err)
	}
}
