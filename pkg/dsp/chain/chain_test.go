package chain

import "testing"

type gainStage struct {
	gain     float32
	resetCount int
}

func (g *gainStage) ProcessStereo(left, right []float32) {
	for i := range left {
		left[i] *= g.gain
		right[i] *= g.gain
	}
}

func (g *gainStage) Reset() {
	g.resetCount++
}

func TestStereoChainRunsStagesInOrder(t *testing.T) {
	c := NewStereoChain("test")
	c.Add(&gainStage{gain: 2}).Add(&gainStage{gain: 3})

	left := []float32{1, 1}
	right := []float32{1, 1}
	c.ProcessStereo(left, right)

	for i := range left {
		if left[i] != 6 || right[i] != 6 {
			t.Fatalf("sample %d: got (%v, %v), want (6, 6)", i, left[i], right[i])
		}
	}
}

func TestStereoChainBypassSkipsAllStages(t *testing.T) {
	c := NewStereoChain("test")
	c.Add(&gainStage{gain: 2})
	c.SetBypass(true)

	left := []float32{1}
	right := []float32{1}
	c.ProcessStereo(left, right)

	if left[0] != 1 || right[0] != 1 {
		t.Error("bypassed chain should not modify buffers")
	}
}

func TestStereoChainResetPropagates(t *testing.T) {
	stage := &gainStage{gain: 1}
	c := NewStereoChain("test")
	c.Add(stage)
	c.Reset()

	if stage.resetCount != 1 {
		t.Errorf("Reset not propagated: got %d calls, want 1", stage.resetCount)
	}
}

func TestBuilderRejectsNilProcessor(t *testing.T) {
	_, err := NewBuilder("test").WithProcessor(nil).Build()
	if err == nil {
		t.Error("expected error for nil processor")
	}
}

func TestBuilderRejectsEmptyChain(t *testing.T) {
	_, err := NewBuilder("test").Build()
	if err == nil {
		t.Error("expected error for empty chain")
	}
}

func TestBuilderBuildsValidChain(t *testing.T) {
	c, err := NewBuilder("test").WithProcessor(&gainStage{gain: 1}).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c == nil {
		t.Fatal("expected non-nil chain")
	}
}
