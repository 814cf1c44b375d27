package reverb

import "github.com/aplitt/fdnreverb/pkg/dsp/delay"

// CrossFeed mixes a stereo input pair pre-reverb: each channel bleeds a
// delayed, attenuated copy of the other into itself, then the result is
// re-imaged via mid/side width. This is what makes a reverb tail feel like
// one coherent space rather than two independent mono tails.
type CrossFeed struct {
	sampleRate float64

	amount       float32
	crossDelayMs float64
	width        float32
	phaseInvert  bool
	bypass       bool

	delayL *delay.Line
	delayR *delay.Line
}

// NewCrossFeed creates a cross-feed stage with up to maxDelayMs of cross-tap delay.
func NewCrossFeed(sampleRate, maxDelayMs float64) *CrossFeed {
	return &CrossFeed{
		sampleRate: sampleRate,
		width:      1,
		delayL:     delay.New(maxDelayMs/1000.0, sampleRate),
		delayR:     delay.New(maxDelayMs/1000.0, sampleRate),
	}
}

// SetAmount sets the cross-feed amount ∈ [0,1].
func (c *CrossFeed) SetAmount(amount float32) { c.amount = amount }

// SetCrossDelayMs sets the cross-tap delay in milliseconds, ∈ [0,50].
func (c *CrossFeed) SetCrossDelayMs(ms float64) { c.crossDelayMs = ms }

// SetWidth sets the post-mix mid/side width ∈ [0,2].
func (c *CrossFeed) SetWidth(width float32) { c.width = width }

// SetPhaseInvert inverts the right-to-left cross tap.
func (c *CrossFeed) SetPhaseInvert(invert bool) { c.phaseInvert = invert }

// SetBypass disables cross-mixing; only mid/side width is applied.
func (c *CrossFeed) SetBypass(bypass bool) { c.bypass = bypass }

// Reset clears both cross-tap delay lines.
func (c *CrossFeed) Reset() {
	c.delayL.Reset()
	c.delayR.Reset()
}

// Process runs one stereo sample through the cross-feed and width stages.
func (c *CrossFeed) Process(l, r float32) (outL, outR float32) {
	if c.bypass {
		mid := (l + r) / 2
		side := (l - r) * c.width / 2
		return mid + side, mid - side
	}

	delaySamples := c.crossDelayMs * c.sampleRate / 1000.0
	dL := c.delayL.Read(delaySamples)
	dR := c.delayR.Read(delaySamples)

	cLtoR := dL * c.amount
	cRtoL := dR * c.amount
	if c.phaseInvert {
		cRtoL = -cRtoL
	}

	mixedL := l + cRtoL
	mixedR := r + cLtoR

	mid := (mixedL + mixedR) / 2
	side := (mixedL - mixedR) * c.width / 2

	c.delayL.Write(l)
	c.delayR.Write(r)

	return mid + side, mid - side
}
