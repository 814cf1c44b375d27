// Package chain composes stereo DSP stages into an ordered pipeline.
package chain

import "fmt"

// StereoProcessor is a stereo DSP stage that mutates left/right in place.
type StereoProcessor interface {
	ProcessStereo(left, right []float32)
	Reset()
}

// StereoChain runs an ordered list of StereoProcessor stages.
type StereoChain struct {
	processors []StereoProcessor
	name       string
	bypass     bool
}

// NewStereoChain creates a new stereo DSP chain.
func NewStereoChain(name string) *StereoChain {
	return &StereoChain{name: name}
}

// Add appends a stereo processor to the chain.
func (c *StereoChain) Add(processor StereoProcessor) *StereoChain {
	c.processors = append(c.processors, processor)
	return c
}

// ProcessStereo runs the chain's stages in order.
func (c *StereoChain) ProcessStereo(left, right []float32) {
	if c.bypass {
		return
	}
	for _, processor := range c.processors {
		processor.ProcessStereo(left, right)
	}
}

// Reset resets all stages in the chain.
func (c *StereoChain) Reset() {
	for _, processor := range c.processors {
		processor.Reset()
	}
}

// SetBypass sets the bypass state of the chain.
func (c *StereoChain) SetBypass(bypass bool) {
	c.bypass = bypass
}

// Builder provides a fluent API for building stereo DSP chains.
type Builder struct {
	chain  *StereoChain
	errors []error
}

// NewBuilder creates a new stereo chain builder.
func NewBuilder(name string) *Builder {
	return &Builder{chain: NewStereoChain(name)}
}

// WithProcessor adds a stereo processor to the chain under construction.
func (b *Builder) WithProcessor(processor StereoProcessor) *Builder {
	if processor == nil {
		b.errors = append(b.errors, fmt.Errorf("chain %q: processor cannot be nil", b.chain.name))
		return b
	}
	b.chain.Add(processor)
	return b
}

// Build finalizes the chain, returning an error if construction failed.
func (b *Builder) Build() (*StereoChain, error) {
	if len(b.errors) > 0 {
		return nil, fmt.Errorf("chain build errors: %v", b.errors)
	}
	if len(b.chain.processors) == 0 {
		return nil, fmt.Errorf("chain %q is empty", b.chain.name)
	}
	return b.chain, nil
}
