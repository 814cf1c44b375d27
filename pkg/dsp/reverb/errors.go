package reverb

import "errors"

// Sentinel errors returned at the engine boundary. Everything else
// (out-of-range parameters, unstable matrices, non-finite samples) is
// handled internally by clamping or sanitizing rather than erroring.
var (
	// ErrConfigInvalid is returned by New when sample rate or block size
	// is out of the documented range.
	ErrConfigInvalid = errors.New("reverb: invalid engine config")

	// ErrBlockTooLarge is returned by ProcessStereo/ProcessMono when the
	// caller passes more samples than the engine was configured for.
	ErrBlockTooLarge = errors.New("reverb: block exceeds max block size")

	// ErrBufferMismatch is returned when stereo input/output slice
	// lengths disagree.
	ErrBufferMismatch = errors.New("reverb: buffer length mismatch")
)
