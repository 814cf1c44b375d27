// Package analysis provides level-metering primitives used by the
// reverb engine's offline validation harness.
//
// Level Metering:
//   - Peak meter with hold and decay, used to report the held peak level
//     of impulse responses during stability sweeps.
//   - RMS (Root Mean Square) meter with a sliding window, used to build
//     the envelope an RT60 measurement walks for its -20 dB/-60 dB
//     crossings.
//
// Both meters operate on float64 slices and are intended for offline,
// non-realtime analysis; neither is called from the engine's
// block-processing path.
package analysis
