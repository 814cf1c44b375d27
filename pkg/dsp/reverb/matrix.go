package reverb

import (
	"math"
	"math/rand"
)

// matrixSeed is fixed so every engine instance (and every test run) derives
// the same Householder reflection, making two identically configured
// engines produce bit-identical output.
const matrixSeed = 42

// FeedbackMatrix is a dense, orthogonal N×N matrix used to couple the FDN's
// delay lines without gain or loss: energy leaving one line is redistributed
// across all lines, never created or destroyed by the matrix itself.
type FeedbackMatrix struct {
	n  int
	h  [][]float32
	hv [][]float32 // unscaled matrix, kept to reapply a new final_gain cheaply
}

// NewFeedbackMatrix builds an orthogonal N×N Householder reflection
// H = I - 2*v*vᵀ from a unit vector v drawn by a seed-42 PRNG, independent
// of room size, decay time or any other live parameter.
func NewFeedbackMatrix(n int) *FeedbackMatrix {
	rng := rand.New(rand.NewSource(matrixSeed))

	v := make([]float64, n)
	var sumSq float64
	for i := range v {
		v[i] = rng.NormFloat64()
		sumSq += v[i] * v[i]
	}
	norm := sumSq
	if norm <= 0 {
		norm = 1
	}
	invNorm := 1.0 / math.Sqrt(norm)
	for i := range v {
		v[i] *= invNorm
	}

	hv := make([][]float32, n)
	for i := 0; i < n; i++ {
		hv[i] = make([]float32, n)
		for j := 0; j < n; j++ {
			delta := 0.0
			if i == j {
				delta = 1.0
			}
			hv[i][j] = float32(delta - 2*v[i]*v[j])
		}
	}

	h := make([][]float32, n)
	for i := range h {
		h[i] = make([]float32, n)
		copy(h[i], hv[i])
	}

	return &FeedbackMatrix{n: n, h: h, hv: hv}
}

// ScaleTo rescales the matrix from its unscaled Householder reflection by
// finalGain, the decay-calibrated coupling gain from the calibration step.
func (m *FeedbackMatrix) ScaleTo(finalGain float32) {
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			m.h[i][j] = m.hv[i][j] * finalGain
		}
	}
}

// Multiply computes y = H·d for the current (scaled) matrix.
func (m *FeedbackMatrix) Multiply(d, y []float32) {
	for i := 0; i < m.n; i++ {
		row := m.h[i]
		var sum float32
		for j := 0; j < m.n; j++ {
			sum += row[j] * d[j]
		}
		y[i] = sum
	}
}

// Unscaled returns the raw, pre-decay-gain Householder reflection, used by
// the orthogonality check: ‖H·Hᵀ − I‖∞ ≤ 1e-4.
func (m *FeedbackMatrix) Unscaled() [][]float32 {
	return m.hv
}

// Size returns N.
func (m *FeedbackMatrix) Size() int {
	return m.n
}
