package nn

import (
	"testing"

	"github.com/born-ml/born/backend/cpu"
	"github.com/born-ml/born/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLayerNorm1d_KnownValues tests per-row standardization against
// hand-computed values.
func TestLayerNorm1d_KnownValues(t *testing.T) {
	backend := cpu.New()

	ln := NewLayerNorm1d(3, 1e-5, backend)

	x := mustFromSlice(t, []float32{
		1, 2, 3,
		4, 5, 6,
	}, tensor.Shape{2, 3}, backend)

	out := ln.Forward(x)
	require.Equal(t, []int{2, 3}, []int(out.Shape()))

	// Each row has mean subtracted and is divided by sqrt(2/3).
	expected := []float32{
		-1.2247, 0, 1.2247,
		-1.2247, 0, 1.2247,
	}
	for i, exp := range expected {
		assert.InDelta(t, exp, out.Data()[i], 0.001, "mismatch at index %d", i)
	}
}

// TestLayerNorm1d_RowIndependence tests that each row is normalized with
// its own statistics.
func TestLayerNorm1d_RowIndependence(t *testing.T) {
	backend := cpu.New()

	ln := NewLayerNorm1d(2, 1e-5, backend)

	// Wildly different scales per row normalize to the same output.
	x := mustFromSlice(t, []float32{
		-1, 1,
		-1000, 1000,
	}, tensor.Shape{2, 2}, backend)

	out := ln.Forward(x)
	assert.InDelta(t, out.Data()[0], out.Data()[2], 0.001)
	assert.InDelta(t, out.Data()[1], out.Data()[3], 0.001)
}

// TestLayerNorm1d_Affine tests the learned scale and shift.
func TestLayerNorm1d_Affine(t *testing.T) {
	backend := cpu.New()

	ln := NewLayerNorm1d(2, 1e-5, backend)
	setParam(t, ln.Weight(), []float32{3, 3})
	setParam(t, ln.Bias(), []float32{5, 5})

	x := mustFromSlice(t, []float32{-1, 1}, tensor.Shape{1, 2}, backend)
	out := ln.Forward(x)

	// Standardized row is [-1, 1], then *3 + 5.
	assert.InDelta(t, 2.0, out.Data()[0], 0.01)
	assert.InDelta(t, 8.0, out.Data()[1], 0.01)
}

// TestLayerNorm1d_ModeIndependent tests identical output in training and
// evaluation mode.
func TestLayerNorm1d_ModeIndependent(t *testing.T) {
	backend := cpu.New()

	ln := NewLayerNorm1d(4, 1e-5, backend)
	x := tensor.Randn[float32](tensor.Shape{3, 4}, backend)

	trainOut := ln.Forward(x)
	Eval[Backend](ln)
	evalOut := ln.Forward(x)

	assert.Equal(t, trainOut.Data(), evalOut.Data())
}

// TestLayerNorm1d_Parameters tests the trainable surface.
func TestLayerNorm1d_Parameters(t *testing.T) {
	backend := cpu.New()

	ln := NewLayerNorm1d(8, 1e-5, backend)
	params := Parameters[Backend](ln)
	require.Len(t, params, 2)
	assert.Equal(t, "weight", params[0].Name())
	assert.Equal(t, "bias", params[1].Name())
}

// TestLayerNorm1d_RejectsNon2D tests the input rank precondition.
func TestLayerNorm1d_RejectsNon2D(t *testing.T) {
	backend := cpu.New()

	ln := NewLayerNorm1d(3, 1e-5, backend)
	assert.Panics(t, func() {
		ln.Forward(tensor.Randn[float32](tensor.Shape{3}, backend))
	})
}
