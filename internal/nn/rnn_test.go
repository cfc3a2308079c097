package nn

import (
	"math"
	"testing"

	"github.com/born-ml/born/backend/cpu"
	"github.com/born-ml/born/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rnnStep computes tanh(x @ wIH + h @ wHH + bIH + bHH) for one batch row.
func rnnStep(x, h, wIH, wHH, bIH, bHH []float32, inSize, hidden int) []float32 {
	out := make([]float32, hidden)
	for j := 0; j < hidden; j++ {
		var acc float64
		for i := 0; i < inSize; i++ {
			acc += float64(x[i]) * float64(wIH[i*hidden+j])
		}
		for k := 0; k < hidden; k++ {
			acc += float64(h[k]) * float64(wHH[k*hidden+j])
		}
		acc += float64(bIH[j]) + float64(bHH[j])
		out[j] = float32(math.Tanh(acc))
	}
	return out
}

// TestRNNCell_TanhStep tests one cell step against a direct computation.
func TestRNNCell_TanhStep(t *testing.T) {
	backend := cpu.New()

	cell := NewRNNCell(2, 2, true, NonlinearityTanh, backend)

	wIH := []float32{0.1, -0.2, 0.3, 0.4}
	wHH := []float32{0.5, 0.1, -0.3, 0.2}
	bIH := []float32{0.05, -0.05}
	bHH := []float32{0.1, 0.1}
	setParam(t, cell.WIH(), wIH)
	setParam(t, cell.WHH(), wHH)
	setParam(t, cell.BiasIH(), bIH)
	setParam(t, cell.BiasHH(), bHH)

	xData := []float32{1, -0.5}
	hData := []float32{0.2, 0.7}
	x := mustFromSlice(t, xData, tensor.Shape{1, 2}, backend)
	h := mustFromSlice(t, hData, tensor.Shape{1, 2}, backend)

	out := cell.Forward(x, h)
	require.Equal(t, []int{1, 2}, []int(out.Shape()))

	expected := rnnStep(xData, hData, wIH, wHH, bIH, bHH, 2, 2)
	for j, exp := range expected {
		assert.InDelta(t, exp, out.Data()[j], 0.001, "hidden unit %d", j)
	}
}

// TestRNNCell_ReLU tests the ReLU nonlinearity clamps negative
// pre-activations.
func TestRNNCell_ReLU(t *testing.T) {
	backend := cpu.New()

	cell := NewRNNCell(1, 2, false, NonlinearityReLU, backend)
	setParam(t, cell.WIH(), []float32{1, -1})
	setParam(t, cell.WHH(), make([]float32, 4))

	x := mustFromSlice(t, []float32{2}, tensor.Shape{1, 1}, backend)
	out := cell.Forward(x, nil)

	assert.InDelta(t, 2.0, out.Data()[0], 0.001)
	assert.InDelta(t, 0.0, out.Data()[1], 0.001)
}

// TestRNNCell_NilStateIsZeros tests that a nil hidden state equals an
// explicit zero state.
func TestRNNCell_NilStateIsZeros(t *testing.T) {
	backend := cpu.New()

	cell := NewRNNCell(3, 4, true, NonlinearityTanh, backend)
	x := tensor.Randn[float32](tensor.Shape{2, 3}, backend)

	fromNil := cell.Forward(x, nil)
	fromZeros := cell.Forward(x, tensor.Zeros[float32](tensor.Shape{2, 4}, backend))

	assert.Equal(t, fromZeros.Data(), fromNil.Data())
}

// TestRNNCell_UnknownNonlinearity tests construction-time rejection.
func TestRNNCell_UnknownNonlinearity(t *testing.T) {
	backend := cpu.New()

	assert.Panics(t, func() {
		NewRNNCell(2, 2, true, Nonlinearity(99), backend)
	})
}

// TestRNNCell_InitBounds tests that weights stay within sqrt(1/hidden).
func TestRNNCell_InitBounds(t *testing.T) {
	backend := cpu.New()

	cell := NewRNNCell(10, 25, true, NonlinearityTanh, backend)
	bound := math.Sqrt(1.0 / 25.0)

	for _, p := range Parameters[Backend](cell) {
		for i, v := range p.Tensor().Data() {
			assert.LessOrEqual(t, math.Abs(float64(v)), bound, "%s[%d] out of range", p.Name(), i)
		}
	}
}

// TestRNN_SingleLayerMatchesManualLoop tests that the sequence wrapper
// equals stepping the underlying cell by hand.
func TestRNN_SingleLayerMatchesManualLoop(t *testing.T) {
	backend := cpu.New()

	rnn := NewRNN(3, 2, 1, true, NonlinearityTanh, backend)
	cell := rnn.Cells()[0]

	const seqLen, batch = 4, 2
	x := tensor.Randn[float32](tensor.Shape{seqLen, batch, 3}, backend)

	out, hn := rnn.Forward(x, nil)
	require.Equal(t, []int{seqLen, batch, 2}, []int(out.Shape()))
	require.Equal(t, []int{1, batch, 2}, []int(hn.Shape()))

	var h *tensor.Tensor[float32, Backend]
	for step := 0; step < seqLen; step++ {
		xt := x.Chunk(seqLen, 0)[step].Squeeze(0)
		h = cell.Forward(xt, h)

		stepOut := out.Chunk(seqLen, 0)[step].Squeeze(0)
		for i, exp := range h.Data() {
			assert.InDelta(t, exp, stepOut.Data()[i], 0.001, "step %d index %d", step, i)
		}
	}

	// Final hidden state matches the last step.
	for i, exp := range h.Data() {
		assert.InDelta(t, exp, hn.Data()[i], 0.001)
	}
}

// TestRNN_StackedShapes tests output and state shapes for a deep stack.
func TestRNN_StackedShapes(t *testing.T) {
	backend := cpu.New()

	rnn := NewRNN(5, 3, 4, true, NonlinearityTanh, backend)
	require.Len(t, rnn.Cells(), 4)
	assert.Equal(t, 5, rnn.Cells()[0].InputSize())
	assert.Equal(t, 3, rnn.Cells()[1].InputSize())

	x := tensor.Randn[float32](tensor.Shape{6, 2, 5}, backend)
	out, hn := rnn.Forward(x, nil)

	assert.Equal(t, []int{6, 2, 3}, []int(out.Shape()))
	assert.Equal(t, []int{4, 2, 3}, []int(hn.Shape()))
}

// TestRNN_NilStateIsZeros tests that a nil initial state equals explicit
// zeros.
func TestRNN_NilStateIsZeros(t *testing.T) {
	backend := cpu.New()

	rnn := NewRNN(2, 3, 2, false, NonlinearityTanh, backend)
	x := tensor.Randn[float32](tensor.Shape{3, 2, 2}, backend)

	outNil, hnNil := rnn.Forward(x, nil)
	outZero, hnZero := rnn.Forward(x, tensor.Zeros[float32](tensor.Shape{2, 2, 3}, backend))

	assert.Equal(t, outZero.Data(), outNil.Data())
	assert.Equal(t, hnZero.Data(), hnNil.Data())
}

// copyParams copies every parameter of src into dst, in declaration order.
func copyParams(t *testing.T, dst, src Module[Backend]) {
	t.Helper()
	dstParams := Parameters[Backend](dst)
	srcParams := Parameters[Backend](src)
	require.Len(t, dstParams, len(srcParams))
	for i := range srcParams {
		setParam(t, dstParams[i], srcParams[i].Tensor().Data())
	}
}

// TestRNN_StackEqualsChainedSingleLayers tests that a 2-layer stack equals
// two single-layer stacks fed into each other with the same weights.
func TestRNN_StackEqualsChainedSingleLayers(t *testing.T) {
	backend := cpu.New()

	stacked := NewRNN(3, 4, 2, true, NonlinearityTanh, backend)

	bottom := NewRNN(3, 4, 1, true, NonlinearityTanh, backend)
	top := NewRNN(4, 4, 1, true, NonlinearityTanh, backend)
	copyParams(t, bottom.Cells()[0], stacked.Cells()[0])
	copyParams(t, top.Cells()[0], stacked.Cells()[1])

	x := tensor.Randn[float32](tensor.Shape{5, 2, 3}, backend)

	out, hn := stacked.Forward(x, nil)
	mid, hnBottom := bottom.Forward(x, nil)
	chained, hnTop := top.Forward(mid, nil)

	for i, exp := range chained.Data() {
		assert.InDelta(t, exp, out.Data()[i], 0.001, "output index %d", i)
	}

	// hn rows are per-layer final states, bottom first.
	half := len(hn.Data()) / 2
	for i, exp := range hnBottom.Data() {
		assert.InDelta(t, exp, hn.Data()[i], 0.001, "bottom state index %d", i)
	}
	for i, exp := range hnTop.Data() {
		assert.InDelta(t, exp, hn.Data()[half+i], 0.001, "top state index %d", i)
	}
}

// TestRNN_ParameterCount tests the trainable surface of a stack with and
// without biases.
func TestRNN_ParameterCount(t *testing.T) {
	backend := cpu.New()

	withBias := NewRNN(4, 4, 3, true, NonlinearityTanh, backend)
	assert.Len(t, Parameters[Backend](withBias), 3*4)

	noBias := NewRNN(4, 4, 3, false, NonlinearityTanh, backend)
	assert.Len(t, Parameters[Backend](noBias), 3*2)
}
