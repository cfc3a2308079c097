package nn

import (
	"fmt"
	"math"

	"github.com/born-ml/born/tensor"

	"github.com/born-ml/weave/internal/ops"
)

// LSTMCell is a single-step long short-term memory cell.
//
// The combined gate pre-activation x @ W_ih + h @ W_hh + biases has width
// 4*hidden and is split into four equal chunks in the fixed order input,
// forget, candidate, output. Then:
//
//	i, f, o = sigmoid(chunk)    g = tanh(chunk)
//	c' = f*c + i*g              h' = o*tanh(c')
//
// Weights and biases are initialized from U(-sqrt(1/hidden),
// sqrt(1/hidden)).
type LSTMCell[B tensor.Backend] struct {
	base

	inputSize  int
	hiddenSize int

	wIH *Parameter[B] // [input_size, 4*hidden_size]
	wHH *Parameter[B] // [hidden_size, 4*hidden_size]

	biasIH *Parameter[B] // [4*hidden_size] or nil
	biasHH *Parameter[B] // [4*hidden_size] or nil

	sigmoid *Sigmoid[B]
	tanh    *Tanh[B]

	backend B
}

// NewLSTMCell creates an LSTM cell. bias controls both bias terms
// together.
func NewLSTMCell[B tensor.Backend](inputSize, hiddenSize int, bias bool, backend B) *LSTMCell[B] {
	if inputSize <= 0 || hiddenSize <= 0 {
		panic(fmt.Sprintf("LSTMCell: invalid sizes input=%d, hidden=%d", inputSize, hiddenSize))
	}

	bound := float32(math.Sqrt(1 / float64(hiddenSize)))
	gates := 4 * hiddenSize

	cell := &LSTMCell[B]{
		base:       newBase(),
		inputSize:  inputSize,
		hiddenSize: hiddenSize,
		wIH:        NewParameter("W_ih", Uniform(-bound, bound, tensor.Shape{inputSize, gates}, backend)),
		wHH:        NewParameter("W_hh", Uniform(-bound, bound, tensor.Shape{hiddenSize, gates}, backend)),
		sigmoid:    NewSigmoid[B](),
		tanh:       NewTanh[B](),
		backend:    backend,
	}

	if bias {
		cell.biasIH = NewParameter("bias_ih", Uniform(-bound, bound, tensor.Shape{gates}, backend))
		cell.biasHH = NewParameter("bias_hh", Uniform(-bound, bound, tensor.Shape{gates}, backend))
	}

	return cell
}

// Forward advances the cell one step.
//
// x has shape [batch, input_size]; h0 and c0 have shape
// [batch, hidden_size] and may each be nil, resolved to zeros before any
// computation. Returns the next hidden and cell states, each
// [batch, hidden_size].
func (c *LSTMCell[B]) Forward(x, h0, c0 *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], *tensor.Tensor[float32, B]) {
	batch := x.Shape()[0]
	gates := 4 * c.hiddenSize

	if h0 == nil {
		h0 = Zeros(tensor.Shape{batch, c.hiddenSize}, c.backend)
	}
	if c0 == nil {
		c0 = Zeros(tensor.Shape{batch, c.hiddenSize}, c.backend)
	}

	preact := x.MatMul(c.wIH.Tensor()).Add(h0.MatMul(c.wHH.Tensor()))

	if c.biasIH != nil {
		preact = preact.Add(c.biasIH.Tensor().Reshape(1, gates))
	}
	if c.biasHH != nil {
		preact = preact.Add(c.biasHH.Tensor().Reshape(1, gates))
	}

	chunks := preact.Chunk(4, 1) // i, f, g, o in that order

	input := c.sigmoid.Forward(chunks[0])
	forget := c.sigmoid.Forward(chunks[1])
	candidate := c.tanh.Forward(chunks[2])
	output := c.sigmoid.Forward(chunks[3])

	cellState := forget.Mul(c0).Add(input.Mul(candidate))
	hidden := output.Mul(c.tanh.Forward(cellState))

	return hidden, cellState
}

// HiddenSize returns the hidden state width.
func (c *LSTMCell[B]) HiddenSize() int {
	return c.hiddenSize
}

// InputSize returns the expected input width.
func (c *LSTMCell[B]) InputSize() int {
	return c.inputSize
}

// WIH returns the input-hidden weight parameter.
func (c *LSTMCell[B]) WIH() *Parameter[B] {
	return c.wIH
}

// WHH returns the hidden-hidden weight parameter.
func (c *LSTMCell[B]) WHH() *Parameter[B] {
	return c.wHH
}

// BiasIH returns the input-hidden bias, or nil.
func (c *LSTMCell[B]) BiasIH() *Parameter[B] {
	return c.biasIH
}

// BiasHH returns the hidden-hidden bias, or nil.
func (c *LSTMCell[B]) BiasHH() *Parameter[B] {
	return c.biasHH
}

// Attributes lists the weights, optional biases and the gate modules.
func (c *LSTMCell[B]) Attributes() []Attr[B] {
	attrs := []Attr[B]{
		{Name: "W_ih", Value: Param(c.wIH)},
		{Name: "W_hh", Value: Param(c.wHH)},
	}
	if c.biasIH != nil {
		attrs = append(attrs, Attr[B]{Name: "bias_ih", Value: Param(c.biasIH)})
	}
	if c.biasHH != nil {
		attrs = append(attrs, Attr[B]{Name: "bias_hh", Value: Param(c.biasHH)})
	}
	attrs = append(attrs,
		Attr[B]{Name: "sigmoid", Value: Child[B](c.sigmoid)},
		Attr[B]{Name: "tanh", Value: Child[B](c.tanh)},
	)
	return attrs
}

// LSTM stacks num_layers LSTM cells over an input sequence, threading both
// hidden and cell state per layer and per timestep. Like RNN, it retains
// no state between calls.
type LSTM[B tensor.Backend] struct {
	base

	hiddenSize int
	cells      []*LSTMCell[B]

	backend B
}

// NewLSTM creates a stack of numLayers LSTM cells.
func NewLSTM[B tensor.Backend](inputSize, hiddenSize, numLayers int, bias bool, backend B) *LSTM[B] {
	if numLayers <= 0 {
		panic(fmt.Sprintf("LSTM: invalid number of layers %d", numLayers))
	}

	cells := make([]*LSTMCell[B], numLayers)
	cells[0] = NewLSTMCell(inputSize, hiddenSize, bias, backend)
	for i := 1; i < numLayers; i++ {
		cells[i] = NewLSTMCell(hiddenSize, hiddenSize, bias, backend)
	}

	return &LSTM[B]{
		base:       newBase(),
		hiddenSize: hiddenSize,
		cells:      cells,
		backend:    backend,
	}
}

// Forward runs the stack over a full sequence.
//
// x has shape [seq_len, batch, input_size]; h0 and c0 have shape
// [num_layers, batch, hidden_size] and may each be nil, resolved to zeros.
// Returns the top layer's output sequence [seq_len, batch, hidden_size]
// and the stacked final hidden and cell states, each
// [num_layers, batch, hidden_size].
func (l *LSTM[B]) Forward(x, h0, c0 *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], *tensor.Tensor[float32, B], *tensor.Tensor[float32, B]) {
	shape := x.Shape()
	if len(shape) != 3 {
		panic(fmt.Sprintf("LSTM: expected 3D input [seq_len, batch, input_size], got shape %v", shape))
	}

	batch := shape[1]
	numLayers := len(l.cells)

	if h0 == nil {
		h0 = Zeros(tensor.Shape{numLayers, batch, l.hiddenSize}, l.backend)
	}
	if c0 == nil {
		c0 = Zeros(tensor.Shape{numLayers, batch, l.hiddenSize}, l.backend)
	}

	initialH := ops.Split(h0, 0)
	initialC := ops.Split(c0, 0)

	layerInput := x
	finalH := make([]*tensor.Tensor[float32, B], 0, numLayers)
	finalC := make([]*tensor.Tensor[float32, B], 0, numLayers)

	for layer, cell := range l.cells {
		h := initialH[layer]
		cs := initialC[layer]

		steps := ops.Split(layerInput, 0)
		outputs := make([]*tensor.Tensor[float32, B], 0, len(steps))
		for _, xt := range steps {
			h, cs = cell.Forward(xt, h, cs)
			outputs = append(outputs, h)
		}

		layerInput = ops.Stack(outputs, 0)
		finalH = append(finalH, h)
		finalC = append(finalC, cs)
	}

	return layerInput, ops.Stack(finalH, 0), ops.Stack(finalC, 0)
}

// HiddenSize returns the hidden state width.
func (l *LSTM[B]) HiddenSize() int {
	return l.hiddenSize
}

// Cells returns the per-layer cells, bottom first.
func (l *LSTM[B]) Cells() []*LSTMCell[B] {
	return l.cells
}

// Attributes lists the stacked cells in layer order.
func (l *LSTM[B]) Attributes() []Attr[B] {
	items := make([]Value[B], len(l.cells))
	for i, cell := range l.cells {
		items[i] = Child[B](cell)
	}

	return []Attr[B]{
		{Name: "cells", Value: List(items...)},
	}
}
