package nn

import (
	"fmt"
	"math"
	"strconv"

	"github.com/born-ml/born/tensor"

	"github.com/born-ml/weave/internal/ops"
)

// Nonlinearity selects the activation of a plain recurrent cell. The set
// is closed: constructors panic on any other value.
type Nonlinearity int

const (
	// NonlinearityTanh applies tanh to the cell pre-activation.
	NonlinearityTanh Nonlinearity = iota
	// NonlinearityReLU applies ReLU to the cell pre-activation.
	NonlinearityReLU
)

// String returns the name of the nonlinearity.
func (n Nonlinearity) String() string {
	switch n {
	case NonlinearityTanh:
		return "tanh"
	case NonlinearityReLU:
		return "relu"
	default:
		return "unknown(" + strconv.Itoa(int(n)) + ")"
	}
}

// activationLayer builds the activation module for a recurrent cell.
// Unknown values are a construction-time error, not a forward-time one.
func activationLayer[B tensor.Backend](n Nonlinearity) Layer[B] {
	switch n {
	case NonlinearityTanh:
		return NewTanh[B]()
	case NonlinearityReLU:
		return NewReLU[B]()
	default:
		panic(fmt.Sprintf("nn: unsupported nonlinearity %v", n))
	}
}

// RNNCell is a single-step recurrent cell:
//
//	h' = act(x @ W_ih + h @ W_hh + b_ih + b_hh)
//
// Weights and biases are initialized from U(-sqrt(1/hidden),
// sqrt(1/hidden)).
type RNNCell[B tensor.Backend] struct {
	base

	inputSize  int
	hiddenSize int

	wIH *Parameter[B] // [input_size, hidden_size]
	wHH *Parameter[B] // [hidden_size, hidden_size]

	biasIH *Parameter[B] // [hidden_size] or nil
	biasHH *Parameter[B] // [hidden_size] or nil

	activation Layer[B]

	backend B
}

// NewRNNCell creates a recurrent cell. bias controls both bias terms
// together.
func NewRNNCell[B tensor.Backend](inputSize, hiddenSize int, bias bool, nonlinearity Nonlinearity, backend B) *RNNCell[B] {
	if inputSize <= 0 || hiddenSize <= 0 {
		panic(fmt.Sprintf("RNNCell: invalid sizes input=%d, hidden=%d", inputSize, hiddenSize))
	}

	bound := float32(math.Sqrt(1 / float64(hiddenSize)))

	cell := &RNNCell[B]{
		base:       newBase(),
		inputSize:  inputSize,
		hiddenSize: hiddenSize,
		wIH:        NewParameter("W_ih", Uniform(-bound, bound, tensor.Shape{inputSize, hiddenSize}, backend)),
		wHH:        NewParameter("W_hh", Uniform(-bound, bound, tensor.Shape{hiddenSize, hiddenSize}, backend)),
		activation: activationLayer[B](nonlinearity),
		backend:    backend,
	}

	if bias {
		cell.biasIH = NewParameter("bias_ih", Uniform(-bound, bound, tensor.Shape{hiddenSize}, backend))
		cell.biasHH = NewParameter("bias_hh", Uniform(-bound, bound, tensor.Shape{hiddenSize}, backend))
	}

	return cell
}

// Forward advances the cell one step.
//
// x has shape [batch, input_size]; h has shape [batch, hidden_size] and may
// be nil, which is resolved to zeros before any computation. Returns the
// next hidden state of shape [batch, hidden_size].
func (c *RNNCell[B]) Forward(x, h *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	batch := x.Shape()[0]

	if h == nil {
		h = Zeros(tensor.Shape{batch, c.hiddenSize}, c.backend)
	}

	out := x.MatMul(c.wIH.Tensor()).Add(h.MatMul(c.wHH.Tensor()))

	if c.biasIH != nil {
		out = out.Add(c.biasIH.Tensor().Reshape(1, c.hiddenSize))
	}
	if c.biasHH != nil {
		out = out.Add(c.biasHH.Tensor().Reshape(1, c.hiddenSize))
	}

	return c.activation.Forward(out)
}

// HiddenSize returns the hidden state width.
func (c *RNNCell[B]) HiddenSize() int {
	return c.hiddenSize
}

// InputSize returns the expected input width.
func (c *RNNCell[B]) InputSize() int {
	return c.inputSize
}

// WIH returns the input-hidden weight parameter.
func (c *RNNCell[B]) WIH() *Parameter[B] {
	return c.wIH
}

// WHH returns the hidden-hidden weight parameter.
func (c *RNNCell[B]) WHH() *Parameter[B] {
	return c.wHH
}

// BiasIH returns the input-hidden bias, or nil.
func (c *RNNCell[B]) BiasIH() *Parameter[B] {
	return c.biasIH
}

// BiasHH returns the hidden-hidden bias, or nil.
func (c *RNNCell[B]) BiasHH() *Parameter[B] {
	return c.biasHH
}

// Attributes lists the weights, optional biases and the activation module.
func (c *RNNCell[B]) Attributes() []Attr[B] {
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
	attrs = append(attrs, Attr[B]{Name: "activation", Value: Child[B](c.activation)})
	return attrs
}

// RNN stacks num_layers recurrent cells over an input sequence. The first
// cell consumes the raw input width, every following cell consumes the
// hidden width produced by the layer below.
//
// State is never retained between calls: each Forward synthesizes or
// receives its initial state and returns the final state to the caller.
type RNN[B tensor.Backend] struct {
	base

	hiddenSize int
	cells      []*RNNCell[B]

	backend B
}

// NewRNN creates a stack of numLayers recurrent cells.
func NewRNN[B tensor.Backend](inputSize, hiddenSize, numLayers int, bias bool, nonlinearity Nonlinearity, backend B) *RNN[B] {
	if numLayers <= 0 {
		panic(fmt.Sprintf("RNN: invalid number of layers %d", numLayers))
	}

	cells := make([]*RNNCell[B], numLayers)
	cells[0] = NewRNNCell(inputSize, hiddenSize, bias, nonlinearity, backend)
	for i := 1; i < numLayers; i++ {
		cells[i] = NewRNNCell(hiddenSize, hiddenSize, bias, nonlinearity, backend)
	}

	return &RNN[B]{
		base:       newBase(),
		hiddenSize: hiddenSize,
		cells:      cells,
		backend:    backend,
	}
}

// Forward runs the stack over a full sequence.
//
// x has shape [seq_len, batch, input_size]; h0 has shape
// [num_layers, batch, hidden_size] and may be nil, which is resolved to
// zeros with the input's dtype and device. Returns the top layer's output
// sequence [seq_len, batch, hidden_size] and the final hidden state of
// every layer stacked as [num_layers, batch, hidden_size].
func (r *RNN[B]) Forward(x, h0 *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], *tensor.Tensor[float32, B]) {
	shape := x.Shape()
	if len(shape) != 3 {
		panic(fmt.Sprintf("RNN: expected 3D input [seq_len, batch, input_size], got shape %v", shape))
	}

	batch := shape[1]
	numLayers := len(r.cells)

	if h0 == nil {
		h0 = Zeros(tensor.Shape{numLayers, batch, r.hiddenSize}, r.backend)
	}

	initial := ops.Split(h0, 0)

	layerInput := x
	finals := make([]*tensor.Tensor[float32, B], 0, numLayers)

	for layer, cell := range r.cells {
		h := initial[layer]

		steps := ops.Split(layerInput, 0)
		outputs := make([]*tensor.Tensor[float32, B], 0, len(steps))
		for _, xt := range steps {
			h = cell.Forward(xt, h)
			outputs = append(outputs, h)
		}

		layerInput = ops.Stack(outputs, 0)
		finals = append(finals, h)
	}

	return layerInput, ops.Stack(finals, 0)
}

// HiddenSize returns the hidden state width.
func (r *RNN[B]) HiddenSize() int {
	return r.hiddenSize
}

// Cells returns the per-layer cells, bottom first.
func (r *RNN[B]) Cells() []*RNNCell[B] {
	return r.cells
}

// Attributes lists the stacked cells in layer order.
func (r *RNN[B]) Attributes() []Attr[B] {
	items := make([]Value[B], len(r.cells))
	for i, cell := range r.cells {
		items[i] = Child[B](cell)
	}

	return []Attr[B]{
		{Name: "cells", Value: List(items...)},
	}
}
