// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/born/tensor"

	"github.com/born-ml/weave/internal/nn"
)

// Module is the base interface for all neural network components.
type Module[B tensor.Backend] = nn.Module[B]

// Layer is a Module with a single-tensor Forward method.
type Layer[B tensor.Backend] = nn.Layer[B]

// Parameter represents a trainable parameter in a neural network.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// Attributes

// Attr is a single named module attribute.
type Attr[B tensor.Backend] = nn.Attr[B]

// Value is the closed set of attribute payloads.
type Value[B tensor.Backend] = nn.Value[B]

// Entry is a key/value pair of a Dict attribute.
type Entry[B tensor.Backend] = nn.Entry[B]

// Param wraps a parameter as an attribute value.
func Param[B tensor.Backend](p *Parameter[B]) Value[B] {
	return nn.Param(p)
}

// Child wraps a nested module as an attribute value.
func Child[B tensor.Backend](m Module[B]) Value[B] {
	return nn.Child(m)
}

// List wraps an ordered sequence of attribute values.
func List[B tensor.Backend](items ...Value[B]) Value[B] {
	return nn.List(items...)
}

// Dict wraps an insertion-ordered set of named attribute values.
func Dict[B tensor.Backend](entries ...Entry[B]) Value[B] {
	return nn.Dict(entries...)
}

// Opaque wraps a non-trainable attribute value.
func Opaque[B tensor.Backend](v any) Value[B] {
	return nn.Opaque[B](v)
}

// Traversal

// Parameters returns every parameter reachable from m, flattened in
// declaration order.
func Parameters[B tensor.Backend](m Module[B]) []*Parameter[B] {
	return nn.Parameters(m)
}

// Modules returns m followed by every module reachable from it, in
// preorder.
func Modules[B tensor.Backend](m Module[B]) []Module[B] {
	return nn.Modules(m)
}

// Train puts m and every module reachable from it into training mode.
func Train[B tensor.Backend](m Module[B]) {
	nn.Train(m)
}

// Eval puts m and every module reachable from it into evaluation mode.
func Eval[B tensor.Backend](m Module[B]) {
	nn.Eval(m)
}

// Serialization

// StateDict exports every reachable parameter keyed by its dotted
// attribute path.
func StateDict[B tensor.Backend](m Module[B]) map[string]*tensor.RawTensor {
	return nn.StateDict(m)
}

// LoadStateDict copies parameter data from a state dictionary into m.
func LoadStateDict[B tensor.Backend](m Module[B], stateDict map[string]*tensor.RawTensor) error {
	return nn.LoadStateDict(m, stateDict)
}

// Layers

// Linear represents a fully connected (dense) layer.
type Linear[B tensor.Backend] = nn.Linear[B]

// NewLinear creates a new linear layer with Kaiming uniform initialization.
//
// Example:
//
//	backend := cpu.New()
//	layer := nn.NewLinear(784, 128, true, backend)
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, bias bool, backend B) *Linear[B] {
	return nn.NewLinear(inFeatures, outFeatures, bias, backend)
}

// Conv represents a 2D convolutional layer with same padding.
type Conv[B tensor.Backend] = nn.Conv[B]

// NewConv creates a new 2D convolutional layer. Padding is fixed at
// kernelSize/2, so odd kernels preserve the spatial size at stride 1.
//
// Example:
//
//	backend := cpu.New()
//	conv := nn.NewConv(3, 16, 3, 1, true, backend)
func NewConv[B tensor.Backend](inChannels, outChannels, kernelSize, stride int, bias bool, backend B) *Conv[B] {
	return nn.NewConv(inChannels, outChannels, kernelSize, stride, bias, backend)
}

// Embedding maps integer token indices to dense vectors.
type Embedding[B tensor.Backend] = nn.Embedding[B]

// NewEmbedding creates a new embedding table of numEmbeddings rows.
func NewEmbedding[B tensor.Backend](numEmbeddings, embeddingDim int, backend B) *Embedding[B] {
	return nn.NewEmbedding(numEmbeddings, embeddingDim, backend)
}

// Normalization

// BatchNorm1d normalizes each channel over the batch dimension.
type BatchNorm1d[B tensor.Backend] = nn.BatchNorm1d[B]

// NewBatchNorm1d creates a new 1D batch normalization layer.
func NewBatchNorm1d[B tensor.Backend](dim int, eps, momentum float32, backend B) *BatchNorm1d[B] {
	return nn.NewBatchNorm1d(dim, eps, momentum, backend)
}

// BatchNorm2d applies BatchNorm1d per channel over NCHW inputs.
type BatchNorm2d[B tensor.Backend] = nn.BatchNorm2d[B]

// NewBatchNorm2d creates a new 2D batch normalization layer.
func NewBatchNorm2d[B tensor.Backend](dim int, eps, momentum float32, backend B) *BatchNorm2d[B] {
	return nn.NewBatchNorm2d(dim, eps, momentum, backend)
}

// LayerNorm1d normalizes each row over the feature dimension.
type LayerNorm1d[B tensor.Backend] = nn.LayerNorm1d[B]

// NewLayerNorm1d creates a new 1D layer normalization layer.
func NewLayerNorm1d[B tensor.Backend](dim int, eps float32, backend B) *LayerNorm1d[B] {
	return nn.NewLayerNorm1d(dim, eps, backend)
}

// Recurrent

// Nonlinearity selects the activation of a plain recurrent cell.
type Nonlinearity = nn.Nonlinearity

// Recurrent cell activations.
const (
	NonlinearityTanh = nn.NonlinearityTanh
	NonlinearityReLU = nn.NonlinearityReLU
)

// RNNCell is a single-step vanilla recurrent cell.
type RNNCell[B tensor.Backend] = nn.RNNCell[B]

// NewRNNCell creates a new recurrent cell.
func NewRNNCell[B tensor.Backend](inputSize, hiddenSize int, bias bool, nonlinearity Nonlinearity, backend B) *RNNCell[B] {
	return nn.NewRNNCell(inputSize, hiddenSize, bias, nonlinearity, backend)
}

// RNN stacks recurrent cells over an input sequence.
type RNN[B tensor.Backend] = nn.RNN[B]

// NewRNN creates a stack of numLayers recurrent cells.
func NewRNN[B tensor.Backend](inputSize, hiddenSize, numLayers int, bias bool, nonlinearity Nonlinearity, backend B) *RNN[B] {
	return nn.NewRNN(inputSize, hiddenSize, numLayers, bias, nonlinearity, backend)
}

// LSTMCell is a single-step long short-term memory cell.
type LSTMCell[B tensor.Backend] = nn.LSTMCell[B]

// NewLSTMCell creates a new LSTM cell.
func NewLSTMCell[B tensor.Backend](inputSize, hiddenSize int, bias bool, backend B) *LSTMCell[B] {
	return nn.NewLSTMCell(inputSize, hiddenSize, bias, backend)
}

// LSTM stacks LSTM cells over an input sequence.
type LSTM[B tensor.Backend] = nn.LSTM[B]

// NewLSTM creates a stack of numLayers LSTM cells.
func NewLSTM[B tensor.Backend](inputSize, hiddenSize, numLayers int, bias bool, backend B) *LSTM[B] {
	return nn.NewLSTM(inputSize, hiddenSize, numLayers, bias, backend)
}

// Activations

// ReLU represents the Rectified Linear Unit activation function.
type ReLU[B tensor.Backend] = nn.ReLU[B]

// NewReLU creates a new ReLU activation layer.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return nn.NewReLU[B]()
}

// Sigmoid represents the Sigmoid activation function.
type Sigmoid[B tensor.Backend] = nn.Sigmoid[B]

// NewSigmoid creates a new Sigmoid activation layer.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] {
	return nn.NewSigmoid[B]()
}

// Tanh represents the Tanh activation function.
type Tanh[B tensor.Backend] = nn.Tanh[B]

// NewTanh creates a new Tanh activation layer.
func NewTanh[B tensor.Backend]() *Tanh[B] {
	return nn.NewTanh[B]()
}

// Composition

// Sequential chains layers left to right.
type Sequential[B tensor.Backend] = nn.Sequential[B]

// NewSequential creates a new sequential container.
//
// Example:
//
//	model := nn.NewSequential[*cpu.Backend](
//	    nn.NewLinear(784, 128, true, backend),
//	    nn.NewReLU[*cpu.Backend](),
//	    nn.NewLinear(128, 10, true, backend),
//	)
func NewSequential[B tensor.Backend](layers ...Layer[B]) *Sequential[B] {
	return nn.NewSequential(layers...)
}

// Residual adds a layer's output to its input.
type Residual[B tensor.Backend] = nn.Residual[B]

// NewResidual creates a new residual wrapper around fn.
func NewResidual[B tensor.Backend](fn Layer[B]) *Residual[B] {
	return nn.NewResidual(fn)
}

// Identity passes its input through unchanged.
type Identity[B tensor.Backend] = nn.Identity[B]

// NewIdentity creates a new identity layer.
func NewIdentity[B tensor.Backend]() *Identity[B] {
	return nn.NewIdentity[B]()
}

// Flatten collapses all trailing axes into one.
type Flatten[B tensor.Backend] = nn.Flatten[B]

// NewFlatten creates a new flatten layer.
func NewFlatten[B tensor.Backend]() *Flatten[B] {
	return nn.NewFlatten[B]()
}

// Dropout randomly zeroes elements during training.
type Dropout[B tensor.Backend] = nn.Dropout[B]

// NewDropout creates a new dropout layer with drop probability p in [0, 1).
func NewDropout[B tensor.Backend](p float32) *Dropout[B] {
	return nn.NewDropout[B](p)
}

// Loss

// SoftmaxLoss computes mean softmax cross-entropy over a batch.
type SoftmaxLoss[B tensor.Backend] = nn.SoftmaxLoss[B]

// NewSoftmaxLoss creates a new softmax cross-entropy loss.
func NewSoftmaxLoss[B tensor.Backend]() *SoftmaxLoss[B] {
	return nn.NewSoftmaxLoss[B]()
}

// Initializers

// Uniform samples from U(low, high).
func Uniform[B tensor.Backend](low, high float32, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.Uniform(low, high, shape, backend)
}

// KaimingUniform samples from U(-bound, bound) with bound = sqrt(6/fanIn).
func KaimingUniform[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.KaimingUniform(fanIn, fanOut, shape, backend)
}
