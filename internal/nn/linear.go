package nn

import (
	"fmt"

	"github.com/born-ml/born/tensor"
)

// Linear applies the affine transform y = x @ W (+ b).
//
// The weight has shape [in_features, out_features] so the forward pass is a
// plain matmul without transposition. The bias, when enabled, is stored as
// a [1, out_features] row and broadcast across the batch axis.
//
// Initialization: weight from a Kaiming-uniform distribution with
// fan_in = in_features; bias from a Kaiming-uniform distribution with
// fan_in = out_features.
type Linear[B tensor.Backend] struct {
	base

	inFeatures  int
	outFeatures int

	weight *Parameter[B] // [in_features, out_features]
	bias   *Parameter[B] // [1, out_features] or nil
}

// NewLinear creates a Linear layer. When bias is false the layer has a
// single weight parameter.
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, bias bool, backend B) *Linear[B] {
	if inFeatures <= 0 || outFeatures <= 0 {
		panic(fmt.Sprintf("Linear: invalid features in=%d, out=%d", inFeatures, outFeatures))
	}

	weight := KaimingUniform(inFeatures, outFeatures, tensor.Shape{inFeatures, outFeatures}, backend)

	layer := &Linear[B]{
		base:        newBase(),
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter("weight", weight),
	}

	if bias {
		biasInit := KaimingUniform(outFeatures, 1, tensor.Shape{1, outFeatures}, backend)
		layer.bias = NewParameter("bias", biasInit)
	}

	return layer
}

// Forward computes x @ W (+ b).
//
// Input shape: [batch, in_features]; output shape: [batch, out_features].
func (l *Linear[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := x.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("Linear: expected 2D input [batch, features], got shape %v", shape))
	}
	if shape[1] != l.inFeatures {
		panic(fmt.Sprintf("Linear: expected input with %d features, got %d", l.inFeatures, shape[1]))
	}

	out := x.MatMul(l.weight.Tensor())
	if l.bias != nil {
		out = out.Add(l.bias.Tensor())
	}

	return out
}

// Weight returns the weight parameter.
func (l *Linear[B]) Weight() *Parameter[B] {
	return l.weight
}

// Bias returns the bias parameter, or nil when the layer has no bias.
func (l *Linear[B]) Bias() *Parameter[B] {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear[B]) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear[B]) OutFeatures() int {
	return l.outFeatures
}

// Attributes lists weight and, when present, bias.
func (l *Linear[B]) Attributes() []Attr[B] {
	attrs := []Attr[B]{
		{Name: "weight", Value: Param(l.weight)},
	}
	if l.bias != nil {
		attrs = append(attrs, Attr[B]{Name: "bias", Value: Param(l.bias)})
	}
	return attrs
}
