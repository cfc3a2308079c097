package nn

import (
	"fmt"

	"github.com/born-ml/born/tensor"

	"github.com/born-ml/weave/internal/ops"
)

// LayerNorm1d normalizes each row of a 2D input across the feature axis:
//
//	y = weight * (x - mean(x)) / sqrt(var(x) + eps) + bias
//
// Mean and biased variance are computed per example, so the layer keeps no
// running state and behaves identically in training and evaluation mode.
type LayerNorm1d[B tensor.Backend] struct {
	base

	dim int
	eps float32

	weight *Parameter[B] // per-channel scale [dim]
	bias   *Parameter[B] // per-channel shift [dim]
}

// NewLayerNorm1d creates a LayerNorm1d layer over dim features. A typical
// eps is 1e-5.
func NewLayerNorm1d[B tensor.Backend](dim int, eps float32, backend B) *LayerNorm1d[B] {
	if dim <= 0 {
		panic(fmt.Sprintf("LayerNorm1d: invalid dim %d", dim))
	}

	return &LayerNorm1d[B]{
		base:   newBase(),
		dim:    dim,
		eps:    eps,
		weight: NewParameter("weight", Ones(tensor.Shape{dim}, backend)),
		bias:   NewParameter("bias", Zeros(tensor.Shape{dim}, backend)),
	}
}

// Forward normalizes x of shape [batch, dim] row by row.
func (ln *LayerNorm1d[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := x.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("LayerNorm1d: expected 2D input [batch, dim], got shape %v", shape))
	}
	if shape[1] != ln.dim {
		panic(fmt.Sprintf("LayerNorm1d: expected %d features, got %d", ln.dim, shape[1]))
	}

	mean := ops.MeanDim(x, 1, true) // [batch, 1]
	centered := x.Sub(mean)
	variance := ops.MeanDim(centered.Mul(centered), 1, true) // biased, [batch, 1]

	normalized := centered.Div(variance.AddScalar(ln.eps).Sqrt())

	scale := ln.weight.Tensor().Reshape(1, ln.dim)
	shift := ln.bias.Tensor().Reshape(1, ln.dim)

	return normalized.Mul(scale).Add(shift)
}

// Weight returns the per-channel scale parameter.
func (ln *LayerNorm1d[B]) Weight() *Parameter[B] {
	return ln.weight
}

// Bias returns the per-channel shift parameter.
func (ln *LayerNorm1d[B]) Bias() *Parameter[B] {
	return ln.bias
}

// Attributes lists the affine parameters.
func (ln *LayerNorm1d[B]) Attributes() []Attr[B] {
	return []Attr[B]{
		{Name: "weight", Value: Param(ln.weight)},
		{Name: "bias", Value: Param(ln.bias)},
	}
}
