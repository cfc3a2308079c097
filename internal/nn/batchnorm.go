package nn

import (
	"fmt"

	"github.com/born-ml/born/tensor"

	"github.com/born-ml/weave/internal/ops"
)

// BatchNorm1d normalizes 2D input [batch, dim] per channel.
//
// In training mode it normalizes with the biased statistics of the current
// batch and folds them into running estimates by exponential smoothing:
//
//	running = (1-momentum)*running + momentum*batch_stat
//
// The batch statistics enter the running update detached, so the running
// estimates never participate in gradient computation. In evaluation mode
// the stored running estimates are used instead of batch statistics. Both
// modes finish with the learned per-channel affine transform.
type BatchNorm1d[B tensor.Backend] struct {
	base

	dim      int
	eps      float32
	momentum float32

	weight *Parameter[B] // per-channel scale [dim]
	bias   *Parameter[B] // per-channel shift [dim]

	// Running statistics: owned exclusively by this layer, mutated only
	// through updateRunning, never gradient-tracked.
	runningMean *tensor.Tensor[float32, B]
	runningVar  *tensor.Tensor[float32, B]
}

// NewBatchNorm1d creates a BatchNorm1d layer over dim channels. Typical
// values are eps=1e-5, momentum=0.1.
func NewBatchNorm1d[B tensor.Backend](dim int, eps, momentum float32, backend B) *BatchNorm1d[B] {
	if dim <= 0 {
		panic(fmt.Sprintf("BatchNorm1d: invalid dim %d", dim))
	}

	return &BatchNorm1d[B]{
		base:        newBase(),
		dim:         dim,
		eps:         eps,
		momentum:    momentum,
		weight:      NewParameter("weight", Ones(tensor.Shape{dim}, backend)),
		bias:        NewParameter("bias", Zeros(tensor.Shape{dim}, backend)),
		runningMean: Zeros(tensor.Shape{dim}, backend),
		runningVar:  Ones(tensor.Shape{dim}, backend),
	}
}

// Forward normalizes x of shape [batch, dim].
func (bn *BatchNorm1d[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := x.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("BatchNorm1d: expected 2D input [batch, dim], got shape %v", shape))
	}
	if shape[1] != bn.dim {
		panic(fmt.Sprintf("BatchNorm1d: expected %d channels, got %d", bn.dim, shape[1]))
	}

	var mean, variance *tensor.Tensor[float32, B]
	if bn.Training() {
		n := float32(shape[0])

		mean = ops.SumDim(x, 0, false).DivScalar(n) // [dim]
		centered := x.Sub(mean.Reshape(1, bn.dim))
		variance = ops.SumDim(centered.Mul(centered), 0, false).DivScalar(n) // biased

		bn.updateRunning(mean.Detach(), variance.Detach())
	} else {
		mean = bn.runningMean
		variance = bn.runningVar
	}

	std := variance.Reshape(1, bn.dim).AddScalar(bn.eps).Sqrt()
	normalized := x.Sub(mean.Reshape(1, bn.dim)).Div(std)

	scale := bn.weight.Tensor().Reshape(1, bn.dim)
	shift := bn.bias.Tensor().Reshape(1, bn.dim)

	return normalized.Mul(scale).Add(shift)
}

// updateRunning is the single mutation point of the running statistics.
// Both arguments must already be detached.
func (bn *BatchNorm1d[B]) updateRunning(mean, variance *tensor.Tensor[float32, B]) {
	decay := 1 - bn.momentum
	bn.runningMean = bn.runningMean.MulScalar(decay).Add(mean.MulScalar(bn.momentum))
	bn.runningVar = bn.runningVar.MulScalar(decay).Add(variance.MulScalar(bn.momentum))
}

// Weight returns the per-channel scale parameter.
func (bn *BatchNorm1d[B]) Weight() *Parameter[B] {
	return bn.weight
}

// Bias returns the per-channel shift parameter.
func (bn *BatchNorm1d[B]) Bias() *Parameter[B] {
	return bn.bias
}

// RunningMean returns the current running mean estimate.
func (bn *BatchNorm1d[B]) RunningMean() *tensor.Tensor[float32, B] {
	return bn.runningMean
}

// RunningVar returns the current running variance estimate.
func (bn *BatchNorm1d[B]) RunningVar() *tensor.Tensor[float32, B] {
	return bn.runningVar
}

// Attributes lists the affine parameters; the running statistics appear as
// opaque values so they are visible but never discovered as trainable
// state.
func (bn *BatchNorm1d[B]) Attributes() []Attr[B] {
	return []Attr[B]{
		{Name: "weight", Value: Param(bn.weight)},
		{Name: "bias", Value: Param(bn.bias)},
		{Name: "running_mean", Value: Opaque[B](bn.runningMean)},
		{Name: "running_var", Value: Opaque[B](bn.runningVar)},
	}
}

// BatchNorm2d applies BatchNorm1d to channel-first 4D input by permuting
// to channel-last, flattening the batch and spatial axes into one, and
// permuting back:
//
//	[N,C,H,W] -> [N,H,W,C] -> [N*H*W, C] -> BatchNorm1d -> back
type BatchNorm2d[B tensor.Backend] struct {
	base

	bn *BatchNorm1d[B]
}

// NewBatchNorm2d creates a BatchNorm2d layer over dim channels.
func NewBatchNorm2d[B tensor.Backend](dim int, eps, momentum float32, backend B) *BatchNorm2d[B] {
	return &BatchNorm2d[B]{
		base: newBase(),
		bn:   NewBatchNorm1d(dim, eps, momentum, backend),
	}
}

// Forward normalizes x of shape [batch, channels, height, width].
func (bn *BatchNorm2d[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := x.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("BatchNorm2d: expected 4D input [N,C,H,W], got shape %v", shape))
	}

	n, c, h, w := shape[0], shape[1], shape[2], shape[3]

	// The wrapped layer follows this module's mode flag.
	bn.bn.SetTraining(bn.Training())

	flat := x.Transpose(0, 2, 3, 1).Reshape(n*h*w, c)
	normalized := bn.bn.Forward(flat)

	return normalized.Reshape(n, h, w, c).Transpose(0, 3, 1, 2)
}

// Inner returns the wrapped BatchNorm1d carrying the parameters and
// running statistics.
func (bn *BatchNorm2d[B]) Inner() *BatchNorm1d[B] {
	return bn.bn
}

// Attributes lists the wrapped BatchNorm1d.
func (bn *BatchNorm2d[B]) Attributes() []Attr[B] {
	return []Attr[B]{
		{Name: "bn", Value: Child[B](bn.bn)},
	}
}
