package nn

import (
	"fmt"
	"math"

	"github.com/born-ml/born/tensor"
)

// Conv is a multi-channel 2D convolution over channel-first input.
//
// Contract:
//   - input and output are channel-first: [batch, channels, height, width]
//   - square kernels only, and the spatial extent must be square (H == W)
//   - "same" padding only: padding = kernel_size / 2, so stride 1
//     preserves the spatial size and stride s produces ceil(size/s)
//   - no grouping, no dilation
//
// The kernel parameter is stored channel-last as
// [kernel, kernel, in_channels, out_channels] and transposed to the
// engine's [out, in, kernel, kernel] layout inside forward.
//
// Initialization: kernel from a Kaiming-uniform distribution with
// fan_in = in_channels*k², fan_out = out_channels*k²; bias uniform in
// ±1/sqrt(in_channels*k²).
type Conv[B tensor.Backend] struct {
	base

	inChannels  int
	outChannels int
	kernelSize  int
	stride      int

	weight *Parameter[B] // [k, k, in_channels, out_channels]
	bias   *Parameter[B] // [out_channels] or nil

	backend B
}

// NewConv creates a Conv layer with a square kernelSize x kernelSize
// kernel and the given stride.
func NewConv[B tensor.Backend](inChannels, outChannels, kernelSize, stride int, bias bool, backend B) *Conv[B] {
	if inChannels <= 0 || outChannels <= 0 {
		panic(fmt.Sprintf("Conv: invalid channels in=%d, out=%d", inChannels, outChannels))
	}
	if kernelSize <= 0 {
		panic(fmt.Sprintf("Conv: invalid kernel size %d", kernelSize))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("Conv: invalid stride %d", stride))
	}

	fanIn := inChannels * kernelSize * kernelSize
	fanOut := outChannels * kernelSize * kernelSize

	weight := KaimingUniform(
		fanIn, fanOut,
		tensor.Shape{kernelSize, kernelSize, inChannels, outChannels},
		backend,
	)

	layer := &Conv[B]{
		base:        newBase(),
		inChannels:  inChannels,
		outChannels: outChannels,
		kernelSize:  kernelSize,
		stride:      stride,
		weight:      NewParameter("weight", weight),
		backend:     backend,
	}

	if bias {
		bound := float32(1 / math.Sqrt(float64(fanIn)))
		biasInit := Uniform(-bound, bound, tensor.Shape{outChannels}, backend)
		layer.bias = NewParameter("bias", biasInit)
	}

	return layer
}

// Forward convolves x of shape [batch, in_channels, size, size] and
// returns [batch, out_channels, out_size, out_size] with
// out_size = ceil(size/stride).
func (c *Conv[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := x.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("Conv: expected 4D input [N,C,H,W], got shape %v", shape))
	}
	if shape[1] != c.inChannels {
		panic(fmt.Sprintf("Conv: expected %d input channels, got %d", c.inChannels, shape[1]))
	}
	if shape[2] != shape[3] {
		panic(fmt.Sprintf("Conv: spatial extent must be square, got %dx%d", shape[2], shape[3]))
	}

	padding := c.kernelSize / 2

	// [k, k, in, out] -> [out, in, k, k]
	kernel := c.weight.Tensor().Transpose(3, 2, 0, 1)

	raw := c.backend.Conv2D(x.Raw(), kernel.Raw(), c.stride, padding)
	out := tensor.New[float32, B](raw, c.backend)

	if c.bias != nil {
		out = out.Add(c.bias.Tensor().Reshape(1, c.outChannels, 1, 1))
	}

	return out
}

// Weight returns the kernel parameter in channel-last layout.
func (c *Conv[B]) Weight() *Parameter[B] {
	return c.weight
}

// Bias returns the bias parameter, or nil when the layer has no bias.
func (c *Conv[B]) Bias() *Parameter[B] {
	return c.bias
}

// InChannels returns the number of input channels.
func (c *Conv[B]) InChannels() int {
	return c.inChannels
}

// OutChannels returns the number of output channels.
func (c *Conv[B]) OutChannels() int {
	return c.outChannels
}

// KernelSize returns the square kernel size.
func (c *Conv[B]) KernelSize() int {
	return c.kernelSize
}

// Stride returns the stride.
func (c *Conv[B]) Stride() int {
	return c.stride
}

// Attributes lists the kernel and, when present, bias.
func (c *Conv[B]) Attributes() []Attr[B] {
	attrs := []Attr[B]{
		{Name: "weight", Value: Param(c.weight)},
	}
	if c.bias != nil {
		attrs = append(attrs, Attr[B]{Name: "bias", Value: Param(c.bias)})
	}
	return attrs
}
