package nn

import (
	"github.com/born-ml/born/tensor"
)

// ReLUBackend is implemented by backends with a fused ReLU kernel.
type ReLUBackend interface {
	ReLU(*tensor.RawTensor) *tensor.RawTensor
}

// SigmoidBackend is implemented by backends with a fused Sigmoid kernel.
type SigmoidBackend interface {
	Sigmoid(*tensor.RawTensor) *tensor.RawTensor
}

// TanhBackend is implemented by backends with a fused Tanh kernel.
type TanhBackend interface {
	Tanh(*tensor.RawTensor) *tensor.RawTensor
}

// ReLU applies f(x) = max(0, x) element-wise.
type ReLU[B tensor.Backend] struct {
	base
}

// NewReLU creates a new ReLU activation module.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return &ReLU[B]{base: newBase()}
}

// Forward applies ReLU. A fused backend kernel is used when available,
// otherwise the result is composed from guaranteed Backend operations.
func (r *ReLU[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	backend := x.Backend()

	if fused, ok := any(backend).(ReLUBackend); ok {
		return tensor.New[float32, B](fused.ReLU(x.Raw()), backend)
	}

	zeros := tensor.Zeros[float32](x.Shape(), backend)
	return tensor.Where(x.Gt(zeros), x, zeros)
}

// Attributes returns no attributes: ReLU owns no state.
func (r *ReLU[B]) Attributes() []Attr[B] {
	return nil
}

// Sigmoid applies f(x) = 1 / (1 + exp(-x)) element-wise.
type Sigmoid[B tensor.Backend] struct {
	base
}

// NewSigmoid creates a new Sigmoid activation module.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] {
	return &Sigmoid[B]{base: newBase()}
}

// Forward applies Sigmoid, preferring a fused backend kernel.
func (s *Sigmoid[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	backend := x.Backend()

	if fused, ok := any(backend).(SigmoidBackend); ok {
		return tensor.New[float32, B](fused.Sigmoid(x.Raw()), backend)
	}

	denom := x.MulScalar(-1).Exp().AddScalar(1)
	return tensor.Ones[float32](x.Shape(), backend).Div(denom)
}

// Attributes returns no attributes: Sigmoid owns no state.
func (s *Sigmoid[B]) Attributes() []Attr[B] {
	return nil
}

// Tanh applies the hyperbolic tangent element-wise.
type Tanh[B tensor.Backend] struct {
	base
}

// NewTanh creates a new Tanh activation module.
func NewTanh[B tensor.Backend]() *Tanh[B] {
	return &Tanh[B]{base: newBase()}
}

// Forward applies Tanh, preferring a fused backend kernel. The fallback
// uses tanh(x) = 2*sigmoid(2x) - 1.
func (t *Tanh[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	backend := x.Backend()

	if fused, ok := any(backend).(TanhBackend); ok {
		return tensor.New[float32, B](fused.Tanh(x.Raw()), backend)
	}

	denom := x.MulScalar(-2).Exp().AddScalar(1)
	sigmoid2x := tensor.Ones[float32](x.Shape(), backend).Div(denom)
	return sigmoid2x.MulScalar(2).SubScalar(1)
}

// Attributes returns no attributes: Tanh owns no state.
func (t *Tanh[B]) Attributes() []Attr[B] {
	return nil
}
