package nn

import (
	"fmt"

	"github.com/born-ml/born/tensor"
)

// Identity returns its input unchanged. Useful as a placeholder in
// composite modules.
type Identity[B tensor.Backend] struct {
	base
}

// NewIdentity creates a new Identity module.
func NewIdentity[B tensor.Backend]() *Identity[B] {
	return &Identity[B]{base: newBase()}
}

// Forward returns x unchanged.
func (i *Identity[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return x
}

// Attributes returns no attributes.
func (i *Identity[B]) Attributes() []Attr[B] {
	return nil
}

// Flatten collapses all axes after the first into one, turning
// [batch, d1, d2, ...] into [batch, d1*d2*...].
type Flatten[B tensor.Backend] struct {
	base
}

// NewFlatten creates a new Flatten module.
func NewFlatten[B tensor.Backend]() *Flatten[B] {
	return &Flatten[B]{base: newBase()}
}

// Forward reshapes x to [batch, rest].
func (f *Flatten[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := x.Shape()
	if len(shape) < 1 {
		panic("Flatten: input must have at least one axis")
	}

	rest := 1
	for _, dim := range shape[1:] {
		rest *= dim
	}

	return x.Reshape(shape[0], rest)
}

// Attributes returns no attributes.
func (f *Flatten[B]) Attributes() []Attr[B] {
	return nil
}

// Dropout zeroes each element independently with probability p during
// training and rescales the survivors by 1/(1-p); in evaluation mode it is
// the identity.
type Dropout[B tensor.Backend] struct {
	base

	p float32
}

// NewDropout creates a new Dropout module with drop probability p.
func NewDropout[B tensor.Backend](p float32) *Dropout[B] {
	if p < 0 || p >= 1 {
		panic(fmt.Sprintf("Dropout: probability must be in [0, 1), got %v", p))
	}

	return &Dropout[B]{
		base: newBase(),
		p:    p,
	}
}

// Forward applies the dropout mask in training mode and is the identity in
// evaluation mode. A fresh mask is sampled on every training-mode call.
func (d *Dropout[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if !d.Training() {
		return x
	}

	keep := 1 - d.p
	mask := Bernoulli(keep, x.Shape(), x.Backend())

	return x.Mul(mask).DivScalar(keep)
}

// P returns the drop probability.
func (d *Dropout[B]) P() float32 {
	return d.p
}

// Attributes exposes the drop probability as an opaque attribute.
func (d *Dropout[B]) Attributes() []Attr[B] {
	return []Attr[B]{
		{Name: "p", Value: Opaque[B](d.p)},
	}
}
