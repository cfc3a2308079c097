package nn

import (
	"github.com/born-ml/born/tensor"
)

// Parameter is a tensor marked as trainable. Parameters are the leaves of
// the module attribute tree: whatever Parameters() discovers is exactly the
// set of tensors an optimizer should update.
//
// A parameter is created once at module construction time and is exclusively
// owned by the module that declares it; modules never alias each other's
// parameters. Non-trainable auxiliary tensors (running statistics) are
// plain tensors, not Parameters.
type Parameter[B tensor.Backend] struct {
	name   string
	tensor *tensor.Tensor[float32, B]
	grad   *tensor.Tensor[float32, B]
}

// NewParameter creates a trainable parameter from an initialized tensor.
//
// The name is local to the owning module ("weight", "W_ih"); state-dict
// paths are derived from attribute names instead, so the parameter name is
// informational only.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter name.
func (p *Parameter[B]) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[float32, B] {
	return p.tensor
}

// Grad returns the gradient tensor, or nil before the first backward pass.
func (p *Parameter[B]) Grad() *tensor.Tensor[float32, B] {
	return p.grad
}

// SetGrad sets the gradient tensor. Called by the optimizer or the engine's
// backward pass, never by layers.
func (p *Parameter[B]) SetGrad(grad *tensor.Tensor[float32, B]) {
	p.grad = grad
}

// ZeroGrad clears the gradient so iterations do not accumulate into each
// other.
func (p *Parameter[B]) ZeroGrad() {
	p.grad = nil
}
