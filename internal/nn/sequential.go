package nn

import (
	"fmt"

	"github.com/born-ml/born/tensor"
)

// Sequential chains layers so each layer's output becomes the next layer's
// input. It owns no parameters of its own.
//
//	model := nn.NewSequential[B](
//	    nn.NewLinear[B](784, 128, true, backend),
//	    nn.NewReLU[B](),
//	    nn.NewLinear[B](128, 10, true, backend),
//	)
type Sequential[B tensor.Backend] struct {
	base

	layers []Layer[B]
}

// NewSequential creates a Sequential container over the given layers.
func NewSequential[B tensor.Backend](layers ...Layer[B]) *Sequential[B] {
	return &Sequential[B]{
		base:   newBase(),
		layers: layers,
	}
}

// Forward applies every layer in order.
func (s *Sequential[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	out := x
	for _, layer := range s.layers {
		out = layer.Forward(out)
	}
	return out
}

// Add appends a layer to the sequence.
func (s *Sequential[B]) Add(layer Layer[B]) {
	s.layers = append(s.layers, layer)
}

// Len returns the number of layers in the sequence.
func (s *Sequential[B]) Len() int {
	return len(s.layers)
}

// Layer returns the layer at index. Panics if index is out of bounds.
func (s *Sequential[B]) Layer(index int) Layer[B] {
	if index < 0 || index >= len(s.layers) {
		panic(fmt.Sprintf("Sequential: layer index %d out of bounds [0, %d)", index, len(s.layers)))
	}
	return s.layers[index]
}

// Attributes lists the chained layers in construction order.
func (s *Sequential[B]) Attributes() []Attr[B] {
	items := make([]Value[B], len(s.layers))
	for i, layer := range s.layers {
		items[i] = Child[B](layer)
	}

	return []Attr[B]{
		{Name: "layers", Value: List(items...)},
	}
}

// Residual computes x + fn(x). The inner layer's output shape must equal
// the input shape; anything else surfaces as the engine's broadcast panic
// from the addition.
type Residual[B tensor.Backend] struct {
	base

	fn Layer[B]
}

// NewResidual creates a Residual wrapper around fn.
func NewResidual[B tensor.Backend](fn Layer[B]) *Residual[B] {
	return &Residual[B]{
		base: newBase(),
		fn:   fn,
	}
}

// Forward returns x + fn(x).
func (r *Residual[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return x.Add(r.fn.Forward(x))
}

// Attributes lists the wrapped layer.
func (r *Residual[B]) Attributes() []Attr[B] {
	return []Attr[B]{
		{Name: "fn", Value: Child[B](r.fn)},
	}
}
