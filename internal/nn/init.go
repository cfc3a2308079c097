package nn

import (
	"math"
	"math/rand"

	"github.com/born-ml/born/tensor"
)

// Uniform creates a tensor with values drawn from U(low, high).
func Uniform[B tensor.Backend](low, high float32, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	t := tensor.Zeros[float32](shape, backend)

	data := t.Data()
	for i := range data {
		//nolint:gosec // math/rand is appropriate for weight initialization
		data[i] = low + rand.Float32()*(high-low)
	}

	return t
}

// KaimingUniform creates a tensor with values drawn from
// U(-bound, bound) where bound = sqrt(6 / fan_in).
//
// This keeps the variance of activations roughly constant across layers
// with rectifier nonlinearities. fanOut is accepted for call-site symmetry
// with other initializers but does not affect the bound.
func KaimingUniform[B tensor.Backend](fanIn, _ int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	bound := float32(math.Sqrt(6.0 / float64(fanIn)))
	return Uniform(-bound, bound, shape, backend)
}

// Zeros creates a tensor filled with zeros.
func Zeros[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Zeros[float32](shape, backend)
}

// Ones creates a tensor filled with ones.
func Ones[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Ones[float32](shape, backend)
}

// Randn creates a tensor with values drawn from N(0, 1).
func Randn[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Randn[float32](shape, backend)
}

// Bernoulli creates a 0/1 mask where each element is 1 with probability
// keepProb. Masks are constants: they are built from the engine's uniform
// sampler and never require gradients.
func Bernoulli[B tensor.Backend](keepProb float32, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	u := tensor.Rand[float32](shape, backend)
	threshold := tensor.Full[float32](shape, keepProb, backend)

	ones := tensor.Ones[float32](shape, backend)
	zeros := tensor.Zeros[float32](shape, backend)

	return tensor.Where(u.Lt(threshold), ones, zeros)
}
