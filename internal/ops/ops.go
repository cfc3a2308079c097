// Package ops provides tensor operations composed from the Born engine's
// Backend capability surface that the engine does not expose directly:
// axis-wise split and stack, numerically stable log-sum-exp, one-hot
// encoding, and per-dimension reductions.
//
// Everything here is generic over B tensor.Backend and builds only on
// operations every backend is required to implement.
package ops

import (
	"fmt"

	"github.com/born-ml/born/tensor"
)

// Split slices t along dim into one tensor per index, each with dim removed.
//
// Splitting a [L, B, H] tensor along dim 0 yields L tensors of shape [B, H].
func Split[T tensor.DType, B tensor.Backend](t *tensor.Tensor[T, B], dim int) []*tensor.Tensor[T, B] {
	n := t.Shape()[dim]

	chunks := t.Chunk(n, dim)
	out := make([]*tensor.Tensor[T, B], n)
	for i, chunk := range chunks {
		out[i] = chunk.Squeeze(dim)
	}

	return out
}

// Stack joins same-shape tensors along a new axis at position dim.
//
// Stacking L tensors of shape [B, H] along dim 0 yields [L, B, H].
func Stack[T tensor.DType, B tensor.Backend](tensors []*tensor.Tensor[T, B], dim int) *tensor.Tensor[T, B] {
	if len(tensors) == 0 {
		panic("ops: Stack of zero tensors")
	}

	expanded := make([]*tensor.Tensor[T, B], len(tensors))
	for i, t := range tensors {
		expanded[i] = t.Unsqueeze(dim)
	}

	return tensor.Cat(expanded, dim)
}

// SumDim sums t along dim. With keepDim the reduced axis is kept with
// size 1, otherwise it is removed.
func SumDim[B tensor.Backend](t *tensor.Tensor[float32, B], dim int, keepDim bool) *tensor.Tensor[float32, B] {
	raw := t.Backend().SumDim(t.Raw(), dim, keepDim)
	return tensor.New[float32, B](raw, t.Backend())
}

// MeanDim averages t along dim. With keepDim the reduced axis is kept with
// size 1, otherwise it is removed.
func MeanDim[B tensor.Backend](t *tensor.Tensor[float32, B], dim int, keepDim bool) *tensor.Tensor[float32, B] {
	raw := t.Backend().MeanDim(t.Raw(), dim, keepDim)
	return tensor.New[float32, B](raw, t.Backend())
}

// LogSumExp computes log(sum(exp(t))) along dim, with the reduced axis
// removed.
//
// The row maximum is subtracted before exponentiation so large logits do
// not overflow. The maximum enters as a detached constant; the gradient of
// log-sum-exp flows through the shifted exponentials, which is exact almost
// everywhere.
func LogSumExp[B tensor.Backend](t *tensor.Tensor[float32, B], dim int) *tensor.Tensor[float32, B] {
	index := t.Argmax(dim).Unsqueeze(dim)
	rowMax := t.Gather(dim, index).Detach()

	shifted := t.Sub(rowMax)
	sum := SumDim(shifted.Exp(), dim, true)

	return sum.Log().Add(rowMax).Squeeze(dim)
}

// OneHot encodes an int32 index tensor as float32 one-hot vectors of width
// n, appending n as a trailing axis: indices of shape [N] produce [N, n].
//
// Encoding is implemented as a row lookup into the identity matrix, so it
// composes with the engine's embedding primitive. Out-of-range indices
// panic inside the engine.
func OneHot[B tensor.Backend](n int, indices *tensor.Tensor[int32, B]) *tensor.Tensor[float32, B] {
	if n <= 0 {
		panic(fmt.Sprintf("ops: OneHot width must be positive, got %d", n))
	}

	backend := indices.Backend()
	eye := tensor.Eye[float32](n, backend)

	raw := backend.Embedding(eye.Raw(), indices.Raw())
	return tensor.New[float32, B](raw, backend)
}
