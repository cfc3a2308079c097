package nn

import (
	"fmt"

	"github.com/born-ml/born/tensor"

	"github.com/born-ml/weave/internal/ops"
)

// Embedding maps token indices to dense vectors through an explicit
// one-hot projection: indices become one-hot rows of width numEmbeddings
// which are multiplied by the weight matrix. The weight is initialized
// from N(0, 1).
type Embedding[B tensor.Backend] struct {
	base

	numEmbeddings int
	embeddingDim  int

	weight *Parameter[B] // [num_embeddings, embedding_dim]
}

// NewEmbedding creates an Embedding layer for a dictionary of
// numEmbeddings vectors of size embeddingDim.
func NewEmbedding[B tensor.Backend](numEmbeddings, embeddingDim int, backend B) *Embedding[B] {
	if numEmbeddings <= 0 || embeddingDim <= 0 {
		panic(fmt.Sprintf("Embedding: invalid size num=%d, dim=%d", numEmbeddings, embeddingDim))
	}

	weight := Randn(tensor.Shape{numEmbeddings, embeddingDim}, backend)

	return &Embedding[B]{
		base:          newBase(),
		numEmbeddings: numEmbeddings,
		embeddingDim:  embeddingDim,
		weight:        NewParameter("weight", weight),
	}
}

// Forward maps index tensors of shape [seq_len, batch] to embeddings of
// shape [seq_len, batch, embedding_dim]. Indices outside
// [0, num_embeddings) panic inside the engine.
func (e *Embedding[B]) Forward(x *tensor.Tensor[int32, B]) *tensor.Tensor[float32, B] {
	shape := x.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("Embedding: expected 2D input [seq_len, batch], got shape %v", shape))
	}

	seqLen, batch := shape[0], shape[1]

	flat := x.Reshape(seqLen * batch)
	oneHot := ops.OneHot(e.numEmbeddings, flat) // [seq_len*batch, num_embeddings]

	out := oneHot.MatMul(e.weight.Tensor())
	return out.Reshape(seqLen, batch, e.embeddingDim)
}

// Weight returns the embedding weight parameter.
func (e *Embedding[B]) Weight() *Parameter[B] {
	return e.weight
}

// NumEmbeddings returns the dictionary size.
func (e *Embedding[B]) NumEmbeddings() int {
	return e.numEmbeddings
}

// EmbeddingDim returns the embedding vector size.
func (e *Embedding[B]) EmbeddingDim() int {
	return e.embeddingDim
}

// Attributes lists the weight parameter.
func (e *Embedding[B]) Attributes() []Attr[B] {
	return []Attr[B]{
		{Name: "weight", Value: Param(e.weight)},
	}
}
