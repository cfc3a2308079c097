package nn

import (
	"fmt"

	"github.com/born-ml/born/tensor"

	"github.com/born-ml/weave/internal/ops"
)

// SoftmaxLoss computes the mean softmax cross-entropy over a batch of
// logits. It carries no parameters and ignores training mode.
type SoftmaxLoss[B tensor.Backend] struct {
	base
}

// NewSoftmaxLoss creates a softmax cross-entropy loss.
func NewSoftmaxLoss[B tensor.Backend]() *SoftmaxLoss[B] {
	return &SoftmaxLoss[B]{base: newBase()}
}

// Forward computes the loss for logits of shape [batch, classes] against
// integer class labels of shape [batch]. The result is a scalar tensor:
// mean over the batch of logsumexp(logits_i) - logits_i[y_i].
func (s *SoftmaxLoss[B]) Forward(logits *tensor.Tensor[float32, B], y *tensor.Tensor[int32, B]) *tensor.Tensor[float32, B] {
	shape := logits.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("SoftmaxLoss: expected 2D logits [batch, classes], got shape %v", shape))
	}
	if len(y.Shape()) != 1 || y.Shape()[0] != shape[0] {
		panic(fmt.Sprintf("SoftmaxLoss: expected labels of shape [%d], got shape %v", shape[0], y.Shape()))
	}

	batch, classes := shape[0], shape[1]

	oneHot := ops.OneHot(classes, y)
	lse := ops.LogSumExp(logits, 1)
	picked := ops.SumDim(logits.Mul(oneHot), 1, false)

	return lse.Sub(picked).Sum().DivScalar(float32(batch))
}

// Attributes reports no attributes.
func (s *SoftmaxLoss[B]) Attributes() []Attr[B] {
	return nil
}
