package bert

import (
	"fmt"
	"math"

	"github.com/simon-perriard/fenwicks/tensor"
)

// AttentionMask expands a [batch, seq] validity mask to the
// [batch, seq, seq] attention mask: entry (i, j) is the validity flag
// of destination token j, repeated for every source token i. Mask
// values must be 0 or 1.
func AttentionMask(mask *tensor.IntTensor, b tensor.Backend) *tensor.Tensor {
	if mask.Rank() != 2 {
		panic(fmt.Sprintf("bert.AttentionMask: expected rank 2 mask, got shape %v", mask.Shape()))
	}
	batch, seq := mask.Shape()[0], mask.Shape()[1]
	ones := tensor.Ones(tensor.Shape{batch, seq, 1}, b)
	return ones.Mul(mask.Float(b).Reshape(batch, 1, seq))
}

// attentionBias converts a [batch, seq, seq] attention mask into the
// additive score bias [batch, 1, seq, seq]: zero where attention is
// allowed and -Inf where it is masked, so the softmax assigns masked
// pairs a weight of exactly zero.
func attentionBias(mask *tensor.Tensor) *tensor.Tensor {
	shape := mask.Shape()
	if len(shape) != 3 || shape[1] != shape[2] {
		panic(fmt.Sprintf("bert: attentionBias: expected [batch, seq, seq] mask, got shape %v", shape))
	}
	negInf := float32(math.Inf(-1))
	src := mask.Data()
	data := make([]float32, len(src))
	for i, v := range src {
		if v == 0 {
			data[i] = negInf
		}
	}
	return tensor.New(data, tensor.Shape{shape[0], 1, shape[1], shape[2]}, mask.Backend())
}
