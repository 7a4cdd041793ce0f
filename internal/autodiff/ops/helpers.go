package ops

import (
	"fmt"

	"github.com/born-ml/seq2seq/internal/tensor"
)

// reduceBroadcast sums a gradient back down to the shape of the input it
// flows to, undoing NumPy broadcasting.
//
// Example:
//
//	Forward:  a[3,1] + b[3,4] -> c[3,4]  (a was stretched along dim 1)
//	Backward: grad_c[3,4] -> grad_a[3,1] (sum along dim 1, keepDim)
func reduceBroadcast(grad *tensor.RawTensor, target tensor.Shape, backend tensor.Backend) *tensor.RawTensor {
	if grad.Shape().Equal(target) {
		return grad
	}
	if len(target) > len(grad.Shape()) {
		panic(fmt.Sprintf("reduceBroadcast: gradient %v has lower rank than target %v", grad.Shape(), target))
	}

	result := grad
	for len(result.Shape()) > len(target) {
		result = backend.SumDim(result, 0, false)
	}
	for i, d := range target {
		if d == 1 && result.Shape()[i] != 1 {
			result = backend.SumDim(result, i, true)
		}
	}
	return result
}

// keepDimShape returns shape with dim set to 1.
func keepDimShape(shape tensor.Shape, dim int) tensor.Shape {
	out := shape.Clone()
	out[dim] = 1
	return out
}

// zerosLike allocates a zero tensor shaped like x.
func zerosLike(x *tensor.RawTensor) *tensor.RawTensor {
	return tensor.MustNewRaw(x.Shape(), x.DType(), x.Device())
}
