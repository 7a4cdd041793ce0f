package ops

import "github.com/born-ml/seq2seq/internal/tensor"

// SumDimOp represents a sum along one dimension.
// Every input element contributes with weight 1, so the gradient is the
// output gradient broadcast back over the reduced dimension.
type SumDimOp struct {
	base
	dim int
}

// NewSumDimOp creates a new SumDimOp. dim must already be normalized.
func NewSumDimOp(x, output *tensor.RawTensor, dim int) *SumDimOp {
	return &SumDimOp{base: newBase(output, x), dim: dim}
}

// Backward broadcasts the gradient over the reduced dimension.
func (op *SumDimOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{expandReduced(outputGrad, op.inputs[0].Shape(), op.dim, backend)}
}

// MeanDimOp represents a mean along one dimension.
type MeanDimOp struct {
	base
	dim int
}

// NewMeanDimOp creates a new MeanDimOp. dim must already be normalized.
func NewMeanDimOp(x, output *tensor.RawTensor, dim int) *MeanDimOp {
	return &MeanDimOp{base: newBase(output, x), dim: dim}
}

// Backward broadcasts grad / n over the reduced dimension.
func (op *MeanDimOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	shape := op.inputs[0].Shape()
	grad := expandReduced(outputGrad, shape, op.dim, backend)
	return []*tensor.RawTensor{backend.MulScalar(grad, 1/float32(shape[op.dim]))}
}

// expandReduced restores a reduced gradient to inputShape. The gradient may
// or may not have kept the reduced dimension.
func expandReduced(grad *tensor.RawTensor, inputShape tensor.Shape, dim int, backend tensor.Backend) *tensor.RawTensor {
	kept := backend.Reshape(grad, keepDimShape(inputShape, dim))
	return backend.Expand(kept, inputShape)
}
