package ops

import "github.com/born-ml/seq2seq/internal/tensor"

// SoftmaxOp represents softmax along an arbitrary dimension.
//
// The Jacobian is ∂s_i/∂x_j = s_i * (δ_ij - s_j), which gives
//
//	∂L/∂x = s * (∂L/∂s - Σ_dim(∂L/∂s * s))
//
// Positions that were -Inf on the way in have s = 0 and so receive no
// gradient.
type SoftmaxOp struct {
	base
	dim int
}

// NewSoftmaxOp creates a new SoftmaxOp. dim must already be normalized.
func NewSoftmaxOp(x, output *tensor.RawTensor, dim int) *SoftmaxOp {
	return &SoftmaxOp{base: newBase(output, x), dim: dim}
}

// Backward computes the softmax vector-Jacobian product.
func (op *SoftmaxOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	s := op.output
	dot := backend.SumDim(backend.Mul(outputGrad, s), op.dim, true)
	return []*tensor.RawTensor{backend.Mul(s, backend.Sub(outputGrad, dot))}
}
