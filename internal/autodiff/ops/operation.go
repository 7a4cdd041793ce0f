// Package ops defines the differentiable operations recorded on a gradient
// tape.
//
// Each operation keeps references to its inputs and output from the forward
// pass and maps an output gradient to input gradients:
//   - AddOp, SubOp, MulOp, DivOp: broadcasting arithmetic, gradients summed
//     back over stretched axes
//   - MatMulOp, BatchMatMulOp: d(A@B)/dA = grad@B^T, d(A@B)/dB = A^T@grad
//   - SoftmaxOp: s * (grad - Σ grad*s) along the normalized dim
//   - EmbeddingOp: scatter-add of row gradients into the weight matrix
package ops

import "github.com/born-ml/seq2seq/internal/tensor"

// Operation represents a differentiable operation in the computation graph.
type Operation interface {
	// Backward computes gradients for inputs given the output gradient.
	// The result is aligned with Inputs(); a nil entry means the input
	// receives no gradient (integer indices, masks).
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the input tensors for this operation.
	Inputs() []*tensor.RawTensor

	// Output returns the output tensor produced by this operation.
	Output() *tensor.RawTensor
}

// base carries the bookkeeping shared by every operation.
type base struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

func newBase(output *tensor.RawTensor, inputs ...*tensor.RawTensor) base {
	return base{inputs: inputs, output: output}
}

// Inputs returns the input tensors.
func (b *base) Inputs() []*tensor.RawTensor {
	return b.inputs
}

// Output returns the output tensor.
func (b *base) Output() *tensor.RawTensor {
	return b.output
}
