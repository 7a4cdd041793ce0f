package ops

import "github.com/born-ml/seq2seq/internal/tensor"

// ExpOp represents output = e^x. d(e^x)/dx = e^x, so the cached output is reused.
type ExpOp struct{ base }

// NewExpOp creates a new ExpOp.
func NewExpOp(x, output *tensor.RawTensor) *ExpOp {
	return &ExpOp{newBase(output, x)}
}

// Backward computes grad * output.
func (op *ExpOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Mul(outputGrad, op.output)}
}

// RsqrtOp represents output = 1/sqrt(x). d/dx = -0.5 * output^3.
type RsqrtOp struct{ base }

// NewRsqrtOp creates a new RsqrtOp.
func NewRsqrtOp(x, output *tensor.RawTensor) *RsqrtOp {
	return &RsqrtOp{newBase(output, x)}
}

// Backward computes grad * -0.5 * output^3.
func (op *RsqrtOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	y := op.output
	cube := backend.Mul(backend.Mul(y, y), y)
	return []*tensor.RawTensor{backend.Mul(outputGrad, backend.MulScalar(cube, -0.5))}
}

// TanhOp represents output = tanh(x). d/dx = 1 - output^2.
type TanhOp struct{ base }

// NewTanhOp creates a new TanhOp.
func NewTanhOp(x, output *tensor.RawTensor) *TanhOp {
	return &TanhOp{newBase(output, x)}
}

// Backward computes grad * (1 - output^2).
func (op *TanhOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	y := op.output
	deriv := backend.AddScalar(backend.MulScalar(backend.Mul(y, y), -1), 1)
	return []*tensor.RawTensor{backend.Mul(outputGrad, deriv)}
}

// SigmoidOp represents output = σ(x). d/dx = output * (1 - output).
type SigmoidOp struct{ base }

// NewSigmoidOp creates a new SigmoidOp.
func NewSigmoidOp(x, output *tensor.RawTensor) *SigmoidOp {
	return &SigmoidOp{newBase(output, x)}
}

// Backward computes grad * output * (1 - output).
func (op *SigmoidOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	y := op.output
	deriv := backend.Mul(y, backend.AddScalar(backend.MulScalar(y, -1), 1))
	return []*tensor.RawTensor{backend.Mul(outputGrad, deriv)}
}
