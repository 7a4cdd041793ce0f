package ops

import "github.com/born-ml/seq2seq/internal/tensor"

// ReshapeOp represents any operation that only changes the shape
// (Reshape, Unsqueeze, Squeeze). The gradient is reshaped back.
type ReshapeOp struct{ base }

// NewReshapeOp creates a new ReshapeOp.
func NewReshapeOp(x, output *tensor.RawTensor) *ReshapeOp {
	return &ReshapeOp{newBase(output, x)}
}

// Backward reshapes the gradient to the input shape.
func (op *ReshapeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Reshape(outputGrad, op.inputs[0].Shape())}
}

// TransposeOp represents a dimension permutation.
type TransposeOp struct {
	base
	perm []int
}

// NewTransposeOp creates a new TransposeOp. With no axes the permutation
// reverses the dimensions.
func NewTransposeOp(x, output *tensor.RawTensor, axes []int) *TransposeOp {
	rank := len(x.Shape())
	perm := make([]int, rank)
	for i := range perm {
		if len(axes) == 0 {
			perm[i] = rank - 1 - i
		} else {
			perm[i] = tensor.NormalizeDim(axes[i], rank)
		}
	}
	return &TransposeOp{base: newBase(output, x), perm: perm}
}

// Backward applies the inverse permutation.
func (op *TransposeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	inverse := make([]int, len(op.perm))
	for i, p := range op.perm {
		inverse[p] = i
	}
	return []*tensor.RawTensor{backend.Transpose(outputGrad, inverse...)}
}

// CatOp represents concatenation along dim.
type CatOp struct {
	base
	dim int
}

// NewCatOp creates a new CatOp. dim must already be normalized.
func NewCatOp(inputs []*tensor.RawTensor, output *tensor.RawTensor, dim int) *CatOp {
	return &CatOp{base: newBase(output, inputs...), dim: dim}
}

// Backward slices the gradient back into one piece per input.
func (op *CatOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	grads := make([]*tensor.RawTensor, len(op.inputs))
	offset := 0
	for i, in := range op.inputs {
		size := in.Shape()[op.dim]
		grads[i] = backend.Narrow(outputGrad, op.dim, offset, size)
		offset += size
	}
	return grads
}

// NarrowOp represents taking entries [start, start+length) of dim.
type NarrowOp struct {
	base
	dim, start int
}

// NewNarrowOp creates a new NarrowOp. dim must already be normalized.
func NewNarrowOp(x, output *tensor.RawTensor, dim, start int) *NarrowOp {
	return &NarrowOp{base: newBase(output, x), dim: dim, start: start}
}

// Backward pads the gradient with zeros back to the input extent.
func (op *NarrowOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	shape := op.inputs[0].Shape()
	length := outputGrad.Shape()[op.dim]
	after := shape[op.dim] - op.start - length

	parts := make([]*tensor.RawTensor, 0, 3)
	if op.start > 0 {
		parts = append(parts, zerosAlong(shape, op.dim, op.start, outputGrad))
	}
	parts = append(parts, outputGrad)
	if after > 0 {
		parts = append(parts, zerosAlong(shape, op.dim, after, outputGrad))
	}
	if len(parts) == 1 {
		return []*tensor.RawTensor{outputGrad}
	}
	return []*tensor.RawTensor{backend.Cat(parts, op.dim)}
}

func zerosAlong(shape tensor.Shape, dim, size int, like *tensor.RawTensor) *tensor.RawTensor {
	s := shape.Clone()
	s[dim] = size
	return tensor.MustNewRaw(s, like.DType(), like.Device())
}

// ExpandOp represents broadcasting x to a larger shape.
type ExpandOp struct{ base }

// NewExpandOp creates a new ExpandOp.
func NewExpandOp(x, output *tensor.RawTensor) *ExpandOp {
	return &ExpandOp{newBase(output, x)}
}

// Backward sums the gradient over the broadcast axes.
func (op *ExpandOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{reduceBroadcast(outputGrad, op.inputs[0].Shape(), backend)}
}
