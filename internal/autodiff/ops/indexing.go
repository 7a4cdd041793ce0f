package ops

import "github.com/born-ml/seq2seq/internal/tensor"

// EmbeddingOp represents a row lookup: output[..., :] = weight[indices[...], :].
//
// Backward scatter-adds each output row gradient into the weight row it was
// read from. Rows that were looked up several times accumulate. The indices
// are integers and receive no gradient.
type EmbeddingOp struct{ base }

// NewEmbeddingOp creates a new EmbeddingOp.
func NewEmbeddingOp(weight, indices, output *tensor.RawTensor) *EmbeddingOp {
	return &EmbeddingOp{newBase(output, weight, indices)}
}

// Backward scatter-adds row gradients into a weight-shaped zero tensor.
func (op *EmbeddingOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	weight, indices := op.inputs[0], op.inputs[1]
	dim := weight.Shape()[1]

	grad := zerosLike(weight)
	dst, src := grad.AsFloat32(), outputGrad.AsFloat32()
	for i, idx := range indices.AsInt32() {
		row := dst[int(idx)*dim : (int(idx)+1)*dim]
		for j, g := range src[i*dim : (i+1)*dim] {
			row[j] += g
		}
	}
	return []*tensor.RawTensor{grad, nil}
}

// MaskedFillOp represents output = where(mask, value, x). Filled positions
// are constants, so their gradient is zero.
type MaskedFillOp struct{ base }

// NewMaskedFillOp creates a new MaskedFillOp.
func NewMaskedFillOp(x, mask, output *tensor.RawTensor) *MaskedFillOp {
	return &MaskedFillOp{newBase(output, x, mask)}
}

// Backward zeroes the gradient at masked positions.
func (op *MaskedFillOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.MaskedFill(outputGrad, op.inputs[1], 0), nil}
}
