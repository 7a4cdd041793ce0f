package cpu

import (
	"fmt"

	"github.com/born-ml/seq2seq/internal/tensor"
)

// Embedding gathers rows of weight [num, dim] named by int32 indices of any
// shape. The result has shape indices.Shape() + [dim].
func (cpu *CPUBackend) Embedding(weight, indices *tensor.RawTensor) *tensor.RawTensor {
	requireFloat32("embedding", weight)
	if indices.DType() != tensor.Int32 {
		panic(fmt.Sprintf("embedding: indices must be int32, got %s", indices.DType()))
	}
	ws := weight.Shape()
	if len(ws) != 2 {
		panic(fmt.Sprintf("embedding: weight must be 2D, got %v", ws))
	}
	num, dim := ws[0], ws[1]

	outShape := append(indices.Shape().Clone(), dim)
	result := tensor.MustNewRaw(outShape, tensor.Float32, cpu.device)
	w, dst := weight.AsFloat32(), result.AsFloat32()

	for i, idx := range indices.AsInt32() {
		row := int(idx)
		if row < 0 || row >= num {
			panic(fmt.Sprintf("embedding: index %d out of range [0, %d)", row, num))
		}
		copy(dst[i*dim:(i+1)*dim], w[row*dim:(row+1)*dim])
	}
	return result
}

// MaskedFill returns a copy of x with value written wherever the bool mask,
// broadcast to x's shape, is true.
func (cpu *CPUBackend) MaskedFill(x, mask *tensor.RawTensor, value float32) *tensor.RawTensor {
	requireFloat32("maskedfill", x)
	if mask.DType() != tensor.Bool {
		panic(fmt.Sprintf("maskedfill: mask must be bool, got %s", mask.DType()))
	}
	outShape, _, err := tensor.BroadcastShapes(x.Shape(), mask.Shape())
	if err != nil || !outShape.Equal(x.Shape()) {
		panic(fmt.Sprintf("maskedfill: mask %v does not broadcast to %v", mask.Shape(), x.Shape()))
	}

	result := tensor.MustNewRaw(x.Shape(), tensor.Float32, cpu.device)
	src, dst, m := x.AsFloat32(), result.AsFloat32(), mask.AsBool()
	forEachBroadcast(outShape, x.Strides(), broadcastStrides(mask.Shape(), outShape), func(i, ix, im int) {
		if m[im] {
			dst[i] = value
		} else {
			dst[i] = src[ix]
		}
	})
	return result
}
