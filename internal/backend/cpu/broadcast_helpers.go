package cpu

import "github.com/born-ml/seq2seq/internal/tensor"

// broadcastStrides maps in onto out: stretched and missing dimensions get
// stride 0 so every output coordinate reads the same input element.
func broadcastStrides(in, out tensor.Shape) []int {
	strides := make([]int, len(out))
	inStrides := in.ComputeStrides()
	offset := len(out) - len(in)
	for i := range in {
		if in[i] != 1 {
			strides[i+offset] = inStrides[i]
		}
	}
	return strides
}

// forEachBroadcast walks out in row-major order and calls fn with the flat
// output index and the matching flat offsets into the two inputs.
func forEachBroadcast(out tensor.Shape, sa, sb []int, fn func(i, ia, ib int)) {
	n := out.NumElements()
	idx := make([]int, len(out))
	ia, ib := 0, 0
	for i := 0; i < n; i++ {
		fn(i, ia, ib)
		for d := len(out) - 1; d >= 0; d-- {
			idx[d]++
			ia += sa[d]
			ib += sb[d]
			if idx[d] < out[d] {
				break
			}
			ia -= sa[d] * out[d]
			ib -= sb[d] * out[d]
			idx[d] = 0
		}
	}
}

// splitAt returns the element counts before, at, and after dim.
func splitAt(shape tensor.Shape, dim int) (outer, size, inner int) {
	outer, inner = 1, 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	return outer, shape[dim], inner
}
