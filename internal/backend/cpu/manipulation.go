package cpu

import (
	"fmt"

	"github.com/born-ml/seq2seq/internal/tensor"
)

// Reshape returns a view of x with a new shape. A single -1 entry is
// inferred from the element count.
func (cpu *CPUBackend) Reshape(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	return x.View(inferShape(x.NumElements(), shape))
}

func inferShape(numElements int, shape tensor.Shape) tensor.Shape {
	out := shape.Clone()
	infer := -1
	known := 1
	for i, d := range out {
		if d == -1 {
			if infer >= 0 {
				panic(fmt.Sprintf("reshape: more than one -1 in %v", shape))
			}
			infer = i
			continue
		}
		known *= d
	}
	if infer >= 0 {
		if known == 0 || numElements%known != 0 {
			panic(fmt.Sprintf("reshape: cannot infer dimension of %v for %d elements", shape, numElements))
		}
		out[infer] = numElements / known
	}
	if out.NumElements() != numElements {
		panic(fmt.Sprintf("reshape: cannot reshape %d elements into %v", numElements, shape))
	}
	return out
}

// Transpose permutes the dimensions of x. With no axes it reverses them.
func (cpu *CPUBackend) Transpose(x *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	inShape := x.Shape()
	rank := len(inShape)
	if len(axes) == 0 {
		axes = make([]int, rank)
		for i := range axes {
			axes[i] = rank - 1 - i
		}
	}
	if len(axes) != rank {
		panic(fmt.Sprintf("transpose: %d axes for rank %d", len(axes), rank))
	}

	perm := make([]int, rank)
	outShape := make(tensor.Shape, rank)
	seen := make([]bool, rank)
	for i, a := range axes {
		a = tensor.NormalizeDim(a, rank)
		if seen[a] {
			panic(fmt.Sprintf("transpose: repeated axis %d in %v", a, axes))
		}
		seen[a] = true
		perm[i] = a
		outShape[i] = inShape[a]
	}

	result := tensor.MustNewRaw(outShape, x.DType(), cpu.device)
	es := x.DType().Size()
	src, dst := x.Bytes(), result.Bytes()

	// Input strides reordered to output order.
	inStrides := x.Strides()
	permStrides := make([]int, rank)
	for i, a := range perm {
		permStrides[i] = inStrides[a]
	}
	forEachBroadcast(outShape, permStrides, make([]int, rank), func(i, srcIdx, _ int) {
		copy(dst[i*es:(i+1)*es], src[srcIdx*es:(srcIdx+1)*es])
	})
	return result
}

// Cat concatenates tensors along dim.
func (cpu *CPUBackend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(tensors) == 0 {
		panic("cat: at least one tensor required")
	}
	first := tensors[0].Shape()
	dim = tensor.NormalizeDim(dim, len(first))
	dtype := tensors[0].DType()

	outShape := first.Clone()
	outShape[dim] = 0
	for i, t := range tensors {
		s := t.Shape()
		if len(s) != len(first) || t.DType() != dtype {
			panic(fmt.Sprintf("cat: tensor %d has shape %v %s, expected rank %d %s", i, s, t.DType(), len(first), dtype))
		}
		for d := range s {
			if d != dim && s[d] != first[d] {
				panic(fmt.Sprintf("cat: tensor %d shape %v does not match %v outside dim %d", i, s, first, dim))
			}
		}
		outShape[dim] += s[dim]
	}

	result := tensor.MustNewRaw(outShape, dtype, cpu.device)
	es := dtype.Size()
	dst := result.Bytes()
	outer, total, inner := splitAt(outShape, dim)

	offset := 0
	for _, t := range tensors {
		src := t.Bytes()
		size := t.Shape()[dim]
		block := size * inner * es
		for o := 0; o < outer; o++ {
			copy(dst[(o*total+offset)*inner*es:], src[o*block:(o+1)*block])
		}
		offset += size
	}
	return result
}

// Narrow copies entries [start, start+length) of dim.
func (cpu *CPUBackend) Narrow(x *tensor.RawTensor, dim, start, length int) *tensor.RawTensor {
	shape := x.Shape()
	dim = tensor.NormalizeDim(dim, len(shape))
	if start < 0 || length <= 0 || start+length > shape[dim] {
		panic(fmt.Sprintf("narrow: range [%d, %d) out of bounds for dimension %d of %v", start, start+length, dim, shape))
	}

	outShape := shape.Clone()
	outShape[dim] = length
	result := tensor.MustNewRaw(outShape, x.DType(), cpu.device)

	es := x.DType().Size()
	src, dst := x.Bytes(), result.Bytes()
	outer, size, inner := splitAt(shape, dim)
	block := length * inner * es
	for o := 0; o < outer; o++ {
		from := (o*size + start) * inner * es
		copy(dst[o*block:(o+1)*block], src[from:from+block])
	}
	return result
}

// Unsqueeze inserts a dimension of size 1 at dim (view).
func (cpu *CPUBackend) Unsqueeze(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	dim = tensor.NormalizeDim(dim, len(shape)+1)
	out := make(tensor.Shape, 0, len(shape)+1)
	out = append(out, shape[:dim]...)
	out = append(out, 1)
	out = append(out, shape[dim:]...)
	return x.View(out)
}

// Squeeze removes the size-1 dimension at dim (view).
func (cpu *CPUBackend) Squeeze(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	dim = tensor.NormalizeDim(dim, len(shape))
	if shape[dim] != 1 {
		panic(fmt.Sprintf("squeeze: dimension %d of %v has size %d, not 1", dim, shape, shape[dim]))
	}
	out := make(tensor.Shape, 0, len(shape)-1)
	out = append(out, shape[:dim]...)
	out = append(out, shape[dim+1:]...)
	return x.View(out)
}

// Expand materializes x broadcast to shape.
func (cpu *CPUBackend) Expand(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	outShape, _, err := tensor.BroadcastShapes(x.Shape(), shape)
	if err != nil || !outShape.Equal(shape) {
		panic(fmt.Sprintf("expand: cannot expand %v to %v", x.Shape(), shape))
	}

	result := tensor.MustNewRaw(shape, x.DType(), cpu.device)
	es := x.DType().Size()
	src, dst := x.Bytes(), result.Bytes()
	forEachBroadcast(shape, broadcastStrides(x.Shape(), shape), make([]int, len(shape)), func(i, srcIdx, _ int) {
		copy(dst[i*es:(i+1)*es], src[srcIdx*es:(srcIdx+1)*es])
	})
	return result
}
