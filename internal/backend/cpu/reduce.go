package cpu

import (
	"math"

	"github.com/born-ml/seq2seq/internal/tensor"
)

// Softmax computes exp(x_i - max) / Σ exp(x_j - max) along dim.
//
// Entries equal to -Inf get exactly zero probability. A slice that is -Inf
// everywhere has no defined distribution and yields NaN, as with any
// max-shifted softmax.
func (cpu *CPUBackend) Softmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	requireFloat32("softmax", x)
	shape := x.Shape()
	dim = tensor.NormalizeDim(dim, len(shape))

	result := tensor.MustNewRaw(shape, tensor.Float32, cpu.device)
	src, dst := x.AsFloat32(), result.AsFloat32()
	outer, size, inner := splitAt(shape, dim)

	for o := 0; o < outer; o++ {
		for in := 0; in < inner; in++ {
			base := o*size*inner + in

			maxVal := math.Inf(-1)
			for j := 0; j < size; j++ {
				maxVal = math.Max(maxVal, float64(src[base+j*inner]))
			}

			var sum float64
			for j := 0; j < size; j++ {
				e := math.Exp(float64(src[base+j*inner]) - maxVal)
				dst[base+j*inner] = float32(e)
				sum += e
			}
			for j := 0; j < size; j++ {
				dst[base+j*inner] = float32(float64(dst[base+j*inner]) / sum)
			}
		}
	}
	return result
}

// SumDim sums along dim.
func (cpu *CPUBackend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return cpu.reduce("sumdim", x, dim, keepDim, 1)
}

// MeanDim averages along dim.
func (cpu *CPUBackend) MeanDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	shape := x.Shape()
	d := tensor.NormalizeDim(dim, len(shape))
	return cpu.reduce("meandim", x, d, keepDim, 1/float32(shape[d]))
}

func (cpu *CPUBackend) reduce(name string, x *tensor.RawTensor, dim int, keepDim bool, scale float32) *tensor.RawTensor {
	requireFloat32(name, x)
	shape := x.Shape()
	dim = tensor.NormalizeDim(dim, len(shape))

	result := tensor.MustNewRaw(reducedShape(shape, dim, keepDim), tensor.Float32, cpu.device)
	src, dst := x.AsFloat32(), result.AsFloat32()
	outer, size, inner := splitAt(shape, dim)

	for o := 0; o < outer; o++ {
		for in := 0; in < inner; in++ {
			var sum float32
			for j := 0; j < size; j++ {
				sum += src[o*size*inner+j*inner+in]
			}
			dst[o*inner+in] = sum * scale
		}
	}
	return result
}

// Argmax returns the int32 index of the maximum along dim, which is removed
// from the result shape. Ties resolve to the lowest index.
func (cpu *CPUBackend) Argmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	requireFloat32("argmax", x)
	shape := x.Shape()
	dim = tensor.NormalizeDim(dim, len(shape))

	result := tensor.MustNewRaw(reducedShape(shape, dim, false), tensor.Int32, cpu.device)
	src, dst := x.AsFloat32(), result.AsInt32()
	outer, size, inner := splitAt(shape, dim)

	for o := 0; o < outer; o++ {
		for in := 0; in < inner; in++ {
			best := 0
			bestVal := src[o*size*inner+in]
			for j := 1; j < size; j++ {
				if v := src[o*size*inner+j*inner+in]; v > bestVal {
					best, bestVal = j, v
				}
			}
			dst[o*inner+in] = int32(best) //nolint:gosec // G115: bounded by dimension size
		}
	}
	return result
}

// reducedShape drops (or keeps as 1) dim. Reducing a 1D tensor without
// keepDim gives shape [1].
func reducedShape(shape tensor.Shape, dim int, keepDim bool) tensor.Shape {
	out := make(tensor.Shape, 0, len(shape))
	for i, d := range shape {
		switch {
		case i != dim:
			out = append(out, d)
		case keepDim:
			out = append(out, 1)
		}
	}
	if len(out) == 0 {
		out = append(out, 1)
	}
	return out
}
