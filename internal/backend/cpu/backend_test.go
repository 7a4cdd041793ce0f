package cpu

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/seq2seq/internal/tensor"
)

func raw(t *testing.T, data []float32, shape ...int) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.NewRaw(tensor.Shape(shape), tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(r.AsFloat32(), data)
	return r
}

func TestCPUBackend_AddBroadcast(t *testing.T) {
	backend := New()

	// [2, 1, 3] + [1, 2, 3] -> [2, 2, 3]
	a := raw(t, []float32{1, 2, 3, 10, 20, 30}, 2, 1, 3)
	b := raw(t, []float32{100, 200, 300, 400, 500, 600}, 1, 2, 3)

	out := backend.Add(a, b)

	assert.Equal(t, tensor.Shape{2, 2, 3}, out.Shape())
	assert.Equal(t, []float32{
		101, 202, 303, 401, 502, 603,
		110, 220, 330, 410, 520, 630,
	}, out.AsFloat32())
}

func TestCPUBackend_SubMulDiv(t *testing.T) {
	backend := New()
	a := raw(t, []float32{6, 8}, 2)
	b := raw(t, []float32{2, 4}, 2)

	assert.Equal(t, []float32{4, 4}, backend.Sub(a, b).AsFloat32())
	assert.Equal(t, []float32{12, 32}, backend.Mul(a, b).AsFloat32())
	assert.Equal(t, []float32{3, 2}, backend.Div(a, b).AsFloat32())
}

func TestCPUBackend_AddIncompatiblePanics(t *testing.T) {
	backend := New()
	a := raw(t, make([]float32, 6), 2, 3)
	b := raw(t, make([]float32, 8), 2, 4)

	assert.Panics(t, func() { backend.Add(a, b) })
}

func TestCPUBackend_MatMul(t *testing.T) {
	backend := New()
	a := raw(t, []float32{1, 2, 3, 4, 5, 6}, 2, 3)
	b := raw(t, []float32{7, 8, 9, 10, 11, 12}, 3, 2)

	out := backend.MatMul(a, b)

	assert.Equal(t, tensor.Shape{2, 2}, out.Shape())
	assert.Equal(t, []float32{58, 64, 139, 154}, out.AsFloat32())
}

func TestCPUBackend_MatMulShapeMismatch(t *testing.T) {
	backend := New()
	a := raw(t, make([]float32, 6), 2, 3)
	b := raw(t, make([]float32, 8), 4, 2)

	assert.PanicsWithValue(t, "matmul: shape mismatch [2,3] @ [4,2]", func() { backend.MatMul(a, b) })
}

func TestCPUBackend_BatchMatMul(t *testing.T) {
	for _, backend := range []*CPUBackend{New(), NewSequential()} {
		// Batch 0 is the identity, batch 1 doubles.
		a := raw(t, []float32{1, 0, 0, 1, 2, 0, 0, 2}, 2, 2, 2)
		b := raw(t, []float32{1, 2, 3, 4, 5, 6, 7, 8}, 2, 2, 2)

		out := backend.BatchMatMul(a, b)

		assert.Equal(t, tensor.Shape{2, 2, 2}, out.Shape())
		assert.Equal(t, []float32{1, 2, 3, 4, 10, 12, 14, 16}, out.AsFloat32())
	}
}

func TestCPUBackend_Activations(t *testing.T) {
	backend := New()
	x := raw(t, []float32{-1, 0, 1}, 3)

	tanh := backend.Tanh(x).AsFloat32()
	sig := backend.Sigmoid(x).AsFloat32()
	exp := backend.Exp(x).AsFloat32()

	for i, v := range []float64{-1, 0, 1} {
		assert.InDelta(t, math.Tanh(v), tanh[i], 1e-6)
		assert.InDelta(t, 1/(1+math.Exp(-v)), sig[i], 1e-6)
		assert.InDelta(t, math.Exp(v), exp[i], 1e-5)
	}

	assert.InDelta(t, 0.5, backend.Rsqrt(raw(t, []float32{4}, 1)).AsFloat32()[0], 1e-6)
	assert.Equal(t, []float32{-2, 0, 2}, backend.MulScalar(x, 2).AsFloat32())
	assert.Equal(t, []float32{0, 1, 2}, backend.AddScalar(x, 1).AsFloat32())
}

func TestCPUBackend_SigmoidExtremes(t *testing.T) {
	backend := New()
	out := backend.Sigmoid(raw(t, []float32{-1000, 1000}, 2)).AsFloat32()

	assert.InDelta(t, 0, out[0], 1e-12)
	assert.InDelta(t, 1, out[1], 1e-12)
}

func TestCPUBackend_SoftmaxNegativeInfinity(t *testing.T) {
	backend := New()
	negInf := float32(math.Inf(-1))
	x := raw(t, []float32{1, 2, negInf, 0, 0, 0}, 2, 3)

	out := backend.Softmax(x, -1).AsFloat32()

	assert.InDelta(t, 1.0, out[0]+out[1]+out[2], 1e-6)
	assert.Equal(t, float32(0), out[2])
	assert.InDelta(t, 1/(1+math.E), out[0], 1e-6)
	for _, v := range out[3:] {
		assert.InDelta(t, 1.0/3, v, 1e-6)
	}
}

func TestCPUBackend_SoftmaxInnerDim(t *testing.T) {
	backend := New()
	x := raw(t, []float32{0, 5, 0, 5}, 2, 2)

	// Normalize down columns.
	out := backend.Softmax(x, 0).AsFloat32()

	assert.InDelta(t, 0.5, out[0], 1e-6)
	assert.InDelta(t, 0.5, out[2], 1e-6)
	assert.InDelta(t, 1.0, out[1]+out[3], 1e-6)
}

func TestCPUBackend_Reductions(t *testing.T) {
	backend := New()
	x := raw(t, []float32{1, 2, 3, 4, 5, 6}, 2, 3)

	sum := backend.SumDim(x, 1, false)
	assert.Equal(t, tensor.Shape{2}, sum.Shape())
	assert.Equal(t, []float32{6, 15}, sum.AsFloat32())

	mean := backend.MeanDim(x, -1, true)
	assert.Equal(t, tensor.Shape{2, 1}, mean.Shape())
	assert.Equal(t, []float32{2, 5}, mean.AsFloat32())

	col := backend.SumDim(x, 0, true)
	assert.Equal(t, tensor.Shape{1, 3}, col.Shape())
	assert.Equal(t, []float32{5, 7, 9}, col.AsFloat32())
}

func TestCPUBackend_Argmax(t *testing.T) {
	backend := New()
	x := raw(t, []float32{0.1, 0.7, 0.2, 0.9, 0.05, 0.05}, 2, 3)

	out := backend.Argmax(x, -1)

	assert.Equal(t, tensor.Int32, out.DType())
	assert.Equal(t, []int32{1, 0}, out.AsInt32())
}

func TestCPUBackend_Transpose(t *testing.T) {
	backend := New()
	x := raw(t, []float32{1, 2, 3, 4, 5, 6}, 2, 3)

	out := backend.Transpose(x)
	assert.Equal(t, tensor.Shape{3, 2}, out.Shape())
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, out.AsFloat32())

	// [2, 1, 3] -> [1, 3, 2]
	y := raw(t, []float32{1, 2, 3, 4, 5, 6}, 2, 1, 3)
	permuted := backend.Transpose(y, 1, 2, 0)
	assert.Equal(t, tensor.Shape{1, 3, 2}, permuted.Shape())
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, permuted.AsFloat32())
}

func TestCPUBackend_CatAndNarrow(t *testing.T) {
	backend := New()
	a := raw(t, []float32{1, 2, 3, 4}, 2, 2)
	b := raw(t, []float32{5, 6}, 2, 1)

	cat := backend.Cat([]*tensor.RawTensor{a, b}, -1)
	assert.Equal(t, tensor.Shape{2, 3}, cat.Shape())
	assert.Equal(t, []float32{1, 2, 5, 3, 4, 6}, cat.AsFloat32())

	rows := backend.Cat([]*tensor.RawTensor{a, a}, 0)
	assert.Equal(t, tensor.Shape{4, 2}, rows.Shape())

	narrow := backend.Narrow(cat, 1, 1, 2)
	assert.Equal(t, tensor.Shape{2, 2}, narrow.Shape())
	assert.Equal(t, []float32{2, 5, 4, 6}, narrow.AsFloat32())

	assert.Panics(t, func() { backend.Narrow(cat, 1, 2, 2) })
}

func TestCPUBackend_ShapeViews(t *testing.T) {
	backend := New()
	x := raw(t, []float32{1, 2, 3, 4, 5, 6}, 2, 3)

	assert.Equal(t, tensor.Shape{3, 2}, backend.Reshape(x, tensor.Shape{3, -1}).Shape())
	assert.Equal(t, tensor.Shape{2, 1, 3}, backend.Unsqueeze(x, 1).Shape())
	assert.Equal(t, tensor.Shape{2, 3, 1}, backend.Unsqueeze(x, -1).Shape())
	assert.Equal(t, tensor.Shape{2, 3}, backend.Squeeze(backend.Unsqueeze(x, 0), 0).Shape())
	assert.Panics(t, func() { backend.Squeeze(x, 0) })
	assert.Panics(t, func() { backend.Reshape(x, tensor.Shape{4, 2}) })
}

func TestCPUBackend_Expand(t *testing.T) {
	backend := New()
	x := raw(t, []float32{1, 2}, 2, 1)

	out := backend.Expand(x, tensor.Shape{2, 3})

	assert.Equal(t, []float32{1, 1, 1, 2, 2, 2}, out.AsFloat32())
	assert.Panics(t, func() { backend.Expand(x, tensor.Shape{3, 3}) })
}

func TestCPUBackend_Embedding(t *testing.T) {
	backend := New()
	weight := raw(t, []float32{0, 0, 1, 1, 2, 2}, 3, 2)
	indices := tensor.MustNewRaw(tensor.Shape{2, 2}, tensor.Int32, tensor.CPU)
	copy(indices.AsInt32(), []int32{2, 0, 1, 1})

	out := backend.Embedding(weight, indices)

	assert.Equal(t, tensor.Shape{2, 2, 2}, out.Shape())
	assert.Equal(t, []float32{2, 2, 0, 0, 1, 1, 1, 1}, out.AsFloat32())

	indices.AsInt32()[0] = 3
	assert.PanicsWithValue(t, "embedding: index 3 out of range [0, 3)", func() { backend.Embedding(weight, indices) })
}

func TestCPUBackend_MaskedFill(t *testing.T) {
	backend := New()
	x := raw(t, []float32{1, 2, 3, 4, 5, 6}, 2, 1, 3)
	mask := tensor.MustNewRaw(tensor.Shape{2, 1, 3}, tensor.Bool, tensor.CPU)
	copy(mask.AsBool(), []bool{false, false, true, false, true, true})

	out := backend.MaskedFill(x, mask, -1)

	assert.Equal(t, []float32{1, 2, -1, 4, -1, -1}, out.AsFloat32())
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, x.AsFloat32(), "input must be untouched")
}

func TestCPUBackend_MaskedFillBroadcast(t *testing.T) {
	backend := New()
	x := raw(t, []float32{1, 2, 3, 4}, 1, 2, 2)
	mask := tensor.MustNewRaw(tensor.Shape{1, 1, 2}, tensor.Bool, tensor.CPU)
	copy(mask.AsBool(), []bool{false, true})

	out := backend.MaskedFill(x, mask, 0)

	assert.Equal(t, []float32{1, 0, 3, 0}, out.AsFloat32())
}
