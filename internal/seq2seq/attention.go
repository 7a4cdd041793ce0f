package seq2seq

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/born-ml/seq2seq/internal/nn"
	"github.com/born-ml/seq2seq/internal/tensor"
)

// BahdanauAttention is additive attention over encoder outputs.
//
// For query q [batch, tgt, hidden] and keys k [batch, src, hidden]:
//
//	score   = v · tanh(Ws·q[:, :, None] + Wh·k[:, None])    // [batch, tgt, src]
//	weights = softmax(score masked to -Inf past each source length)
//	context = weights @ k                                   // [batch, tgt, hidden]
//	output  = LayerNorm(tanh(Wout·[context; q]))            // [batch, tgt, hidden]
//
// The module holds no state between calls.
type BahdanauAttention[B tensor.Backend] struct {
	Ws   *nn.Linear[B]    // query projection, no bias
	Wh   *nn.Linear[B]    // key projection, no bias
	V    *nn.Parameter[B] // [hidden]
	Wout *nn.Linear[B]    // [2*hidden] -> [hidden]
	Norm *nn.LayerNorm[B]

	hiddenSize int
}

// NewBahdanauAttention creates an attention module for the given hidden size.
// The scoring vector starts from N(0, 0.01²).
func NewBahdanauAttention[B tensor.Backend](hiddenSize int, rng *rand.Rand, backend B) *BahdanauAttention[B] {
	return &BahdanauAttention[B]{
		Ws:         nn.NewLinear(hiddenSize, hiddenSize, false, rng, backend),
		Wh:         nn.NewLinear(hiddenSize, hiddenSize, false, rng, backend),
		V:          nn.NewParameter("v", nn.Normal(tensor.Shape{hiddenSize}, 0.01, rng, backend)),
		Wout:       nn.NewLinear(2*hiddenSize, hiddenSize, true, rng, backend),
		Norm:       nn.NewLayerNorm(hiddenSize, nn.DefaultLayerNormEpsilon, backend),
		hiddenSize: hiddenSize,
	}
}

// Forward attends from every query position to the valid encoder positions
// and returns the combined output [batch, tgt, hidden].
//
// Panics if shapes disagree or a length is outside [1, src].
func (a *BahdanauAttention[B]) Forward(query, encoderOutputs *tensor.Tensor[float32, B], srcLengths []int) *tensor.Tensor[float32, B] {
	weights := a.Weights(query, encoderOutputs, srcLengths)
	context := weights.BatchMatMul(encoderOutputs)

	combined := tensor.Cat([]*tensor.Tensor[float32, B]{context, query}, -1)
	return a.Norm.Forward(a.Wout.Forward(combined).Tanh())
}

// Weights returns the normalized attention weights [batch, tgt, src].
// Each row sums to 1 and is exactly zero at positions past its source length.
func (a *BahdanauAttention[B]) Weights(query, encoderOutputs *tensor.Tensor[float32, B], srcLengths []int) *tensor.Tensor[float32, B] {
	a.checkShapes(query, encoderOutputs, srcLengths)
	srcLen := encoderOutputs.Dim(1)

	q := a.Ws.Forward(query).Unsqueeze(2)          // [batch, tgt, 1, hidden]
	k := a.Wh.Forward(encoderOutputs).Unsqueeze(1) // [batch, 1, src, hidden]
	scores := q.Add(k).Tanh().Mul(a.V.Tensor()).SumDim(-1, false)

	padding := paddingMask(srcLengths, srcLen, query.Backend())
	return scores.MaskedFill(padding, float32(math.Inf(-1))).Softmax(-1)
}

func (a *BahdanauAttention[B]) checkShapes(query, keys *tensor.Tensor[float32, B], lengths []int) {
	qs, ks := query.Shape(), keys.Shape()
	if len(qs) != 3 || len(ks) != 3 {
		panic(fmt.Sprintf("attention: expected 3D query and keys, got %v and %v", qs, ks))
	}
	if qs[0] != ks[0] || qs[2] != a.hiddenSize || ks[2] != a.hiddenSize {
		panic(fmt.Sprintf("attention: query %v and keys %v incompatible with hidden size %d", qs, ks, a.hiddenSize))
	}
	if len(lengths) != qs[0] {
		panic(fmt.Sprintf("attention: %d lengths for batch of %d", len(lengths), qs[0]))
	}
	for i, n := range lengths {
		if n < 1 || n > ks[1] {
			panic(fmt.Sprintf("attention: length %d of example %d out of range [1, %d]", n, i, ks[1]))
		}
	}
}

// Parameters returns [Ws, Wh, v, Wout weight, Wout bias, gamma, beta].
func (a *BahdanauAttention[B]) Parameters() []*nn.Parameter[B] {
	params := make([]*nn.Parameter[B], 0, 7)
	params = append(params, a.Ws.Parameters()...)
	params = append(params, a.Wh.Parameters()...)
	params = append(params, a.V)
	params = append(params, a.Wout.Parameters()...)
	params = append(params, a.Norm.Parameters()...)
	return params
}

// SequenceMask returns a [batch, maxLen] mask that is true at positions
// before each example's length. A non-positive maxLen uses max(lengths).
func SequenceMask[B tensor.Backend](lengths []int, maxLen int, backend B) *tensor.Tensor[bool, B] {
	if maxLen <= 0 {
		for _, n := range lengths {
			maxLen = max(maxLen, n)
		}
	}
	mask := tensor.Zeros[bool](tensor.Shape{len(lengths), maxLen}, backend)
	data := mask.Data()
	for i, n := range lengths {
		for j := 0; j < min(n, maxLen); j++ {
			data[i*maxLen+j] = true
		}
	}
	return mask
}

// paddingMask is the complement of SequenceMask shaped [batch, 1, srcLen]
// so it broadcasts over target positions.
func paddingMask[B tensor.Backend](lengths []int, srcLen int, backend B) *tensor.Tensor[bool, B] {
	valid := SequenceMask(lengths, srcLen, backend).Data()
	padding := make([]bool, len(valid))
	for i, v := range valid {
		padding[i] = !v
	}
	return tensor.MustFromSlice(padding, tensor.Shape{len(lengths), 1, srcLen}, backend)
}
