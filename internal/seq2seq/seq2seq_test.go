package seq2seq_test

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/seq2seq/internal/autodiff"
	"github.com/born-ml/seq2seq/internal/backend/cpu"
	"github.com/born-ml/seq2seq/internal/nn"
	"github.com/born-ml/seq2seq/internal/seq2seq"
	"github.com/born-ml/seq2seq/internal/tensor"
)

const tolerance = 1e-5

func newRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func smallConfig() seq2seq.Config {
	return seq2seq.Config{
		SrcVocabSize: 10,
		TgtVocabSize: 12,
		HiddenSize:   8,
		PaddingIdx:   0,
		Dropout:      0.1,
		Attention:    true,
		Seed:         7,
	}
}

// scenarioBatch is two source sentences of lengths 3 and 2 padded to 4, and
// a start/x/y/end target for each.
func scenarioBatch[B tensor.Backend](backend B) (src *tensor.Tensor[int32, B], lengths []int, tgt *tensor.Tensor[int32, B]) {
	src = tensor.MustFromSlice([]int32{5, 3, 2, 0, 7, 8, 0, 0}, tensor.Shape{2, 4}, backend)
	tgt = tensor.MustFromSlice([]int32{1, 4, 6, 2, 1, 4, 6, 2}, tensor.Shape{2, 4}, backend)
	return src, []int{3, 2}, tgt
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, seq2seq.DefaultConfig().Validate())
	require.NoError(t, smallConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*seq2seq.Config)
	}{
		{"zero source vocab", func(c *seq2seq.Config) { c.SrcVocabSize = 0 }},
		{"negative target vocab", func(c *seq2seq.Config) { c.TgtVocabSize = -1 }},
		{"odd hidden size", func(c *seq2seq.Config) { c.HiddenSize = 7 }},
		{"zero hidden size", func(c *seq2seq.Config) { c.HiddenSize = 0 }},
		{"padding outside source vocab", func(c *seq2seq.Config) { c.PaddingIdx = 10 }},
		{"negative padding", func(c *seq2seq.Config) { c.PaddingIdx = -1 }},
		{"dropout of one", func(c *seq2seq.Config) { c.Dropout = 1 }},
		{"negative dropout", func(c *seq2seq.Config) { c.Dropout = -0.1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := smallConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, seq2seq.ErrInvalidConfig))

			model, err := seq2seq.New(cfg, cpu.New())
			assert.Nil(t, model)
			assert.ErrorIs(t, err, seq2seq.ErrInvalidConfig)
		})
	}
}

func TestReshapeState(t *testing.T) {
	backend := cpu.New()
	// direction 0: batch rows [1 2], [3 4]; direction 1: [5 6], [7 8]
	h := tensor.MustFromSlice([]float32{1, 2, 3, 4, 5, 6, 7, 8}, tensor.Shape{2, 2, 2}, backend)
	c := h.MulScalar(-1)

	got := seq2seq.ReshapeState(seq2seq.State[*cpu.CPUBackend]{Hidden: h, Cell: c})

	assert.Empty(t, cmp.Diff(tensor.Shape{1, 2, 4}, got.Hidden.Shape()))
	assert.Empty(t, cmp.Diff(tensor.Shape{1, 2, 4}, got.Cell.Shape()))
	assert.Equal(t, []float32{1, 2, 5, 6, 3, 4, 7, 8}, got.Hidden.Data())
	assert.Equal(t, []float32{-1, -2, -5, -6, -3, -4, -7, -8}, got.Cell.Data())
}

func TestReshapeState_RejectsOtherLeadingDims(t *testing.T) {
	backend := cpu.New()
	for _, layers := range []int{1, 4} {
		x := tensor.Zeros[float32](tensor.Shape{layers, 2, 3}, backend)
		assert.Panics(t, func() {
			seq2seq.ReshapeState(seq2seq.State[*cpu.CPUBackend]{Hidden: x, Cell: x})
		}, "leading dim %d", layers)
	}
}

func TestSequenceMask(t *testing.T) {
	backend := cpu.New()

	mask := seq2seq.SequenceMask([]int{3, 1}, 4, backend)
	assert.Equal(t, tensor.Shape{2, 4}, mask.Shape())
	assert.Equal(t, []bool{true, true, true, false, true, false, false, false}, mask.Data())

	inferred := seq2seq.SequenceMask([]int{2, 3}, 0, backend)
	assert.Equal(t, tensor.Shape{2, 3}, inferred.Shape())
	assert.Equal(t, []bool{true, true, false, true, true, true}, inferred.Data())
}

func TestAttention_WeightsMaskedAndNormalized(t *testing.T) {
	backend := cpu.New()
	attn := seq2seq.NewBahdanauAttention(4, newRNG(1), backend)
	query := tensor.Randn(tensor.Shape{2, 3, 4}, newRNG(2), backend)
	keys := tensor.Randn(tensor.Shape{2, 5, 4}, newRNG(3), backend)
	lengths := []int{5, 2}

	weights := attn.Weights(query, keys, lengths)
	require.Equal(t, tensor.Shape{2, 3, 5}, weights.Shape())

	for b, n := range lengths {
		for q := 0; q < 3; q++ {
			var sum float64
			for s := 0; s < 5; s++ {
				w := weights.At(b, q, s)
				if s >= n {
					assert.Equal(t, float32(0), w, "batch %d query %d source %d", b, q, s)
				} else {
					assert.Greater(t, w, float32(0))
				}
				sum += float64(w)
			}
			assert.InDelta(t, 1.0, sum, tolerance, "batch %d query %d", b, q)
		}
	}
}

func TestAttention_NoPaddingLeavesScoresUnmasked(t *testing.T) {
	backend := cpu.New()
	attn := seq2seq.NewBahdanauAttention(4, newRNG(1), backend)
	query := tensor.Randn(tensor.Shape{2, 1, 4}, newRNG(2), backend)
	keys := tensor.Randn(tensor.Shape{2, 3, 4}, newRNG(3), backend)

	weights := attn.Weights(query, keys, []int{3, 3})

	// Unmasked softmax computed directly from the projections.
	q := attn.Ws.Forward(query).Unsqueeze(2)
	k := attn.Wh.Forward(keys).Unsqueeze(1)
	want := q.Add(k).Tanh().Mul(attn.V.Tensor()).SumDim(-1, false).Softmax(-1)

	assert.InDeltaSlice(t, want.Data(), weights.Data(), tolerance)
	for b := 0; b < 2; b++ {
		var sum float64
		for s := 0; s < 3; s++ {
			sum += float64(weights.At(b, 0, s))
		}
		assert.InDelta(t, 1.0, sum, tolerance)
	}
}

func TestAttention_ForwardIsLayerNormalized(t *testing.T) {
	backend := cpu.New()
	attn := seq2seq.NewBahdanauAttention(6, newRNG(1), backend)
	query := tensor.Randn(tensor.Shape{2, 2, 6}, newRNG(2), backend)
	keys := tensor.Randn(tensor.Shape{2, 4, 6}, newRNG(3), backend)

	out := attn.Forward(query, keys, []int{4, 1})
	require.Equal(t, tensor.Shape{2, 2, 6}, out.Shape())

	data := out.Data()
	for row := 0; row < 4; row++ {
		var mean float64
		for _, v := range data[row*6 : (row+1)*6] {
			mean += float64(v)
		}
		assert.InDelta(t, 0.0, mean/6, 1e-4, "row %d", row)
	}
	assert.Len(t, attn.Parameters(), 7)
}

func TestAttention_IgnoresPaddedKeys(t *testing.T) {
	backend := cpu.New()
	attn := seq2seq.NewBahdanauAttention(4, newRNG(1), backend)
	query := tensor.Randn(tensor.Shape{1, 1, 4}, newRNG(2), backend)
	keys := tensor.Randn(tensor.Shape{1, 3, 4}, newRNG(3), backend)

	// Overwrite the padded key: the output must not change.
	other := tensor.MustFromSlice(append([]float32(nil), keys.Data()...), keys.Shape(), backend)
	for i := 8; i < 12; i++ {
		other.Data()[i] = 100
	}

	a := attn.Forward(query, keys, []int{2})
	b := attn.Forward(query, other, []int{2})
	assert.InDeltaSlice(t, a.Data(), b.Data(), tolerance)
}

func TestAttention_InvalidLengthsPanic(t *testing.T) {
	backend := cpu.New()
	attn := seq2seq.NewBahdanauAttention(4, newRNG(1), backend)
	query := tensor.Zeros[float32](tensor.Shape{2, 1, 4}, backend)
	keys := tensor.Zeros[float32](tensor.Shape{2, 3, 4}, backend)

	assert.Panics(t, func() { attn.Forward(query, keys, []int{3}) })
	assert.Panics(t, func() { attn.Forward(query, keys, []int{4, 1}) })
	assert.Panics(t, func() { attn.Forward(query, keys, []int{0, 1}) })
}

func TestEncoder_ShapesAndPadding(t *testing.T) {
	backend := cpu.New()
	enc := seq2seq.NewEncoder(10, 8, 0, newRNG(1), backend)
	src, lengths, _ := scenarioBatch(backend)

	out, state := enc.Forward(src, lengths)

	assert.Empty(t, cmp.Diff(tensor.Shape{2, 4, 8}, out.Shape()))
	assert.Empty(t, cmp.Diff(tensor.Shape{2, 2, 4}, state.Hidden.Shape()))
	assert.Empty(t, cmp.Diff(tensor.Shape{2, 2, 4}, state.Cell.Shape()))

	for b, n := range lengths {
		for s := n; s < 4; s++ {
			for f := 0; f < 8; f++ {
				assert.Equal(t, float32(0), out.At(b, s, f), "batch %d step %d", b, s)
			}
		}
	}
}

func TestEncoder_PaddingDoesNotLeakIntoState(t *testing.T) {
	backend := cpu.New()
	enc := seq2seq.NewEncoder(10, 8, 0, newRNG(1), backend)
	src, lengths, _ := scenarioBatch(backend)

	batchOut, batchState := enc.Forward(src, lengths)

	solo := tensor.MustFromSlice([]int32{7, 8}, tensor.Shape{1, 2}, backend)
	soloOut, soloState := enc.Forward(solo, []int{2})

	assert.InDeltaSlice(t, soloOut.Data(), batchOut.Narrow(0, 1, 1).Narrow(1, 0, 2).Data(), tolerance)
	assert.InDeltaSlice(t, soloState.Hidden.Data(), batchState.Hidden.Narrow(1, 1, 1).Data(), tolerance)
	assert.InDeltaSlice(t, soloState.Cell.Data(), batchState.Cell.Narrow(1, 1, 1).Data(), tolerance)
}

func TestEncoder_UnsortedLengths(t *testing.T) {
	backend := cpu.New()
	enc := seq2seq.NewEncoder(10, 8, 0, newRNG(1), backend)
	src := tensor.MustFromSlice([]int32{7, 8, 0, 5, 3, 2}, tensor.Shape{2, 3}, backend)

	out, _ := enc.Forward(src, []int{2, 3})
	assert.Equal(t, tensor.Shape{2, 3, 8}, out.Shape())
	assert.Equal(t, float32(0), out.At(0, 2, 0))
}

func newDecoder(attention bool, dropout float32) *seq2seq.Decoder[*cpu.CPUBackend] {
	return seq2seq.NewDecoder(12, 8, 0, dropout, attention, newRNG(1), newRNG(2), cpu.New())
}

func encoderState(backend *cpu.CPUBackend) seq2seq.State[*cpu.CPUBackend] {
	return seq2seq.State[*cpu.CPUBackend]{
		Hidden: tensor.Randn(tensor.Shape{2, 2, 4}, newRNG(5), backend),
		Cell:   tensor.Randn(tensor.Shape{2, 2, 4}, newRNG(6), backend),
	}
}

func TestDecoder_TrimsLastTargetStep(t *testing.T) {
	backend := cpu.New()
	dec := newDecoder(true, 0)
	_, lengths, tgt := scenarioBatch(backend)
	keys := tensor.Randn(tensor.Shape{2, 4, 8}, newRNG(3), backend)

	out, state := dec.Forward(tgt, encoderState(backend), keys, lengths, nn.Eval)

	assert.Empty(t, cmp.Diff(tensor.Shape{2, 3, 8}, out.Shape()))
	assert.Empty(t, cmp.Diff(tensor.Shape{1, 2, 8}, state.Hidden.Shape()))
	assert.Empty(t, cmp.Diff(tensor.Shape{1, 2, 8}, state.Cell.Shape()))
}

func TestDecoder_SingleStepIsNotTrimmed(t *testing.T) {
	backend := cpu.New()
	dec := newDecoder(true, 0)
	keys := tensor.Randn(tensor.Shape{2, 4, 8}, newRNG(3), backend)
	tgt := tensor.MustFromSlice([]int32{1, 1}, tensor.Shape{2, 1}, backend)

	out, _ := dec.Forward(tgt, encoderState(backend), keys, []int{3, 2}, nn.Eval)
	assert.Equal(t, tensor.Shape{2, 1, 8}, out.Shape())
}

func TestDecoder_WithoutAttentionReturnsRawLSTMOutput(t *testing.T) {
	backend := cpu.New()
	dec := newDecoder(false, 0.5)
	require.Nil(t, dec.Attention)
	_, _, tgt := scenarioBatch(backend)
	state := encoderState(backend)

	out, final := dec.Forward(tgt, state, nil, nil, nn.Eval)

	folded := seq2seq.ReshapeState(state)
	embedded := dec.Embedding.Forward(tgt.Narrow(1, 0, 3))
	want, h, c := dec.LSTM.Forward(embedded, nil, folded.Hidden, folded.Cell)

	assert.InDeltaSlice(t, want.Data(), out.Data(), tolerance)
	assert.InDeltaSlice(t, h.Data(), final.Hidden.Data(), tolerance)
	assert.InDeltaSlice(t, c.Data(), final.Cell.Data(), tolerance)
}

func TestDecoder_AcceptsFoldedState(t *testing.T) {
	backend := cpu.New()
	dec := newDecoder(true, 0)
	_, lengths, tgt := scenarioBatch(backend)
	keys := tensor.Randn(tensor.Shape{2, 4, 8}, newRNG(3), backend)
	state := encoderState(backend)

	fromBi, _ := dec.Forward(tgt, state, keys, lengths, nn.Eval)
	fromFolded, _ := dec.Forward(tgt, seq2seq.ReshapeState(state), keys, lengths, nn.Eval)

	assert.Equal(t, fromBi.Data(), fromFolded.Data())
}

func TestDecoder_DropoutFollowsMode(t *testing.T) {
	backend := cpu.New()
	dec := newDecoder(false, 0.5)
	_, _, tgt := scenarioBatch(backend)
	state := encoderState(backend)

	eval1, _ := dec.Forward(tgt, state, nil, nil, nn.Eval)
	eval2, _ := dec.Forward(tgt, state, nil, nil, nn.Eval)
	train, _ := dec.Forward(tgt, state, nil, nil, nn.Train)

	assert.Equal(t, eval1.Data(), eval2.Data())
	assert.NotEqual(t, eval1.Data(), train.Data())
}

func TestModel_ForwardScenario(t *testing.T) {
	backend := cpu.New()
	model, err := seq2seq.New(smallConfig(), backend)
	require.NoError(t, err)
	src, lengths, tgt := scenarioBatch(backend)

	logits, state := model.Forward(src, lengths, tgt, nil, nn.Eval)

	assert.Empty(t, cmp.Diff(tensor.Shape{2, 3, 12}, logits.Shape()))
	assert.Empty(t, cmp.Diff(tensor.Shape{1, 2, 8}, state.Hidden.Shape()))
	assert.Empty(t, cmp.Diff(tensor.Shape{1, 2, 8}, state.Cell.Shape()))
	for _, v := range logits.Data() {
		assert.False(t, math.IsNaN(float64(v)))
	}
}

func TestModel_ForwardWithoutAttention(t *testing.T) {
	cfg := smallConfig()
	cfg.Attention = false
	backend := cpu.New()
	model, err := seq2seq.New(cfg, backend)
	require.NoError(t, err)
	require.Nil(t, model.Decoder().Attention)
	src, lengths, tgt := scenarioBatch(backend)

	logits, _ := model.Forward(src, lengths, tgt, nil, nn.Eval)
	assert.Equal(t, tensor.Shape{2, 3, 12}, logits.Shape())
}

func TestModel_DeterministicInSeed(t *testing.T) {
	backend := cpu.New()
	a, err := seq2seq.New(smallConfig(), backend)
	require.NoError(t, err)
	b, err := seq2seq.New(smallConfig(), backend)
	require.NoError(t, err)
	src, lengths, tgt := scenarioBatch(backend)

	la, _ := a.Forward(src, lengths, tgt, nil, nn.Eval)
	lb, _ := b.Forward(src, lengths, tgt, nil, nn.Eval)
	assert.Equal(t, la.Data(), lb.Data())
}

func TestModel_IncrementalDecodingThreadsState(t *testing.T) {
	backend := cpu.New()
	model, err := seq2seq.New(smallConfig(), backend)
	require.NoError(t, err)
	src, lengths, tgt := scenarioBatch(backend)

	full, fullState := model.Forward(src, lengths, tgt, nil, nn.Eval)

	// One call per target step, feeding back the returned state.
	var state *seq2seq.State[*cpu.CPUBackend]
	for step := 0; step < 3; step++ {
		logits, next := model.Forward(src, lengths, tgt.Narrow(1, step, 1), state, nn.Eval)
		require.Equal(t, tensor.Shape{2, 1, 12}, logits.Shape())
		assert.InDeltaSlice(t, full.Narrow(1, step, 1).Data(), logits.Data(), tolerance, "step %d", step)
		state = &next
	}
	assert.InDeltaSlice(t, fullState.Hidden.Data(), state.Hidden.Data(), tolerance)
	assert.InDeltaSlice(t, fullState.Cell.Data(), state.Cell.Data(), tolerance)
}

func TestModel_GeneratorWeightIsTiedToEmbedding(t *testing.T) {
	backend := cpu.New()
	model, err := seq2seq.New(smallConfig(), backend)
	require.NoError(t, err)

	embedding := model.Decoder().Embedding.Weight
	generator := model.Generator().Weight()
	require.Same(t, embedding, generator)
	require.Same(t, embedding.Tensor(), generator.Tensor())
	assert.Equal(t, 12, model.Generator().OutFeatures())
	assert.Equal(t, 8, model.Generator().InFeatures())

	src, lengths, tgt := scenarioBatch(backend)
	before, _ := model.Forward(src, lengths, tgt, nil, nn.Eval)
	before = tensor.MustFromSlice(append([]float32(nil), before.Data()...), before.Shape(), backend)

	// Writing through the embedding is visible to the generator.
	embedding.Tensor().Data()[11*8] += 5
	assert.Equal(t, embedding.Tensor().Data()[11*8], generator.Tensor().Data()[11*8])

	after, _ := model.Forward(src, lengths, tgt, nil, nn.Eval)
	assert.NotEqual(t, before.At(0, 0, 11), after.At(0, 0, 11))
}

func TestModel_ParametersListTiedWeightOnce(t *testing.T) {
	model, err := seq2seq.New(smallConfig(), cpu.New())
	require.NoError(t, err)

	params := model.Parameters()
	seen := make(map[*nn.Parameter[*cpu.CPUBackend]]bool)
	for _, p := range params {
		assert.False(t, seen[p], "duplicate parameter %s", p.Name())
		seen[p] = true
	}

	// encoder: embedding 10*8, two cells of 4*4*(8+4) + 2*16
	// decoder: embedding 12*8, one cell of 4*8*(8+8) + 2*32
	// attention: 2*8*8 + 8 + 16*8 + 8 + 2*8; generator bias 12
	want := 10*8 + 2*(16*12+32) +
		12*8 + 32*16 + 64 +
		2*64 + 8 + 128 + 8 + 16 +
		12
	assert.Equal(t, want, nn.CountParameters(params))
}

func TestModel_GradientsSkipPaddingRows(t *testing.T) {
	backend := autodiff.New(cpu.New())
	model, err := seq2seq.New(smallConfig(), backend)
	require.NoError(t, err)
	src, lengths, tgt := scenarioBatch(backend)

	backend.Tape().StartRecording()
	logits, _ := model.Forward(src, lengths, tgt, nil, nn.Train)
	nn.CollectGradients(model.Parameters(), autodiff.Backward(logits, backend))

	for _, p := range model.Parameters() {
		require.NotNil(t, p.Grad(), p.Name())
		assert.Equal(t, p.Tensor().Shape(), p.Grad().Shape(), p.Name())
	}

	srcGrad := model.Encoder().Embedding.Weight.Grad().Data()
	assert.Equal(t, make([]float32, 8), srcGrad[:8], "source padding row")
	assert.NotEqual(t, make([]float32, 8), srcGrad[5*8:6*8])
}

func TestDecoder_PaddingRowGetsNoLookupGradient(t *testing.T) {
	backend := autodiff.New(cpu.New())
	dec := seq2seq.NewDecoder(12, 8, 0, 0, false, newRNG(1), newRNG(2), backend)
	state := seq2seq.State[*autodiff.AutodiffBackend[*cpu.CPUBackend]]{
		Hidden: tensor.Zeros[float32](tensor.Shape{1, 2, 8}, backend),
		Cell:   tensor.Zeros[float32](tensor.Shape{1, 2, 8}, backend),
	}
	tgt := tensor.MustFromSlice([]int32{1, 4, 0, 0, 1, 6, 2, 0}, tensor.Shape{2, 4}, backend)

	backend.Tape().StartRecording()
	out, _ := dec.Forward(tgt, state, nil, nil, nn.Eval)
	grads := autodiff.Backward(out, backend)

	grad := grads[dec.Embedding.Weight.Tensor().Raw()].AsFloat32()
	assert.Equal(t, make([]float32, 8), grad[:8], "target padding row")
	assert.NotEqual(t, make([]float32, 8), grad[8:16])
}

// The tied weight is read twice, once as the target embedding table and once
// as the generator matrix, so its gradient is the sum of both uses.
func TestModel_TiedWeightGradientSumsBothUses(t *testing.T) {
	backend := autodiff.New(cpu.New())
	model, err := seq2seq.New(smallConfig(), backend)
	require.NoError(t, err)
	src, lengths, tgt := scenarioBatch(backend)
	weight := model.Generator().Weight().Tensor()
	vocab, hidden := weight.Dim(0), weight.Dim(1)

	backend.Tape().StartRecording()
	logits, _ := model.Forward(src, lengths, tgt, nil, nn.Eval)
	tied := autodiff.Backward(logits, backend)[weight.Raw()].AsFloat32()

	// Lookup use alone: sum(logits) minus the bias term equals
	// sum(out * colsum(W)) with W held constant.
	backend.Tape().Clear()
	colsum := make([]float32, hidden)
	for v := 0; v < vocab; v++ {
		for h := 0; h < hidden; h++ {
			colsum[h] += weight.At(v, h)
		}
	}
	encoderOutputs, state := model.Encode(src, lengths)
	out, _ := model.Decoder().Forward(tgt, state, encoderOutputs, lengths, nn.Eval)
	loss := out.Mul(tensor.MustFromSlice(colsum, tensor.Shape{hidden}, backend))
	lookup := autodiff.Backward(loss, backend)[weight.Raw()].AsFloat32()

	// Generator use alone: d sum(logits) / dW[v] is the sum of the decoder
	// outputs, the same for every row.
	generator := make([]float32, hidden)
	outData := out.Data()
	for i, x := range outData {
		generator[i%hidden] += x
	}

	require.Len(t, tied, vocab*hidden)
	require.Len(t, lookup, vocab*hidden)
	assert.Equal(t, make([]float32, hidden), lookup[:hidden], "padding row has no lookup gradient")
	assert.NotEqual(t, make([]float32, hidden), lookup[4*hidden:5*hidden], "token 4 is looked up")
	for v := 0; v < vocab; v++ {
		for h := 0; h < hidden; h++ {
			i := v*hidden + h
			assert.InDelta(t, lookup[i]+generator[h], tied[i], 1e-4, "row %d col %d", v, h)
		}
	}
}
