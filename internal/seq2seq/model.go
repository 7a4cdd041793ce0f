package seq2seq

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/seq2seq/internal/nn"
	"github.com/born-ml/seq2seq/internal/tensor"
)

// Model is an encoder-decoder network with a generator projecting decoder
// outputs onto the target vocabulary.
//
// The generator's weight is the decoder embedding's weight parameter itself,
// so the two always hold the same values and accumulate one gradient.
//
// Example:
//
//	model, err := seq2seq.New(cfg, cpu.New())
//	logits, state := model.Forward(src, srcLengths, tgt, nil, nn.Eval)
//	// logits: [batch, tgtLen-1, tgtVocab]
type Model[B tensor.Backend] struct {
	config    Config
	encoder   *Encoder[B]
	decoder   *Decoder[B]
	generator *nn.Linear[B]
}

// New creates a model from cfg. Initialization is deterministic in cfg.Seed.
func New[B tensor.Backend](cfg Config, backend B) (*Model[B], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))            //nolint:gosec // G404: model initialization, not security.
	dropoutRNG := rand.New(rand.NewSource(cfg.Seed + 1)) //nolint:gosec // G404: dropout masks, not security.

	encoder := NewEncoder(cfg.SrcVocabSize, cfg.HiddenSize, cfg.PaddingIdx, rng, backend)
	decoder := NewDecoder(cfg.TgtVocabSize, cfg.HiddenSize, cfg.PaddingIdx, cfg.Dropout, cfg.Attention, rng, dropoutRNG, backend)

	return &Model[B]{
		config:    cfg,
		encoder:   encoder,
		decoder:   decoder,
		generator: nn.NewLinearWithWeight(decoder.Embedding.Weight, true, backend),
	}, nil
}

// Forward runs the full model.
//
// src is [batch, srcLen] with srcLengths per example; tgt is [batch, tgtLen].
// When decState is nil the decoder starts from the encoder's final state,
// otherwise from *decState (either [2, batch, hidden/2] or [1, batch, hidden]).
//
// Returns logits [batch, steps, tgtVocab], where steps is tgtLen-1 for
// tgtLen > 1 and 1 otherwise, and the decoder's final state.
func (m *Model[B]) Forward(
	src *tensor.Tensor[int32, B],
	srcLengths []int,
	tgt *tensor.Tensor[int32, B],
	decState *State[B],
	mode nn.Mode,
) (*tensor.Tensor[float32, B], State[B]) {
	encoderOutputs, encoderState := m.Encode(src, srcLengths)

	state := encoderState
	if decState != nil {
		state = *decState
	}
	return m.Decode(tgt, state, encoderOutputs, srcLengths, mode)
}

// Encode runs the encoder alone. Callers decoding incrementally encode once
// and pass the outputs to every Decode call.
func (m *Model[B]) Encode(src *tensor.Tensor[int32, B], srcLengths []int) (*tensor.Tensor[float32, B], State[B]) {
	if src.Dim(0) != len(srcLengths) {
		panic(fmt.Sprintf("seq2seq: %d source lengths for batch of %d", len(srcLengths), src.Dim(0)))
	}
	return m.encoder.Forward(src, srcLengths)
}

// Decode runs the decoder and the generator from state.
func (m *Model[B]) Decode(
	tgt *tensor.Tensor[int32, B],
	state State[B],
	encoderOutputs *tensor.Tensor[float32, B],
	srcLengths []int,
	mode nn.Mode,
) (*tensor.Tensor[float32, B], State[B]) {
	outputs, final := m.decoder.Forward(tgt, state, encoderOutputs, srcLengths, mode)
	return m.generator.Forward(outputs), final
}

// Config returns the configuration the model was built from.
func (m *Model[B]) Config() Config {
	return m.config
}

// Encoder returns the encoder.
func (m *Model[B]) Encoder() *Encoder[B] {
	return m.encoder
}

// Decoder returns the decoder.
func (m *Model[B]) Decoder() *Decoder[B] {
	return m.decoder
}

// Generator returns the output projection.
func (m *Model[B]) Generator() *nn.Linear[B] {
	return m.generator
}

// Parameters returns every trainable parameter once. The tied
// embedding/generator weight appears a single time.
func (m *Model[B]) Parameters() []*nn.Parameter[B] {
	all := append(m.encoder.Parameters(), m.decoder.Parameters()...)
	all = append(all, m.generator.Parameters()...)

	seen := make(map[*nn.Parameter[B]]struct{}, len(all))
	params := all[:0]
	for _, p := range all {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		params = append(params, p)
	}
	return params
}
