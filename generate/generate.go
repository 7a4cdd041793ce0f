// Package generate decodes target sequences from a seq2seq model.
//
// Decoding encodes the source batch once, then calls the decoder one step at
// a time, feeding back each chosen token together with the decoder state the
// previous call returned.
//
// Components:
//   - Sampler: greedy, temperature, top-k, top-p and repetition penalty
//   - Translator: batched stepwise decoding with streaming
//
// Example usage:
//
//	model, _ := seq2seq.New(cfg, backend)
//	translator := generate.NewTranslator[*cpu.Backend](model, backend)
//
//	config := generate.DefaultGenerateConfig()
//	config.MaxTokens = 32
//	hyps, err := translator.Generate(src, srcLengths, config)
package generate

import (
	"github.com/born-ml/seq2seq/internal/generate"
	"github.com/born-ml/seq2seq/internal/tensor"
)

// Sampling

// SamplingConfig configures how the next token is chosen.
//
// Parameters:
//   - Temperature: 0 = greedy, 1 = model distribution, >1 = flatter
//   - TopK: keep the K most likely tokens (0 = all)
//   - TopP: nucleus threshold (1 = disabled)
//   - RepeatPenalty, RepeatWindow: shrink recently emitted tokens (1 = off)
//   - Seed: -1 = random
type SamplingConfig = generate.SamplingConfig

// GreedySamplingConfig always picks the most likely token.
func GreedySamplingConfig() SamplingConfig {
	return generate.GreedySamplingConfig()
}

// Sampler picks token ids from logits.
type Sampler = generate.Sampler

// NewSampler creates a sampler.
func NewSampler(config SamplingConfig) *Sampler {
	return generate.NewSampler(config)
}

// Decoding

// GenerateConfig configures decoding.
//
//nolint:revive // GenerateConfig is clearer than Config
type GenerateConfig = generate.GenerateConfig

// DefaultGenerateConfig returns greedy decoding with <pad>=0, <sos>=1 and
// <eos>=2.
func DefaultGenerateConfig() GenerateConfig {
	return generate.DefaultGenerateConfig()
}

// GenerateResult is one streamed token.
//
//nolint:revive // GenerateResult is clearer than Result
type GenerateResult = generate.GenerateResult

// Hypothesis is the decoded output of one batch row.
type Hypothesis = generate.Hypothesis

// Stop reasons.
const (
	ReasonEOS       = generate.ReasonEOS
	ReasonStopToken = generate.ReasonStopToken
	ReasonMaxTokens = generate.ReasonMaxTokens
)

// ErrEmptyBatch is returned when there is nothing to decode.
var ErrEmptyBatch = generate.ErrEmptyBatch

// Model is the encode/decode surface Translator drives.
type Model[B tensor.Backend] = generate.Model[B]

// Translator decodes target sequences for batches of source sequences.
type Translator[B tensor.Backend] = generate.Translator[B]

// NewTranslator creates a translator over model.
func NewTranslator[B tensor.Backend](model Model[B], backend B) *Translator[B] {
	return generate.NewTranslator(model, backend)
}
