// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package seq2seq is the public API of the encoder-decoder model with
// additive attention.
//
// Example:
//
//	backend := cpu.New()
//	model, err := seq2seq.New(seq2seq.DefaultConfig(), backend)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	logits, state := model.Forward(src, srcLengths, tgt, nil, nn.Eval)
package seq2seq

import (
	"math/rand"

	"github.com/born-ml/seq2seq/internal/seq2seq"
	"github.com/born-ml/seq2seq/internal/tensor"
)

// Config holds model hyperparameters.
type Config = seq2seq.Config

// DefaultConfig returns a small attention model configuration.
func DefaultConfig() Config {
	return seq2seq.DefaultConfig()
}

// ErrInvalidConfig is wrapped by configuration errors.
var ErrInvalidConfig = seq2seq.ErrInvalidConfig

// Model is the full encoder-decoder network with a tied generator.
type Model[B tensor.Backend] = seq2seq.Model[B]

// New creates a model from cfg.
func New[B tensor.Backend](cfg Config, backend B) (*Model[B], error) {
	return seq2seq.New(cfg, backend)
}

// State is the recurrent (hidden, cell) pair.
type State[B tensor.Backend] = seq2seq.State[B]

// ReshapeState folds a [2, batch, h] bidirectional state into [1, batch, 2h].
func ReshapeState[B tensor.Backend](s State[B]) State[B] {
	return seq2seq.ReshapeState(s)
}

// Encoder is the embedding + bidirectional LSTM encoder.
type Encoder[B tensor.Backend] = seq2seq.Encoder[B]

// NewEncoder creates an encoder.
func NewEncoder[B tensor.Backend](vocabSize, hiddenSize, paddingIdx int, rng *rand.Rand, backend B) *Encoder[B] {
	return seq2seq.NewEncoder(vocabSize, hiddenSize, paddingIdx, rng, backend)
}

// Decoder is the stepwise LSTM decoder.
type Decoder[B tensor.Backend] = seq2seq.Decoder[B]

// NewDecoder creates a decoder.
func NewDecoder[B tensor.Backend](
	vocabSize, hiddenSize, paddingIdx int,
	dropout float32,
	attention bool,
	rng, dropoutRNG *rand.Rand,
	backend B,
) *Decoder[B] {
	return seq2seq.NewDecoder(vocabSize, hiddenSize, paddingIdx, dropout, attention, rng, dropoutRNG, backend)
}

// BahdanauAttention is masked additive attention.
type BahdanauAttention[B tensor.Backend] = seq2seq.BahdanauAttention[B]

// NewBahdanauAttention creates an attention module.
func NewBahdanauAttention[B tensor.Backend](hiddenSize int, rng *rand.Rand, backend B) *BahdanauAttention[B] {
	return seq2seq.NewBahdanauAttention(hiddenSize, rng, backend)
}

// SequenceMask returns a [batch, maxLen] mask, true before each length.
func SequenceMask[B tensor.Backend](lengths []int, maxLen int, backend B) *tensor.Tensor[bool, B] {
	return seq2seq.SequenceMask(lengths, maxLen, backend)
}
