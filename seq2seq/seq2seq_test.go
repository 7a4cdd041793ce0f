// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package seq2seq_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/seq2seq/backend/cpu"
	"github.com/born-ml/seq2seq/generate"
	"github.com/born-ml/seq2seq/nn"
	"github.com/born-ml/seq2seq/seq2seq"
	"github.com/born-ml/seq2seq/tensor"
)

func TestPublicAPI_ForwardAndGenerate(t *testing.T) {
	backend := cpu.New()
	cfg := seq2seq.DefaultConfig()
	cfg.SrcVocabSize, cfg.TgtVocabSize, cfg.HiddenSize = 10, 12, 8

	model, err := seq2seq.New(cfg, backend)
	require.NoError(t, err)

	src := tensor.MustFromSlice([]int32{5, 3, 2, 0, 7, 8, 0, 0}, tensor.Shape{2, 4}, backend)
	tgt := tensor.MustFromSlice([]int32{1, 4, 6, 2, 1, 4, 6, 2}, tensor.Shape{2, 4}, backend)
	lengths := []int{3, 2}

	logits, state := model.Forward(src, lengths, tgt, nil, nn.Eval)
	assert.Equal(t, tensor.Shape{2, 3, 12}, logits.Shape())
	assert.Equal(t, tensor.Shape{1, 2, 8}, state.Hidden.Shape())

	config := generate.DefaultGenerateConfig()
	config.MaxTokens = 4
	hyps, err := generate.NewTranslator[*cpu.Backend](model, backend).Generate(src, lengths, config)
	require.NoError(t, err)
	require.Len(t, hyps, 2)
	for _, h := range hyps {
		assert.LessOrEqual(t, len(h.Tokens), 4)
		assert.NotEmpty(t, h.Reason)
	}
}

func TestPublicAPI_InvalidConfig(t *testing.T) {
	cfg := seq2seq.DefaultConfig()
	cfg.HiddenSize = 3
	_, err := seq2seq.New(cfg, cpu.New())
	assert.ErrorIs(t, err, seq2seq.ErrInvalidConfig)
}
