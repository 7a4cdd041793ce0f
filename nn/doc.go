// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the neural network layers the seq2seq model is built
// from.
//
// # Overview
//
// This package contains:
//   - Module interface and Parameter
//   - Layers: Linear, Embedding, LayerNorm, Dropout
//   - Recurrent: LSTMCell and LSTM (length-masked, optionally bidirectional)
//   - Initialization: Xavier, Normal, Zeros, Ones
//
// # Basic Usage
//
//	backend := cpu.New()
//	rng := rand.New(rand.NewSource(1))
//
//	embed := nn.NewEmbedding(1000, 64, 0, rng, backend)
//	lstm := nn.NewLSTM(64, 32, true, rng, backend)
//
//	x := embed.Forward(ids)                       // [batch, seq] -> [batch, seq, 64]
//	out, h, c := lstm.Forward(x, lengths, nil, nil) // out: [batch, seq, 64]
//
// # Modes
//
// Dropout takes its Mode (Train or Eval) on every call; no layer keeps an
// ambient training flag.
//
// # Weight Sharing
//
// NewLinearWithWeight builds a layer around an existing Parameter. The
// parameter is referenced, not copied, so an output projection can share
// its matrix with an embedding table.
package nn
