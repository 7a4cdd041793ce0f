// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode automatic differentiation.
//
// New wraps any backend so that every operation is recorded on a gradient
// tape while recording is on; Backward replays the tape in reverse.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	model, _ := seq2seq.New(cfg, backend)
//
//	backend.Tape().StartRecording()
//	logits, _ := model.Forward(src, lengths, tgt, nil, nn.Train)
//	grads := autodiff.Backward(logits, backend)
//	nn.CollectGradients(model.Parameters(), grads)
package autodiff

import (
	"github.com/born-ml/seq2seq/internal/autodiff"
	"github.com/born-ml/seq2seq/internal/tensor"
)

// Backend is the autodiff-enabled backend.
type Backend[B tensor.Backend] = autodiff.AutodiffBackend[B]

// New creates a new autodiff backend wrapping the given backend.
func New[B tensor.Backend](backend B) *Backend[B] {
	return autodiff.New(backend)
}

// GradientTape records operations for automatic differentiation.
type GradientTape = autodiff.GradientTape

// BackwardCapable interface for backends that support backpropagation.
type BackwardCapable = autodiff.BackwardCapable

// Backward computes the gradient of every recorded input with respect to t,
// seeded with ones. Gradients are keyed by RawTensor.
func Backward[T tensor.DType, B BackwardCapable](t *tensor.Tensor[T, B], backend B) map[*tensor.RawTensor]*tensor.RawTensor {
	return autodiff.Backward(t, backend)
}
