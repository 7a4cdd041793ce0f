// Package nn implements the neural network building blocks of the seq2seq
// model.
//
// This package provides:
//   - Module interface and Parameter: trainable tensors with gradients
//   - Linear: affine layer, optionally sharing its weight with another module
//   - Embedding: lookup table with an optional padding index
//   - LayerNorm: normalization over the feature axis
//   - Dropout: inverted dropout with an explicit Train/Eval mode
//   - LSTM: single-layer LSTM, optionally bidirectional, with length masking
//
// Design inspired by PyTorch's nn.Module but adapted for Go generics.
package nn

import (
	"github.com/born-ml/seq2seq/internal/tensor"
)

// Module is implemented by layers that map one float tensor to another.
//
// Modules with richer signatures (Embedding takes int32 indices, LSTM takes
// lengths and an initial state, Dropout takes a Mode) expose Parameters
// the same way but are not Modules.
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module given an input tensor.
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns all trainable parameters of this module.
	Parameters() []*Parameter[B]
}
