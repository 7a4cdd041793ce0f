// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand"

	"github.com/born-ml/seq2seq/internal/nn"
	"github.com/born-ml/seq2seq/internal/tensor"
)

// Module is implemented by layers mapping one float tensor to another.
type Module[B tensor.Backend] = nn.Module[B]

// Parameter is a trainable tensor with an optional gradient.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// CollectGradients stores the gradient of each parameter found in grads and
// clears the others.
func CollectGradients[B tensor.Backend](params []*Parameter[B], grads map[*tensor.RawTensor]*tensor.RawTensor) {
	nn.CollectGradients(params, grads)
}

// CountParameters returns the total number of scalar parameters.
func CountParameters[B tensor.Backend](params []*Parameter[B]) int {
	return nn.CountParameters(params)
}

// Mode selects training or evaluation behavior.
type Mode = nn.Mode

// Modes.
const (
	Eval  = nn.Eval
	Train = nn.Train
)

// Layers

// Linear is a fully connected layer, y = x @ W.T + b.
type Linear[B tensor.Backend] = nn.Linear[B]

// NewLinear creates a Linear layer with Xavier-initialized weights.
//
// Example:
//
//	layer := nn.NewLinear(256, 8000, true, rng, backend)
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, bias bool, rng *rand.Rand, backend B) *Linear[B] {
	return nn.NewLinear(inFeatures, outFeatures, bias, rng, backend)
}

// NewLinearWithWeight creates a Linear layer sharing weight.
func NewLinearWithWeight[B tensor.Backend](weight *Parameter[B], bias bool, backend B) *Linear[B] {
	return nn.NewLinearWithWeight(weight, bias, backend)
}

// NoPadding disables an Embedding's padding index.
const NoPadding = nn.NoPadding

// Embedding is a lookup table with an optional padding index.
type Embedding[B tensor.Backend] = nn.Embedding[B]

// NewEmbedding creates an Embedding with N(0, 1) weights.
func NewEmbedding[B tensor.Backend](numEmbeddings, embeddingDim, paddingIdx int, rng *rand.Rand, backend B) *Embedding[B] {
	return nn.NewEmbedding(numEmbeddings, embeddingDim, paddingIdx, rng, backend)
}

// DefaultLayerNormEpsilon is the usual LayerNorm variance floor.
const DefaultLayerNormEpsilon = nn.DefaultLayerNormEpsilon

// LayerNorm normalizes the last dimension.
type LayerNorm[B tensor.Backend] = nn.LayerNorm[B]

// NewLayerNorm creates a LayerNorm over normalizedShape features.
func NewLayerNorm[B tensor.Backend](normalizedShape int, epsilon float32, backend B) *LayerNorm[B] {
	return nn.NewLayerNorm(normalizedShape, epsilon, backend)
}

// Dropout zeroes activations in Train mode.
type Dropout[B tensor.Backend] = nn.Dropout[B]

// NewDropout creates a Dropout layer with drop probability p.
func NewDropout[B tensor.Backend](p float32, rng *rand.Rand) *Dropout[B] {
	return nn.NewDropout[B](p, rng)
}

// Recurrent

// LSTMCell computes one LSTM timestep.
type LSTMCell[B tensor.Backend] = nn.LSTMCell[B]

// NewLSTMCell creates an LSTM cell.
func NewLSTMCell[B tensor.Backend](inputSize, hiddenSize int, rng *rand.Rand, backend B) *LSTMCell[B] {
	return nn.NewLSTMCell(inputSize, hiddenSize, rng, backend)
}

// LSTM is a single-layer LSTM over batch-first sequences.
type LSTM[B tensor.Backend] = nn.LSTM[B]

// NewLSTM creates an LSTM with hiddenSize units per direction.
func NewLSTM[B tensor.Backend](inputSize, hiddenSize int, bidirectional bool, rng *rand.Rand, backend B) *LSTM[B] {
	return nn.NewLSTM(inputSize, hiddenSize, bidirectional, rng, backend)
}

// Initialization

// Xavier draws from the Glorot uniform distribution.
func Xavier[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, rng *rand.Rand, backend B) *tensor.Tensor[float32, B] {
	return nn.Xavier(fanIn, fanOut, shape, rng, backend)
}

// Normal draws from N(0, std²).
func Normal[B tensor.Backend](shape tensor.Shape, std float32, rng *rand.Rand, backend B) *tensor.Tensor[float32, B] {
	return nn.Normal(shape, std, rng, backend)
}
