package seq2seq

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/seq2seq/internal/nn"
	"github.com/born-ml/seq2seq/internal/tensor"
)

// Encoder embeds a padded source batch and runs a bidirectional LSTM over
// the valid timesteps of each example.
type Encoder[B tensor.Backend] struct {
	Embedding *nn.Embedding[B]
	LSTM      *nn.LSTM[B] // hidden/2 units per direction
}

// NewEncoder creates an encoder producing hiddenSize features per position.
// hiddenSize must be even.
func NewEncoder[B tensor.Backend](vocabSize, hiddenSize, paddingIdx int, rng *rand.Rand, backend B) *Encoder[B] {
	if hiddenSize%2 != 0 {
		panic(fmt.Sprintf("encoder: hidden size %d is not even", hiddenSize))
	}
	return &Encoder[B]{
		Embedding: nn.NewEmbedding(vocabSize, hiddenSize, paddingIdx, rng, backend),
		LSTM:      nn.NewLSTM(hiddenSize, hiddenSize/2, true, rng, backend),
	}
}

// Forward encodes src [batch, srcLen] with per-example lengths.
//
// Returns outputs [batch, srcLen, hidden], zero past each length, and the
// final state with Hidden and Cell [2, batch, hidden/2]. Lengths need not
// be sorted.
func (e *Encoder[B]) Forward(src *tensor.Tensor[int32, B], lengths []int) (*tensor.Tensor[float32, B], State[B]) {
	if len(src.Shape()) != 2 {
		panic(fmt.Sprintf("encoder: expected source [batch, seq], got %v", src.Shape()))
	}
	embedded := e.Embedding.Forward(src)
	outputs, h, c := e.LSTM.Forward(embedded, lengths, nil, nil)
	return outputs, State[B]{Hidden: h, Cell: c}
}

// Parameters returns the embedding weight followed by the LSTM parameters.
func (e *Encoder[B]) Parameters() []*nn.Parameter[B] {
	return append(e.Embedding.Parameters(), e.LSTM.Parameters()...)
}
