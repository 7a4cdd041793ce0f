package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/seq2seq/internal/tensor"
)

// NoPadding disables the padding index of an Embedding.
const NoPadding = -1

// Embedding is a lookup table that maps discrete indices to dense vectors.
//
// Architecture:
//   - Weight: [NumEmbed, EmbedDim] learnable parameter
//   - Forward: indices [batch, seq] -> embeddings [batch, seq, EmbedDim]
//   - Backward: gradients scatter-add to weight rows
//
// With a padding index the row for that index starts at zero and never
// receives gradient, so it stays zero under gradient-based updates.
//
// Example:
//
//	embed := nn.NewEmbedding(10000, 256, 0, rng, backend)
//	embeddings := embed.Forward(indices) // [2, 5] -> [2, 5, 256]
type Embedding[B tensor.Backend] struct {
	Weight     *Parameter[B] // [NumEmbed, EmbedDim]
	NumEmbed   int
	EmbedDim   int
	PaddingIdx int // NoPadding when unset
}

// NewEmbedding creates a new Embedding layer with weights drawn from N(0, 1).
// Pass NoPadding as paddingIdx to disable padding handling.
func NewEmbedding[B tensor.Backend](numEmbeddings, embeddingDim, paddingIdx int, rng *rand.Rand, backend B) *Embedding[B] {
	weight := tensor.Randn(tensor.Shape{numEmbeddings, embeddingDim}, rng, backend)
	return NewEmbeddingWithWeight(weight, paddingIdx)
}

// NewEmbeddingWithWeight creates an Embedding layer with pre-initialized
// weights [numEmbeddings, embeddingDim]. The padding row, if any, is zeroed.
func NewEmbeddingWithWeight[B tensor.Backend](weight *tensor.Tensor[float32, B], paddingIdx int) *Embedding[B] {
	shape := weight.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("embedding: weight must be 2D, got shape %v", shape))
	}
	if paddingIdx != NoPadding && (paddingIdx < 0 || paddingIdx >= shape[0]) {
		panic(fmt.Sprintf("embedding: padding index %d out of range [0, %d)", paddingIdx, shape[0]))
	}

	if paddingIdx != NoPadding {
		row := weight.Data()[paddingIdx*shape[1] : (paddingIdx+1)*shape[1]]
		clear(row)
	}

	return &Embedding[B]{
		Weight:     NewParameter("weight", weight),
		NumEmbed:   shape[0],
		EmbedDim:   shape[1],
		PaddingIdx: paddingIdx,
	}
}

// Forward performs embedding lookup.
//
// Output rows at padding positions are multiplied by zero, which both keeps
// them at zero and blocks their gradient from reaching the padding row.
//
// Panics if any index is out of bounds [0, NumEmbed).
func (e *Embedding[B]) Forward(indices *tensor.Tensor[int32, B]) *tensor.Tensor[float32, B] {
	out := e.Weight.Tensor().Embedding(indices)
	if e.PaddingIdx == NoPadding {
		return out
	}
	return out.Mul(e.nonPadMask(indices))
}

// nonPadMask returns indices.Shape() + [1] holding 1 for real tokens and 0
// for padding.
func (e *Embedding[B]) nonPadMask(indices *tensor.Tensor[int32, B]) *tensor.Tensor[float32, B] {
	shape := append(indices.Shape().Clone(), 1)
	mask := tensor.Zeros[float32](shape, indices.Backend())
	data := mask.Data()
	for i, idx := range indices.Data() {
		if int(idx) != e.PaddingIdx {
			data[i] = 1
		}
	}
	return mask
}

// Parameters returns the list of trainable parameters.
func (e *Embedding[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{e.Weight}
}
