package seq2seq

import (
	"fmt"

	"github.com/born-ml/seq2seq/internal/tensor"
)

// State is the recurrent (hidden, cell) pair. Both tensors are
// [layers*directions, batch, hiddenPerDirection].
type State[B tensor.Backend] struct {
	Hidden *tensor.Tensor[float32, B]
	Cell   *tensor.Tensor[float32, B]
}

// ReshapeState folds the two directions of a single-layer bidirectional
// state into one unidirectional state: [2, batch, h] -> [1, batch, 2h].
// The forward direction fills the first h features, the backward direction
// the last h.
//
// Panics if either tensor's leading dimension is not 2.
func ReshapeState[B tensor.Backend](s State[B]) State[B] {
	return State[B]{
		Hidden: joinDirections(s.Hidden),
		Cell:   joinDirections(s.Cell),
	}
}

func joinDirections[B tensor.Backend](x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := x.Shape()
	if len(shape) != 3 || shape[0] != 2 {
		panic(fmt.Sprintf("reshape state: expected [2, batch, hidden], got %v", shape))
	}
	return tensor.Cat([]*tensor.Tensor[float32, B]{x.Narrow(0, 0, 1), x.Narrow(0, 1, 1)}, 2)
}
