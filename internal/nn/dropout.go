package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/seq2seq/internal/tensor"
)

// Mode selects training or evaluation behavior for mode-dependent layers.
type Mode int

const (
	// Eval disables stochastic layers.
	Eval Mode = iota
	// Train enables stochastic layers.
	Train
)

// String returns "train" or "eval".
func (m Mode) String() string {
	if m == Train {
		return "train"
	}
	return "eval"
}

// Dropout zeroes each activation with probability P during training and
// scales survivors by 1/(1-P). In Eval mode it returns its input unchanged.
//
// The mode is passed to every Forward call rather than stored on the layer.
type Dropout[B tensor.Backend] struct {
	P   float32
	rng *rand.Rand
}

// NewDropout creates a Dropout layer drawing its masks from rng.
// Panics if p is outside [0, 1).
func NewDropout[B tensor.Backend](p float32, rng *rand.Rand) *Dropout[B] {
	if p < 0 || p >= 1 {
		panic(fmt.Sprintf("dropout: probability %v out of range [0, 1)", p))
	}
	return &Dropout[B]{P: p, rng: rng}
}

// Forward applies dropout to x according to mode.
func (d *Dropout[B]) Forward(x *tensor.Tensor[float32, B], mode Mode) *tensor.Tensor[float32, B] {
	if mode == Eval || d.P == 0 {
		return x
	}

	mask := tensor.Zeros[float32](x.Shape(), x.Backend())
	scale := 1 / (1 - d.P)
	data := mask.Data()
	for i := range data {
		if d.rng.Float32() >= d.P {
			data[i] = scale
		}
	}
	return x.Mul(mask)
}
