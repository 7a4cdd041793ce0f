package nn

import (
	"math"
	"math/rand"

	"github.com/born-ml/seq2seq/internal/tensor"
)

// Xavier (Glorot) initialization for weights.
//
// Values are drawn from U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out))).
func Xavier[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, rng *rand.Rand, backend B) *tensor.Tensor[float32, B] {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	return tensor.Uniform(shape, bound, rng, backend)
}

// Normal draws values from N(0, std²).
func Normal[B tensor.Backend](shape tensor.Shape, std float32, rng *rand.Rand, backend B) *tensor.Tensor[float32, B] {
	t := tensor.Randn(shape, rng, backend)
	data := t.Data()
	for i := range data {
		data[i] *= std
	}
	return t
}

// Zeros creates a tensor filled with zeros.
func Zeros[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Zeros[float32](shape, backend)
}

// Ones creates a tensor filled with ones.
func Ones[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Ones(shape, backend)
}
