package nn

import (
	"github.com/born-ml/seq2seq/internal/tensor"
)

// DefaultLayerNormEpsilon is the variance floor used when none is given.
const DefaultLayerNormEpsilon = 1e-5

// LayerNorm applies Layer Normalization over the last dimension.
//
// Formula: Y = gamma * (X - mean(X)) / sqrt(var(X) + eps) + beta
//
// Where:
//   - gamma is the learnable scale parameter [d_model], initialized to ones
//   - beta is the learnable shift parameter [d_model], initialized to zeros
//   - mean and (biased) variance are computed along the last dimension
//
// Example:
//
//	layernorm := nn.NewLayerNorm(8, nn.DefaultLayerNormEpsilon, backend)
//	output := layernorm.Forward(hidden) // [..., 8] -> [..., 8]
type LayerNorm[B tensor.Backend] struct {
	Gamma   *Parameter[B]
	Beta    *Parameter[B]
	Epsilon float32
}

// NewLayerNorm creates a new LayerNorm layer over a feature axis of size
// normalizedShape.
func NewLayerNorm[B tensor.Backend](normalizedShape int, epsilon float32, backend B) *LayerNorm[B] {
	return &LayerNorm[B]{
		Gamma:   NewParameter("gamma", Ones(tensor.Shape{normalizedShape}, backend)),
		Beta:    NewParameter("beta", Zeros(tensor.Shape{normalizedShape}, backend)),
		Epsilon: epsilon,
	}
}

// Forward applies LayerNorm to the input tensor.
//
// Algorithm:
//  1. mean = mean(x) along the last dimension (keepDim)
//  2. x_centered = x - mean
//  3. variance = mean(x_centered^2) along the last dimension
//  4. x_norm = x_centered * rsqrt(variance + eps)
//  5. output = gamma * x_norm + beta
func (l *LayerNorm[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	mean := x.MeanDim(-1, true)
	xCentered := x.Sub(mean)
	variance := xCentered.Mul(xCentered).MeanDim(-1, true)
	xNorm := xCentered.Mul(variance.AddScalar(l.Epsilon).Rsqrt())

	// [d_model] broadcasts against [..., d_model] from the right.
	return xNorm.Mul(l.Gamma.Tensor()).Add(l.Beta.Tensor())
}

// Parameters returns the learnable parameters (gamma and beta).
func (l *LayerNorm[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{l.Gamma, l.Beta}
}
