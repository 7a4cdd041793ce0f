package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/seq2seq/internal/tensor"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation: y = x @ W.T + b
// where:
//   - x is the input tensor with shape [..., in_features]
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the optional bias vector with shape [out_features]
//   - y is the output tensor with shape [..., out_features]
//
// Leading dimensions are flattened for the product and restored afterwards,
// so the layer applies position-wise to sequences.
//
// Example:
//
//	backend := cpu.New()
//	layer := nn.NewLinear(16, 8, true, rng, backend)
//	output := layer.Forward(input) // [batch, seq, 16] -> [batch, seq, 8]
type Linear[B tensor.Backend] struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter[B] // [out_features, in_features]
	bias        *Parameter[B] // [out_features], nil without bias
}

// NewLinear creates a new Linear layer.
//
// Weights use Xavier/Glorot uniform initialization drawn from rng.
// The bias, when requested, starts at zero.
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, bias bool, rng *rand.Rand, backend B) *Linear[B] {
	weight := Xavier(inFeatures, outFeatures, tensor.Shape{outFeatures, inFeatures}, rng, backend)
	return NewLinearWithWeight(NewParameter("weight", weight), bias, backend)
}

// NewLinearWithWeight creates a Linear layer around an existing weight
// parameter of shape [out_features, in_features].
//
// The parameter is held by reference, not copied: a layer built from
// another module's weight shares storage and gradients with it.
func NewLinearWithWeight[B tensor.Backend](weight *Parameter[B], bias bool, backend B) *Linear[B] {
	shape := weight.Tensor().Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("linear: weight must be 2D, got shape %v", shape))
	}

	l := &Linear[B]{
		inFeatures:  shape[1],
		outFeatures: shape[0],
		weight:      weight,
	}
	if bias {
		l.bias = NewParameter("bias", Zeros(tensor.Shape{shape[0]}, backend))
	}
	return l
}

// Forward computes x @ W.T + b over the last dimension of input.
func (l *Linear[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	inputShape := input.Shape()
	if len(inputShape) < 2 {
		panic(fmt.Sprintf("linear: expected input of rank >= 2, got shape %v", inputShape))
	}
	if inputShape[len(inputShape)-1] != l.inFeatures {
		panic(fmt.Sprintf("linear: expected input with %d features, got %d", l.inFeatures, inputShape[len(inputShape)-1]))
	}

	x := input
	if len(inputShape) > 2 {
		x = input.Reshape(-1, l.inFeatures)
	}

	output := x.MatMul(l.weight.Tensor().Transpose())
	if l.bias != nil {
		output = output.Add(l.bias.Tensor().Reshape(1, l.outFeatures))
	}

	if len(inputShape) > 2 {
		outShape := inputShape.Clone()
		outShape[len(outShape)-1] = l.outFeatures
		output = output.Reshape(outShape...)
	}
	return output
}

// Parameters returns [weight, bias] if bias is present, otherwise [weight].
func (l *Linear[B]) Parameters() []*Parameter[B] {
	if l.bias != nil {
		return []*Parameter[B]{l.weight, l.bias}
	}
	return []*Parameter[B]{l.weight}
}

// Weight returns the weight parameter.
func (l *Linear[B]) Weight() *Parameter[B] {
	return l.weight
}

// Bias returns the bias parameter, or nil.
func (l *Linear[B]) Bias() *Parameter[B] {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear[B]) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear[B]) OutFeatures() int {
	return l.outFeatures
}
