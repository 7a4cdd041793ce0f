package seq2seq

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/seq2seq/internal/nn"
	"github.com/born-ml/seq2seq/internal/tensor"
)

// Decoder is a unidirectional LSTM run one target step at a time, with
// optional attention over the encoder outputs after every step.
type Decoder[B tensor.Backend] struct {
	Embedding *nn.Embedding[B]
	Dropout   *nn.Dropout[B]
	LSTM      *nn.LSTM[B]
	Attention *BahdanauAttention[B] // nil when attention is disabled
}

// NewDecoder creates a decoder. Parameters are drawn from rng; dropoutRNG
// drives the dropout masks.
func NewDecoder[B tensor.Backend](
	vocabSize, hiddenSize, paddingIdx int,
	dropout float32,
	attention bool,
	rng, dropoutRNG *rand.Rand,
	backend B,
) *Decoder[B] {
	d := &Decoder[B]{
		Embedding: nn.NewEmbedding(vocabSize, hiddenSize, paddingIdx, rng, backend),
		Dropout:   nn.NewDropout[B](dropout, dropoutRNG),
		LSTM:      nn.NewLSTM(hiddenSize, hiddenSize, false, rng, backend),
	}
	if attention {
		d.Attention = NewBahdanauAttention(hiddenSize, rng, backend)
	}
	return d
}

// Forward decodes a teacher-forced target batch tgt [batch, tgtLen].
//
// A bidirectional state (leading dimension 2) is folded with ReshapeState
// first. When tgtLen > 1 the last column is dropped, so the decoder sees
// every token but the final one; a single-column tgt is a lone step and is
// kept. Steps run strictly in order, each consuming the state left by the
// previous one.
//
// Returns outputs [batch, steps, hidden] and the state after the last step.
// encoderOutputs and srcLengths are only read when attention is enabled.
func (d *Decoder[B]) Forward(
	tgt *tensor.Tensor[int32, B],
	state State[B],
	encoderOutputs *tensor.Tensor[float32, B],
	srcLengths []int,
	mode nn.Mode,
) (*tensor.Tensor[float32, B], State[B]) {
	shape := tgt.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("decoder: expected target [batch, seq], got %v", shape))
	}
	if state.Hidden.Dim(0) == 2 {
		state = ReshapeState(state)
	}

	steps := shape[1]
	if steps > 1 {
		steps--
		tgt = tgt.Narrow(1, 0, steps)
	}

	embedded := d.Dropout.Forward(d.Embedding.Forward(tgt), mode)

	h, c := state.Hidden, state.Cell
	outputs := make([]*tensor.Tensor[float32, B], steps)
	for t := 0; t < steps; t++ {
		var out *tensor.Tensor[float32, B]
		out, h, c = d.LSTM.Forward(embedded.Narrow(1, t, 1), nil, h, c)
		if d.Attention != nil {
			out = d.Attention.Forward(out, encoderOutputs, srcLengths)
		}
		outputs[t] = out
	}

	return tensor.Cat(outputs, 1), State[B]{Hidden: h, Cell: c}
}

// Parameters returns the embedding, LSTM and attention parameters in that
// order.
func (d *Decoder[B]) Parameters() []*nn.Parameter[B] {
	params := append(d.Embedding.Parameters(), d.LSTM.Parameters()...)
	if d.Attention != nil {
		params = append(params, d.Attention.Parameters()...)
	}
	return params
}
