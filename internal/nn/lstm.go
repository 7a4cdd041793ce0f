package nn

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/born-ml/seq2seq/internal/tensor"
)

// LSTMCell computes one LSTM timestep.
//
//	gates = x @ W_ih.T + b_ih + h @ W_hh.T + b_hh   // [batch, 4*hidden]
//	i, f, g, o = split(gates)                        // input, forget, cell, output
//	c' = σ(f) * c + σ(i) * tanh(g)
//	h' = σ(o) * tanh(c')
//
// All weights and biases are initialized from U(-1/sqrt(hidden), 1/sqrt(hidden)).
type LSTMCell[B tensor.Backend] struct {
	WeightIH *Parameter[B] // [4*hidden, input]
	WeightHH *Parameter[B] // [4*hidden, hidden]
	BiasIH   *Parameter[B] // [4*hidden]
	BiasHH   *Parameter[B] // [4*hidden]

	inputSize  int
	hiddenSize int
}

// NewLSTMCell creates an LSTM cell.
func NewLSTMCell[B tensor.Backend](inputSize, hiddenSize int, rng *rand.Rand, backend B) *LSTMCell[B] {
	bound := 1 / math.Sqrt(float64(hiddenSize))
	gates := 4 * hiddenSize
	return &LSTMCell[B]{
		WeightIH:   NewParameter("weight_ih", tensor.Uniform(tensor.Shape{gates, inputSize}, bound, rng, backend)),
		WeightHH:   NewParameter("weight_hh", tensor.Uniform(tensor.Shape{gates, hiddenSize}, bound, rng, backend)),
		BiasIH:     NewParameter("bias_ih", tensor.Uniform(tensor.Shape{gates}, bound, rng, backend)),
		BiasHH:     NewParameter("bias_hh", tensor.Uniform(tensor.Shape{gates}, bound, rng, backend)),
		inputSize:  inputSize,
		hiddenSize: hiddenSize,
	}
}

// Step advances the cell by one timestep. x is [batch, input]; h and c are
// [batch, hidden]. Returns the new (h, c).
func (cell *LSTMCell[B]) Step(x, h, c *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], *tensor.Tensor[float32, B]) {
	gates := x.MatMul(cell.WeightIH.Tensor().Transpose()).
		Add(cell.BiasIH.Tensor()).
		Add(h.MatMul(cell.WeightHH.Tensor().Transpose())).
		Add(cell.BiasHH.Tensor())

	hs := cell.hiddenSize
	i := gates.Narrow(1, 0, hs).Sigmoid()
	f := gates.Narrow(1, hs, hs).Sigmoid()
	g := gates.Narrow(1, 2*hs, hs).Tanh()
	o := gates.Narrow(1, 3*hs, hs).Sigmoid()

	cNext := f.Mul(c).Add(i.Mul(g))
	hNext := o.Mul(cNext.Tanh())
	return hNext, cNext
}

// Parameters returns [weight_ih, weight_hh, bias_ih, bias_hh].
func (cell *LSTMCell[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{cell.WeightIH, cell.WeightHH, cell.BiasIH, cell.BiasHH}
}

// LSTM runs a single-layer LSTM over a batch-first sequence, in one or both
// directions.
//
// Variable-length batches are handled with per-example lengths instead of a
// packed layout: at timesteps past an example's length the state is carried
// through unchanged and the output is zero. The forward direction therefore
// ends on the last valid step, and the backward direction starts from a zero
// state at the last valid step, matching a packed recurrence exactly.
// Lengths need not be sorted.
//
// Example:
//
//	lstm := nn.NewLSTM(8, 4, true, rng, backend)
//	out, h, c := lstm.Forward(x, []int{3, 2}, nil, nil)
//	// x [2, 4, 8] -> out [2, 4, 8], h and c [2, 2, 4]
type LSTM[B tensor.Backend] struct {
	Cells      []*LSTMCell[B] // one per direction, forward first
	HiddenSize int
}

// NewLSTM creates a single-layer LSTM with hiddenSize units per direction.
func NewLSTM[B tensor.Backend](inputSize, hiddenSize int, bidirectional bool, rng *rand.Rand, backend B) *LSTM[B] {
	cells := []*LSTMCell[B]{NewLSTMCell(inputSize, hiddenSize, rng, backend)}
	if bidirectional {
		cells = append(cells, NewLSTMCell(inputSize, hiddenSize, rng, backend))
	}
	return &LSTM[B]{Cells: cells, HiddenSize: hiddenSize}
}

// NumDirections returns 2 for a bidirectional LSTM, 1 otherwise.
func (l *LSTM[B]) NumDirections() int {
	return len(l.Cells)
}

// Forward runs the LSTM.
//
// Shapes:
//   - x: [batch, seq, input]
//   - lengths: nil (every example spans seq) or one entry per example in [1, seq]
//   - h0, c0: [directions, batch, hidden], or nil for zeros
//   - output: [batch, seq, directions*hidden], zero past each length
//   - h, c: [directions, batch, hidden], the state at each direction's last valid step
func (l *LSTM[B]) Forward(x *tensor.Tensor[float32, B], lengths []int, h0, c0 *tensor.Tensor[float32, B]) (output, h, c *tensor.Tensor[float32, B]) {
	shape := x.Shape()
	if len(shape) != 3 {
		panic(fmt.Sprintf("lstm: expected input [batch, seq, features], got %v", shape))
	}
	batch, seq := shape[0], shape[1]
	dirs := l.NumDirections()
	stateShape := tensor.Shape{dirs, batch, l.HiddenSize}
	for _, s := range []*tensor.Tensor[float32, B]{h0, c0} {
		if s != nil && !s.Shape().Equal(stateShape) {
			panic(fmt.Sprintf("lstm: initial state shape %v, expected %v", s.Shape(), stateShape))
		}
	}

	masks := stepMasks(lengths, batch, seq, x.Backend())

	outs := make([]*tensor.Tensor[float32, B], dirs)
	hs := make([]*tensor.Tensor[float32, B], dirs)
	cs := make([]*tensor.Tensor[float32, B], dirs)
	for d, cell := range l.Cells {
		hd := initialState(h0, d, batch, l.HiddenSize, x.Backend())
		cd := initialState(c0, d, batch, l.HiddenSize, x.Backend())
		outs[d], hs[d], cs[d] = runDirection(cell, x, masks, hd, cd, d == 1)
	}

	output = outs[0]
	if dirs == 2 {
		output = tensor.Cat(outs, -1)
	}
	return output, tensor.Stack(hs, 0), tensor.Stack(cs, 0)
}

// runDirection unrolls one direction. Outputs are gathered in time order
// whichever way the recurrence runs.
func runDirection[B tensor.Backend](
	cell *LSTMCell[B],
	x *tensor.Tensor[float32, B],
	masks []*tensor.Tensor[float32, B],
	h, c *tensor.Tensor[float32, B],
	reverse bool,
) (output, hN, cN *tensor.Tensor[float32, B]) {
	seq := x.Dim(1)
	steps := make([]*tensor.Tensor[float32, B], seq)
	for s := 0; s < seq; s++ {
		t := s
		if reverse {
			t = seq - 1 - s
		}
		xt := x.Narrow(1, t, 1).Squeeze(1)
		hNext, cNext := cell.Step(xt, h, c)

		if masks == nil {
			h, c = hNext, cNext
			steps[t] = hNext
			continue
		}
		// m is 1 for live examples, 0 past their length.
		m := masks[t]
		h = h.Add(m.Mul(hNext.Sub(h)))
		c = c.Add(m.Mul(cNext.Sub(c)))
		steps[t] = hNext.Mul(m)
	}
	return tensor.Stack(steps, 1), h, c
}

// stepMasks builds one [batch, 1] float mask per timestep, or nil when no
// lengths are given.
func stepMasks[B tensor.Backend](lengths []int, batch, seq int, backend B) []*tensor.Tensor[float32, B] {
	if lengths == nil {
		return nil
	}
	if len(lengths) != batch {
		panic(fmt.Sprintf("lstm: %d lengths for batch of %d", len(lengths), batch))
	}
	for i, n := range lengths {
		if n < 1 || n > seq {
			panic(fmt.Sprintf("lstm: length %d of example %d out of range [1, %d]", n, i, seq))
		}
	}

	masks := make([]*tensor.Tensor[float32, B], seq)
	for t := range masks {
		m := tensor.Zeros[float32](tensor.Shape{batch, 1}, backend)
		data := m.Data()
		for i, n := range lengths {
			if t < n {
				data[i] = 1
			}
		}
		masks[t] = m
	}
	return masks
}

func initialState[B tensor.Backend](s *tensor.Tensor[float32, B], dir, batch, hidden int, backend B) *tensor.Tensor[float32, B] {
	if s == nil {
		return tensor.Zeros[float32](tensor.Shape{batch, hidden}, backend)
	}
	return s.Narrow(0, dir, 1).Squeeze(0)
}

// Parameters returns the parameters of every direction, forward first.
func (l *LSTM[B]) Parameters() []*Parameter[B] {
	params := make([]*Parameter[B], 0, 4*len(l.Cells))
	for _, cell := range l.Cells {
		params = append(params, cell.Parameters()...)
	}
	return params
}
