// Package generate decodes target sequences from a seq2seq model one step at
// a time, feeding each chosen token and the returned decoder state back into
// the next call.
package generate

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/born-ml/seq2seq/internal/nn"
	"github.com/born-ml/seq2seq/internal/seq2seq"
	"github.com/born-ml/seq2seq/internal/tensor"
)

// Stop reasons reported in GenerateResult.Reason and Hypothesis.Reason.
const (
	ReasonEOS       = "eos"
	ReasonStopToken = "stop_token"
	ReasonMaxTokens = "max_tokens"
)

// ErrEmptyBatch is returned when there is nothing to decode.
var ErrEmptyBatch = errors.New("generate: empty source batch")

// GenerateConfig configures decoding.
//
//nolint:revive // GenerateConfig is clearer than Config
type GenerateConfig struct {
	// MaxTokens caps the number of decoded tokens per sequence.
	MaxTokens int `mapstructure:"max_tokens" yaml:"max_tokens"`

	// MinTokens suppresses stop tokens until this many have been decoded.
	MinTokens int `mapstructure:"min_tokens" yaml:"min_tokens"`

	// StartToken is fed to the decoder at the first step.
	StartToken int32 `mapstructure:"start_token" yaml:"start_token"`

	// EndToken ends a sequence. -1 disables it.
	EndToken int32 `mapstructure:"end_token" yaml:"end_token"`

	// PadToken is fed for sequences that already finished while the rest of
	// the batch keeps decoding.
	PadToken int32 `mapstructure:"pad_token" yaml:"pad_token"`

	// StopTokens end a sequence like EndToken but are kept in its output.
	StopTokens []int32 `mapstructure:"stop_tokens" yaml:"stop_tokens"`

	Sampling SamplingConfig `mapstructure:"sampling" yaml:"sampling"`
}

// DefaultGenerateConfig returns greedy decoding with <pad>=0, <sos>=1 and
// <eos>=2.
func DefaultGenerateConfig() GenerateConfig {
	return GenerateConfig{
		MaxTokens:  64,
		StartToken: 1,
		EndToken:   2,
		PadToken:   0,
		Sampling:   GreedySamplingConfig(),
	}
}

// GenerateResult is one decoded token of one batch row.
//
//nolint:revive // GenerateResult is clearer than Result
type GenerateResult struct {
	Row     int    // batch row the token belongs to
	Step    int    // zero-based decoding step
	TokenID int32  // decoded token
	Done    bool   // the row has finished
	Reason  string // stop reason when Done
	Error   error
}

// Hypothesis is the decoded output of one batch row. Tokens excludes the
// EndToken that finished it.
type Hypothesis struct {
	Tokens []int32
	Reason string
}

// Model is the part of a seq2seq model decoding needs.
// *seq2seq.Model satisfies it.
type Model[B tensor.Backend] interface {
	Encode(src *tensor.Tensor[int32, B], srcLengths []int) (*tensor.Tensor[float32, B], seq2seq.State[B])
	Decode(
		tgt *tensor.Tensor[int32, B],
		state seq2seq.State[B],
		encoderOutputs *tensor.Tensor[float32, B],
		srcLengths []int,
		mode nn.Mode,
	) (*tensor.Tensor[float32, B], seq2seq.State[B])
}

// Translator decodes target sequences for batches of source sequences.
type Translator[B tensor.Backend] struct {
	model   Model[B]
	backend B
}

// NewTranslator creates a translator over model.
func NewTranslator[B tensor.Backend](model Model[B], backend B) *Translator[B] {
	return &Translator[B]{model: model, backend: backend}
}

// Generate decodes every row of src [batch, srcLen] and returns one
// hypothesis per row.
func (t *Translator[B]) Generate(src *tensor.Tensor[int32, B], srcLengths []int, config GenerateConfig) ([]Hypothesis, error) {
	hyps := make([]Hypothesis, len(srcLengths))
	err := t.generate(src, srcLengths, config, func(res GenerateResult) bool {
		h := &hyps[res.Row]
		if !(res.Done && res.Reason == ReasonEOS) {
			h.Tokens = append(h.Tokens, res.TokenID)
		}
		if res.Done {
			h.Reason = res.Reason
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return hyps, nil
}

// GenerateStream decodes src and streams every token as it is chosen. The
// channel is closed when all rows have finished or ctx is done. A cancelled
// stream ends with a result carrying ctx.Err() if the consumer still reads.
func (t *Translator[B]) GenerateStream(
	ctx context.Context,
	src *tensor.Tensor[int32, B],
	srcLengths []int,
	config GenerateConfig,
) (<-chan GenerateResult, error) {
	if err := validate(src, srcLengths, config); err != nil {
		return nil, err
	}

	ch := make(chan GenerateResult, len(srcLengths))
	go func() {
		defer close(ch)
		err := t.generate(src, srcLengths, config, func(res GenerateResult) bool {
			select {
			case ch <- res:
				return ctx.Err() == nil
			case <-ctx.Done():
				return false
			}
		})
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			select {
			case ch <- GenerateResult{Done: true, Error: err}:
			default:
			}
		}
	}()
	return ch, nil
}

// generate encodes src once, then runs one decoder call per step, threading
// the returned state into the next call. callback returning false stops
// decoding early.
func (t *Translator[B]) generate(
	src *tensor.Tensor[int32, B],
	srcLengths []int,
	config GenerateConfig,
	callback func(GenerateResult) bool,
) error {
	if err := validate(src, srcLengths, config); err != nil {
		return err
	}

	batch := len(srcLengths)
	sampler := NewSampler(config.Sampling)
	encoderOutputs, state := t.model.Encode(src, srcLengths)

	input := tensor.Full[int32](tensor.Shape{batch, 1}, config.StartToken, t.backend)
	history := make([][]int32, batch)
	done := make([]bool, batch)
	remaining := batch

	for step := 0; step < config.MaxTokens && remaining > 0; step++ {
		var logits *tensor.Tensor[float32, B]
		logits, state = t.model.Decode(input, state, encoderOutputs, srcLengths, nn.Eval)
		next := t.pick(sampler, logits, history, config)

		input = tensor.Zeros[int32](tensor.Shape{batch, 1}, t.backend)
		feed := input.Data()
		for row, tok := range next {
			if done[row] {
				feed[row] = config.PadToken
				continue
			}
			history[row] = append(history[row], tok)
			feed[row] = tok

			finished, reason := checkStop(tok, len(history[row]), config)
			if finished {
				done[row] = true
				remaining--
			}
			res := GenerateResult{Row: row, Step: step, TokenID: tok, Done: finished, Reason: reason}
			if !callback(res) {
				return nil
			}
		}
	}
	return nil
}

// pick chooses the next token of every row from logits [batch, 1, vocab].
func (t *Translator[B]) pick(sampler *Sampler, logits *tensor.Tensor[float32, B], history [][]int32, config GenerateConfig) []int32 {
	rows := logits.Squeeze(1)
	if config.Sampling.greedy() {
		return slices.Clone(rows.Argmax(-1).Data())
	}

	vocab := rows.Dim(1)
	data := rows.Data()
	next := make([]int32, len(history))
	for row := range next {
		next[row] = sampler.Sample(data[row*vocab:(row+1)*vocab], history[row])
	}
	return next
}

// checkStop reports whether a row that just emitted token (its count-th)
// has finished, and why.
func checkStop(token int32, count int, config GenerateConfig) (bool, string) {
	if count >= config.MinTokens {
		if config.EndToken >= 0 && token == config.EndToken {
			return true, ReasonEOS
		}
		if slices.Contains(config.StopTokens, token) {
			return true, ReasonStopToken
		}
	}
	if count >= config.MaxTokens {
		return true, ReasonMaxTokens
	}
	return false, ""
}

func validate[B tensor.Backend](src *tensor.Tensor[int32, B], srcLengths []int, config GenerateConfig) error {
	if len(srcLengths) == 0 {
		return ErrEmptyBatch
	}
	if config.MaxTokens <= 0 {
		return fmt.Errorf("generate: max tokens must be positive, got %d", config.MaxTokens)
	}
	shape := src.Shape()
	if len(shape) != 2 || shape[0] != len(srcLengths) {
		return fmt.Errorf("generate: source shape %v does not match %d lengths", shape, len(srcLengths))
	}
	for i, n := range srcLengths {
		if n < 1 || n > shape[1] {
			return fmt.Errorf("generate: length %d of row %d out of range [1, %d]", n, i, shape[1])
		}
	}
	return nil
}
