package generate

import (
	"math"
	"math/rand"
	"sort"
)

// SamplingConfig selects how the next target token is picked from a row of
// logits.
type SamplingConfig struct {
	// Temperature divides the logits. 0 picks the argmax.
	Temperature float32 `mapstructure:"temperature" yaml:"temperature"`

	// TopK keeps the K most likely tokens. 0 keeps all.
	TopK int `mapstructure:"top_k" yaml:"top_k"`

	// TopP keeps the smallest set of tokens whose probability exceeds P.
	// 1 keeps all.
	TopP float32 `mapstructure:"top_p" yaml:"top_p"`

	// RepeatPenalty shrinks the logits of tokens already emitted in the
	// last RepeatWindow steps (0 = all). 1 disables it.
	RepeatPenalty float32 `mapstructure:"repeat_penalty" yaml:"repeat_penalty"`
	RepeatWindow  int     `mapstructure:"repeat_window" yaml:"repeat_window"`

	// Seed makes sampling reproducible. -1 seeds from the global source.
	Seed int64 `mapstructure:"seed" yaml:"seed"`
}

// GreedySamplingConfig returns a configuration that always picks the most
// likely token.
func GreedySamplingConfig() SamplingConfig {
	return SamplingConfig{
		Temperature:   0,
		TopP:          1,
		RepeatPenalty: 1,
		Seed:          -1,
	}
}

// greedy reports whether sampling reduces to a plain argmax.
func (c SamplingConfig) greedy() bool {
	return c.Temperature == 0 && (c.RepeatPenalty == 1 || c.RepeatPenalty == 0)
}

// Sampler picks token ids from logits.
type Sampler struct {
	config SamplingConfig
	rng    *rand.Rand
}

// NewSampler creates a sampler for config.
func NewSampler(config SamplingConfig) *Sampler {
	seed := config.Seed
	if seed < 0 {
		seed = rand.Int63() //nolint:gosec // G404: sampling, not security.
	}
	return &Sampler{
		config: config,
		rng:    rand.New(rand.NewSource(seed)), //nolint:gosec // G404: sampling, not security.
	}
}

// Sample returns the next token id for one row of logits [vocab].
// previous holds the tokens emitted so far for that row. logits is not
// modified.
//
// Order of filters: repetition penalty, temperature, top-k, top-p, draw.
func (s *Sampler) Sample(logits []float32, previous []int32) int32 {
	scores := append([]float32(nil), logits...)

	if p := s.config.RepeatPenalty; p != 1 && p > 0 {
		penalize(scores, previous, p, s.config.RepeatWindow)
	}
	if s.config.Temperature <= 0 {
		return argmax(scores)
	}
	if s.config.Temperature != 1 {
		for i := range scores {
			scores[i] /= s.config.Temperature
		}
	}

	probs := softmax(scores)
	order := descending(probs)
	keep := len(order)
	if k := s.config.TopK; k > 0 && k < keep {
		keep = k
	}
	if p := s.config.TopP; p > 0 && p < 1 {
		var cum float32
		for i, idx := range order[:keep] {
			cum += probs[idx]
			if cum > p {
				keep = i + 1
				break
			}
		}
	}
	return s.draw(probs, order[:keep])
}

// draw samples among candidates in proportion to their probabilities.
func (s *Sampler) draw(probs []float32, candidates []int) int32 {
	var total float32
	for _, idx := range candidates {
		total += probs[idx]
	}
	r := s.rng.Float32() * total
	for _, idx := range candidates {
		r -= probs[idx]
		if r < 0 {
			return int32(idx) //nolint:gosec // G115: bounded by vocabulary size.
		}
	}
	return int32(candidates[len(candidates)-1]) //nolint:gosec // G115: bounded by vocabulary size.
}

func penalize(scores []float32, previous []int32, penalty float32, window int) {
	if window > 0 && len(previous) > window {
		previous = previous[len(previous)-window:]
	}
	seen := make(map[int32]struct{}, len(previous))
	for _, tok := range previous {
		if _, ok := seen[tok]; ok || tok < 0 || int(tok) >= len(scores) {
			continue
		}
		seen[tok] = struct{}{}
		if scores[tok] > 0 {
			scores[tok] /= penalty
		} else {
			scores[tok] *= penalty
		}
	}
}

func argmax(scores []float32) int32 {
	best := 0
	for i, v := range scores {
		if v > scores[best] {
			best = i
		}
	}
	return int32(best) //nolint:gosec // G115: bounded by vocabulary size.
}

// descending returns token indices ordered by decreasing probability.
func descending(probs []float32) []int {
	order := make([]int, len(probs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return probs[order[a]] > probs[order[b]] })
	return order
}

func softmax(scores []float32) []float32 {
	maxVal := float32(math.Inf(-1))
	for _, v := range scores {
		maxVal = max(maxVal, v)
	}
	probs := make([]float32, len(scores))
	var sum float64
	for i, v := range scores {
		e := math.Exp(float64(v - maxVal))
		probs[i] = float32(e)
		sum += e
	}
	for i := range probs {
		probs[i] = float32(float64(probs[i]) / sum)
	}
	return probs
}
