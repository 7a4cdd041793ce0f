package seq2seq

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is wrapped by every error returned from Config.Validate.
var ErrInvalidConfig = errors.New("invalid seq2seq config")

// Config holds the hyperparameters of a Model.
type Config struct {
	SrcVocabSize int     `mapstructure:"src_vocab_size" yaml:"src_vocab_size"`
	TgtVocabSize int     `mapstructure:"tgt_vocab_size" yaml:"tgt_vocab_size"`
	HiddenSize   int     `mapstructure:"hidden_size" yaml:"hidden_size"`
	PaddingIdx   int     `mapstructure:"padding_idx" yaml:"padding_idx"`
	Dropout      float32 `mapstructure:"dropout" yaml:"dropout"`
	Attention    bool    `mapstructure:"attention" yaml:"attention"`

	// Seed drives parameter initialization and dropout masks.
	Seed int64 `mapstructure:"seed" yaml:"seed"`
}

// DefaultConfig returns a small attention model configuration.
func DefaultConfig() Config {
	return Config{
		SrcVocabSize: 8000,
		TgtVocabSize: 8000,
		HiddenSize:   256,
		PaddingIdx:   0,
		Dropout:      0.1,
		Attention:    true,
		Seed:         1,
	}
}

// Validate checks that the configuration describes a buildable model.
func (c Config) Validate() error {
	if c.SrcVocabSize <= 0 {
		return fmt.Errorf("source vocabulary size must be positive, got %d: %w", c.SrcVocabSize, ErrInvalidConfig)
	}
	if c.TgtVocabSize <= 0 {
		return fmt.Errorf("target vocabulary size must be positive, got %d: %w", c.TgtVocabSize, ErrInvalidConfig)
	}
	if c.HiddenSize <= 0 || c.HiddenSize%2 != 0 {
		return fmt.Errorf("hidden size must be positive and even, got %d: %w", c.HiddenSize, ErrInvalidConfig)
	}
	if c.PaddingIdx < 0 || c.PaddingIdx >= c.SrcVocabSize || c.PaddingIdx >= c.TgtVocabSize {
		return fmt.Errorf("padding index %d outside vocabularies (%d, %d): %w",
			c.PaddingIdx, c.SrcVocabSize, c.TgtVocabSize, ErrInvalidConfig)
	}
	if c.Dropout < 0 || c.Dropout >= 1 {
		return fmt.Errorf("dropout %v out of range [0, 1): %w", c.Dropout, ErrInvalidConfig)
	}
	return nil
}
