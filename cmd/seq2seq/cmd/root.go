// Package cmd implements the seq2seq command line.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/born-ml/seq2seq/internal/generate"
	"github.com/born-ml/seq2seq/internal/seq2seq"
)

// Version is reported by --version.
var Version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "seq2seq",
	Short: "Encoder-decoder model with additive attention",
	Long: `seq2seq builds a bidirectional-LSTM encoder, an attentive LSTM decoder and a
weight-tied generator from configuration, and runs them on token batches.

Configuration is read, in increasing precedence, from defaults, a YAML file
(--config), SEQ2SEQ_* environment variables and flags.`,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	rootCmd.Version = Version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "YAML config file")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-style", "json", "log style (json, console)")
	mustBindPFlag("log.level", flags.Lookup("log-level"))
	mustBindPFlag("log.style", flags.Lookup("log-style"))

	def := seq2seq.DefaultConfig()
	flags.Int("hidden-size", def.HiddenSize, "hidden size (even)")
	flags.Float32("dropout", def.Dropout, "decoder embedding dropout")
	flags.Bool("attention", def.Attention, "enable Bahdanau attention")
	flags.Int64("seed", def.Seed, "initialization seed")
	mustBindPFlag("hidden_size", flags.Lookup("hidden-size"))
	mustBindPFlag("dropout", flags.Lookup("dropout"))
	mustBindPFlag("attention", flags.Lookup("attention"))
	mustBindPFlag("seed", flags.Lookup("seed"))

	setDefaults(viper.GetViper())
}

func mustBindPFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

// setDefaults registers every configuration key so that environment
// variables and Unmarshal see it.
func setDefaults(v *viper.Viper) {
	model := seq2seq.DefaultConfig()
	v.SetDefault("src_vocab_size", model.SrcVocabSize)
	v.SetDefault("tgt_vocab_size", model.TgtVocabSize)
	v.SetDefault("hidden_size", model.HiddenSize)
	v.SetDefault("padding_idx", model.PaddingIdx)
	v.SetDefault("dropout", model.Dropout)
	v.SetDefault("attention", model.Attention)
	v.SetDefault("seed", model.Seed)

	gen := generate.DefaultGenerateConfig()
	v.SetDefault("generate.max_tokens", gen.MaxTokens)
	v.SetDefault("generate.min_tokens", gen.MinTokens)
	v.SetDefault("generate.start_token", gen.StartToken)
	v.SetDefault("generate.end_token", gen.EndToken)
	v.SetDefault("generate.pad_token", gen.PadToken)
	v.SetDefault("generate.stop_tokens", []int32{})
	v.SetDefault("generate.sampling.temperature", gen.Sampling.Temperature)
	v.SetDefault("generate.sampling.top_k", gen.Sampling.TopK)
	v.SetDefault("generate.sampling.top_p", gen.Sampling.TopP)
	v.SetDefault("generate.sampling.repeat_penalty", gen.Sampling.RepeatPenalty)
	v.SetDefault("generate.sampling.repeat_window", gen.Sampling.RepeatWindow)
	v.SetDefault("generate.sampling.seed", gen.Sampling.Seed)

	v.SetDefault("tokenizer.encoding", "cl100k_base")
	v.SetDefault("tokenizer.max_vocab", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.style", "json")
}

func initConfig(_ *cobra.Command, _ []string) error {
	viper.SetEnvPrefix("SEQ2SEQ")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile == "" {
		return nil
	}
	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", cfgFile, err)
	}
	return nil
}

// Config is the full command line configuration.
type Config struct {
	seq2seq.Config `mapstructure:",squash" yaml:",inline"`

	Generate  generate.GenerateConfig `mapstructure:"generate" yaml:"generate"`
	Tokenizer TokenizerConfig         `mapstructure:"tokenizer" yaml:"tokenizer"`
	Log       LogConfig               `mapstructure:"log" yaml:"log"`
}

// TokenizerConfig selects the pre-tokenizer and vocabulary size.
type TokenizerConfig struct {
	Encoding string `mapstructure:"encoding" yaml:"encoding"`
	MaxVocab int    `mapstructure:"max_vocab" yaml:"max_vocab"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	Style string `mapstructure:"style" yaml:"style"`
}

// loadConfig merges every configuration source into a Config.
func loadConfig(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// newLogger builds a zap logger from the log section.
func newLogger(cfg LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	var zcfg zap.Config
	switch cfg.Style {
	case "console":
		zcfg = zap.NewDevelopmentConfig()
	case "json", "":
		zcfg = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("unknown log style %q", cfg.Style)
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}
