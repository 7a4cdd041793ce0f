package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/born-ml/seq2seq/internal/backend/cpu"
	"github.com/born-ml/seq2seq/internal/generate"
	"github.com/born-ml/seq2seq/internal/nn"
	"github.com/born-ml/seq2seq/internal/seq2seq"
	"github.com/born-ml/seq2seq/internal/tensor"
	"github.com/born-ml/seq2seq/internal/tokenizer"
)

var translateCmd = &cobra.Command{
	Use:   "translate TEXT...",
	Short: "Tokenize sentences and decode them with a freshly initialized model",
	Long: `Split each argument with tiktoken, map the pieces to a vocabulary built from
the arguments themselves, and decode every sentence step by step.

The model is not trained, so the output exercises the pipeline rather than
producing a translation.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg.Log)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		if err := runTranslate(cfg, args, cmd.OutOrStdout(), logger); err != nil {
			logger.Error("translate failed", zap.Error(err))
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(translateCmd)

	flags := translateCmd.Flags()
	flags.Int("max-tokens", generate.DefaultGenerateConfig().MaxTokens, "maximum decoded tokens per sentence")
	flags.Float32("temperature", 0, "sampling temperature (0 = greedy)")
	flags.String("encoding", "cl100k_base", "tiktoken encoding")
	mustBindPFlag("generate.max_tokens", flags.Lookup("max-tokens"))
	mustBindPFlag("generate.sampling.temperature", flags.Lookup("temperature"))
	mustBindPFlag("tokenizer.encoding", flags.Lookup("encoding"))
}

func runTranslate(cfg Config, texts []string, out io.Writer, logger *zap.Logger) error {
	pre, err := tokenizer.NewTikToken(cfg.Tokenizer.Encoding)
	if err != nil {
		return err
	}
	vocab, err := tokenizer.BuildVocabulary(pre, texts, cfg.Tokenizer.MaxVocab)
	if err != nil {
		return fmt.Errorf("build vocabulary: %w", err)
	}
	logger.Info("vocabulary built", zap.String("encoding", pre.Name()), zap.Int("size", vocab.VocabSize()))

	modelCfg := cfg.Config
	modelCfg.SrcVocabSize = vocab.VocabSize()
	modelCfg.TgtVocabSize = vocab.VocabSize()
	modelCfg.PaddingIdx = int(vocab.PadToken())

	backend := cpu.New()
	model, err := seq2seq.New(modelCfg, backend)
	if err != nil {
		return fmt.Errorf("build model: %w", err)
	}
	logger.Info("model built", zap.Int("parameters", nn.CountParameters(model.Parameters())))

	seqs := make([][]int32, len(texts))
	for i, text := range texts {
		if seqs[i], err = vocab.Encode(text); err != nil {
			return fmt.Errorf("encode %q: %w", text, err)
		}
	}
	batch, err := tokenizer.PadBatch(seqs, vocab.PadToken())
	if err != nil {
		return err
	}
	src, err := tensor.FromSlice(batch.IDs, batch.Shape(), backend)
	if err != nil {
		return err
	}

	genCfg := cfg.Generate
	genCfg.StartToken = vocab.BosToken()
	genCfg.EndToken = vocab.EosToken()
	genCfg.PadToken = vocab.PadToken()

	hyps, err := generate.NewTranslator[*cpu.CPUBackend](model, backend).Generate(src, batch.Lengths, genCfg)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	for i, hyp := range hyps {
		text, err := vocab.Decode(hyp.Tokens)
		if err != nil {
			return fmt.Errorf("decode row %d: %w", i, err)
		}
		logger.Debug("decoded", zap.Int("row", i), zap.Int("tokens", len(hyp.Tokens)), zap.String("reason", hyp.Reason))
		if _, err := fmt.Fprintf(out, "%s\t%s\n", texts[i], text); err != nil {
			return err
		}
	}
	return nil
}
