package cmd

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/born-ml/seq2seq/internal/backend/cpu"
	"github.com/born-ml/seq2seq/internal/nn"
	"github.com/born-ml/seq2seq/internal/seq2seq"
	"github.com/born-ml/seq2seq/internal/tensor"
)

type forwardOptions struct {
	batch    int
	srcLen   int
	tgtLen   int
	dataSeed int64
	train    bool
}

var forwardOpts forwardOptions

var forwardCmd = &cobra.Command{
	Use:   "forward",
	Short: "Run one teacher-forced forward pass on a random batch",
	Long: `Build the model from configuration, draw a random padded source batch with
random lengths and a random target batch, and report the shapes of the logits
and of the decoder state.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg.Log)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		if err := runForward(cfg, forwardOpts, cmd.OutOrStdout(), logger); err != nil {
			logger.Error("forward failed", zap.Error(err))
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(forwardCmd)

	flags := forwardCmd.Flags()
	flags.IntVar(&forwardOpts.batch, "batch", 2, "batch size")
	flags.IntVar(&forwardOpts.srcLen, "src-len", 4, "padded source length")
	flags.IntVar(&forwardOpts.tgtLen, "tgt-len", 4, "target length, including the start token")
	flags.Int64Var(&forwardOpts.dataSeed, "data-seed", 1, "seed for the random batch")
	flags.BoolVar(&forwardOpts.train, "train", false, "run in train mode (dropout on)")
}

func runForward(cfg Config, opts forwardOptions, out io.Writer, logger *zap.Logger) error {
	if opts.batch < 1 || opts.srcLen < 1 || opts.tgtLen < 1 {
		return fmt.Errorf("batch, src-len and tgt-len must be positive")
	}

	backend := cpu.New()
	model, err := seq2seq.New(cfg.Config, backend)
	if err != nil {
		return fmt.Errorf("build model: %w", err)
	}
	logger.Info("model built",
		zap.Int("parameters", nn.CountParameters(model.Parameters())),
		zap.Int("hidden_size", cfg.HiddenSize),
		zap.Bool("attention", cfg.Attention))

	rng := rand.New(rand.NewSource(opts.dataSeed)) //nolint:gosec // G404: synthetic data.
	src, lengths := randomSource(rng, opts.batch, opts.srcLen, cfg.Config, backend)
	tgt := randomTarget(rng, opts.batch, opts.tgtLen, cfg.Config, backend)
	logger.Debug("batch drawn", zap.Ints("src_lengths", lengths))

	mode := nn.Eval
	if opts.train {
		mode = nn.Train
	}
	logits, state := model.Forward(src, lengths, tgt, nil, mode)

	logger.Info("forward done",
		zap.Stringer("mode", mode),
		zap.Ints("logits", logits.Shape()),
		zap.Ints("state", state.Hidden.Shape()))
	_, err = fmt.Fprintf(out, "logits %v\nhidden %v\ncell   %v\n", logits.Shape(), state.Hidden.Shape(), state.Cell.Shape())
	return err
}

// randomSource draws a right-padded batch of non-padding ids with lengths in
// [1, srcLen]. The first row always spans the full width.
func randomSource(rng *rand.Rand, batch, srcLen int, cfg seq2seq.Config, backend *cpu.CPUBackend) (*tensor.Tensor[int32, *cpu.CPUBackend], []int) {
	src := tensor.Full[int32](tensor.Shape{batch, srcLen}, int32(cfg.PaddingIdx), backend) //nolint:gosec // G115: validated vocabulary index.
	lengths := make([]int, batch)
	for b := range lengths {
		lengths[b] = srcLen
		if b > 0 {
			lengths[b] = 1 + rng.Intn(srcLen)
		}
		for s := 0; s < lengths[b]; s++ {
			src.Set(randomToken(rng, cfg.SrcVocabSize, cfg.PaddingIdx), b, s)
		}
	}
	return src, lengths
}

func randomTarget(rng *rand.Rand, batch, tgtLen int, cfg seq2seq.Config, backend *cpu.CPUBackend) *tensor.Tensor[int32, *cpu.CPUBackend] {
	tgt := tensor.Zeros[int32](tensor.Shape{batch, tgtLen}, backend)
	data := tgt.Data()
	for i := range data {
		data[i] = randomToken(rng, cfg.TgtVocabSize, cfg.PaddingIdx)
	}
	return tgt
}

func randomToken(rng *rand.Rand, vocab, padding int) int32 {
	for {
		if tok := rng.Intn(vocab); tok != padding || vocab == 1 {
			return int32(tok) //nolint:gosec // G115: bounded by vocabulary size.
		}
	}
}
