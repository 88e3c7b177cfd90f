package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fyerfyer/legal-summary/config"
	"github.com/fyerfyer/legal-summary/internal/evaluation"
	"github.com/fyerfyer/legal-summary/internal/loader"
	"github.com/fyerfyer/legal-summary/internal/services"
	"github.com/fyerfyer/legal-summary/internal/summarizer"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// 输出格式
const (
	formatJSON  = "json"
	formatYAML  = "yaml"
	formatTable = "table"
)

// globalOptions 所有子命令共享的参数
type globalOptions struct {
	cfgFile   string
	envFile   string
	dataDir   string
	rougeMode string
	format    string
	logLevel  string

	cfg    *config.Config
	logger *logrus.Logger
}

// NewRootCommand 创建evaluate命令
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "evaluate",
		Short: "Compare chunking strategies for legal judgment summarization",
		Long: `evaluate scores extractive summaries built from differently chunked
judgments against a reference strategy using ROUGE and BLEU.

Example usage:
  evaluate compare 12 --reference semantic     # Compare strategies for case 12
  evaluate aggregate --format yaml             # Mean scores over all cases
  evaluate chunk judgment.pdf --case-id 42     # Generate chunk files for a new case`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.cfgFile, "config", "", "config file (default values are used when empty)")
	flags.StringVar(&opts.envFile, "env", ".env", ".env file to load before reading config")
	flags.StringVarP(&opts.dataDir, "data-dir", "d", "", "pre-chunked case data directory")
	flags.StringVar(&opts.rougeMode, "rouge-mode", "", "ROUGE mode (auto/full/approx)")
	flags.StringVarP(&opts.format, "format", "f", formatTable, "output format (table/json/yaml)")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level")

	root.AddCommand(newCompareCommand(opts))
	root.AddCommand(newAggregateCommand(opts))
	root.AddCommand(newChunkCommand(opts))
	return root
}

// Execute 运行命令行程序
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// load 读取配置并用命令行参数覆盖
func (o *globalOptions) load(cmd *cobra.Command) error {
	switch o.format {
	case formatJSON, formatYAML, formatTable:
	default:
		return fmt.Errorf("unsupported output format: %s", o.format)
	}

	if err := config.LoadEnvFile(o.envFile); err != nil {
		return err
	}
	cfg, err := config.Load(o.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if o.dataDir != "" {
		cfg.Data.Dir = o.dataDir
	}
	if o.rougeMode != "" {
		cfg.Evaluation.RougeMode = o.rougeMode
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	o.cfg = cfg

	// 日志写到stderr，stdout只输出结果
	o.logger = logrus.New()
	o.logger.SetOutput(cmd.ErrOrStderr())
	level, err := logrus.ParseLevel(o.logLevel)
	if err != nil {
		return err
	}
	o.logger.SetLevel(level)
	return nil
}

// comparisonService 基于数据目录创建对比服务
func (o *globalOptions) comparisonService() (*services.ComparisonService, error) {
	l, err := loader.New(o.cfg.Data.Dir, loader.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}
	mode, err := evaluation.ParseMode(o.cfg.Evaluation.RougeMode)
	if err != nil {
		return nil, err
	}

	sum := summarizer.New(
		summarizer.WithScorer(summarizer.NewTFIDFScorer(o.cfg.Evaluation.MaxFeatures)),
		summarizer.WithLogger(o.logger),
	)
	eval := evaluation.NewEvaluator(evaluation.WithMode(mode), evaluation.WithLogger(o.logger))

	return services.NewComparisonService(l, sum, eval,
		services.WithComparisonSentences(o.cfg.Evaluation.SummarySentences),
		services.WithComparisonWorkers(o.cfg.Evaluation.Workers),
		services.WithComparisonLogger(o.logger),
	), nil
}

// structuredOutput 以json或yaml输出，返回false表示需要表格输出
func (o *globalOptions) structuredOutput(w io.Writer, v interface{}) (bool, error) {
	switch o.format {
	case formatJSON:
		return true, writeJSON(w, v)
	case formatYAML:
		return true, writeYAML(w, v)
	default:
		return false, nil
	}
}
