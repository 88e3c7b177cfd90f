package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fyerfyer/legal-summary/internal/loader"
	"github.com/fyerfyer/legal-summary/internal/services"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func newAggregateCommand(opts *globalOptions) *cobra.Command {
	var (
		reference  string
		noProgress bool
		withCases  bool
	)

	cmd := &cobra.Command{
		Use:   "aggregate [case-id...]",
		Short: "Average strategy scores over many cases",
		Long: `aggregate compares strategies for every given case (all cases when none
are given) and reports the mean ROUGE and BLEU per strategy. Cases without
reference chunks are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := loader.ParseStrategy(reference)
			if err != nil {
				return err
			}
			svc, err := opts.comparisonService()
			if err != nil {
				return err
			}

			var progress services.ProgressFunc
			if !noProgress {
				progress = newProgress(cmd.ErrOrStderr())
			}

			agg, err := svc.AggregateWithProgress(cmd.Context(), args, ref, progress)
			if err != nil {
				return err
			}
			if !withCases {
				agg.Cases = nil
			}

			result := services.EvaluationResult{
				Mode:      svc.Evaluator().Mode(),
				Aggregate: agg,
			}
			if best, ok := agg.Best(); ok {
				result.Best = best
			}

			out := cmd.OutOrStdout()
			if ok, err := opts.structuredOutput(out, result); ok {
				return err
			}
			return printAggregate(out, result)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&reference, "reference", "r", string(loader.Semantic), "reference strategy (semantic/tokenwise/recursive)")
	flags.BoolVar(&noProgress, "no-progress", false, "hide the progress bar")
	flags.BoolVar(&withCases, "with-cases", false, "include per-case comparisons in json/yaml output")
	return cmd
}

// newProgress 首次回调时按案件总数创建进度条
func newProgress(w io.Writer) services.ProgressFunc {
	var bar *progressbar.ProgressBar
	return func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(w),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("Evaluating cases"),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(w)
				}),
			)
		}
		_ = bar.Set(done)
	}
}

func printAggregate(w io.Writer, r services.EvaluationResult) error {
	agg := r.Aggregate
	fmt.Fprintf(w, "Reference %s, rouge mode %s\n", agg.Reference, r.Mode)
	fmt.Fprintf(w, "Evaluated %d cases, skipped %d\n\n", len(agg.Evaluated), len(agg.Skipped))

	tw := newTable(w)
	fmt.Fprintln(tw, "STRATEGY\tCASES\tROUGE-1\tROUGE-2\tROUGE-L\tBLEU")
	for _, st := range loader.Strategies {
		m, ok := agg.Strategies[st]
		if !ok {
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%.4f\n", st, m.CaseCount,
			formatPRF(m.ROUGE1), formatPRF(m.ROUGE2), formatPRF(m.ROUGEL), m.BLEU)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if r.Best != "" {
		fmt.Fprintf(w, "\nBest strategy: %s\n", r.Best)
	}
	if len(agg.Skipped) > 0 {
		fmt.Fprintf(w, "Skipped (no %s chunks): %s\n", agg.Reference, strings.Join(agg.Skipped, ", "))
	}
	return nil
}
