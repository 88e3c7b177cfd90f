package cli

import (
	"fmt"
	"io"

	"github.com/fyerfyer/legal-summary/internal/loader"
	"github.com/fyerfyer/legal-summary/internal/services"
	"github.com/spf13/cobra"
)

func newCompareCommand(opts *globalOptions) *cobra.Command {
	var reference string

	cmd := &cobra.Command{
		Use:   "compare <case-id>",
		Short: "Score each strategy's summary of one case against the reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := loader.ParseStrategy(reference)
			if err != nil {
				return err
			}
			svc, err := opts.comparisonService()
			if err != nil {
				return err
			}

			result, err := svc.CompareStrategies(cmd.Context(), args[0], ref)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if ok, err := opts.structuredOutput(out, result); ok {
				return err
			}
			return printComparison(out, result)
		},
	}

	cmd.Flags().StringVarP(&reference, "reference", "r", string(loader.Semantic), "reference strategy (semantic/tokenwise/recursive)")
	return cmd
}

func printComparison(w io.Writer, c services.Comparison) error {
	fmt.Fprintf(w, "Case %s, reference %s\n\n", c.CaseID, c.Reference)

	tw := newTable(w)
	fmt.Fprintln(tw, "STRATEGY\tMETHOD\tROUGE-1\tROUGE-2\tROUGE-L\tBLEU")
	for _, st := range loader.Strategies {
		res, ok := c.Strategies[st]
		if !ok {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.4f\n", st, res.Method,
			formatPRF(res.Scores.ROUGE1), formatPRF(res.Scores.ROUGE2), formatPRF(res.Scores.ROUGEL), res.BLEU)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(c.Strategies) == 0 {
		fmt.Fprintln(w, "\nNo other strategy has chunks for this case.")
	}
	return nil
}
