package cli

import (
	"fmt"
	"strings"

	"github.com/fyerfyer/legal-summary/internal/document"
	"github.com/fyerfyer/legal-summary/internal/loader"
	"github.com/spf13/cobra"
)

func newChunkCommand(opts *globalOptions) *cobra.Command {
	var (
		caseID     string
		metadata   string
		strategies []string
	)

	cmd := &cobra.Command{
		Use:   "chunk <judgment-file>",
		Short: "Split a judgment into chunk files for each strategy",
		Long: `chunk parses a judgment (txt, md or pdf) and writes one chunk file per
strategy into the data directory using the same naming the loader reads.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isNumeric(caseID) {
				return fmt.Errorf("--case-id must be numeric, got %q", caseID)
			}

			selected := make([]loader.Strategy, 0, len(strategies))
			for _, s := range strategies {
				st, err := loader.ParseStrategy(s)
				if err != nil {
					return err
				}
				selected = append(selected, st)
			}

			parser, err := document.ParserFactory(args[0])
			if err != nil {
				return err
			}
			text, err := parser.Parse(args[0])
			if err != nil {
				return fmt.Errorf("failed to parse %s: %w", args[0], err)
			}
			if strings.TrimSpace(text) == "" {
				return document.ErrEmptyContent
			}

			out := cmd.OutOrStdout()
			baseDir := opts.cfg.Data.Dir
			for _, st := range selected {
				chunks, err := document.NewTextSplitter(st.SplitterConfig()).Split(text)
				if err != nil {
					return fmt.Errorf("failed to split for %s: %w", st, err)
				}
				path, err := loader.WriteChunks(baseDir, caseID, st, chunks)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%-10s %3d chunks  %s\n", st, len(chunks), path)
			}

			if metadata != "" {
				if err := loader.WriteMetadata(baseDir, caseID, metadata); err != nil {
					return err
				}
			}
			return nil
		},
	}

	defaults := make([]string, 0, len(loader.Strategies))
	for _, st := range loader.Strategies {
		defaults = append(defaults, string(st))
	}

	flags := cmd.Flags()
	flags.StringVar(&caseID, "case-id", "", "numeric case id used in file names")
	flags.StringVar(&metadata, "metadata", "", "metadata text written to metadata/metadata<id>.txt")
	flags.StringSliceVarP(&strategies, "strategy", "s", defaults, "strategies to generate")
	_ = cmd.MarkFlagRequired("case-id")
	return cmd
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
