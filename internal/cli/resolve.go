package cli

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"skill-installer/internal/app"
)

type resolveOptions struct {
	All bool
}

func newResolveCommand() *cobra.Command {
	opts := resolveOptions{}
	cmd := &cobra.Command{
		Use:   "resolve <words...>",
		Short: "Show how a request scores against the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd.Context(), cmd, targetText(args), opts)
		},
	}
	cmd.Flags().BoolVar(&opts.All, "all", false, "List every catalog entry, not only the top scores")
	return cmd
}

func runResolve(ctx context.Context, cmd *cobra.Command, target string, opts resolveOptions) error {
	service, closeService, err := newAppService(ctx, serviceIO{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()})
	if err != nil {
		return err
	}
	defer closeService()
	result, err := service.Explain(ctx, target)
	if err != nil {
		return err
	}
	printExplain(cmd.OutOrStdout(), result, opts.All)
	return nil
}

const explainTop = 10

func printExplain(out io.Writer, result app.ExplainResult, all bool) {
	candidates := map[string]struct{}{}
	for _, entry := range result.Candidates {
		candidates[entry.Name] = struct{}{}
	}
	scores := append(result.Scores[:0:0], result.Scores...)
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	if !all && len(scores) > explainTop {
		scores = scores[:explainTop]
	}
	fmt.Fprintf(out, "query: %s\n", result.Query)
	for _, scored := range scores {
		marker := " "
		if _, ok := candidates[scored.Entry.Name]; ok {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %.3f  %s\n", marker, scored.Score, scored.Entry.Name)
	}
	if len(result.Candidates) == 0 {
		fmt.Fprintln(out, "no confident match")
	}
}
