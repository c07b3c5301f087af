/*
Copyright © 2026 JAKVBS
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/jakvbs/pgeval/internal/bottleneck"
	"github.com/jakvbs/pgeval/internal/output"
	"github.com/jakvbs/pgeval/internal/plan"

	"github.com/spf13/cobra"
)

var bottlenecksCmd = &cobra.Command{
	Use:   "bottlenecks [file]",
	Short: "Rank bottleneck operators in a query plan",
	Long: `Group a plan's operators by kind and relation, score each group's
severity from buffer reads, temp I/O, filtered rows, and cost, and list
the groups that dominate the total, worst first.

By default the list is cut at a cumulative severity share (--pareto).
Set --pareto 0 to take a fixed number of groups with --top instead.

Input can be a SQL file, or JSON file (EXPLAIN output).
Use "-" to read from stdin. If no file is provided, enters interactive mode.`,
	Example: `  # Rank from saved EXPLAIN output
  pgeval bottlenecks plan.json

  # Keep groups up to 90% of total severity
  pgeval bottlenecks plan.json --pareto 0.9

  # Fixed top-3 list from a live query
  pgeval bottlenecks query.sql --profile dev --pareto 0 --top 3

  # Markdown report for a pull request
  pgeval bottlenecks plan.json --format md`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		pareto, _ := cmd.Flags().GetFloat64("pareto")
		top, _ := cmd.Flags().GetInt("top")

		if format != "text" && format != "json" && format != "md" {
			return fmt.Errorf("invalid output format %q: must be \"text\", \"json\", or \"md\"", format)
		}

		prof, timeout, err := connectionFromFlags(cmd)
		if err != nil {
			return err
		}

		var file string
		if len(args) > 0 {
			file = args[0]
		}

		in, err := plan.Resolve(cmd.Context(), file, prof.ConnStr, "", plan.ExplainOptions{Timeout: timeout})
		if err != nil {
			return err
		}

		ranked := bottleneck.Rank(&in.Explain.Plan, in.Name, bottleneck.Options{
			Pareto: pareto,
			TopK:   top,
		})

		switch format {
		case "json":
			return output.RenderJSON(os.Stdout, ranked)
		case "md":
			return output.RenderBottlenecksMarkdown(os.Stdout, ranked, pareto)
		case "text":
			return output.RenderBottlenecksText(os.Stdout, ranked, pareto)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(bottlenecksCmd)
	bottlenecksCmd.Flags().StringP("db", "d", "", "PostgreSQL connection string")
	bottlenecksCmd.Flags().StringP("profile", "p", "", "Use named profile from config")
	bottlenecksCmd.Flags().StringP("format", "f", "text", "Output format: text, json, md")
	bottlenecksCmd.Flags().Int("timeout", envInt("PGEVAL_TIMEOUT", 60), "Statement timeout in seconds (0 disables)")
	bottlenecksCmd.Flags().Float64("pareto", envFloat("PGEVAL_PARETO", 0.90), "Cumulative severity cutoff (0 switches to --top)")
	bottlenecksCmd.Flags().Int("top", envInt("PGEVAL_TOP", 5), "Number of groups when --pareto is 0")
	bottlenecksCmd.MarkFlagsMutuallyExclusive("db", "profile")
}
