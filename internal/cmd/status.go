package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which stages are complete",
	Long: `Display every stage of the pipeline with its recorded state. The next
stage to run is highlighted. With --dot the chain is written as a Graphviz
digraph instead, e.g. "netprophet status -c config.yaml --dot | dot -Tsvg".`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

var statusDot bool

func init() {
	statusCmd.Flags().BoolVar(&statusDot, "dot", false, "write the stage chain as a Graphviz DOT graph")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	c, cfg, err := newController(cmd)
	if err != nil {
		return err
	}

	if statusDot {
		return c.WriteGraph(cmd.OutOrStdout())
	}

	summary, err := c.Status()
	if err != nil {
		return fmt.Errorf("failed to read progress: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render("NetProphet 2.0"))
	fmt.Fprintln(out, mutedStyle.Render(cfg.RootDir))
	fmt.Fprintln(out)

	for _, s := range summary.Stages {
		line := fmt.Sprintf("%2d  %s", s.ID, s.Name)
		switch {
		case s.Complete:
			fmt.Fprintln(out, completeStyle.Render("✓ "+line))
		case s.ID == summary.Next:
			fmt.Fprintln(out, nextStyle.Render("→ "+line))
		default:
			fmt.Fprintln(out, pendingStyle.Render("· "+line))
		}
	}
	fmt.Fprintln(out)

	if summary.Done() {
		fmt.Fprintf(out, "All %d stages complete. Final network: %s\n", len(summary.Stages), cfg.NetworkFile)
		return nil
	}
	fmt.Fprintf(out, "%d of %d stages complete; next: %d\n", summary.Completed, len(summary.Stages), summary.Next)
	return nil
}
