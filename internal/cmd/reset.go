package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear recorded progress so stages run again",
	Long: `Remove stages from the progress record. By default the whole record is
cleared and the next run starts from stage 1. With --from N, stages 1..N-1
stay complete and the next run resumes at stage N.

Output files of cleared stages are left in place and are overwritten when
the stages run again.`,
	Args: cobra.NoArgs,
	RunE: runReset,
}

var resetFrom int

func init() {
	resetCmd.Flags().IntVar(&resetFrom, "from", 1, "first stage to clear")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	c, _, err := newController(cmd)
	if err != nil {
		return err
	}

	if err := c.Reset(resetFrom); err != nil {
		return err
	}

	n := len(c.Stages())
	fmt.Fprintf(cmd.OutOrStdout(), "Cleared progress for stages %d..%d\n", resetFrom, n)
	return nil
}
