package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ygidtu/NetProphet-2.0/internal/netprophet"
)

var stagesCmd = &cobra.Command{
	Use:   "stages",
	Short: "List the pipeline stages",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for i, name := range netprophet.Names() {
			fmt.Fprintf(cmd.OutOrStdout(), "%2d  %s\n", i+1, name)
		}
	},
}

func init() {
	rootCmd.AddCommand(stagesCmd)
}
