package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ygidtu/NetProphet-2.0/internal/config"
	"github.com/ygidtu/NetProphet-2.0/internal/errors"
	"github.com/ygidtu/NetProphet-2.0/internal/logging"
	"github.com/ygidtu/NetProphet-2.0/internal/pipeline"
)

var rootCmd = &cobra.Command{
	Use:   "netprophet",
	Short: "Resumable NetProphet 2.0 network inference pipeline",
	Long: `Runs the NetProphet 2.0 gene regulatory network pipeline described by a
config file. Completed stages are recorded in progress.json inside
NETPROPHET2_DIR, so a failed or interrupted run resumes at the stage that
did not finish.`,
	Args: cobra.NoArgs,
	RunE: runPipeline,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "path to the pipeline config file (required)")
	rootCmd.PersistentFlags().String("log-level", "", "override logging.level (debug, info, warn, error)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.Flags().IntP("processes", "p", 1, "number of concurrent tasks in fan-out stages")
	_ = viper.BindPFlag("processes", rootCmd.Flags().Lookup("processes"))
}

func initConfig() {
	viper.SetEnvPrefix(config.EnvPrefix)
	// e.g. NETPROPHET_PROCESSES for --processes
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
}

func runPipeline(cmd *cobra.Command, args []string) error {
	// A bare invocation shows usage.
	if cmd.Flags().NFlag() == 0 && viper.GetString("config") == "" {
		return cmd.Help()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	// From here on failures are pipeline failures, not usage errors.
	cmd.SilenceUsage = true

	return pipeline.Execute(cmd.Context(), cfg,
		pipeline.WithWorkers(viper.GetInt("processes")),
		pipeline.WithOutput(cmd.OutOrStdout()),
	)
}

// loadConfig loads and resolves the file named by --config and applies
// command line overrides.
func loadConfig() (*config.Resolved, error) {
	path := viper.GetString("config")
	if path == "" {
		return nil, errors.NewConfigError("--config is required", errors.ErrConfigMissing)
	}

	cfg, err := config.LoadResolved(path)
	if err != nil {
		return nil, err
	}

	if level := viper.GetString("log_level"); level != "" {
		cfg.LogLevel = logging.ParseLevel(level)
	}
	return cfg, nil
}

// newController creates a controller for the subcommands that only read or
// reset progress.
func newController(cmd *cobra.Command) (*pipeline.Controller, *config.Resolved, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	cmd.SilenceUsage = true

	c, err := pipeline.New(cfg, pipeline.WithOutput(cmd.OutOrStdout()))
	if err != nil {
		return nil, nil, err
	}
	return c, cfg, nil
}
