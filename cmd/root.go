package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"tasky/config"
)

var (
	// cfgFile is an optional config file layered under the environment.
	cfgFile string

	cfg    *config.Config
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tasky",
	Short: "Tasky serves the team task board API.",
	Long: `Tasky is the backend of a team task board. It stores tasks with
subtasks and an activity log, and serves them over an authenticated HTTP API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
		logger = cfg.NewLogger()
		slog.SetDefault(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (yaml, json or toml); environment variables take precedence")
}
