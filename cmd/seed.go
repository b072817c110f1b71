package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"tasky/connection"
	"tasky/services"
)

var (
	seedFile  string
	seedActor string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load tasks from a YAML seed file into the configured store",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := services.LoadSeedFile(afero.NewOsFs(), seedFile)
		if err != nil {
			return err
		}

		st, err := connection.OpenStore(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		svc := services.NewTaskService(st,
			services.WithLogger(logger),
			services.WithDeleteAllSentinel(cfg.DeleteAllSentinel),
		)
		n, err := svc.Seed(cmd.Context(), seedActor, file)
		if err != nil {
			return err
		}
		logger.Info("seed complete", slog.Int("tasks", n), slog.String("file", seedFile))
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d tasks\n", n)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "data/seed.yaml", "seed file to load")
	seedCmd.Flags().StringVar(&seedActor, "actor", "seed", "user id recorded as creator of the seeded tasks")
	rootCmd.AddCommand(seedCmd)
}
