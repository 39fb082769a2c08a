package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"paradox-quiz-service/internal/config"
	"paradox-quiz-service/internal/infra/file"
	pgcatalog "paradox-quiz-service/internal/infra/postgres"
	"paradox-quiz-service/internal/logger"
)

// NewSeedCmd loads a catalog file into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var catalogPath string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a YAML/JSON paradox catalog into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log := logger.Setup(cfg.Log.Level, cfg.Log.Format)

			path := catalogPath
			if path == "" {
				path = cfg.Catalog.Path
			}
			if path == "" {
				return fmt.Errorf("no catalog file given; pass --catalog or set catalog.path")
			}
			items, err := file.LoadCatalog(path)
			if err != nil {
				return err
			}

			if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
				return err
			}
			db, err := openBunDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := pgcatalog.SeedCatalog(ctx, db, items); err != nil {
				return err
			}
			log.Info().Int("paradoxes", len(items)).Str("path", path).Msg("catalog seeded")
			return nil
		},
	}
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "catalog file (defaults to catalog.path)")
	return cmd
}
