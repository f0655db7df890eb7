package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fieldworks/woms/internal/config"
	"github.com/fieldworks/woms/internal/core"
	"github.com/fieldworks/woms/internal/core/store"
	apperrors "github.com/fieldworks/woms/internal/errors"
	"github.com/fieldworks/woms/internal/observability"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `Apply the schema to the configured store. Statements are idempotent,
so running migrate against an existing database is safe.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := config.Load()
		if err != nil {
			return apperrors.WrapConfigInvalid(ctx, err, "failed to load configuration")
		}

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return apperrors.WrapDatabaseError(ctx, err, "failed to open store")
		}
		defer st.Close() // nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return apperrors.WrapDatabaseError(ctx, err, "failed to run migrations")
		}
		if err := st.EnsureTenant(ctx, core.DefaultTenantID, "Default"); err != nil {
			return apperrors.WrapDatabaseError(ctx, err, "failed to ensure default tenant")
		}

		observability.CLILogger.Info("Migrations applied",
			zap.String("path", cfg.Store.Path),
			zap.String("url", cfg.Store.URL))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
