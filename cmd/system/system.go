package system

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mediconnect/mediconnect_backend/config"
	"github.com/mediconnect/mediconnect_backend/pkg/authorize"
	"github.com/mediconnect/mediconnect_backend/pkg/database"
	"github.com/mediconnect/mediconnect_backend/pkg/logs"
)

func NewSystemCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "system",
		Short: "Maintenance and tooling commands",
	}

	cmd.AddCommand(NewMigrateCommand())
	cmd.AddCommand(NewGenDocsCommand())
	cmd.AddCommand(NewInitCommand())
	cmd.AddCommand(NewSeedCommand())
	cmd.AddCommand(NewGrantRoleCommand())
	cmd.AddCommand(NewIssueTokenCommand())

	return cmd
}

// loadConfig reads the file named by --config and installs the logger.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	slog.SetDefault(logs.New(cfg))
	return cfg, nil
}

// openAuthorization builds the casbin authorization on the casbin database.
// The returned cleanup stops the policy watcher.
func openAuthorization(cfg *config.Config) (authorize.IAuthorization, func(), error) {
	dsn := database.NewDSN(cfg.CasbinDatabase)
	enforcer, cleanup, err := authorize.NewEnforcer(authorize.FromCentralConfig(cfg.Authorization), dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create enforcer: %w", err)
	}
	auth, err := authorize.NewAuthorization(enforcer)
	if err != nil {
		cleanup(context.Background())
		return nil, nil, fmt.Errorf("failed to create authorization: %w", err)
	}
	return authorize.NewAuditedAuthorization(auth, slog.Default()), func() { cleanup(context.Background()) }, nil
}
