package system

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	redispkg "github.com/mediconnect/mediconnect_backend/pkg/redis"
	"github.com/mediconnect/mediconnect_backend/pkg/token"
)

func NewIssueTokenCommand() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "issue-token",
		Short: "Issue an access token for a user and open its session",
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := uuid.Parse(userID)
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			rdb, err := redispkg.NewRedisFromCentral(cfg.Redis)
			if err != nil {
				return fmt.Errorf("failed to connect to redis: %w", err)
			}
			defer rdb.Close()

			mgr, err := token.NewManagerFromConfig(cfg, rdb)
			if err != nil {
				return err
			}
			signed, claims, err := mgr.IssueAccess(cmd.Context(), uid)
			if err != nil {
				return fmt.Errorf("failed to issue token: %w", err)
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "session %s expires %s\n", claims.SessionID, claims.ExpiresAt.Time.Format("2006-01-02 15:04:05 MST"))
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
