package system

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mediconnect/mediconnect_backend/pkg/authorize"
)

func NewGrantRoleCommand() *cobra.Command {
	var (
		userID string
		role   string
		revoke bool
	)

	cmd := &cobra.Command{
		Use:   "grant-role",
		Short: "Grant (or with --revoke, remove) a role for a user",
		Example: `  mediconnect system grant-role --user 0190c7a4-... --role receptionist
  mediconnect system grant-role --user 0190c7a4-... --role admin --revoke`,
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := uuid.Parse(userID)
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}
			r := authorize.Role(role)
			if _, ok := authorize.KnownRoles[r]; !ok {
				return fmt.Errorf("unknown role %q", role)
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			auth, cleanup, err := openAuthorization(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			if revoke {
				if err := authorize.RevokeRole(cmd.Context(), auth, uid, r); err != nil {
					return err
				}
				fmt.Printf("Role %s revoked from %s.\n", r, uid)
				return nil
			}
			if err := authorize.AssignRole(cmd.Context(), auth, uid, r); err != nil {
				return err
			}
			fmt.Printf("Role %s (%s) granted to %s.\n", r, authorize.RoleDisplayNamesES[r], uid)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id")
	cmd.Flags().StringVar(&role, "role", "", "admin, professional, receptionist or patient")
	cmd.Flags().BoolVar(&revoke, "revoke", false, "remove the role instead of granting it")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("role")

	return cmd
}
