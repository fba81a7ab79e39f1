package system

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mediconnect/mediconnect_backend/config"
	"github.com/mediconnect/mediconnect_backend/internal/repo"
	"github.com/mediconnect/mediconnect_backend/internal/service/appointment"
	"github.com/mediconnect/mediconnect_backend/internal/service/directory"
	"github.com/mediconnect/mediconnect_backend/pkg/authorize"
	"github.com/mediconnect/mediconnect_backend/pkg/database"
)

func NewSeedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the cancellation reason catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			store, err := database.NewStore(cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer store.Close()

			added, err := appointment.SeedReasons(cmd.Context(), store, appointment.DefaultReasons())
			if err != nil {
				return err
			}
			fmt.Printf("Seeded %d cancellation reasons.\n", added)
			return nil
		},
	}

	cmd.AddCommand(newSeedProfessionalCommand())
	cmd.AddCommand(newSeedPatientCommand())

	return cmd
}

// withDirectory opens the store and casbin for a seeding command that
// creates a directory record and grants its role.
func withDirectory(cmd *cobra.Command, fn func(ctx context.Context, cfg *config.Config, dir directory.Service, auth authorize.IAuthorization) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := database.NewStore(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	auth, cleanup, err := openAuthorization(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	return fn(cmd.Context(), cfg, directory.New(store, cfg.SMS.DefaultRegion), auth)
}

func newSeedProfessionalCommand() *cobra.Command {
	var (
		userID string
		p      directory.NewProfessional
	)

	cmd := &cobra.Command{
		Use:   "professional",
		Short: "Register a professional and grant the professional role",
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := parseUserID(userID)
			if err != nil {
				return err
			}
			p.UserID = uid

			return withDirectory(cmd, func(ctx context.Context, _ *config.Config, dir directory.Service, auth authorize.IAuthorization) error {
				prof, err := dir.CreateProfessional(ctx, p)
				if err != nil {
					return err
				}
				if err := authorize.AssignRole(ctx, auth, uid, authorize.RoleProfessional); err != nil {
					return fmt.Errorf("failed to grant role: %w", err)
				}
				fmt.Printf("Professional %s created (id %s).\n", prof.FullName, prof.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id (defaults to a new UUID)")
	cmd.Flags().StringVar(&p.FullName, "name", "", "full name")
	cmd.Flags().StringVar(&p.Specialty, "specialty", "", "medical specialty")
	cmd.Flags().StringVar(&p.Email, "email", "", "contact e-mail")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("specialty")

	return cmd
}

func newSeedPatientCommand() *cobra.Command {
	var (
		userID string
		p      directory.NewPatient
	)

	cmd := &cobra.Command{
		Use:   "patient",
		Short: "Register a patient and grant the patient role",
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := parseUserID(userID)
			if err != nil {
				return err
			}
			p.UserID = uid

			return withDirectory(cmd, func(ctx context.Context, _ *config.Config, dir directory.Service, auth authorize.IAuthorization) error {
				pat, err := dir.CreatePatient(ctx, p)
				if err != nil {
					return err
				}
				if err := authorize.AssignRole(ctx, auth, uid, authorize.RolePatient); err != nil {
					return fmt.Errorf("failed to grant role: %w", err)
				}
				fmt.Printf("Patient %s created (id %s, user %s).\n", pat.FullName, pat.ID, uid)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id (defaults to a new UUID)")
	cmd.Flags().StringVar(&p.FullName, "name", "", "full name")
	cmd.Flags().StringVar(&p.NationalID, "national-id", "", "national id (RUT)")
	cmd.Flags().StringVar(&p.Email, "email", "", "contact e-mail")
	cmd.Flags().StringVar(&p.Phone, "phone", "", "mobile phone")
	cmd.Flags().StringVar(&p.Address, "address", "", "postal address")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("national-id")

	return cmd
}

func parseUserID(s string) (uuid.UUID, error) {
	if s == "" {
		return repo.NewID(), nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid --user: %w", err)
	}
	return id, nil
}
