package cmd

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"policymatcher/internal/database"
	"policymatcher/internal/errs"
	"policymatcher/internal/repository"
	"policymatcher/internal/service"
)

var adminEmail string

var bootstrapAdminCmd = &cobra.Command{
	Use:   "bootstrap-admin",
	Short: "Grant admin rights to the configured admin account",
	Long: `Promotes the account whose email is security.adminemail (or --email).
The account must already be registered. Running it twice is harmless.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		email := cfg.Security.AdminEmail
		if adminEmail != "" {
			email = adminEmail
		}

		pool, err := database.NewPostgresPool(cmd.Context(), cfg.Postgres)
		if err != nil {
			return err
		}
		defer pool.Close()

		accounts := service.NewAuthService(repository.NewUserRepository(pool), nil, email, logger)
		user, err := accounts.BootstrapAdmin(cmd.Context())
		if errors.Is(err, errs.ErrNotFound) {
			return fmt.Errorf("no account registered with %s", email)
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (id %d) is an admin\n", color.GreenString("ok:"), user.Email, user.ID)
		return nil
	},
}

func init() {
	bootstrapAdminCmd.Flags().StringVar(&adminEmail, "email", "", "account to promote instead of security.adminemail")
}
