package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tradersfamily/campaign-data-api/internal/app"
	"github.com/tradersfamily/campaign-data-api/internal/config"
	"github.com/tradersfamily/campaign-data-api/internal/domain"
	"github.com/tradersfamily/campaign-data-api/internal/observability"
	"github.com/tradersfamily/campaign-data-api/internal/repository"
	"github.com/tradersfamily/campaign-data-api/internal/security"
)

func main() {
	root := &cobra.Command{
		Use:          "campaign-api",
		Short:        "Campaign data reporting backend",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("env-file", ".env", "optional env file, loaded before config")
	root.AddCommand(serveCmd(), migrateCmd(), createUserCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadEnvFile(envFile); err != nil {
		return nil, err
	}
	return config.Load(cmd.Context(), config.EnvFunc(os.Getenv))
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, loggerProvider, err := observability.NewLogger(ctx, cfg)
			if err != nil {
				return err
			}

			a, err := app.InitializeApp(ctx, cfg, logger, loggerProvider)
			if err != nil {
				return err
			}
			return a.Run(ctx)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			db, err := app.OpenDatabase(cfg)
			if err != nil {
				return err
			}
			if err := db.AutoMigrate(
				&domain.User{},
				&domain.Session{},
				&domain.DepositRecord{},
				&domain.AdSpend{},
			); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func createUserCmd() *cobra.Command {
	var fullName, email, role, password string
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Seed a dashboard account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !domain.Role(role).Valid() {
				return fmt.Errorf("invalid role %q", role)
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			db, err := app.OpenDatabase(cfg)
			if err != nil {
				return err
			}
			hash, err := security.HashPassword(password)
			if err != nil {
				return err
			}
			user := &domain.User{
				FullName:     fullName,
				Email:        email,
				Role:         domain.Role(role),
				PasswordHash: hash,
			}
			if err := repository.NewUserRepository(db).Create(cmd.Context(), user); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %d (%s)\n", user.ID, user.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&fullName, "fullname", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleSales), "account role")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
