package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-backoffice/config"
	"github.com/fekuna/omnipos-backoffice/migrations"
	"github.com/fekuna/omnipos-backoffice/pkg/database/postgres"
	"github.com/fekuna/omnipos-backoffice/pkg/logger"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the back-office database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(upCmd(), statusCmd())
	return cmd
}

func upCmd() *cobra.Command {
	var grant bool

	cmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Long: `Apply every pending migration with the service role.

With --grant the application role named by POSTGRES_USER receives DML rights
on all tables once the schema is current.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, log := setup()
			defer log.Sync()

			db, err := connect(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := migrations.Apply(ctx, db, log)
			if err != nil {
				return err
			}
			log.Info("schema up to date", zap.Int("applied", n))

			if grant {
				if err := migrations.Grant(ctx, db, cfg.Postgres.User); err != nil {
					return err
				}
				log.Info("application role granted", zap.String("role", cfg.Postgres.User))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&grant, "grant", false, "Grant table rights to the application role")
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List migrations and when they were applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log := setup()
			defer log.Sync()

			db, err := connect(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			list, err := migrations.List(cmd.Context(), db)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tNAME\tAPPLIED")
			for _, m := range list {
				applied := "pending"
				if m.AppliedAt != nil {
					applied = m.AppliedAt.Format(time.RFC3339)
				}
				fmt.Fprintf(w, "%03d\t%s\t%s\n", m.Version, m.Name, applied)
			}
			return w.Flush()
		},
	}
}

func setup() (*config.Config, logger.ZapLogger) {
	_ = godotenv.Load()
	cfg := config.LoadEnv()
	log := logger.NewZapLogger(&logger.ZapLoggerConfig{
		IsDevelopment:     cfg.Server.AppEnv == "dev",
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	})
	return cfg, log
}

// connect opens a small pool as the service role, which owns the schema.
func connect(cfg *config.Config) (*sqlx.DB, error) {
	return postgres.NewPostgres(&postgres.Config{
		Host:         cfg.Postgres.Host,
		Port:         cfg.Postgres.Port,
		User:         cfg.Postgres.ServiceUser,
		Password:     cfg.Postgres.ServicePassword,
		DBName:       cfg.Postgres.DBName,
		SSLMode:      cfg.Postgres.SSLMode,
		MaxOpenConns: 2,
		MaxIdleConns: 1,
	})
}
