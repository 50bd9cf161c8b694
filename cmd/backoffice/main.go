package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-backoffice/config"
	"github.com/fekuna/omnipos-backoffice/internal/auth"
	"github.com/fekuna/omnipos-backoffice/internal/dates"
	"github.com/fekuna/omnipos-backoffice/internal/db"
	"github.com/fekuna/omnipos-backoffice/internal/sale"
	saledto "github.com/fekuna/omnipos-backoffice/internal/sale/dto"
	saleUCPkg "github.com/fekuna/omnipos-backoffice/internal/sale/usecase"
	"github.com/fekuna/omnipos-backoffice/internal/store"
	"github.com/fekuna/omnipos-backoffice/pkg/broker"
	"github.com/fekuna/omnipos-backoffice/pkg/database/postgres"
	"github.com/fekuna/omnipos-backoffice/pkg/logger"
)

const dayLayout = "2006-01-02"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "backoffice",
		Short:         "Operate the point of sale data from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(loginCmd(), saleCmd())
	return cmd
}

// app holds what every command needs. Close releases it.
type app struct {
	cfg      *config.Config
	log      logger.ZapLogger
	provider *db.Provider
	loc      *time.Location
	close    func()
}

func newApp() (*app, error) {
	_ = godotenv.Load()
	cfg := config.LoadEnv()
	log := logger.NewZapLogger(&logger.ZapLoggerConfig{
		IsDevelopment:     cfg.Server.AppEnv == "dev",
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	})

	appDB, err := postgres.NewPostgres(pgConfig(cfg, cfg.Postgres.User, cfg.Postgres.Password))
	if err != nil {
		return nil, fmt.Errorf("connect as %s: %w", cfg.Postgres.User, err)
	}
	serviceDB, err := postgres.NewPostgres(pgConfig(cfg, cfg.Postgres.ServiceUser, cfg.Postgres.ServicePassword))
	if err != nil {
		appDB.Close()
		return nil, fmt.Errorf("connect as %s: %w", cfg.Postgres.ServiceUser, err)
	}

	return &app{
		cfg:      cfg,
		log:      log,
		provider: db.NewProvider(appDB, serviceDB, db.WithJWTSecret(cfg.JWT.SecretKey), db.WithLogger(log)),
		loc:      cfg.Business.Location(),
		close: func() {
			appDB.Close()
			serviceDB.Close()
			_ = log.Sync()
		},
	}, nil
}

func pgConfig(cfg *config.Config, user, password string) *postgres.Config {
	return &postgres.Config{
		Host:         cfg.Postgres.Host,
		Port:         cfg.Postgres.Port,
		User:         user,
		Password:     password,
		DBName:       cfg.Postgres.DBName,
		SSLMode:      cfg.Postgres.SSLMode,
		MaxOpenConns: 2,
		MaxIdleConns: 1,
	}
}

func loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Open a session and print a signed token",
		Long: `Check an employee's email and password, record a login session and print
a token valid for JWT_TTL_MINUTES. Pass it to the other commands with --token
or OMNIPOS_TOKEN.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			svc := store.New(a.provider.Service())
			emp, err := svc.Employees.Authenticate(ctx, email, password)
			if err != nil {
				return err
			}
			if emp == nil {
				return errors.New("identifiants invalides")
			}

			ttl := a.cfg.JWT.TTL
			session, err := svc.Sessions.Create(ctx, emp.ID, ttl, nil, nil)
			if err != nil {
				return err
			}
			if err := svc.Employees.TouchLastLogin(ctx, emp.ID); err != nil {
				a.log.Warn("failed to record last login", zap.String("utilisateur_id", emp.ID), zap.Error(err))
			}
			token, err := auth.SignClaims([]byte(a.cfg.JWT.SecretKey), auth.UserContext{
				UserID:          emp.ID,
				EstablishmentID: emp.EstablishmentID,
				Role:            emp.Role,
			}, ttl)
			if err != nil {
				return err
			}
			a.log.Info("employee logged in", zap.String("utilisateur_id", emp.ID), zap.Duration("ttl", ttl))
			return printJSON(cmd, map[string]any{
				"token":      token,
				"session_id": session.ID,
				"expire_le":  session.ExpiresAt,
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Employee email")
	cmd.Flags().StringVar(&password, "password", os.Getenv("OMNIPOS_PASSWORD"), "Employee password (default $OMNIPOS_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func saleCmd() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "sale",
		Short: "Settle, cancel and report on sales",
	}
	cmd.PersistentFlags().StringVar(&token, "token", os.Getenv("OMNIPOS_TOKEN"), "Session token from login (default $OMNIPOS_TOKEN)")

	// withSales runs fn against the sale use case bound to the token's identity.
	withSales := func(fn func(ctx context.Context, a *app, client *db.Client, sales sale.UseCase) error) error {
		ctx, stop := signalContext()
		defer stop()

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		client, err := a.provider.ForToken(token)
		if err != nil {
			return fmt.Errorf("session: %w", err)
		}
		producer := broker.NewProducer(&broker.Config{Brokers: a.cfg.Kafka.Brokers, Topic: a.cfg.Kafka.Topic})
		defer producer.Close()

		s := store.New(client, store.WithLocation(a.loc))
		return fn(ctx, a, client, saleUCPkg.NewSaleUseCase(s.Sales, producer, a.log))
	}

	pay := &cobra.Command{
		Use:   "pay <vente-id>",
		Short: "Mark a fully paid sale as PAYEE and announce it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSales(func(ctx context.Context, _ *app, _ *db.Client, sales sale.UseCase) error {
				s, err := sales.MarkPaid(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, s)
			})
		},
	}

	var reason string
	cancel := &cobra.Command{
		Use:   "cancel <vente-id>",
		Short: "Cancel a sale; a paid one gives its stock back",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSales(func(ctx context.Context, _ *app, client *db.Client, sales sale.UseCase) error {
				u, _ := client.User()
				s, err := sales.Cancel(ctx, args[0], &saledto.CancelSaleInput{CancelledBy: u.UserID, Reason: reason})
				if err != nil {
					return err
				}
				return printJSON(cmd, s)
			})
		},
	}
	cancel.Flags().StringVar(&reason, "reason", "", "Why the sale is cancelled")
	_ = cancel.MarkFlagRequired("reason")

	var from, to string
	list := &cobra.Command{
		Use:   "list",
		Short: "List sales created between two days, both included",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSales(func(ctx context.Context, a *app, client *db.Client, sales sale.UseCase) error {
				start, end, err := dayRange(from, to, a.loc)
				if err != nil {
					return err
				}
				out, err := sales.List(ctx, &saledto.SaleFilters{EstablishmentID: client.Tenant(), From: start, To: end})
				if err != nil {
					return err
				}
				return printJSON(cmd, out)
			})
		},
	}
	list.Flags().StringVar(&from, "from", "", "First day, "+dayLayout)
	list.Flags().StringVar(&to, "to", "", "Last day, "+dayLayout)

	var day string
	summary := &cobra.Command{
		Use:   "summary",
		Short: "Summarize the paid sales of one business day",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSales(func(ctx context.Context, a *app, client *db.Client, sales sale.UseCase) error {
				d := time.Now().In(a.loc)
				if day != "" {
					var err error
					if d, err = time.ParseInLocation(dayLayout, day, a.loc); err != nil {
						return fmt.Errorf("--day: %w", err)
					}
				}
				start, end := dates.DayBounds(d)
				out, err := sales.Summarize(ctx, client.Tenant(), start, end)
				if err != nil {
					return err
				}
				return printJSON(cmd, out)
			})
		},
	}
	summary.Flags().StringVar(&day, "day", "", "Business day, "+dayLayout+" (default today)")

	cmd.AddCommand(pay, cancel, list, summary)
	return cmd
}

// dayRange turns inclusive calendar days into the [from, to) bounds the sale
// filters take. Empty values leave that side open.
func dayRange(from, to string, loc *time.Location) (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if from != "" {
		d, err := time.ParseInLocation(dayLayout, from, loc)
		if err != nil {
			return nil, nil, fmt.Errorf("--from: %w", err)
		}
		start = &d
	}
	if to != "" {
		d, err := time.ParseInLocation(dayLayout, to, loc)
		if err != nil {
			return nil, nil, fmt.Errorf("--to: %w", err)
		}
		e := dates.EndOfDayExclusive(d)
		end = &e
	}
	if start != nil && end != nil && !end.After(*start) {
		return nil, nil, errors.New("--to précède --from")
	}
	return start, end, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
