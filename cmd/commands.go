package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/bloom-backend/internal/app"
	"github.com/yungbote/bloom-backend/internal/data/db"
	"github.com/yungbote/bloom-backend/internal/data/repos"
	types "github.com/yungbote/bloom-backend/internal/domain"
	"github.com/yungbote/bloom-backend/internal/platform/dbctx"
	"github.com/yungbote/bloom-backend/internal/platform/logger"
	"github.com/yungbote/bloom-backend/internal/platform/session"
	"github.com/yungbote/bloom-backend/internal/seed"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "bloom",
		Short:         "Bloom employee engagement backend",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (defaults to $"+app.ConfigPathEnv+")")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}
	root.RunE = serve.RunE

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(configPath, func(_ *app.Config, log *logger.Logger, svc *db.Service) error {
				if err := db.AutoMigrateAll(svc.DB()); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
				log.Info("migration complete", "driver", svc.Driver())
				return nil
			})
		},
	}

	var fixturesPath string
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Load companies, teams, users and surveys from a YAML fixture file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fx, err := seed.LoadFile(fixturesPath)
			if err != nil {
				return err
			}
			return withDB(configPath, func(cfg *app.Config, log *logger.Logger, svc *db.Service) error {
				if err := db.AutoMigrateAll(svc.DB()); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
				loc, err := cfg.Location()
				if err != nil {
					return err
				}
				sum, err := seed.NewSeeder(svc.DB(), log, loc).Apply(cmd.Context(), fx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %d companies (%d skipped), %d teams, %d users, %d surveys, %d scores\n",
					sum.Companies, sum.SkippedExisting, sum.Teams, sum.Users, sum.Surveys, sum.Scores)
				return nil
			})
		},
	}
	seedCmd.Flags().StringVar(&fixturesPath, "file", "fixtures.yaml", "fixture file")

	var userRef string
	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Print a session value for a user (local testing)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(configPath, func(cfg *app.Config, log *logger.Logger, svc *db.Service) error {
				user, err := findUser(cmd.Context(), svc, log, userRef)
				if err != nil {
					return err
				}
				sessions, err := session.NewManager(cfg.SessionSecret(), cfg.Session.TTL)
				if err != nil {
					return err
				}
				value, err := sessions.Issue(user.ID, user.CompanyID, user.Role)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), value)
				return nil
			})
		},
	}
	sessionCmd.Flags().StringVar(&userRef, "user", "", "user id or email")
	_ = sessionCmd.MarkFlagRequired("user")

	root.AddCommand(serve, migrate, seedCmd, sessionCmd)
	return root
}

func runServe(parent context.Context, configPath string) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize app: %w", err)
	}
	defer a.Close()
	return a.Run(ctx)
}

func withDB(configPath string, fn func(cfg *app.Config, log *logger.Logger, svc *db.Service) error) error {
	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	svc, err := db.NewService(cfg.Database(), log)
	if err != nil {
		return err
	}
	defer svc.Close()
	return fn(cfg, log, svc)
}

func findUser(ctx context.Context, svc *db.Service, log *logger.Logger, ref string) (*types.User, error) {
	users := repos.NewUserRepo(svc.DB(), log)
	dbc := dbctx.Context{Ctx: ctx}
	var (
		user *types.User
		err  error
	)
	if id, perr := uuid.Parse(strings.TrimSpace(ref)); perr == nil {
		user, err = users.GetByID(dbc, id)
	} else {
		user, err = users.GetByEmail(dbc, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %q not found", ref)
	}
	return user, nil
}
