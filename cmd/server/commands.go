package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	profileService "anoa.com/devconnector/internal/modules/profile/service"

	"anoa.com/devconnector/internal/bootstrap"
	"anoa.com/devconnector/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCmd() *cobra.Command {
	serve := newServeCmd()

	root := &cobra.Command{
		Use:          "devconnector",
		Short:        "Developer profile API",
		SilenceUsage: true,
		RunE:         serve.RunE,
	}
	root.Flags().AddFlagSet(serve.Flags())

	root.AddCommand(serve, newMigrateCmd(), newSeedCmd(), newReindexCmd())
	return root
}

// withApp loads config, connects the store and runs fn, closing everything afterwards.
func withApp(fn func(ctx context.Context, a *app) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.close(closeCtx)
	}()

	if err := a.openStore(ctx); err != nil {
		a.log.Error("failed to connect store", err)
		return err
	}
	return fn(ctx, a)
}

func newServeCmd() *cobra.Command {
	var skipMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				if !skipMigrate {
					if err := a.migrate(ctx); err != nil {
						a.log.Error("migration failed", err)
						return err
					}
				}
				if a.cfg.AppEnv == "development" {
					if err := bootstrap.SeedDemo(ctx, a.repos, a.log); err != nil {
						a.log.Error("failed to seed demo user", err)
						return err
					}
				}

				deps := server.Dependencies{
					Repositories: a.repos,
					ImageStorage: a.imageStorage(),
					ProfileIndex: a.profileIndex(),
					Limiter:      a.limiter(ctx),
					Publisher:    a.eventPublisher(),
				}

				srv, err := server.NewServer(a.cfg, deps, a.log)
				if err != nil {
					return err
				}
				return srv.Run(ctx)
			})
		},
	}
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not migrate the store before serving")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create tables (postgres) or indexes (mongo)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				if err := a.migrate(ctx); err != nil {
					return err
				}
				a.log.Info("migration completed", zap.String("driver", a.cfg.StoreDriver))
				return nil
			})
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the demo account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				if err := a.migrate(ctx); err != nil {
					return err
				}
				return bootstrap.SeedDemo(ctx, a.repos, a.log)
			})
		},
	}
}

func newReindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Push every profile to the search index",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				svc := profileService.NewProfileService(a.repos.Profiles, a.repos.Users, a.repos.Posts, a.profileIndex(), a.eventPublisher(), a.log)
				n, err := svc.Reindex(ctx)
				if err != nil {
					return err
				}
				a.log.Info("profiles reindexed", zap.Int("count", n))
				return nil
			})
		},
	}
}
