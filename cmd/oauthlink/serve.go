package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/oauthlink"
	"github.com/dmitrymomot/oauthlink/internal/config"
	"github.com/dmitrymomot/oauthlink/internal/server"
	"github.com/dmitrymomot/oauthlink/pkg/db"
	"github.com/dmitrymomot/oauthlink/pkg/identity"
	"github.com/dmitrymomot/oauthlink/pkg/logger"
	"github.com/dmitrymomot/oauthlink/pkg/oauth"
	"github.com/dmitrymomot/oauthlink/pkg/redis"
	"github.com/dmitrymomot/oauthlink/pkg/session"
	"github.com/dmitrymomot/oauthlink/pkg/userstore"
)

const sweepInterval = time.Minute

func newServeCommand() *cobra.Command {
	var runMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the login endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, runMigrations)
		},
	}

	cmd.Flags().BoolVar(&runMigrations, "migrate", false, "Apply migrations before serving")

	return cmd
}

func serve(ctx context.Context, cfg *config.Config, runMigrations bool) error {
	log := logger.FromConfig(cfg.Log, logger.DefaultExtractors()...)

	// Provider misconfiguration is fatal before any connection is opened.
	providers, err := cfg.Providers()
	if err != nil {
		return err
	}
	registry, err := oauth.BuildRegistry(providers, oauth.NewCatalog(), log)
	if err != nil {
		return err
	}
	log.Info("oauth providers registered", slog.Any("aliases", registry.Aliases()))

	pool, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return err
	}
	schema := cfg.Schema(providers.Table)
	if runMigrations {
		if err := migrate(ctx, cfg, schema, pool, log); err != nil {
			pool.Close()
			return err
		}
	}

	links, err := identity.NewPostgresStore(pool, identity.WithTable(schema.LinksTable))
	if err != nil {
		pool.Close()
		return err
	}
	users, err := userstore.NewPostgresStore(pool,
		userstore.WithUsersTable(schema.UsersTable),
		userstore.WithLinksTable(schema.LinksTable),
	)
	if err != nil {
		pool.Close()
		return err
	}

	serverOpts := []server.Option{
		server.WithLogger(log),
		server.WithUserReader(users),
		server.WithReadinessCheck("postgres", db.Healthcheck(pool)),
	}

	var (
		store  session.Store
		memory *session.MemoryStore
	)
	switch cfg.SessionStore {
	case config.SessionStoreRedis:
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			pool.Close()
			return err
		}
		store = session.NewRedisStore(client)
		serverOpts = append(serverOpts,
			server.WithReadinessCheck("redis", redis.Healthcheck(client)),
			server.WithShutdownHook(redis.Shutdown(client)),
		)
	default:
		memory = session.NewMemoryStore()
		store = memory
	}
	// The pool closes last: hooks run in registration order.
	serverOpts = append(serverOpts, server.WithShutdownHook(db.Shutdown(pool)))

	sessions := session.NewManager(store,
		session.WithCookieName(cfg.Server.CookieName),
		session.WithMaxAge(cfg.Server.SessionTTL),
		session.WithSecure(cfg.Server.CookieSecure),
		session.WithLogger(log),
	)
	manager := oauthlink.New(registry, links, users, oauthlink.WithLogger(log))
	srv := server.New(cfg.Server, manager, sessions, serverOpts...)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	if memory != nil {
		g.Go(func() error {
			sweepSessions(gctx, memory, sweepInterval, log)
			return nil
		})
	}
	return g.Wait()
}

// sweepSessions drops expired in-memory sessions until ctx is done.
func sweepSessions(ctx context.Context, store *session.MemoryStore, every time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.Sweep(ctx); n > 0 {
				log.DebugContext(ctx, "expired sessions removed", slog.Int("count", n))
			}
		}
	}
}
