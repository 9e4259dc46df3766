// Command server runs the listd task-list API.
//
// Configuration is layered: built-in defaults, an optional .env file, a
// YAML config file (path via -config or LISTD_CONFIG), then LISTD_*
// environment overrides. The server refuses to start without a token
// signing secret; see pkg/config.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/listd/listd/pkg/account"
	"github.com/listd/listd/pkg/auth"
	"github.com/listd/listd/pkg/auth/password"
	"github.com/listd/listd/pkg/auth/token"
	"github.com/listd/listd/pkg/authz"
	"github.com/listd/listd/pkg/config"
	"github.com/listd/listd/pkg/debug"
	"github.com/listd/listd/pkg/insights"
	"github.com/listd/listd/pkg/insights/ollama"
	"github.com/listd/listd/pkg/storage"
	"github.com/listd/listd/pkg/storage/memory"
	"github.com/listd/listd/pkg/storage/postgres"
	transporthttp "github.com/listd/listd/pkg/transport/http"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file (default: discover)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	debug.Init(cfg.Observability.Logging.Debug, cfg.Observability.Logging.Level)
	logger := slog.Default()
	if cats := debug.Categories(); len(cats) > 0 {
		logger.Info("debug logging enabled", "categories", cats)
	}

	// Storage.
	var store storage.Store
	switch cfg.Storage.Type {
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		pg, err := postgres.New(ctx, postgres.Config{
			DSN:            cfg.Storage.Postgres.DSN,
			MaxConns:       cfg.Storage.Postgres.MaxConns,
			MigrateOnStart: cfg.Storage.Postgres.MigrateOnStart,
		})
		if err != nil {
			return fmt.Errorf("connecting to postgres: %w", err)
		}
		defer pg.Close()
		store = pg
		logger.Info("storage enabled", "type", "postgres")
	default:
		store = memory.New()
		logger.Info("storage enabled", "type", "memory")
	}

	// Token issuer and authentication chain.
	issuer, err := token.New(token.Config{
		Secret:   []byte(cfg.Auth.Secret),
		Lifetime: cfg.Auth.TokenLifetime,
	})
	if err != nil {
		return fmt.Errorf("creating token issuer: %w", err)
	}
	chain := &auth.Chain{Authenticators: []auth.Authenticator{token.NewAuthenticator(issuer)}}

	// Core services.
	hasher := password.NewHasher(cfg.Auth.BcryptCost)
	accounts := account.New(store, hasher, issuer)
	az := authz.New(store, store)

	var ins *insights.Service
	if cfg.AI.Enabled {
		gen, err := ollama.New(ollama.Config{
			BaseURL: cfg.AI.URL,
			Model:   cfg.AI.Model,
			Timeout: cfg.AI.Timeout,
		})
		if err != nil {
			return fmt.Errorf("creating AI client: %w", err)
		}
		ins = insights.New(gen, store, store, az)
		logger.Info("AI endpoints enabled", "url", cfg.AI.URL, "model", cfg.AI.Model)
	} else {
		logger.Info("AI endpoints disabled")
	}

	// HTTP surface.
	adapter := transporthttp.NewAdapter(accounts, store, az, ins, transporthttp.DefaultConfig())
	srv := transporthttp.NewServer(adapter, chain,
		transporthttp.WithAddr(fmt.Sprintf(":%d", cfg.Server.Port)),
		transporthttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
		transporthttp.WithMetrics(cfg.Observability.Metrics.Enabled, cfg.Observability.Metrics.Path),
		transporthttp.WithLogger(logger),
	)

	return srv.ListenAndServe()
}
