package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/frankx-ai/frankx/pkg/config"
	"github.com/frankx-ai/frankx/pkg/config/provider"
	"github.com/frankx-ai/frankx/pkg/dispatch"
	"github.com/frankx-ai/frankx/pkg/llms"
	"github.com/frankx-ai/frankx/pkg/models"
	"github.com/frankx-ai/frankx/pkg/observability"
	"github.com/frankx-ai/frankx/pkg/persona"
	"github.com/frankx-ai/frankx/pkg/recommend"
	"github.com/frankx-ai/frankx/pkg/server"
	"github.com/frankx-ai/frankx/pkg/session"
	"github.com/frankx-ai/frankx/pkg/store"
)

// ServeCmd starts the HTTP server.
type ServeCmd struct {
	Port int    `help:"Port to listen on." default:"8080"`
	Host string `help:"Host to bind." default:""`

	// Storage options
	Storage   string `name:"store" help:"Storage backend: memory, sqlite, postgres." placeholder:"BACKEND"`
	StorePath string `name:"store-path" help:"SQLite database path or postgres DSN." placeholder:"PATH"`

	// Observability options
	Observe bool `help:"Enable observability (Prometheus metrics + tracing)."`

	Watch bool `help:"Watch config file for changes."`
}

func (c *ServeCmd) Run(cli *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, loader, err := c.loadConfig(ctx, cli.Config)
	if err != nil {
		return err
	}
	if loader != nil {
		defer loader.Close()
	}
	c.applyOverrides(cfg)

	if cfg.Observability != nil {
		obs := observability.NewManager(*cfg.Observability)
		if err := obs.Initialize(ctx); err != nil {
			return fmt.Errorf("failed to initialize observability: %w", err)
		}
		defer func() {
			if err := obs.Shutdown(context.Background()); err != nil {
				slog.Warn("Observability shutdown failed", "error", err)
			}
		}()
	}

	stores, err := store.NewStores(cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer stores.Close()

	builtins, err := persona.LoadBuiltinPersonas(cfg.Catalog.Personas)
	if err != nil {
		return fmt.Errorf("failed to load persona catalog: %w", err)
	}
	agents, err := persona.LoadBuiltinAgents(cfg.Catalog.Agents)
	if err != nil {
		return fmt.Errorf("failed to load agent catalog: %w", err)
	}
	personas, err := persona.NewService(builtins, agents, stores.Personas)
	if err != nil {
		return fmt.Errorf("failed to create persona service: %w", err)
	}

	modelReg, err := models.LoadRegistry(cfg.Catalog.Models)
	if err != nil {
		return fmt.Errorf("failed to load model catalog: %w", err)
	}

	providers, err := llms.NewRegistryFromConfig(cfg.Providers)
	if err != nil {
		return fmt.Errorf("failed to create providers: %w", err)
	}
	defer providers.CloseAll()

	gateway := dispatch.NewGateway(personas, modelReg, providers)
	sessions := session.NewService(stores.Sessions, gateway)

	resources, err := recommend.LoadResources(cfg.Catalog.Resources)
	if err != nil {
		return fmt.Errorf("failed to load resource catalog: %w", err)
	}
	engine := recommend.NewEngine(agents, resources)

	srv := server.New(cfg.Server, personas, sessions, gateway, modelReg, engine)

	slog.Info("FrankX server ready",
		"address", cfg.Server.Address(),
		"store", cfg.Store.Backend,
		"providers", providers.Names(),
		"personas", len(builtins),
		"agents", len(agents),
		"models", len(modelReg.ListModels()))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(ctx)
	})
	if c.Watch && loader != nil {
		g.Go(func() error {
			if err := loader.Watch(ctx); err != nil && ctx.Err() == nil {
				return fmt.Errorf("config watch failed: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// loadConfig loads configuration from file, or defaults when no file
// is given.
func (c *ServeCmd) loadConfig(ctx context.Context, configPath string) (*config.Config, *config.Loader, error) {
	if configPath == "" {
		slog.Info("No config file, using defaults")
		return config.Default(), nil, nil
	}

	p, err := provider.NewFileProvider(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open config: %w", err)
	}
	loader := config.NewLoader(p)
	cfg, err := loader.Load(ctx)
	if err != nil {
		loader.Close()
		return nil, nil, err
	}
	slog.Info("Loaded configuration", "path", configPath)
	return cfg, loader, nil
}

// applyOverrides applies CLI flags on top of the loaded config.
func (c *ServeCmd) applyOverrides(cfg *config.Config) {
	if c.Port != 0 && c.Port != 8080 {
		cfg.Server.Port = c.Port
	}
	if c.Host != "" {
		cfg.Server.Host = c.Host
	}
	if c.Storage != "" {
		cfg.Store.Backend = config.StorageBackend(c.Storage)
		switch cfg.Store.Backend {
		case config.BackendSQLite:
			if c.StorePath != "" {
				cfg.Store.Path = c.StorePath
			}
		case config.BackendPostgres:
			if c.StorePath != "" {
				cfg.Store.DSN = c.StorePath
			}
		}
		cfg.Store.SetDefaults()
	}
	if c.Observe && cfg.Observability == nil {
		cfg.Observability = &observability.Config{
			Tracing: observability.TracingConfig{Enabled: true},
			Metrics: observability.MetricsConfig{Enabled: true},
		}
		cfg.Observability.SetDefaults()
	}
}
