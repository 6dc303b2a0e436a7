// Package control wires the configured components into a running client.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/vietddude/suiwork/internal/core/config"
	"github.com/vietddude/suiwork/internal/core/neterr"
	"github.com/vietddude/suiwork/internal/escrow"
	"github.com/vietddude/suiwork/internal/health"
	"github.com/vietddude/suiwork/internal/infra/chain/sui"
	redisclient "github.com/vietddude/suiwork/internal/infra/redis"
	"github.com/vietddude/suiwork/internal/infra/rpc/provider"
	"github.com/vietddude/suiwork/internal/infra/rpc/routing"
	"github.com/vietddude/suiwork/internal/infra/storage"
	"github.com/vietddude/suiwork/internal/infra/storage/memory"
	"github.com/vietddude/suiwork/internal/infra/storage/postgres"
	"github.com/vietddude/suiwork/internal/wallet"
)

// App owns every long-lived component of the client.
type App struct {
	cfg          config.AppConfig
	router       *routing.Router
	client       *sui.Client
	healthMon    *health.Monitor
	healthServer *health.Server
	link         *health.LinkWatcher
	wallet       *wallet.Manager
	escrow       *escrow.Service
	records      storage.RecordStore
	db           *postgres.DB
	redisClient  *redisclient.Client
	unsubscribe  func()
	log          *slog.Logger
}

// NewApp creates an App with all dependencies initialized. Nothing touches
// the network until Start except the database and Redis handshakes.
func NewApp(ctx context.Context, cfg config.AppConfig) (*App, error) {
	a := &App{
		cfg: cfg,
		log: slog.Default().With("component", "app"),
	}

	// 1. Sui RPC, primary endpoint first
	endpoints := []provider.Provider{provider.NewHTTPProvider(cfg.Network, cfg.RPCURL(), cfg.RPC.Timeout)}
	for i, u := range cfg.RPC.FallbackURLs {
		name := fmt.Sprintf("%s-fallback-%d", cfg.Network, i+1)
		endpoints = append(endpoints, provider.NewHTTPProvider(name, u, cfg.RPC.Timeout))
	}
	a.router = routing.NewRouter(cfg.Network, endpoints...)
	a.client = sui.NewClient(a.router)
	a.healthMon = health.NewMonitor(a.client, cfg.RPC.ProbeTimeout).WithProviders(endpoints...)

	// 2. Record store
	if err := a.initRecords(ctx); err != nil {
		return nil, err
	}

	// 3. Session cache
	var sessions wallet.SessionStore
	if cfg.Redis.URL != "" {
		rc, err := redisclient.NewClient(cfg.Redis, cfg.Wallet.Scope)
		if err != nil {
			a.closeStores()
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		a.redisClient = rc
		sessions = rc
		a.healthMon.WithCheckers(rc)
		a.log.Info("Using Redis session cache", "scope", cfg.Wallet.Scope)
	}

	// 4. Wallet adapters, in configured probe order
	adapters, err := a.buildAdapters()
	if err != nil {
		a.closeStores()
		return nil, err
	}

	exec := routing.NewExecutor(cfg.Retry, neterr.NewClassifier(a.healthMon.IsOnline))
	a.wallet = wallet.NewManager(wallet.Options{
		Adapters: adapters,
		Balances: a.client,
		Conn:     a.healthMon,
		Executor: exec,
		Store:    sessions,
	})

	// 5. Escrow
	a.escrow = escrow.NewService(escrow.NewBuilder(cfg.PackageID), a.wallet, a.client)

	// 6. Connectivity
	if addr := cfg.LinkAddr(); addr != "" {
		a.link = health.NewLinkWatcher(a.healthMon, addr, cfg.Link.Interval, cfg.Link.Timeout)
	}
	a.healthServer = health.NewServer(a.healthMon, cfg.Server.Port)

	return a, nil
}

func (a *App) initRecords(ctx context.Context) error {
	if a.cfg.Database.URL == "" {
		store := memory.NewMemoryStorage()
		a.records = store
		a.healthMon.WithCheckers(store)
		a.log.Info("Using in-memory record store")
		return nil
	}

	db, err := postgres.NewDB(ctx, a.cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to init db: %w", err)
	}
	if a.cfg.Database.Migrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return err
		}
	}
	if err := postgres.VerifySchema(ctx, db); err != nil {
		_ = db.Close()
		return err
	}
	a.db = db
	a.records = postgres.NewRecordStore(db)
	a.healthMon.WithCheckers(db)
	a.log.Info("Using PostgreSQL record store", "driver", a.cfg.Database.Driver)
	return nil
}

func (a *App) buildAdapters() ([]wallet.Adapter, error) {
	adapters := make([]wallet.Adapter, 0, len(a.cfg.Wallet.Adapters))
	for _, ac := range a.cfg.Wallet.Adapters {
		switch ac.Type {
		case config.AdapterKeystore:
			key, err := sui.ParsePrivateKey(ac.PrivateKey)
			if err != nil {
				return nil, fmt.Errorf("wallet %q: %w", ac.Name, err)
			}
			gas := sui.GasConfig{Budget: a.cfg.Gas.Budget, Price: a.cfg.Gas.Price}
			adapters = append(adapters, wallet.NewKeystore(ac.Name, key, a.client, gas))
		case config.AdapterBridge:
			p := provider.NewHTTPProvider(ac.Name, ac.URL, ac.Timeout)
			if ac.Token != "" {
				p.SetHeader("Authorization", "Bearer "+ac.Token)
			}
			adapters = append(adapters, wallet.NewBridge(ac.Name, p))
		default:
			return nil, fmt.Errorf("wallet %q: unknown adapter type %q", ac.Name, ac.Type)
		}
		a.log.Debug("Registered wallet adapter", "name", ac.Name, "type", ac.Type)
	}
	return adapters, nil
}

// Start runs the mount sequence: connectivity probe, link watcher, health
// server and session restore.
func (a *App) Start(ctx context.Context) error {
	a.unsubscribe = a.healthMon.Subscribe(
		func() { a.log.Warn("Network offline, submissions paused") },
		func() { a.log.Info("Network back online") },
	)

	if err := a.healthMon.Start(ctx); err != nil {
		a.log.Warn("Initial reachability probe failed", "error", err)
	}
	if a.link != nil {
		go a.link.Run(ctx)
	}
	if a.db != nil {
		a.db.StartMetricsCollector(ctx)
	}

	if _, err := a.wallet.Restore(ctx); err != nil {
		a.log.Debug("No wallet session restored", "error", err)
	}
	return nil
}

// Serve starts the health server and blocks until it stops.
func (a *App) Serve() error {
	a.log.Info("Health server listening", "port", a.cfg.Server.Port)
	if err := a.healthServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop releases every component.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("Stopping client...")
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	a.closeStores()
	if err := a.router.Close(); err != nil {
		a.log.Warn("Failed to close RPC provider", "error", err)
	}
	return a.healthServer.Stop(ctx)
}

func (a *App) closeStores() {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Warn("Failed to close Redis", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn("Failed to close database", "error", err)
		}
	}
}

func (a *App) Client() *sui.Client          { return a.client }
func (a *App) Monitor() *health.Monitor     { return a.healthMon }
func (a *App) Wallet() *wallet.Manager      { return a.wallet }
func (a *App) Escrow() *escrow.Service      { return a.escrow }
func (a *App) Records() storage.RecordStore { return a.records }
func (a *App) HealthHandler() http.Handler  { return a.healthServer.Handler() }
