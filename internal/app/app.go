package app

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/sivakirlampalli/Ecommerce-Website/internal/cart"
	"github.com/sivakirlampalli/Ecommerce-Website/internal/catalog"
	"github.com/sivakirlampalli/Ecommerce-Website/internal/notify"
	"github.com/sivakirlampalli/Ecommerce-Website/internal/session"
	"github.com/sivakirlampalli/Ecommerce-Website/pkg/config"
	"github.com/sivakirlampalli/Ecommerce-Website/pkg/db"
	"github.com/sivakirlampalli/Ecommerce-Website/pkg/enums"
	pkgerrors "github.com/sivakirlampalli/Ecommerce-Website/pkg/errors"
	"github.com/sivakirlampalli/Ecommerce-Website/pkg/logger"
	"github.com/sivakirlampalli/Ecommerce-Website/pkg/metrics"
	"github.com/sivakirlampalli/Ecommerce-Website/pkg/migrate"
	"github.com/sivakirlampalli/Ecommerce-Website/pkg/redis"
	"github.com/sivakirlampalli/Ecommerce-Website/pkg/security"
	"github.com/sivakirlampalli/Ecommerce-Website/pkg/storage"
	"go.uber.org/multierr"
)

// Options overrides pieces of the wiring, mostly for tests.
type Options struct {
	Logger   *logger.Logger
	Store    storage.Store
	Verifier session.CredentialVerifier
	Sinks    []notify.Sink
}

// App holds every service constructed for one process.
type App struct {
	Config   *config.Config
	Logger   *logger.Logger
	Store    storage.Store
	Keys     storage.Keys
	Catalog  *catalog.Provider
	Session  *session.Manager
	Cart     *cart.Manager
	Notices  *notify.Recorder
	Metrics  *metrics.StoreMetrics
	Registry *prometheus.Registry

	closers []func() error
}

// New builds the storefront from cfg. Callers must Close the result.
func New(ctx context.Context, cfg *config.Config, opts Options) (_ *App, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config required")
	}
	logg := opts.Logger
	if logg == nil {
		logg = logger.Nop()
	}

	a := &App{
		Config:   cfg,
		Logger:   logg,
		Keys:     storage.NewKeys(cfg.Storage.Namespace),
		Notices:  notify.NewRecorder(),
		Registry: prometheus.NewRegistry(),
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, a.Close())
		}
	}()
	a.Metrics = metrics.NewStoreMetrics(a.Registry)

	a.Store = opts.Store
	if a.Store == nil {
		if a.Store, err = a.openStore(ctx); err != nil {
			return nil, err
		}
	}

	if pinger, ok := a.Store.(storage.Pinger); ok {
		if err = pinger.Ping(ctx); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "storage unreachable")
		}
	}

	if a.Catalog, err = catalog.Load(cfg.Catalog.Path); err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	verifier := opts.Verifier
	if verifier == nil {
		if verifier, err = a.verifier(); err != nil {
			return nil, err
		}
	}

	sink := notify.Multi(append([]notify.Sink{a.Notices, notify.NewLogSink(logg)}, opts.Sinks...))
	scope := cfg.Storage.Scope()

	a.Session, err = session.NewManager(ctx, session.Options{
		Store:             a.Store,
		Keys:              a.Keys,
		CartScope:         scope,
		Verifier:          verifier,
		Notifier:          sink,
		Logger:            logg,
		Metrics:           a.Metrics,
		MinPasswordLength: cfg.Auth.MinPasswordLength,
	})
	if err != nil {
		return nil, fmt.Errorf("session manager: %w", err)
	}

	a.Cart, err = cart.NewManager(ctx, cart.Options{
		Session:  a.Session,
		Store:    a.Store,
		Keys:     a.Keys,
		Scope:    scope,
		Notifier: sink,
		Logger:   logg,
		Metrics:  a.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("cart manager: %w", err)
	}

	logg.Debug(logg.WithFields(ctx, map[string]any{
		"driver":     cfg.Storage.DriverKind().String(),
		"cart_scope": string(scope),
		"verifier":   string(cfg.Auth.VerifierKind()),
	}), "storefront ready")
	return a, nil
}

func (a *App) openStore(ctx context.Context) (storage.Store, error) {
	driver := a.Config.Storage.DriverKind()
	switch driver {
	case enums.StorageDriverMemory:
		return storage.NewMemoryStore(), nil

	case enums.StorageDriverSQLite, enums.StorageDriverPostgres:
		client, err := db.New(ctx, driver, a.Config.DB, a.Logger)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		if a.Config.DB.AutoMigrate {
			sqlDB, err := client.DB().DB()
			if err != nil {
				return nil, fmt.Errorf("database handle: %w", err)
			}
			if err := migrate.Up(ctx, sqlDB, driver); err != nil {
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		return client, nil

	case enums.StorageDriverRedis:
		client, err := redis.New(ctx, a.Config.Redis, a.Logger)
		if err != nil {
			return nil, fmt.Errorf("open redis: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		return client, nil
	}
	return nil, fmt.Errorf("unsupported storage driver %q", driver)
}

func (a *App) verifier() (session.CredentialVerifier, error) {
	switch a.Config.Auth.VerifierKind() {
	case enums.VerifierKindAccounts:
		return session.NewAccountVerifier(a.Store, a.Keys, security.NewHasher(a.Config.Password), a.Logger)
	default:
		return session.SimulatedVerifier{Delay: a.Config.Auth.SimulatedDelay}, nil
	}
}

// WriteMetrics renders the process registry in the text exposition format.
func (a *App) WriteMetrics(w io.Writer) error {
	families, err := a.Registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// Close releases storage connections.
func (a *App) Close() error {
	var err error
	for i := len(a.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.closers[i]())
	}
	a.closers = nil
	return err
}
