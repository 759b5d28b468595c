// Package shop wires the storefront services together. Commands and the TUI
// consume an App instead of cherry-picking raw dependencies.
package shop

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/whimsicalfrog/frogshop/internal/api"
	"github.com/whimsicalfrog/frogshop/internal/core/cart"
	"github.com/whimsicalfrog/frogshop/internal/core/config"
	"github.com/whimsicalfrog/frogshop/internal/core/notify"
	"github.com/whimsicalfrog/frogshop/internal/core/upsell"
	"github.com/whimsicalfrog/frogshop/internal/data/db"
	"github.com/whimsicalfrog/frogshop/internal/data/stores"
	"github.com/whimsicalfrog/frogshop/internal/metrics"
	"github.com/whimsicalfrog/frogshop/pkg/logutils"
)

// App is the central entry point for all storefront operations.
type App struct {
	Config  *config.Config
	DB      *db.DB
	Metrics *metrics.Manager
	Logger  zerolog.Logger

	KV            *stores.KVStore
	Notifications *stores.NotifyStore
	Catalog       *api.Catalog
	Upsells       *upsell.Engine
	Carts         *cart.Store
	Toasts        *notify.Manager
	History       *notify.Recorder
}

// NewApp constructs an App from explicit dependencies. Every toast shown
// through Toasts is persisted to the notification history.
func NewApp(cfg *config.Config, database *db.DB, m *metrics.Manager, logger zerolog.Logger) *App {
	kvStore := stores.NewKVStore(database)
	notifications := stores.NewNotifyStore(database)

	client := api.New(cfg.APIURL,
		api.WithTimeout(cfg.APITimeout),
		api.WithLogger(logutils.Component(logger, "api")),
	)
	catalog := api.NewCatalog(client, cfg.SearchLimit)

	engine := upsell.NewEngine(catalog, kvStore,
		upsell.WithConfig(cfg.Upsell),
		upsell.WithLogger(logutils.Component(logger, "upsell")),
		upsell.WithMetrics(m),
	)

	toasts := notify.NewManager(
		notify.WithConfig(cfg.NotifyManagerConfig()),
		notify.WithLogger(logutils.Component(logger, "notify")),
		notify.WithMetrics(m),
	)
	recorder := notify.NewRecorder(notifications, logger)
	recorder.Attach(toasts)

	return &App{
		Config:        cfg,
		DB:            database,
		Metrics:       m,
		Logger:        logger,
		KV:            kvStore,
		Notifications: notifications,
		Catalog:       catalog,
		Upsells:       engine,
		Carts:         cart.NewStore(kvStore),
		Toasts:        toasts,
		History:       recorder,
	}
}

// OpenDB opens the database in dataDir. A corrupt file is moved aside and a
// fresh database is created in its place.
func OpenDB(dataDir string, logger zerolog.Logger) (*db.DB, error) {
	opts := db.DefaultOpenOptions()
	opts.Logger = logutils.Component(logger, "db")
	opts.Permanent = stores.IsCorruptionError

	database, err := db.Open(dataDir, opts)
	if err == nil {
		return database, nil
	}
	if !stores.IsCorruptionError(err) {
		return nil, fmt.Errorf("open database: %w", err)
	}

	backup, rerr := stores.RecoverFromCorruption(dataDir, time.Now())
	if rerr != nil {
		return nil, fmt.Errorf("recover database: %w", rerr)
	}
	logger.Warn().Err(err).Str("backup", backup).Msg("database was corrupt, starting fresh")

	database, err = db.Open(dataDir, opts)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return database, nil
}
