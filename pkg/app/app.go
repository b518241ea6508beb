// Package app boots the shared dependencies every shop command needs:
// configuration, logging, the Redis cache, storage disks, the selected
// store driver and the pricing worker pool.
//
//	a, err := app.Boot(ctx)
//	if err != nil { ... }
//	defer a.Close()
//	products, err := a.Catalog.Products(ctx, services.ListFilter{})
package app

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/minimalshop/app/repositories"
	"github.com/shashiranjanraj/minimalshop/app/services"
	"github.com/shashiranjanraj/minimalshop/config"
	"github.com/shashiranjanraj/minimalshop/pkg/cache"
	"github.com/shashiranjanraj/minimalshop/pkg/logger"
	"github.com/shashiranjanraj/minimalshop/pkg/storage"
	"github.com/shashiranjanraj/minimalshop/pkg/workerpool"
)

// App holds booted dependencies. Close releases them in reverse order.
type App struct {
	Stores  *repositories.Stores
	Catalog *services.CatalogService
	Pool    *workerpool.Pool

	closers []func()
}

// Boot loads configuration and connects everything. Redis and the Mongo
// log sink are optional: a failure there is logged and the shop runs
// without them. A store that cannot be opened is fatal.
func Boot(ctx context.Context) (*App, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("app: config: %w", err)
	}

	a := &App{}

	flushLogs, err := logger.Setup()
	if err != nil {
		logger.Warn("app: mongo log sink disabled", "error", err)
	}
	a.onClose(flushLogs)

	if config.RedisAddr() != "" {
		if err := cache.Connect(ctx); err != nil {
			logger.Warn("app: price cache disabled", "error", err)
		} else {
			a.onClose(func() { _ = cache.Close() })
		}
	}

	storage.Connect(ctx)

	stores, err := repositories.Open(ctx)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("app: open %s store: %w", config.StoreDriver(), err)
	}
	a.Stores = stores
	a.onClose(func() {
		if err := stores.Close(); err != nil {
			logger.Warn("app: store close", "error", err)
		}
	})

	a.Pool = workerpool.New(config.WorkerPoolSize())
	a.onClose(a.Pool.Shutdown)

	a.Catalog = services.NewCatalogService(stores.Catalog, stores.Discounts, a.Pool, config.PriceCacheTTL())

	logger.Info("app: booted",
		"env", config.AppEnv(),
		"store", stores.Driver,
		"cache", cache.RDB != nil,
		"workers", a.Pool.Size(),
	)
	return a, nil
}

// Reconciler returns a reconciler over the booted stores that stores its
// report on the default disk.
func (a *App) Reconciler(dryRun bool) *services.Reconciler {
	r := services.NewReconciler(a.Stores.Catalog, a.Stores.Discounts)
	r.DryRun = dryRun
	if disk, err := storage.Default(); err == nil {
		r.ReportDisk = disk
	} else {
		logger.Warn("app: reconcile reports not stored", "error", err)
	}
	return r
}

func (a *App) onClose(fn func()) {
	a.closers = append(a.closers, fn)
}

// Close releases everything Boot opened. Safe to call twice.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
