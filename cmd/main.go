package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"posbridge/internal/config"
	"posbridge/internal/domain"
	httpapi "posbridge/internal/http"
	"posbridge/internal/pos"
	"posbridge/internal/repository"
	"posbridge/internal/service"

	_ "posbridge/docs"
)

// @title POS Bridge API
// @version 1.0
// @description Current open receipt of a restaurant table, fetched from the restaurant's POS vendor.
// @BasePath /
func main() {
	cfg := config.Load()
	logg := config.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	configs, closeStore, err := openConfigStore(ctx, cfg, logg)
	if err != nil {
		logg.WithError(err).Fatal("open pos config store")
	}
	defer closeStore()

	factory := pos.NewFactory(
		pos.WithHTTPClient(&http.Client{Timeout: cfg.VendorTimeout}),
		pos.WithLogger(logg),
	)
	receipts := service.NewReceiptService(configs, factory, logg)

	var origins []string
	if cfg.IsProduction() {
		origins = cfg.CORSOrigins
	}
	srv := httpapi.NewServer(receipts, logg, origins)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Engine(),
	}

	go func() {
		logg.WithFields(logrus.Fields{"addr": httpServer.Addr, "store": cfg.ConfigStore}).Info("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logg.WithError(err).Error("shutdown error")
	}
}

// openConfigStore выбирает хранилище конфигураций по POS_CONFIG_STORE
func openConfigStore(ctx context.Context, cfg config.Config, logg *logrus.Logger) (repository.ConfigRepository, func(), error) {
	noop := func() {}
	switch cfg.ConfigStore {
	case config.StoreMemory:
		if cfg.ConfigFile != "" {
			m, err := repository.LoadMemoryConfigs(cfg.ConfigFile)
			if err != nil {
				return nil, noop, err
			}
			logg.WithField("configs", m.Len()).Info("loaded pos configs from file")
			return m, noop, nil
		}
		logg.Warn("POS_CONFIG_FILE not set, serving demo restaurants")
		return repository.NewMemoryConfigs(repository.DefaultConfigs()...), noop, nil

	case config.StoreMySQL:
		db, err := config.OpenDatabase(cfg, logg)
		if err != nil {
			return nil, noop, err
		}
		closeDB := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		store := repository.NewGormConfigs(db)
		if err := store.Migrate(ctx); err != nil {
			closeDB()
			return nil, noop, err
		}
		if err := seed(ctx, cfg, logg, store.Save); err != nil {
			closeDB()
			return nil, noop, err
		}
		return store, closeDB, nil

	case config.StoreRedis:
		rdb, err := config.OpenRedis(ctx, cfg, logg)
		if err != nil {
			return nil, noop, err
		}
		closeRedis := func() { _ = rdb.Close() }
		store := repository.NewRedisConfigs(rdb)
		if err := seed(ctx, cfg, logg, store.Save); err != nil {
			closeRedis()
			return nil, noop, err
		}
		return store, closeRedis, nil
	}
	return nil, noop, fmt.Errorf("unknown POS_CONFIG_STORE %q", cfg.ConfigStore)
}

// seed upserts POS_CONFIG_FILE into a persistent store, if set.
func seed(ctx context.Context, cfg config.Config, logg logrus.FieldLogger, save func(context.Context, domain.RestaurantPOSConfig) error) error {
	if cfg.ConfigFile == "" {
		return nil
	}
	file, err := repository.LoadMemoryConfigs(cfg.ConfigFile)
	if err != nil {
		return err
	}
	list := file.All()
	for _, c := range list {
		if err := save(ctx, c); err != nil {
			return fmt.Errorf("seed %s: %w", c.RestaurantID, err)
		}
	}
	logg.WithField("configs", len(list)).Info("seeded pos configs")
	return nil
}
