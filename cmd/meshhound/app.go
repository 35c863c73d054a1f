package main

import (
	"context"
	"time"

	"github.com/aleister1102/meshhound/internal/catalog"
	"github.com/aleister1102/meshhound/internal/common"
	"github.com/aleister1102/meshhound/internal/config"
	"github.com/aleister1102/meshhound/internal/datastore"
	"github.com/aleister1102/meshhound/internal/logger"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 30 * time.Second

// application holds what every command needs: configuration, logger and the
// restored catalog backed by the snapshot store.
type application struct {
	configFlag string
	noColor    bool

	cfg       *config.GlobalConfig
	logger    zerolog.Logger
	sessionID string
	store     datastore.SnapshotStore
	catalog   *catalog.Catalog
}

func newApplication() *application {
	return &application{logger: zerolog.Nop()}
}

// open loads configuration, builds the logger and restores the catalog.
func (a *application) open(ctx context.Context) error {
	cfg, err := config.LoadGlobalConfig(a.configFlag)
	if err != nil {
		return common.WrapError(err, "could not load configuration")
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}
	a.cfg = cfg

	a.sessionID = uuid.NewString()
	log, err := logger.NewWithSessionID(cfg.LogConfig, a.sessionID, a.noColor)
	if err != nil {
		return common.WrapError(err, "could not initialize logger")
	}
	a.logger = log

	store, err := datastore.Open(cfg.StorageConfig, a.logger)
	if err != nil {
		return common.WrapError(err, "could not open catalog store")
	}
	a.store = store

	records, err := store.Load(ctx)
	if err != nil {
		return common.WrapError(err, "could not load catalog snapshot")
	}

	a.catalog = catalog.New(store, a.logger, catalog.WithWriteTimeout(cfg.StorageConfig.WriteTimeout()))
	restored := a.catalog.Restore(records)

	a.logger.Debug().
		Str("backend", cfg.StorageConfig.Backend).
		Str("path", cfg.StorageConfig.Path).
		Int("restored", restored).
		Msg("Catalog restored")
	return nil
}

// shutdown flushes the catalog and releases the store. Safe to call when
// open failed part-way.
func (a *application) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs common.ErrorCollector
	if a.catalog != nil {
		errs.AddWithContext(a.catalog.Close(ctx), "flushing catalog")
	}
	if a.store != nil {
		errs.AddWithContext(a.store.Close(), "closing store")
	}
	if errs.HasErrors() {
		a.logger.Error().Err(errs.Error()).Msg("Shutdown finished with errors")
	}
}
