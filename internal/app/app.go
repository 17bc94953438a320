package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/atvirokodosprendimai/validate-json-schema/internal/adapters/filecache"
	"github.com/atvirokodosprendimai/validate-json-schema/internal/adapters/httpapi"
	sqliteadapter "github.com/atvirokodosprendimai/validate-json-schema/internal/adapters/sqlite"
	"github.com/atvirokodosprendimai/validate-json-schema/internal/adapters/sqlite/gormsqlite"
	"github.com/atvirokodosprendimai/validate-json-schema/internal/core/ports"
	"github.com/atvirokodosprendimai/validate-json-schema/internal/core/usecase"
	"github.com/atvirokodosprendimai/validate-json-schema/migrations"
)

type Config struct {
	// CacheDir holds one file per fetched schema URL.
	CacheDir string
	// StateDBPath is the SQLite file for the cache index and run history.
	// Empty disables both.
	StateDBPath string
	Addr        string
	UserAgent   string
}

type resourceCloser struct {
	closers []io.Closer
}

func (r resourceCloser) Close() error {
	var firstErr error
	for _, c := range r.closers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Engine bundles the services a command needs.
type Engine struct {
	Factory    *usecase.ValidatorFactory
	Validation *usecase.ValidationService
	Cache      *usecase.CacheService

	closer io.Closer
}

func (e *Engine) Close() error {
	if e.closer == nil {
		return nil
	}
	return e.closer.Close()
}

func Open(ctx context.Context, cfg Config) (*Engine, error) {
	if cfg.CacheDir == "" {
		return nil, fmt.Errorf("cache dir is required")
	}
	store := filecache.New(cfg.CacheDir)

	var (
		index   ports.CacheIndexRepository
		runs    ports.RunRepository
		closers []io.Closer
	)
	if cfg.StateDBPath != "" {
		// Validation does not depend on the state database; run without it.
		db, err := openStateDB(ctx, cfg.StateDBPath)
		if err != nil {
			log.Printf("state database disabled path=%s: %v", cfg.StateDBPath, err)
		} else {
			index = sqliteadapter.NewCacheIndexRepository(db)
			runs = sqliteadapter.NewRunRepository(db)
			closers = append(closers, db)
		}
	}

	fetcher := usecase.NewSchemaFetcher(store,
		usecase.WithUserAgent(cfg.UserAgent),
		usecase.WithCacheIndex(index),
	)
	factory := usecase.NewValidatorFactory(fetcher)

	var serviceOpts []usecase.ServiceOption
	if runs != nil {
		serviceOpts = append(serviceOpts, usecase.WithRunRepository(runs))
	}

	return &Engine{
		Factory:    factory,
		Validation: usecase.NewValidationService(factory, serviceOpts...),
		Cache:      usecase.NewCacheService(store, index),
		closer:     resourceCloser{closers: closers},
	}, nil
}

func openStateDB(ctx context.Context, path string) (*gormsqlite.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	db, err := gormsqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open state sqlite: %w", err)
	}

	writeSQLDB, err := db.WriteSQLDB()
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("resolve writer sql db: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := migrations.Up(ctx, writeSQLDB); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func NewServer(engine *Engine, addr string) *http.Server {
	handler := httpapi.NewHandler(engine.Validation, engine.Cache)
	return &http.Server{
		Addr:              addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
}
