package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/jask/patterndeck/internal/catalog"
	"github.com/jask/patterndeck/internal/config"
	"github.com/jask/patterndeck/internal/database"
	"github.com/jask/patterndeck/internal/database/repository"
	"github.com/jask/patterndeck/internal/logging"
	"github.com/jask/patterndeck/internal/prefs"
	"github.com/jask/patterndeck/internal/service"
)

// runtime holds the opened database and the services built on it.
type runtime struct {
	cfg config.Config
	log *zap.Logger
	db  *sql.DB

	patterns    *service.PatternService
	identity    *service.IdentityService
	store       *service.SubmissionStore
	maintenance *service.MaintenanceService
}

func openRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	log, err := logging.New(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	source := cfg.Database.DSN
	if cfg.Database.Driver == database.DriverSQLite {
		source = cfg.Database.Path
		if err := os.MkdirAll(filepath.Dir(source), 0o755); err != nil {
			return nil, fmt.Errorf("mkdir db dir: %w", err)
		}
	}
	db, err := database.Open(cfg.Database.Driver, source)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := database.RunMigrations(db, cfg.Database.Driver); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	dialect := repository.DialectFor(cfg.Database.Driver)
	if err := database.SeedDefaults(ctx, db, dialect); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seed defaults: %w", err)
	}

	responses := repository.NewStartupPatternRepo(db, dialect)
	rt := &runtime{
		cfg: cfg,
		log: log,
		db:  db,
		patterns: &service.PatternService{
			Patterns: repository.NewPatternRepo(db, dialect),
			Log:      log.Named("patterns"),
		},
		identity: &service.IdentityService{
			Startups: repository.NewStartupRepo(db, dialect),
			Override: cfg.Identity,
			Load:     prefs.LoadIdentity,
			Save:     prefs.SaveIdentity,
		},
		store:       &service.SubmissionStore{Responses: responses},
		maintenance: &service.MaintenanceService{DB: db, Dialect: dialect, Responses: responses},
	}

	if cfg.Catalog.Path != "" {
		c, err := catalog.Load(cfg.Catalog.Path)
		if err != nil {
			rt.Close()
			return nil, err
		}
		if _, err := rt.patterns.Import(ctx, c); err != nil {
			rt.Close()
			return nil, err
		}
	}
	log.Info("runtime ready",
		zap.String("driver", cfg.Database.Driver),
		zap.String("catalog", cfg.Catalog.Path))
	return rt, nil
}

func (r *runtime) Close() {
	_ = r.db.Close()
	_ = r.log.Sync()
}
