package db

import (
	"context"
	"fmt"

	"github.com/inkwellhq/inkwell/internal/config"
	"github.com/inkwellhq/inkwell/internal/domain"
	"github.com/inkwellhq/inkwell/internal/health"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func Open(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	}
	switch cfg.DBDriver {
	case "postgres":
		gdb, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return gdb, nil
	case "sqlite":
		dsn := cfg.DatabaseDSN
		if dsn == "" {
			dsn = "file:inkwell.db?_fk=1"
		}
		gdb, err := gorm.Open(sqlite.Open(dsn), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return gdb, nil
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.DBDriver)
	}
}

func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(&domain.User{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func Checker(gdb *gorm.DB) health.Checker {
	return health.CheckFunc(func(ctx context.Context) health.CheckResult {
		sqlDB, err := gdb.DB()
		if err != nil {
			return health.CheckResult{Name: "db", Healthy: false, Error: err.Error()}
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return health.CheckResult{Name: "db", Healthy: false, Error: err.Error()}
		}
		return health.CheckResult{Name: "db", Healthy: true}
	})
}
