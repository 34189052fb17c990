package database

import (
	"context"
	"fmt"

	"bakery-backend/internal/config"
	"bakery-backend/internal/logger"
	"bakery-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open veritabanına bağlanır, havuz ayarlarını yapar ve şemayı migrate eder.
func Open(cfg config.DBConfig, log *logger.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		dialector = postgres.Open(cfg.DSN)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("veritabanına bağlanılamadı: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sql bağlantısı alınamadı: %w", err)
	}
	if cfg.Driver == "sqlite" {
		// sqlite tek yazıcı ile çalışır
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Info().Str("driver", cfg.Driver).Msg("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Product{},
		&models.InventoryRecord{},
		&models.User{},
	); err != nil {
		return fmt.Errorf("AutoMigrate hatası: %w", err)
	}
	return nil
}

func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
