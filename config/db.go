package config

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"coursefaq/models"
)

func initDB(cfg *Config, logger *zap.Logger) (*gorm.DB, error) {
	dsn := cfg.Database.Dsn
	if dsn == "" {
		logger.Info("mysql dsn empty, skipping db init")
		return nil, nil
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "open mysql")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get sql.DB")
	}
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&models.Feedback{}); err != nil {
		return nil, errors.Wrap(err, "migrate feedback table")
	}

	logger.Info("MySQL initialized")
	return db, nil
}
