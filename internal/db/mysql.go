package db

import (
	"context"
	"fmt"
	"time"

	"github.com/cccbbbaaaa/culture-china/internal/config"
	"github.com/cccbbbaaaa/culture-china/internal/logger"
	"github.com/cccbbbaaaa/culture-china/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func NewConnection(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DatabaseDSN()), GormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxConnections)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConnections)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnectionLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// GormConfig is shared by the MySQL connection and the sqlite test databases.
// Query logging goes through zerolog at warn level.
func GormConfig() *gorm.Config {
	log := logger.Get().With().Str("component", "gorm").Logger()
	return &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(&log, gormlogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}
}

// Migrate creates or alters every table the service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.UploadBatch{},
		&model.MediaAsset{},
		&model.AlumniProfile{},
		&model.AlumniEducation{},
		&model.AlumniExperience{},
		&model.ExternalResource{},
		&model.ActivityMedia{},
	)
}
