package db

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"storefront/internal/model"
)

const pingTimeout = 5 * time.Second

// Open returns a connected GORM DB instance for driver ("mysql" or "postgres").
// It pings the server so an unreachable store fails at startup.
func Open(driver, dsn string, log *logrus.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	gormDB, err := gorm.Open(dialector, &gorm.Config{Logger: newLogger(log), TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("underlying sql db: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return gormDB, nil
}

// Models lists every persisted entity, one table each.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Product{},
		&model.Cart{},
		&model.ChatMessage{},
	}
}

// Migrate creates or updates the schema. With reset it drops all tables first.
func Migrate(gormDB *gorm.DB, reset bool, log *logrus.Logger) error {
	if reset {
		log.Warn("RESET_DB=true detected, dropping all tables")
		for _, table := range Models() {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				log.WithError(err).Warn("failed to drop table (may not exist)")
			}
		}
	}
	if err := gormDB.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

func newLogger(log *logrus.Logger) gormlogger.Interface {
	if log == nil {
		return gormlogger.Default.LogMode(gormlogger.Silent)
	}
	return gormlogger.New(log, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}
