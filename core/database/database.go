package database

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect establishes a connection to the MySQL database holding the run ledger.
// The ledger is optional, so callers should treat an error as "run without recording".
func Connect(cfg Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(DSN(cfg)), &gorm.Config{
		// Failures surface as optional-ledger warnings in the main logger.
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), timeoutOf(cfg))
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// DSN builds the go-sql-driver/mysql data source name for cfg.
// The password is URL encoded so special characters survive DSN parsing.
func DSN(cfg Config) string {
	userInfo := url.UserPassword(cfg.User, cfg.Password).String()
	timeout := int(timeoutOf(cfg).Seconds())
	return fmt.Sprintf("%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC&timeout=%ds&readTimeout=%ds&writeTimeout=%ds",
		userInfo, cfg.Host, cfg.Port, cfg.Name, timeout, timeout, timeout)
}

func timeoutOf(cfg Config) time.Duration {
	if cfg.TimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(cfg.TimeoutSeconds) * time.Second
}
