package db

import (
	"context"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/cirozov-cmyk/device-logs-tile/internal/config"
)

// DriverName maps the configured driver onto the registered database/sql name.
// "postgres" is served by the pgx stdlib driver, which registers as "pgx".
func DriverName(driver string) string {
	if driver == "postgres" {
		return "pgx"
	}
	return driver
}

// Connect opens the external log database. The tile only reads from it.
func Connect(ctx context.Context, cfg config.SourceConfig, logger *zap.Logger) (*sqlx.DB, error) {
	conn, err := sqlx.Open(DriverName(cfg.SQLDriver), cfg.SQLDSN)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	conn.SetMaxOpenConns(2)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if logger != nil {
		logger.Info("log source database connected", zap.String("driver", cfg.SQLDriver))
	}
	return conn, nil
}
