package botdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/lovepool/lovebot/logger"
)

func init() {
	// route driver-internal complaints through slog
	_ = mysql.SetLogger(logger.NewStdLog("mysql", nil))
}

// OpenDB opens a MySQL connection pool for the given DSN and
// verifies the connection before returning it.
func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing database dsn: %w", err)
	}

	// DATETIME columns scan into time.Time
	cfg.ParseTime = true

	dbconn, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, err
	}

	dbconn.SetConnMaxLifetime(time.Minute * 3)
	dbconn.SetMaxOpenConns(5)
	dbconn.SetMaxIdleConns(2)

	if err := dbconn.PingContext(ctx); err != nil {
		dbconn.Close()
		return nil, fmt.Errorf("database ping: %w", err)
	}

	return dbconn, nil
}
