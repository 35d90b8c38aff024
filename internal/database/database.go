// Package database opens the SQL database that converted tables are loaded into.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "modernc.org/sqlite"             // SQLite driver

	"github.com/dbsmedya/mdb2json/internal/config"
)

// Open connects to the configured database and verifies the connection,
// retrying with exponential backoff.
func Open(ctx context.Context, cfg *config.DatabaseConfig) (*sql.DB, error) {
	driver, dsn, err := DriverAndDSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := connectWithRetry(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}
	return db, nil
}

// DriverAndDSN returns the database/sql driver name and DSN for cfg.
func DriverAndDSN(cfg *config.DatabaseConfig) (string, string, error) {
	switch cfg.Driver {
	case "sqlite", "":
		if cfg.Path == "" {
			return "", "", fmt.Errorf("sqlite database path is empty")
		}
		return "sqlite", sqliteDSN(cfg.Path), nil
	case "mysql":
		return "mysql", BuildDSN(cfg), nil
	default:
		return "", "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// sqliteDSN returns a file: URI for path. The path is percent-encoded so
// that '?' and '#' in a file name are not read as URI delimiters.
func sqliteDSN(path string) string {
	return "file:" + (&url.URL{Path: path}).EscapedPath() + "?_pragma=busy_timeout(5000)"
}

// connectWithRetry attempts to connect with exponential backoff.
func connectWithRetry(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	var db *sql.DB
	var err error

	maxRetries := 3
	backoff := time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = connect(driver, dsn)
		if err == nil {
			// Verify connection
			if pingErr := db.PingContext(ctx); pingErr == nil {
				return db, nil
			} else {
				db.Close()
				err = pingErr
			}
		}

		if i < maxRetries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				backoff *= 2 // Exponential backoff
			}
		}
	}

	return nil, fmt.Errorf("failed after %d retries: %w", maxRetries, err)
}

// connect creates a database handle.
func connect(driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if driver == "sqlite" {
		// A single writer avoids SQLITE_BUSY between pooled connections.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(2)
	}
	db.SetConnMaxLifetime(10 * time.Minute)

	return db, nil
}

// BuildDSN constructs a MySQL DSN from configuration.
func BuildDSN(cfg *config.DatabaseConfig) string {
	// Format: user:password@tcp(host:port)/database?params
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
	)

	if cfg.Database != "" {
		dsn += cfg.Database
	}

	// utf8mb4 keeps non-ASCII table contents intact
	params := "?charset=utf8mb4&parseTime=true"
	switch cfg.TLS {
	case "disable":
		params += "&tls=false"
	case "required":
		params += "&tls=true"
	case "preferred", "":
		params += "&tls=preferred"
	}

	return dsn + params
}
