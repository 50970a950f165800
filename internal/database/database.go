// Package database centralises sqlx connection helpers.  The default driver
// is go-sql-driver/mysql, which also works with MariaDB when configured for
// the MySQL wire protocol.
//
// Open builds the pool straight from the database config domain and Pings
// before returning, so a bad DATABASE_URL fails during bootstrap instead of
// on the first request.  Callers should Close() the returned *sqlx.DB when
// no longer needed.
package database

import (
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/taskgate/internal/config"
)

// Open returns a *sqlx.DB sized from cfg.  Only called when database.type
// is "mysql"; the memory store needs no pool.
func Open(cfg config.Database) (*sqlx.DB, error) {
	db, err := sqlx.Open("mysql", withFoundRows(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("open mysql pool: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// withFoundRows forces clientFoundRows onto the DSN so RowsAffected reports
// matched rows.  Without it the driver reports changed rows, and an UPDATE
// whose values equal the stored row looks like a missing one.
func withFoundRows(dsn string) string {
	if strings.Contains(dsn, "clientFoundRows=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&clientFoundRows=true"
	}
	return dsn + "?clientFoundRows=true"
}
