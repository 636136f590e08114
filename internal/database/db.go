// Package database owns the MySQL connection pool and the transaction
// runner the services execute their guarded updates through.
package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Pool sizing.  The service is I/O bound on short row-locked
// transactions, so a modest pool with recycled connections is enough.
const (
	maxOpenConns    = 20
	maxIdleConns    = 10
	connMaxLifetime = time.Hour
	connMaxIdleTime = 10 * time.Minute
	pingTimeout     = 5 * time.Second
)

// Open builds the DSN, opens the pool and verifies connectivity with a
// bounded ping.  parseTime maps DATETIME columns onto time.Time and
// every connection pins UTC so stored instants compare cleanly with
// the engine's clock.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	dc := mysql.NewConfig()
	dc.User = user
	dc.Passwd = pass
	dc.Net = "tcp"
	dc.Addr = host + ":" + port
	dc.DBName = name
	dc.ParseTime = true
	dc.Loc = time.UTC
	dc.Params = map[string]string{"charset": "utf8mb4"}

	db, err := sql.Open("mysql", dc.FormatDSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
