package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/lib/pq"
)

// DefaultPoolSize matches the connection limit the service has always run with.
const DefaultPoolSize = 10

// Options describes how to reach the account database.
type Options struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string

	// PoolSize caps concurrent connections. Callers beyond it wait in the
	// database/sql queue.
	PoolSize int
}

// DSN renders the options as a postgres URL. The password is escaped.
func (o Options) DSN() string {
	sslmode := o.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(o.User, o.Password),
		Host:     o.Host + ":" + o.Port,
		Path:     "/" + o.Name,
		RawQuery: "sslmode=" + url.QueryEscape(sslmode),
	}
	return u.String()
}

// Connect opens the pool, applies the size limits and pings once.
func Connect(ctx context.Context, opts Options) (*sql.DB, error) {
	db, err := sql.Open("postgres", opts.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	Configure(db, opts.PoolSize)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

// Configure bounds the pool to size connections. Idle connections are kept up
// to the same limit so a warm pool does not reconnect under steady load.
func Configure(db *sql.DB, size int) {
	if size <= 0 {
		size = DefaultPoolSize
	}
	db.SetMaxOpenConns(size)
	db.SetMaxIdleConns(size)
	db.SetConnMaxIdleTime(5 * time.Minute)
}
