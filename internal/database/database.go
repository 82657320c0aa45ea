// Package database maps database/sql driver names to the dialect and
// placeholder style sqlrebuild needs for them, and opens connections.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gandaldf/sqlrebuild"

	// Registered drivers
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// ErrUnknownDriver is returned for driver names without a registration.
var ErrUnknownDriver = errors.New("database: unknown driver")

// Driver describes how statements must be rebuilt for a database/sql driver.
type Driver struct {
	// Name is the name the driver registers with database/sql.
	Name    string
	Dialect sqlrebuild.Dialect
	Style   sqlrebuild.Style
}

var (
	mysqlDriver    = Driver{Name: "mysql", Dialect: sqlrebuild.MySQL, Style: sqlrebuild.Question}
	postgresDriver = Driver{Name: "pgx", Dialect: sqlrebuild.Postgres, Style: sqlrebuild.Dollar}
	sqliteDriver   = Driver{Name: "sqlite", Dialect: sqlrebuild.SQLite, Style: sqlrebuild.Question}
)

// drivers is keyed by every accepted spelling.
var drivers = map[string]Driver{
	"mysql":      mysqlDriver,
	"mariadb":    mysqlDriver,
	"pgx":        postgresDriver,
	"postgres":   postgresDriver,
	"postgresql": postgresDriver,
	"sqlite":     sqliteDriver,
	"sqlite3":    sqliteDriver,
}

// Lookup returns the registration for name.
func Lookup(name string) (Driver, error) {
	d, ok := drivers[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Driver{}, fmt.Errorf("%w: %q (supported: %s)", ErrUnknownDriver, name, strings.Join(Names(), ", "))
	}
	return d, nil
}

// Names returns the accepted driver names, sorted.
func Names() []string {
	names := make([]string, 0, len(drivers))
	for n := range drivers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Engine returns a sqlrebuild engine that writes placeholders the way the
// driver binds them. Other settings are taken from cfg.
func (d Driver) Engine(cfg sqlrebuild.Config) *sqlrebuild.Engine {
	cfg.Style = d.Style
	return sqlrebuild.New(d.Dialect, cfg)
}

// Open opens a connection pool for the named driver and verifies it with a ping.
func Open(ctx context.Context, name, dsn string) (*sql.DB, Driver, error) {
	d, err := Lookup(name)
	if err != nil {
		return nil, Driver{}, err
	}
	if dsn == "" {
		return nil, Driver{}, fmt.Errorf("database: empty DSN for driver %s", d.Name)
	}

	db, err := sql.Open(d.Name, dsn)
	if err != nil {
		return nil, Driver{}, fmt.Errorf("failed to open %s database: %w", d.Name, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, Driver{}, fmt.Errorf("failed to connect to %s database: %w", d.Name, err)
	}
	return db, d, nil
}
