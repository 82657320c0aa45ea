package sqlrebuild

import (
	"fmt"
	"strings"
)

// Dialect identifies the lexical rules (quoting, escaping, comments) used
// to scan a statement.
type Dialect int

const (
	Postgres Dialect = iota
	MySQL
	SQLite
	SQLServer
	// NoOp passes statements and values through untouched.
	NoOp
)

// String returns the string representation of the dialect.
func (d Dialect) String() string {
	switch d {
	case Postgres:
		return "postgres"
	case MySQL:
		return "mysql"
	case SQLite:
		return "sqlite"
	case SQLServer:
		return "sqlserver"
	case NoOp:
		return "noop"
	default:
		return "unknown"
	}
}

// ParseDialect resolves a dialect from its name or a common alias.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "postgres", "postgresql", "pgsql", "pg", "pgx":
		return Postgres, nil
	case "mysql", "mariadb":
		return MySQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "sqlserver", "sqlsrv", "mssql":
		return SQLServer, nil
	case "noop", "null", "none":
		return NoOp, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownDialect, name)
	}
}

// lexerFor returns the immutable rule set for d. It returns nil for NoOp
// and for values outside the declared dialects.
func lexerFor(d Dialect) lexer {
	switch d {
	case Postgres:
		return postgresLexer{}
	case MySQL:
		return mysqlLexer{}
	case SQLite:
		return sqliteLexer{}
	case SQLServer:
		return sqlserverLexer{}
	default:
		return nil
	}
}
