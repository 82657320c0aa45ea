package sqlrebuild

import (
	"context"
	"database/sql"
	"fmt"
)

// Execer abstracts *sql.DB / *sql.Tx ExecContext for easy testing.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Queryer abstracts *sql.DB / *sql.Tx QueryContext for easy testing.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Exec is a convenience that builds and executes the statements with context.Background().
func (b *Builder) Exec(db Execer) ([]sql.Result, error) {
	return b.ExecContext(context.Background(), db)
}

// Query is a convenience that builds and runs a single statement with context.Background().
func (b *Builder) Query(db Queryer) (*sql.Rows, error) {
	return b.QueryContext(context.Background(), db)
}

// ExecContext builds the template and executes every resulting statement in
// order, each with only its own values. It stops at the first failure.
func (b *Builder) ExecContext(ctx context.Context, db Execer) ([]sql.Result, error) {
	e := b.e
	qs, err := b.Build()
	if err != nil {
		return nil, err
	}
	return e.ExecContext(ctx, db, qs...)
}

// QueryContext builds the template, which must yield exactly one statement,
// and runs it.
func (b *Builder) QueryContext(ctx context.Context, db Queryer) (*sql.Rows, error) {
	e := b.e
	qs, err := b.Build()
	if err != nil {
		return nil, err
	}
	switch len(qs) {
	case 0:
		return nil, ErrNoStatement
	case 1:
	default:
		return nil, fmt.Errorf("%w: got %d", ErrMultipleStatements, len(qs))
	}
	return db.QueryContext(ctx, qs[0].Statement(), e.args(qs[0])...)
}

// ExecContext executes already rebuilt statements in order.
func (e *Engine) ExecContext(ctx context.Context, db Execer, qs ...Query) ([]sql.Result, error) {
	results := make([]sql.Result, 0, len(qs))
	for i, q := range qs {
		res, err := db.ExecContext(ctx, q.Statement(), e.args(q)...)
		if err != nil {
			return results, fmt.Errorf("sqlrebuild: statement %d of %d: %w", i+1, len(qs), err)
		}
		e.config.Logger.Debug("executed statement", "index", i, "params", q.Values().Len())
		results = append(results, res)
	}
	return results, nil
}

// args returns the driver arguments for q in the form the configured
// placeholder style expects. Positional entries, which only survive a NoOp
// pass-through, follow in order.
func (e *Engine) args(q Query) []any {
	var args []any
	if e.config.Style == Named {
		args = q.values.NamedArgs()
	} else {
		args = q.values.Args()
	}
	return append(args, q.values.positional...)
}
