package sqlrebuild

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"
)

// Engine is the main entry point. It holds the parser for the selected
// dialect, the configuration, and a pool of reusable *Builder instances.
// A single Engine is safe for concurrent use.
type Engine struct {
	parser *Parser
	config Config
	pool   sync.Pool
}

// Builder assembles a single SQL template and its values.
// It is NOT safe for concurrent use and is single-use: after Build() it is
// automatically released back to the pool and must not be used again.
type Builder struct {
	e          *Engine
	parts      []string
	inputs     []any
	positional []any
	released   bool
	bag        P
	err        error
}

// Config defines limits and behavior tweaks for the scanner.
type Config struct {
	// MaxParams limits the number of placeholders a single resulting
	// statement may bind.
	// If = 0 (or omitted), it uses a sensible per-dialect default.
	// If < 0, it's treated as "unlimited".
	MaxParams int
	// MaxNameLen limits the maximum allowed length of a placeholder name,
	// e.g. ":this_is_a_name". Names longer than this cause ErrParamNameTooLong.
	MaxNameLen int
	// Style selects how bound placeholders are written. Defaults to Named.
	Style Style
	// NumberedTrigger is the character marking a positional placeholder.
	// Defaults to '?'.
	NumberedTrigger byte
	// Rebuilder, when set, replaces the full scanner in Build() with a
	// lightweight pipeline that always yields exactly one statement.
	Rebuilder Rebuilder
	// Logger receives debug and warning records. Nil discards them.
	Logger *slog.Logger
}

const (
	cacheSize      = 4096 // Default size for the field-index cache
	numberedPrefix = "__numbered"
)

var (
	ErrParamMissing       = errors.New("sqlrebuild: missing parameter")
	ErrSliceEmpty         = errors.New("sqlrebuild: empty slice")
	ErrTooManyParams      = errors.New("sqlrebuild: too many parameters")
	ErrParamNameTooLong   = errors.New("sqlrebuild: parameter name too long")
	ErrFieldAmbiguous     = errors.New("sqlrebuild: ambiguous field name")
	ErrBuilderReleased    = errors.New("sqlrebuild: builder already released; call Write() on *Engine for a new query")
	ErrNoProgress         = errors.New("sqlrebuild: scanner made no progress")
	ErrMultipleStatements = errors.New("sqlrebuild: more than one statement")
	ErrNoStatement        = errors.New("sqlrebuild: no statement")
	ErrUnknownDialect     = errors.New("sqlrebuild: unknown dialect")
	ErrUnknownStyle       = errors.New("sqlrebuild: unknown placeholder style")
)

// New returns a new Engine for the given dialect. Optionally provide a
// Config; unspecified fields fall back to sensible per-dialect defaults.
func New(dialect Dialect, cfg ...Config) *Engine {
	e := &Engine{
		parser: NewParser(dialect, cfg...),
	}
	e.config = e.parser.config
	e.pool.New = func() any {
		return &Builder{
			e:      e,
			parts:  make([]string, 0, 16),
			inputs: make([]any, 0, 8),
		}
	}
	return e
}

// Dialect returns the engine's dialect.
func (e *Engine) Dialect() Dialect { return e.parser.dialect }

// Config returns the effective configuration, defaults applied.
func (e *Engine) Config() Config { return e.config }

// Rebuild rewrites q into one or more ready-to-execute statements, using the
// configured Rebuilder pipeline when there is one.
func (e *Engine) Rebuild(q Query) ([]Query, error) {
	if e.config.Rebuilder != nil {
		out, err := e.config.Rebuilder.Rebuild(q)
		if err != nil {
			return nil, err
		}
		return []Query{out}, nil
	}
	return e.parser.Rebuild(q)
}

// Write starts a new statement and returns a single-use Builder.
// You can add more chunks via Write/Writef, and bind data via Bind()/Args().
func (e *Engine) Write(sql string) *Builder {
	b := e.pool.Get().(*Builder)
	b.e = e
	b.released = false
	b.err = nil
	b.parts = b.parts[:0]
	b.inputs = b.inputs[:0]
	b.positional = b.positional[:0]
	if sql != "" {
		b.parts = append(b.parts, sql)
	}
	return b
}

// Write appends a raw SQL fragment. No auto-spacing is performed.
func (b *Builder) Write(sql string) *Builder {
	if b.released {
		b.err = ErrBuilderReleased
		return b
	}
	if b.err != nil {
		return b
	}
	b.parts = append(b.parts, sql)
	return b
}

// Writef appends a formatted SQL fragment. No auto-spacing is performed.
func (b *Builder) Writef(format string, args ...any) *Builder {
	if b.released {
		b.err = ErrBuilderReleased
		return b
	}
	if b.err != nil {
		return b
	}
	b.parts = append(b.parts, fmt.Sprintf(format, args...))
	return b
}

// Bind enqueues a named value source. Supported forms:
//   - nil (ignored)
//   - struct with `db` tags (flattened through nested structs)
//   - map[string]any or any reflect.Map with string keys
//   - Values
//   - k/v pairs (even number of args, first is string key)
//
// Multiple Bind() calls are allowed; resolution is "last one wins".
func (b *Builder) Bind(args ...any) *Builder {
	if b.released {
		b.err = ErrBuilderReleased
		return b
	}
	if b.err != nil {
		return b
	}

	switch len(args) {
	case 0:
		b.ensureBag()
		return b

	case 1:
		if args[0] != nil {
			b.inputs = append(b.inputs, args[0])
		}
		return b

	default:
		if len(args)%2 != 0 {
			b.err = fmt.Errorf("sqlrebuild: Bind expects even number of args (key,value,...), got %d", len(args))
			return b
		}
		bag := b.ensureBag()
		for i := 0; i < len(args); i += 2 {
			k, ok := args[i].(string)
			if !ok || k == "" {
				b.err = fmt.Errorf("sqlrebuild: Bind key at position %d must be a non-empty string (got %T)", i, args[i])
				return b
			}
			bag[k] = args[i+1]
		}
		return b
	}
}

// Args appends positional values, consumed left to right by numbered
// placeholders.
func (b *Builder) Args(args ...any) *Builder {
	if b.released {
		b.err = ErrBuilderReleased
		return b
	}
	if b.err != nil {
		return b
	}
	b.positional = append(b.positional, args...)
	return b
}

// Build concatenates the template, rebuilds it, and RELEASES the builder
// back into the pool. After Build(), the builder must not be used again.
func (b *Builder) Build() ([]Query, error) {
	if b.released {
		return nil, ErrBuilderReleased
	}
	defer b.Release()
	return b.Preview()
}

// Preview rebuilds the statements without releasing the Builder.
// Safe to call multiple times; identical to Build() except it does NOT Release().
// Use this to log/inspect the exact SQL and values that would be produced.
//
// If the builder has already been released, it returns ErrBuilderReleased.
func (b *Builder) Preview() ([]Query, error) {
	if b.released {
		return nil, ErrBuilderReleased
	}
	if b.err != nil {
		return nil, b.err
	}

	// Local copy of inputs; append bag only if it has entries.
	in := b.inputs
	if len(b.bag) > 0 {
		in = append(in[:len(in):len(in)], b.bag)
	}
	values, err := ValuesOf(in...)
	if err != nil {
		return nil, err
	}
	if len(b.positional) > 0 {
		values = values.Append(b.positional...)
	}
	return b.e.Rebuild(NewQuery(strings.Join(b.parts, ""), values))
}

// Release clears the builder and puts it back into the pool.
// It is safe to call Release multiple times; subsequent calls are no-ops.
func (b *Builder) Release() {
	if b.released {
		return
	}
	b.released = true

	for i := range b.parts {
		b.parts[i] = ""
	}
	b.parts = b.parts[:0]

	for i := range b.inputs {
		b.inputs[i] = nil
	}
	b.inputs = b.inputs[:0]

	for i := range b.positional {
		b.positional[i] = nil
	}
	b.positional = b.positional[:0]

	b.bag = nil
	b.err = nil
	b.e.pool.Put(b)
}

// ensureBag makes sure the builder has a P bag for Bind(); creates if needed.
func (b *Builder) ensureBag() P {
	if b.bag == nil {
		b.bag = make(P, 8)
	}
	return b.bag
}

// defaultConfig merges user config with per-dialect defaults.
func defaultConfig(dialect Dialect, config ...Config) Config {
	c := Config{}

	if len(config) > 0 {
		c = config[0]
	}

	if c.MaxParams == 0 {
		switch dialect {
		case SQLServer:
			c.MaxParams = 2100
		case SQLite:
			c.MaxParams = 999
		case Postgres, MySQL:
			c.MaxParams = 65535
		}
	}

	if c.MaxNameLen <= 0 {
		c.MaxNameLen = 64
	}

	if c.NumberedTrigger == 0 || c.NumberedTrigger >= utf8.RuneSelf {
		c.NumberedTrigger = '?'
	}

	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}

	return c
}
