package sqlrebuild

import "fmt"

// Parser rewrites statement templates for one dialect. It is stateless
// apart from its configuration and is safe for concurrent use.
type Parser struct {
	dialect Dialect
	config  Config
	lexer   lexer
}

// NewParser returns a Parser for the given dialect. Optionally provide a
// Config; unspecified fields fall back to sensible per-dialect defaults.
func NewParser(dialect Dialect, cfg ...Config) *Parser {
	return &Parser{
		dialect: dialect,
		config:  defaultConfig(dialect, cfg...),
		lexer:   lexerFor(dialect),
	}
}

// Dialect returns the parser's dialect.
func (p *Parser) Dialect() Dialect { return p.dialect }

// Rebuild splits q on unquoted statement separators and rewrites every
// placeholder so that it is backed by exactly one scalar value. Each
// resulting Query carries only the values its own statement references,
// under names unique within the call. Whitespace-only statements are
// dropped.
//
// On error no statements are returned.
func (p *Parser) Rebuild(q Query) ([]Query, error) {
	if p.lexer == nil {
		if p.dialect != NoOp {
			return nil, fmt.Errorf("%w: %d", ErrUnknownDialect, int(p.dialect))
		}
		return []Query{q}, nil
	}

	s := newState(q, p.config)
	var out []Query
	for !s.done() {
		before := s.pos
		if err := p.lexer.scan(s); err != nil {
			return nil, err
		}
		if s.pos <= before {
			return nil, fmt.Errorf("%w: offset %d (%q)", ErrNoProgress, before, s.peek(16))
		}
		if s.newStatement {
			if stmt, ok := s.flush(); ok {
				out = append(out, stmt)
			}
		}
	}
	if stmt, ok := s.flush(); ok {
		out = append(out, stmt)
	}

	log := p.config.Logger
	if names, rest := s.unused(); len(names) > 0 || rest > 0 {
		log.Debug("unused values", "dialect", p.dialect.String(), "names", names, "positional", rest)
	}
	log.Debug("rebuilt statement", "dialect", p.dialect.String(), "statements", len(out))
	return out, nil
}

// Rebuild rewrites statement with values using default settings for d.
func Rebuild(statement string, values Values, d Dialect) ([]Query, error) {
	p, ok := parsers[d]
	if !ok {
		p = NewParser(d)
	}
	return p.Rebuild(NewQuery(statement, values))
}

var parsers = map[Dialect]*Parser{
	Postgres:  NewParser(Postgres),
	MySQL:     NewParser(MySQL),
	SQLite:    NewParser(SQLite),
	SQLServer: NewParser(SQLServer),
	NoOp:      NewParser(NoOp),
}
