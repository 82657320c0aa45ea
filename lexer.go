package sqlrebuild

import (
	"fmt"
	"regexp"
)

// lexer is one dialect's rule set. scan handles the construct starting at
// the cursor and must leave the cursor further than it found it.
// Implementations are stateless and shared by all calls.
type lexer interface {
	scan(s *state) error
}

var (
	namedRe        = regexp.MustCompile(`^:[A-Za-z_][A-Za-z0-9_]*`)
	dollarTagRe    = regexp.MustCompile(`^\$(?:[A-Za-z_][A-Za-z0-9_]*)?\$`)
	separatorRe    = regexp.MustCompile(`^;[\s;]*`)
	continuationRe = regexp.MustCompile(`^\s+'`)
)

type mysqlLexer struct{}

func (mysqlLexer) scan(s *state) error {
	c := s.current()
	if c == s.cfg.NumberedTrigger {
		return numberedPlaceholder(s)
	}
	switch c {
	case '-':
		lineComment(s, true)
	case '#':
		s.copyUntil("\n")
	case '/':
		blockComment(s, false)
	case '\'', '"':
		quoted(s, true)
	case '`':
		quoted(s, false)
	case ':':
		return namedPlaceholder(s)
	case ';':
		separator(s)
	default:
		s.copyCurrent()
	}
	return nil
}

type postgresLexer struct{}

func (postgresLexer) scan(s *state) error {
	c := s.current()
	if c == s.cfg.NumberedTrigger {
		return numberedPlaceholder(s)
	}
	switch c {
	case '-':
		lineComment(s, false)
	case '/':
		blockComment(s, true)
	case '\'', '"':
		quoted(s, false)
	case 'E', 'e':
		escapeString(s)
	case '$':
		dollarQuoted(s)
	case '[':
		s.take("[")
		s.copyUntil("]")
	case ':':
		return namedPlaceholder(s)
	case ';':
		separator(s)
	default:
		s.copyCurrent()
	}
	return nil
}

type sqliteLexer struct{}

func (sqliteLexer) scan(s *state) error {
	c := s.current()
	if c == s.cfg.NumberedTrigger {
		return numberedPlaceholder(s)
	}
	switch c {
	case '-':
		lineComment(s, false)
	case '/':
		blockComment(s, false)
	case '\'', '"', '`':
		quoted(s, false)
	case '[':
		bracketIdentifier(s)
	case ':':
		return namedPlaceholder(s)
	case ';':
		separator(s)
	default:
		s.copyCurrent()
	}
	return nil
}

type sqlserverLexer struct{}

func (sqlserverLexer) scan(s *state) error {
	c := s.current()
	if c == s.cfg.NumberedTrigger {
		return numberedPlaceholder(s)
	}
	switch c {
	case '-':
		lineComment(s, false)
	case '/':
		blockComment(s, false)
	case '\'', '"':
		quoted(s, false)
	case '[':
		bracketIdentifier(s)
	case ':':
		return namedPlaceholder(s)
	case ';':
		separator(s)
	default:
		s.copyCurrent()
	}
	return nil
}

// lineComment copies a -- comment through the end of the line. MySQL wants
// whitespace after the dashes; without it "--" is two minus signs.
func lineComment(s *state, requireSpace bool) {
	p := s.peek(3)
	if len(p) < 2 || p[:2] != "--" || (requireSpace && len(p) == 3 && !isSpace(p[2])) {
		s.copyCurrent()
		return
	}
	s.copyUntil("\n")
}

// blockComment copies a /* */ comment. Postgres comments nest and only
// close on the */ that brings the depth back to zero.
func blockComment(s *state, nested bool) {
	if s.peek(2) != "/*" {
		s.copyCurrent()
		return
	}
	s.take("/*")
	if !nested {
		s.copyUntil("*/")
		return
	}
	for depth := 1; depth > 0 && !s.done(); {
		switch s.peek(2) {
		case "/*":
			depth++
			s.take("/*")
		case "*/":
			depth--
			s.take("*/")
		default:
			s.copyCurrent()
		}
	}
}

// quoted copies a literal delimited by the character under the cursor.
// A doubled delimiter is a literal delimiter; with backslash set, a
// backslash escapes the next character.
func quoted(s *state, backslash bool) {
	q := s.current()
	s.copyCurrent()
	for !s.done() {
		c := s.current()
		switch {
		case backslash && c == '\\':
			s.copyCurrent()
			s.copyCurrent()
		case c == q:
			s.copyCurrent()
			if s.current() != q {
				return
			}
			s.copyCurrent()
		default:
			s.copyCurrent()
		}
	}
}

// bracketIdentifier copies a [quoted identifier], where ]] stands for ].
func bracketIdentifier(s *state) {
	s.copyCurrent()
	for !s.done() {
		c := s.current()
		s.copyCurrent()
		if c == ']' {
			if s.current() != ']' {
				return
			}
			s.copyCurrent()
		}
	}
}

// escapeString copies a Postgres E'...' literal. The E must start a token.
// Runs separated only by whitespace continue the same literal.
func escapeString(s *state) {
	if p := s.peek(2); (p != "E'" && p != "e'") || s.prevIsIdent() {
		s.copyCurrent()
		return
	}
	s.copyCurrent()
	s.copyCurrent()
	for !s.done() {
		switch s.current() {
		case '\\':
			s.copyCurrent()
			s.copyCurrent()
		case '\'':
			s.copyCurrent()
			if s.current() == '\'' {
				s.copyCurrent()
				continue
			}
			if cont := s.capture(continuationRe); cont != "" {
				s.take(cont)
				continue
			}
			return
		default:
			s.copyCurrent()
		}
	}
}

// dollarQuoted copies a $tag$ ... $tag$ body verbatim. $1 is a parameter,
// not a tag, so tags cannot start with a digit.
func dollarQuoted(s *state) {
	tag := ""
	if !s.prevIsIdent() {
		tag = s.capture(dollarTagRe)
	}
	if tag == "" {
		s.copyCurrent()
		return
	}
	s.take(tag)
	s.copyUntil(tag)
}

// namedPlaceholder replaces :name with the synthesized reference(s) for
// its value. :: is a cast and is copied as is.
func namedPlaceholder(s *state) error {
	if s.peek(2) == "::" {
		s.take("::")
		return nil
	}
	m := s.capture(namedRe)
	if m == "" {
		s.copyCurrent()
		return nil
	}
	name := m[1:]

	// Check name length
	if s.cfg.MaxNameLen > 0 && len(name) > s.cfg.MaxNameLen {
		return fmt.Errorf("%w: %q (%d > %d)", ErrParamNameTooLong, name, len(name), s.cfg.MaxNameLen)
	}

	v, ok := s.values.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrParamMissing, name)
	}
	if a, isAmbiguous := v.(ambiguousSentinel); isAmbiguous {
		return fmt.Errorf("%w: %q", ErrFieldAmbiguous, a.name)
	}

	s.pass(m)
	s.used[name] = struct{}{}
	return s.emit(name, v)
}

// numberedPlaceholder replaces the numbered trigger with the reference(s)
// for the next positional value.
func numberedPlaceholder(s *state) error {
	v, ok := s.nextPositional()
	if !ok {
		return fmt.Errorf("%w: positional #%d", ErrParamMissing, s.consumed+1)
	}
	s.pass(s.peek(1))
	return s.emit(numberedPrefix, v)
}

// separator consumes a ; with the whitespace and semicolons after it and
// marks the end of the statement.
func separator(s *state) {
	s.pass(s.capture(separatorRe))
	s.newStatement = true
}
