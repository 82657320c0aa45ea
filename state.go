package sqlrebuild

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// state is the scan cursor of a single rebuild call. It owns the input, the
// output of the statement being assembled, and the bookkeeping needed to
// give every bound value a unique name.
//
// Every primitive except current, peek, done and capture moves pos forward.
type state struct {
	input string
	pos   int
	out   strings.Builder

	values Values // original bag
	cfg    Config

	// Current statement.
	names []string
	bound map[string]any

	// Whole call.
	counter      map[string]int
	used         map[string]struct{}
	consumed     int // positional values handed out so far
	newStatement bool
}

func newState(q Query, cfg Config) *state {
	s := &state{
		input:   q.statement,
		values:  q.values,
		cfg:     cfg,
		bound:   make(map[string]any),
		counter: make(map[string]int),
		used:    make(map[string]struct{}),
	}
	s.out.Grow(len(q.statement) + 16)
	return s
}

func (s *state) done() bool {
	return s.pos >= len(s.input)
}

// current returns the byte under the cursor, 0 at end of input.
func (s *state) current() byte {
	if s.done() {
		return 0
	}
	return s.input[s.pos]
}

// peek returns up to n bytes starting at the cursor.
func (s *state) peek(n int) string {
	end := s.pos + n
	if end > len(s.input) {
		end = len(s.input)
	}
	return s.input[s.pos:end]
}

// prevIsIdent reports whether the code point before the cursor belongs to
// an identifier.
func (s *state) prevIsIdent() bool {
	if s.pos == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s.input[:s.pos])
	return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// copyCurrent copies the code point under the cursor and moves past it.
func (s *state) copyCurrent() {
	if s.done() {
		return
	}
	if c := s.input[s.pos]; c < utf8.RuneSelf {
		s.out.WriteByte(c)
		s.pos++
		return
	}
	_, size := utf8.DecodeRuneInString(s.input[s.pos:])
	s.out.WriteString(s.input[s.pos : s.pos+size])
	s.pos += size
}

// copyUntil copies everything through the next occurrence of target.
// Without a match the rest of the input is copied.
func (s *state) copyUntil(target string) {
	i := strings.Index(s.input[s.pos:], target)
	if i < 0 {
		s.out.WriteString(s.input[s.pos:])
		s.pos = len(s.input)
		return
	}
	end := s.pos + i + len(target)
	s.out.WriteString(s.input[s.pos:end])
	s.pos = end
}

// take copies lit, which must be at the cursor.
func (s *state) take(lit string) {
	s.write(lit)
	s.pass(lit)
}

// pass skips lit without copying it. It does nothing if lit is not at the
// cursor.
func (s *state) pass(lit string) {
	if strings.HasPrefix(s.input[s.pos:], lit) {
		s.pos += len(lit)
	}
}

// capture returns the match of re at the cursor. re must be anchored with ^.
func (s *state) capture(re *regexp.Regexp) string {
	loc := re.FindStringIndex(s.input[s.pos:])
	if loc == nil || loc[0] != 0 {
		return ""
	}
	return s.input[s.pos : s.pos+loc[1]]
}

// write appends literal text to the output.
func (s *state) write(text string) {
	s.out.WriteString(text)
}

// bind stores value under a fresh name derived from name and returns it.
// Names are unique within the whole call: name_0, name_1, ...
func (s *state) bind(name string, value any) (string, error) {
	if s.cfg.MaxParams > 0 && len(s.names)+1 > s.cfg.MaxParams {
		return "", fmt.Errorf("%w: requested=%d, limit=%d", ErrTooManyParams, len(s.names)+1, s.cfg.MaxParams)
	}
	n := s.counter[name]
	s.counter[name] = n + 1
	key := name + "_" + strconv.Itoa(n)
	s.names = append(s.names, key)
	s.bound[key] = value
	return key, nil
}

// emit binds value for the placeholder named name and writes the resulting
// reference(s). A sequence expands to one reference per element.
func (s *state) emit(name string, value any) error {
	items, isSeq := sequence(value)
	if isSeq && len(items) == 0 {
		return fmt.Errorf("%w: %s", ErrSliceEmpty, name)
	}
	for i, item := range items {
		if i > 0 {
			s.out.WriteString(", ")
		}
		key, err := s.bind(name, item)
		if err != nil {
			return err
		}
		writePlaceholder(&s.out, s.cfg.Style, key, len(s.names))
	}
	return nil
}

// nextPositional returns the first positional value not handed out yet.
func (s *state) nextPositional() (any, bool) {
	pos := s.values.positional
	if s.consumed >= len(pos) {
		return nil, false
	}
	v := pos[s.consumed]
	s.consumed++
	return v, true
}

// flush finalizes the statement assembled so far and starts a new one.
// Whitespace-only statements are dropped.
func (s *state) flush() (Query, bool) {
	stmt := s.out.String()
	q := Query{
		statement: stmt,
		values:    Values{names: s.names, named: s.bound},
	}
	s.out.Reset()
	s.names = nil
	s.bound = make(map[string]any)
	s.newStatement = false
	if strings.TrimSpace(stmt) == "" {
		return Query{}, false
	}
	return q, true
}

// unused returns the original names and the number of positional values
// that no placeholder referenced.
func (s *state) unused() ([]string, int) {
	var names []string
	for _, n := range s.values.names {
		if _, ok := s.used[n]; !ok {
			names = append(names, n)
		}
	}
	return names, len(s.values.positional) - s.consumed
}

// isAlphaUnderscore reports whether b is [A-Za-z_] .
func isAlphaUnderscore(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || b == '_'
}

// isAlphaNumUnderscore reports whether b is [A-Za-z0-9_] .
func isAlphaNumUnderscore(b byte) bool {
	return isAlphaUnderscore(b) || (b >= '0' && b <= '9')
}

// isSpace reports whether b is ASCII whitespace or a control character.
func isSpace(b byte) bool {
	return b <= ' '
}
