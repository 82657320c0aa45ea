package sqlrebuild

import (
	"fmt"
	"strconv"
	"strings"
)

// Style selects how a bound placeholder is written to the output statement.
type Style int

const (
	// Named writes :name, keeping the synthesized name in the text.
	Named Style = iota
	// Question writes ? (MySQL, SQLite).
	Question
	// Dollar writes $1, $2, ... (Postgres).
	Dollar
	// AtP writes @p1, @p2, ... (SQL Server).
	AtP
)

// String returns the string representation of the style.
func (s Style) String() string {
	switch s {
	case Named:
		return "named"
	case Question:
		return "question"
	case Dollar:
		return "dollar"
	case AtP:
		return "atp"
	default:
		return "unknown"
	}
}

// ParseStyle resolves a style from its name or its placeholder form.
func ParseStyle(name string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "named", "colon", ":name":
		return Named, nil
	case "question", "?":
		return Question, nil
	case "dollar", "$n", "$1":
		return Dollar, nil
	case "atp", "at", "@p", "@pn", "@p1":
		return AtP, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStyle, name)
	}
}

// writePlaceholder emits a placeholder token for the bound name, which is
// the idx-th (1-based) value of its statement.
func writePlaceholder(b *strings.Builder, st Style, name string, idx int) {
	var tmp [20]byte
	switch st {
	case Question:
		b.WriteByte('?')
	case Dollar:
		b.WriteByte('$')
		b.Write(strconv.AppendInt(tmp[:0], int64(idx), 10))
	case AtP:
		b.WriteString("@p")
		b.Write(strconv.AppendInt(tmp[:0], int64(idx), 10))
	default: // Named
		b.WriteByte(':')
		b.WriteString(name)
	}
}
