package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gandaldf/sqlrebuild"
	"github.com/gandaldf/sqlrebuild/internal/cli/config"
)

// StatementOutput is the JSON/YAML form of one rebuilt statement.
type StatementOutput struct {
	Statement    string       `json:"statement" yaml:"statement"`
	Values       []BoundValue `json:"values,omitempty" yaml:"values,omitempty"`
	RowsAffected *int64       `json:"rows_affected,omitempty" yaml:"rows_affected,omitempty"`
}

// BoundValue is one named value of a statement, in placeholder order.
type BoundValue struct {
	Name  string `json:"name" yaml:"name"`
	Value any    `json:"value" yaml:"value"`
}

func toOutput(qs []sqlrebuild.Query, withValues bool) []StatementOutput {
	out := make([]StatementOutput, len(qs))
	for i, q := range qs {
		out[i].Statement = strings.TrimSpace(q.Statement())
		if !withValues {
			continue
		}
		for _, n := range q.Values().Names() {
			v, _ := q.Values().Lookup(n)
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			out[i].Values = append(out[i].Values, BoundValue{Name: n, Value: v})
		}
	}
	return out
}

// render writes statements in the configured output format.
func render(w io.Writer, format string, stmts []StatementOutput) error {
	switch strings.ToLower(format) {
	case config.OutputJSON:
		if stmts == nil {
			stmts = []StatementOutput{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(stmts)
	case config.OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(stmts); err != nil {
			return err
		}
		return enc.Close()
	default:
		return renderText(w, stmts)
	}
}

// renderText prints each statement terminated by a semicolon, followed by
// its values as SQL comments.
func renderText(w io.Writer, stmts []StatementOutput) error {
	for i, s := range stmts {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s%s\n", s.Statement, terminator(s.Statement)); err != nil {
			return err
		}
		for _, v := range s.Values {
			if _, err := fmt.Fprintf(w, "-- %s = %s\n", v.Name, formatValue(v.Value)); err != nil {
				return err
			}
		}
		if s.RowsAffected != nil {
			if _, err := fmt.Fprintf(w, "-- rows affected: %d\n", *s.RowsAffected); err != nil {
				return err
			}
		}
	}
	return nil
}

// terminator returns the separator to print after stmt. When the last line
// may end in a line comment the semicolon goes on its own line.
func terminator(stmt string) string {
	last := stmt[strings.LastIndexByte(stmt, '\n')+1:]
	if strings.Contains(last, "--") || strings.Contains(last, "#") {
		return "\n;"
	}
	return ";"
}

func formatValue(v any) string {
	switch tv := v.(type) {
	case nil:
		return "NULL"
	case string:
		return strconv.Quote(tv)
	default:
		return fmt.Sprint(tv)
	}
}
