package sqlrebuild

import (
	"fmt"
	"strconv"
	"strings"
)

// Rebuilder is one step of a rebuild pipeline.
type Rebuilder interface {
	Rebuild(q Query) (Query, error)
}

// NullRebuilder returns its input unchanged.
type NullRebuilder struct{}

// Rebuild implements Rebuilder.
func (NullRebuilder) Rebuild(q Query) (Query, error) { return q, nil }

// ArrayRebuilder expands sequence-valued named entries by plain substring
// replacement of "(:name)" with "(:name_0, :name_1, ...)". It does not look
// at quotes or comments, so use it only when the placeholder is known to
// sit outside any literal. Entries without a "(:name)" occurrence are left
// in the bag for a later step.
type ArrayRebuilder struct{}

// Rebuild implements Rebuilder.
func (ArrayRebuilder) Rebuild(q Query) (Query, error) {
	stmt := q.statement
	values := q.values
	for _, name := range q.values.names {
		items, isSeq := sequence(q.values.named[name])
		if !isSeq {
			continue
		}
		target := "(:" + name + ")"
		if !strings.Contains(stmt, target) {
			continue
		}
		if len(items) == 0 {
			return Query{}, fmt.Errorf("%w: %s", ErrSliceEmpty, name)
		}

		values = values.Without(name)
		refs := make([]string, len(items))
		next := 0
		for i, item := range items {
			var key string
			for {
				key = name + "_" + strconv.Itoa(next)
				next++
				if _, taken := values.named[key]; !taken {
					break
				}
			}
			values = values.With(key, item)
			refs[i] = ":" + key
		}
		stmt = strings.ReplaceAll(stmt, target, "("+strings.Join(refs, ", ")+")")
	}
	return NewQuery(stmt, values), nil
}

// NumberedRebuilder hands statements with numbered placeholders to the
// full scanner and returns the others untouched.
//
// It expects a single statement. When the scanner splits the input, only
// the first statement is returned and a warning is logged. A nil Parser
// uses the default MySQL rules.
type NumberedRebuilder struct {
	Parser *Parser
}

// Rebuild implements Rebuilder.
func (r NumberedRebuilder) Rebuild(q Query) (Query, error) {
	p := r.Parser
	if p == nil {
		p = parsers[MySQL]
	}
	if strings.IndexByte(q.statement, p.config.NumberedTrigger) < 0 {
		return q, nil
	}
	out, err := p.Rebuild(q)
	if err != nil {
		return Query{}, err
	}
	switch len(out) {
	case 0:
		return NewQuery("", Values{}), nil
	case 1:
	default:
		p.config.Logger.Warn("numbered rebuild produced several statements; keeping the first",
			"dialect", p.dialect.String(), "statements", len(out))
	}
	return out[0], nil
}

// CompositeRebuilder applies its steps in order, each one receiving the
// previous step's output.
type CompositeRebuilder []Rebuilder

// Rebuild implements Rebuilder.
func (c CompositeRebuilder) Rebuild(q Query) (Query, error) {
	for _, r := range c {
		var err error
		if q, err = r.Rebuild(q); err != nil {
			return Query{}, err
		}
	}
	return q, nil
}
