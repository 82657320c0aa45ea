package sqlrebuild

import (
	"bytes"
	"errors"
	"math/rand"
	"strings"
	"testing"
)

// --------------------------------
// Tests: placeholder rewriting
// --------------------------------

// TestRebuild_ExpandsSequencesAndScalars expands a list into one reference
// per element and binds scalars once.
func TestRebuild_ExpandsSequencesAndScalars(t *testing.T) {
	for _, dc := range allDialects() {
		t.Run(dc.name, func(t *testing.T) {
			q := mustRebuildOne(t, dc.d,
				"SELECT * FROM t WHERE id IN (:list) OR id = :id",
				NewValues(P{"list": []int{1, 2, 3}, "id": 5}))
			assertStatement(t, q, "SELECT * FROM t WHERE id IN (:list_0, :list_1, :list_2) OR id = :id_0")
			assertBound(t, q, "list_0", 1, "list_1", 2, "list_2", 3, "id_0", 5)
			if got := q.Values().Positional(); len(got) != 0 {
				t.Fatalf("positional=%v, want none", got)
			}
		})
	}
}

// TestRebuild_RepeatedPlaceholder binds each occurrence under its own name.
func TestRebuild_RepeatedPlaceholder(t *testing.T) {
	q := mustRebuildOne(t, MySQL, "SELECT :a, :a, :b", NewValues(P{"a": "x", "b": "y"}))
	assertStatement(t, q, "SELECT :a_0, :a_1, :b_0")
	assertBound(t, q, "a_0", "x", "a_1", "x", "b_0", "y")
}

// TestRebuild_NumberedPlaceholders consumes positional values left to right.
func TestRebuild_NumberedPlaceholders(t *testing.T) {
	for _, dc := range allDialects() {
		t.Run(dc.name, func(t *testing.T) {
			q := mustRebuildOne(t, dc.d, "SELECT * FROM t WHERE id IN (?)", Positional([]int{1, 2, 3}))
			assertStatement(t, q, "SELECT * FROM t WHERE id IN (:__numbered_0, :__numbered_1, :__numbered_2)")
			assertBound(t, q, "__numbered_0", 1, "__numbered_1", 2, "__numbered_2", 3)
		})
	}
}

// TestRebuild_MixedNamedAndNumbered keeps the placeholder order in the
// bound values.
func TestRebuild_MixedNamedAndNumbered(t *testing.T) {
	q := mustRebuildOne(t, SQLite, "UPDATE t SET a = ?, b = :b WHERE id = ?",
		NewValues(P{"b": true}, "A", 7))
	assertStatement(t, q, "UPDATE t SET a = :__numbered_0, b = :b_0 WHERE id = :__numbered_1")
	assertBound(t, q, "__numbered_0", "A", "b_0", true, "__numbered_1", 7)
}

// TestRebuild_ScalarWrapperAndBytes binds lists as a single value when
// asked to, and never expands byte slices.
func TestRebuild_ScalarWrapperAndBytes(t *testing.T) {
	type blob []byte
	q := mustRebuildOne(t, Postgres, "SELECT * FROM t WHERE id = ANY(:ids) AND h = :h AND k = :k",
		NewValues(P{"ids": Scalar([]int{1, 2}), "h": []byte("xy"), "k": blob("z")}))
	assertStatement(t, q, "SELECT * FROM t WHERE id = ANY(:ids_0) AND h = :h_0 AND k = :k_0")
	ids, _ := q.Values().Lookup("ids_0")
	if got, ok := ids.([]int); !ok || len(got) != 2 {
		t.Fatalf("ids_0=%#v, want []int{1, 2}", ids)
	}
	assertBound(t, q, "ids_0", []int{1, 2}, "h_0", []byte("xy"), "k_0", []byte("z"))
}

// TestRebuild_NilAndArrayValues covers nil scalars and fixed-size arrays.
func TestRebuild_NilAndArrayValues(t *testing.T) {
	q := mustRebuildOne(t, MySQL, "SELECT :n, :arr", NewValues(P{"n": nil, "arr": [2]string{"a", "b"}}))
	assertStatement(t, q, "SELECT :n_0, :arr_0, :arr_1")
	assertBound(t, q, "n_0", nil, "arr_0", "a", "arr_1", "b")
}

// TestRebuild_NoPlaceholders returns the statement unchanged with no values.
func TestRebuild_NoPlaceholders(t *testing.T) {
	for _, dc := range allDialects() {
		t.Run(dc.name, func(t *testing.T) {
			in := "SELECT a, b FROM t WHERE c = 1 ORDER BY a"
			q := mustRebuildOne(t, dc.d, in, NewValues(P{"unused": 1}))
			assertStatement(t, q, in)
			if !q.Values().IsEmpty() {
				t.Fatalf("values=%v, want empty", q.Values().Map())
			}
		})
	}
}

// TestRebuild_Cast leaves :: casts alone.
func TestRebuild_Cast(t *testing.T) {
	q := mustRebuildOne(t, Postgres, "SELECT a::int, :x::text", NewValues(P{"x": 1}))
	assertStatement(t, q, "SELECT a::int, :x_0::text")
}

// TestRebuild_ColonWithoutName copies a lone colon.
func TestRebuild_ColonWithoutName(t *testing.T) {
	q := mustRebuildOne(t, MySQL, "SELECT '10' : 1, :9", Values{})
	assertStatement(t, q, "SELECT '10' : 1, :9")
}

// TestRebuild_Styles writes every placeholder style, numbering per statement.
func TestRebuild_Styles(t *testing.T) {
	tests := []struct {
		style Style
		want  []string
	}{
		{Named, []string{"SELECT :a_0, :b_0, :b_1", "SELECT :c_0"}},
		{Question, []string{"SELECT ?, ?, ?", "SELECT ?"}},
		{Dollar, []string{"SELECT $1, $2, $3", "SELECT $1"}},
		{AtP, []string{"SELECT @p1, @p2, @p3", "SELECT @p1"}},
	}
	for _, tt := range tests {
		t.Run(tt.style.String(), func(t *testing.T) {
			qs := mustRebuild(t, Postgres, "SELECT :a, :b; SELECT :c",
				NewValues(P{"a": 1, "b": []int{2, 3}, "c": 4}), Config{Style: tt.style})
			if got := statements(qs); strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
			assertBound(t, qs[0], "a_0", 1, "b_0", 2, "b_1", 3)
			assertBound(t, qs[1], "c_0", 4)
		})
	}
}

// TestRebuild_CustomNumberedTrigger moves positional placeholders off '?'
// so that operators like jsonb ? survive.
func TestRebuild_CustomNumberedTrigger(t *testing.T) {
	q := mustRebuildOne(t, Postgres, "SELECT doc ? 'k' FROM t WHERE id = %",
		Positional(7), Config{NumberedTrigger: '%'})
	assertStatement(t, q, "SELECT doc ? 'k' FROM t WHERE id = :__numbered_0")
	assertBound(t, q, "__numbered_0", 7)
}

// --------------------------------
// Tests: statement splitting
// --------------------------------

// TestRebuild_SplitsStatements splits on unquoted semicolons.
func TestRebuild_SplitsStatements(t *testing.T) {
	for _, dc := range allDialects() {
		t.Run(dc.name, func(t *testing.T) {
			qs := mustRebuild(t, dc.d, "SELECT 1; SELECT 2", Values{})
			want := []string{"SELECT 1", "SELECT 2"}
			if got := statements(qs); strings.Join(got, "|") != strings.Join(want, "|") {
				t.Fatalf("got %q, want %q", got, want)
			}
			for _, q := range qs {
				if !q.Values().IsEmpty() {
					t.Fatalf("statement %q has values %v", q.Statement(), q.Values().Map())
				}
			}
		})
	}
}

// TestRebuild_SplitDropsEmptyStatements ignores runs of separators and
// trailing whitespace.
func TestRebuild_SplitDropsEmptyStatements(t *testing.T) {
	qs := mustRebuild(t, MySQL, "  ;SELECT 1;;  \n SELECT 2;\n\t", Values{})
	want := []string{"SELECT 1", "SELECT 2"}
	if got := statements(qs); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("got %q, want %q", got, want)
	}

	qs = mustRebuild(t, SQLite, " ; ;\n", Values{})
	if len(qs) != 0 {
		t.Fatalf("whitespace-only input produced %q", statements(qs))
	}
}

// TestRebuild_SplitPartitionsValues gives each statement only its own values
// while keeping names unique across the call.
func TestRebuild_SplitPartitionsValues(t *testing.T) {
	qs := mustRebuild(t, Postgres, "INSERT INTO a VALUES (:a); INSERT INTO b VALUES (:b, :a)",
		NewValues(P{"a": 1, "b": 2}))
	if len(qs) != 2 {
		t.Fatalf("got %d statements", len(qs))
	}
	assertStatement(t, qs[0], "INSERT INTO a VALUES (:a_0)")
	assertBound(t, qs[0], "a_0", 1)
	assertStatement(t, qs[1], "INSERT INTO b VALUES (:b_0, :a_1)")
	assertBound(t, qs[1], "b_0", 2, "a_1", 1)
}

// TestRebuild_SplitConsumesPositionalAcrossStatements continues positional
// consumption in the next statement.
func TestRebuild_SplitConsumesPositionalAcrossStatements(t *testing.T) {
	qs := mustRebuild(t, SQLServer, "SELECT ?; SELECT ?, ?", Positional("x", "y", "z"))
	if len(qs) != 2 {
		t.Fatalf("got %d statements", len(qs))
	}
	assertStatement(t, qs[0], "SELECT :__numbered_0")
	assertBound(t, qs[0], "__numbered_0", "x")
	assertStatement(t, qs[1], "SELECT :__numbered_1, :__numbered_2")
	assertBound(t, qs[1], "__numbered_1", "y", "__numbered_2", "z")
}

// TestRebuild_SeparatorInsideLiteral does not split inside quotes or comments.
func TestRebuild_SeparatorInsideLiteral(t *testing.T) {
	for _, dc := range allDialects() {
		t.Run(dc.name, func(t *testing.T) {
			qs := mustRebuild(t, dc.d, "SELECT ';', \"a;b\" /* ; */; SELECT 2", Values{})
			want := []string{"SELECT ';', \"a;b\" /* ; */", "SELECT 2"}
			if got := statements(qs); strings.Join(got, "|") != strings.Join(want, "|") {
				t.Fatalf("got %q, want %q", got, want)
			}
		})
	}
}

// --------------------------------
// Tests: quoting and comments
// --------------------------------

// TestRebuild_QuotedTriggersAreLiteral never rewrites triggers inside literals.
func TestRebuild_QuotedTriggersAreLiteral(t *testing.T) {
	for _, dc := range allDialects() {
		t.Run(dc.name, func(t *testing.T) {
			in := "SELECT 'it''s a test; see?' AS x, \":col\" FROM t -- :c ? ;\n"
			q := mustRebuildOne(t, dc.d, in, Values{})
			assertStatement(t, q, in)
		})
	}
}

// TestRebuild_BlockCommentNesting nests comments only for Postgres.
func TestRebuild_BlockCommentNesting(t *testing.T) {
	in := "SELECT /* a /* b */ :x */ 1"

	q := mustRebuildOne(t, Postgres, in, Values{})
	assertStatement(t, q, in)

	for _, d := range []Dialect{MySQL, SQLite, SQLServer} {
		q = mustRebuildOne(t, d, in, NewValues(P{"x": 1}))
		assertStatement(t, q, "SELECT /* a /* b */ :x_0 */ 1")
	}
}

// TestRebuild_MySQLLineComment requires whitespace after the dashes.
func TestRebuild_MySQLLineComment(t *testing.T) {
	q := mustRebuildOne(t, MySQL, "SELECT 1 -- :x\n, :y", NewValues(P{"y": 2}))
	assertStatement(t, q, "SELECT 1 -- :x\n, :y_0")

	q = mustRebuildOne(t, MySQL, "SELECT 1--:x", NewValues(P{"x": 3}))
	assertStatement(t, q, "SELECT 1--:x_0")

	q = mustRebuildOne(t, Postgres, "SELECT 1--:x", Values{})
	assertStatement(t, q, "SELECT 1--:x")
}

// TestRebuild_MySQLHashComment treats # as a comment only for MySQL.
func TestRebuild_MySQLHashComment(t *testing.T) {
	q := mustRebuildOne(t, MySQL, "SELECT 1 # :x ?\n", Values{})
	assertStatement(t, q, "SELECT 1 # :x ?\n")

	_, err := NewParser(SQLite).Rebuild(NewQuery("SELECT 1 # :x", Values{}))
	assertErrorIs(t, err, ErrParamMissing)
}

// TestRebuild_BackslashEscapes honors backslash escapes only in MySQL strings.
func TestRebuild_BackslashEscapes(t *testing.T) {
	in := `SELECT 'a\' :x', :y`

	q := mustRebuildOne(t, MySQL, in, NewValues(P{"y": 1}))
	assertStatement(t, q, `SELECT 'a\' :x', :y_0`)

	_, err := NewParser(Postgres).Rebuild(NewQuery(in, NewValues(P{"y": 1})))
	assertErrorIs(t, err, ErrParamMissing)
	if !strings.Contains(err.Error(), "x") {
		t.Fatalf("error should name x: %v", err)
	}
}

// TestRebuild_Backticks quotes identifiers with backticks in MySQL and SQLite.
func TestRebuild_Backticks(t *testing.T) {
	in := "SELECT `a:b`, `c``:d` FROM t"
	for _, d := range []Dialect{MySQL, SQLite} {
		q := mustRebuildOne(t, d, in, Values{})
		assertStatement(t, q, in)
	}
	_, err := NewParser(Postgres).Rebuild(NewQuery(in, Values{}))
	assertErrorIs(t, err, ErrParamMissing)
}

// TestRebuild_BracketIdentifiers handles [ident] with ]] escapes.
func TestRebuild_BracketIdentifiers(t *testing.T) {
	in := "SELECT [a:b], [c]]:d] FROM t WHERE x = :x"
	for _, d := range []Dialect{SQLite, SQLServer} {
		q := mustRebuildOne(t, d, in, NewValues(P{"x": 1}))
		assertStatement(t, q, "SELECT [a:b], [c]]:d] FROM t WHERE x = :x_0")
	}
}

// TestRebuild_PostgresArraySlice keeps arr[lo:hi] intact.
func TestRebuild_PostgresArraySlice(t *testing.T) {
	in := "SELECT arr[lo:hi] FROM t"
	q := mustRebuildOne(t, Postgres, in, Values{})
	assertStatement(t, q, in)

	_, err := NewParser(MySQL).Rebuild(NewQuery(in, Values{}))
	assertErrorIs(t, err, ErrParamMissing)
}

// TestRebuild_PostgresEscapeStrings handles E'' literals with backslash
// escapes and whitespace continuation.
func TestRebuild_PostgresEscapeStrings(t *testing.T) {
	tests := []string{
		`SELECT E'it\'s :x'`,
		`SELECT e'\\' || ':x'`,
		"SELECT E'a'\n  'b\\'c:x'",
	}
	for _, in := range tests {
		q := mustRebuildOne(t, Postgres, in, Values{})
		assertStatement(t, q, in)
	}

	// An E ending an identifier does not open an escape string.
	q := mustRebuildOne(t, Postgres, "SELECT typE'x' , :y", NewValues(P{"y": 1}))
	assertStatement(t, q, "SELECT typE'x' , :y_0")
}

// TestRebuild_PostgresEscapeStringAfterUnicodeIdent keeps E' after a
// non-ASCII identifier character a plain quote.
func TestRebuild_PostgresEscapeStringAfterUnicodeIdent(t *testing.T) {
	q := mustRebuildOne(t, Postgres, `SELECT éE'a\', :y`, NewValues(P{"y": 1}))
	assertStatement(t, q, `SELECT éE'a\', :y_0`)

	q = mustRebuildOne(t, Postgres, `SELECT é$x$ :y`, NewValues(P{"y": 1}))
	assertStatement(t, q, `SELECT é$x$ :y_0`)
}

// TestRebuild_PostgresDollarQuotes copies $tag$ bodies verbatim and leaves
// $n parameters alone.
func TestRebuild_PostgresDollarQuotes(t *testing.T) {
	tests := []string{
		"SELECT $$a:b$$",
		"SELECT $fn$ BEGIN RETURN :x; END $fn$",
		"SELECT $a$ $$ :x $$ $a$",
	}
	for _, in := range tests {
		q := mustRebuildOne(t, Postgres, in, Values{})
		assertStatement(t, q, in)
	}

	q := mustRebuildOne(t, Postgres, "SELECT $1, :y", NewValues(P{"y": 1}))
	assertStatement(t, q, "SELECT $1, :y_0")

	// A $ inside an identifier is not a tag.
	q = mustRebuildOne(t, Postgres, "SELECT a$b$ + :y", NewValues(P{"y": 1}))
	assertStatement(t, q, "SELECT a$b$ + :y_0")
}

// TestRebuild_UnterminatedConstructs copies the rest of the input verbatim.
func TestRebuild_UnterminatedConstructs(t *testing.T) {
	tests := []struct {
		d  Dialect
		in string
	}{
		{MySQL, "SELECT 'abc :x"},
		{MySQL, "SELECT /* :x"},
		{Postgres, "SELECT /* /* */ :x"},
		{Postgres, "SELECT $q$ :x"},
		{Postgres, "SELECT E'abc :x"},
		{SQLServer, "SELECT [abc :x"},
		{SQLite, "SELECT \"abc :x"},
	}
	for _, tt := range tests {
		q := mustRebuildOne(t, tt.d, tt.in, Values{})
		assertStatement(t, q, tt.in)
	}
}

// TestRebuild_MultiByteText keeps non-ASCII text intact.
func TestRebuild_MultiByteText(t *testing.T) {
	for _, dc := range allDialects() {
		q := mustRebuildOne(t, dc.d, "SELECT 'héllo', :x AS ünïcode -- ☃\n", NewValues(P{"x": "日本"}))
		assertStatement(t, q, "SELECT 'héllo', :x_0 AS ünïcode -- ☃\n")
		assertBound(t, q, "x_0", "日本")
	}
}

// --------------------------------
// Tests: errors and limits
// --------------------------------

// TestRebuild_MissingValues reports the missing name or position.
func TestRebuild_MissingValues(t *testing.T) {
	_, err := NewParser(MySQL).Rebuild(NewQuery("SELECT :nope", Values{}))
	assertErrorIs(t, err, ErrParamMissing)
	if !strings.Contains(err.Error(), "nope") {
		t.Fatalf("error should name the placeholder: %v", err)
	}

	qs, err := NewParser(MySQL).Rebuild(NewQuery("SELECT ?, ?", Positional(1)))
	assertErrorIs(t, err, ErrParamMissing)
	if !strings.Contains(err.Error(), "positional #2") {
		t.Fatalf("error should name the position: %v", err)
	}
	if qs != nil {
		t.Fatalf("statements returned on error: %v", statements(qs))
	}
}

// TestRebuild_EmptySequence fails instead of emitting an empty list.
func TestRebuild_EmptySequence(t *testing.T) {
	_, err := NewParser(Postgres).Rebuild(NewQuery("SELECT * FROM t WHERE id IN (:ids)", NewValues(P{"ids": []int{}})))
	assertErrorIs(t, err, ErrSliceEmpty)

	_, err = NewParser(Postgres).Rebuild(NewQuery("SELECT * FROM t WHERE id IN (?)", Positional([]string{})))
	assertErrorIs(t, err, ErrSliceEmpty)
}

// TestRebuild_MaxParams limits the references of a single statement.
func TestRebuild_MaxParams(t *testing.T) {
	cfg := Config{MaxParams: 2}
	_, err := NewParser(SQLite, cfg).Rebuild(NewQuery("SELECT :ids", NewValues(P{"ids": []int{1, 2, 3}})))
	assertErrorIs(t, err, ErrTooManyParams)

	// The limit applies per statement.
	qs := mustRebuild(t, SQLite, "SELECT :a, :a; SELECT :a, :a", NewValues(P{"a": 1}), cfg)
	if len(qs) != 2 {
		t.Fatalf("got %d statements", len(qs))
	}

	// Negative means unlimited.
	q := mustRebuildOne(t, SQLite, "SELECT :ids", NewValues(P{"ids": make([]int, 1200)}), Config{MaxParams: -1})
	if n := q.Values().Len(); n != 1200 {
		t.Fatalf("bound %d values, want 1200", n)
	}
}

// TestRebuild_SQLServerDefaultLimit applies the 2100 parameter default.
func TestRebuild_SQLServerDefaultLimit(t *testing.T) {
	_, err := Rebuild("SELECT :ids", NewValues(P{"ids": make([]int, 2101)}), SQLServer)
	assertErrorIs(t, err, ErrTooManyParams)
}

// TestRebuild_MaxNameLen rejects over-long placeholder names.
func TestRebuild_MaxNameLen(t *testing.T) {
	_, err := NewParser(MySQL, Config{MaxNameLen: 3}).Rebuild(NewQuery("SELECT :abcd", NewValues(P{"abcd": 1})))
	assertErrorIs(t, err, ErrParamNameTooLong)
}

// TestRebuild_UnknownDialect fails for dialects without rules.
func TestRebuild_UnknownDialect(t *testing.T) {
	_, err := Rebuild("SELECT 1", Values{}, Dialect(42))
	assertErrorIs(t, err, ErrUnknownDialect)

	_, err = NewParser(Dialect(42)).Rebuild(NewQuery("SELECT 1", Values{}))
	assertErrorIs(t, err, ErrUnknownDialect)

	_, err = New(Dialect(42)).Write("SELECT 1").Build()
	assertErrorIs(t, err, ErrUnknownDialect)
}

// TestRebuild_NoOpPassThrough returns the input unchanged.
func TestRebuild_NoOpPassThrough(t *testing.T) {
	values := NewValues(P{"x": 1}, 2)
	qs, err := Rebuild("SELECT :x; SELECT ?", values, NoOp)
	assertNoError(t, err)
	if len(qs) != 1 {
		t.Fatalf("got %d statements", len(qs))
	}
	assertStatement(t, qs[0], "SELECT :x; SELECT ?")
	if got := qs[0].Values(); got.Len() != 2 || got.Positional()[0] != 2 {
		t.Fatalf("values not passed through: %+v", got)
	}
}

// stuckLexer never moves the cursor.
type stuckLexer struct{}

func (stuckLexer) scan(*state) error { return nil }

// TestRebuild_NoProgressFault turns a stalled lexer into an error instead of
// looping forever.
func TestRebuild_NoProgressFault(t *testing.T) {
	p := &Parser{dialect: MySQL, config: defaultConfig(MySQL), lexer: stuckLexer{}}
	qs, err := p.Rebuild(NewQuery("SELECT 1", Values{}))
	assertErrorIs(t, err, ErrNoProgress)
	if qs != nil {
		t.Fatalf("statements returned on error: %v", statements(qs))
	}
}

// TestRebuild_RandomInputAlwaysProgresses feeds trigger-heavy noise to every
// dialect and checks that scanning always terminates.
func TestRebuild_RandomInputAlwaysProgresses(t *testing.T) {
	const alphabet = "'\"`[]-/*#$Ee:;?\\ \nab1é"
	rng := rand.New(rand.NewSource(1))
	values := NewValues(P{"a": 1, "b": []int{1, 2}, "ab": "x"}, 1, 2, 3, 4, 5, 6, 7, 8)

	for _, dc := range allDialects() {
		p := NewParser(dc.d, Config{MaxParams: -1})
		for i := 0; i < 500; i++ {
			var sb strings.Builder
			for n := rng.Intn(40); n > 0; n-- {
				sb.WriteString(string([]rune(alphabet)[rng.Intn(len([]rune(alphabet)))]))
			}
			_, err := p.Rebuild(NewQuery(sb.String(), values))
			if errors.Is(err, ErrNoProgress) {
				t.Fatalf("%s: no progress on %q: %v", dc.name, sb.String(), err)
			}
		}
	}
}

// TestRebuild_LogsUnusedValues reports values no placeholder referenced.
func TestRebuild_LogsUnusedValues(t *testing.T) {
	var buf bytes.Buffer
	p := NewParser(MySQL, Config{Logger: bufferLogger(&buf)})
	_, err := p.Rebuild(NewQuery("SELECT :a", NewValues(P{"a": 1, "extra": 2}, 3)))
	assertNoError(t, err)
	out := buf.String()
	if !strings.Contains(out, "unused values") || !strings.Contains(out, "extra") {
		t.Fatalf("missing unused-values record:\n%s", out)
	}
	if !strings.Contains(out, "statements=1") {
		t.Fatalf("missing statement count:\n%s", out)
	}
}

// TestRebuild_ConcurrentUse shares one parser between goroutines.
func TestRebuild_ConcurrentUse(t *testing.T) {
	p := NewParser(Postgres)
	errs := make(chan error, 16)
	for i := 0; i < cap(errs); i++ {
		go func(i int) {
			qs, err := p.Rebuild(NewQuery("SELECT :ids; SELECT ?", NewValues(P{"ids": []int{i, i + 1}}, i)))
			if err == nil && (len(qs) != 2 || qs[0].Statement() != "SELECT :ids_0, :ids_1") {
				err = errors.New("unexpected output: " + strings.Join(statements(qs), "|"))
			}
			errs <- err
		}(i)
	}
	for i := 0; i < cap(errs); i++ {
		assertNoError(t, <-errs)
	}
}
