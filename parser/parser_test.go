package parser

import (
	"testing"
)

func TestParseSelectFromWhereOrderBy(t *testing.T) {
	q, err := Parse(`SELECT file.name, tags FROM FRONTMATTER_DATA("notes/") WHERE "example" IN tags ORDER BY file.name`)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := q.Select, []string{"file.name", "tags"}; !stringsEqual(got, want) {
		t.Fatalf("select = %v, want %v", got, want)
	}
	if q.From == nil || q.From.Name != "FRONTMATTER_DATA" {
		t.Fatalf("from = %#v", q.From)
	}
	if len(q.From.Args) != 1 {
		t.Fatalf("expected 1 arg, got %d", len(q.From.Args))
	}
	if len(q.Where) != 3 {
		t.Fatalf("expected 3 where tokens, got %d: %#v", len(q.Where), q.Where)
	}
	if len(q.OrderBy) != 1 || q.OrderBy[0].Field != "file.name" || q.OrderBy[0].Desc {
		t.Fatalf("order by = %#v", q.OrderBy)
	}
}

func TestParseWhereOnly(t *testing.T) {
	q, err := Parse(`WHERE a == 1`)
	if err != nil {
		t.Fatal(err)
	}
	if q.From != nil {
		t.Fatalf("expected no FROM, got %#v", q.From)
	}
	if len(q.Where) != 3 {
		t.Fatalf("got %#v", q.Where)
	}
}

func TestOperatorPrecedenceTokenStream(t *testing.T) {
	// field1 == 4 OR field2 == 1 AND (field3 == 2 OR field4 == 3)
	q, err := Parse(`WHERE field1 == 4 OR field2 == 1 AND (field3 == 2 OR field4 == 3)`)
	if err != nil {
		t.Fatal(err)
	}
	// Parser preserves infix order untouched; just check token count and
	// that brackets round-trip.
	opens, closes := 0, 0
	for _, tok := range q.Where {
		switch tok.Kind {
		case TokOpenParen:
			opens++
		case TokCloseParen:
			closes++
		}
	}
	if opens != 1 || closes != 1 {
		t.Fatalf("bracket mismatch: opens=%d closes=%d", opens, closes)
	}
}

func TestParseOrderByMultipleDirections(t *testing.T) {
	q, err := Parse(`ORDER BY a DESC, b ASC`)
	if err != nil {
		t.Fatal(err)
	}
	if len(q.OrderBy) != 2 {
		t.Fatalf("got %#v", q.OrderBy)
	}
	if !q.OrderBy[0].Desc || q.OrderBy[1].Desc {
		t.Fatalf("got %#v", q.OrderBy)
	}
}

func TestParseLikeAndNotLike(t *testing.T) {
	q, err := Parse(`WHERE field2 LIKE "val.*"`)
	if err != nil {
		t.Fatal(err)
	}
	if q.Where[1].Op != OpLike {
		t.Fatalf("got %#v", q.Where[1])
	}

	q, err = Parse(`WHERE field2 NOT LIKE "val.*"`)
	if err != nil {
		t.Fatal(err)
	}
	if q.Where[1].Op != OpNotLike {
		t.Fatalf("got %#v", q.Where[1])
	}
}

func TestParseBooleanLiteralsNotFieldRefs(t *testing.T) {
	q, err := Parse(`WHERE a == true`)
	if err != nil {
		t.Fatal(err)
	}
	last := q.Where[len(q.Where)-1]
	if last.Kind != TokLiteral {
		t.Fatalf("expected true to parse as a literal, got %#v", last)
	}
	b, ok := last.Literal.AsBool()
	if !ok || !b {
		t.Fatalf("got %#v", last.Literal)
	}
}

func TestParseIdentifierThatLooksLikeBooleanPrefix(t *testing.T) {
	// "truest" must parse as a field name, not "true" + "st".
	q, err := Parse(`WHERE truest == 1`)
	if err != nil {
		t.Fatal(err)
	}
	first := q.Where[0]
	if first.Kind != TokFieldRef || first.FieldRef != "truest" {
		t.Fatalf("got %#v", first)
	}
}

func TestAlphabeticOperatorsRequireTrailingWhitespace(t *testing.T) {
	// After an alphabetic operator or keyword a whitespace character
	// is mandatory, not merely "not an identifier character" — so "(" right
	// after the keyword/operator must not be swallowed as a match. Each of
	// these leaves trailing input the top-level grammar can't absorb, so
	// Parse must report it rather than silently treating "WHERE(", "AND(",
	// "IN(" as the keyword/operator followed by a parenthesized operand.
	for _, q := range []string{
		`WHERE(field1 == 1)`,
		`WHERE field1 AND(field2 == 1)`,
		`WHERE field1 IN(1, 2)`,
	} {
		if _, err := Parse(q); err == nil {
			t.Fatalf("expected %q to fail to parse, it succeeded", q)
		}
	}
}

func TestBooleanLiteralBeforeCloseParen(t *testing.T) {
	// Booleans are matched whenever the next character cannot continue an
	// identifier, so ")" right after "true" still yields a literal.
	q, err := Parse(`WHERE (a == true)`)
	if err != nil {
		t.Fatal(err)
	}
	last := q.Where[len(q.Where)-1]
	if last.Kind != TokCloseParen {
		t.Fatalf("expected a trailing close-paren token, got %#v", last)
	}
	boolTok := q.Where[len(q.Where)-2]
	if boolTok.Kind != TokLiteral {
		t.Fatalf("expected true to parse as a literal before ')', got %#v", boolTok)
	}
	if b, ok := boolTok.Literal.AsBool(); !ok || !b {
		t.Fatalf("got %#v", boolTok.Literal)
	}
}

func TestOrderByDirectionBeforeComma(t *testing.T) {
	// DESC may be followed directly by "," — the grammar requires no
	// whitespace after a direction keyword, only an identifier boundary.
	q, err := Parse(`ORDER BY a DESC,b`)
	if err != nil {
		t.Fatal(err)
	}
	if len(q.OrderBy) != 2 || !q.OrderBy[0].Desc || q.OrderBy[1].Desc {
		t.Fatalf("got %#v", q.OrderBy)
	}
}

func TestParseCallWithArgs(t *testing.T) {
	q, err := Parse(`WHERE DATE(field2, "%Y-%m+%d") == DATEADD("YEAR", 1, "2021-01-01")`)
	if err != nil {
		t.Fatal(err)
	}
	first := q.Where[0]
	if first.Kind != TokCall || first.Call.Name != "DATE" || len(first.Call.Args) != 2 {
		t.Fatalf("got %#v", first)
	}
	last := q.Where[2]
	if last.Kind != TokCall || last.Call.Name != "DATEADD" || len(last.Call.Args) != 3 {
		t.Fatalf("got %#v", last)
	}
}

func TestParseNumberLiterals(t *testing.T) {
	q, err := Parse(`WHERE a == -3.5`)
	if err != nil {
		t.Fatal(err)
	}
	lit := q.Where[2].Literal
	f, ok := lit.AsFloat()
	if !ok || f != -3.5 {
		t.Fatalf("got %#v", lit)
	}
}

func TestParseNoClausesAccepted(t *testing.T) {
	q, err := Parse(`WHERE field1 == 1`)
	if err != nil {
		t.Fatal(err)
	}
	if q.Select != nil || q.From != nil {
		t.Fatalf("expected no select/from, got %#v", q)
	}
}

func TestParseTrailingGarbageFails(t *testing.T) {
	_, err := Parse(`SELECT a ; drop table`)
	if err == nil {
		t.Fatalf("expected a parse error")
	}
}

func TestParseUnclosedStringFails(t *testing.T) {
	_, err := Parse(`WHERE a == "unterminated`)
	if err == nil {
		t.Fatalf("expected a parse error")
	}
}

func TestParseSelectOverride(t *testing.T) {
	fields, err := ParseSelect("file.name, tags, file.modified")
	if err != nil {
		t.Fatal(err)
	}
	if len(fields) != 3 {
		t.Fatalf("got %v", fields)
	}
}

func TestParseFromOverride(t *testing.T) {
	call, err := ParseFrom(`FRONTMATTER_DATA("notes/")`)
	if err != nil {
		t.Fatal(err)
	}
	if call.Name != "FRONTMATTER_DATA" || len(call.Args) != 1 {
		t.Fatalf("got %#v", call)
	}
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
