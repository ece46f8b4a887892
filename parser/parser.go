// Package parser implements a single-pass, cursor-based recursive-descent
// parser for the mdql query language: SELECT/FROM/WHERE/ORDER BY clauses
// over Markdown front-matter records. There is no separate lexing pass —
// tokens are short and local ambiguity (alphabetic operator vs. identifier,
// bare identifier vs. boolean literal, identifier vs. call) is resolved by
// a post-condition check on the next character, the same strategy the
// grammar's own keyword matcher documents.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mdql/mdql/cursor"
	"github.com/mdql/mdql/mdqlerr"
	"github.com/mdql/mdql/value"
)

// Call is a FROM invocation or a function call inside an expression:
// Ident '(' [Arg (',' Arg)*] ')'.
type Call struct {
	Name string
	Args []ExprToken
}

// TokenKind tags an ExprToken variant.
type TokenKind int

const (
	TokOpenParen TokenKind = iota
	TokCloseParen
	TokOperator
	TokFieldRef
	TokLiteral
	TokCall
)

// ExprToken is one element of a WHERE expression in original infix order.
// The executor performs shunting-yard over a slice of these; the parser
// never builds a tree.
type ExprToken struct {
	Kind     TokenKind
	Op       OpKind
	FieldRef string
	Literal  value.Value
	Call     *Call
}

// OrderField is one ORDER BY clause element.
type OrderField struct {
	Field string
	Desc  bool
}

// Query is the full parsed plan: select list (user order preserved),
// optional FROM call, WHERE expression in infix form, and ORDER BY list.
type Query struct {
	Select  []string
	From    *Call
	Where   []ExprToken
	OrderBy []OrderField
}

// parser holds cursor state for one parse invocation. It is not reused.
type parser struct {
	c *cursor.Cursor
}

// Parse turns a single query string into a Query plan.
func Parse(query string) (*Query, error) {
	p := &parser{c: cursor.New(query)}
	q := &Query{}

	p.skipSpace()
	if p.matchKeyword("SELECT") {
		fields, err := p.parseFieldList()
		if err != nil {
			return nil, err
		}
		q.Select = fields
	}

	p.skipSpace()
	if p.matchKeyword("FROM") {
		call, err := p.parseCall()
		if err != nil {
			return nil, err
		}
		q.From = call
	}

	p.skipSpace()
	if p.matchKeyword("WHERE") {
		tokens, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		q.Where = tokens
	}

	p.skipSpace()
	if p.matchKeyword("ORDER") {
		if !p.matchKeyword("BY") {
			return nil, p.errorf("expected BY after ORDER")
		}
		fields, err := p.parseOrderFieldList()
		if err != nil {
			return nil, err
		}
		q.OrderBy = fields
	}

	p.skipSpace()
	if !p.c.AtEnd() {
		return nil, p.errorf("unexpected trailing input")
	}

	return q, nil
}

// ParseSelect parses a bare comma-separated field list, as used by the
// executor's --select override.
func ParseSelect(fields string) ([]string, error) {
	p := &parser{c: cursor.New(fields)}
	return p.parseFieldList()
}

// ParseFrom parses a bare call, as used by the executor's --from override.
func ParseFrom(call string) (*Call, error) {
	p := &parser{c: cursor.New(call)}
	p.skipSpace()
	c, err := p.parseCall()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.c.AtEnd() {
		return nil, p.errorf("unexpected trailing input after FROM call")
	}
	return c, nil
}

// ParseFieldList parses a bare comma-separated field list (an alias of
// ParseSelect, exported under the name the executor's include-fields
// override reaches for).
func ParseFieldList(fields string) ([]string, error) {
	return ParseSelect(fields)
}

func (p *parser) errorf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("%w: %s: %s", mdqlerr.ErrParse, msg, p.c.String())
}

func (p *parser) skipSpace() {
	for {
		r, ok := p.c.Peek()
		if !ok || !isSpace(r) {
			return
		}
		p.c.Advance()
	}
}

// matchKeyword consumes kw case-insensitively if the cursor is positioned
// at it and the next character is whitespace or end-of-input — an
// alphabetic clause keyword followed by anything else, including "(" or
// another non-space character, is not a match at all. On success it also
// consumes the mandatory trailing whitespace, leaving the cursor past it.
func (p *parser) matchKeyword(kw string) bool {
	runes := []rune(kw)
	for i, want := range runes {
		got, ok := p.c.PeekAt(i)
		if !ok || toLowerRune(got) != toLowerRune(want) {
			return false
		}
	}
	// Boundary check: next char must be whitespace or end-of-input.
	if next, ok := p.c.PeekAt(len(runes)); ok && !isSpace(next) {
		return false
	}
	for range runes {
		p.c.Advance()
	}
	p.skipSpace()
	return true
}

// matchBareKeyword consumes kw case-insensitively when the cursor is
// positioned at it and the next character cannot continue an identifier.
// Unlike matchKeyword, no trailing whitespace is required — ASC/DESC may
// be followed by "," and boolean literals by ")".
func (p *parser) matchBareKeyword(kw string) bool {
	runes := []rune(kw)
	for i, want := range runes {
		got, ok := p.c.PeekAt(i)
		if !ok || toLowerRune(got) != toLowerRune(want) {
			return false
		}
	}
	if next, ok := p.c.PeekAt(len(runes)); ok && isIdentCont(next) {
		return false
	}
	for range runes {
		p.c.Advance()
	}
	return true
}

func toLowerRune(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

// parseFieldList parses FieldPath ("," FieldPath)*.
func (p *parser) parseFieldList() ([]string, error) {
	var fields []string
	for {
		p.skipSpace()
		field, err := p.parseFieldPath()
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
		p.skipSpace()
		r, ok := p.c.Peek()
		if !ok || r != ',' {
			break
		}
		p.c.Advance()
	}
	return fields, nil
}

func (p *parser) parseOrderFieldList() ([]OrderField, error) {
	var fields []OrderField
	for {
		p.skipSpace()
		field, err := p.parseFieldPath()
		if err != nil {
			return nil, err
		}
		of := OrderField{Field: field}
		p.skipSpace()
		if p.matchBareKeyword("DESC") {
			of.Desc = true
		} else {
			p.matchBareKeyword("ASC")
		}
		fields = append(fields, of)
		p.skipSpace()
		r, ok := p.c.Peek()
		if !ok || r != ',' {
			break
		}
		p.c.Advance()
	}
	return fields, nil
}

// parseFieldPath parses Ident ("." Ident)*.
func (p *parser) parseFieldPath() (string, error) {
	var b strings.Builder
	ident, err := p.parseIdent()
	if err != nil {
		return "", err
	}
	b.WriteString(ident)
	for {
		r, ok := p.c.Peek()
		if !ok || r != '.' {
			break
		}
		p.c.Advance()
		b.WriteByte('.')
		ident, err := p.parseIdent()
		if err != nil {
			return "", err
		}
		b.WriteString(ident)
	}
	return b.String(), nil
}

// parseIdent parses (Letter|'_') (LetterDigit|'_'|'-')*.
func (p *parser) parseIdent() (string, error) {
	r, ok := p.c.Peek()
	if !ok || !isIdentStart(r) {
		return "", p.errorf("expected identifier")
	}
	var b strings.Builder
	b.WriteRune(r)
	p.c.Advance()
	for {
		r, ok := p.c.Peek()
		if !ok || !isIdentCont(r) {
			break
		}
		b.WriteRune(r)
		p.c.Advance()
	}
	return b.String(), nil
}

// parseCall parses Ident '(' [Arg ("," Arg)*] ')'.
func (p *parser) parseCall() (*Call, error) {
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	r, ok := p.c.Peek()
	if !ok || r != '(' {
		return nil, p.errorf("expected '(' after %s", name)
	}
	p.c.Advance()
	p.skipSpace()

	call := &Call{Name: strings.ToUpper(name)}
	r, ok = p.c.Peek()
	if ok && r == ')' {
		p.c.Advance()
		return call, nil
	}
	for {
		p.skipSpace()
		arg, err := p.parseArg()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
		p.skipSpace()
		r, ok := p.c.Peek()
		if !ok {
			return nil, p.errorf("unterminated call to %s", name)
		}
		if r == ',' {
			p.c.Advance()
			continue
		}
		if r == ')' {
			p.c.Advance()
			break
		}
		return nil, p.errorf("expected ',' or ')' in call to %s", name)
	}
	return call, nil
}

// parseArg parses Literal | FieldPath, emitted as a Literal or FieldRef
// ExprToken for later evaluation against a record.
func (p *parser) parseArg() (ExprToken, error) {
	if tok, ok, err := p.tryParseLiteral(); ok || err != nil {
		return tok, err
	}
	field, err := p.parseFieldPath()
	if err != nil {
		return ExprToken{}, err
	}
	return ExprToken{Kind: TokFieldRef, FieldRef: field}, nil
}

// parseExpression parses the full infix token sequence: Primary (Op
// Expression)? repeated, plus bracket tokens, all preserved in original
// order for the executor's shunting-yard pass.
func (p *parser) parseExpression() ([]ExprToken, error) {
	var tokens []ExprToken
	expectOperand := true

	for {
		p.skipSpace()
		if p.c.AtEnd() {
			break
		}
		r, _ := p.c.Peek()

		if expectOperand {
			if r == '(' {
				p.c.Advance()
				tokens = append(tokens, ExprToken{Kind: TokOpenParen})
				continue
			}
			tok, err := p.parsePrimary()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			expectOperand = false
			continue
		}

		// Not expecting an operand: accept ')' or an operator, else stop
		// (trailing input belongs to an enclosing clause or is an error
		// the caller will surface).
		if r == ')' {
			p.c.Advance()
			tokens = append(tokens, ExprToken{Kind: TokCloseParen})
			continue
		}

		op, ok, err := p.tryParseOperator()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		tokens = append(tokens, ExprToken{Kind: TokOperator, Op: op})
		expectOperand = true
	}

	if expectOperand && len(tokens) > 0 {
		return nil, p.errorf("expression ends with a dangling operator")
	}
	return tokens, nil
}

// parsePrimary parses '(' Expression ')' | Call | Literal | FieldPath.
// The leading '(' case is handled by the caller (parseExpression) so that
// brackets stay as explicit tokens in the flat infix stream.
func (p *parser) parsePrimary() (ExprToken, error) {
	if tok, ok, err := p.tryParseLiteral(); ok || err != nil {
		return tok, err
	}

	start := p.c.Pos()
	name, err := p.parseIdent()
	if err != nil {
		return ExprToken{}, err
	}
	r, ok := p.c.Peek()
	if ok && r == '(' {
		p.c.Back(p.c.Pos() - start)
		call, err := p.parseCall()
		if err != nil {
			return ExprToken{}, err
		}
		return ExprToken{Kind: TokCall, Call: call}, nil
	}

	path := name
	for {
		r, ok := p.c.Peek()
		if !ok || r != '.' {
			break
		}
		p.c.Advance()
		ident, err := p.parseIdent()
		if err != nil {
			return ExprToken{}, err
		}
		path += "." + ident
	}
	return ExprToken{Kind: TokFieldRef, FieldRef: path}, nil
}

// tryParseLiteral attempts String | Number | Bool at the current position.
func (p *parser) tryParseLiteral() (ExprToken, bool, error) {
	r, ok := p.c.Peek()
	if !ok {
		return ExprToken{}, false, nil
	}

	if r == '"' || r == '\'' {
		s, err := p.parseString(r)
		if err != nil {
			return ExprToken{}, true, err
		}
		return ExprToken{Kind: TokLiteral, Literal: value.NewString(s)}, true, nil
	}

	if isDigit(r) || (r == '-' && isDigitAt(p.c, 1)) {
		tok, err := p.parseNumber()
		return tok, true, err
	}

	if p.matchBareKeyword("true") {
		return ExprToken{Kind: TokLiteral, Literal: value.NewBool(true)}, true, nil
	}
	if p.matchBareKeyword("false") {
		return ExprToken{Kind: TokLiteral, Literal: value.NewBool(false)}, true, nil
	}

	return ExprToken{}, false, nil
}

func isDigitAt(c *cursor.Cursor, offset int) bool {
	r, ok := c.PeekAt(offset)
	return ok && isDigit(r)
}

// matchWord reports whether word sits at the cursor, case-insensitively,
// and is followed by whitespace or end-of-input — alphabetic operators
// require the post-operator character to be whitespace or end-of-input,
// not merely "not an identifier character".
func matchWord(c *cursor.Cursor, word string) bool {
	runes := []rune(word)
	for i, want := range runes {
		got, ok := c.PeekAt(i)
		if !ok || toLowerRune(got) != toLowerRune(want) {
			return false
		}
	}
	if next, ok := c.PeekAt(len(runes)); ok && !isSpace(next) {
		return false
	}
	return true
}

func consumeWord(c *cursor.Cursor, word string) {
	for range word {
		c.Advance()
	}
}

func (p *parser) parseString(quote rune) (string, error) {
	p.c.Advance() // opening quote
	var b strings.Builder
	for {
		r, ok := p.c.Peek()
		if !ok {
			return "", p.errorf("unclosed string literal")
		}
		if r == quote {
			p.c.Advance()
			return b.String(), nil
		}
		b.WriteRune(r)
		p.c.Advance()
	}
}

// parseNumber parses ['-'] Digit+ ['.' Digit+], producing an Integer or
// Float literal depending on the presence of a fractional part.
func (p *parser) parseNumber() (ExprToken, error) {
	var b strings.Builder
	if r, ok := p.c.Peek(); ok && r == '-' {
		b.WriteRune(r)
		p.c.Advance()
	}
	digits := 0
	for {
		r, ok := p.c.Peek()
		if !ok || !isDigit(r) {
			break
		}
		b.WriteRune(r)
		p.c.Advance()
		digits++
	}
	if digits == 0 {
		return ExprToken{}, p.errorf("invalid number")
	}
	isFloat := false
	if r, ok := p.c.Peek(); ok && r == '.' {
		if next, ok := p.c.PeekAt(1); ok && isDigit(next) {
			isFloat = true
			b.WriteByte('.')
			p.c.Advance()
			for {
				r, ok := p.c.Peek()
				if !ok || !isDigit(r) {
					break
				}
				b.WriteRune(r)
				p.c.Advance()
			}
		}
	}
	text := b.String()
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return ExprToken{}, p.errorf("invalid number %q", text)
		}
		return ExprToken{Kind: TokLiteral, Literal: value.NewFloat(f)}, nil
	}
	i, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return ExprToken{}, p.errorf("invalid number %q", text)
	}
	return ExprToken{Kind: TokLiteral, Literal: value.NewInt(i)}, nil
}

// tryParseOperator attempts an alphabetic operator (AND/OR/IN/LIKE/NOT
// LIKE), falling back to longest-match symbolic scanning.
func (p *parser) tryParseOperator() (OpKind, bool, error) {
	if matchWord(p.c, "and") {
		consumeWord(p.c, "and")
		p.skipSpace()
		return OpAnd, true, nil
	}
	if matchWord(p.c, "or") {
		consumeWord(p.c, "or")
		p.skipSpace()
		return OpOr, true, nil
	}
	if matchWord(p.c, "not") {
		save := p.c.Pos()
		consumeWord(p.c, "not")
		p.skipSpace()
		if matchWord(p.c, "like") {
			consumeWord(p.c, "like")
			p.skipSpace()
			return OpNotLike, true, nil
		}
		p.c.Back(p.c.Pos() - save)
		return 0, false, p.errorf("expected LIKE after NOT")
	}
	if matchWord(p.c, "like") {
		consumeWord(p.c, "like")
		p.skipSpace()
		return OpLike, true, nil
	}
	if matchWord(p.c, "in") {
		consumeWord(p.c, "in")
		p.skipSpace()
		return OpIn, true, nil
	}

	if op, ok := scanSymbolicOp(p.c); ok {
		p.skipSpace()
		return op, true, nil
	}
	return 0, false, nil
}
