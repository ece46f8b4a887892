// Package cursor implements a peekable, backtrackable stream of runes over
// query text. One parse invocation owns one Cursor; it is not safe for
// concurrent use.
package cursor

import "strings"

// Cursor wraps an immutable rune sequence with an integer read position.
type Cursor struct {
	runes []rune
	pos   int
}

// New returns a Cursor positioned at the start of s.
func New(s string) *Cursor {
	return &Cursor{runes: []rune(s)}
}

// Peek returns the rune at the current position without advancing, and
// whether one was available.
func (c *Cursor) Peek() (rune, bool) {
	if c.pos >= len(c.runes) {
		return 0, false
	}
	return c.runes[c.pos], true
}

// PeekAt returns the rune offset runes ahead of the current position.
func (c *Cursor) PeekAt(offset int) (rune, bool) {
	i := c.pos + offset
	if i < 0 || i >= len(c.runes) {
		return 0, false
	}
	return c.runes[i], true
}

// Advance moves one position forward and returns the new current rune.
func (c *Cursor) Advance() (rune, bool) {
	c.pos++
	return c.Peek()
}

// Back rewinds the cursor by n positions, saturating at 0.
func (c *Cursor) Back(n int) {
	c.pos -= n
	if c.pos < 0 {
		c.pos = 0
	}
}

// AtEnd reports whether the cursor has reached the end of the sequence.
func (c *Cursor) AtEnd() bool {
	return c.pos >= len(c.runes)
}

// Pos returns the current zero-based read position.
func (c *Cursor) Pos() int {
	return c.pos
}

// String renders the sequence with brackets around the current position,
// or a trailing "[]" when at the end. Used only for diagnostics.
func (c *Cursor) String() string {
	var b strings.Builder
	for i, r := range c.runes {
		if i == c.pos {
			b.WriteByte('[')
			b.WriteRune(r)
			b.WriteByte(']')
		} else {
			b.WriteRune(r)
		}
	}
	if c.AtEnd() {
		b.WriteString("[]")
	}
	return b.String()
}
