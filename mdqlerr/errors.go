// Package mdqlerr defines the error-kind taxonomy shared by the parser and
// the executor, so callers can distinguish failure classes with errors.Is
// instead of matching on message text.
package mdqlerr

import "errors"

// Sentinel kinds. Wrap one of these with fmt.Errorf("%w: ...", Kind) at the
// point of failure; errors.Is still matches through the wrapping.
var (
	// ErrParse covers malformed query text: unexpected character, unclosed
	// string, bad number, unknown keyword, unterminated call, trailing
	// garbage.
	ErrParse = errors.New("parse error")

	// ErrArgument covers wrong arity or wrong argument variant to a FROM or
	// built-in function.
	ErrArgument = errors.New("argument error")

	// ErrType covers an operator applied to incompatible variants.
	ErrType = errors.New("type error")
)
