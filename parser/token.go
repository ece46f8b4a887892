package parser

import (
	"strings"

	"github.com/mdql/mdql/cursor"
)

// OpKind tags a recognized operator.
type OpKind int

const (
	OpOr OpKind = iota
	OpAnd
	OpIn
	OpLike
	OpNotLike
	OpLt
	OpLte
	OpGt
	OpGte
	OpEq
	OpNeq
	OpPlus
	OpMinus
	OpMul
	OpDiv
	OpFloorDiv
	OpPow
)

// Precedence orders operators for shunting-yard: low binds loosest.
func (k OpKind) Precedence() int {
	switch k {
	case OpOr:
		return 0
	case OpAnd:
		return 1
	case OpIn, OpLike, OpNotLike, OpLt, OpLte, OpGt, OpGte, OpEq, OpNeq:
		return 2
	case OpPlus, OpMinus:
		return 3
	case OpMul, OpDiv, OpFloorDiv:
		return 4
	case OpPow:
		return 5
	default:
		return -1
	}
}

func (k OpKind) String() string {
	switch k {
	case OpOr:
		return "OR"
	case OpAnd:
		return "AND"
	case OpIn:
		return "IN"
	case OpLike:
		return "LIKE"
	case OpNotLike:
		return "NOT LIKE"
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	case OpGt:
		return ">"
	case OpGte:
		return ">="
	case OpEq:
		return "=="
	case OpNeq:
		return "!="
	case OpPlus:
		return "+"
	case OpMinus:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpFloorDiv:
		return "//"
	case OpPow:
		return "**"
	default:
		return "?"
	}
}

// symbolicOps lists every symbolic operator. scanSymbolicOp's longest-match
// scan, not the order of this list, keeps "**" from being split into
// "*","*" and "//" into "/","/".
var symbolicOps = []struct {
	text string
	kind OpKind
}{
	{"**", OpPow},
	{"//", OpFloorDiv},
	{"<=", OpLte},
	{">=", OpGte},
	{"==", OpEq},
	{"!=", OpNeq},
	{"<", OpLt},
	{">", OpGt},
	{"+", OpPlus},
	{"-", OpMinus},
	{"*", OpMul},
	{"/", OpDiv},
}

// scanSymbolicOp does a longest-match scan at the cursor's current position:
// it keeps extending the candidate string while it remains a prefix of some
// entry in symbolicOps, then returns the longest candidate that is itself a
// complete operator.
func scanSymbolicOp(c *cursor.Cursor) (OpKind, bool) {
	var best OpKind
	bestLen := 0
	found := false

	candidate := ""
	for i := 0; ; i++ {
		r, ok := c.PeekAt(i)
		if !ok {
			break
		}
		next := candidate + string(r)
		anyPrefix := false
		for _, op := range symbolicOps {
			if strings.HasPrefix(op.text, next) {
				anyPrefix = true
			}
			if op.text == next {
				best = op.kind
				bestLen = len(next)
				found = true
			}
		}
		if !anyPrefix {
			break
		}
		candidate = next
	}
	if !found {
		return 0, false
	}
	for i := 0; i < bestLen; i++ {
		c.Advance()
	}
	return best, true
}

// isIdentStart reports whether r can begin a field-path identifier.
func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// isIdentCont reports whether r can continue a field-path identifier.
func isIdentCont(r rune) bool {
	return isIdentStart(r) || r == '-' || (r >= '0' && r <= '9')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
