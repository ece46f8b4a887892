package executor

import (
	"fmt"

	"github.com/mdql/mdql/mdqlerr"
	"github.com/mdql/mdql/parser"
	"github.com/mdql/mdql/value"
)

// stackEntry is an element of the shunting-yard operator stack: either an
// open-paren marker or a pending operator.
type stackEntry struct {
	isParen bool
	op      parser.OpKind
}

// evaluateWhere runs the two-stack shunting-yard algorithm over tokens
// against record: an operator/paren stack and an operand queue of Values.
func evaluateWhere(tokens []parser.ExprToken, record value.Value) (value.Value, error) {
	var ops []stackEntry
	var operands []value.Value

	apply := func(op parser.OpKind) error {
		if len(operands) < 2 {
			return fmt.Errorf("%w: operator %s is missing operands", mdqlerr.ErrType, op)
		}
		right := operands[len(operands)-1]
		left := operands[len(operands)-2]
		operands = operands[:len(operands)-2]
		result, err := applyOperator(op, left, right)
		if err != nil {
			return err
		}
		operands = append(operands, result)
		return nil
	}

	for _, tok := range tokens {
		switch tok.Kind {
		case parser.TokOpenParen:
			ops = append(ops, stackEntry{isParen: true})

		case parser.TokCloseParen:
			for len(ops) > 0 && !ops[len(ops)-1].isParen {
				top := ops[len(ops)-1]
				ops = ops[:len(ops)-1]
				if err := apply(top.op); err != nil {
					return value.NewNull(), err
				}
			}
			if len(ops) == 0 {
				return value.NewNull(), fmt.Errorf("%w: unbalanced parentheses", mdqlerr.ErrParse)
			}
			ops = ops[:len(ops)-1]

		case parser.TokOperator:
			for len(ops) > 0 && !ops[len(ops)-1].isParen && ops[len(ops)-1].op.Precedence() >= tok.Op.Precedence() {
				top := ops[len(ops)-1]
				ops = ops[:len(ops)-1]
				if err := apply(top.op); err != nil {
					return value.NewNull(), err
				}
			}
			ops = append(ops, stackEntry{op: tok.Op})

		case parser.TokFieldRef:
			operands = append(operands, record.NestedGet(tok.FieldRef))

		case parser.TokLiteral:
			operands = append(operands, tok.Literal)

		case parser.TokCall:
			result, err := evaluateCall(tok.Call, record)
			if err != nil {
				return value.NewNull(), err
			}
			operands = append(operands, result)
		}
	}

	for len(ops) > 0 {
		top := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		if top.isParen {
			return value.NewNull(), fmt.Errorf("%w: unbalanced parentheses", mdqlerr.ErrParse)
		}
		if err := apply(top.op); err != nil {
			return value.NewNull(), err
		}
	}

	if len(operands) != 1 {
		return value.NewNull(), fmt.Errorf("%w: expression did not reduce to a single value", mdqlerr.ErrType)
	}
	return operands[0], nil
}

// applyOperator applies op to its two resolved operands.
func applyOperator(op parser.OpKind, left, right value.Value) (value.Value, error) {
	switch op {
	case parser.OpAnd, parser.OpOr:
		lb, lok := left.AsBool()
		rb, rok := right.AsBool()
		if !lok || !rok {
			return value.NewNull(), fmt.Errorf("%w: %s requires boolean operands", mdqlerr.ErrType, op)
		}
		if op == parser.OpAnd {
			return value.NewBool(lb && rb), nil
		}
		return value.NewBool(lb || rb), nil

	case parser.OpEq:
		return value.NewBool(left.Equal(right)), nil
	case parser.OpNeq:
		return value.NewBool(!left.Equal(right)), nil

	case parser.OpLt, parser.OpLte, parser.OpGt, parser.OpGte:
		cmp, ok := left.Compare(right)
		if !ok {
			return value.NewBool(false), nil
		}
		switch op {
		case parser.OpLt:
			return value.NewBool(cmp < 0), nil
		case parser.OpLte:
			return value.NewBool(cmp <= 0), nil
		case parser.OpGt:
			return value.NewBool(cmp > 0), nil
		default:
			return value.NewBool(cmp >= 0), nil
		}

	case parser.OpIn:
		return value.NewBool(right.Contains(left)), nil

	case parser.OpLike, parser.OpNotLike:
		return applyLike(op, left, right)

	case parser.OpPlus:
		return left.Add(right)
	case parser.OpMinus:
		return left.Sub(right)
	case parser.OpMul:
		return left.Mul(right)
	case parser.OpDiv:
		return left.Div(right)
	case parser.OpFloorDiv:
		return left.FloorDiv(right)
	case parser.OpPow:
		return left.Pow(right)

	default:
		return value.NewNull(), fmt.Errorf("%w: unknown operator %s", mdqlerr.ErrType, op)
	}
}

func applyLike(op parser.OpKind, left, right value.Value) (value.Value, error) {
	ls, lok := left.AsString()
	rs, rok := right.AsString()
	if !lok || !rok {
		return value.NewNull(), fmt.Errorf("%w: %s requires string operands", mdqlerr.ErrType, op)
	}
	re, ok := compileLike(rs)
	if !ok {
		// Invalid pattern: false for LIKE, true for NOT LIKE.
		return value.NewBool(op == parser.OpNotLike), nil
	}
	matched := re.MatchString(ls)
	if op == parser.OpNotLike {
		return value.NewBool(!matched), nil
	}
	return value.NewBool(matched), nil
}

// evaluateCall evaluates a function call's arguments against record, then
// dispatches to the named built-in.
func evaluateCall(call *parser.Call, record value.Value) (value.Value, error) {
	args := make([]value.Value, len(call.Args))
	for i, a := range call.Args {
		switch a.Kind {
		case parser.TokLiteral:
			args[i] = a.Literal
		case parser.TokFieldRef:
			args[i] = record.NestedGet(a.FieldRef)
		default:
			return value.NewNull(), fmt.Errorf("%w: call arguments must be literals or field paths", mdqlerr.ErrArgument)
		}
	}

	switch call.Name {
	case "DATE":
		return callDATE(args)
	case "DATEADD":
		return callDATEADD(args)
	default:
		return value.NewNull(), fmt.Errorf("%w: unknown function %s", mdqlerr.ErrArgument, call.Name)
	}
}
