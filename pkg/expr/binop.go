package expr

import (
	"fmt"

	"github.com/ottdtools/grfgen/pkg/diag"
)

// Operator is a binary operator over 32-bit values.
type Operator int

const (
	OpAdd Operator = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpMin
	OpMax
	OpHasBit
	OpStoreTemp
	OpStorePerm
)

var opNames = map[Operator]string{
	OpAdd:       "+",
	OpSub:       "-",
	OpMul:       "*",
	OpDiv:       "/",
	OpMod:       "%",
	OpMin:       "min",
	OpMax:       "max",
	OpHasBit:    "hasbit",
	OpStoreTemp: "STORE_TEMP",
	OpStorePerm: "STORE_PERM",
}

func (op Operator) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Operator(%d)", int(op))
}

// BinOp applies Op to two subexpressions.
type BinOp struct {
	node
	Op    Operator
	Left  Expression
	Right Expression
}

// NewBinOp creates a binary operator expression.
func NewBinOp(op Operator, left, right Expression, pos diag.Position) *BinOp {
	return &BinOp{node: node{pos}, Op: op, Left: left, Right: right}
}

func (b *BinOp) Reduce(scopes []Scope, unknownIDFatal bool) (Expression, error) {
	left, err := b.Left.Reduce(scopes, unknownIDFatal)
	if err != nil {
		return nil, err
	}
	right, err := b.Right.Reduce(scopes, unknownIDFatal)
	if err != nil {
		return nil, err
	}

	lc, lok := left.(*ConstantNumeric)
	rc, rok := right.(*ConstantNumeric)
	if lok && rok {
		if folded, ok, err := foldConstants(b.Op, lc.Value, rc.Value, b.pos); err != nil {
			return nil, err
		} else if ok {
			return NewConstant(folded, b.pos), nil
		}
	}
	return &BinOp{node: b.node, Op: b.Op, Left: left, Right: right}, nil
}

// foldConstants evaluates op over two constants. Store operators carry a
// side effect at runtime and are never folded.
func foldConstants(op Operator, left, right int64, pos diag.Position) (int64, bool, error) {
	switch op {
	case OpAdd:
		return left + right, true, nil
	case OpSub:
		return left - right, true, nil
	case OpMul:
		return left * right, true, nil
	case OpDiv:
		if right == 0 {
			return 0, false, diag.Errorf(diag.Script, pos, "division by zero")
		}
		return left / right, true, nil
	case OpMod:
		if right == 0 {
			return 0, false, diag.Errorf(diag.Script, pos, "modulo by zero")
		}
		return left % right, true, nil
	case OpMin:
		if left < right {
			return left, true, nil
		}
		return right, true, nil
	case OpMax:
		if left > right {
			return left, true, nil
		}
		return right, true, nil
	case OpHasBit:
		return (left >> uint(right)) & 1, true, nil
	default:
		return 0, false, nil
	}
}

func (b *BinOp) String() string {
	switch b.Op {
	case OpMin, OpMax, OpHasBit, OpStoreTemp, OpStorePerm:
		return fmt.Sprintf("%s(%s, %s)", b.Op, b.Left, b.Right)
	default:
		return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
	}
}
