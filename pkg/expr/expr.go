// Package expr holds the constant-expression nodes consumed by the action
// encoders, together with the builtin-function registry used while
// reducing call expressions to constants and check descriptors.
package expr

import (
	"fmt"

	"github.com/ottdtools/grfgen/pkg/diag"
)

// Scope maps identifier names to their bound expressions. Reduction walks
// a scope chain from innermost to outermost.
type Scope map[string]Expression

// Expression is a reducible expression node.
//
// Reduce folds the node as far as the bound scopes allow. When
// unknownIDFatal is set, an unresolved identifier (or function name) is a
// hard error; otherwise the node is returned unresolved so a later pass
// can retry with more bindings.
type Expression interface {
	Reduce(scopes []Scope, unknownIDFatal bool) (Expression, error)
	Pos() diag.Position
	String() string
}

type node struct {
	pos diag.Position
}

func (n node) Pos() diag.Position { return n.pos }

// ConstantNumeric is a fully reduced numeric value.
type ConstantNumeric struct {
	node
	Value int64
}

// NewConstant creates a constant numeric expression.
func NewConstant(value int64, pos diag.Position) *ConstantNumeric {
	return &ConstantNumeric{node: node{pos}, Value: value}
}

func (c *ConstantNumeric) Reduce([]Scope, bool) (Expression, error) { return c, nil }

func (c *ConstantNumeric) String() string { return fmt.Sprintf("%d", c.Value) }

// Identifier is an unresolved name.
type Identifier struct {
	node
	Name string
}

// NewIdentifier creates an identifier expression.
func NewIdentifier(name string, pos diag.Position) *Identifier {
	return &Identifier{node: node{pos}, Name: name}
}

func (id *Identifier) Reduce(scopes []Scope, unknownIDFatal bool) (Expression, error) {
	for _, scope := range scopes {
		if bound, ok := scope[id.Name]; ok {
			return bound.Reduce(scopes, unknownIDFatal)
		}
	}
	if unknownIDFatal {
		return nil, diag.Errorf(diag.Script, id.pos, "%q is not defined", id.Name)
	}
	return id, nil
}

func (id *Identifier) String() string { return id.Name }

// StringLiteral is a quoted literal, e.g. a cargo or grf label.
type StringLiteral struct {
	node
	Text string
}

// NewStringLiteral creates a string literal expression.
func NewStringLiteral(text string, pos diag.Position) *StringLiteral {
	return &StringLiteral{node: node{pos}, Text: text}
}

func (s *StringLiteral) Reduce([]Scope, bool) (Expression, error) { return s, nil }

func (s *StringLiteral) String() string { return fmt.Sprintf("%q", s.Text) }

// Variable reads an engine variable, optionally parameterized.
type Variable struct {
	node
	Num   int
	Param Expression
}

func (v *Variable) Reduce([]Scope, bool) (Expression, error) { return v, nil }

func (v *Variable) String() string {
	if v.Param != nil {
		return fmt.Sprintf("var[0x%02X, %s]", v.Num, v.Param)
	}
	return fmt.Sprintf("var[0x%02X]", v.Num)
}

// ReduceConstant reduces e and requires the result to be a constant.
func ReduceConstant(e Expression, scopes []Scope) (*ConstantNumeric, error) {
	reduced, err := e.Reduce(scopes, true)
	if err != nil {
		return nil, err
	}
	c, ok := reduced.(*ConstantNumeric)
	if !ok {
		return nil, diag.Errorf(diag.Script, e.Pos(), "expected a compile-time constant, got %s", reduced)
	}
	return c, nil
}
