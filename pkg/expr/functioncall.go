package expr

import (
	"fmt"
	"strings"

	"github.com/ottdtools/grfgen/pkg/diag"
)

// Builtin reduces a builtin function call to an expression. The returned
// expression may itself be further reducible (e.g. a fold chain over
// constant arguments).
type Builtin func(name string, args []Expression, pos diag.Position) (Expression, error)

// builtins maps function names to their reduction strategies. Unknown
// names are either fatal or left unresolved, depending on the caller's
// unknownIDFatal flag; the two outcomes are never conflated.
var builtins = map[string]Builtin{
	"min":                 builtinMinMax,
	"max":                 builtinMinMax,
	"day_of_year":         builtinDayOfYear,
	"hasbit":              builtinHasBit,
	"STORE_TEMP":          builtinStore,
	"STORE_PERM":          builtinStore,
	"LOAD_TEMP":           builtinLoad,
	"LOAD_PERM":           builtinLoad,
	"version_openttd":     builtinVersionOpenTTD,
	"str2number":          builtinStr2Number,
	"cargotype_available": builtinCargoTypeAvailable,
	"railtype_available":  builtinRailTypeAvailable,
	"grf_current_status":  builtinGRFStatus,
	"grf_future_status":   builtinGRFStatus,
	"grf_order_behind":    builtinGRFStatus,
	"reserve_sprites":     builtinReserveSprites,
}

// FunctionCall is an unresolved call expression.
type FunctionCall struct {
	node
	Name string
	Args []Expression
}

// NewFunctionCall creates a function call expression.
func NewFunctionCall(name string, args []Expression, pos diag.Position) *FunctionCall {
	return &FunctionCall{node: node{pos}, Name: name, Args: args}
}

func (f *FunctionCall) Reduce(scopes []Scope, unknownIDFatal bool) (Expression, error) {
	args := make([]Expression, len(f.Args))
	for i, arg := range f.Args {
		reduced, err := arg.Reduce(scopes, unknownIDFatal)
		if err != nil {
			return nil, err
		}
		args[i] = reduced
	}

	if fn, ok := builtins[f.Name]; ok {
		result, err := fn(f.Name, args, f.pos)
		if err != nil {
			return nil, err
		}
		return result.Reduce(scopes, true)
	}

	if unknownIDFatal {
		return nil, diag.Errorf(diag.Script, f.pos, "%q is not defined as a function", f.Name)
	}
	return NewFunctionCall(f.Name, args, f.pos), nil
}

func (f *FunctionCall) String() string {
	parts := make([]string, len(f.Args))
	for i, arg := range f.Args {
		parts[i] = arg.String()
	}
	return fmt.Sprintf("%s(%s)", f.Name, strings.Join(parts, ", "))
}

// CheckOp pairs a skip-record operator number with its escape notation.
type CheckOp struct {
	Action int
	Escape string
}

// SpecialCheck describes a runtime availability test (e.g. whether a
// cargo or grf is present) for the skip-record encoder.
type SpecialCheck struct {
	node
	Op      CheckOp
	VarNum  int
	Results [2]int // result when skipping (0) or not skipping (1)
	Value   uint32
	Mask    *uint32
	Label   string
}

func (c *SpecialCheck) Reduce([]Scope, bool) (Expression, error) { return c, nil }

func (c *SpecialCheck) String() string { return c.Label }

// GRMOp describes a global resource management request.
type GRMOp struct {
	node
	Feature int
	Count   int
	Label   string
}

func (g *GRMOp) Reduce([]Scope, bool) (Expression, error) { return g, nil }

func (g *GRMOp) String() string { return g.Label }

// ParseStringToDword converts a four-character label literal (stored
// first-byte-lowest) or an already-constant value to a dword.
func ParseStringToDword(e Expression) (uint32, error) {
	switch v := e.(type) {
	case *ConstantNumeric:
		return uint32(v.Value), nil
	case *StringLiteral:
		if len(v.Text) == 4 {
			b := []byte(v.Text)
			return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
		}
	}
	return 0, diag.Errorf(diag.Script, e.Pos(), "expected a 4-character label or constant, got %s", e)
}

func builtinMinMax(name string, args []Expression, pos diag.Position) (Expression, error) {
	if len(args) < 2 {
		return nil, diag.Errorf(diag.Script, pos, "%s() requires at least 2 arguments", name)
	}
	op := OpMin
	if name == "max" {
		op = OpMax
	}
	result := args[0]
	for _, arg := range args[1:] {
		result = NewBinOp(op, result, arg, pos)
	}
	return result, nil
}

func builtinDayOfYear(name string, args []Expression, pos diag.Position) (Expression, error) {
	if len(args) != 2 {
		return nil, diag.Errorf(diag.Script, pos, "%s() must have a month and a day parameter", name)
	}
	month, err := ReduceConstant(args[0], nil)
	if err != nil {
		return nil, err
	}
	if month.Value < 1 || month.Value > 12 {
		return nil, diag.Errorf(diag.Script, month.Pos(), "month should be a value between 1 and 12")
	}
	day, err := ReduceConstant(args[1], nil)
	if err != nil {
		return nil, err
	}

	// Days per month, February always 28.
	daysInMonth := [12]int64{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
	if day.Value < 1 || day.Value > daysInMonth[month.Value-1] {
		return nil, diag.Errorf(diag.Script, day.Pos(), "day should be a value between 1 and %d", daysInMonth[month.Value-1])
	}

	dayInYear := day.Value
	for _, days := range daysInMonth[:month.Value-1] {
		dayInYear += days
	}
	return NewConstant(dayInYear, pos), nil
}

func builtinHasBit(name string, args []Expression, pos diag.Position) (Expression, error) {
	if len(args) != 2 {
		return nil, diag.Errorf(diag.Script, pos, "%s() must have exactly two parameters", name)
	}
	return NewBinOp(OpHasBit, args[0], args[1], pos), nil
}

func builtinStore(name string, args []Expression, pos diag.Position) (Expression, error) {
	if len(args) != 2 {
		return nil, diag.Errorf(diag.Script, pos, "%s() must have exactly two parameters", name)
	}
	op := OpStoreTemp
	if name == "STORE_PERM" {
		op = OpStorePerm
	}
	return NewBinOp(op, args[0], args[1], pos), nil
}

func builtinLoad(name string, args []Expression, pos diag.Position) (Expression, error) {
	if len(args) != 1 {
		return nil, diag.Errorf(diag.Script, pos, "%s() must have one parameter", name)
	}
	varNum := 0x7D
	if name == "LOAD_PERM" {
		varNum = 0x7C
	}
	return &Variable{node: node{pos}, Num: varNum, Param: args[0]}, nil
}

func builtinVersionOpenTTD(name string, args []Expression, pos diag.Position) (Expression, error) {
	if len(args) < 3 || len(args) > 4 {
		return nil, diag.Errorf(diag.Script, pos, "%s() must have 3 or 4 parameters", name)
	}
	values := make([]int64, len(args))
	for i, arg := range args {
		c, err := ReduceConstant(arg, nil)
		if err != nil {
			return nil, err
		}
		values[i] = c.Value
	}
	build := int64(0x80000)
	if len(values) == 4 {
		build = values[3]
	}
	version := values[0]<<28 | values[1]<<24 | values[2]<<20 | build
	return NewConstant(version, pos), nil
}

func builtinStr2Number(name string, args []Expression, pos diag.Position) (Expression, error) {
	if len(args) != 1 {
		return nil, diag.Errorf(diag.Script, pos, "%s() must have 1 parameter", name)
	}
	value, err := ParseStringToDword(args[0])
	if err != nil {
		return nil, err
	}
	return NewConstant(int64(value), pos), nil
}

func builtinCargoTypeAvailable(name string, args []Expression, pos diag.Position) (Expression, error) {
	if len(args) != 1 {
		return nil, diag.Errorf(diag.Script, pos, "%s() must have exactly 1 parameter", name)
	}
	value, err := ParseStringToDword(args[0])
	if err != nil {
		return nil, err
	}
	return &SpecialCheck{
		node:    node{args[0].Pos()},
		Op:      CheckOp{0x0B, `\7c`},
		VarNum:  0,
		Results: [2]int{0, 1},
		Value:   value,
		Label:   fmt.Sprintf("%s(%s)", name, args[0]),
	}, nil
}

func builtinRailTypeAvailable(name string, args []Expression, pos diag.Position) (Expression, error) {
	if len(args) != 1 {
		return nil, diag.Errorf(diag.Script, pos, "%s() must have exactly 1 parameter", name)
	}
	value, err := ParseStringToDword(args[0])
	if err != nil {
		return nil, err
	}
	return &SpecialCheck{
		node:    node{args[0].Pos()},
		Op:      CheckOp{Action: 0x0D},
		VarNum:  0,
		Results: [2]int{0, 1},
		Value:   value,
		Label:   fmt.Sprintf("%s(%s)", name, args[0]),
	}, nil
}

func builtinGRFStatus(name string, args []Expression, pos diag.Position) (Expression, error) {
	if len(args) != 1 && len(args) != 2 {
		return nil, diag.Errorf(diag.Script, pos, "%s() must have 1 or 2 parameters", name)
	}
	grfid, err := ParseStringToDword(args[0])
	if err != nil {
		return nil, err
	}

	var mask *uint32
	if len(args) == 2 {
		m, err := ParseStringToDword(args[1])
		if err != nil {
			return nil, err
		}
		mask = &m
	}

	var op CheckOp
	var results [2]int
	switch name {
	case "grf_current_status":
		op = CheckOp{0x06, `\7G`}
		results = [2]int{1, 0}
	case "grf_future_status":
		op = CheckOp{0x0A, `\7gg`}
		results = [2]int{0, 1}
	case "grf_order_behind":
		op = CheckOp{0x08, `\7gG`}
		results = [2]int{0, 1}
	}

	// Both forms label the check with the grfid argument.
	label := fmt.Sprintf("%s(%s)", name, args[0])
	if mask != nil {
		label = fmt.Sprintf("%s(%s, %s)", name, args[0], args[1])
	}
	return &SpecialCheck{
		node:    node{args[0].Pos()},
		Op:      op,
		VarNum:  0x88,
		Results: results,
		Value:   grfid,
		Mask:    mask,
		Label:   label,
	}, nil
}

func builtinReserveSprites(name string, args []Expression, pos diag.Position) (Expression, error) {
	if len(args) != 1 {
		return nil, diag.Errorf(diag.Script, pos, "%s() must have 1 parameter", name)
	}
	count, err := ReduceConstant(args[0], nil)
	if err != nil {
		return nil, err
	}
	return &GRMOp{
		node:    node{pos},
		Feature: 0x08,
		Count:   int(count.Value),
		Label:   fmt.Sprintf("%s(%d)", name, count.Value),
	}, nil
}
