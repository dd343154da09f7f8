package expr

import (
	"testing"

	"github.com/ottdtools/grfgen/pkg/diag"
)

var noPos diag.Position

func constant(v int64) *ConstantNumeric { return NewConstant(v, noPos) }

func reduceToConstant(t *testing.T, e Expression, scopes []Scope) int64 {
	t.Helper()
	c, err := ReduceConstant(e, scopes)
	if err != nil {
		t.Fatalf("ReduceConstant(%s) failed: %v", e, err)
	}
	return c.Value
}

func TestIdentifierReduce(t *testing.T) {
	scopes := []Scope{{"snow_line": constant(8)}}

	id := NewIdentifier("snow_line", noPos)
	if got := reduceToConstant(t, id, scopes); got != 8 {
		t.Errorf("snow_line = %d, want 8", got)
	}

	unknown := NewIdentifier("glacier", noPos)
	if _, err := unknown.Reduce(scopes, true); err == nil {
		t.Error("Reduce(unknown, fatal) = nil error, want error")
	}

	// Non-fatal reduction leaves the identifier unresolved.
	result, err := unknown.Reduce(scopes, false)
	if err != nil {
		t.Fatalf("Reduce(unknown, non-fatal) failed: %v", err)
	}
	if result != unknown {
		t.Errorf("Reduce(unknown, non-fatal) = %s, want the identifier itself", result)
	}
}

func TestBinOpFolding(t *testing.T) {
	tests := []struct {
		op   Operator
		l, r int64
		want int64
	}{
		{OpAdd, 3, 4, 7},
		{OpSub, 3, 4, -1},
		{OpMul, 3, 4, 12},
		{OpDiv, 9, 2, 4},
		{OpMod, 9, 2, 1},
		{OpMin, 3, 4, 3},
		{OpMax, 3, 4, 4},
		{OpHasBit, 0b1010, 3, 1},
		{OpHasBit, 0b1010, 2, 0},
	}
	for _, tt := range tests {
		b := NewBinOp(tt.op, constant(tt.l), constant(tt.r), noPos)
		if got := reduceToConstant(t, b, nil); got != tt.want {
			t.Errorf("%s(%d, %d) = %d, want %d", tt.op, tt.l, tt.r, got, tt.want)
		}
	}
}

func TestBinOpDivisionByZero(t *testing.T) {
	b := NewBinOp(OpDiv, constant(1), constant(0), noPos)
	if _, err := b.Reduce(nil, true); err == nil {
		t.Error("Reduce(1/0) = nil error, want error")
	}
}

func TestStoreNotFolded(t *testing.T) {
	b := NewBinOp(OpStoreTemp, constant(5), constant(2), noPos)
	result, err := b.Reduce(nil, true)
	if err != nil {
		t.Fatalf("Reduce failed: %v", err)
	}
	if _, ok := result.(*BinOp); !ok {
		t.Errorf("Reduce(STORE_TEMP) = %T, want *BinOp", result)
	}
}

func TestBuiltinMinMax(t *testing.T) {
	call := NewFunctionCall("min", []Expression{constant(7), constant(2), constant(5)}, noPos)
	if got := reduceToConstant(t, call, nil); got != 2 {
		t.Errorf("min(7, 2, 5) = %d, want 2", got)
	}

	call = NewFunctionCall("max", []Expression{constant(7), constant(2), constant(5)}, noPos)
	if got := reduceToConstant(t, call, nil); got != 7 {
		t.Errorf("max(7, 2, 5) = %d, want 7", got)
	}

	short := NewFunctionCall("min", []Expression{constant(7)}, noPos)
	if _, err := short.Reduce(nil, true); err == nil {
		t.Error("min(7) = nil error, want arity error")
	}
}

func TestBuiltinDayOfYear(t *testing.T) {
	call := NewFunctionCall("day_of_year", []Expression{constant(3), constant(1)}, noPos)
	if got := reduceToConstant(t, call, nil); got != 60 {
		t.Errorf("day_of_year(3, 1) = %d, want 60", got)
	}

	bad := NewFunctionCall("day_of_year", []Expression{constant(2), constant(30)}, noPos)
	if _, err := bad.Reduce(nil, true); err == nil {
		t.Error("day_of_year(2, 30) = nil error, want range error")
	}
}

func TestBuiltinVersionOpenTTD(t *testing.T) {
	call := NewFunctionCall("version_openttd", []Expression{constant(1), constant(2), constant(3)}, noPos)
	want := int64(1)<<28 | int64(2)<<24 | int64(3)<<20 | 0x80000
	if got := reduceToConstant(t, call, nil); got != want {
		t.Errorf("version_openttd(1, 2, 3) = %#x, want %#x", got, want)
	}
}

func TestBuiltinLoad(t *testing.T) {
	call := NewFunctionCall("LOAD_PERM", []Expression{constant(3)}, noPos)
	result, err := call.Reduce(nil, true)
	if err != nil {
		t.Fatalf("Reduce failed: %v", err)
	}
	v, ok := result.(*Variable)
	if !ok {
		t.Fatalf("Reduce(LOAD_PERM) = %T, want *Variable", result)
	}
	if v.Num != 0x7C {
		t.Errorf("Num = 0x%02X, want 0x7C", v.Num)
	}
}

func TestParseStringToDword(t *testing.T) {
	label := NewStringLiteral("COAL", noPos)
	got, err := ParseStringToDword(label)
	if err != nil {
		t.Fatalf("ParseStringToDword failed: %v", err)
	}
	want := uint32('C') | uint32('O')<<8 | uint32('A')<<16 | uint32('L')<<24
	if got != want {
		t.Errorf("ParseStringToDword(COAL) = %#x, want %#x", got, want)
	}

	if _, err := ParseStringToDword(NewStringLiteral("TOO_LONG", noPos)); err == nil {
		t.Error("ParseStringToDword(8 chars) = nil error, want error")
	}
}

func TestBuiltinStr2Number(t *testing.T) {
	call := NewFunctionCall("str2number", []Expression{NewStringLiteral("GRF\x01", noPos)}, noPos)
	want := int64(uint32('G') | uint32('R')<<8 | uint32('F')<<16 | 1<<24)
	if got := reduceToConstant(t, call, nil); got != want {
		t.Errorf("str2number = %#x, want %#x", got, want)
	}
}

func TestBuiltinCargoTypeAvailable(t *testing.T) {
	call := NewFunctionCall("cargotype_available", []Expression{NewStringLiteral("COAL", noPos)}, noPos)
	result, err := call.Reduce(nil, true)
	if err != nil {
		t.Fatalf("Reduce failed: %v", err)
	}
	check, ok := result.(*SpecialCheck)
	if !ok {
		t.Fatalf("result = %T, want *SpecialCheck", result)
	}
	if check.Op.Action != 0x0B || check.Op.Escape != `\7c` {
		t.Errorf("Op = %+v", check.Op)
	}
	if check.Results != [2]int{0, 1} {
		t.Errorf("Results = %v, want [0 1]", check.Results)
	}
	if check.String() != `cargotype_available("COAL")` {
		t.Errorf("Label = %q", check.String())
	}
}

func TestBuiltinGRFStatusLabels(t *testing.T) {
	// The one-argument form must label the check with the grfid, same as
	// the two-argument form.
	one := NewFunctionCall("grf_current_status", []Expression{NewStringLiteral("AB\x01\x02", noPos)}, noPos)
	result, err := one.Reduce(nil, true)
	if err != nil {
		t.Fatalf("Reduce failed: %v", err)
	}
	check := result.(*SpecialCheck)
	if check.String() != `grf_current_status("AB\x01\x02")` {
		t.Errorf("one-arg label = %q", check.String())
	}
	if check.Mask != nil {
		t.Error("one-arg Mask is non-nil")
	}
	if check.VarNum != 0x88 {
		t.Errorf("VarNum = %#x, want 0x88", check.VarNum)
	}
	if check.Results != [2]int{1, 0} {
		t.Errorf("Results = %v, want [1 0]", check.Results)
	}

	two := NewFunctionCall("grf_future_status", []Expression{
		NewStringLiteral("AB\x01\x02", noPos),
		NewStringLiteral("\xff\xff\xff\xff", noPos),
	}, noPos)
	result, err = two.Reduce(nil, true)
	if err != nil {
		t.Fatalf("Reduce failed: %v", err)
	}
	check = result.(*SpecialCheck)
	if check.Mask == nil || *check.Mask != 0xFFFFFFFF {
		t.Errorf("Mask = %v, want 0xFFFFFFFF", check.Mask)
	}
	if check.Results != [2]int{0, 1} {
		t.Errorf("Results = %v, want [0 1]", check.Results)
	}
}

func TestBuiltinReserveSprites(t *testing.T) {
	call := NewFunctionCall("reserve_sprites", []Expression{constant(10)}, noPos)
	result, err := call.Reduce(nil, true)
	if err != nil {
		t.Fatalf("Reduce failed: %v", err)
	}
	grm, ok := result.(*GRMOp)
	if !ok {
		t.Fatalf("result = %T, want *GRMOp", result)
	}
	if grm.Feature != 0x08 || grm.Count != 10 {
		t.Errorf("GRMOp = %+v", grm)
	}
	if grm.String() != "reserve_sprites(10)" {
		t.Errorf("Label = %q", grm.String())
	}
}

func TestUnknownFunction(t *testing.T) {
	call := NewFunctionCall("frobnicate", []Expression{constant(1)}, noPos)

	if _, err := call.Reduce(nil, true); err == nil {
		t.Error("Reduce(unknown, fatal) = nil error, want error")
	}

	result, err := call.Reduce(nil, false)
	if err != nil {
		t.Fatalf("Reduce(unknown, non-fatal) failed: %v", err)
	}
	if _, ok := result.(*FunctionCall); !ok {
		t.Errorf("Reduce(unknown, non-fatal) = %T, want unresolved *FunctionCall", result)
	}
}
