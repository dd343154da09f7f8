package nfo

import (
	"strings"
	"testing"

	"github.com/ottdtools/grfgen/pkg/diag"
)

// mustClose closes the open frame and fails the test on a size mismatch
// panic.
func mustClose(t *testing.T, w *Writer) {
	t.Helper()
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("EndSprite panicked: %v", r)
		}
	}()
	w.EndSprite()
}

func TestPrimitiveNotation(t *testing.T) {
	w := NewWriter(0)
	w.StartSprite(9)

	if err := w.PrintByte(12); err != nil {
		t.Fatalf("PrintByte: %v", err)
	}
	if err := w.PrintByteX(0x0F); err != nil {
		t.Fatalf("PrintByteX: %v", err)
	}
	if err := w.PrintWord(300); err != nil {
		t.Fatalf("PrintWord: %v", err)
	}
	if err := w.PrintWordX(0x1234); err != nil {
		t.Fatalf("PrintWordX: %v", err)
	}
	// 1 + 1 + 2 + 2 = 6 so far; dword does not fit, use a 3-byte tail.
	if err := w.PrintByte(1); err != nil {
		t.Fatalf("PrintByte: %v", err)
	}
	if err := w.PrintWordX(0xFFFF); err != nil {
		t.Fatalf("PrintWordX: %v", err)
	}
	mustClose(t, w)

	got := w.String()
	for _, want := range []string{"\\b12 ", "0F ", "\\w300 ", "\\wx1234 ", "\\wxFFFF "} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q in %q", want, got)
		}
	}
}

func TestDwordNotation(t *testing.T) {
	w := NewWriter(0)
	w.StartSprite(8)
	if err := w.PrintDword(70000); err != nil {
		t.Fatalf("PrintDword: %v", err)
	}
	if err := w.PrintDwordX(0xDEADBEEF); err != nil {
		t.Fatalf("PrintDwordX: %v", err)
	}
	mustClose(t, w)

	got := w.String()
	if !strings.Contains(got, "\\d70000 ") || !strings.Contains(got, "\\dxDEADBEEF ") {
		t.Errorf("output = %q", got)
	}
}

func TestNegativeValuesWrap(t *testing.T) {
	w := NewWriter(0)
	w.StartSprite(7)
	if err := w.PrintByteX(-1); err != nil {
		t.Fatalf("PrintByteX(-1): %v", err)
	}
	if err := w.PrintWordX(-2); err != nil {
		t.Fatalf("PrintWordX(-2): %v", err)
	}
	if err := w.PrintDwordX(-3); err != nil {
		t.Fatalf("PrintDwordX(-3): %v", err)
	}
	mustClose(t, w)

	got := w.String()
	for _, want := range []string{"FF ", "\\wxFFFE ", "\\dxFFFFFFFD "} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q in %q", want, got)
		}
	}
}

func TestByteOutOfRange(t *testing.T) {
	w := NewWriter(0)
	w.StartSprite(1)
	if err := w.PrintByte(256); err == nil {
		t.Error("PrintByte(256) = nil error, want range error")
	}
	if err := w.PrintByte(-129); err == nil {
		t.Error("PrintByte(-129) = nil error, want range error")
	}
	if err := w.PrintByteX(0); err != nil {
		t.Fatalf("PrintByteX: %v", err)
	}
	mustClose(t, w)
}

func TestSpriteNumbering(t *testing.T) {
	w := NewWriter(5)
	if w.SpriteNum() != 5 {
		t.Errorf("SpriteNum() = %d, want 5", w.SpriteNum())
	}

	w.StartSprite(1)
	w.PrintByteX(0)
	mustClose(t, w)
	w.StartSprite(1)
	w.PrintByteX(0)
	mustClose(t, w)

	if w.SpriteNum() != 7 {
		t.Errorf("SpriteNum() after two records = %d, want 7", w.SpriteNum())
	}
	got := w.String()
	if !strings.HasPrefix(got, "5 * 1 ") {
		t.Errorf("first record line = %q", got)
	}
	if !strings.Contains(got, "6 * 1 ") {
		t.Errorf("second record missing index 6: %q", got)
	}
}

func TestStringEmission(t *testing.T) {
	w := NewWriter(0)
	w.StartSprite(6)
	if err := w.PrintString("hello", true, false); err != nil {
		t.Fatalf("PrintString: %v", err)
	}
	mustClose(t, w)

	got := w.String()
	if !strings.Contains(got, `"hello" 00 `) {
		t.Errorf("output = %q", got)
	}
}

func TestStringQuoteEscaping(t *testing.T) {
	w := NewWriter(0)
	w.StartSprite(8)
	if err := w.PrintString(`a "b" c`, true, false); err != nil {
		t.Fatalf("PrintString: %v", err)
	}
	mustClose(t, w)

	if !strings.Contains(w.String(), `"a \"b\" c" `) {
		t.Errorf("output = %q", w.String())
	}
}

func TestUnicodeStringMarker(t *testing.T) {
	// "Zürich" is 7 UTF-8 bytes + marker + terminator = 9.
	w := NewWriter(0)
	w.StartSprite(9)
	if err := w.PrintString("Zürich", true, false); err != nil {
		t.Fatalf("PrintString: %v", err)
	}
	if got := w.SpriteBytes(); got != 9 {
		t.Errorf("SpriteBytes() = %d, want 9", got)
	}
	mustClose(t, w)

	if !strings.Contains(w.String(), `"ÞZürich" `) {
		t.Errorf("output = %q", w.String())
	}
}

func TestForceASCIIViolation(t *testing.T) {
	w := NewWriter(0)
	w.StartSprite(9)

	err := w.PrintString("Zürich", true, true)
	if err == nil {
		t.Fatal("PrintString(unicode, forceASCII) = nil error")
	}
	if !diag.IsKind(err, diag.EncodingViolation) {
		t.Errorf("error kind = %v, want EncodingViolation", err)
	}
	// Nothing was emitted or counted for the failed string.
	if w.SpriteBytes() != 0 {
		t.Errorf("SpriteBytes() = %d, want 0", w.SpriteBytes())
	}

	// The same string emits fine in a default context.
	if err := w.PrintString("Zürich", true, false); err != nil {
		t.Fatalf("PrintString(unicode) failed: %v", err)
	}
	mustClose(t, w)
}

func TestFrameSizeMismatchPanics(t *testing.T) {
	w := NewWriter(0)
	w.StartSprite(2)
	w.PrintByteX(0)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("EndSprite did not panic on underrun")
		}
		e, ok := r.(*diag.Error)
		if !ok || e.Kind != diag.FrameSizeMismatch {
			t.Errorf("panic value = %v, want FrameSizeMismatch", r)
		}
	}()
	w.EndSprite()
}

func TestEmitOutsideFramePanics(t *testing.T) {
	w := NewWriter(0)
	defer func() {
		if recover() == nil {
			t.Fatal("PrintByteX outside a frame did not panic")
		}
	}()
	w.PrintByteX(0)
}

func TestNewlineAndComment(t *testing.T) {
	w := NewWriter(0)
	w.Comment("header")
	w.StartSprite(1)
	w.PrintByteX(0)
	w.Newline("city names")
	mustClose(t, w)

	got := w.String()
	if !strings.HasPrefix(got, "// header\n") {
		t.Errorf("output = %q", got)
	}
	if !strings.Contains(got, "\t// city names\n") {
		t.Errorf("output = %q", got)
	}
}

func TestAssembleStripsTrailingSpaces(t *testing.T) {
	w := NewWriter(0)
	w.StartSprite(1)
	w.PrintByteX(0)
	w.Newline("")
	mustClose(t, w)

	if !strings.Contains(w.String(), "00 \n") {
		t.Fatalf("raw output = %q", w.String())
	}
	if strings.Contains(w.Assemble(), " \n") {
		t.Errorf("Assemble() = %q still has trailing spaces", w.Assemble())
	}
}
