// Package nfo emits the textual pseudo-assembly consumed by the
// downstream binary assembler. A Writer renders primitive values in
// escape notation, tracks an auto-incrementing record index, and enforces
// the declare-the-length-then-emit-exactly-that-many-bytes contract on
// every sized record frame.
package nfo

import (
	"fmt"
	"strings"

	"github.com/ottdtools/grfgen/pkg/diag"
	"github.com/ottdtools/grfgen/pkg/lang"
)

// Writer accumulates the text form of the output container. Values may
// only be emitted between StartSprite and EndSprite; the byte accounting
// of the open frame is checked when the frame closes.
type Writer struct {
	buf       strings.Builder
	spriteNum int

	inSprite     bool
	byteCount    int
	expectedSize int
}

// NewWriter creates a Writer whose first record gets the given index.
func NewWriter(startSpriteNum int) *Writer {
	return &Writer{spriteNum: startSpriteNum}
}

// SpriteNum returns the index the next record will receive.
func (w *Writer) SpriteNum() int { return w.spriteNum }

// SpriteBytes returns the byte count of the currently open frame.
func (w *Writer) SpriteBytes() int { return w.byteCount }

// TextLen returns the length of the accumulated text.
func (w *Writer) TextLen() int { return w.buf.Len() }

// String returns the accumulated text as written. See Assemble for the
// form handed to the assembler.
func (w *Writer) String() string { return w.buf.String() }

// Assemble returns the accumulated text with the trailing space every
// value emitter leaves before a newline stripped.
func (w *Writer) Assemble() string {
	return strings.ReplaceAll(w.buf.String(), " \n", "\n")
}

func (w *Writer) assertInSprite() {
	if !w.inSprite {
		panic(&diag.Error{Kind: diag.FrameSizeMismatch, Msg: "value emitted outside a record frame"})
	}
}

// prepareByte range-checks v as an 8-bit value and counts it against the
// open frame. Negative values in [-0x80, 0) are wrapped.
func (w *Writer) prepareByte(v int) (int, error) {
	w.assertInSprite()
	if v >= -0x80 && v < 0 {
		v += 0x100
	}
	if v < 0 || v >= 0x100 {
		return 0, diag.Errorf(diag.Script, diag.Position{}, "byte value %d out of range", v)
	}
	w.byteCount++
	return v, nil
}

func (w *Writer) prepareWord(v int) (int, error) {
	w.assertInSprite()
	if v >= -0x8000 && v < 0 {
		v += 0x10000
	}
	if v < 0 || v >= 0x10000 {
		return 0, diag.Errorf(diag.Script, diag.Position{}, "word value %d out of range", v)
	}
	w.byteCount += 2
	return v, nil
}

func (w *Writer) prepareDword(v int64) (int64, error) {
	w.assertInSprite()
	if v >= -0x80000000 && v < 0 {
		v += 0x100000000
	}
	if v < 0 || v >= 0x100000000 {
		return 0, diag.Errorf(diag.Script, diag.Position{}, "dword value %d out of range", v)
	}
	w.byteCount += 4
	return v, nil
}

// PrintByte emits a byte in decimal escape form.
func (w *Writer) PrintByte(v int) error {
	v, err := w.prepareByte(v)
	if err != nil {
		return err
	}
	fmt.Fprintf(&w.buf, "\\b%d ", v)
	return nil
}

// PrintByteX emits a byte as a two-digit hex literal.
func (w *Writer) PrintByteX(v int) error {
	v, err := w.prepareByte(v)
	if err != nil {
		return err
	}
	fmt.Fprintf(&w.buf, "%02X ", v)
	return nil
}

// PrintWord emits a word in decimal escape form.
func (w *Writer) PrintWord(v int) error {
	v, err := w.prepareWord(v)
	if err != nil {
		return err
	}
	fmt.Fprintf(&w.buf, "\\w%d ", v)
	return nil
}

// PrintWordX emits a word as a fixed-width hex escape.
func (w *Writer) PrintWordX(v int) error {
	v, err := w.prepareWord(v)
	if err != nil {
		return err
	}
	fmt.Fprintf(&w.buf, "\\wx%04X ", v)
	return nil
}

// PrintDword emits a dword in decimal escape form.
func (w *Writer) PrintDword(v int64) error {
	v, err := w.prepareDword(v)
	if err != nil {
		return err
	}
	fmt.Fprintf(&w.buf, "\\d%d ", v)
	return nil
}

// PrintDwordX emits a dword as a fixed-width hex escape.
func (w *Writer) PrintDwordX(v int64) error {
	v, err := w.prepareDword(v)
	if err != nil {
		return err
	}
	fmt.Fprintf(&w.buf, "\\dx%08X ", v)
	return nil
}

// PrintString emits a quoted string literal. A string with non-ASCII
// content is prefixed with the unicode marker unless forceASCII is set,
// in which case it fails with an encoding violation. When finalZero is
// set a terminator byte follows the literal.
func (w *Writer) PrintString(value string, finalZero, forceASCII bool) error {
	w.assertInSprite()
	if forceASCII && !lang.IsASCII(value) {
		return diag.Errorf(diag.EncodingViolation, diag.Position{}, "expected ascii string but got a unicode string")
	}

	w.buf.WriteString(`"`)
	if !lang.IsASCII(value) {
		w.buf.WriteString("Þ")
	}
	w.buf.WriteString(strings.ReplaceAll(value, `"`, `\"`))
	w.byteCount += lang.StringSize(value, finalZero)
	w.buf.WriteString(`" `)
	if finalZero {
		// StringSize already counted the terminator; PrintByteX counts
		// it again, so take one back.
		if err := w.PrintByteX(0); err != nil {
			return err
		}
		w.byteCount--
	}
	return nil
}

// PrintDecimal emits a bare decimal number. It does not consume frame
// bytes; it is used for record indexes and image geometry.
func (w *Writer) PrintDecimal(v int) {
	w.assertInSprite()
	fmt.Fprintf(&w.buf, "%d ", v)
}

// Newline terminates the current line. A non-empty msg is appended as a
// tab-indented comment first.
func (w *Writer) Newline(msg string) {
	if msg != "" {
		w.buf.WriteString("\t// " + msg)
	}
	w.buf.WriteString("\n")
}

// Comment writes a full-line comment.
func (w *Writer) Comment(msg string) {
	w.buf.WriteString("// " + msg + "\n")
}

// Raw writes text without byte accounting. Callers own the consequences
// for the open frame's size.
func (w *Writer) Raw(text string) {
	w.buf.WriteString(text)
}

// StartSprite opens a sized record frame: the record index followed by
// the declared byte length. Exactly size bytes must be emitted before
// EndSprite.
func (w *Writer) StartSprite(size int) {
	w.startFrame(size)
	w.PrintDecimal(w.spriteNum)
	w.spriteNum++
	w.buf.WriteString("* ")
	w.PrintDecimal(size)
}

// StartRealSprite opens an image record frame, which carries no declared
// byte length.
func (w *Writer) StartRealSprite() {
	w.startFrame(0)
	w.PrintDecimal(w.spriteNum)
	w.spriteNum++
}

func (w *Writer) startFrame(size int) {
	if w.inSprite {
		panic(&diag.Error{Kind: diag.FrameSizeMismatch, Msg: "record frame opened inside an open frame"})
	}
	w.inSprite = true
	w.expectedSize = size
	w.byteCount = 0
}

// EndSprite closes the open frame. A mismatch between the declared
// length and the bytes written is an implementation defect and panics.
func (w *Writer) EndSprite() {
	w.assertInSprite()
	w.inSprite = false
	if w.byteCount != w.expectedSize {
		panic(&diag.Error{
			Kind: diag.FrameSizeMismatch,
			Msg:  fmt.Sprintf("record declared %d bytes but wrote %d", w.expectedSize, w.byteCount),
		})
	}
}
