package nfo

import (
	"fmt"

	"github.com/ottdtools/grfgen/pkg/diag"
)

// ZoomLevel selects the zoom an image is drawn for.
type ZoomLevel int

const (
	ZoomNormal ZoomLevel = iota
	ZoomIn4x
	ZoomIn2x
	ZoomOut2x
	ZoomOut4x
	ZoomOut8x
)

var zoomNames = map[ZoomLevel]string{
	ZoomNormal: "normal",
	ZoomIn4x:   "zi4",
	ZoomIn2x:   "zi2",
	ZoomOut2x:  "zo2",
	ZoomOut4x:  "zo4",
	ZoomOut8x:  "zo8",
}

var bitDepthNames = map[int]string{
	8:  "8bpp",
	32: "32bpp",
}

// Point is a pixel position inside an image file.
type Point struct {
	X, Y int
}

// RealSprite references one image for a given bit depth and zoom level.
type RealSprite struct {
	File     string
	BitDepth int
	Pos      Point
	Size     Point
	XRel     int
	YRel     int
	Zoom     ZoomLevel
	NoCrop   bool

	// Optional secondary mask image. MaskPos defaults to the primary
	// image position when nil.
	MaskFile string
	MaskPos  *Point
}

// PrintSprite emits one image record holding the given alternatives for
// various bit depths and zoom levels.
func (w *Writer) PrintSprite(sprites []RealSprite) error {
	// Validate keywords before the frame opens so a bad entry cannot
	// leave a half-written record behind.
	for _, s := range sprites {
		if _, ok := bitDepthNames[s.BitDepth]; !ok {
			return diag.Errorf(diag.Script, diag.Position{}, "unsupported bit depth %d for %q", s.BitDepth, s.File)
		}
		if _, ok := zoomNames[s.Zoom]; !ok {
			return diag.Errorf(diag.Script, diag.Position{}, "unsupported zoom level %d for %q", s.Zoom, s.File)
		}
	}

	w.StartRealSprite()
	for i, s := range sprites {
		w.buf.WriteString(s.File + " ")
		w.buf.WriteString(bitDepthNames[s.BitDepth] + " ")
		w.PrintDecimal(s.Pos.X)
		w.PrintDecimal(s.Pos.Y)
		w.PrintDecimal(s.Size.X)
		w.PrintDecimal(s.Size.Y)
		w.PrintDecimal(s.XRel)
		w.PrintDecimal(s.YRel)
		w.buf.WriteString(zoomNames[s.Zoom] + " ")
		if s.NoCrop {
			w.buf.WriteString("nocrop ")
		}
		if s.MaskFile != "" {
			w.Newline("")
			w.buf.WriteString("|\t")
			w.buf.WriteString(s.MaskFile)
			w.buf.WriteString(" mask ")
			mask := s.Pos
			if s.MaskPos != nil {
				mask = *s.MaskPos
			}
			w.PrintDecimal(mask.X)
			w.PrintDecimal(mask.Y)
		}
		if i+1 < len(sprites) {
			w.Newline("")
			w.buf.WriteString("|\t")
		}
	}
	w.EndSprite()
	return nil
}

// PrintEmptyRealSprite emits the one-byte placeholder record used where
// an image slot must stay empty.
func (w *Writer) PrintEmptyRealSprite() error {
	w.StartSprite(1)
	if err := w.PrintByteX(0); err != nil {
		return err
	}
	w.EndSprite()
	return nil
}

// PrintNamedFileData emits a record embedding an external data file.
func (w *Writer) PrintNamedFileData(filename string) {
	w.StartRealSprite()
	w.buf.WriteString(fmt.Sprintf("** %s", filename))
	w.EndSprite()
}
