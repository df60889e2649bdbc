package layout

import (
	"github.com/f3rmion/kotoba/internal/glyph"
	"github.com/mattn/go-runewidth"
)

// TerminalMeasurer measures in terminal cells. Readings are printed on their own
// row at full cell width, so they are measured exactly like the main text.
type TerminalMeasurer struct{}

// TextWidth returns the cell width of s (kanji and kana are two cells wide).
func (TerminalMeasurer) TextWidth(s string) float64 {
	return float64(runewidth.StringWidth(s))
}

// FuriganaWidth returns the cell width of a reading.
func (TerminalMeasurer) FuriganaWidth(s string) float64 {
	return float64(runewidth.StringWidth(s))
}

// FontMeasurer measures in pixels using a loaded font face. Readings are drawn
// at FuriganaScale of the main size, the usual ruby ratio being 0.5.
type FontMeasurer struct {
	Face          *glyph.Face
	FuriganaScale float64
}

// NewFontMeasurer returns a measurer with the conventional half-size ruby.
func NewFontMeasurer(face *glyph.Face) FontMeasurer {
	return FontMeasurer{Face: face, FuriganaScale: 0.5}
}

// TextWidth returns the advance of s in pixels.
func (m FontMeasurer) TextWidth(s string) float64 {
	return m.Face.Advance(s)
}

// FuriganaWidth returns the scaled advance of a reading in pixels.
func (m FontMeasurer) FuriganaWidth(s string) float64 {
	return m.Face.Advance(s) * m.FuriganaScale
}
