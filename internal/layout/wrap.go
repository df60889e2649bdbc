// Package layout packs furigana segments into display lines under a width budget.
package layout

import "github.com/f3rmion/kotoba/internal/furigana"

// WidthFunc returns the display width of a single segment.
type WidthFunc func(furigana.Segment) float64

// Measurer measures main text and reading text in the same unit (cells, pixels, points).
type Measurer interface {
	TextWidth(s string) float64
	FuriganaWidth(s string) float64
}

// Options control how a segment's width is derived.
type Options struct {
	Padding      float64 // Added to every segment
	ShowFurigana bool    // When false readings take no room
}

// SegmentWidth builds a WidthFunc computing max(text, furigana) + padding.
// Furigana width is zero for unannotated segments or when readings are hidden.
func SegmentWidth(m Measurer, opts Options) WidthFunc {
	return func(s furigana.Segment) float64 {
		main := m.TextWidth(s.Text)
		var ruby float64
		if opts.ShowFurigana && s.HasFurigana() {
			ruby = m.FuriganaWidth(s.Furigana)
		}
		return max(main, ruby) + opts.Padding
	}
}

// Wrap greedily packs segments into lines no wider than available.
//
// A segment that would overflow a non-empty line starts a new one. A segment wider
// than available on its own still gets a line of its own, so lines are never empty
// and every segment is placed exactly once, in order.
func Wrap(segments []furigana.Segment, available float64, widthOf WidthFunc) [][]furigana.Segment {
	var lines [][]furigana.Segment
	var line []furigana.Segment
	var lineWidth float64

	for _, s := range segments {
		w := widthOf(s)
		if lineWidth+w > available && len(line) > 0 {
			lines = append(lines, line)
			line = nil
			lineWidth = 0
		}
		line = append(line, s)
		lineWidth += w
	}
	if len(line) > 0 {
		lines = append(lines, line)
	}

	return lines
}

// LineWidths returns the measured width of each line.
func LineWidths(lines [][]furigana.Segment, widthOf WidthFunc) []float64 {
	widths := make([]float64, len(lines))
	for i, line := range lines {
		for _, s := range line {
			widths[i] += widthOf(s)
		}
	}
	return widths
}
