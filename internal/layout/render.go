package layout

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/f3rmion/kotoba/internal/furigana"
)

// RenderRuby draws wrapped lines for a terminal. Each segment takes the cell
// width widthOf gives it; with showFurigana a row of readings is printed above
// each row of text.
func RenderRuby(lines [][]furigana.Segment, widthOf WidthFunc, showFurigana bool) string {
	rows := make([]string, 0, len(lines)*2)
	for _, line := range lines {
		var top, bottom strings.Builder
		for _, s := range line {
			w := int(widthOf(s))
			bottom.WriteString(runewidth.FillRight(s.Text, w))
			if showFurigana {
				var reading string
				if s.HasFurigana() {
					reading = s.Furigana
				}
				top.WriteString(runewidth.FillRight(reading, w))
			}
		}
		if showFurigana {
			rows = append(rows, strings.TrimRight(top.String(), " "))
		}
		rows = append(rows, strings.TrimRight(bottom.String(), " "))
	}
	return strings.Join(rows, "\n")
}
