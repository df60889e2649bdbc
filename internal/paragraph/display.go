package paragraph

import (
	"unicode/utf8"

	"github.com/f3rmion/kotoba/internal/furigana"
	"github.com/f3rmion/kotoba/internal/japanese"
)

// Segments lays the paragraph out as furigana segments for display. Every blank
// becomes one annotated segment over the kanji run before it (possibly empty);
// its reading is the filled answer, or hidden(answer) while unfilled.
func (s State) Segments(hidden func(answer string) string) []furigana.Segment {
	var out []furigana.Segment
	last := 0
	for _, b := range s.Blanks {
		prefix := s.Original[last:b.Start]
		run := trailingIdeographs(prefix)
		out = append(out, furigana.Parse(prefix[:run])...)

		reading, ok := s.filled[b.Index]
		if !ok {
			reading = hidden(b.Answer)
		}
		out = append(out, furigana.Segment{Text: prefix[run:], Furigana: reading, Annotated: true})
		last = b.End
	}
	return append(out, furigana.Parse(s.Original[last:])...)
}

// trailingIdeographs returns the byte offset where the kanji run ending text starts.
func trailingIdeographs(text string) int {
	i := len(text)
	for i > 0 {
		r, size := utf8.DecodeLastRuneInString(text[:i])
		if !japanese.IsIdeograph(r) {
			break
		}
		i -= size
	}
	return i
}
