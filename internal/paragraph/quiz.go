// Package paragraph builds fill-in-the-blank quizzes from annotated paragraphs and
// fills blanks from recognized speech.
package paragraph

import (
	"strings"

	"github.com/f3rmion/kotoba/internal/japanese"
)

// Blank is one fill-in slot, created for every [reading] in the paragraph.
type Blank struct {
	Index  int    `json:"index"`
	Answer string `json:"answer"` // Bracket contents, verbatim
	Start  int    `json:"start"`  // Byte offset of '[' in the original text
	End    int    `json:"end"`    // Byte offset just past ']'
}

// State is an immutable snapshot of a paragraph quiz. Fill returns a new snapshot;
// the receiver is never modified, so a renderer holding an older value is safe.
type State struct {
	ParagraphID string
	Original    string
	Translation string
	Blanks      []Blank

	filled map[int]string
}

// Generate creates a quiz with one blank per bracketed reading, whether or not a
// kanji run precedes it. Blank indices are dense and follow appearance order.
func Generate(paragraphID, translation, annotated string) State {
	matches := japanese.FindAnnotations(annotated)
	blanks := make([]Blank, len(matches))
	for i, m := range matches {
		blanks[i] = Blank{
			Index:  i,
			Answer: annotated[m[2]:m[3]],
			Start:  m[0],
			End:    m[1],
		}
	}
	return State{
		ParagraphID: paragraphID,
		Original:    annotated,
		Translation: translation,
		Blanks:      blanks,
	}
}

// Fill checks every unfilled blank, in index order, against one recognized
// utterance and returns the new state plus the answers it filled. One utterance
// may fill several blanks. Filled blanks are never changed or removed.
func (s State) Fill(recognized string) (State, []string) {
	heard := japanese.NormalizeForComparison(recognized)
	if heard == "" {
		return s, nil
	}

	var newly []string
	next := s
	for _, b := range s.Blanks {
		if _, done := s.filled[b.Index]; done {
			continue
		}
		if Match(heard, japanese.NormalizeForComparison(b.Answer)) == NoMatch {
			continue
		}
		if newly == nil {
			next.filled = make(map[int]string, len(s.filled)+1)
			for k, v := range s.filled {
				next.filled[k] = v
			}
		}
		next.filled[b.Index] = b.Answer
		newly = append(newly, b.Answer)
	}
	return next, newly
}

// Filled returns the recorded answer for blank index.
func (s State) Filled(index int) (string, bool) {
	v, ok := s.filled[index]
	return v, ok
}

// FilledCount returns how many blanks have been filled.
func (s State) FilledCount() int {
	return len(s.filled)
}

// Progress returns the filled fraction, 0 when there are no blanks.
func (s State) Progress() float64 {
	if len(s.Blanks) == 0 {
		return 0
	}
	return float64(len(s.filled)) / float64(len(s.Blanks))
}

// IsComplete reports whether every blank is filled.
func (s State) IsComplete() bool {
	return len(s.filled) == len(s.Blanks)
}

// Masked renders the original text with each unfilled reading replaced by
// placeholder and each filled one shown in brackets.
func (s State) Masked(placeholder string) string {
	var b strings.Builder
	last := 0
	for _, blank := range s.Blanks {
		b.WriteString(s.Original[last:blank.Start])
		if answer, ok := s.filled[blank.Index]; ok {
			b.WriteRune(japanese.OpenBracket)
			b.WriteString(answer)
			b.WriteRune(japanese.CloseBracket)
		} else {
			b.WriteString(placeholder)
		}
		last = blank.End
	}
	b.WriteString(s.Original[last:])
	return b.String()
}
