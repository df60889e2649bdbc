// Package furigana parses text carrying inline kanji[reading] annotations into renderable segments.
package furigana

import (
	"strings"

	"github.com/f3rmion/kotoba/internal/japanese"
)

// Segment is a leaf unit of parsed text.
//
// An annotated segment holds one or more consecutive kanji and the reading that
// followed them in brackets. Every other segment is exactly one character.
type Segment struct {
	Text      string `json:"text"`
	Furigana  string `json:"furigana,omitempty"`
	Annotated bool   `json:"annotated"` // Furigana is present (it may still be "")
}

// HasFurigana reports whether the segment carries a reading.
func (s Segment) HasFurigana() bool {
	return s.Annotated
}

// Parse converts annotated text into an ordered sequence of segments.
//
// At each position the longest kanji run is tried; when it is followed by '[' and
// a later ']' the run becomes one annotated segment and scanning resumes after the
// bracket. Otherwise a single character is emitted and the look-ahead is retried
// at the next position, so malformed input (an unterminated bracket) always makes
// progress and is kept as literal text.
func Parse(text string) []Segment {
	runes := []rune(text)
	segments := make([]Segment, 0, len(runes))

	for i := 0; i < len(runes); {
		if runEnd, closeIdx, ok := japanese.AnnotatedRunAt(runes, i); ok {
			segments = append(segments, Segment{
				Text:      string(runes[i:runEnd]),
				Furigana:  string(runes[runEnd+1 : closeIdx]),
				Annotated: true,
			})
			i = closeIdx + 1
			continue
		}
		segments = append(segments, Segment{Text: string(runes[i])})
		i++
	}

	return segments
}

// PlainText concatenates the segment texts, dropping readings.
func PlainText(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Annotate renders segments back into kanji[reading] form.
func Annotate(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.Text)
		if s.Annotated {
			b.WriteRune(japanese.OpenBracket)
			b.WriteString(s.Furigana)
			b.WriteRune(japanese.CloseBracket)
		}
	}
	return b.String()
}

// Readings returns the readings of all annotated segments, in order.
func Readings(segments []Segment) []string {
	var readings []string
	for _, s := range segments {
		if s.Annotated {
			readings = append(readings, s.Furigana)
		}
	}
	return readings
}
