package japanese

import "regexp"

// Annotation delimiters. Readings are stored inline as kanji[reading]; brackets do not nest.
const (
	OpenBracket  = '['
	CloseBracket = ']'
)

// annotationPattern matches one bracketed span up to the first closing bracket,
// capturing the reading.
var annotationPattern = regexp.MustCompile(`\[([^\]]*)\]`)

// FindAnnotations returns the byte offsets of every [reading] span in text as
// {start, end, readingStart, readingEnd} quadruples, in order of appearance.
func FindAnnotations(text string) [][]int {
	return annotationPattern.FindAllStringSubmatchIndex(text, -1)
}

// AnnotatedRunAt checks whether an annotated ideograph run starts at runes[i].
// It consumes the longest ideograph run from i; the run must be non-empty and be
// followed immediately by '[' with a later ']'. On success it returns the end of
// the run (exclusive), the index of the closing bracket, and true.
func AnnotatedRunAt(runes []rune, i int) (runEnd, closeIdx int, ok bool) {
	j := i
	for j < len(runes) && IsIdeograph(runes[j]) {
		j++
	}
	if j == i || j >= len(runes) || runes[j] != OpenBracket {
		return 0, 0, false
	}
	for k := j + 1; k < len(runes); k++ {
		if runes[k] == CloseBracket {
			return j, k, true
		}
	}
	return 0, 0, false
}

// StripAnnotations removes every [...] span, leaving the preceding text untouched.
// A '[' with no closing ']' is kept as ordinary text.
func StripAnnotations(text string) string {
	return annotationPattern.ReplaceAllString(text, "")
}

// ReadingForm replaces every annotated ideograph run with its bracketed reading,
// so "食[た]べる" becomes "たべる". Text without annotations is returned unchanged.
func ReadingForm(text string) string {
	runes := []rune(text)
	out := make([]rune, 0, len(runes))
	for i := 0; i < len(runes); {
		if runEnd, closeIdx, ok := AnnotatedRunAt(runes, i); ok {
			out = append(out, runes[runEnd+1:closeIdx]...)
			i = closeIdx + 1
			continue
		}
		out = append(out, runes[i])
		i++
	}
	return string(out)
}
