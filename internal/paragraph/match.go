package paragraph

import (
	"strings"
	"unicode/utf8"

	"github.com/f3rmion/kotoba/internal/japanese"
)

// Tier identifies which rule accepted an answer. Tiers are tried in order and the
// first success wins.
type Tier int

const (
	NoMatch Tier = iota
	// ExactMatch: the utterance is exactly the answer.
	ExactMatch
	// BoundaryMatch: answers of 2+ characters found with no kana/kanji directly
	// before or after the occurrence.
	BoundaryMatch
	// SingleCharMatch: 1-character answers found anywhere.
	SingleCharMatch
	// LooseMatch: answers of 3+ characters found anywhere.
	LooseMatch
)

// String names the tier for logs.
func (t Tier) String() string {
	switch t {
	case ExactMatch:
		return "exact"
	case BoundaryMatch:
		return "boundary"
	case SingleCharMatch:
		return "single-char"
	case LooseMatch:
		return "loose"
	default:
		return "none"
	}
}

// Match tests a normalized answer against a normalized utterance.
//
// The precedence is heuristic: single characters and long readings may match
// inside unrelated words of the utterance. It is kept as is; tests pin it.
func Match(recognized, answer string) Tier {
	if answer == "" || recognized == "" {
		return NoMatch
	}
	if recognized == answer {
		return ExactMatch
	}

	n := utf8.RuneCountInString(answer)
	if n >= 2 && containsAtBoundary(recognized, answer) {
		return BoundaryMatch
	}
	if n == 1 && strings.Contains(recognized, answer) {
		return SingleCharMatch
	}
	if n >= 3 && strings.Contains(recognized, answer) {
		return LooseMatch
	}
	return NoMatch
}

// containsAtBoundary reports whether any occurrence of answer in text is flanked
// by the string edge or a non-Japanese character on both sides.
func containsAtBoundary(text, answer string) bool {
	for offset := 0; offset <= len(text); {
		i := strings.Index(text[offset:], answer)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(answer)

		before, _ := utf8.DecodeLastRuneInString(text[:start])
		after, _ := utf8.DecodeRuneInString(text[end:])
		if (start == 0 || !japanese.IsJapanese(before)) && (end == len(text) || !japanese.IsJapanese(after)) {
			return true
		}

		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
	return false
}
