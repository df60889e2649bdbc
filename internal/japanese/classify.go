// Package japanese classifies Japanese characters and canonicalises annotated text
// for comparison and speech output.
package japanese

// Class is the script class of a single character.
type Class int

const (
	Other Class = iota
	Hiragana
	Katakana
	Ideograph
)

// String returns a lowercase name for the class.
func (c Class) String() string {
	switch c {
	case Hiragana:
		return "hiragana"
	case Katakana:
		return "katakana"
	case Ideograph:
		return "ideograph"
	default:
		return "other"
	}
}

// Unicode block bounds.
const (
	hiraganaStart = 0x3040
	hiraganaEnd   = 0x309F
	katakanaStart = 0x30A0
	katakanaEnd   = 0x30FF
	cjkStart      = 0x4E00
	cjkEnd        = 0x9FAF
	cjkExtAStart  = 0x3400
	cjkExtAEnd    = 0x4DBF
	iterationMark = 0x3005 // 々
)

// Classify returns the script class of r. Every other package goes through this
// function instead of testing ranges itself.
func Classify(r rune) Class {
	switch {
	case r >= hiraganaStart && r <= hiraganaEnd:
		return Hiragana
	case r >= katakanaStart && r <= katakanaEnd:
		return Katakana
	case r >= cjkStart && r <= cjkEnd,
		r >= cjkExtAStart && r <= cjkExtAEnd,
		r == iterationMark:
		return Ideograph
	default:
		return Other
	}
}

// IsIdeograph reports whether r is a kanji (including 々).
func IsIdeograph(r rune) bool {
	return Classify(r) == Ideograph
}

// IsKana reports whether r is hiragana or katakana.
func IsKana(r rune) bool {
	c := Classify(r)
	return c == Hiragana || c == Katakana
}

// IsJapanese reports whether r is hiragana, katakana or an ideograph.
func IsJapanese(r rune) bool {
	return Classify(r) != Other
}

// ContainsJapanese reports whether text has at least one Japanese character.
func ContainsJapanese(text string) bool {
	for _, r := range text {
		if IsJapanese(r) {
			return true
		}
	}
	return false
}
