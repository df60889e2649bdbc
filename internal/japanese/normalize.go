package japanese

import (
	"strings"
	"unicode"
)

// commas are replaced by a space so a synthesizer pauses instead of reading them.
var commas = strings.NewReplacer(
	"、", " ", // ideographic comma
	"､", " ", // halfwidth ideographic comma
	"，", " ", // fullwidth comma
	",", " ",
)

// speakablePunctuation is kept verbatim by ExtractSpeakable.
const speakablePunctuation = "。．！？「」『』（）・ー〜…"

// ExtractSpeakable prepares annotated text for a speech synthesizer. Annotations
// are stripped, commas become spaces, and only kana, kanji, ASCII letters and
// digits, fullwidth digits, common Japanese punctuation and spaces survive
// (Hangul and other scripts are dropped). An empty result means nothing to speak.
func ExtractSpeakable(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	text = commas.Replace(StripAnnotations(text))

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if speakable(r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

func speakable(r rune) bool {
	switch {
	case IsJapanese(r):
		return true
	case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
		return true
	case r >= '０' && r <= '９':
		return true
	case r == ' ' || r == '　':
		return true
	default:
		return strings.ContainsRune(speakablePunctuation, r)
	}
}

// NormalizeForComparison returns the canonical form used for answer matching:
// annotated kanji runs are replaced by their readings, any remaining annotations
// are stripped, and only kana and kanji are kept, lower-cased and trimmed.
func NormalizeForComparison(text string) string {
	text = StripAnnotations(ReadingForm(text))

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if IsJapanese(r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(strings.ToLower(b.String()))
}

// KatakanaToHiragana folds katakana letters onto their hiragana counterparts.
// Prolonged sound marks and other characters are left alone.
func KatakanaToHiragana(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if r >= 0x30A1 && r <= 0x30F6 {
			runes[i] = r - 0x60
		}
	}
	return string(runes)
}
