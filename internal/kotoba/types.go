// Package kotoba provides the core study types shared by the quiz engines, the store and the importers.
package kotoba

import (
	"strings"
	"time"
)

// Level is a JLPT difficulty tier.
type Level string

const (
	LevelN5  Level = "N5" // Easiest
	LevelN4  Level = "N4"
	LevelN3  Level = "N3"
	LevelN2  Level = "N2"
	LevelN1  Level = "N1" // Hardest
	LevelAll Level = "ALL"
)

// Levels lists the selectable levels in display order, wildcard first.
var Levels = []Level{LevelAll, LevelN5, LevelN4, LevelN3, LevelN2, LevelN1}

// ParseLevel normalises user input ("n3", " N3 ", "all", "") to a Level.
// Unknown values map to LevelAll.
func ParseLevel(s string) Level {
	switch l := Level(strings.ToUpper(strings.TrimSpace(s))); l {
	case LevelN5, LevelN4, LevelN3, LevelN2, LevelN1:
		return l
	default:
		return LevelAll
	}
}

// Matches reports whether an item at level item passes this level filter.
func (l Level) Matches(item Level) bool {
	return l == LevelAll || l == "" || l == item
}

// Next returns the level after l in Levels, wrapping around.
func (l Level) Next() Level {
	for i, lv := range Levels {
		if lv == l {
			return Levels[(i+1)%len(Levels)]
		}
	}
	return LevelAll
}

// ItemKind distinguishes kanji entries from vocabulary entries.
type ItemKind string

const (
	KindKanji ItemKind = "kanji"
	KindWord  ItemKind = "word"
)

// StudyItem is a kanji or word entry in the study catalog.
type StudyItem struct {
	ID             int64     `yaml:"id" json:"id"`
	Kind           ItemKind  `yaml:"kind" json:"kind"`
	Text           string    `yaml:"text" json:"text"`         // Primary written form (e.g., "学生")
	Readings       []string  `yaml:"readings" json:"readings"` // Kana readings, first is canonical
	Meaning        string    `yaml:"meaning" json:"meaning"`
	Level          Level     `yaml:"level" json:"level"`
	LearningWeight float64   `yaml:"learning_weight" json:"learning_weight"` // Higher is more due for review
	LastUpdatedAt  time.Time `yaml:"last_updated_at,omitempty" json:"last_updated_at,omitempty"`
}

// Reading returns the canonical reading, or "" when the item has none.
func (s StudyItem) Reading() string {
	if len(s.Readings) == 0 {
		return ""
	}
	return s.Readings[0]
}

// Paragraph is an annotated reading passage used for fill-in-the-blank quizzes.
type Paragraph struct {
	ID          string `yaml:"id" json:"id"`
	Text        string `yaml:"text" json:"text"` // Annotated with kanji[reading]
	Translation string `yaml:"translation" json:"translation"`
	Level       Level  `yaml:"level,omitempty" json:"level,omitempty"`
	Title       string `yaml:"title,omitempty" json:"title,omitempty"`
}
