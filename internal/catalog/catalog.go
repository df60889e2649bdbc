// Package catalog loads study items and paragraphs from JSON Lines files.
package catalog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/f3rmion/kotoba/internal/japanese"
	"github.com/f3rmion/kotoba/internal/kotoba"
)

// maxLineSize bounds a single JSONL record.
const maxLineSize = 1 << 20

// Stats counts what a load kept and skipped.
type Stats struct {
	Read    int
	Skipped int
}

// itemRecord is one line of an items file, e.g.
//
//	{"kind":"word","text":"学生","readings":["がくせい"],"meaning":"student","level":"N5"}
//
// Readings may be omitted when text is annotated ("学生[がくせい]").
type itemRecord struct {
	Kind     string   `json:"kind"`
	Text     string   `json:"text"`
	Readings []string `json:"readings"`
	Meaning  string   `json:"meaning"`
	Level    string   `json:"level"`
}

// paragraphRecord is one line of a paragraphs file.
type paragraphRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Text        string `json:"text"`
	Translation string `json:"translation"`
	Level       string `json:"level"`
}

// LoadItems reads study items from a JSONL file.
func LoadItems(path string) ([]kotoba.StudyItem, Stats, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("opening items file: %w", err)
	}
	defer file.Close()
	return ReadItems(file)
}

// ReadItems reads study items, one JSON object per line. Blank lines are ignored;
// malformed or invalid records are skipped and counted.
func ReadItems(r io.Reader) ([]kotoba.StudyItem, Stats, error) {
	var (
		items []kotoba.StudyItem
		stats Stats
	)
	err := scanLines(r, func(line []byte) {
		var rec itemRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			stats.Skipped++
			return
		}
		item, ok := rec.toItem()
		if !ok {
			stats.Skipped++
			return
		}
		stats.Read++
		items = append(items, item)
	})
	if err != nil {
		return nil, stats, fmt.Errorf("reading items: %w", err)
	}
	return items, stats, nil
}

func (rec itemRecord) toItem() (kotoba.StudyItem, bool) {
	text := strings.TrimSpace(rec.Text)
	readings := lo.Uniq(lo.Compact(lo.Map(rec.Readings, func(s string, _ int) string {
		return strings.TrimSpace(s)
	})))
	if len(japanese.FindAnnotations(text)) > 0 {
		if len(readings) == 0 {
			readings = []string{japanese.ReadingForm(text)}
		}
		text = japanese.StripAnnotations(text)
	}
	if text == "" {
		return kotoba.StudyItem{}, false
	}

	level, ok := parseLevel(rec.Level)
	if !ok {
		return kotoba.StudyItem{}, false
	}

	kind := kotoba.ItemKind(strings.ToLower(strings.TrimSpace(rec.Kind)))
	switch kind {
	case kotoba.KindKanji, kotoba.KindWord:
	case "":
		kind = guessKind(text)
	default:
		return kotoba.StudyItem{}, false
	}

	return kotoba.StudyItem{
		Kind:     kind,
		Text:     text,
		Readings: readings,
		Meaning:  strings.TrimSpace(rec.Meaning),
		Level:    level,
	}, true
}

// guessKind treats a single ideograph as a kanji entry and anything else as a word.
func guessKind(text string) kotoba.ItemKind {
	r, size := utf8.DecodeRuneInString(text)
	if size == len(text) && japanese.IsIdeograph(r) {
		return kotoba.KindKanji
	}
	return kotoba.KindWord
}

// parseLevel accepts N1..N5 in any case; an empty level means N5.
func parseLevel(s string) (kotoba.Level, bool) {
	if strings.TrimSpace(s) == "" {
		return kotoba.LevelN5, true
	}
	level := kotoba.ParseLevel(s)
	return level, level != kotoba.LevelAll
}

// LoadParagraphs reads paragraphs from a JSONL file.
func LoadParagraphs(path string) ([]kotoba.Paragraph, Stats, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("opening paragraphs file: %w", err)
	}
	defer file.Close()
	return ReadParagraphs(file)
}

// ReadParagraphs reads paragraphs, one JSON object per line. Records without text
// are skipped; records without an id get a random UUID.
func ReadParagraphs(r io.Reader) ([]kotoba.Paragraph, Stats, error) {
	var (
		paras []kotoba.Paragraph
		stats Stats
	)
	err := scanLines(r, func(line []byte) {
		var rec paragraphRecord
		if err := json.Unmarshal(line, &rec); err != nil || strings.TrimSpace(rec.Text) == "" {
			stats.Skipped++
			return
		}
		id := strings.TrimSpace(rec.ID)
		if id == "" {
			id = uuid.NewString()
		}
		// Paragraphs without a concrete level show under every filter.
		var level kotoba.Level
		if l := kotoba.ParseLevel(rec.Level); l != kotoba.LevelAll {
			level = l
		}
		stats.Read++
		paras = append(paras, kotoba.Paragraph{
			ID:          id,
			Title:       strings.TrimSpace(rec.Title),
			Text:        strings.TrimSpace(rec.Text),
			Translation: strings.TrimSpace(rec.Translation),
			Level:       level,
		})
	})
	if err != nil {
		return nil, stats, fmt.Errorf("reading paragraphs: %w", err)
	}
	return paras, stats, nil
}

func scanLines(r io.Reader, fn func(line []byte)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		fn(line)
	}
	return scanner.Err()
}
