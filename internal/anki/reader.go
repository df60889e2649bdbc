// Package anki imports vocabulary from Anki .apkg decks.
package anki

import (
	"archive/zip"
	"database/sql"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/samber/lo"
	_ "modernc.org/sqlite"

	"github.com/f3rmion/kotoba/internal/japanese"
	"github.com/f3rmion/kotoba/internal/kotoba"
)

// fieldSeparator splits a note's flds column.
const fieldSeparator = "\x1f"

// Model is an Anki note type.
type Model struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Fields []Field `json:"flds"`
}

// Field is one field of a note type.
type Field struct {
	Name string `json:"name"`
	Ord  int    `json:"ord"`
}

// Note is an Anki note with its fields keyed by name.
type Note struct {
	ID     int64
	Model  string
	Tags   []string
	Fields map[string]string
}

// Get returns a field by case-insensitive name.
func (n Note) Get(name string) string {
	for k, v := range n.Fields {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// Deck is the contents of an .apkg file.
type Deck struct {
	Path   string
	Models map[int64]*Model
	Notes  []Note
}

// Open reads every note of an .apkg file. The archive is unpacked into a temporary
// directory that is removed before Open returns.
func Open(path string) (*Deck, error) {
	tempDir, err := os.MkdirTemp("", "kotoba-anki-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	if err := extract(path, tempDir); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(tempDir, "collection.anki21")
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		dbPath = filepath.Join(tempDir, "collection.anki2")
	}
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("finding collection: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening collection: %w", err)
	}
	defer db.Close()

	deck := &Deck{Path: path, Models: make(map[int64]*Model)}
	if err := deck.loadModels(db); err != nil {
		return nil, err
	}
	if err := deck.loadNotes(db); err != nil {
		return nil, err
	}
	return deck, nil
}

// extract unzips an .apkg archive into dir.
func extract(path, dir string) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("opening zip: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		fpath := filepath.Join(dir, f.Name)

		// Prevent zip slip
		if !strings.HasPrefix(fpath, filepath.Clean(dir)+string(os.PathSeparator)) {
			return fmt.Errorf("illegal file path: %s", fpath)
		}
		if f.FileInfo().IsDir() {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(fpath), 0755); err != nil {
			return err
		}
		if err := copyFile(f, fpath); err != nil {
			return fmt.Errorf("extracting %s: %w", f.Name, err)
		}
	}
	return nil
}

func copyFile(f *zip.File, dst string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// loadModels reads note types from the col table.
func (d *Deck) loadModels(db *sql.DB) error {
	var models string
	if err := db.QueryRow("SELECT models FROM col").Scan(&models); err != nil {
		return fmt.Errorf("reading collection: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(models), &raw); err != nil {
		return fmt.Errorf("parsing models: %w", err)
	}
	for _, data := range raw {
		var m Model
		if err := json.Unmarshal(data, &m); err != nil {
			continue // Skip malformed models
		}
		d.Models[m.ID] = &m
	}
	return nil
}

// loadNotes reads notes and names their fields from the note type.
func (d *Deck) loadNotes(db *sql.DB) error {
	rows, err := db.Query("SELECT id, mid, tags, flds FROM notes ORDER BY id")
	if err != nil {
		return fmt.Errorf("querying notes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, mid    int64
			tags, flds string
		)
		if err := rows.Scan(&id, &mid, &tags, &flds); err != nil {
			return fmt.Errorf("scanning note: %w", err)
		}
		values := strings.Split(flds, fieldSeparator)
		note := Note{ID: id, Tags: strings.Fields(tags), Fields: make(map[string]string)}
		if m, ok := d.Models[mid]; ok {
			note.Model = m.Name
			for _, f := range m.Fields {
				if f.Ord < len(values) {
					note.Fields[f.Name] = values[f.Ord]
				}
			}
		} else {
			for i, v := range values {
				note.Fields[fmt.Sprintf("field%d", i)] = v
			}
		}
		d.Notes = append(d.Notes, note)
	}
	return rows.Err()
}

// Mapping names the note fields that hold each part of a study item. Reading may
// be empty when Expression carries kanji[reading] annotations.
type Mapping struct {
	Expression string `yaml:"expression" mapstructure:"expression"`
	Reading    string `yaml:"reading" mapstructure:"reading"`
	Meaning    string `yaml:"meaning" mapstructure:"meaning"`
}

// DefaultMapping matches the common "Japanese core" deck layout.
var DefaultMapping = Mapping{Expression: "Expression", Reading: "Reading", Meaning: "Meaning"}

var (
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	soundPattern = regexp.MustCompile(`\[sound:[^\]]*\]`)
)

// CleanField turns an HTML field value into plain text.
func CleanField(s string) string {
	s = soundPattern.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "<br>", " ")
	s = tagPattern.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}

// StudyItems converts notes into study items of kind at level. Notes with no
// Japanese in the expression field are skipped. Readings are taken from the
// reading field (split on commas) or, failing that, from annotations in the
// expression.
func (d *Deck) StudyItems(m Mapping, kind kotoba.ItemKind, level kotoba.Level) []kotoba.StudyItem {
	return lo.FilterMap(d.Notes, func(n Note, _ int) (kotoba.StudyItem, bool) {
		expr := CleanField(n.Get(m.Expression))
		if !japanese.ContainsJapanese(expr) {
			return kotoba.StudyItem{}, false
		}

		var readings []string
		if m.Reading != "" {
			raw := CleanField(n.Get(m.Reading))
			if japanese.ContainsJapanese(raw) {
				raw = japanese.ReadingForm(raw)
			}
			readings = splitReadings(raw)
		}
		if len(readings) == 0 && len(japanese.FindAnnotations(expr)) > 0 {
			readings = []string{japanese.ReadingForm(expr)}
		}

		return kotoba.StudyItem{
			Kind:     kind,
			Text:     japanese.StripAnnotations(expr),
			Readings: readings,
			Meaning:  CleanField(n.Get(m.Meaning)),
			Level:    level,
		}, true
	})
}

func splitReadings(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '、' || r == '，' || r == ';'
	})
	return lo.Uniq(lo.Compact(lo.Map(parts, func(p string, _ int) string {
		return strings.TrimSpace(p)
	})))
}
