// Package store keeps the study catalog, learning weights and paragraphs in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/lo"
	_ "modernc.org/sqlite"

	"github.com/f3rmion/kotoba/internal/kotoba"
	"github.com/f3rmion/kotoba/internal/paragraph"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// DefaultPoolSize caps the learning-mode distractor pool.
const DefaultPoolSize = 15

// DefaultPriorityLimit caps how many priority items one learning queue holds.
const DefaultPriorityLimit = 50

const schema = `
CREATE TABLE IF NOT EXISTS items (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	kind            TEXT    NOT NULL,
	text            TEXT    NOT NULL,
	readings        TEXT    NOT NULL DEFAULT '[]',
	meaning         TEXT    NOT NULL DEFAULT '',
	level           TEXT    NOT NULL DEFAULT 'N5',
	learning_weight REAL    NOT NULL DEFAULT 0,
	updated_at      INTEGER NOT NULL DEFAULT 0,
	UNIQUE (kind, text)
);
CREATE INDEX IF NOT EXISTS items_level ON items (level);
CREATE INDEX IF NOT EXISTS items_weight ON items (learning_weight DESC, updated_at ASC);

CREATE TABLE IF NOT EXISTS paragraphs (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL DEFAULT '',
	text        TEXT NOT NULL,
	translation TEXT NOT NULL DEFAULT '',
	level       TEXT NOT NULL DEFAULT ''
);
`

// Options tunes a Store. Zero fields take their defaults.
type Options struct {
	Policy        WeightPolicy
	PriorityLimit int
	PoolSize      int
	Clock         func() time.Time
}

// Store is a SQLite-backed study catalog. It implements both selection.Provider
// and paragraph.Provider.
type Store struct {
	db            *sql.DB
	policy        WeightPolicy
	priorityLimit int
	poolSize      int
	clock         func() time.Time
}

// Open opens or creates the database at path and migrates the schema.
func Open(path string, opts Options) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	s := &Store{
		db:            db,
		policy:        opts.Policy,
		priorityLimit: opts.PriorityLimit,
		poolSize:      opts.PoolSize,
		clock:         opts.Clock,
	}
	if s.policy == (WeightPolicy{}) {
		s.policy = DefaultWeightPolicy
	}
	if s.priorityLimit <= 0 {
		s.priorityLimit = DefaultPriorityLimit
	}
	if s.poolSize <= 0 {
		s.poolSize = DefaultPoolSize
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Policy returns the weight policy in use.
func (s *Store) Policy() WeightPolicy {
	return s.policy
}

const itemColumns = `id, kind, text, readings, meaning, level, learning_weight, updated_at`

// levelFilter matches every row for LevelAll.
const levelFilter = `(? = 'ALL' OR level = ?)`

// UpsertItems inserts new items with the policy's initial weight and updates the
// readings, meaning and level of existing ones (matched on kind and text).
// Learning weights of existing items are kept.
func (s *Store) UpsertItems(ctx context.Context, items []kotoba.StudyItem) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO items (kind, text, readings, meaning, level, learning_weight, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (kind, text) DO UPDATE SET
			readings = excluded.readings,
			meaning  = excluded.meaning,
			level    = excluded.level
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	now := s.clock().UnixNano()
	for _, it := range items {
		readings, err := json.Marshal(lo.Compact(it.Readings))
		if err != nil {
			return 0, fmt.Errorf("encoding readings for %s: %w", it.Text, err)
		}
		if _, err := stmt.ExecContext(ctx, string(it.Kind), it.Text, string(readings), it.Meaning,
			string(it.Level), s.policy.Initial, now); err != nil {
			return 0, fmt.Errorf("inserting %s: %w", it.Text, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing items: %w", err)
	}
	return len(items), nil
}

// CountItems returns the number of items at level.
func (s *Store) CountItems(ctx context.Context, level kotoba.Level) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items WHERE `+levelFilter, allOr(level), allOr(level)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting items: %w", err)
	}
	return n, nil
}

// FetchAll returns every item at level, ordered by id.
func (s *Store) FetchAll(ctx context.Context, level kotoba.Level) ([]kotoba.StudyItem, error) {
	return s.queryItems(ctx, `SELECT `+itemColumns+` FROM items WHERE `+levelFilter+` ORDER BY id`,
		allOr(level), allOr(level))
}

// FetchRandom returns one random item at level, or nil when the level is empty.
func (s *Store) FetchRandom(ctx context.Context, level kotoba.Level) (*kotoba.StudyItem, error) {
	items, err := s.queryItems(ctx, `SELECT `+itemColumns+` FROM items WHERE `+levelFilter+` ORDER BY RANDOM() LIMIT 1`,
		allOr(level), allOr(level))
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// FetchForLearningMode returns the items due for review (positive weight, heaviest
// first, then least recently answered) and a random distractor pool of other items.
func (s *Store) FetchForLearningMode(ctx context.Context, level kotoba.Level) ([]kotoba.StudyItem, []kotoba.StudyItem, error) {
	priority, err := s.queryItems(ctx, `
		SELECT `+itemColumns+` FROM items
		WHERE learning_weight > 0 AND `+levelFilter+`
		ORDER BY learning_weight DESC, updated_at ASC, id ASC
		LIMIT ?`, allOr(level), allOr(level), s.priorityLimit)
	if err != nil {
		return nil, nil, err
	}

	candidates, err := s.queryItems(ctx, `
		SELECT `+itemColumns+` FROM items
		WHERE `+levelFilter+`
		ORDER BY RANDOM()
		LIMIT ?`, allOr(level), allOr(level), s.poolSize+len(priority))
	if err != nil {
		return nil, nil, err
	}

	ids := lo.KeyBy(priority, func(it kotoba.StudyItem) int64 { return it.ID })
	pool := lo.Filter(candidates, func(it kotoba.StudyItem, _ int) bool {
		_, isPriority := ids[it.ID]
		return !isPriority
	})
	if len(pool) > s.poolSize {
		pool = pool[:s.poolSize]
	}
	return priority, pool, nil
}

// ReportAnswer stores the weight computed from previousWeight and stamps the item.
func (s *Store) ReportAnswer(ctx context.Context, id int64, correct bool, previousWeight float64) error {
	next := s.policy.Next(previousWeight, correct)
	res, err := s.db.ExecContext(ctx, `UPDATE items SET learning_weight = ?, updated_at = ? WHERE id = ?`,
		next, s.clock().UnixNano(), id)
	if err != nil {
		return fmt.Errorf("updating item %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	return nil
}

// GetItem returns one item by id.
func (s *Store) GetItem(ctx context.Context, id int64) (kotoba.StudyItem, error) {
	items, err := s.queryItems(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	if err != nil {
		return kotoba.StudyItem{}, err
	}
	if len(items) == 0 {
		return kotoba.StudyItem{}, fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	return items[0], nil
}

func (s *Store) queryItems(ctx context.Context, query string, args ...any) ([]kotoba.StudyItem, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer rows.Close()

	var items []kotoba.StudyItem
	for rows.Next() {
		var (
			it       kotoba.StudyItem
			kind     string
			readings string
			level    string
			updated  int64
		)
		if err := rows.Scan(&it.ID, &kind, &it.Text, &readings, &it.Meaning, &level, &it.LearningWeight, &updated); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		if err := json.Unmarshal([]byte(readings), &it.Readings); err != nil {
			return nil, fmt.Errorf("decoding readings for item %d: %w", it.ID, err)
		}
		it.Kind = kotoba.ItemKind(kind)
		it.Level = kotoba.Level(level)
		if updated > 0 {
			it.LastUpdatedAt = time.Unix(0, updated)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// UpsertParagraph inserts or replaces a paragraph.
func (s *Store) UpsertParagraph(ctx context.Context, p kotoba.Paragraph) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO paragraphs (id, title, text, translation, level)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title       = excluded.title,
			text        = excluded.text,
			translation = excluded.translation,
			level       = excluded.level
	`, p.ID, p.Title, p.Text, p.Translation, string(p.Level))
	if err != nil {
		return fmt.Errorf("saving paragraph %s: %w", p.ID, err)
	}
	return nil
}

// GetParagraph returns a stored paragraph.
func (s *Store) GetParagraph(ctx context.Context, id string) (kotoba.Paragraph, error) {
	var (
		p     kotoba.Paragraph
		level string
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, title, text, translation, level FROM paragraphs WHERE id = ?`, id).
		Scan(&p.ID, &p.Title, &p.Text, &p.Translation, &level)
	if errors.Is(err, sql.ErrNoRows) {
		return kotoba.Paragraph{}, fmt.Errorf("%w: %s: %w", paragraph.ErrNotFound, id, ErrNotFound)
	}
	if err != nil {
		return kotoba.Paragraph{}, fmt.Errorf("reading paragraph %s: %w", id, err)
	}
	p.Level = kotoba.Level(level)
	return p, nil
}

// FetchParagraph returns a paragraph's annotated text and translation.
func (s *Store) FetchParagraph(ctx context.Context, id string) (string, string, error) {
	p, err := s.GetParagraph(ctx, id)
	if err != nil {
		return "", "", err
	}
	return p.Text, p.Translation, nil
}

// ListParagraphs returns paragraphs at level ordered by id. Paragraphs without a
// level are listed for every filter.
func (s *Store) ListParagraphs(ctx context.Context, level kotoba.Level) ([]kotoba.Paragraph, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, text, translation, level FROM paragraphs
		WHERE level = '' OR `+levelFilter+`
		ORDER BY id`, allOr(level), allOr(level))
	if err != nil {
		return nil, fmt.Errorf("querying paragraphs: %w", err)
	}
	defer rows.Close()

	var out []kotoba.Paragraph
	for rows.Next() {
		var (
			p     kotoba.Paragraph
			level string
		)
		if err := rows.Scan(&p.ID, &p.Title, &p.Text, &p.Translation, &level); err != nil {
			return nil, fmt.Errorf("scanning paragraph: %w", err)
		}
		p.Level = kotoba.Level(level)
		out = append(out, p)
	}
	return out, rows.Err()
}

// allOr maps the empty level to LevelAll for query arguments.
func allOr(level kotoba.Level) string {
	if level == "" {
		return string(kotoba.LevelAll)
	}
	return string(level)
}
