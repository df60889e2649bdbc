package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/f3rmion/kotoba/internal/kotoba"
	"github.com/f3rmion/kotoba/internal/paragraph"
)

type tickClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func openTest(t *testing.T, opts Options) *Store {
	t.Helper()
	if opts.Clock == nil {
		clock := &tickClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
		opts.Clock = clock.Now
	}
	s, err := Open(filepath.Join(t.TempDir(), "data", "kotoba.db"), opts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seed(t *testing.T, s *Store) {
	t.Helper()
	items := []kotoba.StudyItem{
		{Kind: kotoba.KindKanji, Text: "水", Readings: []string{"すい", "みず"}, Meaning: "water", Level: kotoba.LevelN5},
		{Kind: kotoba.KindKanji, Text: "火", Readings: []string{"か", "ひ"}, Meaning: "fire", Level: kotoba.LevelN5},
		{Kind: kotoba.KindWord, Text: "学生", Readings: []string{"がくせい"}, Meaning: "student", Level: kotoba.LevelN5},
		{Kind: kotoba.KindWord, Text: "議論", Readings: []string{"ぎろん"}, Meaning: "argument", Level: kotoba.LevelN1},
	}
	if n, err := s.UpsertItems(context.Background(), items); err != nil || n != len(items) {
		t.Fatalf("UpsertItems = %d, %v", n, err)
	}
}

func TestWeightPolicy_Next(t *testing.T) {
	p := WeightPolicy{Penalty: 1, Reward: 0.5, Ceiling: 3}
	tests := []struct {
		prev    float64
		correct bool
		want    float64
	}{
		{0, false, 1},
		{2.5, false, 3},
		{3, false, 3},
		{1, true, 0.5},
		{0.25, true, 0},
		{0, true, 0},
		{-2, false, 1},
	}
	for _, tt := range tests {
		if got := p.Next(tt.prev, tt.correct); got != tt.want {
			t.Errorf("Next(%v, %v) = %v, want %v", tt.prev, tt.correct, got, tt.want)
		}
	}

	uncapped := WeightPolicy{Penalty: 2}
	if got := uncapped.Next(100, false); got != 102 {
		t.Errorf("uncapped Next = %v, want 102", got)
	}
}

func TestStore_FetchAllAndCount(t *testing.T) {
	s := openTest(t, Options{})
	seed(t, s)
	ctx := context.Background()

	all, err := s.FetchAll(ctx, kotoba.LevelAll)
	if err != nil || len(all) != 4 {
		t.Fatalf("FetchAll(ALL) = %d items, %v", len(all), err)
	}
	if all[0].Text != "水" || all[0].Reading() != "すい" || len(all[0].Readings) != 2 {
		t.Fatalf("unexpected first item %+v", all[0])
	}
	if all[0].LearningWeight != DefaultWeightPolicy.Initial {
		t.Fatalf("new items should start at the initial weight, got %v", all[0].LearningWeight)
	}

	n1, err := s.FetchAll(ctx, kotoba.LevelN1)
	if err != nil || len(n1) != 1 || n1[0].Text != "議論" {
		t.Fatalf("FetchAll(N1) = %+v, %v", n1, err)
	}

	if n, err := s.CountItems(ctx, kotoba.LevelN5); err != nil || n != 3 {
		t.Fatalf("CountItems(N5) = %d, %v", n, err)
	}
	if n, err := s.CountItems(ctx, ""); err != nil || n != 4 {
		t.Fatalf("CountItems(\"\") = %d, %v", n, err)
	}
}

func TestStore_UpsertKeepsWeight(t *testing.T) {
	s := openTest(t, Options{})
	seed(t, s)
	ctx := context.Background()

	water, err := s.FetchAll(ctx, kotoba.LevelAll)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if err := s.ReportAnswer(ctx, water[0].ID, false, water[0].LearningWeight); err != nil {
		t.Fatalf("ReportAnswer: %v", err)
	}

	_, err = s.UpsertItems(ctx, []kotoba.StudyItem{
		{Kind: kotoba.KindKanji, Text: "水", Readings: []string{"みず"}, Meaning: "water (element)", Level: kotoba.LevelN4},
	})
	if err != nil {
		t.Fatalf("UpsertItems: %v", err)
	}

	got, err := s.GetItem(ctx, water[0].ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got.Meaning != "water (element)" || got.Level != kotoba.LevelN4 || got.Reading() != "みず" {
		t.Fatalf("upsert did not update fields: %+v", got)
	}
	if got.LearningWeight != 2 {
		t.Fatalf("upsert should keep the learned weight, got %v", got.LearningWeight)
	}
	if n, _ := s.CountItems(ctx, kotoba.LevelAll); n != 4 {
		t.Fatalf("upsert created a duplicate: %d items", n)
	}
}

func TestStore_FetchRandom(t *testing.T) {
	s := openTest(t, Options{})
	ctx := context.Background()

	it, err := s.FetchRandom(ctx, kotoba.LevelAll)
	if err != nil || it != nil {
		t.Fatalf("empty store: FetchRandom = %v, %v", it, err)
	}

	seed(t, s)
	for i := 0; i < 20; i++ {
		it, err := s.FetchRandom(ctx, kotoba.LevelN1)
		if err != nil || it == nil || it.Level != kotoba.LevelN1 {
			t.Fatalf("FetchRandom(N1) = %+v, %v", it, err)
		}
	}
}

func TestStore_ReportAnswerUpdatesWeightAndTimestamp(t *testing.T) {
	s := openTest(t, Options{Policy: WeightPolicy{Initial: 1, Penalty: 2, Reward: 1, Ceiling: 4}})
	seed(t, s)
	ctx := context.Background()

	items, _ := s.FetchAll(ctx, kotoba.LevelAll)
	id := items[1].ID
	before := items[1].LastUpdatedAt

	if err := s.ReportAnswer(ctx, id, false, 1); err != nil {
		t.Fatalf("ReportAnswer: %v", err)
	}
	got, _ := s.GetItem(ctx, id)
	if got.LearningWeight != 3 {
		t.Fatalf("weight after wrong answer = %v, want 3", got.LearningWeight)
	}
	if !got.LastUpdatedAt.After(before) {
		t.Fatalf("updated_at not advanced: %v -> %v", before, got.LastUpdatedAt)
	}

	if err := s.ReportAnswer(ctx, id, true, got.LearningWeight); err != nil {
		t.Fatalf("ReportAnswer: %v", err)
	}
	got, _ = s.GetItem(ctx, id)
	if got.LearningWeight != 2 {
		t.Fatalf("weight after correct answer = %v, want 2", got.LearningWeight)
	}

	if err := s.ReportAnswer(ctx, 9999, true, 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_FetchForLearningMode(t *testing.T) {
	s := openTest(t, Options{PriorityLimit: 2, PoolSize: 1})
	seed(t, s)
	ctx := context.Background()

	items, _ := s.FetchAll(ctx, kotoba.LevelN5)
	// water: answered correctly twice -> 0; fire: wrong -> 2; student stays at 1.
	water, fire, student := items[0], items[1], items[2]
	if err := s.ReportAnswer(ctx, water.ID, true, 0.5); err != nil {
		t.Fatalf("ReportAnswer: %v", err)
	}
	if err := s.ReportAnswer(ctx, fire.ID, false, 1); err != nil {
		t.Fatalf("ReportAnswer: %v", err)
	}

	priority, pool, err := s.FetchForLearningMode(ctx, kotoba.LevelN5)
	if err != nil {
		t.Fatalf("FetchForLearningMode: %v", err)
	}
	if len(priority) != 2 || priority[0].ID != fire.ID || priority[1].ID != student.ID {
		t.Fatalf("priority = %+v", priority)
	}
	if len(pool) != 1 || pool[0].ID != water.ID {
		t.Fatalf("pool = %+v", pool)
	}
}

func TestStore_LearningModeTieBreaksOnOldestUpdate(t *testing.T) {
	s := openTest(t, Options{})
	seed(t, s)
	ctx := context.Background()

	items, _ := s.FetchAll(ctx, kotoba.LevelN5)
	// Both end at weight 2; fire is touched last so water comes first.
	if err := s.ReportAnswer(ctx, items[0].ID, false, 1); err != nil {
		t.Fatalf("ReportAnswer: %v", err)
	}
	if err := s.ReportAnswer(ctx, items[1].ID, false, 1); err != nil {
		t.Fatalf("ReportAnswer: %v", err)
	}

	priority, _, err := s.FetchForLearningMode(ctx, kotoba.LevelN5)
	if err != nil {
		t.Fatalf("FetchForLearningMode: %v", err)
	}
	if priority[0].ID != items[0].ID || priority[1].ID != items[1].ID {
		t.Fatalf("unexpected order: %d, %d", priority[0].ID, priority[1].ID)
	}
}

func TestStore_Paragraphs(t *testing.T) {
	s := openTest(t, Options{})
	ctx := context.Background()

	paras := []kotoba.Paragraph{
		{ID: "b", Text: "今日[きょう]は晴れ[はれ]", Translation: "Sunny today", Level: kotoba.LevelN5},
		{ID: "a", Text: "雨[あめ]", Translation: "Rain"},
		{ID: "c", Text: "議論[ぎろん]", Translation: "Debate", Level: kotoba.LevelN1},
	}
	for _, p := range paras {
		if err := s.UpsertParagraph(ctx, p); err != nil {
			t.Fatalf("UpsertParagraph: %v", err)
		}
	}

	text, translation, err := s.FetchParagraph(ctx, "b")
	if err != nil || text != paras[0].Text || translation != "Sunny today" {
		t.Fatalf("FetchParagraph = %q, %q, %v", text, translation, err)
	}

	_, _, err = s.FetchParagraph(ctx, "missing")
	if !errors.Is(err, ErrNotFound) || !errors.Is(err, paragraph.ErrNotFound) {
		t.Fatalf("expected both not-found sentinels, got %v", err)
	}

	n5, err := s.ListParagraphs(ctx, kotoba.LevelN5)
	if err != nil || len(n5) != 2 || n5[0].ID != "a" || n5[1].ID != "b" {
		t.Fatalf("ListParagraphs(N5) = %+v, %v", n5, err)
	}
	all, err := s.ListParagraphs(ctx, kotoba.LevelAll)
	if err != nil || len(all) != 3 {
		t.Fatalf("ListParagraphs(ALL) = %d, %v", len(all), err)
	}

	paras[1].Translation = "Rain!"
	if err := s.UpsertParagraph(ctx, paras[1]); err != nil {
		t.Fatalf("UpsertParagraph: %v", err)
	}
	got, err := s.GetParagraph(ctx, "a")
	if err != nil || got.Translation != "Rain!" {
		t.Fatalf("GetParagraph = %+v, %v", got, err)
	}
}

func TestStore_DrivesParagraphService(t *testing.T) {
	s := openTest(t, Options{})
	ctx := context.Background()
	if err := s.UpsertParagraph(ctx, kotoba.Paragraph{ID: "p", Text: "雨[あめ]と風[かぜ]"}); err != nil {
		t.Fatalf("UpsertParagraph: %v", err)
	}

	svc := paragraph.NewService(s, nil)
	state, err := svc.Start(ctx, "p")
	if err != nil || len(state.Blanks) != 2 {
		t.Fatalf("Start = %+v, %v", state, err)
	}
	if _, err := svc.Start(ctx, "nope"); !errors.Is(err, paragraph.ErrNoBlanks) {
		t.Fatalf("expected ErrNoBlanks, got %v", err)
	}
}
