package catalog

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/f3rmion/kotoba/internal/kotoba"
)

func TestReadItems(t *testing.T) {
	input := strings.Join([]string{
		`{"kind":"kanji","text":"水","readings":["すい"," みず ","すい",""],"meaning":"water","level":"n5"}`,
		``,
		`{"text":"学生[がくせい]","meaning":"student","level":"N4"}`,
		`{"text":"山","meaning":"mountain"}`,
		`not json`,
		`{"kind":"phrase","text":"こんにちは"}`,
		`{"kind":"word","text":"  ","meaning":"blank"}`,
		`{"kind":"word","text":"議論","level":"N9"}`,
	}, "\n")

	items, stats, err := ReadItems(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadItems: %v", err)
	}
	if stats.Read != 3 || stats.Skipped != 4 {
		t.Fatalf("stats = %+v", stats)
	}

	want := []kotoba.StudyItem{
		{Kind: kotoba.KindKanji, Text: "水", Readings: []string{"すい", "みず"}, Meaning: "water", Level: kotoba.LevelN5},
		{Kind: kotoba.KindWord, Text: "学生", Readings: []string{"がくせい"}, Meaning: "student", Level: kotoba.LevelN4},
		{Kind: kotoba.KindKanji, Text: "山", Readings: []string{}, Meaning: "mountain", Level: kotoba.LevelN5},
	}
	for i := range want {
		got := items[i]
		if got.Kind != want[i].Kind || got.Text != want[i].Text || got.Meaning != want[i].Meaning || got.Level != want[i].Level {
			t.Fatalf("item %d = %+v, want %+v", i, got, want[i])
		}
		if len(got.Readings) != len(want[i].Readings) || (len(want[i].Readings) > 0 && !reflect.DeepEqual(got.Readings, want[i].Readings)) {
			t.Fatalf("item %d readings = %v, want %v", i, got.Readings, want[i].Readings)
		}
	}
}

func TestReadParagraphs(t *testing.T) {
	input := `{"id":"weather","title":"Weather","text":"今日[きょう]は晴れ[はれ]","translation":"Sunny","level":"N5"}
{"text":"雨[あめ]","level":"all"}
{"id":"empty","text":""}
{broken`

	paras, stats, err := ReadParagraphs(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadParagraphs: %v", err)
	}
	if stats.Read != 2 || stats.Skipped != 2 {
		t.Fatalf("stats = %+v", stats)
	}
	if paras[0].ID != "weather" || paras[0].Level != kotoba.LevelN5 || paras[0].Title != "Weather" {
		t.Fatalf("unexpected first paragraph %+v", paras[0])
	}
	if _, err := uuid.Parse(paras[1].ID); err != nil {
		t.Fatalf("missing id should become a UUID, got %q", paras[1].ID)
	}
	if paras[1].Level != "" {
		t.Fatalf("ALL level should be stored as no level, got %q", paras[1].Level)
	}
}

func TestLoadItems_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.jsonl")
	if err := os.WriteFile(path, []byte(`{"text":"火","meaning":"fire"}`+"\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	items, stats, err := LoadItems(path)
	if err != nil || stats.Read != 1 || items[0].Text != "火" {
		t.Fatalf("LoadItems = %+v, %+v, %v", items, stats, err)
	}

	if _, _, err := LoadItems(filepath.Join(t.TempDir(), "missing.jsonl")); err == nil {
		t.Fatalf("expected error for a missing file")
	}
}
