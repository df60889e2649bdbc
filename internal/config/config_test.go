package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()
	s, err := Load(viper.New(), dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Quiz.PoolSize != 15 || s.Quiz.Mode != "random" || !s.Layout.ShowFurigana {
		t.Fatalf("unexpected defaults: %+v", s)
	}
	if s.Database.Path != filepath.Join(dir, "kotoba.db") {
		t.Fatalf("database path = %q", s.Database.Path)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	yml := "quiz:\n  mode: learning\n  level: N3\nlayout:\n  show_furigana: false\ndatabase:\n  path: /tmp/elsewhere.db\n"
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(yml), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s, err := Load(viper.New(), dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Quiz.Mode != "learning" || s.Quiz.Level != "N3" || s.Layout.ShowFurigana {
		t.Fatalf("file values not applied: %+v", s.Quiz)
	}
	if s.Quiz.Type != "text-meaning" || s.Weights.Penalty != 1 {
		t.Fatalf("unset keys should keep defaults: %+v", s)
	}
	if s.Database.Path != "/tmp/elsewhere.db" {
		t.Fatalf("absolute database path changed: %q", s.Database.Path)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("quiz:\n  level: N3\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("KOTOBA_QUIZ_LEVEL", "N1")
	t.Setenv("KOTOBA_LOG_LEVEL", "debug")

	s, err := Load(viper.New(), dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Quiz.Level != "N1" || s.Log.Level != "debug" {
		t.Fatalf("env overrides not applied: quiz=%q log=%q", s.Quiz.Level, s.Log.Level)
	}
}

func TestSave_WritesLoadableFile(t *testing.T) {
	dir := t.TempDir()
	d := Default()
	d.Quiz.Type = "reading-text"
	if err := Save(filepath.Join(dir, FileName), d); err != nil {
		t.Fatalf("Save: %v", err)
	}

	s, err := Load(viper.New(), dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Quiz.Type != "reading-text" {
		t.Fatalf("saved quiz type lost: %q", s.Quiz.Type)
	}
}

func TestEnsureConfigDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	got, err := EnsureConfigDir(dir)
	if err != nil || got != dir {
		t.Fatalf("EnsureConfigDir = %q, %v", got, err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("directory not created: %v", err)
	}
}
