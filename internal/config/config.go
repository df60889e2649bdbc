// Package config handles loading and saving user configuration for kotoba.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileName is the settings file inside the config directory.
const FileName = "config.yaml"

// EnvPrefix prefixes environment overrides, e.g. KOTOBA_QUIZ_LEVEL=N3.
const EnvPrefix = "KOTOBA"

// Settings holds all user configuration.
type Settings struct {
	Database DatabaseSettings `yaml:"database" mapstructure:"database"`
	Layout   LayoutSettings   `yaml:"layout" mapstructure:"layout"`
	Quiz     QuizSettings     `yaml:"quiz" mapstructure:"quiz"`
	Weights  WeightSettings   `yaml:"weights" mapstructure:"weights"`
	Anki     AnkiSettings     `yaml:"anki" mapstructure:"anki"`
	Log      LogSettings      `yaml:"log" mapstructure:"log"`
}

// DatabaseSettings locates the SQLite database.
type DatabaseSettings struct {
	Path string `yaml:"path" mapstructure:"path"` // Relative paths resolve against the config dir
}

// LayoutSettings controls paragraph rendering.
type LayoutSettings struct {
	Padding      float64 `yaml:"padding" mapstructure:"padding"`             // Cells added after every segment
	ShowFurigana bool    `yaml:"show_furigana" mapstructure:"show_furigana"` // Render readings above kanji
	Width        int     `yaml:"width" mapstructure:"width"`                 // 0 means terminal width
}

// QuizSettings controls multiple-choice quizzes.
type QuizSettings struct {
	Mode          string `yaml:"mode" mapstructure:"mode"` // random or learning
	Type          string `yaml:"type" mapstructure:"type"` // e.g. text-meaning, reading-text
	Level         string `yaml:"level" mapstructure:"level"`
	PriorityLimit int    `yaml:"priority_limit" mapstructure:"priority_limit"`
	PoolSize      int    `yaml:"pool_size" mapstructure:"pool_size"`
}

// WeightSettings tune how answers move an item's learning weight.
type WeightSettings struct {
	Initial float64 `yaml:"initial" mapstructure:"initial"`
	Penalty float64 `yaml:"penalty" mapstructure:"penalty"`
	Reward  float64 `yaml:"reward" mapstructure:"reward"`
	Ceiling float64 `yaml:"ceiling" mapstructure:"ceiling"`
}

// AnkiSettings name the note fields read by the importer.
type AnkiSettings struct {
	Expression string `yaml:"expression" mapstructure:"expression"`
	Reading    string `yaml:"reading" mapstructure:"reading"`
	Meaning    string `yaml:"meaning" mapstructure:"meaning"`
}

// LogSettings configure the logger.
type LogSettings struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // text or json
}

// Default returns the built-in settings.
func Default() *Settings {
	return &Settings{
		Database: DatabaseSettings{Path: "kotoba.db"},
		Layout:   LayoutSettings{Padding: 1, ShowFurigana: true},
		Quiz: QuizSettings{
			Mode:          "random",
			Type:          "text-meaning",
			Level:         "ALL",
			PriorityLimit: 50,
			PoolSize:      15,
		},
		Weights: WeightSettings{Initial: 1, Penalty: 1, Reward: 0.5, Ceiling: 10},
		Anki:    AnkiSettings{Expression: "Expression", Reading: "Reading", Meaning: "Meaning"},
		Log:     LogSettings{Level: "warn", Format: "text"},
	}
}

// setDefaults registers every default with v so environment variables can
// override keys that the file does not set.
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("layout.padding", d.Layout.Padding)
	v.SetDefault("layout.show_furigana", d.Layout.ShowFurigana)
	v.SetDefault("layout.width", d.Layout.Width)
	v.SetDefault("quiz.mode", d.Quiz.Mode)
	v.SetDefault("quiz.type", d.Quiz.Type)
	v.SetDefault("quiz.level", d.Quiz.Level)
	v.SetDefault("quiz.priority_limit", d.Quiz.PriorityLimit)
	v.SetDefault("quiz.pool_size", d.Quiz.PoolSize)
	v.SetDefault("weights.initial", d.Weights.Initial)
	v.SetDefault("weights.penalty", d.Weights.Penalty)
	v.SetDefault("weights.reward", d.Weights.Reward)
	v.SetDefault("weights.ceiling", d.Weights.Ceiling)
	v.SetDefault("anki.expression", d.Anki.Expression)
	v.SetDefault("anki.reading", d.Anki.Reading)
	v.SetDefault("anki.meaning", d.Anki.Meaning)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Load reads dir/config.yaml through v, layering defaults, the file, KOTOBA_*
// environment variables and any flags already bound to v. A missing file is not
// an error. The database path is resolved against dir.
func Load(v *viper.Viper, dir string) (*Settings, error) {
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	s.Database.Path = s.DatabasePath(dir)
	return &s, nil
}

// DatabasePath resolves the database path against dir.
func (s *Settings) DatabasePath(dir string) string {
	p := s.Database.Path
	if p == "" {
		p = Default().Database.Path
	}
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[2:])
		}
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(dir, p)
	}
	return p
}

// Save writes settings to path as YAML.
func Save(path string, s *Settings) error {
	out, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("writing settings file: %w", err)
	}
	return nil
}

// GetConfigDir returns the default configuration directory.
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "kotoba"), nil
}

// EnsureConfigDir creates dir (or the default directory when dir is empty).
func EnsureConfigDir(dir string) (string, error) {
	if dir == "" {
		var err error
		if dir, err = GetConfigDir(); err != nil {
			return "", err
		}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating config dir: %w", err)
	}
	return dir, nil
}
