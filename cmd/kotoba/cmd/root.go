// Package cmd contains all CLI commands for kotoba.
package cmd

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/f3rmion/kotoba/internal/config"
	"github.com/f3rmion/kotoba/internal/glyph"
	"github.com/f3rmion/kotoba/internal/logging"
	"github.com/f3rmion/kotoba/internal/paragraph"
	"github.com/f3rmion/kotoba/internal/selection"
	"github.com/f3rmion/kotoba/internal/speech"
	"github.com/f3rmion/kotoba/internal/store"
	"github.com/f3rmion/kotoba/internal/tui"
)

var cfgFile string

var (
	settings *config.Settings
	log      *logrus.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "kotoba",
	Short: "Japanese kanji and vocabulary study with furigana",
	Long: `kotoba is a terminal study tool for Japanese.

It offers two exercises:
  - Multiple-choice quizzes over kanji and words, drawn at random or
    weighted toward the items you keep missing
  - Paragraph reading, where you fill in the hidden furigana by typing
    or dictating what you read

Running 'kotoba' without arguments launches the interactive TUI.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
	RunE:              runTUI,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config directory (default is $HOME/.config/kotoba)")
	rootCmd.PersistentFlags().String("db", "", "database file (default is kotoba.db in the config directory)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("verbose", false, "verbose output")

	viper.BindPFlag("database.path", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig resolves the config directory.
func initConfig() {
	if cfgFile != "" {
		viper.Set("config_dir", cfgFile)
		return
	}
	dir, err := config.GetConfigDir()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error finding home directory:", err)
		os.Exit(1)
	}
	viper.Set("config_dir", dir)
}

// getConfigDir returns the configuration directory path.
func getConfigDir() string {
	return viper.GetString("config_dir")
}

// loadSettings layers defaults, config.yaml, KOTOBA_* variables and flags, then
// builds the logger.
func loadSettings(cmd *cobra.Command, args []string) error {
	s, err := config.Load(viper.GetViper(), getConfigDir())
	if err != nil {
		return err
	}
	if viper.GetBool("verbose") {
		s.Log.Level = "debug"
	}
	l, err := logging.New(s.Log.Level, s.Log.Format)
	if err != nil {
		return fmt.Errorf("configuring logger: %w", err)
	}
	settings, log = s, l
	log.WithField("config_dir", getConfigDir()).Debug("settings loaded")
	return nil
}

// openStore opens the study database named by the settings.
func openStore() (*store.Store, error) {
	w := settings.Weights
	st, err := store.Open(settings.Database.Path, store.Options{
		Policy: store.WeightPolicy{
			Initial: w.Initial,
			Penalty: w.Penalty,
			Reward:  w.Reward,
			Ceiling: w.Ceiling,
		},
		PriorityLimit: settings.Quiz.PriorityLimit,
		PoolSize:      settings.Quiz.PoolSize,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	log.WithField("path", settings.Database.Path).Debug("database opened")
	return st, nil
}

// newEngine builds a quiz engine over st using the configured quiz type.
func newEngine(st *store.Store, typeName string) (*selection.Engine, error) {
	if typeName == "" {
		typeName = settings.Quiz.Type
	}
	qt, err := selection.ParseQuizType(typeName)
	if err != nil {
		return nil, err
	}
	return selection.NewEngine(st, qt, nil, log), nil
}

// runTUI launches the TUI application.
func runTUI(cmd *cobra.Command, args []string) error {
	if _, err := config.EnsureConfigDir(getConfigDir()); err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	engine, err := newEngine(st, "")
	if err != nil {
		return err
	}

	// Block-art prompts need a CJK font; without one the quiz shows plain text.
	face, err := glyph.LoadFace(glyph.DefaultFontPaths, 64)
	if err != nil {
		log.WithError(err).Debug("block-art prompts disabled")
	}

	var sink speech.Sink
	if clip := speech.NewClipboardSink(); clip.Available() {
		sink = clip
	}

	ctx := context.Background()
	app := tui.NewApp(ctx, tui.Deps{
		Engine:     engine,
		Paragraphs: paragraph.NewService(st, log),
		Lister:     st,
		Face:       face,
		Sink:       sink,
		Settings:   settings,
	})

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
