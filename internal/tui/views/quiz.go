package views

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/f3rmion/kotoba/internal/glyph"
	"github.com/f3rmion/kotoba/internal/kotoba"
	"github.com/f3rmion/kotoba/internal/selection"
)

// Quiz view styles
var (
	quizPromptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffe66d")).
			Background(lipgloss.Color("#1a1a2e")).
			Padding(1, 4).
			Align(lipgloss.Center)

	quizBlockStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffe66d"))

	quizOptionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f1faee")).
			Padding(0, 1)

	quizCorrectStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#1a1a2e")).
				Background(lipgloss.Color("#a8e6cf")).
				Padding(0, 1)

	quizWrongStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1a1a2e")).
			Background(lipgloss.Color("#FF6B6B")).
			Padding(0, 1)
)

// Size of the block-art prompt in terminal cells.
const (
	blockCols = 24
	blockRows = 10
)

type quizLoadedMsg struct {
	quiz   selection.Quiz
	cursor selection.Cursor
	err    error
}

type quizAnsweredMsg struct {
	correct bool
}

// QuizModel is the multiple-choice quiz view.
type QuizModel struct {
	ctx    context.Context
	engine *selection.Engine
	face   *glyph.Face

	level    kotoba.Level
	learning bool
	cursor   selection.Cursor

	quiz     *selection.Quiz
	selected int
	correct  bool
	loading  bool
	err      error

	answered int
	right    int

	width  int
	height int
}

// NewQuizModel creates a quiz view. face may be nil, in which case prompts are
// shown as plain text.
func NewQuizModel(ctx context.Context, engine *selection.Engine, face *glyph.Face, level kotoba.Level, learning bool) QuizModel {
	return QuizModel{
		ctx:      ctx,
		engine:   engine,
		face:     face,
		level:    level,
		learning: learning,
		selected: -1,
	}
}

// Init loads the first quiz.
func (m QuizModel) Init() tea.Cmd {
	return m.next()
}

// SetSize updates the view dimensions.
func (m *QuizModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Level returns the level filter in use.
func (m QuizModel) Level() kotoba.Level {
	return m.level
}

// Learning reports whether weighted selection is on.
func (m QuizModel) Learning() bool {
	return m.learning
}

// next draws a quiz in the background. The cursor is copied into the command and
// the advanced copy comes back in the message.
func (m *QuizModel) next() tea.Cmd {
	if m.engine == nil {
		return nil
	}
	m.loading = true
	m.err = nil

	ctx, engine, level := m.ctx, m.engine, m.level
	if !m.learning {
		return func() tea.Msg {
			q, err := engine.RandomQuiz(ctx, level)
			return quizLoadedMsg{quiz: q, err: err}
		}
	}
	cursor := m.cursor
	return func() tea.Msg {
		q, err := engine.NextQuiz(ctx, &cursor, level)
		return quizLoadedMsg{quiz: q, cursor: cursor, err: err}
	}
}

func (m *QuizModel) answer(i int) tea.Cmd {
	if m.quiz == nil || m.selected >= 0 || i >= len(m.quiz.Options) {
		return nil
	}
	m.selected = i
	m.correct = i == m.quiz.CorrectIndex
	ctx, engine, q, learning := m.ctx, m.engine, *m.quiz, m.learning
	return func() tea.Msg {
		return quizAnsweredMsg{correct: engine.CheckAnswer(ctx, q, i, learning)}
	}
}

// Update handles messages.
func (m QuizModel) Update(msg tea.Msg) (QuizModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}
		switch key := msg.String(); key {
		case "1", "2", "3", "4":
			return m, m.answer(int(key[0] - '1'))
		case "n", "enter", " ":
			if m.quiz == nil || m.selected >= 0 {
				return m, m.next()
			}
		case "m":
			m.learning = !m.learning
			m.cursor.Reset()
			return m, m.next()
		case "l":
			m.level = m.level.Next()
			return m, m.next()
		case "t":
			if m.engine == nil {
				return m, nil
			}
			m.engine.SetQuizType(m.engine.QuizType().Inverse())
			return m, m.next()
		}

	case quizLoadedMsg:
		m.loading = false
		m.selected = -1
		if m.learning {
			m.cursor = msg.cursor
		}
		if msg.err != nil {
			m.quiz = nil
			m.err = msg.err
			return m, nil
		}
		q := msg.quiz
		m.quiz = &q

	case quizAnsweredMsg:
		m.correct = msg.correct
		m.answered++
		if msg.correct {
			m.right++
		}
	}
	return m, nil
}

// View renders the quiz view.
func (m QuizModel) View() string {
	var b strings.Builder

	mode := "random"
	if m.learning {
		mode = fmt.Sprintf("learning (%d left)", m.cursor.Remaining())
	}
	header := fmt.Sprintf("%s • %s", m.level, mode)
	if m.engine != nil {
		header += " • " + m.engine.QuizType().Name
	}
	b.WriteString(titleStyle.Render("Quiz"))
	b.WriteString("  ")
	b.WriteString(subtitleStyle.Render(header))
	if m.answered > 0 {
		b.WriteString(helpStyle.Render(fmt.Sprintf("  %d/%d correct", m.right, m.answered)))
	}
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(loadingStyle.Render("Drawing a card..."))
	case errors.Is(m.err, selection.ErrInsufficientData):
		b.WriteString(m.renderNoData())
	case m.err != nil:
		b.WriteString(errorStyle.Render(m.err.Error()))
	case m.quiz != nil:
		b.WriteString(m.renderQuiz())
	}

	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("1-4: answer • n: next • m: mode • l: level • t: flip direction"))
	return b.String()
}

func (m QuizModel) renderQuiz() string {
	var b strings.Builder
	b.WriteString(m.renderPrompt())
	b.WriteString("\n\n")

	for i, opt := range m.quiz.Options {
		line := fmt.Sprintf("%d. %s", i+1, opt)
		style := quizOptionStyle
		if m.selected >= 0 {
			switch {
			case i == m.quiz.CorrectIndex:
				style = quizCorrectStyle
			case i == m.selected:
				style = quizWrongStyle
			}
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	if m.selected >= 0 {
		b.WriteString("\n")
		if m.correct {
			b.WriteString(successStyle.Render("Correct!"))
		} else {
			b.WriteString(errorStyle.Render("Answer: " + m.quiz.CorrectAnswer))
		}
	}
	return b.String()
}

// renderPrompt shows single-kanji prompts as block art when a font is loaded.
func (m QuizModel) renderPrompt() string {
	prompt := m.quiz.Prompt
	if m.face != nil && len([]rune(prompt)) == 1 {
		if art := m.face.RenderBlock(prompt, blockCols, blockRows); art != "" {
			return quizBlockStyle.Render(art)
		}
	}
	return quizPromptStyle.Render(prompt)
}

func (m QuizModel) renderNoData() string {
	content := noDataStyle.Render("Not enough study items at "+string(m.level)) + "\n\n" +
		helpStyle.Render("Import items with 'kotoba import items' or press l to change level")
	return boxStyle.Render(content)
}
