package views

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/f3rmion/kotoba/internal/config"
	"github.com/f3rmion/kotoba/internal/japanese"
	"github.com/f3rmion/kotoba/internal/kotoba"
	"github.com/f3rmion/kotoba/internal/layout"
	"github.com/f3rmion/kotoba/internal/paragraph"
	"github.com/f3rmion/kotoba/internal/speech"
)

// Paragraph view styles
var (
	paragraphTextStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#f1faee"))

	paragraphTranslationStyle = lipgloss.NewStyle().
					Foreground(lipgloss.Color("#a8dadc")).
					Italic(true)

	paragraphListStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				Padding(0, 1)

	paragraphListActiveStyle = lipgloss.NewStyle().
					Bold(true).
					Foreground(lipgloss.Color("#ffe66d")).
					Background(lipgloss.Color("#2d3436")).
					Padding(0, 1)

	progressFullStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#a8e6cf"))

	progressEmptyStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#3d5a80"))
)

// blankMark stands in for each character of an unfilled reading.
const blankMark = "＿"

const progressWidth = 30

// ParagraphLister lists the paragraphs available at a level.
type ParagraphLister interface {
	ListParagraphs(ctx context.Context, level kotoba.Level) ([]kotoba.Paragraph, error)
}

type paragraphsLoadedMsg struct {
	paragraphs []kotoba.Paragraph
	err        error
}

type paragraphStartedMsg struct {
	state paragraph.State
	err   error
}

type spokenMsg struct {
	text string
	err  error
}

type clearStatusMsg struct{}

func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

// ParagraphModel is the fill-in-the-reading paragraph view.
type ParagraphModel struct {
	ctx     context.Context
	service *paragraph.Service
	lister  ParagraphLister
	sink    speech.Sink
	layout  config.LayoutSettings

	level      kotoba.Level
	paragraphs []kotoba.Paragraph
	selected   int

	state      *paragraph.State
	input      textinput.Model
	lastFilled []string
	status     string
	err        error

	width  int
	height int
}

// NewParagraphModel creates a paragraph view. sink may be nil to disable speech.
func NewParagraphModel(ctx context.Context, service *paragraph.Service, lister ParagraphLister, sink speech.Sink, opts config.LayoutSettings, level kotoba.Level) ParagraphModel {
	ti := textinput.New()
	ti.Placeholder = "Type or dictate what you read..."
	ti.CharLimit = 500
	ti.Width = 40

	return ParagraphModel{
		ctx:     ctx,
		service: service,
		lister:  lister,
		sink:    sink,
		layout:  opts,
		level:   level,
		input:   ti,
	}
}

// Init loads the paragraph list.
func (m ParagraphModel) Init() tea.Cmd {
	return m.loadList()
}

// SetSize updates the view dimensions.
func (m *ParagraphModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = max(width-6, 10)
}

// Capturing reports whether keystrokes go to the text input.
func (m ParagraphModel) Capturing() bool {
	return m.input.Focused()
}

func (m ParagraphModel) loadList() tea.Cmd {
	if m.lister == nil {
		return nil
	}
	ctx, lister, level := m.ctx, m.lister, m.level
	return func() tea.Msg {
		ps, err := lister.ListParagraphs(ctx, level)
		return paragraphsLoadedMsg{paragraphs: ps, err: err}
	}
}

func (m ParagraphModel) start() tea.Cmd {
	if m.service == nil || m.selected >= len(m.paragraphs) {
		return nil
	}
	ctx, service, id := m.ctx, m.service, m.paragraphs[m.selected].ID
	return func() tea.Msg {
		state, err := service.Start(ctx, id)
		return paragraphStartedMsg{state: state, err: err}
	}
}

func (m ParagraphModel) speak() tea.Cmd {
	if m.sink == nil || m.state == nil {
		return nil
	}
	ctx, sink, text := m.ctx, m.sink, m.state.Original
	return func() tea.Msg {
		spoken, err := speech.Say(ctx, sink, text)
		return spokenMsg{text: spoken, err: err}
	}
}

// Update handles messages.
func (m ParagraphModel) Update(msg tea.Msg) (ParagraphModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.input.Focused() {
			switch msg.String() {
			case "esc":
				m.input.Blur()
				return m, nil
			case "enter":
				m.listen(m.input.Value())
				m.input.SetValue("")
				return m, nil
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "j", "down":
			if m.selected < len(m.paragraphs)-1 {
				m.selected++
			}
		case "k", "up":
			if m.selected > 0 {
				m.selected--
			}
		case "enter":
			return m, m.start()
		case "i", "/":
			if m.state != nil && !m.state.IsComplete() {
				return m, m.input.Focus()
			}
		case "f":
			m.layout.ShowFurigana = !m.layout.ShowFurigana
		case "s":
			return m, m.speak()
		case "l":
			m.level = m.level.Next()
			m.selected = 0
			return m, m.loadList()
		case "x":
			m.state = nil
			m.lastFilled = nil
		}

	case paragraphsLoadedMsg:
		m.paragraphs, m.err = msg.paragraphs, msg.err
		m.selected = min(m.selected, max(len(m.paragraphs)-1, 0))

	case paragraphStartedMsg:
		m.err = msg.err
		if msg.err == nil {
			state := msg.state
			m.state = &state
			m.lastFilled = nil
			return m, m.input.Focus()
		}

	case spokenMsg:
		if msg.err != nil {
			m.status = errorStyle.Render(msg.err.Error())
		} else {
			m.status = successStyle.Render("Copied for speech: " + msg.text)
		}
		return m, clearStatusAfter(2 * time.Second)

	case clearStatusMsg:
		m.status = ""
	}
	return m, nil
}

func (m *ParagraphModel) listen(recognized string) {
	if m.state == nil {
		return
	}
	state, filled := m.service.Listen(*m.state, recognized)
	m.state = &state
	m.lastFilled = filled
	if state.IsComplete() {
		m.input.Blur()
	}
}

// View renders the paragraph view.
func (m ParagraphModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Paragraph"))
	b.WriteString("  ")
	b.WriteString(subtitleStyle.Render(string(m.level)))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n\n")
	}

	if m.state == nil {
		b.WriteString(m.renderList())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("j/k: select • enter: start • l: level"))
		return b.String()
	}

	b.WriteString(m.renderParagraph())
	b.WriteString("\n\n")
	if m.state.Translation != "" {
		b.WriteString(paragraphTranslationStyle.Render(m.state.Translation))
		b.WriteString("\n\n")
	}
	b.WriteString(m.renderProgress())
	b.WriteString("\n")

	switch {
	case m.state.IsComplete():
		b.WriteString(successStyle.Render("Complete!"))
	case m.lastFilled != nil:
		b.WriteString(successStyle.Render("Filled: " + strings.Join(m.lastFilled, ", ")))
	}
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(m.status)
	}
	b.WriteString("\n\n")
	if m.input.Focused() {
		b.WriteString(helpStyle.Render("enter: submit • esc: stop typing"))
	} else {
		b.WriteString(helpStyle.Render("i: type • f: furigana • s: speak • x: back to list"))
	}
	return b.String()
}

func (m ParagraphModel) renderList() string {
	if len(m.paragraphs) == 0 {
		content := noDataStyle.Render("No paragraphs at "+string(m.level)) + "\n\n" +
			helpStyle.Render("Import some with 'kotoba import paragraphs'")
		return boxStyle.Render(content)
	}
	var rows []string
	for i, p := range m.paragraphs {
		label := p.Title
		if label == "" {
			label = truncate(japanese.StripAnnotations(p.Text), 30)
		}
		style := paragraphListStyle
		if i == m.selected {
			style = paragraphListActiveStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%-4s %s", p.Level, label)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m ParagraphModel) renderParagraph() string {
	hidden := func(answer string) string {
		return strings.Repeat(blankMark, utf8.RuneCountInString(answer))
	}
	opts := layout.Options{Padding: m.layout.Padding, ShowFurigana: m.layout.ShowFurigana}
	widthOf := layout.SegmentWidth(layout.TerminalMeasurer{}, opts)

	available := m.layout.Width
	if available <= 0 {
		available = max(m.width-4, 20)
	}
	lines := layout.Wrap(m.state.Segments(hidden), float64(available), widthOf)
	return paragraphTextStyle.Render(layout.RenderRuby(lines, widthOf, m.layout.ShowFurigana))
}

func (m ParagraphModel) renderProgress() string {
	full := int(m.state.Progress() * progressWidth)
	bar := progressFullStyle.Render(strings.Repeat("█", full)) +
		progressEmptyStyle.Render(strings.Repeat("░", progressWidth-full))
	return fmt.Sprintf("%s %d/%d", bar, m.state.FilledCount(), len(m.state.Blanks))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
