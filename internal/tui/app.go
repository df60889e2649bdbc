package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/f3rmion/kotoba/internal/config"
	"github.com/f3rmion/kotoba/internal/glyph"
	"github.com/f3rmion/kotoba/internal/kotoba"
	"github.com/f3rmion/kotoba/internal/paragraph"
	"github.com/f3rmion/kotoba/internal/selection"
	"github.com/f3rmion/kotoba/internal/speech"
	"github.com/f3rmion/kotoba/internal/tui/views"
)

// ViewType represents the current active view
type ViewType int

const (
	ViewQuiz ViewType = iota
	ViewParagraph
)

// MenuItem represents a sidebar menu entry
type MenuItem struct {
	Label    string
	Icon     string
	View     ViewType
	Shortcut string
}

// Deps are the services the views run on. Face and Sink may be nil.
type Deps struct {
	Engine     *selection.Engine
	Paragraphs *paragraph.Service
	Lister     views.ParagraphLister
	Face       *glyph.Face
	Sink       speech.Sink
	Settings   *config.Settings
}

// AppModel is the main TUI model
type AppModel struct {
	// Layout state
	width        int
	height       int
	sidebarWidth int
	ready        bool

	// Navigation
	currentView   ViewType
	menuItems     []MenuItem
	selectedMenu  int
	sidebarActive bool

	// Sub-models (views)
	quizView      views.QuizModel
	paragraphView views.ParagraphModel

	// Help overlay
	showHelp bool
}

// NewApp creates the TUI application.
func NewApp(ctx context.Context, deps Deps) AppModel {
	s := deps.Settings
	if s == nil {
		s = config.Default()
	}
	level := kotoba.ParseLevel(s.Quiz.Level)

	return AppModel{
		sidebarWidth: 18,
		currentView:  ViewQuiz,
		menuItems: []MenuItem{
			{Label: "Quiz", Icon: "問", View: ViewQuiz, Shortcut: "1"},
			{Label: "Paragraph", Icon: "文", View: ViewParagraph, Shortcut: "2"},
		},
		quizView:      views.NewQuizModel(ctx, deps.Engine, deps.Face, level, s.Quiz.Mode == "learning"),
		paragraphView: views.NewParagraphModel(ctx, deps.Paragraphs, deps.Lister, deps.Sink, s.Layout, level),
	}
}

// Init loads the first quiz and the paragraph list.
func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.quizView.Init(), m.paragraphView.Init())
}

// capturing reports whether the active view wants raw keystrokes.
func (m AppModel) capturing() bool {
	return !m.sidebarActive && m.currentView == ViewParagraph && m.paragraphView.Capturing()
}

func (m *AppModel) switchTo(i int) {
	m.selectedMenu = i
	m.currentView = m.menuItems[i].View
	m.sidebarActive = false
}

// Update handles messages
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Help overlay - any key closes it
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.capturing() {
			break
		}

		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "?":
			m.showHelp = true
			return m, nil
		case "esc":
			if m.sidebarActive {
				return m, tea.Quit
			}
			m.sidebarActive = true
			return m, nil
		case "tab":
			m.sidebarActive = !m.sidebarActive
			return m, nil
		}

		// Sidebar navigation when active. Number keys belong to the quiz
		// otherwise.
		if m.sidebarActive {
			switch msg.String() {
			case "1", "2":
				m.switchTo(int(msg.String()[0] - '1'))
			case "j", "down":
				if m.selectedMenu < len(m.menuItems)-1 {
					m.selectedMenu++
				}
			case "k", "up":
				if m.selectedMenu > 0 {
					m.selectedMenu--
				}
			case "enter", "l", "right":
				m.switchTo(m.selectedMenu)
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		contentWidth := m.width - m.sidebarWidth - 4
		contentHeight := m.height - 2
		m.quizView.SetSize(contentWidth, contentHeight)
		m.paragraphView.SetSize(contentWidth, contentHeight)
		return m, nil
	}

	// Key presses go to the active view only; everything else is a result
	// message that may belong to either.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	_, isKey := msg.(tea.KeyMsg)
	if !isKey || m.currentView == ViewQuiz {
		m.quizView, cmd = m.quizView.Update(msg)
		cmds = append(cmds, cmd)
	}
	if !isKey || m.currentView == ViewParagraph {
		m.paragraphView, cmd = m.paragraphView.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// View renders the UI
func (m AppModel) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var content string
	switch m.currentView {
	case ViewQuiz:
		content = m.quizView.View()
	case ViewParagraph:
		content = m.paragraphView.View()
	}

	mainContent := ContentStyle.
		Width(m.width - m.sidebarWidth - 4).
		Height(m.height - 2).
		Render(content)

	return lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), mainContent)
}

// renderSidebar renders the sidebar navigation
func (m AppModel) renderSidebar() string {
	items := []string{SidebarTitleStyle.Render("  言葉 kotoba  "), ""}

	for i, item := range m.menuItems {
		label := item.Icon + " " + item.Shortcut + ". " + item.Label

		style := SidebarItemStyle
		if i == m.selectedMenu {
			if m.sidebarActive {
				style = SidebarItemActiveStyle
			} else {
				style = SidebarItemStyle.Bold(true).Foreground(ColorSecondary)
			}
		}
		items = append(items, style.Render(label))
	}

	usedHeight := len(items) + 4
	for i := 0; i < m.height-usedHeight-2; i++ {
		items = append(items, "")
	}
	items = append(items, SidebarHelpStyle.Render("? Help  q Quit"))

	return SidebarStyle.
		Width(m.sidebarWidth).
		Height(m.height - 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, items...))
}

// renderHelp renders the help overlay
func (m AppModel) renderHelp() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorSecondary).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Width(12)

	descStyle := lipgloss.NewStyle().
		Foreground(ColorText)

	row := func(key, desc string) string {
		return keyStyle.Render(key) + descStyle.Render(desc) + "\n"
	}

	helpText := titleStyle.Render("kotoba - Japanese study") + "\n\n"

	helpText += sectionStyle.Render("Global Keys") + "\n"
	helpText += row("tab", "Toggle sidebar focus")
	helpText += row("tab 1-2", "Switch views")
	helpText += row("?", "Show this help")
	helpText += row("q", "Quit")

	helpText += sectionStyle.Render("Quiz") + "\n"
	helpText += row("1-4", "Answer")
	helpText += row("n", "Next question")
	helpText += row("m", "Random / learning mode")
	helpText += row("l", "Cycle JLPT level")
	helpText += row("t", "Flip quiz direction")

	helpText += sectionStyle.Render("Paragraph") + "\n"
	helpText += row("enter", "Start / submit")
	helpText += row("i", "Type what you read")
	helpText += row("f", "Toggle furigana")
	helpText += row("s", "Copy text for speech")
	helpText += row("x", "Back to list")

	helpText += "\n" + lipgloss.NewStyle().
		Foreground(ColorMuted).
		Italic(true).
		Render("Press any key to close")

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorSecondary).
		Padding(1, 2).
		Width(50)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, boxStyle.Render(helpText))
}
