// Package browse is a small terminal UI over the postings that have
// already been announced, so the operator can scan history without
// grepping JSON state files.
package browse

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Item is one announced posting shown in the browser.
type Item struct {
	Title        string
	Organization string
	Location     string
	URL          string
	Grades       []string
	FirstSeen    time.Time
}

var (
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")) // bright blue

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("39"))

	cursorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))
)

// Lines per item in the list (title + subtitle + blank separator).
const itemHeight = 3

type browseModel struct {
	items    []Item
	cursor   int
	vp       viewport.Model
	width    int
	height   int
	ready    bool
	timezone *time.Location
}

// Run opens the full-screen browser over items, newest first.
func Run(items []Item, tz *time.Location) error {
	if tz == nil {
		tz = time.Local
	}
	m := browseModel{items: items, timezone: tz}
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Border eats 2 rows/cols; header and status bar one row each.
		m.vp = viewport.New(msg.Width-2, msg.Height-4)
		m.ready = true
		m.vp.SetContent(m.renderList())

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "j", "down":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "g", "home":
			m.cursor = 0
		case "G", "end":
			m.cursor = len(m.items) - 1
		}
		if m.ready {
			m.vp.SetContent(m.renderList())
			m.scrollToCursor()
		}
	}

	return m, nil
}

func (m *browseModel) scrollToCursor() {
	top := m.cursor * itemHeight
	bottom := top + itemHeight
	if top < m.vp.YOffset {
		m.vp.SetYOffset(top)
	} else if bottom > m.vp.YOffset+m.vp.Height {
		m.vp.SetYOffset(bottom - m.vp.Height)
	}
}

func (m browseModel) renderList() string {
	if len(m.items) == 0 {
		return subtitleStyle.Render("  nothing announced yet")
	}

	var b strings.Builder
	for i, it := range m.items {
		marker := "  "
		titleLine := it.Title
		if len(it.Grades) > 0 {
			titleLine += " (" + strings.Join(it.Grades, ", ") + ")"
		}
		if i == m.cursor {
			marker = cursorStyle.Render("> ")
			titleLine = cursorStyle.Render(titleLine)
		}

		sub := it.FirstSeen.In(m.timezone).Format("Jan 2 15:04")
		if it.Organization != "" {
			sub += " · " + it.Organization
		}
		if it.Location != "" {
			sub += " · " + it.Location
		}

		fmt.Fprintf(&b, "%s%s\n", marker, titleLine)
		fmt.Fprintf(&b, "  %s\n\n", subtitleStyle.Render(sub))
	}
	return b.String()
}

func (m browseModel) View() string {
	if !m.ready {
		return "loading..."
	}

	header := headerStyle.Render(fmt.Sprintf("Announced postings (%d)", len(m.items)))

	status := "j/k move · g/G jump · q quit"
	if len(m.items) > 0 {
		status = fmt.Sprintf("%d/%d · %s · %s", m.cursor+1, len(m.items), m.items[m.cursor].URL, status)
	}
	bar := statusBarStyle.Width(m.width).Render(status)

	return header + "\n" + borderStyle.Render(m.vp.View()) + "\n" + bar
}
