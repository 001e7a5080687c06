package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/figstyle/pkg/template"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// LeafBrowserModel - Interactive template browser
// =============================================================================

// LeafBrowserModel is the bubbletea model for browsing template style values.
type LeafBrowserModel struct {
	Title   string
	Leaves  []template.Leaf
	Visible []int // indices into Leaves matching Filter
	Cursor  int   // index into Visible
	Height  int
	Offset  int

	Filter    string
	Filtering bool
}

// NewLeafBrowserModel creates a new browser over leaves.
func NewLeafBrowserModel(title string, leaves []template.Leaf) LeafBrowserModel {
	m := LeafBrowserModel{
		Title:  title,
		Leaves: leaves,
		Height: 15,
	}
	m.applyFilter()
	return m
}

func (m LeafBrowserModel) Init() tea.Cmd {
	return nil
}

func (m LeafBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.Filtering {
			return m.updateFilter(msg), nil
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.Filter != "" {
				m.Filter = ""
				m.applyFilter()
				return m, nil
			}
			return m, tea.Quit
		case "/":
			m.Filtering = true
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup":
			m.move(-m.Height)
		case "pgdown":
			m.move(m.Height)
		case "home", "g":
			m.move(-len(m.Visible))
		case "end", "G":
			m.move(len(m.Visible))
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
		m.move(0)
	}
	return m, nil
}

func (m LeafBrowserModel) updateFilter(msg tea.KeyMsg) LeafBrowserModel {
	switch msg.Type {
	case tea.KeyEnter:
		m.Filtering = false
	case tea.KeyEsc:
		m.Filtering = false
		m.Filter = ""
	case tea.KeyBackspace:
		if m.Filter != "" {
			r := []rune(m.Filter)
			m.Filter = string(r[:len(r)-1])
		}
	case tea.KeyRunes:
		m.Filter += string(msg.Runes)
	default:
		return m
	}
	m.applyFilter()
	return m
}

// applyFilter recomputes Visible and resets the cursor.
func (m *LeafBrowserModel) applyFilter() {
	needle := strings.ToLower(m.Filter)
	visible := make([]int, 0, len(m.Leaves))
	for i, leaf := range m.Leaves {
		if needle == "" || strings.Contains(strings.ToLower(leaf.Path), needle) {
			visible = append(visible, i)
		}
	}
	m.Visible = visible
	m.Cursor = 0
	m.Offset = 0
}

// move shifts the cursor by delta and keeps it inside the window.
func (m *LeafBrowserModel) move(delta int) {
	m.Cursor = max(0, min(m.Cursor+delta, len(m.Visible)-1))
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

// Selected returns the leaf under the cursor.
func (m LeafBrowserModel) Selected() (template.Leaf, bool) {
	if len(m.Visible) == 0 {
		return template.Leaf{}, false
	}
	return m.Leaves[m.Visible[m.Cursor]], true
}

func (m LeafBrowserModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  / filter  esc clear  q quit"))
	b.WriteString("\n")
	if m.Filtering || m.Filter != "" {
		cursor := ""
		if m.Filtering {
			cursor = "▏"
		}
		b.WriteString(StyleHighlight.Render("/" + m.Filter + cursor))
	}
	b.WriteString("\n")

	end := min(m.Offset+m.Height, len(m.Visible))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		leaf := m.Leaves[m.Visible[i]]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, leaf.Path, formatLeafValue(leaf.Value)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Path", "Value").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			if col == 2 {
				return StyleNumber
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	if len(m.Visible) == 0 {
		b.WriteString(listDimStyle.Render("  no matching values"))
	} else {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Visible))))
	}

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

func formatLeafValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(x)
	default:
		return fmt.Sprint(x)
	}
}

func formatRelativeTime(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
