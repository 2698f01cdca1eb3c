package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/mcinstall/pkg/manifest"
)

// versionRow is a manifest entry with its local state.
type versionRow struct {
	manifest.Entry
	Installed bool
	Latest    bool
}

// versionTable renders rows as a table. The row at cursor, relative to rows,
// is highlighted; pass -1 for none.
func versionTable(rows []versionRow, cursor int, now time.Time) *table.Table {
	cells := make([][]string, len(rows))
	for i, r := range rows {
		marker := "  "
		if i == cursor {
			marker = "▸ "
		}
		var status []string
		if r.Latest {
			status = append(status, "latest")
		}
		if r.Installed {
			status = append(status, "installed")
		}
		cells[i] = []string{marker, r.ID, r.Type, formatRelativeTime(r.ReleaseTime, now), strings.Join(status, ", ")}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Version", "Type", "Released", "Status").
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row < 0 || row >= len(rows) {
				return lipgloss.NewStyle()
			}
			r := rows[row]
			base := styleRemote
			if r.Installed {
				base = styleInstalled
			}
			if row == cursor {
				return base.Bold(true)
			}
			if col == 3 {
				return base.Foreground(colorDim)
			}
			return base
		})
}

// =============================================================================
// versionPicker - Interactive version selection
// =============================================================================

// versionPicker is the bubbletea model behind search --interactive.
type versionPicker struct {
	Rows     []versionRow
	Cursor   int
	Offset   int
	Height   int
	Selected *manifest.Entry
	now      time.Time
}

func newVersionPicker(rows []versionRow) versionPicker {
	return versionPicker{Rows: rows, Height: 15, now: time.Now()}
}

func (m versionPicker) Init() tea.Cmd {
	return nil
}

func (m versionPicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Rows) == 0 {
				return m, tea.Quit
			}
			e := m.Rows[m.Cursor].Entry
			m.Selected = &e
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m versionPicker) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Version"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Rows))
	b.WriteString(versionTable(m.Rows[m.Offset:end], m.Cursor-m.Offset, m.now).Render())
	b.WriteString("\n\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Rows))))

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

func formatRelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "—"
	}
	diff := now.Sub(t)

	switch {
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
