package cli

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/mcinstall/pkg/manifest"
)

func pickerRows(ids ...string) []versionRow {
	rows := make([]versionRow, len(ids))
	for i, id := range ids {
		rows[i] = versionRow{Entry: manifest.Entry{ID: id, Type: "release"}}
	}
	return rows
}

func press(m versionPicker, key string) (versionPicker, tea.Cmd) {
	var msg tea.KeyMsg
	switch key {
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, cmd := m.Update(msg)
	return next.(versionPicker), cmd
}

func TestVersionPickerNavigation(t *testing.T) {
	m := newVersionPicker(pickerRows("1.20.1", "1.20", "1.19.4", "1.19.3"))
	m.Height = 2

	m, _ = press(m, "up")
	if m.Cursor != 0 {
		t.Errorf("up at top: cursor = %d, want 0", m.Cursor)
	}
	m, _ = press(m, "down")
	m, _ = press(m, "j")
	if m.Cursor != 2 || m.Offset != 1 {
		t.Errorf("after two downs: cursor = %d offset = %d, want 2 and 1", m.Cursor, m.Offset)
	}
	m, _ = press(m, "down")
	m, _ = press(m, "down")
	if m.Cursor != 3 {
		t.Errorf("down at bottom: cursor = %d, want 3", m.Cursor)
	}
	m, _ = press(m, "k")
	m, _ = press(m, "k")
	m, _ = press(m, "k")
	if m.Cursor != 0 || m.Offset != 0 {
		t.Errorf("back at top: cursor = %d offset = %d, want 0 and 0", m.Cursor, m.Offset)
	}
}

func TestVersionPickerSelect(t *testing.T) {
	m := newVersionPicker(pickerRows("1.20.1", "1.20"))
	m, _ = press(m, "down")
	m, cmd := press(m, "enter")

	if m.Selected == nil || m.Selected.ID != "1.20" {
		t.Fatalf("Selected = %v, want 1.20", m.Selected)
	}
	if cmd == nil {
		t.Fatal("enter should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("enter should return tea.Quit")
	}
}

func TestVersionPickerQuit(t *testing.T) {
	m, cmd := press(newVersionPicker(pickerRows("1.20.1")), "q")

	if m.Selected != nil {
		t.Errorf("Selected = %v, want nil after quit", m.Selected)
	}
	if cmd == nil {
		t.Error("q should quit")
	}
}

func TestVersionPickerView(t *testing.T) {
	m := newVersionPicker(pickerRows("1.20.1", "1.20"))
	m.Rows[0].Installed = true

	view := m.View()
	for _, want := range []string{"Select Version", "1.20.1", "installed", "[1/2]"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		t    time.Time
		want string
	}{
		{time.Time{}, "—"},
		{now.Add(-5 * time.Minute), "5m ago"},
		{now.Add(-3 * time.Hour), "3h ago"},
		{now.Add(-2 * 24 * time.Hour), "2d ago"},
		{time.Date(2023, 6, 12, 13, 25, 51, 0, time.UTC), "Jun 12, 2023"},
	}
	for _, tt := range tests {
		if got := formatRelativeTime(tt.t, now); got != tt.want {
			t.Errorf("formatRelativeTime(%v) = %q, want %q", tt.t, got, tt.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1536, "1.5 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
		{3 << 30, "3.0 GiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
