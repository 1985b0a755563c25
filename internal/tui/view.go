package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/csheth/agentdeck/internal/logsync"
)

func (m *model) View() string {
	if !m.ready {
		return "Starting agentdeck…"
	}
	main := joinNonEmpty([]string{
		m.heroView(),
		m.viewport.View(),
		m.progressView(),
		m.composerView(),
		m.statusBarView(),
		m.noticeView(),
	})
	return lipgloss.JoinHorizontal(lipgloss.Top, m.sidebarView(), mainColumnStyle.Render(main))
}

func (m *model) heroView() string {
	title := heroTitleStyle.Render("agentdeck")
	return lipgloss.JoinHorizontal(lipgloss.Bottom, title, " ", taglineStyle.Render(heroTagline))
}

func (m *model) sidebarView() string {
	var b strings.Builder
	b.WriteString(tabBarView(m.activeTab))
	b.WriteRune('\n')
	if m.activeTab == tabTasks {
		m.writeTaskRows(&b)
	} else {
		m.writeChatRows(&b)
	}
	return sidebarStyle.Width(sidebarWidth).Render(b.String())
}

func tabBarView(active tab) string {
	cells := make([]string, 0, 2)
	for _, t := range []tab{tabChats, tabTasks} {
		if t == active {
			cells = append(cells, activeTabStyle.Render(t.label()))
		} else {
			cells = append(cells, inactiveTabStyle.Render(t.label()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func (m *model) writeChatRows(b *strings.Builder) {
	ordered := logsync.DisplayOrder(m.contexts)
	if len(ordered) == 0 {
		b.WriteString(helperStyle.Render("No chats yet. Ctrl+N starts one."))
		b.WriteRune('\n')
		return
	}
	for _, c := range ordered {
		b.WriteString(m.contextRow(c.ID, c.Name))
		b.WriteRune('\n')
	}
}

func (m *model) writeTaskRows(b *strings.Builder) {
	if len(m.tasks) == 0 {
		b.WriteString(helperStyle.Render("No scheduled tasks."))
		b.WriteRune('\n')
		return
	}
	for _, t := range m.tasks {
		label := t.Name
		if t.State != "" {
			label = fmt.Sprintf("%s [%s]", t.Name, t.State)
		}
		b.WriteString(m.contextRow(t.ID, label))
		b.WriteRune('\n')
	}
}

func (m *model) contextRow(id, name string) string {
	if name == "" {
		name = shortID(id)
	}
	row := truncate.StringWithTail(name, uint(sidebarWidth-4), "…")
	if id == m.switcher.Current() {
		return selectedRowStyle.Render("› " + row)
	}
	return rowStyle.Render("  " + row)
}

func (m *model) progressView() string {
	if !m.progressActive || strings.TrimSpace(m.progress) == "" {
		return ""
	}
	line := fmt.Sprintf("%s %s", m.spinner.View(), m.progress)
	return progressStyle.Render(truncate.StringWithTail(line, uint(m.viewport.Width), "…"))
}

func (m *model) composerView() string {
	return m.composer.View()
}

func (m *model) statusBarView() string {
	parts := []string{m.connectionLabel()}
	if id := m.switcher.Current(); id != "" {
		parts = append(parts, "Chat "+shortID(id))
	}
	if m.paused {
		parts = append(parts, "PAUSED")
	}
	if !m.scroll.isPinned() {
		parts = append(parts, "scroll held")
	}
	if m.prefs.SpeechEnabled {
		parts = append(parts, "speech on")
	}
	return statusBarStyle.Render(strings.Join(parts, "  •  "))
}

func (m *model) connectionLabel() string {
	switch {
	case m.connected:
		return "● online"
	case m.everConnected:
		return "○ reconnecting"
	default:
		return "○ connecting"
	}
}

func (m *model) noticeView() string {
	if !m.notice.active(time.Now()) {
		return ""
	}
	if m.notice.isError {
		return errorStyle.Render(m.notice.text)
	}
	return helperStyle.Render(m.notice.text)
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n")
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

var (
	heroTitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff8c00"))
	taglineStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffb347")).Italic(true)
	helperStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	statusBarStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)
	progressStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffd166")).Italic(true)
	sidebarStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder(), false, true, false, false).BorderForeground(lipgloss.Color("#56526e")).Padding(0, 1)
	mainColumnStyle  = lipgloss.NewStyle().PaddingLeft(1)
	activeTabStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	inactiveTabStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Padding(0, 1)
	selectedRowStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8ecae6"))
	rowStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)
