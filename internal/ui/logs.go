package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/haarview/internal/logtail"
)

func (m *Model) resizeLogViewport() {
	m.logViewport.Width = m.width
	m.logViewport.Height = max(m.height-2, 1)
}

// setLogLines replaces the overlay contents, staying pinned to the bottom
// when the user has not scrolled up.
func (m *Model) setLogLines(lines []string) {
	atBottom := m.logViewport.AtBottom() || m.logViewport.TotalLineCount() == 0
	styles := m.theme.Styles()

	formatted := make([]string, 0, len(lines))
	for _, line := range lines {
		text := logtail.Format(line)
		entry, ok := logtail.Parse(line)
		switch {
		case !ok:
			formatted = append(formatted, styles.MutedText.Render(text))
		case entry.Level == "ERROR" || entry.Level == "FATAL" || entry.Level == "PANIC":
			formatted = append(formatted, styles.DangerText.Render(text))
		case entry.Level == "WARN":
			formatted = append(formatted, styles.WarningText.Render(text))
		case entry.Level == "DEBUG":
			formatted = append(formatted, styles.FaintText.Render(text))
		default:
			formatted = append(formatted, styles.Text.Render(text))
		}
	}
	if len(formatted) == 0 {
		formatted = append(formatted, styles.FaintText.Render("log is empty"))
	}
	m.logViewport.SetContent(strings.Join(formatted, "\n"))
	if atBottom {
		m.logViewport.GotoBottom()
	}
}

func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "L", "esc", "q":
		m.showLogs = false
		return m, nil
	case "g", "home":
		m.logViewport.GotoTop()
		return m, nil
	case "G", "end":
		m.logViewport.GotoBottom()
		return m, nil
	}
	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	return m, cmd
}

func (m Model) renderLogs() string {
	styles := m.theme.Styles()
	title := styles.Logo.Render("haarview") + "  " + styles.AccentText.Bold(true).Render("Log") +
		"  " + styles.FaintText.Render(truncateMiddle(m.logPath, 60))
	footer := styles.Key.Render("j/k") + " scroll  " + styles.Key.Render("g/G") + " top/bottom  " +
		styles.Key.Render("L/esc") + " close"
	return styles.Header.Width(m.width).Render(title) + "\n" +
		m.logViewport.View() + "\n" +
		styles.Footer.Width(m.width).Render(footer)
}
