package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/haarview/internal/notify"
)

// renderHeader renders the title bar: logo, active screen, service and
// activity indicator.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()

	parts := []string{
		styles.Logo.Render("haarview"),
		styles.AccentText.Bold(true).Render(m.nav.Current().Title()),
	}
	if m.apiURL != "" {
		parts = append(parts, styles.FaintText.Render("api ")+styles.MutedText.Render(truncateMiddle(m.apiURL, 40)))
	}
	if m.snapshot.IsOffline() {
		parts = append(parts, styles.DangerText.Render("service unreachable"))
	}
	if m.busy() {
		parts = append(parts, styles.WarningText.Render(m.spinner.View()+" working"))
	}

	return styles.Header.Width(m.width).Render(strings.Join(parts, "  "))
}

// renderFooter shows the path prompt, the active notification or key hints.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()

	if m.prompting {
		return styles.Footer.Width(m.width).Render(m.prompt.View() + "  " +
			styles.FaintText.Render("enter confirm · esc cancel"))
	}

	if n, ok := m.snapshot.Active(m.now, ToastTTL); ok {
		return styles.Footer.Width(m.width).Render(m.renderToast(n))
	}

	hints := []string{
		styles.Key.Render("esc") + " home",
		styles.Key.Render("L") + " logs",
		styles.Key.Render("T") + " theme",
		styles.Key.Render("?") + " help",
		styles.Key.Render("q") + " quit",
	}
	if m.outputDir != "" {
		hints = append(hints, styles.FaintText.Render("saves to "+truncateMiddle(m.outputDir, 40)))
	}
	return styles.Footer.Width(m.width).Render(strings.Join(hints, "  "))
}

func (m Model) renderToast(n notify.Notification) string {
	styles := m.theme.Styles()
	title := styles.SuccessText.Render(n.Title)
	if n.IsError() {
		title = styles.DangerText.Render(n.Title)
	}
	msg := n.Message
	if width := m.width - lipgloss.Width(n.Title) - 6; width > 10 {
		msg = truncateMiddle(msg, width)
	}
	return title + "  " + styles.Text.Render(msg)
}

// truncateMiddle shortens s to at most n runes, keeping both ends.
func truncateMiddle(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	head := (n - 1) / 2
	tail := n - 1 - head
	return string(r[:head]) + "…" + string(r[len(r)-tail:])
}
