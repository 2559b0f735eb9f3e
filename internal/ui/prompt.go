package ui

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/haarview/internal/notify"
	"github.com/five82/haarview/internal/wavelet"
	"github.com/five82/haarview/internal/workflow"
)

// openPrompt shows the file path input, seeded with the last directory used.
func (m Model) openPrompt() (tea.Model, tea.Cmd) {
	m.prompting = true
	seed := ""
	if m.prefs.LastDir != "" {
		seed = m.prefs.LastDir + string(filepath.Separator)
	}
	m.prompt.SetValue(seed)
	m.prompt.CursorEnd()
	switch m.nav.Current().(type) {
	case workflow.DecompressScreen:
		m.prompt.Placeholder = "photo.compressed"
	default:
		m.prompt.Placeholder = "image.bmp"
	}
	return m, m.prompt.Focus()
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.closePrompt()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		path := m.prompt.Value()
		m.closePrompt()
		return m.submitPath(path)
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m *Model) closePrompt() {
	m.prompting = false
	m.prompt.Blur()
	m.prompt.Reset()
}

// submitPath hands the chosen file to the active workflow.
func (m Model) submitPath(raw string) (tea.Model, tea.Cmd) {
	path := expandHome(strings.TrimSpace(raw))
	if path == "" || m.busy() {
		return m, nil
	}
	file, err := wavelet.FileFromPath(path)
	if err != nil {
		m.store.Notify(notify.Notification{
			Kind:    notify.KindValidation,
			Title:   "File not found",
			Message: err.Error(),
		})
		return m, fetchSnapshotCmd(m.store)
	}

	m.prefs = m.prefs.WithFile(path)
	m.savePrefs()

	switch screen := m.nav.Current().(type) {
	case workflow.CompressScreen:
		m.pending++
		return m, uploadImageCmd(m.ctx, screen.Workflow, file)
	case workflow.DecompressScreen:
		m.pending++
		return m, decompressCmd(m.ctx, screen.Workflow, file)
	}
	return m, nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
