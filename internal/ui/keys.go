package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Logs       key.Binding
	Home       key.Binding

	// Home
	OpenCompress   key.Binding
	OpenDecompress key.Binding
	Up             key.Binding
	Down           key.Binding
	Select         key.Binding

	// Workflows
	OpenFile     key.Binding
	Save         key.Binding
	StepForward  key.Binding
	StepBackward key.Binding
	LevelUp      key.Binding
	LevelDown    key.Binding
	RatioUp      key.Binding
	RatioDown    key.Binding

	// Prompt
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Logs: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Toggle log overlay"),
		),
		Home: key.NewBinding(
			key.WithKeys("esc", "H"),
			key.WithHelp("esc/H", "Home"),
		),

		OpenCompress: key.NewBinding(
			key.WithKeys("c", "1"),
			key.WithHelp("c", "Compress an image"),
		),
		OpenDecompress: key.NewBinding(
			key.WithKeys("d", "2"),
			key.WithHelp("d", "Decompress an artifact"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Open"),
		),

		OpenFile: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "Choose file"),
		),
		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Download"),
		),
		StepForward: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "Next step"),
		),
		StepBackward: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "Previous step"),
		),
		LevelUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "Level up"),
		),
		LevelDown: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "Level down"),
		),
		RatioUp: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "Ratio +5%"),
		),
		RatioDown: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "Ratio -5%"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Cancel"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.OpenCompress, k.OpenDecompress, k.Up, k.Down, k.Select},
		{k.OpenFile, k.Save},
		{k.StepBackward, k.StepForward, k.LevelUp, k.LevelDown, k.RatioUp, k.RatioDown},
		{k.Home, k.Logs, k.CycleTheme, k.Help, k.Quit},
	}
}
