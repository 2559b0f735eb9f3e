// Package ui provides the Bubble Tea terminal interface for haarview.
package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/haarview/internal/prefs"
	"github.com/five82/haarview/internal/state"
	"github.com/five82/haarview/internal/workflow"
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Navigator *workflow.Navigator
	Store     *state.Store
	Logger    *zap.Logger
	Prefs     prefs.Prefs
	PrefsPath string
	LogPath   string
	APIURL    string
	OutputDir string
	Tick      time.Duration
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx       context.Context
	nav       *workflow.Navigator
	store     *state.Store
	logger    *zap.Logger
	prefs     prefs.Prefs
	prefsPath string
	logPath   string
	apiURL    string
	outputDir string
	tick      time.Duration

	keys   keyMap
	theme  Theme
	width  int
	height int
	ready  bool

	snapshot state.Snapshot
	now      time.Time

	homeIndex int
	pending   int

	showHelp bool

	showLogs    bool
	logViewport viewport.Model

	prompting bool
	prompt    textinput.Model

	spinner spinner.Model
	preview *previewCache
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	tick := opts.Tick
	if tick <= 0 {
		tick = DefaultUIInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	store := opts.Store
	if store == nil {
		store = &state.Store{}
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	prompt := textinput.New()
	prompt.Prompt = "path: "
	prompt.CharLimit = 4096

	return Model{
		ctx:       ctx,
		nav:       opts.Navigator,
		store:     store,
		logger:    logger,
		prefs:     opts.Prefs,
		prefsPath: prefsPath,
		logPath:   opts.LogPath,
		apiURL:    opts.APIURL,
		outputDir: opts.OutputDir,
		tick:      tick,
		keys:      DefaultKeyMap(),
		theme:     GetTheme(opts.Prefs.Theme),
		now:       time.Now(),
		spinner:   sp,
		prompt:    prompt,
		preview:   &previewCache{},
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(m.tick),
		fetchSnapshotCmd(m.store),
		m.spinner.Tick,
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.logViewport = viewport.New(msg.Width, msg.Height)
		}
		m.ready = true
		m.resizeLogViewport()
		m.prompt.Width = max(msg.Width-12, 10)
		return m, nil

	case tickMsg:
		m.now = time.Time(msg)
		cmds := []tea.Cmd{fetchSnapshotCmd(m.store), tickCmd(m.tick)}
		if m.showLogs {
			cmds = append(cmds, readLogCmd(m.logPath))
		}
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		return m, nil

	case logLinesMsg:
		m.setLogLines(msg)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case uploadedMsg:
		m.pending--
		if !msg.ok {
			return m, fetchSnapshotCmd(m.store)
		}
		cmd := m.startLoad(msg.workflow, msg.ticket)
		return m, cmd

	case loadedMsg:
		m.pending--
		return m, fetchSnapshotCmd(m.store)

	case savedMsg, decodedMsg:
		m.pending--
		return m, fetchSnapshotCmd(m.store)
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.showLogs {
		return m.renderLogs()
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.prompting {
		return m.handlePromptKey(msg)
	}
	if m.showLogs {
		return m.handleLogsKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.nav.Close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		return m, nil
	case key.Matches(msg, m.keys.Logs):
		m.showLogs = true
		return m, readLogCmd(m.logPath)
	case key.Matches(msg, m.keys.Home):
		m.nav.GoHome()
		m.store.Dismiss()
		return m, nil
	}

	switch screen := m.nav.Current().(type) {
	case workflow.Home:
		return m.handleHomeKey(msg)
	case workflow.CompressScreen:
		return m.handleCompressKey(msg, screen.Workflow)
	case workflow.DecompressScreen:
		return m.handleDecompressKey(msg, screen.Workflow)
	}
	return m, nil
}

func (m Model) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.OpenCompress):
		m.nav.OpenCompress()
	case key.Matches(msg, m.keys.OpenDecompress):
		m.nav.OpenDecompress()
	case key.Matches(msg, m.keys.Up):
		m.homeIndex = 0
	case key.Matches(msg, m.keys.Down):
		m.homeIndex = 1
	case key.Matches(msg, m.keys.Select):
		if m.homeIndex == 0 {
			m.nav.OpenCompress()
		} else {
			m.nav.OpenDecompress()
		}
	}
	return m, nil
}

func (m Model) handleCompressKey(msg tea.KeyMsg, wf *workflow.Compression) (tea.Model, tea.Cmd) {
	var (
		ticket workflow.LoadTicket
		ok     bool
	)
	q := wf.View().Query

	switch {
	case key.Matches(msg, m.keys.OpenDecompress):
		m.nav.OpenDecompress()
		return m, nil
	case key.Matches(msg, m.keys.OpenFile):
		if m.working(wf.View().Busy) {
			return m, nil
		}
		return m.openPrompt()
	case key.Matches(msg, m.keys.Save):
		v := wf.View()
		if v.Phase != workflow.Ready || m.working(v.Busy) {
			return m, nil
		}
		m.pending++
		return m, downloadCmd(m.ctx, wf)
	case key.Matches(msg, m.keys.StepForward):
		ticket, ok = wf.StepForward()
	case key.Matches(msg, m.keys.StepBackward):
		ticket, ok = wf.StepBackward()
	case key.Matches(msg, m.keys.LevelUp):
		ticket, ok = wf.SetLevel(q.Level + 1)
	case key.Matches(msg, m.keys.LevelDown):
		ticket, ok = wf.SetLevel(q.Level - 1)
	case key.Matches(msg, m.keys.RatioUp):
		ticket, ok = wf.SetRatio(q.Ratio + RatioStep)
	case key.Matches(msg, m.keys.RatioDown):
		ticket, ok = wf.SetRatio(q.Ratio - RatioStep)
	}
	if !ok {
		return m, nil
	}
	cmd := m.startLoad(wf, ticket)
	return m, cmd
}

func (m Model) handleDecompressKey(msg tea.KeyMsg, wf *workflow.Decompression) (tea.Model, tea.Cmd) {
	v := wf.View()
	switch {
	case key.Matches(msg, m.keys.OpenCompress):
		m.nav.OpenCompress()
		return m, nil
	case key.Matches(msg, m.keys.OpenFile):
		if m.working(v.Busy) {
			return m, nil
		}
		if v.Phase == workflow.Decoded {
			m.nav.OpenDecompress()
		}
		return m.openPrompt()
	case key.Matches(msg, m.keys.Save):
		if v.Phase != workflow.Decoded || m.working(v.Busy) {
			return m, nil
		}
		m.pending++
		return m, saveDecodedCmd(wf)
	}
	return m, nil
}

// startLoad schedules the image load for a freshly issued ticket.
func (m *Model) startLoad(wf *workflow.Compression, t workflow.LoadTicket) tea.Cmd {
	m.pending++
	return loadCmd(m.ctx, wf, t)
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.logger.Warn("save prefs", zap.Error(err))
	}
}

// busy reports whether any workflow request or image load is outstanding.
func (m Model) busy() bool {
	return m.pending > 0
}

// working reports whether a new request must wait: either a command has not
// reported back yet or the policy still holds its busy flag.
func (m Model) working(policyBusy bool) bool {
	return policyBusy || m.busy()
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// renderContent renders the active screen.
func (m Model) renderContent() string {
	switch screen := m.nav.Current().(type) {
	case workflow.CompressScreen:
		return m.renderCompress(screen.Workflow.View())
	case workflow.DecompressScreen:
		return m.renderDecompress(screen.Workflow.View())
	default:
		return m.renderHome()
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if opts.Navigator != nil {
		opts.Navigator.Close()
	}
	return err
}
