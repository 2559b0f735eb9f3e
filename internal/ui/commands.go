package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/haarview/internal/logtail"
	"github.com/five82/haarview/internal/state"
	"github.com/five82/haarview/internal/wavelet"
	"github.com/five82/haarview/internal/workflow"
)

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type logLinesMsg []string

type uploadedMsg struct {
	workflow *workflow.Compression
	ticket   workflow.LoadTicket
	ok       bool
}

type loadedMsg struct {
	applied bool
}

type savedMsg struct {
	path string
	ok   bool
}

type decodedMsg struct {
	ok bool
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func readLogCmd(path string) tea.Cmd {
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		lines, err := logtail.Read(path, LogTailLines)
		if err != nil {
			return logLinesMsg{"unable to read log: " + err.Error()}
		}
		return logLinesMsg(lines)
	}
}

func uploadImageCmd(ctx context.Context, wf *workflow.Compression, f wavelet.File) tea.Cmd {
	return func() tea.Msg {
		ticket, ok := wf.Upload(ctx, f)
		return uploadedMsg{workflow: wf, ticket: ticket, ok: ok}
	}
}

func loadCmd(ctx context.Context, wf *workflow.Compression, t workflow.LoadTicket) tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{applied: wf.Load(ctx, t)}
	}
}

func downloadCmd(ctx context.Context, wf *workflow.Compression) tea.Cmd {
	return func() tea.Msg {
		path, ok := wf.Download(ctx)
		return savedMsg{path: path, ok: ok}
	}
}

func decompressCmd(ctx context.Context, wf *workflow.Decompression, f wavelet.File) tea.Cmd {
	return func() tea.Msg {
		return decodedMsg{ok: wf.Upload(ctx, f)}
	}
}

func saveDecodedCmd(wf *workflow.Decompression) tea.Cmd {
	return func() tea.Msg {
		path, ok := wf.Download()
		return savedMsg{path: path, ok: ok}
	}
}
