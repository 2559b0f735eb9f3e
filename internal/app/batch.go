package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/five82/haarview/internal/notify"
	"github.com/five82/haarview/internal/wavelet"
	"github.com/five82/haarview/internal/workflow"
)

// ErrReported is returned by the batch commands when the failure has already
// been printed as a notification.
var ErrReported = errors.New("operation failed")

// CompressOptions select the parameters of a batch compression.
type CompressOptions struct {
	Path   string
	Level  int
	Ratio  int
	Step   int
	OutDir string // empty uses the configured output directory
}

// DecompressOptions select the input and destination of a batch decompression.
type DecompressOptions struct {
	Path   string
	OutDir string
}

// Compress uploads a bitmap, applies the requested parameters and saves the
// compressed artifact. Notifications are printed to w.
func Compress(ctx context.Context, opts Options, c CompressOptions, w io.Writer) (string, error) {
	svc, err := setup(opts, newConsoleSink(w))
	if err != nil {
		return "", err
	}
	defer svc.close()
	if c.OutDir != "" {
		svc.deps.Saver = workflow.DirSaver{Dir: c.OutDir}
	}

	file, err := wavelet.FileFromPath(c.Path)
	if err != nil {
		return "", err
	}

	wf := workflow.NewCompression(svc.deps)
	defer wf.Close()

	// No preview is shown in batch mode, so every issued visualization is
	// settled immediately without fetching it.
	settle := func(t workflow.LoadTicket, ok bool) {
		if ok {
			wf.CompleteLoad(t, nil, nil)
		}
	}

	ticket, ok := wf.Upload(ctx, file)
	if !ok {
		return "", ErrReported
	}
	settle(ticket, ok)
	settle(wf.SetLevel(c.Level))
	settle(wf.SetRatio(c.Ratio))
	for wf.View().Query.Step < c.Step {
		ticket, ok := wf.StepForward()
		if !ok {
			break
		}
		settle(ticket, ok)
	}

	q := wf.View().Query
	svc.logger.Info("batch compress",
		zap.String("file", file.Name),
		zap.Int("level", q.Level),
		zap.Int("ratio", q.Ratio),
		zap.Int("step", q.Step),
	)
	path, ok := wf.Download(ctx)
	if !ok {
		return "", ErrReported
	}
	return path, nil
}

// Decompress decodes a compressed artifact and saves decompressed.bmp.
// Notifications are printed to w.
func Decompress(ctx context.Context, opts Options, d DecompressOptions, w io.Writer) (string, error) {
	svc, err := setup(opts, newConsoleSink(w))
	if err != nil {
		return "", err
	}
	defer svc.close()
	if d.OutDir != "" {
		svc.deps.Saver = workflow.DirSaver{Dir: d.OutDir}
	}

	file, err := wavelet.FileFromPath(d.Path)
	if err != nil {
		return "", err
	}

	wf := workflow.NewDecompression(svc.deps)
	defer wf.Close()

	if !wf.Upload(ctx, file) {
		return "", ErrReported
	}
	path, ok := wf.Download()
	if !ok {
		return "", ErrReported
	}
	return path, nil
}

// SampleOptions select where the example bitmap is written.
type SampleOptions struct {
	Size   int // edge length in pixels; zero uses workflow.DefaultSampleSize
	OutDir string
}

// Sample writes example.bmp, a bitmap ready to be compressed.
func Sample(opts Options, s SampleOptions, w io.Writer) (string, error) {
	sink := newConsoleSink(w)
	svc, err := setup(opts, sink)
	if err != nil {
		return "", err
	}
	defer svc.close()
	if s.OutDir != "" {
		svc.deps.Saver = workflow.DirSaver{Dir: s.OutDir}
	}

	path, err := workflow.WriteSample(svc.deps.Saver, s.Size)
	if err != nil {
		svc.logger.Warn("write sample", zap.Error(err))
		return "", err
	}
	sink.Notify(notify.Notification{Kind: notify.KindInfo, Title: "Sample written", Message: path})
	return path, nil
}

// consoleSink prints notifications as coloured status lines.
type consoleSink struct {
	mu sync.Mutex
	w  io.Writer
}

func newConsoleSink(w io.Writer) *consoleSink {
	return &consoleSink{w: w}
}

func (s *consoleSink) Notify(n notify.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	icon, clr := "✓", color.New(color.FgGreen)
	if n.IsError() {
		icon, clr = "✗", color.New(color.FgRed)
	}
	clr.Fprintf(s.w, "%s %s", icon, n.Title)
	if n.Message != "" {
		color.New(color.FgHiBlack).Fprintf(s.w, " - %s", n.Message)
	}
	fmt.Fprintln(s.w)
}
