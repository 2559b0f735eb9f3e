package workflow

import (
	"context"
	"image"
	"sync"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/five82/haarview/internal/notify"
	"github.com/five82/haarview/internal/policy"
	"github.com/five82/haarview/internal/preview"
	"github.com/five82/haarview/internal/wavelet"
)

// DecompressionView is a point-in-time copy of the decompression state.
type DecompressionView struct {
	Phase  Phase
	Source string
	Size   int64
	Image  image.Image
	Busy   bool
}

// Decompression recovers a bitmap from a compressed artifact.
type Decompression struct {
	deps Deps

	mu     sync.Mutex
	phase  Phase
	source string
	result *Result
	image  image.Image
	closed bool
}

// NewDecompression returns a workflow awaiting an artifact.
func NewDecompression(d Deps) *Decompression {
	return &Decompression{deps: d.withDefaults()}
}

// Upload sends f for decoding. A decoded workflow refuses further uploads;
// leaving it through the navigator is the only way to start over.
func (d *Decompression) Upload(ctx context.Context, f wavelet.File) bool {
	d.mu.Lock()
	phase, closed := d.phase, d.closed
	d.mu.Unlock()
	if phase != AwaitingUpload || closed {
		d.deps.Logger.Debug("decompression upload refused", zap.Stringer("phase", phase), zap.Bool("closed", closed))
		return false
	}

	out := d.deps.Policy.Decompress(ctx, f)
	if !out.OK() {
		return false
	}

	res, err := newResult(d.deps.TempDir, out.Value)
	if err != nil {
		d.deps.Policy.Report(notify.KindStorage, policy.OpDecompress, err)
		return false
	}

	img, err := preview.Decode(out.Value)
	if err != nil {
		// The service may emit BMP variants the local decoder rejects; the
		// bytes are still saved as-is.
		d.deps.Logger.Warn("decoded bitmap has no preview", zap.String("file", f.Name), zap.Error(err))
	}

	d.mu.Lock()
	if d.closed || d.phase != AwaitingUpload {
		d.mu.Unlock()
		_ = res.Close()
		return false
	}
	d.phase = Decoded
	d.source = f.Name
	d.result = res
	d.image = img
	d.mu.Unlock()

	d.deps.Logger.Info("artifact decoded",
		zap.String("file", f.Name),
		zap.String("spool", res.Path()),
		zap.Int64("bytes", res.Size()),
	)
	d.deps.Policy.Succeeded("Decompression complete", f.Name+" decoded ("+humanize.IBytes(uint64(res.Size()))+")")
	return true
}

// Download saves the decoded bitmap as decompressed.bmp and returns the path.
func (d *Decompression) Download() (string, bool) {
	d.mu.Lock()
	res := d.result
	ok := d.phase == Decoded && res != nil && !d.closed
	d.mu.Unlock()
	if !ok {
		return "", false
	}

	rc, err := res.Open()
	if err != nil {
		d.deps.Policy.Report(notify.KindStorage, policy.OpSave, err)
		return "", false
	}
	defer func() { _ = rc.Close() }()

	path, err := d.deps.Saver.Save(DecompressedName, rc)
	if err != nil {
		d.deps.Policy.Report(notify.KindStorage, policy.OpSave, err)
		return "", false
	}
	d.deps.Policy.Succeeded("Download complete", path)
	return path, true
}

// View returns a snapshot for rendering.
func (d *Decompression) View() DecompressionView {
	d.mu.Lock()
	defer d.mu.Unlock()
	v := DecompressionView{
		Phase:  d.phase,
		Source: d.source,
		Image:  d.image,
		Busy:   d.deps.Policy.Busy(),
	}
	if d.result != nil {
		v.Size = d.result.Size()
	}
	return v
}

// Result returns the current decoded result, if any.
func (d *Decompression) Result() (*Result, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.result, d.result != nil
}

// Close releases the decoded result. It is safe to call more than once.
func (d *Decompression) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.reset()
}

func (d *Decompression) reset() {
	d.mu.Lock()
	res := d.result
	d.result = nil
	d.image = nil
	d.source = ""
	d.phase = AwaitingUpload
	d.mu.Unlock()

	if res != nil {
		if err := res.Close(); err != nil {
			d.deps.Logger.Warn("release decoded result", zap.Error(err))
		}
	}
}
