package policy

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/five82/haarview/internal/notify"
	"github.com/five82/haarview/internal/wavelet"
)

// Policy issues every remote operation the same way: it holds the busy flag
// for the duration of the call, converts errors into a Failure, logs them and
// reports them to the notification sink. It never retries.
type Policy struct {
	remote   wavelet.API
	sink     notify.Sink
	logger   *zap.Logger
	inflight atomic.Int64
	now      func() time.Time
}

// New builds a Policy. A nil sink discards notifications and a nil logger
// disables logging.
func New(remote wavelet.API, sink notify.Sink, logger *zap.Logger) *Policy {
	if sink == nil {
		sink = notify.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Policy{remote: remote, sink: sink, logger: logger, now: time.Now}
}

// Busy reports whether any remote operation is in flight.
func (p *Policy) Busy() bool {
	return p.inflight.Load() > 0
}

// acquire marks the policy busy; the returned func must run on every exit path.
func (p *Policy) acquire() func() {
	p.inflight.Add(1)
	var once atomic.Bool
	return func() {
		if once.CompareAndSwap(false, true) {
			p.inflight.Add(-1)
		}
	}
}

// UploadImage sends a source bitmap. The caller has already validated it.
func (p *Policy) UploadImage(ctx context.Context, f wavelet.File) Outcome[wavelet.Handle] {
	release := p.acquire()
	defer release()

	start := p.now()
	handle, err := p.remote.Upload(ctx, f)
	if err != nil {
		return Fail[wavelet.Handle](p.Report(notify.KindTransport, OpUpload, err))
	}
	p.logger.Info("image uploaded",
		zap.String("file", f.Name),
		zap.Int64("bytes", f.Size),
		zap.String("handle", string(handle)),
		zap.Duration("elapsed", p.now().Sub(start)),
	)
	return Success(handle)
}

// VisualizationURL builds the image address for q without issuing a request.
func (p *Policy) VisualizationURL(q wavelet.Query) string {
	return p.remote.VisualizationURL(q)
}

// FetchCompressedArtifact downloads the artifact for q.
func (p *Policy) FetchCompressedArtifact(ctx context.Context, q wavelet.Query) Outcome[[]byte] {
	release := p.acquire()
	defer release()

	data, err := p.remote.FetchCompressed(ctx, q)
	if err != nil {
		return Fail[[]byte](p.Report(notify.KindTransport, OpDownload, err))
	}
	p.logger.Info("artifact downloaded",
		zap.String("handle", string(q.Handle)),
		zap.Int("level", q.Level),
		zap.Int("ratio", q.Ratio),
		zap.Int("step", q.Step),
		zap.Int("bytes", len(data)),
	)
	return Success(data)
}

// Decompress posts an artifact for decoding. Files without the artifact
// extension are rejected locally and never sent.
func (p *Policy) Decompress(ctx context.Context, f wavelet.File) Outcome[[]byte] {
	if err := ValidateArtifact(f); err != nil {
		return Fail[[]byte](p.Reject(OpDecompress, err))
	}

	release := p.acquire()
	defer release()

	data, err := p.remote.Decompress(ctx, f)
	if err != nil {
		return Fail[[]byte](p.Report(notify.KindTransport, OpDecompress, err))
	}
	p.logger.Info("artifact decompressed", zap.String("file", f.Name), zap.Int("bytes", len(data)))
	return Success(data)
}

// Reject reports input refused before any network call.
func (p *Policy) Reject(op Operation, err error) *Failure {
	return p.Report(notify.KindValidation, op, err)
}

// Report normalizes err into a Failure and surfaces it.
func (p *Policy) Report(kind notify.Kind, op Operation, err error) *Failure {
	f := &Failure{Kind: kind, Op: op, Reason: reasonFor(err), Err: err}
	title, hint := describe(kind, op)

	p.logger.Warn("operation failed",
		zap.String("op", string(op)),
		zap.String("kind", kind.String()),
		zap.String("reason", f.Reason),
		zap.Error(err),
	)
	p.sink.Notify(notify.Notification{Kind: kind, Title: title, Message: hint, Time: p.now()})
	return f
}

// Succeeded surfaces a completed operation.
func (p *Policy) Succeeded(title, message string) {
	p.sink.Notify(notify.Notification{Kind: notify.KindInfo, Title: title, Message: message, Time: p.now()})
}

var sentinels = []error{ErrInvalidFileType, ErrTooLarge, ErrNotBitmap, ErrEmptyFile, context.Canceled, context.DeadlineExceeded}

func reasonFor(err error) string {
	if err == nil {
		return "unknown error"
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return err.Error()
}

func describe(kind notify.Kind, op Operation) (title, hint string) {
	switch op {
	case OpUpload:
		if kind == notify.KindValidation {
			return "Upload failed", "File rejected, please upload a .bmp file under 10 MB."
		}
		return "Upload failed", "The service could not process this image. Try another image."
	case OpDecompress:
		if kind == notify.KindValidation {
			return "Invalid file type", "File must be a .compressed file. Compress an image first."
		}
		return "Decompression failed", "The service could not decode this file. Check that it is a .compressed artifact."
	case OpDownload:
		return "Download failed", "The compressed file could not be fetched. Try again."
	case OpVisualize:
		return "Preview failed", "The visualization could not be loaded. Try another step or ratio."
	case OpSave:
		return "Save failed", "The file could not be written. Check the output directory."
	default:
		return "Error occurred", "Something went wrong. Try again."
	}
}
