package workflow

import (
	"bytes"
	"context"
	"image"
	"sync"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/five82/haarview/internal/notify"
	"github.com/five82/haarview/internal/policy"
	"github.com/five82/haarview/internal/wavelet"
)

// LoadTicket identifies one visualization load. Only the ticket carrying the
// latest generation may complete.
type LoadTicket struct {
	Generation uint64
	Query      wavelet.Query
	URL        string
}

// Frame is the visualization currently on display.
type Frame struct {
	Query wavelet.Query
	URL   string
	Image image.Image
	// Err is set when the load for Query failed.
	Err string
}

// CompressionView is a point-in-time copy of the compression state.
type CompressionView struct {
	Phase       Phase
	Source      string
	Width       int // source pixels, 0 when the header could not be read
	Height      int
	Handle      wavelet.Handle
	Query       wavelet.Query
	MaxStep     int
	Loading     bool
	Busy        bool
	Frame       Frame
	HasFrame    bool
	CanForward  bool
	CanBackward bool
}

// Compression uploads a source image and explores its decomposition.
type Compression struct {
	deps Deps

	mu         sync.Mutex
	phase      Phase
	source     string
	dims       image.Config
	handle     wavelet.Handle
	level      int
	ratio      int
	step       int
	generation uint64
	target     wavelet.Query
	loading    bool
	frame      Frame
	hasFrame   bool
	closed     bool
}

// NewCompression returns a workflow awaiting its first upload.
func NewCompression(d Deps) *Compression {
	return &Compression{
		deps:  d.withDefaults(),
		level: DefaultLevel,
		ratio: DefaultRatio,
	}
}

// Upload validates and sends f. On success the workflow becomes Ready with
// default parameters and the first visualization ticket is returned.
func (c *Compression) Upload(ctx context.Context, f wavelet.File) (LoadTicket, bool) {
	if err := policy.ValidateBitmap(f); err != nil {
		c.deps.Policy.Reject(policy.OpUpload, err)
		return LoadTicket{}, false
	}

	dims, err := policy.BitmapDimensions(f)
	if err != nil {
		c.deps.Logger.Debug("bitmap dimensions unavailable", zap.String("file", f.Name), zap.Error(err))
	}

	out := c.deps.Policy.UploadImage(ctx, f)
	if !out.OK() {
		return LoadTicket{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return LoadTicket{}, false
	}
	c.phase = Ready
	c.source = f.Name
	c.dims = dims
	c.handle = out.Value
	c.level = DefaultLevel
	c.ratio = DefaultRatio
	c.step = 0
	c.target = wavelet.Query{}
	c.frame = Frame{}
	c.hasFrame = false
	c.deps.Logger.Info("compression ready",
		zap.String("file", f.Name),
		zap.String("handle", string(out.Value)),
	)
	return c.issueLocked()
}

// SetLevel changes the decomposition level, clamped to [MinLevel, MaxLevel],
// and resets the step to 0.
func (c *Compression) SetLevel(n int) (LoadTicket, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != Ready || c.closed {
		return LoadTicket{}, false
	}
	c.level = clamp(n, MinLevel, MaxLevel)
	c.step = 0
	return c.issueLocked()
}

// SetRatio changes the compression ratio, clamped to [MinRatio, MaxRatio].
func (c *Compression) SetRatio(n int) (LoadTicket, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != Ready || c.closed {
		return LoadTicket{}, false
	}
	c.ratio = clamp(n, MinRatio, MaxRatio)
	return c.issueLocked()
}

// StepForward advances the visualization step when allowed.
func (c *Compression) StepForward() (LoadTicket, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.canForwardLocked() {
		return LoadTicket{}, false
	}
	c.step++
	return c.issueLocked()
}

// StepBackward moves the visualization step back when allowed.
func (c *Compression) StepBackward() (LoadTicket, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.canBackwardLocked() {
		return LoadTicket{}, false
	}
	c.step--
	return c.issueLocked()
}

// CanStepForward reports whether StepForward would move.
func (c *Compression) CanStepForward() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canForwardLocked()
}

// CanStepBackward reports whether StepBackward would move.
func (c *Compression) CanStepBackward() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canBackwardLocked()
}

func (c *Compression) canForwardLocked() bool {
	return c.phase == Ready && !c.closed && !c.loading && c.step < wavelet.MaxStep(c.level)
}

func (c *Compression) canBackwardLocked() bool {
	return c.phase == Ready && !c.closed && !c.loading && c.step > 0
}

func (c *Compression) queryLocked() wavelet.Query {
	return wavelet.Query{Handle: c.handle, Level: c.level, Ratio: c.ratio, Step: c.step}
}

// issueLocked starts a load for the current query unless one was already
// issued for it.
func (c *Compression) issueLocked() (LoadTicket, bool) {
	q := c.queryLocked()
	if q == c.target {
		return LoadTicket{}, false
	}
	c.generation++
	c.target = q
	c.loading = true
	return LoadTicket{
		Generation: c.generation,
		Query:      q,
		URL:        c.deps.Policy.VisualizationURL(q),
	}, true
}

// Load fetches and decodes the image for t, then completes it.
func (c *Compression) Load(ctx context.Context, t LoadTicket) bool {
	img, err := c.deps.Loader.Load(ctx, t.URL)
	return c.CompleteLoad(t, img, err)
}

// CompleteLoad records the result of t. A ticket superseded by a later query
// change is ignored and false is returned.
func (c *Compression) CompleteLoad(t LoadTicket, img image.Image, err error) bool {
	c.mu.Lock()
	if c.closed || t.Generation != c.generation {
		c.mu.Unlock()
		c.deps.Logger.Debug("stale visualization ignored", zap.Uint64("generation", t.Generation))
		return false
	}
	c.loading = false
	c.hasFrame = true
	c.frame = Frame{Query: t.Query, URL: t.URL, Image: img}
	if err != nil {
		c.frame.Image = nil
		c.frame.Err = err.Error()
	}
	c.mu.Unlock()

	if err != nil {
		c.deps.Policy.Report(notify.KindRender, policy.OpVisualize, err)
	}
	return true
}

// Download fetches the artifact for the current parameters and saves it as
// {handle}.compressed. It returns the written path.
func (c *Compression) Download(ctx context.Context) (string, bool) {
	c.mu.Lock()
	if c.phase != Ready || c.closed {
		c.mu.Unlock()
		return "", false
	}
	q := c.queryLocked()
	c.mu.Unlock()

	out := c.deps.Policy.FetchCompressedArtifact(ctx, q)
	if !out.OK() {
		return "", false
	}
	path, err := c.deps.Saver.Save(string(q.Handle)+policy.ArtifactExt, bytes.NewReader(out.Value))
	if err != nil {
		c.deps.Policy.Report(notify.KindStorage, policy.OpSave, err)
		return "", false
	}
	c.deps.Policy.Succeeded("Download complete",
		path+" ("+humanize.IBytes(uint64(len(out.Value)))+")")
	return path, true
}

// View returns a snapshot for rendering.
func (c *Compression) View() CompressionView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CompressionView{
		Phase:       c.phase,
		Source:      c.source,
		Width:       c.dims.Width,
		Height:      c.dims.Height,
		Handle:      c.handle,
		Query:       c.queryLocked(),
		MaxStep:     wavelet.MaxStep(c.level),
		Loading:     c.loading,
		Busy:        c.deps.Policy.Busy(),
		Frame:       c.frame,
		HasFrame:    c.hasFrame,
		CanForward:  c.canForwardLocked(),
		CanBackward: c.canBackwardLocked(),
	}
}

// Close ends the session. Loads still in flight are ignored on arrival.
func (c *Compression) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.generation++
	c.loading = false
}
