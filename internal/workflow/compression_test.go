package workflow

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/five82/haarview/internal/notify"
	"github.com/five82/haarview/internal/policy"
	"github.com/five82/haarview/internal/preview"
	"github.com/five82/haarview/internal/wavelet"
	"github.com/five82/haarview/internal/wavelet/wavelettest"
)

type harness struct {
	srv  *wavelettest.Server
	rec  *notify.Recorder
	deps Deps
	out  string
}

func newHarness(t *testing.T) harness {
	t.Helper()
	srv := wavelettest.NewServer(t)
	client, err := wavelet.NewClient(srv.URL, 0)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	rec := &notify.Recorder{}
	out := t.TempDir()
	return harness{
		srv: srv,
		rec: rec,
		out: out,
		deps: Deps{
			Policy:  policy.New(client, rec, nil),
			Loader:  preview.NewLoader(client),
			Saver:   DirSaver{Dir: out},
			TempDir: t.TempDir(),
		},
	}
}

var blank = image.NewGray(image.Rect(0, 0, 1, 1))

// readyCompression uploads a bitmap and completes the first load.
func readyCompression(t *testing.T, h harness) *Compression {
	t.Helper()
	c := NewCompression(h.deps)
	ticket, ok := c.Upload(context.Background(), wavelet.FileFromBytes("cat.bmp", wavelettest.Bitmap(4, 4)))
	if !ok {
		t.Fatalf("Upload failed: %#v", h.rec.All())
	}
	settle(t, c, ticket, ok)
	return c
}

func settle(t *testing.T, c *Compression, ticket LoadTicket, ok bool) {
	t.Helper()
	if !ok {
		return
	}
	if !c.CompleteLoad(ticket, blank, nil) {
		t.Fatalf("CompleteLoad(%d) ignored", ticket.Generation)
	}
}

func TestUploadStartsAtDefaultQuery(t *testing.T) {
	h := newHarness(t)
	c := NewCompression(h.deps)

	ticket, ok := c.Upload(context.Background(), wavelet.FileFromBytes("cat.bmp", wavelettest.Bitmap(4, 4)))
	if !ok {
		t.Fatalf("Upload failed: %#v", h.rec.All())
	}
	want := wavelet.Query{Handle: "abc", Level: 2, Ratio: 10, Step: 0}
	if ticket.Query != want {
		t.Fatalf("ticket query = %#v, want %#v", ticket.Query, want)
	}
	if ticket.URL != h.srv.URL+"/visualization?uid=abc&step=0&level=2&ratio=10" {
		t.Fatalf("ticket URL = %q", ticket.URL)
	}

	v := c.View()
	if v.Phase != Ready || !v.Loading || v.Handle != "abc" || v.Source != "cat.bmp" {
		t.Fatalf("view = %#v", v)
	}
	if v.Busy {
		t.Fatalf("policy still busy after upload")
	}
	if v.Width != 4 || v.Height != 4 {
		t.Fatalf("source dimensions = %dx%d, want 4x4", v.Width, v.Height)
	}

	if !c.Load(context.Background(), ticket) {
		t.Fatalf("Load ignored a current ticket")
	}
	v = c.View()
	if v.Loading || !v.HasFrame || v.Frame.Image == nil || v.Frame.Query != want {
		t.Fatalf("view after load = %#v", v)
	}

	calls := h.srv.CallsTo(wavelettest.RouteUpload)
	if len(calls) != 1 || calls[0].Field != "image" || calls[0].Filename != "cat.bmp" {
		t.Fatalf("upload calls = %#v", calls)
	}
}

func TestUploadRejectsNonBitmapLocally(t *testing.T) {
	h := newHarness(t)
	c := NewCompression(h.deps)

	if _, ok := c.Upload(context.Background(), wavelet.FileFromBytes("cat.png", []byte("\x89PNG"))); ok {
		t.Fatalf("Upload accepted a png")
	}
	if len(h.srv.Calls()) != 0 {
		t.Fatalf("server saw %d calls, want 0", len(h.srv.Calls()))
	}
	if c.View().Phase != AwaitingUpload {
		t.Fatalf("phase = %v, want awaiting upload", c.View().Phase)
	}
	last, _ := h.rec.Last()
	if last.Kind != notify.KindValidation {
		t.Fatalf("notification kind = %v, want validation", last.Kind)
	}
}

func TestUploadFailureStaysAwaiting(t *testing.T) {
	h := newHarness(t)
	h.srv.FailRoute(wavelettest.RouteUpload, 500)
	c := NewCompression(h.deps)

	if _, ok := c.Upload(context.Background(), wavelet.FileFromBytes("cat.bmp", wavelettest.Bitmap(2, 2))); ok {
		t.Fatalf("Upload succeeded against failing server")
	}
	v := c.View()
	if v.Phase != AwaitingUpload || v.Loading || v.Busy {
		t.Fatalf("view = %#v", v)
	}
	last, _ := h.rec.Last()
	if last.Title != "Upload failed" || last.Kind != notify.KindTransport {
		t.Fatalf("notification = %#v", last)
	}
}

func TestStepBoundsPerLevel(t *testing.T) {
	h := newHarness(t)
	c := readyCompression(t, h)

	for level := MinLevel; level <= MaxLevel; level++ {
		ticket, ok := c.SetLevel(level)
		settle(t, c, ticket, ok)

		if c.CanStepBackward() {
			t.Fatalf("level %d: backward allowed at step 0", level)
		}
		if _, ok := c.StepBackward(); ok {
			t.Fatalf("level %d: StepBackward moved below 0", level)
		}

		for c.CanStepForward() {
			ticket, ok := c.StepForward()
			settle(t, c, ticket, ok)
		}
		if got, want := c.View().Query.Step, level*4+1; got != want {
			t.Fatalf("level %d: max step = %d, want %d", level, got, want)
		}
		if _, ok := c.StepForward(); ok {
			t.Fatalf("level %d: StepForward moved past max", level)
		}

		for c.CanStepBackward() {
			ticket, ok := c.StepBackward()
			settle(t, c, ticket, ok)
		}
		if got := c.View().Query.Step; got != 0 {
			t.Fatalf("level %d: step after rewinding = %d", level, got)
		}
	}
}

func TestSetLevelResetsStep(t *testing.T) {
	h := newHarness(t)
	c := readyCompression(t, h)
	for i := 0; i < 3; i++ {
		ticket, ok := c.StepForward()
		settle(t, c, ticket, ok)
	}

	ticket, ok := c.SetLevel(4)
	if !ok {
		t.Fatalf("SetLevel did not issue a load")
	}
	if ticket.Query.Step != 0 || ticket.Query.Level != 4 || ticket.Query.Ratio != DefaultRatio {
		t.Fatalf("query after SetLevel = %#v", ticket.Query)
	}
}

func TestSetRatioKeepsStepAndLevel(t *testing.T) {
	h := newHarness(t)
	c := readyCompression(t, h)
	for i := 0; i < 2; i++ {
		ticket, ok := c.StepForward()
		settle(t, c, ticket, ok)
	}

	ticket, ok := c.SetRatio(55)
	if !ok {
		t.Fatalf("SetRatio did not issue a load")
	}
	want := wavelet.Query{Handle: "abc", Level: DefaultLevel, Ratio: 55, Step: 2}
	if ticket.Query != want {
		t.Fatalf("query = %#v, want %#v", ticket.Query, want)
	}
}

func TestParametersAreClamped(t *testing.T) {
	h := newHarness(t)
	c := readyCompression(t, h)

	tests := []struct {
		name  string
		apply func() (LoadTicket, bool)
		check func(wavelet.Query) bool
	}{
		{"level above", func() (LoadTicket, bool) { return c.SetLevel(9) }, func(q wavelet.Query) bool { return q.Level == MaxLevel }},
		{"level below", func() (LoadTicket, bool) { return c.SetLevel(0) }, func(q wavelet.Query) bool { return q.Level == MinLevel }},
		{"ratio above", func() (LoadTicket, bool) { return c.SetRatio(150) }, func(q wavelet.Query) bool { return q.Ratio == MaxRatio }},
		{"ratio below", func() (LoadTicket, bool) { return c.SetRatio(-5) }, func(q wavelet.Query) bool { return q.Ratio == MinRatio }},
	}
	for _, tt := range tests {
		ticket, ok := tt.apply()
		settle(t, c, ticket, ok)
		if q := c.View().Query; !tt.check(q) {
			t.Fatalf("%s: query = %#v", tt.name, q)
		}
	}
}

func TestUnchangedQueryIssuesNoLoad(t *testing.T) {
	h := newHarness(t)
	c := readyCompression(t, h)

	if _, ok := c.SetRatio(DefaultRatio); ok {
		t.Fatalf("SetRatio with the current value issued a load")
	}
	if _, ok := c.SetLevel(DefaultLevel); ok {
		t.Fatalf("SetLevel with the current value at step 0 issued a load")
	}
}

func TestSteppingGatedWhileLoading(t *testing.T) {
	h := newHarness(t)
	c := readyCompression(t, h)

	ticket, ok := c.StepForward()
	if !ok {
		t.Fatalf("first StepForward refused")
	}
	if _, ok := c.StepForward(); ok {
		t.Fatalf("StepForward allowed while loading")
	}
	if _, ok := c.StepBackward(); ok {
		t.Fatalf("StepBackward allowed while loading")
	}
	settle(t, c, ticket, ok)
	if !c.CanStepForward() || !c.CanStepBackward() {
		t.Fatalf("stepping still gated after load completed")
	}
}

func TestSupersededLoadIsIgnored(t *testing.T) {
	h := newHarness(t)
	c := readyCompression(t, h)

	first, _ := c.SetRatio(20)
	second, _ := c.SetLevel(3)
	third, _ := c.SetRatio(30)

	if c.CompleteLoad(first, blank, nil) {
		t.Fatalf("stale ticket %d accepted", first.Generation)
	}
	if c.CompleteLoad(second, nil, errors.New("late failure")) {
		t.Fatalf("stale ticket %d accepted", second.Generation)
	}
	v := c.View()
	if !v.Loading {
		t.Fatalf("stale completion cleared loading")
	}
	if v.Frame.Query.Ratio == 20 || v.Frame.Query.Level == 3 {
		t.Fatalf("stale completion changed displayed query: %#v", v.Frame.Query)
	}
	if len(h.rec.Errors()) != 0 {
		t.Fatalf("stale failure was reported: %#v", h.rec.Errors())
	}

	if !c.CompleteLoad(third, blank, nil) {
		t.Fatalf("current ticket rejected")
	}
	v = c.View()
	want := wavelet.Query{Handle: "abc", Level: 3, Ratio: 30, Step: 0}
	if v.Loading || v.Frame.Query != want {
		t.Fatalf("view = %#v, want frame %#v", v, want)
	}
}

func TestLoadFailureReportsRenderError(t *testing.T) {
	h := newHarness(t)
	c := readyCompression(t, h)
	h.srv.FailRoute(wavelettest.RouteVisualization, 502)

	ticket, ok := c.StepForward()
	if !ok {
		t.Fatalf("StepForward refused")
	}
	if !c.Load(context.Background(), ticket) {
		t.Fatalf("Load ignored current ticket")
	}
	v := c.View()
	if v.Loading || v.Frame.Err == "" || v.Frame.Image != nil {
		t.Fatalf("view = %#v", v)
	}
	last, _ := h.rec.Last()
	if last.Kind != notify.KindRender || last.Title != "Preview failed" {
		t.Fatalf("notification = %#v", last)
	}
}

func TestDownloadSavesArtifact(t *testing.T) {
	h := newHarness(t)
	h.srv.SetArtifact([]byte("artifact-bytes"))
	c := readyCompression(t, h)
	ticket, ok := c.SetRatio(40)
	settle(t, c, ticket, ok)

	path, ok := c.Download(context.Background())
	if !ok {
		t.Fatalf("Download failed: %#v", h.rec.All())
	}
	if path != filepath.Join(h.out, "abc.compressed") {
		t.Fatalf("path = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "artifact-bytes" {
		t.Fatalf("saved = %q, %v", data, err)
	}

	calls := h.srv.CallsTo(wavelettest.RouteCompressed)
	if len(calls) != 1 {
		t.Fatalf("compressed calls = %d, want 1", len(calls))
	}
	q := calls[0].Query
	if q.Get("uid") != "abc" || q.Get("level") != "2" || q.Get("ratio") != "40" || q.Get("step") != "0" {
		t.Fatalf("compressed query = %v", q)
	}
	if c.View().Busy {
		t.Fatalf("busy after download")
	}
}

func TestDownloadFailureNotifies(t *testing.T) {
	h := newHarness(t)
	c := readyCompression(t, h)
	h.srv.FailRoute(wavelettest.RouteCompressed, 500)

	if _, ok := c.Download(context.Background()); ok {
		t.Fatalf("Download succeeded against failing server")
	}
	last, _ := h.rec.Last()
	if last.Title != "Download failed" {
		t.Fatalf("notification = %#v", last)
	}
	if _, err := os.Stat(filepath.Join(h.out, "abc.compressed")); !os.IsNotExist(err) {
		t.Fatalf("artifact written despite failure: %v", err)
	}
	if c.View().Busy {
		t.Fatalf("busy after failed download")
	}
}

func TestDownloadRequiresUpload(t *testing.T) {
	h := newHarness(t)
	c := NewCompression(h.deps)
	if _, ok := c.Download(context.Background()); ok {
		t.Fatalf("Download allowed before upload")
	}
	if len(h.srv.Calls()) != 0 {
		t.Fatalf("server saw calls before upload")
	}
}

func TestCloseIgnoresInFlightLoad(t *testing.T) {
	h := newHarness(t)
	c := readyCompression(t, h)
	ticket, _ := c.StepForward()

	c.Close()
	if c.CompleteLoad(ticket, blank, nil) {
		t.Fatalf("load completed after Close")
	}
	if _, ok := c.SetRatio(50); ok {
		t.Fatalf("SetRatio issued a load after Close")
	}
}
