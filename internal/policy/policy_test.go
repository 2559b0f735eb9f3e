package policy

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"

	"github.com/five82/haarview/internal/notify"
	"github.com/five82/haarview/internal/wavelet"
	"github.com/five82/haarview/internal/wavelet/mock_wavelet"
)

func newPolicy(t *testing.T) (*Policy, *mock_wavelet.MockAPI, *notify.Recorder) {
	t.Helper()
	ctrl := gomock.NewController(t)
	remote := mock_wavelet.NewMockAPI(ctrl)
	rec := &notify.Recorder{}
	return New(remote, rec, nil), remote, rec
}

func TestUploadImage_SuccessHoldsBusyDuringCall(t *testing.T) {
	p, remote, rec := newPolicy(t)
	file := wavelet.FileFromBytes("cat.bmp", []byte("BMxx"))

	remote.EXPECT().Upload(gomock.Any(), file).DoAndReturn(func(context.Context, wavelet.File) (wavelet.Handle, error) {
		if !p.Busy() {
			t.Errorf("Busy() = false during upload, want true")
		}
		return "abc", nil
	})

	out := p.UploadImage(context.Background(), file)
	if !out.OK() || out.Value != "abc" {
		t.Fatalf("UploadImage = %#v, want success abc", out)
	}
	if p.Busy() {
		t.Fatalf("Busy() = true after upload, want false")
	}
	if len(rec.Errors()) != 0 {
		t.Fatalf("unexpected failure notifications: %#v", rec.Errors())
	}
}

func TestUploadImage_FailureReleasesBusyAndNotifies(t *testing.T) {
	p, remote, rec := newPolicy(t)
	remote.EXPECT().Upload(gomock.Any(), gomock.Any()).Return(wavelet.Handle(""), errors.New("execute request: connection refused"))

	out := p.UploadImage(context.Background(), wavelet.FileFromBytes("cat.bmp", []byte("BM")))
	if out.OK() {
		t.Fatalf("UploadImage succeeded, want failure")
	}
	if out.Failure.Kind != notify.KindTransport || out.Failure.Op != OpUpload {
		t.Fatalf("Failure = %#v, want transport upload failure", out.Failure)
	}
	if out.Reason() != "execute request: connection refused" {
		t.Fatalf("Reason = %q", out.Reason())
	}
	if p.Busy() {
		t.Fatalf("Busy() = true after failed upload, want false")
	}
	last, ok := rec.Last()
	if !ok || last.Title != "Upload failed" || last.Kind != notify.KindTransport {
		t.Fatalf("notification = %#v, want transport Upload failed", last)
	}
}

func TestDecompress_InvalidNameNeverCallsRemote(t *testing.T) {
	p, _, rec := newPolicy(t) // no EXPECT: any remote call fails the test

	out := p.Decompress(context.Background(), wavelet.FileFromBytes("photo.txt", []byte("data")))
	if out.OK() {
		t.Fatalf("Decompress succeeded, want failure")
	}
	if out.Reason() != "invalid file type" {
		t.Fatalf("Reason = %q, want invalid file type", out.Reason())
	}
	if out.Failure.Kind != notify.KindValidation {
		t.Fatalf("Kind = %v, want validation", out.Failure.Kind)
	}
	if !errors.Is(out.Failure, ErrInvalidFileType) {
		t.Fatalf("Failure should wrap ErrInvalidFileType")
	}
	last, _ := rec.Last()
	if last.Title != "Invalid file type" {
		t.Fatalf("notification title = %q, want Invalid file type", last.Title)
	}
}

func TestDecompress_Success(t *testing.T) {
	p, remote, _ := newPolicy(t)
	remote.EXPECT().Decompress(gomock.Any(), gomock.Any()).Return([]byte("BMdata"), nil)

	out := p.Decompress(context.Background(), wavelet.FileFromBytes("photo.compressed", []byte("artifact")))
	if !out.OK() || string(out.Value) != "BMdata" {
		t.Fatalf("Decompress = %#v, want BMdata", out)
	}
	if p.Busy() {
		t.Fatalf("Busy() = true after decompress")
	}
}

func TestFetchCompressedArtifact_PassesQueryAndReportsFailure(t *testing.T) {
	p, remote, rec := newPolicy(t)
	q := wavelet.Query{Handle: "abc", Level: 3, Ratio: 40, Step: 2}

	remote.EXPECT().FetchCompressed(gomock.Any(), q).Return([]byte("artifact"), nil)
	if out := p.FetchCompressedArtifact(context.Background(), q); !out.OK() || string(out.Value) != "artifact" {
		t.Fatalf("FetchCompressedArtifact = %#v, want artifact", out)
	}

	remote.EXPECT().FetchCompressed(gomock.Any(), q).Return(nil, context.DeadlineExceeded)
	out := p.FetchCompressedArtifact(context.Background(), q)
	if out.OK() || out.Reason() != context.DeadlineExceeded.Error() {
		t.Fatalf("FetchCompressedArtifact = %#v, want deadline failure", out)
	}
	last, _ := rec.Last()
	if last.Title != "Download failed" {
		t.Fatalf("notification title = %q, want Download failed", last.Title)
	}
	if p.Busy() {
		t.Fatalf("Busy() = true after download")
	}
}

func TestVisualizationURL_Delegates(t *testing.T) {
	p, remote, _ := newPolicy(t)
	q := wavelet.Query{Handle: "abc", Level: 2, Ratio: 10}
	remote.EXPECT().VisualizationURL(q).Return("http://svc/visualization?uid=abc&step=0&level=2&ratio=10")

	if got := p.VisualizationURL(q); got != "http://svc/visualization?uid=abc&step=0&level=2&ratio=10" {
		t.Fatalf("VisualizationURL = %q", got)
	}
}

func TestAcquire_ReleaseIsIdempotent(t *testing.T) {
	p, _, _ := newPolicy(t)
	release := p.acquire()
	other := p.acquire()
	release()
	release()
	if !p.Busy() {
		t.Fatalf("Busy() = false with one operation still in flight")
	}
	other()
	if p.Busy() {
		t.Fatalf("Busy() = true after every release")
	}
}

func TestReport_RenderAndStorageTitles(t *testing.T) {
	p, _, rec := newPolicy(t)
	p.Report(notify.KindRender, OpVisualize, errors.New("decode"))
	p.Report(notify.KindStorage, OpSave, errors.New("disk full"))
	p.Succeeded("Saved", "abc.compressed")

	all := rec.All()
	if len(all) != 3 {
		t.Fatalf("notifications = %d, want 3", len(all))
	}
	if all[0].Title != "Preview failed" || all[1].Title != "Save failed" || all[2].Kind != notify.KindInfo {
		t.Fatalf("notifications = %#v", all)
	}
}
