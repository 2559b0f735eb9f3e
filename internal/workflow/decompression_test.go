package workflow

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/five82/haarview/internal/notify"
	"github.com/five82/haarview/internal/wavelet"
	"github.com/five82/haarview/internal/wavelet/wavelettest"
)

func TestDecompressRejectsWrongExtensionWithoutNetwork(t *testing.T) {
	h := newHarness(t)
	d := NewDecompression(h.deps)

	if d.Upload(context.Background(), wavelet.FileFromBytes("photo.txt", []byte("data"))) {
		t.Fatalf("Upload accepted photo.txt")
	}
	if n := len(h.srv.Calls()); n != 0 {
		t.Fatalf("server saw %d calls, want 0", n)
	}
	v := d.View()
	if v.Phase != AwaitingUpload || v.Busy {
		t.Fatalf("view = %#v", v)
	}
	last, _ := h.rec.Last()
	if last.Kind != notify.KindValidation || last.Title != "Invalid file type" {
		t.Fatalf("notification = %#v", last)
	}
}

func TestDecompressSuccessAndDownload(t *testing.T) {
	h := newHarness(t)
	d := NewDecompression(h.deps)

	if !d.Upload(context.Background(), wavelet.FileFromBytes("photo.compressed", []byte("artifact"))) {
		t.Fatalf("Upload failed: %#v", h.rec.All())
	}
	v := d.View()
	if v.Phase != Decoded || v.Source != "photo.compressed" || v.Image == nil || v.Busy {
		t.Fatalf("view = %#v", v)
	}
	want := wavelettest.Bitmap(8, 8)
	if v.Size != int64(len(want)) {
		t.Fatalf("size = %d, want %d", v.Size, len(want))
	}

	calls := h.srv.CallsTo(wavelettest.RouteDecompress)
	if len(calls) != 1 || calls[0].Field != "compressed" || string(calls[0].Body) != "artifact" {
		t.Fatalf("decompress calls = %#v", calls)
	}

	path, ok := d.Download()
	if !ok {
		t.Fatalf("Download failed: %#v", h.rec.All())
	}
	if path != filepath.Join(h.out, DecompressedName) {
		t.Fatalf("path = %q", path)
	}
	got, err := os.ReadFile(path)
	if err != nil || !bytes.Equal(got, want) {
		t.Fatalf("saved %d bytes, err %v", len(got), err)
	}
	last, _ := h.rec.Last()
	if last.Kind != notify.KindInfo {
		t.Fatalf("last notification = %#v, want info", last)
	}
}

func TestDecompressFailureStaysAwaiting(t *testing.T) {
	h := newHarness(t)
	h.srv.FailRoute(wavelettest.RouteDecompress, 500)
	d := NewDecompression(h.deps)

	if d.Upload(context.Background(), wavelet.FileFromBytes("photo.compressed", []byte("artifact"))) {
		t.Fatalf("Upload succeeded against failing server")
	}
	if d.View().Phase != AwaitingUpload {
		t.Fatalf("phase = %v", d.View().Phase)
	}
	if _, ok := d.Download(); ok {
		t.Fatalf("Download allowed without a result")
	}
	last, _ := h.rec.Last()
	if last.Title != "Decompression failed" || last.Kind != notify.KindTransport {
		t.Fatalf("notification = %#v", last)
	}
}

func TestCloseReleasesResult(t *testing.T) {
	h := newHarness(t)
	d := NewDecompression(h.deps)
	if !d.Upload(context.Background(), wavelet.FileFromBytes("photo.compressed", []byte("artifact"))) {
		t.Fatalf("Upload failed")
	}
	res, ok := d.Result()
	if !ok {
		t.Fatalf("no result after upload")
	}
	if _, err := os.Stat(res.Path()); err != nil {
		t.Fatalf("spooled file missing: %v", err)
	}

	d.Close()
	d.Close()

	if !res.Released() {
		t.Fatalf("result not released")
	}
	if _, err := os.Stat(res.Path()); !os.IsNotExist(err) {
		t.Fatalf("spooled file still present: %v", err)
	}
	if _, err := res.Open(); err != ErrReleased {
		t.Fatalf("Open after release = %v, want ErrReleased", err)
	}
	if _, ok := d.Download(); ok {
		t.Fatalf("Download allowed after Close")
	}
}

func TestDecodedRefusesFurtherUploads(t *testing.T) {
	h := newHarness(t)
	d := NewDecompression(h.deps)
	if !d.Upload(context.Background(), wavelet.FileFromBytes("one.compressed", []byte("a"))) {
		t.Fatalf("first Upload failed")
	}
	first, _ := d.Result()
	calls := len(h.srv.Calls())

	if d.Upload(context.Background(), wavelet.FileFromBytes("two.compressed", []byte("b"))) {
		t.Fatalf("second Upload accepted while decoded")
	}
	if len(h.srv.Calls()) != calls {
		t.Fatalf("refused upload reached the service")
	}
	if first.Released() {
		t.Fatalf("decoded result released without leaving the workflow")
	}
	v := d.View()
	if v.Phase != Decoded || v.Source != "one.compressed" {
		t.Fatalf("view = %#v", v)
	}
}
