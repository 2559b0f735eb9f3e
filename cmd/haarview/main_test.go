package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/five82/haarview/internal/config"
	"github.com/five82/haarview/internal/wavelet/wavelettest"
)

func TestRunUnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"resize"}, &stdout, &stderr); code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
	if !strings.Contains(stderr.String(), `unknown command "resize"`) {
		t.Fatalf("stderr = %q", stderr.String())
	}
}

func TestRunCompressNeedsFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"compress", "-level", "3"}, &stdout, &stderr); code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
	if !strings.Contains(stderr.String(), "usage:") {
		t.Fatalf("stderr = %q", stderr.String())
	}
}

func TestRunDecompress(t *testing.T) {
	srv := wavelettest.NewServer(t)
	tmp := t.TempDir()
	t.Setenv(config.EnvAPIURL, srv.URL)
	t.Setenv(config.EnvOutputDir, filepath.Join(tmp, "out"))
	t.Setenv(config.EnvLogDir, filepath.Join(tmp, "logs"))

	src := filepath.Join(tmp, "photo.compressed")
	if err := os.WriteFile(src, []byte("HAAR"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var stdout, stderr bytes.Buffer
	args := []string{
		"-config", filepath.Join(tmp, "config.toml"),
		"-env", filepath.Join(tmp, "none.env"),
		"decompress", src,
	}
	if code := run(args, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code = %d, stderr %q", code, stderr.String())
	}
	want := filepath.Join(tmp, "out", "decompressed.bmp")
	if strings.TrimSpace(stdout.String()) != want {
		t.Fatalf("stdout = %q, want %q", stdout.String(), want)
	}
}

func TestRunReportsFailureOnce(t *testing.T) {
	srv := wavelettest.NewServer(t)
	srv.FailRoute(wavelettest.RouteDecompress, 500)
	tmp := t.TempDir()
	t.Setenv(config.EnvAPIURL, srv.URL)
	t.Setenv(config.EnvOutputDir, filepath.Join(tmp, "out"))
	t.Setenv(config.EnvLogDir, filepath.Join(tmp, "logs"))

	src := filepath.Join(tmp, "photo.compressed")
	if err := os.WriteFile(src, []byte("HAAR"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var stdout, stderr bytes.Buffer
	args := []string{"-config", filepath.Join(tmp, "config.toml"), "-env", filepath.Join(tmp, "none.env"), "decompress", src}
	if code := run(args, &stdout, &stderr); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if strings.Contains(stderr.String(), "haarview:") {
		t.Fatalf("failure printed twice: %q", stderr.String())
	}
	if stdout.Len() != 0 {
		t.Fatalf("stdout = %q, want empty", stdout.String())
	}
}
