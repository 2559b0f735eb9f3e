// Package wavelettest runs an in-process stand-in for the wavelet service.
// It records every call and serves small deterministic payloads.
package wavelettest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"golang.org/x/image/bmp"
)

// Route names accepted by FailRoute and CallsTo.
const (
	RouteUpload        = "upload"
	RouteVisualization = "visualization"
	RouteCompressed    = "compressed"
	RouteDecompress    = "decompress"
)

// Call is one request received by the server.
type Call struct {
	Route    string
	Query    url.Values
	Field    string
	Filename string
	Body     []byte
}

// Server is a fake wavelet service.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	calls    []Call
	handle   string
	failures map[string]int
	image    []byte
	artifact []byte
	bitmap   []byte
}

// NewServer starts a fake service that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		handle:   "abc",
		failures: make(map[string]int),
		image:    Bitmap(4, 4),
		artifact: []byte("HAAR\x00artifact"),
		bitmap:   Bitmap(8, 8),
	}

	r := mux.NewRouter()
	r.HandleFunc("/upload", s.upload).Methods(http.MethodPost)
	r.HandleFunc("/visualization", s.serve(RouteVisualization, func() []byte { return s.image })).Methods(http.MethodGet)
	r.HandleFunc("/compressed", s.serve(RouteCompressed, func() []byte { return s.artifact })).Methods(http.MethodGet)
	r.HandleFunc("/decompress", s.decompress).Methods(http.MethodPost)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// SetHandle changes the id returned by the next uploads.
func (s *Server) SetHandle(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handle = id
}

// SetVisualization replaces the visualization payload.
func (s *Server) SetVisualization(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.image = data
}

// SetArtifact replaces the compressed artifact payload.
func (s *Server) SetArtifact(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifact = data
}

// FailRoute makes route answer with status until cleared with status 0.
func (s *Server) FailRoute(route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, route)
		return
	}
	s.failures[route] = status
}

// Calls returns every request received so far.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallsTo returns the requests received for route.
func (s *Server) CallsTo(route string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Route == route {
			out = append(out, c)
		}
	}
	return out
}

func (s *Server) record(c Call) (failStatus int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, c)
	return s.failures[c.Route]
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	call, err := readForm(r, RouteUpload, "image")
	if status := s.record(call); status != 0 {
		http.Error(w, "upload failed", status)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	id := s.handle
	s.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{"id": id})
}

func (s *Server) decompress(w http.ResponseWriter, r *http.Request) {
	call, err := readForm(r, RouteDecompress, "compressed")
	if status := s.record(call); status != 0 {
		http.Error(w, "decompress failed", status)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	data := s.bitmap
	s.mu.Unlock()
	w.Header().Set("Content-Type", "image/bmp")
	_, _ = w.Write(data)
}

func (s *Server) serve(route string, payload func() []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if status := s.record(Call{Route: route, Query: r.URL.Query()}); status != 0 {
			http.Error(w, route+" failed", status)
			return
		}
		s.mu.Lock()
		data := payload()
		s.mu.Unlock()
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(data)
	}
}

func readForm(r *http.Request, route, field string) (Call, error) {
	call := Call{Route: route, Query: r.URL.Query()}
	file, header, err := r.FormFile(field)
	if err != nil {
		return call, fmt.Errorf("missing form field %s: %w", field, err)
	}
	defer func() { _ = file.Close() }()
	body, err := io.ReadAll(file)
	if err != nil {
		return call, fmt.Errorf("read form field %s: %w", field, err)
	}
	call.Field = field
	call.Filename = header.Filename
	call.Body = body
	return call, nil
}

// Bitmap encodes a w×h gradient as a BMP file.
func Bitmap(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / max(w, 1)), G: uint8(y * 255 / max(h, 1)), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
