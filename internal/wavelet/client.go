package wavelet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -destination=mock_wavelet/mock_api.go github.com/five82/haarview/internal/wavelet API

// API is the remote compression service as seen by the client.
// It is implemented by *Client and mocked in tests.
type API interface {
	Upload(ctx context.Context, file File) (Handle, error)
	VisualizationURL(query Query) string
	FetchVisualization(ctx context.Context, rawURL string) ([]byte, error)
	FetchCompressed(ctx context.Context, query Query) ([]byte, error)
	Decompress(ctx context.Context, file File) ([]byte, error)
}

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

// ErrUnexpectedStatus is wrapped by errors for responses with a failing status code.
var ErrUnexpectedStatus = errors.New("unexpected status")

// Client talks to the wavelet compression HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultAPIURL    = "127.0.0.1:5000"
	defaultUserAgent = "haarview/0.1"
	defaultTimeout   = 30 * time.Second

	// maxResponseBytes bounds image and artifact payloads read into memory.
	maxResponseBytes = 64 << 20

	imageField      = "image"
	compressedField = "compressed"
)

// NewClient builds a Client for the service rooted at baseURL. A zero timeout
// selects the default.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: timeout},
		userAgent: defaultUserAgent,
	}, nil
}

// BaseURL returns the normalized service root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Upload sends a bitmap to POST /upload and returns the handle assigned to it.
// Only 201 Created counts as success.
func (c *Client) Upload(ctx context.Context, file File) (Handle, error) {
	if c == nil {
		return "", fmt.Errorf("client is nil")
	}
	body, contentType, err := multipartBody(imageField, file, "image/bmp")
	if err != nil {
		return "", err
	}
	resp, err := c.send(ctx, http.MethodPost, c.endpoint("upload", ""), body, contentType)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("%w: upload returned status %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	var payload uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	id := strings.TrimSpace(payload.ID)
	if id == "" {
		return "", fmt.Errorf("decode response: missing id")
	}
	return Handle(id), nil
}

// VisualizationURL builds the GET /visualization address for query.
// Parameter order is fixed so identical queries produce identical URLs.
func (c *Client) VisualizationURL(query Query) string {
	raw := "uid=" + url.QueryEscape(string(query.Handle)) +
		"&step=" + strconv.Itoa(query.Step) +
		"&level=" + strconv.Itoa(query.Level) +
		"&ratio=" + strconv.Itoa(query.Ratio)
	return c.endpoint("visualization", raw)
}

// FetchVisualization downloads the image behind a URL built by VisualizationURL.
func (c *Client) FetchVisualization(ctx context.Context, rawURL string) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	return c.fetch(ctx, http.MethodGet, rawURL, nil, "")
}

// FetchCompressed downloads the compressed artifact for query.
func (c *Client) FetchCompressed(ctx context.Context, query Query) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	raw := "uid=" + url.QueryEscape(string(query.Handle)) +
		"&level=" + strconv.Itoa(query.Level) +
		"&step=" + strconv.Itoa(query.Step) +
		"&ratio=" + strconv.Itoa(query.Ratio)
	return c.fetch(ctx, http.MethodGet, c.endpoint("compressed", raw), nil, "")
}

// Decompress posts a compressed artifact and returns the decoded bitmap.
func (c *Client) Decompress(ctx context.Context, file File) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	body, contentType, err := multipartBody(compressedField, file, "application/octet-stream")
	if err != nil {
		return nil, err
	}
	return c.fetch(ctx, http.MethodPost, c.endpoint("decompress", ""), body, contentType)
}

func (c *Client) fetch(ctx context.Context, method, rawURL string, body io.Reader, contentType string) ([]byte, error) {
	resp, err := c.send(ctx, method, rawURL, body, contentType)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrUnexpectedStatus, endpointName(rawURL), resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if len(data) > maxResponseBytes {
		return nil, fmt.Errorf("read response: payload exceeds %d bytes", maxResponseBytes)
	}
	return data, nil
}

func (c *Client) send(ctx context.Context, method, rawURL string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	return resp, nil
}

func (c *Client) endpoint(name, rawQuery string) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + name
	u.RawQuery = rawQuery
	return u.String()
}

func multipartBody(field string, file File, mimeType string) (io.Reader, string, error) {
	src, err := file.Open()
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", file.Name, err)
	}
	defer func() { _ = src.Close() }()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, file.Name))
	header.Set("Content-Type", mimeType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create form part: %w", err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return nil, "", fmt.Errorf("read %s: %w", file.Name, err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return &buf, writer.FormDataContentType(), nil
}

func endpointName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Path
}

func parseBaseURL(baseURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		trimmed = defaultAPIURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_url %q: %w", baseURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api_url %q: missing host", baseURL)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
