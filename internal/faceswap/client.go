package faceswap

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/faceforge/faceforge/internal/storage"
)

const (
	// DefaultTimeout bounds the whole provider call. A timed-out call is
	// a failure; there are no retries.
	DefaultTimeout = 30 * time.Second

	// maxResultSize caps how much of a fetched result we are willing to
	// read when the provider returns a URL instead of inline data.
	maxResultSize = 10 << 20
)

// Client calls the external face-swap HTTP service: multipart upload of the
// source image (and optional target image), bearer-token authorization,
// bounded timeout. Results arrive either as a base64 data-URI or as a URL
// to fetch; both are normalized to a file in the swapped storage area.
type Client struct {
	apiURL     string
	apiKey     string
	targetPath string
	store      *storage.Store
	httpClient *http.Client
}

// ClientOption configures optional Client behavior.
type ClientOption func(*Client)

// WithTargetImage sets a target image file sent alongside every source.
func WithTargetImage(path string) ClientOption {
	return func(c *Client) {
		c.targetPath = path
	}
}

// WithHTTPClient overrides the HTTP client, used by tests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a Client for the given endpoint and credential.
// timeout <= 0 selects DefaultTimeout.
func NewClient(apiURL, apiKey string, timeout time.Duration, store *storage.Store, opts ...ClientOption) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		apiURL: apiURL,
		apiKey: apiKey,
		store:  store,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: timeout,
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       90 * time.Second,
			},
		},
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// swapResponse is the provider's success payload.
type swapResponse struct {
	Success     bool   `json:"success"`
	ResultImage string `json:"result_image"`
}

// errorResponse is the provider's error payload.
type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Transform uploads the source image to the provider and stores the result
// in the swapped area. The returned processing time covers the full call.
func (c *Client) Transform(ctx context.Context, sourcePath string) (*Result, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	start := time.Now()

	body, contentType, err := c.buildRequestBody(sourcePath)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotConfigured, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.serviceError(resp)
	}

	var payload swapResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResultSize)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrService, err)
	}
	if !payload.Success || payload.ResultImage == "" {
		return nil, fmt.Errorf("%w: response carries no result image", ErrService)
	}

	data, ext, err := c.resolveResult(ctx, payload.ResultImage)
	if err != nil {
		return nil, err
	}

	name := c.store.NewSwappedName(ext)
	path, _, err := c.store.WriteSwapped(name, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("store swapped image: %w", err)
	}

	return &Result{
		SwappedPath:     path,
		SwappedFilename: name,
		ProcessingTime:  time.Since(start).Milliseconds(),
	}, nil
}

// Status queries the provider's async job-tracking endpoint. The
// synchronous pipeline never calls this; it exists because the provider
// interface exposes it.
func (c *Client) Status(ctx context.Context, jobID string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	statusURL := strings.TrimSuffix(c.apiURL, "/") + "/status/" + url.PathEscape(jobID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotConfigured, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", c.serviceError(resp)
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: malformed status response: %v", ErrService, err)
	}
	return payload.Status, nil
}

// buildRequestBody assembles the multipart upload of source and optional
// target image.
func (c *Client) buildRequestBody(sourcePath string) (io.Reader, string, error) {
	var buf strings.Builder
	w := multipart.NewWriter(&buf)

	if err := attachFile(w, "source_image", sourcePath); err != nil {
		return nil, "", err
	}
	if c.targetPath != "" {
		if err := attachFile(w, "target_image", c.targetPath); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}
	return strings.NewReader(buf.String()), w.FormDataContentType(), nil
}

func attachFile(w *multipart.Writer, field, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	part, err := w.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("copy %s: %w", path, err)
	}
	return nil
}

// resolveResult turns the provider's result reference into raw image bytes
// plus a file extension: either an inline data-URI or a URL to fetch.
func (c *Client) resolveResult(ctx context.Context, ref string) ([]byte, string, error) {
	if strings.HasPrefix(ref, "data:") {
		return decodeDataURI(ref)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: bad result URL: %v", ErrService, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: fetch result: %v", ErrConnectivity, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("%w: result fetch returned %d", ErrService, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResultSize))
	if err != nil {
		return nil, "", fmt.Errorf("%w: read result: %v", ErrService, err)
	}
	return data, extForMediaType(resp.Header.Get("Content-Type")), nil
}

func decodeDataURI(uri string) ([]byte, string, error) {
	rest := strings.TrimPrefix(uri, "data:")
	meta, encoded, found := strings.Cut(rest, ",")
	if !found || !strings.HasSuffix(meta, ";base64") {
		return nil, "", fmt.Errorf("%w: unsupported data URI", ErrService)
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", fmt.Errorf("%w: decode result image: %v", ErrService, err)
	}
	return data, extForMediaType(strings.TrimSuffix(meta, ";base64")), nil
}

func extForMediaType(mediaType string) string {
	if strings.Contains(mediaType, "png") {
		return ".png"
	}
	return ".jpg"
}

// serviceError reads the provider's error payload when present.
func (c *Client) serviceError(resp *http.Response) error {
	var payload errorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&payload); err == nil && payload.Error.Message != "" {
		return fmt.Errorf("%w: %s (%s, status %d)", ErrService, payload.Error.Message, payload.Error.Code, resp.StatusCode)
	}
	return fmt.Errorf("%w: status %d", ErrService, resp.StatusCode)
}
