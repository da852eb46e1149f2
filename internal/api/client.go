// Package api is the HTTP client for the video-generation backend: job
// creation for both transports, status polling, and a reachability probe.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrNoToken is returned when a request requires a bearer token and the
// token source yields none.
var ErrNoToken = errors.New("no auth token, please log in again")

// TokenSource returns a fresh bearer token. It is consulted on every request
// so a rotated credential takes effect without restarting the tracker.
type TokenSource func() (string, error)

// Options configures a Client.
type Options struct {
	BaseURL string
	Token   TokenSource
	// HTTPClient overrides the default client (used by tests).
	HTTPClient *http.Client
}

// Client talks to the backend API.
type Client struct {
	base  string
	token TokenSource
	http  *http.Client
}

// New builds a Client. The base URL is normalized the same way the web
// frontend does: trailing slashes stripped, "/api" suffix appended once.
func New(opts Options) (*Client, error) {
	base := NormalizeBase(opts.BaseURL)
	if base == "" {
		return nil, errors.New("missing API base URL (set api_base or VIDMATIC_API_BASE)")
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	tok := opts.Token
	if tok == nil {
		tok = func() (string, error) { return "", nil }
	}
	return &Client{base: base, token: tok, http: hc}, nil
}

// NormalizeBase trims trailing slashes and ensures a single "/api" suffix.
// Returns "" for an empty input.
func NormalizeBase(raw string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(raw), "/")
	if trimmed == "" {
		return ""
	}
	if strings.HasSuffix(trimmed, "/api") {
		return trimmed
	}
	return trimmed + "/api"
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string { return c.base }

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	tok, err := c.token()
	if err != nil {
		return nil, err
	}
	if tok == "" {
		return nil, ErrNoToken
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	return req, nil
}

// apiError decodes the backend's {"error": "..."} body, falling back to the
// HTTP status text.
func apiError(resp *http.Response) error {
	defer resp.Body.Close()
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&payload); err == nil && payload.Error != "" {
		return fmt.Errorf("backend: %s", payload.Error)
	}
	return fmt.Errorf("backend: unexpected status %s", resp.Status)
}

// CreateShortVideo submits a short-form job. On success the returned body is
// the open streaming progress feed; the caller owns closing it.
func (c *Client) CreateShortVideo(ctx context.Context, req ShortVideoRequest) (io.ReadCloser, error) {
	// No client timeout: the body stays open for the whole generation.
	hc := &http.Client{Transport: c.http.Transport}
	r, err := c.newRequest(ctx, http.MethodPost, "/videos", req)
	if err != nil {
		return nil, err
	}
	resp, err := hc.Do(r)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apiError(resp)
	}
	return resp.Body, nil
}

// CreateLongVideo submits a long-form job and returns the assigned job id.
func (c *Client) CreateLongVideo(ctx context.Context, req LongVideoRequest) (LongVideoCreated, error) {
	var out LongVideoCreated
	r, err := c.newRequest(ctx, http.MethodPost, "/long-video", req)
	if err != nil {
		return out, err
	}
	resp, err := c.http.Do(r)
	if err != nil {
		return out, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return out, apiError(resp)
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("decode job creation response: %w", err)
	}
	if out.JobID == "" {
		return out, errors.New("backend returned no job id")
	}
	return out, nil
}

// GetLongVideoJob fetches the current state of a long-form job.
func (c *Client) GetLongVideoJob(ctx context.Context, jobID string) (LongVideoJob, error) {
	var out LongVideoJob
	r, err := c.newRequest(ctx, http.MethodGet, "/long-video/"+jobID, nil)
	if err != nil {
		return out, err
	}
	r.Header.Set("Cache-Control", "no-cache")
	resp, err := c.http.Do(r)
	if err != nil {
		return out, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return out, apiError(resp)
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("decode job status: %w", err)
	}
	if out.JobID == "" {
		out.JobID = jobID
	}
	return out, nil
}

// Ping checks backend reachability. Any HTTP response counts as reachable;
// only transport-level failures are errors.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
