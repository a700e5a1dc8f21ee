// Package client talks to a running Buket API.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

// DefaultBaseURL is where a local API listens.
const DefaultBaseURL = "http://localhost:3000"

// ErrNoBaseURL is returned when the client has nowhere to send requests.
var ErrNoBaseURL = errors.New("client: API base URL is required")

// Response is a raw API reply. The body is kept verbatim so callers can run
// it through the URL extractor whatever its shape.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the API answered with a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client sends image requests to the API.
type Client struct {
	base  string
	token string
	http  *http.Client
}

// New returns a Client for the API at baseURL. token, when non-empty, is
// sent as a bearer token.
func New(baseURL, token string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		return nil, ErrNoBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	return &Client{
		base:  baseURL,
		token: token,
		http:  &http.Client{Timeout: timeout},
	}, nil
}

// Upload posts a new image as the multipart "image" field.
func (c *Client) Upload(ctx context.Context, fileName string, content io.Reader) (*Response, error) {
	return c.sendImage(ctx, http.MethodPost, "/upload", fileName, content)
}

// Update replaces the stored file storedName with content.
func (c *Client) Update(ctx context.Context, storedName, fileName string, content io.Reader) (*Response, error) {
	return c.sendImage(ctx, http.MethodPut, "/update/"+url.PathEscape(storedName), fileName, content)
}

// List fetches every stored image.
func (c *Client) List(ctx context.Context) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/images", nil, "")
}

// Delete removes the stored file storedName.
func (c *Client) Delete(ctx context.Context, storedName string) (*Response, error) {
	return c.do(ctx, http.MethodDelete, "/delete/"+url.PathEscape(storedName), nil, "")
}

func (c *Client) sendImage(ctx context.Context, method, path, fileName string, content io.Reader) (*Response, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", filepath.Base(fileName))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}
	return c.do(ctx, method, path, &buf, mw.FormDataContentType())
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Body: raw}, nil
}
