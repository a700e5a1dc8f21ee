// Package storage defines the content store that holds uploaded images.
// Two backends are provided: the GitHub Contents API (the default) and any
// S3-compatible object store through MinIO. Swap them by changing the
// concrete type injected at startup.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is returned when no file exists under the requested name.
var ErrNotFound = errors.New("file not found")

// ErrConflict is returned when the supplied sha no longer matches the stored file.
var ErrConflict = errors.New("version conflict")

// ErrUnauthorized is returned when the store rejects the configured credential.
var ErrUnauthorized = errors.New("unauthorized")

// Object describes a file held by the content store.
type Object struct {
	Name string `json:"name"`
	Path string `json:"path"`
	SHA  string `json:"sha"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

// ContentStore is the interface for storing named files under a fixed folder.
// Every method is a single remote call from the caller's point of view; no
// method is transactional with another.
type ContentStore interface {
	// Metadata returns the current version of name, or ErrNotFound.
	Metadata(ctx context.Context, name string) (*Object, error)
	// Put creates name with content. It never overwrites an existing file.
	Put(ctx context.Context, name string, content []byte, message string) (*Object, error)
	// Delete removes name if sha still matches its current version.
	Delete(ctx context.Context, name, sha, message string) error
	// List returns every entry in the folder. A missing folder is empty.
	List(ctx context.Context) ([]Object, error)
}

// UpstreamError carries a non-success response from the remote store.
// Body is kept verbatim so handlers can forward it for diagnostics.
type UpstreamError struct {
	Op         string
	StatusCode int
	Body       []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: upstream status %d: %s", e.Op, e.StatusCode, string(e.Body))
}

// Unwrap maps well-known statuses onto the package sentinels so callers
// can use errors.Is without inspecting status codes.
func (e *UpstreamError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	}
	return nil
}

// Detail returns the upstream body as a JSON value when it parses as one,
// otherwise as a plain string.
func (e *UpstreamError) Detail() any {
	if json.Valid(e.Body) {
		return json.RawMessage(e.Body)
	}
	return string(e.Body)
}
