// Package image implements the upload, list, replace and delete workflow
// on top of a content store and a CDN URL builder.
package image

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/buket/service/internal/activity"
	"github.com/buket/service/internal/storage"
)

// ErrNotFound is returned when the named image does not exist.
var ErrNotFound = errors.New("file not found")

// ErrInvalidName is returned for an empty or unusable file name.
var ErrInvalidName = errors.New("invalid file name")

// URLBuilder maps a stored file name to its public URL. version is
// appended as a cache-busting query when non-empty.
type URLBuilder interface {
	URL(fileName, version string) (string, error)
}

// Recorder receives an event after every successful mutation.
type Recorder interface {
	Record(ctx context.Context, e activity.Event) error
}

// Image is a stored image and its public URL.
type Image struct {
	Name   string `json:"name"`
	CDNURL string `json:"cdn_url"`
}

// Service contains the image workflow. It holds no state of its own: every
// operation re-reads the version token from the store right before use.
type Service struct {
	store  storage.ContentStore
	urls   URLBuilder
	events Recorder
	log    *zap.Logger
	now    func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithClock replaces time.Now, which names files and versions URLs.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRecorder sets where mutation events are sent.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.events = r }
}

// NewService creates a new image Service.
func NewService(store storage.ContentStore, urls URLBuilder, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:  store,
		urls:   urls,
		events: activity.Discard{},
		log:    log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store saves content under "<unix millis>-<original name>" and returns the
// new image with an unversioned URL.
func (s *Service) Store(ctx context.Context, originalName string, content []byte) (*Image, error) {
	base := cleanName(originalName)
	if base == "" {
		return nil, ErrInvalidName
	}
	fileName := strconv.FormatInt(s.now().UnixMilli(), 10) + "-" + base

	if _, err := s.store.Put(ctx, fileName, content, "Upload new image"); err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}

	url, err := s.urls.URL(fileName, "")
	if err != nil {
		return nil, fmt.Errorf("build url: %w", err)
	}

	s.record(ctx, activity.ActionUpload, fileName, url)
	s.log.Info("image stored", zap.String("file_name", fileName), zap.Int("bytes", len(content)))
	return &Image{Name: fileName, CDNURL: url}, nil
}

// List returns every image in the folder with unversioned URLs.
func (s *Service) List(ctx context.Context) ([]Image, error) {
	objs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}

	images := make([]Image, 0, len(objs))
	for _, obj := range objs {
		url, err := s.urls.URL(obj.Name, "")
		if err != nil {
			return nil, fmt.Errorf("build url for %q: %w", obj.Name, err)
		}
		images = append(images, Image{Name: obj.Name, CDNURL: url})
	}
	return images, nil
}

// Replace swaps the content stored under fileName by deleting the current
// file and creating a new one with the same name. The returned URL carries
// a ?v= version so the CDN does not serve the old bytes.
//
// The two writes are not atomic. Between the delete and the put the file
// is absent, and if the put fails the file stays absent; the put error is
// returned as is. Concurrent replaces of one name are not coordinated: the
// loser's delete fails with a conflict or not-found.
func (s *Service) Replace(ctx context.Context, fileName string, content []byte) (*Image, error) {
	if cleanName(fileName) != fileName || fileName == "" {
		return nil, ErrInvalidName
	}

	obj, err := s.store.Metadata(ctx, fileName)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get sha: %w", err)
	}

	if err := s.store.Delete(ctx, fileName, obj.SHA, "Delete old image before update: "+fileName); err != nil {
		return nil, fmt.Errorf("delete old image: %w", err)
	}

	if _, err := s.store.Put(ctx, fileName, content, "Upload updated image: "+fileName); err != nil {
		s.log.Error("replace left image absent", zap.String("file_name", fileName), zap.Error(err))
		return nil, fmt.Errorf("upload updated image: %w", err)
	}

	url, err := s.urls.URL(fileName, strconv.FormatInt(s.now().UnixMilli(), 10))
	if err != nil {
		return nil, fmt.Errorf("build url: %w", err)
	}

	s.record(ctx, activity.ActionReplace, fileName, url)
	s.log.Info("image replaced", zap.String("file_name", fileName), zap.Int("bytes", len(content)))
	return &Image{Name: fileName, CDNURL: url}, nil
}

// Remove deletes fileName. A missing file is reported as ErrNotFound.
func (s *Service) Remove(ctx context.Context, fileName string) error {
	if cleanName(fileName) != fileName || fileName == "" {
		return ErrInvalidName
	}

	obj, err := s.store.Metadata(ctx, fileName)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get sha: %w", err)
	}

	if err := s.store.Delete(ctx, fileName, obj.SHA, "Delete "+fileName); err != nil {
		return fmt.Errorf("delete image: %w", err)
	}

	s.record(ctx, activity.ActionDelete, fileName, "")
	s.log.Info("image deleted", zap.String("file_name", fileName))
	return nil
}

// IsNotFound returns true when the error indicates a missing image.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func (s *Service) record(ctx context.Context, action activity.Action, fileName, url string) {
	e := activity.Event{Action: action, FileName: fileName, CDNURL: url}
	if err := s.events.Record(ctx, e); err != nil {
		s.log.Warn("record activity", zap.String("action", string(action)), zap.Error(err))
	}
}

// cleanName strips directory components so a name cannot leave the folder.
func cleanName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	base := path.Base(strings.TrimSpace(name))
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	return base
}
