package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v66/github"
)

// DefaultGitHubAPI is the public GitHub REST endpoint.
const DefaultGitHubAPI = "https://api.github.com"

// GitHubStore implements ContentStore on top of the GitHub Contents API.
// Files live at <owner>/<repo>/<folder>/<name> on the default branch.
type GitHubStore struct {
	repos  *github.RepositoriesService
	owner  string
	repo   string
	folder string
}

// GitHubOptions configures a GitHubStore.
type GitHubOptions struct {
	APIBase string // defaults to DefaultGitHubAPI
	Token   string
	Owner   string
	Repo    string
	Folder  string
	Timeout time.Duration // zero means no client-side timeout
}

// NewGitHubStore returns a GitHubStore for the given repository folder.
func NewGitHubStore(opts GitHubOptions) (*GitHubStore, error) {
	if opts.Token == "" || opts.Owner == "" || opts.Repo == "" || opts.Folder == "" {
		return nil, errors.New("github store: token, owner, repo and folder are required")
	}
	base := opts.APIBase
	if base == "" {
		base = DefaultGitHubAPI
	}
	baseURL, err := url.Parse(strings.TrimRight(base, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("github store: parse API base: %w", err)
	}

	client := github.NewClient(&http.Client{Timeout: opts.Timeout}).WithAuthToken(opts.Token)
	client.BaseURL = baseURL

	return &GitHubStore{
		repos:  client.Repositories,
		owner:  opts.Owner,
		repo:   opts.Repo,
		folder: strings.Trim(opts.Folder, "/"),
	}, nil
}

// Metadata fetches the current sha of name.
func (s *GitHubStore) Metadata(ctx context.Context, name string) (*Object, error) {
	file, _, resp, err := s.repos.GetContents(ctx, s.owner, s.repo, s.filePath(name), nil)
	if err != nil {
		return nil, upstreamError("get metadata", resp, err)
	}
	if file == nil {
		return nil, fmt.Errorf("get metadata: %q is a directory: %w", name, ErrNotFound)
	}
	return toObject(file), nil
}

// Put creates name with content. go-github base64-encodes the bytes as the
// API requires. No sha is sent, so GitHub rejects the call when the file
// already exists and Put never overwrites.
func (s *GitHubStore) Put(ctx context.Context, name string, content []byte, message string) (*Object, error) {
	opts := &github.RepositoryContentFileOptions{
		Message: &message,
		Content: content,
	}
	created, resp, err := s.repos.CreateFile(ctx, s.owner, s.repo, s.escapedPath(name), opts)
	if err != nil {
		return nil, upstreamError("put file", resp, err)
	}
	if created == nil || created.Content == nil {
		return &Object{Name: name, Path: s.filePath(name), Size: int64(len(content)), Type: "file"}, nil
	}
	return toObject(created.Content), nil
}

// Delete removes name. GitHub answers 409 when sha is stale.
func (s *GitHubStore) Delete(ctx context.Context, name, sha, message string) error {
	opts := &github.RepositoryContentFileOptions{
		Message: &message,
		SHA:     &sha,
	}
	if _, resp, err := s.repos.DeleteFile(ctx, s.owner, s.repo, s.escapedPath(name), opts); err != nil {
		return upstreamError("delete file", resp, err)
	}
	return nil
}

// List returns the entries of the storage folder.
func (s *GitHubStore) List(ctx context.Context) ([]Object, error) {
	file, dir, resp, err := s.repos.GetContents(ctx, s.owner, s.repo, s.folder, nil)
	if err != nil {
		err = upstreamError("list folder", resp, err)
		if errors.Is(err, ErrNotFound) {
			return []Object{}, nil
		}
		return nil, err
	}
	if file != nil {
		return nil, fmt.Errorf("list folder: %q is a file", s.folder)
	}

	objs := make([]Object, 0, len(dir))
	for _, c := range dir {
		objs = append(objs, *toObject(c))
	}
	return objs, nil
}

func (s *GitHubStore) filePath(name string) string {
	return s.folder + "/" + name
}

// escapedPath is filePath ready to be placed in a URL. GetContents escapes
// its path itself; CreateFile and DeleteFile do not.
func (s *GitHubStore) escapedPath(name string) string {
	return (&url.URL{Path: s.filePath(name)}).EscapedPath()
}

func toObject(c *github.RepositoryContent) *Object {
	return &Object{
		Name: c.GetName(),
		Path: c.GetPath(),
		SHA:  c.GetSHA(),
		Size: int64(c.GetSize()),
		Type: c.GetType(),
	}
}

// upstreamError turns a non-2xx answer into an UpstreamError carrying the
// status and the body as received. go-github leaves the error body
// readable on the response.
func upstreamError(op string, resp *github.Response, err error) error {
	if resp == nil || resp.Response == nil || (resp.StatusCode >= 200 && resp.StatusCode <= 299) {
		return fmt.Errorf("%s: %w", op, err)
	}
	var body []byte
	if resp.Body != nil {
		body, _ = io.ReadAll(resp.Body)
	}
	return &UpstreamError{Op: op, StatusCode: resp.StatusCode, Body: body}
}
