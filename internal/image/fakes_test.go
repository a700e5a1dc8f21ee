package image

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/buket/service/internal/activity"
	"github.com/buket/service/internal/cdn"
	"github.com/buket/service/internal/storage"
)

// fakeStore is an in-memory ContentStore that records every call.
type fakeStore struct {
	mu    sync.Mutex
	files map[string]storedFile
	seq   int
	calls []string

	putErr    error
	deleteErr error
	listErr   error
	metaErr   error
}

type storedFile struct {
	content []byte
	sha     string
}

func newFakeStore() *fakeStore {
	return &fakeStore{files: map[string]storedFile{}}
}

func (f *fakeStore) seed(name string, content []byte) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	sha := fmt.Sprintf("sha-%d", f.seq)
	f.files[name] = storedFile{content: content, sha: sha}
	return sha
}

func (f *fakeStore) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, op+" ") {
			n++
		}
	}
	return n
}

func (f *fakeStore) Metadata(_ context.Context, name string) (*storage.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "metadata "+name)
	if f.metaErr != nil {
		return nil, f.metaErr
	}
	file, ok := f.files[name]
	if !ok {
		return nil, &storage.UpstreamError{Op: "get metadata", StatusCode: 404, Body: []byte(`{"message":"Not Found"}`)}
	}
	return &storage.Object{Name: name, SHA: file.sha, Size: int64(len(file.content)), Type: "file"}, nil
}

func (f *fakeStore) Put(_ context.Context, name string, content []byte, message string) (*storage.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "put "+name+" "+message)
	if f.putErr != nil {
		return nil, f.putErr
	}
	if _, ok := f.files[name]; ok {
		return nil, &storage.UpstreamError{Op: "put file", StatusCode: 422, Body: []byte(`{"message":"sha wasn't supplied"}`)}
	}
	f.seq++
	sha := fmt.Sprintf("sha-%d", f.seq)
	f.files[name] = storedFile{content: content, sha: sha}
	return &storage.Object{Name: name, SHA: sha}, nil
}

func (f *fakeStore) Delete(_ context.Context, name, sha, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "delete "+name+" "+message)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	file, ok := f.files[name]
	if !ok {
		return &storage.UpstreamError{Op: "delete file", StatusCode: 404}
	}
	if file.sha != sha {
		return &storage.UpstreamError{Op: "delete file", StatusCode: 409}
	}
	delete(f.files, name)
	return nil
}

func (f *fakeStore) List(context.Context) ([]storage.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "list ")
	if f.listErr != nil {
		return nil, f.listErr
	}
	objs := []storage.Object{}
	for name, file := range f.files {
		objs = append(objs, storage.Object{Name: name, SHA: file.sha, Type: "file"})
	}
	return objs, nil
}

type fakeRecorder struct {
	events []activity.Event
	err    error
}

func (r *fakeRecorder) Record(_ context.Context, e activity.Event) error {
	r.events = append(r.events, e)
	return r.err
}

// steppingClock returns t, t+1ms, t+2ms, ...
func steppingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := next
		next = next.Add(time.Millisecond)
		return now
	}
}

var testURLs = cdn.JSDelivr{Owner: "octo", Repo: "assets", Folder: "images"}
