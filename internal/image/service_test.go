package image

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/buket/service/internal/activity"
	"github.com/buket/service/internal/storage"
)

var epoch = time.UnixMilli(1700000000000)

func newTestService(store *fakeStore, opts ...Option) *Service {
	opts = append([]Option{WithClock(steppingClock(epoch))}, opts...)
	return NewService(store, testURLs, zap.NewNop(), opts...)
}

func TestService_Store(t *testing.T) {
	store := newFakeStore()
	rec := &fakeRecorder{}
	svc := newTestService(store, WithRecorder(rec))

	img, err := svc.Store(context.Background(), "cat.png", []byte("png"))
	require.NoError(t, err)

	assert.Equal(t, "1700000000000-cat.png", img.Name)
	assert.Equal(t, "https://cdn.jsdelivr.net/gh/octo/assets/images/1700000000000-cat.png", img.CDNURL)
	assert.NotContains(t, img.CDNURL, "?v=")
	assert.Equal(t, []byte("png"), store.files[img.Name].content)
	assert.Equal(t, []string{"put 1700000000000-cat.png Upload new image"}, store.calls)

	require.Len(t, rec.events, 1)
	assert.Equal(t, activity.ActionUpload, rec.events[0].Action)
	assert.Equal(t, img.Name, rec.events[0].FileName)
}

func TestService_Store_SameNameTwiceGetsDistinctFiles(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	a, err := svc.Store(context.Background(), "cat.png", []byte("1"))
	require.NoError(t, err)
	b, err := svc.Store(context.Background(), "cat.png", []byte("2"))
	require.NoError(t, err)

	assert.NotEqual(t, a.Name, b.Name)
	assert.True(t, strings.HasSuffix(a.Name, "-cat.png"))
	assert.True(t, strings.HasSuffix(b.Name, "-cat.png"))
	assert.Len(t, store.files, 2)
}

func TestService_Store_StripsDirectories(t *testing.T) {
	svc := newTestService(newFakeStore())

	img, err := svc.Store(context.Background(), `..\..\evil/../cat.png`, []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "1700000000000-cat.png", img.Name)

	_, err = svc.Store(context.Background(), "  ", []byte("x"))
	assert.ErrorIs(t, err, ErrInvalidName)
	_, err = svc.Store(context.Background(), "../", []byte("x"))
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestService_Store_PropagatesUpstreamError(t *testing.T) {
	store := newFakeStore()
	store.putErr = &storage.UpstreamError{Op: "put file", StatusCode: 500, Body: []byte("boom")}
	rec := &fakeRecorder{}
	svc := newTestService(store, WithRecorder(rec))

	_, err := svc.Store(context.Background(), "cat.png", []byte("png"))

	var upErr *storage.UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, "boom", string(upErr.Body))
	assert.Empty(t, rec.events)
}

func TestService_List(t *testing.T) {
	store := newFakeStore()
	store.seed("1-a.png", []byte("a"))
	store.seed("2-b.png", []byte("b"))
	svc := newTestService(store)

	images, err := svc.List(context.Background())
	require.NoError(t, err)

	sort.Slice(images, func(i, j int) bool { return images[i].Name < images[j].Name })
	assert.Equal(t, []Image{
		{Name: "1-a.png", CDNURL: "https://cdn.jsdelivr.net/gh/octo/assets/images/1-a.png"},
		{Name: "2-b.png", CDNURL: "https://cdn.jsdelivr.net/gh/octo/assets/images/2-b.png"},
	}, images)
}

func TestService_List_Empty(t *testing.T) {
	svc := newTestService(newFakeStore())

	images, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, images)
	assert.Empty(t, images)
}

func TestService_Replace(t *testing.T) {
	store := newFakeStore()
	oldSHA := store.seed("1-a.png", []byte("old"))
	rec := &fakeRecorder{}
	svc := newTestService(store, WithRecorder(rec))

	img, err := svc.Replace(context.Background(), "1-a.png", []byte("new"))
	require.NoError(t, err)

	assert.Equal(t, "1-a.png", img.Name)
	assert.Equal(t, "https://cdn.jsdelivr.net/gh/octo/assets/images/1-a.png?v=1700000000000", img.CDNURL)
	assert.Equal(t, []byte("new"), store.files["1-a.png"].content)
	assert.NotEqual(t, oldSHA, store.files["1-a.png"].sha)
	assert.Equal(t, []string{
		"metadata 1-a.png",
		"delete 1-a.png Delete old image before update: 1-a.png",
		"put 1-a.png Upload updated image: 1-a.png",
	}, store.calls)

	require.Len(t, rec.events, 1)
	assert.Equal(t, activity.ActionReplace, rec.events[0].Action)
}

func TestService_Replace_AlwaysVersionsURL(t *testing.T) {
	store := newFakeStore()
	store.seed("1-a.png", []byte("old"))
	svc := newTestService(store)

	first, err := svc.Replace(context.Background(), "1-a.png", []byte("v1"))
	require.NoError(t, err)
	second, err := svc.Replace(context.Background(), "1-a.png", []byte("v2"))
	require.NoError(t, err)

	assert.Contains(t, first.CDNURL, "?v=")
	assert.Contains(t, second.CDNURL, "?v=")
	assert.NotEqual(t, first.CDNURL, second.CDNURL)
}

func TestService_Replace_NotFoundMakesNoWrites(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	_, err := svc.Replace(context.Background(), "missing.png", []byte("new"))

	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, svc.IsNotFound(err))
	assert.Equal(t, 0, store.count("delete"))
	assert.Equal(t, 0, store.count("put"))
	assert.Empty(t, store.files)
}

// A put failure after a successful delete leaves the file absent. This is
// the accepted non-atomic window of delete-then-create, not a target to fix.
func TestService_Replace_PutFailureLeavesFileAbsent(t *testing.T) {
	store := newFakeStore()
	store.seed("1-a.png", []byte("old"))
	store.putErr = &storage.UpstreamError{Op: "put file", StatusCode: 502, Body: []byte("bad gateway")}
	svc := newTestService(store)

	_, err := svc.Replace(context.Background(), "1-a.png", []byte("new"))

	var upErr *storage.UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, 502, upErr.StatusCode)
	assert.NotContains(t, store.files, "1-a.png")

	_, err = svc.Replace(context.Background(), "1-a.png", []byte("again"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_Replace_StaleShaIsConflict(t *testing.T) {
	store := newFakeStore()
	store.seed("1-a.png", []byte("old"))
	store.deleteErr = &storage.UpstreamError{Op: "delete file", StatusCode: 409}
	svc := newTestService(store)

	_, err := svc.Replace(context.Background(), "1-a.png", []byte("new"))

	assert.ErrorIs(t, err, storage.ErrConflict)
	assert.Equal(t, 0, store.count("put"))
	assert.Contains(t, store.files, "1-a.png")
}

func TestService_Replace_RejectsPathNames(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	_, err := svc.Replace(context.Background(), "../x.png", []byte("new"))
	assert.ErrorIs(t, err, ErrInvalidName)
	assert.Empty(t, store.calls)
}

func TestService_Remove(t *testing.T) {
	store := newFakeStore()
	store.seed("1-a.png", []byte("a"))
	rec := &fakeRecorder{}
	svc := newTestService(store, WithRecorder(rec))

	require.NoError(t, svc.Remove(context.Background(), "1-a.png"))

	assert.Empty(t, store.files)
	assert.Equal(t, []string{"metadata 1-a.png", "delete 1-a.png Delete 1-a.png"}, store.calls)
	require.Len(t, rec.events, 1)
	assert.Equal(t, activity.ActionDelete, rec.events[0].Action)
}

func TestService_Remove_NotFoundMakesNoDelete(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	err := svc.Remove(context.Background(), "missing.png")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, store.count("delete"))
}

func TestService_Remove_UnauthorizedIsNotNotFound(t *testing.T) {
	store := newFakeStore()
	store.metaErr = &storage.UpstreamError{Op: "get metadata", StatusCode: 401}
	svc := newTestService(store)

	err := svc.Remove(context.Background(), "1-a.png")

	assert.ErrorIs(t, err, storage.ErrUnauthorized)
	assert.False(t, svc.IsNotFound(err))
}

func TestService_RecorderFailureDoesNotFailOperation(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, WithRecorder(&fakeRecorder{err: errors.New("db down")}))

	_, err := svc.Store(context.Background(), "cat.png", []byte("png"))
	assert.NoError(t, err)
}
