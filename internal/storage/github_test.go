package storage

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGitHubStore(t *testing.T, h http.HandlerFunc) *GitHubStore {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	s, err := NewGitHubStore(GitHubOptions{
		APIBase: srv.URL,
		Token:   "tok",
		Owner:   "octo",
		Repo:    "assets",
		Folder:  "images",
	})
	require.NoError(t, err)
	return s
}

func TestNewGitHubStore_RequiresCoordinates(t *testing.T) {
	_, err := NewGitHubStore(GitHubOptions{Token: "t", Owner: "o", Repo: "r"})
	assert.Error(t, err)
}

func TestGitHubStore_Metadata(t *testing.T) {
	s := newTestGitHubStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/repos/octo/assets/contents/images/1-cat.png", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "2022-11-28", r.Header.Get("X-GitHub-Api-Version"))
		_, _ = w.Write([]byte(`{"name":"1-cat.png","path":"images/1-cat.png","sha":"abc","size":3,"type":"file"}`))
	})

	obj, err := s.Metadata(context.Background(), "1-cat.png")
	require.NoError(t, err)
	assert.Equal(t, "abc", obj.SHA)
	assert.Equal(t, "1-cat.png", obj.Name)
}

func TestGitHubStore_Metadata_NotFound(t *testing.T) {
	s := newTestGitHubStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
	})

	_, err := s.Metadata(context.Background(), "missing.png")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	var upErr *UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, http.StatusNotFound, upErr.StatusCode)
	assert.JSONEq(t, `{"message":"Not Found"}`, string(upErr.Body))
}

func TestGitHubStore_Metadata_Unauthorized(t *testing.T) {
	s := newTestGitHubStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Bad credentials"}`))
	})

	_, err := s.Metadata(context.Background(), "x.png")
	assert.True(t, errors.Is(err, ErrUnauthorized))
}

func TestGitHubStore_Put_SendsBase64(t *testing.T) {
	s := newTestGitHubStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/repos/octo/assets/contents/images/1-cat.png", r.URL.Path)

		var body struct {
			Message string `json:"message"`
			Content string `json:"content"`
			SHA     string `json:"sha"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Empty(t, body.SHA)
		assert.Equal(t, "Upload new image", body.Message)
		assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("png")), body.Content)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"content":{"name":"1-cat.png","sha":"new"}}`))
	})

	obj, err := s.Put(context.Background(), "1-cat.png", []byte("png"), "Upload new image")
	require.NoError(t, err)
	assert.Equal(t, "new", obj.SHA)
}

func TestGitHubStore_Put_ForwardsUpstreamBody(t *testing.T) {
	s := newTestGitHubStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"Invalid request.\n\n\"sha\" wasn't supplied."}`))
	})

	_, err := s.Put(context.Background(), "1-cat.png", []byte("png"), "Upload new image")
	var upErr *UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, http.StatusUnprocessableEntity, upErr.StatusCode)
	assert.Nil(t, upErr.Unwrap())
	assert.Contains(t, string(upErr.Body), "sha")
}

func TestGitHubStore_Delete(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{name: "ok", status: http.StatusOK},
		{name: "stale sha", status: http.StatusConflict, wantErr: ErrConflict},
		{name: "missing", status: http.StatusNotFound, wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestGitHubStore(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodDelete, r.Method)
				var body struct {
					Message string `json:"message"`
					SHA     string `json:"sha"`
				}
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, "Delete 1-cat.png", body.Message)
				assert.Equal(t, "abc", body.SHA)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{}`))
			})

			err := s.Delete(context.Background(), "1-cat.png", "abc", "Delete 1-cat.png")
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr))
		})
	}
}

func TestGitHubStore_List(t *testing.T) {
	s := newTestGitHubStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/octo/assets/contents/images", r.URL.Path)
		_, _ = w.Write([]byte(`[{"name":"1-a.png","sha":"s1","type":"file"},{"name":"2-b.png","sha":"s2","type":"file"}]`))
	})

	objs, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, objs, 2)
	assert.Equal(t, "1-a.png", objs[0].Name)
	assert.Equal(t, "2-b.png", objs[1].Name)
}

func TestGitHubStore_List_MissingFolderIsEmpty(t *testing.T) {
	s := newTestGitHubStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	objs, err := s.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, objs)
	assert.Empty(t, objs)
}

func TestGitHubStore_EscapesNames(t *testing.T) {
	var paths []string
	s := newTestGitHubStore(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`{"name":"1-a b#c.png","sha":"s1","type":"file"}`))
		case http.MethodPut:
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"content":{"name":"1-a b#c.png","sha":"s2"}}`))
		default:
			_, _ = w.Write([]byte(`{}`))
		}
	})
	ctx := context.Background()

	_, err := s.Metadata(ctx, "1-a b#c.png")
	require.NoError(t, err)
	_, err = s.Put(ctx, "1-a b#c.png", []byte("x"), "Upload new image")
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, "1-a b#c.png", "s2", "Delete 1-a b#c.png"))

	want := "/repos/octo/assets/contents/images/1-a b#c.png"
	assert.Equal(t, []string{"GET " + want, "PUT " + want, "DELETE " + want}, paths)
}

func TestUpstreamError_Detail(t *testing.T) {
	jsonErr := &UpstreamError{StatusCode: 500, Body: []byte(`{"message":"boom"}`)}
	assert.Equal(t, json.RawMessage(`{"message":"boom"}`), jsonErr.Detail())

	textErr := &UpstreamError{StatusCode: 502, Body: []byte("bad gateway")}
	assert.Equal(t, "bad gateway", textErr.Detail())
}
