package medium

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func TestClient_GetCurrentUser(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/me", r.URL.Path)
		assert.Equal(t, "Bearer tkn", r.Header.Get("Authorization"))

		_, err := w.Write([]byte(`{"data":{"id":"user1","username":"me"}}`))
		require.NoError(t, err)
	}))
	defer ts.Close()

	cl := NewClient(slog.Default(), ts.URL, "tkn", time.Second)

	u, err := cl.GetCurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, User{ID: "user1"}, u)
}

func TestClient_GetCurrentUser_authRejected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, err := w.Write([]byte(`{"errors":[{"message":"Token was invalid.","code":6003}]}`))
		require.NoError(t, err)
	}))
	defer ts.Close()

	cl := NewClient(slog.Default(), ts.URL, "bad", time.Second)

	_, err := cl.GetCurrentUser(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAuth))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "Token was invalid.")
}

func TestClient_GetCurrentUser_noID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := w.Write([]byte(`{"data":{}}`))
		require.NoError(t, err)
	}))
	defer ts.Close()

	cl := NewClient(slog.Default(), ts.URL, "tkn", time.Second)

	_, err := cl.GetCurrentUser(context.Background())
	assert.True(t, errors.Is(err, ErrMalformedResponse))
}

func TestClient_CreatePost(t *testing.T) {
	params := PostParams{
		Title:         "Hello",
		Content:       "Hi there",
		Tags:          []string{"a", "b"},
		ContentFormat: "markdown",
		CanonicalURL:  "https://blog.example.com/hello",
		PublishStatus: "public",
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/users/user1/posts", r.URL.Path)
		assert.Equal(t, "Bearer tkn", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var got PostParams
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, params, got)

		w.WriteHeader(http.StatusCreated)
		_, err := w.Write([]byte(`{"data":{"url":"https://medium.com/@me/hello-1"}}`))
		require.NoError(t, err)
	}))
	defer ts.Close()

	cl := NewClient(slog.Default(), ts.URL, "tkn", time.Second)

	story, err := cl.CreatePost(context.Background(), "user1", params)
	require.NoError(t, err)
	assert.Equal(t, Story{URL: "https://medium.com/@me/hello-1"}, story)
}

func TestClient_CreatePost_validationRejected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, err := w.Write([]byte(`{"errors":[{"message":"Content is too long.","code":2004}]}`))
		require.NoError(t, err)
	}))
	defer ts.Close()

	cl := NewClient(slog.Default(), ts.URL, "tkn", time.Second)

	_, err := cl.CreatePost(context.Background(), "user1", PostParams{Title: "x"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrAuth))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "Content is too long.")
}

func TestClient_CreatePost_noURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := w.Write([]byte(`{"data":{"id":"p1"}}`))
		require.NoError(t, err)
	}))
	defer ts.Close()

	cl := NewClient(slog.Default(), ts.URL, "tkn", time.Second)

	_, err := cl.CreatePost(context.Background(), "user1", PostParams{Title: "x"})
	assert.True(t, errors.Is(err, ErrMalformedResponse))
}

func TestClient_UploadImage(t *testing.T) {
	payload := testJPEG(t)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/images", r.URL.Path)
		assert.Equal(t, "Bearer tkn", r.Header.Get("Authorization"))

		f, hdr, err := r.FormFile("image")
		require.NoError(t, err)
		defer func() { require.NoError(t, f.Close()) }()

		assert.Equal(t, "pic.jpg", hdr.Filename)
		assert.Equal(t, "image/jpeg", hdr.Header.Get("Content-Type"))

		b, err := io.ReadAll(f)
		require.NoError(t, err)
		assert.Equal(t, payload, b)

		_, err = w.Write([]byte(`{"data":{"url":"https://cdn.medium.com/pic.jpg"}}`))
		require.NoError(t, err)
	}))
	defer ts.Close()

	cl := NewClient(slog.Default(), ts.URL, "tkn", time.Second)

	link, err := cl.UploadImage(context.Background(), "pic.jpg", bytes.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.medium.com/pic.jpg", link)
}

func TestClient_UploadImage_serverError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, err := w.Write([]byte("something went wrong"))
		require.NoError(t, err)
	}))
	defer ts.Close()

	cl := NewClient(slog.Default(), ts.URL, "tkn", time.Second)

	_, err := cl.UploadImage(context.Background(), "pic.jpg", strings.NewReader("data"))
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}

func TestClient_UploadImage_noURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := w.Write([]byte(`{"data":{}}`))
		require.NoError(t, err)
	}))
	defer ts.Close()

	cl := NewClient(slog.Default(), ts.URL, "tkn", time.Second)

	_, err := cl.UploadImage(context.Background(), "pic.jpg", strings.NewReader("data"))
	assert.True(t, errors.Is(err, ErrMalformedResponse))
}

func testJPEG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	buf := &bytes.Buffer{}
	require.NoError(t, jpeg.Encode(buf, img, nil))

	return buf.Bytes()
}
