package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/movietable/internal/utils"
)

func TestThumbnailProxy_Allowed(t *testing.T) {
	p := NewThumbnailProxy(utils.NewHTTPClient(time.Second), []string{"Upload.Wikimedia.org"}, 4)

	assert.NoError(t, p.Allowed("https://upload.wikimedia.org/a.jpg"))
	assert.ErrorIs(t, p.Allowed("https://evil.example.com/a.jpg"), ErrHostNotAllowed)
	assert.ErrorIs(t, p.Allowed("file:///etc/passwd"), ErrInvalidThumbnailURL)
	assert.ErrorIs(t, p.Allowed("::not a url"), ErrInvalidThumbnailURL)
}

func TestThumbnailProxy_ProxyURL(t *testing.T) {
	p := NewThumbnailProxy(utils.NewHTTPClient(time.Second), []string{"upload.wikimedia.org"}, 4)

	assert.Equal(t, "/api/proxy/image?url=https%3A%2F%2Fupload.wikimedia.org%2Fa.jpg",
		p.ProxyURL("https://upload.wikimedia.org/a.jpg"))
	assert.Equal(t, "https://img.example.com/a.jpg", p.ProxyURL("https://img.example.com/a.jpg"))
	assert.Empty(t, p.ProxyURL(""))

	var nilProxy *ThumbnailProxy
	assert.Equal(t, "https://upload.wikimedia.org/a.jpg", nilProxy.ProxyURL("https://upload.wikimedia.org/a.jpg"))
}

func TestThumbnailProxy_FetchCaches(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpeg-bytes"))
	}))
	t.Cleanup(srv.Close)

	p := NewThumbnailProxy(utils.NewHTTPClient(time.Second), []string{"127.0.0.1"}, 4)

	first, err := p.Fetch(context.Background(), srv.URL+"/up.jpg")
	require.NoError(t, err)
	second, err := p.Fetch(context.Background(), srv.URL+"/up.jpg")
	require.NoError(t, err)

	assert.Equal(t, "image/jpeg", first.ContentType)
	assert.Equal(t, []byte("jpeg-bytes"), second.Data)
	assert.Equal(t, int32(1), hits.Load())
}

func TestThumbnailProxy_FetchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	p := NewThumbnailProxy(utils.NewHTTPClient(time.Second), []string{"127.0.0.1"}, 4)

	_, err := p.Fetch(context.Background(), srv.URL+"/missing.jpg")

	var statusErr *utils.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
}

func TestThumbnailProxy_CacheEvicts(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte(r.URL.Path))
	}))
	t.Cleanup(srv.Close)

	p := NewThumbnailProxy(utils.NewHTTPClient(time.Second), []string{"127.0.0.1"}, 2)

	for _, path := range []string{"/a.png", "/b.png", "/c.png"} {
		_, err := p.Fetch(context.Background(), srv.URL+path)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, p.cache.Len())
	require.Equal(t, int32(3), hits.Load())

	// 最早的 /a.png 已被淘汰，需要重新拉取
	thumb, err := p.Fetch(context.Background(), srv.URL+"/a.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("/a.png"), thumb.Data)
	assert.Equal(t, int32(4), hits.Load())

	_, err = p.Fetch(context.Background(), srv.URL+"/c.png")
	require.NoError(t, err)
	assert.Equal(t, int32(4), hits.Load())
}

func TestThumbnailProxy_CallerCancelDoesNotFailSharedFetch(t *testing.T) {
	var hits atomic.Int32
	received := make(chan struct{}, 1)
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		received <- struct{}{}
		<-release
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpeg"))
	}))
	t.Cleanup(srv.Close)

	p := NewThumbnailProxy(utils.NewHTTPClient(5*time.Second), []string{"127.0.0.1"}, 4)
	target := srv.URL + "/slow.jpg"

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := p.Fetch(ctx, target)
		firstErr <- err
	}()

	<-received
	cancel()
	select {
	case err := <-firstErr:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled caller did not return")
	}

	close(release)
	thumb, err := p.Fetch(context.Background(), target)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg"), thumb.Data)
	assert.Equal(t, int32(1), hits.Load())
}
