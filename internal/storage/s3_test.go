package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method string
	path   string
	body   []byte
}

func TestS3StoreAgainstCustomEndpoint(t *testing.T) {
	var mu sync.Mutex
	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		requests = append(requests, recordedRequest{method: r.Method, path: r.URL.Path, body: body})
		mu.Unlock()
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx := context.Background()
	store, err := NewS3Store(ctx, Config{
		S3Bucket:          "foodgram",
		S3Region:          "us-east-1",
		S3Endpoint:        server.URL,
		S3AccessKeyID:     "test",
		S3SecretAccessKey: "test",
	})
	require.NoError(t, err)

	url, err := store.Save(ctx, "recipes/a.png", pngBytes, "image/png")
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/foodgram/recipes/a.png", url)

	require.NoError(t, store.Delete(ctx, "recipes/a.png"))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, requests, 2)
	assert.Equal(t, http.MethodPut, requests[0].method)
	assert.Equal(t, "/foodgram/recipes/a.png", requests[0].path)
	assert.Equal(t, http.MethodDelete, requests[1].method)
}

func TestS3StoreRequiresBucket(t *testing.T) {
	_, err := NewS3Store(context.Background(), Config{S3Region: "us-east-1"})
	assert.Error(t, err)
}
