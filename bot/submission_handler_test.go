package bot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadLimited(t *testing.T) {
	t.Run("returns body within the limit", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("png-bytes"))
		}))
		defer server.Close()

		data, err := downloadLimited(context.Background(), server.URL, 64)
		require.NoError(t, err)
		assert.Equal(t, []byte("png-bytes"), data)
	})

	t.Run("rejects an oversized body instead of truncating", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write(make([]byte, 128))
		}))
		defer server.Close()

		_, err := downloadLimited(context.Background(), server.URL, 64)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "byte limit")
	})

	t.Run("accepts a body exactly at the limit", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write(make([]byte, 64))
		}))
		defer server.Close()

		data, err := downloadLimited(context.Background(), server.URL, 64)
		require.NoError(t, err)
		assert.Len(t, data, 64)
	})

	t.Run("non-200 status is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		_, err := downloadLimited(context.Background(), server.URL, 64)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 404")
	})
}
