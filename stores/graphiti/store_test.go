package graphiti

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/akashic/stores"
)

func newTestStore(url string) *Store {
	return New(stores.DefaultConfig(stores.WithGraphitiURL(url)))
}

func TestIngestPostsPayload(t *testing.T) {
	var got ingestRequest
	var path, contentType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		contentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, sonic.Unmarshal(body, &got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	store := newTestStore(srv.URL)
	err := store.Ingest(context.Background(), 42, "some text", map[string]string{"format": "pdf"})
	require.NoError(t, err)

	assert.Equal(t, "/ingest", path)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "42", got.SubmissionID)
	assert.Equal(t, "some text", got.Text)
	assert.Equal(t, "pdf", got.Metadata["format"])
}

func TestIngestErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   stores.ErrorKind
	}{
		{"bad request", http.StatusBadRequest, stores.ErrKindMalformedWrite},
		{"unauthorized", http.StatusUnauthorized, stores.ErrKindAuth},
		{"server error", http.StatusInternalServerError, stores.ErrKindConnection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			defer srv.Close()

			err := newTestStore(srv.URL).Ingest(context.Background(), 1, "text", nil)
			require.Error(t, err)

			var storeErr *stores.StoreError
			require.ErrorAs(t, err, &storeErr)
			assert.Equal(t, "graphiti", storeErr.Backend)
			assert.Equal(t, tt.kind, storeErr.Kind)
			assert.Contains(t, storeErr.Error(), "nope")
		})
	}
}

func TestIngestConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // closed before use

	err := newTestStore(srv.URL).Ingest(context.Background(), 1, "text", nil)
	require.Error(t, err)

	var storeErr *stores.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, stores.ErrKindConnection, storeErr.Kind)
}
