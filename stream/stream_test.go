package stream

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// streamServer serves lines as a chunked NDJSON response, then blocks
// until the client goes away (like a live stream with a quiet period).
func streamServer(t *testing.T, lines []string, hold bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		require.True(t, ok)

		w.Header().Set("Content-Type", "application/x-ndjson")
		w.WriteHeader(http.StatusOK)
		for _, line := range lines {
			fmt.Fprintln(w, line)
			flusher.Flush()
		}
		if hold {
			<-r.Context().Done()
		}
	}))
}

func TestIngest(t *testing.T) {
	t.Run("hands every identity to the handler", func(t *testing.T) {
		srv := streamServer(t, []string{
			`{"actor":{"id":"one"}}`,
			`{"actor":{"id":"two"}}`,
			`{"actor":{"id":"three"}}`,
		}, true)
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var got []string
		c := &Client{BaseURL: srv.URL}
		err := c.Ingest(ctx, func(ctx context.Context, id string) {
			got = append(got, id)
			if len(got) == 3 {
				cancel()
			}
		})

		require.NoError(t, err, "consumer-initiated stop is not an error")
		assert.Equal(t, []string{"one", "two", "three"}, got)
	})

	t.Run("skips events without an identity and junk lines", func(t *testing.T) {
		srv := streamServer(t, []string{
			`{"kind":"heartbeat"}`,
			`this is not json`,
			``,
			`{"actor":{"id":"real"}}`,
		}, true)
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var got []string
		c := &Client{BaseURL: srv.URL}
		err := c.Ingest(ctx, func(ctx context.Context, id string) {
			got = append(got, id)
			cancel()
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"real"}, got)
	})

	t.Run("remote close is an error", func(t *testing.T) {
		srv := streamServer(t, []string{`{"actor":{"id":"one"}}`}, false)
		defer srv.Close()

		c := &Client{BaseURL: srv.URL}
		err := c.Ingest(context.Background(), func(ctx context.Context, id string) {})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sample stream closed")
	})

	t.Run("non-200 response is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		c := &Client{BaseURL: srv.URL, Token: "expired"}
		err := c.Ingest(context.Background(), func(ctx context.Context, id string) {})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 401")
	})

	t.Run("cancel before any event", func(t *testing.T) {
		srv := streamServer(t, nil, true)
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()

		c := &Client{BaseURL: srv.URL}
		err := c.Ingest(ctx, func(ctx context.Context, id string) {
			t.Error("handler must not run")
		})
		assert.NoError(t, err)
	})

	t.Run("sends credentials", func(t *testing.T) {
		var auth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		c := &Client{BaseURL: srv.URL, Token: "sekrit"}
		_ = c.Ingest(context.Background(), func(ctx context.Context, id string) {})
		assert.Equal(t, "Bearer sekrit", auth)
	})
}
