package poster

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendLove(t *testing.T) {
	ctx := context.Background()

	t.Run("posts the message template", func(t *testing.T) {
		var got postRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/messages", r.URL.Path)
			require.Equal(t, "Bearer sekrit", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		c := &Client{BaseURL: srv.URL, Token: "sekrit"}
		require.NoError(t, c.SendLove(ctx, "somebody"))
		assert.Equal(t, "somebody", got.Identity)
		assert.Equal(t, "@somebody you are loved", got.Message)
	})

	t.Run("custom template", func(t *testing.T) {
		var got postRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		c := &Client{BaseURL: srv.URL, Template: "sending love to %s"}
		require.NoError(t, c.SendLove(ctx, "x"))
		assert.Equal(t, "sending love to x", got.Message)
	})

	t.Run("duplicate content error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprintf(w, `{"errors":[{"code":187,"message":"Status is a duplicate"}]}`)
		}))
		defer srv.Close()

		c := &Client{BaseURL: srv.URL}
		err := c.SendLove(ctx, "somebody")
		require.Error(t, err)
		assert.True(t, IsDuplicateContent(err))

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 187, apiErr.Code)
	})

	t.Run("other api error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprintf(w, `{"errors":[{"code":88,"message":"Rate limit exceeded"}]}`)
		}))
		defer srv.Close()

		c := &Client{BaseURL: srv.URL}
		err := c.SendLove(ctx, "somebody")
		require.Error(t, err)
		assert.False(t, IsDuplicateContent(err))
	})

	t.Run("unstructured failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		c := &Client{BaseURL: srv.URL}
		err := c.SendLove(ctx, "somebody")
		require.Error(t, err)
		assert.False(t, IsDuplicateContent(err))
		assert.Contains(t, err.Error(), "status 500")
	})

	t.Run("dry run stays offline", func(t *testing.T) {
		c := &Client{BaseURL: "http://127.0.0.1:1", DryRun: true}
		assert.NoError(t, c.SendLove(ctx, "somebody"))
	})
}

func TestIsDuplicateContent(t *testing.T) {
	assert.False(t, IsDuplicateContent(nil))
	assert.False(t, IsDuplicateContent(fmt.Errorf("plain")))
	assert.False(t, IsDuplicateContent(&APIError{Code: 88}))
	assert.True(t, IsDuplicateContent(&APIError{Code: DuplicateContentCode}))
	assert.True(t, IsDuplicateContent(fmt.Errorf("wrapped: %w", &APIError{Code: 187})))
}
