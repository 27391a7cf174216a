package review

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTLSNotifier(t *testing.T, handler http.HandlerFunc) (*HTTPNotifier, *httptest.Server) {
	t.Helper()
	srv := httptest.NewTLSServer(handler)
	t.Cleanup(srv.Close)

	n := NewHTTPNotifier(5*time.Second, "Frostpaw/0.3")
	n.client = srv.Client()
	return n, srv
}

func TestHTTPNotifierDeliversJSON(t *testing.T) {
	var gotAuth, gotAgent, gotContentType string
	var gotBody map[string]any

	n, srv := newTLSNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAgent = r.Header.Get("User-Agent")
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"done": true}`))
	})

	payload := map[string]any{"bot_id": "519850436899897346", "reason": "Looks good"}
	out := n.Call(context.Background(), srv.URL, "super-secret", payload)

	assert.True(t, out.Delivered())
	assert.Equal(t, http.StatusOK, out.Status)
	assert.Equal(t, "super-secret", gotAuth)
	assert.Equal(t, "Frostpaw/0.3", gotAgent)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "519850436899897346", gotBody["bot_id"])
	assert.Equal(t, map[string]any{"done": true}, out.Data)
	assert.Equal(t, payload, out.SentData)
}

func TestHTTPNotifierNonJSONResponse(t *testing.T) {
	n, srv := newTLSNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("thanks"))
	})

	out := n.Call(context.Background(), srv.URL, "k", map[string]any{})

	assert.True(t, out.Delivered())
	assert.Equal(t, "thanks", out.Data)
}

func TestHTTPNotifierMalformedJSON(t *testing.T) {
	n, srv := newTLSNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"done":`))
	})

	out := n.Call(context.Background(), srv.URL, "k", map[string]any{})

	assert.False(t, out.Delivered())
	assert.Equal(t, http.StatusOK, out.Status)
	assert.Equal(t, "JSON deserialisation failed", out.Msg)
	assert.Equal(t, `{"done":`, out.Data)
}

func TestHTTPNotifierErrorStatus(t *testing.T) {
	n, srv := newTLSNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"detail": "bad key"}`))
	})

	out := n.Call(context.Background(), srv.URL, "wrong", map[string]any{})

	assert.False(t, out.Delivered())
	assert.Equal(t, http.StatusForbidden, out.Status)
	assert.Equal(t, map[string]any{"detail": "bad key"}, out.Data)
}

func TestHTTPNotifierRefusesPlainHTTP(t *testing.T) {
	n := NewHTTPNotifier(time.Second, "Frostpaw/0.3")

	for _, url := range []string{"http://insecure.example.com/claim", "", "ftp://x"} {
		out := n.Call(context.Background(), url, "k", map[string]any{"a": 1})
		assert.False(t, out.Delivered())
		assert.Equal(t, -1, out.Status)
		assert.Equal(t, "Refusing callback URL without https", out.Msg)
	}
}

func TestHTTPNotifierTransportFailure(t *testing.T) {
	n := NewHTTPNotifier(time.Second, "Frostpaw/0.3")

	// Nothing listens here; the dial fails.
	out := n.Call(context.Background(), "https://127.0.0.1:1/claim", "k", map[string]any{})

	assert.False(t, out.Delivered())
	assert.Equal(t, -1, out.Status)
	assert.Equal(t, "Failed to make request", out.Msg)
	assert.NotEmpty(t, out.Exc)
}
