package logger

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMiddleware_RestoresBodyForDownstream(t *testing.T) {
	SetAccessLogger(zap.NewNop())

	var got string
	h := (&Middleware{}).Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		got = string(b)
		w.WriteHeader(http.StatusOK)
	}))

	body := `{"id":1,"params":{"operation":"add","input":null}}`
	req := httptest.NewRequest(http.MethodPost, "/csp/math", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, body, got)
}

func TestShouldLogBody(t *testing.T) {
	SetAccessLogger(zap.NewNop())
	AddBodyLogPaths("/echo")

	mk := func(method, path, ct string) *http.Request {
		r := httptest.NewRequest(method, path, nil)
		if ct != "" {
			r.Header.Set("Content-Type", ct)
		}
		return r
	}
	small := []byte(`{"a":1}`)

	// Dispatch paths are allowlisted by prefix.
	assert.True(t, shouldLogBody(mk(http.MethodPost, "/csp/math", "application/json"), small))
	// Explicitly allowlisted path.
	assert.True(t, shouldLogBody(mk(http.MethodPost, "/echo", "application/json"), small))
	// Everything else is redacted.
	assert.False(t, shouldLogBody(mk(http.MethodPost, "/other", "application/json"), small))
	assert.False(t, shouldLogBody(mk(http.MethodGet, "/csp/math", "application/json"), small))
	assert.False(t, shouldLogBody(mk(http.MethodPost, "/csp/math", "text/plain"), small))
	assert.False(t, shouldLogBody(mk(http.MethodPost, "/csp/math", "application/json"), nil))
	assert.False(t, shouldLogBody(mk(http.MethodPost, "/csp/math", "application/json"), make([]byte, 1<<16+1)))
}
