package httprequest_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chainreact/chainreact/pkg/actions/httprequest"
	"github.com/chainreact/chainreact/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func actionContext() protocol.ActionContext {
	return protocol.ActionContext{
		ExecutionID: "ex-1",
		NodeID:      "call",
		Logger:      slog.Default(),
	}
}

func TestNewAction_Validation(t *testing.T) {
	t.Parallel()

	_, err := httprequest.NewAction(map[string]any{})
	assert.ErrorIs(t, err, httprequest.ErrURLRequired)

	action, err := httprequest.NewAction(map[string]any{"url": "https://api.example.com"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, action.Method)
	assert.Equal(t, 30*time.Second, action.Timeout)
	assert.Equal(t, 1, action.Retry.Attempts)

	action, err = httprequest.NewAction(map[string]any{
		"url":     "https://api.example.com",
		"method":  "post",
		"timeout": float64(5),
		"retry":   map[string]any{"attempts": float64(3), "delay": float64(1)},
	})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, action.Method)
	assert.Equal(t, 5*time.Second, action.Timeout)
	assert.Equal(t, 3, action.Retry.Attempts)
	assert.Equal(t, 1, action.Retry.Delay)
}

func TestExecute_JSONResponse(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"amount": 42}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": "ch_1", "status": "created"}`))
	}))
	defer server.Close()

	action, err := httprequest.NewAction(map[string]any{
		"url":     server.URL,
		"method":  "POST",
		"body":    `{"amount": 42}`,
		"headers": map[string]any{"Content-Type": "application/json"},
	})
	require.NoError(t, err)

	result, err := action.Execute(context.Background(), actionContext())
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, result.Output["status_code"])

	body, ok := result.Output["body"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ch_1", body["id"])
}

func TestExecute_NonJSONBodyReturnedAsString(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("plain text"))
	}))
	defer server.Close()

	action, err := httprequest.NewAction(map[string]any{"url": server.URL})
	require.NoError(t, err)

	result, err := action.Execute(context.Background(), actionContext())
	require.NoError(t, err)
	assert.Equal(t, "plain text", result.Output["body"])
}

func TestExecute_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)

			return
		}

		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	action, err := httprequest.NewAction(map[string]any{
		"url":   server.URL,
		"retry": map[string]any{"attempts": float64(3)},
	})
	require.NoError(t, err)

	result, err := action.Execute(context.Background(), actionContext())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.Output["status_code"])
	assert.Equal(t, int32(3), calls.Load())
}

func TestExecute_ExhaustedRetriesReturnLastResponse(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	action, err := httprequest.NewAction(map[string]any{
		"url":   server.URL,
		"retry": map[string]any{"attempts": float64(2)},
	})
	require.NoError(t, err)

	// The final 5xx is not an action error; the status code lands in the
	// output for downstream branching.
	result, err := action.Execute(context.Background(), actionContext())
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, result.Output["status_code"])
}
