package errors

import (
	"encoding/json"
	stdErrors "errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPErrorAdapter_StatusCodeFor(t *testing.T) {
	adapter := NewHTTPErrorAdapter(slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, http.StatusOK},
		{"validation", ValidationError("missing field").Build(), http.StatusBadRequest},
		{"auth", NewError(CategoryAuth, "unauthorized").Build(), http.StatusUnauthorized},
		{"not found", NotFoundError("no session").Build(), http.StatusNotFound},
		{"busy", BusyError("in flight").Build(), http.StatusConflict},
		{"network", NetworkError("unreachable").Build(), http.StatusBadGateway},
		{"build", BuildError("Invalid Steam API key").Build(), http.StatusUnprocessableEntity},
		{"storage", StorageError("write failed").Build(), http.StatusInternalServerError},
		{"unclassified", stdErrors.New("unknown"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, adapter.StatusCodeFor(tt.err))
		})
	}
}

func TestHTTPErrorAdapter_WriteErrorResponse(t *testing.T) {
	adapter := NewHTTPErrorAdapter(slog.Default())
	req := httptest.NewRequest(http.MethodPost, "/api/library", nil)
	rec := httptest.NewRecorder()

	adapter.WriteErrorResponse(rec, req, BusyError("a library build is already in progress").
		WithContext("submission_id", "abc").
		Build())

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body HTTPErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "a library build is already in progress", body.Error)
	assert.Equal(t, string(CategoryBusy), body.Code)
	assert.True(t, body.Retryable)
	assert.Equal(t, "abc", body.Details["submission_id"])
}

func TestHTTPErrorAdapter_FormatUnclassified(t *testing.T) {
	adapter := NewHTTPErrorAdapter(nil)
	resp := adapter.FormatErrorResponse(stdErrors.New("boom"))
	assert.Equal(t, "boom", resp.Error)
	assert.Empty(t, resp.Code)
}
