package shared

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/phrazzld/guidematch/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondWithJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		data   any
		want   string
	}{
		{name: "object", status: http.StatusOK, data: map[string]int{"count": 2}, want: `{"count":2}`},
		{name: "empty object", status: http.StatusCreated, data: map[string]any{}, want: `{}`},
		{name: "nil", status: http.StatusOK, data: nil, want: `null`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
			rec := httptest.NewRecorder()

			RespondWithJSON(rec, req, tc.status, tc.data)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tc.want, rec.Body.String())
		})
	}
}

func TestRespondWithErrorIncludesTraceID(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req = req.WithContext(SetTraceID(req.Context()))
	rec := httptest.NewRecorder()

	RespondWithError(rec, req, http.StatusUnauthorized, "Login required")

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Login required", body.Error)
	assert.Equal(t, GetTraceID(req.Context()), body.TraceID)
}

func TestRespondWithErrorAndLogRedacts(t *testing.T) {
	logBuf, l := logger.SetupTestLogger(t)

	req := httptest.NewRequest(http.MethodPost, "/register", nil)
	req = req.WithContext(logger.WithLogger(SetTraceID(req.Context()), l))
	rec := httptest.NewRecorder()

	err := errors.New("insert failed for ana@example.com via postgres://app:hunter2@db:5432/guidematch")
	RespondWithErrorAndLog(rec, req, http.StatusInternalServerError, "Something went wrong.", err)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "ana@example.com")
	assert.Contains(t, rec.Body.String(), "Something went wrong.")

	entries, parseErr := logBuf.GetLogEntries()
	require.NoError(t, parseErr)
	require.Len(t, entries, 1)
	assert.Equal(t, "ERROR", entries[0]["level"])
	logged, _ := entries[0]["error"].(string)
	assert.NotContains(t, logged, "hunter2")
	assert.NotContains(t, logged, "ana@example.com")
}

func TestLogErrorLevels(t *testing.T) {
	tests := []struct {
		name   string
		status int
		opts   []ResponseOption
		want   string
	}{
		{name: "client error", status: http.StatusBadRequest, want: "DEBUG"},
		{name: "elevated client error", status: http.StatusUnauthorized, opts: []ResponseOption{WithElevatedLogLevel()}, want: "WARN"},
		{name: "rate limited", status: http.StatusTooManyRequests, want: "WARN"},
		{name: "server error", status: http.StatusServiceUnavailable, want: "ERROR"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			logBuf, l := logger.SetupTestLogger(t)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(logger.WithLogger(req.Context(), l))

			LogError(req, tc.status, "msg", errors.New("boom"), tc.opts...)

			entries, err := logBuf.GetLogEntries()
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, tc.want, entries[0]["level"])
		})
	}
}
