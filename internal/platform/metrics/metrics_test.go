package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordLogin(t *testing.T) {
	success := LoginsTotal.WithLabelValues("tourist", OutcomeSuccess)
	failure := LoginsTotal.WithLabelValues("tourist", OutcomeFailure)
	beforeSuccess := testutil.ToFloat64(success)
	beforeFailure := testutil.ToFloat64(failure)

	RecordLogin("tourist", nil)
	RecordLogin("tourist", errors.New("bad credentials"))
	RecordLogin("tourist", errors.New("bad credentials"))

	assert.Equal(t, beforeSuccess+1, testutil.ToFloat64(success))
	assert.Equal(t, beforeFailure+2, testutil.ToFloat64(failure))
}

func TestRecordRegistration(t *testing.T) {
	counter := RegistrationsTotal.WithLabelValues("guide", OutcomeSuccess)
	before := testutil.ToFloat64(counter)

	RecordRegistration("guide", nil)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/guides/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Get("/plain", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	patterned := HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/guides/{id}", "418")
	plain := HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/plain", "200")
	beforePatterned := testutil.ToFloat64(patterned)
	beforePlain := testutil.ToFloat64(plain)

	for _, path := range []string{"/guides/1", "/guides/2", "/plain"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, beforePatterned+2, testutil.ToFloat64(patterned))
	assert.Equal(t, beforePlain+1, testutil.ToFloat64(plain))
}
