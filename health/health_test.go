package health

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func get(t *testing.T, mux *chi.Mux, path string) int {
	t.Helper()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec.Code
}

func TestEndpointsHealthyByDefault(t *testing.T) {
	mux := chi.NewRouter()
	New(WithChiMux(mux)).StartListening()

	assert.Equal(t, http.StatusOK, get(t, mux, "/liveness"))
	assert.Equal(t, http.StatusOK, get(t, mux, "/readiness"))
}

func TestFailingReadinessCheck(t *testing.T) {
	mux := chi.NewRouter()
	New(
		WithChiMux(mux),
		WithReadinessCheck("kubernetes-api", func() error { return errors.New("environment missing") }),
	).StartListening()

	assert.Equal(t, http.StatusOK, get(t, mux, "/liveness"))
	assert.Equal(t, http.StatusServiceUnavailable, get(t, mux, "/readiness"))
}
