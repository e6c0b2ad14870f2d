package app

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApplication(t *testing.T) *Application {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("BIZREPORT_PATHS_REPORTS_DIR", filepath.Join(dir, "reports"))
	t.Setenv("BIZREPORT_PATHS_OUTPUT_DIR", filepath.Join(dir, "output"))
	t.Setenv("BIZREPORT_PATHS_LOGS_DIR", filepath.Join(dir, "logs"))

	app, err := NewApplication()
	require.NoError(t, err)
	return app
}

func TestRouterServesHealth(t *testing.T) {
	app := newTestApplication(t)

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestRouterServesMetrics(t *testing.T) {
	app := newTestApplication(t)

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouterReportsWithoutDataset(t *testing.T) {
	app := newTestApplication(t)

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/reports/periods", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NO_REPORTS_LOADED")
}
