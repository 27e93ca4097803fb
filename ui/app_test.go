package ui

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	app, err := NewApp(newTestContainer(t))
	require.NoError(t, err)
	return app
}

func TestReportInlinesCharts(t *testing.T) {
	app := newTestApp(t)
	w := do(t, app.Handler(), http.MethodGet, "/?year=2005&region=europe", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Death Rate for 2005")
	assert.Contains(t, body, "<svg")
	assert.Contains(t, body, "/charts/gdp.svg?")
	assert.Contains(t, body, "France")
	assert.NotContains(t, body, "Nigeria")
}

func TestReportRejectsBadSelection(t *testing.T) {
	app := newTestApp(t)
	w := do(t, app.Handler(), http.MethodGet, "/?metric=Bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportCharts(t *testing.T) {
	app := newTestApp(t)

	w := do(t, app.Handler(), http.MethodGet, "/charts/metric.svg?year=2010", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))

	w = do(t, app.Handler(), http.MethodGet, "/charts/nope.svg", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, app.Handler(), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
