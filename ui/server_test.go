package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"heartdash/domain/heart"
	"heartdash/internal/config"
	"heartdash/internal/container"
	"heartdash/internal/errors"
	"heartdash/internal/figure"
	"heartdash/internal/testkit"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContainer(t *testing.T) *container.Container {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("DATA_FILE", filepath.Join(t.TempDir(), "missing.csv"))
	t.Setenv("OPENAI_API_KEY", "")
	cfg, err := config.Load()
	require.NoError(t, err)

	c, err := container.New(cfg)
	require.NoError(t, err)
	require.NoError(t, c.InitData(testkit.SampleFrame(), "sample"))
	t.Cleanup(func() { c.Shutdown(context.Background()) })
	return c
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(newTestContainer(t))
	require.NoError(t, err)
	return s
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestNewServerRequiresData(t *testing.T) {
	_, err := NewServer(nil)
	assert.Error(t, err)
}

func TestIndexRendersSelectors(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s.Handler(), http.MethodGet, "/", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	for _, id := range []string{"region-dropdown", "country-dropdown", "income-dropdown", "gender-dropdown", "metric-dropdown", "year-slider"} {
		assert.Contains(t, body, `id="`+id+`"`)
	}
	assert.Contains(t, body, "Healthcare Features")
	assert.Contains(t, body, `<option value="France">France</option>`)
}

func TestTabFragments(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s.Handler(), http.MethodGet, "/tabs/intro", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Cardiovascular disease around the world")
	assert.Contains(t, w.Body.String(), "Dataset overview")
	assert.Contains(t, w.Body.String(), "<td>Prevalence Rate</td>")

	w = do(t, s.Handler(), http.MethodGet, "/tabs/insights", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `data-insight="`+figure.InsightNames()[0]+`"`)

	w = do(t, s.Handler(), http.MethodGet, "/tabs/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOptionsListsCountriesFromData(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s.Handler(), http.MethodGet, "/api/options", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var opts options
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &opts))
	assert.Len(t, opts.Countries, len(testkit.Countries)-1)
	assert.Equal(t, heart.MinYear, opts.YearMin)
	assert.Len(t, opts.Metrics, len(heart.Metrics))
}

func TestInputsInitialDispatchAndSession(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s.Handler(), http.MethodPost, "/api/inputs", inputsRequest{})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	sessionID, _ := body["session_id"].(string)
	require.NotEmpty(t, sessionID)

	outputs := body["outputs"].(map[string]any)
	assert.Equal(t, "Death Rate for 2000", outputs["map-title.children"])
	assert.Equal(t, "intro", outputs["tab-content.children"])
	assert.Contains(t, outputs, "chloropleth-map.figure")
	assert.NotContains(t, outputs, "general-data.data")

	w = do(t, s.Handler(), http.MethodPost, "/api/inputs", inputsRequest{
		SessionID: sessionID,
		Changed:   map[string]any{"year-slider.value": 2005},
	})
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, sessionID, body["session_id"])
	outputs = body["outputs"].(map[string]any)
	assert.Equal(t, "Death Rate for 2005", outputs["map-title.children"])
	assert.NotContains(t, outputs, "tab-content.children")
}

func TestInputsRejectsUnknownProp(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s.Handler(), http.MethodPost, "/api/inputs", inputsRequest{
		Changed: map[string]any{"nope.value": 1},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, errors.CodeInvalidInput, decode(t, w)["code"])
}

func TestFigureEndpoints(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{
		"/api/map?year=2005",
		"/api/geo-eco?region=europe",
		"/api/healthcare?year=2015",
		"/api/trends?country=France&country=Spain",
		"/api/insights/" + figure.InsightNames()[0],
		"/api/profile",
	} {
		w := do(t, s.Handler(), http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w := do(t, s.Handler(), http.MethodGet, "/api/map?year=2005", nil)
	assert.Equal(t, "Death Rate for 2005", decode(t, w)["title"])

	w = do(t, s.Handler(), http.MethodGet, "/api/profile", nil)
	metrics, ok := decode(t, w)["metrics"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, metrics)
	markers := metrics[0].(map[string]any)["markers"].(map[string]any)
	assert.Contains(t, markers["shape"], "excess_kurtosis")
}

func TestFigureEndpointErrors(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		path   string
		status int
		code   string
	}{
		{"/api/map?metric=Bogus", http.StatusBadRequest, errors.CodeUnknownMetric},
		{"/api/geo-eco?top_n=500", http.StatusBadRequest, errors.CodeInvalidInput},
		{"/api/map?year=abc", http.StatusBadRequest, errors.CodeInvalidInput},
		{"/api/trends?region=antarctica", http.StatusInternalServerError, errors.CodeNoData},
		{"/api/insights/nope", http.StatusNotFound, errors.CodeNotFound},
		{"/api/tooltip", http.StatusBadRequest, errors.CodeInvalidInput},
	}
	for _, tc := range cases {
		w := do(t, s.Handler(), http.MethodGet, tc.path, nil)
		assert.Equal(t, tc.status, w.Code, tc.path)
		assert.Equal(t, tc.code, decode(t, w)["code"], tc.path)
	}
}

func TestTooltip(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s.Handler(), http.MethodGet, "/api/tooltip?code=fra&year=2005", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["show"])
	assert.Equal(t, "France", body["tooltip"].(map[string]any)["entity"])

	w = do(t, s.Handler(), http.MethodGet, "/api/tooltip?code=XXX", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["show"])
}

func TestExportWorkbook(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s.Handler(), http.MethodGet, "/api/export.xlsx?year=2005&region=europe", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")), "xlsx is a zip archive")
}

func TestCharts(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s.Handler(), http.MethodGet, "/charts/gdp.svg?year=2005", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "<svg")

	w = do(t, s.Handler(), http.MethodGet, "/charts/trend.png", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	w = do(t, s.Handler(), http.MethodGet, "/charts/gdp.gif", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s.Handler(), http.MethodGet, "/charts/nope.svg", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChatDisabledWithoutKey(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s.Handler(), http.MethodPost, "/api/chat", chatRequest{Question: "Which region is highest?"})

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, errors.CodeExternalService, decode(t, w)["code"])
}

func TestSavedViewsLifecycle(t *testing.T) {
	s := newTestServer(t)
	sel := heart.DefaultSelection()
	sel.Region = "europe"

	w := do(t, s.Handler(), http.MethodPost, "/api/views", saveViewRequest{Name: "Europe 2000", Selection: sel})
	require.Equal(t, http.StatusCreated, w.Code)
	id, _ := decode(t, w)["id"].(string)
	require.NotEmpty(t, id)

	w = do(t, s.Handler(), http.MethodGet, "/api/views", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["views"], 1)

	w = do(t, s.Handler(), http.MethodGet, "/api/views/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "europe", decode(t, w)["selection"].(map[string]any)["region"])

	w = do(t, s.Handler(), http.MethodDelete, "/api/views/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, s.Handler(), http.MethodGet, "/api/views/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, s.Handler(), http.MethodGet, "/api/views/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s.Handler(), http.MethodPost, "/api/views", saveViewRequest{Name: "  ", Selection: sel})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s.Handler(), http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "sample", body["source"])

	w = do(t, s.Handler(), http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "heartdash_http_requests_total"))
}

func TestStaticAssets(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s.Handler(), http.MethodGet, "/static/js/dashboard.js", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/inputs")
}
