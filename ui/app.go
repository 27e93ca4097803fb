package ui

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"heartdash/domain/heart"
	"heartdash/internal/container"
	"heartdash/internal/dashboard"
	"heartdash/internal/errors"
	"heartdash/internal/figure"
	"heartdash/internal/profiling"
	"heartdash/internal/render"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// App is the read-only report: one page of server-rendered charts for a
// selection, with no JavaScript
type App struct {
	router    *chi.Mux
	c         *container.Container
	templates *template.Template
}

// NewApp creates the report application over an initialized container
func NewApp(c *container.Container) (*App, error) {
	if c == nil || c.Dashboard == nil {
		return nil, fmt.Errorf("container data not initialized")
	}
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	app := &App{
		router:    chi.NewRouter(),
		c:         c,
		templates: templates,
	}
	app.setupMiddleware()
	app.setupRoutes()
	return app, nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))

	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		logger.Error("static filesystem unavailable: %v", err)
		return
	}
	a.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/", a.handleReport)
	a.router.Get("/charts/{file}", a.handleChart)
	a.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

// Handler exposes the router, mainly for tests
func (a *App) Handler() http.Handler {
	return a.router
}

// Start starts the report server
func (a *App) Start(addr string) error {
	logger.Info("Starting heartdash report on http://%s", addr)
	return http.ListenAndServe(addr, a.router)
}

// reportChart is one inline chart, or the reason it could not be drawn
type reportChart struct {
	Name  string
	SVG   template.HTML
	Error string
}

// reportData feeds report.html
type reportData struct {
	Title     string
	Selection heart.Selection
	Query     string
	Options   options
	Overview  profiling.Overview
	Charts    []reportChart
	Top       []map[string]any
	Column    string
}

func (a *App) handleReport(w http.ResponseWriter, r *http.Request) {
	sel, err := heart.ParseSelection(r.URL.Query())
	if err != nil {
		writeHTTPError(w, err)
		return
	}

	data := reportData{
		Title:     figure.MapTitle(sel.Year, sel.Metric),
		Selection: sel,
		Query:     sel.Values().Encode(),
		Options:   selectorOptions(a.c),
		Overview:  a.c.Profiler.ProfileFrame(a.c.Filter.Dataset().Frame),
	}

	for _, name := range dashboard.ChartNames {
		var buf bytes.Buffer
		chart := reportChart{Name: name}
		if err := a.c.Dashboard.RenderChart(&buf, name, sel, render.DefaultOptions()); err != nil {
			chart.Error = err.Error()
		} else {
			chart.SVG = template.HTML(buf.String())
		}
		data.Charts = append(data.Charts, chart)
	}

	if col, ok := sel.Column(); ok {
		if df, err := a.c.Filter.GeoEco(sel); err == nil {
			topN := sel.TopN
			if topN <= 0 {
				topN = heart.DefaultTopN
			}
			data.Column = col
			data.Top = df.NLargest(topN, col).Select(heart.ColEntity, heart.ColRegion, heart.ColIncome, col).Records()
		}
	}

	var buf bytes.Buffer
	if err := a.templates.ExecuteTemplate(&buf, "report.html", data); err != nil {
		logger.Error("template error for report.html: %v", err)
		http.Error(w, "Template rendering failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (a *App) handleChart(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	ext := path.Ext(file)
	format, err := render.ParseFormat(ext)
	if err != nil {
		writeHTTPError(w, err)
		return
	}
	sel, err := heart.ParseSelection(r.URL.Query())
	if err != nil {
		writeHTTPError(w, err)
		return
	}

	opts := render.DefaultOptions()
	opts.Format = format
	var buf bytes.Buffer
	if err := a.c.Dashboard.RenderChart(&buf, strings.TrimSuffix(file, ext), sel, opts); err != nil {
		writeHTTPError(w, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	_, _ = buf.WriteTo(w)
}

// writeHTTPError maps an error code to its status for plain net/http handlers
func writeHTTPError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), errors.HTTPStatus(err))
}
