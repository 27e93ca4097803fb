package ui

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"heartdash/domain/heart"
	"heartdash/internal"
	"heartdash/internal/container"
	"heartdash/internal/dashboard"
	"heartdash/internal/telemetry"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
)

//go:embed templates static content
var embeddedFiles embed.FS

var logger = internal.DefaultLogger.Component("Server")

// Server is the dashboard's HTTP surface
type Server struct {
	router    *gin.Engine
	c         *container.Container
	templates *template.Template
	intro     template.HTML
}

// funcMap is shared by the dashboard and the report templates
var funcMap = template.FuncMap{
	"comma": func(n int) string { return humanize.Comma(int64(n)) },
	"pct":   func(v float64) string { return fmt.Sprintf("%.0f%%", v*100) },
	"num": func(v float64) string {
		return humanize.FormatFloat("#,###.##", v)
	},
	"json":  toJSON,
	"upper": strings.ToUpper,
	"label": func(tab string) string { return dashboard.TabLabels[tab] },
}

// parseTemplates loads every embedded template, naming each by its path
// relative to templates/
func parseTemplates() (*template.Template, error) {
	templatesFS, err := fs.Sub(embeddedFiles, "templates")
	if err != nil {
		return nil, fmt.Errorf("failed to open templates: %w", err)
	}
	root, err := fs.Glob(templatesFS, "*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to glob root templates: %w", err)
	}
	nested, err := fs.Glob(templatesFS, "*/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to glob nested templates: %w", err)
	}

	t := template.New("").Funcs(funcMap)
	for _, file := range append(root, nested...) {
		content, err := fs.ReadFile(templatesFS, file)
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", file, err)
		}
		if _, err := t.New(file).Parse(string(content)); err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", file, err)
		}
	}
	logger.Debug("parsed %d templates", len(root)+len(nested))
	return t, nil
}

// NewServer creates the dashboard server over an initialized container
func NewServer(c *container.Container) (*Server, error) {
	if c == nil || c.Dashboard == nil {
		return nil, fmt.Errorf("container data not initialized")
	}
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	intro, err := renderIntro()
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:    gin.New(),
		c:         c,
		templates: templates,
		intro:     intro,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Logger(), gin.Recovery(), telemetry.GinMiddleware())

	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		logger.Error("static filesystem unavailable: %v", err)
		return
	}
	s.router.StaticFS("/static", http.FS(staticFS))
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/tabs/:tab", s.handleTab)

	api := s.router.Group("/api")
	{
		api.GET("/options", s.handleOptions)
		api.POST("/inputs", s.handleInputs)

		api.GET("/map", s.handleMap)
		api.GET("/tooltip", s.handleTooltip)
		api.GET("/geo-eco", s.handleGeoEco)
		api.GET("/healthcare", s.handleHealthcare)
		api.GET("/trends", s.handleTrends)
		api.GET("/insights", s.handleInsightList)
		api.GET("/insights/:name", s.handleInsight)
		api.GET("/profile", s.handleProfile)
		api.GET("/export.xlsx", s.handleExport)

		api.GET("/events", s.c.SSEHub.HandleSSE)
		api.POST("/chat", s.handleChat)

		api.GET("/views", s.handleListViews)
		api.POST("/views", s.handleSaveView)
		api.GET("/views/:id", s.handleGetView)
		api.DELETE("/views/:id", s.handleDeleteView)
	}

	s.router.GET("/charts/:file", s.handleChart)

	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(telemetry.Handler()))
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	logger.Info("Starting heartdash on http://%s", addr)
	return s.router.Run(addr)
}

// options are the selector entries the layout and /api/options share
type options struct {
	Regions   []heart.Option `json:"regions"`
	Incomes   []heart.Option `json:"incomes"`
	Genders   []heart.Option `json:"genders"`
	Metrics   []heart.Option `json:"metrics"`
	Countries []heart.Option `json:"countries"`
	YearMin   int            `json:"year_min"`
	YearMax   int            `json:"year_max"`
	TopNMin   int            `json:"top_n_min"`
	TopNMax   int            `json:"top_n_max"`
	TopNStep  int            `json:"top_n_step"`
}

func selectorOptions(c *container.Container) options {
	countries := c.Filter.Dataset().Countries()
	entries := make([]heart.Option, len(countries))
	for i, name := range countries {
		entries[i] = heart.Option{Label: name, Value: name}
	}
	return options{
		Regions:   heart.RegionOptions,
		Incomes:   heart.IncomeOptions,
		Genders:   heart.GenderOptions,
		Metrics:   heart.MetricOptions(),
		Countries: entries,
		YearMin:   heart.MinYear,
		YearMax:   heart.MaxYear,
		TopNMin:   heart.MinTopN,
		TopNMax:   heart.MaxTopN,
		TopNStep:  heart.TopNStep,
	}
}
