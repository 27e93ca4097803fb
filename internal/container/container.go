// Package container wires the dashboard's services together.
package container

import (
	"context"
	"fmt"
	"log"

	"heartdash/adapters/excel"
	"heartdash/adapters/llm"
	"heartdash/adapters/memory"
	"heartdash/adapters/postgres"
	"heartdash/internal/api"
	"heartdash/internal/chat"
	"heartdash/internal/config"
	"heartdash/internal/dashboard"
	"heartdash/internal/errors"
	"heartdash/internal/filter"
	"heartdash/internal/frame"
	"heartdash/internal/migration"
	"heartdash/internal/profiling"
	"heartdash/internal/reactive"
	"heartdash/internal/testkit"
	"heartdash/internal/trend"
	"heartdash/internal/watch"
	"heartdash/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB *sqlx.DB

	// Data and analysis
	Filter    *filter.Service
	Dashboard *dashboard.Dashboard
	Profiler  *profiling.DataProfiler
	Registry  *reactive.Registry
	Sessions  *reactive.Sessions

	// Repositories (data access layer)
	Views ports.ViewRepository

	// Realtime and AI
	SSEHub  *api.SSEHub
	Chat    *chat.Bot
	Watcher *watch.Watcher
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config:   cfg,
		Profiler: profiling.NewDataProfiler(),
		Sessions: reactive.NewSessions(dashboard.InitialState),
		Views:    memory.NewViewRepository(),
		SSEHub:   api.NewSSEHub(),
	}

	return c, nil
}

// TrendOptions maps the trend configuration
func (c *Container) TrendOptions() trend.Options {
	return trend.Options{
		Frac:           c.Config.Trend.Frac,
		Iterations:     c.Config.Trend.Iterations,
		Window:         c.Config.Trend.Window,
		ProjectionYear: c.Config.Trend.ProjectionYear,
	}
}

// LoadData reads the configured data file. A missing file falls back to
// generated sample data so the dashboard can still be explored.
func (c *Container) LoadData() (*frame.Frame, string, error) {
	f, err := excel.LoadFrame(c.Config.Data.File)
	if err == nil {
		return f, c.Config.Data.File, nil
	}
	if errors.GetCode(err) != errors.CodeNotFound {
		return nil, "", err
	}
	log.Printf("[Container] Data file %s not found, using generated sample data", c.Config.Data.File)
	return testkit.SampleFrame(), "sample", nil
}

// InitData builds the filter service, dashboard and reactive registry over f
func (c *Container) InitData(f *frame.Frame, source string) error {
	svc, err := filter.NewService(filter.NewDataset(f, source), filter.CacheOptions{
		TTL:     c.Config.Cache.TTL,
		MaxCost: c.Config.Cache.MaxCost,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create filter service")
	}
	c.Filter = svc
	c.Dashboard = dashboard.New(svc, c.TrendOptions())

	c.Registry = reactive.NewRegistry()
	if err := dashboard.Register(c.Registry, c.Dashboard); err != nil {
		return errors.Wrap(err, "failed to register dashboard callbacks")
	}

	c.initChat()
	log.Printf("[Container] Dataset %s loaded (%d rows)", source, f.Len())
	return nil
}

// initChat creates the chatbot, disabled when no API key is configured
func (c *Container) initChat() {
	opts := chat.DefaultOptions()
	if c.Config.AI.TopK > 0 {
		opts.TopK = c.Config.AI.TopK
	}
	if c.Config.AI.SystemContext != "" {
		opts.SystemContext = c.Config.AI.SystemContext
	}
	source := func() (*frame.Frame, uint64) {
		ds := c.Filter.Dataset()
		return ds.Frame, ds.Version
	}

	if !c.Config.AI.Enabled() {
		log.Printf("[Container] OPENAI_API_KEY not set, chatbot disabled")
		c.Chat = chat.NewBot(nil, nil, source, opts)
		return
	}
	client, err := llm.NewOpenAIClient(llm.ConfigFrom(c.Config.AI))
	if err != nil {
		log.Printf("[Container] Warning: chatbot disabled: %v", err)
		c.Chat = chat.NewBot(nil, nil, source, opts)
		return
	}
	c.Chat = chat.NewBot(client, client, source, opts)
}

// InitWithDatabase migrates the database and switches saved views to it
func (c *Container) InitWithDatabase(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}
	if err := migration.NewRunner().Run(ctx, db); err != nil {
		return err
	}

	c.DB = db
	c.Views = postgres.NewViewRepository(db)
	log.Printf("[Container] Saved views stored in PostgreSQL")
	return nil
}

// StartWatcher reloads the dataset whenever the data file changes
func (c *Container) StartWatcher(ctx context.Context) error {
	if c.Filter == nil {
		return fmt.Errorf("data not initialized")
	}
	w, err := watch.New(c.Config.Data.File, excel.LoadFrame, c.Filter, c.SSEHub)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		w.Close()
		return err
	}
	c.Watcher = w
	return nil
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.Watcher != nil {
		c.Watcher.Close()
	}
	if c.SSEHub != nil {
		c.SSEHub.Close()
	}
	if c.Filter != nil {
		c.Filter.Close()
	}
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
