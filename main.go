package main

import (
	"context"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os/signal"
	"syscall"
	"time"

	"heartdash/internal"
	"heartdash/internal/config"
	"heartdash/internal/container"
	"heartdash/internal/migration"
	"heartdash/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const (
	sessionIdle  = time.Hour
	pruneEvery   = 10 * time.Minute
	shutdownWait = 10 * time.Second
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	internal.DefaultLogger.Configure(appConfig.LogLevel, appConfig.Debug)
	gin.SetMode(appConfig.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	f, source, err := appContainer.LoadData()
	if err != nil {
		log.Fatalf("Failed to load data: %v", err)
	}
	if err := appContainer.InitData(f, source); err != nil {
		log.Fatalf("Failed to initialize dashboard: %v", err)
	}

	// Saved views fall back to memory without a database
	if appConfig.Database.Enabled() {
		db, err := migration.Connect(ctx, appConfig.Database.URL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		if err := appContainer.InitWithDatabase(ctx, db); err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
	}

	if appConfig.Data.Watch && source != "sample" {
		if err := appContainer.StartWatcher(ctx); err != nil {
			log.Printf("Warning: data file watcher not started: %v", err)
		}
	}

	go pruneSessions(ctx, appContainer)

	// Start pprof server for performance profiling
	if appConfig.Profiling.Enabled {
		go func() {
			log.Printf("Performance profiling server starting on :%s", appConfig.Profiling.Port)
			if err := http.ListenAndServe(":"+appConfig.Profiling.Port, nil); err != nil {
				log.Printf("pprof server failed: %v", err)
			}
		}()
	}

	server, err := ui.NewServer(appContainer)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}
	httpServer := &http.Server{
		Addr:              ":" + appConfig.Server.Port,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting heartdash on port %s", appConfig.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWait)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
}

// pruneSessions drops idle dashboard sessions until ctx is done
func pruneSessions(ctx context.Context, c *container.Container) {
	ticker := time.NewTicker(pruneEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.Sessions.Prune(sessionIdle); n > 0 {
				log.Printf("[Sessions] Pruned %d idle sessions", n)
			}
		}
	}
}
