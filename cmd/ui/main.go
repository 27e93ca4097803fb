package main

import (
	"log"

	"heartdash/internal"
	"heartdash/internal/config"
	"heartdash/internal/container"
	"heartdash/ui"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	internal.DefaultLogger.Configure(cfg.LogLevel, cfg.Debug)
	c, err := container.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	f, source, err := c.LoadData()
	if err != nil {
		log.Fatalf("Failed to load data: %v", err)
	}
	if err := c.InitData(f, source); err != nil {
		log.Fatalf("Failed to initialize dashboard: %v", err)
	}

	app, err := ui.NewApp(c)
	if err != nil {
		log.Fatal("Failed to create report app:", err)
	}
	log.Fatal(app.Start(":" + cfg.Server.ReportPort))
}
