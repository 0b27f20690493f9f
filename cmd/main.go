package main

import (
	"context"
	"log"

	"github.com/Nethaiah/commitlens/config"
	"github.com/Nethaiah/commitlens/db"
	"github.com/Nethaiah/commitlens/gemini"
	"github.com/Nethaiah/commitlens/github"
	"github.com/Nethaiah/commitlens/insight"
	"github.com/Nethaiah/commitlens/logger"
	"github.com/Nethaiah/commitlens/server"
	"github.com/Nethaiah/commitlens/service"
)

func main() {
	cfg := config.NewConfig()
	if err := cfg.Load(); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	database, err := db.New()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	client := github.NewClient(cfg.GitHubToken)

	// Without a Gemini key the gateway takes the deterministic
	// fallback path.
	var generator insight.TextGenerator
	if cfg.GeminiAPIKey != "" {
		generator = gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	}
	gateway := insight.NewGateway(database, generator)

	svc := service.New(client)
	sessions := server.NewViewerSessionProvider(client)
	handler := server.NewHandler(sessions, gateway, svc, database)

	srv := server.New(handler.Router(), cfg.HTTPPort)
	srv.OnShutdown("database", func(_ context.Context) error {
		return database.Close()
	})

	if err := srv.Run(); err != nil {
		log.Fatalf("Service error: %v", err)
	}
}
