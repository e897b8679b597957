package main

import (
	"log/slog"
	"net/http"

	"github.com/nikkilog/nikki/internal/app"
	"github.com/nikkilog/nikki/internal/config"
	"github.com/nikkilog/nikki/internal/logger"
	"github.com/nikkilog/nikki/internal/routes"
	"github.com/nikkilog/nikki/internal/ui"
)

func main() {
	cfg := config.Load()

	logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)

	app, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		panic(err)
	}
	defer func() {
		closeErr := app.Close()
		if closeErr != nil {
			slog.Error("failed to close app", "error", closeErr)
		}
	}()

	renderer, err := ui.NewRenderer()
	if err != nil {
		slog.Error("failed to load templates", "error", err)
		panic(err)
	}

	handler := routes.SetupRoutes(app, renderer)
	slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv, "url", "http://localhost:"+cfg.Port)

	err = http.ListenAndServe(":"+cfg.Port, handler)
	if err != nil {
		slog.Error("server failed", "error", err)
		panic(err)
	}
}
