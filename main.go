package main

import (
	"context"
	"embed"
	"log/slog"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"dataviz/internal/config"
	"dataviz/internal/container"
	"dataviz/internal/logging"
	"dataviz/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

//go:embed ui/templates/*
var embeddedFiles embed.FS

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(appConfig.Log.Level, appConfig.Log.Format)
	gin.SetMode(appConfig.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, appConfig); err != nil {
		slog.Error("dataviz exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, appConfig *config.Config) error {
	appContainer, err := container.New(appConfig)
	if err != nil {
		return err
	}
	if err := appContainer.Init(ctx); err != nil {
		return err
	}
	defer appContainer.Shutdown(context.Background())

	server, err := ui.NewServer(ui.Options{
		Workbench:            appContainer.Workbench,
		Sessions:             appContainer.Sessions,
		DB:                   appContainer.DB,
		CookieName:           appConfig.Session.CookieName,
		SessionTTL:           appConfig.Session.TTL,
		MaxUploadBytes:       appConfig.Server.MaxUploadBytes,
		MaxConcurrentUploads: appConfig.Server.MaxConcurrentUploads,
	}, embeddedFiles)
	if err != nil {
		return err
	}

	if appConfig.Profiling.Enabled {
		go func() {
			slog.Info("profiling server starting", "port", appConfig.Profiling.Port)
			if err := http.ListenAndServe(":"+appConfig.Profiling.Port, nil); err != nil {
				slog.Error("pprof server failed", "error", err)
			}
		}()
	}

	return server.Start(ctx, ":"+appConfig.Server.Port)
}
