package main

import (
	"net/http"
	"os"
	"time"

	"github.com/taskdesk-dev/taskdesk/internal/config"
	"github.com/taskdesk-dev/taskdesk/internal/logger"
	"github.com/taskdesk-dev/taskdesk/internal/router"
	"github.com/taskdesk-dev/taskdesk/internal/setup"
)

const (
	defaultConfigDir = "config"
	// Attachment submissions stream up to the per-file limit, so only the
	// header read gets a short timeout.
	readHeaderTimeout = 5 * time.Second
	writeTimeout      = 10 * time.Minute
)

func main() {
	configDir := os.Getenv("CONFIG_PATH")
	if configDir == "" {
		configDir = defaultConfigDir
	}
	cfg := config.MustLoad(configDir)

	deps, err := setup.SetupDependencies(cfg)
	if err != nil {
		logger.Log.Error("setup failed", "error", err)
		os.Exit(1)
	}
	defer deps.CancelFunc()

	server := &http.Server{
		Addr:              ":" + cfg.Public.Port,
		Handler:           router.SetupRouter(deps),
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
	}

	logger.Log.Info("starting taskdesk console", "port", cfg.Public.Port)
	if err := server.ListenAndServe(); err != nil {
		logger.Log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
