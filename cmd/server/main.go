package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/tendant/simple-discover/internal/logging"
	"github.com/tendant/simple-discover/pkg/discover"
	"github.com/tendant/simple-discover/pkg/discover/api"
	"github.com/tendant/simple-discover/pkg/discover/config"
)

func main() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()
	logging.Setup()

	serverConfig, err := config.Load(config.WithEnv())
	if err != nil {
		logging.Fatal("Failed to load server configuration", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	services, err := serverConfig.BuildServices(ctx)
	if err != nil {
		logging.Fatal("Failed to build services", "error", err)
	}
	defer services.Close()

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", serverConfig.Port),
		Handler:           newRouter(serverConfig, services.Discover),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if serverConfig.ReconcileInterval > 0 {
		go runReconcileLoop(ctx, services.Discover, serverConfig.ReconcileInterval)
	}

	go func() {
		slog.Info("Discover server starting",
			"port", serverConfig.Port,
			"env", serverConfig.Environment,
			"database", serverConfig.DatabaseType,
			"media_urls", serverConfig.Media.Type,
			"auth_required", serverConfig.AuthRequired)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("Server error", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exiting")
}

// newRouter wraps the discover API with the standard chi middleware stack
func newRouter(serverConfig *config.ServerConfig, svc discover.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	auth := api.NewAuth(serverConfig.JWTSecret, serverConfig.AuthRequired)
	r.Mount("/", api.NewRouter(svc, auth))
	return r
}

// runReconcileLoop rebuilds the index every interval until ctx is cancelled.
// A run that fails for some kinds is logged and retried on the next tick.
func runReconcileLoop(ctx context.Context, svc discover.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result, err := svc.ReconcileAll(ctx)
			if err != nil {
				slog.Error("Periodic reconciliation failed", "error", err)
				continue
			}
			slog.Info("Periodic reconciliation finished",
				"synced", result.TotalSynced(),
				"duration", result.FinishedAt.Sub(result.StartedAt))
		}
	}
}
