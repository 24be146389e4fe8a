package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/joho/godotenv"

	"facility-buddy-backend/config"
	"facility-buddy-backend/internal/aggregate"
	"facility-buddy-backend/internal/api"
	"facility-buddy-backend/internal/db"
	"facility-buddy-backend/internal/directory"
	"facility-buddy-backend/internal/geocode"
	"facility-buddy-backend/internal/metrics"
	"facility-buddy-backend/internal/store"
	"facility-buddy-backend/internal/upstream"
	"facility-buddy-backend/internal/watch"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "facility-buddy ", log.LstdFlags)

	// Local development convenience; missing .env is fine.
	if err := godotenv.Load(); err == nil {
		logger.Println(".env loaded")
	}

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	if cfg.Upstream.BaseURL == "" {
		logger.Fatalf("upstream.base_url must be configured")
	}

	var webpushOptions *webpush.Options
	if cfg.Push.Enabled {
		if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
			logger.Fatalf("VAPID keys must be configured when push is enabled.")
		}
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
	}

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	m := metrics.New(nil)
	client := upstream.NewClient(&cfg.Upstream, m)
	resolver := geocode.NewResolver(&cfg.Geocode, m)

	dirSvc := directory.NewService(&cfg.Directory, appStore, client, resolver, m)
	aggregator := aggregate.New(client, m)

	// Warm the directory in the background so the first request does not pay
	// for a full refresh cycle.
	if cfg.Directory.RefreshOnStart {
		go func() {
			if _, err := dirSvc.EnsureFresh(ctx, false); err != nil {
				logger.Printf("initial directory refresh failed: %v", err)
			}
		}()
	}

	// Availability watcher + push workers
	if cfg.Watcher.Enabled && webpushOptions != nil {
		pool := watch.NewWorkerPool(cfg.WorkerPool.Size, appStore, webpushOptions)
		watcher := watch.NewWatcher(&cfg.Watcher, appStore, client, pool)
		go watcher.Run(ctx)
	}

	// Initialize router
	router := api.NewRouter(cfg, appStore, dirSvc, aggregator, client, webpushOptions)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
