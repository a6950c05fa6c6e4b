// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"construction-site-api-server/config"
	"construction-site-api-server/internal/api/handlers"
	"construction-site-api-server/internal/api/routes"
	"construction-site-api-server/internal/auth"
	"construction-site-api-server/internal/database"
	"construction-site-api-server/internal/inventory"
	"construction-site-api-server/internal/logger"
	"construction-site-api-server/internal/s3"
	"construction-site-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// A missing .env is fine outside development.
	_ = godotenv.Load()

	// 1. Load configuration
	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}
	logg := logger.New(cfg.App.Env)
	if cfg.App.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Database
	client, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		log.Fatalf("Could not connect to MongoDB: %v", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logg.Error("mongo disconnect failed", "error", err)
		}
	}()
	db := client.Database(cfg.Mongo.DBName)
	logg.Info("mongo connected", "db", cfg.Mongo.DBName)

	if err := database.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("Could not create indexes: %v", err)
	}
	if err := database.SeedAdmin(ctx, db, cfg.Seed, logg); err != nil {
		log.Fatalf("Could not seed admin: %v", err)
	}

	// 3. Auth
	jwtManager, err := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.TTL())
	if err != nil {
		log.Fatalf("Invalid JWT config: %v", err)
	}

	// 4. Uploads are optional
	var uploader handlers.FileUploader
	if cfg.S3.Enabled() {
		s3Uploader, err := s3.NewUploader(ctx, cfg.S3)
		if err != nil {
			log.Fatalf("Could not create S3 uploader: %v", err)
		}
		uploader = s3Uploader
	} else {
		logg.Warn("s3 not configured, file uploads disabled")
	}

	// 5. Metrics
	var registry *prometheus.Registry
	if cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	router := routes.SetupRouter(routes.Deps{
		Config:   cfg,
		DB:       db,
		Store:    inventory.NewMongoStore(db, logg),
		JWT:      jwtManager,
		Uploader: uploader,
		Hub:      socket.NewHub(logg),
		Log:      logg,
		Metrics:  registry,
	})

	// 6. Start server
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error("http server error", "error", err)
			stop()
		}
	}()
	logg.Info("API server started", "port", cfg.Server.Port)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("graceful shutdown failed", "error", err)
	}
	logg.Info("graceful shutdown complete")
}
