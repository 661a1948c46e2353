package main

import (
	"log"
	"log/slog"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/amit-3245/campus-complaint-portal/internal/api/middleware"
	"github.com/amit-3245/campus-complaint-portal/internal/config"
	database "github.com/amit-3245/campus-complaint-portal/internal/db"
	"github.com/amit-3245/campus-complaint-portal/internal/service"
	"github.com/amit-3245/campus-complaint-portal/internal/storage"

	// Use an alias to prevent naming collisions with the 'server' variable
	apiserver "github.com/amit-3245/campus-complaint-portal/internal/api/server"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting Complaint Desk API Server...")

	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded .env")
	}

	// 1. Setup Configuration
	cfg := config.Load()
	if cfg.Server.LogLevel == "debug" {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	// 2. Initialize Infrastructure
	db := database.New(cfg)
	defer db.Close()

	// 3. Run Database Migrations and seed accounts
	db.AutoMigrate()
	if err := database.Seed(db.DB, cfg); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	// 4. Storage
	store := storage.New(cfg)
	log.Printf("📦 Uploads stored via %s provider", cfg.Storage.Provider)

	// 5. Setup Metrics
	service.RegisterMetrics(prometheus.DefaultRegisterer)
	middleware.RegisterMetrics(prometheus.DefaultRegisterer)
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/_metrics", promhttp.Handler())
		log.Printf("📊 Metrics exposed at http://localhost%s/_metrics", cfg.Server.MetricsPort)
		if err := http.ListenAndServe(cfg.Server.MetricsPort, mux); err != nil {
			log.Printf("⚠️ Metrics server error: %v", err)
		}
	}()

	// 6. Start Server
	srv := apiserver.New(cfg, db, store)

	log.Printf("🚀 API Server starting on %s", cfg.Server.Addr)
	if err := srv.Start(cfg.Server.Addr); err != nil {
		log.Fatalf("❌ Server failed to start: %v", err)
	}
}
