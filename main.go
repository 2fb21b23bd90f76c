// api/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fxportal/api/database"
	"fxportal/api/handlers"
	"fxportal/api/middleware"
	"fxportal/api/store"
)

func main() {
	// Load .env file at the very start
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading .env: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// --- Initialize PostgreSQL Database (content entities + counters) ---
	dbClient, err := database.NewPostgresDB()
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL database: %v", err)
	}
	defer dbClient.Close()

	// --- Initialize ClickHouse Database (event log) ---
	chClient, err := database.NewClickHouseDB()
	if err != nil {
		log.Fatalf("Failed to initialize ClickHouse database: %v", err)
	}
	defer chClient.Close()

	// --- Initialize Stores ---
	contentStore := store.NewContentStore(dbClient.DB)
	analyticsStore := store.NewAnalyticsStore(chClient)

	schemaCtx, cancelSchema := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelSchema()
	if err := analyticsStore.EnsureSchema(schemaCtx); err != nil {
		log.Fatalf("Failed to ensure analytics schema: %v", err)
	}

	// --- Initialize Handlers ---
	metrics := middleware.NewHTTPMetrics()
	analyticsHandlers := handlers.NewAnalyticsHandlers(analyticsStore, contentStore, metrics)

	r := gin.Default()

	r.Use(middleware.CORSMiddleware())
	r.Use(metrics.Handler())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		// Public tracking endpoint; a stale credential degrades to anonymous.
		api.POST("/track", middleware.OptionalAuth(), analyticsHandlers.TrackEvent)

		// Session recall is keyed by the opaque session ID the client holds.
		api.GET("/session/:sessionId", analyticsHandlers.SessionRecall)

		// Dashboard aggregates are admin-only.
		api.GET("/dashboard", middleware.AdminRequired(), analyticsHandlers.Dashboard)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		log.Printf("Analytics API server starting on http://localhost:%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Analytics API server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
