// ==============================================================================
// SIMULATION SERVICE MAIN - cmd/simulator/main.go
// ==============================================================================
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"heritax/internal/bareme"
	"heritax/internal/handler"
	"heritax/internal/middleware"
	"heritax/internal/observability"
	"heritax/internal/simulation"
	"heritax/internal/summary"
	"heritax/pkg/config"
	"heritax/pkg/logger"
	"heritax/pkg/mailer"
	"heritax/pkg/validator"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New("simulation-service", cfg.Log.Level)

	if err := cfg.ValidateCore(); err != nil {
		log.Fatal("Invalid configuration", map[string]interface{}{"error": err.Error()})
	}

	log.Info("Starting Simulation Service", map[string]interface{}{
		"port": cfg.Server.Port,
	})

	// Redis connection
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.URL,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to connect to Redis", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log.Info("Redis connected", nil)

	// Fiscal schedules are compile-time data; a registry that fails
	// validation is a build defect, not a runtime condition.
	registry, err := bareme.NewRegistry()
	if err != nil {
		log.Fatal("Invalid fiscal schedule registry", map[string]interface{}{
			"error": err.Error(),
		})
	}

	engine := simulation.NewEngine(registry)
	metrics := observability.NewMetrics()

	mail := mailer.New(mailer.Config{
		Host:        cfg.Email.SMTPHost,
		Port:        cfg.Email.SMTPPort,
		Username:    cfg.Email.SMTPUsername,
		Password:    cfg.Email.SMTPPassword,
		From:        cfg.Email.SMTPFrom,
		UseTLS:      cfg.Email.SMTPUseTLS,
		DialTimeout: cfg.Email.DialTimeout,
	})

	summaryService := summary.NewService(engine, mail, metrics, log, summary.Config{
		DeliveryTimeout: cfg.Summary.DeliveryTimeout,
		MaxRetries:      cfg.Summary.MaxRetries,
		RetryBackoff:    cfg.Summary.RetryBackoff,
		MaxInFlight:     cfg.Summary.MaxInFlight,
	})

	// Initialize handlers
	val := validator.New()
	simulationHandler := handler.NewSimulationHandler(engine, registry, val, metrics, log)
	baremeHandler := handler.NewBaremeHandler(registry, log)
	summaryHandler := handler.NewSummaryHandler(summaryService, val, metrics, log)
	systemHandler := handler.NewSystemHandler(redisClient, metrics, log)

	// Setup router
	r := mux.NewRouter()

	// Middleware; CorrelationID runs before Recovery so panic reports carry
	// the request ID.
	r.Use(middleware.CORS)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CorrelationID)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.NewLoggingMiddleware(log).Log)
	r.Use(middleware.BodyLimit(1 << 20)) // 1MB global cap
	r.Use(middleware.NewRateLimiter(redisClient, "global", cfg.RateLimit.GlobalPerWindow, cfg.RateLimit.Window).Limit)

	// Probes and metrics
	r.HandleFunc("/health", systemHandler.Health).Methods("GET")
	r.HandleFunc("/ready", systemHandler.Ready).Methods("GET")
	r.Handle("/metrics", metrics.Handler()).Methods("GET")

	// Public routes
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.NewRateLimiter(redisClient, "api", cfg.RateLimit.APIPerWindow, cfg.RateLimit.Window).Limit)
	api.HandleFunc("/simulations", simulationHandler.Simulate).Methods("POST")
	api.HandleFunc("/baremes", baremeHandler.List).Methods("GET")
	api.HandleFunc("/baremes/{category}", baremeHandler.Get).Methods("GET")
	api.HandleFunc("/stats", systemHandler.Stats).Methods("GET")

	// WebSocket for live recompute
	api.HandleFunc("/simulations/live", simulationHandler.Live)

	// Email summaries are guarded against duplicate submission
	email := api.PathPrefix("/simulations/email").Subrouter()
	email.Use(middleware.NewIdempotencyMiddleware(redisClient, cfg.Summary.IdempotencyTTL).Require)
	email.HandleFunc("", summaryHandler.EmailSummary).Methods("POST")

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		log.Info("Simulation service started", map[string]interface{}{
			"address": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down simulation service...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Simulation service forced to shutdown", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log.Info("Simulation service stopped gracefully", nil)
}
