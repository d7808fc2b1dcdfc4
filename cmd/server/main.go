package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/shashank-sundriyal/padamrajjewellers/internal/clock"
	"github.com/shashank-sundriyal/padamrajjewellers/internal/config"
	"github.com/shashank-sundriyal/padamrajjewellers/internal/handler"
	"github.com/shashank-sundriyal/padamrajjewellers/internal/metrics"
	"github.com/shashank-sundriyal/padamrajjewellers/internal/repository"
	"github.com/shashank-sundriyal/padamrajjewellers/internal/service"
	"github.com/shashank-sundriyal/padamrajjewellers/pkg/response"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize Redis
	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Initialize repositories
	customerRepo := repository.NewCustomerRepository(db)
	loanRepo := repository.NewLoanRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	// Initialize service and handlers
	ledgerService := service.NewLedgerService(customerRepo, loanRepo, settingsRepo, redisClient, cfg, clock.System())
	ledgerHandler := handler.NewLedgerHandler(ledgerService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	// Setup routes
	router := setupRoutes(ledgerHandler, healthHandler)

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(ledgerHandler *handler.LedgerHandler, healthHandler *handler.HealthHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware)
	router.Use(metrics.Middleware)

	// Health check and metrics
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/dashboard", ledgerHandler.Dashboard).Methods("GET")
	api.HandleFunc("/summary", ledgerHandler.PortfolioSummary).Methods("GET")

	api.HandleFunc("/customers", ledgerHandler.ListCustomers).Methods("GET")
	api.HandleFunc("/customers", ledgerHandler.AddCustomer).Methods("POST")
	api.HandleFunc("/customers/{customerId}", ledgerHandler.UpdateCustomer).Methods("PUT")
	api.HandleFunc("/customers/{customerId}", ledgerHandler.DeleteCustomer).Methods("DELETE")
	api.HandleFunc("/customers/{customerId}/summary", ledgerHandler.CustomerSummary).Methods("GET")

	api.HandleFunc("/loans", ledgerHandler.ListLoans).Methods("GET")
	api.HandleFunc("/loans", ledgerHandler.AddLoan).Methods("POST")
	api.HandleFunc("/loans/{loanId}", ledgerHandler.UpdateLoan).Methods("PUT")
	api.HandleFunc("/loans/{loanId}", ledgerHandler.DeleteLoan).Methods("DELETE")
	api.HandleFunc("/loans/{loanId}/claim", ledgerHandler.ClaimLoan).Methods("POST")
	api.HandleFunc("/loans/{loanId}/preview", ledgerHandler.PreviewLoan).Methods("POST")

	api.HandleFunc("/settings", ledgerHandler.GetSettings).Methods("GET")
	api.HandleFunc("/settings", ledgerHandler.SaveSettings).Methods("PUT")

	api.HandleFunc("/export", ledgerHandler.Export).Methods("GET")

	return router
}
