package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/shashank-sundriyal/padamrajjewellers/internal/clock"
	"github.com/shashank-sundriyal/padamrajjewellers/internal/config"
	"github.com/shashank-sundriyal/padamrajjewellers/internal/repository"
	"github.com/shashank-sundriyal/padamrajjewellers/internal/service"
)

func main() {
	log.Println("Starting dashboard snapshot scheduler...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	ledgerService := service.NewLedgerService(
		repository.NewCustomerRepository(db),
		repository.NewLoanRepository(db),
		repository.NewSettingsRepository(db),
		redisClient,
		cfg,
		clock.System(),
	)

	// Initialize cron scheduler
	c := cron.New(cron.WithSeconds())

	// Nightly job: recompute the dashboard snapshot so the first page
	// view of the day is served from a warm cache
	_, err = c.AddFunc(cfg.Scheduler.SnapshotSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		log.Println("Refreshing dashboard snapshot...")
		if err := ledgerService.RefreshDashboardSnapshot(ctx); err != nil {
			log.Printf("Error refreshing dashboard snapshot: %v", err)
			return
		}
		log.Println("Dashboard snapshot refreshed")
	})
	if err != nil {
		log.Fatalf("Error scheduling dashboard snapshot job: %v", err)
	}

	// Start the scheduler
	c.Start()
	log.Println("Scheduler started successfully")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	c.Stop()
	log.Println("Scheduler stopped")
}
