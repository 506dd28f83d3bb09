// Command main is the entry point for the CrewZ backend server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crewz/internal/bootstrap"
	"crewz/internal/config"
	"crewz/internal/jobs"
	"crewz/internal/middleware"
	"crewz/internal/models"
	"crewz/internal/observability"
	"crewz/internal/repository"
	"crewz/internal/server"
)

// @title CrewZ Nation API
// @version 1.0
// @description Automotive social network backend: garages, feed, stories, messaging and meets.

// @host localhost:8001
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

const version = "1.0.0"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	models.ExposeDetails = !cfg.IsProduction()

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "crewz-api",
		ServiceVersion: version,
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampler,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	ctx := context.Background()
	db, redisClient, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{SeedCatalog: cfg.SeedCatalog})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	sweeper := jobs.NewStorySweeper(repository.NewPostRepository(db), 0)
	if err := sweeper.Start(cfg.SweepSchedule); err != nil {
		log.Fatalf("Failed to schedule story sweeper: %v", err)
	}

	srv := server.NewServer(cfg, db, redisClient)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		middleware.Logger.Info("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
		sweeper.Stop(ctx)
		if redisClient != nil {
			_ = redisClient.Close()
		}
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		if err := shutdownTracing(ctx); err != nil {
			log.Printf("Tracing shutdown error: %v", err)
		}
	}()

	log.Printf("Server starting on port %s...", cfg.Port)
	if err := srv.Start(); err != nil {
		log.Fatal(err)
	}
}
