package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"isl-backend/internal/catalog"
	"isl-backend/internal/config"
	"isl-backend/internal/database"
	"isl-backend/internal/handlers"
	"isl-backend/internal/middleware"
	"isl-backend/internal/repository"
	"isl-backend/internal/router"
	"isl-backend/internal/services"
	"isl-backend/internal/websocket"
	"isl-backend/internal/worker"
	"isl-backend/migrations"
)

func main() {
	log.Println("🚀 Starting ISL Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Load Learning Catalog ────
	cat, err := catalog.Default()
	if err != nil {
		log.Fatalf("✗ Catalog failed to load: %v", err)
	}
	log.Printf("✓ Catalog loaded (%d modules, %d signs)", len(cat.Modules()), len(cat.AllItems()))

	// ──── Step 3: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 4: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 5: Run Database Migrations ────
	if err := database.RunMigrations(pool, migrations.FS); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	userRepo := repository.NewUserRepo(pool)
	progressRepo := repository.NewProgressRepo(pool)
	attemptRepo := repository.NewAttemptRepo(pool)
	sessionStore := repository.NewQuizSessionStore(redisClients.Data, cfg.QuizSessionTTL)

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	eventBus := services.NewEventBus(redisClients.Data)
	authService := services.NewAuthService(userRepo, redisClients.Data, jwtAuth)
	quizService := services.NewQuizService(cat, sessionStore, progressRepo, eventBus, cfg.QuizAdvanceDelay)
	progressService := services.NewProgressService(cat, progressRepo, attemptRepo, userRepo, eventBus)

	// ──── Step 6: Start Result Worker Pool ────
	workerPool := worker.NewPool(redisClients.Data, attemptRepo, eventBus, cfg.WorkerCount)
	workerPool.Start()
	log.Printf("✓ Worker pool started (%d goroutines)", cfg.WorkerCount)

	// ──── Step 7: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, jwtAuth)
	log.Println("✓ WebSocket hub started")

	// ──── Step 8: Start HTTP Server ────
	r, authLimiter := router.New(jwtAuth, router.Handlers{
		Auth:     handlers.NewAuthHandler(authService),
		Catalog:  handlers.NewCatalogHandler(cat),
		Quiz:     handlers.NewQuizHandler(quizService),
		Progress: handlers.NewProgressHandler(progressService),
		Status: handlers.NewStatusHandler(map[string]handlers.Pinger{
			"postgres": pool,
			"redis":    redisClients,
		}, wsHub.ConnectionCount),
		WS: wsHub.HandleWebSocket,
	}, cfg.FrontendURL, cfg.AuthRateLimit)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)

		quizService.Stop()
		authLimiter.Stop()
		wsHub.Close()
		workerPool.Stop()
	}()

	log.Printf("✓ ISL Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
