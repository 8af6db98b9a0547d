package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"teamwrite/internal/api"
	"teamwrite/internal/config"
	"teamwrite/internal/metrics"
	"teamwrite/internal/repositories"
	mongorepo "teamwrite/internal/repositories/mongo"
	"teamwrite/internal/routers"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := config.Load()

	mongoClient, err := mongorepo.NewClient(context.Background())
	if err != nil {
		logger.Fatal("mongo connect failed", zap.Error(err))
	}
	userRepo, err := mongorepo.NewUserRepo(mongoClient)
	if err != nil {
		logger.Fatal("user repo init failed", zap.Error(err))
	}
	docRepo, err := mongorepo.NewDocumentRepo(mongoClient)
	if err != nil {
		logger.Fatal("document repo init failed", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	tokenStore := repositories.NewTokenStore(rdb)

	h := api.NewHandlers(logger, userRepo, docRepo, tokenStore)

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	// No request timeout middleware here: it would cut long-lived WebSocket
	// sessions off mid-stream.
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		metrics.Middleware,
	)

	r.Mount("/", routers.New(logger, h))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("ok")) })

	addr := ":" + cfg.Port
	server := &http.Server{
		Addr:        addr,
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("teamwrite listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("shutting down")

	// Drain live sessions first so every peer gets a close frame, then stop
	// accepting HTTP and disconnect the stores.
	h.Hub().Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	_ = mongoClient.Close(ctx)
	_ = rdb.Close()

	logger.Info("server exited")
}
