package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bookcatalog/internal/auth"
	"bookcatalog/internal/book"
	"bookcatalog/internal/config"
	"bookcatalog/internal/httpx"
	"bookcatalog/internal/ingest"
	"bookcatalog/internal/platform/logger"
	"bookcatalog/internal/scrape"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	slogger := logger.New(cfg.LogLevel)

	dbPool := mustOpenDB(cfg.DatabaseDSN)
	defer dbPool.Close()

	bookRepo := book.NewPostgresRepo(dbPool, cfg.StoreTimeout)
	userRepo := auth.NewPostgresRepo(dbPool, cfg.StoreTimeout)

	bookService := book.NewService(bookRepo)
	authService := auth.NewService(cfg.JWTSecret, cfg.TokenTTL, userRepo)

	scrapeClient := scrape.NewClient(cfg.SourceBaseURL, cfg.UserAgent, cfg.ScrapeRPS, cfg.ScrapeRetries)
	pipeline := ingest.NewPipeline(bookRepo, cfg.IngestWorkers, slogger)

	bookHandler := book.NewHTTPHandler(bookService)
	authHandler := auth.NewHTTPHandler(authService)
	ingestHandler := ingest.NewHTTPHandler(pipeline, func() ingest.Source {
		return scrape.NewSource(scrapeClient)
	})

	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := dbPool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	router.HandleFunc("POST /api/v1/auth/login", authHandler.Login)

	protected := httpx.AuthMiddleware(cfg.JWTSecret)
	router.Handle("GET /api/v1/books", protected(http.HandlerFunc(bookHandler.List)))
	router.Handle("GET /api/v1/books/search", protected(http.HandlerFunc(bookHandler.Search)))
	router.Handle("GET /api/v1/books/{id}", protected(http.HandlerFunc(bookHandler.GetByID)))
	router.Handle("GET /api/v1/categories", protected(http.HandlerFunc(bookHandler.Categories)))
	router.Handle("POST /api/v1/ingestion/trigger", protected(http.HandlerFunc(ingestHandler.Trigger)))

	rateLimit := httpx.NewRateLimitMiddleware(20, 40)
	handler := httpx.RequestIDMiddleware(
		httpx.RecoveryMiddleware(slogger)(
			httpx.AccessLogMiddleware(slogger)(
				rateLimit.Middleware(
					httpx.RequestSizeLimitMiddleware(1<<20)(router)))))

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slogger.Info("starting server", "addr", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	slogger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slogger.Error("shutdown", "error", err)
	}
}

func mustOpenDB(dsn string) *pgxpool.Pool {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("cannot create db pool: %v", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		log.Fatalf("cannot ping database (%s): %v", redactDSN(dsn), err)
	}
	return pool
}

func redactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
