package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/openclob/book-indexer/internal/book"
	"github.com/openclob/book-indexer/internal/chain"
	"github.com/openclob/book-indexer/internal/engine"
	"github.com/openclob/book-indexer/internal/feed"
	"github.com/openclob/book-indexer/internal/metrics"
	"github.com/openclob/book-indexer/internal/pool"
	"github.com/openclob/book-indexer/internal/pricing"
	"github.com/openclob/book-indexer/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Initialize store ---
	var st store.Store
	var cleanup []func()

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		dbpool, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			slog.Error("database connection failed", "err", err)
			os.Exit(1)
		}
		cleanup = append(cleanup, dbpool.Close)
		pg := store.NewPostgresStore(dbpool)
		if err := pg.EnsureSchema(ctx); err != nil {
			slog.Error("schema setup failed", "err", err)
			os.Exit(1)
		}
		st = pg
		slog.Info("connected to PostgreSQL")

		// Wrap with Redis read-through cache if configured.
		if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
			opt, err := redis.ParseURL(redisURL)
			if err != nil {
				slog.Error("invalid REDIS_URL", "err", err)
				os.Exit(1)
			}
			rdb := redis.NewClient(opt)
			cleanup = append(cleanup, func() { rdb.Close() })
			st = store.NewCachedStore(st, rdb, 30*time.Second)
			slog.Info("Redis cache enabled")
		}
	} else {
		slog.Warn("DATABASE_URL not set, using in-memory store (data will not persist)")
		st = store.NewMemoryStore()
	}

	defer func() {
		for _, fn := range cleanup {
			fn()
		}
	}()

	// --- Deployment roles ---
	chainID := int64(0)
	if v := os.Getenv("CHAIN_ID"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			slog.Error("invalid CHAIN_ID", "value", v, "err", err)
			os.Exit(1)
		}
		chainID = n
	}
	roles := chain.NewRoles(chainID)
	rebalancer := roles.Resolve(chain.RoleRebalancer)
	slog.Info("deployment resolved", "chain_id", chainID, "rebalancer", rebalancer.Hex())

	// --- Handlers ---
	oracle := pricing.NewGeometricOracle()
	books := book.NewHandler(st, oracle, chain.FallbackTokenSource{}, rebalancer)
	pools := pool.NewHandler(st, oracle, pool.StaticStrategy{}, pool.StaticLiquidity{})
	eng := engine.New(books, pools, st)

	// --- Feed source ---
	var src feed.Source
	switch {
	case os.Getenv("FEED_FILE") != "":
		f, err := os.Open(os.Getenv("FEED_FILE"))
		if err != nil {
			slog.Error("feed file open failed", "err", err)
			os.Exit(1)
		}
		src = feed.NewReplayer(f)
		slog.Info("replaying feed file", "path", os.Getenv("FEED_FILE"))
	case os.Getenv("FEED_URL") != "":
		ws, err := feed.DialWebSocket(ctx, os.Getenv("FEED_URL"))
		if err != nil {
			slog.Error("feed dial failed", "err", err)
			os.Exit(1)
		}
		src = ws
	default:
		slog.Error("neither FEED_FILE nor FEED_URL set")
		os.Exit(1)
	}
	defer src.Close()

	// --- HTTP router (ops surface only) ---
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(metrics.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"book-indexer"}`))
	})

	// Prometheus metrics endpoint.
	r.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("book-indexer listening", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// --- Indexing loop ---
	done := make(chan error, 1)
	go func() { done <- eng.Run(ctx, src) }()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-done:
		if err != nil {
			slog.Error("indexing stopped", "err", err)
		} else {
			slog.Info("indexing complete")
		}
	case <-quit:
		slog.Info("shutting down book-indexer...")
		cancel()
		src.Close() // unblocks a pending feed read
		<-done
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
	}
	fmt.Println("book-indexer stopped")
}
