/*
Package main is the entry point for the chat server.

It loads configuration, initializes logging, connects to PostgreSQL and
runs migrations, wires the realtime gateway with its presence store,
connection registry and rate limiter, starts the HTTP server, and handles
SIGINT/SIGTERM for graceful shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/theajstars/voyatek-assessment/internal/app/chat"
	"github.com/theajstars/voyatek-assessment/internal/app/db"
	"github.com/theajstars/voyatek-assessment/internal/app/store"
	"github.com/theajstars/voyatek-assessment/internal/configs"
	"github.com/theajstars/voyatek-assessment/internal/handler"
	"github.com/theajstars/voyatek-assessment/internal/pkg/logx"
)

func main() {
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Int("message_rate_limit", cfg.MessageRateLimit).
		Dur("message_rate_window", cfg.MessageRateWindow).
		Msg("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(cfg.DatabaseDSN)
	if err != nil {
		logx.Fatal(err, "Failed to connect to database")
	}
	defer pool.Close()

	durable := store.NewPostgres(pool)

	messageLimiter := chat.NewSlidingWindow(cfg.MessageRateLimit, cfg.MessageRateWindow)
	defer messageLimiter.Close()

	gateway := chat.NewGateway(chat.NewRegistry(), chat.NewPresenceStore(), messageLimiter, durable)

	deps := &handler.AppDeps{
		Gateway: gateway,
		Config:  cfg,
		Store:   durable,
	}

	router := handler.Router(deps)

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("Chat server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Fatal(err, "Server forced to shutdown")
	}

	logx.Info("Server gracefully stopped.")
}
