package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kbrands/storefront-go/internal/config"
	"github.com/kbrands/storefront-go/internal/stub"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.LoadStub()

	server := stub.NewServer(cfg.JWTSecret, cfg.JWTExpiry)
	defer server.Close()
	if cfg.Seed {
		if err := server.Seed(); err != nil {
			slog.Error("seeding demo data failed", "error", err)
			os.Exit(1)
		}
		slog.Info("demo data seeded",
			"customer", "testuser@example.com / password123",
			"vendor", "admin@ecommerce.com / admin123")
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server.Handler(),
	}

	go func() {
		slog.Info("stub server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down stub server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("stub server stopped")
}
