package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/signon/signon-go/internal/config"
	"github.com/signon/signon-go/internal/crypto"
	"github.com/signon/signon-go/internal/handler"
	"github.com/signon/signon-go/internal/middleware"
	"github.com/signon/signon-go/internal/repository"
	"github.com/signon/signon-go/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := repository.NewDB(cfg.DatabaseDSN)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	hasher, err := crypto.NewPasswordHasher(cfg.BcryptCost)
	if err != nil {
		slog.Error("invalid bcrypt cost", "cost", cfg.BcryptCost, "error", err)
		os.Exit(1)
	}
	issuer := crypto.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)

	userRepo := repository.NewUserRepository(db)
	authService := service.NewAuthService(userRepo, hasher, slog.Default())
	authHandler := handler.NewAuthHandler(authService, issuer, cfg.SecureCookies())

	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(5, 10))
		r.Post("/api/v1/auth/register", authHandler.HandleSignUp)
		r.Post("/api/v1/auth/login", authHandler.HandleSignIn)
	})

	r.Post("/api/v1/auth/logout", authHandler.HandleSignOut)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(issuer, handler.SessionCookieName))
		r.Get("/api/v1/auth/me", authHandler.HandleMe)
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
