// Package main is the entry point for the Moral Knight outreach backend.
// It serves the form submission API for the public website: contact
// messages and misconduct reports about public-sector AI systems, both
// delivered to staff by email with an optional submitter confirmation.
//
// Architecture:
//   - No database: a submission lives only in the emails it produces
//   - Reports carry a single-use MK-<year>-XXXX reference code
//   - Anonymous reports suppress the confirmation email and PII handling
//   - Honeypot spam is absorbed with a success response, never signalled
//   - IP-identifying headers are stripped before any handler runs
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/moralknight/outreach-server/internal/config"
	"github.com/moralknight/outreach-server/internal/handlers"
	"github.com/moralknight/outreach-server/internal/mailer"
	"github.com/moralknight/outreach-server/internal/middleware"
	"github.com/moralknight/outreach-server/internal/services"
)

func main() {
	// Initialize structured logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	sugar := logger.Sugar()

	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		sugar.Fatalf("Failed to load config: %v", err)
	}

	sugar.Infow("Starting Moral Knight Outreach Server",
		"port", cfg.Port,
		"env", cfg.Environment,
		"smtp_host", cfg.SMTP.Host,
		"mailer_configured", cfg.SMTP.Configured(),
	)
	if !cfg.SMTP.Configured() {
		sugar.Warn("Mail transport not configured; submissions will fail until SMTP credentials are set")
	}

	// Initialize services
	smtpMailer := mailer.New(cfg.SMTP, sugar)
	deliverySvc := services.NewDeliveryLogService(sugar)
	notifier := services.NewNotifier(smtpMailer, cfg.SMTP, deliverySvc, sugar)

	// Initialize handlers
	contactHandler := handlers.NewContactHandler(notifier, sugar)
	deliveryHandler := handlers.NewDeliveryHandler(deliverySvc, sugar)
	previewHandler := handlers.NewPreviewHandler(sugar)
	healthHandler := handlers.NewHealthHandler(smtpMailer, sugar)

	// Build router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.StripIPHeaders()) // Remove IP-identifying headers
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Rate limiting
	r.Use(middleware.RateLimit(cfg.RateLimitRPM))

	// API Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", healthHandler.Check)
		r.Get("/health/ready", healthHandler.Ready)

		// Form submission (public — no auth required)
		r.Post("/contact", contactHandler.Submit)

		// Staff endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(cfg.JWTSecret))
			r.Get("/delivery/recent", deliveryHandler.Recent)
			r.Get("/preview", previewHandler.Render)
		})
	})

	// Serve static files (frontend build)
	r.Handle("/*", http.FileServer(http.Dir("../dist")))

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sugar.Infof("Server listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	sugar.Info("Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		sugar.Fatalf("Forced shutdown: %v", err)
	}

	sugar.Info("Server stopped")
}
