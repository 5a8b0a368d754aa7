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

	"github.com/joho/godotenv"
	"github.com/weedscan-auth/internal/config"
	"github.com/weedscan-auth/internal/infrastructure/dynamo"
	"github.com/weedscan-auth/internal/infrastructure/idp"
	"github.com/weedscan-auth/internal/infrastructure/smtp"
	"github.com/weedscan-auth/internal/pkg/escrow"
	transporthttp "github.com/weedscan-auth/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap the pending-verifications table (created if missing).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.VerificationsTable)

	tokenKit, err := idp.NewTokenKit(cfg)
	if err != nil {
		log.Fatalf("token keys unavailable: %v", err)
	}
	provider := idp.NewClient(cfg, tokenKit)

	credEscrow, err := escrow.New(cfg.EscrowMasterKey)
	if err != nil {
		log.Fatalf("escrow master key invalid: %v", err)
	}

	mailer := smtp.NewRetryingMailer(smtp.NewMailer(cfg), cfg.MailMaxAttempts, cfg.MailBackoff)

	deps := &transporthttp.Deps{
		Provider: provider,
		Store:    dynamo.NewVerificationRepo(dynamoClient, cfg.VerificationsTable),
		Escrow:   credEscrow,
		Mailer:   mailer,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
