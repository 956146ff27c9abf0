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

	"github.com/go-onboard-api/internal/config"
	"github.com/go-onboard-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-onboard-api/internal/infrastructure/jwt"
	"github.com/go-onboard-api/internal/infrastructure/line"
	"github.com/go-onboard-api/internal/infrastructure/n8n"
	"github.com/go-onboard-api/internal/infrastructure/recaptcha"
	"github.com/go-onboard-api/internal/infrastructure/smtp"
	"github.com/go-onboard-api/internal/infrastructure/sns"
	transporthttp "github.com/go-onboard-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// SNS SMS sender is only needed when the sms channel is configured.
	var smsSender sns.SMSSender
	if cfg.OTPChannel == "sms" {
		sender, err := sns.NewSender(cfg)
		if err != nil {
			log.Fatalf("SNS sender not available with OTP_CHANNEL=sms: %v", err)
		}
		smsSender = sender
	}

	deps := &transporthttp.Deps{
		RegistrationRepo: dynamo.NewRegistrationRepo(dynamoClient, cfg.DynamoTables.Registrations),
		VerificationRepo: dynamo.NewVerificationRepo(dynamoClient, cfg.DynamoTables.Verifications),
		GroupRepo:        dynamo.NewGroupRepo(dynamoClient, cfg.DynamoTables.Groups),
		Captcha:          recaptcha.NewVerifier(cfg.RecaptchaSecret, cfg.RecaptchaBaseURL),
		LineClient:       line.NewClient(cfg.LineToken, cfg.LineAPIBaseURL),
		WorkflowClient:   n8n.NewClient(cfg.WorkflowURL),
		Mailer:           smtp.NewMailer(cfg),
		SMSSender:        smsSender,
		ResendTokens:     jwtinfra.NewProvider(cfg.ResendSecret, cfg.ResendTokenTTL),
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
