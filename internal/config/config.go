package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	// Collaborator credentials and endpoints. The first three plus
	// OTP_TTL_SECONDS are required: the process refuses to start without them.
	RecaptchaSecret  string
	LineToken        string
	WorkflowURL      string
	OTPTTL           time.Duration
	LineAPIBaseURL   string
	RecaptchaBaseURL string

	OTPChannel       string // "email" | "sms"
	OTPMaxAttempts   int
	ResendSecret     string
	ResendTokenTTL   time.Duration
	MeetingUTCOffset string // fixed offset literal appended to event times, e.g. "+07:00"
	MeetingTimeZone  string // IANA zone name forwarded to the workflow service

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string
	SNSRegion    string

	AllowedOrigins []string
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Registrations string
	Verifications string
	Groups        string
}

// Load reads all configuration from environment variables. It returns an
// error listing every required variable that is missing so operators can fix
// a broken deployment in one pass.
func Load() (*Config, error) {
	cfg := &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Registrations: getEnv("DYNAMO_TABLE_REGISTRATIONS", "registrations"),
			Verifications: getEnv("DYNAMO_TABLE_VERIFICATIONS", "otp_verifications"),
			Groups:        getEnv("DYNAMO_TABLE_GROUPS", "line_groups"),
		},

		RecaptchaSecret:  os.Getenv("RECAPTCHA_SECRET_KEY"),
		LineToken:        os.Getenv("LINE_CHANNEL_ACCESS_TOKEN"),
		WorkflowURL:      os.Getenv("N8N_WEBHOOK_URL"),
		LineAPIBaseURL:   getEnv("LINE_API_BASE_URL", "https://api.line.me"),
		RecaptchaBaseURL: getEnv("RECAPTCHA_BASE_URL", "https://www.google.com/recaptcha/api/siteverify"),

		OTPChannel:       getEnv("OTP_CHANNEL", "email"),
		OTPMaxAttempts:   getEnvInt("OTP_MAX_ATTEMPTS", 5),
		ResendSecret:     getEnv("OTP_RESEND_SECRET", ""),
		ResendTokenTTL:   time.Duration(getEnvInt("OTP_RESEND_TOKEN_TTL_MINUTES", 15)) * time.Minute,
		MeetingUTCOffset: getEnv("MEETING_UTC_OFFSET", "+07:00"),
		MeetingTimeZone:  getEnv("MEETING_TIME_ZONE", "Asia/Bangkok"),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SNSRegion:    getEnv("SNS_REGION", "us-east-1"),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}

	var missing []string
	if cfg.RecaptchaSecret == "" {
		missing = append(missing, "RECAPTCHA_SECRET_KEY")
	}
	if cfg.LineToken == "" {
		missing = append(missing, "LINE_CHANNEL_ACCESS_TOKEN")
	}
	if cfg.WorkflowURL == "" {
		missing = append(missing, "N8N_WEBHOOK_URL")
	}
	ttlSec := getEnvInt("OTP_TTL_SECONDS", 0)
	if ttlSec <= 0 {
		missing = append(missing, "OTP_TTL_SECONDS")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	cfg.OTPTTL = time.Duration(ttlSec) * time.Second

	if cfg.ResendSecret == "" {
		// Resend tokens only need to survive one OTP session, so a per-boot
		// secret is an acceptable fallback outside production.
		if cfg.AppEnv == "production" {
			return nil, fmt.Errorf("missing required environment variables: OTP_RESEND_SECRET")
		}
		cfg.ResendSecret = "dev-resend-secret"
	}

	if cfg.OTPChannel != "email" && cfg.OTPChannel != "sms" {
		return nil, fmt.Errorf("OTP_CHANNEL must be %q or %q, got %q", "email", "sms", cfg.OTPChannel)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
