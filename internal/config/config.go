package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort    string
	AppEnv     string
	AppBaseURL string // public base URL used to build verification links

	// Identity provider REST API.
	ProviderAPIKey   string
	ProviderBaseURL  string // identity-toolkit style endpoint
	ProviderTokenURL string // secure-token refresh endpoint
	ProviderTimeout  time.Duration

	// Keys for verifying provider session tokens and minting custom tokens.
	JWTPrivateKeyPath string
	JWTPublicKeyPath  string

	AWSRegion          string
	AWSEndpointURL     string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID     string
	AWSSecretKey       string
	VerificationsTable string

	SMTPHost        string
	SMTPPort        string
	SMTPFrom        string
	SMTPUsername    string
	SMTPPassword    string
	MailMaxAttempts int
	MailBackoff     time.Duration

	EscrowMasterKey string // 32-byte hex master key for credential escrow

	AllowedOrigins []string // CORS allowed origins
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:    getEnv("APP_PORT", "3000"),
		AppEnv:     getEnv("APP_ENV", "development"),
		AppBaseURL: getEnv("APP_BASE_URL", "http://localhost:3000"),

		ProviderAPIKey:   getEnv("IDP_API_KEY", ""),
		ProviderBaseURL:  getEnv("IDP_BASE_URL", "https://identitytoolkit.googleapis.com/v1"),
		ProviderTokenURL: getEnv("IDP_TOKEN_URL", "https://securetoken.googleapis.com/v1"),
		ProviderTimeout:  getEnvDuration("IDP_TIMEOUT", 8*time.Second),

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),

		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL:     getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:       getEnv("AWS_SECRET_ACCESS_KEY", ""),
		VerificationsTable: getEnv("DYNAMO_TABLE_PENDING_VERIFICATIONS", "pending_verifications"),

		SMTPHost:        getEnv("SMTP_HOST", "localhost"),
		SMTPPort:        getEnv("SMTP_PORT", "1025"),
		SMTPFrom:        getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername:    getEnv("SMTP_USERNAME", ""),
		SMTPPassword:    getEnv("SMTP_PASSWORD", ""),
		MailMaxAttempts: getEnvInt("MAIL_MAX_ATTEMPTS", 3),
		MailBackoff:     getEnvDuration("MAIL_BACKOFF", 2*time.Second),

		EscrowMasterKey: getEnv("ESCROW_MASTER_KEY", ""),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

// IsProduction reports whether the service runs in production mode.
// Outside production, error envelopes include provider details.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
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

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
