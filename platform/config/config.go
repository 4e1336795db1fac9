// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetEnv() string
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
}

// ChannelConfig provides settings for the WhatsApp gateway client and webhook.
type ChannelConfig interface {
	GetChannelURL() string
	GetChannelAPIKey() string
	GetChannelDeviceID() string
	GetWebhookSecret() string
}

// ClassifierConfig provides settings for the text classification gateway.
type ClassifierConfig interface {
	GetClassifierProvider() string
	GetClassifierTimeout() time.Duration
	GetGeminiAPIKey() string
	GetGeminiModel() string
	GetOpenAIBaseURL() string
	GetOpenAIAPIKey() string
	GetOpenAIModel() string
}

// SchedulerConfig provides settings for the asynq follow-up scheduler.
type SchedulerConfig interface {
	GetRedisURL() string
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetFollowUpDelay() time.Duration
}

// AlertConfig provides settings for operator e-mail alerts.
type AlertConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetAlertFromName() string
	GetAlertFromAddress() string
	GetAlertRecipient() string
	IsAlertEnabled() bool
}

// IntakeConfig provides pacing settings for the intake pipeline.
type IntakeConfig interface {
	GetOnboardingStepDelay() time.Duration
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                 string
	HTTPAddr            string
	DatabaseURL         string
	JWTAccessSecret     string
	CORSAllowAll        bool
	CORSOrigins         []string
	ChannelURL          string
	ChannelAPIKey       string
	ChannelDeviceID     string
	WebhookSecret       string
	ClassifierProvider  string
	ClassifierTimeout   time.Duration
	GeminiAPIKey        string
	GeminiModel         string
	OpenAIBaseURL       string
	OpenAIAPIKey        string
	OpenAIModel         string
	RedisURL            string
	AsynqQueueName      string
	AsynqConcurrency    int
	FollowUpDelay       time.Duration
	OnboardingStepDelay time.Duration
	SMTPHost            string
	SMTPPort            int
	SMTPUsername        string
	SMTPPassword        string
	AlertFromName       string
	AlertFromAddress    string
	AlertRecipient      string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetEnv() string           { return c.Env }
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }

// ChannelConfig implementation
func (c *Config) GetChannelURL() string      { return c.ChannelURL }
func (c *Config) GetChannelAPIKey() string   { return c.ChannelAPIKey }
func (c *Config) GetChannelDeviceID() string { return c.ChannelDeviceID }
func (c *Config) GetWebhookSecret() string   { return c.WebhookSecret }

// ClassifierConfig implementation
func (c *Config) GetClassifierProvider() string       { return c.ClassifierProvider }
func (c *Config) GetClassifierTimeout() time.Duration { return c.ClassifierTimeout }
func (c *Config) GetGeminiAPIKey() string             { return c.GeminiAPIKey }
func (c *Config) GetGeminiModel() string              { return c.GeminiModel }
func (c *Config) GetOpenAIBaseURL() string            { return c.OpenAIBaseURL }
func (c *Config) GetOpenAIAPIKey() string             { return c.OpenAIAPIKey }
func (c *Config) GetOpenAIModel() string              { return c.OpenAIModel }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string             { return c.RedisURL }
func (c *Config) GetAsynqQueueName() string       { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int        { return c.AsynqConcurrency }
func (c *Config) GetFollowUpDelay() time.Duration { return c.FollowUpDelay }

// AlertConfig implementation
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetAlertFromName() string    { return c.AlertFromName }
func (c *Config) GetAlertFromAddress() string { return c.AlertFromAddress }
func (c *Config) GetAlertRecipient() string   { return c.AlertRecipient }
func (c *Config) IsAlertEnabled() bool {
	return c.SMTPHost != "" && c.AlertRecipient != ""
}

// IntakeConfig implementation
func (c *Config) GetOnboardingStepDelay() time.Duration { return c.OnboardingStepDelay }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	// Malformed durations and integers fail loudly here instead of silently
	// becoming zero: a zero FOLLOWUP_DELAY disables follow-ups entirely.
	classifierTimeout, err := durationEnv("CLASSIFIER_TIMEOUT", "8s")
	if err != nil {
		return nil, err
	}
	followUpDelay, err := durationEnv("FOLLOWUP_DELAY", "24h")
	if err != nil {
		return nil, err
	}
	onboardingStepDelay, err := durationEnv("ONBOARDING_STEP_DELAY", "2s")
	if err != nil {
		return nil, err
	}
	asynqConcurrency, err := intEnv("ASYNQ_CONCURRENCY", "10")
	if err != nil {
		return nil, err
	}
	smtpPort, err := intEnv("SMTP_PORT", "587")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Env:                 getEnv("APP_ENV", "development"),
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		JWTAccessSecret:     getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:        corsAllowAll,
		CORSOrigins:         corsOrigins,
		ChannelURL:          getEnv("CHANNEL_URL", ""),
		ChannelAPIKey:       getEnv("CHANNEL_API_KEY", ""),
		ChannelDeviceID:     getEnv("CHANNEL_DEVICE_ID", ""),
		WebhookSecret:       getEnv("WEBHOOK_SECRET", ""),
		ClassifierProvider:  strings.ToLower(getEnv("CLASSIFIER_PROVIDER", "gemini")),
		ClassifierTimeout:   classifierTimeout,
		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		GeminiModel:         getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		OpenAIBaseURL:       getEnv("OPENAI_BASE_URL", "https://api.moonshot.ai/v1"),
		OpenAIAPIKey:        getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:         getEnv("OPENAI_MODEL", "kimi-k2-turbo-preview"),
		RedisURL:            getEnv("REDIS_URL", ""),
		AsynqQueueName:      getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:    asynqConcurrency,
		FollowUpDelay:       followUpDelay,
		OnboardingStepDelay: onboardingStepDelay,
		SMTPHost:            getEnv("SMTP_HOST", ""),
		SMTPPort:            smtpPort,
		SMTPUsername:        getEnv("SMTP_USERNAME", ""),
		SMTPPassword:        getEnv("SMTP_PASSWORD", ""),
		AlertFromName:       getEnv("ALERT_FROM_NAME", "Leadflow"),
		AlertFromAddress:    getEnv("ALERT_FROM_ADDRESS", ""),
		AlertRecipient:      getEnv("ALERT_RECIPIENT", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.ChannelURL == "" {
		return nil, fmt.Errorf("CHANNEL_URL is required")
	}
	if cfg.ClassifierProvider != "gemini" && cfg.ClassifierProvider != "openai" {
		return nil, fmt.Errorf("CLASSIFIER_PROVIDER must be gemini or openai, got %q", cfg.ClassifierProvider)
	}
	if cfg.ClassifierTimeout <= 0 {
		cfg.ClassifierTimeout = 8 * time.Second
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func durationEnv(key, fallback string) (time.Duration, error) {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, raw)
	}
	return d, nil
}

func intEnv(key, fallback string) (int, error) {
	raw := getEnv(key, fallback)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, raw)
	}
	return n, nil
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
