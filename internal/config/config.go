package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	RealtimeChannelBase    string
	NATSURL                string
	JWTSecret              string
	SessionTTL             time.Duration
	AttemptTTL             time.Duration
	AnalyticsCacheTTL      time.Duration
	AIGatewayBaseURL       string
	AIGatewayAPIKey        string
	AIModel                string
	AIMaxTokens            int
	QuestionsPerAssessment int
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("PREP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "PrepNexus API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("realtime.channel_base", "prepnexus")
	v.SetDefault("session.ttl", "12h")
	v.SetDefault("assessment.attempt_ttl", "30m")
	v.SetDefault("analytics.cache_ttl", "5m")
	v.SetDefault("ai.model", "google/gemini-2.5-flash")
	v.SetDefault("ai.max_tokens", 2048)
	v.SetDefault("assessment.question_count", 5)
	v.SetDefault("cloudinary.folder", "prepnexus/resumes")

	sessionTTL, err := time.ParseDuration(v.GetString("session.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid session ttl: %w", err)
	}

	attemptTTL, err := time.ParseDuration(v.GetString("assessment.attempt_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid attempt ttl: %w", err)
	}

	cacheTTL, err := time.ParseDuration(v.GetString("analytics.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid analytics cache ttl: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		RealtimeChannelBase:    v.GetString("realtime.channel_base"),
		NATSURL:                v.GetString("nats.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		SessionTTL:             sessionTTL,
		AttemptTTL:             attemptTTL,
		AnalyticsCacheTTL:      cacheTTL,
		AIGatewayBaseURL:       v.GetString("ai.gateway_url"),
		AIGatewayAPIKey:        v.GetString("ai.api_key"),
		AIModel:                v.GetString("ai.model"),
		AIMaxTokens:            v.GetInt("ai.max_tokens"),
		QuestionsPerAssessment: v.GetInt("assessment.question_count"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.QuestionsPerAssessment <= 0 {
		cfg.QuestionsPerAssessment = 5
	}

	if cfg.AIMaxTokens <= 0 {
		cfg.AIMaxTokens = 2048
	}

	return cfg, nil
}
