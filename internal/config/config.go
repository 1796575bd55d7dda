package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins []string

	DBHost      string
	DBPort      string
	DBUser      string
	DBPass      string
	DBName      string
	DBSSLMode   string
	DatabaseURL string

	SessionSecret         string
	SessionName           string
	SessionMaxAge         int
	LegacySessionFallback bool

	JWTSecret string
	JWTTTL    time.Duration

	RedisURL        string
	LoginRateLimit  int64
	LoginRateWindow time.Duration

	UploadDir              string
	UploadURLPrefix        string
	CloudinaryURL          string
	CloudinaryUploadFolder string

	MeiliSearchHost string
	MeiliMasterKey  string
	ReindexSchedule string

	RollbarToken string
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func defaults(v *viper.Viper) {
	v.SetDefault("app_env", "development")
	v.SetDefault("port", "8080")
	v.SetDefault("allowed_origins", "http://localhost:3000")

	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_pass", "")
	v.SetDefault("db_name", "schoolhub")
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("database_url", "")

	v.SetDefault("session_secret", "")
	v.SetDefault("session_name", "schoolhub_session")
	v.SetDefault("session_max_age", 7*24*60*60)
	v.SetDefault("legacy_session_fallback", true)

	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwt_ttl", "1h")

	v.SetDefault("redis_url", "")
	v.SetDefault("login_rate_limit", 5)
	v.SetDefault("login_rate_window", "15m")

	v.SetDefault("upload_dir", "uploads")
	v.SetDefault("upload_url_prefix", "/uploads")
	v.SetDefault("cloudinary_url", "")
	v.SetDefault("cloudinary_upload_folder", "schoolhub")

	v.SetDefault("meilisearch_host", "")
	v.SetDefault("meili_master_key", "")
	v.SetDefault("reindex_schedule", "0 3 * * *")

	v.SetDefault("rollbar_token", "")
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	defaults(v)

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppEnv:         v.GetString("app_env"),
		Port:           v.GetString("port"),
		AllowedOrigins: splitList(v.GetString("allowed_origins")),

		DBHost:      v.GetString("db_host"),
		DBPort:      v.GetString("db_port"),
		DBUser:      v.GetString("db_user"),
		DBPass:      v.GetString("db_pass"),
		DBName:      v.GetString("db_name"),
		DBSSLMode:   v.GetString("db_sslmode"),
		DatabaseURL: v.GetString("database_url"),

		SessionSecret:         v.GetString("session_secret"),
		SessionName:           v.GetString("session_name"),
		SessionMaxAge:         v.GetInt("session_max_age"),
		LegacySessionFallback: v.GetBool("legacy_session_fallback"),

		JWTSecret: v.GetString("jwt_secret"),

		RedisURL:       v.GetString("redis_url"),
		LoginRateLimit: v.GetInt64("login_rate_limit"),

		UploadDir:              v.GetString("upload_dir"),
		UploadURLPrefix:        v.GetString("upload_url_prefix"),
		CloudinaryURL:          v.GetString("cloudinary_url"),
		CloudinaryUploadFolder: v.GetString("cloudinary_upload_folder"),

		MeiliSearchHost: v.GetString("meilisearch_host"),
		MeiliMasterKey:  v.GetString("meili_master_key"),
		ReindexSchedule: v.GetString("reindex_schedule"),

		RollbarToken: v.GetString("rollbar_token"),
	}

	var err error
	cfg.JWTTTL, err = time.ParseDuration(v.GetString("jwt_ttl"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	cfg.LoginRateWindow, err = time.ParseDuration(v.GetString("login_rate_window"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_RATE_WINDOW: %w", err)
	}

	if cfg.SessionSecret == "" || cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("SESSION_SECRET and JWT_SECRET must be set in production")
		}
		if cfg.SessionSecret == "" {
			cfg.SessionSecret = "dev-session-secret-change-me"
		}
		if cfg.JWTSecret == "" {
			cfg.JWTSecret = "dev-jwt-secret-change-me"
		}
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
