package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	StravaClientID     string
	StravaClientSecret string
	DBPath             string
	ServerPort         string
	RedirectURI        string
	FrontendURL        string

	// MaxActivityPages caps the paginated history fetch; the page size is
	// fixed at 100, so the bound on returned activities is MaxActivityPages*100.
	MaxActivityPages int

	// CommunityConcurrency bounds the fan-out across athletes when building
	// the community leaderboard.
	CommunityConcurrency int

	// CommunityIncludeZero keeps athletes with no runs this week in the
	// community ranking at 0 km instead of dropping them.
	CommunityIncludeZero bool
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		StravaClientID:       getEnv("STRAVA_CLIENT_ID", ""),
		StravaClientSecret:   getEnv("STRAVA_CLIENT_SECRET", ""),
		DBPath:               getEnv("DB_PATH", "runhub.db"),
		ServerPort:           getEnv("SERVER_PORT", "5000"),
		RedirectURI:          getEnv("REDIRECT_URI", "http://localhost:5000/callback"),
		FrontendURL:          getEnv("FRONTEND_URL", "http://localhost:3000"),
		MaxActivityPages:     getEnvInt("MAX_ACTIVITY_PAGES", 5),
		CommunityConcurrency: getEnvInt("COMMUNITY_CONCURRENCY", 5),
		CommunityIncludeZero: getEnvBool("COMMUNITY_INCLUDE_ZERO", false),
	}

	if cfg.StravaClientID == "" || cfg.StravaClientSecret == "" {
		return nil, fmt.Errorf("STRAVA_CLIENT_ID and STRAVA_CLIENT_SECRET are required")
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("redirect_uri", cfg.RedirectURI).
		Int("max_activity_pages", cfg.MaxActivityPages).
		Int("community_concurrency", cfg.CommunityConcurrency).
		Bool("community_include_zero", cfg.CommunityIncludeZero).
		Msg("configuration loaded")

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
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

var Module = fx.Provide(Load)
