package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"membership_webapp/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort        string
	DatabaseURL    string
	JWTSecret      string
	ProfileSecret  string // shared secret with the account subsystem, signs login tickets
	AdminMemberIDs []int64

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Anti-abuse windows
	CommentGap    time.Duration // min gap between rewarded comments
	SurfGap       time.Duration // min gap between rewarded profile visits
	TierStipend   time.Duration // min gap between tier stipend grants
	APIRateLimit  int
	APIRateWindow time.Duration

	LogLevel string
	LogJSON  bool
}

// Load reads the configuration from the environment. Secrets are
// mandatory; everything else has a sane default.
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	profileSecret := os.Getenv("PROFILE_TICKET_SECRET")
	if profileSecret == "" {
		logger.Fatal("PROFILE_TICKET_SECRET is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	var adminIDs []int64
	if raw := os.Getenv("ADMIN_MEMBER_IDS"); raw != "" {
		for _, idStr := range strings.Split(raw, ",") {
			if id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64); err == nil {
				adminIDs = append(adminIDs, id)
			}
		}
	}

	return &Config{
		AppPort:        port,
		DatabaseURL:    dbURL,
		JWTSecret:      jwtSecret,
		ProfileSecret:  profileSecret,
		AdminMemberIDs: adminIDs,

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),

		CommentGap:    envSeconds("COMMENT_GAP_SECONDS", 5*time.Minute),
		SurfGap:       envSeconds("SURF_GAP_SECONDS", 10*time.Minute),
		TierStipend:   envSeconds("TIER_STIPEND_SECONDS", 30*24*time.Hour),
		APIRateLimit:  envInt("API_RATE_LIMIT", 60),
		APIRateWindow: envSeconds("API_RATE_WINDOW_SECONDS", time.Minute),

		LogLevel: envDefault("LOG_LEVEL", "info"),
		LogJSON:  os.Getenv("LOG_JSON") == "true",
	}
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envSeconds(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return def
}
