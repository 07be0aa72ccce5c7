package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config captures everything main needs to wire the server. Values come from
// the environment so deployments stay twelve-factor; FromEnv applies defaults
// suitable for local development.
type Config struct {
	Addr        string
	DatabaseURL string

	Redis   RedisConfig
	Auth    AuthConfig
	Limit   LimitConfig
	Comment CommentLimitConfig

	DefaultPageSize int
	MaxPageSize     int

	// ThrottlePerMinute caps requests per client IP across the whole router.
	ThrottlePerMinute int
}

// RedisConfig configures the shared counter store client.
// An empty URL means Redis is not configured; the limiter and block store
// then run on their in-memory implementations.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// AuthConfig configures token issuance and the session cookie.
type AuthConfig struct {
	JWTSecret    string
	TokenTTL     time.Duration
	CookieName   string
	CookieMaxAge time.Duration
}

// LimitConfig holds the authentication rate-limit thresholds. The IP axis uses
// a short window with a high ceiling (spray abuse), the username axis a longer
// window with a low ceiling (credential stuffing). BlockDuration zero means
// auto and default manual blocks are permanent.
type LimitConfig struct {
	IPLimit        int
	IPWindow       time.Duration
	UserLimit      int
	UserWindow     time.Duration
	BlockThreshold int
	BlockDuration  time.Duration
}

// CommentLimitConfig throttles public comment submission per IP. The throttle
// only applies while the matching site setting is enabled.
type CommentLimitConfig struct {
	Limit  int
	Window time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
// A .env file in the working directory is loaded first when present.
func FromEnv() Config {
	_ = godotenv.Load()

	return Config{
		Addr:        envString("ATELIER_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret:    envString("JWT_SECRET", "dev-secret-change-in-production"),
			TokenTTL:     envDuration("TOKEN_TTL", 24*time.Hour),
			CookieName:   envString("SESSION_COOKIE_NAME", "admin_token"),
			CookieMaxAge: envDuration("SESSION_COOKIE_MAX_AGE", 24*time.Hour),
		},
		Limit: LimitConfig{
			IPLimit:        envInt("AUTH_IP_LIMIT", 20),
			IPWindow:       envDuration("AUTH_IP_WINDOW", 5*time.Minute),
			UserLimit:      envInt("AUTH_USER_LIMIT", 5),
			UserWindow:     envDuration("AUTH_USER_WINDOW", 15*time.Minute),
			BlockThreshold: envInt("AUTH_BLOCK_THRESHOLD", 20),
			BlockDuration:  envDuration("AUTH_BLOCK_DURATION", 24*time.Hour),
		},
		Comment: CommentLimitConfig{
			Limit:  envInt("COMMENT_IP_LIMIT", 5),
			Window: envDuration("COMMENT_IP_WINDOW", 10*time.Minute),
		},
		DefaultPageSize:   envInt("PAGE_SIZE_DEFAULT", 10),
		MaxPageSize:       envInt("PAGE_SIZE_MAX", 100),
		ThrottlePerMinute: envInt("HTTP_THROTTLE_PER_MINUTE", 300),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
