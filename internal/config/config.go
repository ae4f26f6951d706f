package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by ASKDESK_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("ASKDESK_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Missing files are fine; the environment may already be populated.
	_ = godotenv.Load(envFile)
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

var ErrMissingJWTSecrets = errors.New("JWT_SECRET and JWT_REFRESH_SECRET must be configured")

// JWTSecrets returns the access and refresh signing secrets. Both are
// required; the server refuses to start without them.
func JWTSecrets() (access, refresh []byte, err error) {
	a := os.Getenv("JWT_SECRET")
	r := os.Getenv("JWT_REFRESH_SECRET")
	if a == "" || r == "" {
		return nil, nil, ErrMissingJWTSecrets
	}
	return []byte(a), []byte(r), nil
}

// AccessTokenTTL defaults to 15 minutes.
func AccessTokenTTL() time.Duration {
	return durationEnv("JWT_EXPIRES_IN", 15*time.Minute)
}

// RefreshTokenTTL defaults to 7 days.
func RefreshTokenTTL() time.Duration {
	return durationEnv("JWT_REFRESH_EXPIRES_IN", 7*24*time.Hour)
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

func AnthropicAPIKey() string {
	return os.Getenv("ANTHROPIC_API_KEY")
}

func GeminiAPIKey() string {
	return os.Getenv("GEMINI_API_KEY")
}

func CerebrasAPIKey() string {
	return os.Getenv("CEREBRAS_API_KEY")
}

// LLMProvider returns the configured LLM provider.
// Defaults to "openai" if not set.
// Valid values: openai, anthropic, gemini, cerebras, mock
func LLMProvider() string {
	p := os.Getenv("LLM_PROVIDER")
	if p == "" {
		return "openai"
	}
	return p
}

// LLMAPIKey returns the API key for the configured LLM provider.
func LLMAPIKey() string {
	switch LLMProvider() {
	case "anthropic":
		return AnthropicAPIKey()
	case "gemini":
		return GeminiAPIKey()
	case "cerebras":
		return CerebrasAPIKey()
	case "mock":
		return ""
	default:
		return OpenAIAPIKey()
	}
}

// AIModel overrides the provider's default model when set.
func AIModel() string {
	return os.Getenv("AI_MODEL")
}

// AITimeout bounds a single answer call. Defaults to 30 seconds.
func AITimeout() time.Duration {
	return durationEnv("AI_TIMEOUT", 30*time.Second)
}

// EmbeddingProvider returns the configured embedding provider.
// Defaults to "mock" if not set.
// Valid values: openai, mock, none
func EmbeddingProvider() string {
	p := os.Getenv("EMBEDDING_PROVIDER")
	if p == "" {
		return "mock"
	}
	return p
}

// EmbeddingAPIKey returns the API key for the configured embedding provider.
func EmbeddingAPIKey() string {
	switch EmbeddingProvider() {
	case "openai":
		return OpenAIAPIKey()
	default:
		return ""
	}
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	return floatEnv("RATE_LIMIT_RPS", 100)
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	return intEnv("RATE_LIMIT_BURST", 20)
}

// AuthRateLimitRPS applies to the register/login/refresh routes.
// Defaults to one request every ten seconds.
func AuthRateLimitRPS() float64 {
	return floatEnv("AUTH_RATE_LIMIT_RPS", 0.1)
}

func AuthRateLimitBurst() int {
	return intEnv("AUTH_RATE_LIMIT_BURST", 5)
}

// TokenSweepInterval is how often expired refresh tokens are purged.
func TokenSweepInterval() time.Duration {
	return durationEnv("TOKEN_SWEEP_INTERVAL", time.Hour)
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}

func floatEnv(key string, def float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func intEnv(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func durationEnv(key string, def time.Duration) time.Duration {
	d, err := ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// ParseDuration accepts everything time.ParseDuration does plus a whole-day
// suffix ("7d"). A bare integer is read as seconds.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty duration")
	}
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid day duration %q: %w", s, err)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(s)
}
