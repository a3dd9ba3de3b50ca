package config

import (
	"appliance-intake-service/internal/domain"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds process configuration read from the environment.
type Config struct {
	Port      string
	LogLevel  string
	LogFormat string
	StaticDir string

	KakaoRestKey   string
	KakaoBaseURL   string
	GeocodeTimeout time.Duration
	ResolveTimeout time.Duration

	DatabaseURL string
	DBPath      string

	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	HistoryKeyPrefix string

	RateLimitRPS   float64
	RateLimitBurst int
	AdminToken     string
	SecureCookies  bool
	TrustProxy     bool

	Navigation domain.NavigationConfig
}

// Load reads configuration from environment variables.
// NEXT_PAGES_JSON, when set, replaces the consultation type → page table.
func Load() (*Config, error) {
	nav := domain.DefaultNavigationConfig()
	nav.DefaultNextPage = Get("DEFAULT_NEXT_PAGE", nav.DefaultNextPage)
	nav.OutsideServicePage = Get("OUTSIDE_SERVICE_PAGE", nav.OutsideServicePage)
	nav.Company.Name = Get("COMPANY_NAME", nav.Company.Name)
	nav.Company.Address = Get("COMPANY_ADDRESS", nav.Company.Address)

	if raw := strings.TrimSpace(os.Getenv("NEXT_PAGES_JSON")); raw != "" {
		pages := map[string]string{}
		if err := json.Unmarshal([]byte(raw), &pages); err != nil {
			return nil, fmt.Errorf("load config: parse NEXT_PAGES_JSON: %w", err)
		}
		nav.NextPageByType = pages
	}

	cfg := &Config{
		Port:      Get("PORT", "8080"),
		LogLevel:  Get("LOG_LEVEL", "info"),
		LogFormat: Get("LOG_FORMAT", "text"),
		StaticDir: Get("STATIC_DIR", "public"),

		KakaoRestKey:   strings.TrimSpace(os.Getenv("KAKAO_REST_KEY")),
		KakaoBaseURL:   Get("KAKAO_BASE_URL", "https://dapi.kakao.com"),
		GeocodeTimeout: getEnvAsDuration("GEOCODE_TIMEOUT", 5*time.Second),
		ResolveTimeout: getEnvAsDuration("RESOLVE_TIMEOUT", 8*time.Second),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBPath:      Get("DB_PATH", "data/intake.db"),

		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          getEnvAsInt("REDIS_DB", 0),
		HistoryKeyPrefix: Get("HISTORY_KEY_PREFIX", "sundoo_selection_history"),

		RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 10),
		AdminToken:     os.Getenv("ADMIN_TOKEN"),
		SecureCookies:  getEnvAsBool("SECURE_COOKIES", false),
		TrustProxy:     getEnvAsBool("TRUST_PROXY", false),

		Navigation: nav,
	}

	if strings.TrimSpace(cfg.Navigation.Company.Address) == "" {
		return nil, fmt.Errorf("load config: COMPANY_ADDRESS must not be empty")
	}

	return cfg, nil
}

// Get retrieves an environment variable or returns fallback when unset or empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v, err := strconv.Atoi(Get(key, "")); err == nil {
		return v
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(Get(key, ""), 64); err == nil {
		return v
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(Get(key, "")); err == nil {
		return v
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	raw := Get(key, "")
	if raw == "" {
		return fallback
	}
	if v, err := time.ParseDuration(raw); err == nil {
		return v
	}
	return fallback
}
