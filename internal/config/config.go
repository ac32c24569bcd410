package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var ErrMissingAPIBaseURL = errors.New("API_BASE_URL is not set")

type Config struct {
	AppEnv string

	APIBaseURL      string
	AdminAPIBaseURL string
	WSURL           string
	HTTPTimeout     time.Duration

	RateLimitRPS   float64
	RateLimitBurst int

	SessionStore   string
	SessionFile    string
	SessionKey     string
	SessionProfile string
	DBURL          string

	KafkaBrokers []string
	KafkaTopic   string

	RecentlyViewedSize int
}

// LoadConfig reads .env (when present) and the process environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function so tests don't touch the real environment.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(k, def string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		AppEnv:         get("APP_ENV", "development"),
		APIBaseURL:     strings.TrimRight(getenv("API_BASE_URL"), "/"),
		SessionStore:   get("SESSION_STORE", "file"),
		SessionFile:    get("SESSION_FILE", defaultSessionFile()),
		SessionKey:     getenv("SESSION_KEY"),
		SessionProfile: get("SESSION_PROFILE", "default"),
		DBURL:          getenv("DB_URL"),
		KafkaTopic:     get("KAFKA_TOPIC", "storefront-events"),
	}

	if cfg.APIBaseURL == "" {
		return nil, ErrMissingAPIBaseURL
	}
	cfg.AdminAPIBaseURL = strings.TrimRight(get("ADMIN_API_BASE_URL", cfg.APIBaseURL+"/admin"), "/")

	ws := getenv("WS_URL")
	if ws == "" {
		derived, err := deriveWSURL(cfg.APIBaseURL)
		if err != nil {
			return nil, err
		}
		ws = derived
	}
	cfg.WSURL = ws

	if brokers := getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	var err error
	if cfg.HTTPTimeout, err = parseDuration(get("HTTP_TIMEOUT", "0")); err != nil {
		return nil, fmt.Errorf("HTTP_TIMEOUT: %w", err)
	}
	if cfg.RateLimitRPS, err = strconv.ParseFloat(get("RATE_LIMIT_RPS", "10"), 64); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_RPS: %w", err)
	}
	if cfg.RateLimitBurst, err = strconv.Atoi(get("RATE_LIMIT_BURST", "20")); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_BURST: %w", err)
	}
	if cfg.RecentlyViewedSize, err = strconv.Atoi(get("RECENTLY_VIEWED_SIZE", "20")); err != nil {
		return nil, fmt.Errorf("RECENTLY_VIEWED_SIZE: %w", err)
	}

	switch cfg.SessionStore {
	case "file", "postgres":
	default:
		return nil, fmt.Errorf("SESSION_STORE: unknown store %q", cfg.SessionStore)
	}
	if cfg.SessionStore == "postgres" && cfg.DBURL == "" {
		return nil, errors.New("SESSION_STORE=postgres requires DB_URL")
	}

	return cfg, nil
}

// parseDuration accepts Go durations and bare seconds.
func parseDuration(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(v)
}

// deriveWSURL maps http(s)://host/api to ws(s)://host/ws.
func deriveWSURL(apiBase string) (string, error) {
	u, err := url.Parse(apiBase)
	if err != nil {
		return "", fmt.Errorf("API_BASE_URL: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws"
	u.RawQuery = ""
	return u.String(), nil
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".warimas-session.json"
	}
	return filepath.Join(home, ".warimas", "session.json")
}
