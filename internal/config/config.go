package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	Server struct {
		Port         string        `env:"PORT" envDefault:"3000"`
		ReadTimeout  time.Duration `env:"FIBER_READ_TIMEOUT" envDefault:"10s"`
		WriteTimeout time.Duration `env:"FIBER_WRITE_TIMEOUT" envDefault:"90s"`
		LogLevel     string        `env:"LOG_LEVEL" envDefault:"info"`
		StaticDir    string        `env:"STATIC_DIR" envDefault:"frontend/src"`
	}

	WeatherAPI struct {
		APIKey  string `env:"WEATHER_API_KEY"`
		BaseURL string `env:"OPENWEATHER_URL" envDefault:"https://api.openweathermap.org/data/2.5"`
		Units   string `env:"WEATHER_UNITS" envDefault:"metric"`
		Lang    string `env:"WEATHER_LANG" envDefault:"id"`
	}

	CountryAPI struct {
		BaseURL string `env:"COUNTRIES_URL" envDefault:"https://restcountries.com/v3.1"`
	}

	OpenMeteo struct {
		BaseURL string `env:"OPEN_METEO_URL" envDefault:"https://api.open-meteo.com/v1"`
	}

	Assistant struct {
		APIKey        string        `env:"GEMINI_API_KEY"`
		Model         string        `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
		FallbackModel string        `env:"GEMINI_FALLBACK_MODEL" envDefault:"gemini-2.0-flash"`
		Timeout       time.Duration `env:"GEMINI_TIMEOUT" envDefault:"60s"`
		MaxConcurrent int           `env:"GEMINI_MAX_CONCURRENT" envDefault:"4"`
	}

	Upstream struct {
		Timeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"15s"`
	}

	Chat struct {
		LogPath       string        `env:"CHAT_LOG_PATH" envDefault:"chat_history.json"`
		LogMaxEntries int           `env:"CHAT_LOG_MAX_ENTRIES" envDefault:"100"`
		HistoryLimit  int           `env:"CHAT_HISTORY_LIMIT" envDefault:"10"`
		SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	}

	Redis struct {
		URL string `env:"REDIS_URL"`
	}

	Scheduler struct {
		FetchInterval time.Duration `env:"FETCH_INTERVAL" envDefault:"15m"`
		DefaultCities []string      `env:"DEFAULT_CITIES" envSeparator:"," envDefault:"Jakarta,Tokyo,London"`
		PruneInterval time.Duration `env:"SESSION_PRUNE_INTERVAL" envDefault:"10m"`
	}

	Cache struct {
		Duration time.Duration `env:"CACHE_DURATION" envDefault:"10m"`
		MaxSize  int           `env:"MAX_CACHE_SIZE" envDefault:"1000"`
	}

	CircuitBreaker struct {
		Threshold int           `env:"CIRCUIT_BREAKER_THRESHOLD" envDefault:"3"`
		Timeout   time.Duration `env:"CIRCUIT_BREAKER_TIMEOUT" envDefault:"30s"`
	}

	Retry struct {
		MaxRetries int           `env:"MAX_RETRIES" envDefault:"1"`
		Delay      time.Duration `env:"RETRY_DELAY" envDefault:"500ms"`
		Multiplier float64       `env:"RETRY_MULTIPLIER" envDefault:"2"`
	}
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		zap.L().Info("No .env file found, using environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.WeatherAPI.APIKey = sanitizeKey(cfg.WeatherAPI.APIKey)
	cfg.Assistant.APIKey = sanitizeKey(cfg.Assistant.APIKey)
	cfg.Scheduler.DefaultCities = compact(cfg.Scheduler.DefaultCities)

	if cfg.Chat.LogMaxEntries <= 0 {
		zap.L().Warn("Invalid chat log size, using default", zap.Int("value", cfg.Chat.LogMaxEntries))
		cfg.Chat.LogMaxEntries = 100
	}
	if cfg.Chat.HistoryLimit <= 0 {
		zap.L().Warn("Invalid chat history limit, using default", zap.Int("value", cfg.Chat.HistoryLimit))
		cfg.Chat.HistoryLimit = 10
	}

	return cfg, nil
}

// WeatherConfigured reports whether a usable weather provider key is set.
func (c *Config) WeatherConfigured() bool {
	return c.WeatherAPI.APIKey != ""
}

// AssistantConfigured reports whether a usable assistant provider key is set.
func (c *Config) AssistantConfigured() bool {
	return c.Assistant.APIKey != ""
}

// sanitizeKey treats the placeholder values shipped in sample .env files as unset.
func sanitizeKey(key string) string {
	key = strings.TrimSpace(key)
	if strings.HasPrefix(key, "YOUR_") && strings.HasSuffix(key, "_HERE") {
		return ""
	}
	return key
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
