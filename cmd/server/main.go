package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-assistant/internal/api"
	"github.com/bobby-s-dev/weather-assistant/internal/chat"
	"github.com/bobby-s-dev/weather-assistant/internal/config"
	"github.com/bobby-s-dev/weather-assistant/internal/scheduler"
	"github.com/bobby-s-dev/weather-assistant/internal/services"
	"github.com/bobby-s-dev/weather-assistant/internal/storage"
	"github.com/bobby-s-dev/weather-assistant/pkg/client"
)

func main() {
	// Initialize logger
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	logConfig := zap.NewProductionConfig()
	logConfig.Level = level
	logger, err := logConfig.Build()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	zap.ReplaceGlobals(logger)
	logger.Info("Starting Weather Assistant Service")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	if err := level.UnmarshalText([]byte(cfg.Server.LogLevel)); err != nil {
		logger.Warn("Invalid log level, keeping info", zap.String("level", cfg.Server.LogLevel))
	}

	if !cfg.WeatherConfigured() {
		logger.Warn("WEATHER_API_KEY is not set, weather lookups will fail")
	}
	if !cfg.AssistantConfigured() {
		logger.Warn("GEMINI_API_KEY is not set, assistant endpoints will fail")
	}

	clientConfig := client.ClientConfig{
		Timeout:        cfg.Upstream.Timeout,
		MaxRetries:     cfg.Retry.MaxRetries,
		RetryDelay:     cfg.Retry.Delay,
		Multiplier:     cfg.Retry.Multiplier,
		Threshold:      cfg.CircuitBreaker.Threshold,
		BreakerTimeout: cfg.CircuitBreaker.Timeout,
	}

	// Upstream clients
	weatherClient := client.NewOpenWeatherClient(client.OpenWeatherConfig{
		APIKey:  cfg.WeatherAPI.APIKey,
		BaseURL: cfg.WeatherAPI.BaseURL,
		Units:   cfg.WeatherAPI.Units,
		Lang:    cfg.WeatherAPI.Lang,
	}, clientConfig, logger)
	countryClient := client.NewRestCountriesClient(cfg.CountryAPI.BaseURL, clientConfig, logger)
	meteoClient := client.NewOpenMeteoClient(cfg.OpenMeteo.BaseURL, clientConfig, logger)

	gemini, err := client.NewGeminiClient(context.Background(), client.GeminiConfig{
		APIKey:        cfg.Assistant.APIKey,
		Model:         cfg.Assistant.Model,
		Timeout:       cfg.Assistant.Timeout,
		MaxConcurrent: cfg.Assistant.MaxConcurrent,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize Gemini client", zap.Error(err))
	}

	var fallback chat.Endpoint
	if m := cfg.Assistant.FallbackModel; m != "" && m != cfg.Assistant.Model {
		fallback = gemini.WithModel(m)
	}

	// Services
	cache := services.NewProxyCache(cfg.Cache.Duration, cfg.Cache.MaxSize, logger)
	weatherService := services.NewWeatherService(weatherClient, cache, logger)
	countryService := services.NewCountryService(countryClient, weatherService, meteoClient, cache, logger)

	// Chat persistence
	var (
		chatLog     chat.Log
		sessions    chat.SessionStore
		pruner      scheduler.SessionPruner
		redisClient *redis.Client
	)
	if cfg.Redis.URL != "" {
		redisClient, err = storage.NewRedisClient(cfg.Redis.URL)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		chatLog = storage.NewRedisChatLog(redisClient, cfg.Chat.LogMaxEntries, logger)
		redisSessions := storage.NewRedisSessionStore(redisClient, cfg.Chat.SessionTTL)
		sessions, pruner = redisSessions, redisSessions
		logger.Info("Using Redis for chat history and sessions")
	} else {
		fileLog, err := storage.NewFileChatLog(cfg.Chat.LogPath, cfg.Chat.LogMaxEntries, logger)
		if err != nil {
			logger.Fatal("Failed to open chat log", zap.String("path", cfg.Chat.LogPath), zap.Error(err))
		}
		chatLog = fileLog
		memorySessions := storage.NewMemorySessionStore(cfg.Chat.SessionTTL, logger)
		sessions, pruner = memorySessions, memorySessions
	}

	orchestrator := chat.NewOrchestrator(gemini, fallback, logger)
	chatService := chat.NewService(orchestrator, weatherService, chatLog, sessions, chat.ServiceOptions{
		HistoryLimit: cfg.Chat.HistoryLimit,
		Configured:   cfg.AssistantConfigured(),
	}, logger)

	// Initialize scheduler
	jobs := scheduler.NewScheduler(
		weatherService,
		pruner,
		cfg.Scheduler.DefaultCities,
		cfg.Scheduler.FetchInterval,
		cfg.Scheduler.PruneInterval,
		logger,
	)

	// Create Fiber app
	app := newApp(cfg)

	// Setup handlers and routes
	handler := api.NewHandler(weatherService, countryService, chatService, jobs, cfg.Server.Port, logger)
	api.SetupRoutes(app, handler, staticDir(cfg.Server.StaticDir, logger), logger)

	jobs.Start()

	// Start server in goroutine
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Info("Starting server", zap.String("address", addr))

		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	jobs.Stop()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	cache.Stop()
	if err := gemini.Close(); err != nil {
		logger.Warn("Failed to close Gemini client", zap.Error(err))
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Warn("Failed to close Redis client", zap.Error(err))
		}
	}

	logger.Info("Server stopped")
}

func newApp(cfg *config.Config) *fiber.App {
	return fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorHandler: api.ErrorHandler,
	})
}

// staticDir returns dir when it exists, otherwise "" so only the API is served.
func staticDir(dir string, logger *zap.Logger) string {
	if dir == "" {
		return ""
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		logger.Warn("Static directory not found, serving API only", zap.String("dir", dir))
		return ""
	}
	return dir
}
