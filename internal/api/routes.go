package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
)

// SetupRoutes registers middleware, the JSON API and, when staticDir is
// set, the browser frontend.
func SetupRoutes(app *fiber.App, handler *Handler, staticDir string, log *zap.Logger) {
	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,OPTIONS",
	}))

	app.Use(logger.New(logger.Config{
		Format:     "${time} ${pid} ${locals:requestid} ${status} - ${method} ${path}\n",
		TimeFormat: time.RFC3339,
	}))

	api := app.Group("/api")

	api.Get("/health", handler.GetHealth)
	api.Get("/metrics", handler.GetMetrics)

	// Upstream proxies
	api.Get("/weather/:city", handler.GetWeather)
	api.Post("/weather/refresh", handler.RefreshWeather)
	api.Get("/country/:name", handler.GetCountry)
	api.Get("/profile/:country", handler.GetProfile)

	// Assistant
	api.Post("/gemini", handler.PostGemini)
	api.Post("/chat", handler.PostChat)
	api.Get("/chat-history", handler.GetChatHistory)

	// Server-held conversations
	api.Post("/sessions", handler.CreateSession)
	api.Get("/sessions/:id", handler.GetSession)
	api.Post("/sessions/:id/messages", handler.PostSessionMessage)

	if staticDir != "" {
		log.Info("Serving frontend", zap.String("dir", staticDir))
		app.Static("/", staticDir)
	}

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Endpoint not found",
			"path":  c.Path(),
		})
	})
}

// ErrorHandler renders errors that escape a handler as JSON.
func ErrorHandler(c *fiber.Ctx, err error) error {
	zap.L().Error("HTTP error",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err))

	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   err.Error(),
		"success": false,
	})
}
