package main

import (
	"context"
	"errors"
	"log"
	"os"

	"educators_academy_go/config"
	"educators_academy_go/database"
	"educators_academy_go/middleware"
	"educators_academy_go/routes"
	"educators_academy_go/services"
	"educators_academy_go/services/ai"
	"educators_academy_go/services/websocket"
	"educators_academy_go/storage"
	"educators_academy_go/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

func init() {
	config.LoadConfig()
	setupLogging()
	database.Connect()
}

func main() {
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Gemini adapter; a missing key disables the assistant but not the rest.
	var parser ai.Parser
	geminiParser, err := ai.NewGeminiParser(context.Background(), config.AppConfig.GeminiAPIKey, config.AppConfig.GeminiModel)
	switch {
	case err == nil:
		parser = geminiParser
		defer geminiParser.Close()
	case errors.Is(err, ai.ErrNoCredential):
		logrus.Warn("GEMINI_API_KEY not set, voice assistant disabled")
	default:
		logrus.WithError(err).Error("Failed to initialize Gemini client, voice assistant disabled")
	}

	gateway := store.NewGormStore()
	academy := services.NewAcademy(gateway, parser)
	academy.SetWebSocketHub(wsHub)
	academy.Bootstrap()

	backup := services.NewBackupService(academy)
	if err := backup.Start(); err != nil {
		logrus.WithError(err).Warn("Backup scheduler not started")
	}
	defer backup.Stop()

	var storageService *storage.StorageService
	if svc, err := storage.NewStorageService(); err != nil {
		logrus.WithError(err).Warn("File uploads disabled")
	} else {
		storageService = svc
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    int(config.AppConfig.MaxFileSize),
	})

	app.Use(recover.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	app.Use(middleware.LoggerMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"service":   "Educators Academy API",
			"version":   "1.0.0",
			"assistant": academy.AssistantEnabled(),
		})
	})

	routes.SetupRoutes(app, academy, storageService, wsHub)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":  "Route not found",
			"path":   c.Path(),
			"method": c.Method(),
		})
	})

	logrus.WithFields(logrus.Fields{
		"port": config.AppConfig.Port,
		"env":  config.AppConfig.AppEnv,
	}).Info("Server starting")

	if err := app.Listen(":" + config.AppConfig.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// setupLogging configures the logging system
func setupLogging() {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(config.AppConfig.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if config.AppConfig.AppEnv == "development" {
		logrus.SetOutput(os.Stdout)
		return
	}

	if err := os.MkdirAll("logs", 0755); err != nil {
		log.Printf("Warning: Could not create logs directory: %v", err)
	}
	file, err := os.OpenFile(config.AppConfig.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err == nil {
		logrus.SetOutput(file)
	}
}

// customErrorHandler handles application errors
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	logrus.WithFields(logrus.Fields{
		"error":  err.Error(),
		"path":   c.Path(),
		"method": c.Method(),
		"ip":     c.IP(),
		"status": code,
	}).Error("Request error")

	return c.Status(code).JSON(fiber.Map{
		"error":  message,
		"code":   code,
		"path":   c.Path(),
		"method": c.Method(),
	})
}
