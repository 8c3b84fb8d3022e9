package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"educators_academy_go/database"
	"educators_academy_go/models"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// LoggerMiddleware logs HTTP requests
func LoggerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start)
		logrus.WithFields(logrus.Fields{
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     c.Response().StatusCode(),
			"duration":   duration.String(),
			"ip":         c.IP(),
			"user_agent": c.Get("User-Agent"),
		}).Info("HTTP Request")

		return err
	}
}

// LogActivity records an admin mutation. Logs are cached in redis first; when
// redis is unavailable they go straight to the database. Logging is
// best-effort and never blocks or fails the request.
func LogActivity(c *fiber.Ctx, action, resource, resourceID string, details interface{}) {
	var detailsJSON models.JSON
	if details != nil {
		if detailsBytes, err := json.Marshal(details); err == nil {
			detailsJSON = detailsBytes
		}
	}

	entry := models.ActivityLog{
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Details:    detailsJSON,
		IPAddress:  c.IP(),
		UserAgent:  c.Get("User-Agent"),
	}

	go func(al models.ActivityLog) {
		defer func() {
			if r := recover(); r != nil {
				logrus.WithField("panic", r).Error("panic recovered in LogActivity goroutine")
			}
		}()

		if err := cacheActivityLog(al); err != nil {
			if database.DB == nil {
				logrus.Error("database.DB is nil; cannot save activity log")
				return
			}
			if dbErr := database.DB.Create(&al).Error; dbErr != nil {
				logrus.WithError(dbErr).Error("Failed to save activity log to database")
			}
		}
	}(entry)
}

// cacheActivityLog stores an activity log in redis with a 24-hour TTL.
func cacheActivityLog(entry models.ActivityLog) error {
	redisClient := database.GetRedisClient()
	if redisClient == nil {
		return fmt.Errorf("redis client is nil")
	}

	logData, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal log: %v", err)
	}

	cacheKey := fmt.Sprintf("log:%s:%s:%d", entry.Resource, entry.Action, time.Now().UnixNano())
	ctx := context.Background()
	if err := redisClient.Set(ctx, cacheKey, logData, 24*time.Hour).Err(); err != nil {
		return fmt.Errorf("failed to cache log: %v", err)
	}

	// Queue for the periodic flush into the database.
	if err := redisClient.ZAdd(ctx, "logs:queue", &redis.Z{
		Score:  float64(time.Now().Unix()),
		Member: cacheKey,
	}).Err(); err != nil {
		logrus.WithError(err).Error("Failed to add log to processing queue")
	}
	return nil
}

// LogActivityMiddleware automatically logs successful mutations on the admin
// surface.
func LogActivityMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == "GET" || strings.Contains(c.Path(), "/auth/") {
			return c.Next()
		}

		err := c.Next()

		var action string
		switch c.Method() {
		case "POST":
			action = "CREATE"
		case "PUT", "PATCH":
			action = "UPDATE"
		case "DELETE":
			action = "DELETE"
		default:
			return err
		}

		pathParts := strings.Split(strings.Trim(c.Path(), "/"), "/")
		var resource string
		if len(pathParts) >= 3 {
			// assumes /api/admin/resource format
			resource = pathParts[2]
		}

		if c.Response().StatusCode() < 400 {
			LogActivity(c, action, resource, c.Params("id"), nil)
		}

		return err
	}
}
