package controllers

import (
	"context"
	"crypto/subtle"
	"time"

	"educators_academy_go/config"
	"educators_academy_go/database"
	"educators_academy_go/middleware"
	"educators_academy_go/utils"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct{}

// LoginRequest represents the login request body. There is a single shared
// admin identity, so the password is the whole credential.
type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// Login checks the admin password and returns a JWT token.
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Password is required",
		})
	}

	expected := []byte(config.AppConfig.AdminPassword)
	given := []byte(req.Password)
	if len(expected) == 0 || subtle.ConstantTimeCompare(expected, given) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	token, err := middleware.GenerateAdminToken()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate token",
		})
	}

	middleware.LogActivity(c, "LOGIN", "auth", "", nil)

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
		"role":    "admin",
	})
}

// Logout revokes the current session by blacklisting its token id until the
// token would have expired anyway. Without redis, logout degrades to the
// client discarding the token.
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Not logged in",
		})
	}

	if rc := database.GetRedisClient(); rc != nil && claims.ID != "" {
		ttl := 24 * time.Hour
		if claims.ExpiresAt != nil {
			if remaining := time.Until(claims.ExpiresAt.Time); remaining > 0 {
				ttl = remaining
			}
		}
		key := middleware.BlacklistPrefix + claims.ID
		if err := rc.Set(context.Background(), key, "1", ttl).Err(); err != nil {
			middleware.LogActivity(c, "LOGOUT", "auth", "", fiber.Map{"error": err.Error()})
		}
	}

	middleware.LogActivity(c, "LOGOUT", "auth", "", nil)

	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}
