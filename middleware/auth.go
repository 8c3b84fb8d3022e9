package middleware

import (
	"context"
	"strings"
	"time"

	"educators_academy_go/config"
	"educators_academy_go/database"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// BlacklistPrefix is the redis key prefix for revoked token ids.
const BlacklistPrefix = "blacklist:jwt:"

// Claims carries the admin session. There is a single shared admin identity,
// so the token holds a role and a unique id for revocation but no user id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateAdminToken creates a JWT for the shared admin session.
func GenerateAdminToken() (string, error) {
	now := time.Now()
	claims := &Claims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(config.AppConfig.JWTExpiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.JWTSecret))
}

// JWTMiddleware validates the bearer token and rejects revoked sessions.
func JWTMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authorization header",
			})
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header format",
			})
		}

		token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
			return []byte(config.AppConfig.JWTSecret), nil
		})
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		claims, ok := token.Claims.(*Claims)
		if !ok || !token.Valid {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token claims",
			})
		}

		if isBlacklisted(c.Context(), claims.ID) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Session has been revoked",
			})
		}

		c.Locals("claims", claims)
		return c.Next()
	}
}

// RequireAdmin checks the role carried by the validated claims.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals("claims").(*Claims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing user claims",
			})
		}
		if claims.Role != "admin" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Insufficient permissions",
			})
		}
		return c.Next()
	}
}

// GetCurrentClaims returns the current JWT claims.
func GetCurrentClaims(c *fiber.Ctx) (*Claims, error) {
	claims, ok := c.Locals("claims").(*Claims)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Claims not found in context")
	}
	return claims, nil
}

// isBlacklisted consults redis for a revoked token id. Without redis,
// revocation degrades to token expiry.
func isBlacklisted(ctx context.Context, tokenID string) bool {
	rdb := database.GetRedisClient()
	if rdb == nil || tokenID == "" {
		return false
	}
	exists, err := rdb.Exists(ctx, BlacklistPrefix+tokenID).Result()
	if err != nil {
		return false
	}
	return exists > 0
}
