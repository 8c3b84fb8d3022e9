package controllers

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"educators_academy_go/config"
	"educators_academy_go/middleware"

	"github.com/gofiber/fiber/v2"
)

func setupAuthTest(t *testing.T) *fiber.App {
	t.Helper()
	config.AppConfig = &config.Config{
		AdminPassword: "55",
		JWTSecret:     "test-secret-key-1234567890",
		JWTExpiresIn:  time.Hour,
	}

	app := fiber.New()
	ac := &AuthController{}
	app.Post("/api/auth/login", ac.Login)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var decoded map[string]interface{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp.StatusCode, decoded
}

func TestLogin(t *testing.T) {
	app := setupAuthTest(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantToken  bool
	}{
		{
			name:       "correct password",
			body:       `{"password":"55"}`,
			wantStatus: fiber.StatusOK,
			wantToken:  true,
		},
		{
			name:       "wrong password",
			body:       `{"password":"wrong"}`,
			wantStatus: fiber.StatusUnauthorized,
		},
		{
			name:       "empty password",
			body:       `{"password":""}`,
			wantStatus: fiber.StatusBadRequest,
		},
		{
			name:       "malformed body",
			body:       `not json`,
			wantStatus: fiber.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			status, body := postJSON(t, app, "/api/auth/login", tc.body)
			if status != tc.wantStatus {
				t.Fatalf("expected status %d, got %d (%v)", tc.wantStatus, status, body)
			}
			token, _ := body["token"].(string)
			if tc.wantToken && token == "" {
				t.Fatalf("expected a token in the response, got %v", body)
			}
			if !tc.wantToken && token != "" {
				t.Fatalf("unexpected token for failed login")
			}
		})
	}
}

func TestLoginTokenAuthorizesAdminRoutes(t *testing.T) {
	app := setupAuthTest(t)

	app.Get("/api/admin/ping", middleware.JWTMiddleware(), middleware.RequireAdmin(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"pong": true})
	})

	_, body := postJSON(t, app, "/api/auth/login", `{"password":"55"}`)
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("login did not return a token")
	}

	req := httptest.NewRequest("GET", "/api/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 with valid token, got %d", resp.StatusCode)
	}

	// Same route without a token is rejected.
	req = httptest.NewRequest("GET", "/api/admin/ping", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}

	// A garbage token is rejected too.
	req = httptest.NewRequest("GET", "/api/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for invalid token, got %d", resp.StatusCode)
	}
}
