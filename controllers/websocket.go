package controllers

import (
	"educators_academy_go/services/websocket"

	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
)

// WebSocketController exposes the live-update channel clients subscribe to
// for data-changed events.
type WebSocketController struct {
	hub *websocket.Hub
}

func NewWebSocketController(hub *websocket.Hub) *WebSocketController {
	return &WebSocketController{hub: hub}
}

// Handler upgrades the connection and attaches it to the hub.
func (wc *WebSocketController) Handler() fiber.Handler {
	return fiberws.New(func(c *fiberws.Conn) {
		wc.hub.ServeConn(c)
	})
}

// Stats reports the number of connected clients.
func (wc *WebSocketController) Stats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"connected_clients": wc.hub.ClientCount()})
}
