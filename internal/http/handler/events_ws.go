package handler

import (
	"backend-penjemputan/internal/config"
	"backend-penjemputan/internal/realtime"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WSUpgrade cek handshake websocket + validasi JWT dari query (?token=).
// Browser tidak bisa set Authorization header di koneksi WS.
func WSUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		claims, err := config.ValidateToken(c.Query("token"))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("role", claims.Role)
		return c.Next()
	}
}

// EventsWebSocket - Stream event realtime (queue/transfer/override/notif).
// Server tidak baca command dari client; read loop cuma untuk deteksi close
// dan pong.
func EventsWebSocket(c *websocket.Conn) {
	userID := c.Locals("user_id").(int64)
	log.Printf("[events] user %d connect dari %s", userID, c.RemoteAddr())

	realtime.Events.Register <- c
	defer func() {
		realtime.Events.Unregister <- c
	}()

	c.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.SetPongHandler(func(string) error {
		c.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// Ping datang dari broadcaster hub (single writer); read loop di sini
	// cuma memperpanjang deadline dan deteksi close.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure,
			) {
				log.Printf("[events] user %d unexpected close: %v", userID, err)
			} else {
				log.Printf("[events] user %d closed", userID)
			}
			return
		}
	}
}
