package routes

import (
	ws "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	config "github.com/scifunedu/scifun_backend/configs"
	hub "github.com/scifunedu/scifun_backend/websocket"
)

// WebsocketRoutes exposes the notification stream. The browser cannot set
// headers on a websocket handshake, so the JWT rides in a query param.
func WebsocketRoutes(app *fiber.App) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if ws.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/notifications", ws.New(func(conn *ws.Conn) {
		token, err := jwt.Parse(conn.Query("token"), func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(config.Config("JWT_SECRET")), nil
		})
		if err != nil || !token.Valid {
			conn.Close()
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			conn.Close()
			return
		}
		raw, _ := claims["user_id"].(string)
		userID, err := uuid.Parse(raw)
		if err != nil {
			conn.Close()
			return
		}

		client := &hub.Client{UserID: userID, Conn: conn}
		hub.Register <- client
		defer func() { hub.Unregister <- client }()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}
