package livereload

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Server exposes the live-reload WebSocket endpoint.
type Server struct {
	app  *fiber.App
	hub  *Hub
	addr string
}

// NewServer creates the fiber app serving the hub at addr.
func NewServer(hub *Hub, addr string) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{app: app, hub: hub, addr: addr}

	app.Use("/livereload", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	app.Get("/livereload", websocket.New(s.handleConnection))

	app.Get("/status", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  s.hub.Status(),
			"clients": s.hub.Count(),
			"session": s.hub.Session(),
		})
	})

	return s
}

// Start listens on the configured address and blocks until shutdown.
func (s *Server) Start() error {
	return s.app.Listen(s.addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// handleConnection runs the read loop for one browser connection.
// Inbound text frames carry site metadata reported by the reload
// snippet after connecting.
func (s *Server) handleConnection(c *websocket.Conn) {
	id := uuid.New().String()
	s.hub.Add(id, c)
	defer func() {
		s.hub.Remove(id)
		_ = c.Close()
	}()

	for {
		messageType, data, err := c.ReadMessage()
		if err != nil {
			return
		}
		if messageType == websocket.TextMessage {
			s.hub.HandleMessage(data)
		}
	}
}
