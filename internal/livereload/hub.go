// Package livereload pushes reload notifications to connected browsers
// and renders build reports for the operator console.
package livereload

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/rs/zerolog/log"
)

// Status describes the hub's connection-health state, shown in the
// watch-mode header.
type Status string

const (
	StatusWaiting      Status = "waiting"
	StatusNoConnection Status = "no connection"
	StatusConnected    Status = "connected"
)

// SiteSession is the cached view of the most recently reporting client's
// metadata. Last write wins; used only for display.
type SiteSession struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Version string `json:"version"`
}

// Client is one connected browser session.
type Client struct {
	ID   string
	conn *websocket.Conn
	mu   sync.Mutex
}

// Send writes a plain-text message to the client.
func (c *Client) Send(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, []byte(text))
}

// Hub owns the set of connected clients and the current site session.
// All shared display state lives here and is mutated only through its
// methods.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	session *SiteSession
	status  Status
	grace   *time.Timer
}

// NewHub creates an empty hub in the waiting state.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		status:  StatusWaiting,
	}
}

// StartGraceTimer arms the connection-health timer: if no client has
// connected when d elapses, the status flips to "no connection". The
// first connection cancels the timer. Purely cosmetic; the build
// pipeline is unaffected.
func (h *Hub) StartGraceTimer(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grace != nil {
		h.grace.Stop()
	}
	h.grace = time.AfterFunc(d, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if len(h.clients) == 0 {
			h.status = StatusNoConnection
			log.Warn().Msg("No browser connected to the live-reload channel")
		}
	})
}

// Add registers a new client connection and reports it as the current
// one. Cancels a pending grace timer.
func (h *Hub) Add(id string, conn *websocket.Conn) *Client {
	client := &Client{ID: id, conn: conn}

	h.mu.Lock()
	h.clients[id] = client
	h.status = StatusConnected
	if h.grace != nil {
		h.grace.Stop()
		h.grace = nil
	}
	count := len(h.clients)
	h.mu.Unlock()

	log.Info().Str("client_id", id).Int("clients", count).Msg("Browser connected")

	return client
}

// Remove drops a client connection.
func (h *Hub) Remove(id string) {
	h.mu.Lock()
	delete(h.clients, id)
	count := len(h.clients)
	h.mu.Unlock()

	log.Info().Str("client_id", id).Int("clients", count).Msg("Browser disconnected")
}

// Broadcast sends a plain-text message to every currently-connected
// client. Clients whose transport fails are dropped.
func (h *Hub) Broadcast(text string) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	var failed []string
	for _, c := range clients {
		if err := c.Send(text); err != nil {
			log.Debug().Err(err).Str("client_id", c.ID).Msg("Failed to send, dropping client")
			failed = append(failed, c.ID)
		}
	}

	for _, id := range failed {
		h.Remove(id)
	}
}

// HandleMessage parses an inbound client metadata message ({url, title,
// version}) and caches it as the current site session. Malformed
// payloads are logged and ignored rather than terminating the session.
func (h *Hub) HandleMessage(data []byte) {
	var session SiteSession
	if err := json.Unmarshal(data, &session); err != nil {
		log.Warn().Err(err).Msg("Ignoring malformed client metadata")
		return
	}

	h.mu.Lock()
	h.session = &session
	h.mu.Unlock()

	log.Debug().
		Str("url", session.URL).
		Str("title", session.Title).
		Str("version", session.Version).
		Msg("Site session updated")
}

// Session returns the most recently reported site metadata, or nil.
func (h *Hub) Session() *SiteSession {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.session
}

// Status returns the current connection-health state.
func (h *Hub) Status() Status {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.status
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
