// Package api streams dashboard events to browsers over Server-Sent Events.
package api

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"heartdash/internal"

	"github.com/gin-gonic/gin"
)

var logger = internal.DefaultLogger.Component("SSE")

// Event types
const (
	EventDataReloaded = "data-reloaded"
	EventReloadFailed = "reload-failed"
)

// allSessions is the bucket of clients that did not name a session
const allSessions = "*"

// SSEClient represents a connected SSE client
type SSEClient struct {
	SessionID string
	Channel   chan DashboardEvent
}

// DashboardEvent is pushed to browsers. An empty SessionID reaches every
// client.
type DashboardEvent struct {
	SessionID string         `json:"session_id,omitempty"`
	EventType string         `json:"event_type"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// SSEHub manages Server-Sent Events for dashboard updates
type SSEHub struct {
	clients    map[string]map[chan DashboardEvent]bool
	clientsMu  sync.RWMutex
	register   chan SSEClient
	unregister chan SSEClient
	broadcast  chan DashboardEvent
	done       chan struct{}
	closeOnce  sync.Once

	// KeepAlive is the ping interval of idle streams
	KeepAlive time.Duration
}

// NewSSEHub creates a new SSE hub
func NewSSEHub() *SSEHub {
	hub := &SSEHub{
		clients:    make(map[string]map[chan DashboardEvent]bool),
		register:   make(chan SSEClient, 10),
		unregister: make(chan SSEClient, 10),
		broadcast:  make(chan DashboardEvent, 100),
		done:       make(chan struct{}),
		KeepAlive:  30 * time.Second,
	}

	go hub.run()
	return hub
}

// Close stops the hub loop
func (h *SSEHub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// run processes SSE hub operations
func (h *SSEHub) run() {
	for {
		select {
		case <-h.done:
			return

		case client := <-h.register:
			h.clientsMu.Lock()
			if h.clients[client.SessionID] == nil {
				h.clients[client.SessionID] = make(map[chan DashboardEvent]bool)
			}
			h.clients[client.SessionID][client.Channel] = true
			logger.Debug("Client registered for session %s (total clients: %d)",
				client.SessionID, len(h.clients[client.SessionID]))
			h.clientsMu.Unlock()

		case client := <-h.unregister:
			h.clientsMu.Lock()
			if clients, exists := h.clients[client.SessionID]; exists {
				delete(clients, client.Channel)
				logger.Debug("Client unregistered from session %s (remaining clients: %d)",
					client.SessionID, len(clients))
				if len(clients) == 0 {
					delete(h.clients, client.SessionID)
				}
			}
			h.clientsMu.Unlock()

		case event := <-h.broadcast:
			h.clientsMu.RLock()
			for sessionID, clients := range h.clients {
				if event.SessionID != "" && sessionID != event.SessionID && sessionID != allSessions {
					continue
				}
				for clientChan := range clients {
					select {
					case clientChan <- event:
					default:
						logger.Warn("Client channel full for session %s, skipping event", sessionID)
					}
				}
			}
			h.clientsMu.RUnlock()
		}
	}
}

// Broadcast queues an event for delivery
func (h *SSEHub) Broadcast(event DashboardEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case h.broadcast <- event:
	default:
		logger.Warn("Broadcast channel full, dropping event: %s", event.EventType)
	}
}

// Notify broadcasts an event to every client
func (h *SSEHub) Notify(eventType string, data map[string]any) {
	h.Broadcast(DashboardEvent{EventType: eventType, Data: data})
}

// HandleSSE streams events. session_id is optional; without it the client
// receives every event.
func (h *SSEHub) HandleSSE(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		sessionID = allSessions
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	clientChan := make(chan DashboardEvent, 10)

	select {
	case h.register <- SSEClient{SessionID: sessionID, Channel: clientChan}:
	default:
		c.JSON(500, gin.H{"error": "SSE hub registration failed"})
		return
	}

	defer func() {
		select {
		case h.unregister <- SSEClient{SessionID: sessionID, Channel: clientChan}:
		default:
		}
	}()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case event := <-clientChan:
			eventJSON, err := json.Marshal(event)
			if err != nil {
				logger.Error("Failed to marshal event: %v", err)
				return true
			}
			c.SSEvent(event.EventType, string(eventJSON))
			return true

		case <-time.After(h.KeepAlive):
			c.SSEvent("ping", `{"status": "alive", "timestamp": "`+time.Now().Format(time.RFC3339)+`"}`)
			return true

		case <-ctx.Done():
			return false
		}
	})
}

// GetActiveSessions returns sessions with active SSE clients
func (h *SSEHub) GetActiveSessions() []string {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()

	sessions := make([]string, 0, len(h.clients))
	for sessionID := range h.clients {
		sessions = append(sessions, sessionID)
	}
	return sessions
}

// GetClientCount returns the number of active clients for a session
func (h *SSEHub) GetClientCount(sessionID string) int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()

	if clients, exists := h.clients[sessionID]; exists {
		return len(clients)
	}
	return 0
}
