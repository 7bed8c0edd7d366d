package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/FocuswithJustin/hindilts/internal/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 4096
	// messageRate is the per-client limit on incoming messages per second.
	messageRate = 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are checked before Upgrade against the configured list.
	CheckOrigin: func(*http.Request) bool { return true },
}

// ProgressMessage is a job update broadcast to every client.
type ProgressMessage struct {
	Type      string         `json:"type"` // "progress", "complete", "error"
	Operation string         `json:"operation"`
	JobID     string         `json:"job_id,omitempty"`
	Stage     string         `json:"stage,omitempty"`
	Progress  int            `json:"progress"`
	Message   string         `json:"message,omitempty"`
	Timestamp string         `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// Client is one WebSocket connection. Each text message it sends is a
// list of words, either whitespace separated or as {"words": [...]}; each
// word is answered with its own Transcription message.
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	phonemiser Phonemiser
	limiter    *tokenBucket
}

// Hub tracks connected clients and fans out job progress to them.
type Hub struct {
	mu        sync.RWMutex
	clients   map[*Client]bool
	broadcast chan []byte
}

// NewHub creates a new WebSocket hub.
func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*Client]bool),
		broadcast: make(chan []byte, 256),
	}
}

// Run delivers broadcasts until ctx is done, then disconnects everyone.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			return

		case message := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					// slow consumer
					delete(h.clients, c)
					close(c.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	n := len(h.clients)
	h.mu.Unlock()
	logging.WebSocketEvent("client_connected", n)
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	logging.WebSocketEvent("client_disconnected", n)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues msg for every client, dropping it if the queue is full.
func (h *Hub) Broadcast(msg ProgressMessage) {
	if msg.Timestamp == "" {
		msg.Timestamp = now()
	}
	data, err := json.Marshal(msg)
	if err != nil {
		logging.Error("failed to marshal progress message", "error", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		logging.Warn("broadcast channel full, dropping message", "type", msg.Type)
	}
}

// reply queues a message for this client only. It must not be called
// after the hub has closed c.send.
func (c *Client) reply(v any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		return false
	}
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if !c.hub.clients[c] {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Warn("websocket unexpected close", "error", err)
			}
			return
		}
		if ok, _, _ := c.limiter.take(); !ok {
			c.reply(Transcription{Error: "rate limit exceeded"})
			continue
		}
		for _, word := range parseWords(message) {
			if !c.reply(c.transcribe(word)) {
				return
			}
		}
	}
}

func (c *Client) transcribe(word string) Transcription {
	phones, err := c.phonemiser.Phonemise(word)
	if err != nil {
		return Transcription{Word: word, Error: err.Error()}
	}
	return Transcription{Word: word, Phones: phones}
}

func parseWords(message []byte) []string {
	text := strings.TrimSpace(string(message))
	if strings.HasPrefix(text, "{") {
		var req WordsRequest
		if err := json.Unmarshal([]byte(text), &req); err == nil {
			return req.Words
		}
	}
	return strings.Fields(text)
}

// writePump sends one frame per queued message and keeps the connection
// alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !originAllowed(s.cfg.AllowedOrigins, r) {
		logging.SecurityEvent("origin_rejected", "websocket", "origin", r.Header.Get("Origin"))
		respondError(w, http.StatusForbidden, "ORIGIN_NOT_ALLOWED", "Origin not allowed")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.ErrorContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		hub:        s.hub,
		conn:       conn,
		send:       make(chan []byte, 256),
		phonemiser: s.phonemiser,
		limiter:    newTokenBucket(2*messageRate, messageRate),
	}
	s.hub.register(client)

	go client.writePump()
	go client.readPump()
}
