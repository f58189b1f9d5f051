package live

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cesargomez89/requestline/internal/constants"
	"github.com/cesargomez89/requestline/internal/domain"
	"github.com/cesargomez89/requestline/internal/logger"
)

// Client is one websocket listener attached to a session.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
}

type message struct {
	sessionID string
	data      []byte
	closing   bool
}

// Hub keeps the listeners of every session and fans events out to them.
type Hub struct {
	sessions   map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
	done       chan struct{}
	logger     *logger.Logger
	upgrader   websocket.Upgrader
	stopOnce   sync.Once
	mu         sync.RWMutex
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		sessions:   make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 256),
		done:       make(chan struct{}),
		logger:     log.WithComponent("live"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Run is the hub's main loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.add(c)
		case c := <-h.unregister:
			h.remove(c)
		case msg := <-h.broadcast:
			h.deliver(msg)
		case <-h.done:
			h.cleanup()
			return
		}
	}
}

// Stop ends Run and disconnects every listener.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Publish sends ev to the listeners of its session. It never blocks once the
// hub is stopped.
func (h *Hub) Publish(ev domain.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("Failed to encode event", "type", ev.Type, "error", err)
		return
	}
	msg := message{
		sessionID: ev.SessionID,
		data:      data,
		closing:   ev.Type == domain.EventSessionClosed,
	}
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

// ClientCount returns the number of listeners attached to a session.
func (h *Hub) ClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

// ServeWS upgrades the request and attaches the connection to sessionID
// until either side closes it.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", "session_id", sessionID, "error", err)
		return
	}

	c := &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, constants.LiveSendBuffer),
		sessionID: sessionID,
	}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	c.readPump()
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.sessions[c.sessionID]
	if clients == nil {
		clients = make(map[*Client]struct{})
		h.sessions[c.sessionID] = clients
	}
	clients[c] = struct{}{}
	h.logger.Debug("Listener attached", "session_id", c.sessionID, "listeners", len(clients))
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(c)
}

// drop detaches c. Callers hold mu.
func (h *Hub) drop(c *Client) {
	clients, ok := h.sessions[c.sessionID]
	if !ok {
		return
	}
	if _, ok := clients[c]; !ok {
		return
	}
	delete(clients, c)
	close(c.send)
	if len(clients) == 0 {
		delete(h.sessions, c.sessionID)
	}
	h.logger.Debug("Listener detached", "session_id", c.sessionID)
}

func (h *Hub) deliver(msg message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.sessions[msg.sessionID] {
		select {
		case c.send <- msg.data:
		default:
			h.logger.Warn("Dropping slow listener", "session_id", msg.sessionID)
			h.drop(c)
			continue
		}
		if msg.closing {
			h.drop(c)
		}
	}
}

func (h *Hub) cleanup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.sessions {
		for c := range clients {
			close(c.send)
		}
	}
	h.sessions = make(map[string]map[*Client]struct{})
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(constants.LiveReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(constants.LivePongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(constants.LivePongWait))
	})

	// Listeners only receive; inbound frames are discarded.
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("Websocket read error", "session_id", c.sessionID, "error", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(constants.LivePingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(constants.LiveWriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(constants.LiveWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
