// Package websocket holds the live notification connections, one per user.
package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"usermanagement_server/internal/service/notify"
	"usermanagement_server/pkg/constants"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one user's connection. Messages flow server -> client only;
// whatever the client sends is read and discarded so close frames are seen.
type Client struct {
	conn   *websocket.Conn
	userId int64
	send   chan []byte
	once   sync.Once
}

func (c *Client) close() {
	c.once.Do(func() {
		close(c.send)
		_ = c.conn.Close()
	})
}

// ConnManager maps user ids to their live connection. A new connection
// replaces the previous one for the same user.
type ConnManager struct {
	mu      sync.RWMutex
	clients map[int64]*Client
}

func NewConnManager() *ConnManager {
	return &ConnManager{clients: make(map[int64]*Client)}
}

// Serve upgrades the request and starts the read and write loops for userId.
func (m *ConnManager) Serve(w http.ResponseWriter, r *http.Request, userId int64) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	client := &Client{
		conn:   conn,
		userId: userId,
		send:   make(chan []byte, constants.CHANNEL_SIZE),
	}

	m.mu.Lock()
	old := m.clients[userId]
	m.clients[userId] = client
	m.mu.Unlock()
	if old != nil {
		old.close()
	}

	go m.read(client)
	go m.write(client)
	zap.L().Info("ws connected", zap.Int64("user_id", userId))
	return nil
}

func (m *ConnManager) read(c *Client) {
	defer m.unregister(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.L().Warn("ws read", zap.Int64("user_id", c.userId), zap.Error(err))
			}
			return
		}
	}
}

func (m *ConnManager) write(c *Client) {
	defer m.unregister(c)
	for payload := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			zap.L().Warn("ws write", zap.Int64("user_id", c.userId), zap.Error(err))
			return
		}
	}
}

func (m *ConnManager) unregister(c *Client) {
	m.mu.Lock()
	if m.clients[c.userId] == c {
		delete(m.clients, c.userId)
	}
	m.mu.Unlock()
	c.close()
}

// SendLive queues msg for recipient's connection. It never blocks: a missing
// connection or a full buffer reports false so the caller can fall back to the queue.
func (m *ConnManager) SendLive(recipient int64, msg notify.Message) bool {
	payload, err := json.Marshal(msg)
	if err != nil {
		zap.L().Error("encode live message", zap.Error(err))
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.clients[recipient]
	if !ok {
		return false
	}
	// clients are closed only after leaving the map, so c.send is open here
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// Connected reports whether userId has a live connection.
func (m *ConnManager) Connected(userId int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.clients[userId]
	return ok
}

// Count returns the number of live connections.
func (m *ConnManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// CloseAll drops every connection.
func (m *ConnManager) CloseAll() {
	m.mu.Lock()
	clients := m.clients
	m.clients = make(map[int64]*Client)
	m.mu.Unlock()
	for _, c := range clients {
		c.close()
	}
}
