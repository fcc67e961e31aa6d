package stub

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Relay delivers foreground pushes to connected devices, keyed by the device
// token they registered. One token can have several connections.
type Relay struct {
	mu      sync.RWMutex
	byToken map[string]map[*relayClient]struct{}
}

type relayClient struct {
	token string
	send  chan []byte
	once  sync.Once
}

func NewRelay() *Relay {
	return &Relay{byToken: make(map[string]map[*relayClient]struct{})}
}

func (r *Relay) register(c *relayClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byToken[c.token] == nil {
		r.byToken[c.token] = make(map[*relayClient]struct{})
	}
	r.byToken[c.token][c] = struct{}{}
}

func (r *Relay) unregister(c *relayClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m := r.byToken[c.token]; m != nil {
		delete(m, c)
		if len(m) == 0 {
			delete(r.byToken, c.token)
		}
	}
	c.once.Do(func() { close(c.send) })
}

// Send pushes payload to every connection holding token. Unknown or sentinel
// tokens are silently skipped; delivery is best-effort by design.
func (r *Relay) Send(token string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[Relay] marshal: %v", err)
		return
	}
	r.mu.RLock()
	clients := make([]*relayClient, 0, len(r.byToken[token]))
	for c := range r.byToken[token] {
		clients = append(clients, c)
	}
	r.mu.RUnlock()
	for _, c := range clients {
		select {
		case c.send <- data:
		default:
			// Slow consumer; drop rather than block the sender.
		}
	}
}

// Connections reports how many live connections hold token.
func (r *Relay) Connections(token string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byToken[token])
}

// Upgrade handles GET /fcm/ws?token=... and pumps relay frames down the
// connection until the client goes away.
func (r *Relay) Upgrade(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	client := &relayClient{token: token, send: make(chan []byte, 64)}
	r.register(client)
	defer r.unregister(client)
	go writePump(client, conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writePump(c *relayClient, conn *websocket.Conn) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
