package fakeapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"warimas-storefront/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type wsClient struct {
	userID string
	send   chan chatFrame
}

// hub fans chat frames out to every connection and notifications to the
// connections of one user.
type hub struct {
	mu      sync.Mutex
	clients map[*wsClient]bool
}

func newHub() *hub {
	return &hub{clients: make(map[*wsClient]bool)}
}

func (h *hub) add(c *wsClient) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
}

func (h *hub) remove(c *wsClient) {
	h.mu.Lock()
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *hub) broadcast(f chatFrame, match func(*wsClient) bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if !match(c) {
			continue
		}
		select {
		case c.send <- f:
		default:
			// slow reader, drop the frame
		}
	}
}

func (h *hub) notify(userID, content string) {
	h.broadcast(chatFrame{
		ID:             uuid.NewString(),
		ConversationID: "notifications:" + userID,
		SenderID:       "system",
		Content:        content,
		SentAt:         time.Now().UTC(),
		Kind:           "notification",
	}, func(c *wsClient) bool { return c.userID == userID })
}

type inboundFrame struct {
	ConversationID string `json:"conversationId"`
	Content        string `json:"content"`
}

func (s *Server) serveWS(c *gin.Context) {
	s.mu.Lock()
	u, valid := s.authenticate(bearerToken(c.Request))
	s.mu.Unlock()
	if !valid {
		fail(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := &wsClient{userID: u.ID, send: make(chan chatFrame, 32)}
	s.hub.add(client)
	log := logger.L().With(zap.String("layer", "fakeapi"), zap.String("user_id", u.ID))
	log.Debug("websocket connected")

	go func() {
		for f := range client.send {
			if err := conn.WriteJSON(f); err != nil {
				log.Debug("websocket write failed", zap.Error(err))
				return
			}
		}
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}()

	defer func() {
		s.hub.remove(client)
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var in inboundFrame
		if json.Unmarshal(data, &in) != nil || strings.TrimSpace(in.Content) == "" {
			continue
		}
		s.hub.broadcast(chatFrame{
			ID:             uuid.NewString(),
			ConversationID: in.ConversationID,
			SenderID:       u.ID,
			Content:        in.Content,
			SentAt:         time.Now().UTC(),
			Kind:           "chat",
		}, func(*wsClient) bool { return true })
	}
}

// Notify pushes a notification frame to every connection of userID.
func (s *Server) Notify(userID, content string) {
	s.hub.notify(userID, content)
}

// Connections reports the number of open websocket connections.
func (s *Server) Connections() int {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	return len(s.hub.clients)
}
