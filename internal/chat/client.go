package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"warimas-storefront/internal/apiclient"
	"warimas-storefront/internal/logger"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const DefaultReconnectDelay = 2 * time.Second

// TokenSource is the part of the session the chat connection depends on.
type TokenSource interface {
	Token() string
	DeviceID(ctx context.Context) (string, error)
	OnTokenChange(fn func(token string)) (unsubscribe func())
}

type Config struct {
	// URL is the websocket endpoint, e.g. ws://localhost:8080/ws.
	URL            string
	ReconnectDelay time.Duration
	Dialer         *websocket.Dialer
}

// Client keeps one websocket open for chat and notifications. It reconnects
// after a dropped connection and whenever the access token changes.
type Client struct {
	cfg    Config
	tokens TokenSource

	mu      sync.Mutex
	conn    *websocket.Conn
	seen    map[string]bool
	history map[string][]Message

	writeMu      sync.Mutex
	tokenChanged chan struct{}
}

func New(cfg Config, tokens TokenSource) *Client {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}
	if cfg.Dialer == nil {
		cfg.Dialer = websocket.DefaultDialer
	}
	return &Client{
		cfg:          cfg,
		tokens:       tokens,
		seen:         make(map[string]bool),
		history:      make(map[string][]Message),
		tokenChanged: make(chan struct{}, 1),
	}
}

// Run connects and delivers each new message to handler until ctx is done.
// Duplicates are dropped before handler sees them. handler runs on the
// reader goroutine.
func (c *Client) Run(ctx context.Context, handler func(Message)) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "chat"),
		zap.String("url", c.cfg.URL),
	)

	unsubscribe := c.tokens.OnTokenChange(func(string) {
		select {
		case c.tokenChanged <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	for {
		conn, err := c.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn("chat dial failed", zap.Error(err))
			if err := c.wait(ctx); err != nil {
				return err
			}
			continue
		}

		c.setConn(conn)
		log.Info("chat connected")

		readErr := make(chan error, 1)
		go func() { readErr <- c.readLoop(ctx, conn, handler) }()

		select {
		case <-ctx.Done():
			c.drop(conn)
			<-readErr
			return ctx.Err()

		case <-c.tokenChanged:
			log.Info("token changed, reconnecting")
			c.drop(conn)
			<-readErr

		case err := <-readErr:
			log.Warn("chat connection lost", zap.Error(err))
			c.drop(conn)
			if err := c.wait(ctx); err != nil {
				return err
			}
		}
	}
}

// Send posts content to a conversation over the open connection.
func (c *Client) Send(ctx context.Context, conversationID, content string) error {
	if strings.TrimSpace(conversationID) == "" {
		return ErrConversationMissing
	}
	if strings.TrimSpace(content) == "" {
		return ErrEmptyMessage
	}

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
		defer conn.SetWriteDeadline(time.Time{})
	}
	if err := conn.WriteJSON(outbound{ConversationID: conversationID, Content: content}); err != nil {
		logger.FromCtx(ctx).Warn("chat send failed",
			zap.String("layer", "chat"),
			zap.String("conversation_id", conversationID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// History returns the de-duplicated messages of a conversation in arrival order.
func (c *Client) History(conversationID string) []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.history[conversationID]...)
}

func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	target, err := url.Parse(c.cfg.URL)
	if err != nil {
		return nil, err
	}
	if token := c.tokens.Token(); token != "" {
		q := target.Query()
		q.Set("token", token)
		target.RawQuery = q.Encode()
	}

	header := http.Header{}
	deviceID, err := c.tokens.DeviceID(ctx)
	if err != nil {
		return nil, err
	}
	header.Set(apiclient.DeviceIDHeader, deviceID)

	conn, resp, err := c.cfg.Dialer.DialContext(ctx, target.String(), header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return conn, err
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn, handler func(Message)) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var m Message
		if err := json.Unmarshal(data, &m); err != nil {
			logger.FromCtx(ctx).Debug("skipping malformed frame",
				zap.String("layer", "chat"),
				zap.Error(err),
			)
			continue
		}
		if c.remember(m) && handler != nil {
			handler(m)
		}
	}
}

// remember records m and reports whether it was new.
func (c *Client) remember(m Message) bool {
	if m.Kind == "" {
		m.Kind = KindChat
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	k := m.key()
	if c.seen[k] {
		return false
	}
	c.seen[k] = true
	c.history[m.ConversationID] = append(c.history[m.ConversationID], m)
	return true
}

func (c *Client) setConn(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
}

func (c *Client) drop(conn *websocket.Conn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
	conn.Close()
}

// wait sleeps for the reconnect delay. A token change cuts it short.
func (c *Client) wait(ctx context.Context) error {
	t := time.NewTimer(c.cfg.ReconnectDelay)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.tokenChanged:
		return nil
	case <-t.C:
		return nil
	}
}
