package transport

import (
	"context"
	"errors"
	"math/rand"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

var ErrReconnectFailed = errors.New("reconnect failed")

// Transport is one persistent bidirectional channel to the match
// server. Payloads are opaque JSON; Receive blocks until the next
// inbound message or context cancellation.
type Transport interface {
	Send(ctx context.Context, payload []byte) error
	Receive(ctx context.Context) ([]byte, error)
	Close() error
}

type Config struct {
	// URL is the server base, e.g. "ws://localhost:8080" or
	// "http://localhost:8080". Endpoint paths are derived from it.
	URL               string
	ClientID          string
	ReconnectAttempts int
	ReconnectDelay    time.Duration
}

func (c Config) withDefaults() Config {
	if c.ReconnectAttempts == 0 {
		c.ReconnectAttempts = 5
	}
	if c.ReconnectDelay == 0 {
		c.ReconnectDelay = time.Second
	}
	return c
}

// Negotiate connects over the streaming transport, falling back to
// long-polling when the websocket dial fails.
func Negotiate(ctx context.Context, cfg Config, log *zap.Logger) (Transport, error) {
	cfg = cfg.withDefaults()

	ws, err := DialWebsocket(ctx, cfg, log)
	if err == nil {
		return ws, nil
	}
	log.Warn("websocket dial failed, falling back to polling", zap.Error(err))
	return DialPolling(cfg, log)
}

// httpBase rewrites a ws(s) base URL to its http(s) equivalent.
func httpBase(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	switch {
	case strings.EqualFold(u.Scheme, "ws"):
		u.Scheme = "http"
	case strings.EqualFold(u.Scheme, "wss"):
		u.Scheme = "https"
	}
	return u, nil
}

func endpoint(base *url.URL, path, clientID string) string {
	u := *base
	u.Path = strings.TrimRight(u.Path, "/") + path
	q := u.Query()
	q.Set("client", clientID)
	u.RawQuery = q.Encode()
	return u.String()
}

// RandID returns a short random connection-scoped identifier.
func RandID(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
