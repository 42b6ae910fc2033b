package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"
)

type wsTransport struct {
	cfg Config
	url string
	log *zap.Logger

	mu   sync.Mutex
	conn *websocket.Conn
}

// DialWebsocket opens the streaming transport. The connection
// self-heals: a failed read triggers a bounded redial loop before the
// error is surfaced to the caller.
func DialWebsocket(ctx context.Context, cfg Config, log *zap.Logger) (Transport, error) {
	cfg = cfg.withDefaults()

	base, err := httpBase(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	wsURL := endpoint(base, "/ws", cfg.ClientID)

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return nil, err
	}
	return &wsTransport{cfg: cfg, url: wsURL, log: log, conn: conn}, nil
}

func (t *wsTransport) current() *websocket.Conn {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn
}

func (t *wsTransport) Send(ctx context.Context, payload []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return t.current().Write(ctx, websocket.MessageText, payload)
}

func (t *wsTransport) Receive(ctx context.Context) ([]byte, error) {
	for {
		_, data, err := t.current().Read(ctx)
		if err == nil {
			return data, nil
		}

		// Treat clean close/going-away as final:
		switch websocket.CloseStatus(err) {
		case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if rerr := t.reconnect(ctx); rerr != nil {
			return nil, rerr
		}
	}
}

func (t *wsTransport) reconnect(ctx context.Context) error {
	for attempt := 1; attempt <= t.cfg.ReconnectAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(t.cfg.ReconnectDelay):
		}

		conn, _, err := websocket.Dial(ctx, t.url, nil)
		if err != nil {
			t.log.Warn("redial failed",
				zap.Int("attempt", attempt),
				zap.Int("max", t.cfg.ReconnectAttempts),
				zap.Error(err))
			continue
		}

		t.mu.Lock()
		t.conn = conn
		t.mu.Unlock()
		t.log.Info("reconnected", zap.Int("attempt", attempt))
		return nil
	}
	return ErrReconnectFailed
}

func (t *wsTransport) Close() error {
	return t.current().Close(websocket.StatusNormalClosure, "bye")
}
