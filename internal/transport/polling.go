package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

// pollTransport is the fallback channel: outbound messages are POSTed,
// inbound ones fetched with a repeated long-poll GET. The server holds
// each poll open until a message is ready or replies 204 on timeout.
type pollTransport struct {
	base     *url.URL
	clientID string
	hc       *http.Client
	log      *zap.Logger
	closed   chan struct{}
}

func DialPolling(cfg Config, log *zap.Logger) (Transport, error) {
	cfg = cfg.withDefaults()

	base, err := httpBase(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	return &pollTransport{
		base:     base,
		clientID: cfg.ClientID,
		hc:       &http.Client{},
		log:      log,
		closed:   make(chan struct{}),
	}, nil
}

func (t *pollTransport) Send(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		endpoint(t.base, "/send", t.clientID), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("send rejected: %s", resp.Status)
	}
	return nil
}

func (t *pollTransport) Receive(ctx context.Context) ([]byte, error) {
	for {
		select {
		case <-t.closed:
			return nil, io.EOF
		default:
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet,
			endpoint(t.base, "/poll", t.clientID), nil)
		if err != nil {
			return nil, err
		}

		resp, err := t.hc.Do(req)
		if err != nil {
			return nil, err
		}

		switch resp.StatusCode {
		case http.StatusOK:
			data, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return nil, err
			}
			return data, nil
		case http.StatusNoContent:
			// Poll timed out server-side with nothing queued; go again.
			resp.Body.Close()
		default:
			resp.Body.Close()
			return nil, fmt.Errorf("poll rejected: %s", resp.Status)
		}
	}
}

func (t *pollTransport) Close() error {
	select {
	case <-t.closed:
	default:
		close(t.closed)
	}
	return nil
}
