package client

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xatgame/xat-client/internal/deck"
	"github.com/xatgame/xat-client/internal/match"
	"github.com/xatgame/xat-client/internal/session"
	"github.com/xatgame/xat-client/internal/transport"
	"github.com/xatgame/xat-client/internal/types"
)

var ErrAlreadyStarted = errors.New("match already started")
var ErrAlreadyJoined = errors.New("already joined with a deck")

// Client ties one transport to one session: it sends the join message
// exactly once, then pumps inbound messages through normalization into
// the session inbox. The transport is injected so tests can substitute
// their own; Client never constructs a connection itself.
type Client struct {
	tr     transport.Transport
	sess   *session.Session
	selfID string
	log    *zap.Logger

	startOnce sync.Once
	joinOnce  sync.Once
	connDown  atomic.Bool
}

func New(tr transport.Transport, selfID string, sess *session.Session, log *zap.Logger) *Client {
	return &Client{tr: tr, sess: sess, selfID: selfID, log: log}
}

// SelfID is this client's connection-scoped participant id.
func (c *Client) SelfID() string { return c.selfID }

// Start creates the match on the server with the finished deck. This
// is the composer's finalize hand-off; Join still follows at match
// mount. Guarded the same way as Join: one create per deck.
func (c *Client) Start(ctx context.Context, d deck.Deck) error {
	if err := deck.Validate(d); err != nil {
		return err
	}

	err := ErrAlreadyStarted
	c.startOnce.Do(func() {
		payload, merr := json.Marshal(types.ClientEvent{
			Type:     types.EvtStartGame,
			PlayerID: c.selfID,
			Deck:     d,
		})
		if merr != nil {
			err = merr
			return
		}
		err = c.tr.Send(ctx, payload)
	})
	return err
}

// Join sends the deck to the server. Guarded: a second call is a no-op
// returning ErrAlreadyJoined, so noisy callers cannot resend the deck.
// The deck must already satisfy its invariants.
func (c *Client) Join(ctx context.Context, d deck.Deck, displayName string) error {
	if err := deck.Validate(d); err != nil {
		return err
	}

	err := ErrAlreadyJoined
	c.joinOnce.Do(func() {
		payload, merr := json.Marshal(types.ClientEvent{
			Type:        types.EvtJoinGame,
			PlayerID:    c.selfID,
			DisplayName: displayName,
			Deck:        d,
		})
		if merr != nil {
			err = merr
			return
		}
		err = c.tr.Send(ctx, payload)
	})
	return err
}

// Run consumes the transport until it fails or ctx is cancelled. Every
// inbound message is normalized centrally; messages that do not
// normalize are logged and dropped, they never reach the session.
func (c *Client) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()
		_ = c.tr.Close() // unblock the read loop
		return nil
	})

	g.Go(func() error {
		for {
			data, err := c.tr.Receive(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.connDown.Store(true)
				c.log.Warn("connection lost", zap.Error(err))
				return err
			}
			c.connDown.Store(false)

			ev, err := match.Normalize(data)
			if err != nil {
				c.log.Warn("dropping message", zap.Error(err))
				continue
			}
			c.sess.Inbox() <- session.FromServer{Event: ev}
		}
	})

	return g.Wait()
}

// ConnectionDown reports whether the last transport operation failed.
// The session's accumulated state survives a down connection; only the
// live-round display should be replaced by a connectivity notice.
func (c *Client) ConnectionDown() bool { return c.connDown.Load() }
