package session

import (
	"context"

	"go.uber.org/zap"

	"github.com/xatgame/xat-client/internal/match"
)

type Msg interface{ isSessionMsg() }

// FromServer carries one normalized server event into the session.
type FromServer struct {
	Event match.Event
}

func (FromServer) isSessionMsg() {}

type Join struct {
	ClientID string
	Outbox   chan Snapshot // where this subscriber wants to receive snapshots
}

func (Join) isSessionMsg() {}

type Leave struct{ ClientID string }

func (Leave) isSessionMsg() {}

// Reset discards all match state, the "play again" action. Equivalent
// to tearing the session down and remounting it.
type Reset struct{}

func (Reset) isSessionMsg() {}

type Shutdown struct{}

func (Shutdown) isSessionMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isSessionMsg() {}

type Snapshot struct {
	Version int
	State   match.State
}

type View struct {
	Version        int
	NumSubscribers int
	State          match.State
}

// Session owns one match's locally derived state. A single goroutine
// consumes the inbox, applies events through match.Apply, and fans
// versioned snapshots out to subscribers; there is no other way to
// touch the state.
type Session struct {
	inbox   chan Msg
	state   match.State
	selfID  string
	version int
	clients map[string]chan Snapshot
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

func New(parent context.Context, selfID string, log *zap.Logger) *Session {
	ctx, cancel := context.WithCancel(parent)

	s := &Session{
		inbox:   make(chan Msg, 64),
		state:   match.NewState(),
		selfID:  selfID,
		version: 0,
		clients: make(map[string]chan Snapshot),
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
	}

	go s.loop()
	return s
}

func (s *Session) loop() {
	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case Join:
				// Register subscriber + send current snapshot immediately
				s.clients[msg.ClientID] = msg.Outbox
				msg.Outbox <- Snapshot{Version: s.version, State: s.state}

			case Leave:
				delete(s.clients, msg.ClientID)

			case FromServer:
				newState, err := match.Apply(s.state, s.selfID, msg.Event)
				if err != nil {
					// Stale or post-terminal event; drop it.
					s.log.Debug("event ignored", zap.Error(err))
					break
				}
				s.state = newState
				s.version++
				s.broadcast(Snapshot{Version: s.version, State: s.state})

			case Reset:
				s.state = match.NewState()
				s.version++
				s.broadcast(Snapshot{Version: s.version, State: s.state})

			case GetState:
				// test-only: reflect internal state without data races
				msg.Reply <- View{
					Version:        s.version,
					NumSubscribers: len(s.clients),
					State:          s.state,
				}

			case Shutdown:
				s.shutdown()
				return
			}
		}
	}
}

func (s *Session) shutdown() {
	for id, ch := range s.clients {
		close(ch) // Tell subscriber no more snapshots
		delete(s.clients, id)
	}
	s.cancel()
}

func (s *Session) broadcast(snap Snapshot) {
	for id, ch := range s.clients {
		select {
		case ch <- snap:
			//ok
		default:
			// Subscriber is slow/full - drop them.
			close(ch)
			delete(s.clients, id)
		}
	}
}

// Expose the inbox so the network client or tests can send messages.
func (s *Session) Inbox() chan<- Msg { return s.inbox }
