// Package matchtest provides a scripted stand-in for the remote match
// server. It speaks the real wire protocol over both transports but
// owns no game logic: whatever event script it was given is replayed
// to a client once that client joins. Tests and local runs use it to
// drive the match client deterministically.
package matchtest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xatgame/xat-client/internal/transport"
	"github.com/xatgame/xat-client/internal/types"
)

type Server struct {
	log    *zap.Logger
	script []types.ServerEvent

	mu     sync.Mutex
	joins  []types.ClientEvent
	queues map[string]chan []byte
}

func New(script []types.ServerEvent, log *zap.Logger) *Server {
	return &Server{
		log:    log,
		script: script,
		queues: make(map[string]chan []byte),
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/ws", s.handleWS)
	r.Post("/send", s.handleSend)
	r.Get("/poll", s.handlePoll)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}

// Joins returns every client event received so far.
func (s *Server) Joins() []types.ClientEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.ClientEvent, len(s.joins))
	copy(out, s.joins)
	return out
}

// Push queues one extra event for a client, beyond the script.
func (s *Server) Push(clientID string, ev types.ServerEvent) {
	payload, _ := json.Marshal(ev)
	s.queue(clientID) <- payload
}

func (s *Server) queue(clientID string) chan []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.queues[clientID]
	if !ok {
		q = make(chan []byte, 64)
		s.queues[clientID] = q
	}
	return q
}

func (s *Server) handleClientEvent(clientID string, data []byte) {
	var ev types.ClientEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		s.log.Warn("bad client event", zap.Error(err))
		return
	}

	s.mu.Lock()
	s.joins = append(s.joins, ev)
	s.mu.Unlock()

	if ev.Type == types.EvtJoinGame || ev.Type == types.EvtStartGame {
		q := s.queue(clientID)
		for _, scripted := range s.script {
			payload, _ := json.Marshal(scripted)
			q <- payload
		}
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("client")
	if clientID == "" {
		clientID = transport.RandID(6)
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	// Writer goroutine
	writeCtx, writeCancel := context.WithCancel(r.Context())
	defer writeCancel()
	go func() {
		q := s.queue(clientID)
		for {
			select {
			case <-writeCtx.Done():
				return
			case payload := <-q:
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}
	}()

	// Reader loop
	for {
		_, data, err := conn.Read(r.Context())
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			return
		}
		s.handleClientEvent(clientID, data)
	}
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("client")
	if clientID == "" {
		http.Error(w, "missing client", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "bad body", http.StatusBadRequest)
		return
	}
	s.handleClientEvent(clientID, data)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handlePoll(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("client")
	if clientID == "" {
		http.Error(w, "missing client", http.StatusBadRequest)
		return
	}

	select {
	case payload := <-s.queue(clientID):
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(payload)
	case <-time.After(250 * time.Millisecond):
		w.WriteHeader(http.StatusNoContent)
	case <-r.Context().Done():
	}
}
