package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/xatgame/xat-client/internal/client"
	"github.com/xatgame/xat-client/internal/config"
	"github.com/xatgame/xat-client/internal/deck"
	"github.com/xatgame/xat-client/internal/history"
	"github.com/xatgame/xat-client/internal/match"
	"github.com/xatgame/xat-client/internal/session"
	"github.com/xatgame/xat-client/internal/transport"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}

	d, err := loadDeck(cfg.DeckPath)
	if err != nil {
		log.Fatal("load deck", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	selfID := transport.RandID(6)
	tr, err := transport.Negotiate(ctx, transport.Config{
		URL:               cfg.ServerURL,
		ClientID:          selfID,
		ReconnectAttempts: cfg.ReconnectAttempts,
		ReconnectDelay:    cfg.ReconnectDelay,
	}, log)
	if err != nil {
		log.Fatal("connect", zap.Error(err))
	}

	var store *history.Store
	if cfg.HistoryDSN != "" {
		store, err = history.Open(cfg.HistoryDSN)
		if err != nil {
			log.Fatal("open history store", zap.Error(err))
		}
		if recent, err := store.Recent(ctx, 5); err == nil {
			log.Info("match history loaded", zap.Int("recent_matches", len(recent)))
		}
	}

	// Build the session *with* the client's own id injected
	sess := session.New(ctx, selfID, log)
	out := make(chan session.Snapshot, 8)
	sess.Inbox() <- session.Join{ClientID: "main", Outbox: out}

	cl := client.New(tr, selfID, sess, log)
	if cfg.CreateMatch {
		if err := cl.Start(ctx, d); err != nil {
			log.Fatal("create match", zap.Error(err))
		}
	}
	if err := cl.Join(ctx, d, cfg.DisplayName); err != nil {
		log.Fatal("join match", zap.Error(err))
	}
	log.Info("joined match", zap.String("self_id", selfID), zap.String("server", cfg.ServerURL))

	go func() {
		for snap := range out {
			st := snap.State
			log.Info("match state",
				zap.Int("version", snap.Version),
				zap.String("status", string(st.Status)),
				zap.Int("round", st.Round),
				zap.String("attribute", st.Attribute),
				zap.String("message", st.Message),
				zap.Any("scores", st.Scores))

			if st.Status != match.StatusOver {
				continue
			}
			if store != nil {
				rec := history.RecordFromState(st, selfID, time.Now())
				if err := store.Save(ctx, rec); err != nil {
					log.Warn("save match record", zap.Error(err))
				}
			}
			stop()
			return
		}
	}()

	if err := cl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Warn("client stopped", zap.Error(err))
	}
}

func loadDeck(path string) (deck.Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var d deck.Deck
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	if err := deck.Validate(d); err != nil {
		return nil, err
	}
	return d, nil
}
