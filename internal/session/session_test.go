package session

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/xatgame/xat-client/internal/match"
	"github.com/xatgame/xat-client/internal/types"
)

// helper: receive one snapshot with a timeout so tests never hang
func recvSnapshot(t *testing.T, ch <-chan Snapshot, within time.Duration) Snapshot {
	t.Helper()
	select {
	case snap, ok := <-ch:
		if !ok {
			t.Fatalf("subscriber outbox closed unexpectedly")
		}
		return snap
	case <-time.After(within):
		t.Fatalf("timed out waiting for snapshot")
		return Snapshot{} // unreachable
	}
}

func recvNoSnapshot(t *testing.T, ch <-chan Snapshot, within time.Duration) {
	t.Helper()
	select {
	case s, ok := <-ch:
		if !ok {
			// channel closed → that's fine; no further snapshots possible
			return
		}
		t.Fatalf("expected no snapshot within %v, but got: %+v", within, s)
	case <-time.After(within):
		// good: no snapshot
	}
}

func recvView(t *testing.T, ch <-chan View, within time.Duration) View {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(within):
		t.Fatalf("timed out waiting for view")
		return View{} // unreachable
	}
}

func strptr(s string) *string { return &s }

func startEvent() match.Event {
	return match.Start{PlayerIDs: []string{"me", "op"}}
}

func roundEvent(round int, winner string) match.Event {
	return match.RoundResult{
		Round:   round,
		Player1: types.CardPlay{PlayerID: "me", Name: "Alpha"},
		Player2: types.CardPlay{PlayerID: "op", Name: "Beta"},
		Winner:  strptr(winner),
		Scores:  map[string]int{"me": 1, "op": 0},
	}
}

func TestSession_EventBroadcastsSnapshotAndVersionIncrements(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New(ctx, "me", zap.NewNop())

	out := make(chan Snapshot, 2)
	s.Inbox() <- Join{ClientID: "view1", Outbox: out}

	// on join, session should immediately send the current snapshot
	first := recvSnapshot(t, out, 100*time.Millisecond)
	if first.Version != 0 {
		t.Fatalf("after join: want version=0, got %d", first.Version)
	}
	if first.State.Status != match.StatusWaiting {
		t.Fatalf("after join: want waiting, got %v", first.State.Status)
	}

	s.Inbox() <- FromServer{Event: startEvent()}

	next := recvSnapshot(t, out, 100*time.Millisecond)
	if next.Version != 1 {
		t.Fatalf("after start: want version=1, got %d", next.Version)
	}
	if next.State.Status != match.StatusPlaying || next.State.OpponentID != "op" {
		t.Fatalf("after start: got %+v", next.State)
	}

	s.Inbox() <- Shutdown{}
}

func TestSession_IgnoredEventEmitsNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New(ctx, "me", zap.NewNop())

	out := make(chan Snapshot, 8)
	s.Inbox() <- Join{ClientID: "view1", Outbox: out}
	_ = recvSnapshot(t, out, 100*time.Millisecond) // join snapshot

	s.Inbox() <- FromServer{Event: startEvent()}
	_ = recvSnapshot(t, out, 100*time.Millisecond)
	s.Inbox() <- FromServer{Event: roundEvent(3, "me")}
	_ = recvSnapshot(t, out, 100*time.Millisecond)

	// stale round: match.Apply rejects it, so no broadcast and no bump
	s.Inbox() <- FromServer{Event: roundEvent(2, "op")}
	recvNoSnapshot(t, out, 150*time.Millisecond)

	reply := make(chan View, 1)
	s.Inbox() <- GetState{Reply: reply}
	view := recvView(t, reply, 100*time.Millisecond)
	if view.Version != 2 {
		t.Fatalf("version bumped by ignored event: %d", view.Version)
	}
	if len(view.State.History) != 1 {
		t.Fatalf("history: got %d entries", len(view.State.History))
	}
}

func TestSession_DropSlowSubscriber(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New(ctx, "me", zap.NewNop())

	// buffer of 1 is consumed by the join snapshot; the next broadcast
	// cannot land and the subscriber gets dropped
	out := make(chan Snapshot, 1)
	s.Inbox() <- Join{ClientID: "view1", Outbox: out}

	s.Inbox() <- FromServer{Event: startEvent()}

	reply := make(chan View, 1)
	s.Inbox() <- GetState{Reply: reply}
	view := recvView(t, reply, 100*time.Millisecond)

	if view.NumSubscribers != 0 {
		t.Fatalf("expected slow subscriber to be dropped; NumSubscribers=%d", view.NumSubscribers)
	}
}

func TestSession_ResetDiscardsEverything(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New(ctx, "me", zap.NewNop())

	out := make(chan Snapshot, 8)
	s.Inbox() <- Join{ClientID: "view1", Outbox: out}
	_ = recvSnapshot(t, out, 100*time.Millisecond)

	s.Inbox() <- FromServer{Event: startEvent()}
	_ = recvSnapshot(t, out, 100*time.Millisecond)
	s.Inbox() <- FromServer{Event: roundEvent(1, "me")}
	_ = recvSnapshot(t, out, 100*time.Millisecond)
	s.Inbox() <- FromServer{Event: match.GameOver{Winner: strptr("me")}}
	over := recvSnapshot(t, out, 100*time.Millisecond)
	if over.State.Status != match.StatusOver {
		t.Fatalf("want over, got %v", over.State.Status)
	}

	s.Inbox() <- Reset{}
	fresh := recvSnapshot(t, out, 100*time.Millisecond)
	if fresh.State.Status != match.StatusWaiting {
		t.Fatalf("after reset: want waiting, got %v", fresh.State.Status)
	}
	if len(fresh.State.History) != 0 || fresh.State.Winner != "" {
		t.Fatalf("after reset: state not discarded: %+v", fresh.State)
	}
	if fresh.Version != over.Version+1 {
		t.Fatalf("after reset: want version=%d, got %d", over.Version+1, fresh.Version)
	}
}

func TestSession_ShutdownClosesOutboxes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New(ctx, "me", zap.NewNop())

	out := make(chan Snapshot, 2)
	s.Inbox() <- Join{ClientID: "view1", Outbox: out}
	_ = recvSnapshot(t, out, 100*time.Millisecond)

	s.Inbox() <- Shutdown{}

	select {
	case _, ok := <-out:
		if ok {
			t.Fatalf("expected closed outbox, got snapshot")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("outbox not closed after shutdown")
	}
}
