package match

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xatgame/xat-client/internal/types"
)

var ErrUnknownEvent = errors.New("unknown event type")
var ErrBadPayload = errors.New("bad event payload")

// Event is the normalized inbound server event. Raw wire messages are
// mapped onto one of these variants exactly once, in Normalize; the
// reconciler never sees a malformed shape.
type Event interface{ isMatchEvent() }

type Waiting struct{}

func (Waiting) isMatchEvent() {}

type Start struct {
	PlayerIDs   []string
	PlayerNames map[string]string
}

func (Start) isMatchEvent() {}

type RoundResult struct {
	Round     int
	Attribute string
	Player1   types.CardPlay
	Player2   types.CardPlay
	// Winner is the winning participant id, the literal "tie", or nil.
	// nil and "tie" mean the same thing.
	Winner *string
	Scores map[string]int
}

func (RoundResult) isMatchEvent() {}

type GameOver struct {
	Winner *string
	Scores map[string]int
}

func (GameOver) isMatchEvent() {}

type OpponentLeft struct {
	Message string
	Winner  string
}

func (OpponentLeft) isMatchEvent() {}

type MatchError struct {
	Message string
}

func (MatchError) isMatchEvent() {}

// Normalize maps a raw wire message to a typed event. Absent optional
// fields are defaulted here; only an undecodable payload or an unknown
// event type is rejected.
func Normalize(raw []byte) (Event, error) {
	var msg types.ServerEvent
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	switch msg.Type {
	case types.EvtWaitingForOpponent:
		return Waiting{}, nil

	case types.EvtGameStart:
		return Start{PlayerIDs: msg.PlayerIDs, PlayerNames: msg.PlayerNames}, nil

	case types.EvtRoundResult:
		ev := RoundResult{
			Round:     msg.Round,
			Attribute: msg.Attribute,
			Winner:    msg.RoundWinner,
			Scores:    msg.Scores,
		}
		if msg.Player1Card != nil {
			ev.Player1 = *msg.Player1Card
		}
		if msg.Player2Card != nil {
			ev.Player2 = *msg.Player2Card
		}
		return ev, nil

	case types.EvtGameOver:
		return GameOver{Winner: msg.Winner, Scores: msg.Scores}, nil

	case types.EvtOpponentDisconnected:
		ev := OpponentLeft{Message: msg.Message}
		if msg.Winner != nil {
			ev.Winner = *msg.Winner
		}
		return ev, nil

	case types.EvtGameError:
		return MatchError{Message: msg.Message}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, msg.Type)
	}
}
