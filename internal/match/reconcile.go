package match

import (
	"errors"

	"github.com/xatgame/xat-client/internal/types"
)

var ErrMatchOver = errors.New("match already over")
var ErrStaleRound = errors.New("stale round result")

type Status string

const (
	StatusWaiting Status = "waiting"
	StatusPlaying Status = "playing"
	StatusOver    Status = "over"
)

type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
	OutcomeTie  Outcome = "tie"
)

// TieWinner is the canonical winner value for a tied round or match.
// The wire may carry it as the literal "tie" or as an absent winner;
// both normalize to this.
const TieWinner = "tie"

type RoundRecord struct {
	Round        int
	Attribute    string
	SelfCard     types.CardPlay
	OpponentCard types.CardPlay
	Outcome      Outcome
}

// State is the locally derived match view. It is never authoritative:
// outcomes and scores always come from server events, the only local
// computation is perspective (which side of an event is "self").
type State struct {
	Status       Status
	OpponentID   string
	OpponentName string
	Round        int
	// Attribute is the active attribute label, "" when none.
	Attribute    string
	SelfCard     *types.CardPlay
	OpponentCard *types.CardPlay
	Scores       map[string]int
	// Winner is a participant id, TieWinner, or "" while undecided.
	Winner  string
	Message string
	History []RoundRecord
}

func NewState() State {
	return State{
		Status:  StatusWaiting,
		Scores:  map[string]int{},
		Message: "Waiting for opponent...",
	}
}

// Apply reconciles one normalized event into the state. It is pure:
// the input state is never mutated, selfID is the caller's own
// participant id. Errors mark events that were ignored (arrived after
// the match ended, or out of order); the returned state then equals
// the input.
func Apply(s State, selfID string, ev Event) (State, error) {
	switch ev := ev.(type) {
	case Waiting:
		s.Message = "Waiting for an opponent to join..."
		return s, nil

	case MatchError:
		// Display-only, never fatal.
		s.Message = "Error: " + ev.Message
		return s, nil

	case Start:
		if s.Status == StatusOver {
			return s, ErrMatchOver
		}
		s.Status = StatusPlaying
		s.Message = "Game started!"
		s.OpponentID = opponentOf(ev.PlayerIDs, selfID)
		if name, ok := ev.PlayerNames[s.OpponentID]; ok {
			s.OpponentName = name
		}
		s.Scores = map[string]int{selfID: 0}
		if s.OpponentID != "" {
			s.Scores[s.OpponentID] = 0
		}
		return s, nil

	case RoundResult:
		if s.Status == StatusOver {
			return s, ErrMatchOver
		}
		if ev.Round > 0 && ev.Round < s.Round {
			return s, ErrStaleRound
		}

		self, opponent := resolvePerspective(ev, selfID)
		outcome := roundOutcome(ev.Winner, selfID)

		if ev.Round > 0 {
			s.Round = ev.Round
		}
		s.Attribute = ev.Attribute
		s.SelfCard = &self
		s.OpponentCard = &opponent
		if ev.Scores != nil {
			s.Scores = cloneScores(ev.Scores)
		}
		s.History = appendRecord(s.History, RoundRecord{
			Round:        ev.Round,
			Attribute:    ev.Attribute,
			SelfCard:     self,
			OpponentCard: opponent,
			Outcome:      outcome,
		})

		switch outcome {
		case OutcomeWin:
			s.Message = "You won this round!"
		case OutcomeLoss:
			s.Message = "Your opponent won this round!"
		default:
			s.Message = "This round was a tie!"
		}
		return s, nil

	case GameOver:
		if s.Status == StatusOver {
			return s, ErrMatchOver
		}
		s.Status = StatusOver
		s.Winner = canonicalWinner(ev.Winner)
		if ev.Scores != nil {
			s.Scores = cloneScores(ev.Scores)
		}
		switch s.Winner {
		case selfID:
			s.Message = "Congratulations! You won the game!"
		case TieWinner:
			s.Message = "The game ended in a tie!"
		default:
			s.Message = "Game over! Your opponent won."
		}
		return s, nil

	case OpponentLeft:
		if s.Status == StatusOver {
			return s, ErrMatchOver
		}
		s.Status = StatusOver
		if ev.Message != "" {
			s.Message = ev.Message
		} else {
			s.Message = "Your opponent disconnected."
		}
		if ev.Winner == selfID && selfID != "" {
			s.Winner = selfID
		}
		return s, nil

	default:
		return s, ErrUnknownEvent
	}
}

// resolvePerspective maps an event's player1/player2 framing onto
// self/opponent by the embedded participant id. When neither card
// carries the caller's id the second card is treated as self, matching
// the server's player2 convention for late joiners.
func resolvePerspective(ev RoundResult, selfID string) (self, opponent types.CardPlay) {
	if ev.Player1.PlayerID == selfID {
		return ev.Player1, ev.Player2
	}
	return ev.Player2, ev.Player1
}

func roundOutcome(winner *string, selfID string) Outcome {
	if winner == nil || *winner == TieWinner {
		return OutcomeTie
	}
	if *winner == selfID {
		return OutcomeWin
	}
	return OutcomeLoss
}

func canonicalWinner(winner *string) string {
	if winner == nil {
		return TieWinner
	}
	return *winner
}

func opponentOf(playerIDs []string, selfID string) string {
	for _, id := range playerIDs {
		if id != selfID {
			return id
		}
	}
	return ""
}

func cloneScores(scores map[string]int) map[string]int {
	out := make(map[string]int, len(scores))
	for k, v := range scores {
		out[k] = v
	}
	return out
}

// appendRecord copies before appending so callers holding the previous
// state never observe the new entry.
func appendRecord(history []RoundRecord, rec RoundRecord) []RoundRecord {
	out := make([]RoundRecord, len(history), len(history)+1)
	copy(out, history)
	return append(out, rec)
}
