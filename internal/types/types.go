package types

import "github.com/xatgame/xat-client/internal/deck"

// Event names on the wire, client -> server.
const (
	EvtJoinGame  = "joinGame"
	EvtStartGame = "startGame"
)

// Event names on the wire, server -> client.
const (
	EvtWaitingForOpponent   = "waitingForOpponent"
	EvtGameStart            = "gameStart"
	EvtRoundResult          = "roundResult"
	EvtGameOver             = "gameOver"
	EvtOpponentDisconnected = "opponentDisconnected"
	EvtGameError            = "gameError"
)

type ClientEvent struct {
	Type        string    `json:"type"`
	PlayerID    string    `json:"playerId,omitempty"`
	DisplayName string    `json:"displayName,omitempty"`
	Deck        deck.Deck `json:"deck,omitempty"`
}

// ServerEvent is the inbound envelope. Every field beyond Type is
// optional; normalization in internal/match decides what a missing
// field means for each event type.
type ServerEvent struct {
	Type        string            `json:"type"`
	PlayerIDs   []string          `json:"playerIds,omitempty"`
	PlayerNames map[string]string `json:"playerNames,omitempty"`
	Round       int               `json:"round,omitempty"`
	Attribute   string            `json:"attribute,omitempty"`
	Player1Card *CardPlay         `json:"player1Card,omitempty"`
	Player2Card *CardPlay         `json:"player2Card,omitempty"`
	RoundWinner *string           `json:"roundWinner,omitempty"`
	Winner      *string           `json:"winner,omitempty"`
	Scores      map[string]int    `json:"scores,omitempty"`
	Message     string            `json:"message,omitempty"`
}

// CardPlay is one participant's card as revealed in a round result.
type CardPlay struct {
	PlayerID   string             `json:"playerId"`
	Name       string             `json:"name"`
	Attributes map[deck.Label]int `json:"attributes"`
}
