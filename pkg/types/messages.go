package types

// Client -> Server
// joinGame:
//   playerId: string (connection-scoped, chosen by the client)
//   displayName?: string
//   deck: Card[7]
//
// startGame:
//   deck: Card[7]
//
// Card:
//   name: string (non-blank)
//   image?: string (reference only; placeholders are a rendering concern)
//   attributes: { A..E: 1..5 }, sum <= 15

// Server -> Client (every field beyond type is optional)
// waitingForOpponent: {}
//
// gameStart:
//   playerIds: [id, id]
//   playerNames?: { [id]: string }
//
// roundResult:
//   round: number (1-based, non-decreasing)
//   attribute: "A".."E"
//   player1Card: { playerId, name, attributes }
//   player2Card: { playerId, name, attributes }
//   roundWinner: id | "tie" | null   // null and "tie" are the same
//   scores: { [id]: number }         // authoritative, never recomputed
//
// gameOver:
//   winner: id | "tie" | null
//   scores: { [id]: number }
//
// opponentDisconnected:
//   message: string
//   winner?: id
//
// gameError:
//   message: string // display-only, non-fatal
