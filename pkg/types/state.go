package types

// Match state (locally derived, never authoritative):
//   status: "waiting" | "playing" | "over"
//   opponent_id: string
//   round: number
//   attribute: "A".."E" | ""
//   self_card / opponent_card: perspective-resolved round cards
//   scores: { [id]: number } // from server events only
//   winner: id | "tie" | ""
//   history: [{ round, attribute, self_card, opponent_card, outcome }]
//
// Transitions, one per inbound event:
//   waiting --gameStart--> playing
//   playing --roundResult--> playing (history appended)
//   playing --gameOver | opponentDisconnected--> over (terminal)
// "Play again" discards the whole session; nothing mutates state after
// over.
