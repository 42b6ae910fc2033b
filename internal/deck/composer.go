package deck

import "strings"

// Composer assembles a deck one card at a time. A draft card is edited
// in place until it is added; the draft always satisfies the per-card
// invariants because every mutation is checked before it lands.
//
// All operations are synchronous and run on the caller's goroutine; the
// composer is not safe for concurrent use.
type Composer struct {
	cards Deck
	draft Card
}

func NewComposer() *Composer {
	return &Composer{draft: newDraft()}
}

func newDraft() Card {
	attrs := make(map[Label]int, len(Labels))
	for _, l := range Labels {
		attrs[l] = draftStartValue
	}
	return Card{Attributes: attrs}
}

// Draft returns a copy of the card currently being edited.
func (c *Composer) Draft() Card { return c.draft.clone() }

// Deck returns a copy of the cards added so far.
func (c *Composer) Deck() Deck {
	out := make(Deck, len(c.cards))
	for i, card := range c.cards {
		out[i] = card.clone()
	}
	return out
}

// Len reports how many cards have been added.
func (c *Composer) Len() int { return len(c.cards) }

// Complete reports whether the deck has reached exactly DeckSize cards.
func (c *Composer) Complete() bool { return len(c.cards) == DeckSize }

// SetName sets the draft card's name.
func (c *Composer) SetName(name string) { c.draft.Name = name }

// SetImage sets the draft card's optional image reference.
func (c *Composer) SetImage(ref string) { c.draft.Image = ref }

// SetAttribute updates one attribute of the draft. The update is
// rejected, leaving the draft unchanged, when the value is outside
// [AttrMin, AttrMax] or when replacing the label's current value would
// push the draft's total past PointBudget.
func (c *Composer) SetAttribute(label Label, value int) error {
	current, ok := c.draft.Attributes[label]
	if !ok {
		return ErrUnknownLabel
	}
	if value < AttrMin || value > AttrMax {
		return ErrAttributeRange
	}
	if c.draft.Total()-current+value > PointBudget {
		return ErrBudgetExceeded
	}
	c.draft.Attributes[label] = value
	return nil
}

// AddCard appends a copy of the draft to the deck and resets the draft.
// Rejected when the deck is already full or the draft has a blank name.
func (c *Composer) AddCard() error {
	if len(c.cards) >= DeckSize {
		return ErrDeckFull
	}
	if strings.TrimSpace(c.draft.Name) == "" {
		return ErrBlankName
	}
	c.cards = append(c.cards, c.draft.clone())
	c.draft = newDraft()
	return nil
}

// RemoveCard deletes the card at index i.
func (c *Composer) RemoveCard(i int) error {
	if i < 0 || i >= len(c.cards) {
		return ErrNoSuchCard
	}
	c.cards = append(c.cards[:i], c.cards[i+1:]...)
	return nil
}

// EditCard removes the card at index i and loads it back into the
// draft. The edit discards whatever draft was in progress.
func (c *Composer) EditCard(i int) error {
	if i < 0 || i >= len(c.cards) {
		return ErrNoSuchCard
	}
	c.draft = c.cards[i].clone()
	c.cards = append(c.cards[:i], c.cards[i+1:]...)
	return nil
}

// MoveCard swaps the card at index i with its neighbor in the given
// direction (-1 toward the front, +1 toward the back). Moving past
// either end, or any other direction value, is a no-op.
func (c *Composer) MoveCard(i, direction int) {
	if direction != -1 && direction != 1 {
		return
	}
	j := i + direction
	if i < 0 || i >= len(c.cards) || j < 0 || j >= len(c.cards) {
		return
	}
	c.cards[i], c.cards[j] = c.cards[j], c.cards[i]
}

// Finalize hands the finished deck to the caller. Only legal at exactly
// DeckSize cards; afterwards the returned deck is the caller's and the
// composer keeps its own copy untouched.
func (c *Composer) Finalize() (Deck, error) {
	if len(c.cards) != DeckSize {
		return nil, ErrDeckIncomplete
	}
	return c.Deck(), nil
}
