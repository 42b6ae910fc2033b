package deck

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownLabel = errors.New("unknown attribute label")
var ErrAttributeRange = errors.New("attribute value out of range")
var ErrBudgetExceeded = errors.New("attribute budget exceeded")
var ErrBlankName = errors.New("card name is blank")
var ErrDeckFull = errors.New("deck is full")
var ErrDeckIncomplete = errors.New("deck is incomplete")
var ErrNoSuchCard = errors.New("no card at index")

type Label string

const (
	LabelA Label = "A"
	LabelB Label = "B"
	LabelC Label = "C"
	LabelD Label = "D"
	LabelE Label = "E"
)

// Labels in display order.
var Labels = []Label{LabelA, LabelB, LabelC, LabelD, LabelE}

const (
	DeckSize    = 7
	AttrMin     = 1
	AttrMax     = 5
	PointBudget = 15

	draftStartValue = 2
)

// Card is one entry in a deck. Image is an optional reference (URL or
// data URI); placeholder selection for cards without one is a rendering
// concern, not modeled here.
type Card struct {
	Name       string        `json:"name"`
	Image      string        `json:"image,omitempty"`
	Attributes map[Label]int `json:"attributes"`
}

// Total is the card's spent attribute points.
func (c Card) Total() int {
	sum := 0
	for _, v := range c.Attributes {
		sum += v
	}
	return sum
}

func (c Card) clone() Card {
	attrs := make(map[Label]int, len(c.Attributes))
	for k, v := range c.Attributes {
		attrs[k] = v
	}
	c.Attributes = attrs
	return c
}

// Deck is an ordered card sequence. Order is meaningful: it fixes the
// per-round pairing once the match starts.
type Deck []Card

// Validate checks the invariants a finished deck must hold. Used when a
// deck arrives from outside the composer (e.g. loaded from a file).
func Validate(d Deck) error {
	if len(d) != DeckSize {
		return fmt.Errorf("deck has %d cards, want %d: %w", len(d), DeckSize, ErrDeckIncomplete)
	}
	for i, c := range d {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("card %d: %w", i, ErrBlankName)
		}
		for _, label := range Labels {
			v, ok := c.Attributes[label]
			if !ok {
				return fmt.Errorf("card %d: %q: %w", i, label, ErrUnknownLabel)
			}
			if v < AttrMin || v > AttrMax {
				return fmt.Errorf("card %d: %q=%d: %w", i, label, v, ErrAttributeRange)
			}
		}
		if c.Total() > PointBudget {
			return fmt.Errorf("card %d: total %d: %w", i, c.Total(), ErrBudgetExceeded)
		}
	}
	return nil
}
