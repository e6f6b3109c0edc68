package game

import "github.com/jason-s-yu/pinaki/internal/models"

// Play is one card laid on the table by a seat.
type Play struct {
	Seat int         `json:"seat"`
	Card models.Card `json:"card"`
}

// Trick is the in-progress round of up to four plays, in play order.
type Trick []Play

// LedSuit returns the suit of the first card, if any.
func (t Trick) LedSuit() (models.Suit, bool) {
	if len(t) == 0 {
		return 0, false
	}
	return t[0].Card.Suit, true
}

// highestTrump returns the strongest trump on the table.
func (t Trick) highestTrump(trump models.Suit) (models.Card, bool) {
	var best models.Card
	found := false
	for _, p := range t {
		if p.Card.Suit != trump {
			continue
		}
		if !found || p.Card.Beats(best) {
			best = p.Card
			found = true
		}
	}
	return best, found
}

// LegalPlays returns the cards of hand that may be played onto trick.
// Duplicates in hand are returned as held.
func LegalPlays(hand models.Hand, trick Trick, trump models.Suit) []models.Card {
	led, ok := trick.LedSuit()
	if !ok {
		return hand.Clone()
	}

	if hand.HasSuit(led) && led != trump {
		return hand.OfSuit(led)
	}

	trumps := hand.OfSuit(trump)
	if len(trumps) == 0 {
		return hand.Clone()
	}
	if top, onTable := trick.highestTrump(trump); onTable {
		var higher []models.Card
		for _, c := range trumps {
			if c.Beats(top) {
				higher = append(higher, c)
			}
		}
		if len(higher) > 0 {
			return higher
		}
	}
	return trumps
}

// IsLegal reports whether card is held and may be played onto trick.
func IsLegal(hand models.Hand, trick Trick, trump models.Suit, card models.Card) bool {
	if !hand.Contains(card) {
		return false
	}
	for _, c := range LegalPlays(hand, trick, trump) {
		if c == card {
			return true
		}
	}
	return false
}

// TrickWinner returns the seat whose card takes the trick. The earlier of two
// identical cards keeps the trick.
func TrickWinner(trick Trick, trump models.Suit) int {
	if len(trick) == 0 {
		return -1
	}
	best := trick[0]
	for _, p := range trick[1:] {
		switch {
		case p.Card.Suit == trump && best.Card.Suit != trump:
			best = p
		case p.Card.Beats(best.Card):
			best = p
		}
	}
	return best.Seat
}

// Cards returns the played cards in play order.
func (t Trick) Cards() []models.Card {
	out := make([]models.Card, len(t))
	for i, p := range t {
		out[i] = p.Card
	}
	return out
}
