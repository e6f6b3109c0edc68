package bot

import (
	"github.com/jason-s-yu/pinaki/internal/game"
	"github.com/jason-s-yu/pinaki/internal/models"
)

const maxBid = 300

// Heuristic values a hand by card points, suit length and high cards.
type Heuristic struct{}

func NewHeuristic() *Heuristic { return &Heuristic{} }

func handValue(h models.Hand, trump *models.Suit) int {
	v := 0
	for _, c := range h {
		v += c.Rank.Points()
		if trump != nil && c.Suit == *trump {
			v += 5
		}
	}
	return v
}

func highCards(h models.Hand) int {
	n := 0
	for _, c := range h {
		if c.Rank == models.Ace || c.Rank == models.Ten {
			n++
		}
	}
	return n
}

func estimateTricks(h models.Hand, trump *models.Suit) int {
	// tenths of a trick
	t := 0
	for _, c := range h {
		switch c.Rank {
		case models.Ace, models.Ten:
			t += 8
		case models.King, models.Queen:
			t += 4
		}
		if trump != nil && c.Suit == *trump {
			t += 6
		}
	}
	return min(10, t/10)
}

func suitScore(h models.Hand, s models.Suit) int {
	cards := h.OfSuit(s)
	score := len(cards) * 15
	for _, c := range cards {
		score += c.Rank.Points()
		if c.Rank == models.Ace || c.Rank == models.Ten {
			score += 20
		}
	}
	return score
}

// DecideTrumpSuit picks the suit with the best length and strength.
func (b *Heuristic) DecideTrumpSuit(h models.Hand) models.Suit {
	best, bestScore := models.Hearts, suitScore(h, models.Hearts)
	for _, s := range models.Suits[1:] {
		if score := suitScore(h, s); score > bestScore {
			best, bestScore = s, score
		}
	}
	return best
}

// DecideBid values the hand as if its best suit were trump when none is known yet.
func (b *Heuristic) DecideBid(h models.Hand, highestBid int, trump *models.Suit) (int, bool) {
	return b.DecideBidFrom(h, highestBid, game.DefaultMinBid, trump)
}

// DecideBidFrom is DecideBid for a room whose opening bid is minBid. The
// valuation is added on top of minBid and the ceiling moves with it.
func (b *Heuristic) DecideBidFrom(h models.Hand, highestBid, minBid int, trump *models.Suit) (int, bool) {
	if trump == nil {
		s := b.DecideTrumpSuit(h)
		trump = &s
	}
	value := handValue(h, trump)
	trumps := len(h.OfSuit(*trump))
	high := highCards(h)

	if minBid <= 0 {
		minBid = game.DefaultMinBid
	}
	bid := minBid
	switch {
	case value > 250:
		bid += 50
	case value > 200:
		bid += 40
	case value > 150:
		bid += 30
	}
	switch {
	case trumps >= 6:
		bid += 30
	case trumps >= 4:
		bid += 20
	}
	switch {
	case high >= 6:
		bid += 30
	case high >= 4:
		bid += 20
	}
	bid += estimateTricks(h, trump) * 15
	bid = bid / game.BidStep * game.BidStep
	bid = max(minBid, min(maxBid+minBid-game.DefaultMinBid, bid))

	if highestBid > 0 && bid <= highestBid {
		return 0, false
	}
	return bid, true
}

func strongest(cards []models.Card, trump models.Suit) models.Card {
	best := cards[0]
	for _, c := range cards[1:] {
		if c.Rank > best.Rank || (c.Rank == best.Rank && c.Suit == trump) {
			best = c
		}
	}
	return best
}

func weakest(cards []models.Card, trump models.Suit) models.Card {
	worst := cards[0]
	for _, c := range cards[1:] {
		if c.Rank < worst.Rank || (c.Rank == worst.Rank && worst.Suit == trump) {
			worst = c
		}
	}
	return worst
}

// DecidePlay leads strong with a good hand, lets a winning partner keep the
// trick, and otherwise wins as cheaply as it can.
func (b *Heuristic) DecidePlay(h models.Hand, ledSuit *models.Suit, trump models.Suit, trick game.Trick) models.Card {
	legal := game.LegalPlays(h, trick, trump)
	if ledSuit == nil {
		value := handValue(h, &trump)
		aggressive := len(h) <= 3 || (len(h) < 8 && value > 150)
		switch {
		case value > 200 || aggressive:
			return strongest(legal, trump)
		case value < 100:
			return weakest(legal, trump)
		case h.HasSuit(trump):
			return strongest(h.OfSuit(trump), trump)
		}
		return strongest(legal, trump)
	}

	seat := (trick[len(trick)-1].Seat + 1) % models.NumSeats
	partner := (seat + 2) % models.NumSeats
	if game.TrickWinner(trick, trump) == partner {
		return weakest(legal, trump)
	}

	var winners []models.Card
	for _, c := range legal {
		next := append(append(game.Trick{}, trick...), game.Play{Seat: seat, Card: c})
		if game.TrickWinner(next, trump) == seat {
			winners = append(winners, c)
		}
	}
	if len(winners) > 0 {
		return weakest(winners, trump)
	}
	return weakest(legal, trump)
}
