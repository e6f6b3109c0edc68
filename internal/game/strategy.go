package game

import "github.com/jason-s-yu/pinaki/internal/models"

// Strategy decides for a bot-controlled seat. The room consults it
// synchronously whenever a bot seat is due to act; illegal answers are
// replaced with a pass or the first legal card.
type Strategy interface {
	// DecideBid returns the amount to bid, or ok=false to pass. highestBid is
	// zero when nobody has bid yet.
	DecideBid(hand models.Hand, highestBid int, trump *models.Suit) (amount int, ok bool)
	DecideTrumpSuit(hand models.Hand) models.Suit
	// DecidePlay picks a card for the current trick; ledSuit is nil when leading.
	DecidePlay(hand models.Hand, ledSuit *models.Suit, trump models.Suit, trick Trick) models.Card
}

// MinBidStrategy is implemented by strategies that can open at a room's own
// minimum bid instead of DefaultMinBid.
type MinBidStrategy interface {
	DecideBidFrom(hand models.Hand, highestBid, minBid int, trump *models.Suit) (amount int, ok bool)
}
