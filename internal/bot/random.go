package bot

import (
	"math/rand"
	"sync"
	"time"

	"github.com/jason-s-yu/pinaki/internal/game"
	"github.com/jason-s-yu/pinaki/internal/models"
)

// Random bids the minimum or passes at random and plays a random legal card.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandom(seed int64) *Random {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

func (b *Random) intn(n int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rng.Intn(n)
}

func (b *Random) DecideBid(h models.Hand, highestBid int, trump *models.Suit) (int, bool) {
	return b.DecideBidFrom(h, highestBid, game.DefaultMinBid, trump)
}

func (b *Random) DecideBidFrom(_ models.Hand, highestBid, minBid int, _ *models.Suit) (int, bool) {
	if b.intn(2) == 0 {
		return 0, false
	}
	if highestBid == 0 {
		if minBid <= 0 {
			minBid = game.DefaultMinBid
		}
		return minBid, true
	}
	return highestBid + game.BidStep, true
}

func (b *Random) DecideTrumpSuit(models.Hand) models.Suit {
	return models.Suits[b.intn(len(models.Suits))]
}

func (b *Random) DecidePlay(h models.Hand, _ *models.Suit, trump models.Suit, trick game.Trick) models.Card {
	legal := game.LegalPlays(h, trick, trump)
	return legal[b.intn(len(legal))]
}
