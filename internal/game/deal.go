package game

import (
	"math/rand"

	"github.com/jason-s-yu/pinaki/internal/models"
)

const (
	HandSize   = 12
	packetSize = 4
	dealRounds = HandSize / packetSize
)

// Deal shuffles a fresh double deck with rng and deals three rounds of
// four-card packets, seat 0 first.
func Deal(rng *rand.Rand) [models.NumSeats]models.Hand {
	deck := models.NewDeck()
	models.Shuffle(deck, rng)

	var hands [models.NumSeats]models.Hand
	for seat := range hands {
		hands[seat] = make(models.Hand, 0, HandSize)
	}
	next := 0
	for round := 0; round < dealRounds; round++ {
		for seat := 0; seat < models.NumSeats; seat++ {
			hands[seat] = append(hands[seat], deck[next:next+packetSize]...)
			next += packetSize
		}
	}
	return hands
}
