package game

import (
	"testing"

	"github.com/jason-s-yu/pinaki/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func card(t *testing.T, s string) models.Card {
	t.Helper()
	c, err := models.ParseCard(s)
	require.NoError(t, err)
	return c
}

func hand(t *testing.T, cards ...string) models.Hand {
	t.Helper()
	h := make(models.Hand, 0, len(cards))
	for _, s := range cards {
		h = append(h, card(t, s))
	}
	return h
}

func trick(t *testing.T, leader int, cards ...string) Trick {
	t.Helper()
	tr := make(Trick, 0, len(cards))
	for i, s := range cards {
		tr = append(tr, Play{Seat: (leader + i) % 4, Card: card(t, s)})
	}
	return tr
}

func TestTrickWinner(t *testing.T) {
	tests := []struct {
		name   string
		trump  models.Suit
		cards  []string
		winner int
	}{
		{"no trump, highest led suit", models.Spades, []string{"KH", "10H", "AD", "9H"}, 1},
		{"off-suit ace never wins", models.Spades, []string{"9H", "AC", "AD", "JH"}, 3},
		{"single low trump wins", models.Spades, []string{"AH", "AH", "9S", "10H"}, 2},
		{"higher of two trumps", models.Spades, []string{"AH", "QS", "KS", "10H"}, 2},
		{"trump led, higher trump", models.Hearts, []string{"JH", "AH", "10H", "AS"}, 1},
		{"duplicate keeps first", models.Clubs, []string{"AD", "AD", "9D", "KD"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := trick(t, 0, tt.cards...)
			assert.Equal(t, tt.winner, TrickWinner(tr, tt.trump))
		})
	}
}

func TestTrickWinnerRespectsLeader(t *testing.T) {
	tr := trick(t, 2, "KH", "AH", "9H", "QH")
	assert.Equal(t, 3, TrickWinner(tr, models.Spades))
}

func TestLegalPlaysLeadingAnything(t *testing.T) {
	h := hand(t, "AH", "9S", "KD")
	assert.ElementsMatch(t, h, LegalPlays(h, nil, models.Clubs))
}

func TestLegalPlaysMustFollowSuit(t *testing.T) {
	h := hand(t, "9H", "AS", "KD", "AC")
	tr := trick(t, 0, "10H")
	assert.Equal(t, hand(t, "9H"), models.Hand(LegalPlays(h, tr, models.Spades)))
	assert.False(t, IsLegal(h, tr, models.Spades, card(t, "AS")), "cannot trump while holding led suit")
	assert.False(t, IsLegal(h, tr, models.Spades, card(t, "KD")))
}

func TestLegalPlaysFollowingNonTrumpNeedNotBeat(t *testing.T) {
	h := hand(t, "9H", "AH")
	tr := trick(t, 0, "10H")
	assert.ElementsMatch(t, hand(t, "9H", "AH"), LegalPlays(h, tr, models.Spades))
}

func TestLegalPlaysTrumpLedMustOvertrump(t *testing.T) {
	h := hand(t, "9S", "AS", "KH")
	tr := trick(t, 0, "KS")
	assert.Equal(t, hand(t, "AS"), models.Hand(LegalPlays(h, tr, models.Spades)))
	assert.False(t, IsLegal(h, tr, models.Spades, card(t, "9S")), "lower trump forbidden while a higher is held")

	// cannot beat the table: any trump
	h = hand(t, "9S", "JS", "KH")
	tr = trick(t, 0, "AS")
	assert.ElementsMatch(t, hand(t, "9S", "JS"), LegalPlays(h, tr, models.Spades))
}

func TestLegalPlaysVoidInLedSuitMustTrump(t *testing.T) {
	h := hand(t, "9S", "QS", "KD")
	tr := trick(t, 0, "AH")
	assert.ElementsMatch(t, hand(t, "9S", "QS"), LegalPlays(h, tr, models.Spades))

	// trump on table, holds a higher one
	tr = trick(t, 0, "AH", "JS")
	assert.Equal(t, hand(t, "QS"), models.Hand(LegalPlays(h, tr, models.Spades)))

	// trump on table, none higher
	tr = trick(t, 0, "AH", "AS")
	assert.ElementsMatch(t, hand(t, "9S", "QS"), LegalPlays(h, tr, models.Spades))
}

func TestLegalPlaysVoidInBoth(t *testing.T) {
	h := hand(t, "KD", "9C")
	tr := trick(t, 0, "AH", "AS")
	assert.ElementsMatch(t, h, LegalPlays(h, tr, models.Spades))
}

func TestIsLegalRequiresCardInHand(t *testing.T) {
	h := hand(t, "KD")
	assert.False(t, IsLegal(h, nil, models.Spades, card(t, "AD")))
	assert.True(t, IsLegal(h, nil, models.Spades, card(t, "KD")))
}
