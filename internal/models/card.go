package models

import (
	"fmt"
	"math/rand"
	"strings"
)

// Suit is one of the four French suits.
type Suit int

const (
	Hearts Suit = iota
	Spades
	Diamonds
	Clubs
)

// Suits lists every suit in table order.
var Suits = [...]Suit{Hearts, Spades, Diamonds, Clubs}

var suitNames = [...]string{"hearts", "spades", "diamonds", "clubs"}
var suitSymbols = [...]string{"♥", "♠", "♦", "♣"}
var suitLetters = [...]string{"H", "S", "D", "C"}

func (s Suit) String() string {
	if s < Hearts || s > Clubs {
		return fmt.Sprintf("Suit(%d)", int(s))
	}
	return suitNames[s]
}

// Symbol returns the unicode pip of the suit.
func (s Suit) Symbol() string {
	if s < Hearts || s > Clubs {
		return "?"
	}
	return suitSymbols[s]
}

func (s Suit) Valid() bool { return s >= Hearts && s <= Clubs }

// ParseSuit accepts the name, the symbol or the initial letter of a suit.
func ParseSuit(v string) (Suit, error) {
	v = strings.TrimSpace(v)
	for i := range suitNames {
		if strings.EqualFold(v, suitNames[i]) || v == suitSymbols[i] || strings.EqualFold(v, suitLetters[i]) {
			return Suit(i), nil
		}
	}
	return 0, fmt.Errorf("unknown suit %q", v)
}

func (s Suit) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid suit %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Suit) UnmarshalText(b []byte) error {
	parsed, err := ParseSuit(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Rank values are ordered by trick-taking strength, weakest first.
type Rank int

const (
	Nine Rank = iota
	Jack
	Queen
	King
	Ten
	Ace
)

// Ranks lists every rank from weakest to strongest.
var Ranks = [...]Rank{Nine, Jack, Queen, King, Ten, Ace}

var rankNames = [...]string{"9", "J", "Q", "K", "10", "A"}

func (r Rank) String() string {
	if r < Nine || r > Ace {
		return fmt.Sprintf("Rank(%d)", int(r))
	}
	return rankNames[r]
}

func (r Rank) Valid() bool { return r >= Nine && r <= Ace }

// Points is the value of the rank when it is captured in a trick.
func (r Rank) Points() int {
	switch r {
	case Ace, Ten:
		return 10
	case King, Queen:
		return 5
	default:
		return 0
	}
}

func ParseRank(v string) (Rank, error) {
	v = strings.ToUpper(strings.TrimSpace(v))
	for i, name := range rankNames {
		if v == name {
			return Rank(i), nil
		}
	}
	return 0, fmt.Errorf("unknown rank %q", v)
}

func (r Rank) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid rank %d", int(r))
	}
	return []byte(r.String()), nil
}

func (r *Rank) UnmarshalText(b []byte) error {
	parsed, err := ParseRank(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Card is a plain value; the two physical copies of a card are indistinguishable.
type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

func (c Card) String() string {
	return c.Rank.String() + c.Suit.Symbol()
}

// Beats reports whether c outranks o within the same suit.
func (c Card) Beats(o Card) bool {
	return c.Suit == o.Suit && c.Rank > o.Rank
}

// ParseCard reads forms such as "10♥", "AS" or "q♠".
func ParseCard(v string) (Card, error) {
	v = strings.TrimSpace(v)
	for i := range suitSymbols {
		if strings.HasSuffix(v, suitSymbols[i]) {
			return parseCardParts(strings.TrimSuffix(v, suitSymbols[i]), Suit(i), v)
		}
	}
	if len(v) < 2 {
		return Card{}, fmt.Errorf("malformed card %q", v)
	}
	suit, err := ParseSuit(v[len(v)-1:])
	if err != nil {
		return Card{}, fmt.Errorf("malformed card %q: %w", v, err)
	}
	return parseCardParts(v[:len(v)-1], suit, v)
}

func parseCardParts(rank string, suit Suit, raw string) (Card, error) {
	r, err := ParseRank(rank)
	if err != nil {
		return Card{}, fmt.Errorf("malformed card %q: %w", raw, err)
	}
	return Card{Suit: suit, Rank: r}, nil
}

// DeckSize is the number of cards in the double deck.
const DeckSize = 2 * len(Suits) * len(Ranks)

// NewDeck returns an ordered double deck: two copies of each suit/rank pair.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for n := 0; n < 2; n++ {
		for _, s := range Suits {
			for _, r := range Ranks {
				deck = append(deck, Card{Suit: s, Rank: r})
			}
		}
	}
	return deck
}

// Shuffle permutes the deck in place (Fisher-Yates) using rng.
func Shuffle(deck []Card, rng *rand.Rand) {
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
}
