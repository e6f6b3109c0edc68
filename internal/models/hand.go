package models

import "sort"

// Hand is the multiset of cards held by one seat.
type Hand []Card

// Contains reports whether at least one copy of c is held.
func (h Hand) Contains(c Card) bool {
	for _, x := range h {
		if x == c {
			return true
		}
	}
	return false
}

// Count returns how many copies of c are held.
func (h Hand) Count(c Card) int {
	n := 0
	for _, x := range h {
		if x == c {
			n++
		}
	}
	return n
}

func (h Hand) HasSuit(s Suit) bool {
	for _, x := range h {
		if x.Suit == s {
			return true
		}
	}
	return false
}

// OfSuit returns the held cards of suit s.
func (h Hand) OfSuit(s Suit) []Card {
	var out []Card
	for _, x := range h {
		if x.Suit == s {
			out = append(out, x)
		}
	}
	return out
}

// Remove drops one copy of c. It returns the new hand and false if c was not held.
func (h Hand) Remove(c Card) (Hand, bool) {
	for i, x := range h {
		if x == c {
			out := make(Hand, 0, len(h)-1)
			out = append(out, h[:i]...)
			return append(out, h[i+1:]...), true
		}
	}
	return h, false
}

// Clone returns an independent copy.
func (h Hand) Clone() Hand {
	out := make(Hand, len(h))
	copy(out, h)
	return out
}

// Sorted returns a copy ordered by suit, then strongest rank first.
func (h Hand) Sorted() Hand {
	out := h.Clone()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Suit != out[j].Suit {
			return out[i].Suit < out[j].Suit
		}
		return out[i].Rank > out[j].Rank
	})
	return out
}

// Team is a fixed partnership: seats 0 and 2 form TeamA, seats 1 and 3 form TeamB.
type Team int

const (
	TeamA Team = iota
	TeamB
)

func (t Team) String() string {
	if t == TeamA {
		return "A"
	}
	return "B"
}

func (t Team) Other() Team { return 1 - t }

// TeamOf returns the partnership a seat belongs to.
func TeamOf(seat int) Team { return Team(seat % 2) }

// NumSeats is the number of seats at a table.
const NumSeats = 4
