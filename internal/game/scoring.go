package game

import (
	"fmt"

	"github.com/jason-s-yu/pinaki/internal/models"
)

const (
	DefaultTargetScore = 2000
	LastTrickBonus     = 10
)

// MeldItem is one scoring combination found in a dealt hand.
type MeldItem struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

var runRanks = [...]models.Rank{models.Ace, models.Ten, models.King, models.Queen, models.Jack}

var fourOfAKind = []struct {
	rank   models.Rank
	name   string
	points int
}{
	{models.Jack, "four jacks", 40},
	{models.Queen, "four queens", 60},
	{models.King, "four kings", 80},
	{models.Ace, "four aces", 100},
}

func hasRun(h models.Hand, s models.Suit) bool {
	for _, r := range runRanks {
		if !h.Contains(models.Card{Suit: s, Rank: r}) {
			return false
		}
	}
	return true
}

// Meld lists the combinations in a dealt hand for the given trump.
func Meld(h models.Hand, trump models.Suit) []MeldItem {
	var items []MeldItem
	add := func(name string, points int) {
		items = append(items, MeldItem{Name: name, Points: points})
	}

	trumpRun := hasRun(h, trump)
	if trumpRun {
		add(fmt.Sprintf("trump run %s", trump.Symbol()), 150)
	}

	kings := h.Count(models.Card{Suit: trump, Rank: models.King})
	queens := h.Count(models.Card{Suit: trump, Rank: models.Queen})
	if trumpRun {
		kings--
		queens--
	}
	for i := 0; i < min(kings, queens); i++ {
		add(fmt.Sprintf("trump marriage %s", trump.Symbol()), 40)
	}

	for _, s := range models.Suits {
		if s == trump {
			continue
		}
		pairs := min(h.Count(models.Card{Suit: s, Rank: models.King}), h.Count(models.Card{Suit: s, Rank: models.Queen}))
		for i := 0; i < pairs; i++ {
			add(fmt.Sprintf("marriage %s", s.Symbol()), 20)
		}
	}

	for _, k := range fourOfAKind {
		all := true
		for _, s := range models.Suits {
			if !h.Contains(models.Card{Suit: s, Rank: k.rank}) {
				all = false
				break
			}
		}
		if all {
			add(k.name, k.points)
		}
	}

	if h.Contains(models.Card{Suit: models.Spades, Rank: models.Queen}) &&
		h.Contains(models.Card{Suit: models.Diamonds, Rank: models.Jack}) {
		add("Q♠ J♦", 40)
	}

	for _, s := range models.Suits {
		if s != trump && hasRun(h, s) {
			add(fmt.Sprintf("run %s", s.Symbol()), 150)
		}
	}

	for i := 0; i < h.Count(models.Card{Suit: trump, Rank: models.Nine}); i++ {
		add(fmt.Sprintf("9%s", trump.Symbol()), 10)
	}
	return items
}

// MeldScore sums Meld.
func MeldScore(h models.Hand, trump models.Suit) int {
	total := 0
	for _, m := range Meld(h, trump) {
		total += m.Points
	}
	return total
}

// TrickPoints is the card value of captured cards, without the last-trick bonus.
func TrickPoints(cards []models.Card) int {
	total := 0
	for _, c := range cards {
		total += c.Rank.Points()
	}
	return total
}

// HandTally is everything needed to score a completed hand.
type HandTally struct {
	Bidder        models.Team
	Bid           int
	Meld          [2]int
	Captured      [2][]models.Card
	LastTrickTeam models.Team
}

// HandResult is the scored outcome of one hand.
type HandResult struct {
	Bidder        models.Team `json:"bidder"`
	Bid           int         `json:"bid"`
	Meld          [2]int      `json:"meld"`
	Tricks        [2]int      `json:"tricks"`
	LastTrickTeam models.Team `json:"lastTrickTeam"`
	Shutout       bool        `json:"shutout"`
	WentDown      bool        `json:"wentDown"`
	// Delta is what each team adds to its cumulative score.
	Delta [2]int `json:"delta"`
}

// ScoreHand applies trick points, the last-trick bonus, the shutout rule and
// the go-down penalty.
func ScoreHand(t HandTally) HandResult {
	res := HandResult{
		Bidder:        t.Bidder,
		Bid:           t.Bid,
		Meld:          t.Meld,
		LastTrickTeam: t.LastTrickTeam,
	}
	for team := range t.Captured {
		res.Tricks[team] = TrickPoints(t.Captured[team])
	}
	res.Tricks[t.LastTrickTeam] += LastTrickBonus

	defender := t.Bidder.Other()
	if res.Tricks[defender] == 0 {
		res.Shutout = true
		res.Meld[defender] = 0
	}
	res.Delta[defender] = res.Meld[defender] + res.Tricks[defender]

	bidderTotal := res.Meld[t.Bidder] + res.Tricks[t.Bidder]
	if bidderTotal < t.Bid {
		res.WentDown = true
		res.Meld[t.Bidder] = 0
		res.Delta[t.Bidder] = -t.Bid
	} else {
		res.Delta[t.Bidder] = bidderTotal
	}
	return res
}

// Match holds cumulative team scores across hands.
type Match struct {
	Target int          `json:"target"`
	Scores [2]int       `json:"scores"`
	Winner *models.Team `json:"winner,omitempty"`
}

func NewMatch(target int) *Match {
	if target <= 0 {
		target = DefaultTargetScore
	}
	return &Match{Target: target}
}

func (m *Match) Over() bool { return m.Winner != nil }

// Apply adds a hand's deltas, bidding team first. Once a team reaches the
// target the match is over and nothing further is added.
func (m *Match) Apply(r HandResult) (applied [2]int) {
	if m.Over() {
		return applied
	}
	for _, team := range []models.Team{r.Bidder, r.Bidder.Other()} {
		m.Scores[team] += r.Delta[team]
		applied[team] = r.Delta[team]
		if m.Scores[team] >= m.Target {
			winner := team
			m.Winner = &winner
			return applied
		}
	}
	return applied
}
