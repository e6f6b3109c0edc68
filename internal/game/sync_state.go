package game

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/pinaki/internal/models"
)

// SeatState is one seat as seen by a particular viewer.
type SeatState struct {
	Seat          int           `json:"seat"`
	Team          string        `json:"team"`
	Occupied      bool          `json:"occupied"`
	Name          string        `json:"name,omitempty"`
	Bot           bool          `json:"bot"`
	HandSize      int           `json:"handSize"`
	Hand          []models.Card `json:"hand,omitempty"` // only for the viewer's own seat
	IsCurrentTurn bool          `json:"isCurrentTurn"`
}

// AuctionView is the public part of the auction.
type AuctionView struct {
	Stage          AuctionStage          `json:"stage"`
	Current        int                   `json:"current"`
	Highest        int                   `json:"highest"`
	HighestSeat    int                   `json:"highestSeat"`
	MinNextBid     int                   `json:"minNextBid"`
	Bids           [models.NumSeats]int  `json:"bids"`
	Passed         [models.NumSeats]bool `json:"passed"`
	AskInvoked     bool                  `json:"askInvoked"`
	AskingSeat     int                   `json:"askingSeat"`
	RespondingSeat int                   `json:"respondingSeat"`
	// LegalActions is filled for the viewer when it is their turn.
	LegalActions []AuctionActionKind `json:"legalActions,omitempty"`
}

// RoomSnapshot is a point-in-time view of a room for one viewer. Spectators
// never see cards in hand.
type RoomSnapshot struct {
	RoomID       string          `json:"roomId"`
	Phase        Phase           `json:"phase"`
	Rules        RoomRules       `json:"rules"`
	HandID       uuid.UUID       `json:"handId"`
	HandNumber   int             `json:"handNumber"`
	Dealer       int             `json:"dealer"`
	VoidStreak   int             `json:"voidStreak"`
	Seats        []SeatState     `json:"seats"`
	Spectators   int             `json:"spectators"`
	Auction      *AuctionView    `json:"auction,omitempty"`
	Contract     *AuctionOutcome `json:"contract,omitempty"`
	Trump        *models.Suit    `json:"trump,omitempty"`
	Trick        Trick           `json:"trick"`
	Leader       int             `json:"leader"`
	Turn         int             `json:"turn"`
	TricksPlayed int             `json:"tricksPlayed"`
	Captured     [2]int          `json:"captured"` // card counts per team
	Scores       [2]int          `json:"scores"`
	Target       int             `json:"target"`
	LastResult   *HandResult     `json:"lastResult,omitempty"`
	Winner       *models.Team    `json:"winner,omitempty"`

	ViewerSeat int           `json:"viewerSeat"`
	LegalPlays []models.Card `json:"legalPlays,omitempty"`
}

// Snapshot returns the room as seen by viewer.
func (r *Room) Snapshot(viewer Participant) RoomSnapshot {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return r.snapshotLocked(viewer)
}

// SnapshotAs is Snapshot for a holder; it fails if the seat has changed hands.
func (r *Room) SnapshotAs(h Holder) (RoomSnapshot, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if err := r.checkHolder(h); err != nil {
		return RoomSnapshot{}, err
	}
	return r.snapshotLocked(h.Participant), nil
}

// Assumes lock is held.
func (r *Room) snapshotLocked(viewer Participant) RoomSnapshot {
	snap := RoomSnapshot{
		RoomID:       r.ID,
		Phase:        r.Phase,
		Rules:        r.Rules,
		HandID:       r.HandID,
		HandNumber:   r.HandNumber,
		Dealer:       r.Dealer,
		VoidStreak:   r.VoidStreak,
		Spectators:   len(r.Spectators),
		Contract:     r.Contract,
		Trick:        append(Trick{}, r.Trick...),
		Leader:       r.Leader,
		Turn:         r.seatToAct(),
		TricksPlayed: r.TricksPlayed,
		Scores:       r.Match.Scores,
		Target:       r.Match.Target,
		LastResult:   r.LastResult,
		Winner:       r.Match.Winner,
		ViewerSeat:   viewer.Seat,
	}
	if r.Trump != nil {
		t := *r.Trump
		snap.Trump = &t
	}
	for team := range r.Captured {
		snap.Captured[team] = len(r.Captured[team])
	}

	own := !viewer.IsSpectator() && viewer.Seat < models.NumSeats && r.Seats[viewer.Seat] != nil
	for seat := 0; seat < models.NumSeats; seat++ {
		st := SeatState{
			Seat:          seat,
			Team:          models.TeamOf(seat).String(),
			HandSize:      len(r.Hands[seat]),
			IsCurrentTurn: snap.Turn == seat,
		}
		if occ := r.Seats[seat]; occ != nil {
			st.Occupied = true
			st.Name = occ.Name
			st.Bot = occ.Bot
		}
		if own && seat == viewer.Seat && len(r.Hands[seat]) > 0 {
			st.Hand = r.Hands[seat].Sorted()
		}
		snap.Seats = append(snap.Seats, st)
	}

	if a := r.Auction; a != nil {
		view := &AuctionView{
			Stage:          a.Stage,
			Current:        a.Current,
			Highest:        a.Highest,
			HighestSeat:    a.HighestSeat,
			MinNextBid:     a.MinNextBid(),
			Bids:           a.Bids,
			Passed:         a.Passed,
			AskInvoked:     a.AskInvoked,
			AskingSeat:     a.AskingSeat,
			RespondingSeat: a.RespondingSeat,
		}
		if own {
			view.LegalActions = a.LegalActions(viewer.Seat)
		}
		snap.Auction = view
	}

	if own && r.Phase == PhasePlay && r.Turn == viewer.Seat && r.Trump != nil {
		snap.LegalPlays = LegalPlays(r.Hands[viewer.Seat], r.Trick, *r.Trump)
	}
	return snap
}
