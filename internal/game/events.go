package game

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/pinaki/internal/models"
)

// RoomEventType names an event broadcast to room participants.
type RoomEventType string

const (
	EventPlayerJoined    RoomEventType = "player_joined"
	EventPlayerLeft      RoomEventType = "player_left"
	EventSpectatorJoined RoomEventType = "spectator_joined"
	EventSpectatorLeft   RoomEventType = "spectator_left"
	EventHandDealt       RoomEventType = "hand_dealt"
	EventPrivateHand     RoomEventType = "private_hand" // the dealt cards, sent to the owning seat only
	EventAuctionUpdate   RoomEventType = "auction_update"
	EventHandVoided      RoomEventType = "hand_voided"
	EventTrumpSelected   RoomEventType = "trump_selected"
	EventCardPlayed      RoomEventType = "card_played"
	EventTrickEnded      RoomEventType = "trick_ended"
	EventHandScored      RoomEventType = "hand_scored"
	EventMatchEnd        RoomEventType = "match_end"
	EventChat            RoomEventType = "chat"
	EventPrivateSync     RoomEventType = "private_sync_state"
)

// RoomEvent is the single envelope for everything a room emits.
type RoomEvent struct {
	Type    RoomEventType          `json:"type"`
	RoomID  string                 `json:"roomId"`
	Seat    *int                   `json:"seat,omitempty"`
	Card    *models.Card           `json:"card,omitempty"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	State   *RoomSnapshot          `json:"state,omitempty"`
}

func seatRef(seat int) *int { return &seat }

// DealEvent describes a freshly dealt hand. Hands is indexed by seat and must
// only reach the owning seat.
type DealEvent struct {
	HandID     uuid.UUID                    `json:"handId"`
	HandNumber int                          `json:"handNumber"`
	Dealer     int                          `json:"dealer"`
	FirstBid   int                          `json:"firstBidder"`
	Hands      [models.NumSeats]models.Hand `json:"-"`
}

// AuctionUpdate is the outcome of one accepted auction action.
type AuctionUpdate struct {
	Seat        int             `json:"seat"`
	Action      string          `json:"action"`
	Amount      int             `json:"amount,omitempty"`
	Stage       AuctionStage    `json:"stage"`
	Current     int             `json:"current"`
	Highest     int             `json:"highest"`
	HighestSeat int             `json:"highestSeat"`
	Outcome     *AuctionOutcome `json:"outcome,omitempty"`
	// Redeal is set when the auction voided the hand and a new one was dealt.
	Redeal *DealEvent `json:"redeal,omitempty"`
}

// TrumpSelected announces the trump suit and the meld it produces.
type TrumpSelected struct {
	Seat     int                         `json:"seat"`
	Suit     models.Suit                 `json:"suit"`
	Bid      int                         `json:"bid"`
	Meld     [models.NumSeats][]MeldItem `json:"meld"`
	TeamMeld [2]int                      `json:"teamMeld"`
}

// PlayResultKind distinguishes a card that left the trick open from one that closed it.
type PlayResultKind string

const (
	PlayCardPlayed PlayResultKind = "card_played"
	PlayTrickEnded PlayResultKind = "trick_ended"
)

// PlayResult is the outcome of one accepted card.
type PlayResult struct {
	Kind        PlayResultKind `json:"kind"`
	Play        Play           `json:"play"`
	NextTurn    int            `json:"nextTurn"`
	Trick       Trick          `json:"trick"`
	TrickWinner int            `json:"trickWinner"`
	// Scored is set when this card ended the last trick of the hand.
	Scored    *HandResult  `json:"scored,omitempty"`
	MatchOver bool         `json:"matchOver"`
	Winner    *models.Team `json:"winner,omitempty"`
}

// JoinResult is returned by a successful join.
type JoinResult struct {
	Seat        int          `json:"seat"`
	SpectatorID uuid.UUID    `json:"spectatorId,omitempty"`
	Name        string       `json:"name"`
	Snapshot    RoomSnapshot `json:"state"`
}

// Spectator reports whether the join produced a spectator handle instead of a seat.
func (j JoinResult) Spectator() bool { return j.Seat < 0 }
