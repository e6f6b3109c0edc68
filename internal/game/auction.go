package game

import (
	"fmt"
	"strings"

	"github.com/jason-s-yu/pinaki/internal/models"
)

const (
	DefaultMinBid = 150
	BidStep       = 10
)

// AuctionActionKind enumerates the moves a seat can make during the auction.
type AuctionActionKind int

const (
	ActionBid AuctionActionKind = iota
	ActionPass
	ActionAsk
	ActionVoid
	ActionSpeak
)

var auctionActionNames = [...]string{"bid", "pass", "ask", "void", "speak"}

func (k AuctionActionKind) String() string {
	if k < ActionBid || k > ActionSpeak {
		return fmt.Sprintf("AuctionActionKind(%d)", int(k))
	}
	return auctionActionNames[k]
}

func (k AuctionActionKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *AuctionActionKind) UnmarshalText(b []byte) error {
	for i, name := range auctionActionNames {
		if string(b) == name {
			*k = AuctionActionKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown auction action %q", b)
}

// AuctionAction is built only through Bid, Pass, Ask, Void and Speak.
type AuctionAction struct {
	kind   AuctionActionKind
	amount int
}

func Bid(amount int) AuctionAction { return AuctionAction{kind: ActionBid, amount: amount} }
func Pass() AuctionAction          { return AuctionAction{kind: ActionPass} }
func Ask() AuctionAction           { return AuctionAction{kind: ActionAsk} }
func Void() AuctionAction          { return AuctionAction{kind: ActionVoid} }
func Speak() AuctionAction         { return AuctionAction{kind: ActionSpeak} }

func (a AuctionAction) Kind() AuctionActionKind { return a.kind }

// Amount is the bid amount; zero for anything but a bid.
func (a AuctionAction) Amount() int { return a.amount }

func (a AuctionAction) String() string {
	if a.kind == ActionBid {
		return fmt.Sprintf("bid(%d)", a.amount)
	}
	return a.kind.String()
}

// ParseAuctionAction maps a wire name ("bid", "pass", "ask", "void", "speak") to an action.
func ParseAuctionAction(name string, amount int) (AuctionAction, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "bid":
		return Bid(amount), nil
	case "pass":
		return Pass(), nil
	case "ask":
		return Ask(), nil
	case "void":
		return Void(), nil
	case "speak":
		return Speak(), nil
	}
	return AuctionAction{}, fmt.Errorf("%w: unknown auction action %q", ErrIllegalAction, name)
}

// AuctionStage tracks where the auction is, including the ask/speak detour.
type AuctionStage int

const (
	// StageCollecting is the normal rotation of four bid/pass actions.
	StageCollecting AuctionStage = iota
	// StageAsking: the third seat asked, the dealer must Void or Speak.
	StageAsking
	// StageSpoken: the dealer spoke, the third seat must Bid or Pass.
	StageSpoken
	// StageDealerAnswer: the third seat bid after Speak, the dealer must Bid or Pass.
	StageDealerAnswer
	StageResolved
)

var auctionStageNames = [...]string{"collecting", "asking", "spoken", "dealer_answer", "resolved"}

func (s AuctionStage) String() string {
	if s < StageCollecting || s > StageResolved {
		return fmt.Sprintf("AuctionStage(%d)", int(s))
	}
	return auctionStageNames[s]
}

func (s AuctionStage) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *AuctionStage) UnmarshalText(b []byte) error {
	for i, name := range auctionStageNames {
		if string(b) == name {
			*s = AuctionStage(i)
			return nil
		}
	}
	return fmt.Errorf("unknown auction stage %q", b)
}

// AuctionOutcome is the resolved result: a winner at a bid, or a void hand.
type AuctionOutcome struct {
	Void   bool `json:"void"`
	Winner int  `json:"winner"`
	Bid    int  `json:"bid"`
}

// AuctionState is the bidding state machine for one hand.
type AuctionState struct {
	Dealer         int
	MinBid         int
	Stage          AuctionStage
	Current        int
	Highest        int
	HighestSeat    int
	Bids           [models.NumSeats]int
	Passed         [models.NumSeats]bool
	AskInvoked     bool
	AskingSeat     int
	RespondingSeat int

	acted   int
	outcome *AuctionOutcome
}

// NewAuction opens bidding with the seat after the dealer.
func NewAuction(dealer, minBid int) *AuctionState {
	if minBid <= 0 {
		minBid = DefaultMinBid
	}
	return &AuctionState{
		Dealer:         dealer,
		MinBid:         minBid,
		Stage:          StageCollecting,
		Current:        seatAfter(dealer, 1),
		HighestSeat:    -1,
		AskingSeat:     -1,
		RespondingSeat: -1,
	}
}

func seatAfter(seat, n int) int { return (seat + n) % models.NumSeats }

// ThirdSeat is the only seat allowed to Ask.
func (a *AuctionState) ThirdSeat() int { return seatAfter(a.Dealer, 3) }

// Outcome returns the resolution, or nil while bidding is still open.
func (a *AuctionState) Outcome() *AuctionOutcome { return a.outcome }

func (a *AuctionState) Resolved() bool { return a.Stage == StageResolved }

// MinNextBid is the smallest amount a bid may currently carry.
func (a *AuctionState) MinNextBid() int {
	if a.Highest == 0 {
		return a.MinBid
	}
	return a.Highest + BidStep
}

func (a *AuctionState) canAsk(seat int) bool {
	return a.Stage == StageCollecting &&
		!a.AskInvoked &&
		seat == a.ThirdSeat() &&
		a.Passed[seatAfter(a.Dealer, 1)] &&
		a.Passed[seatAfter(a.Dealer, 2)]
}

// LegalActions lists the kinds the given seat may submit right now.
func (a *AuctionState) LegalActions(seat int) []AuctionActionKind {
	if a.Stage == StageResolved || seat != a.Current {
		return nil
	}
	switch a.Stage {
	case StageAsking:
		return []AuctionActionKind{ActionVoid, ActionSpeak}
	case StageCollecting:
		if a.canAsk(seat) {
			return []AuctionActionKind{ActionBid, ActionPass, ActionAsk}
		}
	}
	return []AuctionActionKind{ActionBid, ActionPass}
}

func (a *AuctionState) validBid(amount int) error {
	if amount%BidStep != 0 || amount < a.MinNextBid() {
		return fmt.Errorf("%w: %d (minimum %d, multiples of %d)", ErrIllegalAmount, amount, a.MinNextBid(), BidStep)
	}
	return nil
}

func (a *AuctionState) record(seat, amount int) {
	a.Bids[seat] = amount
	a.Highest = amount
	a.HighestSeat = seat
}

func (a *AuctionState) resolve(o AuctionOutcome) {
	a.outcome = &o
	a.Stage = StageResolved
	a.Current = -1
}

// Apply validates and applies one action. On error the state is untouched.
func (a *AuctionState) Apply(seat int, act AuctionAction) error {
	if a.Stage == StageResolved {
		return ErrWrongPhase
	}
	if seat != a.Current {
		return ErrNotYourTurn
	}

	switch a.Stage {
	case StageCollecting:
		return a.applyCollecting(seat, act)
	case StageAsking:
		switch act.kind {
		case ActionVoid:
			a.resolve(AuctionOutcome{Void: true, Winner: -1})
		case ActionSpeak:
			a.Stage = StageSpoken
			a.Current = a.AskingSeat
		default:
			return ErrIllegalAction
		}
		return nil
	case StageSpoken:
		switch act.kind {
		case ActionBid:
			if err := a.validBid(act.amount); err != nil {
				return err
			}
			a.record(seat, act.amount)
			a.Stage = StageDealerAnswer
			a.Current = a.Dealer
		case ActionPass:
			a.Passed[seat] = true
			a.resolve(AuctionOutcome{Winner: a.Dealer, Bid: a.MinBid})
		default:
			return ErrIllegalAction
		}
		return nil
	case StageDealerAnswer:
		switch act.kind {
		case ActionBid:
			if err := a.validBid(act.amount); err != nil {
				return err
			}
			a.record(seat, act.amount)
			a.resolve(AuctionOutcome{Winner: seat, Bid: act.amount})
		case ActionPass:
			a.Passed[seat] = true
			a.resolve(AuctionOutcome{Winner: a.AskingSeat, Bid: a.Bids[a.AskingSeat]})
		default:
			return ErrIllegalAction
		}
		return nil
	}
	return ErrWrongPhase
}

func (a *AuctionState) applyCollecting(seat int, act AuctionAction) error {
	switch act.kind {
	case ActionBid:
		if err := a.validBid(act.amount); err != nil {
			return err
		}
		a.record(seat, act.amount)
	case ActionPass:
		a.Passed[seat] = true
	case ActionAsk:
		if !a.canAsk(seat) {
			return ErrIllegalAction
		}
		a.AskInvoked = true
		a.AskingSeat = seat
		a.RespondingSeat = a.Dealer
		a.Stage = StageAsking
		a.Current = a.Dealer
		return nil
	default:
		return ErrIllegalAction
	}

	a.acted++
	if a.acted < models.NumSeats {
		a.Current = seatAfter(a.Current, 1)
		return nil
	}
	if a.HighestSeat < 0 {
		a.resolve(AuctionOutcome{Void: true, Winner: -1})
		return nil
	}
	a.resolve(AuctionOutcome{Winner: a.HighestSeat, Bid: a.Highest})
	return nil
}
