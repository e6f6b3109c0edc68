package game

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jason-s-yu/pinaki/internal/models"
	log "github.com/sirupsen/logrus"
)

// Phase is the stage a room is in.
type Phase string

const (
	PhaseWaiting     Phase = "waiting"
	PhaseDealing     Phase = "dealing"
	PhaseAuction     Phase = "auction"
	PhaseTrumpSelect Phase = "trump_select"
	PhasePlay        Phase = "play"
	PhaseScored      Phase = "scored"
	PhaseMatchOver   Phase = "match_over"
)

const (
	InitialDealer = 3
	maxNameLen    = 32
	maxChatLen    = 200
	maxBotSteps   = 10000
)

// Occupant is whoever holds a seat.
type Occupant struct {
	Name     string    `json:"name"`
	Bot      bool      `json:"bot"`
	JoinedAt time.Time `json:"joinedAt"`
}

// Participant identifies either a seat or a spectator within a room.
type Participant struct {
	Seat      int
	Spectator uuid.UUID
}

func SeatParticipant(seat int) Participant { return Participant{Seat: seat} }

func SpectatorParticipant(id uuid.UUID) Participant {
	return Participant{Seat: -1, Spectator: id}
}

func (p Participant) IsSpectator() bool { return p.Seat < 0 }

// Room is the authoritative state of one table. Every exported method takes Mu
// for the whole transition, so operations on a room are applied one at a time.
type Room struct {
	ID        string
	Mu        sync.Mutex
	Rules     RoomRules
	CreatedAt time.Time

	Seats      [models.NumSeats]*Occupant
	Spectators map[uuid.UUID]string

	Phase      Phase
	Dealer     int
	VoidStreak int
	HandNumber int
	HandID     uuid.UUID

	Hands        [models.NumSeats]models.Hand
	dealt        [models.NumSeats]models.Hand
	Auction      *AuctionState
	Contract     *AuctionOutcome
	Trump        *models.Suit
	Meld         [models.NumSeats][]MeldItem
	Trick        Trick
	Leader       int
	Turn         int
	TricksPlayed int
	Captured     [2][]models.Card
	LastResult   *HandResult
	Match        *Match

	BroadcastFn  func(ev RoomEvent)
	SendToSeatFn func(seat int, ev RoomEvent)

	strategy Strategy
	rng      *rand.Rand
}

// NewRoom creates an empty room waiting for players.
func NewRoom(id string, rules RoomRules) *Room {
	seed := rules.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if rules.MinBid <= 0 {
		rules.MinBid = DefaultMinBid
	}
	if rules.VoidLimit <= 0 {
		rules.VoidLimit = DefaultVoidLimit
	}
	if rules.TargetScore <= 0 {
		rules.TargetScore = DefaultTargetScore
	}
	return &Room{
		ID:         id,
		Rules:      rules,
		CreatedAt:  time.Now(),
		Spectators: make(map[uuid.UUID]string),
		Phase:      PhaseWaiting,
		Dealer:     InitialDealer,
		Leader:     -1,
		Turn:       -1,
		Match:      NewMatch(rules.TargetScore),
		rng:        rand.New(rand.NewSource(seed)),
	}
}

// SetStrategy installs the decision maker used for bot seats.
func (r *Room) SetStrategy(s Strategy) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	r.strategy = s
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLen {
		return "", protocolErr("join", ErrInvalidName)
	}
	return name, nil
}

// Assumes lock is held.
func (r *Room) nameInUse(name string) bool {
	for _, occ := range r.Seats {
		if occ != nil && strings.EqualFold(occ.Name, name) {
			return true
		}
	}
	for _, n := range r.Spectators {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

// Join seats name in the first free seat, or as a spectator. When every seat
// is taken a human may still replace a bot.
func (r *Room) Join(name string, asSpectator bool) (JoinResult, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	name, err := cleanName(name)
	if err != nil {
		return JoinResult{}, err
	}
	if r.nameInUse(name) {
		return JoinResult{}, &CapacityError{Room: r.ID, Err: ErrNameTaken}
	}

	if asSpectator {
		id := uuid.New()
		r.Spectators[id] = name
		log.Infof("Room %s: spectator %q joined.", r.ID, name)
		r.fireEvent(RoomEvent{
			Type:    EventSpectatorJoined,
			Payload: map[string]interface{}{"name": name, "spectators": len(r.Spectators)},
		})
		return JoinResult{Seat: -1, SpectatorID: id, Name: name, Snapshot: r.snapshotLocked(SpectatorParticipant(id))}, nil
	}

	seat := r.firstFreeSeat()
	if seat < 0 {
		seat = r.firstBotSeat()
	}
	if seat < 0 {
		return JoinResult{}, &CapacityError{Room: r.ID, Err: ErrRoomFull}
	}
	r.Seats[seat] = &Occupant{Name: name, JoinedAt: time.Now()}
	log.Infof("Room %s: %q took seat %d.", r.ID, name, seat)
	r.fireEvent(RoomEvent{
		Type:    EventPlayerJoined,
		Seat:    seatRef(seat),
		Payload: map[string]interface{}{"name": name, "team": models.TeamOf(seat).String(), "bot": false},
	})
	if r.Hands[seat] != nil && r.Phase != PhaseWaiting {
		r.fireToSeat(seat, RoomEvent{Type: EventPrivateHand, Seat: seatRef(seat), Payload: map[string]interface{}{"hand": r.Hands[seat].Sorted()}})
	}
	return JoinResult{Seat: seat, Name: name, Snapshot: r.snapshotLocked(SeatParticipant(seat))}, nil
}

// Assumes lock is held.
func (r *Room) firstFreeSeat() int {
	for seat, occ := range r.Seats {
		if occ == nil {
			return seat
		}
	}
	return -1
}

// Assumes lock is held.
func (r *Room) firstBotSeat() int {
	for seat, occ := range r.Seats {
		if occ != nil && occ.Bot {
			return seat
		}
	}
	return -1
}

// AddBot seats a bot in the first free seat and lets it act if it is due.
func (r *Room) AddBot() (int, error) {
	return r.addBot(Holder{}, false)
}

// AddBotAs is AddBot requested by a seated holder.
func (r *Room) AddBotAs(h Holder) (int, error) {
	return r.addBot(h, true)
}

func (r *Room) addBot(h Holder, check bool) (int, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if check {
		if err := r.checkActor("add bot", h); err != nil {
			return -1, err
		}
	}
	seat, err := r.addBotLocked()
	if err != nil {
		return -1, err
	}
	r.runBots()
	return seat, nil
}

// Assumes lock is held.
func (r *Room) addBotLocked() (int, error) {
	if r.strategy == nil {
		return -1, protocolErr("add bot", ErrNoStrategy)
	}
	seat := r.firstFreeSeat()
	if seat < 0 {
		return -1, &CapacityError{Room: r.ID, Err: ErrRoomFull}
	}
	name := fmt.Sprintf("Bot %d", seat+1)
	for i := 2; r.nameInUse(name); i++ {
		name = fmt.Sprintf("Bot %d-%d", seat+1, i)
	}
	r.Seats[seat] = &Occupant{Name: name, Bot: true, JoinedAt: time.Now()}
	log.Infof("Room %s: bot seated at %d.", r.ID, seat)
	r.fireEvent(RoomEvent{
		Type:    EventPlayerJoined,
		Seat:    seatRef(seat),
		Payload: map[string]interface{}{"name": name, "team": models.TeamOf(seat).String(), "bot": true},
	})
	return seat, nil
}

// Leave vacates a seat or drops a spectator. The hand in progress is kept for
// whoever takes the seat next. It reports whether no human remains.
func (r *Room) Leave(p Participant) (bool, error) {
	return r.LeaveAs(Holder{Participant: p})
}

// LeaveAs is Leave for a holder; it fails if the seat has changed hands.
func (r *Room) LeaveAs(h Holder) (bool, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if err := r.checkHolder(h); err != nil {
		return r.emptyLocked(), err
	}
	p := h.Participant
	if p.IsSpectator() {
		name := r.Spectators[p.Spectator]
		delete(r.Spectators, p.Spectator)
		log.Infof("Room %s: spectator %q left.", r.ID, name)
		r.fireEvent(RoomEvent{
			Type:    EventSpectatorLeft,
			Payload: map[string]interface{}{"name": name, "spectators": len(r.Spectators)},
		})
		return r.emptyLocked(), nil
	}

	name := r.Seats[p.Seat].Name
	r.Seats[p.Seat] = nil
	log.Infof("Room %s: %q left seat %d.", r.ID, name, p.Seat)
	r.fireEvent(RoomEvent{Type: EventPlayerLeft, Seat: seatRef(p.Seat), Payload: map[string]interface{}{"name": name}})
	return r.emptyLocked(), nil
}

// Holder is a participant bound to the name it joined under. Calls made
// through a Holder fail once the seat or spectator handle has changed hands.
// An empty Name skips the name check.
type Holder struct {
	Participant
	Name string
}

// Assumes lock is held.
func (r *Room) holderErr(h Holder) error {
	if h.IsSpectator() {
		n, ok := r.Spectators[h.Spectator]
		if !ok || (h.Name != "" && !strings.EqualFold(n, h.Name)) {
			return ErrSeatNotFound
		}
		return nil
	}
	if h.Seat >= models.NumSeats || r.Seats[h.Seat] == nil {
		return ErrSeatNotFound
	}
	if occ := r.Seats[h.Seat]; h.Name != "" && (occ.Bot || !strings.EqualFold(occ.Name, h.Name)) {
		return ErrSeatNotFound
	}
	return nil
}

// Assumes lock is held.
func (r *Room) checkHolder(h Holder) error {
	if err := r.holderErr(h); err != nil {
		return r.integrityErr(h.Seat, err)
	}
	return nil
}

// checkActor is checkHolder for requests only a seat may make.
// Assumes lock is held.
func (r *Room) checkActor(op string, h Holder) error {
	if err := r.checkHolder(h); err != nil {
		return err
	}
	if h.IsSpectator() {
		return protocolErr(op, ErrSpectator)
	}
	return nil
}

// Assumes lock is held.
func (r *Room) emptyLocked() bool {
	if len(r.Spectators) > 0 {
		return false
	}
	for _, occ := range r.Seats {
		if occ != nil && !occ.Bot {
			return false
		}
	}
	return true
}

// Assumes lock is held.
func (r *Room) integrityErr(seat int, err error) error {
	log.Warnf("Room %s: rejected reference to seat %d: %v", r.ID, seat, err)
	return &IntegrityError{Room: r.ID, Seat: seat, Err: err}
}

// StartHand deals the next hand. All four seats must be occupied, unless the
// room fills empty seats with bots.
func (r *Room) StartHand() (DealEvent, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return r.startHandLocked()
}

// StartHandAs is StartHand requested by a seated holder.
func (r *Room) StartHandAs(h Holder) (DealEvent, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if err := r.checkActor("start hand", h); err != nil {
		return DealEvent{}, err
	}
	return r.startHandLocked()
}

// Assumes lock is held.
func (r *Room) startHandLocked() (DealEvent, error) {
	if r.Phase != PhaseWaiting && r.Phase != PhaseScored {
		return DealEvent{}, protocolErr("start hand", ErrWrongPhase)
	}
	if r.Rules.FillWithBots && r.strategy != nil {
		for r.firstFreeSeat() >= 0 {
			if _, err := r.addBotLocked(); err != nil {
				return DealEvent{}, err
			}
		}
	}
	if r.firstFreeSeat() >= 0 {
		return DealEvent{}, protocolErr("start hand", ErrNotEnoughPlayers)
	}

	ev := r.dealLocked()
	r.runBots()
	return ev, nil
}

// dealLocked deals a fresh hand and opens the auction.
// Assumes lock is held.
func (r *Room) dealLocked() DealEvent {
	r.Phase = PhaseDealing
	r.HandNumber++
	r.HandID = uuid.New()
	r.Hands = Deal(r.rng)
	for seat := range r.Hands {
		r.dealt[seat] = r.Hands[seat].Clone()
	}
	r.Trump = nil
	r.Contract = nil
	r.Meld = [models.NumSeats][]MeldItem{}
	r.Trick = nil
	r.Captured = [2][]models.Card{}
	r.TricksPlayed = 0
	r.Leader, r.Turn = -1, -1
	r.LastResult = nil

	r.Auction = NewAuction(r.Dealer, r.Rules.MinBid)
	r.Phase = PhaseAuction

	ev := DealEvent{
		HandID:     r.HandID,
		HandNumber: r.HandNumber,
		Dealer:     r.Dealer,
		FirstBid:   r.Auction.Current,
	}
	for seat := range r.Hands {
		ev.Hands[seat] = r.Hands[seat].Clone()
	}

	log.Infof("Room %s: hand %d dealt, dealer %d.", r.ID, r.HandNumber, r.Dealer)
	r.fireEvent(RoomEvent{
		Type: EventHandDealt,
		Payload: map[string]interface{}{
			"handId":      r.HandID,
			"handNumber":  r.HandNumber,
			"dealer":      r.Dealer,
			"firstBidder": r.Auction.Current,
			"minBid":      r.Auction.MinNextBid(),
		},
	})
	for seat := range r.Hands {
		r.fireToSeat(seat, RoomEvent{
			Type:    EventPrivateHand,
			Seat:    seatRef(seat),
			Payload: map[string]interface{}{"hand": r.Hands[seat].Sorted()},
		})
	}
	return ev
}

// SubmitAuctionAction applies a bid, pass, ask, void or speak for seat.
func (r *Room) SubmitAuctionAction(seat int, act AuctionAction) (AuctionUpdate, error) {
	return r.SubmitAuctionActionAs(Holder{Participant: SeatParticipant(seat)}, act)
}

// SubmitAuctionActionAs is SubmitAuctionAction for a holder; it fails if the
// seat has changed hands.
func (r *Room) SubmitAuctionActionAs(h Holder, act AuctionAction) (AuctionUpdate, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if err := r.checkActor("auction", h); err != nil {
		return AuctionUpdate{}, err
	}
	upd, err := r.applyAuctionLocked(h.Seat, act)
	if err != nil {
		return AuctionUpdate{}, err
	}
	r.runBots()
	return upd, nil
}

// Assumes lock is held.
func (r *Room) applyAuctionLocked(seat int, act AuctionAction) (AuctionUpdate, error) {
	if r.Phase != PhaseAuction || r.Auction == nil {
		return AuctionUpdate{}, protocolErr("auction", ErrWrongPhase)
	}
	a := r.Auction
	if err := a.Apply(seat, act); err != nil {
		return AuctionUpdate{}, protocolErr("auction", err)
	}

	upd := AuctionUpdate{
		Seat:        seat,
		Action:      act.Kind().String(),
		Amount:      act.Amount(),
		Stage:       a.Stage,
		Current:     a.Current,
		Highest:     a.Highest,
		HighestSeat: a.HighestSeat,
		Outcome:     a.Outcome(),
	}
	log.Debugf("Room %s: seat %d %s.", r.ID, seat, act)
	r.fireEvent(RoomEvent{
		Type: EventAuctionUpdate,
		Seat: seatRef(seat),
		Payload: map[string]interface{}{
			"action":      upd.Action,
			"amount":      upd.Amount,
			"stage":       upd.Stage,
			"current":     upd.Current,
			"highest":     upd.Highest,
			"highestSeat": upd.HighestSeat,
			"minNextBid":  a.MinNextBid(),
			"outcome":     upd.Outcome,
		},
	})

	out := a.Outcome()
	if out == nil {
		return upd, nil
	}
	if out.Void {
		ev := r.voidHandLocked()
		upd.Redeal = &ev
		return upd, nil
	}
	r.Contract = out
	r.Phase = PhaseTrumpSelect
	r.Turn = out.Winner
	log.Infof("Room %s: seat %d won the auction at %d.", r.ID, out.Winner, out.Bid)
	return upd, nil
}

// voidHandLocked discards the hand and redeals, keeping match scores.
// Assumes lock is held.
func (r *Room) voidHandLocked() DealEvent {
	r.VoidStreak++
	log.Infof("Room %s: hand %d voided (%d in a row).", r.ID, r.HandNumber, r.VoidStreak)
	r.fireEvent(RoomEvent{
		Type:    EventHandVoided,
		Payload: map[string]interface{}{"handId": r.HandID, "voidStreak": r.VoidStreak, "dealer": r.Dealer},
	})
	if r.VoidStreak >= r.Rules.VoidLimit {
		r.Dealer = seatAfter(r.Dealer, 1)
		r.VoidStreak = 0
	}
	return r.dealLocked()
}

// SelectTrump fixes the trump suit. Only the auction winner may call it.
func (r *Room) SelectTrump(seat int, suit models.Suit) (TrumpSelected, error) {
	return r.SelectTrumpAs(Holder{Participant: SeatParticipant(seat)}, suit)
}

// SelectTrumpAs is SelectTrump for a holder.
func (r *Room) SelectTrumpAs(h Holder, suit models.Suit) (TrumpSelected, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if err := r.checkActor("select trump", h); err != nil {
		return TrumpSelected{}, err
	}
	ev, err := r.selectTrumpLocked(h.Seat, suit)
	if err != nil {
		return TrumpSelected{}, err
	}
	r.runBots()
	return ev, nil
}

// Assumes lock is held.
func (r *Room) selectTrumpLocked(seat int, suit models.Suit) (TrumpSelected, error) {
	if r.Phase != PhaseTrumpSelect || r.Contract == nil {
		return TrumpSelected{}, protocolErr("select trump", ErrWrongPhase)
	}
	if seat != r.Contract.Winner {
		return TrumpSelected{}, protocolErr("select trump", ErrNotAuctionWinner)
	}
	if !suit.Valid() {
		return TrumpSelected{}, protocolErr("select trump", ErrIllegalAction)
	}

	trump := suit
	r.Trump = &trump
	r.Auction = nil

	ev := TrumpSelected{Seat: seat, Suit: suit, Bid: r.Contract.Bid}
	for s := range r.dealt {
		r.Meld[s] = Meld(r.dealt[s], suit)
		ev.Meld[s] = r.Meld[s]
		for _, m := range r.Meld[s] {
			ev.TeamMeld[models.TeamOf(s)] += m.Points
		}
	}

	r.Phase = PhasePlay
	r.Leader = seat
	r.Turn = seat
	log.Infof("Room %s: trump %s chosen by seat %d.", r.ID, suit, seat)
	r.fireEvent(RoomEvent{
		Type: EventTrumpSelected,
		Seat: seatRef(seat),
		Payload: map[string]interface{}{
			"suit":     suit,
			"bid":      ev.Bid,
			"meld":     ev.Meld,
			"teamMeld": ev.TeamMeld,
			"leader":   seat,
		},
	})
	return ev, nil
}

// PlayCard lays card from seat's hand onto the current trick.
func (r *Room) PlayCard(seat int, card models.Card) (PlayResult, error) {
	return r.PlayCardAs(Holder{Participant: SeatParticipant(seat)}, card)
}

// PlayCardAs is PlayCard for a holder.
func (r *Room) PlayCardAs(h Holder, card models.Card) (PlayResult, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if err := r.checkActor("play card", h); err != nil {
		return PlayResult{}, err
	}
	res, err := r.playLocked(h.Seat, card)
	if err != nil {
		return PlayResult{}, err
	}
	r.runBots()
	return res, nil
}

// Assumes lock is held.
func (r *Room) playLocked(seat int, card models.Card) (PlayResult, error) {
	if r.Phase != PhasePlay || r.Trump == nil {
		return PlayResult{}, protocolErr("play card", ErrWrongPhase)
	}
	if seat != r.Turn {
		return PlayResult{}, protocolErr("play card", ErrNotYourTurn)
	}
	trump := *r.Trump
	if !IsLegal(r.Hands[seat], r.Trick, trump, card) {
		return PlayResult{}, protocolErr("play card", fmt.Errorf("%w: %s", ErrIllegalCard, card))
	}

	r.Hands[seat], _ = r.Hands[seat].Remove(card)
	r.Trick = append(r.Trick, Play{Seat: seat, Card: card})
	res := PlayResult{Kind: PlayCardPlayed, Play: Play{Seat: seat, Card: card}, TrickWinner: -1}

	if len(r.Trick) < models.NumSeats {
		r.Turn = seatAfter(seat, 1)
	} else {
		r.Turn = -1
	}
	res.NextTurn = r.Turn
	res.Trick = append(Trick(nil), r.Trick...)
	r.fireEvent(RoomEvent{
		Type:    EventCardPlayed,
		Seat:    seatRef(seat),
		Card:    &card,
		Payload: map[string]interface{}{"nextTurn": r.Turn, "trick": res.Trick},
	})
	if len(r.Trick) < models.NumSeats {
		return res, nil
	}

	winner := TrickWinner(r.Trick, trump)
	team := models.TeamOf(winner)
	cards := r.Trick.Cards()
	r.Captured[team] = append(r.Captured[team], cards...)
	r.Trick = nil
	r.TricksPlayed++
	r.Leader = winner
	r.Turn = winner

	res.Kind = PlayTrickEnded
	res.TrickWinner = winner
	res.NextTurn = winner
	log.Debugf("Room %s: trick %d to seat %d.", r.ID, r.TricksPlayed, winner)
	r.fireEvent(RoomEvent{
		Type: EventTrickEnded,
		Seat: seatRef(winner),
		Payload: map[string]interface{}{
			"trick":        res.Trick,
			"points":       TrickPoints(cards),
			"tricksPlayed": r.TricksPlayed,
		},
	})

	if r.TricksPlayed == HandSize {
		result := r.scoreHandLocked(team)
		res.Scored = &result
		res.NextTurn = -1
		res.MatchOver = r.Match.Over()
		res.Winner = r.Match.Winner
	}
	return res, nil
}

// scoreHandLocked settles the hand and rotates the deal.
// Assumes lock is held.
func (r *Room) scoreHandLocked(lastTrickTeam models.Team) HandResult {
	var teamMeld [2]int
	for seat, items := range r.Meld {
		for _, m := range items {
			teamMeld[models.TeamOf(seat)] += m.Points
		}
	}
	result := ScoreHand(HandTally{
		Bidder:        models.TeamOf(r.Contract.Winner),
		Bid:           r.Contract.Bid,
		Meld:          teamMeld,
		Captured:      r.Captured,
		LastTrickTeam: lastTrickTeam,
	})
	applied := r.Match.Apply(result)
	r.LastResult = &result
	r.Turn = -1
	r.Dealer = seatAfter(r.Dealer, 1)
	r.VoidStreak = 0

	log.Infof("Room %s: hand %d scored %v, match %v.", r.ID, r.HandNumber, applied, r.Match.Scores)
	r.fireEvent(RoomEvent{
		Type: EventHandScored,
		Payload: map[string]interface{}{
			"result":  result,
			"applied": applied,
			"scores":  r.Match.Scores,
			"meld":    r.Meld,
		},
	})

	if r.Match.Over() {
		r.Phase = PhaseMatchOver
		log.Infof("Room %s: match won by team %s.", r.ID, *r.Match.Winner)
		r.fireEvent(RoomEvent{
			Type:    EventMatchEnd,
			Payload: map[string]interface{}{"winner": r.Match.Winner.String(), "scores": r.Match.Scores},
		})
	} else {
		r.Phase = PhaseScored
	}
	return result
}

// Chat broadcasts a short message from a seat or spectator.
func (r *Room) Chat(p Participant, text string) error {
	return r.ChatAs(Holder{Participant: p}, text)
}

// ChatAs is Chat for a holder.
func (r *Room) ChatAs(h Holder, text string) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if err := r.checkHolder(h); err != nil {
		return err
	}
	p := h.Participant
	name := r.Spectators[p.Spectator]
	if !p.IsSpectator() {
		name = r.Seats[p.Seat].Name
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return protocolErr("chat", ErrEmptyMessage)
	}
	if utf8.RuneCountInString(text) > maxChatLen {
		text = string([]rune(text)[:maxChatLen])
	}

	ev := RoomEvent{Type: EventChat, Payload: map[string]interface{}{"name": name, "text": text}}
	if !p.IsSpectator() {
		ev.Seat = seatRef(p.Seat)
	}
	r.fireEvent(ev)
	return nil
}

// runBots lets bot seats act until a human is due or nobody is.
// Assumes lock is held.
func (r *Room) runBots() {
	if r.strategy == nil {
		return
	}
	for step := 0; step < maxBotSteps; step++ {
		seat := r.seatToAct()
		if seat < 0 || r.Seats[seat] == nil || !r.Seats[seat].Bot {
			return
		}
		if err := r.botAct(seat); err != nil {
			log.Warnf("Room %s: bot at seat %d failed: %v", r.ID, seat, err)
			return
		}
	}
	log.Warnf("Room %s: bots still acting after %d steps, stopping.", r.ID, maxBotSteps)
}

// Assumes lock is held.
func (r *Room) seatToAct() int {
	switch r.Phase {
	case PhaseAuction:
		if r.Auction != nil {
			return r.Auction.Current
		}
	case PhaseTrumpSelect:
		if r.Contract != nil {
			return r.Contract.Winner
		}
	case PhasePlay:
		return r.Turn
	}
	return -1
}

// botAct asks the strategy for one move. Illegal answers fall back to a pass
// or the first legal card.
// Assumes lock is held.
func (r *Room) botAct(seat int) error {
	h := r.Hands[seat]
	switch r.Phase {
	case PhaseAuction:
		if r.Auction.Stage == StageAsking {
			_, err := r.applyAuctionLocked(seat, Speak())
			return err
		}
		var amount int
		var ok bool
		if ms, isMin := r.strategy.(MinBidStrategy); isMin {
			amount, ok = ms.DecideBidFrom(h.Clone(), r.Auction.Highest, r.Auction.MinBid, r.Trump)
		} else {
			amount, ok = r.strategy.DecideBid(h.Clone(), r.Auction.Highest, r.Trump)
		}
		act := Pass()
		if ok {
			act = Bid(amount)
		}
		_, err := r.applyAuctionLocked(seat, act)
		if err != nil && act.Kind() == ActionBid {
			_, err = r.applyAuctionLocked(seat, Pass())
		}
		return err
	case PhaseTrumpSelect:
		suit := r.strategy.DecideTrumpSuit(h.Clone())
		if !suit.Valid() {
			suit = models.Hearts
		}
		_, err := r.selectTrumpLocked(seat, suit)
		return err
	case PhasePlay:
		trump := *r.Trump
		var led *models.Suit
		if s, ok := r.Trick.LedSuit(); ok {
			led = &s
		}
		c := r.strategy.DecidePlay(h.Clone(), led, trump, append(Trick(nil), r.Trick...))
		if !IsLegal(h, r.Trick, trump, c) {
			c = LegalPlays(h, r.Trick, trump)[0]
		}
		_, err := r.playLocked(seat, c)
		return err
	}
	return nil
}

// fireEvent broadcasts to every participant.
// Assumes lock is held.
func (r *Room) fireEvent(ev RoomEvent) {
	ev.RoomID = r.ID
	if r.BroadcastFn != nil {
		r.BroadcastFn(ev)
	} else {
		log.Debugf("Room %s: no broadcaster for %s.", r.ID, ev.Type)
	}
}

// fireToSeat sends an event to the human holding seat.
// Assumes lock is held.
func (r *Room) fireToSeat(seat int, ev RoomEvent) {
	occ := r.Seats[seat]
	if occ == nil || occ.Bot || r.SendToSeatFn == nil {
		return
	}
	ev.RoomID = r.ID
	r.SendToSeatFn(seat, ev)
}
