// internal/handlers/rooms.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jason-s-yu/pinaki/internal/auth"
	"github.com/jason-s-yu/pinaki/internal/game"
	"github.com/jason-s-yu/pinaki/internal/models"
)

// Message types accepted over REST and WebSocket.
const (
	msgBid         = "bid"
	msgPass        = "pass"
	msgAsk         = "ask"
	msgVoid        = "void"
	msgSpeak       = "speak"
	msgAuction     = "auction" // generic form, the move is in Action
	msgSelectTrump = "select_trump"
	msgPlayCard    = "play_card"
	msgChat        = "chat"
	msgStartHand   = "start_hand"
	msgAddBot      = "add_bot"
	msgSync        = "sync"
	msgLeave       = "leave"
)

// RoomMessage is one request from a seat or spectator.
type RoomMessage struct {
	Type   string `json:"type"`
	Action string `json:"action,omitempty"`
	Amount int    `json:"amount,omitempty"`
	Suit   string `json:"suit,omitempty"`
	// Card is either a string such as "10♥" or {"suit":"hearts","rank":"10"}.
	Card json.RawMessage `json:"card,omitempty"`
	Text string          `json:"text,omitempty"`
}

type joinRequest struct {
	Name      string                 `json:"name"`
	Spectator bool                   `json:"spectator"`
	Rules     map[string]interface{} `json:"rules,omitempty"`
}

type joinResponse struct {
	Ticket      string            `json:"ticket"`
	Seat        int               `json:"seat"`
	SpectatorID *uuid.UUID        `json:"spectatorId,omitempty"`
	Name        string            `json:"name"`
	State       game.RoomSnapshot `json:"state"`
}

type roomSummary struct {
	ID         string     `json:"id"`
	Phase      game.Phase `json:"phase"`
	HandNumber int        `json:"handNumber"`
	Seats      []string   `json:"seats"`
	Spectators int        `json:"spectators"`
	Scores     [2]int     `json:"scores"`
	Target     int        `json:"target"`
}

type ctxKey int

const (
	ticketKey ctxKey = iota
	roomKey
)

func participantOf(t auth.SeatTicket) game.Participant {
	if t.IsSpectator() {
		return game.SpectatorParticipant(t.Spectator)
	}
	return game.SeatParticipant(t.Seat)
}

func parseCardField(raw json.RawMessage) (models.Card, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return models.Card{}, fmt.Errorf("%w: missing card", game.ErrIllegalCard)
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return models.Card{}, fmt.Errorf("%w: %v", game.ErrIllegalCard, err)
		}
		c, err := models.ParseCard(s)
		if err != nil {
			return models.Card{}, fmt.Errorf("%w: %v", game.ErrIllegalCard, err)
		}
		return c, nil
	}
	var c models.Card
	if err := json.Unmarshal(raw, &c); err != nil {
		return models.Card{}, fmt.Errorf("%w: %v", game.ErrIllegalCard, err)
	}
	return c, nil
}

// holderOf binds the ticket to the name it was issued for, so every room
// transition rejects it once the seat or spectator handle changes hands.
func holderOf(t auth.SeatTicket) game.Holder {
	return game.Holder{Participant: participantOf(t), Name: t.Name}
}

// dispatch applies msg on behalf of the ticket holder and returns the
// operation's result. Ownership is checked by the room under the same lock
// as the transition itself.
func (s *RoomServer) dispatch(room *game.Room, t auth.SeatTicket, msg RoomMessage) (interface{}, error) {
	h := holderOf(t)

	switch msg.Type {
	case msgSync:
		return room.SnapshotAs(h)
	case msgChat:
		return nil, room.ChatAs(h, msg.Text)
	case msgLeave:
		return nil, s.Store.LeaveAs(room.ID, h)
	case msgStartHand:
		return room.StartHandAs(h)
	case msgAddBot:
		seat, err := room.AddBotAs(h)
		return map[string]int{"seat": seat}, err
	case msgBid, msgPass, msgAsk, msgVoid, msgSpeak, msgAuction:
		name := msg.Type
		if name == msgAuction {
			name = msg.Action
		}
		act, err := game.ParseAuctionAction(name, msg.Amount)
		if err != nil {
			return nil, &game.ProtocolError{Op: "auction", Err: err}
		}
		return room.SubmitAuctionActionAs(h, act)
	case msgSelectTrump:
		suit, err := models.ParseSuit(msg.Suit)
		if err != nil {
			return nil, &game.ProtocolError{Op: "select trump", Err: fmt.Errorf("%w: %v", game.ErrIllegalAction, err)}
		}
		return room.SelectTrumpAs(h, suit)
	case msgPlayCard:
		card, err := parseCardField(msg.Card)
		if err != nil {
			return nil, &game.ProtocolError{Op: "play card", Err: err}
		}
		return room.PlayCardAs(h, card)
	}
	return nil, &game.ProtocolError{Op: msg.Type, Err: fmt.Errorf("%w: unknown message type %q", game.ErrIllegalAction, msg.Type)}
}

// ListRoomsHandler lists live rooms.
func (s *RoomServer) ListRoomsHandler(w http.ResponseWriter, r *http.Request) {
	rooms := s.Store.GetRooms()
	out := make([]roomSummary, 0, len(rooms))
	for _, room := range rooms {
		snap := room.Snapshot(game.SpectatorParticipant(uuid.Nil))
		sum := roomSummary{
			ID:         snap.RoomID,
			Phase:      snap.Phase,
			HandNumber: snap.HandNumber,
			Spectators: snap.Spectators,
			Scores:     snap.Scores,
			Target:     snap.Target,
		}
		for _, seat := range snap.Seats {
			sum.Seats = append(sum.Seats, seat.Name)
		}
		out = append(out, sum)
	}
	writeJSON(w, http.StatusOK, out)
}

// JoinHandler seats the caller (creating the room on first join) and returns
// the seat ticket that authorizes every later request.
func (s *RoomServer) JoinHandler(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")

	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	room, res, err := s.Store.CreateOrJoin(roomID, req.Name, req.Spectator, req.Rules)
	if err != nil {
		s.Logger.Infof("Room %s: join by %q rejected: %v", roomID, req.Name, err)
		writeError(w, err)
		return
	}

	viewer := game.SeatParticipant(res.Seat)
	if res.Spectator() {
		viewer = game.SpectatorParticipant(res.SpectatorID)
	}
	ticket, err := auth.IssueTicket(auth.SeatTicket{Room: room.ID, Seat: res.Seat, Spectator: res.SpectatorID, Name: res.Name})
	if err != nil {
		s.Logger.Errorf("Room %s: failed to issue ticket: %v", room.ID, err)
		_ = s.Store.Leave(room.ID, viewer)
		http.Error(w, "failed to issue ticket", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     ticketCookie,
		Value:    ticket,
		Path:     "/rooms/" + room.ID,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	resp := joinResponse{Ticket: ticket, Seat: res.Seat, Name: res.Name, State: res.Snapshot}
	if res.Spectator() {
		id := res.SpectatorID
		resp.SpectatorID = &id
	}
	writeJSON(w, http.StatusOK, resp)
}

// requireTicket resolves the seat ticket and the room it was issued for.
func (s *RoomServer) requireTicket(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		roomID := chi.URLParam(r, "roomID")
		t, err := auth.ParseTicket(extractTicket(r))
		if err != nil {
			writeError(w, err)
			return
		}
		if t.Room != roomID {
			writeError(w, fmt.Errorf("%w: issued for another room", auth.ErrInvalidTicket))
			return
		}
		room, err := s.Store.Lookup(roomID)
		if err != nil {
			writeError(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), ticketKey, t)
		ctx = context.WithValue(ctx, roomKey, room)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// StateHandler returns the caller's view of the room.
func (s *RoomServer) StateHandler(w http.ResponseWriter, r *http.Request) {
	s.serveMessage(w, r, RoomMessage{Type: msgSync})
}

// actionHandler decodes an optional JSON body and applies it as msgType.
func (s *RoomServer) actionHandler(msgType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var msg RoomMessage
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil && err != io.EOF {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		msg.Type = msgType
		s.serveMessage(w, r, msg)
	}
}

func (s *RoomServer) serveMessage(w http.ResponseWriter, r *http.Request, msg RoomMessage) {
	t := r.Context().Value(ticketKey).(auth.SeatTicket)
	room := r.Context().Value(roomKey).(*game.Room)

	res, err := s.dispatch(room, t, msg)
	if err != nil {
		s.Logger.Debugf("Room %s: %s from %q rejected: %v", room.ID, msg.Type, t.Name, err)
		writeError(w, err)
		return
	}
	if res == nil {
		res = map[string]string{"status": "ok"}
	}
	writeJSON(w, http.StatusOK, res)
}
