// internal/handlers/room_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jason-s-yu/pinaki/internal/auth"
	"github.com/jason-s-yu/pinaki/internal/game"
	"github.com/jason-s-yu/pinaki/internal/middleware"
)

const roomSubprotocol = "pinaki"

// RoomWSHandler upgrades to a WebSocket bound to the caller's seat ticket.
// The socket receives every room broadcast plus the seat's private events;
// requests it sends are answered with an "ack" or an "error" to this socket
// only.
func (s *RoomServer) RoomWSHandler(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:   []string{roomSubprotocol},
		OriginPatterns: []string{"*"}, // CORS is enforced by the router
	})
	if err != nil {
		s.Logger.Warnf("WebSocket accept error for room %s: %v", roomID, err)
		return
	}
	defer c.Close(websocket.StatusInternalError, "handler finished")

	if c.Subprotocol() != roomSubprotocol {
		c.Close(BadSubprotocolError, "client must speak the pinaki subprotocol")
		return
	}

	ticket, err := auth.ParseTicket(extractTicket(r))
	if err != nil || ticket.Room != roomID {
		s.Logger.Warnf("Room %s: rejected WebSocket from %s: bad ticket", roomID, r.RemoteAddr)
		c.Close(InvalidTicketError, "invalid seat ticket")
		return
	}
	room, ok := s.Store.GetRoom(roomID)
	if !ok {
		c.Close(InvalidRoomIDError, "room does not exist")
		return
	}

	h := holderOf(ticket)
	conn := &RoomConnection{
		ID:      uuid.New(),
		RoomID:  roomID,
		Viewer:  h.Participant,
		Name:    ticket.Name,
		OutChan: make(chan []byte, outChanSize),
	}
	// Register before the snapshot so no event falls between the two.
	s.Register(conn)
	snap, err := room.SnapshotAs(h)
	if err != nil {
		s.Unregister(conn)
		c.Close(SeatLostError, "seat is no longer yours")
		return
	}
	middleware.LogWebSocketConnect(s.Logger, r.RemoteAddr, r.URL.Path)
	s.reply(conn, game.RoomEvent{Type: game.EventPrivateSync, RoomID: roomID, State: &snap})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go s.writePump(ctx, c, conn)

	left, err := s.readPump(ctx, c, room, ticket, conn)
	middleware.LogWebSocketDisconnect(s.Logger, r.RemoteAddr, r.URL.Path, err)

	// Dropping the last socket gives the seat up, as an explicit leave would.
	if remaining := s.Unregister(conn); !left && remaining == 0 {
		if err := s.Store.LeaveAs(roomID, h); err != nil {
			s.Logger.Debugf("Room %s: %q already gone on disconnect: %v", roomID, ticket.Name, err)
		} else {
			s.Logger.Infof("Room %s: %q disconnected and left.", roomID, ticket.Name)
		}
	}
}

// readPump applies incoming requests until the socket closes or the holder
// leaves. It reports true after an explicit leave.
func (s *RoomServer) readPump(ctx context.Context, c *websocket.Conn, room *game.Room, ticket auth.SeatTicket, conn *RoomConnection) (bool, error) {
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				return false, nil
			}
			return false, err
		}
		if typ != websocket.MessageText {
			s.replyError(conn, "", errors.New("only text messages are supported"))
			continue
		}

		var msg RoomMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.replyError(conn, "", errors.New("invalid JSON"))
			continue
		}

		res, err := s.dispatch(room, ticket, msg)
		if err != nil {
			s.Logger.Debugf("Room %s: %s from %q rejected: %v", room.ID, msg.Type, ticket.Name, err)
			s.replyError(conn, msg.Type, err)
			continue
		}

		switch msg.Type {
		case msgSync:
			snap := res.(game.RoomSnapshot)
			s.reply(conn, game.RoomEvent{Type: game.EventPrivateSync, RoomID: room.ID, State: &snap})
		case msgLeave:
			c.Close(websocket.StatusNormalClosure, "left room")
			return true, nil
		default:
			s.reply(conn, map[string]interface{}{"type": "ack", "request": msg.Type, "result": res})
		}
	}
}

// writePump is the only writer on c. It pings every 30 seconds and closes the
// socket once OutChan is closed.
func (s *RoomServer) writePump(ctx context.Context, c *websocket.Conn, conn *RoomConnection) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-conn.OutChan:
			if !ok {
				c.Close(RoomClosedError, "room closed")
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := c.Write(writeCtx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				s.Logger.Warnf("Room %s: write to %s failed: %v", conn.RoomID, conn.Name, err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				s.Logger.Debugf("Room %s: ping to %s failed: %v", conn.RoomID, conn.Name, err)
				return
			}
		}
	}
}

// reply queues v for conn alone, if conn is still registered.
func (s *RoomServer) reply(conn *RoomConnection, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		s.Logger.Errorf("Room %s: failed to marshal reply: %v", conn.RoomID, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conns[conn.RoomID][conn.ID]; ok {
		s.enqueue(conn, data)
	}
}

func (s *RoomServer) replyError(conn *RoomConnection, request string, err error) {
	msg := map[string]interface{}{
		"type":    "error",
		"message": err.Error(),
		"status":  statusFor(err),
	}
	if request != "" {
		msg["request"] = request
	}
	s.reply(conn, msg)
}
