// internal/handlers/room_server.go
package handlers

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/pinaki/internal/cache"
	"github.com/jason-s-yu/pinaki/internal/game"
	"github.com/sirupsen/logrus"
)

const (
	outChanSize   = 64
	publishBuffer = 256
)

// RoomConnection is one live WebSocket bound to a seat or spectator handle.
type RoomConnection struct {
	ID      uuid.UUID
	RoomID  string
	Viewer  game.Participant
	Name    string
	OutChan chan []byte

	closeOnce sync.Once
}

func (c *RoomConnection) close() {
	c.closeOnce.Do(func() { close(c.OutChan) })
}

// RoomServer owns the room registry and routes room events to connections
// and to the external publisher.
type RoomServer struct {
	Store     *game.RoomStore
	Logger    *logrus.Logger
	Publisher cache.Publisher

	mu    sync.Mutex
	conns map[string]map[uuid.UUID]*RoomConnection

	pubCh   chan game.RoomEvent
	pubDone chan struct{}
	closed  bool
}

// NewRoomServer wires store callbacks so every room it creates broadcasts
// through the server. pub may be nil.
func NewRoomServer(store *game.RoomStore, logger *logrus.Logger, pub cache.Publisher) *RoomServer {
	if pub == nil {
		pub = cache.NopPublisher{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &RoomServer{
		Store:     store,
		Logger:    logger,
		Publisher: pub,
		conns:     make(map[string]map[uuid.UUID]*RoomConnection),
		pubCh:     make(chan game.RoomEvent, publishBuffer),
		pubDone:   make(chan struct{}),
	}
	store.OnCreate = s.attach
	store.OnDelete = s.detach
	go s.publishLoop()
	return s
}

// Close stops the publish loop and closes the publisher.
func (s *RoomServer) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.pubCh)
	s.mu.Unlock()
	<-s.pubDone
	return s.Publisher.Close()
}

func (s *RoomServer) attach(r *game.Room) {
	roomID := r.ID
	r.BroadcastFn = func(ev game.RoomEvent) { s.broadcast(roomID, ev) }
	r.SendToSeatFn = func(seat int, ev game.RoomEvent) { s.sendToSeat(roomID, seat, ev) }
}

// detach drops and closes every connection of a removed room.
func (s *RoomServer) detach(r *game.Room) {
	s.mu.Lock()
	conns := s.conns[r.ID]
	delete(s.conns, r.ID)
	s.mu.Unlock()
	for _, c := range conns {
		c.close()
	}
	s.Logger.Infof("Room %s: removed, closed %d connection(s).", r.ID, len(conns))
}

// Register adds a connection to its room's fan-out set.
func (s *RoomServer) Register(c *RoomConnection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.conns[c.RoomID]
	if !ok {
		set = make(map[uuid.UUID]*RoomConnection)
		s.conns[c.RoomID] = set
	}
	set[c.ID] = c
}

// Unregister removes a connection and closes its outbound channel. It
// returns how many other connections the same viewer still has open.
func (s *RoomServer) Unregister(c *RoomConnection) int {
	remaining := 0
	s.mu.Lock()
	if set, ok := s.conns[c.RoomID]; ok {
		delete(set, c.ID)
		if len(set) == 0 {
			delete(s.conns, c.RoomID)
		}
		for _, other := range set {
			if other.Viewer == c.Viewer && strings.EqualFold(other.Name, c.Name) {
				remaining++
			}
		}
	}
	s.mu.Unlock()
	c.close()
	return remaining
}

// Connections returns how many sockets are attached to a room.
func (s *RoomServer) Connections(roomID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns[roomID])
}

// broadcast is called with the room lock held: it marshals once and never
// blocks on a slow connection.
func (s *RoomServer) broadcast(roomID string, ev game.RoomEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		s.Logger.Errorf("Room %s: failed to marshal %s: %v", roomID, ev.Type, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.conns[roomID] {
		s.enqueue(c, data)
	}
	if s.closed {
		return
	}
	select {
	case s.pubCh <- ev:
	default:
		s.Logger.Warnf("Room %s: publish buffer full, dropped %s.", roomID, ev.Type)
	}
}

// sendToSeat delivers a private event to the seat's connections only. Private
// events are never published.
func (s *RoomServer) sendToSeat(roomID string, seat int, ev game.RoomEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		s.Logger.Errorf("Room %s: failed to marshal %s for seat %d: %v", roomID, ev.Type, seat, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.conns[roomID] {
		if !c.Viewer.IsSpectator() && c.Viewer.Seat == seat {
			s.enqueue(c, data)
		}
	}
}

// Assumes s.mu is held.
func (s *RoomServer) enqueue(c *RoomConnection, data []byte) {
	select {
	case c.OutChan <- data:
	default:
		s.Logger.Warnf("Room %s: outbound queue full for %s (%s), dropping message.", c.RoomID, c.Name, c.ID)
	}
}

func (s *RoomServer) publishLoop() {
	defer close(s.pubDone)
	for ev := range s.pubCh {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := s.Publisher.Publish(ctx, ev); err != nil {
			s.Logger.Warnf("Room %s: publish %s failed: %v", ev.RoomID, ev.Type, err)
		}
		cancel()
	}
}
