package game

import (
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"
)

// RoomStore maps room IDs to live rooms. Rooms are created on first join and
// removed once the last human leaves.
type RoomStore struct {
	mu    sync.Mutex
	rooms map[string]*Room

	// Defaults are the rules new rooms start from before per-room overrides.
	Defaults RoomRules
	// NewStrategy, when set, supplies the bot strategy for each new room.
	NewStrategy func() Strategy
	// OnCreate runs for every new room before its first join, typically to
	// attach broadcast functions.
	OnCreate func(r *Room)
	// OnDelete runs after a room has been dropped from the store.
	OnDelete func(r *Room)
}

func NewRoomStore() *RoomStore {
	return &RoomStore{
		rooms:    make(map[string]*Room),
		Defaults: DefaultRoomRules(),
	}
}

// CreateOrJoin joins roomID, creating it with rules when it does not exist.
// rules is ignored for an existing room. A failed join never leaves a new
// room behind.
func (s *RoomStore) CreateOrJoin(roomID, name string, asSpectator bool, rules map[string]interface{}) (*Room, JoinResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if roomID == "" {
		return nil, JoinResult{}, &IntegrityError{Room: roomID, Seat: -1, Err: ErrRoomNotFound}
	}

	room, exists := s.rooms[roomID]
	if !exists {
		parsed, err := ParseRules(rules, s.Defaults)
		if err != nil {
			return nil, JoinResult{}, protocolErr("create room", err)
		}
		room = NewRoom(roomID, parsed)
		if s.NewStrategy != nil {
			room.strategy = s.NewStrategy()
		}
		if s.OnCreate != nil {
			s.OnCreate(room)
		}
	}

	res, err := room.Join(name, asSpectator)
	if err != nil {
		return nil, JoinResult{}, err
	}
	if !exists {
		s.rooms[roomID] = room
		log.Infof("RoomStore: Added room %s.", roomID)
	}
	return room, res, nil
}

// GetRoom retrieves a room if it exists.
func (s *RoomStore) GetRoom(id string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	return r, ok
}

// Lookup is GetRoom returning an IntegrityError for unknown IDs.
func (s *RoomStore) Lookup(id string) (*Room, error) {
	if r, ok := s.GetRoom(id); ok {
		return r, nil
	}
	log.Warnf("RoomStore: unknown room %s.", id)
	return nil, &IntegrityError{Room: id, Seat: -1, Err: ErrRoomNotFound}
}

// Leave removes a participant and deletes the room if no human remains.
func (s *RoomStore) Leave(roomID string, p Participant) error {
	return s.LeaveAs(roomID, Holder{Participant: p})
}

// LeaveAs is Leave for a holder. A seat that has changed hands is left alone.
func (s *RoomStore) LeaveAs(roomID string, h Holder) error {
	s.mu.Lock()
	room, ok := s.rooms[roomID]
	if !ok {
		s.mu.Unlock()
		return &IntegrityError{Room: roomID, Seat: h.Seat, Err: ErrRoomNotFound}
	}
	empty, err := room.LeaveAs(h)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if empty {
		delete(s.rooms, roomID)
		log.Infof("RoomStore: Removed empty room %s.", roomID)
	}
	s.mu.Unlock()

	if empty && s.OnDelete != nil {
		s.OnDelete(room)
	}
	return nil
}

// GetRooms returns the rooms ordered by ID.
func (s *RoomStore) GetRooms() []*Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of live rooms.
func (s *RoomStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}
