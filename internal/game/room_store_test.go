package game

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomStoreCreateOnFirstJoin(t *testing.T) {
	s := NewRoomStore()
	created := 0
	s.OnCreate = func(r *Room) { created++ }

	room, res, err := s.CreateOrJoin("masa", "ayse", false, map[string]interface{}{"targetScore": float64(1000)})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Seat)
	assert.Equal(t, 1000, room.Rules.TargetScore)
	assert.Equal(t, 1000, room.Match.Target)

	again, res, err := s.CreateOrJoin("masa", "mehmet", false, map[string]interface{}{"targetScore": float64(500)})
	require.NoError(t, err)
	assert.Same(t, room, again)
	assert.Equal(t, 1, res.Seat)
	assert.Equal(t, 1000, again.Rules.TargetScore, "rules only apply at creation")
	assert.Equal(t, 1, created)
}

func TestRoomStoreFailedJoinCreatesNothing(t *testing.T) {
	s := NewRoomStore()
	_, _, err := s.CreateOrJoin("r1", "", false, nil)
	assert.ErrorIs(t, err, ErrInvalidName)
	assert.Equal(t, 0, s.Len())

	_, _, err = s.CreateOrJoin("r2", "x", false, map[string]interface{}{"minBid": float64(155)})
	assert.Error(t, err)
	assert.Equal(t, 0, s.Len())
}

func TestRoomStoreRemovesEmptyRoom(t *testing.T) {
	s := NewRoomStore()
	var deleted []string
	s.OnDelete = func(r *Room) { deleted = append(deleted, r.ID) }

	_, a, err := s.CreateOrJoin("masa", "a", false, nil)
	require.NoError(t, err)
	_, b, err := s.CreateOrJoin("masa", "b", true, nil)
	require.NoError(t, err)

	require.NoError(t, s.Leave("masa", SeatParticipant(a.Seat)))
	_, ok := s.GetRoom("masa")
	assert.True(t, ok, "spectator keeps the room alive")

	require.NoError(t, s.Leave("masa", SpectatorParticipant(b.SpectatorID)))
	_, ok = s.GetRoom("masa")
	assert.False(t, ok)
	assert.Equal(t, []string{"masa"}, deleted)

	err = s.Leave("masa", SeatParticipant(0))
	var ie *IntegrityError
	assert.ErrorAs(t, err, &ie)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRoomStoreLookup(t *testing.T) {
	s := NewRoomStore()
	_, err := s.Lookup("nope")
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, _, err = s.CreateOrJoin("b", "x", false, nil)
	require.NoError(t, err)
	_, _, err = s.CreateOrJoin("a", "x", false, nil)
	require.NoError(t, err)

	rooms := s.GetRooms()
	require.Len(t, rooms, 2)
	assert.Equal(t, "a", rooms[0].ID)
}

func TestRoomStoreConcurrentJoins(t *testing.T) {
	s := NewRoomStore()
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := s.CreateOrJoin("busy", fmt.Sprintf("p%d", i), false, nil)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	joined, full := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			joined++
		case assert.ErrorIs(t, err, ErrRoomFull):
			full++
		}
	}
	assert.Equal(t, 4, joined)
	assert.Equal(t, 12, full)
}

func TestRulesUpdate(t *testing.T) {
	rules, err := ParseRules(map[string]interface{}{
		"minBid":       float64(200),
		"voidLimit":    2,
		"seed":         float64(12),
		"fillWithBots": true,
	}, DefaultRoomRules())
	require.NoError(t, err)
	assert.Equal(t, 200, rules.MinBid)
	assert.Equal(t, 2, rules.VoidLimit)
	assert.Equal(t, int64(12), rules.Seed)
	assert.True(t, rules.FillWithBots)
	assert.Equal(t, DefaultTargetScore, rules.TargetScore)

	_, err = ParseRules(map[string]interface{}{"fillWithBots": "yes"}, DefaultRoomRules())
	assert.Error(t, err)
	_, err = ParseRules(map[string]interface{}{"voidLimit": float64(0)}, DefaultRoomRules())
	assert.Error(t, err)
}
