package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jason-s-yu/pinaki/internal/auth"
	"github.com/jason-s-yu/pinaki/internal/game"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *RoomServer) {
	t.Helper()
	require.NoError(t, auth.Init(time.Hour))

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	rs := NewRoomServer(game.NewRoomStore(), logger, nil)
	ts := httptest.NewServer(NewRouter(rs, []string{"*"}))
	t.Cleanup(func() {
		ts.Close()
		_ = rs.Close()
	})
	return ts, rs
}

func doJSON(t *testing.T, method, url, ticket string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if ticket != "" {
		req.Header.Set("Authorization", "Bearer "+ticket)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func join(t *testing.T, ts *httptest.Server, room string, req joinRequest) joinResponse {
	t.Helper()
	resp, data := doJSON(t, http.MethodPost, ts.URL+"/rooms/"+room+"/join", "", req)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	var out joinResponse
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

// fillRoom seats four players in a seeded room and returns their tickets by seat.
func fillRoom(t *testing.T, ts *httptest.Server, room string) [4]string {
	t.Helper()
	var tickets [4]string
	for i := 0; i < 4; i++ {
		req := joinRequest{Name: fmt.Sprintf("oyuncu%d", i)}
		if i == 0 {
			req.Rules = map[string]interface{}{"seed": 7}
		}
		res := join(t, ts, room, req)
		require.Equal(t, i, res.Seat)
		require.NotEmpty(t, res.Ticket)
		tickets[i] = res.Ticket
	}
	return tickets
}

func getState(t *testing.T, ts *httptest.Server, room, ticket string) game.RoomSnapshot {
	t.Helper()
	resp, data := doJSON(t, http.MethodGet, ts.URL+"/rooms/"+room+"/state", ticket, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	var snap game.RoomSnapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	return snap
}

func TestJoinAndList(t *testing.T) {
	ts, rs := newTestServer(t)
	tickets := fillRoom(t, ts, "masa1")
	assert.Equal(t, 1, rs.Store.Len())

	// fifth seat is refused, spectators are not
	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/rooms/masa1/join", "", joinRequest{Name: "besinci"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/rooms/masa1/join", "", joinRequest{Name: "OYUNCU0", Spectator: true})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "names are unique case-insensitively")

	watcher := join(t, ts, "masa1", joinRequest{Name: "izleyici", Spectator: true})
	assert.Equal(t, -1, watcher.Seat)
	require.NotNil(t, watcher.SpectatorID)

	resp, data := doJSON(t, http.MethodGet, ts.URL+"/rooms", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rooms []roomSummary
	require.NoError(t, json.Unmarshal(data, &rooms))
	require.Len(t, rooms, 1)
	assert.Equal(t, "masa1", rooms[0].ID)
	assert.Equal(t, []string{"oyuncu0", "oyuncu1", "oyuncu2", "oyuncu3"}, rooms[0].Seats)
	assert.Equal(t, 1, rooms[0].Spectators)

	snap := getState(t, ts, "masa1", tickets[2])
	assert.Equal(t, 2, snap.ViewerSeat)
	assert.Equal(t, game.PhaseWaiting, snap.Phase)
}

func TestTicketChecks(t *testing.T) {
	ts, _ := newTestServer(t)
	tickets := fillRoom(t, ts, "masa1")
	other := join(t, ts, "masa2", joinRequest{Name: "yalniz"})

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/rooms/masa1/state", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/rooms/masa1/state", tickets[0]+"x", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/rooms/masa1/state", other.Ticket, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "ticket issued for another room")

	// a seat taken over by someone else no longer answers to the old ticket
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/rooms/masa1/leave", tickets[1], nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	join(t, ts, "masa1", joinRequest{Name: "yeni"})
	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/rooms/masa1/state", tickets[1], nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandFlowOverREST(t *testing.T) {
	ts, _ := newTestServer(t)
	tickets := fillRoom(t, ts, "masa")
	base := ts.URL + "/rooms/masa"

	resp, data := doJSON(t, http.MethodPost, base+"/start", tickets[1], nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	// dealer is seat 3, so seat 0 opens
	resp, _ = doJSON(t, http.MethodPost, base+"/auction", tickets[1], RoomMessage{Action: "bid", Amount: 150})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp, _ = doJSON(t, http.MethodPost, base+"/auction", tickets[0], RoomMessage{Action: "bid", Amount: 155})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp, _ = doJSON(t, http.MethodPost, base+"/auction", tickets[0], RoomMessage{Action: "shout"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, data = doJSON(t, http.MethodPost, base+"/auction", tickets[0], RoomMessage{Action: "bid", Amount: 160})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	for seat := 1; seat < 4; seat++ {
		resp, data = doJSON(t, http.MethodPost, base+"/auction", tickets[seat], RoomMessage{Action: "pass"})
		require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	}
	var upd game.AuctionUpdate
	require.NoError(t, json.Unmarshal(data, &upd))
	require.NotNil(t, upd.Outcome)
	assert.Equal(t, game.AuctionOutcome{Winner: 0, Bid: 160}, *upd.Outcome)

	resp, _ = doJSON(t, http.MethodPost, base+"/trump", tickets[2], RoomMessage{Suit: "spades"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp, data = doJSON(t, http.MethodPost, base+"/trump", tickets[0], RoomMessage{Suit: "♠"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	snap := getState(t, ts, "masa", tickets[0])
	assert.Equal(t, game.PhasePlay, snap.Phase)
	require.NotEmpty(t, snap.LegalPlays)
	assert.Len(t, snap.Seats[0].Hand, game.HandSize)
	assert.Empty(t, snap.Seats[1].Hand)

	card, err := json.Marshal(snap.LegalPlays[0])
	require.NoError(t, err)
	resp, data = doJSON(t, http.MethodPost, base+"/play", tickets[0], RoomMessage{Card: card})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	var res game.PlayResult
	require.NoError(t, json.Unmarshal(data, &res))
	assert.Equal(t, game.PlayCardPlayed, res.Kind)
	assert.Equal(t, 1, res.NextTurn)

	resp, _ = doJSON(t, http.MethodPost, base+"/play", tickets[1], RoomMessage{Card: json.RawMessage(`"XX"`)})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestSpectatorCannotAct(t *testing.T) {
	ts, _ := newTestServer(t)
	fillRoom(t, ts, "masa")
	watcher := join(t, ts, "masa", joinRequest{Name: "izleyici", Spectator: true})

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/rooms/masa/start", watcher.Ticket, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/rooms/masa/chat", watcher.Ticket, RoomMessage{Text: "selam"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	snap := getState(t, ts, "masa", watcher.Ticket)
	assert.Equal(t, -1, snap.ViewerSeat)
}

func TestBotsAndLeaveRemovesRoom(t *testing.T) {
	ts, rs := newTestServer(t)
	rs.Store.NewStrategy = func() game.Strategy { return passer{} }

	host := join(t, ts, "masa", joinRequest{Name: "ev"})
	for i := 0; i < 3; i++ {
		resp, data := doJSON(t, http.MethodPost, ts.URL+"/rooms/masa/bots", host.Ticket, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	}
	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/rooms/masa/bots", host.Ticket, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/rooms/masa/leave", host.Ticket, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, rs.Store.Len())

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/rooms/masa/state", host.Ticket, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
