package auth

import (
	"crypto/ed25519"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketRoundTrip(t *testing.T) {
	require.NoError(t, Init(time.Hour))

	tok, err := IssueTicket(SeatTicket{Room: "masa", Seat: 2, Name: "ayse"})
	require.NoError(t, err)

	got, err := ParseTicket(tok)
	require.NoError(t, err)
	assert.Equal(t, SeatTicket{Room: "masa", Seat: 2, Name: "ayse"}, got)
}

func TestSpectatorTicket(t *testing.T) {
	require.NoError(t, Init(0))
	id := uuid.New()

	tok, err := IssueTicket(SeatTicket{Room: "masa", Seat: -1, Spectator: id, Name: "izleyici"})
	require.NoError(t, err)

	got, err := ParseTicket(tok)
	require.NoError(t, err)
	assert.True(t, got.IsSpectator())
	assert.Equal(t, id, got.Spectator)
}

func TestTicketRejectsTamperingAndExpiry(t *testing.T) {
	require.NoError(t, Init(time.Hour))
	tok, err := IssueTicket(SeatTicket{Room: "masa", Seat: 0, Name: "a"})
	require.NoError(t, err)

	_, err = ParseTicket(tok + "x")
	assert.ErrorIs(t, err, ErrInvalidTicket)

	// a key rotation invalidates older tickets
	require.NoError(t, Init(time.Hour))
	_, err = ParseTicket(tok)
	assert.ErrorIs(t, err, ErrInvalidTicket)

	expired := jwt.NewWithClaims(jwt.SigningMethodEdDSA, jwt.MapClaims{
		"sub": "a", "room": "masa", "seat": 0,
		"exp": time.Now().Add(-time.Minute).Unix(),
	})
	s, err := expired.SignedString(privateKey)
	require.NoError(t, err)
	_, err = ParseTicket(s)
	assert.ErrorIs(t, err, ErrInvalidTicket)

	hs := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "a", "room": "masa", "seat": 0})
	s, err = hs.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = ParseTicket(s)
	assert.ErrorIs(t, err, ErrInvalidTicket)
}

func TestInitFromPath(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	dir := t.TempDir()
	privPath := filepath.Join(dir, "ticket.key")
	pubPath := filepath.Join(dir, "ticket.pub")
	require.NoError(t, os.WriteFile(privPath, priv, 0o600))
	require.NoError(t, os.WriteFile(pubPath, pub, 0o644))

	require.NoError(t, InitFromPath(privPath, pubPath, time.Hour))
	tok, err := IssueTicket(SeatTicket{Room: "masa", Seat: 1, Name: "ali"})
	require.NoError(t, err)

	// tickets survive a restart that reloads the same key files
	require.NoError(t, InitFromPath(privPath, pubPath, time.Hour))
	got, err := ParseTicket(tok)
	require.NoError(t, err)
	assert.Equal(t, "ali", got.Name)

	assert.Error(t, InitFromPath(filepath.Join(dir, "missing"), pubPath, time.Hour))
	require.NoError(t, os.WriteFile(pubPath, []byte("short"), 0o644))
	assert.Error(t, InitFromPath(privPath, pubPath, time.Hour))
}
