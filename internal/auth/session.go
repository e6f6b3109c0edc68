// internal/auth/session.go
package auth

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// privateKey and publicKey sign and verify seat tickets.
var (
	mu         sync.RWMutex
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey

	// ticketTTL is how long a ticket stays valid (0 => no expiry).
	ticketTTL time.Duration
)

var ErrInvalidTicket = errors.New("invalid seat ticket")

// SeatTicket binds a caller to the seat (or spectator handle) it received on join.
// It is not user authentication: it only proves the holder joined that seat.
type SeatTicket struct {
	Room      string
	Seat      int
	Spectator uuid.UUID
	Name      string
}

func (t SeatTicket) IsSpectator() bool { return t.Seat < 0 }

// Init generates a fresh ed25519 key pair at runtime and sets the ticket lifetime.
func Init(ttl time.Duration) error {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return fmt.Errorf("failed to generate ed25519 key pair: %w", err)
	}
	mu.Lock()
	defer mu.Unlock()
	publicKey, privateKey, ticketTTL = pub, priv, ttl
	return nil
}

// InitFromPath reads ed25519 private/public keys from file.
func InitFromPath(privatePath, publicPath string, ttl time.Duration) error {
	privateKeyData, err := os.ReadFile(privatePath)
	if err != nil {
		return fmt.Errorf("failed to read private key file: %w", err)
	}
	publicKeyData, err := os.ReadFile(publicPath)
	if err != nil {
		return fmt.Errorf("failed to read public key file: %w", err)
	}
	if len(privateKeyData) != ed25519.PrivateKeySize || len(publicKeyData) != ed25519.PublicKeySize {
		return fmt.Errorf("unexpected ed25519 key sizes")
	}

	mu.Lock()
	defer mu.Unlock()
	privateKey = ed25519.PrivateKey(privateKeyData)
	publicKey = ed25519.PublicKey(publicKeyData)
	ticketTTL = ttl
	return nil
}

// IssueTicket signs a ticket for t.
func IssueTicket(t SeatTicket) (string, error) {
	mu.RLock()
	defer mu.RUnlock()
	if privateKey == nil {
		return "", fmt.Errorf("auth not initialized")
	}

	claims := jwt.MapClaims{
		"sub":  t.Name,
		"room": t.Room,
		"seat": t.Seat,
		"jti":  uuid.NewString(),
		"iat":  time.Now().Unix(),
	}
	if t.IsSpectator() {
		claims["spectator"] = t.Spectator.String()
	}
	if ticketTTL > 0 {
		claims["exp"] = time.Now().Add(ticketTTL).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(privateKey)
}

// ParseTicket verifies a ticket string and returns its contents.
func ParseTicket(tokenString string) (SeatTicket, error) {
	mu.RLock()
	key := publicKey
	mu.RUnlock()

	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		return SeatTicket{}, fmt.Errorf("%w: %v", ErrInvalidTicket, err)
	}
	if !t.Valid {
		return SeatTicket{}, ErrInvalidTicket
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return SeatTicket{}, fmt.Errorf("%w: claims", ErrInvalidTicket)
	}

	var out SeatTicket
	if out.Name, ok = claims["sub"].(string); !ok {
		return SeatTicket{}, fmt.Errorf("%w: missing sub", ErrInvalidTicket)
	}
	if out.Room, ok = claims["room"].(string); !ok {
		return SeatTicket{}, fmt.Errorf("%w: missing room", ErrInvalidTicket)
	}
	seat, ok := claims["seat"].(float64)
	if !ok {
		return SeatTicket{}, fmt.Errorf("%w: missing seat", ErrInvalidTicket)
	}
	out.Seat = int(seat)
	if out.IsSpectator() {
		s, _ := claims["spectator"].(string)
		if out.Spectator, err = uuid.Parse(s); err != nil {
			return SeatTicket{}, fmt.Errorf("%w: bad spectator id", ErrInvalidTicket)
		}
	}
	return out, nil
}
