package game

import (
	"errors"
	"fmt"
)

// Protocol violations: the request is rejected and room state is unchanged.
var (
	ErrNotYourTurn      = errors.New("not your turn")
	ErrWrongPhase       = errors.New("action not allowed in current phase")
	ErrIllegalAction    = errors.New("illegal action")
	ErrIllegalAmount    = errors.New("illegal bid amount")
	ErrIllegalCard      = errors.New("illegal card")
	ErrNotAuctionWinner = errors.New("only the auction winner may select trump")
	ErrNotEnoughPlayers = errors.New("four seated players are required")
	ErrSpectator        = errors.New("spectators cannot act")
	ErrInvalidName      = errors.New("name must be 1 to 32 characters")
	ErrNoStrategy       = errors.New("no bot strategy configured")
	ErrEmptyMessage     = errors.New("empty chat message")
)

// Capacity violations raised at join.
var (
	ErrNameTaken = errors.New("name already taken in room")
	ErrRoomFull  = errors.New("room is full")
)

// Integrity violations: the request referenced something that does not exist.
var (
	ErrRoomNotFound = errors.New("room not found")
	ErrSeatNotFound = errors.New("seat not found")
)

// ProtocolError reports an out-of-turn, wrong-phase or illegal request.
type ProtocolError struct {
	Op  string
	Err error
}

func (e *ProtocolError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *ProtocolError) Unwrap() error { return e.Err }

// CapacityError reports a rejected join.
type CapacityError struct {
	Room string
	Err  error
}

func (e *CapacityError) Error() string { return fmt.Sprintf("room %s: %v", e.Room, e.Err) }
func (e *CapacityError) Unwrap() error { return e.Err }

// IntegrityError reports a reference to a room or seat that does not exist.
type IntegrityError struct {
	Room string
	Seat int
	Err  error
}

func (e *IntegrityError) Error() string {
	if e.Seat >= 0 {
		return fmt.Sprintf("room %s seat %d: %v", e.Room, e.Seat, e.Err)
	}
	return fmt.Sprintf("room %s: %v", e.Room, e.Err)
}
func (e *IntegrityError) Unwrap() error { return e.Err }

func protocolErr(op string, err error) error { return &ProtocolError{Op: op, Err: err} }
