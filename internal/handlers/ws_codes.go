// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the room handler.
// These provide more specific reasons for closure than standard codes.
const (
	BadSubprotocolError = 3000 // Client connected with an unsupported subprotocol.
	InvalidTicketError  = 3001 // Seat ticket missing, invalid, expired, or issued for another room.
	SeatLostError       = 3002 // The ticket's seat or spectator handle is no longer held by its owner.
	InvalidRoomIDError  = 3003 // Target room in the WS URL does not exist.
	RoomClosedError     = 3004 // The room was removed while the connection was open.
)
