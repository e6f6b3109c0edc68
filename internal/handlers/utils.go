package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/jason-s-yu/pinaki/internal/auth"
	"github.com/jason-s-yu/pinaki/internal/game"
	"github.com/sirupsen/logrus"
)

const ticketCookie = "pinaki_ticket"

// extractCookieToken extracts a named cookie value from "Cookie" header, or returns empty if not found.
func extractCookieToken(cookieHeader, cookieName string) string {
	parts := strings.Split(cookieHeader, cookieName+"=")
	if len(parts) < 2 {
		return ""
	}
	token := parts[1]
	if idx := strings.Index(token, ";"); idx != -1 {
		token = token[:idx]
	}
	return token
}

// extractTicket looks for a seat ticket in the Authorization header, then the
// "ticket" query parameter (browsers cannot set headers on a WebSocket
// upgrade), then the ticket cookie.
func extractTicket(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if t := r.URL.Query().Get("ticket"); t != "" {
		return t
	}
	return extractCookieToken(r.Header.Get("Cookie"), ticketCookie)
}

// statusFor maps an engine error to the HTTP status reported to the caller.
func statusFor(err error) int {
	var (
		pe *game.ProtocolError
		ce *game.CapacityError
		ie *game.IntegrityError
	)
	switch {
	case errors.As(err, &pe):
		return http.StatusConflict
	case errors.As(err, &ce):
		return http.StatusForbidden
	case errors.As(err, &ie):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrInvalidTicket):
		return http.StatusUnauthorized
	}
	return http.StatusBadRequest
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Warnf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]interface{}{
		"type":    "error",
		"message": err.Error(),
	})
}
