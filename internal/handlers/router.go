// internal/handlers/router.go
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jason-s-yu/pinaki/internal/middleware"
)

// NewRouter mounts the room API.
//
//	GET  /rooms                  list rooms
//	POST /rooms/{roomID}/join    join (creates the room), returns a seat ticket
//	GET  /rooms/{roomID}/ws      WebSocket, ticket in ?ticket= or the cookie
//
// Every other route needs the ticket as "Authorization: Bearer <ticket>".
func NewRouter(s *RoomServer, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))
	r.Use(middleware.LogMiddleware(s.Logger))

	r.Get("/rooms", s.ListRoomsHandler)
	r.Route("/rooms/{roomID}", func(r chi.Router) {
		r.Post("/join", s.JoinHandler)
		r.Get("/ws", s.RoomWSHandler)

		r.Group(func(r chi.Router) {
			r.Use(s.requireTicket)
			r.Get("/state", s.StateHandler)
			r.Post("/start", s.actionHandler(msgStartHand))
			r.Post("/auction", s.actionHandler(msgAuction))
			r.Post("/trump", s.actionHandler(msgSelectTrump))
			r.Post("/play", s.actionHandler(msgPlayCard))
			r.Post("/chat", s.actionHandler(msgChat))
			r.Post("/bots", s.actionHandler(msgAddBot))
			r.Post("/leave", s.actionHandler(msgLeave))
		})
	})
	return r
}
