/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. RealIP:     Client address behind proxies
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. Metrics:    Prometheus counters and latency histograms
  5. CORS:       Cross-origin requests for the web client

ROUTE GROUPS:
  /api/rooms/*          Saving rooms (views, payments, comments, events)
  /api/transactions     Personal income/expense entries
  /api/dashboard        Landing-page summary
  /api/users            Participant directory
  /metrics              Prometheus scrape endpoint

SECURITY NOTE:
  Authentication happens upstream; handlers trust the X-User-Id header.
  Do not expose this service directly to the public internet.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-User-Id"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/rooms", func(r chi.Router) {
			r.Get("/", h.ListRooms)
			r.Post("/", h.CreateRoom)
			r.Get("/{id}", h.GetRoom)
			r.Put("/{id}", h.UpdateRoom)
			r.Delete("/{id}", h.DeleteRoom)
			r.Post("/{id}/payments", h.RecordPayment)
			r.Post("/{id}/comments", h.AddComment)
			r.Get("/{id}/history", h.GetHistory)
			r.Get("/{id}/events", h.StreamEvents)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", h.ListTransactions)
			r.Post("/", h.AddTransaction)
		})

		r.Get("/dashboard", h.GetDashboard)
		r.Get("/users", h.ListUsers)
	})

	r.Handle("/metrics", MetricsHandler())

	return r
}
