// Package rpcserver exposes the booking engine over HTTP, grounded in
// gateway/routes.New's chi.Router wiring and rpc/modules.ModuleError's
// typed-error response shape.
package rpcserver

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bookingengine/auth"
	"bookingengine/native/booking"
	"bookingengine/store"
)

// Server is the HTTP facade in front of one booking.Engine.
type Server struct {
	engine  *booking.Engine
	issuer  *auth.Issuer
	hub     *EventHub
	metrics *Metrics
	log     *slog.Logger
	router  chi.Router
}

// NewServer wires the engine, its auth issuer, its store-backed event hub
// and metrics into a chi.Router, mirroring services/escrow-gateway/main.go's
// NewServer(auth, node, store, ...) composition shape.
func NewServer(engine *booking.Engine, issuer *auth.Issuer, st store.Store, log *slog.Logger) *Server {
	metrics := NewMetrics()
	hub := NewEventHub(st, metrics)
	engine.SetEmitter(hub)
	engine.SetPersister(NewSnapshotPersister(st, log))

	s := &Server{
		engine:  engine,
		issuer:  issuer,
		hub:     hub,
		metrics: metrics,
		log:     log,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/v1/events/stream", s.handleEventStream)

	r.Route("/v1", func(v1 chi.Router) {
		v1.Post("/users", s.handleNewUser)
		v1.Post("/items", s.handleNewItem)
		v1.Post("/items/{itemID}/availability", s.handleAddOrModifyAvailability)
		v1.Post("/items/{itemID}/reservations", s.handleNewReservation)
		v1.Post("/items/{itemID}/reservations/{reservationID}/cancel-by-owner", s.handleCancellationByOwner)
		v1.Post("/items/{itemID}/reservations/{reservationID}/offer", s.handleOfferPartialRefund)
		v1.Post("/items/{itemID}/reservations/{reservationID}/vote", s.handleDisputeVote)
		v1.Post("/items/{itemID}/reservations/{reservationID}/payment", s.handleGetPayment)
		v1.Post("/reservations/cancel-by-customer", s.handleCancellationByCustomer)
		v1.Post("/reservations/refund", s.handleGetRefund)
		v1.Post("/reservations/dispute", s.handleStartDispute)
		v1.Post("/admin/payment-delay", s.handleSetPaymentDelay)
		v1.Post("/admin/min-arbitrators", s.handleSetMinArbitrators)
		v1.Post("/admin/arbitrators", s.handleGetArbitratorBadge)
		v1.Post("/admin/arbitrators/{arbitratorID}/revoke", s.handleRevokeArbitratorBadge)
	})

	s.router = r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	modErr := translateError(err)
	writeJSON(w, modErr.HTTPStatus, modErr)
}

func decodeBody(r *http.Request, dst interface{}) *ModuleError {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &ModuleError{HTTPStatus: http.StatusBadRequest, Code: codeBadArgument, Message: "invalid request body: " + err.Error()}
	}
	return nil
}
