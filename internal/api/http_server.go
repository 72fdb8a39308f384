package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"shareit/internal/config"
	"shareit/internal/domain"

	"github.com/rs/zerolog"
)

// Services bundles the operations exposed over HTTP.
type Services struct {
	Users    domain.UserService
	Items    domain.ItemService
	Comments domain.CommentService
	Requests domain.ItemRequestService
	Bookings domain.BookingService
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HTTPServer exposes the rental API.
type HTTPServer struct {
	cfg         config.APIConfig
	svc         Services
	store       Pinger
	userLimiter domain.RateLimiter
	ipLimiter   *rateLimiter
	logger      *zerolog.Logger
	server      *http.Server
}

// NewHTTPServer builds the router and middleware chain. userLimiter may be nil.
func NewHTTPServer(cfg config.APIConfig, svc Services, store Pinger, userLimiter domain.RateLimiter, logger *zerolog.Logger) *HTTPServer {
	srv := &HTTPServer{
		cfg:         cfg,
		svc:         svc,
		store:       store,
		userLimiter: userLimiter,
		ipLimiter:   newRateLimiter(cfg.RateLimit),
		logger:      logger,
	}

	mux := http.NewServeMux()
	srv.routes(mux)

	handler := chain(mux,
		srv.requestID,
		srv.accessLog,
		srv.limitByAddress,
		srv.limitByUser,
	)

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *HTTPServer) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handle(s.healthz))

	mux.HandleFunc("POST /users", s.handle(s.createUser))
	mux.HandleFunc("GET /users", s.handle(s.listUsers))
	mux.HandleFunc("GET /users/{id}", s.handle(s.getUser))
	mux.HandleFunc("PATCH /users/{id}", s.handle(s.updateUser))
	mux.HandleFunc("DELETE /users/{id}", s.handle(s.deleteUser))

	mux.HandleFunc("POST /items", s.handle(s.createItem))
	mux.HandleFunc("GET /items", s.handle(s.listOwnerItems))
	mux.HandleFunc("GET /items/search", s.handle(s.searchItems))
	mux.HandleFunc("GET /items/{id}", s.handle(s.getItem))
	mux.HandleFunc("PATCH /items/{id}", s.handle(s.updateItem))
	mux.HandleFunc("POST /items/{id}/comment", s.handle(s.addComment))

	mux.HandleFunc("POST /bookings", s.handle(s.createBooking))
	mux.HandleFunc("GET /bookings", s.handle(s.listBookerBookings))
	mux.HandleFunc("GET /bookings/owner", s.handle(s.listOwnerBookings))
	mux.HandleFunc("GET /bookings/owner/export", s.handle(s.exportOwnerBookings))
	mux.HandleFunc("GET /bookings/{id}", s.handle(s.getBooking))
	mux.HandleFunc("PATCH /bookings/{id}", s.handle(s.decideBooking))

	mux.HandleFunc("POST /requests", s.handle(s.createRequest))
	mux.HandleFunc("GET /requests", s.handle(s.listOwnRequests))
	mux.HandleFunc("GET /requests/all", s.handle(s.listOtherRequests))
	mux.HandleFunc("GET /requests/{id}", s.handle(s.getRequest))
}

// Handler returns the fully wrapped handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) healthz(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Store ping failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return nil
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	return nil
}
