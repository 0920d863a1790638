package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"hbnb_web/internal/adapters/session"
	"hbnb_web/internal/shared"
)

type Server struct {
	mux    *chi.Mux
	tokens *session.Reader
	secure bool
}

// New builds the router with the shared middleware chain. secure sets the
// Secure flag on every cookie the server writes.
func New(tokens *session.Reader, secure bool) *Server {
	m := chi.NewRouter()

	// All middlewares go here (before any routes are added)
	m.Use(chimw.RealIP)
	m.Use(chimw.RequestID)
	m.Use(chimw.Recoverer)
	m.Use(Timeout(shared.RequestTimeout))
	m.Use(Metrics)
	m.Use(Logger(log.Logger))
	m.Use(Session(tokens, secure))

	return &Server{mux: m, tokens: tokens, secure: secure}
}

func (s *Server) Mux() http.Handler { return s.mux }

// Mount attaches any extra handler (e.g., /metrics) to the router.
func (s *Server) Mount(path string, h http.Handler) {
	s.mux.Handle(path, h)
}
