package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"hbnb_web/internal/app"
	"hbnb_web/internal/domain"
)

type Handlers struct {
	Places    *app.PlaceService
	Accounts  *app.AccountService
	Reviews   *app.ReviewService
	Favorites *app.FavoriteService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Handle("/static/*", staticHandler())

	// pages
	s.mux.Get("/", s.index(h))
	s.mux.Get("/index.html", s.index(h))
	s.mux.Get("/places/{id}", s.placeDetail(h))
	s.mux.Get("/place.html", s.placeDetail(h))
	s.mux.Get("/places/{id}/review", s.reviewForm(h))
	s.mux.Post("/places/{id}/review", s.reviewSubmit(h))
	s.mux.Get("/add_review.html", s.reviewForm(h))
	s.mux.Post("/add_review.html", s.reviewSubmit(h))
	s.mux.Get("/login", s.loginForm)
	s.mux.Get("/login.html", s.loginForm)
	s.mux.Post("/login", s.loginSubmit(h))
	s.mux.Get("/register", s.registerForm)
	s.mux.Get("/register.html", s.registerForm)
	s.mux.Post("/register", s.registerSubmit(h))
	s.mux.Get("/logout", s.logout)
	s.mux.Post("/logout", s.logout)
	s.mux.Post("/favorites/{id}", s.toggleFavorite(h))

	// JSON
	s.mux.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "If-None-Match"},
			ExposedHeaders: []string{"ETag"},
			MaxAge:         300,
		}))
		r.Get("/places", h.listPlaces)
		r.Get("/places/{id}", h.getPlace)
	})

	s.mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, http.StatusNotFound, "not_found.html", pageData{
			Title: "Page Not Found",
			Data:  notFoundView{Heading: "Page Not Found", Text: "The page you are looking for does not exist."},
		})
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "could not encode response")
		return
	}
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write JSON body")
	}
}

func (h *Handlers) listPlaces(w http.ResponseWriter, r *http.Request) {
	v := viewerFrom(r.Context())
	list := h.Places.ListPlaces(r.Context(), v.Token)
	q := r.URL.Query()
	list.Items = app.Filter(list.Items, q.Get("q"), q.Get("max_price"))
	writeJSON(w, r, list)
}

func (h *Handlers) getPlace(w http.ResponseWriter, r *http.Request) {
	v := viewerFrom(r.Context())
	p, err := h.Places.GetPlace(r.Context(), chi.URLParam(r, "id"), v.Token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "place not found")
			return
		}
		writeProblem(w, http.StatusBadGateway, "Bad Gateway", "places service unavailable")
		return
	}
	writeJSON(w, r, p)
}
