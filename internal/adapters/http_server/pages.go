package httpserver

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"hbnb_web/internal/app"
	"hbnb_web/internal/domain"
)

const msgUnreadableToken = "Login failed: the server returned a session we could not read. Please try again later."

type priceOption struct {
	Value, Label string
}

var priceOptions = []priceOption{
	{"all", "All"},
	{"10", "$10"},
	{"50", "$50"},
	{"100", "$100"},
	{"200", "$200"},
}

type indexView struct {
	Places       []domain.Place
	Query        string
	MaxPrice     string
	PriceOptions []priceOption
	Favorites    map[string]bool
	Next         string
}

type placeView struct {
	Place    domain.Place
	Favorite bool
	Next     string
}

type reviewView struct {
	Place  domain.Place
	Action string
	Text   string
	Rating int
}

type accountView struct {
	FirstName, LastName, Email string
}

type notFoundView struct {
	Heading, Text string
}

func userMessage(err error) string {
	var ue *domain.UserError
	if errors.As(err, &ue) {
		return ue.Msg
	}
	return "Something went wrong. Please try again."
}

// placeID reads the id from the path, or from ?id= on the legacy .html routes.
func placeID(r *http.Request) string {
	if id := chi.URLParam(r, "id"); id != "" {
		return strings.TrimSpace(id)
	}
	return strings.TrimSpace(r.URL.Query().Get("id"))
}

// safeNext only allows local paths as redirect targets.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return "/"
	}
	return next
}

func notice(o domain.Origin) string {
	switch o {
	case domain.OriginSnapshot:
		return "The places service is unavailable. Showing the last saved listings."
	case domain.OriginSample:
		return "The places service is unavailable. Showing sample places."
	}
	return ""
}

func (s *Server) redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// ---- places ----

func (s *Server) index(h *Handlers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v := viewerFrom(r.Context())
		q := r.URL.Query()
		list := h.Places.ListPlaces(r.Context(), v.Token)

		favs, err := h.Favorites.List(r.Context(), app.OwnerKey(v.Identity, v.Visitor))
		if err != nil {
			log.Warn().Err(err).Msg("load favorites failed")
		}
		maxPrice := q.Get("max_price")
		if maxPrice == "" {
			maxPrice = "all"
		}
		s.render(w, r, http.StatusOK, "index.html", pageData{
			Title:  "Places",
			Notice: notice(list.Origin),
			Data: indexView{
				Places:       app.Filter(list.Items, q.Get("q"), maxPrice),
				Query:        q.Get("q"),
				MaxPrice:     maxPrice,
				PriceOptions: priceOptions,
				Favorites:    favs,
				Next:         r.URL.RequestURI(),
			},
		})
	}
}

func (s *Server) placeDetail(h *Handlers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := placeID(r)
		if id == "" {
			s.render(w, r, http.StatusNotFound, "not_found.html", pageData{
				Title: "No Place Selected",
				Data:  notFoundView{Heading: "No Place Selected", Text: "Please choose a place from the list."},
			})
			return
		}
		v := viewerFrom(r.Context())
		p, err := h.Places.GetPlace(r.Context(), id, v.Token)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				log.Error().Err(err).Str("place_id", id).Msg("load place failed")
			}
			s.render(w, r, http.StatusNotFound, "not_found.html", pageData{
				Title: "Place Not Found",
				Data:  notFoundView{Heading: "Place Not Found", Text: "The place you are looking for does not exist."},
			})
			return
		}
		favs, _ := h.Favorites.List(r.Context(), app.OwnerKey(v.Identity, v.Visitor))
		s.render(w, r, http.StatusOK, "place.html", pageData{
			Title: placeTitle(p),
			Data:  placeView{Place: p, Favorite: favs[p.ID], Next: r.URL.RequestURI()},
		})
	}
}

// ---- reviews ----

// reviewTarget resolves the place a review is for, redirecting when the
// viewer cannot review it.
func (s *Server) reviewTarget(h *Handlers, w http.ResponseWriter, r *http.Request) (domain.Place, bool) {
	v := viewerFrom(r.Context())
	if !v.LoggedIn() {
		s.setFlash(w, flashError, "Please log in to add a review")
		s.redirect(w, r, "/login")
		return domain.Place{}, false
	}
	id := placeID(r)
	p, err := h.Places.GetPlace(r.Context(), id, v.Token)
	if err != nil {
		s.setFlash(w, flashError, "Place not found")
		s.redirect(w, r, "/")
		return domain.Place{}, false
	}
	if p.ID == "" {
		p.ID = id
	}
	return p, true
}

func reviewAction(id string) string {
	return "/places/" + url.PathEscape(id) + "/review"
}

func (s *Server) reviewForm(h *Handlers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := s.reviewTarget(h, w, r)
		if !ok {
			return
		}
		s.render(w, r, http.StatusOK, "add_review.html", pageData{
			Title: "Add Review",
			Data:  reviewView{Place: p, Action: reviewAction(p.ID)},
		})
	}
}

func (s *Server) reviewSubmit(h *Handlers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := s.reviewTarget(h, w, r)
		if !ok {
			return
		}
		v := viewerFrom(r.Context())
		draft := domain.ReviewDraft{
			PlaceID: p.ID,
			UserID:  v.Identity.UserID,
			Text:    r.PostFormValue("review"),
			Rating:  app.ParseRating(r.PostFormValue("rating")),
		}
		if err := h.Reviews.Submit(r.Context(), v.Token, draft); err != nil {
			s.render(w, r, http.StatusUnprocessableEntity, "add_review.html", pageData{
				Title: "Add Review",
				Flash: &flash{Kind: flashError, Msg: userMessage(err)},
				Data:  reviewView{Place: p, Action: reviewAction(p.ID), Text: draft.Text, Rating: draft.Rating},
			})
			return
		}
		s.setFlash(w, flashSuccess, "Review submitted successfully!")
		s.redirect(w, r, "/places/"+url.PathEscape(p.ID))
	}
}

// ---- accounts ----

func (s *Server) loginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "login.html", pageData{Title: "Login", Data: accountView{}})
}

func (s *Server) loginSubmit(h *Handlers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := r.PostFormValue("email")
		tok, err := h.Accounts.Login(r.Context(), email, r.PostFormValue("password"))
		if err != nil {
			s.render(w, r, http.StatusUnprocessableEntity, "login.html", pageData{
				Title: "Login",
				Flash: &flash{Kind: flashError, Msg: userMessage(err)},
				Data:  accountView{Email: email},
			})
			return
		}
		id, err := s.tokens.Identity(tok)
		if err != nil {
			log.Warn().Err(err).Msg("login returned an unreadable access token")
			s.render(w, r, http.StatusUnprocessableEntity, "login.html", pageData{
				Title: "Login",
				Flash: &flash{Kind: flashError, Msg: msgUnreadableToken},
				Data:  accountView{Email: email},
			})
			return
		}
		setCookie(w, tokenCookie, tok, tokenLifetime(id, time.Now()), s.secure)
		s.setFlash(w, flashSuccess, "Login successful!")
		s.redirect(w, r, "/")
	}
}

func (s *Server) registerForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "register.html", pageData{Title: "Create Account", Data: accountView{}})
}

func (s *Server) registerSubmit(h *Handlers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reg := domain.Registration{
			FirstName: r.PostFormValue("first_name"),
			LastName:  r.PostFormValue("last_name"),
			Email:     r.PostFormValue("email"),
			Password:  r.PostFormValue("password"),
		}
		if err := h.Accounts.Register(r.Context(), reg); err != nil {
			s.render(w, r, http.StatusUnprocessableEntity, "register.html", pageData{
				Title: "Create Account",
				Flash: &flash{Kind: flashError, Msg: userMessage(err)},
				Data:  accountView{FirstName: reg.FirstName, LastName: reg.LastName, Email: reg.Email},
			})
			return
		}
		s.setFlash(w, flashSuccess, "Registration successful! You can now log in.")
		s.redirect(w, r, "/login")
	}
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	clearCookie(w, tokenCookie, s.secure)
	s.redirect(w, r, "/")
}

// ---- favorites ----

func (s *Server) toggleFavorite(h *Handlers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v := viewerFrom(r.Context())
		_, msg, err := h.Favorites.Toggle(r.Context(), app.OwnerKey(v.Identity, v.Visitor), placeID(r))
		if err != nil {
			log.Warn().Err(err).Msg("toggle favorite failed")
			s.setFlash(w, flashError, userMessage(err))
		} else {
			s.setFlash(w, flashSuccess, msg)
		}
		s.redirect(w, r, safeNext(r.PostFormValue("next")))
	}
}
