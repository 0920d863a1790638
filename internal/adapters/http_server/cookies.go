package httpserver

import (
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"hbnb_web/internal/domain"
)

const (
	tokenCookie   = "token"
	visitorCookie = "visitor"
	flashCookie   = "flash"

	tokenMaxAge   = 7 * 24 * time.Hour
	visitorMaxAge = 365 * 24 * time.Hour
)

// tokenLifetime keeps the token cookie no longer than the token itself.
func tokenLifetime(id domain.Identity, now time.Time) time.Duration {
	if id.ExpiresAt.IsZero() {
		return tokenMaxAge
	}
	if left := id.ExpiresAt.Sub(now); left < tokenMaxAge {
		return left
	}
	return tokenMaxAge
}

func setCookie(w http.ResponseWriter, name, value string, maxAge time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearCookie(w http.ResponseWriter, name string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ---- flash messages ----

type flashKind string

const (
	flashSuccess flashKind = "success"
	flashError   flashKind = "error"
)

// flash is a one-shot banner carried across a redirect.
type flash struct {
	Kind flashKind
	Msg  string
}

func (f flash) Class() string { return string(f.Kind) + "-message" }

func (s *Server) setFlash(w http.ResponseWriter, kind flashKind, msg string) {
	v := base64.RawURLEncoding.EncodeToString([]byte(string(kind) + "|" + msg))
	setCookie(w, flashCookie, v, time.Minute, s.secure)
}

// popFlash reads the pending banner and clears it.
func (s *Server) popFlash(w http.ResponseWriter, r *http.Request) *flash {
	c, err := r.Cookie(flashCookie)
	if err != nil || c.Value == "" {
		return nil
	}
	clearCookie(w, flashCookie, s.secure)
	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	kind, msg, ok := strings.Cut(string(raw), "|")
	if !ok || msg == "" {
		return nil
	}
	switch flashKind(kind) {
	case flashSuccess, flashError:
		return &flash{Kind: flashKind(kind), Msg: msg}
	}
	return nil
}
