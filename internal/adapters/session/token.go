// Package session reads the identity carried by the API's access token.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"hbnb_web/internal/domain"
)

var ErrInvalidToken = errors.New("invalid access token")

// Reader decodes access tokens. Without a secret the signature is not
// checked: the token only drives what the page shows, the API still
// verifies it on every call.
type Reader struct {
	secret []byte
	now    func() time.Time
}

func NewReader(secret string) *Reader {
	r := &Reader{now: time.Now}
	if secret != "" {
		r.secret = []byte(secret)
	}
	return r
}

func (r *Reader) Identity(token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, ErrInvalidToken
	}
	claims := jwt.MapClaims{}
	if r.secret != nil {
		p := jwt.NewParser(jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}), jwt.WithTimeFunc(r.now))
		if _, err := p.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) { return r.secret, nil }); err != nil {
			return domain.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	} else {
		if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
			return domain.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}

	id := domain.Identity{
		UserID: firstClaim(claims, "user_id", "userID", "sub", "id"),
		Email:  firstClaim(claims, "email"),
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		id.ExpiresAt = exp.Time
		if !id.ExpiresAt.After(r.now()) {
			return domain.Identity{}, fmt.Errorf("%w: expired", ErrInvalidToken)
		}
	}
	return id, nil
}

func firstClaim(c jwt.MapClaims, keys ...string) string {
	for _, k := range keys {
		switch v := c[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}
