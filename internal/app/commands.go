package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"hbnb_web/internal/domain"
)

const (
	msgFillAll        = "Please fill in all fields"
	msgBadEmail       = "Please enter a valid email address"
	msgShortPassword  = "Password must be at least 6 characters long"
	msgNetwork        = "Network error. Please check your connection and try again."
	msgNetworkShort   = "Network error. Please try again."
	msgNoToken        = "Login failed: No access token received"
	msgLoginRequired  = "Please log in to add a review"
	msgReviewEmpty    = "Please enter your review"
	msgReviewShort    = "Review must be at least 10 characters long"
	msgRatingRequired = "Please select a rating"
	msgReviewFailed   = "Failed to submit review"

	MinReviewLen   = 10
	MinPasswordLen = 6
)

// failure turns an API error into a banner message: the body's own message
// when it has one, otherwise prefix (followed by the status when withStatus).
func failure(err error, prefix string, withStatus bool, network string) error {
	if errors.Is(err, domain.ErrUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		return domain.NewUserError(network, err)
	}
	var ae *domain.APIError
	if errors.As(err, &ae) {
		if ae.Message != "" {
			return domain.NewUserError(ae.Message, err)
		}
		if withStatus {
			return domain.NewUserError(fmt.Sprintf("%s: %d %s", prefix, ae.Status, ae.StatusText), err)
		}
	}
	return domain.NewUserError(prefix, err)
}

// ---- accounts ----

func checkCredentials(email, password string) error {
	if !strings.Contains(email, "@") {
		return domain.NewUserError(msgBadEmail, nil)
	}
	if utf8.RuneCountInString(password) < MinPasswordLen {
		return domain.NewUserError(msgShortPassword, nil)
	}
	return nil
}

type AccountService struct {
	api domain.PlacesAPI
}

func NewAccountService(api domain.PlacesAPI) *AccountService {
	return &AccountService{api: api}
}

// Login returns the access token to store in the session cookie.
func (s *AccountService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", domain.NewUserError(msgFillAll, nil)
	}
	if err := checkCredentials(email, password); err != nil {
		return "", err
	}
	tok, err := s.api.Login(ctx, email, password)
	if err != nil {
		log.Info().Err(err).Str("email", email).Msg("login rejected")
		return "", failure(err, "Login failed", true, msgNetwork)
	}
	if tok == "" {
		return "", domain.NewUserError(msgNoToken, nil)
	}
	return tok, nil
}

func (s *AccountService) Register(ctx context.Context, r domain.Registration) error {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.TrimSpace(r.Email)
	if r.FirstName == "" || r.LastName == "" || r.Email == "" || r.Password == "" {
		return domain.NewUserError(msgFillAll, nil)
	}
	if err := checkCredentials(r.Email, r.Password); err != nil {
		return err
	}
	if err := s.api.Register(ctx, r); err != nil {
		log.Info().Err(err).Str("email", r.Email).Msg("registration rejected")
		return failure(err, "Registration failed", true, msgNetwork)
	}
	return nil
}

// ---- reviews ----

type ReviewService struct {
	api   domain.PlacesAPI
	cache domain.Cache
}

func NewReviewService(api domain.PlacesAPI, c domain.Cache) *ReviewService {
	return &ReviewService{api: api, cache: c}
}

// ParseRating accepts the raw form value; 0 means missing or out of range.
func ParseRating(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 || n > 5 {
		return 0
	}
	return n
}

func (s *ReviewService) Validate(d domain.ReviewDraft) error {
	text := strings.TrimSpace(d.Text)
	switch {
	case text == "":
		return domain.NewUserError(msgReviewEmpty, nil)
	case utf8.RuneCountInString(text) < MinReviewLen:
		return domain.NewUserError(msgReviewShort, nil)
	case d.Rating < 1 || d.Rating > 5:
		return domain.NewUserError(msgRatingRequired, nil)
	}
	return nil
}

func (s *ReviewService) Submit(ctx context.Context, token string, d domain.ReviewDraft) error {
	if token == "" {
		return domain.NewUserError(msgLoginRequired, domain.ErrUnauthorized)
	}
	d.Text = strings.TrimSpace(d.Text)
	if err := s.Validate(d); err != nil {
		return err
	}
	if err := s.api.SubmitReview(ctx, token, d); err != nil {
		log.Warn().Err(err).Str("place_id", d.PlaceID).Msg("submit review failed")
		return failure(err, msgReviewFailed, false, msgNetworkShort)
	}

	// the detail page and list counts are stale now
	_ = s.cache.Del(ctx, placeKey(d.PlaceID))
	_ = s.cache.Del(ctx, placesListKey)
	return nil
}

// ---- favorites ----

type FavoriteService struct {
	repo domain.FavoriteRepository
}

func NewFavoriteService(r domain.FavoriteRepository) *FavoriteService {
	return &FavoriteService{repo: r}
}

// OwnerKey scopes favorites to the logged-in user, else to the browser.
func OwnerKey(id domain.Identity, visitorID string) string {
	if id.UserID != "" {
		return "user:" + id.UserID
	}
	if id.Email != "" {
		return "user:" + strings.ToLower(id.Email)
	}
	if visitorID != "" {
		return "visitor:" + visitorID
	}
	return ""
}

func (s *FavoriteService) List(ctx context.Context, owner string) (map[string]bool, error) {
	out := map[string]bool{}
	if owner == "" || s.repo == nil {
		return out, nil
	}
	ids, err := s.repo.ListFavorites(ctx, owner)
	if err != nil {
		return out, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// Toggle flips the favorite state and returns the new state with its banner text.
func (s *FavoriteService) Toggle(ctx context.Context, owner, placeID string) (bool, string, error) {
	if owner == "" || placeID == "" || s.repo == nil {
		return false, "", domain.NewUserError("Could not update favorites", nil)
	}
	favs, err := s.List(ctx, owner)
	if err != nil {
		return false, "", domain.NewUserError("Could not update favorites", err)
	}
	if favs[placeID] {
		if err := s.repo.RemoveFavorite(ctx, owner, placeID); err != nil {
			return true, "", domain.NewUserError("Could not update favorites", err)
		}
		return false, "Removed from favorites", nil
	}
	if err := s.repo.AddFavorite(ctx, owner, placeID); err != nil {
		return false, "", domain.NewUserError("Could not update favorites", err)
	}
	return true, "Added to favorites", nil
}
