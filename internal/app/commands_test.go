package app_test

import (
	"context"
	"errors"
	"testing"

	"hbnb_web/internal/app"
	"hbnb_web/internal/domain"
)

func userMsg(t *testing.T, err error) string {
	t.Helper()
	var ue *domain.UserError
	if !errors.As(err, &ue) {
		t.Fatalf("expected a UserError, got %v", err)
	}
	return ue.Msg
}

func TestLogin(t *testing.T) {
	cases := []struct {
		name      string
		email, pw string
		api       *fakeAPI
		wantTok   string
		wantMsg   string
	}{
		{"ok", " ana@example.com ", "secret1", &fakeAPI{loginTok: "jwt"}, "jwt", ""},
		{"missing fields", "  ", "secret1", &fakeAPI{}, "", "Please fill in all fields"},
		{"bad email", "ana.example.com", "secret1", &fakeAPI{}, "", "Please enter a valid email address"},
		{"short password", "a@b.c", "12345", &fakeAPI{}, "", "Password must be at least 6 characters long"},
		{"no token", "a@b.c", "secret1", &fakeAPI{}, "", "Login failed: No access token received"},
		{"body message", "a@b.c", "secret1", &fakeAPI{loginErr: &domain.APIError{Status: 401, StatusText: "UNAUTHORIZED", Message: "Invalid credentials"}}, "", "Invalid credentials"},
		{"status only", "a@b.c", "secret1", &fakeAPI{loginErr: &domain.APIError{Status: 500, StatusText: "INTERNAL SERVER ERROR"}}, "", "Login failed: 500 INTERNAL SERVER ERROR"},
		{"network", "a@b.c", "secret1", &fakeAPI{loginErr: domain.ErrUnavailable}, "", "Network error. Please check your connection and try again."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tok, err := app.NewAccountService(tc.api).Login(context.Background(), tc.email, tc.pw)
			if tc.wantMsg == "" {
				if err != nil || tok != tc.wantTok {
					t.Fatalf("tok=%q err=%v", tok, err)
				}
				return
			}
			if got := userMsg(t, err); got != tc.wantMsg {
				t.Fatalf("message %q, want %q", got, tc.wantMsg)
			}
		})
	}
}

func TestRegister(t *testing.T) {
	api := &fakeAPI{}
	acc := app.NewAccountService(api)

	err := acc.Register(context.Background(), domain.Registration{FirstName: "Ana", Email: "ana@example.com", Password: "secret1"})
	if got := userMsg(t, err); got != "Please fill in all fields" {
		t.Fatalf("unexpected message %q", got)
	}

	if err := acc.Register(context.Background(), domain.Registration{
		FirstName: " Ana ", LastName: "Lima", Email: " ana@example.com", Password: "secret1",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if api.lastReg.FirstName != "Ana" || api.lastReg.Email != "ana@example.com" {
		t.Fatalf("fields not trimmed: %+v", api.lastReg)
	}

	api.regErr = &domain.APIError{Status: 400, StatusText: "BAD REQUEST", Message: "User with this email already exists"}
	err = acc.Register(context.Background(), domain.Registration{FirstName: "A", LastName: "B", Email: "c@d.e", Password: "secret1"})
	if got := userMsg(t, err); got != "User with this email already exists" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestParseRating(t *testing.T) {
	for in, want := range map[string]int{"1": 1, " 5 ": 5, "0": 0, "6": 0, "": 0, "four": 0} {
		if got := app.ParseRating(in); got != want {
			t.Fatalf("ParseRating(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestSubmitReview_Validation(t *testing.T) {
	rs := app.NewReviewService(&fakeAPI{}, &fakeCache{})
	cases := []struct {
		token string
		draft domain.ReviewDraft
		want  string
	}{
		{"", domain.ReviewDraft{PlaceID: "p1", Text: "Long enough text", Rating: 4}, "Please log in to add a review"},
		{"tok", domain.ReviewDraft{PlaceID: "p1", Text: "   ", Rating: 4}, "Please enter your review"},
		{"tok", domain.ReviewDraft{PlaceID: "p1", Text: "Too short", Rating: 4}, "Review must be at least 10 characters long"},
		{"tok", domain.ReviewDraft{PlaceID: "p1", Text: "Long enough text", Rating: 0}, "Please select a rating"},
	}
	for _, tc := range cases {
		if got := userMsg(t, rs.Submit(context.Background(), tc.token, tc.draft)); got != tc.want {
			t.Fatalf("got %q, want %q", got, tc.want)
		}
	}
}

func TestSubmitReview_SuccessEvictsCache(t *testing.T) {
	api := &fakeAPI{}
	cache := &fakeCache{}
	_ = cache.Set(context.Background(), "place:p1", domain.Place{ID: "p1"}, 60)
	rs := app.NewReviewService(api, cache)

	err := rs.Submit(context.Background(), "tok", domain.ReviewDraft{PlaceID: "p1", UserID: "u1", Text: "  Quiet street, great bed  ", Rating: 5})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if api.lastDraft.Text != "Quiet street, great bed" || api.lastToken != "tok" {
		t.Fatalf("unexpected draft sent: %+v", api.lastDraft)
	}
	if ok, _ := cache.Get(context.Background(), "place:p1", &domain.Place{}); ok {
		t.Fatalf("place cache should be evicted")
	}
	if len(cache.dels) != 2 {
		t.Fatalf("expected place and list eviction, got %v", cache.dels)
	}
}

func TestSubmitReview_APIFailures(t *testing.T) {
	draft := domain.ReviewDraft{PlaceID: "p1", Text: "Long enough text", Rating: 3}

	api := &fakeAPI{reviewErr: &domain.APIError{Status: 500, StatusText: "INTERNAL SERVER ERROR"}}
	err := app.NewReviewService(api, &fakeCache{}).Submit(context.Background(), "tok", draft)
	if got := userMsg(t, err); got != "Failed to submit review" {
		t.Fatalf("got %q", got)
	}

	api.reviewErr = domain.ErrUnavailable
	err = app.NewReviewService(api, &fakeCache{}).Submit(context.Background(), "tok", draft)
	if got := userMsg(t, err); got != "Network error. Please try again." {
		t.Fatalf("got %q", got)
	}
}

func TestOwnerKey(t *testing.T) {
	if k := app.OwnerKey(domain.Identity{UserID: "u1", Email: "x@y.z"}, "v"); k != "user:u1" {
		t.Fatalf("got %q", k)
	}
	if k := app.OwnerKey(domain.Identity{Email: "Ana@Example.com"}, "v"); k != "user:ana@example.com" {
		t.Fatalf("got %q", k)
	}
	if k := app.OwnerKey(domain.Identity{}, "v-1"); k != "visitor:v-1" {
		t.Fatalf("got %q", k)
	}
	if k := app.OwnerKey(domain.Identity{}, ""); k != "" {
		t.Fatalf("got %q", k)
	}
}

func TestFavoriteToggle(t *testing.T) {
	favs := app.NewFavoriteService(&fakeFavs{})
	ctx := context.Background()

	on, msg, err := favs.Toggle(ctx, "visitor:1", "mock-1")
	if err != nil || !on || msg != "Added to favorites" {
		t.Fatalf("first toggle: on=%v msg=%q err=%v", on, msg, err)
	}
	got, _ := favs.List(ctx, "visitor:1")
	if !got["mock-1"] {
		t.Fatalf("expected mock-1 in favorites: %v", got)
	}

	on, msg, err = favs.Toggle(ctx, "visitor:1", "mock-1")
	if err != nil || on || msg != "Removed from favorites" {
		t.Fatalf("second toggle: on=%v msg=%q err=%v", on, msg, err)
	}

	if _, _, err := favs.Toggle(ctx, "", "mock-1"); err == nil {
		t.Fatalf("expected error without owner")
	}
}
