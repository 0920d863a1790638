package domain

import "context"

type PlacesAPI interface {
	// Read paths return raw payloads; field names differ between backend versions.
	ListPlaces(ctx context.Context, token string) ([]map[string]any, error)
	GetPlace(ctx context.Context, id, token string) (map[string]any, error)

	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, r Registration) error
	SubmitReview(ctx context.Context, token string, d ReviewDraft) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// PlaceRepository keeps the last-known-good copy of what the API returned.
type PlaceRepository interface {
	UpsertPlaces(ctx context.Context, ps []Place) error
	ListPlaces(ctx context.Context) ([]Place, error)
	GetPlace(ctx context.Context, id string) (Place, error)
}

type FavoriteRepository interface {
	AddFavorite(ctx context.Context, owner, placeID string) error
	RemoveFavorite(ctx context.Context, owner, placeID string) error
	ListFavorites(ctx context.Context, owner string) ([]string, error)
}

type SampleSource interface {
	Places() []Place
	Place(id string) (Place, bool)
}
