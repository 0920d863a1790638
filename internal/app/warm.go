package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hbnb_web/internal/domain"
)

// WarmService pulls places from the API ahead of traffic so pages render
// from the cache, and refreshes the snapshot used when the API is down.
type WarmService struct {
	api      domain.PlacesAPI
	repo     domain.PlaceRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewWarmService(api domain.PlacesAPI, r domain.PlaceRepository, c domain.Cache, ttl time.Duration) *WarmService {
	return &WarmService{api: api, repo: r, cache: c, cacheTTL: ttl}
}

// WarmList caches the listing and returns the ids to warm individually.
func (s *WarmService) WarmList(ctx context.Context, token string) ([]string, error) {
	raw, err := s.api.ListPlaces(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("list places: %w", err)
	}
	places := mapPlaces(raw)
	if s.cache != nil {
		if err := s.cache.Set(ctx, placesListKey, places, int(s.cacheTTL.Seconds())); err != nil {
			return nil, fmt.Errorf("cache list: %w", err)
		}
	}
	ids := make([]string, 0, len(places))
	for _, p := range places {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

// WarmPlace fetches one place. A place that vanished between the list and
// the detail call is evicted and not reported as a failure.
func (s *WarmService) WarmPlace(ctx context.Context, id, token string) error {
	raw, err := s.api.GetPlace(ctx, id, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			if s.cache != nil {
				_ = s.cache.Del(ctx, placeKey(id))
			}
			return nil
		}
		return err
	}

	p := mapPlace(raw)
	if p.ID == "" {
		p.ID = id
	}
	if s.repo != nil {
		if err := s.repo.UpsertPlaces(ctx, []domain.Place{p}); err != nil {
			return fmt.Errorf("snapshot place %s: %w", id, err)
		}
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, placeKey(id), p, int(s.cacheTTL.Seconds())); err != nil {
			return fmt.Errorf("cache place %s: %w", id, err)
		}
	}
	return nil
}
