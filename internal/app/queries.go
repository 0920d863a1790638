package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"hbnb_web/internal/adapters/observability"
	"hbnb_web/internal/domain"
	"hbnb_web/internal/shared"
)

const placesListKey = "places:list"

func placeKey(id string) string { return "place:" + id }

// DefaultReadBudget caps one page's worth of API reads, retries included.
const DefaultReadBudget = 8 * time.Second

type PlaceService struct {
	api      domain.PlacesAPI
	cache    domain.Cache
	repo     domain.PlaceRepository
	sample   domain.SampleSource
	mode     string
	cacheTTL time.Duration

	budget    time.Duration
	hold      time.Duration
	downUntil atomic.Int64 // unix nanos; API reads are skipped until then
	now       func() time.Time
}

func NewPlaceService(api domain.PlacesAPI, c domain.Cache, r domain.PlaceRepository, s domain.SampleSource, mode string, ttl time.Duration) *PlaceService {
	return &PlaceService{api: api, cache: c, repo: r, sample: s, mode: mode, cacheTTL: ttl, budget: DefaultReadBudget, now: time.Now}
}

// WithAPILimits sets the total time allowed for API reads on one call and
// how long to skip the API after it failed. A zero hold disables skipping.
func (s *PlaceService) WithAPILimits(budget, hold time.Duration) *PlaceService {
	if budget > 0 {
		s.budget = budget
	}
	if hold >= 0 {
		s.hold = hold
	}
	return s
}

func (s *PlaceService) apiDown() bool {
	return s.now().UnixNano() < s.downUntil.Load()
}

// markDown starts an outage hold unless the caller itself went away.
func (s *PlaceService) markDown(parent context.Context) {
	if s.hold <= 0 || parent.Err() != nil {
		return
	}
	s.downUntil.Store(s.now().Add(s.hold).UnixNano())
}

func (s *PlaceService) fetchList(ctx context.Context, token string) ([]map[string]any, error) {
	if s.apiDown() {
		return nil, domain.ErrUnavailable
	}
	rctx, cancel := context.WithTimeout(ctx, s.budget)
	defer cancel()
	raw, err := s.api.ListPlaces(rctx, token)
	if isOutage(err) {
		s.markDown(ctx)
	}
	return raw, err
}

func (s *PlaceService) fetchPlace(ctx context.Context, id, token string) (map[string]any, error) {
	if s.apiDown() {
		return nil, domain.ErrUnavailable
	}
	rctx, cancel := context.WithTimeout(ctx, s.budget)
	defer cancel()
	raw, err := s.api.GetPlace(rctx, id, token)
	if isOutage(err) {
		s.markDown(ctx)
	}
	return raw, err
}

func isOutage(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, domain.ErrUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ae *domain.APIError
	return errors.As(err, &ae) && (ae.Status >= 500 || ae.Status == 429)
}

// ListPlaces returns the API listing (cached), falling back to the last
// snapshot and then to the sample set when the API cannot be reached.
func (s *PlaceService) ListPlaces(ctx context.Context, token string) domain.PlaceList {
	var cached []domain.Place
	if ok, _ := s.cache.Get(ctx, placesListKey, &cached); ok {
		return s.withSample(cached, domain.OriginCached)
	}

	raw, err := s.fetchList(ctx, token)
	if err == nil {
		places := mapPlaces(raw)
		if s.repo != nil && len(places) > 0 {
			if err := s.repo.UpsertPlaces(ctx, places); err != nil {
				log.Warn().Err(err).Msg("snapshot places failed")
			}
		}
		_ = s.cache.Set(ctx, placesListKey, places, int(s.cacheTTL.Seconds()))
		return s.withSample(places, domain.OriginLive)
	}
	log.Warn().Err(err).Msg("places API not available, falling back")

	if s.repo != nil {
		snap, serr := s.repo.ListPlaces(ctx)
		if serr != nil {
			log.Warn().Err(serr).Msg("load snapshot failed")
		}
		if len(snap) > 0 {
			observability.ObserveFallback(string(domain.OriginSnapshot))
			return s.withSample(snap, domain.OriginSnapshot)
		}
	}
	observability.ObserveFallback(string(domain.OriginSample))
	return s.withSample(nil, domain.OriginSample)
}

// withSample applies the sample data mode and drops duplicate ids.
func (s *PlaceService) withSample(places []domain.Place, origin domain.Origin) domain.PlaceList {
	out := make([]domain.Place, 0, len(places)+8)
	seen := make(map[string]struct{}, len(places)+8)
	add := func(ps []domain.Place) {
		for _, p := range ps {
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			out = append(out, p)
		}
	}
	add(places)

	switch {
	case s.sample == nil || s.mode == shared.SampleOff:
	case s.mode == shared.SampleMerge:
		add(s.sample.Places())
	case len(out) == 0:
		add(s.sample.Places())
	}
	return domain.PlaceList{Items: out, Origin: origin}
}

// GetPlace looks in the sample set first, then cache, API and snapshot.
func (s *PlaceService) GetPlace(ctx context.Context, id, token string) (domain.Place, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Place{}, domain.ErrNotFound
	}
	if s.sample != nil && s.mode != shared.SampleOff {
		if p, ok := s.sample.Place(id); ok {
			return p, nil
		}
	}

	key := placeKey(id)
	var p domain.Place
	if ok, _ := s.cache.Get(ctx, key, &p); ok {
		return p, nil
	}

	raw, err := s.fetchPlace(ctx, id, token)
	if err == nil {
		p = mapPlace(raw)
		if p.ID == "" {
			p.ID = id
		}
		_ = s.cache.Set(ctx, key, p, int(s.cacheTTL.Seconds()))
		return p, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Place{}, domain.ErrNotFound
	}
	log.Warn().Err(err).Str("place_id", id).Msg("place API not available, trying snapshot")

	if s.repo != nil {
		if p, serr := s.repo.GetPlace(ctx, id); serr == nil {
			observability.ObserveFallback(string(domain.OriginSnapshot))
			return p, nil
		}
	}
	return domain.Place{}, fmt.Errorf("place %s: %w", id, domain.ErrNotFound)
}

// ---- search & price filter ----

// MinQueryLen is the shortest query that filters; shorter ones show everything.
const MinQueryLen = 2

// Filter applies the text query first, then the price ceiling.
// maxPrice is "", "all" or starts with an integer ("150.5" caps at 150);
// anything else is ignored.
func Filter(places []domain.Place, query, maxPrice string) []domain.Place {
	q := strings.ToLower(strings.TrimSpace(query))
	if len([]rune(q)) < MinQueryLen {
		q = ""
	}
	ceiling, hasCeiling := parseMaxPrice(maxPrice)

	out := make([]domain.Place, 0, len(places))
	for _, p := range places {
		if q != "" && !matches(p, q) {
			continue
		}
		if hasCeiling && p.PricePerNight > ceiling {
			continue
		}
		out = append(out, p)
	}
	return out
}

func parseMaxPrice(v string) (float64, bool) {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, "all") {
		return 0, false
	}
	end := 0
	for end < len(v) && v[end] >= '0' && v[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(v[:end])
	if err != nil {
		return 0, false
	}
	return float64(n), true
}

func matches(p domain.Place, q string) bool {
	for _, f := range []string{p.Title, p.City, p.Country, p.Description} {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
