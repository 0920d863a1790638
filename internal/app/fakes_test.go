package app_test

import (
	"context"
	"encoding/json"
	"sort"

	"hbnb_web/internal/domain"
)

// ---- fakes ----

type fakeAPI struct {
	places    []map[string]any
	byID      map[string]map[string]any
	listErr   error
	getErr    error
	loginTok  string
	loginErr  error
	regErr    error
	reviewErr error

	listCalls, getCalls int
	lastReg             domain.Registration
	lastDraft           domain.ReviewDraft
	lastToken           string
}

func (f *fakeAPI) ListPlaces(ctx context.Context, token string) ([]map[string]any, error) {
	f.listCalls++
	f.lastToken = token
	return f.places, f.listErr
}
func (f *fakeAPI) GetPlace(ctx context.Context, id, token string) (map[string]any, error) {
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.byID[id]
	if !ok {
		return nil, &domain.APIError{Status: 404, StatusText: "NOT FOUND"}
	}
	return p, nil
}
func (f *fakeAPI) Login(ctx context.Context, email, password string) (string, error) {
	return f.loginTok, f.loginErr
}
func (f *fakeAPI) Register(ctx context.Context, r domain.Registration) error {
	f.lastReg = r
	return f.regErr
}
func (f *fakeAPI) SubmitReview(ctx context.Context, token string, d domain.ReviewDraft) error {
	f.lastToken = token
	f.lastDraft = d
	return f.reviewErr
}

// fakeCache round-trips through JSON like the Redis adapter does.
type fakeCache struct {
	store map[string][]byte
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}
func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}
func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.dels = append(c.dels, key)
	delete(c.store, key)
	return nil
}

type fakeRepo struct {
	snap      map[string]domain.Place
	upsertErr error
}

func (r *fakeRepo) UpsertPlaces(ctx context.Context, ps []domain.Place) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	if r.snap == nil {
		r.snap = map[string]domain.Place{}
	}
	for _, p := range ps {
		r.snap[p.ID] = p
	}
	return nil
}
func (r *fakeRepo) ListPlaces(ctx context.Context) ([]domain.Place, error) {
	out := make([]domain.Place, 0, len(r.snap))
	for _, p := range r.snap {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
func (r *fakeRepo) GetPlace(ctx context.Context, id string) (domain.Place, error) {
	p, ok := r.snap[id]
	if !ok {
		return domain.Place{}, domain.ErrNotFound
	}
	return p, nil
}

type fakeFavs struct{ m map[string]map[string]bool }

func (f *fakeFavs) AddFavorite(ctx context.Context, owner, placeID string) error {
	if f.m == nil {
		f.m = map[string]map[string]bool{}
	}
	if f.m[owner] == nil {
		f.m[owner] = map[string]bool{}
	}
	f.m[owner][placeID] = true
	return nil
}
func (f *fakeFavs) RemoveFavorite(ctx context.Context, owner, placeID string) error {
	delete(f.m[owner], placeID)
	return nil
}
func (f *fakeFavs) ListFavorites(ctx context.Context, owner string) ([]string, error) {
	var out []string
	for id := range f.m[owner] {
		out = append(out, id)
	}
	return out, nil
}

func ptr[T any](v T) *T { return &v }
