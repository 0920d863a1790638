package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"hbnb_web/internal/app"
	"hbnb_web/internal/domain"
)

func TestWarmList(t *testing.T) {
	api := &fakeAPI{places: apiPlaces()}
	cache := &fakeCache{}
	w := app.NewWarmService(api, nil, cache, time.Minute)

	ids, err := w.WarmList(context.Background(), "")
	if err != nil {
		t.Fatalf("warm list: %v", err)
	}
	if len(ids) != 2 || ids[0] != "p1" || ids[1] != "p2" {
		t.Fatalf("unexpected ids: %v", ids)
	}
	var cached []domain.Place
	if ok, _ := cache.Get(context.Background(), "places:list", &cached); !ok || len(cached) != 2 {
		t.Fatalf("listing should be cached, got %v", cached)
	}

	api.listErr = domain.ErrUnavailable
	if _, err := w.WarmList(context.Background(), ""); !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("expected wrapped ErrUnavailable, got %v", err)
	}
}

func TestWarmPlace(t *testing.T) {
	api := &fakeAPI{byID: map[string]map[string]any{
		"p1": {"id": "p1", "title": "Harbour Studio", "rating": 4.5},
	}}
	repo := &fakeRepo{}
	cache := &fakeCache{}
	w := app.NewWarmService(api, repo, cache, time.Minute)

	if err := w.WarmPlace(context.Background(), "p1", ""); err != nil {
		t.Fatalf("warm place: %v", err)
	}
	if repo.snap["p1"].Rating == nil || *repo.snap["p1"].Rating != *ptr(4.5) {
		t.Fatalf("snapshot not written: %+v", repo.snap["p1"])
	}
	var p domain.Place
	if ok, _ := cache.Get(context.Background(), "place:p1", &p); !ok || p.Title != "Harbour Studio" {
		t.Fatalf("place not cached: %+v", p)
	}
}

func TestWarmPlace_VanishedIsEvicted(t *testing.T) {
	cache := &fakeCache{}
	_ = cache.Set(context.Background(), "place:gone", domain.Place{ID: "gone"}, 60)
	w := app.NewWarmService(&fakeAPI{}, &fakeRepo{}, cache, time.Minute)

	if err := w.WarmPlace(context.Background(), "gone", ""); err != nil {
		t.Fatalf("vanished place should not fail: %v", err)
	}
	if ok, _ := cache.Get(context.Background(), "place:gone", &domain.Place{}); ok {
		t.Fatalf("stale entry should be evicted")
	}
}

func TestWarmPlace_SnapshotError(t *testing.T) {
	api := &fakeAPI{byID: map[string]map[string]any{"p1": {"id": "p1"}}}
	boom := errors.New("db down")
	w := app.NewWarmService(api, &fakeRepo{upsertErr: boom}, &fakeCache{}, time.Minute)

	if err := w.WarmPlace(context.Background(), "p1", ""); !errors.Is(err, boom) {
		t.Fatalf("expected snapshot error, got %v", err)
	}
}
