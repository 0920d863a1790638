package app

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"

	"hbnb_web/internal/domain"
)

/********** alias registries (single source of truth) **********/

var placeAliases = map[string][]string{
	"id":          {"id", "place_id", "uuid"},
	"title":       {"title", "name", "place_name"},
	"description": {"description", "markdown_description", "summary"},
	"city":        {"city", "location.city", "address.city", "location"},
	"country":     {"country", "location.country", "address.country", "country_name"},
	"image":       {"image_url", "image", "thumbnail", "photo_url"},
	"owner_first": {"owner.first_name", "owner.firstName", "owner_first_name", "host.first_name"},
	"owner_last":  {"owner.last_name", "owner.lastName", "owner_last_name", "host.last_name"},
	"owner_name":  {"owner.name", "owner_name", "host.name", "host_name"},
}

var placeNumberAliases = map[string][]string{
	"price":         {"price_per_night", "price", "nightly_price", "price.amount"},
	"rating":        {"rating", "average_rating", "rating.value", "score"},
	"reviews_count": {"reviews_count", "review_count", "number_of_reviews"},
	"lat":           {"latitude", "lat", "location.lat"},
	"lon":           {"longitude", "lon", "lng", "location.lng", "location.lon"},
}

var reviewAliases = map[string][]string{
	"id":         {"id", "review_id"},
	"text":       {"text", "content", "comment", "body", "review"},
	"user_first": {"user.first_name", "user.firstName", "author.first_name", "user_first_name"},
	"user_last":  {"user.last_name", "user.lastName", "author.last_name", "user_last_name"},
	"user_name":  {"user.name", "user_name", "author", "author.name", "reviewer"},
	"rating":     {"rating", "score", "stars"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns string at path or "". Numbers are formatted, so ids
// from integer-keyed backends still come through.
func lookupStr(m map[string]any, path string) string {
	switch v := lookupAny(m, path).(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

// firstAlias: first non-empty string for a named alias set.
func firstAlias(m map[string]any, aliases map[string][]string, key string) string {
	for _, p := range aliases[key] {
		if s := lookupStr(m, p); s != "" {
			return s
		}
	}
	return ""
}

// getFloatFlexible: number from several paths (float64/int/string like "8,0").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.TrimPrefix(strings.ReplaceAll(v, ",", "."), "$"))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

// firstSliceStrings: accept []any with either strings or {name/url/src}.
func firstSliceStrings(m map[string]any, paths ...string) []string {
	for _, k := range paths {
		if raw, ok := lookupAny(m, k).([]any); ok {
			out := make([]string, 0, len(raw))
			for _, it := range raw {
				switch t := it.(type) {
				case string:
					if s := strings.TrimSpace(t); s != "" {
						out = append(out, s)
					}
				case map[string]any:
					for _, key := range []string{"name", "url", "src"} {
						if s, ok := t[key].(string); ok && strings.TrimSpace(s) != "" {
							out = append(out, strings.TrimSpace(s))
							break
						}
					}
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}
	return nil
}

// personFrom builds a Person from first/last aliases, or splits a single
// full-name field on its first space.
func personFrom(m map[string]any, aliases map[string][]string, first, last, full string) *domain.Person {
	f, l := firstAlias(m, aliases, first), firstAlias(m, aliases, last)
	if f == "" && l == "" {
		name := firstAlias(m, aliases, full)
		if name == "" {
			return nil
		}
		f, l, _ = strings.Cut(name, " ")
	}
	return &domain.Person{FirstName: strings.TrimSpace(f), LastName: strings.TrimSpace(l)}
}

/********** place mapper **********/

func mapPlace(p map[string]any) domain.Place {
	pl := domain.Place{
		ID:          firstAlias(p, placeAliases, "id"),
		Title:       firstAlias(p, placeAliases, "title"),
		Description: firstAlias(p, placeAliases, "description"),
		City:        firstAlias(p, placeAliases, "city"),
		Country:     firstAlias(p, placeAliases, "country"),
		ImageURL:    firstAlias(p, placeAliases, "image"),
		Amenities:   firstSliceStrings(p, "amenities", "facilities", "amenity_names"),
		Owner:       personFrom(p, placeAliases, "owner_first", "owner_last", "owner_name"),
		Rating:      getFloatFlexible(p, placeNumberAliases["rating"]...),
		Latitude:    getFloatFlexible(p, placeNumberAliases["lat"]...),
		Longitude:   getFloatFlexible(p, placeNumberAliases["lon"]...),
	}
	if f := getFloatFlexible(p, placeNumberAliases["price"]...); f != nil && *f > 0 {
		pl.PricePerNight = *f
	}
	if pl.ImageURL == "" {
		if imgs := firstSliceStrings(p, "images", "photos"); len(imgs) > 0 {
			pl.ImageURL = imgs[0]
		}
	}
	if raw, ok := lookupAny(p, "reviews").([]any); ok {
		pl.Reviews = mapReviews(pl.ID, raw)
	}
	if f := getFloatFlexible(p, placeNumberAliases["reviews_count"]...); f != nil && *f > 0 {
		pl.ReviewsCount = int(*f)
	} else {
		pl.ReviewsCount = len(pl.Reviews)
	}
	return pl
}

func mapPlaces(in []map[string]any) []domain.Place {
	out := make([]domain.Place, 0, len(in))
	for _, p := range in {
		pl := mapPlace(p)
		if pl.ID == "" {
			continue // nothing to link to
		}
		out = append(out, pl)
	}
	return out
}

/********** reviews mapper **********/

// mapReviews skips entries that are bare ids (older backends list review ids only).
func mapReviews(placeID string, in []any) []domain.Review {
	out := make([]domain.Review, 0, len(in))
	for _, it := range in {
		r, ok := it.(map[string]any)
		if !ok {
			continue
		}
		rv := domain.Review{
			PlaceID: placeID,
			Text:    firstAlias(r, reviewAliases, "text"),
			User:    personFrom(r, reviewAliases, "user_first", "user_last", "user_name"),
		}
		if f := getFloatFlexible(r, reviewAliases["rating"]...); f != nil {
			rv.Rating = clampRating(int(math.Round(*f)))
		}

		// ID → prefer explicit; else synthesize stable hash.
		if s := firstAlias(r, reviewAliases, "id"); s != "" {
			rv.ID = s
		} else {
			sig := strings.Join([]string{placeID, rv.User.FullName(), rv.Text, fmt.Sprint(rv.Rating)}, "|")
			sum := sha1.Sum([]byte(sig))
			rv.ID = hex.EncodeToString(sum[:8])
		}
		out = append(out, rv)
	}
	return out
}

func clampRating(n int) int {
	switch {
	case n < 1:
		return 0
	case n > 5:
		return 5
	}
	return n
}
