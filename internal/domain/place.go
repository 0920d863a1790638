package domain

import (
	"strings"
	"time"
)

type Place struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	City          string   `json:"city,omitempty"`
	Country       string   `json:"country,omitempty"`
	PricePerNight float64  `json:"price_per_night"`
	Rating        *float64 `json:"rating,omitempty"`
	ReviewsCount  int      `json:"reviews_count,omitempty"`
	ImageURL      string   `json:"image_url,omitempty"`
	Amenities     []string `json:"amenities,omitempty"`
	Owner         *Person  `json:"owner,omitempty"`
	Reviews       []Review `json:"reviews,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
}

type Person struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// FullName joins the non-empty name parts; "" when both are empty.
func (p *Person) FullName() string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
}

// Origin tells where a list of places came from.
type Origin string

const (
	OriginLive     Origin = "live"
	OriginCached   Origin = "cached"
	OriginSnapshot Origin = "snapshot"
	OriginSample   Origin = "sample"
)

type PlaceList struct {
	Items  []Place `json:"items"`
	Origin Origin  `json:"origin"`
}

// Identity is what the access token says about the logged-in user.
type Identity struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}

type Registration struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}
