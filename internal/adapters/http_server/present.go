package httpserver

import (
	"bytes"
	"html/template"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"hbnb_web/internal/domain"
)

// Raw HTML in descriptions is dropped by goldmark's default renderer.
var md = goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Strikethrough))

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}

func placeLocation(p domain.Place) string {
	return orUnknown(p.City) + ", " + orUnknown(p.Country)
}

func placeTitle(p domain.Place) string {
	if strings.TrimSpace(p.Title) == "" {
		return "Untitled Place"
	}
	return p.Title
}

func placeRating(p domain.Place) string {
	if p.Rating == nil || *p.Rating <= 0 {
		return "New"
	}
	return strconv.FormatFloat(*p.Rating, 'f', -1, 64)
}

func money(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func weeklyTotal(p domain.Place) string {
	return strconv.FormatFloat(math.Round(p.PricePerNight*7), 'f', 0, 64)
}

func hostName(p domain.Place) string {
	if n := p.Owner.FullName(); n != "" {
		return n
	}
	return "Host"
}

func reviewerName(r domain.Review) string {
	if n := r.User.FullName(); n != "" {
		return n
	}
	return "Anonymous"
}

// reviewStars is "★★★☆☆"; a missing rating shows as five stars.
func reviewStars(r domain.Review) string {
	n := r.Rating
	if n < 1 || n > 5 {
		n = 5
	}
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

func reviewsHeading(n int) string {
	if n == 1 {
		return "1 review"
	}
	return strconv.Itoa(n) + " reviews"
}

func markdown(src string) template.HTML {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		log.Warn().Err(err).Msg("render description failed")
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}

var funcs = template.FuncMap{
	"location":       placeLocation,
	"title":          placeTitle,
	"rating":         placeRating,
	"money":          money,
	"weekly":         weeklyTotal,
	"host":           hostName,
	"reviewer":       reviewerName,
	"stars":          reviewStars,
	"reviewsHeading": reviewsHeading,
	"markdown":       markdown,
}
