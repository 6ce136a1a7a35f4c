package service

import (
	"math"
	"strconv"
	"strings"

	"listing-marketplace/internal/model"
)

// DefaultSearchRadiusKm bounds every address search.
const DefaultSearchRadiusKm = 10

// QueryBuilder translates a SearchFilter into a ListingQuery. It performs no I/O.
type QueryBuilder struct {
	RadiusKm   float64
	PriceMatch model.PriceMatch
}

func (b QueryBuilder) Build(f model.SearchFilter, origin model.GeoPoint) model.ListingQuery {
	radius := b.RadiusKm
	if radius <= 0 {
		radius = DefaultSearchRadiusKm
	}
	q := model.ListingQuery{
		Near: &model.GeoCircle{Center: origin, RadiusKm: radius},
	}

	if f.Action != "" {
		q.Action = model.Action(f.Action)
	}
	if f.PropertyType != "" && f.PropertyType != model.All {
		q.PropertyType = model.PropertyType(f.PropertyType)
	}
	q.Bedrooms = roomCount(f.Bedrooms)
	q.Bathrooms = roomCount(f.Bathrooms)

	match := b.PriceMatch
	if !match.Valid() {
		match = model.PriceMatchRange
	}
	if band, ok := priceBand(f.Price, match); ok {
		q.Price = &band
	}
	return q
}

func roomCount(v string) *int {
	v = strings.TrimSpace(v)
	if v == "" || v == model.All {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

// priceBand derives the ±20% band around raw. Non-numeric or non-positive input yields no band.
func priceBand(raw string, match model.PriceMatch) (model.PriceBand, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return model.PriceBand{}, false
	}
	// a band whose upper edge no stored price can reach constrains nothing
	if v*1.2 >= math.MaxInt64 {
		return model.PriceBand{}, false
	}

	var low, high int64
	if v == math.Trunc(v) && v < 1e15 {
		// integral prices: exact truncation without float drift
		p := int64(v)
		low, high = p*8/10, p*12/10
	} else {
		low, high = int64(v*0.8), int64(v*1.2)
	}
	return model.PriceBand{Low: low, High: high, Match: match}, true
}
