package service

import (
	"context"
	"sort"

	"listing-marketplace/internal/model"
)

const (
	DefaultRelatedLimit         = 3
	DefaultRelatedMaxDistanceKm = 50
)

// ProximityRanker finds the listings nearest to a reference listing that share its action
// and property type.
type ProximityRanker struct {
	store         ListingStore
	maxDistanceKm float64
}

func NewProximityRanker(store ListingStore, maxDistanceKm float64) *ProximityRanker {
	if maxDistanceKm <= 0 {
		maxDistanceKm = DefaultRelatedMaxDistanceKm
	}
	return &ProximityRanker{store: store, maxDistanceKm: maxDistanceKm}
}

// Nearby returns at most limit listings ordered by ascending distance from ref, never ref
// itself. Each result carries its distance in metres.
func (r *ProximityRanker) Nearby(ctx context.Context, ref *model.Listing, limit int) ([]model.Listing, error) {
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}
	q := model.ListingQuery{
		Action:       ref.Action,
		PropertyType: ref.PropertyType,
		ExcludeID:    ref.ID.Hex(),
	}

	found, err := r.store.GeoNear(ctx, ref.Location, r.maxDistanceKm*1000, q, limit)
	if err != nil {
		return nil, err
	}

	out := make([]model.Listing, 0, len(found))
	for _, l := range found {
		if l.ID == ref.ID || !q.Matches(l) {
			continue
		}
		if l.Distance == nil {
			d := ref.Location.DistanceKm(l.Location) * 1000
			l.Distance = &d
		}
		if *l.Distance > r.maxDistanceKm*1000 {
			continue
		}
		out = append(out, l)
	}

	sort.SliceStable(out, func(i, j int) bool { return *out[i].Distance < *out[j].Distance })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
