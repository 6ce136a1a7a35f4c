// Package geo resolves free-text addresses to coordinates.
package geo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"

	"listing-marketplace/internal/model"
)

// GoogleResolver geocodes addresses with the Google Geocoding API.
type GoogleResolver struct {
	client *maps.Client
	region string
}

// NewGoogleResolver builds a resolver. Extra options (base URL, HTTP client) are passed
// through to the maps client.
func NewGoogleResolver(apiKey, region string, opts ...maps.ClientOption) (*GoogleResolver, error) {
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("GoogleResolver: %w", err)
	}
	return &GoogleResolver{client: client, region: region}, nil
}

// Resolve returns the coordinates of the first candidate for address. It never retries.
func (r *GoogleResolver) Resolve(ctx context.Context, address string) (model.GeoPoint, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return model.GeoPoint{}, fmt.Errorf("%w: address is required", model.ErrValidation)
	}

	results, err := r.client.Geocode(ctx, &maps.GeocodingRequest{Address: address, Region: r.region})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return model.GeoPoint{}, fmt.Errorf("GoogleResolver.Resolve: %w: %w", model.ErrTimeout, err)
		}
		return model.GeoPoint{}, fmt.Errorf("GoogleResolver.Resolve: %w: %w", model.ErrUpstream, err)
	}
	if len(results) == 0 {
		return model.GeoPoint{}, fmt.Errorf("%w: no match for %q", model.ErrResolution, address)
	}

	loc := results[0].Geometry.Location
	// The API's JSON cannot tell a missing coordinate from zero; reject only null island.
	if loc.Lat == 0 && loc.Lng == 0 {
		return model.GeoPoint{}, fmt.Errorf("%w: no coordinates for %q", model.ErrResolution, address)
	}
	return model.GeoPoint{Longitude: loc.Lng, Latitude: loc.Lat}, nil
}
