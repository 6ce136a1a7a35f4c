package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"listing-marketplace/internal/logger"
	"listing-marketplace/internal/model"
)

// GeoResolver turns a free-text address into a coordinate pair.
type GeoResolver interface {
	Resolve(ctx context.Context, address string) (model.GeoPoint, error)
}

// ListingStore is the read side of the listing collection.
type ListingStore interface {
	// Find returns one newest-first page of listings matching q and the total match count.
	Find(ctx context.Context, q model.ListingQuery, skip, limit int) ([]model.Listing, int64, error)
	// GeoNear returns listings matching q within maxDistanceMeters of origin, nearest first,
	// each carrying its distance.
	GeoNear(ctx context.Context, origin model.GeoPoint, maxDistanceMeters float64, q model.ListingQuery, limit int) ([]model.Listing, error)
	GetByID(ctx context.Context, id string) (*model.Listing, error)
}

// ListingWriter adds the owner-facing mutations to ListingStore.
type ListingWriter interface {
	ListingStore
	GetBySlug(ctx context.Context, slug string) (*model.Listing, error)
	Create(ctx context.Context, l *model.Listing) error
	Update(ctx context.Context, l *model.Listing) error
	Delete(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id string, status model.Status) error
	TogglePublished(ctx context.Context, id string) (*model.Listing, error)
	IncrementViews(ctx context.Context, id string) error
	AddPhoto(ctx context.Context, id, fileID string) error
	RemovePhoto(ctx context.Context, id, fileID string) error
}

// PosterDirectory resolves owner ids to their public projection.
type PosterDirectory interface {
	FindPosters(ctx context.Context, ids []string) (map[string]model.Poster, error)
}

type SellerRoles interface {
	PromoteToSeller(ctx context.Context, userID string) error
}

type WishlistStore interface {
	ToggleWishlist(ctx context.Context, userID, listingID string) (added bool, err error)
	WishlistIDs(ctx context.Context, userID string) ([]string, error)
}

type EnquiryStore interface {
	Upsert(ctx context.Context, e *model.Enquiry) error
	ListingIDsByUser(ctx context.Context, userID string) ([]string, error)
}

type PhotoStore interface {
	Upload(ctx context.Context, listingID, filename string, r io.Reader) (string, error)
	Download(ctx context.Context, fileID string) ([]byte, string, error)
	Delete(ctx context.Context, fileID string) error
}

// resolveAddress runs one bounded geocoder call and folds its failures into the error taxonomy.
func resolveAddress(ctx context.Context, geo GeoResolver, timeout time.Duration, address string) (model.GeoPoint, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	p, err := geo.Resolve(ctx, address)
	switch {
	case err == nil:
		return p, nil
	case errors.Is(err, model.ErrValidation), errors.Is(err, model.ErrResolution),
		errors.Is(err, model.ErrTimeout), errors.Is(err, model.ErrUpstream):
		return model.GeoPoint{}, err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return model.GeoPoint{}, fmt.Errorf("geocode: %w: %w", model.ErrTimeout, err)
	default:
		return model.GeoPoint{}, fmt.Errorf("geocode: %w: %w", model.ErrUpstream, err)
	}
}

// storeError classifies a store failure. Not-found passes through; everything else is
// logged and surfaced as a retryable store failure or a timeout.
func storeError(log *logger.Logger, op string, err error) error {
	switch {
	case errors.Is(err, model.ErrNotFound), errors.Is(err, model.ErrValidation), errors.Is(err, model.ErrForbidden):
		return fmt.Errorf("%s: %w", op, err)
	case errors.Is(err, context.DeadlineExceeded):
		log.Error("%s: store timed out: %v", op, err)
		return fmt.Errorf("%s: %w: %w", op, model.ErrTimeout, err)
	default:
		log.Error("%s: %v", op, err)
		return fmt.Errorf("%s: %w: %w", op, model.ErrStore, err)
	}
}
