package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"listing-marketplace/internal/logger"
	"listing-marketplace/internal/model"
)

// ListingInput is the owner-supplied content of a listing.
type ListingInput struct {
	Title          string
	Description    string
	Address        string
	Photos         []string
	PropertyType   model.PropertyType
	Action         model.Action
	Price          int64
	Bedrooms       int
	Bathrooms      int
	Carpark        int
	Landsize       float64
	LandsizeType   string
	InspectionTime string
}

// withDefaults fills the property type and action a client may omit.
func (in ListingInput) withDefaults() ListingInput {
	if in.PropertyType == "" {
		in.PropertyType = model.House
	}
	if in.Action == "" {
		in.Action = model.Sell
	}
	return in
}

func (in ListingInput) Validate() error {
	required := func(field string) error {
		return fmt.Errorf("%w: %s is required", model.ErrValidation, field)
	}
	switch {
	case len(in.Photos) == 0:
		return required("photos")
	case strings.TrimSpace(in.Description) == "":
		return required("description")
	case strings.TrimSpace(in.Address) == "":
		return required("address")
	case !in.PropertyType.Valid():
		return fmt.Errorf("%w: unknown property type %q", model.ErrValidation, in.PropertyType)
	case in.Price <= 0:
		return required("price")
	case !in.Action.Valid():
		return fmt.Errorf("%w: unknown action %q", model.ErrValidation, in.Action)
	}
	if in.PropertyType == model.Land {
		if in.Landsize <= 0 {
			return required("landsize")
		}
		if strings.TrimSpace(in.LandsizeType) == "" {
			return required("landsize type")
		}
	}
	return nil
}

// ListingService owns the listing lifecycle: create, read, edit, status and visibility.
type ListingService struct {
	geo     GeoResolver
	store   ListingWriter
	posters PosterDirectory
	roles   SellerRoles
	photos  PhotoStore
	opts    SearchOptions
	log     *logger.Logger
	now     func() time.Time
}

func NewListingService(geo GeoResolver, store ListingWriter, posters PosterDirectory, roles SellerRoles,
	photos PhotoStore, opts SearchOptions, log *logger.Logger) *ListingService {
	return &ListingService{
		geo:     geo,
		store:   store,
		posters: posters,
		roles:   roles,
		photos:  photos,
		opts:    opts.withDefaults(),
		log:     log,
		now:     time.Now,
	}
}

// Create geocodes the address, stores the listing and grants its owner the Seller role.
func (s *ListingService) Create(ctx context.Context, userID string, in ListingInput) (*model.Listing, error) {
	in = in.withDefaults()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	point, err := resolveAddress(ctx, s.geo, s.opts.GeocodeTimeout, in.Address)
	if err != nil {
		return nil, fmt.Errorf("ListingService.Create: %w", err)
	}

	now := s.now().UTC()
	l := &model.Listing{
		Status:    model.StatusInMarket,
		Published: true,
		PostedBy:  userID,
		CreatedAt: now,
	}
	apply(l, in, point, now)

	ctx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	if err := s.store.Create(ctx, l); err != nil {
		return nil, storeError(s.log, "ListingService.Create", err)
	}
	if err := s.roles.PromoteToSeller(ctx, userID); err != nil {
		s.log.Warn("ListingService.Create: promote %s to seller: %v", userID, err)
	}
	s.log.Info("listing %s created by %s", l.Slug, userID)
	return l, nil
}

// Read returns the listing with its poster joined and counts the view.
func (s *ListingService) Read(ctx context.Context, slugValue string) (*model.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	l, err := s.store.GetBySlug(ctx, slugValue)
	if err != nil {
		return nil, storeError(s.log, "ListingService.Read", err)
	}
	one := []model.Listing{*l}
	if err := joinPosters(ctx, s.posters, one); err != nil {
		return nil, storeError(s.log, "ListingService.Read", err)
	}
	if err := s.store.IncrementViews(ctx, l.ID.Hex()); err != nil {
		s.log.Warn("ListingService.Read: increment views of %s: %v", l.ID.Hex(), err)
	}
	return &one[0], nil
}

// Update replaces the content of a listing owned by userID. The address is geocoded again
// and the slug regenerated.
func (s *ListingService) Update(ctx context.Context, userID, slugValue string, in ListingInput) (*model.Listing, error) {
	in = in.withDefaults()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	l, err := s.owned(ctx, userID, func(ctx context.Context) (*model.Listing, error) {
		return s.store.GetBySlug(ctx, slugValue)
	})
	if err != nil {
		return nil, fmt.Errorf("ListingService.Update: %w", err)
	}
	point, err := resolveAddress(ctx, s.geo, s.opts.GeocodeTimeout, in.Address)
	if err != nil {
		return nil, fmt.Errorf("ListingService.Update: %w", err)
	}
	apply(l, in, point, s.now().UTC())

	ctx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()
	if err := s.store.Update(ctx, l); err != nil {
		return nil, storeError(s.log, "ListingService.Update", err)
	}
	return l, nil
}

func (s *ListingService) Delete(ctx context.Context, userID, slugValue string) error {
	l, err := s.owned(ctx, userID, func(ctx context.Context) (*model.Listing, error) {
		return s.store.GetBySlug(ctx, slugValue)
	})
	if err != nil {
		return fmt.Errorf("ListingService.Delete: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()
	if err := s.store.Delete(ctx, l.ID.Hex()); err != nil {
		return storeError(s.log, "ListingService.Delete", err)
	}
	return nil
}

func (s *ListingService) SetStatus(ctx context.Context, userID, slugValue string, status model.Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", model.ErrValidation, status)
	}
	l, err := s.owned(ctx, userID, func(ctx context.Context) (*model.Listing, error) {
		return s.store.GetBySlug(ctx, slugValue)
	})
	if err != nil {
		return fmt.Errorf("ListingService.SetStatus: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()
	if err := s.store.SetStatus(ctx, l.ID.Hex(), status); err != nil {
		return storeError(s.log, "ListingService.SetStatus", err)
	}
	return nil
}

// TogglePublished flips the visibility flag. Admin only; the caller checks the role.
func (s *ListingService) TogglePublished(ctx context.Context, id string) (*model.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	l, err := s.store.TogglePublished(ctx, id)
	if err != nil {
		return nil, storeError(s.log, "ListingService.TogglePublished", err)
	}
	return l, nil
}

// UploadPhoto stores an image for a listing owned by userID and attaches it.
func (s *ListingService) UploadPhoto(ctx context.Context, userID, listingID, filename string, r io.Reader) (string, error) {
	l, err := s.owned(ctx, userID, func(ctx context.Context) (*model.Listing, error) {
		return s.store.GetByID(ctx, listingID)
	})
	if err != nil {
		return "", fmt.Errorf("ListingService.UploadPhoto: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	fileID, err := s.photos.Upload(ctx, l.ID.Hex(), filename, r)
	if err != nil {
		return "", storeError(s.log, "ListingService.UploadPhoto", err)
	}
	if err := s.store.AddPhoto(ctx, l.ID.Hex(), fileID); err != nil {
		return "", storeError(s.log, "ListingService.UploadPhoto", err)
	}
	return fileID, nil
}

// RemovePhoto detaches a photo from a listing owned by userID and deletes the stored file.
// A file already missing from the store is logged and otherwise ignored.
func (s *ListingService) RemovePhoto(ctx context.Context, userID, listingID, fileID string) error {
	l, err := s.owned(ctx, userID, func(ctx context.Context) (*model.Listing, error) {
		return s.store.GetByID(ctx, listingID)
	})
	if err != nil {
		return fmt.Errorf("ListingService.RemovePhoto: %w", err)
	}
	if !slices.Contains(l.Photos, fileID) {
		return fmt.Errorf("ListingService.RemovePhoto: photo %s of listing %s: %w", fileID, l.Slug, model.ErrNotFound)
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	if err := s.store.RemovePhoto(ctx, l.ID.Hex(), fileID); err != nil {
		return storeError(s.log, "ListingService.RemovePhoto", err)
	}
	err = s.photos.Delete(ctx, fileID)
	switch {
	case errors.Is(err, model.ErrNotFound):
		s.log.Warn("ListingService.RemovePhoto: file %s already gone", fileID)
	case err != nil:
		return storeError(s.log, "ListingService.RemovePhoto", err)
	}
	return nil
}

func (s *ListingService) Photo(ctx context.Context, fileID string) ([]byte, string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	data, name, err := s.photos.Download(ctx, fileID)
	if err != nil {
		return nil, "", storeError(s.log, "ListingService.Photo", err)
	}
	return data, name, nil
}

// owned loads a listing and checks that userID posted it.
func (s *ListingService) owned(ctx context.Context, userID string, load func(context.Context) (*model.Listing, error)) (*model.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	l, err := load(ctx)
	if err != nil {
		return nil, storeError(s.log, "ListingService.owned", err)
	}
	if l.PostedBy != userID {
		return nil, fmt.Errorf("%w: listing %s belongs to another user", model.ErrForbidden, l.Slug)
	}
	return l, nil
}

func apply(l *model.Listing, in ListingInput, point model.GeoPoint, now time.Time) {
	l.Title = in.Title
	l.Description = in.Description
	l.Address = strings.TrimSpace(in.Address)
	l.Photos = in.Photos
	l.PropertyType = in.PropertyType
	l.Action = in.Action
	l.Price = in.Price
	l.Bedrooms = in.Bedrooms
	l.Bathrooms = in.Bathrooms
	l.Carpark = in.Carpark
	l.Landsize = in.Landsize
	l.LandsizeType = in.LandsizeType
	l.InspectionTime = in.InspectionTime
	l.Location = point
	l.Slug = makeSlug(in)
	l.UpdatedAt = now
}

func makeSlug(in ListingInput) string {
	return slug.Make(fmt.Sprintf("%s-for-%s-address-%s-price-%d-%s",
		in.PropertyType, in.Action, in.Address, in.Price, uuid.NewString()[:6]))
}
