package service

import (
	"context"
	"time"

	"listing-marketplace/internal/logger"
	"listing-marketplace/internal/model"
)

type WishlistService struct {
	wishlist WishlistStore
	listings ListingStore
	search   *SearchService
	timeout  time.Duration
	log      *logger.Logger
}

func NewWishlistService(ws WishlistStore, ls ListingStore, search *SearchService, timeout time.Duration, log *logger.Logger) *WishlistService {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &WishlistService{wishlist: ws, listings: ls, search: search, timeout: timeout, log: log}
}

// Toggle adds the listing to the user's wishlist, or removes it when already present.
// It reports whether the listing is on the wishlist afterwards.
func (s *WishlistService) Toggle(ctx context.Context, userID, listingID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	l, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return false, storeError(s.log, "WishlistService.Toggle", err)
	}
	added, err := s.wishlist.ToggleWishlist(ctx, userID, l.ID.Hex())
	if err != nil {
		return false, storeError(s.log, "WishlistService.Toggle", err)
	}
	return added, nil
}

// Wishlist pages through the listings userID has saved.
func (s *WishlistService) Wishlist(ctx context.Context, userID string, page int) (*model.Page, error) {
	ids, err := s.ids(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.search.ByIDs(ctx, ids, page)
}

func (s *WishlistService) ids(ctx context.Context, userID string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ids, err := s.wishlist.WishlistIDs(ctx, userID)
	if err != nil {
		return nil, storeError(s.log, "WishlistService.Wishlist", err)
	}
	return ids, nil
}
