package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"listing-marketplace/internal/logger"
	"listing-marketplace/internal/model"
)

// EnquiryService records buyer enquiries against listings.
type EnquiryService struct {
	enquiries EnquiryStore
	listings  ListingStore
	search    *SearchService
	timeout   time.Duration
	log       *logger.Logger
	now       func() time.Time
}

// NewEnquiryService constructs an EnquiryService with its required stores.
func NewEnquiryService(es EnquiryStore, ls ListingStore, search *SearchService, timeout time.Duration, log *logger.Logger) *EnquiryService {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &EnquiryService{
		enquiries: es,
		listings:  ls,
		search:    search,
		timeout:   timeout,
		log:       log,
		now:       time.Now,
	}
}

// ContactAgent checks that the listing exists and stores the enquiry. A second enquiry by
// the same user on the same listing replaces the first.
func (s *EnquiryService) ContactAgent(ctx context.Context, userID, listingID, message string) (*model.Enquiry, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", model.ErrValidation)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// 1) Verify that the listing exists.
	l, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, storeError(s.log, "EnquiryService.ContactAgent", err)
	}

	// 2) Insert or refresh the enquiry.
	e := &model.Enquiry{
		ID:        uuid.NewString(),
		UserID:    userID,
		ListingID: l.ID.Hex(),
		Message:   message,
		CreatedAt: s.now().UTC(),
	}
	if err := s.enquiries.Upsert(ctx, e); err != nil {
		return nil, storeError(s.log, "EnquiryService.ContactAgent", err)
	}

	s.log.Info("enquiry from %s on listing %s (poster %s)", userID, l.Slug, l.PostedBy)
	return e, nil
}

// Enquired pages through the listings userID has enquired about, newest listing first.
func (s *EnquiryService) Enquired(ctx context.Context, userID string, page int) (*model.Page, error) {
	ids, err := s.listingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.search.ByIDs(ctx, ids, page)
}

func (s *EnquiryService) listingIDs(ctx context.Context, userID string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ids, err := s.enquiries.ListingIDsByUser(ctx, userID)
	if err != nil {
		return nil, storeError(s.log, "EnquiryService.Enquired", err)
	}
	return ids, nil
}
