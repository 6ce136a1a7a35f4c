package service

import (
	"context"
	"fmt"
	"time"

	"listing-marketplace/internal/logger"
	"listing-marketplace/internal/model"
	"listing-marketplace/internal/pagination"
)

// SearchOptions tunes SearchService. Zero values fall back to the defaults.
type SearchOptions struct {
	PageSize             int
	RadiusKm             float64
	PriceMatch           model.PriceMatch
	RelatedMaxDistanceKm float64
	RelatedLimit         int
	GeocodeTimeout       time.Duration
	StoreTimeout         time.Duration
}

func (o SearchOptions) withDefaults() SearchOptions {
	if o.PageSize <= 0 {
		o.PageSize = pagination.DefaultPageSize
	}
	if o.RelatedLimit <= 0 {
		o.RelatedLimit = DefaultRelatedLimit
	}
	if o.GeocodeTimeout <= 0 {
		o.GeocodeTimeout = 5 * time.Second
	}
	if o.StoreTimeout <= 0 {
		o.StoreTimeout = 5 * time.Second
	}
	return o
}

// SearchService serves every read path over listings: address search, related listings
// and the paginated feeds. It holds no per-request state.
type SearchService struct {
	geo     GeoResolver
	store   ListingStore
	posters PosterDirectory
	builder QueryBuilder
	ranker  *ProximityRanker
	opts    SearchOptions
	log     *logger.Logger
}

func NewSearchService(geo GeoResolver, store ListingStore, posters PosterDirectory, opts SearchOptions, log *logger.Logger) *SearchService {
	opts = opts.withDefaults()
	return &SearchService{
		geo:     geo,
		store:   store,
		posters: posters,
		builder: QueryBuilder{RadiusKm: opts.RadiusKm, PriceMatch: opts.PriceMatch},
		ranker:  NewProximityRanker(store, opts.RelatedMaxDistanceKm),
		opts:    opts,
		log:     log,
	}
}

// Search resolves the filter's address and returns one page of listings within the search
// radius that satisfy the remaining filters.
func (s *SearchService) Search(ctx context.Context, f model.SearchFilter) (*model.Page, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	origin, err := resolveAddress(ctx, s.geo, s.opts.GeocodeTimeout, f.Address)
	if err != nil {
		return nil, fmt.Errorf("SearchService.Search: %w", err)
	}
	s.log.Debug("search %q resolved to [%f, %f]", f.Address, origin.Longitude, origin.Latitude)

	return s.page(ctx, "SearchService.Search", s.builder.Build(f, origin), f.Page)
}

// ByAction pages through every listing for sale or for rent.
func (s *SearchService) ByAction(ctx context.Context, action model.Action, page int) (*model.Page, error) {
	if !action.Valid() {
		return nil, fmt.Errorf("%w: unknown action %q", model.ErrValidation, action)
	}
	return s.page(ctx, "SearchService.ByAction", model.ListingQuery{Action: action}, page)
}

// ByUser pages through the listings posted by userID.
func (s *SearchService) ByUser(ctx context.Context, userID string, page int) (*model.Page, error) {
	return s.page(ctx, "SearchService.ByUser", model.ListingQuery{PostedBy: userID}, page)
}

// ByIDs pages through a fixed set of listings such as a wishlist.
func (s *SearchService) ByIDs(ctx context.Context, ids []string, page int) (*model.Page, error) {
	if len(ids) == 0 {
		return &model.Page{Items: []model.Listing{}, Page: pagination.Normalize(page)}, nil
	}
	return s.page(ctx, "SearchService.ByIDs", model.ListingQuery{IDs: ids}, page)
}

// Related returns the listings nearest to the listing with the given id.
func (s *SearchService) Related(ctx context.Context, id string) ([]model.Listing, error) {
	ref, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.RelatedTo(ctx, ref)
}

// RelatedTo is Related for a listing the caller already holds.
func (s *SearchService) RelatedTo(ctx context.Context, ref *model.Listing) ([]model.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	related, err := s.ranker.Nearby(ctx, ref, s.opts.RelatedLimit)
	if err != nil {
		return nil, storeError(s.log, "SearchService.Related", err)
	}
	if err := s.attachPosters(ctx, related); err != nil {
		return nil, storeError(s.log, "SearchService.Related", err)
	}
	return related, nil
}

func (s *SearchService) getByID(ctx context.Context, id string) (*model.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	l, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(s.log, "SearchService.GetByID", err)
	}
	return l, nil
}

func (s *SearchService) page(ctx context.Context, op string, q model.ListingQuery, page int) (*model.Page, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	page = pagination.Normalize(page)
	items, total, err := s.store.Find(ctx, q, pagination.Skip(page, s.opts.PageSize), s.opts.PageSize)
	if err != nil {
		return nil, storeError(s.log, op, err)
	}

	w := pagination.Paginate(total, page, s.opts.PageSize)
	if len(items) > w.Limit {
		items = items[:w.Limit]
	}
	if items == nil {
		items = []model.Listing{}
	}
	if err := s.attachPosters(ctx, items); err != nil {
		return nil, storeError(s.log, op, err)
	}
	return &model.Page{Items: items, Page: w.Page, TotalPages: w.TotalPages, Total: total}, nil
}

// attachPosters joins the owner projection onto listings in place.
func (s *SearchService) attachPosters(ctx context.Context, listings []model.Listing) error {
	return joinPosters(ctx, s.posters, listings)
}

func joinPosters(ctx context.Context, dir PosterDirectory, listings []model.Listing) error {
	seen := make(map[string]struct{}, len(listings))
	ids := make([]string, 0, len(listings))
	for _, l := range listings {
		if l.PostedBy == "" {
			continue
		}
		if _, ok := seen[l.PostedBy]; !ok {
			seen[l.PostedBy] = struct{}{}
			ids = append(ids, l.PostedBy)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	posters, err := dir.FindPosters(ctx, ids)
	if err != nil {
		return err
	}
	for i := range listings {
		if p, ok := posters[listings[i].PostedBy]; ok {
			p := p
			listings[i].Poster = &p
		}
	}
	return nil
}
