package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"listing-marketplace/internal/model"
)

var (
	sydney      = model.GeoPoint{Longitude: 151.2093, Latitude: -33.8688}
	surryHills  = model.GeoPoint{Longitude: 151.2094, Latitude: -33.8886}
	bondi       = model.GeoPoint{Longitude: 151.2767, Latitude: -33.8915}
	newtown     = model.GeoPoint{Longitude: 151.1785, Latitude: -33.8978}
	glebe       = model.GeoPoint{Longitude: 151.1860, Latitude: -33.8810}
	parramatta  = model.GeoPoint{Longitude: 151.0011, Latitude: -33.8150}
	newcastle   = model.GeoPoint{Longitude: 151.7817, Latitude: -32.9283}
	createdBase = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
)

type fakeGeo struct {
	points map[string]model.GeoPoint
	err    error
	calls  int
}

func (g *fakeGeo) Resolve(ctx context.Context, address string) (model.GeoPoint, error) {
	g.calls++
	if g.err != nil {
		return model.GeoPoint{}, g.err
	}
	p, ok := g.points[address]
	if !ok {
		return model.GeoPoint{}, fmt.Errorf("%w: %s", model.ErrResolution, address)
	}
	return p, nil
}

// fakeStore is an in-memory ListingWriter evaluating queries with ListingQuery.Matches.
type fakeStore struct {
	mu       sync.Mutex
	listings []model.Listing
	err      error
	finds    int
}

func (s *fakeStore) add(l model.Listing) model.Listing {
	if l.ID.IsZero() {
		l.ID = primitive.NewObjectID()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = createdBase.Add(time.Duration(len(s.listings)) * time.Hour)
	}
	s.listings = append(s.listings, l)
	return l
}

func (s *fakeStore) Find(ctx context.Context, q model.ListingQuery, skip, limit int) ([]model.Listing, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finds++
	if s.err != nil {
		return nil, 0, s.err
	}
	if skip < 0 {
		return nil, 0, fmt.Errorf("skip %d must not be negative", skip)
	}
	var out []model.Listing
	for _, l := range s.listings {
		if q.Matches(l) {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	if skip >= len(out) {
		return nil, total, nil
	}
	out = out[skip:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

func (s *fakeStore) GeoNear(ctx context.Context, origin model.GeoPoint, maxDistanceMeters float64, q model.ListingQuery, limit int) ([]model.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var out []model.Listing
	for _, l := range s.listings {
		d := origin.DistanceKm(l.Location) * 1000
		if d > maxDistanceMeters || !q.Matches(l) {
			continue
		}
		l.Distance = &d
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return *out[i].Distance < *out[j].Distance })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeStore) find(match func(model.Listing) bool) (*model.Listing, int) {
	for i, l := range s.listings {
		if match(l) {
			return &s.listings[i], i
		}
	}
	return nil, -1
}

func (s *fakeStore) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	l, _ := s.find(func(l model.Listing) bool { return l.ID.Hex() == id })
	if l == nil {
		return nil, model.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (s *fakeStore) GetBySlug(ctx context.Context, slug string) (*model.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	l, _ := s.find(func(l model.Listing) bool { return l.Slug == slug })
	if l == nil {
		return nil, model.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (s *fakeStore) Create(ctx context.Context, l *model.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	*l = s.add(*l)
	return nil
}

func (s *fakeStore) Update(ctx context.Context, l *model.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, i := s.find(func(x model.Listing) bool { return x.ID == l.ID })
	if i < 0 {
		return model.ErrNotFound
	}
	s.listings[i] = *l
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, i := s.find(func(x model.Listing) bool { return x.ID.Hex() == id })
	if i < 0 {
		return model.ErrNotFound
	}
	s.listings = append(s.listings[:i], s.listings[i+1:]...)
	return nil
}

func (s *fakeStore) mutate(id string, fn func(*model.Listing)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, _ := s.find(func(x model.Listing) bool { return x.ID.Hex() == id })
	if l == nil {
		return model.ErrNotFound
	}
	fn(l)
	return nil
}

func (s *fakeStore) SetStatus(ctx context.Context, id string, status model.Status) error {
	return s.mutate(id, func(l *model.Listing) { l.Status = status })
}

func (s *fakeStore) TogglePublished(ctx context.Context, id string) (*model.Listing, error) {
	var out model.Listing
	err := s.mutate(id, func(l *model.Listing) {
		l.Published = !l.Published
		out = *l
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *fakeStore) IncrementViews(ctx context.Context, id string) error {
	return s.mutate(id, func(l *model.Listing) { l.Views++ })
}

func (s *fakeStore) AddPhoto(ctx context.Context, id, fileID string) error {
	return s.mutate(id, func(l *model.Listing) { l.Photos = append(l.Photos, fileID) })
}

func (s *fakeStore) RemovePhoto(ctx context.Context, id, fileID string) error {
	return s.mutate(id, func(l *model.Listing) {
		kept := l.Photos[:0:0]
		for _, p := range l.Photos {
			if p != fileID {
				kept = append(kept, p)
			}
		}
		l.Photos = kept
	})
}

type fakePosters struct {
	posters map[string]model.Poster
	err     error
	calls   int
}

func (p *fakePosters) FindPosters(ctx context.Context, ids []string) (map[string]model.Poster, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	out := map[string]model.Poster{}
	for _, id := range ids {
		if v, ok := p.posters[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

type fakeRoles struct {
	promoted []string
	err      error
}

func (r *fakeRoles) PromoteToSeller(ctx context.Context, userID string) error {
	r.promoted = append(r.promoted, userID)
	return r.err
}

type fakeWishlist struct {
	items map[string][]string
}

func (w *fakeWishlist) ToggleWishlist(ctx context.Context, userID, listingID string) (bool, error) {
	if w.items == nil {
		w.items = map[string][]string{}
	}
	ids := w.items[userID]
	for i, id := range ids {
		if id == listingID {
			w.items[userID] = append(ids[:i], ids[i+1:]...)
			return false, nil
		}
	}
	w.items[userID] = append(ids, listingID)
	return true, nil
}

func (w *fakeWishlist) WishlistIDs(ctx context.Context, userID string) ([]string, error) {
	return w.items[userID], nil
}

type fakeEnquiries struct {
	saved []model.Enquiry
}

func (e *fakeEnquiries) Upsert(ctx context.Context, enq *model.Enquiry) error {
	for i, v := range e.saved {
		if v.UserID == enq.UserID && v.ListingID == enq.ListingID {
			enq.ID = v.ID
			e.saved[i] = *enq
			return nil
		}
	}
	e.saved = append(e.saved, *enq)
	return nil
}

func (e *fakeEnquiries) ListingIDsByUser(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	for _, v := range e.saved {
		if v.UserID == userID {
			ids = append(ids, v.ListingID)
		}
	}
	return ids, nil
}

type fakePhotos struct {
	files map[string][]byte
	names map[string]string
}

func (p *fakePhotos) Upload(ctx context.Context, listingID, filename string, r io.Reader) (string, error) {
	if p.files == nil {
		p.files, p.names = map[string][]byte{}, map[string]string{}
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	id := primitive.NewObjectID().Hex()
	p.files[id], p.names[id] = buf.Bytes(), filename
	return id, nil
}

func (p *fakePhotos) Download(ctx context.Context, fileID string) ([]byte, string, error) {
	data, ok := p.files[fileID]
	if !ok {
		return nil, "", model.ErrNotFound
	}
	return data, p.names[fileID], nil
}

func (p *fakePhotos) Delete(ctx context.Context, fileID string) error {
	if _, ok := p.files[fileID]; !ok {
		return model.ErrNotFound
	}
	delete(p.files, fileID)
	delete(p.names, fileID)
	return nil
}
