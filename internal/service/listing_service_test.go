package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"listing-marketplace/internal/logger"
	"listing-marketplace/internal/model"
)

type listingFixture struct {
	svc     *ListingService
	store   *fakeStore
	geo     *fakeGeo
	roles   *fakeRoles
	photos  *fakePhotos
	posters *fakePosters
}

func newListingFixture() *listingFixture {
	f := &listingFixture{
		store:   &fakeStore{},
		geo:     &fakeGeo{points: map[string]model.GeoPoint{"1 George St Sydney": sydney, "10 Bondi Rd": bondi}},
		roles:   &fakeRoles{},
		photos:  &fakePhotos{},
		posters: &fakePosters{posters: map[string]model.Poster{"owner": {ID: "owner", Name: "Owner"}}},
	}
	f.svc = NewListingService(f.geo, f.store, f.posters, f.roles, f.photos, SearchOptions{}, logger.Discard())
	f.svc.now = func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }
	return f
}

func validInput() ListingInput {
	return ListingInput{
		Title: "Harbour view", Description: "Two bed unit", Address: "1 George St Sydney",
		Photos: []string{"a.jpg"}, PropertyType: model.Apartment, Action: model.Sell,
		Price: 750000, Bedrooms: 2, Bathrooms: 1,
	}
}

func TestListingInputValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ListingInput)
		ok     bool
	}{
		{"valid", func(*ListingInput) {}, true},
		{"no photos", func(in *ListingInput) { in.Photos = nil }, false},
		{"no description", func(in *ListingInput) { in.Description = " " }, false},
		{"no address", func(in *ListingInput) { in.Address = "" }, false},
		{"bad type", func(in *ListingInput) { in.PropertyType = "Castle" }, false},
		{"zero price", func(in *ListingInput) { in.Price = 0 }, false},
		{"bad action", func(in *ListingInput) { in.Action = "Lease" }, false},
		{"land without size", func(in *ListingInput) { in.PropertyType = model.Land }, false},
		{"land with size", func(in *ListingInput) {
			in.PropertyType, in.Landsize, in.LandsizeType = model.Land, 600, "sqm"
		}, true},
	}
	for _, tt := range tests {
		in := validInput()
		tt.mutate(&in)
		err := in.Validate()
		if tt.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
		}
		if !tt.ok && !errors.Is(err, model.ErrValidation) {
			t.Errorf("%s: err = %v; want ErrValidation", tt.name, err)
		}
	}
}

func TestCreateListing(t *testing.T) {
	f := newListingFixture()

	l, err := f.svc.Create(context.Background(), "owner", validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if l.Location != sydney {
		t.Errorf("location = %+v; want sydney", l.Location)
	}
	if l.Status != model.StatusInMarket || !l.Published || l.PostedBy != "owner" {
		t.Errorf("defaults = %q/%v/%q", l.Status, l.Published, l.PostedBy)
	}
	if !strings.HasPrefix(l.Slug, "apartment-for-sell-address-1-george-st-sydney-price-750000-") {
		t.Errorf("slug = %q", l.Slug)
	}
	if l.ID.IsZero() || len(f.store.listings) != 1 {
		t.Errorf("listing not stored")
	}
	if len(f.roles.promoted) != 1 || f.roles.promoted[0] != "owner" {
		t.Errorf("promoted = %v", f.roles.promoted)
	}
}

func TestCreateSurvivesRoleFailure(t *testing.T) {
	f := newListingFixture()
	f.roles.err = errors.New("pg down")

	if _, err := f.svc.Create(context.Background(), "owner", validInput()); err != nil {
		t.Fatalf("Create: %v", err)
	}
}

func TestCreateUnresolvableAddress(t *testing.T) {
	f := newListingFixture()
	in := validInput()
	in.Address = "nowhere at all"

	if _, err := f.svc.Create(context.Background(), "owner", in); !errors.Is(err, model.ErrResolution) {
		t.Fatalf("err = %v; want ErrResolution", err)
	}
	if len(f.store.listings) != 0 {
		t.Fatalf("listing stored despite failure")
	}
}

func TestReadCountsViewsAndJoinsPoster(t *testing.T) {
	f := newListingFixture()
	created, err := f.svc.Create(context.Background(), "owner", validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := f.svc.Read(context.Background(), created.Slug)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Poster == nil || got.Poster.Name != "Owner" {
		t.Fatalf("poster = %+v", got.Poster)
	}
	if f.store.listings[0].Views != 1 {
		t.Fatalf("views = %d; want 1", f.store.listings[0].Views)
	}

	if _, err := f.svc.Read(context.Background(), "missing"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("err = %v; want ErrNotFound", err)
	}
}

func TestOwnerOnlyMutations(t *testing.T) {
	f := newListingFixture()
	ctx := context.Background()
	created, err := f.svc.Create(ctx, "owner", validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := f.svc.Update(ctx, "intruder", created.Slug, validInput()); !errors.Is(err, model.ErrForbidden) {
		t.Errorf("Update err = %v; want ErrForbidden", err)
	}
	if err := f.svc.SetStatus(ctx, "intruder", created.Slug, model.StatusSold); !errors.Is(err, model.ErrForbidden) {
		t.Errorf("SetStatus err = %v; want ErrForbidden", err)
	}
	if err := f.svc.Delete(ctx, "intruder", created.Slug); !errors.Is(err, model.ErrForbidden) {
		t.Errorf("Delete err = %v; want ErrForbidden", err)
	}
	if _, err := f.svc.UploadPhoto(ctx, "intruder", created.ID.Hex(), "x.jpg", strings.NewReader("img")); !errors.Is(err, model.ErrForbidden) {
		t.Errorf("UploadPhoto err = %v; want ErrForbidden", err)
	}
}

func TestUpdateRegeocodesAndReslugs(t *testing.T) {
	f := newListingFixture()
	ctx := context.Background()
	created, err := f.svc.Create(ctx, "owner", validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	in := validInput()
	in.Address = "10 Bondi Rd"
	updated, err := f.svc.Update(ctx, "owner", created.Slug, in)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Location != bondi {
		t.Errorf("location = %+v; want bondi", updated.Location)
	}
	if updated.Slug == created.Slug || !strings.Contains(updated.Slug, "bondi-rd") {
		t.Errorf("slug = %q", updated.Slug)
	}
	if updated.ID != created.ID || !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("identity changed on update")
	}
}

func TestSetStatusAndDelete(t *testing.T) {
	f := newListingFixture()
	ctx := context.Background()
	created, err := f.svc.Create(ctx, "owner", validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := f.svc.SetStatus(ctx, "owner", created.Slug, "Gone fishing"); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("err = %v; want ErrValidation", err)
	}
	if err := f.svc.SetStatus(ctx, "owner", created.Slug, model.StatusUnderOffer); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if f.store.listings[0].Status != model.StatusUnderOffer {
		t.Fatalf("status = %q", f.store.listings[0].Status)
	}

	if err := f.svc.Delete(ctx, "owner", created.Slug); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(f.store.listings) != 0 {
		t.Fatalf("listing not deleted")
	}
}

func TestTogglePublished(t *testing.T) {
	f := newListingFixture()
	ctx := context.Background()
	created, err := f.svc.Create(ctx, "owner", validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	l, err := f.svc.TogglePublished(ctx, created.ID.Hex())
	if err != nil {
		t.Fatalf("TogglePublished: %v", err)
	}
	if l.Published {
		t.Fatalf("published = true after first toggle")
	}
	if l, _ = f.svc.TogglePublished(ctx, created.ID.Hex()); !l.Published {
		t.Fatalf("published = false after second toggle")
	}
}

func TestUploadAndDownloadPhoto(t *testing.T) {
	f := newListingFixture()
	ctx := context.Background()
	created, err := f.svc.Create(ctx, "owner", validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	id, err := f.svc.UploadPhoto(ctx, "owner", created.ID.Hex(), "front.jpg", strings.NewReader("jpegbytes"))
	if err != nil {
		t.Fatalf("UploadPhoto: %v", err)
	}
	photos := f.store.listings[0].Photos
	if photos[len(photos)-1] != id {
		t.Fatalf("photo %s not attached: %v", id, photos)
	}

	data, name, err := f.svc.Photo(ctx, id)
	if err != nil {
		t.Fatalf("Photo: %v", err)
	}
	if string(data) != "jpegbytes" || name != "front.jpg" {
		t.Fatalf("photo = %q %q", data, name)
	}
	if _, _, err := f.svc.Photo(ctx, "nope"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("err = %v; want ErrNotFound", err)
	}
}

func TestRemovePhoto(t *testing.T) {
	f := newListingFixture()
	ctx := context.Background()
	created, err := f.svc.Create(ctx, "owner", validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	listingID := created.ID.Hex()
	id, err := f.svc.UploadPhoto(ctx, "owner", listingID, "front.jpg", strings.NewReader("jpegbytes"))
	if err != nil {
		t.Fatalf("UploadPhoto: %v", err)
	}

	if err := f.svc.RemovePhoto(ctx, "intruder", listingID, id); !errors.Is(err, model.ErrForbidden) {
		t.Fatalf("intruder err = %v; want ErrForbidden", err)
	}
	if _, _, err := f.svc.Photo(ctx, id); err != nil {
		t.Fatalf("photo gone after refused removal: %v", err)
	}

	if err := f.svc.RemovePhoto(ctx, "owner", listingID, id); err != nil {
		t.Fatalf("RemovePhoto: %v", err)
	}
	if slices.Contains(f.store.listings[0].Photos, id) {
		t.Fatalf("photo %s still attached: %v", id, f.store.listings[0].Photos)
	}
	if _, _, err := f.svc.Photo(ctx, id); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Photo after removal err = %v; want ErrNotFound", err)
	}

	if err := f.svc.RemovePhoto(ctx, "owner", listingID, id); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("second removal err = %v; want ErrNotFound", err)
	}
}

func TestRemovePhotoFileAlreadyGone(t *testing.T) {
	f := newListingFixture()
	ctx := context.Background()
	in := validInput()
	created, err := f.svc.Create(ctx, "owner", in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// the listing references a photo that was never stored as a file
	orphan := in.Photos[0]
	if err := f.svc.RemovePhoto(ctx, "owner", created.ID.Hex(), orphan); err != nil {
		t.Fatalf("RemovePhoto: %v", err)
	}
	if slices.Contains(f.store.listings[0].Photos, orphan) {
		t.Fatalf("photo %s still attached", orphan)
	}
}
