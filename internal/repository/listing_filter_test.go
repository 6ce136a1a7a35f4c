package repository

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"listing-marketplace/internal/model"
)

func TestBuildFilterSearch(t *testing.T) {
	three := 3
	radius := 10.0
	q := model.ListingQuery{
		Near:         &model.GeoCircle{Center: model.GeoPoint{Longitude: 151.2093, Latitude: -33.8688}, RadiusKm: radius},
		Action:       model.Sell,
		PropertyType: model.House,
		Bedrooms:     &three,
		Price:        &model.PriceBand{Low: 400000, High: 600000, Match: model.PriceMatchRange},
	}

	want := bson.D{
		{Key: "location", Value: bson.D{{Key: "$geoWithin", Value: bson.D{{Key: "$centerSphere", Value: bson.A{
			bson.A{151.2093, -33.8688}, radius / model.EarthRadiusKm,
		}}}}}},
		{Key: "action", Value: model.Sell},
		{Key: "propertyType", Value: model.House},
		{Key: "bedrooms", Value: 3},
		{Key: "price", Value: bson.D{{Key: "$gte", Value: int64(400000)}, {Key: "$lte", Value: int64(600000)}}},
	}
	if got := buildFilter(q); !reflect.DeepEqual(got, want) {
		t.Fatalf("buildFilter =\n%v\nwant\n%v", got, want)
	}
}

func TestBuildFilterEdges(t *testing.T) {
	q := model.ListingQuery{Price: &model.PriceBand{Low: 400000, High: 600000, Match: model.PriceMatchEdges}}
	want := bson.D{{Key: "price", Value: bson.D{{Key: "$in", Value: bson.A{int64(400000), int64(600000)}}}}}
	if got := buildFilter(q); !reflect.DeepEqual(got, want) {
		t.Fatalf("buildFilter = %v; want %v", got, want)
	}
}

func TestBuildFilterEmpty(t *testing.T) {
	if got := buildFilter(model.ListingQuery{}); len(got) != 0 {
		t.Fatalf("buildFilter = %v; want empty", got)
	}
}

func TestBuildFilterIDs(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	q := model.ListingQuery{IDs: []string{a.Hex(), "not-an-id"}, ExcludeID: b.Hex(), PostedBy: "u1"}

	want := bson.D{
		{Key: "postedBy", Value: "u1"},
		{Key: "_id", Value: bson.D{
			{Key: "$in", Value: bson.A{a}},
			{Key: "$ne", Value: b},
		}},
	}
	if got := buildFilter(q); !reflect.DeepEqual(got, want) {
		t.Fatalf("buildFilter = %v; want %v", got, want)
	}
}

func TestObjectIDMalformedIsNotFound(t *testing.T) {
	if _, err := objectID("zzz"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestGeoNearPipeline(t *testing.T) {
	origin := model.GeoPoint{Longitude: 151.2094, Latitude: -33.8886}
	radius := 10.0
	q := model.ListingQuery{
		Near:      &model.GeoCircle{Center: origin, RadiusKm: radius},
		Action:    model.Sell,
		ExcludeID: "not-an-id",
	}

	want := mongo.Pipeline{
		{{Key: "$geoNear", Value: bson.D{
			{Key: "near", Value: origin},
			{Key: "distanceField", Value: "distance"},
			{Key: "maxDistance", Value: 50000.0},
			{Key: "query", Value: bson.D{{Key: "action", Value: model.Sell}}},
			{Key: "spherical", Value: true},
		}}},
		{{Key: "$limit", Value: 4}},
	}
	got := geoNearPipeline(origin, 50000, q, 4)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("geoNearPipeline =\n%v\nwant\n%v", got, want)
	}
	if q.Near == nil {
		t.Fatalf("geoNearPipeline cleared the caller's Near")
	}

	raw, err := bson.Marshal(got[0][0].Value)
	if err != nil {
		t.Fatalf("marshal $geoNear stage: %v", err)
	}
	var stage struct {
		Near struct {
			Type        string    `bson:"type"`
			Coordinates []float64 `bson:"coordinates"`
		} `bson:"near"`
		MaxDistance float64 `bson:"maxDistance"`
	}
	if err := bson.Unmarshal(raw, &stage); err != nil {
		t.Fatalf("unmarshal $geoNear stage: %v", err)
	}
	if stage.Near.Type != "Point" || !reflect.DeepEqual(stage.Near.Coordinates, []float64{151.2094, -33.8886}) {
		t.Fatalf("near = %+v; want a GeoJSON point in [lng, lat] order", stage.Near)
	}
	if stage.MaxDistance != 50000 {
		t.Fatalf("maxDistance = %v; want 50000 metres", stage.MaxDistance)
	}
}
