package model

import (
	"fmt"
	"math"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// EarthRadiusKm is the radius used both for $centerSphere radians and haversine distances.
const EarthRadiusKm = 6378.1

// GeoPoint is a WGS84 coordinate. Stored as a GeoJSON Point, longitude first.
type GeoPoint struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

type geoJSONPoint struct {
	Type        string    `bson:"type"`
	Coordinates []float64 `bson:"coordinates"`
}

// Coordinates returns the [lng, lat] pair in GeoJSON order.
func (p GeoPoint) Coordinates() []float64 {
	return []float64{p.Longitude, p.Latitude}
}

func (p GeoPoint) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(geoJSONPoint{Type: "Point", Coordinates: p.Coordinates()})
}

func (p *GeoPoint) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	var gj geoJSONPoint
	if err := (bson.RawValue{Type: t, Value: data}).Unmarshal(&gj); err != nil {
		return fmt.Errorf("GeoPoint: %w", err)
	}
	if len(gj.Coordinates) != 2 {
		return fmt.Errorf("GeoPoint: want 2 coordinates, got %d", len(gj.Coordinates))
	}
	p.Longitude, p.Latitude = gj.Coordinates[0], gj.Coordinates[1]
	return nil
}

// DistanceKm is the great-circle distance between p and q.
func (p GeoPoint) DistanceKm(q GeoPoint) float64 {
	lat1 := p.Latitude * math.Pi / 180
	lat2 := q.Latitude * math.Pi / 180
	dLat := lat2 - lat1
	dLng := (q.Longitude - p.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}
