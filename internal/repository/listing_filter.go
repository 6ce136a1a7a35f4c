package repository

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"listing-marketplace/internal/model"
)

// buildFilter translates q into a MongoDB filter document. Fields are emitted in a fixed
// order so equal queries produce equal filters.
func buildFilter(q model.ListingQuery) bson.D {
	filter := bson.D{}

	if q.Near != nil {
		filter = append(filter, bson.E{Key: "location", Value: bson.D{
			{Key: "$geoWithin", Value: bson.D{
				{Key: "$centerSphere", Value: bson.A{
					bson.A{q.Near.Center.Longitude, q.Near.Center.Latitude},
					q.Near.RadiusKm / model.EarthRadiusKm,
				}},
			}},
		}})
	}
	if q.Action != "" {
		filter = append(filter, bson.E{Key: "action", Value: q.Action})
	}
	if q.PropertyType != "" {
		filter = append(filter, bson.E{Key: "propertyType", Value: q.PropertyType})
	}
	if q.Bedrooms != nil {
		filter = append(filter, bson.E{Key: "bedrooms", Value: *q.Bedrooms})
	}
	if q.Bathrooms != nil {
		filter = append(filter, bson.E{Key: "bathrooms", Value: *q.Bathrooms})
	}
	if q.Price != nil {
		var cond bson.D
		if q.Price.Match == model.PriceMatchEdges {
			cond = bson.D{{Key: "$in", Value: bson.A{q.Price.Low, q.Price.High}}}
		} else {
			cond = bson.D{{Key: "$gte", Value: q.Price.Low}, {Key: "$lte", Value: q.Price.High}}
		}
		filter = append(filter, bson.E{Key: "price", Value: cond})
	}
	if q.PostedBy != "" {
		filter = append(filter, bson.E{Key: "postedBy", Value: q.PostedBy})
	}

	var idCond bson.D
	if len(q.IDs) > 0 {
		// unparseable ids cannot match any document
		ids := bson.A{}
		for _, v := range q.IDs {
			if oid, err := primitive.ObjectIDFromHex(v); err == nil {
				ids = append(ids, oid)
			}
		}
		idCond = append(idCond, bson.E{Key: "$in", Value: ids})
	}
	if q.ExcludeID != "" {
		if oid, err := primitive.ObjectIDFromHex(q.ExcludeID); err == nil {
			idCond = append(idCond, bson.E{Key: "$ne", Value: oid})
		}
	}
	if len(idCond) > 0 {
		filter = append(filter, bson.E{Key: "_id", Value: idCond})
	}
	return filter
}

// geoNearPipeline ranks listings matching q by distance from origin. $geoNear carries the
// proximity constraint itself, so any Near in q is left out of its query.
func geoNearPipeline(origin model.GeoPoint, maxDistanceMeters float64, q model.ListingQuery, limit int) mongo.Pipeline {
	q.Near = nil
	return mongo.Pipeline{
		{{Key: "$geoNear", Value: bson.D{
			{Key: "near", Value: origin},
			{Key: "distanceField", Value: "distance"},
			{Key: "maxDistance", Value: maxDistanceMeters},
			{Key: "query", Value: buildFilter(q)},
			{Key: "spherical", Value: true},
		}}},
		{{Key: "$limit", Value: limit}},
	}
}
