package model

// PriceMatch selects how a price band constrains listings.
type PriceMatch string

const (
	// PriceMatchRange keeps listings priced anywhere in [Low, High].
	PriceMatchRange PriceMatch = "range"
	// PriceMatchEdges keeps only listings priced exactly Low or High.
	PriceMatchEdges PriceMatch = "edges"
)

func (m PriceMatch) Valid() bool {
	return m == PriceMatchRange || m == PriceMatchEdges
}

type PriceBand struct {
	Low   int64
	High  int64
	Match PriceMatch
}

func (b PriceBand) Contains(price int64) bool {
	if b.Match == PriceMatchEdges {
		return price == b.Low || price == b.High
	}
	return price >= b.Low && price <= b.High
}

// GeoCircle is a spherical cap around Center.
type GeoCircle struct {
	Center   GeoPoint
	RadiusKm float64
}

// ListingQuery is a declarative predicate over listings. Zero-valued fields impose no
// constraint. The store translates it into its own query language; Matches evaluates it
// in memory with the same semantics.
type ListingQuery struct {
	Near         *GeoCircle
	Action       Action
	PropertyType PropertyType
	Bedrooms     *int
	Bathrooms    *int
	Price        *PriceBand
	PostedBy     string
	IDs          []string
	ExcludeID    string
}

func (q ListingQuery) Matches(l Listing) bool {
	if q.Near != nil && q.Near.Center.DistanceKm(l.Location) > q.Near.RadiusKm {
		return false
	}
	if q.Action != "" && l.Action != q.Action {
		return false
	}
	if q.PropertyType != "" && l.PropertyType != q.PropertyType {
		return false
	}
	if q.Bedrooms != nil && l.Bedrooms != *q.Bedrooms {
		return false
	}
	if q.Bathrooms != nil && l.Bathrooms != *q.Bathrooms {
		return false
	}
	if q.Price != nil && !q.Price.Contains(l.Price) {
		return false
	}
	if q.PostedBy != "" && l.PostedBy != q.PostedBy {
		return false
	}
	if q.ExcludeID != "" && l.ID.Hex() == q.ExcludeID {
		return false
	}
	if len(q.IDs) > 0 {
		id := l.ID.Hex()
		for _, v := range q.IDs {
			if v == id {
				return true
			}
		}
		return false
	}
	return true
}
