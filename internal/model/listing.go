package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// All is the open-filter sentinel accepted for property type, bedrooms and bathrooms.
const All = "All"

type PropertyType string

const (
	House     PropertyType = "House"
	Apartment PropertyType = "Apartment"
	Townhouse PropertyType = "Townhouse"
	Land      PropertyType = "Land"
)

func (t PropertyType) Valid() bool {
	switch t {
	case House, Apartment, Townhouse, Land:
		return true
	}
	return false
}

type Action string

const (
	Sell Action = "Sell"
	Rent Action = "Rent"
)

func (a Action) Valid() bool {
	return a == Sell || a == Rent
}

type Status string

const (
	StatusInMarket     Status = "In market"
	StatusDepositTaken Status = "Deposit taken"
	StatusUnderOffer   Status = "Under offer"
	StatusContactAgent Status = "Contact agent"
	StatusSold         Status = "Sold"
	StatusRented       Status = "Rented"
	StatusOffMarket    Status = "Off market"
)

var statuses = []Status{
	StatusInMarket, StatusDepositTaken, StatusUnderOffer, StatusContactAgent,
	StatusSold, StatusRented, StatusOffMarket,
}

func (s Status) Valid() bool {
	for _, v := range statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Listing is a property offered for sale or rent.
type Listing struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Slug           string             `bson:"slug" json:"slug"`
	Title          string             `bson:"title" json:"title"`
	Description    string             `bson:"description" json:"description"`
	Address        string             `bson:"address" json:"address"`
	Photos         []string           `bson:"photos" json:"photos"`
	PropertyType   PropertyType       `bson:"propertyType" json:"propertyType"`
	Action         Action             `bson:"action" json:"action"`
	Price          int64              `bson:"price" json:"price"`
	Bedrooms       int                `bson:"bedrooms" json:"bedrooms"`
	Bathrooms      int                `bson:"bathrooms" json:"bathrooms"`
	Carpark        int                `bson:"carpark" json:"carpark"`
	Landsize       float64            `bson:"landsize,omitempty" json:"landsize,omitempty"`
	LandsizeType   string             `bson:"landsizeType,omitempty" json:"landsizeType,omitempty"`
	Location       GeoPoint           `bson:"location" json:"location"`
	Status         Status             `bson:"status" json:"status"`
	Published      bool               `bson:"published" json:"published"`
	Views          int64              `bson:"views" json:"views"`
	PostedBy       string             `bson:"postedBy" json:"postedBy"`
	InspectionTime string             `bson:"inspectionTime,omitempty" json:"inspectionTime,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`

	// Read-side only: metres from the reference point on the related path.
	Distance *float64 `bson:"distance,omitempty" json:"distance,omitempty"`
	// Read-side only: owner projection joined after every fetch.
	Poster *Poster `bson:"-" json:"poster,omitempty"`
}

// Poster is the public projection of a listing owner.
type Poster struct {
	ID       string `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
	Name     string `db:"name" json:"name"`
	Email    string `db:"email" json:"email"`
	Phone    string `db:"phone" json:"phone"`
	Company  string `db:"company" json:"company"`
	Photo    string `db:"photo" json:"photo,omitempty"`
	Logo     string `db:"logo" json:"logo,omitempty"`
}
