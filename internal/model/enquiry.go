package model

import "time"

// Enquiry is a buyer's message to the agent of a listing. One per user and listing.
type Enquiry struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	ListingID string    `db:"listing_id" json:"listingId"`
	Message   string    `db:"message" json:"message"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
