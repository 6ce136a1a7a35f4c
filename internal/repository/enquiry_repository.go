package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"listing-marketplace/internal/model"
)

type EnquiryRepository struct {
	db *sqlx.DB
}

func NewEnquiryRepository(db *sqlx.DB) *EnquiryRepository {
	return &EnquiryRepository{db: db}
}

// Upsert saves an enquiry. A repeat enquiry on the same listing keeps the original id and
// replaces the message and timestamp.
func (r *EnquiryRepository) Upsert(ctx context.Context, e *model.Enquiry) error {
	const q = `
		INSERT INTO enquiries (id, user_id, listing_id, message, created_at)
		VALUES (:id, :user_id, :listing_id, :message, :created_at)
		ON CONFLICT (user_id, listing_id)
		DO UPDATE SET message = EXCLUDED.message, created_at = EXCLUDED.created_at
		RETURNING id
	`
	rows, err := r.db.NamedQueryContext(ctx, q, e)
	if err != nil {
		return fmt.Errorf("EnquiryRepository.Upsert: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&e.ID); err != nil {
			return fmt.Errorf("EnquiryRepository.Upsert scan: %w", err)
		}
	}
	return rows.Err()
}

// ListingIDsByUser returns the listings userID has enquired about, most recent first.
func (r *EnquiryRepository) ListingIDsByUser(ctx context.Context, userID string) ([]string, error) {
	const q = `
		SELECT listing_id
		FROM enquiries
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, q, userID); err != nil {
		return nil, fmt.Errorf("EnquiryRepository.ListingIDsByUser: %w", err)
	}
	return ids, nil
}
