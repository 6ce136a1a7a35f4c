package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"listing-marketplace/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id         TEXT PRIMARY KEY,
    username   TEXT NOT NULL UNIQUE,
    name       TEXT NOT NULL DEFAULT '',
    email      TEXT NOT NULL UNIQUE,
    phone      TEXT NOT NULL DEFAULT '',
    company    TEXT NOT NULL DEFAULT '',
    photo      TEXT NOT NULL DEFAULT '',
    logo       TEXT NOT NULL DEFAULT '',
    roles      TEXT[] NOT NULL DEFAULT ARRAY['Buyer'],
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS wishlist (
    user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    listing_id TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (user_id, listing_id)
);

CREATE TABLE IF NOT EXISTS enquiries (
    id         TEXT PRIMARY KEY,
    user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    listing_id TEXT NOT NULL,
    message    TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (user_id, listing_id)
);
`

// EnsureSchema creates the user-side tables when they are missing.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("EnsureSchema: %w", err)
	}
	return nil
}

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindPosters loads the public projection of every user in ids. Unknown ids are absent
// from the result.
func (r *UserRepository) FindPosters(ctx context.Context, ids []string) (map[string]model.Poster, error) {
	out := make(map[string]model.Poster, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, username, name, email, phone, company, photo, logo
		FROM users
		WHERE id IN (?)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("UserRepository.FindPosters: %w", err)
	}

	var posters []model.Poster
	if err := r.db.SelectContext(ctx, &posters, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("UserRepository.FindPosters: %w", err)
	}
	for _, p := range posters {
		out[p.ID] = p
	}
	return out, nil
}

// PromoteToSeller adds the Seller role once.
func (r *UserRepository) PromoteToSeller(ctx context.Context, userID string) error {
	const q = `
		UPDATE users
		SET roles = array_append(roles, 'Seller')
		WHERE id = $1 AND NOT ('Seller' = ANY(roles))
	`
	if _, err := r.db.ExecContext(ctx, q, userID); err != nil {
		return fmt.Errorf("UserRepository.PromoteToSeller: %w", err)
	}
	return nil
}

// Roles returns the roles held by userID.
func (r *UserRepository) Roles(ctx context.Context, userID string) ([]string, error) {
	var roles pq.StringArray
	err := r.db.GetContext(ctx, &roles, `SELECT roles FROM users WHERE id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", userID, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("UserRepository.Roles: %w", err)
	}
	return roles, nil
}

// ToggleWishlist removes the pair if present, otherwise inserts it. It reports whether the
// listing is on the wishlist afterwards.
func (r *UserRepository) ToggleWishlist(ctx context.Context, userID, listingID string) (added bool, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("UserRepository.BeginTxx: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM wishlist WHERE user_id = $1 AND listing_id = $2`, userID, listingID)
	if err != nil {
		return false, fmt.Errorf("UserRepository.ToggleWishlist delete: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("UserRepository.ToggleWishlist: %w", err)
	}
	if removed == 0 {
		if _, err = tx.ExecContext(ctx, `INSERT INTO wishlist (user_id, listing_id) VALUES ($1, $2)`, userID, listingID); err != nil {
			return false, fmt.Errorf("UserRepository.ToggleWishlist insert: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("UserRepository commit: %w", err)
	}
	return removed == 0, nil
}

func (r *UserRepository) WishlistIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	const q = `SELECT listing_id FROM wishlist WHERE user_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &ids, q, userID); err != nil {
		return nil, fmt.Errorf("UserRepository.WishlistIDs: %w", err)
	}
	return ids, nil
}
