package model

import (
	"fmt"
	"strconv"
	"strings"
)

// SearchFilter is the user-supplied search input. Bedrooms, bathrooms and price stay
// textual until the query is built; "All" or empty means no constraint.
type SearchFilter struct {
	Address      string
	Action       string
	PropertyType string
	Bedrooms     string
	Bathrooms    string
	Price        string
	Page         int
}

// Validate reports malformed input as ErrValidation. A non-numeric price is not an error.
func (f SearchFilter) Validate() error {
	if strings.TrimSpace(f.Address) == "" {
		return fmt.Errorf("%w: address is required", ErrValidation)
	}
	if f.Action != "" && !Action(f.Action).Valid() {
		return fmt.Errorf("%w: unknown action %q", ErrValidation, f.Action)
	}
	if f.PropertyType != "" && f.PropertyType != All && !PropertyType(f.PropertyType).Valid() {
		return fmt.Errorf("%w: unknown property type %q", ErrValidation, f.PropertyType)
	}
	for name, v := range map[string]string{"bedrooms": f.Bedrooms, "bathrooms": f.Bathrooms} {
		v = strings.TrimSpace(v)
		if v == "" || v == All {
			continue
		}
		if _, err := strconv.Atoi(v); err != nil {
			return fmt.Errorf("%w: %s must be a number or %q", ErrValidation, name, All)
		}
	}
	return nil
}

// Page is the envelope returned by every paginated listing collection.
type Page struct {
	Items      []Listing `json:"items"`
	Page       int       `json:"page"`
	TotalPages int       `json:"totalPages"`
	Total      int64     `json:"total"`
}
