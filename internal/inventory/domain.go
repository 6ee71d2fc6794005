package inventory

import (
	"errors"
	"time"
)

// Material is a raw-ingredient inventory item. Quantity is never negative:
// every decrement clamps at zero inside a single atomic update.
type Material struct {
	ID        int64
	Name      string
	Category  string
	Color     string
	Price     float64
	Quantity  int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Adjustment captures one applied stock mutation for audit purposes.
type Adjustment struct {
	MaterialID  int64
	Delta       int64
	NewQuantity int64
	Reason      string
}

// ListFilters narrows material listings.
type ListFilters struct {
	Search   string
	Category string
	Page     int
	PerPage  int
}

var (
	// ErrNotFound indicates the material does not exist.
	ErrNotFound = errors.New("inventory: material not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("inventory: invalid input")
	// ErrZeroDelta indicates a stock adjustment with no effect.
	ErrZeroDelta = errors.New("inventory: adjustment delta must be non zero")
)
