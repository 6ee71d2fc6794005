package returns

import (
	"errors"
	"time"
)

// Status tracks a return request.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Return is a request to send material back to a supplier. Returns are
// record-only: approving one never moves stock. A write-off is the quality
// inspector's rejection flow instead.
type Return struct {
	ID          int64
	Number      string
	ProductName string
	Quantity    int64
	Reason      string
	CreatedBy   string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

var (
	ErrNotFound   = errors.New("returns: not found")
	ErrValidation = errors.New("returns: validation failed")
)
