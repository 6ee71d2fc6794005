package quality

import (
	"errors"
	"time"
)

// RejectionStatus tracks a rejected item record.
type RejectionStatus string

const (
	RejectionStatusPending  RejectionStatus = "pending"
	RejectionStatusResolved RejectionStatus = "resolved"
)

// RejectedItem is an inspector's write-off of delivered material.
type RejectedItem struct {
	ID          int64
	ProductID   int64
	ProductName string
	Quantity    int64
	Reason      string
	SellerID    string
	Status      RejectionStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ChatMessage is one entry in a rejection's dispute thread. Append-only.
type ChatMessage struct {
	ID             int64
	RejectedItemID int64
	SenderID       string
	Message        string
	CreatedAt      time.Time
}

// FoodCondition is an informational inspection record. It never moves stock.
type FoodCondition struct {
	ID               int64
	ProductID        int64
	ProductName      string
	Condition        string
	FitForProcessing bool
	InspectorID      string
	Notes            string
	InspectionDate   time.Time
}

var (
	ErrNotFound   = errors.New("quality: not found")
	ErrValidation = errors.New("quality: validation failed")
)
