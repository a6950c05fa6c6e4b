package inventory

import (
	"errors"
	"time"

	"construction-site-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrStockConflict     = errors.New("stock changed while taking material, retry")
	ErrNotFound          = errors.New("material not found")
	ErrInvalidID         = errors.New("invalid material id")
)

// TakeRequest removes Quantity of MatCode from the site stock.
type TakeRequest struct {
	MatCode   string
	Quantity  float64
	TakenBy   string
	Date      time.Time
	ProjectID string
}

// Allocation is the share of a take served by one record.
type Allocation struct {
	RecordID primitive.ObjectID `json:"recordId"`
	Quantity float64            `json:"quantity"`
}

// PlanTake spreads qty over records in the given order, draining each record
// before moving to the next. records are expected oldest first.
func PlanTake(records []models.MaterialRecord, qty float64) ([]Allocation, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}

	var remaining float64
	for _, r := range records {
		if r.Quantity > 0 {
			remaining += r.Quantity
		}
	}
	if remaining < qty {
		return nil, ErrInsufficientStock
	}

	plan := make([]Allocation, 0, len(records))
	left := qty
	for _, r := range records {
		if left <= 0 {
			break
		}
		if r.Quantity <= 0 {
			continue
		}
		share := r.Quantity
		if share > left {
			share = left
		}
		plan = append(plan, Allocation{RecordID: r.ID, Quantity: share})
		left -= share
	}
	return plan, nil
}
