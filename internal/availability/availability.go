// Package availability merges the per-material totals and grouped records
// returned by the inventory endpoints into one live view per material code.
package availability

import (
	"strings"
)

// Status is the live stock label shown next to a material.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusLowQuantity Status = "low_quantity"
	StatusOutOfStock  Status = "out_of_stock"
)

// LowQuantityThreshold is the smallest quantity still reported as available.
const LowQuantityThreshold = 10

func (s Status) String() string { return string(s) }

// AvailableTotal is one row of /total-availability.
type AvailableTotal struct {
	MatCode        string  `json:"_id" bson:"_id"`
	TotalAvailable float64 `json:"totalAvailable" bson:"totalAvailable"`
}

// ConsumedTotal is one row of /total-consumed.
type ConsumedTotal struct {
	MatCode       string  `json:"_id" bson:"_id"`
	TotalConsumed float64 `json:"totalConsumed" bson:"totalConsumed"`
}

// GroupedMaterial is one row of /all-details-grouped.
type GroupedMaterial struct {
	MatCode   string             `json:"matCode"`
	Documents []MaterialDocument `json:"documents"`
}

// MaterialAvailability is the merged, display-ready record.
type MaterialAvailability struct {
	MatCode        string             `json:"matCode"`
	TotalAvailable float64            `json:"totalAvailable"`
	TotalConsumed  float64            `json:"totalConsumed"`
	Status         Status             `json:"status"`
	Documents      []MaterialDocument `json:"documents"`
}

// Classify maps an available quantity to its status.
func Classify(totalAvailable float64) Status {
	switch {
	case totalAvailable <= 0:
		return StatusOutOfStock
	case totalAvailable < LowQuantityThreshold:
		return StatusLowQuantity
	default:
		return StatusAvailable
	}
}

// Aggregate produces one record per entry of available, in the same order.
// Codes missing from consumed count as zero consumption and codes missing
// from grouped get an empty document list. Codes that only appear in
// consumed or grouped are not reported. Duplicate codes in available yield
// duplicate records.
func Aggregate(available []AvailableTotal, consumed []ConsumedTotal, grouped []GroupedMaterial) []MaterialAvailability {
	consumedBy := make(map[string]float64, len(consumed))
	for _, c := range consumed {
		if _, ok := consumedBy[c.MatCode]; !ok {
			consumedBy[c.MatCode] = c.TotalConsumed
		}
	}
	docsBy := make(map[string][]MaterialDocument, len(grouped))
	for _, g := range grouped {
		if _, ok := docsBy[g.MatCode]; !ok {
			docsBy[g.MatCode] = g.Documents
		}
	}

	out := make([]MaterialAvailability, 0, len(available))
	for _, a := range available {
		docs := docsBy[a.MatCode]
		if docs == nil {
			docs = []MaterialDocument{}
		}
		out = append(out, MaterialAvailability{
			MatCode:        a.MatCode,
			TotalAvailable: a.TotalAvailable,
			TotalConsumed:  consumedBy[a.MatCode],
			Status:         Classify(a.TotalAvailable),
			Documents:      docs,
		})
	}
	return out
}

// Filter keeps the records whose material code contains query, ignoring
// case. An empty query returns records as is.
func Filter(records []MaterialAvailability, query string) []MaterialAvailability {
	if query == "" {
		return records
	}
	q := strings.ToLower(query)
	out := make([]MaterialAvailability, 0, len(records))
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.MatCode), q) {
			out = append(out, r)
		}
	}
	return out
}
