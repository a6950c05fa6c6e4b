package availability

import (
	"encoding/json"
	"fmt"
)

// ValidationError rejects a whole collection because one entry is malformed.
type ValidationError struct {
	Collection string
	Index      int
	Reason     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s[%d]: %s", e.Collection, e.Index, e.Reason)
}

type availableWire struct {
	ID             *string  `json:"_id"`
	TotalAvailable *float64 `json:"totalAvailable"`
}

type consumedWire struct {
	ID            *string  `json:"_id"`
	TotalConsumed *float64 `json:"totalConsumed"`
}

type groupedWire struct {
	MatCode   *string            `json:"matCode"`
	Documents []MaterialDocument `json:"documents"`
}

const (
	collAvailable = "total-availability"
	collConsumed  = "total-consumed"
	collGrouped   = "all-details-grouped"
)

// DecodeAvailable parses a /total-availability body. Any entry without a
// code, without a total or with a negative total fails the whole batch.
func DecodeAvailable(data []byte) ([]AvailableTotal, error) {
	var wire []availableWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collAvailable, err)
	}
	out := make([]AvailableTotal, 0, len(wire))
	for i, w := range wire {
		if err := checkCode(collAvailable, i, "_id", w.ID); err != nil {
			return nil, err
		}
		if err := checkQuantity(collAvailable, i, "totalAvailable", w.TotalAvailable); err != nil {
			return nil, err
		}
		out = append(out, AvailableTotal{MatCode: *w.ID, TotalAvailable: *w.TotalAvailable})
	}
	return out, nil
}

// DecodeConsumed parses a /total-consumed body with the same policy.
func DecodeConsumed(data []byte) ([]ConsumedTotal, error) {
	var wire []consumedWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collConsumed, err)
	}
	out := make([]ConsumedTotal, 0, len(wire))
	for i, w := range wire {
		if err := checkCode(collConsumed, i, "_id", w.ID); err != nil {
			return nil, err
		}
		if err := checkQuantity(collConsumed, i, "totalConsumed", w.TotalConsumed); err != nil {
			return nil, err
		}
		out = append(out, ConsumedTotal{MatCode: *w.ID, TotalConsumed: *w.TotalConsumed})
	}
	return out, nil
}

// DecodeGrouped parses an /all-details-grouped body. A missing documents
// list is read as empty. Documents are kept verbatim but each must be a JSON
// object.
func DecodeGrouped(data []byte) ([]GroupedMaterial, error) {
	var wire []groupedWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collGrouped, err)
	}
	out := make([]GroupedMaterial, 0, len(wire))
	for i, w := range wire {
		if err := checkCode(collGrouped, i, "matCode", w.MatCode); err != nil {
			return nil, err
		}
		for j, d := range w.Documents {
			if !d.isObject() {
				return nil, &ValidationError{Collection: collGrouped, Index: i, Reason: fmt.Sprintf("documents[%d] is not an object", j)}
			}
		}
		docs := w.Documents
		if docs == nil {
			docs = []MaterialDocument{}
		}
		out = append(out, GroupedMaterial{MatCode: *w.MatCode, Documents: docs})
	}
	return out, nil
}

func checkCode(coll string, i int, field string, v *string) error {
	if v == nil {
		return &ValidationError{Collection: coll, Index: i, Reason: "missing " + field}
	}
	if *v == "" {
		return &ValidationError{Collection: coll, Index: i, Reason: "empty " + field}
	}
	return nil
}

func checkQuantity(coll string, i int, field string, v *float64) error {
	if v == nil {
		return &ValidationError{Collection: coll, Index: i, Reason: "missing " + field}
	}
	if *v < 0 {
		return &ValidationError{Collection: coll, Index: i, Reason: fmt.Sprintf("negative %s %v", field, *v)}
	}
	return nil
}
