package availability

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"construction-site-api-server/internal/models"
)

// MaterialDocument is one record of a grouped material, held as the JSON the
// API sent. It is passed through untouched; only the detail view reads
// fields out of it, through Details.
type MaterialDocument json.RawMessage

// NewMaterialDocument encodes a stored record for the grouped endpoints.
func NewMaterialDocument(rec models.MaterialRecord) (MaterialDocument, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode material %s: %w", rec.MatCode, err)
	}
	return MaterialDocument(b), nil
}

func (d MaterialDocument) MarshalJSON() ([]byte, error) {
	if len(d) == 0 {
		return []byte("null"), nil
	}
	return d, nil
}

func (d *MaterialDocument) UnmarshalJSON(b []byte) error {
	*d = append((*d)[:0], b...)
	return nil
}

func (d MaterialDocument) isObject() bool {
	b := bytes.TrimSpace(d)
	return len(b) > 0 && b[0] == '{'
}

// DocumentDetails are the fields of a document the detail view shows.
type DocumentDetails struct {
	MatName      string              `json:"matName"`
	Quantity     float64             `json:"quantity"`
	UsageHistory []models.UsageEntry `json:"usageHistory"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
}

// Details reads the fields the detail view needs. Other fields are ignored.
func (d MaterialDocument) Details() (DocumentDetails, error) {
	var out DocumentDetails
	if err := json.Unmarshal(d, &out); err != nil {
		return DocumentDetails{}, err
	}
	return out, nil
}
