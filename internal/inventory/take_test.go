package inventory

import (
	"errors"
	"reflect"
	"testing"

	"construction-site-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPlanTake(t *testing.T) {
	a, b, c := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	records := []models.MaterialRecord{
		{ID: a, Quantity: 5},
		{ID: b, Quantity: 0},
		{ID: c, Quantity: 8},
	}

	tests := []struct {
		name    string
		qty     float64
		want    []Allocation
		wantErr error
	}{
		{"within first record", 3, []Allocation{{a, 3}}, nil},
		{"drains first exactly", 5, []Allocation{{a, 5}}, nil},
		{"spills over, skipping empty", 9, []Allocation{{a, 5}, {c, 4}}, nil},
		{"everything", 13, []Allocation{{a, 5}, {c, 8}}, nil},
		{"too much", 13.5, nil, ErrInsufficientStock},
		{"zero", 0, nil, ErrInvalidQuantity},
		{"negative", -2, nil, ErrInvalidQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PlanTake(records, tt.qty)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("PlanTake() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("PlanTake() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlanTake_NoRecords(t *testing.T) {
	if _, err := PlanTake(nil, 1); !errors.Is(err, ErrInsufficientStock) {
		t.Errorf("PlanTake(nil) error = %v, want ErrInsufficientStock", err)
	}
}
