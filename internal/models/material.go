// internal/models/material.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UsageEntry is one take-out of material from a record.
type UsageEntry struct {
	TakenBy  string    `bson:"takenBy" json:"takenBy"`
	Quantity float64   `bson:"quantity" json:"quantity"`
	Date     time.Time `bson:"date" json:"date"`
}

// MaterialRecord is one inbound delivery of a material. Quantity is what is
// still on site; QuantityAdded is what arrived.
type MaterialRecord struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	MatCode         string             `bson:"matCode" json:"matCode"`
	MatName         string             `bson:"matName,omitempty" json:"matName,omitempty"`
	Quantity        float64            `bson:"quantity" json:"quantity"`
	QuantityAdded   float64            `bson:"quantityAdded" json:"quantityAdded"`
	Amount          float64            `bson:"amount" json:"amount"`
	AddedBy         string             `bson:"addedBy" json:"addedBy"`
	Date            time.Time          `bson:"date" json:"date"`
	ProjectAssigned string             `bson:"projectAssigned,omitempty" json:"projectAssigned,omitempty"`
	Document        *MediaPointer      `bson:"document,omitempty" json:"document,omitempty"`
	UsageHistory    []UsageEntry       `bson:"usageHistory" json:"usageHistory"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Consumed sums the usage history of the record.
func (m MaterialRecord) Consumed() float64 {
	var total float64
	for _, u := range m.UsageHistory {
		total += u.Quantity
	}
	return total
}
