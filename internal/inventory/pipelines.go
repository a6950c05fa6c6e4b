package inventory

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Filter narrows inventory queries. The zero value matches every record.
type Filter struct {
	ProjectID string
}

func (f Filter) match() bson.D {
	if f.ProjectID == "" {
		return bson.D{}
	}
	return bson.D{{Key: "projectAssigned", Value: f.ProjectID}}
}

func (f Filter) prefix() mongo.Pipeline {
	if f.ProjectID == "" {
		return mongo.Pipeline{}
	}
	return mongo.Pipeline{{{Key: "$match", Value: f.match()}}}
}

// AvailabilityPipeline sums the remaining quantity per material code.
func AvailabilityPipeline(f Filter) mongo.Pipeline {
	return append(f.prefix(),
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$matCode"},
			{Key: "totalAvailable", Value: bson.D{{Key: "$sum", Value: "$quantity"}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	)
}

// ConsumedPipeline sums every usage entry per material code. Records with an
// empty history drop out at the $unwind.
func ConsumedPipeline(f Filter) mongo.Pipeline {
	return append(f.prefix(),
		bson.D{{Key: "$unwind", Value: "$usageHistory"}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$matCode"},
			{Key: "totalConsumed", Value: bson.D{{Key: "$sum", Value: "$usageHistory.quantity"}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	)
}

// GroupedPipeline collects the full records per material code, oldest first.
func GroupedPipeline(f Filter) mongo.Pipeline {
	return append(f.prefix(),
		bson.D{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: 1}}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$matCode"},
			{Key: "documents", Value: bson.D{{Key: "$push", Value: "$$ROOT"}}},
		}}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "matCode", Value: "$_id"},
			{Key: "documents", Value: 1},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "matCode", Value: 1}}}},
	)
}
