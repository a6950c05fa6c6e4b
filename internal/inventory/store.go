package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"construction-site-api-server/internal/availability"
	"construction-site-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

const CollectionName = "materials"

// Store is the material inventory as seen by the HTTP handlers and reports.
type Store interface {
	TotalAvailability(ctx context.Context, f Filter) ([]availability.AvailableTotal, error)
	TotalConsumed(ctx context.Context, f Filter) ([]availability.ConsumedTotal, error)
	GroupedDetails(ctx context.Context, f Filter) ([]availability.GroupedMaterial, error)
	Add(ctx context.Context, rec *models.MaterialRecord) error
	List(ctx context.Context, f Filter) ([]models.MaterialRecord, error)
	DeleteByID(ctx context.Context, id string) (models.MaterialRecord, error)
	DeleteByCode(ctx context.Context, matCode string, f Filter) (int64, error)
	Take(ctx context.Context, req TakeRequest) ([]Allocation, error)
	RecordsForProject(ctx context.Context, projectID string) ([]models.MaterialRecord, error)
}

type MongoStore struct {
	coll *mongo.Collection
	log  *slog.Logger
}

func NewMongoStore(db *mongo.Database, log *slog.Logger) *MongoStore {
	return &MongoStore{coll: db.Collection(CollectionName), log: log}
}

func (s *MongoStore) TotalAvailability(ctx context.Context, f Filter) ([]availability.AvailableTotal, error) {
	out := []availability.AvailableTotal{}
	if err := s.aggregate(ctx, AvailabilityPipeline(f), &out); err != nil {
		return nil, fmt.Errorf("total availability: %w", err)
	}
	return out, nil
}

func (s *MongoStore) TotalConsumed(ctx context.Context, f Filter) ([]availability.ConsumedTotal, error) {
	out := []availability.ConsumedTotal{}
	if err := s.aggregate(ctx, ConsumedPipeline(f), &out); err != nil {
		return nil, fmt.Errorf("total consumed: %w", err)
	}
	return out, nil
}

type groupedRow struct {
	MatCode   string                  `bson:"matCode"`
	Documents []models.MaterialRecord `bson:"documents"`
}

func (s *MongoStore) GroupedDetails(ctx context.Context, f Filter) ([]availability.GroupedMaterial, error) {
	var rows []groupedRow
	if err := s.aggregate(ctx, GroupedPipeline(f), &rows); err != nil {
		return nil, fmt.Errorf("grouped details: %w", err)
	}
	out := make([]availability.GroupedMaterial, 0, len(rows))
	for _, r := range rows {
		g, err := GroupMaterial(r.MatCode, r.Documents)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// GroupMaterial encodes the records of one material code as a grouped row.
func GroupMaterial(matCode string, records []models.MaterialRecord) (availability.GroupedMaterial, error) {
	g := availability.GroupedMaterial{MatCode: matCode, Documents: make([]availability.MaterialDocument, 0, len(records))}
	for _, rec := range records {
		doc, err := availability.NewMaterialDocument(rec)
		if err != nil {
			return availability.GroupedMaterial{}, err
		}
		g.Documents = append(g.Documents, doc)
	}
	return g, nil
}

func (s *MongoStore) aggregate(ctx context.Context, p mongo.Pipeline, out interface{}) error {
	cursor, err := s.coll.Aggregate(ctx, p)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}

// Add inserts a new delivery. Remaining quantity starts at the added quantity.
func (s *MongoStore) Add(ctx context.Context, rec *models.MaterialRecord) error {
	if rec.QuantityAdded <= 0 {
		return ErrInvalidQuantity
	}
	now := time.Now()
	rec.Quantity = rec.QuantityAdded
	if rec.UsageHistory == nil {
		rec.UsageHistory = []models.UsageEntry{}
	}
	rec.CreatedAt = now
	rec.UpdatedAt = now

	result, err := s.coll.InsertOne(ctx, rec)
	if err != nil {
		return fmt.Errorf("insert material: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		rec.ID = oid
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context, f Filter) ([]models.MaterialRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.coll.Find(ctx, f.match(), opts)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	defer cursor.Close(ctx)

	records := []models.MaterialRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode materials: %w", err)
	}
	return records, nil
}

func (s *MongoStore) RecordsForProject(ctx context.Context, projectID string) ([]models.MaterialRecord, error) {
	return s.List(ctx, Filter{ProjectID: projectID})
}

func (s *MongoStore) DeleteByID(ctx context.Context, id string) (models.MaterialRecord, error) {
	var rec models.MaterialRecord
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return rec, ErrInvalidID
	}
	err = s.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return rec, ErrNotFound
	}
	if err != nil {
		return rec, fmt.Errorf("delete material %s: %w", id, err)
	}
	return rec, nil
}

func (s *MongoStore) DeleteByCode(ctx context.Context, matCode string, f Filter) (int64, error) {
	query := f.match()
	query = append(query, bson.E{Key: "matCode", Value: matCode})
	result, err := s.coll.DeleteMany(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("delete material code %s: %w", matCode, err)
	}
	if result.DeletedCount == 0 {
		return 0, ErrNotFound
	}
	return result.DeletedCount, nil
}

// Take plans the take over the oldest records with stock left, then applies
// each allocation guarded on the record still holding enough. If another
// writer got there first the allocations already applied are reverted and
// ErrStockConflict is returned.
func (s *MongoStore) Take(ctx context.Context, req TakeRequest) ([]Allocation, error) {
	query := Filter{ProjectID: req.ProjectID}.match()
	query = append(query,
		bson.E{Key: "matCode", Value: req.MatCode},
		bson.E{Key: "quantity", Value: bson.M{"$gt": 0}},
	)
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("find stock for %s: %w", req.MatCode, err)
	}
	var records []models.MaterialRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode stock for %s: %w", req.MatCode, err)
	}
	plan, err := PlanTake(records, req.Quantity)
	if err != nil {
		return nil, err
	}

	if req.Date.IsZero() {
		req.Date = time.Now()
	}
	applied := make([]Allocation, 0, len(plan))
	for _, a := range plan {
		entry := models.UsageEntry{TakenBy: req.TakenBy, Quantity: a.Quantity, Date: req.Date}
		result, err := s.coll.UpdateOne(ctx,
			bson.M{"_id": a.RecordID, "quantity": bson.M{"$gte": a.Quantity}},
			bson.M{
				"$inc":  bson.M{"quantity": -a.Quantity},
				"$push": bson.M{"usageHistory": entry},
				"$set":  bson.M{"updatedAt": time.Now()},
			})
		if err == nil && result.MatchedCount == 0 {
			err = ErrStockConflict
		}
		if err != nil {
			s.revert(context.WithoutCancel(ctx), applied, req)
			if errors.Is(err, ErrStockConflict) {
				return nil, err
			}
			return nil, fmt.Errorf("take %s from %s: %w", req.MatCode, a.RecordID.Hex(), err)
		}
		applied = append(applied, a)
	}
	return applied, nil
}

func (s *MongoStore) revert(ctx context.Context, applied []Allocation, req TakeRequest) {
	for _, a := range applied {
		entry := models.UsageEntry{TakenBy: req.TakenBy, Quantity: a.Quantity, Date: req.Date}
		_, err := s.coll.UpdateOne(ctx,
			bson.M{"_id": a.RecordID},
			bson.M{
				"$inc":  bson.M{"quantity": a.Quantity},
				"$pull": bson.M{"usageHistory": entry},
			})
		if err != nil {
			s.log.Error("failed to revert partial take", "record", a.RecordID.Hex(), "matCode", req.MatCode, "error", err)
		}
	}
}

// LiveAvailability runs the three inventory queries concurrently and merges
// them. The first failing query cancels the others.
func LiveAvailability(ctx context.Context, store Store, f Filter, search string) ([]availability.MaterialAvailability, error) {
	var (
		available []availability.AvailableTotal
		consumed  []availability.ConsumedTotal
		grouped   []availability.GroupedMaterial
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		available, err = store.TotalAvailability(gctx, f)
		return
	})
	g.Go(func() (err error) {
		consumed, err = store.TotalConsumed(gctx, f)
		return
	})
	g.Go(func() (err error) {
		grouped, err = store.GroupedDetails(gctx, f)
		return
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return availability.Filter(availability.Aggregate(available, consumed, grouped), search), nil
}
