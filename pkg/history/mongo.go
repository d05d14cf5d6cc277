package history

import (
	"context"
	stderrors "errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/driftwatch/deadscan/pkg/scan"
)

const scansCollection = "scans"

// MongoStore persists scan results in a MongoDB collection, keyed by
// scan ID.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and verifies the connection with a
// ping before returning.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(scansCollection),
	}, nil
}

// Save upserts a scan result keyed by its ID.
func (s *MongoStore) Save(ctx context.Context, result scan.ScanResult) error {
	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"id": result.ID},
		result,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("save scan %s: %w", result.ID, err)
	}
	return nil
}

// Get retrieves a scan by ID.
func (s *MongoStore) Get(ctx context.Context, id string) (scan.ScanResult, error) {
	var result scan.ScanResult
	err := s.coll.FindOne(ctx, bson.M{"id": id}).Decode(&result)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return scan.ScanResult{}, ErrScanNotFound
	}
	if err != nil {
		return scan.ScanResult{}, fmt.Errorf("get scan %s: %w", id, err)
	}
	return result, nil
}

// List returns stored scans, newest first.
func (s *MongoStore) List(ctx context.Context, limit int) ([]scan.ScanResult, error) {
	opts := options.Find().SetSort(bson.M{"createdat": -1})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}
	defer cursor.Close(ctx)

	var results []scan.ScanResult
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("decode scans: %w", err)
	}
	return results, nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
