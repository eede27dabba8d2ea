package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig configures a MongoDB-backed store.
type MongoConfig struct {
	URI      string `toml:"uri" json:"uri"`
	Database string `toml:"database" json:"database"`
}

// MongoStore persists records in two collections, families and layouts,
// both keyed by family hash.
type MongoStore struct {
	client   *mongo.Client
	families *mongo.Collection
	layouts  *mongo.Collection
}

// NewMongoStore connects to MongoDB, verifies the connection and ensures
// the hash indexes exist.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	s := &MongoStore{
		client:   client,
		families: db.Collection("families"),
		layouts:  db.Collection("layouts"),
	}

	unique := options.Index().SetUnique(true)
	for _, c := range []struct {
		coll *mongo.Collection
		key  string
	}{
		{s.families, "hash"},
		{s.layouts, "family_hash"},
	} {
		_, err := c.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: c.key, Value: 1}},
			Options: unique,
		})
		if err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("mongo index %s: %w", c.key, err)
		}
	}
	return s, nil
}

// PutFamily registers or replaces a family record.
func (s *MongoStore) PutFamily(ctx context.Context, f FamilyRecord) error {
	_, err := s.families.ReplaceOne(ctx,
		bson.M{"hash": f.Hash}, f, options.Replace().SetUpsert(true))
	return err
}

// GetFamily returns the family with the given hash, or ErrNotFound.
func (s *MongoStore) GetFamily(ctx context.Context, hash string) (FamilyRecord, error) {
	var f FamilyRecord
	err := s.families.FindOne(ctx, bson.M{"hash": hash}).Decode(&f)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return FamilyRecord{}, ErrNotFound
	}
	return f, err
}

// ListFamilies returns all registered families.
func (s *MongoStore) ListFamilies(ctx context.Context) ([]FamilyRecord, error) {
	cur, err := s.families.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []FamilyRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteFamily removes a family and its layout.
func (s *MongoStore) DeleteFamily(ctx context.Context, hash string) error {
	if _, err := s.families.DeleteOne(ctx, bson.M{"hash": hash}); err != nil {
		return err
	}
	_, err := s.layouts.DeleteOne(ctx, bson.M{"family_hash": hash})
	return err
}

// PutLayout stores or replaces the layout for a family.
func (s *MongoStore) PutLayout(ctx context.Context, l LayoutRecord) error {
	_, err := s.layouts.ReplaceOne(ctx,
		bson.M{"family_hash": l.FamilyHash}, l, options.Replace().SetUpsert(true))
	return err
}

// CompleteLayout persists an optimization result, keeping the stale flag
// and epoch of any mark that advanced the stored record past l. The
// replace is conditioned on the stored epoch; when a concurrent MarkStale
// advanced it, the record is re-read and the write retried with the mark
// carried over. The loop converges because epochs only ever grow.
func (s *MongoStore) CompleteLayout(ctx context.Context, l LayoutRecord) error {
	rec := l
	for {
		res, err := s.layouts.ReplaceOne(ctx,
			bson.M{"family_hash": rec.FamilyHash, "stale_epoch": bson.M{"$lte": rec.StaleEpoch}}, rec)
		if err != nil {
			return err
		}
		if res.MatchedCount == 1 {
			return nil
		}
		cur, err := s.GetLayout(ctx, rec.FamilyHash)
		if errors.Is(err, ErrNotFound) {
			_, err := s.layouts.ReplaceOne(ctx,
				bson.M{"family_hash": rec.FamilyHash}, rec, options.Replace().SetUpsert(true))
			return err
		}
		if err != nil {
			return err
		}
		rec.Stale = true
		rec.StaleEpoch = cur.StaleEpoch
	}
}

// GetLayout returns the layout for the given family hash, or ErrNotFound.
func (s *MongoStore) GetLayout(ctx context.Context, hash string) (LayoutRecord, error) {
	var l LayoutRecord
	err := s.layouts.FindOne(ctx, bson.M{"family_hash": hash}).Decode(&l)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return LayoutRecord{}, ErrNotFound
	}
	return l, err
}

// MarkStale flags the family's layout as stale, if one exists.
func (s *MongoStore) MarkStale(ctx context.Context, hash string) error {
	_, err := s.layouts.UpdateOne(ctx,
		bson.M{"family_hash": hash},
		bson.M{
			"$set": bson.M{"stale": true, "updated": time.Now().UTC()},
			"$inc": bson.M{"stale_epoch": 1},
		})
	return err
}

// Ping verifies the MongoDB connection.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
