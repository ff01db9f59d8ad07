package mongostore

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/BartekS5/legacysync/internal/store"
	"github.com/BartekS5/legacysync/pkg/models"
)

type userRepo struct {
	collection[models.User]
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	filter := bson.M{
		"email":  primitive.Regex{Pattern: "^" + regexp.QuoteMeta(email) + "$", Options: "i"},
		"active": true,
	}
	return r.findOne(ctx, filter, options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

type configEntryRepo struct {
	s    *Store
	coll *mongo.Collection
}

func (r *configEntryRepo) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}

// ReplaceFile deletes then inserts. Without a replica set there is no
// transaction; a failed insert leaves the file partially loaded until the
// next sync.
func (r *configEntryRepo) ReplaceFile(ctx context.Context, fileName string, entries []models.ConfigEntry) error {
	if _, err := r.coll.DeleteMany(ctx, bson.M{"fileName": fileName}); err != nil {
		return fmt.Errorf("failed to delete entries of '%s': %w", fileName, err)
	}
	if len(entries) == 0 {
		return nil
	}
	docs := make([]any, 0, len(entries))
	for i := range entries {
		id, err := r.s.nextID(ctx, collConfigEntries)
		if err != nil {
			return err
		}
		entries[i].ID = id
		entries[i].FileName = fileName
		docs = append(docs, entries[i])
	}
	if _, err := r.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert entries of '%s': %w", fileName, err)
	}
	return nil
}

func (r *configEntryRepo) ListByFile(ctx context.Context, fileName string) ([]models.ConfigEntry, error) {
	cur, err := r.coll.Find(ctx, bson.M{"fileName": fileName, "active": true},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query config entries: %w", err)
	}
	var out []models.ConfigEntry
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode config entries: %w", err)
	}
	return out, nil
}

func (r *configEntryRepo) Find(ctx context.Context, fileName, section, key string) (*models.ConfigEntry, error) {
	var e models.ConfigEntry
	err := r.coll.FindOne(ctx, bson.M{"fileName": fileName, "section": section, "key": key, "active": true}).Decode(&e)
	if err == mongo.ErrNoDocuments {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query config entry: %w", err)
	}
	return &e, nil
}

func (r *configEntryRepo) UpdateValue(ctx context.Context, fileName, section, key, value, actor string, at time.Time) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"fileName": fileName, "section": section, "key": key, "active": true},
		bson.M{"$set": bson.M{"value": value, "updatedAt": at, "updatedBy": actor}},
	)
	if err != nil {
		return fmt.Errorf("failed to update %s [%s] %s: %w", fileName, section, key, err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
