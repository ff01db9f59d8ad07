// Package mongostore implements the canonical store on MongoDB. Numeric ids
// come from a counters collection so entities keep the int64 identity the
// SQL store uses.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/BartekS5/legacysync/internal/store"
	"github.com/BartekS5/legacysync/pkg/database"
	"github.com/BartekS5/legacysync/pkg/models"
)

const (
	collUsers         = "users"
	collRequests      = "requests"
	collEnvironments  = "environments"
	collConfigEntries = "config_entries"
	collCounters      = "counters"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ store.Catalog = (*Store)(nil)

// Open connects to uri and uses the named database.
func Open(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := database.ConnectMongo(uri)
	if err != nil {
		return nil, err
	}
	s := New(client, dbName)
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func New(client *mongo.Client, dbName string) *Store {
	return &Store{client: client, db: client.Database(dbName)}
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	indexes := []struct {
		coll string
		keys bson.D
	}{
		{collUsers, bson.D{{Key: "login", Value: 1}}},
		{collUsers, bson.D{{Key: "email", Value: 1}}},
		{collRequests, bson.D{{Key: "number", Value: 1}}},
		{collConfigEntries, bson.D{{Key: "fileName", Value: 1}, {Key: "section", Value: 1}, {Key: "key", Value: 1}}},
	}
	for _, idx := range indexes {
		_, err := s.db.Collection(idx.coll).Indexes().CreateOne(ctx, mongo.IndexModel{Keys: idx.keys, Options: unique})
		if err != nil {
			return fmt.Errorf("failed to create %s index: %w", idx.coll, err)
		}
	}
	return nil
}

func (s *Store) Database() *mongo.Database { return s.db }

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) Users() store.UserRepository {
	return &userRepo{collection[models.User]{s: s, name: collUsers}}
}

func (s *Store) Requests() store.RequestRepository {
	return &collection[models.Request]{s: s, name: collRequests}
}

func (s *Store) Environments() store.EnvironmentRepository {
	return &collection[models.Environment]{s: s, name: collEnvironments}
}

func (s *Store) ConfigEntries() store.ConfigEntryRepository {
	return &configEntryRepo{s: s, coll: s.db.Collection(collConfigEntries)}
}

// nextID atomically increments the named sequence.
func (s *Store) nextID(ctx context.Context, name string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := s.db.Collection(collCounters).FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate id for %s: %w", name, err)
	}
	return counter.Seq, nil
}

// collection is the generic repository over one entity collection. Ids are
// assigned through setID before insert.
type collection[T any] struct {
	s    *Store
	name string
}

func (c *collection[T]) coll() *mongo.Collection { return c.s.db.Collection(c.name) }

func (c *collection[T]) Add(ctx context.Context, entity *T) error {
	id, err := c.s.nextID(ctx, c.name)
	if err != nil {
		return err
	}
	setID(entity, id)
	if _, err := c.coll().InsertOne(ctx, entity); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", c.name, err)
	}
	return nil
}

func (c *collection[T]) Count(ctx context.Context) (int64, error) {
	n, err := c.coll().CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", c.name, err)
	}
	return n, nil
}

func (c *collection[T]) GetAll(ctx context.Context) ([]T, error) {
	return c.find(ctx, bson.M{})
}

func (c *collection[T]) GetByID(ctx context.Context, id int64) (*T, error) {
	return c.findOne(ctx, bson.M{"_id": id})
}

func (c *collection[T]) find(ctx context.Context, filter any) ([]T, error) {
	cur, err := c.coll().Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", c.name, err)
	}
	var out []T
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", c.name, err)
	}
	return out, nil
}

func (c *collection[T]) findOne(ctx context.Context, filter any, opts ...*options.FindOneOptions) (*T, error) {
	var out T
	err := c.coll().FindOne(ctx, filter, opts...).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", c.name, err)
	}
	return &out, nil
}

func setID(entity any, id int64) {
	switch e := entity.(type) {
	case *models.User:
		e.ID = id
	case *models.Request:
		e.ID = id
	case *models.Environment:
		e.ID = id
	case *models.ConfigEntry:
		e.ID = id
	}
}
