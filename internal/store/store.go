// Package store defines the canonical entity collaborator the import engine
// writes to. Implementations live in sqlstore and mongostore.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/BartekS5/legacysync/pkg/models"
)

// ErrNotFound is returned by lookups that match nothing.
var ErrNotFound = errors.New("not found")

// Repository is the generic part of every canonical collection.
type Repository[T any] interface {
	Add(ctx context.Context, entity *T) error
	Count(ctx context.Context) (int64, error)
	GetAll(ctx context.Context) ([]T, error)
	GetByID(ctx context.Context, id int64) (*T, error)
}

type UserRepository interface {
	Repository[models.User]
	// FindByEmail matches active users case-insensitively.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type RequestRepository interface {
	Repository[models.Request]
}

type EnvironmentRepository interface {
	Repository[models.Environment]
}

type ConfigEntryRepository interface {
	Count(ctx context.Context) (int64, error)
	// ReplaceFile deletes every entry of fileName and inserts entries.
	ReplaceFile(ctx context.Context, fileName string, entries []models.ConfigEntry) error
	// ListByFile returns active entries of fileName in insertion order.
	ListByFile(ctx context.Context, fileName string) ([]models.ConfigEntry, error)
	Find(ctx context.Context, fileName, section, key string) (*models.ConfigEntry, error)
	UpdateValue(ctx context.Context, fileName, section, key, value, actor string, at time.Time) error
}

// Catalog groups the collections of one canonical store.
type Catalog interface {
	Users() UserRepository
	Requests() RequestRepository
	Environments() EnvironmentRepository
	ConfigEntries() ConfigEntryRepository
	Close() error
}
