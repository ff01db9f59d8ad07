package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/BartekS5/legacysync/internal/store"
	"github.com/BartekS5/legacysync/pkg/models"
)

var userColumns = []string{
	"login", "name", "email", "area", "title", "phone", "is_admin", "can_approve",
	"active", "created_at", "updated_at", "created_by", "updated_by",
}

// email_key is the Unicode lower-cased email that FindByEmail matches on.
var userInsertColumns = append(append([]string{}, userColumns...), "email_key")

func emailKey(email string) string { return strings.ToLower(email) }

type userRepo struct{ s *Store }

func (r *userRepo) Add(ctx context.Context, u *models.User) error {
	id, err := r.s.insert(ctx, r.s.db, "users", userInsertColumns,
		u.Login, u.Name, u.Email, nullableString(u.Area), nullableString(u.Title), nullableString(u.Phone),
		u.IsAdmin, u.CanApprove, u.Active, u.CreatedAt, nullableTime(u.UpdatedAt),
		nullableString(u.CreatedBy), nullableString(u.UpdatedBy), emailKey(u.Email))
	if err != nil {
		return err
	}
	u.ID = id
	return nil
}

func (r *userRepo) Count(ctx context.Context) (int64, error) {
	return r.s.count(ctx, "users")
}

func (r *userRepo) GetAll(ctx context.Context) ([]models.User, error) {
	return r.list(ctx, "ORDER BY id")
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.one(ctx, "WHERE id = ?", id)
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.one(ctx, "WHERE email_key = ? AND active = ? ORDER BY id", emailKey(email), true)
}

func (r *userRepo) one(ctx context.Context, where string, args ...any) (*models.User, error) {
	users, err := r.list(ctx, where, args...)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, store.ErrNotFound
	}
	return &users[0], nil
}

func (r *userRepo) list(ctx context.Context, where string, args ...any) ([]models.User, error) {
	rows, err := r.s.query(ctx, "SELECT id, "+selectList(userColumns)+" FROM users "+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func scanUser(rows *sql.Rows) (models.User, error) {
	var u models.User
	var area, title, phone, createdBy, updatedBy sql.NullString
	var created, updated nullTime
	err := rows.Scan(&u.ID, &u.Login, &u.Name, &u.Email, &area, &title, &phone,
		&u.IsAdmin, &u.CanApprove, &u.Active, &created, &updated, &createdBy, &updatedBy)
	if err != nil {
		return u, fmt.Errorf("failed to scan user: %w", err)
	}
	u.Area, u.Title, u.Phone = area.String, title.String, phone.String
	u.CreatedBy, u.UpdatedBy = createdBy.String, updatedBy.String
	if u.CreatedAt, err = created.required(); err != nil {
		return u, err
	}
	if u.UpdatedAt, err = updated.optional(); err != nil {
		return u, err
	}
	return u, nil
}
