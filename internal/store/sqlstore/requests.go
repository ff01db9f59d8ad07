package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/BartekS5/legacysync/internal/store"
	"github.com/BartekS5/legacysync/pkg/models"
)

var requestColumns = []string{
	"number", "title", "description", "justification", "classification", "status",
	"priority", "requester", "requester_area", "environment_id", "user_id", "active",
	"created_at", "updated_at", "created_by", "updated_by",
}

type requestRepo struct{ s *Store }

func (r *requestRepo) Add(ctx context.Context, q *models.Request) error {
	var userID any
	if q.UserID != nil {
		userID = *q.UserID
	}
	id, err := r.s.insert(ctx, r.s.db, "requests", requestColumns,
		q.Number, q.Title, nullableString(q.Description), nullableString(q.Justification),
		string(q.Classification), string(q.Status), q.Priority, q.Requester,
		nullableString(q.RequesterArea), q.EnvironmentID, userID, q.Active,
		q.CreatedAt, nullableTime(q.UpdatedAt), nullableString(q.CreatedBy), nullableString(q.UpdatedBy))
	if err != nil {
		return err
	}
	q.ID = id
	return nil
}

func (r *requestRepo) Count(ctx context.Context) (int64, error) {
	return r.s.count(ctx, "requests")
}

func (r *requestRepo) GetAll(ctx context.Context) ([]models.Request, error) {
	return r.list(ctx, "ORDER BY id")
}

func (r *requestRepo) GetByID(ctx context.Context, id int64) (*models.Request, error) {
	out, err := r.list(ctx, "WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, store.ErrNotFound
	}
	return &out[0], nil
}

func (r *requestRepo) list(ctx context.Context, where string, args ...any) ([]models.Request, error) {
	rows, err := r.s.query(ctx, "SELECT id, "+selectList(requestColumns)+" FROM requests "+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var out []models.Request
	for rows.Next() {
		var q models.Request
		var desc, just, area, createdBy, updatedBy sql.NullString
		var class, status string
		var userID sql.NullInt64
		var created, updated nullTime
		err := rows.Scan(&q.ID, &q.Number, &q.Title, &desc, &just, &class, &status,
			&q.Priority, &q.Requester, &area, &q.EnvironmentID, &userID, &q.Active,
			&created, &updated, &createdBy, &updatedBy)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		q.Description, q.Justification, q.RequesterArea = desc.String, just.String, area.String
		q.Classification, q.Status = models.Classification(class), models.RequestStatus(status)
		q.CreatedBy, q.UpdatedBy = createdBy.String, updatedBy.String
		if userID.Valid {
			id := userID.Int64
			q.UserID = &id
		}
		if q.CreatedAt, err = created.required(); err != nil {
			return nil, err
		}
		if q.UpdatedAt, err = updated.optional(); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}
