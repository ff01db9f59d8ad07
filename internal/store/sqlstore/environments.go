package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/BartekS5/legacysync/internal/store"
	"github.com/BartekS5/legacysync/pkg/models"
)

var environmentColumns = []string{
	"name", "description", "type", "server", "port", "cics_region", "active",
	"created_at", "updated_at", "created_by", "updated_by",
}

type environmentRepo struct{ s *Store }

func (r *environmentRepo) Add(ctx context.Context, e *models.Environment) error {
	var port any
	if e.Port != nil {
		port = *e.Port
	}
	id, err := r.s.insert(ctx, r.s.db, "environments", environmentColumns,
		e.Name, nullableString(e.Description), int(e.Type), nullableString(e.Server), port,
		nullableString(e.CICSRegion), e.Active, e.CreatedAt, nullableTime(e.UpdatedAt),
		nullableString(e.CreatedBy), nullableString(e.UpdatedBy))
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

func (r *environmentRepo) Count(ctx context.Context) (int64, error) {
	return r.s.count(ctx, "environments")
}

func (r *environmentRepo) GetAll(ctx context.Context) ([]models.Environment, error) {
	return r.list(ctx, "ORDER BY id")
}

func (r *environmentRepo) GetByID(ctx context.Context, id int64) (*models.Environment, error) {
	out, err := r.list(ctx, "WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, store.ErrNotFound
	}
	return &out[0], nil
}

func (r *environmentRepo) list(ctx context.Context, where string, args ...any) ([]models.Environment, error) {
	rows, err := r.s.query(ctx, "SELECT id, "+selectList(environmentColumns)+" FROM environments "+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query environments: %w", err)
	}
	defer rows.Close()

	var out []models.Environment
	for rows.Next() {
		var e models.Environment
		var typ int
		var desc, server, region, createdBy, updatedBy sql.NullString
		var port sql.NullInt64
		var created, updated nullTime
		err := rows.Scan(&e.ID, &e.Name, &desc, &typ, &server, &port, &region, &e.Active,
			&created, &updated, &createdBy, &updatedBy)
		if err != nil {
			return nil, fmt.Errorf("failed to scan environment: %w", err)
		}
		e.Type = models.EnvironmentType(typ)
		e.Description, e.Server, e.CICSRegion = desc.String, server.String, region.String
		e.CreatedBy, e.UpdatedBy = createdBy.String, updatedBy.String
		if port.Valid {
			p := int(port.Int64)
			e.Port = &p
		}
		if e.CreatedAt, err = created.required(); err != nil {
			return nil, err
		}
		if e.UpdatedAt, err = updated.optional(); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
