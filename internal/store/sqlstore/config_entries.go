package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/BartekS5/legacysync/internal/store"
	"github.com/BartekS5/legacysync/pkg/models"
)

var configEntryColumns = []string{
	"file_name", "section", "entry_key", "value", "description", "type", "critical",
	"active", "created_at", "updated_at", "created_by", "updated_by",
}

type configEntryRepo struct{ s *Store }

func (r *configEntryRepo) Count(ctx context.Context) (int64, error) {
	return r.s.count(ctx, "config_entries")
}

// ReplaceFile swaps the whole entry set of a file inside one transaction.
func (r *configEntryRepo) ReplaceFile(ctx context.Context, fileName string, entries []models.ConfigEntry) error {
	tx, err := r.s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, r.s.d.rebind("DELETE FROM config_entries WHERE file_name = ?"), fileName); err != nil {
		return fmt.Errorf("failed to delete entries of '%s': %w", fileName, err)
	}
	for i := range entries {
		e := &entries[i]
		id, err := r.s.insert(ctx, tx, "config_entries", configEntryColumns,
			fileName, e.Section, e.Key, nullableString(e.Value), nullableString(e.Description),
			string(e.Type), e.Critical, e.Active, e.CreatedAt, nullableTime(e.UpdatedAt),
			nullableString(e.CreatedBy), nullableString(e.UpdatedBy))
		if err != nil {
			return err
		}
		e.ID = id
	}
	return tx.Commit()
}

func (r *configEntryRepo) ListByFile(ctx context.Context, fileName string) ([]models.ConfigEntry, error) {
	return r.list(ctx, "WHERE file_name = ? AND active = ? ORDER BY id", fileName, true)
}

func (r *configEntryRepo) Find(ctx context.Context, fileName, section, key string) (*models.ConfigEntry, error) {
	out, err := r.list(ctx, "WHERE file_name = ? AND section = ? AND entry_key = ? AND active = ? ORDER BY id",
		fileName, section, key, true)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, store.ErrNotFound
	}
	return &out[0], nil
}

func (r *configEntryRepo) UpdateValue(ctx context.Context, fileName, section, key, value, actor string, at time.Time) error {
	res, err := r.s.db.ExecContext(ctx, r.s.d.rebind(
		"UPDATE config_entries SET value = ?, updated_at = ?, updated_by = ? "+
			"WHERE file_name = ? AND section = ? AND entry_key = ? AND active = ?"),
		nullableString(value), at, actor, fileName, section, key, true)
	if err != nil {
		return fmt.Errorf("failed to update %s [%s] %s: %w", fileName, section, key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *configEntryRepo) list(ctx context.Context, where string, args ...any) ([]models.ConfigEntry, error) {
	rows, err := r.s.query(ctx, "SELECT id, "+selectList(configEntryColumns)+" FROM config_entries "+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query config entries: %w", err)
	}
	defer rows.Close()

	var out []models.ConfigEntry
	for rows.Next() {
		var e models.ConfigEntry
		var value, desc, createdBy, updatedBy sql.NullString
		var typ string
		var created, updated nullTime
		err := rows.Scan(&e.ID, &e.FileName, &e.Section, &e.Key, &value, &desc, &typ,
			&e.Critical, &e.Active, &created, &updated, &createdBy, &updatedBy)
		if err != nil {
			return nil, fmt.Errorf("failed to scan config entry: %w", err)
		}
		e.Value, e.Description, e.Type = value.String, desc.String, models.ValueType(typ)
		e.CreatedBy, e.UpdatedBy = createdBy.String, updatedBy.String
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
