package postgres

import (
	"context"
	"database/sql"
	"errors"

	"child-immunization-history/internal/domain/schedule"
)

var entryColumns = []string{
	"vaccine_id", "vaccine_name", "dose_number",
	"target_age_days", "min_age_days", "max_age_days", "min_interval_days", "is_booster",
}

// CatalogRepo persiste versiones del calendario; una sola está activa.
type CatalogRepo struct {
	db *sql.DB
}

func NewCatalogRepo(db *sql.DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

func (r *CatalogRepo) LoadCatalog(ctx context.Context) (schedule.Catalog, error) {
	var version string
	err := r.db.QueryRowContext(ctx, `SELECT version FROM schedule_catalogs WHERE active`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return schedule.Catalog{}, schedule.ErrEmptyCatalog
	}
	if err != nil {
		return schedule.Catalog{}, err
	}

	query, args, err := psql.Select(entryColumns...).
		From("schedule_entries").
		Where("catalog_version = ?", version).
		OrderBy("position ASC").
		ToSql()
	if err != nil {
		return schedule.Catalog{}, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return schedule.Catalog{}, err
	}
	defer rows.Close()

	c := schedule.Catalog{Version: version}
	for rows.Next() {
		var (
			e                  schedule.Entry
			minAge, maxAge, iv sql.NullInt32
		)
		if err := rows.Scan(
			&e.VaccineID,
			&e.VaccineName,
			&e.DoseNumber,
			&e.TargetAgeDays,
			&minAge,
			&maxAge,
			&iv,
			&e.IsBooster,
		); err != nil {
			return schedule.Catalog{}, err
		}
		e.MinAgeDays = intPtr(minAge)
		e.MaxAgeDays = intPtr(maxAge)
		e.MinIntervalDays = intPtr(iv)
		c.Entries = append(c.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return schedule.Catalog{}, err
	}
	if len(c.Entries) == 0 {
		return schedule.Catalog{}, schedule.ErrEmptyCatalog
	}
	return c, nil
}

// ReplaceCatalog guarda c (reemplazando sus entradas si la versión ya existía) y lo deja activo.
func (r *CatalogRepo) ReplaceCatalog(ctx context.Context, c schedule.Catalog) (err error) {
	if c.Version == "" {
		return errors.New("catalog version required")
	}
	if len(c.Entries) == 0 {
		return schedule.ErrEmptyCatalog
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `UPDATE schedule_catalogs SET active = FALSE WHERE active`); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO schedule_catalogs (version, active, loaded_at) VALUES ($1, TRUE, now())
		ON CONFLICT (version) DO UPDATE SET active = TRUE, loaded_at = now()
	`, c.Version); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM schedule_entries WHERE catalog_version = $1`, c.Version); err != nil {
		return err
	}

	ins := psql.Insert("schedule_entries").Columns(append([]string{"catalog_version", "position"}, entryColumns...)...)
	for i, e := range c.Entries {
		ins = ins.Values(
			c.Version, i,
			e.VaccineID, e.VaccineName, e.DoseNumber,
			e.TargetAgeDays, nullInt(e.MinAgeDays), nullInt(e.MaxAgeDays), nullInt(e.MinIntervalDays), e.IsBooster,
		)
	}
	query, args, err := ins.ToSql()
	if err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}

	return tx.Commit()
}
