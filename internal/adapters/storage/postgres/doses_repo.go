package postgres

import (
	"context"
	"database/sql"

	"child-immunization-history/internal/domain/doses"
)

var doseColumns = []string{
	"id", "child_id", "vaccine_id", "dose_number", "application_date",
	"health_center", "lot", "recorded_by", "created_at",
}

type DosesRepo struct {
	db *sql.DB
}

func NewDosesRepo(db *sql.DB) *DosesRepo {
	return &DosesRepo{db: db}
}

func (r *DosesRepo) Create(ctx context.Context, d doses.Dose) error {
	query, args, err := psql.Insert("administered_doses").
		Columns(doseColumns...).
		Values(
			d.ID, d.ChildID, d.VaccineID, d.DoseNumber, d.ApplicationDate,
			d.HealthCenter, d.Lot, d.RecordedBy, d.CreatedAt,
		).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return doses.ErrConflict
		}
		return err
	}
	return nil
}

func (r *DosesRepo) ListByChild(ctx context.Context, childID string) ([]doses.Dose, error) {
	query, args, err := psql.Select(doseColumns...).
		From("administered_doses").
		Where("child_id = ?", childID).
		OrderBy("application_date ASC", "created_at ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]doses.Dose, 0)
	for rows.Next() {
		var d doses.Dose
		if err := rows.Scan(
			&d.ID,
			&d.ChildID,
			&d.VaccineID,
			&d.DoseNumber,
			&d.ApplicationDate,
			&d.HealthCenter,
			&d.Lot,
			&d.RecordedBy,
			&d.CreatedAt,
		); err != nil {
			return nil, err
		}
		d.ApplicationDate = dateOnly(d.ApplicationDate)
		out = append(out, d)
	}
	return out, rows.Err()
}
