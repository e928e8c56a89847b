package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"child-immunization-history/internal/domain/children"
)

var childColumns = []string{
	"id", "guardian_user_id",
	"first_name", "last_name", "document_number", "sex",
	"birth_date", "created_at", "updated_at",
}

type ChildrenRepo struct {
	db *sql.DB
}

func NewChildrenRepo(db *sql.DB) *ChildrenRepo {
	return &ChildrenRepo{db: db}
}

func (r *ChildrenRepo) Create(ctx context.Context, c children.Child) error {
	query, args, err := psql.Insert("children").
		Columns(childColumns...).
		Values(
			c.ID, c.GuardianUserID,
			c.FirstName, c.LastName, c.DocumentNumber, string(c.Sex),
			c.BirthDate, c.CreatedAt, c.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *ChildrenRepo) GetByID(ctx context.Context, id string) (children.Child, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return children.Child{}, children.ErrNotFound
	}

	query, args, err := psql.Select(childColumns...).From("children").Where("id = ?", id).ToSql()
	if err != nil {
		return children.Child{}, err
	}

	c, err := scanChild(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return children.Child{}, children.ErrNotFound
	}
	return c, err
}

func (r *ChildrenRepo) ListByGuardian(ctx context.Context, guardianUserID string) ([]children.Child, error) {
	guardianUserID = strings.TrimSpace(guardianUserID)
	if guardianUserID == "" {
		return nil, nil
	}

	query, args, err := psql.Select(childColumns...).
		From("children").
		Where("guardian_user_id = ?", guardianUserID).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]children.Child, 0)
	for rows.Next() {
		c, err := scanChild(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ChildrenRepo) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM children ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func scanChild(row rowScanner) (children.Child, error) {
	var (
		c   children.Child
		sex string
	)
	if err := row.Scan(
		&c.ID,
		&c.GuardianUserID,
		&c.FirstName,
		&c.LastName,
		&c.DocumentNumber,
		&sex,
		&c.BirthDate,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return children.Child{}, err
	}
	c.Sex = children.Sex(sex)
	c.BirthDate = dateOnly(c.BirthDate)
	return c, nil
}
