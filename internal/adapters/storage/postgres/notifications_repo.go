package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"child-immunization-history/internal/domain/notifications"

	"github.com/lib/pq"
)

// purgeBatch limita cuántas filas borra cada DELETE para no retener locks largos.
const purgeBatch = 500

var notificationColumns = []string{
	"id", "child_id", "vaccine_id", "dose_number",
	"type", "state", "scheduled_date", "message",
	"created_at", "updated_at", "sent_at", "read_at", "applied_at",
}

type NotificationsRepo struct {
	db *sql.DB
}

func NewNotificationsRepo(db *sql.DB) *NotificationsRepo {
	return &NotificationsRepo{db: db}
}

func (r *NotificationsRepo) ListByChild(ctx context.Context, childID string) ([]notifications.Notification, error) {
	query, args, err := psql.Select(notificationColumns...).
		From("notifications").
		Where("child_id = ?", childID).
		OrderBy("scheduled_date ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]notifications.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *NotificationsRepo) GetByID(ctx context.Context, id string) (notifications.Notification, error) {
	query, args, err := psql.Select(notificationColumns...).From("notifications").Where("id = ?", id).ToSql()
	if err != nil {
		return notifications.Notification{}, err
	}

	n, err := scanNotification(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return notifications.Notification{}, notifications.ErrNotFound
	}
	return n, err
}

// Upsert escribe el lote en una transacción. El índice único parcial sobre las activas
// convierte una carrera entre procesos en ErrConflict.
func (r *NotificationsRepo) Upsert(ctx context.Context, items []notifications.Notification) (err error) {
	if len(items) == 0 {
		return nil
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

	for _, n := range items {
		query, args, buildErr := psql.Insert("notifications").
			Columns(notificationColumns...).
			Values(
				n.ID, n.ChildID, n.VaccineID, n.DoseNumber,
				string(n.Type), string(n.State), n.ScheduledDate, n.Message,
				n.CreatedAt, n.UpdatedAt, nullTime(n.SentAt), nullTime(n.ReadAt), nullTime(n.AppliedAt),
			).
			Suffix(`ON CONFLICT (id) DO UPDATE SET
				type = EXCLUDED.type,
				state = EXCLUDED.state,
				scheduled_date = EXCLUDED.scheduled_date,
				message = EXCLUDED.message,
				updated_at = EXCLUDED.updated_at,
				sent_at = EXCLUDED.sent_at,
				read_at = EXCLUDED.read_at,
				applied_at = EXCLUDED.applied_at`).
			ToSql()
		if buildErr != nil {
			return buildErr
		}

		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %s#%d", notifications.ErrConflict, n.VaccineID, n.DoseNumber)
			}
			return err
		}
	}

	return tx.Commit()
}

func (r *NotificationsRepo) PurgeApplied(ctx context.Context, before time.Time) (int, error) {
	total := 0
	for {
		ids, err := r.appliedBefore(ctx, before, purgeBatch)
		if err != nil {
			return total, err
		}
		if len(ids) == 0 {
			return total, nil
		}

		res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = ANY($1::text[])`, pq.Array(ids))
		if err != nil {
			return total, err
		}
		n, _ := res.RowsAffected()
		total += int(n)

		if len(ids) < purgeBatch {
			return total, nil
		}
	}
}

func (r *NotificationsRepo) appliedBefore(ctx context.Context, before time.Time, limit int) ([]string, error) {
	query, args, err := psql.Select("id").
		From("notifications").
		Where("state = ?", string(notifications.StateAplicada)).
		Where("applied_at < ?", before).
		OrderBy("applied_at ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0, limit)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanNotification(row rowScanner) (notifications.Notification, error) {
	var (
		n                         notifications.Notification
		typ, state                string
		sentAt, readAt, appliedAt sql.NullTime
	)
	if err := row.Scan(
		&n.ID,
		&n.ChildID,
		&n.VaccineID,
		&n.DoseNumber,
		&typ,
		&state,
		&n.ScheduledDate,
		&n.Message,
		&n.CreatedAt,
		&n.UpdatedAt,
		&sentAt,
		&readAt,
		&appliedAt,
	); err != nil {
		return notifications.Notification{}, err
	}

	n.Type = notifications.Type(typ)
	n.State = notifications.State(state)
	n.ScheduledDate = dateOnly(n.ScheduledDate)
	n.SentAt = timePtr(sentAt)
	n.ReadAt = timePtr(readAt)
	n.AppliedAt = timePtr(appliedAt)
	return n, nil
}
