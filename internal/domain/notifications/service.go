package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"child-immunization-history/internal/domain/status"
	"child-immunization-history/internal/platform/logger"
	"child-immunization-history/internal/platform/metrics"
	"child-immunization-history/internal/ports/lock"
)

const DefaultMaxRetries = 3

// Reporter entrega la evaluación vigente del niño.
type Reporter interface {
	Report(ctx context.Context, childID string) (status.Report, error)
}

type Options struct {
	MaxRetries int
	Metrics    metrics.Recorder
	Logger     logger.Logger
}

type Service struct {
	repo       Repository
	reports    Reporter
	locker     lock.Locker
	metrics    metrics.Recorder
	log        logger.Logger
	now        func() time.Time
	maxRetries int
}

func NewService(repo Repository, reports Reporter, locker lock.Locker, opts Options) *Service {
	s := &Service{
		repo:       repo,
		reports:    reports,
		locker:     locker,
		metrics:    opts.Metrics,
		log:        opts.Logger,
		now:        time.Now,
		maxRetries: opts.MaxRetries,
	}
	if s.metrics == nil {
		s.metrics = metrics.Nop{}
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	if s.maxRetries <= 0 {
		s.maxRetries = DefaultMaxRetries
	}
	return s
}

// SyncResult resume lo escrito por una sincronización.
type SyncResult struct {
	Created    int
	Updated    int
	Duplicates int
	Attempts   int
}

// Sync reconcilia las notificaciones de un niño con su evaluación actual.
// Toma el lock del niño y reintenta cuando el store detecta una activa duplicada.
func (s *Service) Sync(ctx context.Context, childID string) (SyncResult, error) {
	childID = strings.TrimSpace(childID)
	if childID == "" {
		return SyncResult{}, ErrNotFound
	}

	release, err := s.locker.Acquire(ctx, "notifications:"+childID)
	if err != nil {
		s.metrics.RecordReconciliation(metrics.ResultError)
		return SyncResult{}, err
	}
	defer release()

	log := s.log.With(map[string]any{"child_id": childID})

	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		res, err := s.syncOnce(ctx, childID)
		res.Attempts = attempt

		switch {
		case err == nil:
			if res.Created+res.Updated == 0 {
				s.metrics.RecordReconciliation(metrics.ResultNoop)
			} else {
				s.metrics.RecordReconciliation(metrics.ResultOK)
				log.Debug("notifications reconciled", map[string]any{
					"created": res.Created,
					"updated": res.Updated,
					"attempt": attempt,
				})
			}
			if res.Duplicates > 0 {
				log.Warn("duplicate active notifications", map[string]any{"count": res.Duplicates})
			}
			return res, nil

		case errors.Is(err, ErrConflict):
			s.metrics.RecordConflictRetry()
			log.Info("notification conflict, retrying", map[string]any{"attempt": attempt})
			continue

		default:
			s.metrics.RecordReconciliation(metrics.ResultError)
			return res, err
		}
	}

	s.metrics.RecordReconciliation(metrics.ResultConflict)
	return SyncResult{Attempts: s.maxRetries}, fmt.Errorf("sync child %s: %w", childID, ErrConflict)
}

// SyncChild adapta Sync para los llamadores que solo necesitan el error.
func (s *Service) SyncChild(ctx context.Context, childID string) error {
	_, err := s.Sync(ctx, childID)
	return err
}

func (s *Service) syncOnce(ctx context.Context, childID string) (SyncResult, error) {
	rep, err := s.reports.Report(ctx, childID)
	if err != nil {
		return SyncResult{}, fmt.Errorf("evaluate child: %w", err)
	}
	for kind, n := range countDiagnostics(rep) {
		s.metrics.RecordDiagnostics(kind, n)
	}

	existing, err := s.repo.ListByChild(ctx, childID)
	if err != nil {
		return SyncResult{}, fmt.Errorf("load notifications: %w", err)
	}

	plan := Reconcile(childID, rep.Obligations, existing, s.now())
	res := SyncResult{
		Created:    len(plan.ToCreate),
		Updated:    len(plan.ToUpdate),
		Duplicates: len(plan.Duplicates),
	}
	if plan.Empty() {
		return res, nil
	}

	if err := s.repo.Upsert(ctx, plan.Writes()); err != nil {
		return SyncResult{}, err
	}
	s.metrics.RecordNotificationsWritten(metrics.OpCreate, res.Created)
	s.metrics.RecordNotificationsWritten(metrics.OpUpdate, res.Updated)
	return res, nil
}

func countDiagnostics(rep status.Report) map[string]int {
	out := map[string]int{}
	for _, d := range rep.Diagnostics {
		out[string(d.Kind)]++
	}
	return out
}

func (s *Service) ListByChild(ctx context.Context, childID string) ([]Notification, error) {
	return s.repo.ListByChild(ctx, childID)
}

func (s *Service) GetByID(ctx context.Context, id string) (Notification, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Notification{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// MarkSent registra la entrega al tutor.
func (s *Service) MarkSent(ctx context.Context, id string) (Notification, error) {
	return s.transition(ctx, id, MarkSent)
}

// MarkRead registra la lectura por el tutor.
func (s *Service) MarkRead(ctx context.Context, id string) (Notification, error) {
	return s.transition(ctx, id, MarkRead)
}

func (s *Service) transition(ctx context.Context, id string, fn func(Notification, time.Time) (Notification, bool, error)) (Notification, error) {
	n, err := s.GetByID(ctx, id)
	if err != nil {
		return Notification{}, err
	}

	release, err := s.locker.Acquire(ctx, "notifications:"+n.ChildID)
	if err != nil {
		return Notification{}, err
	}
	defer release()

	// Releer bajo lock: una sincronización pudo haberla pasado a APLICADA.
	if n, err = s.repo.GetByID(ctx, n.ID); err != nil {
		return Notification{}, err
	}

	updated, changed, err := fn(n, s.now())
	if err != nil || !changed {
		return updated, err
	}
	if err := s.repo.Upsert(ctx, []Notification{updated}); err != nil {
		return Notification{}, err
	}
	s.metrics.RecordNotificationsWritten(metrics.OpUpdate, 1)
	return updated, nil
}

// PurgeApplied elimina las notificaciones APLICADA más viejas que retention.
func (s *Service) PurgeApplied(ctx context.Context, retention time.Duration) (int, error) {
	n, err := s.repo.PurgeApplied(ctx, s.now().Add(-retention))
	if err != nil {
		return 0, err
	}
	s.metrics.RecordPurged(n)
	return n, nil
}
