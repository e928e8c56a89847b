// Package sweep recalcula periódicamente las notificaciones de todos los niños,
// para que los avisos cambien de tipo con el paso de los días aunque nadie registre dosis.
package sweep

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"child-immunization-history/internal/platform/logger"
	"child-immunization-history/internal/platform/metrics"
)

const DefaultConcurrency = 8

type ChildLister interface {
	ListIDs(ctx context.Context) ([]string, error)
}

type Syncer interface {
	SyncChild(ctx context.Context, childID string) error
}

type Summary struct {
	Children int
	Failed   int
	Duration time.Duration
}

type Scheduler struct {
	children    ChildLister
	syncer      Syncer
	log         logger.Logger
	metrics     metrics.Recorder
	concurrency int
}

func NewScheduler(children ChildLister, syncer Syncer, log logger.Logger, rec metrics.Recorder, concurrency int) *Scheduler {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if log == nil {
		log = logger.Nop()
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Scheduler{
		children:    children,
		syncer:      syncer,
		log:         log,
		metrics:     rec,
		concurrency: concurrency,
	}
}

// Start corre un barrido al iniciar y luego uno por interval hasta que ctx se cancele.
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.Info("sweep scheduler started", map[string]any{
		"interval":    interval.String(),
		"concurrency": s.concurrency,
	})

	s.runLogged(ctx)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("sweep scheduler stopped", nil)
			return
		case <-ticker.C:
			s.runLogged(ctx)
		}
	}
}

func (s *Scheduler) runLogged(ctx context.Context) {
	if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
		s.log.Error("sweep failed", map[string]any{"err": err.Error()})
	}
}

// RunOnce sincroniza cada niño una vez. Un fallo individual se registra y no corta el barrido.
func (s *Scheduler) RunOnce(ctx context.Context) (Summary, error) {
	start := time.Now()

	ids, err := s.children.ListIDs(ctx)
	if err != nil {
		return Summary{}, err
	}

	var failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, id := range ids {
		id := id
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := s.syncer.SyncChild(gctx, id); err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				failed.Add(1)
				s.log.Warn("child sync failed", map[string]any{"child_id": id, "err": err.Error()})
			}
			return nil
		})
	}
	err = g.Wait()

	sum := Summary{Children: len(ids), Failed: int(failed.Load()), Duration: time.Since(start)}
	s.metrics.RecordSweep(sum.Duration, sum.Children)
	s.log.Info("sweep finished", map[string]any{
		"children":    sum.Children,
		"failed":      sum.Failed,
		"duration_ms": sum.Duration.Milliseconds(),
	})
	return sum, err
}
