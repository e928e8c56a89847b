// Package cleanup purga las notificaciones APLICADA vencidas.
package cleanup

import (
	"context"
	"time"

	"child-immunization-history/internal/platform/logger"
)

type Purger interface {
	PurgeApplied(ctx context.Context, retention time.Duration) (int, error)
}

type Job struct {
	purger    Purger
	log       logger.Logger
	retention time.Duration
}

// NewJob con retention <= 0 deja el job desactivado.
func NewJob(purger Purger, log logger.Logger, retention time.Duration) *Job {
	if log == nil {
		log = logger.Nop()
	}
	return &Job{purger: purger, log: log, retention: retention}
}

func (j *Job) Enabled() bool {
	return j.retention > 0
}

// Run es idempotente: sin filas para borrar no es error.
func (j *Job) Run(ctx context.Context) (int, error) {
	if !j.Enabled() {
		return 0, nil
	}
	start := time.Now()

	n, err := j.purger.PurgeApplied(ctx, j.retention)
	if err != nil {
		j.log.Error("notification cleanup failed", map[string]any{
			"err":            err.Error(),
			"retention_days": int(j.retention.Hours() / 24),
		})
		return 0, err
	}

	j.log.Info("notification cleanup finished", map[string]any{
		"deleted":        n,
		"retention_days": int(j.retention.Hours() / 24),
		"duration_ms":    time.Since(start).Milliseconds(),
	})
	return n, nil
}

// Start ejecuta Run cada interval hasta que ctx se cancele.
func (j *Job) Start(ctx context.Context, interval time.Duration) {
	if !j.Enabled() {
		j.log.Info("notification cleanup disabled", nil)
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = j.Run(ctx)
		}
	}
}
