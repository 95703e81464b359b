package cron

import (
	"context"
	"log/slog"
	"time"
)

// StaleRunRecoverer resets payroll periods whose processing run was abandoned.
type StaleRunRecoverer interface {
	RecoverStaleRuns(ctx context.Context, staleAfter time.Duration) (int, error)
}

// StaleRunRecoveryJob builds the job returning abandoned processing runs to draft.
func StaleRunRecoveryJob(recoverer StaleRunRecoverer, staleAfter, interval time.Duration, logger *slog.Logger) Job {
	if logger == nil {
		logger = slog.Default()
	}
	return Job{
		Name:     "payroll_stale_run_recovery",
		Interval: interval,
		Timeout:  interval,
		Run: func(ctx context.Context) error {
			n, err := recoverer.RecoverStaleRuns(ctx, staleAfter)
			if err != nil {
				return err
			}
			if n > 0 {
				logger.Warn("reset stale payroll runs", "count", n, "stale_after", staleAfter)
			}
			return nil
		},
	}
}
