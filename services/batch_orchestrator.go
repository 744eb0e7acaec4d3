package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"autoapply/models"
	"autoapply/utils"
)

var orchestratorLog = utils.GlobalLogger.Named("batch_orchestrator")

// BatchRun is one finished batch.
type BatchRun struct {
	RunID      string                     `json:"run_id"`
	StartedAt  time.Time                  `json:"started_at"`
	FinishedAt time.Time                  `json:"finished_at"`
	Results    []models.ApplicationResult `json:"results"`
	Counts     ReportCounts               `json:"counts"`
}

// BatchOrchestrator runs targets strictly one after another on the shared
// browser. Single-job calls go through the same lock so there is never more
// than one page in flight.
type BatchOrchestrator struct {
	mu       sync.Mutex
	sessions SessionProvider
	engine   *ApplicationEngine
	notifier Notifier
	limiter  *rate.Limiter
	now      func() time.Time
}

// NewBatchOrchestrator paces job starts at least interval apart. A nil
// notifier disables the report.
func NewBatchOrchestrator(sessions SessionProvider, engine *ApplicationEngine, notifier Notifier, interval time.Duration) *BatchOrchestrator {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &BatchOrchestrator{
		sessions: sessions,
		engine:   engine,
		notifier: notifier,
		limiter:  rate.NewLimiter(limit, 1),
		now:      time.Now,
	}
}

// RunBatch applies to every target and returns one result per target, in
// order. The only error is a browser that cannot be started.
func (o *BatchOrchestrator) RunBatch(ctx context.Context, targets []models.ApplicationTarget, profile models.UserProfile) ([]models.ApplicationResult, error) {
	run, err := o.Run(ctx, targets, profile)
	if err != nil {
		return nil, err
	}
	return run.Results, nil
}

// Run is RunBatch plus the run metadata used by the API.
func (o *BatchOrchestrator) Run(ctx context.Context, targets []models.ApplicationTarget, profile models.UserProfile) (*BatchRun, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.sessions.EnsureStarted(ctx); err != nil {
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	run := &BatchRun{
		RunID:     uuid.NewString(),
		StartedAt: o.now(),
		Results:   make([]models.ApplicationResult, 0, len(targets)),
	}
	orchestratorLog.Info("Starting batch", utils.Fields{"run_id": run.RunID, "jobs": len(targets)})

	for i, target := range targets {
		if err := o.limiter.Wait(ctx); err != nil {
			log.Printf("Batch %s cancelled before job %d: %v", run.RunID, i+1, err)
			for _, rest := range targets[i:] {
				run.Results = append(run.Results, cancelledResult(rest))
			}
			break
		}
		log.Printf("Batch %s: job %d/%d", run.RunID, i+1, len(targets))
		run.Results = append(run.Results, o.engine.ApplyToJob(ctx, target, profile))
	}

	run.FinishedAt = o.now()
	report := NewBatchReport(run.RunID, profile.Name, run.StartedAt, run.FinishedAt, run.Results)
	run.Counts = report.Counts()
	orchestratorLog.Info("Batch finished", utils.Fields{
		"run_id":     run.RunID,
		"successful": run.Counts.Successful,
		"partial":    run.Counts.Partial,
		"failed":     run.Counts.Failed,
	})

	o.notify(ctx, profile.Email, report)
	return run, nil
}

// ApplyOne runs a single target outside a batch. No report is sent.
func (o *BatchOrchestrator) ApplyOne(ctx context.Context, target models.ApplicationTarget, profile models.UserProfile) (models.ApplicationResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if ClassifyPlatform(target.ResolveURL()) != PlatformUnsupported {
		if err := o.sessions.EnsureStarted(ctx); err != nil {
			return models.ApplicationResult{}, fmt.Errorf("failed to start browser: %w", err)
		}
	}
	if err := o.limiter.Wait(ctx); err != nil {
		return cancelledResult(target), nil
	}
	return o.engine.ApplyToJob(ctx, target, profile), nil
}

// notify never fails the batch; delivery problems are only logged.
func (o *BatchOrchestrator) notify(ctx context.Context, to string, report BatchReport) {
	if o.notifier == nil || to == "" {
		return
	}
	if err := o.notifier.SendBatchReport(context.WithoutCancel(ctx), to, report); err != nil {
		orchestratorLog.Error("Failed to send batch report", err, utils.Fields{"run_id": report.RunID})
	}
}

func cancelledResult(target models.ApplicationTarget) models.ApplicationResult {
	url := target.ResolveURL()
	return failedResult(models.ResultParams{
		JobID:    target.Identifier(),
		JobTitle: target.Title,
		Company:  target.Company,
		JobURL:   url,
		Platform: string(ClassifyPlatform(url)),
	}, "Batch cancelled before this job started")
}
