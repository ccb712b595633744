package recon

import (
	"context"
	"time"

	"bitbucket.org/swelyradist/agency_backend/config"
	"bitbucket.org/swelyradist/agency_backend/models"
	"bitbucket.org/swelyradist/agency_backend/utils"
)

// RunStore persists ingestion runs and their captured per-record errors.
type RunStore struct{}

// Begin creates the run row in running state before any source work happens,
// so an interrupted process still leaves a trace.
func (RunStore) Begin(ctx context.Context, agency AgencyScope, source models.SourceSystem, triggeredBy string) (*models.ReconRun, error) {
	db := config.GetDB()
	if db == nil {
		return nil, models.ErrDBNotInitialized
	}

	correlationId, _ := utils.GetCorrelationIdFromContext(ctx)
	now := time.Now()
	run := &models.ReconRun{
		AgencyId:      agency.ID,
		SourceSystem:  source,
		Status:        models.RunStatusRunning,
		TriggeredBy:   triggeredBy,
		CorrelationId: correlationId,
		StartedAt:     &now,
	}
	if err := db.WithContext(ctx).Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

// Finish records the outcome. runErr is the run-level failure (fetch, lock),
// distinct from the per-record errors carried in the summary.
func (RunStore) Finish(ctx context.Context, run *models.ReconRun, summary RunSummary, runErr error) error {
	db := config.GetDB()
	if db == nil {
		return models.ErrDBNotInitialized
	}

	now := time.Now()
	run.FinishedAt = &now
	if run.StartedAt != nil {
		run.DurationMs = now.Sub(*run.StartedAt).Milliseconds()
	}
	run.RecordsFetched = summary.RecordsFetched
	run.RecordsDuplicate = summary.RecordsSkippedDuplicate
	run.TxCreated = summary.TransactionsCreated
	run.ProductsMatched = summary.ProductsMatched
	run.ProductsUnmatch = summary.ProductsUnmatched
	run.LinesSkipped = summary.LinesSkipped
	run.ErrorCount = len(summary.Errors)
	run.Status = runOutcome(summary, runErr)

	if err := db.WithContext(ctx).Save(run).Error; err != nil {
		return err
	}

	for _, msg := range summary.Errors {
		syncErr := models.ReconSyncError{
			ReconRunId: run.ID,
			AgencyId:   run.AgencyId,
			ErrorCode:  "record_error",
			Message:    msg,
		}
		if err := db.WithContext(ctx).Create(&syncErr).Error; err != nil {
			return err
		}
	}
	if runErr != nil {
		syncErr := models.ReconSyncError{
			ReconRunId: run.ID,
			AgencyId:   run.AgencyId,
			ErrorCode:  "run_error",
			Message:    runErr.Error(),
		}
		if err := db.WithContext(ctx).Create(&syncErr).Error; err != nil {
			return err
		}
	}
	return nil
}

func runOutcome(summary RunSummary, runErr error) string {
	switch {
	case runErr != nil:
		return models.RunStatusFailed
	case len(summary.Errors) > 0:
		return models.RunStatusPartial
	default:
		return models.RunStatusSuccess
	}
}
