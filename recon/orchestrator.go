package recon

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"bitbucket.org/swelyradist/agency_backend/config"
	"bitbucket.org/swelyradist/agency_backend/matching"
	"bitbucket.org/swelyradist/agency_backend/models"
	"bitbucket.org/swelyradist/agency_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	moduleName        = "recon"
	defaultMaxWorkers = 5
	runLockTTL        = 10 * time.Minute
)

// CatalogReader provides the immutable catalog snapshot one run matches
// against.
type CatalogReader interface {
	Snapshot(ctx context.Context, agencyId string) ([]matching.Candidate, error)
}

// LedgerStore is the append-only ledger the orchestrator writes to.
type LedgerStore interface {
	Exists(ctx context.Context, key models.DedupKey) (bool, error)
	Insert(ctx context.Context, rec *models.LedgerTransaction) (bool, error)
}

// Orchestrator drives one ingestion run: fetch from a source adapter, match
// each line against the catalog snapshot, append signed ledger rows with
// dedup suppression. All collaborators are injected so runs are testable
// without a database.
type Orchestrator struct {
	Catalog    CatalogReader
	Ledger     LedgerStore
	Matcher    *matching.Matcher
	Logger     *logrus.Logger
	MaxWorkers int
	Now        func() time.Time
}

// DefaultMatcher builds the matcher with the configured confidence threshold
// (RECON_MATCH_MIN_CONFIDENCE env, default 30).
func DefaultMatcher() *matching.Matcher {
	if v := strings.TrimSpace(os.Getenv("RECON_MATCH_MIN_CONFIDENCE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			return matching.NewMatcher(n)
		}
	}
	return matching.NewMatcher(0)
}

// maxWorkersFromEnv reads the per-run concurrency cap (RECON_MAX_WORKERS env,
// default 5).
func maxWorkersFromEnv() int {
	if v := strings.TrimSpace(os.Getenv("RECON_MAX_WORKERS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return defaultMaxWorkers
}

func NewOrchestrator(catalog CatalogReader, ledger LedgerStore, matcher *matching.Matcher, logger *logrus.Logger) *Orchestrator {
	return &Orchestrator{
		Catalog:    catalog,
		Ledger:     ledger,
		Matcher:    matcher,
		Logger:     logger,
		MaxWorkers: maxWorkersFromEnv(),
		Now:        time.Now,
	}
}

// Run executes one full ingestion pass for one agency and one source. A fetch
// failure fails the run; everything after that is per-record: a bad record is
// counted and reported, never allowed to abort the batch.
func (o *Orchestrator) Run(ctx context.Context, adapter SourceAdapter, agency AgencyScope) (RunSummary, error) {
	var summary RunSummary

	release, err := utils.ObtainAgencyLock(ctx, fmt.Sprintf("%s:%s", agency.ID, adapter.Source()), "ReconRun", runLockTTL)
	if err != nil {
		return summary, err
	}
	defer release()

	sign, err := adapter.Type().Sign()
	if err != nil {
		return summary, err
	}
	if sign == 0 {
		return summary, fmt.Errorf("source %s has no fixed ledger sign", adapter.Source())
	}

	records, err := adapter.Fetch(ctx, agency)
	if err != nil {
		return summary, &SourceUnavailableError{Source: adapter.Source(), Err: err}
	}
	summary.RecordsFetched = len(records)

	snapshot, err := o.Catalog.Snapshot(ctx, agency.ID)
	if err != nil {
		// Matching degrades to category fallback; the ledger still records
		// every movement.
		if o.Logger != nil {
			config.LogError(o.Logger, moduleName, "Run", "catalog snapshot", agency.ID, err)
		}
		snapshot = nil
	}

	workers := o.MaxWorkers
	if workers <= 0 {
		workers = defaultMaxWorkers
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, workers)
	)

	for i := range records {
		if ctx.Err() != nil {
			mu.Lock()
			summary.Errors = append(summary.Errors, ctx.Err().Error())
			mu.Unlock()
			break
		}

		rec := records[i]
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			o.processRecord(ctx, adapter, agency, rec, sign, snapshot, &summary, &mu)
		}()
	}
	wg.Wait()

	return summary, nil
}

func (o *Orchestrator) processRecord(ctx context.Context, adapter SourceAdapter, agency AgencyScope, rec SourceRecord, sign int, snapshot []matching.Candidate, summary *RunSummary, mu *sync.Mutex) {
	correlationId, _ := utils.GetCorrelationIdFromContext(ctx)

	var (
		created    int
		duplicates int
		matched    int
		unmatched  int
		skipped    = rec.SkippedLines
		errs       []string
	)

	for _, line := range rec.Lines {
		result := o.Matcher.Match(matching.LineInput{Name: line.RawProductName, Category: line.RawCategory}, snapshot)

		name, color, size := resolvedVariant(result, line)
		key := models.DedupKey{
			AgencyId:     agency.ID,
			SourceSystem: adapter.Source(),
			ExternalId:   rec.ExternalId,
			ProductName:  name,
			Color:        color,
			Size:         size,
		}

		exists, err := o.Ledger.Exists(ctx, key)
		if err != nil {
			errs = append(errs, fmt.Sprintf("record %s: %v", rec.ExternalId, err))
			continue
		}
		if exists {
			duplicates++
			continue
		}

		tx := &models.LedgerTransaction{
			AgencyId:         agency.ID,
			SourceSystem:     adapter.Source(),
			ExternalId:       rec.ExternalId,
			ProductName:      name,
			Color:            color,
			Size:             size,
			ProductCode:      matching.ExtractCode(line.RawProductName),
			MatchedProductId: result.ProductID,
			MatchConfidence:  result.Confidence,
			Category:         result.Category,
			SubCategory:      result.SubCategory,
			UnitPrice:        line.UnitPrice,
			LineSubtotal:     line.Subtotal,
			TransactionType:  adapter.Type(),
			SignedQty:        line.Quantity.Abs().Mul(decimal.NewFromInt(int64(sign))),
			ReferenceName:    rec.ReferenceName,
			TransactionDate:  recordDate(rec, o.Now),
			CorrelationId:    correlationId,
		}

		inserted, err := o.Ledger.Insert(ctx, tx)
		if err != nil {
			errs = append(errs, fmt.Sprintf("record %s: %v", rec.ExternalId, err))
			continue
		}
		if !inserted {
			duplicates++
			continue
		}

		created++
		if result.Matched() {
			matched++
		} else {
			unmatched++
		}
	}

	mu.Lock()
	defer mu.Unlock()
	summary.TransactionsCreated += created
	summary.ProductsMatched += matched
	summary.ProductsUnmatched += unmatched
	summary.LinesSkipped += skipped
	summary.Errors = append(summary.Errors, errs...)
	// A record is only "skipped as duplicate" when every one of its lines was
	// suppressed; partially new records count as ingested.
	if len(rec.Lines) > 0 && created == 0 && duplicates == len(rec.Lines) {
		summary.RecordsSkippedDuplicate++
	}
}

// resolvedVariant prefers an explicit color/size on the source line over the
// matcher's pick, falling back to Default so the dedup key is always complete.
func resolvedVariant(result matching.Result, line LineItem) (name, color, size string) {
	name = result.ProductName
	if name == "" {
		name = matching.NormalizeName(line.RawProductName)
	}
	color = strings.TrimSpace(line.Color)
	if color == "" {
		color = result.Color
	}
	if color == "" {
		color = matching.DefaultVariant
	}
	size = strings.TrimSpace(line.Size)
	if size == "" {
		size = result.Size
	}
	if size == "" {
		size = matching.DefaultVariant
	}
	return name, color, size
}

func recordDate(rec SourceRecord, now func() time.Time) time.Time {
	if !rec.Date.IsZero() {
		return rec.Date
	}
	if now != nil {
		return now()
	}
	return time.Now()
}
