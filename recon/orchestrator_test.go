package recon

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bitbucket.org/swelyradist/agency_backend/matching"
	"bitbucket.org/swelyradist/agency_backend/models"
	"github.com/shopspring/decimal"
)

// NOTE: These tests are intentionally DB-free. The fakes implement the same
// contracts as the gorm-backed stores: Exists is a fast path, Insert is
// insert-or-ignore on the dedup key.

type fakeCatalog struct {
	candidates []matching.Candidate
	err        error
}

func (f *fakeCatalog) Snapshot(ctx context.Context, agencyId string) ([]matching.Candidate, error) {
	return f.candidates, f.err
}

type fakeLedger struct {
	mu   sync.Mutex
	rows []*models.LedgerTransaction
	keys map[models.DedupKey]bool
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{keys: map[models.DedupKey]bool{}}
}

func (f *fakeLedger) Exists(ctx context.Context, key models.DedupKey) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.keys[key], nil
}

func (f *fakeLedger) Insert(ctx context.Context, rec *models.LedgerTransaction) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := models.DedupKey{
		AgencyId:     rec.AgencyId,
		SourceSystem: rec.SourceSystem,
		ExternalId:   rec.ExternalId,
		ProductName:  rec.ProductName,
		Color:        rec.Color,
		Size:         rec.Size,
	}
	if f.keys[key] {
		return false, nil
	}
	f.keys[key] = true
	f.rows = append(f.rows, rec)
	return true, nil
}

func (f *fakeLedger) sumSignedQty() decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := decimal.Zero
	for _, r := range f.rows {
		total = total.Add(r.SignedQty)
	}
	return total
}

type fakeAdapter struct {
	source  models.SourceSystem
	txType  models.TransactionType
	records []SourceRecord
	err     error
}

func (f *fakeAdapter) Source() models.SourceSystem  { return f.source }
func (f *fakeAdapter) Type() models.TransactionType { return f.txType }
func (f *fakeAdapter) Fetch(ctx context.Context, agency AgencyScope) ([]SourceRecord, error) {
	return f.records, f.err
}

func testAgency() AgencyScope {
	return AgencyScope{ID: "agency-1", DisplayName: "Golden Lotus Distribution", Timezone: "Asia/Yangon"}
}

func testCatalog() *fakeCatalog {
	return &fakeCatalog{candidates: []matching.Candidate{
		{
			ID:       "p-001",
			Name:     "SOLACE-BLACK 42",
			Category: "Shoes",
			Colors:   []string{"Black"},
			Sizes:    []string{"42"},
		},
		{
			ID:       "p-002",
			Name:     "Moonstone Satchel",
			Category: "Bags",
			Colors:   []string{"Maroon", "Navy"},
			Sizes:    []string{"M"},
		},
	}}
}

func line(name, category, qty string) LineItem {
	return LineItem{
		RawProductName: name,
		RawCategory:    category,
		Quantity:       decimal.RequireFromString(qty),
		UnitPrice:      decimal.RequireFromString("1000"),
		Subtotal:       decimal.RequireFromString(qty).Mul(decimal.RequireFromString("1000")),
	}
}

func newTestOrchestrator(catalog CatalogReader, ledger LedgerStore) *Orchestrator {
	o := NewOrchestrator(catalog, ledger, matching.NewMatcher(0), nil)
	o.Now = func() time.Time { return time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC) }
	return o
}

func TestRun_IngestsAndMatches(t *testing.T) {
	ledger := newFakeLedger()
	orch := newTestOrchestrator(testCatalog(), ledger)
	adapter := &fakeAdapter{
		source: models.SourceSystemERPBot,
		txType: models.TransactionTypeExternalInvoice,
		records: []SourceRecord{
			{ExternalId: "INV-1", Lines: []LineItem{
				line("[SB42] SOLACE-BLACK 42", "Shoes", "3"),
				line("Completely Unknown Widget", "", "2"),
			}},
		},
	}

	summary, err := orch.Run(context.Background(), adapter, testAgency())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.RecordsFetched != 1 {
		t.Errorf("recordsFetched = %d, want 1", summary.RecordsFetched)
	}
	if summary.TransactionsCreated != 2 {
		t.Errorf("transactionsCreated = %d, want 2", summary.TransactionsCreated)
	}
	if summary.ProductsMatched != 1 || summary.ProductsUnmatched != 1 {
		t.Errorf("matched/unmatched = %d/%d, want 1/1", summary.ProductsMatched, summary.ProductsUnmatched)
	}

	var matchedRow, unmatchedRow *models.LedgerTransaction
	for _, r := range ledger.rows {
		if r.MatchedProductId != "" {
			matchedRow = r
		} else {
			unmatchedRow = r
		}
	}
	if matchedRow == nil || matchedRow.MatchedProductId != "p-001" {
		t.Fatalf("expected a row matched to p-001, got %+v", matchedRow)
	}
	if !matchedRow.SignedQty.Equal(decimal.RequireFromString("3")) {
		t.Errorf("matched signed qty = %s, want +3", matchedRow.SignedQty)
	}
	if unmatchedRow == nil {
		t.Fatal("expected an unmatched row")
	}
	if unmatchedRow.Category != matching.FallbackCategory {
		t.Errorf("unmatched category = %q, want %q", unmatchedRow.Category, matching.FallbackCategory)
	}
	if unmatchedRow.Color != matching.DefaultVariant || unmatchedRow.Size != matching.DefaultVariant {
		t.Errorf("unmatched variant = (%q, %q), want defaults", unmatchedRow.Color, unmatchedRow.Size)
	}
}

func TestRun_SecondRunIsFullyDeduplicated(t *testing.T) {
	ledger := newFakeLedger()
	orch := newTestOrchestrator(testCatalog(), ledger)
	adapter := &fakeAdapter{
		source: models.SourceSystemERPBot,
		txType: models.TransactionTypeExternalInvoice,
		records: []SourceRecord{
			{ExternalId: "INV-1", Lines: []LineItem{line("SOLACE-BLACK 42", "Shoes", "3")}},
			{ExternalId: "INV-2", Lines: []LineItem{line("Moonstone Satchel", "Bags", "1")}},
		},
	}

	first, err := orch.Run(context.Background(), adapter, testAgency())
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if first.TransactionsCreated != 2 {
		t.Fatalf("first run created %d, want 2", first.TransactionsCreated)
	}

	second, err := orch.Run(context.Background(), adapter, testAgency())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if second.TransactionsCreated != 0 {
		t.Errorf("second run created %d, want 0", second.TransactionsCreated)
	}
	if second.RecordsSkippedDuplicate != 2 {
		t.Errorf("second run duplicates = %d, want 2", second.RecordsSkippedDuplicate)
	}
	if len(ledger.rows) != 2 {
		t.Errorf("ledger rows = %d, want 2 after both runs", len(ledger.rows))
	}
}

func TestRun_SameInvoiceFromDistinctSourcesIsNotCrossDeduplicated(t *testing.T) {
	ledger := newFakeLedger()
	orch := newTestOrchestrator(testCatalog(), ledger)
	records := []SourceRecord{
		{ExternalId: "INV-1", Lines: []LineItem{line("SOLACE-BLACK 42", "Shoes", "3")}},
	}

	live := &fakeAdapter{source: models.SourceSystemERPBot, txType: models.TransactionTypeExternalInvoice, records: records}
	mirror := &fakeAdapter{source: models.SourceSystemLocalMirror, txType: models.TransactionTypeExternalInvoice, records: records}

	if _, err := orch.Run(context.Background(), live, testAgency()); err != nil {
		t.Fatalf("live Run: %v", err)
	}
	if _, err := orch.Run(context.Background(), mirror, testAgency()); err != nil {
		t.Fatalf("mirror Run: %v", err)
	}
	if len(ledger.rows) != 2 {
		t.Errorf("ledger rows = %d, want 2 (source system is part of the dedup key)", len(ledger.rows))
	}
}

func TestRun_SignsFollowTransactionType(t *testing.T) {
	ledger := newFakeLedger()
	orch := newTestOrchestrator(testCatalog(), ledger)

	in := &fakeAdapter{
		source:  models.SourceSystemERPBot,
		txType:  models.TransactionTypeExternalInvoice,
		records: []SourceRecord{{ExternalId: "INV-1", Lines: []LineItem{line("SOLACE-BLACK 42", "Shoes", "5")}}},
	}
	out := &fakeAdapter{
		source:  models.SourceSystemLocalSales,
		txType:  models.TransactionTypeSale,
		records: []SourceRecord{{ExternalId: "SI-9", Lines: []LineItem{line("SOLACE-BLACK 42", "Shoes", "2")}}},
	}

	if _, err := orch.Run(context.Background(), in, testAgency()); err != nil {
		t.Fatalf("inbound Run: %v", err)
	}
	if _, err := orch.Run(context.Background(), out, testAgency()); err != nil {
		t.Fatalf("outbound Run: %v", err)
	}

	want := decimal.RequireFromString("3") // +5 - 2
	if got := ledger.sumSignedQty(); !got.Equal(want) {
		t.Errorf("ledger sum = %s, want %s", got, want)
	}
	for _, r := range ledger.rows {
		if r.SignedQty.IsZero() {
			t.Errorf("row %s has zero signed qty", r.ExternalId)
		}
	}
}

func TestRun_FetchFailureReturnsSourceUnavailable(t *testing.T) {
	orch := newTestOrchestrator(testCatalog(), newFakeLedger())
	adapter := &fakeAdapter{
		source: models.SourceSystemERPBot,
		txType: models.TransactionTypeExternalInvoice,
		err:    errors.New("gateway timeout"),
	}

	_, err := orch.Run(context.Background(), adapter, testAgency())
	var unavailable *SourceUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("error = %v, want *SourceUnavailableError", err)
	}
	if unavailable.Source != models.SourceSystemERPBot {
		t.Errorf("unavailable source = %s", unavailable.Source)
	}
}

func TestRun_SkippedLinesAndCatalogFailureDoNotAbort(t *testing.T) {
	ledger := newFakeLedger()
	catalog := &fakeCatalog{err: errors.New("catalog db down")}
	orch := newTestOrchestrator(catalog, ledger)
	adapter := &fakeAdapter{
		source: models.SourceSystemERPBot,
		txType: models.TransactionTypeExternalInvoice,
		records: []SourceRecord{
			{ExternalId: "INV-1", SkippedLines: 2, Lines: []LineItem{line("Anything At All", "Shoes", "1")}},
		},
	}

	summary, err := orch.Run(context.Background(), adapter, testAgency())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.LinesSkipped != 2 {
		t.Errorf("linesSkipped = %d, want 2", summary.LinesSkipped)
	}
	if summary.TransactionsCreated != 1 {
		t.Errorf("transactionsCreated = %d, want 1 despite catalog failure", summary.TransactionsCreated)
	}
	if summary.ProductsUnmatched != 1 {
		t.Errorf("productsUnmatched = %d, want 1 with empty snapshot", summary.ProductsUnmatched)
	}
}

func TestRun_Determinism(t *testing.T) {
	records := []SourceRecord{
		{ExternalId: "INV-1", Lines: []LineItem{
			line("[SB42] SOLACE-BLACK 42", "Shoes", "3"),
			line("moonstone satchel", "Bags", "1"),
			line("Mystery Item", "", "2"),
		}},
	}

	var firstRows []string
	for i := 0; i < 5; i++ {
		ledger := newFakeLedger()
		orch := newTestOrchestrator(testCatalog(), ledger)
		adapter := &fakeAdapter{source: models.SourceSystemERPBot, txType: models.TransactionTypeExternalInvoice, records: records}
		if _, err := orch.Run(context.Background(), adapter, testAgency()); err != nil {
			t.Fatalf("Run %d: %v", i, err)
		}

		ids := map[string]string{}
		for _, r := range ledger.rows {
			ids[r.ProductName] = r.MatchedProductId
		}
		var rows []string
		for _, r := range ledger.rows {
			rows = append(rows, r.ProductName+"|"+ids[r.ProductName])
		}
		if i == 0 {
			firstRows = rows
			continue
		}
		if len(rows) != len(firstRows) {
			t.Fatalf("run %d produced %d rows, first run produced %d", i, len(rows), len(firstRows))
		}
		for name, id := range ids {
			found := false
			for _, fr := range firstRows {
				if fr == name+"|"+id {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("run %d matched %q to %q, differing from first run", i, name, id)
			}
		}
	}
}

func TestEnvironmentKnobs(t *testing.T) {
	t.Setenv("RECON_MATCH_MIN_CONFIDENCE", "55")
	if m := DefaultMatcher(); m.MinConfidence != 55 {
		t.Errorf("MinConfidence = %d, want 55", m.MinConfidence)
	}

	t.Setenv("RECON_MATCH_MIN_CONFIDENCE", "not-a-number")
	if m := DefaultMatcher(); m.MinConfidence != matching.DefaultMinConfidence {
		t.Errorf("garbage threshold: MinConfidence = %d, want default %d", m.MinConfidence, matching.DefaultMinConfidence)
	}

	t.Setenv("RECON_MAX_WORKERS", "12")
	if got := maxWorkersFromEnv(); got != 12 {
		t.Errorf("maxWorkersFromEnv = %d, want 12", got)
	}

	t.Setenv("RECON_MAX_WORKERS", "0")
	if got := maxWorkersFromEnv(); got != defaultMaxWorkers {
		t.Errorf("non-positive worker count: got %d, want default %d", got, defaultMaxWorkers)
	}
}
