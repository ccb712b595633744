package recon

import (
	"context"
	"fmt"
	"time"

	"bitbucket.org/swelyradist/agency_backend/models"
	"github.com/shopspring/decimal"
)

// LineItem is one reconciliation unit extracted from a source record. It lives
// for exactly one ingestion pass; the ledger row is what persists.
type LineItem struct {
	RawProductName string
	RawCategory    string
	Quantity       decimal.Decimal // non-negative magnitude; the adapter type fixes the sign
	UnitPrice      decimal.Decimal
	Subtotal       decimal.Decimal
	Color          string
	Size           string
}

// SourceRecord is one external record (invoice, return, ...) with its decoded
// lines and the count of lines the decoder had to skip.
type SourceRecord struct {
	ExternalId    string
	ReferenceName string
	Date          time.Time
	Lines         []LineItem
	SkippedLines  int
}

// AgencyScope identifies the tenant an ingestion run works for.
type AgencyScope struct {
	ID          string
	DisplayName string
	Timezone    string
}

// SourceAdapter translates a source's native record shape into canonical
// records. Adapters never write to the ledger themselves.
type SourceAdapter interface {
	Source() models.SourceSystem
	Type() models.TransactionType
	Fetch(ctx context.Context, agency AgencyScope) ([]SourceRecord, error)
}

// RunSummary is the structured result of one ingestion run; it is what the
// scheduling collaborator consumes and what gets persisted as a ReconRun.
type RunSummary struct {
	RecordsFetched          int      `json:"recordsFetched"`
	RecordsSkippedDuplicate int      `json:"recordsSkippedDuplicate"`
	TransactionsCreated     int      `json:"transactionsCreated"`
	ProductsMatched         int      `json:"productsMatched"`
	ProductsUnmatched       int      `json:"productsUnmatched"`
	LinesSkipped            int      `json:"linesSkipped"`
	Errors                  []string `json:"errors"`
}

// SourceUnavailableError means the adapter could not reach its data at all.
// It fails the run for that source; other sources are unaffected.
type SourceUnavailableError struct {
	Source models.SourceSystem
	Err    error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("source %s unavailable: %v", e.Source, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }

// MalformedRecordError marks one record or line that failed decoding. It is
// counted and reported, never thrown up the batch.
type MalformedRecordError struct {
	ExternalId string
	Reason     string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record %s: %s", e.ExternalId, e.Reason)
}
