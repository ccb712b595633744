package models

import "time"

// ReconRun is the durable record of one ingestion run: the structured summary
// returned to the scheduler, persisted so status screens and retries can see
// past runs.
type ReconRun struct {
	ID               uint         `gorm:"primary_key" json:"id"`
	AgencyId         string       `gorm:"index;size:36;not null" json:"agency_id"`
	SourceSystem     SourceSystem `gorm:"index;size:30;not null" json:"source_system"`
	Status           string       `gorm:"size:20;not null" json:"status"`
	TriggeredBy      string       `gorm:"size:20" json:"triggered_by"`
	CorrelationId    string       `gorm:"size:64;index" json:"correlation_id"`
	RecordsFetched   int          `json:"records_fetched"`
	RecordsDuplicate int          `json:"records_duplicate"`
	TxCreated        int          `json:"tx_created"`
	ProductsMatched  int          `json:"products_matched"`
	ProductsUnmatch  int          `json:"products_unmatched"`
	LinesSkipped     int          `json:"lines_skipped"`
	ErrorCount       int          `json:"error_count"`
	StartedAt        *time.Time   `json:"started_at"`
	FinishedAt       *time.Time   `json:"finished_at"`
	DurationMs       int64        `json:"duration_ms"`
	CreatedAt        time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

// ReconSyncError is one captured per-record failure inside a run. Malformed
// records land here and in the summary; they never abort the batch.
type ReconSyncError struct {
	ID         uint      `gorm:"primary_key" json:"id"`
	ReconRunId uint      `gorm:"index;not null" json:"recon_run_id"`
	AgencyId   string    `gorm:"index;size:36;not null" json:"agency_id"`
	ExternalId string    `gorm:"size:128" json:"external_id"`
	ErrorCode  string    `gorm:"size:64" json:"error_code"`
	Message    string    `gorm:"type:text" json:"message"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
