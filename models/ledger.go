package models

import (
	"context"
	"time"

	"bitbucket.org/swelyradist/agency_backend/config"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

// LedgerTransaction is one immutable signed stock movement. Rows are only ever
// appended; corrections are new offsetting rows. Current stock is always
// derived by summing, never by patching a counter.
//
// The idx_ledger_dedup unique index is the real idempotency guarantee: the
// application-level existence check is a fast path, the constraint plus
// insert-or-ignore is what holds under concurrent runs.
type LedgerTransaction struct {
	ID               string          `gorm:"size:36;primary_key" json:"id"` // uuid
	AgencyId         string          `gorm:"uniqueIndex:idx_ledger_dedup,priority:1;size:36;not null" json:"agency_id"`
	SourceSystem     SourceSystem    `gorm:"uniqueIndex:idx_ledger_dedup,priority:2;size:30;not null" json:"source_system"`
	ExternalId       string          `gorm:"uniqueIndex:idx_ledger_dedup,priority:3;size:128;not null" json:"external_id"`
	ProductName      string          `gorm:"uniqueIndex:idx_ledger_dedup,priority:4;size:191;not null" json:"product_name"`
	Color            string          `gorm:"uniqueIndex:idx_ledger_dedup,priority:5;size:64;not null" json:"color"`
	Size             string          `gorm:"uniqueIndex:idx_ledger_dedup,priority:6;size:64;not null" json:"size"`
	ProductCode      string          `gorm:"size:64" json:"product_code"`
	MatchedProductId string          `gorm:"size:36;index" json:"matched_product_id"`
	MatchConfidence  int             `json:"match_confidence"`
	Category         string          `gorm:"size:100" json:"category"`
	SubCategory      string          `gorm:"size:100" json:"sub_category"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(20,4)" json:"unit_price"`
	LineSubtotal     decimal.Decimal `gorm:"type:decimal(20,4)" json:"line_subtotal"`
	TransactionType  TransactionType `gorm:"size:30;not null" json:"transaction_type"`
	SignedQty        decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"signed_qty"` // positive IN, negative OUT, never zero
	ReferenceName    string          `gorm:"size:255" json:"reference_name"`
	TransactionDate  time.Time       `gorm:"index;not null" json:"transaction_date"`
	Notes            string          `gorm:"type:text" json:"notes"`
	CorrelationId    string          `gorm:"size:64;index" json:"correlation_id"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// DedupKey identifies one ledger line across re-runs. One external record may
// yield several lines, so the product/color/size triple is part of the key.
type DedupKey struct {
	AgencyId     string
	SourceSystem SourceSystem
	ExternalId   string
	ProductName  string
	Color        string
	Size         string
}

// GormLedgerStore is the durable ledger behind the orchestrator and the
// adjustment workflow.
type GormLedgerStore struct{}

// Exists is the dedup fast path. A false result does not license a blind
// insert; Insert still goes through the unique constraint.
func (GormLedgerStore) Exists(ctx context.Context, key DedupKey) (bool, error) {
	db := config.GetDB()
	if db == nil {
		return false, ErrDBNotInitialized
	}
	var count int64
	err := db.WithContext(ctx).Model(&LedgerTransaction{}).
		Where("agency_id = ? AND source_system = ? AND external_id = ? AND product_name = ? AND color = ? AND size = ?",
			key.AgencyId, key.SourceSystem, key.ExternalId, key.ProductName, key.Color, key.Size).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Insert appends one transaction with insert-or-ignore semantics on the dedup
// key. Returns false when the row already existed (duplicate suppressed).
// Every real insert invalidates the agency's materialized stock cache.
func (GormLedgerStore) Insert(ctx context.Context, rec *LedgerTransaction) (bool, error) {
	db := config.GetDB()
	if db == nil {
		return false, ErrDBNotInitialized
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Color == "" {
		rec.Color = "Default"
	}
	if rec.Size == "" {
		rec.Size = "Default"
	}

	result := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(rec)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	if err := InvalidateStockCache(rec.AgencyId); err != nil {
		// Cache is best-effort; the ledger stays the source of truth.
		config.GetLogger().WithField("agencyId", rec.AgencyId).Warn("stock cache invalidation failed: " + err.Error())
	}
	return true, nil
}
