package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustmentRequest is a manually requested, approval-gated stock correction.
// pending -> approved emits exactly one ledger transaction inside the same DB
// transaction as the review metadata; pending -> rejected has no ledger
// effect. Both outcomes are terminal.
type AdjustmentRequest struct {
	ID                   int              `gorm:"primary_key" json:"id"`
	AgencyId             string           `gorm:"index;size:36;not null" json:"agency_id"`
	ProductName          string           `gorm:"size:191;not null" json:"product_name"`
	Color                string           `gorm:"size:64;not null" json:"color"`
	Size                 string           `gorm:"size:64;not null" json:"size"`
	CurrentStockSnapshot decimal.Decimal  `gorm:"type:decimal(20,4)" json:"current_stock_snapshot"`
	AdjustmentQty        decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"adjustment_qty"` // signed, never zero
	Reason               string           `gorm:"type:text;not null" json:"reason"`
	Status               AdjustmentStatus `gorm:"size:20;not null;default:pending" json:"status"`
	RequestedBy          string           `gorm:"size:100;not null" json:"requested_by"`
	ReviewedBy           string           `gorm:"size:100" json:"reviewed_by"`
	ReviewNotes          string           `gorm:"type:text" json:"review_notes"`
	LedgerTransactionId  string           `gorm:"size:36" json:"ledger_transaction_id"`
	CreatedAt            time.Time        `gorm:"autoCreateTime" json:"created_at"`
	ReviewedAt           *time.Time       `json:"reviewed_at"`
}
