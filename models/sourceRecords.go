package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MirroredInvoice is a locally replicated copy of one external ERP invoice,
// written by the mirroring job (outside this engine). The line items stay in
// their original JSON shape; the mirror adapter decodes them with the same
// tolerant decoder as the live ERP feed.
type MirroredInvoice struct {
	ID          int       `gorm:"primary_key" json:"id"`
	ExternalId  string    `gorm:"uniqueIndex;size:128;not null" json:"external_id"`
	PartnerName string    `gorm:"index;size:255;not null" json:"partner_name"`
	DateOrder   time.Time `gorm:"index" json:"date_order"`
	LinesJSON   []byte    `gorm:"type:json" json:"lines"`
	MirroredAt  time.Time `gorm:"autoCreateTime" json:"mirrored_at"`
}

// SalesInvoice is an agency-created sale; its lines remove stock.
type SalesInvoice struct {
	ID            int                  `gorm:"primary_key" json:"id"`
	AgencyId      string               `gorm:"index;size:36;not null" json:"agency_id"`
	InvoiceNumber string               `gorm:"index;size:100;not null" json:"invoice_number"`
	CustomerName  string               `gorm:"size:255" json:"customer_name"`
	InvoiceDate   time.Time            `gorm:"index;not null" json:"invoice_date"`
	Status        InvoiceStatus        `gorm:"size:20;not null;default:draft" json:"status"`
	Details       []SalesInvoiceDetail `gorm:"foreignKey:InvoiceId" json:"details"`
	CreatedAt     time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time            `gorm:"autoUpdateTime" json:"updated_at"`
}

type SalesInvoiceDetail struct {
	ID          int             `gorm:"primary_key" json:"id"`
	InvoiceId   int             `gorm:"index;not null" json:"invoice_id"`
	ProductName string          `gorm:"size:255;not null" json:"product_name"`
	Category    string          `gorm:"size:100" json:"category"`
	Qty         decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"qty"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(20,4)" json:"unit_price"`
	Color       string          `gorm:"size:64" json:"color"`
	Size        string          `gorm:"size:64" json:"size"`
}

// ReturnNote reverses a sale, wholly or in part. Customer returns put stock
// back; company returns (stock sent back to the principal) take it out. Only
// processed returns are ingested.
type ReturnNote struct {
	ID             int          `gorm:"primary_key" json:"id"`
	AgencyId       string       `gorm:"index;size:36;not null" json:"agency_id"`
	Kind           ReturnKind   `gorm:"size:20;not null" json:"kind"`
	Status         ReturnStatus `gorm:"size:20;not null;default:draft" json:"status"`
	SalesInvoiceId int          `gorm:"index;not null" json:"sales_invoice_id"`
	ReferenceName  string       `gorm:"size:255" json:"reference_name"`
	ReturnDate     time.Time    `gorm:"index;not null" json:"return_date"`
	Notes          string       `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}
