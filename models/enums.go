package models

import "fmt"

// TransactionType is the closed set of stock movement origins. Sign assignment
// and aggregation switch over every member; adding a type without extending
// those switches fails loudly at runtime.
type TransactionType string

const (
	TransactionTypeExternalInvoice TransactionType = "external_invoice"
	TransactionTypeGrn             TransactionType = "grn"
	TransactionTypeCustomerReturn  TransactionType = "customer_return"
	TransactionTypeSale            TransactionType = "sale"
	TransactionTypeCompanyReturn   TransactionType = "company_return"
	TransactionTypeAdjustment      TransactionType = "adjustment"
)

// Sign returns the ledger sign applied to absolute quantities for this type:
// +1 stock IN, -1 stock OUT. Adjustments carry their own sign in the approved
// request and return 0 here.
func (t TransactionType) Sign() (int, error) {
	switch t {
	case TransactionTypeExternalInvoice, TransactionTypeGrn, TransactionTypeCustomerReturn:
		return 1, nil
	case TransactionTypeSale, TransactionTypeCompanyReturn:
		return -1, nil
	case TransactionTypeAdjustment:
		return 0, nil
	}
	return 0, fmt.Errorf("unknown transaction type %q", string(t))
}

// SourceSystem tags which adapter produced a ledger transaction. The external
// and mirrored adapters process the same underlying invoices during migration
// windows; distinct tags keep their dedup keys from colliding.
type SourceSystem string

const (
	SourceSystemERPBot         SourceSystem = "erp_bot"
	SourceSystemLocalMirror    SourceSystem = "local_mirror"
	SourceSystemLocalSales     SourceSystem = "local_sales"
	SourceSystemCustomerReturn SourceSystem = "customer_return"
	SourceSystemCompanyReturn  SourceSystem = "company_return"
	SourceSystemAdjustment     SourceSystem = "adjustment"
)

type AdjustmentStatus string

const (
	AdjustmentStatusPending  AdjustmentStatus = "pending"
	AdjustmentStatusApproved AdjustmentStatus = "approved"
	AdjustmentStatusRejected AdjustmentStatus = "rejected"
)

// Terminal reports whether no further transitions are allowed.
func (s AdjustmentStatus) Terminal() bool {
	return s == AdjustmentStatusApproved || s == AdjustmentStatusRejected
}

type ReturnKind string

const (
	ReturnKindCustomer ReturnKind = "customer"
	ReturnKindCompany  ReturnKind = "company"
)

type ReturnStatus string

const (
	ReturnStatusDraft     ReturnStatus = "draft"
	ReturnStatusProcessed ReturnStatus = "processed"
	ReturnStatusVoid      ReturnStatus = "void"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusConfirmed InvoiceStatus = "confirmed"
	InvoiceStatusVoid      InvoiceStatus = "void"
)

const (
	RunStatusQueued  = "queued"
	RunStatusRunning = "running"
	RunStatusSuccess = "success"
	RunStatusFailed  = "failed"
	RunStatusPartial = "partial"
)

const (
	RunTriggeredManual = "manual"
	RunTriggeredSystem = "system"
)
