package models

import (
	"log"

	"bitbucket.org/swelyradist/agency_backend/config"
)

// MigrateTable auto-migrates every table owned by the reconciliation engine.
// The dedup unique index on ledger_transactions is created here; it is load
// bearing for idempotency, not an optimization.
func MigrateTable() {
	db := config.GetDB()
	if db == nil {
		log.Fatal("database not initialized")
	}

	err := db.AutoMigrate(
		&Agency{},
		&CatalogProduct{},
		&LedgerTransaction{},
		&AdjustmentRequest{},
		&MirroredInvoice{},
		&SalesInvoice{},
		&SalesInvoiceDetail{},
		&ReturnNote{},
		&Target{},
		&TargetDetail{},
		&ReconRun{},
		&ReconSyncError{},
	)
	if err != nil {
		log.Fatalf("auto migration failed: %v", err)
	}
}
