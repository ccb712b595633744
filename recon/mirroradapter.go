package recon

import (
	"context"
	"strings"

	"bitbucket.org/swelyradist/agency_backend/config"
	"bitbucket.org/swelyradist/agency_backend/models"
)

// MirrorInvoiceAdapter reads the locally replicated copy of the ERP invoices.
// It may run against the same underlying invoices as the live adapter during a
// migration window; its distinct source tag keeps the dedup keys apart.
type MirrorInvoiceAdapter struct{}

func NewMirrorInvoiceAdapter() *MirrorInvoiceAdapter { return &MirrorInvoiceAdapter{} }

func (a *MirrorInvoiceAdapter) Source() models.SourceSystem { return models.SourceSystemLocalMirror }

func (a *MirrorInvoiceAdapter) Type() models.TransactionType {
	return models.TransactionTypeExternalInvoice
}

func (a *MirrorInvoiceAdapter) Fetch(ctx context.Context, agency AgencyScope) ([]SourceRecord, error) {
	db := config.GetDB()
	if db == nil {
		return nil, models.ErrDBNotInitialized
	}

	var invoices []models.MirroredInvoice
	err := db.WithContext(ctx).
		Where("LOWER(TRIM(partner_name)) = ?", strings.ToLower(strings.TrimSpace(agency.DisplayName))).
		Order("id").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}

	records := make([]SourceRecord, 0, len(invoices))
	for i := range invoices {
		inv := &invoices[i]
		lines, skipped := decodeLines(inv.LinesJSON, inv.ExternalId)
		records = append(records, SourceRecord{
			ExternalId:    inv.ExternalId,
			ReferenceName: strings.TrimSpace(inv.PartnerName),
			Date:          inv.DateOrder,
			Lines:         lines,
			SkippedLines:  skipped,
		})
	}
	return records, nil
}
