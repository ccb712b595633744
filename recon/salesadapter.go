package recon

import (
	"context"
	"fmt"
	"strings"

	"bitbucket.org/swelyradist/agency_backend/config"
	"bitbucket.org/swelyradist/agency_backend/models"
	"github.com/shopspring/decimal"
)

// SalesInvoiceAdapter reads agency-created sales invoices. Sales remove stock;
// the orchestrator negates the magnitude based on the adapter type.
type SalesInvoiceAdapter struct{}

func NewSalesInvoiceAdapter() *SalesInvoiceAdapter { return &SalesInvoiceAdapter{} }

func (a *SalesInvoiceAdapter) Source() models.SourceSystem { return models.SourceSystemLocalSales }

func (a *SalesInvoiceAdapter) Type() models.TransactionType { return models.TransactionTypeSale }

func (a *SalesInvoiceAdapter) Fetch(ctx context.Context, agency AgencyScope) ([]SourceRecord, error) {
	db := config.GetDB()
	if db == nil {
		return nil, models.ErrDBNotInitialized
	}

	var invoices []models.SalesInvoice
	err := db.WithContext(ctx).
		Preload("Details").
		Where("agency_id = ? AND status = ?", agency.ID, models.InvoiceStatusConfirmed).
		Order("id").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}

	records := make([]SourceRecord, 0, len(invoices))
	for i := range invoices {
		inv := &invoices[i]
		lines, skipped := detailLines(inv.Details)
		records = append(records, SourceRecord{
			ExternalId:    salesExternalId(inv),
			ReferenceName: strings.TrimSpace(inv.CustomerName),
			Date:          inv.InvoiceDate,
			Lines:         lines,
			SkippedLines:  skipped,
		})
	}
	return records, nil
}

func salesExternalId(inv *models.SalesInvoice) string {
	if n := strings.TrimSpace(inv.InvoiceNumber); n != "" {
		return n
	}
	return fmt.Sprintf("SI-%d", inv.ID)
}

// detailLines converts typed invoice details, skipping rows with no product
// name or a non-positive quantity the same way the JSON decoder does.
func detailLines(details []models.SalesInvoiceDetail) ([]LineItem, int) {
	var (
		lines   []LineItem
		skipped int
	)
	for _, d := range details {
		name := strings.TrimSpace(d.ProductName)
		if name == "" || d.Qty.LessThanOrEqual(decimal.Zero) {
			skipped++
			continue
		}
		lines = append(lines, LineItem{
			RawProductName: name,
			RawCategory:    strings.TrimSpace(d.Category),
			Quantity:       d.Qty,
			UnitPrice:      d.UnitPrice,
			Subtotal:       d.Qty.Mul(d.UnitPrice),
			Color:          strings.TrimSpace(d.Color),
			Size:           strings.TrimSpace(d.Size),
		})
	}
	return lines, skipped
}
