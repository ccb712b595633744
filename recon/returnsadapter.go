package recon

import (
	"context"
	"fmt"
	"strings"

	"bitbucket.org/swelyradist/agency_backend/config"
	"bitbucket.org/swelyradist/agency_backend/models"
)

// ReturnNoteAdapter ingests processed return notes. One adapter instance is
// bound to a single return kind so that customer and company flows stay
// separate sources with separate dedup spaces.
type ReturnNoteAdapter struct {
	kind models.ReturnKind
}

func NewCustomerReturnAdapter() *ReturnNoteAdapter {
	return &ReturnNoteAdapter{kind: models.ReturnKindCustomer}
}

func NewCompanyReturnAdapter() *ReturnNoteAdapter {
	return &ReturnNoteAdapter{kind: models.ReturnKindCompany}
}

func (a *ReturnNoteAdapter) Source() models.SourceSystem {
	if a.kind == models.ReturnKindCompany {
		return models.SourceSystemCompanyReturn
	}
	return models.SourceSystemCustomerReturn
}

func (a *ReturnNoteAdapter) Type() models.TransactionType {
	if a.kind == models.ReturnKindCompany {
		return models.TransactionTypeCompanyReturn
	}
	return models.TransactionTypeCustomerReturn
}

func (a *ReturnNoteAdapter) Fetch(ctx context.Context, agency AgencyScope) ([]SourceRecord, error) {
	db := config.GetDB()
	if db == nil {
		return nil, models.ErrDBNotInitialized
	}

	var notes []models.ReturnNote
	err := db.WithContext(ctx).
		Where("agency_id = ? AND kind = ? AND status = ?", agency.ID, a.kind, models.ReturnStatusProcessed).
		Order("id").
		Find(&notes).Error
	if err != nil {
		return nil, err
	}

	records := make([]SourceRecord, 0, len(notes))
	for i := range notes {
		note := &notes[i]

		// A return note references the sale it reverses; quantities come from
		// the original invoice lines.
		var details []models.SalesInvoiceDetail
		err := db.WithContext(ctx).
			Where("invoice_id = ?", note.SalesInvoiceId).
			Order("id").
			Find(&details).Error
		if err != nil {
			return nil, err
		}

		lines, skipped := detailLines(details)
		ref := strings.TrimSpace(note.ReferenceName)
		if ref == "" {
			ref = fmt.Sprintf("return of invoice %d", note.SalesInvoiceId)
		}
		records = append(records, SourceRecord{
			ExternalId:    fmt.Sprintf("RN-%d", note.ID),
			ReferenceName: ref,
			Date:          note.ReturnDate,
			Lines:         lines,
			SkippedLines:  skipped,
		})
	}
	return records, nil
}
