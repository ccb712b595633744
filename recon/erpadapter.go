package recon

import (
	"context"
	"encoding/json"
	"net/url"
	"os"
	"strings"
	"time"

	"bitbucket.org/swelyradist/agency_backend/models"
)

// rawInvoice is the ERP bot's invoice envelope, tolerating the field spellings
// both the live API and the nightly export use.
type rawInvoice struct {
	ID          string          `json:"id"`
	ExternalId  string          `json:"external_id"`
	PartnerName string          `json:"partner_name"`
	DateOrder   string          `json:"date_order"`
	Lines       json.RawMessage `json:"lines"`
	OrderLine   json.RawMessage `json:"order_line"`
}

func (r rawInvoice) externalId() string {
	if id := strings.TrimSpace(r.ExternalId); id != "" {
		return id
	}
	return strings.TrimSpace(r.ID)
}

func (r rawInvoice) linePayload() json.RawMessage {
	if len(r.Lines) > 0 && string(r.Lines) != "null" {
		return r.Lines
	}
	return r.OrderLine
}

// ERPInvoiceAdapter pulls invoices from the third-party ERP gateway. Agency
// matching at this level is trimmed case-insensitive equality on the partner
// name; fuzzy matching only ever happens at the product level.
type ERPInvoiceAdapter struct {
	client *erpClient
}

func NewERPInvoiceAdapter() (*ERPInvoiceAdapter, error) {
	client, err := newERPClient()
	if err != nil {
		return nil, err
	}
	return &ERPInvoiceAdapter{client: client}, nil
}

func (a *ERPInvoiceAdapter) Source() models.SourceSystem { return models.SourceSystemERPBot }

func (a *ERPInvoiceAdapter) Type() models.TransactionType {
	return models.TransactionTypeExternalInvoice
}

func (a *ERPInvoiceAdapter) Fetch(ctx context.Context, agency AgencyScope) ([]SourceRecord, error) {
	invoicesPath := strings.TrimSpace(os.Getenv("ERP_INVOICES_PATH"))
	if invoicesPath == "" {
		invoicesPath = "/v1/invoices"
	}

	wantPartner := strings.TrimSpace(agency.DisplayName)

	var (
		records    []SourceRecord
		nextCursor string
	)
	for {
		params := url.Values{}
		params.Set("limit", "200")
		if nextCursor != "" {
			params.Set("cursor", nextCursor)
		}

		resp, err := a.client.getList(ctx, invoicesPath, params)
		if err != nil {
			return records, err
		}

		for _, raw := range resp.records() {
			var inv rawInvoice
			if err := json.Unmarshal(raw, &inv); err != nil {
				records = append(records, SourceRecord{SkippedLines: 1})
				continue
			}
			if inv.externalId() == "" {
				records = append(records, SourceRecord{SkippedLines: 1})
				continue
			}
			if !strings.EqualFold(strings.TrimSpace(inv.PartnerName), wantPartner) {
				continue
			}

			lines, skipped := decodeLines(inv.linePayload(), inv.externalId())
			records = append(records, SourceRecord{
				ExternalId:    inv.externalId(),
				ReferenceName: strings.TrimSpace(inv.PartnerName),
				Date:          parseTimeOrNow(inv.DateOrder),
				Lines:         lines,
				SkippedLines:  skipped,
			})
		}

		if resp.done() {
			return records, nil
		}
		nextCursor = resp.NextCursor
	}
}

func parseTimeOrNow(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Now()
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", value); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t
	}
	return time.Now()
}
