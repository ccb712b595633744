package models

import (
	"context"
	"encoding/json"
	"time"

	"bitbucket.org/swelyradist/agency_backend/config"
	"bitbucket.org/swelyradist/agency_backend/matching"
)

// CatalogProduct is the canonical product record. The catalog is owned by an
// external subsystem; the reconciliation engine only ever reads an immutable,
// deterministically ordered snapshot of it per run.
type CatalogProduct struct {
	ID          string    `gorm:"size:36;primary_key" json:"id"` // uuid
	AgencyId    string    `gorm:"index;size:36;not null" json:"agency_id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Category    string    `gorm:"size:100" json:"category"`
	SubCategory string    `gorm:"size:100" json:"sub_category"`
	ColorsJSON  []byte    `gorm:"type:json" json:"colors"`
	SizesJSON   []byte    `gorm:"type:json" json:"sizes"`
	Active      bool      `gorm:"default:true" json:"active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *CatalogProduct) Colors() []string { return decodeStringList(p.ColorsJSON) }
func (p *CatalogProduct) Sizes() []string  { return decodeStringList(p.SizesJSON) }

func decodeStringList(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

// CatalogSnapshot loads the agency's active catalog as matcher candidates,
// ordered by product id so matching is reproducible run-to-run.
func CatalogSnapshot(ctx context.Context, agencyId string) ([]matching.Candidate, error) {
	db := config.GetDB()
	if db == nil {
		return nil, ErrDBNotInitialized
	}

	var products []CatalogProduct
	if err := db.WithContext(ctx).
		Where("agency_id = ? AND active = ?", agencyId, true).
		Order("id").
		Find(&products).Error; err != nil {
		return nil, err
	}

	candidates := make([]matching.Candidate, 0, len(products))
	for i := range products {
		p := &products[i]
		candidates = append(candidates, matching.Candidate{
			ID:          p.ID,
			Name:        p.Name,
			Category:    p.Category,
			SubCategory: p.SubCategory,
			Colors:      p.Colors(),
			Sizes:       p.Sizes(),
		})
	}
	return candidates, nil
}

// GormCatalogReader adapts CatalogSnapshot to the orchestrator's catalog
// dependency.
type GormCatalogReader struct{}

func (GormCatalogReader) Snapshot(ctx context.Context, agencyId string) ([]matching.Candidate, error) {
	return CatalogSnapshot(ctx, agencyId)
}
