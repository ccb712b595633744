package recon

import (
	"context"

	"bitbucket.org/swelyradist/agency_backend/config"
	"bitbucket.org/swelyradist/agency_backend/matching"
	"bitbucket.org/swelyradist/agency_backend/models"
)

// CodeLink pairs the same physical item recorded under variant product codes
// by two different sources (SB28 on one side, SBE28 on the other).
type CodeLink struct {
	SourceA models.SourceSystem `json:"source_a"`
	CodeA   string              `json:"code_a"`
	NameA   string              `json:"name_a"`
	SourceB models.SourceSystem `json:"source_b"`
	CodeB   string              `json:"code_b"`
	NameB   string              `json:"name_b"`
}

type codedProduct struct {
	SourceSystem models.SourceSystem
	ProductCode  string
	ProductName  string
}

// CodeLinks reports every alias-equivalent product code pair between two
// sources' ledger rows. This is identifier-level reconciliation, separate
// from catalog matching: it answers "did both sources see this item", not
// "which catalog product is it".
func CodeLinks(ctx context.Context, agencyId string, sourceA, sourceB models.SourceSystem) ([]CodeLink, error) {
	db := config.GetDB()
	if db == nil {
		return nil, models.ErrDBNotInitialized
	}

	load := func(source models.SourceSystem) ([]codedProduct, error) {
		var rows []codedProduct
		err := db.WithContext(ctx).Raw(`
			SELECT DISTINCT source_system, product_code, product_name
			FROM ledger_transactions
			WHERE agency_id = ? AND source_system = ? AND product_code <> ''
			ORDER BY product_code, product_name
		`, agencyId, source).Scan(&rows).Error
		return rows, err
	}

	rowsA, err := load(sourceA)
	if err != nil {
		return nil, err
	}
	rowsB, err := load(sourceB)
	if err != nil {
		return nil, err
	}
	return linkCodes(rowsA, rowsB), nil
}

func linkCodes(rowsA, rowsB []codedProduct) []CodeLink {
	var links []CodeLink
	for _, a := range rowsA {
		for _, b := range rowsB {
			if matching.SameExternalCode(a.ProductCode, b.ProductCode) {
				links = append(links, CodeLink{
					SourceA: a.SourceSystem,
					CodeA:   a.ProductCode,
					NameA:   a.ProductName,
					SourceB: b.SourceSystem,
					CodeB:   b.ProductCode,
					NameB:   b.ProductName,
				})
			}
		}
	}
	return links
}
