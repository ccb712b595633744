package models

import (
	"context"
	"fmt"
	"time"

	"bitbucket.org/swelyradist/agency_backend/config"
	"github.com/shopspring/decimal"
)

// StockLevel is the derived on-hand quantity for one product variant. It is
// never stored as independent truth: it is a SUM over ledger_transactions,
// optionally served from a redis materialization that is invalidated (not
// patched) on every insert.
type StockLevel struct {
	ProductName  string          `json:"product_name"`
	Color        string          `json:"color"`
	Size         string          `json:"size"`
	CurrentStock decimal.Decimal `json:"current_stock"`
}

func stockCacheKey(agencyId string) string {
	return fmt.Sprintf("StockLevels:%s", agencyId)
}

// InvalidateStockCache drops the agency's materialized stock levels.
func InvalidateStockCache(agencyId string) error {
	return config.RemoveRedisKey(stockCacheKey(agencyId))
}

// CurrentStock recomputes the on-hand quantity for one variant key straight
// from the ledger.
func CurrentStock(ctx context.Context, agencyId string, productName string, color string, size string) (decimal.Decimal, error) {
	db := config.GetDB()
	if db == nil {
		return decimal.Zero, ErrDBNotInitialized
	}

	var row struct {
		Total decimal.Decimal
	}
	err := db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(signed_qty), 0) AS total
		FROM ledger_transactions
		WHERE agency_id = ? AND product_name = ? AND color = ? AND size = ?
	`, agencyId, productName, color, size).Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

// StockLevels returns every variant's derived stock for the agency, cached
// until the next ledger insert.
func StockLevels(ctx context.Context, agencyId string) ([]StockLevel, error) {
	var cached []StockLevel
	if found, err := config.GetRedisObject(stockCacheKey(agencyId), &cached); err == nil && found {
		return cached, nil
	}

	db := config.GetDB()
	if db == nil {
		return nil, ErrDBNotInitialized
	}

	var rows []StockLevel
	err := db.WithContext(ctx).Raw(`
		SELECT product_name, color, size, SUM(signed_qty) AS current_stock
		FROM ledger_transactions
		WHERE agency_id = ?
		GROUP BY product_name, color, size
		ORDER BY product_name, color, size
	`, agencyId).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	_ = config.SetRedisObject(stockCacheKey(agencyId), rows, time.Hour)
	return rows, nil
}
