package reports

import (
	"context"
	"strings"

	"bitbucket.org/swelyradist/agency_backend/config"
	"bitbucket.org/swelyradist/agency_backend/models"
	"github.com/shopspring/decimal"
)

// CategoryAchievement is one category's realized amount against its target.
type CategoryAchievement struct {
	Category string          `json:"category"`
	Target   decimal.Decimal `json:"target"`
	Achieved decimal.Decimal `json:"achieved"`
	Percent  decimal.Decimal `json:"percent"`
}

// LineAmount is the single source of truth for how much one ledger line is
// worth: delivered quantity times unit price, falling back to the stored line
// subtotal only when that product is zero.
func LineAmount(qty decimal.Decimal, unitPrice decimal.Decimal, subtotal decimal.Decimal) decimal.Decimal {
	amount := qty.Abs().Mul(unitPrice)
	if amount.IsZero() {
		return subtotal.Abs()
	}
	return amount
}

// achievedByCategory sums realized amounts per category for one customer over
// the inclusive date range, counting only matched sales-side movements.
func achievedByCategory(ctx context.Context, agencyId string, customerName string, spec string, year int) (map[string]decimal.Decimal, error) {
	db := config.GetDB()
	if db == nil {
		return nil, models.ErrDBNotInitialized
	}

	start, end := PeriodRange(spec, year)

	var rows []achievementLine
	err := db.WithContext(ctx).Raw(`
		SELECT category, signed_qty, unit_price, line_subtotal
		FROM ledger_transactions
		WHERE agency_id = ?
		  AND LOWER(TRIM(reference_name)) = ?
		  AND transaction_type IN (?, ?)
		  AND matched_product_id <> ''
		  AND transaction_date >= ? AND transaction_date < ?
	`, agencyId, strings.ToLower(strings.TrimSpace(customerName)),
		models.TransactionTypeExternalInvoice, models.TransactionTypeSale,
		start, end.AddDate(0, 0, 1)).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return sumLineAmounts(rows), nil
}

type achievementLine struct {
	Category     string
	SignedQty    decimal.Decimal
	UnitPrice    decimal.Decimal
	LineSubtotal decimal.Decimal
}

// sumLineAmounts folds ledger lines into per-category totals. Each line is
// valued individually through LineAmount, so a line missing its unit price
// falls back to its own stored subtotal without dragging sibling lines with it.
func sumLineAmounts(rows []achievementLine) map[string]decimal.Decimal {
	achieved := make(map[string]decimal.Decimal, len(rows))
	for _, r := range rows {
		achieved[r.Category] = achieved[r.Category].Add(LineAmount(r.SignedQty, r.UnitPrice, r.LineSubtotal))
	}
	return achieved
}

// ComputeAchievement compares realized amounts against one target's category
// breakdown. Categories with a zero target report zero percent, never a
// division error.
func ComputeAchievement(ctx context.Context, agencyId string, target *models.Target) ([]CategoryAchievement, error) {
	achieved, err := achievedByCategory(ctx, agencyId, target.CustomerName, target.MonthsSpec, target.Year)
	if err != nil {
		return nil, err
	}

	results := make([]CategoryAchievement, 0, len(target.Details))
	for _, detail := range target.Details {
		results = append(results, buildAchievement(detail.Category, detail.Amount, achieved[detail.Category]))
	}
	return results, nil
}

func buildAchievement(category string, targetAmount decimal.Decimal, achievedAmount decimal.Decimal) CategoryAchievement {
	out := CategoryAchievement{
		Category: category,
		Target:   targetAmount,
		Achieved: achievedAmount,
		Percent:  decimal.Zero,
	}
	if !targetAmount.IsZero() {
		out.Percent = achievedAmount.Div(targetAmount).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return out
}
