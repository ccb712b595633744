package reports

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestLineAmount_PrefersQtyTimesUnitPrice(t *testing.T) {
	got := LineAmount(d("3"), d("1000"), d("9999"))
	if !got.Equal(d("3000")) {
		t.Errorf("LineAmount = %s, want 3000", got)
	}
}

func TestLineAmount_FallsBackToSubtotalWhenProductZero(t *testing.T) {
	if got := LineAmount(d("3"), d("0"), d("4500")); !got.Equal(d("4500")) {
		t.Errorf("zero unit price: got %s, want 4500", got)
	}
	if got := LineAmount(d("0"), d("1000"), d("4500")); !got.Equal(d("4500")) {
		t.Errorf("zero quantity: got %s, want 4500", got)
	}
}

func TestLineAmount_UsesAbsoluteQuantity(t *testing.T) {
	// Sales carry negative signed quantities; the realized amount is positive.
	if got := LineAmount(d("-2"), d("1500"), d("0")); !got.Equal(d("3000")) {
		t.Errorf("negative qty: got %s, want 3000", got)
	}
}

func TestSumLineAmounts_FallbackIsPerLine(t *testing.T) {
	// A zero-priced line uses its own subtotal while a priced sibling in the
	// same category still contributes qty*price: 500 + 3*100 = 800.
	rows := []achievementLine{
		{Category: "Shoes", SignedQty: d("0"), UnitPrice: d("0"), LineSubtotal: d("500")},
		{Category: "Shoes", SignedQty: d("3"), UnitPrice: d("100"), LineSubtotal: d("300")},
	}
	got := sumLineAmounts(rows)
	if !got["Shoes"].Equal(d("800")) {
		t.Errorf("Shoes = %s, want 800", got["Shoes"])
	}
}

func TestSumLineAmounts_GroupsByCategory(t *testing.T) {
	rows := []achievementLine{
		{Category: "Shoes", SignedQty: d("-2"), UnitPrice: d("1500"), LineSubtotal: d("0")},
		{Category: "Bags", SignedQty: d("1"), UnitPrice: d("700"), LineSubtotal: d("0")},
		{Category: "Shoes", SignedQty: d("1"), UnitPrice: d("1000"), LineSubtotal: d("0")},
	}
	got := sumLineAmounts(rows)
	if !got["Shoes"].Equal(d("4000")) {
		t.Errorf("Shoes = %s, want 4000", got["Shoes"])
	}
	if !got["Bags"].Equal(d("700")) {
		t.Errorf("Bags = %s, want 700", got["Bags"])
	}
}

func TestBuildAchievement_ZeroTargetReportsZeroPercent(t *testing.T) {
	out := buildAchievement("Shoes", d("0"), d("5000"))
	if !out.Percent.IsZero() {
		t.Errorf("percent = %s, want 0 for zero target", out.Percent)
	}
	if !out.Achieved.Equal(d("5000")) {
		t.Errorf("achieved = %s, want 5000", out.Achieved)
	}
}

func TestBuildAchievement_Percent(t *testing.T) {
	out := buildAchievement("Shoes", d("10000"), d("2500"))
	if !out.Percent.Equal(d("25")) {
		t.Errorf("percent = %s, want 25", out.Percent)
	}
	over := buildAchievement("Bags", d("1000"), d("1500"))
	if !over.Percent.Equal(d("150")) {
		t.Errorf("over-achievement percent = %s, want 150", over.Percent)
	}
}
