package workflow

import (
	"context"
	"errors"
	"testing"

	"bitbucket.org/swelyradist/agency_backend/models"
	"bitbucket.org/swelyradist/agency_backend/utils"
)

// NOTE: These tests are intentionally DB-free. The transaction-scoped parts
// (row lock, atomic ledger append) need MySQL; the transition rule itself is
// pure and lives in ReviewTransition so it can be pinned here.

func TestReviewTransition_PendingCanBeApprovedOrRejected(t *testing.T) {
	if err := ReviewTransition(models.AdjustmentStatusPending, models.AdjustmentStatusApproved); err != nil {
		t.Errorf("pending -> approved: %v", err)
	}
	if err := ReviewTransition(models.AdjustmentStatusPending, models.AdjustmentStatusRejected); err != nil {
		t.Errorf("pending -> rejected: %v", err)
	}
}

func TestReviewTransition_TerminalStatesConflict(t *testing.T) {
	terminals := []models.AdjustmentStatus{
		models.AdjustmentStatusApproved,
		models.AdjustmentStatusRejected,
	}
	outcomes := []models.AdjustmentStatus{
		models.AdjustmentStatusApproved,
		models.AdjustmentStatusRejected,
	}
	for _, current := range terminals {
		for _, next := range outcomes {
			err := ReviewTransition(current, next)
			if !errors.Is(err, ErrApprovalConflict) {
				t.Errorf("%s -> %s: err = %v, want ErrApprovalConflict", current, next, err)
			}
		}
	}
}

func TestReviewTransition_RejectsNonReviewOutcomes(t *testing.T) {
	if err := ReviewTransition(models.AdjustmentStatusPending, models.AdjustmentStatusPending); err == nil {
		t.Error("pending -> pending should be invalid")
	}
	if err := ReviewTransition(models.AdjustmentStatus("weird"), models.AdjustmentStatusApproved); err == nil {
		t.Error("unknown current status should be invalid")
	}
}

func TestResolveActor(t *testing.T) {
	ctx := context.Background()
	seeded := utils.SetUserNameInContext(ctx, "gateway-user")

	if got := resolveActor(seeded, "explicit-user"); got != "explicit-user" {
		t.Errorf("explicit value should win, got %q", got)
	}
	if got := resolveActor(seeded, "  "); got != "gateway-user" {
		t.Errorf("blank payload should fall back to the seeded identity, got %q", got)
	}
	if got := resolveActor(ctx, ""); got != "" {
		t.Errorf("no identity anywhere should resolve empty, got %q", got)
	}
}
