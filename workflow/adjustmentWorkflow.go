package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bitbucket.org/swelyradist/agency_backend/config"
	"bitbucket.org/swelyradist/agency_backend/matching"
	"bitbucket.org/swelyradist/agency_backend/models"
	"bitbucket.org/swelyradist/agency_backend/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrApprovalConflict means the request was already reviewed; approvals and
	// rejections are terminal and never overwritten.
	ErrApprovalConflict = errors.New("adjustment request already reviewed")

	ErrZeroAdjustment = errors.New("adjustment quantity must not be zero")

	ErrActorMissing = errors.New("acting user missing: send it in the payload or the X-User-Name header")
)

// resolveActor picks the acting user for audit fields. An explicit payload
// value wins; otherwise the identity seeded from the request headers is used.
func resolveActor(ctx context.Context, explicit string) string {
	if actor := strings.TrimSpace(explicit); actor != "" {
		return actor
	}
	if actor, ok := utils.GetUserNameFromContext(ctx); ok {
		return strings.TrimSpace(actor)
	}
	return ""
}

// NewAdjustmentRequest is the request payload for a manual stock correction.
type NewAdjustmentRequest struct {
	ProductName   string          `json:"product_name" binding:"required"`
	Color         string          `json:"color"`
	Size          string          `json:"size"`
	AdjustmentQty decimal.Decimal `json:"adjustment_qty" binding:"required"`
	Reason        string          `json:"reason" binding:"required"`
	RequestedBy   string          `json:"requested_by"`
}

// CreateAdjustmentRequest records a pending correction together with a
// snapshot of the variant's derived stock at request time, so the reviewer
// sees what the requester saw.
func CreateAdjustmentRequest(ctx context.Context, agencyId string, req NewAdjustmentRequest) (*models.AdjustmentRequest, error) {
	db := config.GetDB()
	if db == nil {
		return nil, models.ErrDBNotInitialized
	}
	if req.AdjustmentQty.IsZero() {
		return nil, ErrZeroAdjustment
	}
	requestedBy := resolveActor(ctx, req.RequestedBy)
	if requestedBy == "" {
		return nil, ErrActorMissing
	}

	color := strings.TrimSpace(req.Color)
	if color == "" {
		color = matching.DefaultVariant
	}
	size := strings.TrimSpace(req.Size)
	if size == "" {
		size = matching.DefaultVariant
	}
	productName := matching.NormalizeName(req.ProductName)

	snapshot, err := models.CurrentStock(ctx, agencyId, productName, color, size)
	if err != nil {
		return nil, err
	}

	adj := &models.AdjustmentRequest{
		AgencyId:             agencyId,
		ProductName:          productName,
		Color:                color,
		Size:                 size,
		CurrentStockSnapshot: snapshot,
		AdjustmentQty:        req.AdjustmentQty,
		Reason:               strings.TrimSpace(req.Reason),
		Status:               models.AdjustmentStatusPending,
		RequestedBy:          requestedBy,
	}
	if err := db.WithContext(ctx).Create(adj).Error; err != nil {
		return nil, err
	}
	return adj, nil
}

// ReviewTransition validates one status transition. It is the single place
// the pending -> approved/rejected rule lives.
func ReviewTransition(current models.AdjustmentStatus, next models.AdjustmentStatus) error {
	if current.Terminal() {
		return ErrApprovalConflict
	}
	if current != models.AdjustmentStatusPending {
		return fmt.Errorf("unknown adjustment status %q", string(current))
	}
	if next != models.AdjustmentStatusApproved && next != models.AdjustmentStatusRejected {
		return fmt.Errorf("invalid review outcome %q", string(next))
	}
	return nil
}

// ApproveAdjustment flips a pending request to approved and appends its
// ledger transaction, atomically. If the ledger insert fails the review is
// rolled back and the request stays pending.
func ApproveAdjustment(ctx context.Context, agencyId string, requestId int, reviewedBy string, notes string) (*models.AdjustmentRequest, error) {
	db := config.GetDB()
	if db == nil {
		return nil, models.ErrDBNotInitialized
	}
	reviewedBy = resolveActor(ctx, reviewedBy)
	if reviewedBy == "" {
		return nil, ErrActorMissing
	}

	var adj models.AdjustmentRequest
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND agency_id = ?", requestId, agencyId).
			Take(&adj).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrorRecordNotFound
			}
			return err
		}
		if err := ReviewTransition(adj.Status, models.AdjustmentStatusApproved); err != nil {
			return err
		}

		correlationId, _ := utils.GetCorrelationIdFromContext(ctx)
		now := time.Now()
		ledgerTx := models.LedgerTransaction{
			ID:              uuid.NewString(),
			AgencyId:        agencyId,
			SourceSystem:    models.SourceSystemAdjustment,
			ExternalId:      fmt.Sprintf("ADJ-%d", adj.ID),
			ProductName:     adj.ProductName,
			Color:           adj.Color,
			Size:            adj.Size,
			TransactionType: models.TransactionTypeAdjustment,
			SignedQty:       adj.AdjustmentQty,
			ReferenceName:   adj.RequestedBy,
			TransactionDate: now,
			Notes:           adj.Reason,
			CorrelationId:   correlationId,
		}
		if err := tx.Create(&ledgerTx).Error; err != nil {
			return err
		}

		adj.Status = models.AdjustmentStatusApproved
		adj.ReviewedBy = reviewedBy
		adj.ReviewNotes = strings.TrimSpace(notes)
		adj.ReviewedAt = &now
		adj.LedgerTransactionId = ledgerTx.ID
		return tx.Save(&adj).Error
	})
	if err != nil {
		return nil, err
	}

	if err := models.InvalidateStockCache(agencyId); err != nil {
		config.GetLogger().WithField("agencyId", agencyId).Warn("stock cache invalidation failed: " + err.Error())
	}
	return &adj, nil
}

// RejectAdjustment flips a pending request to rejected. No ledger effect.
func RejectAdjustment(ctx context.Context, agencyId string, requestId int, reviewedBy string, notes string) (*models.AdjustmentRequest, error) {
	db := config.GetDB()
	if db == nil {
		return nil, models.ErrDBNotInitialized
	}
	reviewedBy = resolveActor(ctx, reviewedBy)
	if reviewedBy == "" {
		return nil, ErrActorMissing
	}

	var adj models.AdjustmentRequest
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND agency_id = ?", requestId, agencyId).
			Take(&adj).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrorRecordNotFound
			}
			return err
		}
		if err := ReviewTransition(adj.Status, models.AdjustmentStatusRejected); err != nil {
			return err
		}

		now := time.Now()
		adj.Status = models.AdjustmentStatusRejected
		adj.ReviewedBy = reviewedBy
		adj.ReviewNotes = strings.TrimSpace(notes)
		adj.ReviewedAt = &now
		return tx.Save(&adj).Error
	})
	if err != nil {
		return nil, err
	}
	return &adj, nil
}

// ListAdjustments returns the agency's adjustment requests, newest first,
// optionally filtered by status.
func ListAdjustments(ctx context.Context, agencyId string, status models.AdjustmentStatus) ([]models.AdjustmentRequest, error) {
	db := config.GetDB()
	if db == nil {
		return nil, models.ErrDBNotInitialized
	}

	q := db.WithContext(ctx).Where("agency_id = ?", agencyId)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var requests []models.AdjustmentRequest
	if err := q.Order("id DESC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}
