package workflow

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"bitbucket.org/swelyradist/agency_backend/models"
	"bitbucket.org/swelyradist/agency_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func resolveAgencyID(c *gin.Context) (string, error) {
	if agencyId, ok := utils.GetAgencyIdFromContext(c.Request.Context()); ok && agencyId != "" {
		return agencyId, nil
	}
	if agencyId := strings.TrimSpace(c.GetHeader("X-Agency-Id")); agencyId != "" {
		return agencyId, nil
	}
	return "", errors.New("agency id missing")
}

// CreateAdjustmentHandler accepts a new pending stock correction.
func CreateAdjustmentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		agencyId, err := resolveAgencyID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req NewAdjustmentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(verrs)})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		ctx := utils.SetAgencyIdInContext(c.Request.Context(), agencyId)
		adj, err := CreateAdjustmentRequest(ctx, agencyId, req)
		if err != nil {
			if errors.Is(err, ErrZeroAdjustment) || errors.Is(err, ErrActorMissing) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, adj)
	}
}

type reviewRequest struct {
	ReviewedBy  string `json:"reviewed_by"`
	ReviewNotes string `json:"review_notes"`
}

func reviewHandler(review func(c *gin.Context, agencyId string, id int, req reviewRequest) (*models.AdjustmentRequest, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		agencyId, err := resolveAgencyID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid adjustment id"})
			return
		}

		var req reviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		adj, err := review(c, agencyId, id, req)
		if err != nil {
			switch {
			case errors.Is(err, utils.ErrorRecordNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "adjustment request not found"})
			case errors.Is(err, ErrActorMissing):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			case errors.Is(err, ErrApprovalConflict):
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			}
			return
		}
		c.JSON(http.StatusOK, adj)
	}
}

// ApproveAdjustmentHandler flips a pending request to approved and appends
// its ledger transaction.
func ApproveAdjustmentHandler() gin.HandlerFunc {
	return reviewHandler(func(c *gin.Context, agencyId string, id int, req reviewRequest) (*models.AdjustmentRequest, error) {
		ctx := utils.SetAgencyIdInContext(c.Request.Context(), agencyId)
		return ApproveAdjustment(ctx, agencyId, id, req.ReviewedBy, req.ReviewNotes)
	})
}

// RejectAdjustmentHandler flips a pending request to rejected.
func RejectAdjustmentHandler() gin.HandlerFunc {
	return reviewHandler(func(c *gin.Context, agencyId string, id int, req reviewRequest) (*models.AdjustmentRequest, error) {
		ctx := utils.SetAgencyIdInContext(c.Request.Context(), agencyId)
		return RejectAdjustment(ctx, agencyId, id, req.ReviewedBy, req.ReviewNotes)
	})
}

// ListAdjustmentsHandler lists the agency's requests, optionally filtered by
// ?status=pending|approved|rejected.
func ListAdjustmentsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		agencyId, err := resolveAgencyID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		ctx := utils.SetAgencyIdInContext(c.Request.Context(), agencyId)

		status := models.AdjustmentStatus(strings.TrimSpace(c.Query("status")))
		requests, err := ListAdjustments(ctx, agencyId, status)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"adjustments": requests})
	}
}
