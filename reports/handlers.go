package reports

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"bitbucket.org/swelyradist/agency_backend/config"
	"bitbucket.org/swelyradist/agency_backend/models"
	"bitbucket.org/swelyradist/agency_backend/utils"
	"github.com/gin-gonic/gin"
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

// AchievementHandler computes one target's category achievement breakdown.
func AchievementHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		agencyId, err := resolveAgencyID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		targetId, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid target id"})
			return
		}

		ctx := utils.SetAgencyIdInContext(c.Request.Context(), agencyId)

		target, err := models.GetTargetById(ctx, agencyId, targetId)
		if err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "target not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		results, err := ComputeAchievement(ctx, agencyId, target)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"customerName": target.CustomerName,
			"year":         target.Year,
			"monthsSpec":   target.MonthsSpec,
			"achievements": results,
		})
	}
}

// ListTargetsHandler lists the agency's targets with their category details.
func ListTargetsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		agencyId, err := resolveAgencyID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		ctx := utils.SetAgencyIdInContext(c.Request.Context(), agencyId)
		db := config.GetDB().WithContext(ctx)

		var targets []models.Target
		if err := db.Preload("Details").
			Where("agency_id = ?", agencyId).
			Order("year DESC, id DESC").
			Find(&targets).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"targets": targets})
	}
}
