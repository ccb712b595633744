package recon

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"bitbucket.org/swelyradist/agency_backend/config"
	"bitbucket.org/swelyradist/agency_backend/matching"
	"bitbucket.org/swelyradist/agency_backend/models"
	"bitbucket.org/swelyradist/agency_backend/utils"
	"github.com/gin-gonic/gin"
)

// AdapterFor builds the source adapter for a source system name. The external
// ERP adapter needs credentials from the environment; the local adapters only
// need the database.
func AdapterFor(source models.SourceSystem) (SourceAdapter, error) {
	switch source {
	case models.SourceSystemERPBot:
		return NewERPInvoiceAdapter()
	case models.SourceSystemLocalMirror:
		return NewMirrorInvoiceAdapter(), nil
	case models.SourceSystemLocalSales:
		return NewSalesInvoiceAdapter(), nil
	case models.SourceSystemCustomerReturn:
		return NewCustomerReturnAdapter(), nil
	case models.SourceSystemCompanyReturn:
		return NewCompanyReturnAdapter(), nil
	}
	return nil, fmt.Errorf("unknown source system %q", string(source))
}

func resolveAgencyID(c *gin.Context) (string, error) {
	if agencyId, ok := utils.GetAgencyIdFromContext(c.Request.Context()); ok && agencyId != "" {
		return agencyId, nil
	}
	if agencyId := strings.TrimSpace(c.GetHeader("X-Agency-Id")); agencyId != "" {
		return agencyId, nil
	}
	return "", errors.New("agency id missing")
}

// RunIngestionHandler triggers one ingestion run for one source, synchronously,
// and returns the structured summary.
func RunIngestionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		agencyId, err := resolveAgencyID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		source := models.SourceSystem(strings.TrimSpace(c.Param("source")))
		adapter, err := AdapterFor(source)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx := utils.SetAgencyIdInContext(c.Request.Context(), agencyId)
		agencyRow, err := models.GetAgencyById(ctx, agencyId)
		if err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "agency not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		agency := AgencyScope{ID: agencyRow.ID, DisplayName: agencyRow.DisplayName, Timezone: agencyRow.Timezone}

		store := RunStore{}
		run, err := store.Begin(ctx, agency, source, models.RunTriggeredManual)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		orch := NewOrchestrator(models.GormCatalogReader{}, models.GormLedgerStore{}, DefaultMatcher(), config.GetLogger())
		summary, runErr := orch.Run(ctx, adapter, agency)

		if err := store.Finish(ctx, run, summary, runErr); err != nil {
			config.LogError(config.GetLogger(), moduleName, "RunIngestionHandler", "persist run", agencyId, err)
		}

		if runErr != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": runErr.Error(), "summary": summary})
			return
		}
		c.JSON(http.StatusOK, gin.H{"summary": summary, "runId": run.ID})
	}
}

// RunHistoryHandler lists past ingestion runs, newest first.
func RunHistoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		agencyId, err := resolveAgencyID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		ctx := utils.SetAgencyIdInContext(c.Request.Context(), agencyId)
		db := config.GetDB().WithContext(ctx)

		var runs []models.ReconRun
		if err := db.Where("agency_id = ?", agencyId).Order("id DESC").Limit(50).Find(&runs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"runs": runs})
	}
}

// StockLevelsHandler returns every variant's derived stock for the agency.
func StockLevelsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		agencyId, err := resolveAgencyID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		ctx := utils.SetAgencyIdInContext(c.Request.Context(), agencyId)

		levels, err := models.StockLevels(ctx, agencyId)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"stockLevels": levels})
	}
}

// CodeLinksHandler reconciles product identifiers between two sources'
// ledger rows, e.g. ?sourceA=erp_bot&sourceB=local_sales.
func CodeLinksHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		agencyId, err := resolveAgencyID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		sourceA := models.SourceSystem(strings.TrimSpace(c.Query("sourceA")))
		sourceB := models.SourceSystem(strings.TrimSpace(c.Query("sourceB")))
		if sourceA == "" || sourceB == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "sourceA and sourceB are required"})
			return
		}

		ctx := utils.SetAgencyIdInContext(c.Request.Context(), agencyId)
		links, err := CodeLinks(ctx, agencyId, sourceA, sourceB)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"links": links})
	}
}

// CurrentStockHandler returns the on-hand quantity for one variant. Color and
// size default to the catch-all variant when omitted.
func CurrentStockHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		agencyId, err := resolveAgencyID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		productName := strings.TrimSpace(c.Query("productName"))
		if productName == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "productName is required"})
			return
		}
		color := strings.TrimSpace(c.Query("color"))
		if color == "" {
			color = matching.DefaultVariant
		}
		size := strings.TrimSpace(c.Query("size"))
		if size == "" {
			size = matching.DefaultVariant
		}

		ctx := utils.SetAgencyIdInContext(c.Request.Context(), agencyId)
		qty, err := models.CurrentStock(ctx, agencyId, productName, color, size)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"productName":  productName,
			"color":        color,
			"size":         size,
			"currentStock": qty,
		})
	}
}
