package main

import (
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"bitbucket.org/swelyradist/agency_backend/config"
	"bitbucket.org/swelyradist/agency_backend/middlewares"
	"bitbucket.org/swelyradist/agency_backend/models"
	"bitbucket.org/swelyradist/agency_backend/recon"
	"bitbucket.org/swelyradist/agency_backend/reports"
	"bitbucket.org/swelyradist/agency_backend/workflow"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const defaultPort = "8080"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	if strings.EqualFold(os.Getenv("AUTO_MIGRATE"), "true") {
		models.MigrateTable()
	}

	r := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders,
		"Authorization", "X-Agency-Id", "X-Correlation-Id")
	r.Use(cors.New(corsConfig))
	r.Use(middlewares.AgencyMiddleware())
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
	})

	api := r.Group("/api/v1")
	{
		api.POST("/recon/run/:source", recon.RunIngestionHandler())
		api.GET("/recon/runs", recon.RunHistoryHandler())
		api.GET("/recon/code-links", recon.CodeLinksHandler())

		api.GET("/stock", recon.StockLevelsHandler())
		api.GET("/stock/current", recon.CurrentStockHandler())

		api.POST("/adjustments", workflow.CreateAdjustmentHandler())
		api.GET("/adjustments", workflow.ListAdjustmentsHandler())
		api.POST("/adjustments/:id/approve", workflow.ApproveAdjustmentHandler())
		api.POST("/adjustments/:id/reject", workflow.RejectAdjustmentHandler())

		api.GET("/targets", reports.ListTargetsHandler())
		api.GET("/targets/:id/achievement", reports.AchievementHandler())
	}

	logger := config.GetLogger()
	logger.WithField("port", port).Info("agency backend listening")
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
