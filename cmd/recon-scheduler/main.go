package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bitbucket.org/swelyradist/agency_backend/config"
	"bitbucket.org/swelyradist/agency_backend/models"
	"bitbucket.org/swelyradist/agency_backend/recon"
	"bitbucket.org/swelyradist/agency_backend/utils"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// recon-scheduler runs ingestion on a cron schedule for every active agency
// and every configured source. Timeout and retry policy live here, not in the
// orchestrator.
func main() {
	_ = godotenv.Load()
	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	logger := config.GetLogger()

	schedule := strings.TrimSpace(os.Getenv("RECON_CRON_SCHEDULE"))
	if schedule == "" {
		schedule = "0 */2 * * *" // every two hours
	}

	sources := scheduledSources()
	runTimeout := timeoutFromEnv()

	loc := time.UTC
	if tz := strings.TrimSpace(os.Getenv("RECON_CRON_TZ")); tz != "" {
		if parsed, err := time.LoadLocation(tz); err == nil {
			loc = parsed
		}
	}

	c := cron.New(cron.WithLocation(loc))
	_, err := c.AddFunc(schedule, func() {
		runAll(logger, sources, runTimeout)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid cron schedule %q: %v\n", schedule, err)
		os.Exit(1)
	}

	logger.WithFields(logrus.Fields{
		"schedule": schedule,
		"sources":  sources,
	}).Info("recon scheduler started")
	c.Start()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	stopCtx := c.Stop()
	<-stopCtx.Done()
	logger.Info("recon scheduler stopped")
}

func scheduledSources() []models.SourceSystem {
	raw := strings.TrimSpace(os.Getenv("RECON_SOURCES"))
	if raw == "" {
		return []models.SourceSystem{
			models.SourceSystemERPBot,
			models.SourceSystemLocalSales,
			models.SourceSystemCustomerReturn,
			models.SourceSystemCompanyReturn,
		}
	}
	var sources []models.SourceSystem
	for _, part := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(part); s != "" {
			sources = append(sources, models.SourceSystem(s))
		}
	}
	return sources
}

func timeoutFromEnv() time.Duration {
	if raw := strings.TrimSpace(os.Getenv("RECON_RUN_TIMEOUT")); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			return d
		}
	}
	return 15 * time.Minute
}

func runAll(logger *logrus.Logger, sources []models.SourceSystem, runTimeout time.Duration) {
	baseCtx := utils.SetCorrelationIdInContext(context.Background(), uuid.NewString())

	agencies, err := models.GetActiveAgencies(baseCtx)
	if err != nil {
		config.LogError(logger, "recon-scheduler", "runAll", "load agencies", nil, err)
		return
	}

	orch := recon.NewOrchestrator(models.GormCatalogReader{}, models.GormLedgerStore{}, recon.DefaultMatcher(), logger)
	store := recon.RunStore{}

	for _, source := range sources {
		adapter, err := recon.AdapterFor(source)
		if err != nil {
			config.LogError(logger, "recon-scheduler", "runAll", "build adapter", string(source), err)
			continue
		}

		for _, a := range agencies {
			ctx, cancel := context.WithTimeout(utils.SetAgencyIdInContext(baseCtx, a.ID), runTimeout)
			scope := recon.AgencyScope{ID: a.ID, DisplayName: a.DisplayName, Timezone: a.Timezone}

			run, err := store.Begin(ctx, scope, source, models.RunTriggeredSystem)
			if err != nil {
				config.LogError(logger, "recon-scheduler", "runAll", "begin run", a.ID, err)
				cancel()
				continue
			}

			summary, runErr := orch.Run(ctx, adapter, scope)
			if err := store.Finish(ctx, run, summary, runErr); err != nil {
				config.LogError(logger, "recon-scheduler", "runAll", "persist run", a.ID, err)
			}
			if runErr != nil {
				config.LogError(logger, "recon-scheduler", "runAll", "run", a.ID, runErr)
			} else {
				logger.WithFields(logrus.Fields{
					"agencyId": a.ID,
					"source":   source,
					"created":  summary.TransactionsCreated,
					"matched":  summary.ProductsMatched,
					"errors":   len(summary.Errors),
				}).Info("ingestion run finished")
			}
			cancel()
		}
	}
}
