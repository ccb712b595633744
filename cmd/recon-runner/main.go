package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"bitbucket.org/swelyradist/agency_backend/config"
	"bitbucket.org/swelyradist/agency_backend/models"
	"bitbucket.org/swelyradist/agency_backend/recon"
	"bitbucket.org/swelyradist/agency_backend/utils"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// recon-runner executes one ingestion run from the command line, for backfills
// and for operating without the HTTP server.
func main() {
	agencyID := flag.String("agency-id", "", "Required: agency id (uuid), or 'all' for every active agency")
	source := flag.String("source", "", "Required: source system (erp_bot, local_mirror, local_sales, customer_return, company_return)")
	workers := flag.Int("workers", 0, "Optional: max concurrent record workers")
	continueOnError := flag.Bool("continue-on-error", false, "Skip failing agencies and continue with the rest")
	flag.Parse()

	if strings.TrimSpace(*agencyID) == "" || strings.TrimSpace(*source) == "" {
		fmt.Fprintln(os.Stderr, "--agency-id and --source are required")
		os.Exit(1)
	}

	_ = godotenv.Load()
	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	adapter, err := recon.AdapterFor(models.SourceSystem(strings.TrimSpace(*source)))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx := utils.SetCorrelationIdInContext(context.Background(), uuid.NewString())

	var agencies []models.Agency
	if strings.EqualFold(*agencyID, "all") {
		agencies, err = models.GetActiveAgencies(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "loading agencies: %v\n", err)
			os.Exit(1)
		}
	} else {
		agency, err := models.GetAgencyById(ctx, strings.TrimSpace(*agencyID))
		if err != nil {
			fmt.Fprintf(os.Stderr, "loading agency: %v\n", err)
			os.Exit(1)
		}
		agencies = []models.Agency{*agency}
	}

	orch := recon.NewOrchestrator(models.GormCatalogReader{}, models.GormLedgerStore{}, recon.DefaultMatcher(), config.GetLogger())
	if *workers > 0 {
		orch.MaxWorkers = *workers
	}
	store := recon.RunStore{}

	failed := 0
	for _, a := range agencies {
		agencyCtx := utils.SetAgencyIdInContext(ctx, a.ID)
		scope := recon.AgencyScope{ID: a.ID, DisplayName: a.DisplayName, Timezone: a.Timezone}

		run, err := store.Begin(agencyCtx, scope, adapter.Source(), models.RunTriggeredManual)
		if err != nil {
			fmt.Fprintf(os.Stderr, "agency %s: begin run: %v\n", a.ID, err)
			os.Exit(1)
		}

		summary, runErr := orch.Run(agencyCtx, adapter, scope)
		if err := store.Finish(agencyCtx, run, summary, runErr); err != nil {
			fmt.Fprintf(os.Stderr, "agency %s: persist run: %v\n", a.ID, err)
		}

		fmt.Printf("agency %s (%s): fetched=%d created=%d duplicate=%d matched=%d unmatched=%d skipped=%d errors=%d\n",
			a.ID, a.DisplayName,
			summary.RecordsFetched, summary.TransactionsCreated, summary.RecordsSkippedDuplicate,
			summary.ProductsMatched, summary.ProductsUnmatched, summary.LinesSkipped, len(summary.Errors))

		if runErr != nil {
			failed++
			fmt.Fprintf(os.Stderr, "agency %s: %v\n", a.ID, runErr)
			if !*continueOnError {
				os.Exit(1)
			}
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}
