package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"certroster/internal"
	"certroster/internal/config"
	"certroster/internal/crm"
	"certroster/internal/export"
	"certroster/internal/roster"
	"certroster/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	cmd := os.Args[1]
	switch cmd {
	case "deal:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		dealID := fs.String("dealId", "", "CRM deal id")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*dealID) == "" {
			must(fmt.Errorf("--dealId is required"))
		}
		result := assembleDeal(cfg, db, *dealID)
		blob, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(blob))
	case "deal:export":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		dealID := fs.String("dealId", "", "CRM deal id")
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*dealID) == "" {
			must(fmt.Errorf("--dealId is required"))
		}
		outputPath := strings.TrimSpace(*out)
		if outputPath == "" {
			outputPath = filepath.Join(cfg.OutputDir, "roster-"+*dealID+".xlsx")
		}
		result := assembleDeal(cfg, db, *dealID)
		must(export.RosterToXLSX(*dealID, result, outputPath))
		fmt.Printf("exported deal=%s students=%d output=%s\n", *dealID, len(result.Students), outputPath)
	case "runs:list":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", 20, "max runs to list")
		_ = fs.Parse(os.Args[2:])
		runs, err := db.ListRecentRuns(*limit)
		must(err)
		for _, run := range runs {
			fmt.Printf("%s deal=%s training=%q location=%q dates=%s/%s students=%d (%.0fms)\n",
				run.CreatedAt, run.DealID, run.TrainingName, run.TrainingLocation,
				run.TrainingDate, run.SecondaryDate, run.StudentCount, run.TotalMs)
		}
	default:
		usage()
		os.Exit(1)
	}
}

func assembleDeal(cfg config.Config, db *storage.DB, dealID string) internal.RosterResult {
	must(cfg.Require("PIPEDRIVE_API_TOKEN", cfg.PipedriveAPIToken))

	client := crm.NewClient(cfg)
	resolver := crm.NewFieldResolver(client)
	assembler := roster.NewAssembler(client, resolver, cfg)

	start := time.Now()
	result, err := assembler.Assemble(context.Background(), dealID)
	must(err)

	if _, err := db.InsertDealRun(dealID, result, float64(time.Since(start).Milliseconds())); err != nil {
		fmt.Printf("deal run bookkeeping failed: %v\n", err)
	}
	return result
}

func usage() {
	fmt.Println(`usage: certroster <command> [flags]

commands:
  deal:fetch   --dealId <id>            fetch a deal and print its roster as JSON
  deal:export  --dealId <id> [--out p]  fetch a deal and export its roster to XLSX
  runs:list    [--limit n]              list recently processed deals`)
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
