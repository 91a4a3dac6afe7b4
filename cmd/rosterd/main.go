package main

import (
	"context"
	"fmt"
	"os"

	"certroster/internal/config"
	"certroster/internal/crm"
	"certroster/internal/roster"
	"certroster/internal/server"
	"certroster/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)
	must(cfg.Require("PIPEDRIVE_API_TOKEN", cfg.PipedriveAPIToken))

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	client := crm.NewClient(cfg)
	resolver := crm.NewFieldResolver(client)
	if err := resolver.Prime(context.Background()); err != nil {
		fmt.Printf("field option prefetch failed, resolving per field: %v\n", err)
	}

	assembler := roster.NewAssembler(client, resolver, cfg)
	srv := server.New(assembler, db)

	fmt.Printf("rosterd listening on %s\n", cfg.HTTPAddr)
	must(srv.Router().Run(cfg.HTTPAddr))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
