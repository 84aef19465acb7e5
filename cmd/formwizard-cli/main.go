package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	formwizard "github.com/goliatone/go-formwizard"
	"github.com/goliatone/go-formwizard/pkg/bridge"
	"github.com/goliatone/go-formwizard/pkg/cvparse"
	"github.com/goliatone/go-formwizard/pkg/geocode"
	"github.com/goliatone/go-formwizard/pkg/kvstore"
	"github.com/goliatone/go-formwizard/pkg/model"
	"github.com/goliatone/go-formwizard/pkg/prompt"
	"github.com/goliatone/go-formwizard/pkg/render"
	"github.com/goliatone/go-formwizard/pkg/renderers/textsummary"
)

func main() {
	definitionPath := flag.String("definition", "", "questionnaire definition file (embedded default if empty)")
	storeDir := flag.String("store-dir", "", "directory for the transfer record (in-memory if empty)")
	parseURL := flag.String("parse-url", "", "CV parsing backend base URL (demo fallback if empty or unreachable)")
	geocodeURL := flag.String("geocode-url", "", "geocoding service base URL (addresses stay unverified if empty)")
	timeout := flag.Duration("timeout", 10*time.Second, "timeout for backend calls")
	flag.Parse()

	ctx := context.Background()

	q, err := loadDefinition(*definitionPath)
	if err != nil {
		log.Fatalf("definition: %v", err)
	}

	store, err := openStore(*storeDir)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	transfer, err := bridge.New(store)
	if err != nil {
		log.Fatalf("bridge: %v", err)
	}

	session, err := formwizard.NewSession(q, formwizard.WithBridge(transfer))
	if err != nil {
		log.Fatalf("session: %v", err)
	}

	var runnerOpts []prompt.Option
	if *geocodeURL != "" {
		provider, err := geocode.NewHTTPProvider(*geocodeURL, geocode.WithTimeout(*timeout))
		if err != nil {
			log.Fatalf("geocode: %v", err)
		}
		resolver, err := geocode.NewResolver(provider)
		if err != nil {
			log.Fatalf("geocode: %v", err)
		}
		runnerOpts = append(runnerOpts, prompt.WithResolver(resolver))
	}
	if *parseURL != "" {
		parser, err := cvparse.NewClient(*parseURL, cvparse.WithTimeout(*timeout))
		if err != nil {
			log.Fatalf("cvparse: %v", err)
		}
		runnerOpts = append(runnerOpts, prompt.WithParser(parser))
	}

	runner := prompt.NewRunner(runnerOpts...)
	snap, err := runner.Run(ctx, session)
	if err != nil {
		log.Fatalf("run: %v", err)
	}

	recap, err := textsummary.New().Render(ctx, render.BuildView(q, snap), render.Options{})
	if err != nil {
		log.Fatalf("recap: %v", err)
	}
	fmt.Println()
	os.Stdout.Write(recap)

	record, ok, err := transfer.Consume(ctx)
	if err != nil || !ok {
		log.Fatalf("transfer record missing after submit: ok=%v err=%v", ok, err)
	}
	fmt.Printf("\nSubmitted. Transfer record %s written", record.ID)
	if *storeDir != "" {
		fmt.Printf(" under %s", *storeDir)
	}
	fmt.Println(".")
}

func loadDefinition(path string) (model.Questionnaire, error) {
	if path == "" {
		return formwizard.DefaultDefinition()
	}
	return formwizard.LoadDefinition(path)
}

func openStore(dir string) (kvstore.Store, error) {
	if dir == "" {
		return kvstore.NewMemory(), nil
	}
	return kvstore.NewDir(dir)
}
