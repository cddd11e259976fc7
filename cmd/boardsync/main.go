// Command boardsync is the process entrypoint: a one-shot fetch runner, a
// long-running cron scheduler, and a one-off database bootstrap helper.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"boardsync/internal/config"
	"boardsync/internal/currency"
	"boardsync/internal/fetch"
	"boardsync/internal/llm"
	"boardsync/internal/logging"
	"boardsync/internal/parser"
	"boardsync/internal/reporting"
	"boardsync/internal/scheduler"
	"boardsync/internal/sources"
	"boardsync/internal/store"
	"boardsync/pkg/models"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "fetch":
		runFetch(os.Args[2:])
	case "scheduler":
		runScheduler(os.Args[2:])
	case "setup-db":
		runSetupDB(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  boardsync fetch [--include-portals a,b] [--exclude-portals c,d]
  boardsync scheduler start|stop|list-jobs|run-job <name>|remove-jobs
  boardsync setup-db --db-name NAME --username USER --password PASS`)
}

type app struct {
	cfg          *config.Config
	logger       logging.Logger
	reporter     *reporting.Collector
	store        *store.Store
	registry     *sources.Registry
	parser       *parser.Parser
	llmManager   *llm.Manager
	orchestrator *fetch.Orchestrator
}

func newApp() (*app, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logging.InitializeLogging(cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	logger := logging.GetGlobalLogger()

	reporter, err := reporting.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize error reporting: %w", err)
	}

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(int(cfg.Database.MaxConns))
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	st := store.New(db)
	registry := sources.BuildRegistry(cfg)

	salaryParser := &parser.SalaryParser{
		DefaultCurrency: cfg.Currency.DefaultCurrency,
		DefaultLocale:   cfg.Currency.DefaultLocale,
		HTTPClient:      &http.Client{Timeout: cfg.Sources.DefaultHTTPTimeout},
	}
	if !currency.IsKnownCode(salaryParser.DefaultCurrency) {
		return nil, nil, fmt.Errorf("unknown default currency code: %s", salaryParser.DefaultCurrency)
	}

	retentionWindow := time.Duration(cfg.Sources.JobAgeLimitDays) * 24 * time.Hour
	p := parser.New(salaryParser, retentionWindow)

	llmManager := llm.NewManager(cfg)
	if err := llmManager.Start(); err != nil {
		logger.Warn("LLM manager failed to start, tag backfill disabled", map[string]interface{}{"error": err.Error()})
	}

	orchestrator := fetch.New(registry, st, p, retentionWindow)

	cleanup := func() {
		llmManager.Stop()
		reporter.Flush(5 * time.Second)
		db.Close()
		logging.CloseLogging()
	}

	return &app{
		cfg:          cfg,
		logger:       logger,
		reporter:     reporter,
		store:        st,
		registry:     registry,
		parser:       p,
		llmManager:   llmManager,
		orchestrator: orchestrator,
	}, cleanup, nil
}

func runFetch(args []string) {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	include := fs.String("include-portals", "", "comma-separated source names to include (default: all)")
	exclude := fs.String("exclude-portals", "", "comma-separated source names to exclude")
	fs.Parse(args)

	if *include != "" && *exclude != "" {
		fmt.Fprintln(os.Stderr, "cannot use --include-portals and --exclude-portals together")
		os.Exit(1)
	}

	a, cleanup, err := newApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer cleanup()

	ctx := context.Background()
	_, errs := a.orchestrator.RunAll(ctx, splitCSV(*include), splitCSV(*exclude))
	a.fillMissingTags(ctx)

	if len(errs) > 0 {
		os.Exit(1)
	}
}

// fillMissingTags backfills tags for jobs that came in without any,
// batched per the LLM provider's configured batch size.
func (a *app) fillMissingTags(ctx context.Context) {
	if !a.llmManager.IsHealthy() {
		return
	}
	jobs, err := a.store.JobsMissingTags(ctx, a.cfg.LLM.BatchSize)
	if err != nil {
		a.logger.Error("failed to load tagless jobs", map[string]interface{}{"error": err.Error()})
		return
	}
	if len(jobs) == 0 {
		return
	}

	inputs := make([]llm.JobInput, len(jobs))
	for i, j := range jobs {
		inputs[i] = llm.JobInput{Link: j.Link, Title: j.Title, Description: j.Description}
	}
	tagsByLink, err := a.llmManager.ExtractTags(ctx, inputs)
	if err != nil {
		a.logger.Error("tag backfill request failed", map[string]interface{}{"error": err.Error()})
		return
	}

	tagNames := map[string]bool{}
	for _, tags := range tagsByLink {
		for _, t := range tags {
			tagNames[t] = true
		}
	}
	names := make([]string, 0, len(tagNames))
	for t := range tagNames {
		names = append(names, t)
	}
	tagIDs, err := a.store.UpsertTags(ctx, names)
	if err != nil {
		a.logger.Error("failed to upsert backfilled tags", map[string]interface{}{"error": err.Error()})
		return
	}

	linkByLink := make(map[string]int64, len(jobs))
	for _, j := range jobs {
		linkByLink[j.Link] = j.JobID
	}

	var links []models.JobTag
	for link, tags := range tagsByLink {
		jobID, ok := linkByLink[link]
		if !ok {
			continue
		}
		for _, t := range tags {
			tagID, ok := tagIDs[t]
			if !ok {
				continue
			}
			links = append(links, models.JobTag{JobID: jobID, TagID: tagID})
		}
	}
	if err := a.store.LinkJobTags(ctx, links); err != nil {
		a.logger.Error("failed to link backfilled tags", map[string]interface{}{"error": err.Error()})
	}
}

func runScheduler(args []string) {
	if len(args) < 1 {
		usage()
		os.Exit(1)
	}

	a, cleanup, err := newApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer cleanup()

	s := scheduler.New(a.logger, a.reporter, a.cfg.Scheduler.ShutdownGrace)
	registerScheduledJobs(s, a)

	switch args[0] {
	case "start":
		s.Start()
		a.logger.Info("scheduler started", nil)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		a.logger.Info("shutting down scheduler", nil)
		s.Stop()
	case "stop":
		s.Stop()
	case "list-jobs":
		for _, j := range s.ListJobs() {
			fmt.Printf("%s\t%s\n", j.Name, j.CronSpec)
		}
	case "run-job":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "run-job requires a job name")
			os.Exit(1)
		}
		if err := s.RunJob(context.Background(), args[1]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	case "remove-jobs":
		s.ClearJobs()
	default:
		usage()
		os.Exit(1)
	}
}

// registerScheduledJobs wires one cron entry per source, plus the shared
// purge and tag-backfill maintenance jobs. wellfound runs on its own
// slower cron since its anti-bot-gated pagination is comparatively
// expensive.
func registerScheduledJobs(s *scheduler.Scheduler, a *app) {
	for _, name := range a.registry.Names() {
		name := name
		cronSpec := a.cfg.Scheduler.DefaultCron
		if name == "wellfound" {
			cronSpec = a.cfg.Scheduler.WellfoundCron
		}
		if err := s.Schedule(name, cronSpec, func(ctx context.Context) error {
			_, err := a.orchestrator.Run(ctx, name)
			return err
		}); err != nil {
			a.logger.Error("failed to register source job", map[string]interface{}{"source": name, "error": err.Error()})
		}
	}

	if err := s.Schedule("purge-old-jobs", a.cfg.Scheduler.PurgeCron, func(ctx context.Context) error {
		deletedJobs, deletedPayloads, err := a.store.PurgeOldJobs(ctx, a.cfg.Sources.JobAgeLimitDays)
		if err != nil {
			return err
		}
		a.logger.Info("purged stale jobs", map[string]interface{}{"jobs": deletedJobs, "payloads": deletedPayloads})
		return nil
	}); err != nil {
		a.logger.Error("failed to register purge-old-jobs", map[string]interface{}{"error": err.Error()})
	}

	fillTagsSpec := fmt.Sprintf("@every %s", a.cfg.Scheduler.FillTagsInterval)
	if err := s.Schedule("fill-missing-tags", fillTagsSpec, func(ctx context.Context) error {
		a.fillMissingTags(ctx)
		return nil
	}); err != nil {
		a.logger.Error("failed to register fill-missing-tags", map[string]interface{}{"error": err.Error()})
	}
}

func runSetupDB(args []string) {
	fs := flag.NewFlagSet("setup-db", flag.ExitOnError)
	dbName := fs.String("db-name", "job_board", "name of the database")
	username := fs.String("username", "job_board", "username for the database")
	password := fs.String("password", "job_board", "password for the user")
	fs.Parse(args)

	createRole := exec.Command("psql", "-c",
		fmt.Sprintf("CREATE ROLE %s WITH LOGIN PASSWORD '%s' CREATEDB;", *username, *password))
	createRole.Stdout = os.Stdout
	createRole.Stderr = os.Stderr
	if err := createRole.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create role: %v\n", err)
		os.Exit(1)
	}

	createDB := exec.Command("psql", "-c",
		fmt.Sprintf("CREATE DATABASE %s WITH OWNER %s;", *dbName, *username))
	createDB.Stdout = os.Stdout
	createDB.Stderr = os.Stderr
	if err := createDB.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create database: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Database setup completed successfully.")
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
