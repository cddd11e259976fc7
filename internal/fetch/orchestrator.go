// Package fetch drives one source run end to end: load the watermark,
// invoke the adapter, apply the recency gate and link dedup, parse,
// persist, and advance the watermark only after everything else succeeded.
package fetch

import (
	"context"
	"strings"
	"time"

	"boardsync/internal/logging"
	"boardsync/internal/parser"
	"boardsync/internal/sources"
	"boardsync/internal/store"
	"boardsync/pkg/models"
	"boardsync/pkg/utils"
)

const overlapBuffer = 5 * time.Minute

// Orchestrator runs a single named source end to end.
type Orchestrator struct {
	Registry        *sources.Registry
	Store           *store.Store
	Parser          *parser.Parser
	RetentionWindow time.Duration
	logger          logging.Logger
}

func New(registry *sources.Registry, st *store.Store, p *parser.Parser, retentionWindow time.Duration) *Orchestrator {
	return &Orchestrator{
		Registry:        registry,
		Store:           st,
		Parser:          p,
		RetentionWindow: retentionWindow,
		logger:          logging.GetGlobalLogger(),
	}
}

// Result summarizes one source run for logging/CLI output.
type Result struct {
	Source   string
	Fetched  int
	Kept     int
	Skipped  int
	Inserted int
}

// Run executes one source's full cycle: watermark load, fetch, recency
// gate + dedup, parse, persist, watermark advance. A failure here does not
// affect any other source's run — the scheduler/CLI caller treats each
// source as isolated.
func (o *Orchestrator) Run(ctx context.Context, sourceName string) (*Result, error) {
	adapter, ok := o.Registry.Get(sourceName)
	if !ok {
		return nil, sources.ErrUnknownSource(sourceName)
	}

	started := time.Now()
	logger := o.logger.WithFields(map[string]interface{}{
		"source": sourceName,
		"run_id": utils.NewRunID(),
	})

	watermark, err := o.Store.Watermark(ctx, sourceName)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().UTC().Add(-o.RetentionWindow)
	if watermark.LastRunAt != nil {
		cutoff = watermark.LastRunAt.Add(-overlapBuffer)
	}

	raw, err := adapter.FetchJobs(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	extractor := adapter.Extractor()
	result := &Result{Source: sourceName, Fetched: len(raw)}

	kept := make([]sources.RawItem, 0, len(raw))
	linksByIndex := make([]string, 0, len(raw))
	for _, item := range raw {
		link, err := extractor.GetLink(item)
		if err != nil {
			result.Skipped++
			continue
		}
		postedOn, hasPostedOn := extractor.GetPostedOn(item)
		if !parser.IsRecent(postedOn, hasPostedOn, cutoff) {
			result.Skipped++
			continue
		}
		kept = append(kept, item)
		linksByIndex = append(linksByIndex, link)
	}

	existing, err := o.Store.ExistingLinks(ctx, linksByIndex)
	if err != nil {
		return nil, err
	}

	jobs := make([]*models.Job, 0, len(kept))
	payloads := make([]*models.Payload, 0, len(kept))
	tagsByLink := map[string][]string{}

	for i, item := range kept {
		link := linksByIndex[i]
		if existing[strings.ToLower(link)] {
			result.Skipped++
			continue
		}

		parsed, err := o.Parser.Parse(ctx, extractor, item, cutoff)
		if err != nil {
			if err == parser.ErrTooOld {
				result.Skipped++
				continue
			}
			logger.Warn("failed to parse listing", map[string]interface{}{
				"link":  link,
				"error": err.Error(),
			})
			result.Skipped++
			continue
		}

		parsed.Job.Source = sourceName
		jobs = append(jobs, parsed.Job)
		payloads = append(payloads, parsed.Payload)
		tagsByLink[link] = parsed.Job.Tags
	}
	result.Kept = len(jobs)

	insertedIDs, err := o.Store.UpsertJobs(ctx, jobs)
	if err != nil {
		return nil, err
	}
	result.Inserted = len(insertedIDs)

	if err := o.persistTags(ctx, jobs); err != nil {
		return nil, err
	}

	if err := o.Store.UpsertPayloads(ctx, payloads); err != nil {
		return nil, err
	}

	if err := o.Store.AdvanceWatermark(ctx, sourceName, time.Now().UTC()); err != nil {
		return nil, utils.NewDatabaseError("watermark not advanced after successful run of "+sourceName, err)
	}

	logger.Info("source run completed", map[string]interface{}{
		"fetched":  result.Fetched,
		"kept":     result.Kept,
		"skipped":  result.Skipped,
		"inserted": result.Inserted,
		"duration": utils.FormatDuration(time.Since(started)),
	})
	return result, nil
}

func (o *Orchestrator) persistTags(ctx context.Context, jobs []*models.Job) error {
	nameSet := map[string]bool{}
	for _, job := range jobs {
		for _, tag := range job.Tags {
			nameSet[tag] = true
		}
	}
	if len(nameSet) == 0 {
		return nil
	}
	names := make([]string, 0, len(nameSet))
	for name := range nameSet {
		names = append(names, name)
	}

	tagIDs, err := o.Store.UpsertTags(ctx, names)
	if err != nil {
		return err
	}

	var links []models.JobTag
	for _, job := range jobs {
		if job.ID == 0 {
			continue // conflicted on insert (pre-existing link); tags aren't re-linked
		}
		for _, tag := range job.Tags {
			if id, ok := tagIDs[tag]; ok {
				links = append(links, models.JobTag{JobID: job.ID, TagID: id})
			}
		}
	}
	return o.Store.LinkJobTags(ctx, links)
}

// RunAll executes every registered source, collecting per-source results
// and continuing past individual failures; one broken source never blocks
// the rest.
func (o *Orchestrator) RunAll(ctx context.Context, includeOnly, exclude []string) ([]*Result, []error) {
	names := o.Registry.Names()
	if len(includeOnly) > 0 {
		filtered := make([]string, 0, len(includeOnly))
		allowed := toSet(includeOnly)
		for _, n := range names {
			if allowed[n] {
				filtered = append(filtered, n)
			}
		}
		names = filtered
	}
	if len(exclude) > 0 {
		excluded := toSet(exclude)
		filtered := make([]string, 0, len(names))
		for _, n := range names {
			if !excluded[n] {
				filtered = append(filtered, n)
			}
		}
		names = filtered
	}

	var results []*Result
	var errs []error
	for _, name := range names {
		result, err := o.Run(ctx, name)
		if err != nil {
			o.logger.Error("source run failed", map[string]interface{}{"source": name, "error": err.Error()})
			errs = append(errs, err)
			continue
		}
		results = append(results, result)
	}
	return results, errs
}

func toSet(items []string) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, i := range items {
		out[i] = true
	}
	return out
}
