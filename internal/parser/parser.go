// Package parser turns a source's raw listing records into canonical jobs:
// per-source extraction points behind one interface, salary and tag
// normalization, location validation, payload rendering, and the recency
// gate that drops stale listings before any expensive work.
package parser

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"time"

	"boardsync/internal/geo"
	"boardsync/pkg/models"
	"boardsync/pkg/utils"
)

// DataFormat is a source's declared payload encoding; it picks the
// serialization RenderPayload uses for the stored raw record.
type DataFormat string

const (
	FormatJSON             DataFormat = "json"
	FormatXML              DataFormat = "xml"
	FormatHTMLEmbeddedJSON DataFormat = "html-with-embedded-json"
)

// Extractor is implemented once per source adapter and supplies the
// per-field extraction points the shared pipeline drives. item is the raw
// record for a single listing: a decoded JSON struct, a wrapped feed item,
// a goquery selection, whatever the source's raw shape is.
type Extractor interface {
	GetLink(item any) (string, error)
	GetTitle(item any) string
	GetDescription(item any) string
	// GetPostedOn returns ok=false when the source never carries a posting
	// date; the recency gate and Job.PostedOn default both key off that.
	GetPostedOn(item any) (t time.Time, ok bool)
	GetTags(item any) []string
	GetIsRemote(item any) bool
	GetLocations(item any) []string
	GetCompanyName(item any) string
	// GetSalaryRange resolves the listing's salary using p's ParseSalary/
	// ParseSalaryRange helpers however the source's raw shape requires, and
	// returns (nil, nil) when the source gives no salary information at all.
	// postedOn is the listing's posted_on (or ingestion time, if the source
	// carries no posting date) and is the date the FX conversion uses.
	GetSalaryRange(ctx context.Context, p *Parser, item any, postedOn time.Time) (min, max *models.Money)
	// GetExtraInfo lazily fetches a listing's detail page or other secondary
	// document; returns ("", nil) when the source has none.
	GetExtraInfo(ctx context.Context, item any) (string, error)
	DataFormat() DataFormat
}

// Parser drives Extractor implementations through the shared pipeline:
// recency gate, tag normalization, salary/currency conversion, location
// validation, and payload rendering.
type Parser struct {
	*SalaryParser
	RetentionWindow time.Duration
}

// New builds a Parser around an already-configured SalaryParser (default
// currency/locale, FX HTTP client) and the source run's retention window.
func New(salaryParser *SalaryParser, retentionWindow time.Duration) *Parser {
	return &Parser{SalaryParser: salaryParser, RetentionWindow: retentionWindow}
}

// ErrTooOld signals the recency gate dropped a listing before any
// expensive parsing ran.
var ErrTooOld = fmt.Errorf("listing older than retention window")

// Result pairs a canonical Job with the raw payload record the fetch
// orchestrator persists alongside it.
type Result struct {
	Job     *models.Job
	Payload *models.Payload
}

// Parse runs one raw item through the full pipeline, producing a Result or
// ErrTooOld/a domain error. cutoff is the source run's recency cutoff,
// computed by the fetch orchestrator from the watermark.
func (p *Parser) Parse(ctx context.Context, extractor Extractor, item any, cutoff time.Time) (*Result, error) {
	link, err := extractor.GetLink(item)
	if err != nil {
		return nil, utils.NewSchemaMismatchError("", "failed to extract link", err)
	}

	postedOn, hasPostedOn := extractor.GetPostedOn(item)
	if !IsRecent(postedOn, hasPostedOn, cutoff) {
		return nil, ErrTooOld
	}

	title := extractor.GetTitle(item)
	description := extractor.GetDescription(item)
	tags := NormalizeTags(extractor.GetTags(item))
	isRemote := extractor.GetIsRemote(item)
	locations := geo.Filter(extractor.GetLocations(item))
	companyName := extractor.GetCompanyName(item)

	salaryDate := postedOn
	if !hasPostedOn {
		salaryDate = time.Now().UTC()
	}
	minSalary, maxSalary := extractor.GetSalaryRange(ctx, p, item, salaryDate)

	rendered, err := p.RenderPayload(extractor.DataFormat(), item)
	if err != nil {
		return nil, utils.NewSchemaMismatchError("", "failed to render payload", err)
	}

	extraInfo, err := extractor.GetExtraInfo(ctx, item)
	if err != nil {
		extraInfo = ""
	}

	job := &models.Job{
		Title:       title,
		Description: description,
		Link:        link,
		MinSalary:   minSalary,
		MaxSalary:   maxSalary,
		IsActive:    true,
		IsRemote:    isRemote,
		Locations:   locations,
		CompanyName: companyName,
		Tags:        tags,
	}
	if hasPostedOn {
		job.PostedOn = postedOn
	}

	if err := job.Validate(); err != nil {
		return nil, utils.NewSchemaMismatchError("", "listing failed validation", err)
	}

	return &Result{
		Job: job,
		Payload: &models.Payload{
			Link:      link,
			Payload:   rendered,
			ExtraInfo: extraInfo,
		},
	}, nil
}

// RawDocument is implemented by raw items that retain their original
// serialized form (an RSS <item> element, an HTML fragment). RenderPayload
// stores that form verbatim — re-marshaling the parsed struct would lose
// the source text, and for feed items it fails outright: encoding/xml
// rejects their map-typed extension fields.
type RawDocument interface {
	RawDocument() (string, error)
}

// RenderPayload produces the serialized source record stored alongside a
// job. Items carrying their original document hand it through verbatim;
// otherwise the source's declared data format picks JSON or XML
// serialization. Any other declared format is a hard error.
func (p *Parser) RenderPayload(format DataFormat, item any) (string, error) {
	if raw, ok := item.(RawDocument); ok {
		return raw.RawDocument()
	}

	switch format {
	case FormatJSON:
		b, err := json.Marshal(item)
		if err != nil {
			return "", err
		}
		return string(b), nil
	case FormatXML:
		b, err := xml.Marshal(item)
		if err != nil {
			return "", err
		}
		return string(b), nil
	case FormatHTMLEmbeddedJSON:
		if s, ok := item.(string); ok {
			return s, nil
		}
		return "", fmt.Errorf("html payload requires a raw document, got %T", item)
	default:
		return "", fmt.Errorf("unsupported data format: %s", format)
	}
}
