package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"boardsync/internal/batchexec"
	"boardsync/internal/geo"
	"boardsync/internal/parser"
	"boardsync/internal/retrypolicy"
	"boardsync/pkg/models"
	"boardsync/pkg/utils"
)

const himalayasPageSize = 20

// himalayasItem is the raw per-job shape returned by the Himalayas API.
type himalayasItem struct {
	GUID                 string   `json:"guid"`
	Title                string   `json:"title"`
	Description          string   `json:"description"`
	PubDate              int64    `json:"pubDate"`
	LocationRestrictions []string `json:"locationRestrictions"`
	Categories           []string `json:"categories"`
	ParentCategories     []string `json:"parentCategories"`
	MaxSalary            float64  `json:"maxSalary"`
	Currency             string   `json:"currency"`
}

type himalayasResponse struct {
	TotalCount int             `json:"totalCount"`
	Jobs       []himalayasItem `json:"jobs"`
}

// Himalayas implements Adapter for the cursor/offset JSON API documented at
// https://himalayas.app/api: a first request reveals totalCount, remaining
// pages are fetched in concurrent batches, with early-exit when a whole
// batch predates the cutoff.
type Himalayas struct {
	HTTPClient *http.Client
	BatchSize  int
	// Limiter caps the page-request rate across a batch; nil means
	// unthrottled.
	Limiter *rate.Limiter
	Policy  retrypolicy.Policy
}

func (h *Himalayas) Name() string                     { return "himalayas" }
func (h *Himalayas) BaseURL() string                  { return "https://himalayas.app" }
func (h *Himalayas) DisplayName() string              { return "Himalayas" }
func (h *Himalayas) URL() string                      { return "https://himalayas.app/jobs/api" }
func (h *Himalayas) APIDataFormat() parser.DataFormat { return parser.FormatJSON }
func (h *Himalayas) Extractor() parser.Extractor      { return himalayasExtractor{} }

func (h *Himalayas) fetchPage(ctx context.Context, offset int) (himalayasResponse, error) {
	return retrypolicy.Do(ctx, h.Name(), h.Policy, func(ctx context.Context) (himalayasResponse, error) {
		url := fmt.Sprintf("%s?offset=%d&limit=%d", h.URL(), offset, himalayasPageSize)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return himalayasResponse{}, err
		}
		resp, err := h.HTTPClient.Do(req)
		if err != nil {
			return himalayasResponse{}, err
		}
		defer resp.Body.Close()
		var page himalayasResponse
		if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
			return himalayasResponse{}, utils.NewSchemaMismatchError(h.Name(), "malformed himalayas response", err)
		}
		return page, nil
	})
}

func (h *Himalayas) FetchJobs(ctx context.Context, cutoff time.Time) ([]RawItem, error) {
	first, err := h.fetchPage(ctx, 0)
	if err != nil {
		return nil, err
	}

	items := make([]RawItem, 0, first.TotalCount)
	for _, j := range first.Jobs {
		items = append(items, j)
	}
	fetched := len(first.Jobs)
	batchSize := h.BatchSize
	if batchSize <= 0 {
		batchSize = 5
	}

	for fetched < first.TotalCount {
		offsets := make([]int, 0, batchSize)
		for i := 0; i < batchSize; i++ {
			offset := fetched + i*himalayasPageSize
			if offset >= first.TotalCount {
				break
			}
			offsets = append(offsets, offset)
		}
		if len(offsets) == 0 {
			break
		}

		pages, err := batchexec.RunLimited(ctx, h.Limiter, offsets, func(ctx context.Context, offset int) (himalayasResponse, error) {
			return h.fetchPage(ctx, offset)
		})
		if err != nil {
			return nil, err
		}

		allStale := true
		for _, page := range pages {
			for _, j := range page.Jobs {
				if time.Unix(j.PubDate, 0).UTC().After(cutoff) {
					allStale = false
				}
				items = append(items, j)
			}
			fetched += len(page.Jobs)
		}
		if allStale {
			break
		}
	}

	return items, nil
}

type himalayasExtractor struct{}

func (himalayasExtractor) GetLink(item any) (string, error) {
	j := item.(himalayasItem)
	if j.GUID == "" {
		return "", fmt.Errorf("himalayas item missing guid")
	}
	return j.GUID, nil
}

func (himalayasExtractor) GetTitle(item any) string { return item.(himalayasItem).Title }

func (himalayasExtractor) GetDescription(item any) string {
	return strings.TrimSpace(item.(himalayasItem).Description)
}

func (himalayasExtractor) GetPostedOn(item any) (time.Time, bool) {
	j := item.(himalayasItem)
	if j.PubDate == 0 {
		return time.Time{}, false
	}
	return time.Unix(j.PubDate, 0).UTC(), true
}

func (himalayasExtractor) GetTags(item any) []string {
	j := item.(himalayasItem)
	tags := make([]string, 0, len(j.Categories)+len(j.ParentCategories))
	for _, cat := range j.Categories {
		tags = append(tags, strings.Split(cat, "-")...)
	}
	tags = append(tags, j.ParentCategories...)
	return tags
}

func (himalayasExtractor) GetIsRemote(item any) bool {
	return len(item.(himalayasItem).LocationRestrictions) == 0
}

// GetLocations resolves each free-text location restriction to an ISO code
// via geo.NameToCode; names with no match are dropped.
func (himalayasExtractor) GetLocations(item any) []string {
	restrictions := item.(himalayasItem).LocationRestrictions
	codes := make([]string, 0, len(restrictions))
	for _, name := range restrictions {
		if code, ok := geo.NameToCode(name); ok {
			codes = append(codes, code)
		}
	}
	return codes
}

func (himalayasExtractor) GetCompanyName(item any) string { return "" }

func (himalayasExtractor) GetSalaryRange(ctx context.Context, p *parser.Parser, item any, postedOn time.Time) (*models.Money, *models.Money) {
	j := item.(himalayasItem)
	if j.MaxSalary == 0 {
		return nil, nil
	}
	amountStr := fmt.Sprintf("%.2f %s", j.MaxSalary, j.Currency)
	max, err := p.ParseSalary(ctx, amountStr, j.Currency, postedOn)
	if err != nil || max == nil {
		return nil, nil
	}
	return nil, max
}

func (himalayasExtractor) GetExtraInfo(ctx context.Context, item any) (string, error) {
	return "", nil
}

func (himalayasExtractor) DataFormat() parser.DataFormat { return parser.FormatJSON }
