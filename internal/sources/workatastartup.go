package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"boardsync/internal/geo"
	"boardsync/internal/parser"
	"boardsync/internal/retrypolicy"
	"boardsync/pkg/models"
)

const algoliaURL = "https://45bwzj1sgc-3.algolianet.com/1/indexes/*/queries"

// workAtAStartupCompany is a company record as returned by the companies
// fetch endpoint, with its nested jobs already extracted out by FetchJobs.
// The back-reference a job item carries omits the jobs list so the stored
// payload can't go cyclic when re-serialized.
type workAtAStartupCompany struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type workAtAStartupJob struct {
	ID                int    `json:"id"`
	Title             string `json:"title"`
	Description       string `json:"description"`
	PrettySalaryRange string `json:"pretty_salary_range"`
	Remote            string `json:"remote"`
	Skills            []struct {
		Name string `json:"name"`
	} `json:"skills"`
	Locations json.RawMessage `json:"locations"`
}

// workAtAStartupItem is the raw record one listing persists as its
// payload; fields are exported so the JSON-rendered payload carries them.
type workAtAStartupItem struct {
	Job     workAtAStartupJob     `json:"job"`
	Company workAtAStartupCompany `json:"company"`
}

type algoliaSearchResponse struct {
	Results []struct {
		Hits []struct {
			CompanyID int `json:"company_id"`
		} `json:"hits"`
	} `json:"results"`
}

type companiesFetchResponse struct {
	Companies []struct {
		ID   int                 `json:"id"`
		Name string              `json:"name"`
		Jobs []workAtAStartupJob `json:"jobs"`
	} `json:"companies"`
}

// WorkAtAStartup implements Adapter for a multi-request composition: an
// Algolia-backed search yields company IDs, then an authenticated
// cookie+CSRF request yields jobs grouped under those companies.
type WorkAtAStartup struct {
	HTTPClient *http.Client
	Cookie     string
	CSRFToken  string
	Policy     retrypolicy.Policy
}

func (w *WorkAtAStartup) Name() string                     { return "work_at_a_startup" }
func (w *WorkAtAStartup) BaseURL() string                  { return "https://www.workatastartup.com" }
func (w *WorkAtAStartup) DisplayName() string              { return "Work at a Startup" }
func (w *WorkAtAStartup) URL() string                      { return "https://www.workatastartup.com/companies/fetch" }
func (w *WorkAtAStartup) APIDataFormat() parser.DataFormat { return parser.FormatJSON }
func (w *WorkAtAStartup) Extractor() parser.Extractor      { return workAtAStartupExtractor{} }

func (w *WorkAtAStartup) FetchJobs(ctx context.Context, cutoff time.Time) ([]RawItem, error) {
	companyIDs, err := w.fetchCompanyIDs(ctx)
	if err != nil {
		return nil, err
	}

	companies, err := w.fetchCompanies(ctx, companyIDs)
	if err != nil {
		return nil, err
	}

	items := make([]RawItem, 0)
	for _, c := range companies.Companies {
		company := workAtAStartupCompany{ID: c.ID, Name: c.Name}
		for _, job := range c.Jobs {
			items = append(items, workAtAStartupItem{Job: job, Company: company})
		}
	}
	return items, nil
}

func (w *WorkAtAStartup) fetchCompanyIDs(ctx context.Context) ([]int, error) {
	return retrypolicy.Do(ctx, w.Name(), w.Policy, func(ctx context.Context) ([]int, error) {
		body, err := json.Marshal(map[string]any{
			"requests": []map[string]any{
				{
					"indexName": "WaaSPublicCompanyJob_created_at_desc_production",
					"params":    url.Values{"hitsPerPage": {"100"}}.Encode(),
				},
			},
		})
		if err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, algoliaURL, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := w.HTTPClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		var parsed algoliaSearchResponse
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return nil, err
		}

		var ids []int
		for _, result := range parsed.Results {
			for _, hit := range result.Hits {
				ids = append(ids, hit.CompanyID)
			}
		}
		return ids, nil
	})
}

func (w *WorkAtAStartup) fetchCompanies(ctx context.Context, ids []int) (companiesFetchResponse, error) {
	return retrypolicy.Do(ctx, w.Name(), w.Policy, func(ctx context.Context) (companiesFetchResponse, error) {
		body, err := json.Marshal(map[string]any{"ids": ids})
		if err != nil {
			return companiesFetchResponse{}, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL(), bytes.NewReader(body))
		if err != nil {
			return companiesFetchResponse{}, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-csrf-token", w.CSRFToken)
		req.AddCookie(&http.Cookie{Name: "_bf_session_key", Value: w.Cookie})

		resp, err := w.HTTPClient.Do(req)
		if err != nil {
			return companiesFetchResponse{}, err
		}
		defer resp.Body.Close()

		var parsed companiesFetchResponse
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return companiesFetchResponse{}, err
		}
		return parsed, nil
	})
}

type workAtAStartupExtractor struct{}

func (workAtAStartupExtractor) GetLink(item any) (string, error) {
	it := item.(workAtAStartupItem)
	if it.Job.ID == 0 {
		return "", fmt.Errorf("work_at_a_startup item missing id")
	}
	return fmt.Sprintf("https://www.workatastartup.com/jobs/%d", it.Job.ID), nil
}

func (workAtAStartupExtractor) GetTitle(item any) string { return item.(workAtAStartupItem).Job.Title }

func (workAtAStartupExtractor) GetDescription(item any) string {
	return item.(workAtAStartupItem).Job.Description
}

// GetPostedOn always reports ok=false: this API never supplies a posting
// date for a listing.
func (workAtAStartupExtractor) GetPostedOn(item any) (time.Time, bool) {
	return time.Time{}, false
}

func (workAtAStartupExtractor) GetTags(item any) []string {
	it := item.(workAtAStartupItem)
	tags := make([]string, 0, len(it.Job.Skills))
	for _, s := range it.Job.Skills {
		tags = append(tags, s.Name)
	}
	return tags
}

func (workAtAStartupExtractor) GetIsRemote(item any) bool {
	remote := strings.ToLower(item.(workAtAStartupItem).Job.Remote)
	return remote == "yes" || remote == "only"
}

// GetLocations unwraps the locations field, defending against the upstream
// API occasionally returning deeply nested arrays instead of strings (e.g.
// {"locations": [[["Remote - UK or Europe"]]]}) — in that shape the
// listing's locations are dropped rather than guessed at.
func (workAtAStartupExtractor) GetLocations(item any) []string {
	it := item.(workAtAStartupItem)
	var locations []string
	if err := json.Unmarshal(it.Job.Locations, &locations); err != nil {
		return nil
	}
	codes := make([]string, 0, len(locations))
	for _, name := range locations {
		if code, ok := geo.NameToCode(name); ok {
			codes = append(codes, code)
		}
	}
	return codes
}

func (workAtAStartupExtractor) GetCompanyName(item any) string {
	return item.(workAtAStartupItem).Company.Name
}

func (workAtAStartupExtractor) GetSalaryRange(ctx context.Context, p *parser.Parser, item any, postedOn time.Time) (*models.Money, *models.Money) {
	it := item.(workAtAStartupItem)
	if it.Job.PrettySalaryRange == "" {
		return nil, nil
	}
	min, max, err := p.ParseSalaryRange(ctx, it.Job.PrettySalaryRange, "", postedOn)
	if err != nil {
		return nil, nil
	}
	return min, max
}

func (workAtAStartupExtractor) GetExtraInfo(ctx context.Context, item any) (string, error) {
	return "", nil
}

func (workAtAStartupExtractor) DataFormat() parser.DataFormat { return parser.FormatJSON }
