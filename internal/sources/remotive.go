package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"boardsync/internal/geo"
	"boardsync/internal/parser"
	"boardsync/internal/retrypolicy"
	"boardsync/pkg/models"
)

const remotiveDateFormat = "2006-01-02T15:04:05"

type remotiveItem struct {
	Title                     string   `json:"title"`
	URL                       string   `json:"url"`
	Salary                    string   `json:"salary"`
	Tags                      []string `json:"tags"`
	Description               string   `json:"description"`
	CandidateRequiredLocation string   `json:"candidate_required_location"`
	PublicationDate           string   `json:"publication_date"`
	CompanyName               string   `json:"company_name"`
}

type remotiveResponse struct {
	Jobs []remotiveItem `json:"jobs"`
}

// Remotive implements Adapter for a fixed-page JSON API: single request,
// tags present at parse time, the simplest discipline of any registered
// source.
type Remotive struct {
	HTTPClient *http.Client
	Policy     retrypolicy.Policy
}

func (r *Remotive) Name() string        { return "remotive" }
func (r *Remotive) BaseURL() string     { return "https://remotive.com" }
func (r *Remotive) DisplayName() string { return "Remotive" }
func (r *Remotive) URL() string {
	return "https://remotive.com/api/remote-jobs?category=software-dev&limit=500"
}
func (r *Remotive) APIDataFormat() parser.DataFormat { return parser.FormatJSON }
func (r *Remotive) Extractor() parser.Extractor      { return remotiveExtractor{} }

func (r *Remotive) FetchJobs(ctx context.Context, cutoff time.Time) ([]RawItem, error) {
	resp, err := retrypolicy.Do(ctx, r.Name(), r.Policy, func(ctx context.Context) (remotiveResponse, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL(), nil)
		if err != nil {
			return remotiveResponse{}, err
		}
		httpResp, err := r.HTTPClient.Do(req)
		if err != nil {
			return remotiveResponse{}, err
		}
		defer httpResp.Body.Close()
		var page remotiveResponse
		if err := json.NewDecoder(httpResp.Body).Decode(&page); err != nil {
			return remotiveResponse{}, err
		}
		return page, nil
	})
	if err != nil {
		return nil, err
	}

	items := make([]RawItem, 0, len(resp.Jobs))
	for _, j := range resp.Jobs {
		items = append(items, j)
	}
	return items, nil
}

type remotiveExtractor struct{}

func (remotiveExtractor) GetLink(item any) (string, error) {
	j := item.(remotiveItem)
	if j.URL == "" {
		return "", fmt.Errorf("remotive item missing url")
	}
	return j.URL, nil
}

func (remotiveExtractor) GetTitle(item any) string       { return item.(remotiveItem).Title }
func (remotiveExtractor) GetDescription(item any) string { return item.(remotiveItem).Description }

func (remotiveExtractor) GetPostedOn(item any) (time.Time, bool) {
	j := item.(remotiveItem)
	t, err := time.Parse(remotiveDateFormat, j.PublicationDate)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

func (remotiveExtractor) GetTags(item any) []string { return item.(remotiveItem).Tags }

func (remotiveExtractor) GetIsRemote(item any) bool { return true }

// GetLocations resolves Remotive's free-text candidate_required_location
// (e.g. "USA", "Europe, Canada") to ISO codes, splitting on commas and
// dropping segments with no known code.
func (remotiveExtractor) GetLocations(item any) []string {
	loc := item.(remotiveItem).CandidateRequiredLocation
	if loc == "" {
		return nil
	}
	var codes []string
	for _, part := range strings.Split(loc, ",") {
		if code, ok := geo.NameToCode(part); ok {
			codes = append(codes, code)
		}
	}
	return codes
}

func (remotiveExtractor) GetCompanyName(item any) string { return item.(remotiveItem).CompanyName }

func (remotiveExtractor) GetSalaryRange(ctx context.Context, p *parser.Parser, item any, postedOn time.Time) (*models.Money, *models.Money) {
	j := item.(remotiveItem)
	if j.Salary == "" {
		return nil, nil
	}
	min, max, err := p.ParseSalaryRange(ctx, j.Salary, "", postedOn)
	if err != nil {
		return nil, nil
	}
	return min, max
}

func (remotiveExtractor) GetExtraInfo(ctx context.Context, item any) (string, error) {
	return "", nil
}

func (remotiveExtractor) DataFormat() parser.DataFormat { return parser.FormatJSON }
