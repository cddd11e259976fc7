package sources

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"boardsync/internal/parser"
	"boardsync/internal/retrypolicy"
	"boardsync/pkg/models"
)

// PythonDotOrg implements Adapter for a fixed-page RSS feed that carries
// no posting date. posted_on is left unset; the store assigns ingestion
// time as default and the recency gate is skipped for this source.
type PythonDotOrg struct {
	HTTPClient *http.Client
	Policy     retrypolicy.Policy
}

func (p *PythonDotOrg) Name() string                     { return "python_dot_org" }
func (p *PythonDotOrg) BaseURL() string                  { return "https://www.python.org" }
func (p *PythonDotOrg) DisplayName() string              { return "Python.org Jobs" }
func (p *PythonDotOrg) URL() string                      { return "https://www.python.org/jobs/feed/rss/" }
func (p *PythonDotOrg) APIDataFormat() parser.DataFormat { return parser.FormatXML }
func (p *PythonDotOrg) Extractor() parser.Extractor      { return pythonDotOrgExtractor{} }

func (p *PythonDotOrg) FetchJobs(ctx context.Context, cutoff time.Time) ([]RawItem, error) {
	return fetchFeed(ctx, p.HTTPClient, p.Name(), p.Policy, p.URL())
}

type pythonDotOrgExtractor struct{}

func (pythonDotOrgExtractor) GetLink(item any) (string, error) {
	it := item.(feedItem)
	if it.Link == "" {
		return "", fmt.Errorf("python_dot_org item missing link")
	}
	return it.Link, nil
}

func (pythonDotOrgExtractor) GetTitle(item any) string { return item.(feedItem).Title }

func (pythonDotOrgExtractor) GetDescription(item any) string {
	return item.(feedItem).Description
}

// GetPostedOn always reports ok=false: the RSS feed never carries a
// posting date, so this source skips the recency gate entirely.
func (pythonDotOrgExtractor) GetPostedOn(item any) (time.Time, bool) {
	return time.Time{}, false
}

func (pythonDotOrgExtractor) GetTags(item any) []string { return nil }

func (pythonDotOrgExtractor) GetIsRemote(item any) bool { return false }

func (pythonDotOrgExtractor) GetLocations(item any) []string { return nil }

func (pythonDotOrgExtractor) GetCompanyName(item any) string { return "" }

func (pythonDotOrgExtractor) GetSalaryRange(ctx context.Context, p *parser.Parser, item any, postedOn time.Time) (*models.Money, *models.Money) {
	it := item.(feedItem)
	min, max, err := p.ParseSalaryRange(ctx, it.Description, "", postedOn)
	if err != nil {
		return nil, nil
	}
	return min, max
}

func (pythonDotOrgExtractor) GetExtraInfo(ctx context.Context, item any) (string, error) {
	return "", nil
}

func (pythonDotOrgExtractor) DataFormat() parser.DataFormat { return parser.FormatXML }
