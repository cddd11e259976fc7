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

// WeWorkRemotely implements Adapter for a fixed-page RSS feed. The feed
// carries no tags; the fill-missing-tags task backfills them later.
type WeWorkRemotely struct {
	HTTPClient *http.Client
	Policy     retrypolicy.Policy
}

func (w *WeWorkRemotely) Name() string        { return "weworkremotely" }
func (w *WeWorkRemotely) BaseURL() string     { return "https://weworkremotely.com" }
func (w *WeWorkRemotely) DisplayName() string { return "We Work Remotely" }
func (w *WeWorkRemotely) URL() string {
	return "https://weworkremotely.com/categories/remote-programming-jobs.rss"
}
func (w *WeWorkRemotely) APIDataFormat() parser.DataFormat { return parser.FormatXML }
func (w *WeWorkRemotely) Extractor() parser.Extractor      { return weworkremotelyExtractor{} }

func (w *WeWorkRemotely) FetchJobs(ctx context.Context, cutoff time.Time) ([]RawItem, error) {
	return fetchFeed(ctx, w.HTTPClient, w.Name(), w.Policy, w.URL())
}

type weworkremotelyExtractor struct{}

func (weworkremotelyExtractor) GetLink(item any) (string, error) {
	it := item.(feedItem)
	if it.Link == "" {
		return "", fmt.Errorf("weworkremotely item missing link")
	}
	return it.Link, nil
}

func (weworkremotelyExtractor) GetTitle(item any) string { return item.(feedItem).Title }

func (weworkremotelyExtractor) GetDescription(item any) string {
	return item.(feedItem).Description
}

func (weworkremotelyExtractor) GetPostedOn(item any) (time.Time, bool) {
	it := item.(feedItem)
	if it.PublishedParsed == nil {
		return time.Time{}, false
	}
	return it.PublishedParsed.UTC(), true
}

// GetTags returns nil: this source never carries tags at parse time; the
// periodic fill-missing-tags task backfills them via the LLM extractor.
func (weworkremotelyExtractor) GetTags(item any) []string { return nil }

func (weworkremotelyExtractor) GetIsRemote(item any) bool { return true }

func (weworkremotelyExtractor) GetLocations(item any) []string { return nil }

func (weworkremotelyExtractor) GetCompanyName(item any) string {
	it := item.(feedItem)
	if author := it.Author; author != nil {
		return author.Name
	}
	return ""
}

func (weworkremotelyExtractor) GetSalaryRange(ctx context.Context, p *parser.Parser, item any, postedOn time.Time) (*models.Money, *models.Money) {
	it := item.(feedItem)
	min, max, err := p.ParseSalaryRange(ctx, it.Description, "", postedOn)
	if err != nil {
		return nil, nil
	}
	return min, max
}

func (weworkremotelyExtractor) GetExtraInfo(ctx context.Context, item any) (string, error) {
	return "", nil
}

func (weworkremotelyExtractor) DataFormat() parser.DataFormat { return parser.FormatXML }
