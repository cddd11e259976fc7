package sources

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"boardsync/internal/antibot"
	"boardsync/internal/batchexec"
	"boardsync/internal/geo"
	"boardsync/internal/parser"
	"boardsync/internal/retrypolicy"
	"boardsync/pkg/models"
	"boardsync/pkg/utils"
)

// wellfoundItem wraps a single listing's goquery selection plus the
// surrounding page's raw HTML and the page's embedded JSON-LD block, so the
// extractor can derive JSON-LD locations without refetching.
type wellfoundItem struct {
	sel       *goquery.Selection
	pageHTML  string
	jsonLDDoc []byte
}

// RawDocument returns the listing's own HTML fragment as the stored
// payload; the surrounding page goes to extra_info via GetExtraInfo.
func (it wellfoundItem) RawDocument() (string, error) {
	return goquery.OuterHtml(it.sel)
}

// Wellfound implements Adapter for HTML listing pages with an embedded
// page count: the first page reveals how many pages exist, the rest are
// fetched through the anti-bot gateway in concurrent batches and parsed
// with goquery.
type Wellfound struct {
	Gateway   *antibot.Client
	BatchSize int
	// Limiter caps the gateway-request rate across a batch; nil means
	// unthrottled.
	Limiter *rate.Limiter
	Policy  retrypolicy.Policy
}

func (w *Wellfound) Name() string                     { return "wellfound" }
func (w *Wellfound) BaseURL() string                  { return "https://wellfound.com" }
func (w *Wellfound) DisplayName() string              { return "Wellfound" }
func (w *Wellfound) URL() string                      { return "https://wellfound.com/jobs" }
func (w *Wellfound) APIDataFormat() parser.DataFormat { return parser.FormatHTMLEmbeddedJSON }
func (w *Wellfound) Extractor() parser.Extractor      { return wellfoundExtractor{} }

func (w *Wellfound) fetchPage(ctx context.Context, page int) (string, error) {
	return retrypolicy.Do(ctx, w.Name(), w.Policy, func(ctx context.Context) (string, error) {
		url := fmt.Sprintf("%s?page=%d", w.URL(), page)
		return w.Gateway.Fetch(ctx, url, true)
	})
}

func (w *Wellfound) FetchJobs(ctx context.Context, cutoff time.Time) ([]RawItem, error) {
	firstHTML, err := w.fetchPage(ctx, 1)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(firstHTML))
	if err != nil {
		return nil, utils.NewSchemaMismatchError(w.Name(), "failed to parse wellfound page", err)
	}

	pageCount := extractPageCount(doc)
	items := collectListingItems(doc, firstHTML)

	batchSize := w.BatchSize
	if batchSize <= 0 {
		batchSize = 5
	}

	for page := 2; page <= pageCount; page += batchSize {
		upper := page + batchSize - 1
		if upper > pageCount {
			upper = pageCount
		}
		pageNums := make([]int, 0, upper-page+1)
		for p := page; p <= upper; p++ {
			pageNums = append(pageNums, p)
		}

		htmlPages, err := batchexec.RunLimited(ctx, w.Limiter, pageNums, func(ctx context.Context, p int) (string, error) {
			return w.fetchPage(ctx, p)
		})
		if err != nil {
			return nil, err
		}

		for _, html := range htmlPages {
			pageDoc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
			if err != nil {
				continue
			}
			items = append(items, collectListingItems(pageDoc, html)...)
		}
	}

	return items, nil
}

func extractPageCount(doc *goquery.Document) int {
	val, exists := doc.Find("[data-page-count]").First().Attr("data-page-count")
	if !exists {
		return 1
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func collectListingItems(doc *goquery.Document, pageHTML string) []RawItem {
	jsonLD := []byte(doc.Find(`script[type="application/ld+json"]`).First().Text())

	var items []RawItem
	doc.Find("[data-job-listing]").Each(func(_ int, sel *goquery.Selection) {
		items = append(items, wellfoundItem{sel: sel, pageHTML: pageHTML, jsonLDDoc: jsonLD})
	})
	return items
}

type wellfoundExtractor struct{}

func (wellfoundExtractor) GetLink(item any) (string, error) {
	it := item.(wellfoundItem)
	href, exists := it.sel.Find("a[href]").First().Attr("href")
	if !exists || href == "" {
		return "", fmt.Errorf("wellfound listing missing link")
	}
	// Listing pages use site-relative hrefs.
	if strings.HasPrefix(href, "/") {
		href = "https://wellfound.com" + href
	}
	return href, nil
}

func (wellfoundExtractor) GetTitle(item any) string {
	return strings.TrimSpace(item.(wellfoundItem).sel.Find("[data-job-title]").First().Text())
}

func (wellfoundExtractor) GetDescription(item any) string {
	return strings.TrimSpace(item.(wellfoundItem).sel.Find("[data-job-description]").First().Text())
}

func (wellfoundExtractor) GetPostedOn(item any) (time.Time, bool) {
	it := item.(wellfoundItem)
	val, exists := it.sel.Find("time[datetime]").First().Attr("datetime")
	if !exists {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

func (wellfoundExtractor) GetTags(item any) []string {
	it := item.(wellfoundItem)
	var tags []string
	it.sel.Find("[data-job-tag]").Each(func(_ int, s *goquery.Selection) {
		tags = append(tags, strings.TrimSpace(s.Text()))
	})
	return tags
}

func (wellfoundExtractor) GetIsRemote(item any) bool {
	it := item.(wellfoundItem)
	return strings.Contains(strings.ToLower(it.sel.Text()), "remote")
}

func (wellfoundExtractor) GetLocations(item any) []string {
	it := item.(wellfoundItem)
	return geo.ExtractLocationsFromJSONLD(it.jsonLDDoc)
}

func (wellfoundExtractor) GetCompanyName(item any) string {
	return strings.TrimSpace(item.(wellfoundItem).sel.Find("[data-company-name]").First().Text())
}

func (wellfoundExtractor) GetSalaryRange(ctx context.Context, p *parser.Parser, item any, postedOn time.Time) (*models.Money, *models.Money) {
	it := item.(wellfoundItem)
	text := strings.TrimSpace(it.sel.Find("[data-job-salary]").First().Text())
	if text == "" {
		return nil, nil
	}
	min, max, err := p.ParseSalaryRange(ctx, text, "", postedOn)
	if err != nil {
		return nil, nil
	}
	return min, max
}

func (wellfoundExtractor) GetExtraInfo(ctx context.Context, item any) (string, error) {
	return item.(wellfoundItem).pageHTML, nil
}

func (wellfoundExtractor) DataFormat() parser.DataFormat { return parser.FormatHTMLEmbeddedJSON }
