package sources

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boardsync/internal/parser"
)

const wellfoundTestPage = `
<html>
<body>
<script type="application/ld+json">
{"applicantLocationRequirements": [{"name": "Germany"}, {"name": "Atlantis"}]}
</script>
<div data-job-listing>
  <a href="https://wellfound.com/jobs/1">view</a>
  <div data-job-title>Staff Engineer</div>
  <div data-job-description>Build things.</div>
  <time datetime="2024-03-01T00:00:00Z"></time>
  <span data-job-tag>Go</span>
  <span data-job-tag>Kubernetes</span>
  <div data-company-name>Acme Inc</div>
  <div data-job-salary>$120k - $150k</div>
  Remote friendly team
</div>
</body>
</html>`

func wellfoundTestItem(t *testing.T) wellfoundItem {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(wellfoundTestPage))
	require.NoError(t, err)

	items := collectListingItems(doc, wellfoundTestPage)
	require.Len(t, items, 1)
	return items[0].(wellfoundItem)
}

func TestWellfoundExtractor_GetLink(t *testing.T) {
	link, err := wellfoundExtractor{}.GetLink(wellfoundTestItem(t))
	require.NoError(t, err)
	assert.Equal(t, "https://wellfound.com/jobs/1", link)
}

func TestWellfoundExtractor_GetLink_AbsolutizesRelativeHref(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<div data-job-listing><a href="/jobs/99">view</a></div>`))
	require.NoError(t, err)
	items := collectListingItems(doc, "")
	require.Len(t, items, 1)

	link, err := wellfoundExtractor{}.GetLink(items[0])
	require.NoError(t, err)
	assert.Equal(t, "https://wellfound.com/jobs/99", link)
}

func TestWellfoundExtractor_GetLink_MissingHrefErrors(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<div data-job-listing>no link here</div>`))
	require.NoError(t, err)
	items := collectListingItems(doc, "")
	require.Len(t, items, 1)

	_, err = wellfoundExtractor{}.GetLink(items[0])
	assert.Error(t, err)
}

func TestWellfoundExtractor_GetTitleAndDescription(t *testing.T) {
	it := wellfoundTestItem(t)
	assert.Equal(t, "Staff Engineer", wellfoundExtractor{}.GetTitle(it))
	assert.Equal(t, "Build things.", wellfoundExtractor{}.GetDescription(it))
}

func TestWellfoundExtractor_GetPostedOn(t *testing.T) {
	got, ok := wellfoundExtractor{}.GetPostedOn(wellfoundTestItem(t))
	assert.True(t, ok)
	assert.Equal(t, 2024, got.Year())
}

func TestWellfoundExtractor_GetTags(t *testing.T) {
	assert.Equal(t, []string{"Go", "Kubernetes"}, wellfoundExtractor{}.GetTags(wellfoundTestItem(t)))
}

func TestWellfoundExtractor_GetIsRemote(t *testing.T) {
	assert.True(t, wellfoundExtractor{}.GetIsRemote(wellfoundTestItem(t)))
}

func TestWellfoundExtractor_GetCompanyName(t *testing.T) {
	assert.Equal(t, "Acme Inc", wellfoundExtractor{}.GetCompanyName(wellfoundTestItem(t)))
}

func TestWellfoundExtractor_GetLocations_ResolvesKnownDropsUnknown(t *testing.T) {
	codes := wellfoundExtractor{}.GetLocations(wellfoundTestItem(t))
	assert.Equal(t, []string{"DE"}, codes)
}

// Regression: the stored payload for a wellfound listing must be its HTML
// fragment, not a Go struct dump of the wrapper item.
func TestRenderPayload_WellfoundItemStoresListingHTML(t *testing.T) {
	p := parser.New(&parser.SalaryParser{DefaultCurrency: "USD", DefaultLocale: "en_US"}, 90*24*time.Hour)
	payload, err := p.RenderPayload(parser.FormatHTMLEmbeddedJSON, wellfoundTestItem(t))
	require.NoError(t, err)
	assert.Contains(t, payload, `href="https://wellfound.com/jobs/1"`)
	assert.Contains(t, payload, "Staff Engineer")
	assert.NotContains(t, payload, "0xc0")
}

func TestWellfoundItem_RawDocumentIsListingFragmentOnly(t *testing.T) {
	raw, err := wellfoundTestItem(t).RawDocument()
	require.NoError(t, err)
	assert.Contains(t, raw, "data-job-title")
	assert.NotContains(t, raw, "application/ld+json")
}

func TestExtractPageCount_DefaultsToOneWithoutAttribute(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<html><body>no pages here</body></html>`))
	require.NoError(t, err)
	assert.Equal(t, 1, extractPageCount(doc))
}

func TestExtractPageCount_ReadsAttribute(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<html><body><div data-page-count="7"></div></body></html>`))
	require.NoError(t, err)
	assert.Equal(t, 7, extractPageCount(doc))
}
