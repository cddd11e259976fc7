package parser

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boardsync/pkg/models"
)

type fakeItem struct {
	Link     string    `json:"link"`
	Title    string    `json:"title"`
	PostedOn time.Time `json:"posted_on"`
}

// fakeExtractor is a minimal Extractor used to exercise the shared pipeline
// without depending on any real source adapter.
type fakeExtractor struct {
	item        fakeItem
	hasPostedOn bool
	tags        []string
	isRemote    bool
	locations   []string
	company     string
	format      DataFormat
	salaryText  string
	extraInfo   string
	extraErr    error
	linkErr     error
}

func (f *fakeExtractor) GetLink(item any) (string, error) {
	if f.linkErr != nil {
		return "", f.linkErr
	}
	return f.item.Link, nil
}
func (f *fakeExtractor) GetTitle(item any) string       { return f.item.Title }
func (f *fakeExtractor) GetDescription(item any) string { return "a description" }
func (f *fakeExtractor) GetPostedOn(item any) (time.Time, bool) {
	return f.item.PostedOn, f.hasPostedOn
}
func (f *fakeExtractor) GetTags(item any) []string      { return f.tags }
func (f *fakeExtractor) GetIsRemote(item any) bool      { return f.isRemote }
func (f *fakeExtractor) GetLocations(item any) []string { return f.locations }
func (f *fakeExtractor) GetCompanyName(item any) string { return f.company }
func (f *fakeExtractor) GetSalaryRange(ctx context.Context, p *Parser, item any, postedOn time.Time) (*models.Money, *models.Money) {
	if f.salaryText == "" {
		return nil, nil
	}
	min, max, err := p.ParseSalaryRange(ctx, f.salaryText, "", postedOn)
	if err != nil {
		return nil, nil
	}
	return min, max
}
func (f *fakeExtractor) GetExtraInfo(ctx context.Context, item any) (string, error) {
	return f.extraInfo, f.extraErr
}
func (f *fakeExtractor) DataFormat() DataFormat { return f.format }

func newTestParser() *Parser {
	return New(&SalaryParser{DefaultCurrency: "USD", DefaultLocale: "en_US"}, 30*24*time.Hour)
}

func TestParse_HappyPath(t *testing.T) {
	p := newTestParser()
	now := time.Now()
	ex := &fakeExtractor{
		item:        fakeItem{Link: "https://example.com/jobs/1", Title: "Backend Engineer", PostedOn: now},
		hasPostedOn: true,
		tags:        []string{"Back-End", "golang", "back-end"},
		isRemote:    true,
		locations:   []string{"US", "zz", "GB"},
		company:     "Acme",
		format:      FormatJSON,
		salaryText:  "$90k - $120k",
	}

	result, err := p.Parse(context.Background(), ex, ex.item, now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, "https://example.com/jobs/1", result.Job.Link)
	assert.Equal(t, "Backend Engineer", result.Job.Title)
	assert.Equal(t, []string{"backend", "go"}, result.Job.Tags)
	assert.Equal(t, []string{"US", "GB"}, result.Job.Locations)
	assert.True(t, result.Job.IsRemote)
	assert.True(t, result.Job.IsActive)
	require.NotNil(t, result.Job.MinSalary)
	require.NotNil(t, result.Job.MaxSalary)
	assert.Equal(t, "USD", result.Job.MinSalary.Currency)
	assert.NotEmpty(t, result.Payload.Payload)
	assert.Equal(t, "https://example.com/jobs/1", result.Payload.Link)
}

func TestParse_TooOldIsDropped(t *testing.T) {
	p := newTestParser()
	old := time.Now().Add(-60 * 24 * time.Hour)
	ex := &fakeExtractor{
		item:        fakeItem{Link: "https://example.com/jobs/2", PostedOn: old},
		hasPostedOn: true,
		format:      FormatJSON,
	}

	cutoff := time.Now().Add(-30 * 24 * time.Hour)
	result, err := p.Parse(context.Background(), ex, ex.item, cutoff)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrTooOld)
}

func TestParse_NoPostedDateSkipsRecencyGate(t *testing.T) {
	p := newTestParser()
	ex := &fakeExtractor{
		item:        fakeItem{Link: "https://example.com/jobs/3", Title: "Data Engineer"},
		hasPostedOn: false,
		format:      FormatJSON,
	}

	cutoff := time.Now().Add(-30 * 24 * time.Hour)
	result, err := p.Parse(context.Background(), ex, ex.item, cutoff)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Job.PostedOn.IsZero())
}

func TestParse_LinkErrorIsSchemaMismatch(t *testing.T) {
	p := newTestParser()
	ex := &fakeExtractor{
		linkErr:     assert.AnError,
		hasPostedOn: false,
		format:      FormatJSON,
	}

	result, err := p.Parse(context.Background(), ex, ex.item, time.Now())
	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema_mismatch")
}

func TestRenderPayload_JSON(t *testing.T) {
	p := newTestParser()
	out, err := p.RenderPayload(FormatJSON, fakeItem{Link: "https://example.com/1", Title: "x"})
	require.NoError(t, err)
	assert.Contains(t, out, `"link":"https://example.com/1"`)
}

func TestRenderPayload_XML(t *testing.T) {
	p := newTestParser()
	out, err := p.RenderPayload(FormatXML, fakeItem{Link: "https://example.com/1", Title: "x"})
	require.NoError(t, err)
	assert.Contains(t, out, "<fakeItem>")
}

func TestRenderPayload_HTMLEmbeddedJSONPassesThrough(t *testing.T) {
	p := newTestParser()
	out, err := p.RenderPayload(FormatHTMLEmbeddedJSON, "<html>raw</html>")
	require.NoError(t, err)
	assert.Equal(t, "<html>raw</html>", out)
}

func TestRenderPayload_HTMLEmbeddedJSONRejectsBareStructs(t *testing.T) {
	p := newTestParser()
	_, err := p.RenderPayload(FormatHTMLEmbeddedJSON, fakeItem{Title: "x"})
	assert.Error(t, err)
}

// rawDocItem mimics a source item that retains its original serialized
// form, like the feed and wellfound raw items do.
type rawDocItem struct{ doc string }

func (r rawDocItem) RawDocument() (string, error) { return r.doc, nil }

func TestRenderPayload_RawDocumentWinsOverDeclaredFormat(t *testing.T) {
	p := newTestParser()
	for _, format := range []DataFormat{FormatJSON, FormatXML, FormatHTMLEmbeddedJSON} {
		out, err := p.RenderPayload(format, rawDocItem{doc: "<item>verbatim</item>"})
		require.NoError(t, err, "format %s", format)
		assert.Equal(t, "<item>verbatim</item>", out)
	}
}

func TestRenderPayload_UnsupportedFormatErrors(t *testing.T) {
	p := newTestParser()
	_, err := p.RenderPayload(DataFormat("carrier-pigeon"), nil)
	assert.Error(t, err)
}
