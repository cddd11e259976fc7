package parser

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSalaryDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newSalaryParser(client *http.Client) *SalaryParser {
	if client == nil {
		client = http.DefaultClient
	}
	return &SalaryParser{DefaultCurrency: "USD", DefaultLocale: "en_US", HTTPClient: client}
}

func TestParseSalary_DollarAmountNoConversionNeeded(t *testing.T) {
	p := newSalaryParser(nil)
	money, err := p.ParseSalary(context.Background(), "$120,000", "", testSalaryDate)
	require.NoError(t, err)
	require.NotNil(t, money)
	assert.Equal(t, "USD", money.Currency)
	assert.True(t, money.Amount.Equal(mustDecimal("120000")), "got %s", money.Amount)
}

func TestParseSalary_MultiplierAndTrailingCode(t *testing.T) {
	p := newSalaryParser(nil)
	money, err := p.ParseSalary(context.Background(), "90k USD", "", testSalaryDate)
	require.NoError(t, err)
	assert.True(t, money.Amount.Equal(mustDecimal("90000")))
	assert.Equal(t, "USD", money.Currency)
}

func TestParseSalary_EmptyStringIsNil(t *testing.T) {
	p := newSalaryParser(nil)
	money, err := p.ParseSalary(context.Background(), "   ", "", testSalaryDate)
	require.NoError(t, err)
	assert.Nil(t, money)
}

func TestParseSalary_UnknownSymbolIsInvalidSalary(t *testing.T) {
	p := newSalaryParser(nil)
	_, err := p.ParseSalary(context.Background(), "§500", "", testSalaryDate)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_salary")
}

func TestParseSalaryRange_DollarRangeNoConversion(t *testing.T) {
	p := newSalaryParser(nil)
	min, max, err := p.ParseSalaryRange(context.Background(), "$90k - $120k", "", testSalaryDate)
	require.NoError(t, err)
	assert.True(t, min.Amount.Equal(mustDecimal("90000")))
	assert.True(t, max.Amount.Equal(mustDecimal("120000")))
	assert.Equal(t, "USD", min.Currency)
	assert.Equal(t, "USD", max.Currency)
}

func TestParseSalaryRange_InvertedRangeIsInvalidSalary(t *testing.T) {
	p := newSalaryParser(nil)
	_, _, err := p.ParseSalaryRange(context.Background(), "$120k - $90k", "", testSalaryDate)
	assert.Error(t, err)
}

// fxRoundTripper answers every FX lookup with a fixed INR->USD rate,
// regardless of the requested date or URL.
type fxRoundTripper struct {
	rate string
}

func (f *fxRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	body := `{"date":"2024-01-01","usd":{"inr":` + f.rate + `}}`
	return &http.Response{
		StatusCode: 200,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}, nil
}

func TestParseSalaryRange_INRLakhRangeConvertsToUSD(t *testing.T) {
	client := &http.Client{Transport: &fxRoundTripper{rate: "82.89"}}
	p := newSalaryParser(client)

	min, max, err := p.ParseSalaryRange(context.Background(), "₹15L – ₹25L", "", testSalaryDate)
	require.NoError(t, err)
	require.NotNil(t, min)
	require.NotNil(t, max)
	assert.Equal(t, "USD", min.Currency)
	assert.Equal(t, "USD", max.Currency)
	// 1,500,000 INR / 82.89 and 2,500,000 INR / 82.89, rounded to 2dp.
	assert.True(t, min.Amount.Equal(mustDecimal("18096.27")), "got %s", min.Amount)
	assert.True(t, max.Amount.Equal(mustDecimal("30160.45")), "got %s", max.Amount)
}

func TestParseSalaryRange_FallsBackToSingleAmount(t *testing.T) {
	p := newSalaryParser(nil)
	min, max, err := p.ParseSalaryRange(context.Background(), "$100,000", "", testSalaryDate)
	require.NoError(t, err)
	assert.True(t, min.Amount.Equal(max.Amount))
}

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
