package parser

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"boardsync/internal/currency"
	"boardsync/internal/logging"
	"boardsync/pkg/models"
	"boardsync/pkg/utils"
)

// amountPattern captures a single salary amount; rangePattern a
// "min - max" pair. Both accept an optional leading currency symbol, a
// number with thousands separators and decimals, an optional magnitude
// suffix, and an optional trailing 3-letter ISO code.
var (
	amountPattern = regexp.MustCompile(
		`(?i)(?P<symbol>[^\w\s\d,.\-]{0,3})\s*(?P<amount>\d[\d,]*(?:\.\d+)?)\s*(?P<multiplier>[kmbl])?\b(?:\s*(?P<code>[a-z]{3}))?`,
	)
	rangePattern = regexp.MustCompile(
		`(?i)(?P<symbol>[^\w\s\d,.\-]{0,3})\s*(?P<min>\d[\d,]*(?:\.\d+)?)\s*(?P<minmult>[kmbl])?\s*(?:-|to|–|—)\s*(?P<symbol2>[^\w\s\d,.\-]{0,3})\s*(?P<max>\d[\d,]*(?:\.\d+)?)\s*(?P<maxmult>[kmbl])?\b(?:\s*(?P<code>[a-z]{3}))?`,
	)
)

// multiplierFactor scales a suffixed amount; "l" is the Indian lakh
// (10^5), distinct from the SI-style k/m/b multipliers.
var multiplierFactor = map[string]int64{
	"k": 1_000,
	"m": 1_000_000,
	"b": 1_000_000_000,
	"l": 100_000,
}

// SalaryParser resolves a free-text salary string (and its optional
// explicit currency code) into a Money denominated in DefaultCurrency,
// converting via internal/currency when the detected currency differs.
type SalaryParser struct {
	DefaultCurrency string
	DefaultLocale   string
	HTTPClient      *http.Client
}

// ParseSalary parses a single amount (no range) such as "$120,000" or
// "90k USD". explicitCode, when non-empty, is an ISO code the source
// supplied out-of-band (e.g. a structured salaryCurrency field) and always
// wins over anything detected in text.
func (p *SalaryParser) ParseSalary(ctx context.Context, text, explicitCode string, on time.Time) (*models.Money, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	m := amountPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, utils.NewInvalidSalaryError("no amount found in salary text: " + text)
	}
	names := amountPattern.SubexpNames()
	groups := groupMap(names, m)

	amount, err := parseAmount(groups["amount"], groups["multiplier"])
	if err != nil {
		return nil, utils.NewInvalidSalaryError("malformed salary amount: " + text)
	}

	code, err := resolveCurrency(explicitCode, groups["code"], groups["symbol"], p.DefaultLocale, groups["amount"])
	if err != nil {
		return nil, err
	}

	return p.toDefaultCurrency(ctx, amount, code, on)
}

// ParseSalaryRange parses a "min - max" style string such as "$90k - $120k"
// or "80,000-100,000 EUR".
func (p *SalaryParser) ParseSalaryRange(ctx context.Context, text, explicitCode string, on time.Time) (min, max *models.Money, err error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil, nil
	}

	m := rangePattern.FindStringSubmatch(text)
	if m == nil {
		// Not a range; fall back to treating it as a single amount for both bounds.
		amt, err := p.ParseSalary(ctx, text, explicitCode, on)
		if err != nil {
			return nil, nil, err
		}
		return amt, amt, nil
	}
	names := rangePattern.SubexpNames()
	groups := groupMap(names, m)

	minAmount, err := parseAmount(groups["min"], groups["minmult"])
	if err != nil {
		return nil, nil, utils.NewInvalidSalaryError("malformed minimum salary in range: " + text)
	}
	maxAmount, err := parseAmount(groups["max"], groups["maxmult"])
	if err != nil {
		return nil, nil, utils.NewInvalidSalaryError("malformed maximum salary in range: " + text)
	}

	symbol := groups["symbol"]
	if symbol == "" {
		symbol = groups["symbol2"]
	}
	code, err := resolveCurrency(explicitCode, groups["code"], symbol, p.DefaultLocale, groups["min"])
	if err != nil {
		return nil, nil, err
	}

	minMoney, err := p.toDefaultCurrency(ctx, minAmount, code, on)
	if err != nil {
		return nil, nil, err
	}
	maxMoney, err := p.toDefaultCurrency(ctx, maxAmount, code, on)
	if err != nil {
		return nil, nil, err
	}
	if maxMoney.Amount.LessThan(minMoney.Amount) {
		return nil, nil, utils.NewInvalidSalaryError("max salary less than min salary in range: " + text)
	}
	return minMoney, maxMoney, nil
}

func groupMap(names []string, m []string) map[string]string {
	out := make(map[string]string, len(names))
	for i, name := range names {
		if name == "" {
			continue
		}
		out[name] = m[i]
	}
	return out
}

func parseAmount(rawAmount, multiplier string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(rawAmount, ",", "")
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, err
	}
	if factor, ok := multiplierFactor[strings.ToLower(multiplier)]; ok {
		amount = amount.Mul(decimal.NewFromInt(factor))
	}
	return amount, nil
}

// resolveCurrency applies the currency precedence: an explicit ISO code
// (from the caller or matched trailing in text) wins; otherwise the symbol
// is looked up; otherwise, if the amount is purely numeric with no currency
// marker at all, the default currency is assumed; any other shape is
// InvalidSalary.
func resolveCurrency(explicitCode, matchedCode, symbol, locale, rawAmount string) (string, error) {
	if explicitCode != "" {
		code := strings.ToUpper(explicitCode)
		if !currency.IsKnownCode(code) {
			return "", utils.NewInvalidSalaryError("unknown currency code: " + explicitCode)
		}
		return code, nil
	}
	if matchedCode != "" {
		code := strings.ToUpper(matchedCode)
		if !currency.IsKnownCode(code) {
			return "", utils.NewInvalidSalaryError("unknown currency code: " + matchedCode)
		}
		return code, nil
	}
	if symbol != "" {
		if code, ok := currency.SymbolToCode(symbol, locale); ok {
			return code, nil
		}
		return "", utils.NewInvalidSalaryError("unrecognized currency symbol: " + symbol)
	}
	if _, err := strconv.ParseFloat(strings.ReplaceAll(rawAmount, ",", ""), 64); err == nil {
		return "", nil // signal: caller should use the default currency
	}
	return "", utils.NewInvalidSalaryError("no currency symbol or code found")
}

func (p *SalaryParser) toDefaultCurrency(ctx context.Context, amount decimal.Decimal, code string, on time.Time) (*models.Money, error) {
	if code == "" {
		code = p.DefaultCurrency
	}
	if code == p.DefaultCurrency {
		return &models.Money{Amount: amount, Currency: p.DefaultCurrency}, nil
	}
	if on.IsZero() {
		on = time.Now()
	}

	rate, err := currency.Lookup(ctx, p.HTTPClient, code, p.DefaultCurrency, on)
	if err != nil {
		// Non-fatal: default to a rate of 1 and surface the listing anyway.
		logging.GetGlobalLogger().Warn("exchange rate lookup failed, assuming rate 1", map[string]interface{}{
			"from":  code,
			"to":    p.DefaultCurrency,
			"error": err.Error(),
		})
		rate = decimal.NewFromInt(1)
	}
	converted := currency.ConvertToDefault(amount, rate)
	return &models.Money{Amount: converted, Currency: p.DefaultCurrency}, nil
}
