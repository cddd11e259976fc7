// Package currency resolves currency symbols to ISO 4217 codes and looks
// up historical FX rates from a public rate API, with a fallback mirror
// when the primary CDN fails.
package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	xcurrency "golang.org/x/text/currency"
)

const (
	primaryURLFormat  = "https://cdn.jsdelivr.net/npm/@fawazahmed0/currency-api@%s/v1/currencies/%s.json"
	fallbackURLFormat = "https://%s.currency-api.pages.dev/v1/currencies/%s.json"
)

// symbolToCodes maps a currency symbol to the ISO 4217 codes that use it.
// Entries with more than one code are symbols shared across currencies;
// ties are broken by localeDefault.
var symbolToCodes = map[string][]string{
	"$":   {"USD", "CAD", "AUD", "NZD", "SGD", "HKD", "MXN"},
	"₹":   {"INR"},
	"£":   {"GBP"},
	"€":   {"EUR"},
	"¥":   {"JPY", "CNY"},
	"₩":   {"KRW"},
	"₽":   {"RUB"},
	"₦":   {"NGN"},
	"₴":   {"UAH"},
	"฿":   {"THB"},
	"₫":   {"VND"},
	"₱":   {"PHP"},
	"₺":   {"TRY"},
	"₪":   {"ILS"},
	"₡":   {"CRC"},
	"₵":   {"GHS"},
	"₲":   {"PYG"},
	"₮":   {"MNT"},
	"₸":   {"KZT"},
	"R$":  {"BRL"},
	"R":   {"ZAR"},
	"Kč":  {"CZK"},
	"zł":  {"PLN"},
	"kr":  {"SEK", "NOK", "DKK"},
	"Fr":  {"CHF"},
	"CHF": {"CHF"},
	"Rp":  {"IDR"},
	"RM":  {"MYR"},
	"₭":   {"LAK"},
	"ƒ":   {"AWG"},
	"د.إ": {"AED"},
	"ر.س": {"SAR"},
}

// localeDefault resolves the preferred ISO code for a locale when a symbol
// is shared by more than one currency (e.g. "$").
var localeDefault = map[string]string{
	"en_US": "USD",
	"en_CA": "CAD",
	"en_AU": "AUD",
	"en_NZ": "NZD",
	"en_GB": "GBP",
	"en_SG": "SGD",
	"en_HK": "HKD",
	"es_MX": "MXN",
	"zh_CN": "CNY",
	"ja_JP": "JPY",
}

// IsKnownCode reports whether code is a recognized ISO 4217 currency code.
// The FX service converts between any pair of real currencies, so
// recognition is by the ISO table, not by the (much smaller) symbol map;
// salary strings carrying a code outside the table are InvalidSalary.
func IsKnownCode(code string) bool {
	_, err := xcurrency.ParseISO(strings.ToUpper(code))
	return err == nil
}

// SymbolToCode resolves a currency symbol to an ISO 4217 code under the
// given locale. Returns false when the symbol is unrecognized.
func SymbolToCode(symbol, locale string) (string, bool) {
	codes, ok := symbolToCodes[symbol]
	if !ok || len(codes) == 0 {
		return "", false
	}
	if len(codes) == 1 {
		return codes[0], true
	}
	if preferred, ok := localeDefault[locale]; ok {
		for _, code := range codes {
			if code == preferred {
				return code, true
			}
		}
	}
	return codes[0], true
}

// Lookup fetches the FX rate needed to convert an amount denominated in
// `from` into `to`, as of `on`. The returned rate is the number of `from`
// units per one `to` unit (i.e. amountInTo = amountInFrom / rate). Equal
// currencies short-circuit to a rate of 1 without a network call.
func Lookup(ctx context.Context, client *http.Client, from, to string, on time.Time) (decimal.Decimal, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	dateStr := on.UTC().Format("2006-01-02")
	toLower := strings.ToLower(to)
	fromLower := strings.ToLower(from)

	rate, err := fetchRate(ctx, client, fmt.Sprintf(primaryURLFormat, dateStr, toLower), toLower, fromLower)
	if err != nil {
		rate, err = fetchRate(ctx, client, fmt.Sprintf(fallbackURLFormat, dateStr, toLower), toLower, fromLower)
	}
	return rate, err
}

func fetchRate(ctx context.Context, client *http.Client, url, toLower, fromLower string) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("exchange rate request to %s returned status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Zero, err
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return decimal.Zero, err
	}

	ratesRaw, ok := payload[toLower]
	if !ok {
		return decimal.Zero, fmt.Errorf("exchange rate response missing %q key", toLower)
	}

	var rates map[string]float64
	if err := json.Unmarshal(ratesRaw, &rates); err != nil {
		return decimal.Zero, err
	}

	rate, ok := rates[fromLower]
	if !ok {
		return decimal.Zero, fmt.Errorf("no exchange rate found for %s in response", fromLower)
	}

	return decimal.NewFromFloat(rate), nil
}

// ConvertToDefault converts amount (denominated in whatever currency rate
// was looked up for) into the default currency, rounded to cents.
func ConvertToDefault(amount, rate decimal.Decimal) decimal.Decimal {
	if rate.IsZero() {
		rate = decimal.NewFromInt(1)
	}
	return amount.DivRound(rate, 2)
}
