// Package geo validates ISO location codes against a closed vocabulary,
// resolves free-text country/region names to codes, and extracts
// applicantLocationRequirements out of JSON-LD documents embedded in
// detail pages.
package geo

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
	"sync"
)

// ValidCodes is the closed vocabulary Job.Locations is validated against:
// every ISO 3166-1 alpha-2 country code, the ISO 3166-2 US state
// subdivisions (the only subdivisions any registered source emits), plus
// Kosovo's user-assigned code.
var ValidCodes = buildValidCodes()

func buildValidCodes() map[string]bool {
	codes := make(map[string]bool, len(countryCodes)+len(usStateCodes)+1)
	for _, c := range countryCodes {
		codes[c] = true
	}
	for _, c := range usStateCodes {
		codes[c] = true
	}
	codes["XK"] = true // Kosovo, not yet assigned an official ISO 3166-1 code
	return codes
}

// IsValid reports whether code belongs to the closed vocabulary.
func IsValid(code string) bool {
	return ValidCodes[strings.ToUpper(code)]
}

// Filter drops any location not in the closed vocabulary. Unknown codes
// are dropped rather than failing the listing; if every location is
// unknown the result is an empty slice.
func Filter(locations []string) []string {
	kept := make([]string, 0, len(locations))
	for _, loc := range locations {
		code := strings.ToUpper(strings.TrimSpace(loc))
		if IsValid(code) {
			kept = append(kept, code)
		}
	}
	return kept
}

var (
	nameCacheMu sync.Mutex
	nameCache   = map[string]string{}
)

// NameToCode resolves a free-text country/region name (as it appears in
// JSON-LD applicantLocationRequirements or a source's own location field)
// to an ISO code. Results, including misses, are memoized.
func NameToCode(name string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return "", false
	}

	nameCacheMu.Lock()
	defer nameCacheMu.Unlock()

	if code, ok := nameCache[key]; ok {
		return code, code != ""
	}

	code, ok := countryNameToCode[key]
	if !ok {
		nameCache[key] = ""
		return "", false
	}

	nameCache[key] = code
	return code, true
}

// rawNewlineInString matches a complete JSON string literal (including
// escape sequences) so escapeRawNewlinesInStrings can repair literal
// newlines inside it without touching structural whitespace.
var rawNewlineInString = regexp.MustCompile(`(?s)"[^"\\]*(?:\\.[^"\\]*)*"`)

type jsonLDPosting struct {
	ApplicantLocationRequirements json.RawMessage `json:"applicantLocationRequirements"`
}

type jsonLDPlace struct {
	Name string `json:"name"`
}

// ExtractLocationsFromJSONLD parses a <script type="application/ld+json">
// document and returns the ISO codes derived from
// applicantLocationRequirements, accepting either a single object or a
// list as the source JSON may use either shape. Raw newlines embedded
// inside JSON string literals (common in scraped HTML) are escaped first,
// since encoding/json rejects literal control characters in strings.
func ExtractLocationsFromJSONLD(doc []byte) []string {
	cleaned := escapeRawNewlinesInStrings(doc)

	var posting jsonLDPosting
	if err := json.Unmarshal(cleaned, &posting); err != nil || len(posting.ApplicantLocationRequirements) == 0 {
		return nil
	}

	var single jsonLDPlace
	if err := json.Unmarshal(posting.ApplicantLocationRequirements, &single); err == nil && single.Name != "" {
		if code, ok := NameToCode(single.Name); ok {
			return []string{code}
		}
		return nil
	}

	var list []jsonLDPlace
	if err := json.Unmarshal(posting.ApplicantLocationRequirements, &list); err != nil {
		return nil
	}

	codes := make([]string, 0, len(list))
	for _, place := range list {
		if code, ok := NameToCode(place.Name); ok {
			codes = append(codes, code)
		}
	}
	return codes
}

// escapeRawNewlinesInStrings replaces literal newlines found inside JSON
// string literals with the escaped \n sequence, without touching
// whitespace structurally outside of strings.
func escapeRawNewlinesInStrings(doc []byte) []byte {
	return rawNewlineInString.ReplaceAllFunc(doc, func(match []byte) []byte {
		if !bytes.ContainsAny(match, "\n\r") {
			return match
		}
		replaced := bytes.ReplaceAll(match, []byte("\r\n"), []byte("\\n"))
		replaced = bytes.ReplaceAll(replaced, []byte("\n"), []byte("\\n"))
		replaced = bytes.ReplaceAll(replaced, []byte("\r"), []byte("\\n"))
		return replaced
	})
}
