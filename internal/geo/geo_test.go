package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("US"))
	assert.True(t, IsValid("us"))
	assert.True(t, IsValid("US-CA"))
	assert.True(t, IsValid("XK"))
	assert.False(t, IsValid("ZZ"))
	assert.False(t, IsValid(""))
}

func TestFilter_DropsUnknownKeepsKnown(t *testing.T) {
	got := Filter([]string{"US", "zz", "gb", "bogus"})
	assert.Equal(t, []string{"US", "GB"}, got)
}

func TestFilter_AllUnknownYieldsEmpty(t *testing.T) {
	got := Filter([]string{"zz", "yy"})
	assert.Empty(t, got)
}

func TestNameToCode(t *testing.T) {
	code, ok := NameToCode("United States")
	require.True(t, ok)
	assert.Equal(t, "US", code)

	code, ok = NameToCode("  Kosovo  ")
	require.True(t, ok)
	assert.Equal(t, "XK", code)

	_, ok = NameToCode("Narnia")
	assert.False(t, ok)

	_, ok = NameToCode("")
	assert.False(t, ok)
}

func TestNameToCode_MemoizationIsIdempotent(t *testing.T) {
	first, ok1 := NameToCode("Germany")
	second, ok2 := NameToCode("Germany")
	assert.Equal(t, ok1, ok2)
	assert.Equal(t, first, second)
}

func TestExtractLocationsFromJSONLD_SingleObject(t *testing.T) {
	doc := []byte(`{"@type":"JobPosting","applicantLocationRequirements":{"@type":"Country","name":"United States"}}`)
	got := ExtractLocationsFromJSONLD(doc)
	assert.Equal(t, []string{"US"}, got)
}

func TestExtractLocationsFromJSONLD_List(t *testing.T) {
	doc := []byte(`{"applicantLocationRequirements":[{"name":"Germany"},{"name":"France"},{"name":"Nowhereland"}]}`)
	got := ExtractLocationsFromJSONLD(doc)
	assert.Equal(t, []string{"DE", "FR"}, got)
}

func TestExtractLocationsFromJSONLD_MissingField(t *testing.T) {
	doc := []byte(`{"@type":"JobPosting"}`)
	assert.Nil(t, ExtractLocationsFromJSONLD(doc))
}

func TestExtractLocationsFromJSONLD_EscapesRawNewlinesInStrings(t *testing.T) {
	doc := []byte("{\"applicantLocationRequirements\":{\"name\":\"United\nStates\"}}")
	// "United\nStates" (literal newline) doesn't match any known name, but
	// the document must still parse without error rather than failing on
	// the embedded control character.
	got := ExtractLocationsFromJSONLD(doc)
	assert.Nil(t, got)
}
