package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate_ShorterThanLimitIsUnchanged(t *testing.T) {
	assert.Equal(t, "hello", truncate("hello", 10))
}

func TestTruncate_ExactLengthIsUnchanged(t *testing.T) {
	assert.Equal(t, "hello", truncate("hello", 5))
}

func TestTruncate_LongerStringIsCut(t *testing.T) {
	assert.Equal(t, "hel", truncate("hello", 3))
}

func TestTruncate_ZeroLimitYieldsEmptyString(t *testing.T) {
	assert.Equal(t, "", truncate("hello", 0))
}
