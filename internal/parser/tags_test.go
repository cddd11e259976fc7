package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTag_AliasesAndWhitespace(t *testing.T) {
	cases := map[string]string{
		"  Back-End  ":   "backend",
		"FRONT END":      "frontend",
		"Node.JS":        "node.js",
		"nodejs":         "node.js",
		"ReactJS":        "react",
		"Vue.js":         "vue",
		"K8s":            "kubernetes",
		"golang":         "go",
		"Postgres":       "postgresql",
		"data   science": "data science",
		"Python":         "python",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeTag(in), "input %q", in)
	}
}

func TestNormalizeTag_IsIdempotent(t *testing.T) {
	inputs := []string{"  Back-End  ", "nodejs", "Python", "K8s", ""}
	for _, in := range inputs {
		once := NormalizeTag(in)
		twice := NormalizeTag(once)
		assert.Equal(t, once, twice, "input %q", in)
	}
}

func TestNormalizeTags_DropsEmptiesAndDuplicatesPreservingOrder(t *testing.T) {
	got := NormalizeTags([]string{"Python", "  ", "PYTHON", "Go", "golang", "Rust"})
	assert.Equal(t, []string{"python", "go", "rust"}, got)
}

func TestNormalizeTags_EmptyInput(t *testing.T) {
	assert.Empty(t, NormalizeTags(nil))
	assert.Empty(t, NormalizeTags([]string{}))
}
