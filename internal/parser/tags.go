package parser

import "strings"

// tagAliases maps common spelling/punctuation variants of the same skill
// tag to a single canonical form.
var tagAliases = map[string]string{
	"back-end":     "backend",
	"back end":     "backend",
	"front-end":    "frontend",
	"front end":    "frontend",
	"fullstack":    "full stack",
	"full-stack":   "full stack",
	"node js":      "node.js",
	"nodejs":       "node.js",
	"node.js":      "node.js",
	"react.js":     "react",
	"reactjs":      "react",
	"vue.js":       "vue",
	"vuejs":        "vue",
	"datascience":  "data science",
	"data-science": "data science",
	"golang":       "go",
	"postgres":     "postgresql",
	"k8s":          "kubernetes",
}

// NormalizeTag lowercases, trims, and applies the alias table. Idempotent:
// NormalizeTag(NormalizeTag(s)) == NormalizeTag(s).
func NormalizeTag(tag string) string {
	clean := strings.ToLower(strings.TrimSpace(tag))
	clean = strings.Join(strings.Fields(clean), " ")
	if alias, ok := tagAliases[clean]; ok {
		return alias
	}
	return clean
}

// NormalizeTags normalizes every tag and drops empties and duplicates,
// preserving first-seen order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		n := NormalizeTag(t)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
