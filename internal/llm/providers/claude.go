package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"boardsync/internal/config"
)

// ClaudeProvider implements TagExtractor on top of Anthropic's Claude,
// with the same batch contract as the OpenAI provider: max N tags per job,
// technical skills only, "non-tech" as the sole tag for non-technical
// roles.
type ClaudeProvider struct {
	client    anthropic.Client
	model     anthropic.Model
	maxPerJob int
}

func NewClaudeProvider(cfg *config.Config) *ClaudeProvider {
	model := anthropic.Model(cfg.LLM.AnthropicModel)
	if model == "" {
		model = anthropic.ModelClaude3_7SonnetLatest
	}
	maxPerJob := cfg.LLM.MaxTagsPerJob
	if maxPerJob <= 0 {
		maxPerJob = 5
	}
	return &ClaudeProvider{
		client:    anthropic.NewClient(option.WithAPIKey(cfg.LLM.AnthropicAPIKey)),
		model:     model,
		maxPerJob: maxPerJob,
	}
}

func (cp *ClaudeProvider) ProviderName() string { return "claude" }

type claudeTagResult struct {
	Link string   `json:"link"`
	Tags []string `json:"tags"`
}

func (cp *ClaudeProvider) buildPrompt(jobs []JobInput) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `You are a technical recruiter tagging job postings by skill. For each job below, extract up to %d technical skill tags (programming languages, frameworks, tools, platforms). Use "non-tech" as the sole tag if the listing is not a technical role.

Return ONLY a valid JSON array, no additional text, with exactly one entry per job in this shape:
[{"link": "<the job's link>", "tags": ["tag1", "tag2"]}]

JOBS:
`, cp.maxPerJob)
	for _, j := range jobs {
		fmt.Fprintf(&sb, "LINK: %s\nTITLE: %s\nDESCRIPTION: %s\n\n", j.Link, j.Title, truncate(j.Description, 2000))
	}
	return sb.String()
}

// ExtractTags sends the whole batch in a single request and discards any
// link the model echoes back that wasn't in the input set.
func (cp *ClaudeProvider) ExtractTags(ctx context.Context, jobs []JobInput) (map[string][]string, error) {
	if len(jobs) == 0 {
		return map[string][]string{}, nil
	}

	validLinks := make(map[string]bool, len(jobs))
	for _, j := range jobs {
		validLinks[j.Link] = true
	}

	response, err := cp.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     cp.model,
		MaxTokens: 4096,
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: cp.buildPrompt(jobs)},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("claude tag extraction request failed: %w", err)
	}
	if len(response.Content) == 0 {
		return nil, fmt.Errorf("empty response from claude")
	}

	var responseText string
	for _, block := range response.Content {
		responseText = block.AsText().Text
		break
	}

	responseText = strings.TrimSpace(responseText)
	responseText = strings.TrimPrefix(responseText, "```json")
	responseText = strings.TrimPrefix(responseText, "```")
	responseText = strings.TrimSuffix(responseText, "```")
	responseText = strings.TrimSpace(responseText)

	var results []claudeTagResult
	if err := json.Unmarshal([]byte(responseText), &results); err != nil {
		return nil, fmt.Errorf("failed to parse claude response as JSON: %w, response: %s", err, responseText)
	}

	out := make(map[string][]string, len(results))
	for _, r := range results {
		if !validLinks[r.Link] {
			continue
		}
		if len(r.Tags) > cp.maxPerJob {
			r.Tags = r.Tags[:cp.maxPerJob]
		}
		out[r.Link] = r.Tags
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
