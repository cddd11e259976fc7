package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"boardsync/internal/config"
)

// OpenAIProvider implements TagExtractor using go-openai's JSON-schema
// response_format structured-output mode for the batch link->tags contract
// (the Claude provider instead asks for a JSON array in its prompt and
// parses it from the reply text).
type OpenAIProvider struct {
	client    *openai.Client
	model     string
	maxPerJob int
	batchSize int
}

func NewOpenAIProvider(cfg *config.Config) *OpenAIProvider {
	model := cfg.LLM.OpenAIModel
	if model == "" {
		model = openai.GPT4oMini
	}
	maxPerJob := cfg.LLM.MaxTagsPerJob
	if maxPerJob <= 0 {
		maxPerJob = 5
	}
	batchSize := cfg.LLM.BatchSize
	if batchSize <= 0 {
		batchSize = 20
	}

	clientCfg := openai.DefaultConfig(cfg.LLM.OpenAIAPIKey)
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.LLM.OpenAIReadTimeout}
	client := openai.NewClientWithConfig(clientCfg)

	return &OpenAIProvider{client: client, model: model, maxPerJob: maxPerJob, batchSize: batchSize}
}

func (op *OpenAIProvider) ProviderName() string { return "openai" }

type openAITagResult struct {
	Link string   `json:"link"`
	Tags []string `json:"tags"`
}

type openAITagResultSet struct {
	Results []openAITagResult `json:"results"`
}

var openAITagSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"results": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"link": {"type": "string"},
					"tags": {"type": "array", "items": {"type": "string"}}
				},
				"required": ["link", "tags"],
				"additionalProperties": false
			}
		}
	},
	"required": ["results"],
	"additionalProperties": false
}`)

// ExtractTags processes jobs in config-sized batches so a single request
// body and response never grow unbounded with the backlog.
func (op *OpenAIProvider) ExtractTags(ctx context.Context, jobs []JobInput) (map[string][]string, error) {
	out := make(map[string][]string, len(jobs))
	for start := 0; start < len(jobs); start += op.batchSize {
		end := start + op.batchSize
		if end > len(jobs) {
			end = len(jobs)
		}
		batch := jobs[start:end]
		result, err := op.extractBatch(ctx, batch)
		if err != nil {
			return nil, err
		}
		for link, tags := range result {
			out[link] = tags
		}
	}
	return out, nil
}

func (op *OpenAIProvider) extractBatch(ctx context.Context, jobs []JobInput) (map[string][]string, error) {
	validLinks := make(map[string]bool, len(jobs))
	prompt := fmt.Sprintf("For each job below, extract up to %d technical skill tags (programming languages, frameworks, tools, platforms). Use \"non-tech\" as the sole tag if the listing is not a technical role. Report exactly one result per link.\n\n", op.maxPerJob)
	for _, j := range jobs {
		validLinks[j.Link] = true
		prompt += fmt.Sprintf("LINK: %s\nTITLE: %s\nDESCRIPTION: %s\n\n", j.Link, j.Title, truncate(j.Description, 2000))
	}

	resp, err := op.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: op.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "tag_extraction",
				Schema: openAITagSchema,
				Strict: true,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai tag extraction request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}

	var set openAITagResultSet
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &set); err != nil {
		return nil, fmt.Errorf("failed to parse openai structured response: %w", err)
	}

	out := make(map[string][]string, len(set.Results))
	for _, r := range set.Results {
		if !validLinks[r.Link] {
			continue
		}
		if len(r.Tags) > op.maxPerJob {
			r.Tags = r.Tags[:op.maxPerJob]
		}
		out[r.Link] = r.Tags
	}
	return out, nil
}
