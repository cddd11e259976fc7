package providers

import "context"

// JobInput is the minimal projection a tag extraction request needs. It
// lives here (rather than in the parent llm package) so provider
// implementations can reference it without creating an import cycle back
// through llm's factory, which must import providers to construct them.
type JobInput struct {
	Link        string
	Title       string
	Description string
}

// TagExtractor is implemented by each provider (OpenAI, Claude). Every
// returned map key must match an input Link; entries that don't are
// discarded by the caller.
type TagExtractor interface {
	ExtractTags(ctx context.Context, jobs []JobInput) (map[string][]string, error)
	ProviderName() string
}
