package llm

import (
	"fmt"

	"boardsync/internal/config"
	"boardsync/internal/llm/providers"
)

// Factory creates the TagExtractor named by LLM_PROVIDER.
type Factory struct {
	config *config.Config
}

func NewFactory(cfg *config.Config) *Factory {
	return &Factory{config: cfg}
}

func (f *Factory) CreateProvider() (TagExtractor, error) {
	switch f.config.LLM.Provider {
	case "openai":
		return providers.NewOpenAIProvider(f.config), nil
	case "claude":
		return providers.NewClaudeProvider(f.config), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", f.config.LLM.Provider)
	}
}

func (f *Factory) SupportedProviders() []string {
	return []string{"openai", "claude"}
}
