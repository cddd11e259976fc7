package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boardsync/internal/config"
)

func TestCreateProvider_OpenAI(t *testing.T) {
	cfg := &config.Config{}
	cfg.LLM.Provider = "openai"
	cfg.LLM.OpenAIAPIKey = "test-key"

	provider, err := NewFactory(cfg).CreateProvider()
	require.NoError(t, err)
	assert.Equal(t, "openai", provider.ProviderName())
}

func TestCreateProvider_Claude(t *testing.T) {
	cfg := &config.Config{}
	cfg.LLM.Provider = "claude"
	cfg.LLM.AnthropicAPIKey = "test-key"

	provider, err := NewFactory(cfg).CreateProvider()
	require.NoError(t, err)
	assert.Equal(t, "claude", provider.ProviderName())
}

func TestCreateProvider_UnsupportedProviderErrors(t *testing.T) {
	cfg := &config.Config{}
	cfg.LLM.Provider = "carrier-pigeon"

	_, err := NewFactory(cfg).CreateProvider()
	assert.Error(t, err)
}

func TestSupportedProviders(t *testing.T) {
	f := NewFactory(&config.Config{})
	assert.Equal(t, []string{"openai", "claude"}, f.SupportedProviders())
}
