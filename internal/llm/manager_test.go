package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boardsync/internal/config"
)

func TestManager_StartSetsHealthyAndProviderName(t *testing.T) {
	cfg := &config.Config{}
	cfg.LLM.Provider = "openai"
	cfg.LLM.OpenAIAPIKey = "test-key"

	m := NewManager(cfg)
	assert.False(t, m.IsHealthy())
	assert.Equal(t, "none", m.ProviderName())

	require.NoError(t, m.Start())
	assert.True(t, m.IsHealthy())
	assert.Equal(t, "openai", m.ProviderName())
}

func TestManager_StartWithUnsupportedProviderIsUnhealthy(t *testing.T) {
	cfg := &config.Config{}
	cfg.LLM.Provider = "carrier-pigeon"

	m := NewManager(cfg)
	err := m.Start()
	require.Error(t, err)
	assert.False(t, m.IsHealthy())
}

func TestManager_ExtractTagsFailsWithoutStart(t *testing.T) {
	cfg := &config.Config{}
	cfg.LLM.Provider = "openai"
	m := NewManager(cfg)

	_, err := m.ExtractTags(context.Background(), []JobInput{{Link: "https://x.com/1"}})
	assert.Error(t, err)
}

func TestManager_StopClearsProvider(t *testing.T) {
	cfg := &config.Config{}
	cfg.LLM.Provider = "openai"
	cfg.LLM.OpenAIAPIKey = "test-key"

	m := NewManager(cfg)
	require.NoError(t, m.Start())
	require.True(t, m.IsHealthy())

	m.Stop()
	assert.False(t, m.IsHealthy())
	assert.Equal(t, "none", m.ProviderName())
}
