package llm

import (
	"context"
	"fmt"
	"sync"

	"boardsync/internal/config"
	"boardsync/internal/logging"
)

// Manager owns the configured TagExtractor's lifecycle: lazy start, health
// gating, thread-safe provider access.
type Manager struct {
	config   *config.Config
	factory  *Factory
	provider TagExtractor
	logger   logging.Logger
	mu       sync.RWMutex
	healthy  bool
}

func NewManager(cfg *config.Config) *Manager {
	return &Manager{
		config:  cfg,
		factory: NewFactory(cfg),
		logger:  logging.GetGlobalLogger(),
	}
}

// Start creates the configured provider. A provider that fails to
// initialize does not stop the rest of the system from running — tag
// backfill is simply skipped until it becomes healthy.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logger.Info("starting LLM manager", map[string]interface{}{"provider": m.config.LLM.Provider})

	provider, err := m.factory.CreateProvider()
	if err != nil {
		m.healthy = false
		return fmt.Errorf("failed to create LLM provider: %w", err)
	}

	m.provider = provider
	m.healthy = true
	return nil
}

func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.provider = nil
	m.healthy = false
}

// ExtractTags delegates to the active provider.
func (m *Manager) ExtractTags(ctx context.Context, jobs []JobInput) (map[string][]string, error) {
	m.mu.RLock()
	provider := m.provider
	healthy := m.healthy
	m.mu.RUnlock()

	if provider == nil || !healthy {
		return nil, fmt.Errorf("LLM provider not available")
	}
	return provider.ExtractTags(ctx, jobs)
}

func (m *Manager) IsHealthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.healthy && m.provider != nil
}

func (m *Manager) ProviderName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.provider != nil {
		return m.provider.ProviderName()
	}
	return "none"
}
