// Package sources holds one adapter per external job board, each declaring
// its registry identity, its pagination discipline, and a concrete
// parser.Extractor for its raw records.
package sources

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"boardsync/internal/parser"
)

// RawItem is one source's raw listing record, in whatever shape its
// encoding produces (a decoded JSON struct, a feed item paired with its
// raw element, a goquery selection wrapper) — opaque to everything but
// that source's own Extractor and Adapter.
type RawItem any

// Adapter is implemented once per source. FetchJobs performs whatever
// pagination discipline the source requires and returns every raw item
// newer than cutoff it found (adapters may also return items it couldn't
// cheaply filter; the orchestrator re-applies the recency gate per item).
type Adapter interface {
	Name() string
	BaseURL() string
	DisplayName() string
	URL() string
	APIDataFormat() parser.DataFormat
	Extractor() parser.Extractor
	FetchJobs(ctx context.Context, cutoff time.Time) ([]RawItem, error)
}

// Registry is the process-wide set of known source adapters, keyed by
// Name().
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

func NewRegistry() *Registry {
	return &Registry{adapters: map[string]Adapter{}}
}

func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.Name()] = a
}

func (r *Registry) Get(name string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[name]
	return a, ok
}

// Names returns every registered source name, sorted for deterministic
// iteration (cron registration, CLI listing).
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BaseURLs returns the DisplayName->BaseURL map models.PortalName consults
// to derive a job's portal from its link prefix at query time.
func (r *Registry) BaseURLs() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.adapters))
	for _, a := range r.adapters {
		out[a.DisplayName()] = a.BaseURL()
	}
	return out
}

// ErrUnknownSource is returned by Get-based lookups the CLI and fetch
// orchestrator perform for a caller-supplied source name.
func ErrUnknownSource(name string) error {
	return fmt.Errorf("unknown source: %s", name)
}
