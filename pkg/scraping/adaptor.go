package scraping

import (
	"context"
	"sort"
	"sync"
)

// Adaptor is one pluggable integration against an external
// bibliographic-metadata source. Implementations must be safe for concurrent
// use; every remote call takes a context so it can be cancelled or
// timeout-bounded by the caller.
//
// The key-derivation methods are pure and deterministic. They incorporate
// the source and identifier so two sources never collide in a shared cache.
type Adaptor interface {
	// Source returns the source identifier for the adaptor, used for
	// routing and cache namespacing.
	Source() string

	// Identifier returns the version identifier for this adaptor.
	Identifier() string

	// GetVolumes returns candidate volumes matching the series name. A
	// non-positive maxRecords means all records.
	GetVolumes(ctx context.Context, seriesName string, maxRecords int, properties map[string]string) ([]*Volume, error)

	// GetIssue returns the first issue matching the volume id and issue
	// number, or nil when the source has no match. The issue number is
	// normalized before the source is queried.
	GetIssue(ctx context.Context, volumeID int, issueNumber string, properties map[string]string) (*Issue, error)

	// GetIssueDetails returns the full record for a single issue id.
	GetIssueDetails(ctx context.Context, issueID int, properties map[string]string) (*IssueDetails, error)

	VolumeKey(seriesName string) string
	IssueKey(volumeID int, issueNumber string) string
	IssueDetailsKey(issueID int) string
}

// Registry routes source names to registered adaptors.
type Registry struct {
	mu       sync.RWMutex
	adaptors map[string]Adaptor
}

func NewRegistry() *Registry {
	return &Registry{adaptors: map[string]Adaptor{}}
}

func (r *Registry) Register(adaptor Adaptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adaptors[adaptor.Source()] = adaptor
}

// Lookup returns the adaptor for a source name, or false when no adaptor is
// registered for it.
func (r *Registry) Lookup(source string) (Adaptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	adaptor, ok := r.adaptors[source]
	return adaptor, ok
}

// Sources returns the registered source names in sorted order.
func (r *Registry) Sources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sources := make([]string, 0, len(r.adaptors))
	for source := range r.adaptors {
		sources = append(sources, source)
	}
	sort.Strings(sources)
	return sources
}
