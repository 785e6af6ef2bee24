package source

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"mercator-hq/converter/pkg/config"
	"mercator-hq/converter/pkg/records"
)

// Source produces a record set from a backend.
type Source interface {
	// Spec describes the source.
	Spec() Spec

	// Fetch loads the current records. Implementations must honour ctx
	// cancellation and must not retain the returned set.
	Fetch(ctx context.Context, cfg *config.SourceConfig) (records.RecordSet, error)
}

// Spec describes a registered source type.
type Spec struct {
	// Type is the value of source.type that selects the source.
	Type string `json:"type"`

	// Description is a one-line summary for listings.
	Description string `json:"description"`
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Source)
)

// Register makes a source available by its type. It panics if the type is
// empty or already registered.
func Register(s Source) {
	registryMu.Lock()
	defer registryMu.Unlock()

	typ := s.Spec().Type
	if typ == "" {
		panic("source: Register with empty type")
	}
	if _, dup := registry[typ]; dup {
		panic("source: Register called twice for type " + typ)
	}
	registry[typ] = s
}

// Get returns the source registered for typ.
func Get(typ string) (Source, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	s, ok := registry[typ]
	if !ok {
		return nil, fmt.Errorf("unknown source type %q (supported: %s)", typ, strings.Join(types(), ", "))
	}
	return s, nil
}

// List returns the specs of all registered sources sorted by type.
func List() []Spec {
	registryMu.RLock()
	defer registryMu.RUnlock()

	specs := make([]Spec, 0, len(registry))
	for _, s := range registry {
		specs = append(specs, s.Spec())
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Type < specs[j].Type })
	return specs
}

// types returns the registered type names. Callers hold registryMu.
func types() []string {
	names := make([]string, 0, len(registry))
	for typ := range registry {
		names = append(names, typ)
	}
	sort.Strings(names)
	return names
}
