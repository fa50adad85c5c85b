// Package sources resolves numeric source IDs to display names.
package sources

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/updatelog/internal/shared"
)

// Source is a provider that library items originate from.
type Source struct {
	ID   int64
	Name string
	Lang string
	Stub bool // Stub is set for IDs missing from the registry
}

// String renders "Name (LANG)", "Name" without a language, or the bare ID for stubs.
func (s Source) String() string {
	if s.Stub || s.Name == "" {
		return strconv.FormatInt(s.ID, 10)
	}
	if s.Lang == "" {
		return s.Name
	}
	return fmt.Sprintf("%s (%s)", s.Name, strings.ToUpper(s.Lang))
}

// Registry is a read-only lookup of configured sources.
type Registry struct {
	sources map[int64]Source
}

// NewRegistry builds a Registry from the [[sources]] config section.
func NewRegistry(configs []shared.SourceConfig) *Registry {
	r := &Registry{sources: make(map[int64]Source, len(configs))}
	for _, c := range configs {
		r.sources[c.ID] = Source{ID: c.ID, Name: c.Name, Lang: c.Lang}
	}
	return r
}

// Get returns the registered source for id.
func (r *Registry) Get(id int64) (Source, bool) {
	s, ok := r.sources[id]
	return s, ok
}

// GetOrStub returns the registered source for id or a stub that renders as the bare ID.
func (r *Registry) GetOrStub(id int64) Source {
	if s, ok := r.Get(id); ok {
		return s
	}
	return Source{ID: id, Stub: true}
}

// Name is the source-name resolver used by the report generator. It never fails.
func (r *Registry) Name(id int64) string {
	return r.GetOrStub(id).String()
}

// Len returns the number of registered sources.
func (r *Registry) Len() int {
	return len(r.sources)
}
